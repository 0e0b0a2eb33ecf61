package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"
	"github.com/sokomart/internal/repository"

	"github.com/shopspring/decimal"
)

func TestMergeCreateOrderItems(t *testing.T) {
	merged, err := mergeCreateOrderItems([]CreateOrderItem{
		{ListingID: 1, Quantity: 1},
		{ListingID: 2, Quantity: 1},
		{ListingID: 1, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(merged) != 2 || merged[0].ListingID != 1 || merged[0].Quantity != 3 {
		t.Fatalf("unexpected merged items: %+v", merged)
	}
	if _, err := mergeCreateOrderItems(nil); err != ErrOrderItemInvalid {
		t.Fatalf("expected ErrOrderItemInvalid for empty items, got %v", err)
	}
	if _, err := mergeCreateOrderItems([]CreateOrderItem{{ListingID: 1, Quantity: 0}}); err != ErrOrderItemInvalid {
		t.Fatalf("expected ErrOrderItemInvalid for zero quantity, got %v", err)
	}
}

func TestSplitCommission(t *testing.T) {
	commission, net := splitCommission(decimal.RequireFromString("1999"), decimal.RequireFromString("0.05"))
	if !commission.Equal(decimal.RequireFromString("99.95")) {
		t.Fatalf("unexpected commission: %s", commission)
	}
	if !net.Equal(decimal.RequireFromString("1899.05")) {
		t.Fatalf("unexpected net: %s", net)
	}
}

func TestParseDecimalSettingFallback(t *testing.T) {
	fallback := decimal.NewFromInt(200)
	if got := parseDecimalSetting("x", "", fallback); !got.Equal(fallback) {
		t.Fatalf("empty should fall back, got %s", got)
	}
	if got := parseDecimalSetting("x", "abc", fallback); !got.Equal(fallback) {
		t.Fatalf("invalid should fall back, got %s", got)
	}
	if got := parseDecimalSetting("x", "-1", fallback); !got.Equal(fallback) {
		t.Fatalf("negative should fall back, got %s", got)
	}
	if got := parseDecimalSetting("x", "150.50", fallback); !got.Equal(decimal.RequireFromString("150.5")) {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestCreateOrderSnapshotsPricing(t *testing.T) {
	sender := newRecordingSender()
	f := setupMarketplaceFixture(t, sender)
	seller := f.createProfile(t, constants.RoleSeller, "")
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	listing := f.createFixedListing(t, seller.ID, 1000)
	svc := f.orderService()

	order, err := svc.Create(context.Background(), actorOf(buyer), CreateOrderInput{
		Items:           []CreateOrderItem{{ListingID: listing.ID, Quantity: 2}},
		PaymentMethod:   "MPESA",
		Town:            " Nakuru ",
		DeliveryAddress: "Kenyatta Ave",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	svc.Wait()

	if order.Subtotal.String() != "2000.00" || order.DeliveryFee.String() != "200.00" || order.Total.String() != "2200.00" {
		t.Fatalf("unexpected totals: subtotal=%s fee=%s total=%s", order.Subtotal, order.DeliveryFee, order.Total)
	}
	if order.CommissionAmount.String() != "100.00" || order.SellerNet.String() != "1900.00" {
		t.Fatalf("unexpected commission split: %s / %s", order.CommissionAmount, order.SellerNet)
	}
	if !order.CommissionRate.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("unexpected commission rate snapshot: %s", order.CommissionRate)
	}
	if order.PaymentStatus != constants.OrderPaymentAwaitingPayment || order.Status != constants.OrderStatusPending {
		t.Fatalf("unexpected statuses: %s / %s", order.Status, order.PaymentStatus)
	}
	if order.Town != "Nakuru" {
		t.Fatalf("town should be trimmed, got %q", order.Town)
	}
	code := order.TrackingCodeValue()
	if !strings.HasPrefix(code, trackingCodePrefix) || len(code) != len(trackingCodePrefix)+trackingCodeLength || code != strings.ToUpper(code) {
		t.Fatalf("unexpected tracking code: %q", code)
	}
	if !strings.HasPrefix(order.OrderNo, "SK") {
		t.Fatalf("unexpected order no: %s", order.OrderNo)
	}
	if len(order.Items) != 1 || order.Items[0].SellerNet.String() != "1900.00" || order.Items[0].Title != listing.Title {
		t.Fatalf("unexpected item snapshot: %+v", order.Items)
	}

	messages := sender.sentTo(buyer.Phone)
	if len(messages) != 1 || !strings.Contains(messages[0], order.OrderNo) || !strings.Contains(messages[0], code) {
		t.Fatalf("unexpected confirmation sms: %v", messages)
	}
	if len(f.publisher.eventsOfType(constants.FeedEventOrderStatus)) != 1 {
		t.Fatalf("expected order status event")
	}

	// 价格变化不影响已下单快照
	if err := f.db.Model(&models.Listing{}).Where("id = ?", listing.ID).Update("price", 5000).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	stored, err := svc.GetForBuyer(order.ID, actorOf(buyer))
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Total.String() != "2200.00" {
		t.Fatalf("snapshot changed: %s", stored.Total)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	seller := f.createProfile(t, constants.RoleSeller, "")
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	listing := f.createFixedListing(t, seller.ID, 1000)
	svc := f.orderService()
	ctx := context.Background()

	cases := []struct {
		name  string
		actor Actor
		input CreateOrderInput
		want  error
	}{
		{"no_items", actorOf(buyer), CreateOrderInput{Town: "Nakuru"}, ErrOrderItemInvalid},
		{"bad_method", actorOf(buyer), CreateOrderInput{Town: "Nakuru", PaymentMethod: "cheque", Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 1}}}, ErrPaymentMethodInvalid},
		{"no_town", actorOf(buyer), CreateOrderInput{Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 1}}}, ErrDeliveryTownRequired},
		{"own_listing", actorOf(seller), CreateOrderInput{Town: "Nakuru", Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 1}}}, ErrListingNotPurchasable},
		{"missing_listing", actorOf(buyer), CreateOrderInput{Town: "Nakuru", Items: []CreateOrderItem{{ListingID: 4242, Quantity: 1}}}, ErrListingNotFound},
		{"anonymous", Actor{}, CreateOrderInput{Town: "Nakuru", Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 1}}}, ErrActorForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.actor, tc.input)
			if !errorsIs(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateOrderForWonAuction(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	seller := f.createProfile(t, constants.RoleSeller, "")
	winner := f.createProfile(t, constants.RoleBuyer, "")
	other := f.createProfile(t, constants.RoleBuyer, "")
	listing := f.createAuction(t, seller.ID, 1000, time.Now().Add(time.Hour))
	auctions := f.auctionService()
	if _, err := auctions.PlaceBid(context.Background(), listing.ID, winner.ID, 1700); err != nil {
		t.Fatalf("place bid failed: %v", err)
	}
	auctions.Wait()
	svc := f.orderService()
	input := CreateOrderInput{Town: "Nakuru", PaymentMethod: constants.PaymentMethodCOD, Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 1}}}

	if _, err := svc.Create(context.Background(), actorOf(winner), input); !errorsIs(err, ErrListingNotPurchasable) {
		t.Fatalf("active auction should not be purchasable, got %v", err)
	}

	listings := f.listingService()
	listings.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := listings.CloseAuction(context.Background(), listing.ID); err != nil {
		t.Fatalf("close auction failed: %v", err)
	}
	listings.Wait()

	if _, err := svc.Create(context.Background(), actorOf(other), input); !errorsIs(err, ErrListingNotPurchasable) {
		t.Fatalf("non-winner should not purchase, got %v", err)
	}

	order, err := svc.Create(context.Background(), actorOf(winner), input)
	if err != nil {
		t.Fatalf("winner checkout failed: %v", err)
	}
	if order.Subtotal.String() != "1700.00" || order.PaymentStatus != constants.OrderPaymentPending {
		t.Fatalf("unexpected auction order: subtotal=%s payment=%s", order.Subtotal, order.PaymentStatus)
	}

	if _, err := svc.Create(context.Background(), actorOf(winner), input); !errorsIs(err, ErrListingAlreadyOrdered) {
		t.Fatalf("second checkout should conflict, got %v", err)
	}
	svc.Wait()
}

func TestSellerRevenueUsesPaidSnapshots(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	seller := f.createProfile(t, constants.RoleSeller, "")
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	listing := f.createFixedListing(t, seller.ID, 1000)
	svc := f.orderService()

	paid, err := svc.Create(context.Background(), actorOf(buyer), CreateOrderInput{Town: "Nakuru", Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 1}}})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), actorOf(buyer), CreateOrderInput{Town: "Nakuru", Items: []CreateOrderItem{{ListingID: listing.ID, Quantity: 3}}}); err != nil {
		t.Fatalf("create unpaid order failed: %v", err)
	}
	svc.Wait()
	if err := f.db.Model(&models.Order{}).Where("id = ?", paid.ID).Update("payment_status", constants.OrderPaymentPaid).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	revenue, err := svc.SellerRevenue(actorOf(seller))
	if err != nil {
		t.Fatalf("seller revenue failed: %v", err)
	}
	if revenue.OrderCount != 1 || revenue.GrossSales.String() != "1000.00" || revenue.NetRevenue.String() != "950.00" {
		t.Fatalf("unexpected revenue: %+v", revenue)
	}
	if _, err := svc.SellerRevenue(actorOf(buyer)); !errorsIs(err, ErrActorForbidden) {
		t.Fatalf("buyer should not read seller revenue, got %v", err)
	}
}

func TestListForStaffScopesAgents(t *testing.T) {
	f := setupMarketplaceFixture(t, nil)
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	agent := f.createProfile(t, constants.RoleAgent, "Nakuru")
	otherAgent := f.createProfile(t, constants.RoleAgent, "Nakuru")
	manager := f.createProfile(t, constants.RoleManager, "")
	townless := f.createProfile(t, constants.RoleAgent, "")

	f.createOrder(t, buyer.ID, "nakuru", constants.OrderStatusPending, constants.PaymentMethodCOD, "SKAAAA")
	assigned := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusConfirmed, constants.PaymentMethodCOD, "SKBBBB")
	f.createOrder(t, buyer.ID, "Kisumu", constants.OrderStatusPending, constants.PaymentMethodCOD, "SKCCCC")
	if err := f.db.Model(&models.Order{}).Where("id = ?", assigned.ID).Update("assigned_agent_id", otherAgent.ID).Error; err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	svc := f.orderService()

	orders, total, err := svc.ListForStaff(actorOf(agent), repository.OrderListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("agent list failed: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].Town != "nakuru" {
		t.Fatalf("agent should only see unassigned orders in own town, got %d", total)
	}

	_, total, err = svc.ListForStaff(actorOf(manager), repository.OrderListFilter{Page: 1, PageSize: 20})
	if err != nil || total != 3 {
		t.Fatalf("manager should see all orders, total=%d err=%v", total, err)
	}

	if _, _, err := svc.ListForStaff(actorOf(townless), repository.OrderListFilter{}); !errorsIs(err, ErrActorTownMismatch) {
		t.Fatalf("townless agent should be rejected, got %v", err)
	}
	if _, _, err := svc.ListForStaff(actorOf(buyer), repository.OrderListFilter{}); !errorsIs(err, ErrActorForbidden) {
		t.Fatalf("buyer should not access staff list, got %v", err)
	}

	if _, err := svc.GetForStaff(assigned.ID, actorOf(agent)); !errorsIs(err, ErrOrderAssignedElsewhere) {
		t.Fatalf("agent should not read order assigned elsewhere, got %v", err)
	}
	if _, err := svc.GetForStaff(assigned.ID, actorOf(otherAgent)); err != nil {
		t.Fatalf("assigned agent should read order: %v", err)
	}
}
