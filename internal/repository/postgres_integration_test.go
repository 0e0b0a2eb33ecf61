//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), models.NewGormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	_ = db.Migrator().DropTable(models.AllModels()...)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(models.AllModels()...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresListingSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewListingRepository(db)

	end := time.Now().Add(6 * time.Hour)
	for _, title := range []string{"Mountain Bike", "Kiondo basket"} {
		listing := &models.Listing{
			SellerID:       1,
			Title:          title,
			Town:           "Nakuru",
			ListingType:    constants.ListingTypeAuction,
			Price:          1000,
			AuctionEndTime: &end,
			Status:         constants.ListingStatusActive,
			IsApproved:     true,
		}
		if err := repo.Create(listing); err != nil {
			t.Fatalf("create listing failed: %v", err)
		}
	}

	listings, total, err := repo.List(ListingListFilter{OnlyPublic: true, Search: "bike", Town: " NAKURU ", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list listings failed: %v", err)
	}
	if total != 1 || len(listings) != 1 || listings[0].Title != "Mountain Bike" {
		t.Fatalf("expected the bike only, got total=%d listings=%+v", total, listings)
	}
}

func TestPostgresApplyBidAndRowLock(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewListingRepository(db)

	end := time.Now().Add(time.Hour)
	listing := &models.Listing{
		SellerID:       1,
		Title:          "Radio",
		ListingType:    constants.ListingTypeAuction,
		Price:          500,
		AuctionEndTime: &end,
		Status:         constants.ListingStatusActive,
		IsApproved:     true,
	}
	if err := repo.Create(listing); err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		locked, err := txRepo.GetByIDForUpdate(listing.ID)
		if err != nil {
			return err
		}
		ok, err := txRepo.ApplyBid(locked.ID, locked.BidCount, 600)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatalf("apply bid under lock should succeed")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	stale, err := repo.ApplyBid(listing.ID, 0, 700)
	if err != nil {
		t.Fatalf("stale apply failed: %v", err)
	}
	if stale {
		t.Fatalf("stale bid count should not apply")
	}
}

func TestPostgresSellerRevenueAndStaffFilters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)

	agentID := uint(9)
	orders := []struct {
		no       string
		town     string
		payment  string
		assigned *uint
	}{
		{no: "SK-PG-1", town: "Nakuru", payment: constants.OrderPaymentPaid},
		{no: "SK-PG-2", town: " nakuru", payment: constants.OrderPaymentPaid, assigned: &agentID},
		{no: "SK-PG-3", town: "Kisumu", payment: constants.OrderPaymentPending},
	}
	for _, item := range orders {
		order := &models.Order{
			OrderNo:         item.no,
			BuyerID:         2,
			Status:          constants.OrderStatusPending,
			PaymentStatus:   item.payment,
			PaymentMethod:   constants.PaymentMethodMpesa,
			Currency:        "KES",
			Subtotal:        models.NewMoneyFromInt(1000),
			Total:           models.NewMoneyFromInt(1200),
			CommissionRate:  decimal.RequireFromString("0.05"),
			Town:            item.town,
			AssignedAgentID: item.assigned,
		}
		lines := []models.OrderItem{{
			ListingID:        1,
			SellerID:         1,
			Title:            "Radio",
			UnitPrice:        models.NewMoneyFromInt(1000),
			Quantity:         1,
			LineTotal:        models.NewMoneyFromInt(1000),
			CommissionAmount: models.NewMoneyFromInt(50),
			SellerNet:        models.NewMoneyFromInt(950),
		}}
		if err := repo.Create(order, lines); err != nil {
			t.Fatalf("create order %s failed: %v", item.no, err)
		}
	}

	revenue, err := repo.SumSellerRevenue(1)
	if err != nil {
		t.Fatalf("sum revenue failed: %v", err)
	}
	if revenue.OrderCount != 2 || revenue.NetRevenue.String() != "1900.00" {
		t.Fatalf("unexpected revenue: %+v", revenue)
	}

	scoped, total, err := repo.List(OrderListFilter{Town: "Nakuru", UnassignedOrMe: 10, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list staff orders failed: %v", err)
	}
	if total != 1 || len(scoped) != 1 || scoped[0].OrderNo != "SK-PG-1" {
		t.Fatalf("expected only the unassigned Nakuru order, got total=%d", total)
	}
}
