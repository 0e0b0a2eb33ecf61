package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sokomart/internal/constants"
	"github.com/sokomart/internal/notify"
	"github.com/sokomart/internal/queue"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestNotifyOrderPlacedSendsDirectlyWhenQueueDisabled(t *testing.T) {
	sender := newRecordingSender()
	f := setupMarketplaceFixture(t, sender)
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	order := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodCOD, "SKNOTIFY0001")

	f.notification.NotifyOrderPlaced(order)
	f.notification.Wait()

	messages := sender.sentTo(buyer.Phone)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], order.OrderNo)
	require.Contains(t, messages[0], "SKNOTIFY0001")
}

func TestNotifyAuctionWonIncludesListingLink(t *testing.T) {
	sender := newRecordingSender()
	f := setupMarketplaceFixture(t, sender)
	seller := f.createProfile(t, constants.RoleSeller, "")
	winner := f.createProfile(t, constants.RoleBuyer, "")
	listing := f.createFixedListing(t, seller.ID, 1500)

	f.notification.NotifyAuctionWon(winner.ID, listing, 1800)
	f.notification.NotifyOutbid(0, listing, 1800)
	f.notification.NotifyOutbid(999999, listing, 1800)
	f.notification.Wait()

	messages := sender.sentTo(winner.Phone)
	require.Len(t, messages, 1)
	require.Contains(t, messages[0], "KES 1800")
	require.True(t, strings.HasSuffix(messages[0], "https://soko.test/listings/"+uintString(listing.ID)))
	require.Empty(t, sender.sentTo(seller.Phone))
}

func TestDeliverPassesThroughToSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := notify.NewMockSender(ctrl)
	svc := NewNotificationService(nil, sender, nil, "")

	payload := queue.SMSPayload{Phone: "+254700000001", Message: "hello"}
	sender.EXPECT().Send(gomock.Any(), payload.Phone, payload.Message).Return(nil)
	require.NoError(t, svc.Deliver(context.Background(), payload))

	sendErr := errors.New("gateway down")
	sender.EXPECT().Send(gomock.Any(), payload.Phone, payload.Message).Return(sendErr)
	require.ErrorIs(t, svc.Deliver(context.Background(), payload), sendErr)
}

func TestDirectSMSGetsFullDispatchWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := notify.NewMockSender(ctrl)
	f := setupMarketplaceFixture(t, sender)
	buyer := f.createProfile(t, constants.RoleBuyer, "")
	order := f.createOrder(t, buyer.ID, "Nakuru", constants.OrderStatusPending, constants.PaymentMethodCOD, "SKNOTIFY0002")

	var remaining time.Duration
	sender.EXPECT().Send(gomock.Any(), buyer.Phone, gomock.Any()).DoAndReturn(func(ctx context.Context, _, _ string) error {
		deadline, ok := ctx.Deadline()
		if ok {
			remaining = time.Until(deadline)
		}
		return nil
	})

	f.notification.NotifyOrderPlaced(order)
	f.notification.Wait()

	require.Greater(t, remaining, detachedTaskTimeout)
	require.LessOrEqual(t, remaining, smsDispatchTimeout)
}

func TestNilNotificationServiceIsSafe(t *testing.T) {
	var svc *NotificationService
	svc.NotifyOrderPlaced(nil)
	svc.NotifyOutbid(1, nil, 100)
	svc.Wait()
	require.NoError(t, svc.Deliver(context.Background(), queue.SMSPayload{}))
}
