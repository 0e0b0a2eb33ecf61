package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("boom"), ""},
		{ErrBidAmountInvalid, KindInvalidInput},
		{fmt.Errorf("wrap: %w", ErrListingNotFound), KindNotFound},
		{ErrSelfBidForbidden, KindForbidden},
		{ErrAuctionClosed, KindAuctionClosed},
		{fmt.Errorf("%w: pending -> shipped", ErrIllegalTransition), KindIllegalTransition},
		{&BidTooLowError{Minimum: 1600}, KindBidTooLow},
		{ErrBidConflict, KindConflict},
		{ErrListingAlreadyOrdered, KindConflict},
		{context.DeadlineExceeded, KindTimeout},
		{fmt.Errorf("%w: bid", ErrTimeout), KindTimeout},
		{ErrPaymentGatewayFailed, ""},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestBidTooLowErrorMessage(t *testing.T) {
	err := fmt.Errorf("place bid: %w", &BidTooLowError{Minimum: 1600})
	var tooLow *BidTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatalf("expected BidTooLowError")
	}
	if tooLow.Minimum != 1600 {
		t.Fatalf("minimum = %d", tooLow.Minimum)
	}
	if tooLow.Error() != "Minimum bid is KES 1600" {
		t.Fatalf("message = %q", tooLow.Error())
	}
	if !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("expected errors.Is ErrBidTooLow")
	}
}

func TestNormalizeTimeout(t *testing.T) {
	if err := normalizeTimeout(context.Background(), nil); err != nil {
		t.Fatalf("nil stays nil: %v", err)
	}
	plain := errors.New("db down")
	if err := normalizeTimeout(context.Background(), plain); err != plain {
		t.Fatalf("unrelated error changed: %v", err)
	}
	deadline, stop := context.WithTimeout(context.Background(), 0)
	defer stop()
	<-deadline.Done()
	if err := normalizeTimeout(deadline, errors.New("interrupted")); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}
