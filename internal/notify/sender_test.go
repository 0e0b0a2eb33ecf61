package notify

import (
	"context"
	"testing"

	"github.com/sokomart/internal/config"

	"github.com/stretchr/testify/require"
)

func TestNewSenderByDriver(t *testing.T) {
	sender, err := NewSender(config.NotifyConfig{})
	require.NoError(t, err)
	require.IsType(t, LogSender{}, sender)

	sender, err = NewSender(config.NotifyConfig{Driver: "NONE"})
	require.NoError(t, err)
	require.IsType(t, NopSender{}, sender)

	_, err = NewSender(config.NotifyConfig{Driver: "carrier-pigeon"})
	require.Error(t, err)
}

func TestLogSenderRejectsEmptyPhone(t *testing.T) {
	require.ErrorIs(t, LogSender{}.Send(context.Background(), "  ", "hi"), ErrRecipientInvalid)
	require.NoError(t, LogSender{}.Send(context.Background(), "+254700000001", "hi"))
}

func TestMaskPhone(t *testing.T) {
	require.Equal(t, "*********0001", maskPhone("+254700000001"))
	require.Equal(t, "****", maskPhone("12"))
}
