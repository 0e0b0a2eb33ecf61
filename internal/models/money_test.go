package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON(t *testing.T) {
	raw, err := json.Marshal(NewMoneyFromInt(1500))
	require.NoError(t, err)
	require.Equal(t, `"1500.00"`, string(raw))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"75.005"`), &m))
	require.Equal(t, "75.01", m.String())
	require.NoError(t, json.Unmarshal([]byte(`1210`), &m))
	require.Equal(t, "1210.00", m.String())
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestMoneyShillingsRoundsUp(t *testing.T) {
	require.Equal(t, int64(1261), NewMoneyFromDecimal(decimal.RequireFromString("1260.25")).Shillings())
	require.Equal(t, int64(1260), NewMoneyFromInt(1260).Shillings())
}

func TestMoneyCovers(t *testing.T) {
	due := NewMoneyFromDecimal(decimal.RequireFromString("1260.50"))
	require.True(t, NewMoneyFromInt(1261).Covers(due))
	require.True(t, due.Covers(due))
	require.False(t, NewMoneyFromInt(1260).Covers(due))
}
