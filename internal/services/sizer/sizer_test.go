package sizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name        string
		buyingPower string
		price       string
		want        int64
		wantErr     error
	}{
		{name: "even split", buyingPower: "10000", price: "40", want: 5},
		{name: "floors fractional shares", buyingPower: "10000", price: "41", want: 4},
		{name: "exactly one share", buyingPower: "2500", price: "50", want: 1},
		{name: "below one share", buyingPower: "100", price: "50", wantErr: ErrInsufficientBuyingPower},
		{name: "zero buying power", buyingPower: "0", price: "50", wantErr: ErrInsufficientBuyingPower},
		{name: "zero price", buyingPower: "10000", price: "0", wantErr: domain.ErrInvalidPriceData},
		{name: "negative price", buyingPower: "10000", price: "-1", wantErr: domain.ErrInvalidPriceData},
		{name: "penny stock", buyingPower: "10000", price: "0.37", want: 540},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Size(decimal.RequireFromString(tt.buyingPower), DefaultRiskFraction, decimal.RequireFromString(tt.price))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(decimal.Zero)
	require.Error(t, err)
	_, err = New(decimal.RequireFromString("1.5"))
	require.Error(t, err)

	s, err := New(decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	qty, err := s.Size(decimal.NewFromInt(1000), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)
	assert.True(t, s.RiskFraction().Equal(decimal.RequireFromString("0.1")))
}
