package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTier(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"", "1 СЕЗОН"},
		{"   ", "1 СЕЗОН"},
		{"gold", "1 СЕЗОН"},
		{"1 сезон", "2 СЕЗОНА"},
		{"2 сезона", "3 СЕЗОНА"},
		{"  2   СЕЗОНА ", "3 СЕЗОНА"},
		{"3 Сезона", "4 СЕЗОНА"},
		{"4 СЕЗОНА", "4 СЕЗОНА"},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, NextTier(tt.current))
		})
	}
}

func TestNextTier_NeverSkipsOrRegresses(t *testing.T) {
	for _, tier := range Tiers() {
		next, ok := LookupTier(NextTier(tier.Display))
		require.True(t, ok)
		if tier.Rank == len(Tiers()) {
			assert.Equal(t, tier.Rank, next.Rank)
			continue
		}
		assert.Equal(t, tier.Rank+1, next.Rank)
	}
}

func TestLookupTier(t *testing.T) {
	tier, ok := LookupTier("3 СЕЗОНА")
	require.True(t, ok)
	assert.Equal(t, 3, tier.Rank)

	_, ok = LookupTier("5 сезонов")
	assert.False(t, ok)
}

func TestNewBonusLookup_ShowsNextTier(t *testing.T) {
	visited := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rec := &BonusBalanceRecord{
		Phone:          "9161234567",
		LastName:       "Иванов",
		FirstName:      "Иван",
		LoyaltyLevel:   "2 сезона",
		CurrentBalance: decimal.RequireFromString("350.5"),
		VisitsCount:    2,
		LastVisitDate:  &visited,
	}

	got := NewBonusLookup(rec)
	assert.Equal(t, "3 СЕЗОНА", got.LoyaltyLevel)
	require.NotNil(t, got.LastVisitDate)
	assert.Equal(t, "2024-03-05", *got.LastVisitDate)
	assert.Equal(t, "350.5", got.CurrentBalance.String())

	rec.LastVisitDate = nil
	assert.Nil(t, NewBonusLookup(rec).LastVisitDate)
}
