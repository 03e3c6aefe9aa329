package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxStake(t *testing.T) {
	t.Run("ten percent of bankroll over per-unit profit", func(t *testing.T) {
		h := &House{Balance: 10_000} // $100
		// 10% of $100 = $10, odds 2.00 risk $1 profit per $1 staked
		assert.Equal(t, int64(1_000), h.MaxStake(200))
	})

	t.Run("higher odds shrink the cap", func(t *testing.T) {
		h := &House{Balance: 10_000}
		// odds 3.00: profit 2 per unit, cap = 1000/2
		assert.Equal(t, int64(500), h.MaxStake(300))
	})

	t.Run("floors at minimum stake", func(t *testing.T) {
		h := &House{Balance: 100} // $1 bankroll
		assert.Equal(t, MinStake, h.MaxStake(200))
	})

	t.Run("zero for odds at or below 1.00", func(t *testing.T) {
		h := &House{Balance: 10_000}
		assert.Equal(t, int64(0), h.MaxStake(100))
		assert.Equal(t, int64(0), h.MaxStake(50))
	})

	t.Run("truncates fractional cents", func(t *testing.T) {
		h := &House{Balance: 10_001}
		// floor(10% of 10001 / 0.5) = floor(2000.2)
		assert.Equal(t, int64(2000), h.MaxStake(150))
	})
}

func TestCoversPayout(t *testing.T) {
	h := &House{Balance: 3_000}
	assert.True(t, h.CoversPayout(1_500))
	assert.False(t, h.CoversPayout(1_501))
	assert.False(t, h.CoversPayout(3_000))
}

func TestProfitIdentity(t *testing.T) {
	h := &House{
		Balance:                7_000,
		TotalMembershipRevenue: 10_000,
		TotalBetsReceived:      3_500,
		TotalPayouts:           6_500,
	}
	assert.Equal(t, int64(7_000), h.Profit())
	// Starting from zero, the bankroll and the profit identity coincide.
	assert.Equal(t, h.Balance, h.Profit())
}

func TestPotentialWin(t *testing.T) {
	assert.Equal(t, int64(3_000), PotentialWin(1_500, 200))
	assert.Equal(t, int64(2_000), PotentialWin(1_000, 200))
	// 1.33 odds truncate to whole cents
	assert.Equal(t, int64(1_330), PotentialWin(1_000, 133))
	assert.Equal(t, int64(13), PotentialWin(10, 133))
}

func TestNewBet(t *testing.T) {
	b := NewBet(uuid.New(), uuid.New(), "home", 2_000, 200)
	assert.Equal(t, BetStatusActive, b.Status)
	assert.Equal(t, int64(4_000), b.PotentialWin)
	assert.Nil(t, b.SettledAt)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestValidateOdds(t *testing.T) {
	assert.Error(t, ValidateOdds(100))
	assert.Error(t, ValidateOdds(0))
	assert.NoError(t, ValidateOdds(101))
}

func TestValidateSelections(t *testing.T) {
	t.Run("accepts two named outcomes", func(t *testing.T) {
		err := ValidateSelections([]Selection{{Name: "home", Odds: 150}, {Name: "away", Odds: 260}})
		assert.NoError(t, err)
	})

	t.Run("rejects single outcome", func(t *testing.T) {
		err := ValidateSelections([]Selection{{Name: "home", Odds: 150}})
		assert.Error(t, err)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		err := ValidateSelections([]Selection{{Name: "home", Odds: 150}, {Name: "home", Odds: 260}})
		assert.Error(t, err)
	})

	t.Run("rejects odds at 1.00", func(t *testing.T) {
		err := ValidateSelections([]Selection{{Name: "home", Odds: 100}, {Name: "away", Odds: 260}})
		assert.Error(t, err)
	})
}

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrInternal("insert bet", cause)
	require.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(err, CodeConflict))
	assert.True(t, IsCode(fmt.Errorf("settle: %w", ErrEventAlreadySettled("e1")), CodeEventAlreadySettled))
}

func TestErrInsufficientHouseFunds(t *testing.T) {
	err := ErrInsufficientHouseFunds(4_000, 3_000)
	assert.Equal(t, int64(1_000), err.Details["shortfall"])
	assert.Equal(t, int64(4_000), err.Details["required"])
	assert.Equal(t, int64(3_000), err.Details["available"])
}
