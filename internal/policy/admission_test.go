package policy

import (
	"testing"
	"time"

	"github.com/clubstake/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(t *testing.T) *domain.Wallet {
	t.Helper()
	now := time.Now().UTC()
	w := domain.NewWallet(uuid.New())
	w.MembershipActive = true
	w.MemberSince = &now
	w.Balance = 100_000
	return w
}

func openEvent(t *testing.T) *domain.Event {
	t.Helper()
	return domain.NewEvent("derby final", []domain.Selection{
		{Name: "home", Odds: 200},
		{Name: "away", Odds: 300},
	})
}

func request(w *domain.Wallet, e *domain.Event, amount, odds int64) domain.PlaceBetParams {
	return domain.PlaceBetParams{
		UserID:    w.UserID,
		EventID:   e.ID,
		Selection: "home",
		Amount:    amount,
		Odds:      odds,
	}
}

func TestEvaluateAdmission_Accepts(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	d := EvaluateAdmission(request(w, e, 1_000, 200), w, e, house)
	require.True(t, d.Allowed)
	assert.Nil(t, d.Reject)
	assert.Equal(t, int64(1_000), d.MaxStake)
	assert.Equal(t, int64(2_000), d.PotentialWin)
}

func TestEvaluateAdmission_MembershipRequired(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	t.Run("never-seen user", func(t *testing.T) {
		d := EvaluateAdmission(request(w, e, 1_000, 200), nil, e, house)
		require.False(t, d.Allowed)
		assert.Equal(t, domain.CodeMembershipNotActive, d.Reject.Code)
	})

	t.Run("wallet without membership", func(t *testing.T) {
		free := domain.NewWallet(uuid.New())
		free.Balance = 100_000
		d := EvaluateAdmission(request(free, e, 1_000, 200), free, e, house)
		require.False(t, d.Allowed)
		assert.Equal(t, domain.CodeMembershipNotActive, d.Reject.Code)
	})
}

func TestEvaluateAdmission_MinimumStake(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	d := EvaluateAdmission(request(w, e, 499, 200), w, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeMinimumBet, d.Reject.Code)

	d = EvaluateAdmission(request(w, e, 500, 200), w, e, house)
	assert.True(t, d.Allowed)
}

func TestEvaluateAdmission_EventNotOpen(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	for _, status := range []domain.EventStatus{domain.EventStatusLive, domain.EventStatusFinished} {
		e.Status = status
		d := EvaluateAdmission(request(w, e, 1_000, 200), w, e, house)
		require.False(t, d.Allowed)
		assert.Equal(t, domain.CodeEventNotOpen, d.Reject.Code)
	}
}

func TestEvaluateAdmission_UnknownSelection(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	params := request(w, e, 1_000, 200)
	params.Selection = "draw"
	d := EvaluateAdmission(params, w, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeValidation, d.Reject.Code)
}

func TestEvaluateAdmission_OddsMismatch(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	d := EvaluateAdmission(request(w, e, 1_000, 250), w, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeOddsMismatch, d.Reject.Code)
	assert.Equal(t, int64(200), d.Reject.Details["current"])
}

func TestEvaluateAdmission_BetTooLarge(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10_000}

	// cap at odds 2.00 is 1000
	d := EvaluateAdmission(request(w, e, 1_001, 200), w, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeBetTooLarge, d.Reject.Code)
	assert.Equal(t, int64(1_000), d.Reject.Details["max_stake"])
}

func TestEvaluateAdmission_CoverageGuard(t *testing.T) {
	w, e := member(t), openEvent(t)

	// With a $30 bankroll the cap at 2.00 is floor(10% of 3000) = 300,
	// floored to MinStake 500, so a $15 stake hits the cap first.
	house := &domain.House{Balance: 3_000}
	d := EvaluateAdmission(request(w, e, 1_500, 200), w, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeBetTooLarge, d.Reject.Code)

	// At the cap itself the bet is admitted: 500 at 2.00 pays 1000,
	// within half of 3000.
	d = EvaluateAdmission(request(w, e, 500, 200), w, e, house)
	assert.True(t, d.Allowed)

	// Shrink the bankroll: the same bet still passes the MinStake-floored
	// cap but its 1000 payout now exceeds half of 1500.
	house.Balance = 1_500
	d = EvaluateAdmission(request(w, e, 500, 200), w, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeInsufficientHouseCoverage, d.Reject.Code)
}

// Scenario: ten $10 membership fees build a $100 bankroll; MaxStake(2.00)
// is $10 and a $10 bet at 2.00 is admitted ($20 payout is within half of $100).
func TestEvaluateAdmission_GrownBankroll(t *testing.T) {
	w, e := member(t), openEvent(t)
	house := &domain.House{Balance: 10 * 1_000, TotalMembershipRevenue: 10 * 1_000}

	assert.Equal(t, int64(1_000), house.MaxStake(200))

	d := EvaluateAdmission(request(w, e, 1_000, 200), w, e, house)
	require.True(t, d.Allowed)
	assert.Equal(t, int64(2_000), d.PotentialWin)
}

func TestEvaluateAdmission_ChecksOrder(t *testing.T) {
	// A request failing several checks reports the earliest one: a
	// below-minimum stake from a non-member on a finished event reports
	// the membership failure.
	w, e := member(t), openEvent(t)
	e.Status = domain.EventStatusFinished
	house := &domain.House{Balance: 0}

	free := domain.NewWallet(uuid.New())
	params := request(w, e, 100, 200)
	params.UserID = free.UserID

	d := EvaluateAdmission(params, free, e, house)
	require.False(t, d.Allowed)
	assert.Equal(t, domain.CodeMembershipNotActive, d.Reject.Code)
}
