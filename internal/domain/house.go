package domain

import "time"

// Risk parameters for admission control. Amounts are integer cents, odds are
// decimal odds in hundredths (200 = 2.00).
const (
	// MinStake is the smallest accepted stake ($5).
	MinStake int64 = 500

	// OddsUnit is the fixed-point scale for decimal odds.
	OddsUnit int64 = 100

	// RiskBasisPoints caps a single bet's profit exposure at 10% of bankroll.
	RiskBasisPoints int64 = 1000
)

// House is the single shared bankroll all stakes flow into and all payouts
// are drawn from. Exactly one row exists; it is mutated in place and never
// deleted. Profit is derived, not stored: see Profit.
type House struct {
	Balance                int64     `json:"balance"`
	TotalMembershipRevenue int64     `json:"total_membership_revenue"`
	TotalBetsReceived      int64     `json:"total_bets_received"`
	TotalPayouts           int64     `json:"total_payouts"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Profit is the audited house profit identity:
// membership revenue plus stakes received minus payouts made.
func (h *House) Profit() int64 {
	return h.TotalMembershipRevenue + h.TotalBetsReceived - h.TotalPayouts
}

// MaxStake returns the largest admissible stake for the given odds,
// bounding the bet's profit exposure to 10% of the current bankroll, with a
// floor of MinStake. Odds at or below 1.00 have no defined cap and return 0;
// admission rejects them before this is consulted.
func (h *House) MaxStake(odds int64) int64 {
	if odds <= OddsUnit {
		return 0
	}
	limit := h.Balance * RiskBasisPoints / 100 / (odds - OddsUnit)
	if limit < MinStake {
		return MinStake
	}
	return limit
}

// CoversPayout reports whether a single potential payout stays within the
// coarse 50%-of-bankroll exposure guard.
func (h *House) CoversPayout(potentialWin int64) bool {
	return potentialWin*2 <= h.Balance
}

// HouseDelta describes which bankroll columns to update and by how much.
// Applied with server-side arithmetic in one statement.
type HouseDelta struct {
	Balance           int64
	MembershipRevenue int64
	BetsReceived      int64
	Payouts           int64
}

// HouseSnapshot is the read-only bankroll view with derived profit.
type HouseSnapshot struct {
	Balance                int64 `json:"balance"`
	TotalMembershipRevenue int64 `json:"total_membership_revenue"`
	TotalBetsReceived      int64 `json:"total_bets_received"`
	TotalPayouts           int64 `json:"total_payouts"`
	Profit                 int64 `json:"profit"`
}

// Snapshot captures the current bankroll state.
func (h *House) Snapshot() HouseSnapshot {
	return HouseSnapshot{
		Balance:                h.Balance,
		TotalMembershipRevenue: h.TotalMembershipRevenue,
		TotalBetsReceived:      h.TotalBetsReceived,
		TotalPayouts:           h.TotalPayouts,
		Profit:                 h.Profit(),
	}
}
