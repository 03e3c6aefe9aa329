package domain

import (
	"time"

	"github.com/google/uuid"
)

// BetStatus tracks the lifecycle of a bet.
type BetStatus string

const (
	BetStatusActive BetStatus = "active"
	BetStatusWon    BetStatus = "won"
	BetStatusLost   BetStatus = "lost"
)

// Bet represents a wager record. Immutable once created except for
// Status/SettledAt, which change exactly once at settlement.
type Bet struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	EventID      uuid.UUID  `json:"event_id"`
	Selection    string     `json:"selection"`
	Amount       int64      `json:"amount"`
	Odds         int64      `json:"odds"` // decimal odds in hundredths
	PotentialWin int64      `json:"potential_win"`
	Status       BetStatus  `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

// PotentialWin returns the total return to the bettor on a win: stake times
// decimal odds, truncated to whole cents.
func PotentialWin(amount, odds int64) int64 {
	return amount * odds / OddsUnit
}

// NewBet creates an active bet record with its payout precomputed.
func NewBet(userID, eventID uuid.UUID, selection string, amount, odds int64) *Bet {
	return &Bet{
		ID:           uuid.New(),
		UserID:       userID,
		EventID:      eventID,
		Selection:    selection,
		Amount:       amount,
		Odds:         odds,
		PotentialWin: PotentialWin(amount, odds),
		Status:       BetStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
}

// PlaceBetParams holds the input for PlaceBet.
type PlaceBetParams struct {
	UserID    uuid.UUID
	EventID   uuid.UUID
	Selection string
	Amount    int64
	Odds      int64 // the odds quoted to the user, hundredths
}
