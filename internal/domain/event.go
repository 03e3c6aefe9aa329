package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus tracks the lifecycle of a wagering event.
type EventStatus string

const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusLive     EventStatus = "live"
	EventStatusFinished EventStatus = "finished"
)

// Selection is a named outcome on an event with its quoted odds.
type Selection struct {
	Name string `json:"name"`
	Odds int64  `json:"odds"` // decimal odds in hundredths
}

// Event is something that can be bet on. Bets may only be created while the
// status is upcoming; settlement flips it to finished exactly once.
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Status     EventStatus `json:"status"`
	Selections []Selection `json:"selections"`
	Winner     *string     `json:"winner,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	SettledAt  *time.Time  `json:"settled_at,omitempty"`
}

// NewEvent creates an upcoming event with the given selections.
func NewEvent(name string, selections []Selection) *Event {
	return &Event{
		ID:         uuid.New(),
		Name:       name,
		Status:     EventStatusUpcoming,
		Selections: selections,
		CreatedAt:  time.Now().UTC(),
	}
}

// FindSelection returns the selection with the given name, or nil.
func (e *Event) FindSelection(name string) *Selection {
	for i := range e.Selections {
		if e.Selections[i].Name == name {
			return &e.Selections[i]
		}
	}
	return nil
}

// Open reports whether the event still accepts bets.
func (e *Event) Open() bool { return e.Status == EventStatusUpcoming }

// SettlementReport summarizes a successful event settlement.
type SettlementReport struct {
	EventID        uuid.UUID `json:"event_id"`
	Winner         string    `json:"winner"`
	Winners        int       `json:"winners"`
	Losers         int       `json:"losers"`
	TotalPayout    int64     `json:"total_payout"`
	BankrollBefore int64     `json:"bankroll_before"`
	BankrollAfter  int64     `json:"bankroll_after"`
	ProfitAfter    int64     `json:"profit_after"`
}
