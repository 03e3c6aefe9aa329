package repository

import (
	"context"
	"time"

	"github.com/clubstake/platform/internal/domain"
	"github.com/google/uuid"
)

// Store provides access to all repositories over one data source.
//
// WithinTx runs fn against a transactional view of the store: every
// repository call inside fn sees and mutates uncommitted state, and the
// whole unit commits only if fn returns nil. Lock* methods must be called
// inside WithinTx; the locks they take serialize all check-then-act
// sequences on the house row and on individual wallet rows.
type Store interface {
	Wallets() WalletRepository
	House() HouseRepository
	Bets() BetRepository
	Events() EventRepository
	Entries() EntryRepository
	Outbox() OutboxRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// WalletRepository provides access to wallet records.
type WalletRepository interface {
	// Find returns a wallet by user, or nil if the user has never been seen.
	Find(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)

	// LockForUpdate acquires a row-level lock and returns the wallet, or nil.
	LockForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)

	// Create inserts a new wallet.
	Create(ctx context.Context, wallet *domain.Wallet) error

	// ApplyDelta adjusts the balance with server-side arithmetic and returns
	// the updated wallet.
	ApplyDelta(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Wallet, error)

	// ActivateMembership marks the one-time membership as paid.
	ActivateMembership(ctx context.Context, userID uuid.UUID, since time.Time) (*domain.Wallet, error)
}

// HouseRepository provides access to the single house bankroll record.
type HouseRepository interface {
	// Get returns the bankroll without locking.
	Get(ctx context.Context) (*domain.House, error)

	// LockForUpdate acquires the row-level lock on the bankroll row. All
	// bankroll check-then-act sequences serialize through this lock.
	LockForUpdate(ctx context.Context) (*domain.House, error)

	// Apply adjusts bankroll columns with server-side arithmetic and returns
	// the updated record.
	Apply(ctx context.Context, delta domain.HouseDelta) (*domain.House, error)
}

// BetRepository provides access to bet records.
type BetRepository interface {
	// Insert creates a bet record.
	Insert(ctx context.Context, bet *domain.Bet) error

	// FindByID returns a bet, or nil.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error)

	// FindByEvent returns all bets on an event, oldest first.
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Bet, error)

	// FindByUser returns all bets by a user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bet, error)

	// FindActiveByUser returns a user's unsettled bets, newest first.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bet, error)

	// MarkSettled transitions an active bet to won or lost. Settling a bet
	// that is not active fails with AlreadySettled.
	MarkSettled(ctx context.Context, id uuid.UUID, outcome domain.BetStatus, settledAt time.Time) error
}

// EventRepository provides access to wagering events.
type EventRepository interface {
	// Insert creates an event.
	Insert(ctx context.Context, event *domain.Event) error

	// FindByID returns an event, or nil.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// LockForUpdate acquires a row-level lock on the event, serializing
	// admission against settlement of the same event. Returns nil if absent.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// ListOpen returns events still accepting bets, oldest first.
	ListOpen(ctx context.Context) ([]domain.Event, error)

	// MarkFinished records the winner and flips the status to finished.
	MarkFinished(ctx context.Context, id uuid.UUID, winner string, settledAt time.Time) error
}

// EntryRepository provides access to the append-only ledger entries.
type EntryRepository interface {
	// FindExisting checks the idempotency index for a duplicate entry.
	// Returns nil if no duplicate exists.
	FindExisting(ctx context.Context, key domain.IdempotencyKey) (*domain.LedgerEntry, error)

	// Insert appends a ledger entry.
	Insert(ctx context.Context, entry *domain.LedgerEntry) error

	// ListByUser returns a user's entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

// OutboxRepository provides access to the event outbox.
type OutboxRepository interface {
	// Insert writes an outbox event within the surrounding transaction.
	Insert(ctx context.Context, draft domain.OutboxDraft) error
}
