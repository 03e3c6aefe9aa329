package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/repository"
	"github.com/google/uuid"
)

// Engine owns every balance mutation of the engine: wallet credits and
// debits, house bankroll movements, and the append-only entry each mutation
// leaves behind. All mutations flow through postEntry, which runs inside the
// caller's store transaction with the relevant row locks already held.
//
// Lock order everywhere is event, then house, then wallet; primitives that take
// locks follow it so concurrent placements and settlements cannot deadlock.
type Engine struct {
	store  repository.Store
	logger *slog.Logger
}

// NewEngine creates a ledger engine over the given store.
func NewEngine(store repository.Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Store exposes the underlying store for callers that compose their own
// transactions around ledger primitives.
func (e *Engine) Store() repository.Store { return e.store }

// lockOrCreateWallet locks the user's wallet row, lazily creating a
// zero-balance wallet for a first-seen user. Must run within a transaction.
func (e *Engine) lockOrCreateWallet(ctx context.Context, s repository.Store, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.Wallets().LockForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = domain.NewWallet(userID)
	if err := s.Wallets().Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	// Re-acquire so the row is locked for the rest of the transaction.
	wallet, err = s.Wallets().LockForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("relock wallet: %w", err)
	}
	return wallet, nil
}

// findExisting checks the idempotency index for a duplicate entry.
func (e *Engine) findExisting(ctx context.Context, s repository.Store, userID uuid.UUID, externalID string) (*domain.LedgerEntry, error) {
	if externalID == "" {
		return nil, nil
	}
	existing, err := s.Entries().FindExisting(ctx, domain.IdempotencyKey{UserID: userID, ExternalID: externalID})
	if err != nil {
		return nil, fmt.Errorf("find existing entry: %w", err)
	}
	return existing, nil
}

// postEntry atomically applies balance deltas and appends a ledger entry.
//
// Steps, all within the caller's transaction:
//  1. Apply the wallet delta with server-side arithmetic (when present)
//  2. Apply the house delta the same way (when present)
//  3. Insert the entry with the post-update balance snapshots
//  4. Insert the outbox event
func (e *Engine) postEntry(ctx context.Context, s repository.Store, params domain.PostEntryParams) (*domain.LedgerEntry, *domain.Wallet, *domain.House, error) {
	var wallet *domain.Wallet
	var err error

	if params.UserID != nil && params.WalletDelta != 0 {
		wallet, err = s.Wallets().ApplyDelta(ctx, *params.UserID, params.WalletDelta)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("apply wallet delta: %w", err)
		}
	} else if params.UserID != nil {
		wallet, err = s.Wallets().Find(ctx, *params.UserID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("find wallet: %w", err)
		}
	}

	var house *domain.House
	if (params.HouseDelta != domain.HouseDelta{}) {
		house, err = s.House().Apply(ctx, params.HouseDelta)
	} else {
		house, err = s.House().Get(ctx)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("apply house delta: %w", err)
	}

	entry := &domain.LedgerEntry{
		ID:         uuid.New(),
		UserID:     params.UserID,
		Type:       params.Type,
		Amount:     params.Amount,
		HouseAfter: house.Balance,
		ExternalID: params.ExternalID,
		BetID:      params.BetID,
		EventID:    params.EventID,
		Metadata:   params.Metadata,
		CreatedAt:  nowUTC(),
	}
	if wallet != nil {
		after := wallet.Balance
		entry.WalletAfter = &after
	}

	if err := s.Entries().Insert(ctx, entry); err != nil {
		return nil, nil, nil, fmt.Errorf("insert entry: %w", err)
	}

	if err := s.Outbox().Insert(ctx, domain.NewEntryPostedEvent(entry)); err != nil {
		return nil, nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, wallet, house, nil
}
