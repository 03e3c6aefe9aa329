package ledger

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
	"github.com/google/uuid"
)

// WalletBalance returns the user's spendable balance. A never-seen user has
// the lazy default of zero; this query never fails on absence.
func (e *Engine) WalletBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	wallet, err := e.store.Wallets().Find(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("find wallet: %w", err)
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.Balance, nil
}

// HouseSnapshot returns the read-only bankroll view with derived profit.
func (e *Engine) HouseSnapshot(ctx context.Context) (*domain.HouseSnapshot, error) {
	house, err := e.store.House().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read house: %w", err)
	}
	snap := house.Snapshot()
	return &snap, nil
}

// MaxStake returns the current stake cap for the given odds.
func (e *Engine) MaxStake(ctx context.Context, odds int64) (int64, error) {
	if err := domain.ValidateOdds(odds); err != nil {
		return 0, err
	}
	house, err := e.store.House().Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("read house: %w", err)
	}
	return house.MaxStake(odds), nil
}

// Statement returns a user's most recent ledger entries.
func (e *Engine) Statement(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, err := e.store.Entries().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}
