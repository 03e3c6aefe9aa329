package ledger

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/repository"
)

// RecordDeposit applies an already-validated "deposit succeeded" event from
// the payment layer to the user's wallet. Idempotent against redelivery via
// the caller-supplied external id.
func (e *Engine) RecordDeposit(ctx context.Context, params domain.CreditParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	var result *domain.CommandResult
	err := e.store.WithinTx(ctx, func(ctx context.Context, s repository.Store) error {
		wallet, err := e.lockOrCreateWallet(ctx, s, params.UserID)
		if err != nil {
			return err
		}

		existing, err := e.findExisting(ctx, s, params.UserID, params.ExternalID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &domain.CommandResult{Entry: existing, Wallet: wallet, Idempotent: true}
			return nil
		}

		entry, wallet, house, err := e.postEntry(ctx, s, domain.PostEntryParams{
			UserID:      &params.UserID,
			Type:        domain.EntryDeposit,
			Amount:      params.Amount,
			WalletDelta: params.Amount,
			ExternalID:  strPtr(params.ExternalID),
		})
		if err != nil {
			return fmt.Errorf("deposit post: %w", err)
		}

		result = &domain.CommandResult{Entry: entry, Wallet: wallet, House: house}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Idempotent {
		e.logger.Info("deposit recorded",
			"user_id", params.UserID,
			"amount", params.Amount,
			"balance", result.Wallet.Balance)
	}
	return result, nil
}
