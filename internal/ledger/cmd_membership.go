package ledger

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/repository"
)

// RecordMembershipFee applies an already-validated "membership fee paid"
// event from the payment layer: the fee lands in the house bankroll as pure
// profit and the user's membership becomes active. Idempotent against
// redelivery via the caller-supplied external id.
func (e *Engine) RecordMembershipFee(ctx context.Context, params domain.MembershipFeeParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	var result *domain.CommandResult
	err := e.store.WithinTx(ctx, func(ctx context.Context, s repository.Store) error {
		house, err := s.House().LockForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("lock house: %w", err)
		}

		wallet, err := e.lockOrCreateWallet(ctx, s, params.UserID)
		if err != nil {
			return err
		}

		existing, err := e.findExisting(ctx, s, params.UserID, params.ExternalID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &domain.CommandResult{Entry: existing, Wallet: wallet, House: house, Idempotent: true}
			return nil
		}

		entry, wallet, house, err := e.postEntry(ctx, s, domain.PostEntryParams{
			UserID: &params.UserID,
			Type:   domain.EntryMembershipFee,
			Amount: params.Amount,
			HouseDelta: domain.HouseDelta{
				Balance:           params.Amount,
				MembershipRevenue: params.Amount,
			},
			ExternalID: strPtr(params.ExternalID),
		})
		if err != nil {
			return fmt.Errorf("membership fee post: %w", err)
		}

		wallet, err = s.Wallets().ActivateMembership(ctx, params.UserID, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("activate membership: %w", err)
		}

		result = &domain.CommandResult{Entry: entry, Wallet: wallet, House: house}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Idempotent {
		e.logger.Info("membership fee recorded",
			"user_id", params.UserID,
			"amount", params.Amount,
			"house_balance", result.House.Balance)
	}
	return result, nil
}
