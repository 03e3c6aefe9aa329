package ledger

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/repository"
)

// StakeForBet moves a stake from the user's wallet into house custody as one
// ledger entry: wallet debit and bankroll credit in the same transaction.
// Must run inside the caller's transaction with the house row already
// locked. Debiting an uncovered stake fails with InsufficientFunds and
// leaves nothing applied.
func (e *Engine) StakeForBet(ctx context.Context, s repository.Store, bet *domain.Bet) (*domain.LedgerEntry, error) {
	if err := domain.ValidatePositiveAmount(bet.Amount); err != nil {
		return nil, err
	}

	wallet, err := e.lockOrCreateWallet(ctx, s, bet.UserID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance < bet.Amount {
		return nil, domain.ErrInsufficientFunds(bet.UserID.String())
	}

	entry, _, _, err := e.postEntry(ctx, s, domain.PostEntryParams{
		UserID:      &bet.UserID,
		Type:        domain.EntryBet,
		Amount:      bet.Amount,
		WalletDelta: -bet.Amount,
		HouseDelta: domain.HouseDelta{
			Balance:      bet.Amount,
			BetsReceived: bet.Amount,
		},
		BetID:   &bet.ID,
		EventID: &bet.EventID,
	})
	if err != nil {
		return nil, fmt.Errorf("stake post: %w", err)
	}
	return entry, nil
}

// PayWinner draws a winning bet's payout from the house bankroll into the
// winner's wallet. The payout precondition and the decrement are one
// critical section: the house row is locked by the surrounding settlement
// transaction, and the balance check here keeps the bankroll non-negative
// even if the caller's aggregate gate was skipped.
func (e *Engine) PayWinner(ctx context.Context, s repository.Store, bet *domain.Bet) (*domain.LedgerEntry, error) {
	house, err := s.House().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read house: %w", err)
	}
	if house.Balance < bet.PotentialWin {
		return nil, domain.ErrInsufficientHouseFunds(bet.PotentialWin, house.Balance)
	}

	if _, err := e.lockOrCreateWallet(ctx, s, bet.UserID); err != nil {
		return nil, err
	}

	entry, _, _, err := e.postEntry(ctx, s, domain.PostEntryParams{
		UserID:      &bet.UserID,
		Type:        domain.EntryWin,
		Amount:      bet.PotentialWin,
		WalletDelta: bet.PotentialWin,
		HouseDelta: domain.HouseDelta{
			Balance: -bet.PotentialWin,
			Payouts: bet.PotentialWin,
		},
		BetID:   &bet.ID,
		EventID: &bet.EventID,
	})
	if err != nil {
		return nil, fmt.Errorf("payout post: %w", err)
	}
	return entry, nil
}

// RecordLoss appends a zero-amount entry for a losing bet. No balance moves:
// the stake was absorbed into the bankroll at admission time, so the house's
// gain is already realized by the absence of a matching payout.
func (e *Engine) RecordLoss(ctx context.Context, s repository.Store, bet *domain.Bet) (*domain.LedgerEntry, error) {
	entry, _, _, err := e.postEntry(ctx, s, domain.PostEntryParams{
		UserID:  &bet.UserID,
		Type:    domain.EntrySettlementLoss,
		Amount:  0,
		BetID:   &bet.ID,
		EventID: &bet.EventID,
	})
	if err != nil {
		return nil, fmt.Errorf("loss post: %w", err)
	}
	return entry, nil
}
