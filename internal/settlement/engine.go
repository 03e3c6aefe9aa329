// Package settlement resolves finished events: it pays every winner, marks
// every loser, and closes the event in one transaction.
package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/ledger"
	"github.com/clubstake/platform/internal/repository"
	"github.com/google/uuid"
)

// Engine settles events against the ledger.
type Engine struct {
	store  repository.Store
	ledger *ledger.Engine
	logger *slog.Logger
}

// NewEngine creates a settlement engine.
func NewEngine(store repository.Store, ledger *ledger.Engine, logger *slog.Logger) *Engine {
	return &Engine{store: store, ledger: ledger, logger: logger}
}

// Settle resolves an event given its winning selection.
//
// Settlement is all-or-nothing in two phases. Phase one, under the event and
// house locks, sums every winning bet's payout and gates on bankroll
// solvency: if the total exceeds the bankroll the transaction rolls back
// with InsufficientHouseFunds, the event stays open for a later retry, and
// no bet changes state. Phase two pays each winner, records each loss, and
// marks the event finished. The event lock is taken first, matching bet
// placement, so no new bet can be admitted while settlement runs.
func (e *Engine) Settle(ctx context.Context, eventID uuid.UUID, winningSelection string) (*domain.SettlementReport, error) {
	if winningSelection == "" {
		return nil, domain.ErrValidation("winning selection is required")
	}

	var report *domain.SettlementReport
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := tx.Events().LockForUpdate(ctx, eventID)
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if event == nil {
			return domain.ErrNotFound("event", eventID.String())
		}
		if event.Status == domain.EventStatusFinished {
			return domain.ErrEventAlreadySettled(eventID.String())
		}
		if event.FindSelection(winningSelection) == nil {
			return domain.ErrValidation("unknown selection " + winningSelection)
		}

		house, err := tx.House().LockForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("lock house: %w", err)
		}
		bankrollBefore := house.Balance

		bets, err := tx.Bets().FindByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("find bets: %w", err)
		}

		var winners, losers []domain.Bet
		var totalPayout int64
		for _, bet := range bets {
			if bet.Status != domain.BetStatusActive {
				continue
			}
			if bet.Selection == winningSelection {
				winners = append(winners, bet)
				totalPayout += bet.PotentialWin
			} else {
				losers = append(losers, bet)
			}
		}

		// Solvency gate: the aggregate payout must fit the bankroll before
		// any individual payout is posted.
		if totalPayout > house.Balance {
			return domain.ErrInsufficientHouseFunds(totalPayout, house.Balance)
		}

		now := nowUTC()
		for i := range winners {
			bet := &winners[i]
			if _, err := e.ledger.PayWinner(ctx, tx, bet); err != nil {
				return fmt.Errorf("pay winner %s: %w", bet.ID, err)
			}
			if err := tx.Bets().MarkSettled(ctx, bet.ID, domain.BetStatusWon, now); err != nil {
				return fmt.Errorf("settle winning bet %s: %w", bet.ID, err)
			}
		}
		for i := range losers {
			bet := &losers[i]
			if _, err := e.ledger.RecordLoss(ctx, tx, bet); err != nil {
				return fmt.Errorf("record loss %s: %w", bet.ID, err)
			}
			if err := tx.Bets().MarkSettled(ctx, bet.ID, domain.BetStatusLost, now); err != nil {
				return fmt.Errorf("settle losing bet %s: %w", bet.ID, err)
			}
		}

		if err := tx.Events().MarkFinished(ctx, eventID, winningSelection, now); err != nil {
			return fmt.Errorf("finish event: %w", err)
		}

		houseAfter, err := tx.House().Get(ctx)
		if err != nil {
			return fmt.Errorf("read house: %w", err)
		}

		report = &domain.SettlementReport{
			EventID:        eventID,
			Winner:         winningSelection,
			Winners:        len(winners),
			Losers:         len(losers),
			TotalPayout:    totalPayout,
			BankrollBefore: bankrollBefore,
			BankrollAfter:  houseAfter.Balance,
			ProfitAfter:    houseAfter.Profit(),
		}

		if err := tx.Outbox().Insert(ctx, domain.NewEventSettledEvent(report)); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("event settled",
		"event_id", eventID,
		"winner", winningSelection,
		"winners", report.Winners,
		"losers", report.Losers,
		"total_payout", report.TotalPayout,
		"bankroll_after", report.BankrollAfter,
		"profit_after", report.ProfitAfter,
	)
	return report, nil
}
