// Package service composes the admission policy and the ledger engine into
// the betting operations exposed over HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/ledger"
	"github.com/clubstake/platform/internal/policy"
	"github.com/clubstake/platform/internal/repository"
	"github.com/google/uuid"
)

// BettingService handles event management and bet placement.
type BettingService struct {
	store  repository.Store
	engine *ledger.Engine
	logger *slog.Logger
}

// NewBettingService creates a BettingService.
func NewBettingService(store repository.Store, engine *ledger.Engine, logger *slog.Logger) *BettingService {
	return &BettingService{store: store, engine: engine, logger: logger}
}

// PlaceBetResult holds the result of an admitted bet.
type PlaceBetResult struct {
	Bet      *domain.Bet         `json:"bet"`
	Entry    *domain.LedgerEntry `json:"entry"`
	MaxStake int64               `json:"max_stake"`
}

// PlaceBet admits and records a wager as one atomic unit: the admission
// checks, the wallet debit, the bankroll credit, the bet record, and the
// outbox event all commit together or not at all.
//
// Locks are taken in the fixed order event, house, wallet. Locking the event
// row first serializes placement against settlement of the same event, so a
// bet can never slip in after the winner is known.
func (s *BettingService) PlaceBet(ctx context.Context, params domain.PlaceBetParams) (*PlaceBetResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	if params.Selection == "" {
		return nil, domain.ErrValidation("selection is required")
	}

	var result *PlaceBetResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		event, err := tx.Events().LockForUpdate(ctx, params.EventID)
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}

		house, err := tx.House().LockForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("lock house: %w", err)
		}

		wallet, err := tx.Wallets().Find(ctx, params.UserID)
		if err != nil {
			return fmt.Errorf("find wallet: %w", err)
		}

		decision := policy.EvaluateAdmission(params, wallet, event, house)
		if !decision.Allowed {
			return decision.Reject
		}

		bet := domain.NewBet(params.UserID, params.EventID, params.Selection, params.Amount, params.Odds)

		// The bet row goes in before the stake entry that references it;
		// the ledger_entries.bet_id foreign key is checked per statement.
		// A failed debit rolls the row back with the rest of the tx.
		if err := tx.Bets().Insert(ctx, bet); err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}

		entry, err := s.engine.StakeForBet(ctx, tx, bet)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Insert(ctx, domain.NewBetPlacedEvent(bet)); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}

		result = &PlaceBetResult{Bet: bet, Entry: entry, MaxStake: decision.MaxStake}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bet placed",
		"bet_id", result.Bet.ID,
		"user_id", params.UserID,
		"event_id", params.EventID,
		"selection", params.Selection,
		"amount", params.Amount,
		"odds", params.Odds,
		"potential_win", result.Bet.PotentialWin,
	)
	return result, nil
}

// CreateEventParams holds the input for CreateEvent.
type CreateEventParams struct {
	Name       string             `json:"name"`
	Selections []domain.Selection `json:"selections"`
}

// CreateEvent opens a new event for betting.
func (s *BettingService) CreateEvent(ctx context.Context, params CreateEventParams) (*domain.Event, error) {
	if params.Name == "" {
		return nil, domain.ErrValidation("event name is required")
	}
	if err := domain.ValidateSelections(params.Selections); err != nil {
		return nil, err
	}

	event := domain.NewEvent(params.Name, params.Selections)
	if err := s.store.Events().Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	s.logger.Info("event created", "event_id", event.ID, "name", event.Name, "selections", len(event.Selections))
	return event, nil
}

// ListOpenEvents returns events still accepting bets.
func (s *BettingService) ListOpenEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.store.Events().ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event.
func (s *BettingService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	event, err := s.store.Events().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}
	return event, nil
}

// UserBets returns a user's bets, optionally only the unsettled ones.
func (s *BettingService) UserBets(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.Bet, error) {
	var bets []domain.Bet
	var err error
	if activeOnly {
		bets, err = s.store.Bets().FindActiveByUser(ctx, userID)
	} else {
		bets, err = s.store.Bets().FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("find bets: %w", err)
	}
	return bets, nil
}
