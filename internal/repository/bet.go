package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type betRepo struct {
	db DBTX
}

const betColumns = `id, user_id, event_id, selection, amount, odds, potential_win, status, created_at, settled_at`

func (r *betRepo) Insert(ctx context.Context, bet *domain.Bet) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bets (id, user_id, event_id, selection, amount, odds, potential_win, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		bet.ID, bet.UserID, bet.EventID, bet.Selection,
		infra.Int64ToNumeric(bet.Amount), bet.Odds, infra.Int64ToNumeric(bet.PotentialWin),
		string(bet.Status), bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

func (r *betRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id)
	bet, err := scanBet(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return bet, err
}

func (r *betRepo) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Bet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+betColumns+` FROM bets WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query bets by event: %w", err)
	}
	return collectBets(rows)
}

func (r *betRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+betColumns+` FROM bets WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query bets by user: %w", err)
	}
	return collectBets(rows)
}

func (r *betRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+betColumns+` FROM bets WHERE user_id = $1 AND status = 'active' ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query active bets: %w", err)
	}
	return collectBets(rows)
}

// MarkSettled is idempotency-guarded: the status predicate makes a second
// settlement of the same bet a no-op, surfaced as AlreadySettled.
func (r *betRepo) MarkSettled(ctx context.Context, id uuid.UUID, outcome domain.BetStatus, settledAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bets SET status = $2, settled_at = $3
		WHERE id = $1 AND status = 'active'`,
		id, string(outcome), settledAt)
	if err != nil {
		return fmt.Errorf("mark bet settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound("bet", id.String())
		}
		return domain.ErrAlreadySettled(id.String())
	}
	return nil
}

func scanBet(row pgx.Row) (*domain.Bet, error) {
	var b domain.Bet
	var amountNum, winNum pgtype.Numeric
	var status string
	err := row.Scan(&b.ID, &b.UserID, &b.EventID, &b.Selection, &amountNum, &b.Odds, &winNum, &status, &b.CreatedAt, &b.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan bet: %w", err)
	}
	b.Status = domain.BetStatus(status)

	var convErr error
	if b.Amount, convErr = infra.NumericToInt64(amountNum); convErr != nil {
		return nil, fmt.Errorf("convert amount: %w", convErr)
	}
	if b.PotentialWin, convErr = infra.NumericToInt64(winNum); convErr != nil {
		return nil, fmt.Errorf("convert potential win: %w", convErr)
	}
	return &b, nil
}

func collectBets(rows pgx.Rows) ([]domain.Bet, error) {
	defer rows.Close()
	var bets []domain.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, *bet)
	}
	return bets, rows.Err()
}
