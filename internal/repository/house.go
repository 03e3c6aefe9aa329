package repository

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/infra"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type houseRepo struct {
	db DBTX
}

const houseColumns = `balance, total_membership_revenue, total_bets_received, total_payouts, updated_at`

func (r *houseRepo) Get(ctx context.Context) (*domain.House, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+houseColumns+`
		FROM house_bankroll WHERE id = 1`)
	return scanHouse(row)
}

// LockForUpdate takes the row lock on the single bankroll row. Every
// bankroll check-then-act sequence, admission and settlement alike, runs
// behind this lock.
func (r *houseRepo) LockForUpdate(ctx context.Context) (*domain.House, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+houseColumns+`
		FROM house_bankroll WHERE id = 1 FOR UPDATE`)
	return scanHouse(row)
}

func (r *houseRepo) Apply(ctx context.Context, delta domain.HouseDelta) (*domain.House, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE house_bankroll SET
			balance = balance + $1,
			total_membership_revenue = total_membership_revenue + $2,
			total_bets_received = total_bets_received + $3,
			total_payouts = total_payouts + $4,
			updated_at = now()
		WHERE id = 1
		RETURNING `+houseColumns,
		infra.Int64ToNumeric(delta.Balance),
		infra.Int64ToNumeric(delta.MembershipRevenue),
		infra.Int64ToNumeric(delta.BetsReceived),
		infra.Int64ToNumeric(delta.Payouts),
	)
	return scanHouse(row)
}

func scanHouse(row pgx.Row) (*domain.House, error) {
	var h domain.House
	var balNum, memberNum, receivedNum, payoutNum pgtype.Numeric
	err := row.Scan(&balNum, &memberNum, &receivedNum, &payoutNum, &h.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("house bankroll row missing; run migrations")
		}
		return nil, fmt.Errorf("scan house: %w", err)
	}

	var convErr error
	if h.Balance, convErr = infra.NumericToInt64(balNum); convErr != nil {
		return nil, fmt.Errorf("convert balance: %w", convErr)
	}
	if h.TotalMembershipRevenue, convErr = infra.NumericToInt64(memberNum); convErr != nil {
		return nil, fmt.Errorf("convert membership revenue: %w", convErr)
	}
	if h.TotalBetsReceived, convErr = infra.NumericToInt64(receivedNum); convErr != nil {
		return nil, fmt.Errorf("convert bets received: %w", convErr)
	}
	if h.TotalPayouts, convErr = infra.NumericToInt64(payoutNum); convErr != nil {
		return nil, fmt.Errorf("convert payouts: %w", convErr)
	}
	return &h, nil
}
