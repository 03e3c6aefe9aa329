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

type walletRepo struct {
	db DBTX
}

const walletColumns = `user_id, balance, membership_active, member_since, created_at, updated_at`

func (r *walletRepo) Find(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+walletColumns+`
		FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

func (r *walletRepo) LockForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+walletColumns+`
		FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return scanWallet(row)
}

func (r *walletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallets (user_id, balance, membership_active, member_since, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		wallet.UserID,
		infra.Int64ToNumeric(wallet.Balance),
		wallet.MembershipActive,
		wallet.MemberSince,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// ApplyDelta uses server-side arithmetic so the adjustment composes with the
// row lock taken by LockForUpdate.
func (r *walletRepo) ApplyDelta(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE wallets SET balance = balance + $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+walletColumns, userID, infra.Int64ToNumeric(delta))
	return scanWallet(row)
}

func (r *walletRepo) ActivateMembership(ctx context.Context, userID uuid.UUID, since time.Time) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE wallets SET membership_active = true, member_since = COALESCE(member_since, $2), updated_at = now()
		WHERE user_id = $1
		RETURNING `+walletColumns, userID, since)
	return scanWallet(row)
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	var balNum pgtype.Numeric
	err := row.Scan(&w.UserID, &balNum, &w.MembershipActive, &w.MemberSince, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}

	w.Balance, err = infra.NumericToInt64(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return &w, nil
}
