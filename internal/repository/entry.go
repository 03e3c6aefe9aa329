package repository

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type entryRepo struct {
	db DBTX
}

const entryColumns = `id, user_id, type, amount, wallet_after, house_after, external_id, bet_id, event_id, metadata, created_at`

func (r *entryRepo) FindExisting(ctx context.Context, key domain.IdempotencyKey) (*domain.LedgerEntry, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries WHERE user_id = $1 AND external_id = $2`,
		key.UserID, key.ExternalID)
	entry, err := scanEntry(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return entry, err
}

func (r *entryRepo) Insert(ctx context.Context, entry *domain.LedgerEntry) error {
	var walletAfter interface{}
	if entry.WalletAfter != nil {
		walletAfter = infra.Int64ToNumeric(*entry.WalletAfter)
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO ledger_entries (id, user_id, type, amount, wallet_after, house_after, external_id, bet_id, event_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.UserID, string(entry.Type),
		infra.Int64ToNumeric(entry.Amount), walletAfter, infra.Int64ToNumeric(entry.HouseAfter),
		entry.ExternalID, entry.BetID, entry.EventID, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *entryRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var typ string
	var amountNum, houseNum pgtype.Numeric
	var walletNum pgtype.Numeric
	err := row.Scan(&e.ID, &e.UserID, &typ, &amountNum, &walletNum, &houseNum,
		&e.ExternalID, &e.BetID, &e.EventID, &e.Metadata, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	e.Type = domain.EntryType(typ)

	var convErr error
	if e.Amount, convErr = infra.NumericToInt64(amountNum); convErr != nil {
		return nil, fmt.Errorf("convert amount: %w", convErr)
	}
	if e.HouseAfter, convErr = infra.NumericToInt64(houseNum); convErr != nil {
		return nil, fmt.Errorf("convert house_after: %w", convErr)
	}
	if walletNum.Valid {
		after, convErr := infra.NumericToInt64(walletNum)
		if convErr != nil {
			return nil, fmt.Errorf("convert wallet_after: %w", convErr)
		}
		e.WalletAfter = &after
	}
	return &e, nil
}
