package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// pgStore is the Postgres-backed Store. Outside a transaction it runs
// against the pool; WithinTx produces a view bound to a single pgx.Tx.
type pgStore struct {
	pool *pgxpool.Pool // nil inside a transaction
	db   DBTX

	wallets WalletRepository
	house   HouseRepository
	bets    BetRepository
	events  EventRepository
	entries EntryRepository
	outbox  OutboxRepository
}

// NewPostgresStore returns a Store backed by the given pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return newPGStore(pool, pool)
}

func newPGStore(pool *pgxpool.Pool, db DBTX) *pgStore {
	return &pgStore{
		pool:    pool,
		db:      db,
		wallets: &walletRepo{db: db},
		house:   &houseRepo{db: db},
		bets:    &betRepo{db: db},
		events:  &eventRepo{db: db},
		entries: &entryRepo{db: db},
		outbox:  &outboxRepo{db: db},
	}
}

func (s *pgStore) Wallets() WalletRepository { return s.wallets }
func (s *pgStore) House() HouseRepository    { return s.house }
func (s *pgStore) Bets() BetRepository       { return s.bets }
func (s *pgStore) Events() EventRepository   { return s.events }
func (s *pgStore) Entries() EntryRepository  { return s.entries }
func (s *pgStore) Outbox() OutboxRepository  { return s.outbox }

func (s *pgStore) WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	if s.pool == nil {
		return fmt.Errorf("nested transactions are not supported")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newPGStore(nil, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
