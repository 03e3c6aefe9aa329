// Package memory implements repository.Store with mutex-serialized in-process
// maps. It backs the engine unit tests and is the reference implementation of
// the record-store contract: single-record operations are atomic, and
// WithinTx provides all-or-nothing multi-record transactions by mutating a
// cloned snapshot that is swapped in only on success.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/repository"
	"github.com/google/uuid"
)

// Store is an in-memory repository.Store. The single mutex serializes every
// operation, which trivially satisfies the per-wallet and house-bankroll
// serialization requirements for a single process.
type Store struct {
	mu sync.Mutex
	d  *data
}

type data struct {
	wallets map[uuid.UUID]*domain.Wallet
	house   domain.House
	bets    map[uuid.UUID]*domain.Bet
	events  map[uuid.UUID]*domain.Event
	entries []domain.LedgerEntry
	byKey   map[domain.IdempotencyKey]int
	outbox  []domain.OutboxDraft
}

// New returns an empty store with a zero-balance house bankroll.
func New() *Store {
	return &Store{d: newData()}
}

func newData() *data {
	return &data{
		wallets: make(map[uuid.UUID]*domain.Wallet),
		house:   domain.House{UpdatedAt: time.Now().UTC()},
		bets:    make(map[uuid.UUID]*domain.Bet),
		events:  make(map[uuid.UUID]*domain.Event),
		byKey:   make(map[domain.IdempotencyKey]int),
	}
}

func (d *data) clone() *data {
	c := newData()
	for id, w := range d.wallets {
		cw := *w
		c.wallets[id] = &cw
	}
	c.house = d.house
	for id, b := range d.bets {
		cb := *b
		c.bets[id] = &cb
	}
	for id, e := range d.events {
		ce := *e
		ce.Selections = append([]domain.Selection(nil), e.Selections...)
		c.events[id] = &ce
	}
	c.entries = append([]domain.LedgerEntry(nil), d.entries...)
	for k, i := range d.byKey {
		c.byKey[k] = i
	}
	c.outbox = append([]domain.OutboxDraft(nil), d.outbox...)
	return c
}

func (s *Store) Wallets() repository.WalletRepository { return walletRepo{s: s} }
func (s *Store) House() repository.HouseRepository    { return houseRepo{s: s} }
func (s *Store) Bets() repository.BetRepository       { return betRepo{s: s} }
func (s *Store) Events() repository.EventRepository   { return eventRepo{s: s} }
func (s *Store) Entries() repository.EntryRepository  { return entryRepo{s: s} }
func (s *Store) Outbox() repository.OutboxRepository  { return outboxRepo{s: s} }

// WithinTx runs fn against a cloned snapshot under the store lock. The clone
// replaces the live data only when fn succeeds, so a failed transaction
// leaves no partial state behind.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.d.clone()
	if err := fn(ctx, &txStore{d: work}); err != nil {
		return err
	}
	s.d = work
	return nil
}

// PendingOutbox returns the accumulated outbox drafts. Test helper.
func (s *Store) PendingOutbox() []domain.OutboxDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OutboxDraft(nil), s.d.outbox...)
}

// do runs op with the store lock held.
func (s *Store) do(op func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(s.d)
}

// txStore is the transactional view handed to WithinTx callbacks. The store
// lock is already held, so its repositories touch the working data directly.
type txStore struct {
	d *data
}

func (t *txStore) Wallets() repository.WalletRepository { return walletRepo{t: t} }
func (t *txStore) House() repository.HouseRepository    { return houseRepo{t: t} }
func (t *txStore) Bets() repository.BetRepository       { return betRepo{t: t} }
func (t *txStore) Events() repository.EventRepository   { return eventRepo{t: t} }
func (t *txStore) Entries() repository.EntryRepository  { return entryRepo{t: t} }
func (t *txStore) Outbox() repository.OutboxRepository  { return outboxRepo{t: t} }

func (t *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	return fmt.Errorf("nested transactions are not supported")
}

// access dispatches an op either directly (inside a transaction) or under
// the store lock (standalone call).
type access struct {
	s *Store
	t *txStore
}

func (a access) do(op func(d *data) error) error {
	if a.t != nil {
		return op(a.t.d)
	}
	return a.s.do(op)
}

// --- wallets ---

type walletRepo access

func (r walletRepo) Find(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := access(r).do(func(d *data) error {
		if w, ok := d.wallets[userID]; ok {
			cw := *w
			out = &cw
		}
		return nil
	})
	return out, err
}

func (r walletRepo) LockForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	// The store mutex is the lock.
	return r.Find(ctx, userID)
}

func (r walletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	return access(r).do(func(d *data) error {
		if _, ok := d.wallets[wallet.UserID]; ok {
			return fmt.Errorf("wallet %s already exists", wallet.UserID)
		}
		cw := *wallet
		d.wallets[wallet.UserID] = &cw
		return nil
	})
}

func (r walletRepo) ApplyDelta(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := access(r).do(func(d *data) error {
		w, ok := d.wallets[userID]
		if !ok {
			return fmt.Errorf("wallet %s not found", userID)
		}
		w.Balance += delta
		w.UpdatedAt = time.Now().UTC()
		cw := *w
		out = &cw
		return nil
	})
	return out, err
}

func (r walletRepo) ActivateMembership(ctx context.Context, userID uuid.UUID, since time.Time) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := access(r).do(func(d *data) error {
		w, ok := d.wallets[userID]
		if !ok {
			return fmt.Errorf("wallet %s not found", userID)
		}
		w.MembershipActive = true
		if w.MemberSince == nil {
			w.MemberSince = &since
		}
		w.UpdatedAt = time.Now().UTC()
		cw := *w
		out = &cw
		return nil
	})
	return out, err
}

// --- house ---

type houseRepo access

func (r houseRepo) Get(ctx context.Context) (*domain.House, error) {
	var out domain.House
	err := access(r).do(func(d *data) error {
		out = d.house
		return nil
	})
	return &out, err
}

func (r houseRepo) LockForUpdate(ctx context.Context) (*domain.House, error) {
	return r.Get(ctx)
}

func (r houseRepo) Apply(ctx context.Context, delta domain.HouseDelta) (*domain.House, error) {
	var out domain.House
	err := access(r).do(func(d *data) error {
		d.house.Balance += delta.Balance
		d.house.TotalMembershipRevenue += delta.MembershipRevenue
		d.house.TotalBetsReceived += delta.BetsReceived
		d.house.TotalPayouts += delta.Payouts
		d.house.UpdatedAt = time.Now().UTC()
		out = d.house
		return nil
	})
	return &out, err
}

// --- bets ---

type betRepo access

func (r betRepo) Insert(ctx context.Context, bet *domain.Bet) error {
	return access(r).do(func(d *data) error {
		if _, ok := d.bets[bet.ID]; ok {
			return fmt.Errorf("bet %s already exists", bet.ID)
		}
		cb := *bet
		d.bets[bet.ID] = &cb
		return nil
	})
}

func (r betRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	var out *domain.Bet
	err := access(r).do(func(d *data) error {
		if b, ok := d.bets[id]; ok {
			cb := *b
			out = &cb
		}
		return nil
	})
	return out, err
}

func (r betRepo) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Bet, error) {
	return r.collect(func(b *domain.Bet) bool { return b.EventID == eventID }, true)
}

func (r betRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bet, error) {
	return r.collect(func(b *domain.Bet) bool { return b.UserID == userID }, false)
}

func (r betRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Bet, error) {
	return r.collect(func(b *domain.Bet) bool {
		return b.UserID == userID && b.Status == domain.BetStatusActive
	}, false)
}

func (r betRepo) collect(match func(*domain.Bet) bool, ascending bool) ([]domain.Bet, error) {
	var out []domain.Bet
	err := access(r).do(func(d *data) error {
		for _, b := range d.bets {
			if match(b) {
				out = append(out, *b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r betRepo) MarkSettled(ctx context.Context, id uuid.UUID, outcome domain.BetStatus, settledAt time.Time) error {
	return access(r).do(func(d *data) error {
		b, ok := d.bets[id]
		if !ok {
			return domain.ErrNotFound("bet", id.String())
		}
		if b.Status != domain.BetStatusActive {
			return domain.ErrAlreadySettled(id.String())
		}
		b.Status = outcome
		at := settledAt
		b.SettledAt = &at
		return nil
	})
}

// --- events ---

type eventRepo access

func (r eventRepo) Insert(ctx context.Context, event *domain.Event) error {
	return access(r).do(func(d *data) error {
		if _, ok := d.events[event.ID]; ok {
			return fmt.Errorf("event %s already exists", event.ID)
		}
		ce := *event
		ce.Selections = append([]domain.Selection(nil), event.Selections...)
		d.events[event.ID] = &ce
		return nil
	})
}

func (r eventRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var out *domain.Event
	err := access(r).do(func(d *data) error {
		if e, ok := d.events[id]; ok {
			ce := *e
			ce.Selections = append([]domain.Selection(nil), e.Selections...)
			out = &ce
		}
		return nil
	})
	return out, err
}

func (r eventRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return r.FindByID(ctx, id)
}

func (r eventRepo) ListOpen(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	err := access(r).do(func(d *data) error {
		for _, e := range d.events {
			if e.Status == domain.EventStatusUpcoming {
				ce := *e
				ce.Selections = append([]domain.Selection(nil), e.Selections...)
				out = append(out, ce)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r eventRepo) MarkFinished(ctx context.Context, id uuid.UUID, winner string, settledAt time.Time) error {
	return access(r).do(func(d *data) error {
		e, ok := d.events[id]
		if !ok {
			return domain.ErrNotFound("event", id.String())
		}
		if e.Status == domain.EventStatusFinished {
			return domain.ErrEventAlreadySettled(id.String())
		}
		w := winner
		at := settledAt
		e.Status = domain.EventStatusFinished
		e.Winner = &w
		e.SettledAt = &at
		return nil
	})
}

// --- ledger entries ---

type entryRepo access

func (r entryRepo) FindExisting(ctx context.Context, key domain.IdempotencyKey) (*domain.LedgerEntry, error) {
	var out *domain.LedgerEntry
	err := access(r).do(func(d *data) error {
		if i, ok := d.byKey[key]; ok {
			ce := d.entries[i]
			out = &ce
		}
		return nil
	})
	return out, err
}

func (r entryRepo) Insert(ctx context.Context, entry *domain.LedgerEntry) error {
	return access(r).do(func(d *data) error {
		if entry.BetID != nil {
			if _, ok := d.bets[*entry.BetID]; !ok {
				return fmt.Errorf("ledger entry references unknown bet %s", *entry.BetID)
			}
		}
		if entry.UserID != nil && entry.ExternalID != nil {
			key := domain.IdempotencyKey{UserID: *entry.UserID, ExternalID: *entry.ExternalID}
			if _, ok := d.byKey[key]; ok {
				return fmt.Errorf("duplicate ledger entry for key %v", key)
			}
			d.byKey[key] = len(d.entries)
		}
		d.entries = append(d.entries, *entry)
		return nil
	})
}

func (r entryRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := access(r).do(func(d *data) error {
		for i := len(d.entries) - 1; i >= 0 && len(out) < limit; i-- {
			e := d.entries[i]
			if e.UserID != nil && *e.UserID == userID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

// --- outbox ---

type outboxRepo access

func (r outboxRepo) Insert(ctx context.Context, draft domain.OutboxDraft) error {
	return access(r).do(func(d *data) error {
		d.outbox = append(d.outbox, draft)
		return nil
	})
}
