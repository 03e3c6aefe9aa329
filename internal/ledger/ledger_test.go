package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/clubstake/platform/internal/domain"
	"github.com/clubstake/platform/internal/repository"
	"github.com/clubstake/platform/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, logger), store
}

func TestRecordMembershipFee(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	result, err := engine.RecordMembershipFee(ctx, domain.MembershipFeeParams{
		UserID:     userID,
		Amount:     1_000,
		ExternalID: "fee-1",
	})
	require.NoError(t, err)
	require.False(t, result.Idempotent)

	assert.Equal(t, domain.EntryMembershipFee, result.Entry.Type)
	assert.Equal(t, int64(1_000), result.Entry.Amount)
	assert.Equal(t, int64(1_000), result.Entry.HouseAfter)

	// The fee never touches the wallet balance.
	assert.Equal(t, int64(0), result.Wallet.Balance)
	assert.True(t, result.Wallet.MembershipActive)
	require.NotNil(t, result.Wallet.MemberSince)

	assert.Equal(t, int64(1_000), result.House.Balance)
	assert.Equal(t, int64(1_000), result.House.TotalMembershipRevenue)
	assert.Equal(t, int64(1_000), result.House.Profit())

	drafts := store.PendingOutbox()
	require.Len(t, drafts, 1)
	assert.Equal(t, domain.EventEntryPosted, drafts[0].EventType)
}

func TestRecordMembershipFee_DuplicateExternalID(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	params := domain.MembershipFeeParams{UserID: userID, Amount: 1_000, ExternalID: "fee-1"}

	first, err := engine.RecordMembershipFee(ctx, params)
	require.NoError(t, err)

	second, err := engine.RecordMembershipFee(ctx, params)
	require.NoError(t, err)
	assert.True(t, second.Idempotent)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)

	// The fee was applied exactly once.
	snap, err := engine.HouseSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), snap.Balance)
	assert.Equal(t, int64(1_000), snap.TotalMembershipRevenue)
}

func TestRecordDeposit(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	result, err := engine.RecordDeposit(ctx, domain.CreditParams{
		UserID:     userID,
		Amount:     5_000,
		ExternalID: "dep-1",
	})
	require.NoError(t, err)
	require.False(t, result.Idempotent)

	assert.Equal(t, domain.EntryDeposit, result.Entry.Type)
	assert.Equal(t, int64(5_000), result.Wallet.Balance)
	require.NotNil(t, result.Entry.WalletAfter)
	assert.Equal(t, int64(5_000), *result.Entry.WalletAfter)

	// Deposits do not move the bankroll.
	assert.Equal(t, int64(0), result.House.Balance)

	balance, err := engine.WalletBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), balance)
}

func TestRecordDeposit_DuplicateExternalID(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	params := domain.CreditParams{UserID: userID, Amount: 5_000, ExternalID: "dep-1"}

	_, err := engine.RecordDeposit(ctx, params)
	require.NoError(t, err)

	second, err := engine.RecordDeposit(ctx, params)
	require.NoError(t, err)
	assert.True(t, second.Idempotent)

	balance, err := engine.WalletBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), balance)
}

func TestRecordDeposit_RejectsNonPositive(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -100} {
		_, err := engine.RecordDeposit(ctx, domain.CreditParams{UserID: uuid.New(), Amount: amount})
		assert.True(t, domain.IsCode(err, domain.CodeValidation), "amount %d", amount)
	}
}

func TestStakeForBet(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := engine.RecordDeposit(ctx, domain.CreditParams{UserID: userID, Amount: 5_000, ExternalID: "dep-1"})
	require.NoError(t, err)

	bet := domain.NewBet(userID, uuid.New(), "home", 2_000, 200)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.House().LockForUpdate(ctx); err != nil {
			return err
		}
		// The bet row must exist before the entry that references it.
		if err := tx.Bets().Insert(ctx, bet); err != nil {
			return err
		}
		_, err := engine.StakeForBet(ctx, tx, bet)
		return err
	})
	require.NoError(t, err)

	balance, err := engine.WalletBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3_000), balance)

	snap, err := engine.HouseSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000), snap.Balance)
	assert.Equal(t, int64(2_000), snap.TotalBetsReceived)
	// The stake is not profit until the bet loses.
	assert.Equal(t, int64(2_000), snap.Profit)
}

func TestStakeForBet_InsufficientFunds(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := engine.RecordDeposit(ctx, domain.CreditParams{UserID: userID, Amount: 1_000, ExternalID: "dep-1"})
	require.NoError(t, err)

	bet := domain.NewBet(userID, uuid.New(), "home", 2_000, 200)

	err = store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.House().LockForUpdate(ctx); err != nil {
			return err
		}
		if err := tx.Bets().Insert(ctx, bet); err != nil {
			return err
		}
		_, err := engine.StakeForBet(ctx, tx, bet)
		return err
	})
	assert.True(t, domain.IsCode(err, domain.CodeInsufficientFunds))

	// The failed transaction left nothing behind.
	balance, err := engine.WalletBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), balance)

	snap, err := engine.HouseSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Balance)
}

func TestWalletBalance_UnknownUser(t *testing.T) {
	engine, _ := newTestEngine(t)

	balance, err := engine.WalletBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestMaxStake_Query(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	// Build a 100_00 bankroll from ten fees.
	for i := 0; i < 10; i++ {
		_, err := engine.RecordMembershipFee(ctx, domain.MembershipFeeParams{
			UserID: uuid.New(),
			Amount: 1_000,
		})
		require.NoError(t, err)
	}

	maxStake, err := engine.MaxStake(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), maxStake)

	_, err = engine.MaxStake(ctx, 100)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestStatement(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := engine.RecordMembershipFee(ctx, domain.MembershipFeeParams{UserID: userID, Amount: 1_000, ExternalID: "fee-1"})
	require.NoError(t, err)
	_, err = engine.RecordDeposit(ctx, domain.CreditParams{UserID: userID, Amount: 5_000, ExternalID: "dep-1"})
	require.NoError(t, err)

	entries, err := engine.Statement(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, domain.EntryDeposit, entries[0].Type)
	assert.Equal(t, domain.EntryMembershipFee, entries[1].Type)

	entries, err = engine.Statement(ctx, userID, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
