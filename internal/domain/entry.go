package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryType enumerates the kinds of ledger entries.
type EntryType string

const (
	EntryMembershipFee  EntryType = "membership_fee"
	EntryDeposit        EntryType = "wallet_deposit"
	EntryBet            EntryType = "bet"
	EntryWin            EntryType = "win"
	EntrySettlementLoss EntryType = "settlement_loss"
)

// LedgerEntry is an append-only record of a balance mutation, with the
// post-update wallet and house balances snapshotted for audit.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"` // nil for house-only entries
	Type        EntryType       `json:"type"`
	Amount      int64           `json:"amount"`
	WalletAfter *int64          `json:"wallet_after,omitempty"`
	HouseAfter  int64           `json:"house_after"`
	ExternalID  *string         `json:"external_id,omitempty"` // payment-layer idempotency key
	BetID       *uuid.UUID      `json:"bet_id,omitempty"`
	EventID     *uuid.UUID      `json:"event_id,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IdempotencyKey is the composite key used to deduplicate redelivered
// credit events from the payment layer.
type IdempotencyKey struct {
	UserID     uuid.UUID
	ExternalID string
}

// PostEntryParams is the input to the atomic postEntry primitive.
type PostEntryParams struct {
	UserID      *uuid.UUID
	Type        EntryType
	Amount      int64
	WalletDelta int64 // applied to UserID's wallet when non-zero
	HouseDelta  HouseDelta
	ExternalID  *string
	BetID       *uuid.UUID
	EventID     *uuid.UUID
	Metadata    json.RawMessage
}
