package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet represents a user's spendable balance (integer cents, numeric(15,0)).
// Wallets are created lazily on first credit or bet and never deleted.
type Wallet struct {
	UserID           uuid.UUID  `json:"user_id"`
	Balance          int64      `json:"balance"`
	MembershipActive bool       `json:"membership_active"`
	MemberSince      *time.Time `json:"member_since,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewWallet returns a zero-balance wallet for a first-seen user.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// CreditParams holds the input for a deposit credit.
type CreditParams struct {
	UserID     uuid.UUID
	Amount     int64
	ExternalID string // idempotency key supplied by the payment layer
}

// MembershipFeeParams holds the input for a membership fee credit.
type MembershipFeeParams struct {
	UserID     uuid.UUID
	Amount     int64
	ExternalID string // idempotency key supplied by the payment layer
}

// CommandResult is the return value of the ledger commands.
type CommandResult struct {
	Entry      *LedgerEntry
	Wallet     *Wallet
	House      *House
	Idempotent bool // true if this was a duplicate that returned the existing entry
}
