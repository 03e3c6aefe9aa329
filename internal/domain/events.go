package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEventType enumerates all published domain event types.
type OutboxEventType string

const (
	EventEntryPosted         OutboxEventType = "house.ledger.entry.posted"
	EventBetPlaced           OutboxEventType = "house.bet.placed"
	EventEventSettled        OutboxEventType = "house.event.settled"
	EventMembershipActivated OutboxEventType = "house.membership.activated"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateWallet AggregateType = "wallet"
	AggregateHouse  AggregateType = "house"
	AggregateBet    AggregateType = "bet"
	AggregateEvent  AggregateType = "event"
)

// OutboxDraft is the payload written to the event_outbox table in the same
// transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     OutboxEventType `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEntryPostedEvent builds the outbox event for a posted ledger entry.
func NewEntryPostedEvent(entry *LedgerEntry) OutboxDraft {
	payload, _ := json.Marshal(entry)
	aggregateID := "house"
	partitionKey := "house"
	if entry.UserID != nil {
		aggregateID = entry.UserID.String()
		partitionKey = aggregateID
	}
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   aggregateID,
		EventType:     EventEntryPosted,
		PartitionKey:  partitionKey,
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewBetPlacedEvent builds the outbox event for an admitted bet.
func NewBetPlacedEvent(bet *Bet) OutboxDraft {
	payload, _ := json.Marshal(bet)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBet,
		AggregateID:   bet.ID.String(),
		EventType:     EventBetPlaced,
		PartitionKey:  bet.EventID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewEventSettledEvent builds the outbox event for a completed settlement.
func NewEventSettledEvent(report *SettlementReport) OutboxDraft {
	payload, _ := json.Marshal(report)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateEvent,
		AggregateID:   report.EventID.String(),
		EventType:     EventEventSettled,
		PartitionKey:  report.EventID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}
