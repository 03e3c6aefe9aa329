package repository

import (
	"context"
	"fmt"

	"github.com/clubstake/platform/internal/domain"
)

type outboxRepo struct {
	db DBTX
}

// Insert writes an outbox event inside the caller's transaction, so the
// event is durable iff the state change it describes committed.
func (r *outboxRepo) Insert(ctx context.Context, draft domain.OutboxDraft) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_outbox (event_id, aggregate_type, aggregate_id, event_type, partition_key, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.PartitionKey,
		draft.Payload,
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}
