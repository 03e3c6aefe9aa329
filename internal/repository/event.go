package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clubstake/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type eventRepo struct {
	db DBTX
}

const eventColumns = `id, name, status, selections, winner, created_at, settled_at`

func (r *eventRepo) Insert(ctx context.Context, event *domain.Event) error {
	selections, err := json.Marshal(event.Selections)
	if err != nil {
		return fmt.Errorf("marshal selections: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO events (id, name, status, selections, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.Name, string(event.Status), selections, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// LockForUpdate serializes admission against settlement of the same event:
// settlement holds this lock while it flips the status, so a concurrent
// placement waits and then observes the event closed.
func (r *eventRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
	return scanEvent(row)
}

func (r *eventRepo) ListOpen(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+` FROM events WHERE status = 'upcoming' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query open events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *eventRepo) MarkFinished(ctx context.Context, id uuid.UUID, winner string, settledAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE events SET status = 'finished', winner = $2, settled_at = $3
		WHERE id = $1 AND status <> 'finished'`,
		id, winner, settledAt)
	if err != nil {
		return fmt.Errorf("mark event finished: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventAlreadySettled(id.String())
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var status string
	var selections []byte
	err := row.Scan(&e.ID, &e.Name, &status, &selections, &e.Winner, &e.CreatedAt, &e.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Status = domain.EventStatus(status)
	if err := json.Unmarshal(selections, &e.Selections); err != nil {
		return nil, fmt.Errorf("unmarshal selections: %w", err)
	}
	return &e, nil
}
