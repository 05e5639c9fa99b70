package postgres

import (
	"context"
	"fmt"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/jackc/pgx/v5"
)

func (s *Store) PutEvent(ctx context.Context, e event.Event) error {
	const op = "store.put_event"
	return s.withRetry(ctx, op, func() error {
		_, err := s.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (
				event_id, title, description, location, organizer, status, date,
				capacity, registered_count, waitlist_enabled, waitlist,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		`, s.tables.Events),
			e.ID, e.Title, e.Description, e.Location, e.Organizer, e.Status, e.Date,
			e.Capacity, e.RegisteredCount, e.WaitlistEnabled, e.Waitlist,
			e.CreatedAt, e.UpdatedAt,
		)
		return err
	})
}

func scanEvent(row pgx.Row, e *event.Event) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Organizer, &e.Status, &e.Date,
		&e.Capacity, &e.RegisteredCount, &e.WaitlistEnabled, &e.Waitlist,
		&e.CreatedAt, &e.UpdatedAt,
	)
}

const eventColumns = `event_id, title, description, location, organizer, status, date,
	capacity, registered_count, waitlist_enabled, waitlist, created_at, updated_at`

func (s *Store) GetEvent(ctx context.Context, eventID string) (event.Event, error) {
	const op = "store.get_event"
	var e event.Event

	err := s.withRetry(ctx, op, func() error {
		row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE event_id = $1`, eventColumns, s.tables.Events), eventID)
		return scanEvent(row, &e)
	})
	if err != nil {
		if isNoRows(err) {
			return event.Event{}, store.NotFound(op)
		}
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context, filter event.ListFilter) ([]event.Event, error) {
	const op = "store.list_events"
	var out []event.Event

	err := s.withRetry(ctx, op, func() error {
		query := fmt.Sprintf(`SELECT %s FROM %s`, eventColumns, s.tables.Events)
		args := []interface{}{}
		if filter.Status != nil {
			query += ` WHERE status = $1`
			args = append(args, *filter.Status)
		}

		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]event.Event, 0)
		for rows.Next() {
			var e event.Event
			if err := scanEvent(rows, &e); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateEventOpaque(ctx context.Context, eventID string, patch event.OpaquePatch) (event.Event, error) {
	const op = "store.update_event_opaque"
	var e event.Event

	err := s.withRetry(ctx, op, func() error {
		row := s.pool.QueryRow(ctx, fmt.Sprintf(`
			UPDATE %s SET
				title       = COALESCE($2, title),
				description = COALESCE($3, description),
				location    = COALESCE($4, location),
				organizer   = COALESCE($5, organizer),
				status      = COALESCE($6, status),
				date        = COALESCE($7, date),
				updated_at  = NOW()
			WHERE event_id = $1
			RETURNING %s
		`, s.tables.Events, eventColumns),
			eventID, patch.Title, patch.Description, patch.Location, patch.Organizer, patch.Status, patch.Date,
		)
		return scanEvent(row, &e)
	})
	if err != nil {
		if isNoRows(err) {
			return event.Event{}, store.NotFound(op)
		}
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, eventID string) error {
	const op = "store.delete_event"
	return s.withRetry(ctx, op, func() error {
		tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE event_id = $1`, s.tables.Events), eventID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.NotFound(op)
		}
		return nil
	})
}
