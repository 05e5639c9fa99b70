package postgres

import (
	"context"
	"fmt"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/domain/registration"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/jackc/pgx/v5"
)

const regColumns = `user_id, event_id, status, event_title, event_date, registered_at`

func scanRegistration(row pgx.Row, r *registration.Registration) error {
	return row.Scan(&r.UserID, &r.EventID, &r.Status, &r.EventTitle, &r.EventDate, &r.RegisteredAt)
}

func (s *Store) GetRegistration(ctx context.Context, userID, eventID string) (registration.Registration, error) {
	const op = "store.get_registration"
	var r registration.Registration

	err := s.withRetry(ctx, op, func() error {
		row := s.pool.QueryRow(ctx, fmt.Sprintf(`
			SELECT %s FROM %s WHERE user_id = $1 AND event_id = $2
		`, regColumns, s.tables.Registrations), userID, eventID)
		return scanRegistration(row, &r)
	})
	if err != nil {
		if isNoRows(err) {
			return registration.Registration{}, store.NotFound(op)
		}
		return registration.Registration{}, err
	}
	return r, nil
}

func (s *Store) queryRegistrations(ctx context.Context, op, whereCol, key string) ([]registration.Registration, error) {
	var out []registration.Registration
	err := s.withRetry(ctx, op, func() error {
		rows, err := s.pool.Query(ctx, fmt.Sprintf(`
			SELECT %s FROM %s WHERE %s = $1 ORDER BY registered_at ASC
		`, regColumns, s.tables.Registrations, whereCol), key)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]registration.Registration, 0)
		for rows.Next() {
			var r registration.Registration
			if err := scanRegistration(rows, &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) QueryRegistrationsByUser(ctx context.Context, userID string) ([]registration.Registration, error) {
	return s.queryRegistrations(ctx, "store.query_registrations_by_user", "user_id", userID)
}

// QueryRegistrationsByEvent relies on the secondary index over event_id
// (spec §6: registrations are queried both by user and by event).
func (s *Store) QueryRegistrationsByEvent(ctx context.Context, eventID string) ([]registration.Registration, error) {
	return s.queryRegistrations(ctx, "store.query_registrations_by_event", "event_id", eventID)
}

func (s *Store) TxRegisterConfirmed(ctx context.Context, userID, eventID string, reg registration.Registration) (event.Event, error) {
	const op = "store.tx_register_confirmed"
	var e event.Event

	err := s.withRetry(ctx, op, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (user_id, event_id, status, event_title, event_date, registered_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (user_id, event_id) DO NOTHING
		`, s.tables.Registrations),
			reg.UserID, reg.EventID, reg.Status, reg.EventTitle, reg.EventDate, reg.RegisteredAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ConditionFailed(op)
		}

		row := tx.QueryRow(ctx, fmt.Sprintf(`
			UPDATE %s SET registered_count = registered_count + 1, updated_at = NOW()
			WHERE event_id = $1 AND registered_count < capacity
			RETURNING %s
		`, s.tables.Events, eventColumns), eventID)
		if err := scanEvent(row, &e); err != nil {
			if isNoRows(err) {
				return store.ConditionFailed(op)
			}
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) TxRegisterWaitlist(ctx context.Context, userID, eventID string, reg registration.Registration) (event.Event, error) {
	const op = "store.tx_register_waitlist"
	var e event.Event

	err := s.withRetry(ctx, op, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (user_id, event_id, status, event_title, event_date, registered_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (user_id, event_id) DO NOTHING
		`, s.tables.Registrations),
			reg.UserID, reg.EventID, reg.Status, reg.EventTitle, reg.EventDate, reg.RegisteredAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ConditionFailed(op)
		}

		row := tx.QueryRow(ctx, fmt.Sprintf(`
			UPDATE %s SET waitlist = array_append(waitlist, $2::text), updated_at = NOW()
			WHERE event_id = $1
				AND registered_count = capacity
				AND waitlist_enabled
				AND NOT ($2 = ANY(waitlist))
				AND array_length(waitlist, 1) IS DISTINCT FROM %d
			RETURNING %s
		`, s.tables.Events, event.MaxWaitlistLen, eventColumns), eventID, userID)
		if err := scanEvent(row, &e); err != nil {
			if isNoRows(err) {
				return store.ConditionFailed(op)
			}
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) TxUnregisterConfirmed(ctx context.Context, userID, eventID string) (event.Event, error) {
	const op = "store.tx_unregister_confirmed"
	var e event.Event

	err := s.withRetry(ctx, op, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE user_id = $1 AND event_id = $2 AND status = $3
		`, s.tables.Registrations), userID, eventID, registration.StatusConfirmed)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ConditionFailed(op)
		}

		row := tx.QueryRow(ctx, fmt.Sprintf(`
			UPDATE %s SET registered_count = registered_count - 1, updated_at = NOW()
			WHERE event_id = $1 AND registered_count > 0
			RETURNING %s
		`, s.tables.Events, eventColumns), eventID)
		if err := scanEvent(row, &e); err != nil {
			if isNoRows(err) {
				return store.ConditionFailed(op)
			}
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

// TxUnregisterWaitlist removes the waitlisted registration and its waitlist
// entry together. array_remove drops every matching element while
// preserving the relative order of what remains, which is what keeps the
// waitlist FIFO-consistent (spec invariant on waitlist ordering).
func (s *Store) TxUnregisterWaitlist(ctx context.Context, userID, eventID string) (event.Event, error) {
	const op = "store.tx_unregister_waitlist"
	var e event.Event

	err := s.withRetry(ctx, op, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE user_id = $1 AND event_id = $2 AND status = $3
		`, s.tables.Registrations), userID, eventID, registration.StatusWaitlist)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ConditionFailed(op)
		}

		row := tx.QueryRow(ctx, fmt.Sprintf(`
			UPDATE %s SET waitlist = array_remove(waitlist, $2::text), updated_at = NOW()
			WHERE event_id = $1
			RETURNING %s
		`, s.tables.Events, eventColumns), eventID, userID)
		if err := scanEvent(row, &e); err != nil {
			if isNoRows(err) {
				return store.ConditionFailed(op)
			}
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

// TxPromoteHead pops Waitlist[0] (condition: it still equals userID) and
// flips that user's registration to confirmed, in one transaction.
// Promotion is the same capacity transition as a fresh confirm, so it
// re-increments RegisteredCount back to capacity: the preceding unregister
// only freed the slot, it did not spend it (spec invariant §3.1,
// registeredCount = |confirmed|).
func (s *Store) TxPromoteHead(ctx context.Context, eventID, userID string) error {
	const op = "store.tx_promote_head"

	return s.withRetry(ctx, op, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			UPDATE %s
			SET waitlist = waitlist[2:array_length(waitlist,1)],
				registered_count = registered_count + 1,
				updated_at = NOW()
			WHERE event_id = $1
				AND array_length(waitlist, 1) > 0
				AND waitlist[1] = $2
				AND registered_count < capacity
		`, s.tables.Events), eventID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.ConditionFailed(op)
		}

		regTag, err := tx.Exec(ctx, fmt.Sprintf(`
			UPDATE %s SET status = $3
			WHERE user_id = $1 AND event_id = $2 AND status = $4
		`, s.tables.Registrations), userID, eventID, registration.StatusConfirmed, registration.StatusWaitlist)
		if err != nil {
			return err
		}
		if regTag.RowsAffected() == 0 {
			return store.ErrPromotionTargetGone
		}

		return tx.Commit(ctx)
	})
}
