// Package postgres backs internal/store.Store with Postgres via pgx,
// standing in for the "key-value store supporting conditional put,
// conditional update, and multi-item ACID transactions" spec §4.1 asks
// for (see DESIGN.md for why no dedicated KV client was grounded in the
// pack). Conditional put/update is expressed as INSERT ... ON CONFLICT and
// UPDATE ... WHERE <condition>, checked via rows-affected; multi-item
// transactions are a single pgx.Tx.
package postgres

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/elthrasher/eventreg/internal/observability"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables names the three physical tables backing Users/Events/Registrations.
// Overridable via config so the deployment story still matches spec §6's
// EVENTS_TABLE_NAME / USERS_TABLE_NAME / REGISTRATIONS_TABLE_NAME env vars.
type Tables struct {
	Users         string
	Events        string
	Registrations string
}

func DefaultTables() Tables {
	return Tables{Users: "users", Events: "events", Registrations: "registrations"}
}

type Store struct {
	pool       *pgxpool.Pool
	prom       *observability.Prom
	tables     Tables
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

type Option func(*Store)

func WithProm(p *observability.Prom) Option {
	return func(s *Store) { s.prom = p }
}

func WithTables(t Tables) Option {
	return func(s *Store) { s.tables = t }
}

func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:       pool,
		tables:     DefaultTables(),
		maxRetries: 3,
		baseDelay:  50 * time.Millisecond,
		maxDelay:   400 * time.Millisecond,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}

// withRetry retries fn up to s.maxRetries times on classify-as-transient
// errors with capped exponential backoff and jitter (spec §4.1: "Transient
// is retried internally with capped exponential backoff (e.g., up to 3
// attempts, 50–400ms)"), matching the shape of the teacher's
// queue/worker.ExponentialBackoff helper.
func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		lastErr = s.observe(op, fn)
		if lastErr == nil || !isTransient(lastErr) {
			return lastErr
		}
		if attempt == s.maxRetries {
			break
		}
		delay := backoffDelay(attempt, s.baseDelay, s.maxDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return store.Transient(op, lastErr)
}

func backoffDelay(attempt int, base, capDelay time.Duration) time.Duration {
	d := base << attempt
	if d > capDelay || d <= 0 {
		d = capDelay
	}
	return d/2 + time.Duration(rand.Int63n(int64(d/2+1)))
}

// isTransient classifies connection/timeout-class pgx errors, mirroring the
// teacher's observability/db_metrics.classifyDBErr bucketing.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "57014", "08000", "08003", "08006":
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") || strings.Contains(msg, "connection")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
