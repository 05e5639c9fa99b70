// Package engine is C5, the Registration Engine: the state machine tying
// users, event capacity counters and the waitlist into a consistent state
// under concurrent requests (spec §4.5). It is the sole writer of
// Event.RegisteredCount, Event.Waitlist and every Registration record.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/domain/registration"
	"github.com/elthrasher/eventreg/internal/domain/user"
	"github.com/elthrasher/eventreg/internal/observability"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/elthrasher/eventreg/internal/validate"
)

type Engine struct {
	store      store.Store
	maxRetries int
	logger     *slog.Logger
	prom       *observability.Prom
	metrics    *observability.EngineMetrics
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }
func WithProm(p *observability.Prom) Option {
	return func(e *Engine) { e.prom = p }
}
func WithMetrics(m *observability.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, maxRetries: 5, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) observe(operation, outcome string, retries int) {
	if e.prom != nil {
		e.prom.ObserveEngineOutcome(operation, outcome, retries)
	}
	if e.metrics == nil {
		return
	}
	switch outcome {
	case "confirmed":
		e.metrics.IncConfirmed()
	case "waitlisted":
		e.metrics.IncWaitlisted()
	case "event_full":
		e.metrics.IncEventFull()
	case "contention":
		e.metrics.IncContention()
	case "promoted":
		e.metrics.IncPromoted()
	case "unregistered":
		e.metrics.IncUnregistered()
	}
	e.metrics.ObserveRetries(retries)
}

// Register implements spec §4.5.2: ordered existence/duplicate checks,
// then a bounded optimistic-retry loop deciding confirmed vs. waitlist vs.
// full from a fresh event snapshot every attempt.
func (e *Engine) Register(ctx context.Context, userID, eventID string) (registration.Registration, event.Event, error) {
	if err := validate.UserID(userID); err != nil {
		return registration.Registration{}, event.Event{}, err
	}
	if err := validate.EventID(eventID); err != nil {
		return registration.Registration{}, event.Event{}, err
	}

	if _, err := e.store.GetUser(ctx, userID); err != nil {
		if store.Is(err, store.KindNotFound) {
			return registration.Registration{}, event.Event{}, user.ErrNotFound
		}
		return registration.Registration{}, event.Event{}, err
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		ev, err := e.store.GetEvent(ctx, eventID)
		if err != nil {
			if store.Is(err, store.KindNotFound) {
				return registration.Registration{}, event.Event{}, event.ErrNotFound
			}
			return registration.Registration{}, event.Event{}, err
		}

		if existing, err := e.store.GetRegistration(ctx, userID, eventID); err == nil {
			switch existing.Status {
			case registration.StatusConfirmed:
				return registration.Registration{}, event.Event{}, registration.ErrAlreadyRegistered
			case registration.StatusWaitlist:
				return registration.Registration{}, event.Event{}, registration.ErrAlreadyOnWaitlist
			}
		} else if !store.Is(err, store.KindNotFound) {
			return registration.Registration{}, event.Event{}, err
		}

		switch {
		case ev.RegisteredCount < ev.Capacity:
			reg := registration.New(userID, eventID, registration.StatusConfirmed, ev.Title, ev.Date)
			committed, txErr := e.store.TxRegisterConfirmed(ctx, userID, eventID, reg)
			if txErr == nil {
				e.observe("register", "confirmed", attempt)
				return reg, committed, nil
			}
			if store.Is(txErr, store.KindConditionFailed) {
				continue
			}
			return registration.Registration{}, event.Event{}, txErr

		case ev.WaitlistEnabled:
			reg := registration.New(userID, eventID, registration.StatusWaitlist, ev.Title, ev.Date)
			committed, txErr := e.store.TxRegisterWaitlist(ctx, userID, eventID, reg)
			if txErr == nil {
				e.observe("register", "waitlisted", attempt)
				return reg, committed, nil
			}
			if store.Is(txErr, store.KindConditionFailed) {
				continue
			}
			return registration.Registration{}, event.Event{}, txErr

		default:
			e.observe("register", "event_full", attempt)
			return registration.Registration{}, event.Event{}, registration.ErrEventFull
		}
	}

	e.observe("register", "contention", e.maxRetries)
	return registration.Registration{}, event.Event{}, registration.ErrContention
}

// Unregister implements spec §4.5.3. A confirmed departure on a full
// event with a non-empty waitlist triggers FIFO promotion of the head, in
// its own bounded retry loop independent of the unregister's own retries.
func (e *Engine) Unregister(ctx context.Context, userID, eventID string) error {
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		reg, err := e.store.GetRegistration(ctx, userID, eventID)
		if err != nil {
			if store.Is(err, store.KindNotFound) {
				return registration.ErrNotFound
			}
			return err
		}

		switch reg.Status {
		case registration.StatusConfirmed:
			ev, txErr := e.store.TxUnregisterConfirmed(ctx, userID, eventID)
			if txErr != nil {
				if store.Is(txErr, store.KindConditionFailed) {
					continue
				}
				return txErr
			}
			e.observe("unregister", "unregistered", attempt)
			e.promoteIfPossible(ctx, ev)
			return nil

		case registration.StatusWaitlist:
			if _, txErr := e.store.TxUnregisterWaitlist(ctx, userID, eventID); txErr != nil {
				if store.Is(txErr, store.KindConditionFailed) {
					continue
				}
				return txErr
			}
			e.observe("unregister", "unregistered", attempt)
			return nil
		}
	}

	return registration.ErrContention
}

// promoteIfPossible attempts to advance the waitlist head to confirmed
// after a confirmed departure freed a slot. Failure to promote is never
// surfaced to the caller: the unregister itself already committed and
// invariants hold either way (spec §4.5.3 case (a)/(b), §9 design note).
func (e *Engine) promoteIfPossible(ctx context.Context, ev event.Event) {
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if len(ev.Waitlist) == 0 || ev.RegisteredCount >= ev.Capacity {
			return
		}

		head := ev.Waitlist[0]
		err := e.store.TxPromoteHead(ctx, ev.ID, head)
		if err == nil {
			e.observe("unregister", "promoted", attempt)
			return
		}

		if errors.Is(err, store.ErrPromotionTargetGone) {
			return
		}
		if !store.Is(err, store.KindConditionFailed) {
			if e.logger != nil {
				e.logger.ErrorContext(ctx, "engine.promote_failed", "event_id", ev.ID, "err", err)
			}
			return
		}

		fresh, getErr := e.store.GetEvent(ctx, ev.ID)
		if getErr != nil {
			return
		}
		ev = fresh
	}
}

// ListUserRegistrations implements spec §4.5.4: requires the user to
// exist, then returns every registration regardless of status.
func (e *Engine) ListUserRegistrations(ctx context.Context, userID string) ([]registration.Registration, error) {
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		if store.Is(err, store.KindNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return e.store.QueryRegistrationsByUser(ctx, userID)
}

// ListEventRegistrations backs the event-centric alias route (spec §6):
// requires the event to exist, then returns every registration for it.
func (e *Engine) ListEventRegistrations(ctx context.Context, eventID string) ([]registration.Registration, error) {
	if _, err := e.store.GetEvent(ctx, eventID); err != nil {
		if store.Is(err, store.KindNotFound) {
			return nil, event.ErrNotFound
		}
		return nil, err
	}
	return e.store.QueryRegistrationsByEvent(ctx, eventID)
}
