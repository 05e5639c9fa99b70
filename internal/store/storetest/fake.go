// Package storetest provides an in-memory store.Store used by core and
// engine tests in place of the Postgres implementation — it reproduces the
// same condition semantics (rows-affected-style ConditionFailed) without a
// database, the way the teacher's handler tests use a fake repository in
// place of a real one.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/domain/registration"
	"github.com/elthrasher/eventreg/internal/domain/user"
	"github.com/elthrasher/eventreg/internal/store"
)

type regKey struct {
	userID, eventID string
}

// FakeStore implements store.Store over plain maps guarded by a mutex.
// Every Tx* method mirrors the condition the Postgres implementation
// checks via rows-affected, so engine tests exercise the same contention
// and not-found paths against it as against the real Store.
type FakeStore struct {
	mu     sync.Mutex
	users  map[string]user.User
	events map[string]event.Event
	regs   map[regKey]registration.Registration
}

func New() *FakeStore {
	return &FakeStore{
		users:  map[string]user.User{},
		events: map[string]event.Event{},
		regs:   map[regKey]registration.Registration{},
	}
}

func cloneEvent(e event.Event) event.Event {
	out := e
	out.Waitlist = append([]string(nil), e.Waitlist...)
	return out
}

// SeedEvent installs an event directly, bypassing PutEvent — handy for
// tests that want to start from a specific RegisteredCount/Waitlist state.
func (f *FakeStore) SeedEvent(e event.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[e.ID] = cloneEvent(e)
}

func (f *FakeStore) SeedUser(u user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *FakeStore) PutUserIfAbsent(ctx context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[u.ID]; ok {
		return store.Duplicate("store.put_user_if_absent")
	}
	f.users[u.ID] = u
	return nil
}

func (f *FakeStore) GetUser(ctx context.Context, userID string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return user.User{}, store.NotFound("store.get_user")
	}
	return u, nil
}

func (f *FakeStore) PutEvent(ctx context.Context, e event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[e.ID]; ok {
		return store.Duplicate("store.put_event")
	}
	f.events[e.ID] = cloneEvent(e)
	return nil
}

func (f *FakeStore) GetEvent(ctx context.Context, eventID string) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[eventID]
	if !ok {
		return event.Event{}, store.NotFound("store.get_event")
	}
	return cloneEvent(e), nil
}

func (f *FakeStore) ListEvents(ctx context.Context, filter event.ListFilter) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]event.Event, 0, len(f.events))
	for _, e := range f.events {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeStore) UpdateEventOpaque(ctx context.Context, eventID string, patch event.OpaquePatch) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[eventID]
	if !ok {
		return event.Event{}, store.NotFound("store.update_event_opaque")
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Organizer != nil {
		e.Organizer = *patch.Organizer
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	f.events[eventID] = e
	return cloneEvent(e), nil
}

func (f *FakeStore) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[eventID]; !ok {
		return store.NotFound("store.delete_event")
	}
	delete(f.events, eventID)
	return nil
}

func (f *FakeStore) GetRegistration(ctx context.Context, userID, eventID string) (registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.regs[regKey{userID, eventID}]
	if !ok {
		return registration.Registration{}, store.NotFound("store.get_registration")
	}
	return r, nil
}

func (f *FakeStore) QueryRegistrationsByUser(ctx context.Context, userID string) ([]registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]registration.Registration, 0)
	for k, r := range f.regs {
		if k.userID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (f *FakeStore) QueryRegistrationsByEvent(ctx context.Context, eventID string) ([]registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]registration.Registration, 0)
	for k, r := range f.regs {
		if k.eventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (f *FakeStore) TxRegisterConfirmed(ctx context.Context, userID, eventID string, reg registration.Registration) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const op = "store.tx_register_confirmed"

	if _, ok := f.regs[regKey{userID, eventID}]; ok {
		return event.Event{}, store.ConditionFailed(op)
	}
	e, ok := f.events[eventID]
	if !ok {
		return event.Event{}, store.NotFound(op)
	}
	if e.RegisteredCount >= e.Capacity {
		return event.Event{}, store.ConditionFailed(op)
	}

	e.RegisteredCount++
	f.events[eventID] = e
	f.regs[regKey{userID, eventID}] = reg

	return cloneEvent(e), nil
}

func (f *FakeStore) TxRegisterWaitlist(ctx context.Context, userID, eventID string, reg registration.Registration) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const op = "store.tx_register_waitlist"

	if _, ok := f.regs[regKey{userID, eventID}]; ok {
		return event.Event{}, store.ConditionFailed(op)
	}
	e, ok := f.events[eventID]
	if !ok {
		return event.Event{}, store.NotFound(op)
	}
	if e.RegisteredCount != e.Capacity || !e.WaitlistEnabled {
		return event.Event{}, store.ConditionFailed(op)
	}
	for _, u := range e.Waitlist {
		if u == userID {
			return event.Event{}, store.ConditionFailed(op)
		}
	}
	if len(e.Waitlist) >= event.MaxWaitlistLen {
		return event.Event{}, store.ConditionFailed(op)
	}

	e.Waitlist = append(append([]string(nil), e.Waitlist...), userID)
	f.events[eventID] = e
	f.regs[regKey{userID, eventID}] = reg

	return cloneEvent(e), nil
}

func (f *FakeStore) TxUnregisterConfirmed(ctx context.Context, userID, eventID string) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const op = "store.tx_unregister_confirmed"

	r, ok := f.regs[regKey{userID, eventID}]
	if !ok || r.Status != registration.StatusConfirmed {
		return event.Event{}, store.ConditionFailed(op)
	}
	e, ok := f.events[eventID]
	if !ok {
		return event.Event{}, store.NotFound(op)
	}
	if e.RegisteredCount <= 0 {
		return event.Event{}, store.ConditionFailed(op)
	}

	delete(f.regs, regKey{userID, eventID})
	e.RegisteredCount--
	f.events[eventID] = e

	return cloneEvent(e), nil
}

func (f *FakeStore) TxUnregisterWaitlist(ctx context.Context, userID, eventID string) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const op = "store.tx_unregister_waitlist"

	r, ok := f.regs[regKey{userID, eventID}]
	if !ok || r.Status != registration.StatusWaitlist {
		return event.Event{}, store.ConditionFailed(op)
	}
	e, ok := f.events[eventID]
	if !ok {
		return event.Event{}, store.NotFound(op)
	}

	delete(f.regs, regKey{userID, eventID})

	next := make([]string, 0, len(e.Waitlist))
	for _, u := range e.Waitlist {
		if u != userID {
			next = append(next, u)
		}
	}
	e.Waitlist = next
	f.events[eventID] = e

	return cloneEvent(e), nil
}

// TxPromoteHead re-increments RegisteredCount as it pops the head: the
// preceding unregister only freed the slot, it did not spend it (spec
// invariant §3.1, registeredCount = |confirmed|).
func (f *FakeStore) TxPromoteHead(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[eventID]
	if !ok || len(e.Waitlist) == 0 || e.Waitlist[0] != userID || e.RegisteredCount >= e.Capacity {
		return store.ConditionFailed("store.tx_promote_head")
	}

	r, ok := f.regs[regKey{userID, eventID}]
	if !ok || r.Status != registration.StatusWaitlist {
		e.Waitlist = e.Waitlist[1:]
		f.events[eventID] = e
		return store.ErrPromotionTargetGone
	}

	e.Waitlist = e.Waitlist[1:]
	e.RegisteredCount++
	f.events[eventID] = e

	r.Status = registration.StatusConfirmed
	f.regs[regKey{userID, eventID}] = r

	return nil
}

var _ store.Store = (*FakeStore)(nil)
