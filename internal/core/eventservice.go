package core

import (
	"context"

	"github.com/elthrasher/eventreg/internal/cache"
	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/elthrasher/eventreg/internal/validate"
)

type EventService struct {
	store store.Store
	cache *cache.Cache
}

func NewEventService(s store.Store, c *cache.Cache) *EventService {
	return &EventService{store: s, cache: c}
}

func eventCacheKey(eventID string) string { return "event:" + eventID }

// CreateEvent validates the payload, generates an eventId when the caller
// omitted one, and initialises the engine-owned bookkeeping fields
// (registeredCount=0, waitlist=[]) before the Store ever sees the record
// (spec §4.4).
func (s *EventService) CreateEvent(ctx context.Context, p validate.CreateEventParams) (event.Event, error) {
	input, err := validate.CreateEvent(p)
	if err != nil {
		return event.Event{}, err
	}

	id := input.EventID
	if id == "" {
		id = event.GenerateID()
	}

	e := event.New(event.CreateRequest{
		ID:              id,
		Title:           input.Title,
		Description:     input.Description,
		Location:        input.Location,
		Organizer:       input.Organizer,
		Status:          input.Status,
		Capacity:        input.Capacity,
		WaitlistEnabled: input.WaitlistEnabled,
	})

	if err := s.store.PutEvent(ctx, e); err != nil {
		return event.Event{}, err
	}
	return e, nil
}

// GetEvent returns the event augmented with availableSpots/waitlistCount
// (spec §4.4), read-through a cache keyed by eventId.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (event.View, error) {
	if s.cache != nil {
		var cached event.View
		if s.cache.Get(ctx, eventCacheKey(eventID), &cached) {
			return cached, nil
		}
	}

	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if store.Is(err, store.KindNotFound) {
			return event.View{}, event.ErrNotFound
		}
		return event.View{}, err
	}

	view := event.NewView(e)
	if s.cache != nil {
		s.cache.Set(ctx, eventCacheKey(eventID), view)
	}
	return view, nil
}

func (s *EventService) ListEvents(ctx context.Context, statusFilter *string) ([]event.Event, error) {
	return s.store.ListEvents(ctx, event.ListFilter{Status: statusFilter})
}

// UpdateEvent applies an opaque-only patch (spec §4.4); engine fields have
// no representation in validate.UpdateEventParams, so there is nothing
// here to reject beyond what the validator already refuses (e.g. a bad
// status enum value). The HTTP layer rejects a raw request body that
// touches an engine field before it ever reaches this type.
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
	patch, err := validate.UpdateEvent(p)
	if err != nil {
		return event.Event{}, err
	}

	e, err := s.store.UpdateEventOpaque(ctx, eventID, event.OpaquePatch{
		Title:       patch.Title,
		Description: patch.Description,
		Location:    patch.Location,
		Organizer:   patch.Organizer,
		Status:      patch.Status,
	})
	if err != nil {
		if store.Is(err, store.KindNotFound) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	if s.cache != nil {
		s.cache.Delete(ctx, eventCacheKey(eventID))
	}
	return e, nil
}

// DeleteEvent removes the event record. It does not check for, block on,
// or cascade to registrations that still reference the event.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		if store.Is(err, store.KindNotFound) {
			return event.ErrNotFound
		}
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, eventCacheKey(eventID))
	}
	return nil
}
