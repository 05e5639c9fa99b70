// Package event holds the Event entity. The registration engine owns
// mutations to Capacity bookkeeping (RegisteredCount, Waitlist); every other
// field is opaque to it and stored/echoed verbatim by the event service.
package event

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

// MaxWaitlistLen bounds the waitlist column so a single event row never
// grows unbounded (spec design note: cap the list if the store enforces
// record-size limits).
const MaxWaitlistLen = 1000

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Organizer   string    `json:"organizer,omitempty"`
	Status      string    `json:"status,omitempty"`
	Date        time.Time `json:"date"`

	Capacity        int      `json:"capacity"`
	RegisteredCount int      `json:"registeredCount"`
	WaitlistEnabled bool     `json:"waitlistEnabled"`
	Waitlist        []string `json:"waitlist"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// View augments Event with the computed fields the event service surfaces
// on GetEvent (spec §4.4): availableSpots and waitlistCount.
type View struct {
	Event
	AvailableSpots int `json:"availableSpots"`
	WaitlistCount  int `json:"waitlistCount"`
}

func NewView(e Event) View {
	return View{
		Event:          e,
		AvailableSpots: e.Capacity - e.RegisteredCount,
		WaitlistCount:  len(e.Waitlist),
	}
}

// CreateRequest is the canonicalised input to create an event.
type CreateRequest struct {
	ID              string
	Title           string
	Description     string
	Location        string
	Organizer       string
	Status          string
	Date            time.Time
	Capacity        int
	WaitlistEnabled bool
}

func New(req CreateRequest) Event {
	now := time.Now().UTC()
	return Event{
		ID:              req.ID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Organizer:       req.Organizer,
		Status:          req.Status,
		Date:            req.Date,
		Capacity:        req.Capacity,
		RegisteredCount: 0,
		WaitlistEnabled: req.WaitlistEnabled,
		Waitlist:        []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// OpaquePatch updates only the non-engine fields of an event. Capacity,
// RegisteredCount, WaitlistEnabled and Waitlist are never part of a patch —
// the PUT /events/{eventId} handler rejects request bodies that attempt to
// touch them before this type is ever constructed.
type OpaquePatch struct {
	Title       *string
	Description *string
	Location    *string
	Organizer   *string
	Status      *string
	Date        *time.Time
}

// ListFilter narrows ListEvents by the opaque Status field. The engine never
// branches on Status; it is filtered here purely for the event service.
type ListFilter struct {
	Status *string
}
