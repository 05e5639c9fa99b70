// Package validate implements C2: pure, side-effect-free validation of
// inbound user/event/registration payloads. Nothing here touches the
// Store; every function either returns a canonicalised value or a
// *ValidationError describing exactly what was wrong.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

var eventStatuses = map[string]bool{
	"draft":     true,
	"published": true,
	"cancelled": true,
	"completed": true,
	"active":    true,
}

// FieldError is one field-level complaint inside a ValidationError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level complaint found for a single
// payload; callers surface it verbatim, never retried (spec §4.5.5).
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make([]FieldError, 0, 4)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func isAllWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UserID validates a userId against `^[A-Za-z0-9_-]{1,100}$` and rejects an
// all-whitespace value (the charset already forbids whitespace, but an
// empty string slips past a naive length check, so both are checked).
func UserID(id string) error {
	if isAllWhitespace(id) || !idPattern.MatchString(id) {
		ve := newValidationError()
		ve.add("userId", "must match ^[A-Za-z0-9_-]{1,100}$ and not be blank")
		return ve
	}
	return nil
}

// EventID validates an eventId supplied by the caller (as opposed to one
// generated by the Event Service). Length 1-100, not all-whitespace;
// unlike userId the charset is unrestricted.
func EventID(id string) error {
	if len(id) < 1 || len(id) > 100 || isAllWhitespace(id) {
		ve := newValidationError()
		ve.add("eventId", "must be 1-100 characters and not be blank")
		return ve
	}
	return nil
}

// Name validates a user's display name: 1-200 chars after trim, not
// all-whitespace. Returns the trimmed, canonical value.
func Name(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(trimmed) > 200 {
		ve := newValidationError()
		ve.add("name", "must be 1-200 characters and not be blank")
		return "", ve
	}
	return trimmed, nil
}

// CreateUserInput is the canonicalised result of validating a user-create
// payload.
type CreateUserInput struct {
	UserID string
	Name   string
}

func CreateUser(userID, name string) (CreateUserInput, error) {
	ve := newValidationError()

	if err := UserID(userID); err != nil {
		ve.Fields = append(ve.Fields, err.(*ValidationError).Fields...)
	}

	trimmedName, err := Name(name)
	if err != nil {
		ve.Fields = append(ve.Fields, err.(*ValidationError).Fields...)
	}

	if len(ve.Fields) > 0 {
		return CreateUserInput{}, ve
	}
	return CreateUserInput{UserID: userID, Name: trimmedName}, nil
}

// CreateEventInput is the canonicalised result of validating an
// event-create payload. EventID is empty when the caller omitted one —
// the Event Service fills in a generated UUID.
type CreateEventInput struct {
	EventID         string
	Title           string
	Description     string
	Location        string
	Organizer       string
	Status          string
	Capacity        int
	WaitlistEnabled bool
}

// CreateEventParams is the raw, as-bound input to event creation.
type CreateEventParams struct {
	EventID         string
	Title           string
	Description     string
	Location        string
	Organizer       string
	Status          string
	Capacity        int
	WaitlistEnabled bool
	HasEventID      bool
}

func CreateEvent(p CreateEventParams) (CreateEventInput, error) {
	ve := newValidationError()

	if p.HasEventID {
		if err := EventID(p.EventID); err != nil {
			ve.Fields = append(ve.Fields, err.(*ValidationError).Fields...)
		}
	}

	title := strings.TrimSpace(p.Title)
	if title == "" || len(title) > 200 {
		ve.add("title", "must be 1-200 characters and not be blank")
	}

	if len(p.Description) > 1000 {
		ve.add("description", "must be at most 1000 characters")
	}
	if len(p.Location) > 200 {
		ve.add("location", "must be at most 200 characters")
	}
	if len(p.Organizer) > 100 {
		ve.add("organizer", "must be at most 100 characters")
	}

	status := p.Status
	if status == "" {
		status = "draft"
	}
	if !eventStatuses[status] {
		ve.add("status", "must be one of draft, published, cancelled, completed, active")
	}

	if p.Capacity < 1 {
		ve.add("capacity", "must be an integer >= 1")
	}

	if len(ve.Fields) > 0 {
		return CreateEventInput{}, ve
	}

	return CreateEventInput{
		EventID:         p.EventID,
		Title:           title,
		Description:     strings.TrimSpace(p.Description),
		Location:        strings.TrimSpace(p.Location),
		Organizer:        strings.TrimSpace(p.Organizer),
		Status:          status,
		Capacity:        p.Capacity,
		WaitlistEnabled: p.WaitlistEnabled,
	}, nil
}

// EventPatch is the canonicalised, opaque-only subset of an event update.
// The HTTP handler rejects any request body that tries to reach capacity,
// registeredCount, waitlistEnabled or waitlist before this type even
// exists, and those fields have no representation here at all.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	Organizer   *string
	Status      *string
	HasDate     bool
}

type UpdateEventParams struct {
	Title       *string
	Description *string
	Location    *string
	Organizer   *string
	Status      *string
}

func UpdateEvent(p UpdateEventParams) (EventPatch, error) {
	ve := newValidationError()
	out := EventPatch{}

	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" || len(t) > 200 {
			ve.add("title", "must be 1-200 characters and not be blank")
		} else {
			out.Title = &t
		}
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if len(d) > 1000 {
			ve.add("description", "must be at most 1000 characters")
		} else {
			out.Description = &d
		}
	}
	if p.Location != nil {
		l := strings.TrimSpace(*p.Location)
		if len(l) > 200 {
			ve.add("location", "must be at most 200 characters")
		} else {
			out.Location = &l
		}
	}
	if p.Organizer != nil {
		o := strings.TrimSpace(*p.Organizer)
		if len(o) > 100 {
			ve.add("organizer", "must be at most 100 characters")
		} else {
			out.Organizer = &o
		}
	}
	if p.Status != nil {
		if !eventStatuses[*p.Status] {
			ve.add("status", "must be one of draft, published, cancelled, completed, active")
		} else {
			out.Status = p.Status
		}
	}

	if len(ve.Fields) > 0 {
		return EventPatch{}, ve
	}
	return out, nil
}
