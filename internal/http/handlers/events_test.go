package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/http/handlers"
	"github.com/elthrasher/eventreg/internal/validate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// fakeEventSvc is a stand-in for core.EventService satisfying
// handlers.EventCreator.
type fakeEventSvc struct {
	createFn func(ctx context.Context, p validate.CreateEventParams) (event.Event, error)
	getFn    func(ctx context.Context, eventID string) (event.View, error)
	listFn   func(ctx context.Context, statusFilter *string) ([]event.Event, error)
	updateFn func(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error)
	deleteFn func(ctx context.Context, eventID string) error
}

func (f *fakeEventSvc) CreateEvent(ctx context.Context, p validate.CreateEventParams) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return event.Event{}, nil
}

func (f *fakeEventSvc) GetEvent(ctx context.Context, eventID string) (event.View, error) {
	if f.getFn != nil {
		return f.getFn(ctx, eventID)
	}
	return event.View{}, nil
}

func (f *fakeEventSvc) ListEvents(ctx context.Context, statusFilter *string) ([]event.Event, error) {
	if f.listFn != nil {
		return f.listFn(ctx, statusFilter)
	}
	return nil, nil
}

func (f *fakeEventSvc) UpdateEvent(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, eventID, p)
	}
	return event.Event{}, nil
}

func (f *fakeEventSvc) DeleteEvent(ctx context.Context, eventID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, eventID)
	}
	return nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, h)
	return r
}

func TestCreateEventHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		svcSetup       func(*fakeEventSvc)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"title": "Go Meetup",
				"description": "Day 10 test",
				"location": "Toronto",
				"capacity": 50
			}`,
			svcSetup: func(f *fakeEventSvc) {
				f.createFn = func(ctx context.Context, p validate.CreateEventParams) (event.Event, error) {
					return event.Event{
						ID:        newUUID(),
						Title:     p.Title,
						Location:  p.Location,
						Capacity:  p.Capacity,
						CreatedAt: now,
						UpdatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_required_fields",
			body:           `{"title": ""}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "svc_error",
			body: `{
				"title": "Go Meetup",
				"location": "Toronto",
				"capacity": 50
			}`,
			svcSetup: func(f *fakeEventSvc) {
				f.createFn = func(ctx context.Context, p validate.CreateEventParams) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventSvc{}
			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodPost, "/events", h.CreateEvent)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListEventsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		svcSetup       func(*fakeEventSvc)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success_no_filter",
			url:  "/events",
			svcSetup: func(f *fakeEventSvc) {
				f.listFn = func(ctx context.Context, statusFilter *string) ([]event.Event, error) {
					if statusFilter != nil {
						return nil, errors.New("expected no filter")
					}
					return []event.Event{{ID: "id-1", Title: "Event 1", CreatedAt: now, UpdatedAt: now}}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "success_with_status_filter",
			url:  "/events?status=published",
			svcSetup: func(f *fakeEventSvc) {
				f.listFn = func(ctx context.Context, statusFilter *string) ([]event.Event, error) {
					if statusFilter == nil || *statusFilter != "published" {
						return nil, errors.New("status filter not passed through")
					}
					return []event.Event{{ID: "id-1", Status: "published", CreatedAt: now, UpdatedAt: now}}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "svc_error",
			url:  "/events",
			svcSetup: func(f *fakeEventSvc) {
				f.listFn = func(ctx context.Context, statusFilter *string) ([]event.Event, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantCount:      0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventSvc{}
			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodGet, "/events", h.ListEvents)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Count int `json:"count"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Count != tt.wantCount {
					t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
				}
			}
		})
	}
}

func TestUpdateEventHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		body           string
		svcSetup       func(f *fakeEventSvc)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			body: `{"title": "Updated Title", "location": "Toronto"}`,
			svcSetup: func(f *fakeEventSvc) {
				f.updateFn = func(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
					return event.Event{
						ID:        eventID,
						Title:     *p.Title,
						CreatedAt: now.Add(-time.Hour),
						UpdatedAt: now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			body: `{"title": "Updated Title"}`,
			svcSetup: func(f *fakeEventSvc) {
				f.updateFn = func(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
					return event.Event{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "svc_error",
			url:  "/events/" + validID,
			body: `{"title": "Updated Title"}`,
			svcSetup: func(f *fakeEventSvc) {
				f.updateFn = func(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name: "rejects_capacity_patch",
			url:  "/events/" + validID,
			body: `{"title": "Updated Title", "capacity": 99}`,
			svcSetup: func(f *fakeEventSvc) {
				f.updateFn = func(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
					t.Fatal("service must not be called when an engine field is patched")
					return event.Event{}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "rejects_waitlist_patch",
			url:  "/events/" + validID,
			body: `{"waitlist": ["u1", "u2"]}`,
			svcSetup: func(f *fakeEventSvc) {
				f.updateFn = func(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error) {
					t.Fatal("service must not be called when an engine field is patched")
					return event.Event{}, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventSvc{}
			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodPut, "/events/:eventId", h.UpdateEvent)
			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestGetEventHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		svcSetup       func(f *fakeEventSvc)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			svcSetup: func(f *fakeEventSvc) {
				f.getFn = func(ctx context.Context, eventID string) (event.View, error) {
					return event.NewView(event.Event{
						ID:              eventID,
						Title:           "Event-1",
						Capacity:        10,
						RegisteredCount: 3,
						CreatedAt:       now.Add(-time.Hour),
						UpdatedAt:       now,
					}), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			svcSetup: func(f *fakeEventSvc) {
				f.getFn = func(ctx context.Context, eventID string) (event.View, error) {
					return event.View{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "svc_error",
			url:  "/events/" + validID,
			svcSetup: func(f *fakeEventSvc) {
				f.getFn = func(ctx context.Context, eventID string) (event.View, error) {
					return event.View{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventSvc{}
			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodGet, "/events/:eventId", h.GetEvent)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp event.View
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.AvailableSpots != 7 {
					t.Fatalf("got availableSpots=%d, want 7", resp.AvailableSpots)
				}
			}
		})
	}
}

func TestDeleteEventHandler(t *testing.T) {
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		svcSetup       func(*fakeEventSvc)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			svcSetup: func(f *fakeEventSvc) {
				f.deleteFn = func(ctx context.Context, eventID string) error { return nil }
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			svcSetup: func(f *fakeEventSvc) {
				f.deleteFn = func(ctx context.Context, eventID string) error { return event.ErrNotFound }
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "svc_error",
			url:  "/events/" + validID,
			svcSetup: func(f *fakeEventSvc) {
				f.deleteFn = func(ctx context.Context, eventID string) error { return errors.New("db error") }
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventSvc{}
			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodDelete, "/events/:eventId", h.DeleteEvent)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
