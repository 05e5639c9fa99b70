package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elthrasher/eventreg/internal/config"
	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/validate"
	"github.com/gin-gonic/gin"
)

type EventCreator interface {
	CreateEvent(ctx context.Context, p validate.CreateEventParams) (event.Event, error)
	GetEvent(ctx context.Context, eventID string) (event.View, error)
	ListEvents(ctx context.Context, statusFilter *string) ([]event.Event, error)
	UpdateEvent(ctx context.Context, eventID string, p validate.UpdateEventParams) (event.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

type EventsHandler struct {
	svc EventCreator
}

func NewEventsHandler(svc EventCreator) *EventsHandler {
	return &EventsHandler{svc: svc}
}

type createEventRequest struct {
	EventID         *string `json:"eventId"`
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description"`
	Location        string  `json:"location"`
	Organizer       string  `json:"organizer"`
	Status          string  `json:"status"`
	Capacity        int     `json:"capacity" binding:"required"`
	WaitlistEnabled bool    `json:"waitlistEnabled"`
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var req createEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	params := validate.CreateEventParams{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Organizer:       req.Organizer,
		Status:          req.Status,
		Capacity:        req.Capacity,
		WaitlistEnabled: req.WaitlistEnabled,
	}
	if req.EventID != nil {
		params.EventID = *req.EventID
		params.HasEventID = true
	}

	e, err := h.svc.CreateEvent(cctx, params)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	var statusFilter *string
	if s := ctx.Query("status"); s != "" {
		statusFilter = &s
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.svc.ListEvents(cctx, statusFilter)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *EventsHandler) GetEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	v, err := h.svc.GetEvent(cctx, eventID)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	// Event reads already go through the Redis read-through cache; an ETag
	// on top saves the response body entirely on repeat polling (clients
	// are expected to poll registeredCount/waitlistCount for capacity UI).
	RespondJSONWithETag(ctx, http.StatusOK, v)
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Organizer   *string `json:"organizer"`
	Status      *string `json:"status"`
}

// engineFields are owned exclusively by the Registration Engine (spec
// §4.1); a PUT that touches any of them is rejected outright rather than
// silently dropped, since updateEventRequest has no field to bind them
// into.
var engineFields = []string{"capacity", "registeredCount", "waitlistEnabled", "waitlist"}

// rejectEngineFieldPatch peeks at the raw request body for keys the Event
// Service is not allowed to touch (spec §4.4) and restores the body for
// the subsequent BindJSON call. Returns false (after writing the 400
// response) if any such key is present.
func rejectEngineFieldPatch(ctx *gin.Context) bool {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"json": "invalid_json_syntax"})
		return false
	}
	ctx.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		// malformed JSON is BindJSON's problem to report, not ours
		return true
	}

	var fields []FieldError
	for _, f := range engineFields {
		if _, present := loose[f]; present {
			fields = append(fields, FieldError{
				Field:   f,
				Rule:    "readonly",
				Message: "is managed by the registration engine and cannot be set directly",
			})
		}
	}
	if len(fields) > 0 {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": fields})
		return false
	}
	return true
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	if !rejectEngineFieldPatch(ctx) {
		return
	}

	var req updateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.svc.UpdateEvent(cctx, eventID, validate.UpdateEventParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Organizer:   req.Organizer,
		Status:      req.Status,
	})
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.svc.DeleteEvent(cctx, eventID); err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
