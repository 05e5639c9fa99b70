package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/elthrasher/eventreg/internal/config"
	"github.com/elthrasher/eventreg/internal/domain/event"
	"github.com/elthrasher/eventreg/internal/domain/registration"
	"github.com/gin-gonic/gin"
)

type RegistrationEngine interface {
	Register(ctx context.Context, userID, eventID string) (registration.Registration, event.Event, error)
	Unregister(ctx context.Context, userID, eventID string) error
	ListUserRegistrations(ctx context.Context, userID string) ([]registration.Registration, error)
	ListEventRegistrations(ctx context.Context, eventID string) ([]registration.Registration, error)
}

type RegistrationsHandler struct {
	engine RegistrationEngine
}

func NewRegistrationsHandler(engine RegistrationEngine) *RegistrationsHandler {
	return &RegistrationsHandler{engine: engine}
}

// RegisterForUser backs POST /users/{userId}/registrations — body {eventId}.
func (h *RegistrationsHandler) RegisterForUser(ctx *gin.Context) {
	userID := ctx.Param("userId")

	var req struct {
		EventID string `json:"eventId" binding:"required"`
	}
	if !BindJSON(ctx, &req) {
		return
	}

	h.register(ctx, userID, req.EventID)
}

// RegisterForEvent backs POST /events/{eventId}/registrations — body {userId}.
// This is the spec §6 event-centric alias of the same underlying operation.
func (h *RegistrationsHandler) RegisterForEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if !BindJSON(ctx, &req) {
		return
	}

	h.register(ctx, req.UserID, eventID)
}

func (h *RegistrationsHandler) register(ctx *gin.Context, userID, eventID string) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	reg, _, err := h.engine.Register(cctx, userID, eventID)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

func (h *RegistrationsHandler) UnregisterUserFromEvent(ctx *gin.Context) {
	userID := ctx.Param("userId")
	eventID := ctx.Param("eventId")

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.engine.Unregister(cctx, userID, eventID); err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// UnregisterEventFromUser backs DELETE /events/{eventId}/registrations/{userId}.
func (h *RegistrationsHandler) UnregisterEventFromUser(ctx *gin.Context) {
	eventID := ctx.Param("eventId")
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.engine.Unregister(cctx, userID, eventID); err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *RegistrationsHandler) ListForUser(ctx *gin.Context) {
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.engine.ListUserRegistrations(cctx, userID)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *RegistrationsHandler) ListForEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.engine.ListEventRegistrations(cctx, eventID)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}
