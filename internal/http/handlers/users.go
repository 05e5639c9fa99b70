package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/elthrasher/eventreg/internal/config"
	"github.com/elthrasher/eventreg/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserCreator interface {
	CreateUser(ctx context.Context, userID, name string) (user.User, error)
	GetUser(ctx context.Context, userID string) (user.User, error)
}

type UsersHandler struct {
	svc UserCreator
}

func NewUsersHandler(svc UserCreator) *UsersHandler {
	return &UsersHandler{svc: svc}
}

type createUserRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req createUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.svc.CreateUser(cctx, req.UserID, req.Name)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.svc.GetUser(cctx, userID)
	if err != nil {
		RespondAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}
