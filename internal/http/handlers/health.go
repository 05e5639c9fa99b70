package handlers

import "github.com/gin-gonic/gin"

type HealthHandler struct {
	ready func() error
}

// NewHealthHandler takes a readiness probe (Postgres + Redis ping, set up
// by the router) so /readyz reflects real dependency health.
func NewHealthHandler(ready func() error) *HealthHandler {
	return &HealthHandler{ready: ready}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			ctx.JSON(503, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
	}

	ctx.JSON(200, gin.H{"status": "ready"})
}
