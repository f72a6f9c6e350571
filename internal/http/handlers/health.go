package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything readiness depends on: the Postgres pool, the Redis
// client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps     map[string]Pinger
	draining atomic.Bool
}

// NewHealthHandler takes the named dependencies /readyz should check. Nil
// entries are skipped so optional backends can be passed unconditionally.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	checked := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			checked[name] = p
		}
	}

	return &HealthHandler{deps: checked}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Drain makes /readyz fail from now on so load balancers stop routing new
// traffic while in-flight requests finish.
func (h *HealthHandler) Drain() {
	h.draining.Store(true)
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.draining.Load() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	ready := true

	for name, p := range h.deps {
		if err := p.Ping(cctx); err != nil {
			checks[name] = "down"
			ready = false
			continue
		}
		checks[name] = "up"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
