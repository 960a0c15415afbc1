package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/response"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// QueueDepth reports how many items wait in the history queue.
type QueueDepth func(ctx context.Context) (int64, error)

// SystemHandler reports liveness and runtime status.
type SystemHandler struct {
	checks    map[string]Check
	queue     QueueDepth
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. checks are run by Health; queue
// may be nil.
func NewSystemHandler(checks map[string]Check, queue QueueDepth, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		queue:     queue,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Reports whether every dependency answers within two seconds.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	response.Success(c, status, gin.H{"status": state, "dependencies": deps})
}

type systemStatus struct {
	Uptime      string `json:"uptime"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	NumGC       uint32 `json:"num_gc"`
	QueueDepth  int64  `json:"queue_history"`
	QueueStatus string `json:"queue_status"`
}

// Status godoc
// GET /api/v1/system/status
// Returns Go runtime figures and the history queue depth.
func (h *SystemHandler) Status(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s := systemStatus{
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:   runtime.Version(),
		NumCPU:      runtime.NumCPU(),
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.HeapSys,
		NumGC:       ms.NumGC,
		QueueStatus: "unknown",
	}
	if h.queue != nil {
		if n, err := h.queue(c.Request.Context()); err == nil {
			s.QueueDepth = n
			s.QueueStatus = "ok"
		}
	}

	response.Success(c, http.StatusOK, s)
}
