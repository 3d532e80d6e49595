// Package health serves liveness and readiness probes.
//
// Every check runs on its own ticker. A check turns unhealthy after
// FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes, so a single slow database ping does
// not flap the probe.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects which probe a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// Check describes a registered health check.
type Check struct {
	Name    string
	Kind    Kind
	Timeout time.Duration
	Func    CheckFunc

	// Zero values default to 3 and 1.
	FailureThreshold int
	SuccessThreshold int
}

type check struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// Only touched by the goroutine calling run.
	fails int
	oks   int
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	err := c.Func(ctx)
	c.lastErr.Store(&err)
	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= c.FailureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.oks++
	if c.oks >= c.SuccessThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() string {
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error()
	}
	return "check is unhealthy"
}

// Health aggregates checks and exposes them as HTTP probes. The service
// starts not ready; call SetReady once initialization completes.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
	cancel context.CancelFunc
}

// New creates an empty Health.
func New() *Health {
	return &Health{}
}

// Add registers a check. Checks start healthy.
func (h *Health) Add(c Check) {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	ch := &check{Check: c}
	ch.healthy.Store(true)

	h.mu.Lock()
	h.checks = append(h.checks, ch)
	h.mu.Unlock()
}

// Start runs every registered check immediately and then every interval
// until ctx is done or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.cancel = cancel
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	for _, c := range checks {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				c.run(ctx)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}
}

// Stop cancels the background checks. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady toggles the manual readiness gate. Set it to false during
// shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(Readiness)) == 0
}

func (h *Health) failures(kind Kind) map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string)
	for _, c := range h.checks {
		if c.Kind == kind && !c.healthy.Load() {
			out[c.Name] = c.failure()
		}
	}
	return out
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(Liveness))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(Readiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// Register mounts both probes on mux.
func (h *Health) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /livez", h.LiveEndpoint)
	mux.HandleFunc("GET /readyz", h.ReadyEndpoint)
}

// writeStatus writes {"status":"ok"} or 503 with the failing checks.
func writeStatus(w http.ResponseWriter, failures map[string]string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	status := http.StatusOK
	if len(failures) == 0 {
		e.Str("ok")
	} else {
		status = http.StatusServiceUnavailable
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			e.FieldStart(name)
			e.Str(failures[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
