package resilience

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a tripped service stays blocked before a
// single trial call is let through.
const DefaultCooldown = 30 * time.Second

type serviceState struct {
	failures  int
	tripPoint time.Time
}

// HealthTracker counts consecutive failures per external service. The
// orchestrator consults it before calling a provider so a repeatedly failing
// service is skipped straight to its fallback path. Once tripped, the tracker
// admits one trial call per cooldown interval; a success closes the circuit
// again. It is injectable state, not a module-level global, so tests can
// reset it deterministically.
type HealthTracker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	now       func() time.Time
	services  map[string]*serviceState
}

// NewHealthTracker creates a tracker that marks a service unavailable after
// threshold consecutive failures. A threshold <= 0 disables tripping.
func NewHealthTracker(threshold int) *HealthTracker {
	return &HealthTracker{
		threshold: threshold,
		cooldown:  DefaultCooldown,
		now:       time.Now,
		services:  make(map[string]*serviceState),
	}
}

// WithCooldown replaces the recovery interval.
func (h *HealthTracker) WithCooldown(d time.Duration) *HealthTracker {
	h.cooldown = d
	return h
}

// WithClock replaces the tracker's clock. Test hook.
func (h *HealthTracker) WithClock(now func() time.Time) *HealthTracker {
	h.now = now
	return h
}

func (h *HealthTracker) state(service string) *serviceState {
	s, ok := h.services[service]
	if !ok {
		s = &serviceState{}
		h.services[service] = s
	}
	return s
}

// Failure records one failed call. A failure that trips (or re-trips) the
// circuit restarts the cooldown.
func (h *HealthTracker) Failure(service string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.state(service)
	s.failures++
	if h.threshold > 0 && s.failures >= h.threshold {
		s.tripPoint = h.now()
	}
}

func (h *HealthTracker) Success(service string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.state(service)
	s.failures = 0
	s.tripPoint = time.Time{}
}

// Available reports whether the service may be called. Below the threshold it
// always may; at or above it, one trial call is admitted each time the
// cooldown elapses, and admitting it restarts the cooldown so at most
// one request per interval reaches a still-down provider.
func (h *HealthTracker) Available(service string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.threshold <= 0 {
		return true
	}
	s := h.state(service)
	if s.failures < h.threshold {
		return true
	}
	if h.now().Sub(s.tripPoint) >= h.cooldown {
		s.tripPoint = h.now()
		return true
	}
	return false
}

// Reset clears all recorded failures.
func (h *HealthTracker) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.services = make(map[string]*serviceState)
}
