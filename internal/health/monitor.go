// Package health watches fragment connections and reports their status.
//
// The monitor is observational: it never removes a fragment from routing.
// A student whose fragment is down keeps failing with CONNECTION_FAILURE or
// QUERY_FAILURE until the fragment comes back.
package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/dreamware/gradeshard/internal/fragment"
)

// Fragment status values
const (
	StatusUnknown   = "unknown"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// FragmentHealth tracks the health of a single fragment.
// Thread-safe: Protected by Monitor's mutex when accessed.
type FragmentHealth struct {
	LastCheck        time.Time `json:"last_check"`        // Timestamp of the last check attempt
	LastHealthy      time.Time `json:"last_healthy"`      // Timestamp of the last successful check
	Status           string    `json:"status"`            // "healthy", "unhealthy" or "unknown"
	FragmentID       int       `json:"fragment_id"`       // Fragment index
	ConsecutiveFails int       `json:"consecutive_fails"` // Failed checks since the last success
}

// CheckFunc checks one fragment and returns an error if it is unusable.
type CheckFunc func(ctx context.Context, f *fragment.Fragment) error

// Monitor pings every fragment on a schedule and tracks the results.
// Thread-safe: All methods are safe for concurrent access.
type Monitor struct {
	fragments   *fragment.Set
	health      map[int]*FragmentHealth
	scheduler   *gocron.Scheduler
	checkFunc   CheckFunc
	onUnhealthy func(fragmentID int)
	interval    time.Duration
	timeout     time.Duration
	mu          sync.RWMutex
	maxFailures int
}

// NewMonitor creates a monitor for every fragment in set.
// Fragments are marked unhealthy after 3 consecutive failed checks.
//
// Example:
//
//	monitor := health.NewMonitor(set, 10*time.Second)
//	if err := monitor.Start(); err != nil { ... }
//	defer monitor.Stop()
func NewMonitor(set *fragment.Set, interval time.Duration) *Monitor {
	m := &Monitor{
		fragments:   set,
		health:      make(map[int]*FragmentHealth, set.Len()),
		scheduler:   gocron.NewScheduler(time.UTC),
		interval:    interval,
		timeout:     2 * time.Second,
		maxFailures: 3,
	}
	m.checkFunc = m.ping

	now := time.Now()
	for _, f := range set.All() {
		m.health[f.ID] = &FragmentHealth{
			FragmentID: f.ID,
			Status:     StatusUnknown,
			LastCheck:  now,
		}
	}
	return m
}

// SetCheckFunction replaces the default ping check
func (m *Monitor) SetCheckFunction(fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkFunc = fn
}

// SetOnUnhealthy sets the callback invoked when a fragment becomes unhealthy.
// It runs in its own goroutine.
func (m *Monitor) SetOnUnhealthy(callback func(fragmentID int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUnhealthy = callback
}

// Start schedules checks every interval, beginning immediately, and returns.
func (m *Monitor) Start() error {
	if m.interval <= 0 {
		return fmt.Errorf("health check interval must be positive, got %v", m.interval)
	}
	if _, err := m.scheduler.Every(m.interval).SingletonMode().Do(m.CheckAll); err != nil {
		return fmt.Errorf("schedule health checks: %w", err)
	}
	m.scheduler.StartAsync()
	log.Printf("health monitor started with interval %v", m.interval)
	return nil
}

// Stop halts scheduled checks
func (m *Monitor) Stop() {
	m.scheduler.Stop()
	log.Println("health monitor stopped")
}

// CheckAll checks every fragment once.
func (m *Monitor) CheckAll() {
	for _, f := range m.fragments.All() {
		m.check(f)
	}
}

func (m *Monitor) check(f *fragment.Fragment) {
	m.mu.RLock()
	fn := m.checkFunc
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	err := fn(ctx, f)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.health[f.ID]
	h.LastCheck = time.Now()

	if err != nil {
		h.ConsecutiveFails++
		log.Printf("health check failed for fragment %d (attempt %d/%d): %v",
			f.ID, h.ConsecutiveFails, m.maxFailures, err)

		if h.ConsecutiveFails >= m.maxFailures && h.Status != StatusUnhealthy {
			h.Status = StatusUnhealthy
			log.Printf("fragment %d marked as unhealthy after %d failures", f.ID, h.ConsecutiveFails)
			if m.onUnhealthy != nil {
				go m.onUnhealthy(f.ID)
			}
		}
		return
	}

	if h.Status == StatusUnhealthy {
		log.Printf("fragment %d recovered and is now healthy", f.ID)
	}
	h.Status = StatusHealthy
	h.ConsecutiveFails = 0
	h.LastHealthy = h.LastCheck
}

func (m *Monitor) ping(ctx context.Context, f *fragment.Fragment) error {
	return f.Ping(ctx)
}

// Get returns a copy of one fragment's health, or nil if it is not monitored.
func (m *Monitor) Get(fragmentID int) *FragmentHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.health[fragmentID]
	if !ok {
		return nil
	}
	c := *h
	return &c
}

// All returns copies of every fragment's health ordered by fragment ID
func (m *Monitor) All() []FragmentHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]FragmentHealth, 0, len(m.health))
	for id := 0; id < len(m.health); id++ {
		if h, ok := m.health[id]; ok {
			out = append(out, *h)
		}
	}
	return out
}

// IsHealthy reports whether a fragment passed its last check
func (m *Monitor) IsHealthy(fragmentID int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.health[fragmentID]
	return ok && h.Status == StatusHealthy
}
