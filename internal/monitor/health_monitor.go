package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// Target is one external collaborator whose reachability is tracked.
type Target struct {
	Name string
	URL  string
}

// HealthMonitor periodically checks the external services this application
// leans on (the Telegram API, and the shortener when enabled). It is purely
// observational: state transitions are logged, nothing is gated on them.
type HealthMonitor struct {
	targets     []Target
	interval    time.Duration
	knownStates map[string]bool
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewHealthMonitor creates a monitor over the given targets.
func NewHealthMonitor(targets []Target, interval time.Duration) *HealthMonitor {
	return &HealthMonitor{
		targets:     targets,
		interval:    interval,
		knownStates: make(map[string]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the periodic check loop. This blocks; run it in a goroutine.
func (m *HealthMonitor) Start() {
	log.Printf("[MONITOR] Starting dependency monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkTargets()

	for range ticker.C {
		m.checkTargets()
	}
}

// checkTargets probes every target once and logs any state change.
func (m *HealthMonitor) checkTargets() {
	for _, target := range m.targets {
		currentState := m.isReachable(target.URL)

		m.mu.Lock()
		previousState, exists := m.knownStates[target.Name]
		m.knownStates[target.Name] = currentState
		m.mu.Unlock()

		if !exists {
			log.Printf("[MONITOR] Initial state for %s (%s): %s",
				target.Name, target.URL, formatState(currentState))
			continue
		}

		if currentState != previousState {
			log.Printf("[MONITOR] %s (%s) changed from %s to %s!",
				target.Name, target.URL, formatState(previousState), formatState(currentState))
		}
	}
}

// isReachable performs an HTTP HEAD request against the target. Anything
// below 500 counts as reachable; these endpoints legitimately answer 4xx to
// bare probes.
func (m *HealthMonitor) isReachable(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		log.Printf("[MONITOR] Error creating request for '%s': %v", url, err)
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

func formatState(reachable bool) string {
	if reachable {
		return "REACHABLE"
	}
	return "UNREACHABLE"
}
