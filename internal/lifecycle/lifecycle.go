// Package lifecycle tracks process state reported by the health endpoint.
package lifecycle

import (
	"sync/atomic"
	"time"
)

// State records when the server started and whether it is draining.
type State struct {
	started      time.Time
	shuttingDown atomic.Bool
}

// New returns a State started at now.
func New(now time.Time) *State {
	return &State{started: now}
}

// SetShuttingDown sets the shutdown flag. Call when SIGTERM/SIGINT received.
// Health handler returns 503 with status shutting-down while true.
func (s *State) SetShuttingDown(v bool) {
	s.shuttingDown.Store(v)
}

// IsShuttingDown returns true if the process is draining and should not receive new traffic.
func (s *State) IsShuttingDown() bool {
	return s.shuttingDown.Load()
}

// Uptime returns the time elapsed since start, measured at now.
func (s *State) Uptime(now time.Time) time.Duration {
	return now.Sub(s.started)
}
