package ws

import (
	"sync"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/metrics"
)

// RadarHub tracks open radar sessions and wakes them when someone's location changes.
type RadarHub struct {
	*Hub
	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

func NewRadarHub() *RadarHub {
	return &RadarHub{
		Hub:      NewHub(),
		sessions: make(map[*Session]struct{}),
	}
}

func (h *RadarHub) Attach(s *Session) {
	h.Register(s.client)
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	metrics.RadarSessions.Inc()
}

// Detach removes the session and closes its client.
func (h *RadarHub) Detach(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	h.mu.Unlock()
	if ok {
		metrics.RadarSessions.Dec()
	}
	s.client.Close()
}

// NotifyLocationChanged asks every session to rescan. Bursts collapse into one
// rescan per session.
func (h *RadarHub) NotifyLocationChanged(userID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		s.Nudge()
	}
}

func (h *RadarHub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
