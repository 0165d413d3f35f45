package socketio

import (
	"bytes"
	"encoding/json"
)

// The renderer repaints on every pushState, so identical consecutive
// snapshots are suppressed server-side. Volatile data (video progress) never
// enters the snapshot; it flows renderer -> server only, which keeps the
// serialized form stable between real changes.

// saveLastState remembers the serialized form of the last broadcast snapshot.
func (s *Server) saveLastState(snap any) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.lastState = data
	s.mu.Unlock()
}

// isStateSame reports whether the snapshot serializes identically to the
// last broadcast one.
func (s *Server) isStateSame(snap any) bool {
	data, err := json.Marshal(snap)
	if err != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastState != nil && bytes.Equal(s.lastState, data)
}
