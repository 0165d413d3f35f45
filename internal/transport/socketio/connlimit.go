package socketio

import (
	"sync"
)

// ConnLimiter caps concurrent remote (non-loopback) connections. The local
// renderer always connects from loopback and is never limited. When a new
// remote connection exceeds the cap, the oldest remote connection is evicted
// so a forgotten phone browser cannot lock out the current one.
type ConnLimiter struct {
	mu        sync.Mutex
	maxRemote int
	// remote client IDs, oldest first
	remote []string
	// all tracked connections: clientID -> remote IP
	addrs map[string]string
}

// NewConnLimiter creates a limiter allowing up to maxRemote concurrent
// non-loopback connections.
func NewConnLimiter(maxRemote int) *ConnLimiter {
	return &ConnLimiter{
		maxRemote: maxRemote,
		remote:    make([]string, 0),
		addrs:     make(map[string]string),
	}
}

// Admit registers a new connection and returns the ID of any client evicted
// to make room (empty when none). Connections are always admitted; the cap
// is enforced by eviction, never by refusing the newcomer.
func (l *ConnLimiter) Admit(clientID, remoteIP string) (evictedID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.addrs[clientID]; exists {
		return ""
	}

	l.addrs[clientID] = remoteIP

	if isLoopback(remoteIP) {
		return ""
	}

	l.remote = append(l.remote, clientID)

	if len(l.remote) > l.maxRemote {
		evictedID = l.remote[0]
		l.remote = l.remote[1:]
		delete(l.addrs, evictedID)
		return evictedID
	}

	return ""
}

// Drop unregisters a connection when a client disconnects.
func (l *ConnLimiter) Drop(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ip, exists := l.addrs[clientID]
	if !exists {
		return
	}

	delete(l.addrs, clientID)

	if isLoopback(ip) {
		return
	}

	for i, id := range l.remote {
		if id == clientID {
			l.remote = append(l.remote[:i], l.remote[i+1:]...)
			break
		}
	}
}

// isLoopback reports whether the IP address is localhost.
func isLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1"
}
