package realtime

import "sync"

// Conn is one client connection. Send must be safe for concurrent use.
type Conn interface {
	ID() string
	Send(e Event) error
}

// Registry tracks which connections belong to which user group. One user may
// hold several connections (several devices) and one connection may join
// several groups; dropping a connection removes it from all of them.
type Registry struct {
	mu      sync.RWMutex
	members map[string]map[string]Conn     // userID -> connID -> conn
	joined  map[string]map[string]struct{} // connID -> userIDs
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[string]map[string]Conn),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the user's group. Joining twice is a no-op.
func (r *Registry) Join(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[userID] == nil {
		r.members[userID] = make(map[string]Conn)
	}
	r.members[userID][conn.ID()] = conn
	if r.joined[conn.ID()] == nil {
		r.joined[conn.ID()] = make(map[string]struct{})
	}
	r.joined[conn.ID()][userID] = struct{}{}
}

// Leave removes the connection from the user's group. Leaving a group the
// connection never joined is a no-op.
func (r *Registry) Leave(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(userID, connID)
}

// Drop removes the connection from every group it joined. Called when the
// underlying socket closes.
func (r *Registry) Drop(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID := range r.joined[connID] {
		r.remove(userID, connID)
	}
}

// MembersOf returns the connections currently in the user's group. The
// returned slice is a snapshot; it is safe to send on it without holding any
// registry lock.
func (r *Registry) MembersOf(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]Conn, 0, len(r.members[userID]))
	for _, c := range r.members[userID] {
		conns = append(conns, c)
	}
	return conns
}

// remove must be called with r.mu held.
func (r *Registry) remove(userID, connID string) {
	if m := r.members[userID]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.members, userID)
		}
	}
	if j := r.joined[connID]; j != nil {
		delete(j, userID)
		if len(j) == 0 {
			delete(r.joined, connID)
		}
	}
}
