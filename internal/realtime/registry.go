package realtime

import "sync"

// Role selects one of the registry's subscriber maps.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleChef     Role = "chef"
	RoleWorker   Role = "worker"
)

var roles = [...]Role{RoleCustomer, RoleChef, RoleWorker}

// Conn is a live push connection. Deliver must not block.
type Conn interface {
	Deliver(payload []byte) error
}

// Registry maps a subscriber key (order id, restaurant id, worker id) to at
// most one live connection per role.
type Registry struct {
	mu    sync.RWMutex
	conns map[Role]map[string]Conn
}

func NewRegistry() *Registry {
	r := &Registry{conns: make(map[Role]map[string]Conn, len(roles))}
	for _, role := range roles {
		r.conns[role] = make(map[string]Conn)
	}
	return r
}

// Register stores c under key, silently replacing any previous connection.
func (r *Registry) Register(role Role, key string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.conns[role]
	if !ok {
		return
	}
	m[key] = c
}

func (r *Registry) Resolve(role Role, key string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[role][key]
	return c, ok
}

// Unregister drops every mapping that points at c and reports how many
// were removed.
func (r *Registry) Unregister(c Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, m := range r.conns {
		for key, stored := range m {
			if stored == c {
				delete(m, key)
				removed++
			}
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, m := range r.conns {
		n += len(m)
	}
	return n
}

// Reset forgets every subscriber.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, role := range roles {
		r.conns[role] = make(map[string]Conn)
	}
}
