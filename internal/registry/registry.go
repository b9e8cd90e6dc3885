package registry

import (
	"sync"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

// Sender is the write side of one live connection. Registry only ever writes;
// reading belongs to the relay loop that owns the connection.
type Sender interface {
	SendJSON(v any) error
	Close() error
}

// Registry maps a user to the ordered set of its live connections. All
// methods are safe for concurrent use; a single mutex guards the table and is
// never held across a connection write or any storage I/O.
type Registry struct {
	mu    sync.Mutex
	users map[model.UserID][]Sender
}

func New() *Registry {
	return &Registry{
		users: make(map[model.UserID][]Sender),
	}
}

// Register adds conn under user, creating the entry if absent, and reports
// whether this connection took the user from offline to online. The boolean
// is computed under the same lock as the insertion, so concurrent registers
// of the same user agree on exactly one first connection. The caller must
// not register the same connection twice.
func (r *Registry) Register(user model.UserID, conn Sender) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user] = append(r.users[user], conn)
	return len(r.users[user]) == 1
}

// Unregister removes conn from user's entry, dropping the entry when it
// empties, and reports whether this removal took the user offline. Exactly
// one of the concurrent unregisters of a user's last connections gets true.
// No-op, and false, when user or conn is not present.
func (r *Registry) Unregister(user model.UserID, conn Sender) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.users[user]
	if !ok {
		return false
	}
	removed := false
	for i, c := range conns {
		if c == conn {
			r.users[user] = append(conns[:i], conns[i+1:]...)
			removed = true
			break
		}
	}
	if removed && len(r.users[user]) == 0 {
		delete(r.users, user)
		return true
	}
	return false
}

func (r *Registry) IsOnline(user model.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users[user]) > 0
}

// FanOut delivers payload to every live connection of user. A connection
// whose write fails is treated as dead and closed; closing breaks its read
// loop, so the serve loop that owns it unregisters it and the offline
// transition stays decided in exactly one place. Errors never reach the
// caller.
func (r *Registry) FanOut(user model.UserID, payload any) {
	r.mu.Lock()
	conns := make([]Sender, len(r.users[user]))
	copy(conns, r.users[user])
	r.mu.Unlock()

	for _, c := range conns {
		if err := c.SendJSON(payload); err != nil {
			c.Close()
		}
	}
}

func (r *Registry) OnlineUsers() []model.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]model.UserID, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids
}

// Stats is a point-in-time snapshot of the connection table.
type Stats struct {
	TotalOnlineUsers int                  `json:"total_online_users"`
	TotalConnections int                  `json:"total_connections"`
	Users            map[model.UserID]int `json:"users"`
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{Users: make(map[model.UserID]int, len(r.users))}
	for id, conns := range r.users {
		stats.Users[id] = len(conns)
		stats.TotalConnections += len(conns)
	}
	stats.TotalOnlineUsers = len(r.users)
	return stats
}
