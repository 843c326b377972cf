package core

import (
	"sort"
	"sync"
)

// Registry maps identities to the one client currently bound to each.
// The association lives here; clients never carry their identity.
type Registry struct {
	mu         sync.RWMutex
	byIdentity map[string]*Client
	byClient   map[*Client]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]*Client),
		byClient:   make(map[*Client]string),
	}
}

// Bind associates identity with c. A later bind for the same identity wins;
// the previous client stays open but is no longer reachable by identity.
// prev is the identity c was bound to before, if any.
func (r *Registry) Bind(identity string, c *Client) (prev string, superseded *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byClient[c]; ok && old != identity {
		prev = old
		if r.byIdentity[old] == c {
			delete(r.byIdentity, old)
		}
	}

	if other, ok := r.byIdentity[identity]; ok && other != c {
		superseded = other
		delete(r.byClient, other)
	}

	r.byIdentity[identity] = c
	r.byClient[c] = identity
	return prev, superseded
}

// Unbind removes the binding owned by c. A client that was superseded owns
// nothing and does not disturb the newer binding.
func (r *Registry) Unbind(c *Client) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byClient[c]
	if !ok {
		return "", false
	}
	delete(r.byClient, c)
	if r.byIdentity[identity] == c {
		delete(r.byIdentity, identity)
	}
	return identity, true
}

// Lookup returns the client bound to identity. Absence is a soft miss.
func (r *Registry) Lookup(identity string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byIdentity[identity]
	return c, ok
}

// IdentityOf returns the identity c is currently bound to.
func (r *Registry) IdentityOf(c *Client) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.byClient[c]
	return identity, ok
}

// Online lists bound identities in lexical order.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byIdentity))
	for identity := range r.byIdentity {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
