package gateway

import "sync"

// Presence tracks every live socket per account. One account may hold
// several connections at once (multiple tabs, devices); the account is
// online while at least one remains.
type Presence struct {
	mu    sync.RWMutex
	conns map[string][]string
}

func NewPresence() *Presence {
	return &Presence{conns: make(map[string][]string)}
}

// Register records a connection. Re-registering the same connection id
// is a no-op.
func (p *Presence) Register(accountID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range p.conns[accountID] {
		if id == connID {
			return
		}
	}
	p.conns[accountID] = append(p.conns[accountID], connID)
}

// Deregister drops a connection and reports whether the account just
// went offline. The transition fires exactly once: a connection id that
// was never registered, or already removed, never reports it.
func (p *Presence) Deregister(accountID, connID string) (wentOffline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := p.conns[accountID]
	for i, id := range ids {
		if id != connID {
			continue
		}
		ids = append(ids[:i], ids[i+1:]...)
		if len(ids) == 0 {
			delete(p.conns, accountID)
			return true
		}
		p.conns[accountID] = ids
		return false
	}
	return false
}

// ConnectionsOf returns a copy of the account's live connection ids, in
// registration order.
func (p *Presence) ConnectionsOf(accountID string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := p.conns[accountID]
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Online reports whether the account has at least one live connection.
func (p *Presence) Online(accountID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns[accountID]) > 0
}

// Count returns the number of accounts currently online.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}
