package phoneauth

import (
	"context"
	"sync"
	"time"
)

// Registry owns one Machine per client key and drops machines left idle too long.
type Registry struct {
	channel OTPChannel
	store   CooldownStore
	cfg     Config
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	machines map[string]*Machine
}

// NewRegistry creates a Registry whose machines share channel, store and cfg.
func NewRegistry(channel OTPChannel, store CooldownStore, cfg Config, idleTTL time.Duration) *Registry {
	return &Registry{
		channel:  channel,
		store:    store,
		cfg:      cfg,
		idleTTL:  idleTTL,
		now:      time.Now,
		machines: make(map[string]*Machine),
	}
}

// Machine returns the client's machine, creating it on first use.
// A machine that already finished is reset so the client can start over.
func (r *Registry) Machine(clientKey string) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[clientKey]
	if !ok {
		m = NewMachine(clientKey, r.channel, r.store, r.cfg)
		m.now = r.now
		m.lastTouch = r.now()
		r.machines[clientKey] = m
		return m
	}
	if state, _ := m.State(); state.Terminal() {
		m.Reset()
	}
	return m
}

// Lookup returns the client's machine without creating one.
func (r *Registry) Lookup(clientKey string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[clientKey]
	return m, ok
}

// Release forgets the client's machine, e.g. after a successful verification.
func (r *Registry) Release(clientKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.machines, clientKey)
}

// Len returns the number of live machines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.machines)
}

// Sweep removes machines untouched for longer than the idle TTL.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, m := range r.machines {
		if m.idleSince().Before(cutoff) {
			delete(r.machines, key)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
