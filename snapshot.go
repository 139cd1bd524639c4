package ioc

import (
	"reflect"
	"sort"
)

// RegistrationInfo is a point-in-time view of one entry.
type RegistrationInfo struct {
	Contract          string `json:"contract"`
	Implementation    string `json:"implementation"`
	Lifetime          string `json:"lifetime"`
	EffectiveLifetime string `json:"effective_lifetime"`
	Fixed             bool   `json:"fixed"`
	Cached            bool   `json:"cached"`
	Threads           int    `json:"threads,omitempty"`
}

// Registrations returns a snapshot of every entry, sorted by contract name.
func (r *Registry) Registrations() []RegistrationInfo {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	infos := make([]RegistrationInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Contract < infos[j].Contract
	})
	return infos
}

// Registration returns the snapshot of a single contract.
func (r *Registry) Registration(contract reflect.Type) (RegistrationInfo, bool) {
	r.mu.RLock()
	e, ok := r.entries[contract]
	r.mu.RUnlock()
	if !ok {
		return RegistrationInfo{}, false
	}
	return e.info(), true
}

func (e *entry) info() RegistrationInfo {
	e.registry.mu.RLock()
	lifetime := e.lifetime
	implementation := e.implementation
	fixed := e.fixed.IsValid()
	e.registry.mu.RUnlock()

	_, effective, _ := e.snapshot()
	cached, threads := e.state()
	return RegistrationInfo{
		Contract:          e.contract.String(),
		Implementation:    implementation.String(),
		Lifetime:          lifetime.String(),
		EffectiveLifetime: effective.String(),
		Fixed:             fixed,
		Cached:            cached || fixed,
		Threads:           threads,
	}
}
