package sync

import (
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/client"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// Manager drives one or more Roots against a single pkg/client.Handle:
// it exists so an application syncing several slices doesn't have to
// remember to Tick each one itself.
type Manager struct {
	h     *client.Handle
	roots map[[32]byte]*Root
}

// NewManager returns an empty Manager bound to h.
func NewManager(h *client.Handle) *Manager {
	return &Manager{h: h, roots: make(map[[32]byte]*Root)}
}

// AddSlice starts tracking slice under topo with the given initial local
// names, returning the Root so callers can update its local set later
// via Root.SetLocalNames. onAdded is invoked with names discovered
// remotely but absent locally as comparisons complete.
func (m *Manager) AddSlice(topo name.Name, slice Slice, names []name.Name, onAdded func([]name.Name), opts ...Option) *Root {
	root := NewRoot(m.h, topo, slice, names, onAdded, opts...)
	m.roots[slice.Hash()] = root
	return root
}

// RemoveSlice stops tracking the slice identified by sliceHash.
func (m *Manager) RemoveSlice(sliceHash [32]byte) {
	delete(m.roots, sliceHash)
}

// Root returns the Root tracking sliceHash, if any.
func (m *Manager) Root(sliceHash [32]byte) (*Root, bool) {
	r, ok := m.roots[sliceHash]
	return r, ok
}

// Tick drives every tracked Root's heartbeat and in-progress comparison.
// Call this once per iteration of the loop driving h.Run, the same way
// a consumer drives a pkg/fetch Stream's Read in its own poll loop.
func (m *Manager) Tick(now time.Time) {
	for _, root := range m.roots {
		root.Tick(now)
	}
}
