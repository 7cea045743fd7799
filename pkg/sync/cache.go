package sync

import "time"

// State is a bitmask of what a handle knows about a content hash.
type State int

const (
	StateLocal State = 1 << iota
	StateRemote
	StateFetching
	StateCovered
)

func (s State) has(bit State) bool { return s&bit != 0 }

// entry is one hash cache record: state bits, node contents local,
// node contents remote, last-used, last-remote-fetched, and a busy
// counter.
type entry struct {
	state            State
	local            *Node
	remote           *Node
	lastUsed         time.Time
	lastRemoteFetch  time.Time
	busy             int
}

// Cache is the per-root, per-handle hash cache, plus the
// recently-observed-remote-hash list the exclusion list is built from.
type Cache struct {
	entries map[[32]byte]*entry
	seen    []seenRemote // most-recent-first
}

type seenRemote struct {
	hash [32]byte
	at   time.Time
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[[32]byte]*entry)}
}

func (c *Cache) entryFor(hash [32]byte) *entry {
	e, ok := c.entries[hash]
	if !ok {
		e = &entry{}
		c.entries[hash] = e
	}
	return e
}

// State returns the recorded state bits for hash (zero if never seen).
func (c *Cache) State(hash [32]byte) State {
	e, ok := c.entries[hash]
	if !ok {
		return 0
	}
	return e.state
}

// PutLocal records hash as LOCAL (we built/own it), storing node.
func (c *Cache) PutLocal(hash [32]byte, node *Node) {
	e := c.entryFor(hash)
	e.state |= StateLocal
	e.local = node
	e.lastUsed = time.Now()
}

// PutRemote records hash as REMOTE (we received it from a peer), storing
// node and adding it to the recently-seen list the exclusion list draws
// from.
func (c *Cache) PutRemote(hash [32]byte, node *Node, now time.Time) {
	e := c.entryFor(hash)
	e.state = (e.state &^ StateFetching) | StateRemote
	e.remote = node
	e.lastRemoteFetch = now
	e.lastUsed = now
	c.seen = append([]seenRemote{{hash: hash, at: now}}, c.seen...)
}

// NoteRemoteHash records that a peer announced hash as its current root,
// without (yet) holding that node's contents: it sets the REMOTE bit and
// adds the hash to the recently-seen list, but PutRemote is still what
// stores the decoded node once a node-fetch resolves it.
func (c *Cache) NoteRemoteHash(hash [32]byte, now time.Time) {
	e := c.entryFor(hash)
	e.state |= StateRemote
	e.lastUsed = now
	c.seen = append([]seenRemote{{hash: hash, at: now}}, c.seen...)
}

// MarkFetching records hash as FETCHING (a node-fetch is in flight).
func (c *Cache) MarkFetching(hash [32]byte) {
	e := c.entryFor(hash)
	e.state |= StateFetching
}

// ClearFetching clears the FETCHING bit (a fetch failed or completed).
func (c *Cache) ClearFetching(hash [32]byte) {
	e := c.entryFor(hash)
	e.state &^= StateFetching
}

// MarkCovered records hash as COVERED: we can reconstruct this subtree
// from what we already have, so future root-advise rounds can exclude
// it.
func (c *Cache) MarkCovered(hash [32]byte) {
	e := c.entryFor(hash)
	e.state |= StateCovered
}

// LocalNode and RemoteNode return the stored contents for hash, if any.
func (c *Cache) LocalNode(hash [32]byte) (*Node, bool) {
	e, ok := c.entries[hash]
	if !ok || e.local == nil {
		return nil, false
	}
	return e.local, true
}

func (c *Cache) RemoteNode(hash [32]byte) (*Node, bool) {
	e, ok := c.entries[hash]
	if !ok || e.remote == nil {
		return nil, false
	}
	return e.remote, true
}

// Acquire/Release implement the busy counter: incremented while a fetch
// references a cache entry, decremented on final upcall.
func (c *Cache) Acquire(hash [32]byte) {
	c.entryFor(hash).busy++
}

func (c *Cache) Release(hash [32]byte) {
	e := c.entryFor(hash)
	if e.busy > 0 {
		e.busy--
	}
}

// CoveredRecentRemoteHashes returns the hashes seen as REMOTE and marked
// COVERED within the last within duration, most-recent-first.
func (c *Cache) CoveredRecentRemoteHashes(now time.Time, within time.Duration) [][32]byte {
	var out [][32]byte
	for _, s := range c.seen {
		if now.Sub(s.at) > within {
			break // seen is most-recent-first, so everything after this is older still
		}
		e, ok := c.entries[s.hash]
		if ok && e.state.has(StateCovered) {
			out = append(out, s.hash)
		}
	}
	return out
}

// pruneSeen drops entries older than within from the seen list, bounding
// its growth.
func (c *Cache) pruneSeen(now time.Time, within time.Duration) {
	cut := len(c.seen)
	for i, s := range c.seen {
		if now.Sub(s.at) > within {
			cut = i
			break
		}
	}
	c.seen = c.seen[:cut]
}
