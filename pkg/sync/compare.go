package sync

import (
	"errors"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// CompareState is a Comparison's current step in the init -> preload ->
// busy -> waiting -> done/error machine of comparing two roots.
type CompareState int

const (
	StateCompareInit CompareState = iota
	StateComparePreload
	StateCompareBusy
	StateCompareWaiting
	StateCompareDone
	StateCompareError
)

func (s CompareState) String() string {
	switch s {
	case StateCompareInit:
		return "init"
	case StateComparePreload:
		return "preload"
	case StateCompareBusy:
		return "busy"
	case StateCompareWaiting:
		return "waiting"
	case StateCompareDone:
		return "done"
	case StateCompareError:
		return "error"
	default:
		return "unknown"
	}
}

var errLocalNodeMissing = errors.New("sync: local subtree node missing from cache")

// Comparison walks a local and a remote sync tree in canonical name
// order, descending into subtree references whose hashes differ and
// skipping whole subtrees whose hashes match, to find names present
// remotely but not locally. It is a single
// resumable step function: Step can be called repeatedly, pausing in
// StateCompareWaiting whenever it needs a remote node this handle hasn't
// fetched yet, and picking back up from exactly where it left off once
// NodeArrived reports that fetch completed.
type Comparison struct {
	cache          *Cache
	localWalker    *walker
	remoteWalker   *walker
	remoteRootHash [32]byte

	state       CompareState
	pendingHash [32]byte
	err         error

	requestNode func(hash [32]byte)
}

// NewComparison starts a comparison of localRoot against the tree
// rooted at remoteRootHash. requestNode is called whenever the
// comparison needs a node it doesn't have cached; the caller is
// expected to issue a node-fetch interest and, once the reply arrives
// and is stored in cache, call NodeArrived with the same hash.
func NewComparison(cache *Cache, localRoot *Node, remoteRootHash [32]byte, requestNode func(hash [32]byte)) *Comparison {
	c := &Comparison{
		cache:          cache,
		remoteRootHash: remoteRootHash,
		requestNode:    requestNode,
		state:          StateCompareInit,
	}
	c.localWalker = newWalker(c.resolveLocal, localRoot)
	return c
}

func (c *Comparison) resolveLocal(hash [32]byte) (*Node, bool)  { return c.cache.LocalNode(hash) }
func (c *Comparison) resolveRemote(hash [32]byte) (*Node, bool) { return c.cache.RemoteNode(hash) }

// State returns the comparison's current state.
func (c *Comparison) State() CompareState { return c.state }

// Err returns the error that moved the comparison to StateCompareError,
// if any.
func (c *Comparison) Err() error { return c.err }

// Added returns every name found so far that the remote root has and
// the local root doesn't. Valid to call at any point, not just once
// Step reaches StateCompareDone: a consumer may start fetching content
// for names already discovered while the comparison keeps running.
func (c *Comparison) Added() []name.Name {
	if c.remoteWalker == nil {
		return nil
	}
	return c.remoteWalker.Added()
}

// Step advances the comparison by one unit of work and returns the
// resulting state. Callers should keep calling Step while it returns
// StateCompareBusy or StateComparePreload, stop and wait for an
// external event while it returns StateCompareWaiting, and stop for
// good on StateCompareDone or StateCompareError.
func (c *Comparison) Step() CompareState {
	switch c.state {
	case StateCompareInit:
		c.state = StateComparePreload
		return c.preload()
	case StateComparePreload:
		return c.preload()
	case StateCompareBusy:
		c.busyTick()
		return c.state
	default:
		return c.state
	}
}

// NodeArrived notifies the comparison that the node identified by hash
// has been stored in the cache (as REMOTE), letting a paused comparison
// resume. It is a no-op if the comparison isn't waiting on that hash.
func (c *Comparison) NodeArrived(hash [32]byte) {
	if c.state != StateCompareWaiting || hash != c.pendingHash {
		return
	}
	c.cache.ClearFetching(hash)
	if c.remoteWalker == nil {
		c.state = StateComparePreload
		c.preload()
		return
	}
	c.state = StateCompareBusy
	c.busyTick()
}

func (c *Comparison) preload() CompareState {
	node, ok := c.cache.RemoteNode(c.remoteRootHash)
	if !ok {
		c.request(c.remoteRootHash)
		return c.state
	}
	c.remoteWalker = newWalker(c.resolveRemote, node)
	c.state = StateCompareBusy
	c.busyTick()
	return c.state
}

func (c *Comparison) request(hash [32]byte) {
	c.pendingHash = hash
	c.state = StateCompareWaiting
	c.cache.MarkFetching(hash)
	if c.requestNode != nil {
		c.requestNode(hash)
	}
}

// busyTick runs the merge walk until it finishes, hits an element it
// must pause on, or errors. Both walkers advance in lockstep through
// canonical name order; whenever their current elements are subtree
// references with the same hash, the whole subtree is skipped unread,
// which is the payoff of content-addressing the tree at all.
func (c *Comparison) busyTick() {
	for c.state == StateCompareBusy {
		le, lok := c.localWalker.Peek()
		re, rok := c.remoteWalker.Peek()

		switch {
		case !lok && !rok:
			c.state = StateCompareDone
			return

		case !lok:
			if !c.consumeRemote(re) {
				return
			}

		case !rok:
			c.localWalker.Advance()

		case le.Kind == ElementSubtree && re.Kind == ElementSubtree && equalHash(le.Hash, re.Hash):
			c.cache.MarkCovered(le.Hash)
			c.localWalker.Advance()
			c.remoteWalker.Advance()

		default:
			switch cmp := name.Compare(le.MinName(), re.MinName()); {
			case cmp < 0:
				c.localWalker.Advance()
			case cmp > 0:
				if !c.consumeRemote(re) {
					return
				}
			default:
				if le.Kind == ElementLeaf && re.Kind == ElementLeaf {
					c.localWalker.Advance()
					c.remoteWalker.Advance()
					continue
				}
				if le.Kind == ElementSubtree {
					if !c.expandLocal() {
						return
					}
					continue
				}
				if !c.expandRemote() {
					return
				}
			}
		}
	}
}

// consumeRemote accounts for a remote-only element: a leaf is recorded
// as added directly, a subtree is expanded (or, if unresolved, turns
// into a pause). Returns false if busyTick should stop for this tick.
func (c *Comparison) consumeRemote(e Element) bool {
	if e.Kind == ElementLeaf {
		c.remoteWalker.MarkAddedHere()
		return true
	}
	return c.expandRemote()
}

func (c *Comparison) expandRemote() bool {
	hash, needed, expanded := c.remoteWalker.Expand()
	if expanded {
		return true
	}
	if needed {
		c.request(hash)
	}
	return false
}

// expandLocal should always succeed: every subtree reference in a
// locally-built tree was produced from a node this handle already holds. A
// miss here means the local cache lost an entry it shouldn't have.
func (c *Comparison) expandLocal() bool {
	_, needed, expanded := c.localWalker.Expand()
	if expanded {
		return true
	}
	if needed {
		c.err = errLocalNodeMissing
		c.state = StateCompareError
	}
	return false
}
