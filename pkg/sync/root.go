package sync

import (
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnlog"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/client"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// HeartbeatInterval is how often a Root re-issues its root-advise
// interest while idle.
const HeartbeatInterval = 1 * time.Second

// StallTimeout is how long a Root lets a single comparison sit without
// any resolving node-fetch before abandoning it; each node that arrives
// restarts that window.
const StallTimeout = 20 * time.Second

// seenHashRetention bounds how long a Root's recently-seen-remote-hash
// list holds an entry, so a long-running process's cache doesn't grow
// without bound.
const seenHashRetention = 10 * time.Minute

// Root owns one slice's sync state against a single pkg/client.Handle:
// the local tree, the hash cache, at most one in-flight comparison
// against a peer-announced root, and the heartbeat that keeps both the
// consumer side (root-advise requests) and producer side (answering
// peers' root-advise/node-fetch/slice-content interests) alive.
type Root struct {
	h     *client.Handle
	topo  name.Name
	slice Slice

	sliceHash [32]byte
	cache     *Cache

	localRoot *Node
	localHash [32]byte

	comparison      *Comparison
	comparisonStart time.Time

	lastHeartbeat time.Time

	onAdded   func([]name.Name)
	addedSeen map[string]bool

	heartbeatInterval time.Duration
	stallTimeout      time.Duration

	log *ccnlog.Logger
}

// Option configures a Root at NewRoot time.
type Option func(*Root)

// WithHeartbeatInterval overrides how often a Root re-issues its
// root-advise interest while idle (HeartbeatInterval by default).
func WithHeartbeatInterval(d time.Duration) Option {
	return func(r *Root) { r.heartbeatInterval = d }
}

// WithStallTimeout overrides how long a Root lets a single comparison sit
// without any resolving node-fetch before abandoning it (StallTimeout by
// default).
func WithStallTimeout(d time.Duration) Option {
	return func(r *Root) { r.stallTimeout = d }
}

// NewRoot builds a Root for slice under topo, seeded with the initial
// local name set, and registers the interest filters that answer peers'
// root-advise, node-fetch, and slice-content requests. onAdded, if
// non-nil, is called with each batch of names a completed comparison
// found remotely but not locally; it is the caller's job to turn those
// names into pkg/fetch reads.
func NewRoot(h *client.Handle, topo name.Name, slice Slice, names []name.Name, onAdded func([]name.Name), opts ...Option) *Root {
	r := &Root{
		h:                 h,
		topo:              topo,
		slice:             slice,
		sliceHash:         slice.Hash(),
		cache:             NewCache(),
		onAdded:           onAdded,
		addedSeen:         make(map[string]bool),
		heartbeatInterval: HeartbeatInterval,
		stallTimeout:      StallTimeout,
		log:               ccnlog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.SetLocalNames(names)
	r.registerHandlers()
	return r
}

// SetLocalNames rebuilds the local tree from names, storing every node
// (leaves to root) into the cache as LOCAL.
func (r *Root) SetLocalNames(names []name.Name) {
	root, all := BuildTree(names)
	for _, n := range all {
		r.cache.PutLocal(n.Hash(), n)
	}
	r.localRoot = root
	r.localHash = root.Hash()
}

// LocalHash returns the current local root's content hash.
func (r *Root) LocalHash() [32]byte { return r.localHash }

func (r *Root) registerHandlers() {
	r.h.SetInterestFilter(r.topo.Append(append([]byte(nil), markerRootAdvise...)), client.HandlerFunc(r.onRootAdviseRequest))
	r.h.SetInterestFilter(r.topo.Append(append([]byte(nil), markerNodeFetch...)), client.HandlerFunc(r.onNodeFetchRequest))
	r.h.SetInterestFilter(r.topo.Append(append([]byte(nil), markerSliceCont...)), client.HandlerFunc(r.onSliceContentRequest))
}

// onRootAdviseRequest answers an incoming root-advise interest: if it
// names our slice and the requester's declared root (if any) differs
// from ours, we publish our current root hash so they can pull it.
func (r *Root) onRootAdviseRequest(h *client.Handle, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
	if kind != ccnerr.KindInterest {
		return ccnerr.ResultOK
	}
	sliceHash, theirRoot, haveRoot, ok := IsRootAdvise(r.topo, info.Interest.Name)
	if !ok || sliceHash != r.sliceHash {
		return ccnerr.ResultOK
	}
	if haveRoot && theirRoot == r.localHash {
		return ccnerr.ResultOK
	}
	reply := &schema.ContentObject{
		Name: info.Interest.Name,
		SignedInfo: schema.SignedInfo{
			Timestamp:        ccnb.FromUnixSeconds(nowSeconds()),
			Type:             schema.ContentTypeData,
			FreshnessSeconds: 1,
		},
		Content: r.localHash[:],
	}
	_ = r.h.Put(reply)
	return ccnerr.ResultInterestConsumed
}

// onNodeFetchRequest answers a node-fetch interest with the encoded node
// for the requested hash, if we have it, either as our own or as
// something we already fetched from someone else (a handle relays what
// it knows).
func (r *Root) onNodeFetchRequest(h *client.Handle, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
	if kind != ccnerr.KindInterest {
		return ccnerr.ResultOK
	}
	sliceHash, hash, ok := IsNodeFetch(r.topo, info.Interest.Name)
	if !ok || sliceHash != r.sliceHash {
		return ccnerr.ResultOK
	}
	node, found := r.cache.LocalNode(hash)
	if !found {
		node, found = r.cache.RemoteNode(hash)
	}
	if !found {
		return ccnerr.ResultOK
	}
	buf := ccnb.NewCharbuf(512)
	EncodeNode(buf, node)
	reply := &schema.ContentObject{
		Name: info.Interest.Name,
		SignedInfo: schema.SignedInfo{
			Timestamp:        ccnb.FromUnixSeconds(nowSeconds()),
			Type:             schema.ContentTypeData,
			FreshnessSeconds: -1,
		},
		Content: buf.Bytes(),
	}
	_ = r.h.Put(reply)
	return ccnerr.ResultInterestConsumed
}

// onSliceContentRequest answers a slice-content interest by publishing
// the slice's own configuration, letting a peer that only knows the
// slice hash fetch its definition.
func (r *Root) onSliceContentRequest(h *client.Handle, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
	if kind != ccnerr.KindInterest {
		return ccnerr.ResultOK
	}
	sliceHash, ok := matchSliceContent(r.topo, info.Interest.Name)
	if !ok || sliceHash != r.sliceHash {
		return ccnerr.ResultOK
	}
	buf := ccnb.NewCharbuf(256)
	Encode(buf, r.slice)
	reply := &schema.ContentObject{
		Name: info.Interest.Name,
		SignedInfo: schema.SignedInfo{
			Timestamp:        ccnb.FromUnixSeconds(nowSeconds()),
			Type:             schema.ContentTypeData,
			FreshnessSeconds: -1,
		},
		Content: buf.Bytes(),
	}
	_ = r.h.Put(reply)
	return ccnerr.ResultInterestConsumed
}

func matchSliceContent(topo, n name.Name) ([32]byte, bool) {
	rest, matched := stripMarker(topo, n, markerSliceCont)
	if !matched || len(rest) < 1 {
		return [32]byte{}, false
	}
	return parseHashComponent(rest[0])
}

// Tick drives both the heartbeat (re-issuing the root-advise interest
// at HeartbeatInterval) and any comparison currently in progress. It is
// meant to be called from the same loop driving h.Run, e.g. once per
// Run iteration.
func (r *Root) Tick(now time.Time) {
	if r.comparison != nil {
		r.driveComparison(now)
	}
	if now.Sub(r.lastHeartbeat) >= r.heartbeatInterval {
		r.lastHeartbeat = now
		r.cache.pruneSeen(now, seenHashRetention)
		r.sendAdvise(now)
	}
}

func (r *Root) driveComparison(now time.Time) {
	if r.comparisonStart.IsZero() {
		r.comparisonStart = now
	}
	if now.Sub(r.comparisonStart) > r.stallTimeout {
		r.log.Warnf("sync: comparison for slice %x stalled, abandoning", r.sliceHash[:4])
		r.comparison = nil
		return
	}
	switch r.comparison.Step() {
	case StateCompareDone:
		r.deliverAdded(r.comparison.Added())
		r.comparison = nil
	case StateCompareError:
		r.log.Warnf("sync: comparison for slice %x failed: %v", r.sliceHash[:4], r.comparison.Err())
		r.comparison = nil
	}
}

func (r *Root) deliverAdded(names []name.Name) {
	if r.onAdded == nil {
		return
	}
	var fresh []name.Name
	for _, n := range names {
		key := name.FormatURI(n)
		if r.addedSeen[key] {
			continue
		}
		r.addedSeen[key] = true
		fresh = append(fresh, n)
	}
	if len(fresh) > 0 {
		r.onAdded(fresh)
	}
}

// sendAdvise issues a fresh root-advise interest for this slice,
// excluding hashes we already know about, wiring replies to
// beginComparison.
func (r *Root) sendAdvise(now time.Time) {
	n := RootAdviseName(r.topo, r.sliceHash, r.localHash, true)
	template := &schema.Interest{
		MinSuffixComponents: -1,
		MaxSuffixComponents: -1,
		ChildSelector:       -1,
		AnswerOriginKind:    -1,
		Scope:               -1,
		Exclude:             buildExcludeList(r.cache, r.localHash, now),
	}
	_ = r.h.ExpressInterest(n, template, client.HandlerFunc(r.onAdviseReply))
}

func (r *Root) onAdviseReply(h *client.Handle, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
	if kind != ccnerr.KindContent {
		return ccnerr.ResultOK
	}
	if len(info.ContentObject.Content) != 32 {
		return ccnerr.ResultOK
	}
	var remoteHash [32]byte
	copy(remoteHash[:], info.ContentObject.Content)
	if remoteHash == r.localHash {
		return ccnerr.ResultOK
	}
	r.cache.NoteRemoteHash(remoteHash, time.Now())
	r.beginComparison(remoteHash)
	return ccnerr.ResultOK
}

// beginComparison starts comparing against remoteHash, replacing any
// comparison already in progress against a different, now-stale root.
func (r *Root) beginComparison(remoteHash [32]byte) {
	if r.comparison != nil && r.comparison.remoteRootHash == remoteHash {
		return
	}
	r.comparisonStart = time.Time{}
	r.comparison = NewComparison(r.cache, r.localRoot, remoteHash, r.requestNode)
}

// requestNode issues a node-fetch interest for hash, storing the
// decoded node into the cache and notifying the comparison on arrival.
func (r *Root) requestNode(hash [32]byte) {
	n := NodeFetchName(r.topo, r.sliceHash, hash)
	_ = r.h.ExpressInterest(n, nil, client.HandlerFunc(func(h *client.Handle, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
		switch kind {
		case ccnerr.KindContent:
			node, err := decodeNodeContent(info.ContentObject.Content)
			if err != nil {
				r.cache.ClearFetching(hash)
				return ccnerr.ResultOK
			}
			r.cache.PutRemote(hash, node, time.Now())
			r.comparisonStart = time.Time{} // a resolved node-fetch restarts the stall window
			if r.comparison != nil {
				r.comparison.NodeArrived(hash)
			}
			return ccnerr.ResultOK
		case ccnerr.KindInterestTimedOut:
			r.cache.ClearFetching(hash)
			return ccnerr.ResultOK
		default:
			return ccnerr.ResultOK
		}
	}))
}

func decodeNodeContent(content []byte) (*Node, error) {
	r := ccnb.NewTokenReader(content)
	if ok, err := r.TryDTagOpen(ccnb.DTagSyncNode); err != nil {
		return nil, err
	} else if !ok {
		return nil, ccnb.ErrSchema
	}
	return DecodeNode(r)
}

// nowSeconds returns the current wall-clock time as float seconds, the
// form ccnb.FromUnixSeconds takes, for the handlers answering peers'
// requests, which receive no now parameter.
func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
