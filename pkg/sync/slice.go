// Package sync implements the synchronization slice diff engine: slices, sync trees of content-addressed composite nodes, the
// per-root hash cache, the root-advise/node-fetch protocols, the
// preload/busy/waiting comparison state machine, and the heartbeat that
// drives a set of roots toward convergence. It is a layered client over
// pkg/client, the same way pkg/fetch is.
package sync

import (
	"crypto/sha256"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// Slice identifies the set of names a sync root covers: everything under
// NamePrefix reachable via TopoPrefix, optionally narrowed by Clauses.
type Slice struct {
	TopoPrefix name.Name
	NamePrefix name.Name
	Clauses    []string
	Version    uint64
}

// Encode appends the canonical wire form of s to buf.
func Encode(buf *ccnb.Charbuf, s Slice) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagSyncConfigSlice)
	ccnb.AppendOpenDTag(buf, ccnb.DTagTopologyPrefix)
	name.Encode(buf, s.TopoPrefix)
	ccnb.AppendClose(buf)
	ccnb.AppendOpenDTag(buf, ccnb.DTagNamePrefix)
	name.Encode(buf, s.NamePrefix)
	ccnb.AppendClose(buf)
	for _, clause := range s.Clauses {
		ccnb.AppendTaggedUData(buf, ccnb.DTagSliceClause, clause)
	}
	ccnb.AppendTaggedBinaryNumber(buf, ccnb.DTagSyncVersion, s.Version)
	ccnb.AppendClose(buf)
}

// Decode reads a Slice element, cursor already on its DTagOpen token.
func Decode(r *ccnb.TokenReader) (Slice, error) {
	var s Slice

	if ok, err := r.TryDTagOpen(ccnb.DTagTopologyPrefix); err != nil {
		return Slice{}, err
	} else if !ok {
		return Slice{}, ccnb.ErrSchema
	}
	if ok, err := r.TryDTagOpen(ccnb.DTagName); err != nil {
		return Slice{}, err
	} else if !ok {
		return Slice{}, ccnb.ErrSchema
	}
	topo, err := name.Decode(r, nil)
	if err != nil {
		return Slice{}, err
	}
	s.TopoPrefix = topo
	if err := r.CheckClose(); err != nil { // close TopologyPrefix
		return Slice{}, err
	}

	if ok, err := r.TryDTagOpen(ccnb.DTagNamePrefix); err != nil {
		return Slice{}, err
	} else if !ok {
		return Slice{}, ccnb.ErrSchema
	}
	if ok, err := r.TryDTagOpen(ccnb.DTagName); err != nil {
		return Slice{}, err
	} else if !ok {
		return Slice{}, ccnb.ErrSchema
	}
	prefix, err := name.Decode(r, nil)
	if err != nil {
		return Slice{}, err
	}
	s.NamePrefix = prefix
	if err := r.CheckClose(); err != nil { // close NamePrefix
		return Slice{}, err
	}

	for {
		ok, err := r.TryDTagOpen(ccnb.DTagSliceClause)
		if err != nil {
			return Slice{}, err
		}
		if !ok {
			break
		}
		if err := r.Advance(); err != nil {
			return Slice{}, err
		}
		text, isText := r.MatchUData()
		if !isText {
			return Slice{}, ccnb.ErrSchema
		}
		if err := r.CheckClose(); err != nil {
			return Slice{}, err
		}
		s.Clauses = append(s.Clauses, string(text))
	}

	version, err := ccnb.RequiredTaggedBinaryNumber(r, ccnb.DTagSyncVersion, 0, 8)
	if err != nil {
		return Slice{}, err
	}
	s.Version = version

	if err := r.CheckClose(); err != nil {
		return Slice{}, err
	}
	return s, nil
}

// Hash returns the SHA-256 of s's canonical encoding, identifying the
// slice.
func (s Slice) Hash() [32]byte {
	buf := ccnb.NewCharbuf(128)
	Encode(buf, s)
	return sha256.Sum256(buf.Bytes())
}
