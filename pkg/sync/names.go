package sync

import (
	"encoding/hex"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// Reserved CCNx keyword components marking sync protocol interests:
// 0xC1 + ".S." + short protocol tag, matching the convention CCNx uses
// for other reserved components (FinalBlockID, segment markers) of a
// single marker byte followed by an ASCII tag.
var (
	markerRootAdvise = []byte("\xC1.S.ra")
	markerNodeFetch  = []byte("\xC1.S.nf")
	markerSliceCont  = []byte("\xC1.S.cs")
)

// RootAdviseName builds the interest name a consumer sends to ask peers
// whether they have a newer root than root for the slice identified by
// sliceHash.
// An empty root omits the trailing component, asking "what root do you
// have at all".
func RootAdviseName(topo name.Name, sliceHash [32]byte, root [32]byte, haveRoot bool) name.Name {
	n := topo.Append(append([]byte(nil), markerRootAdvise...))
	n = n.Append(hashComponent(sliceHash))
	if haveRoot {
		n = n.Append(hashComponent(root))
	}
	return n
}

// NodeFetchName builds the interest name a consumer sends to fetch the
// encoded Node addressed by hash within slice sliceHash.
func NodeFetchName(topo name.Name, sliceHash [32]byte, hash [32]byte) name.Name {
	n := topo.Append(append([]byte(nil), markerNodeFetch...))
	n = n.Append(hashComponent(sliceHash))
	n = n.Append(hashComponent(hash))
	return n
}

// SliceContentName builds the name under which a slice's own
// configuration is published so peers can fetch it by hash.
func SliceContentName(topo name.Name, sliceHash [32]byte) name.Name {
	n := topo.Append(append([]byte(nil), markerSliceCont...))
	return n.Append(hashComponent(sliceHash))
}

// IsRootAdvise reports whether n is a root-advise interest under topo,
// returning the slice hash and, if present, the root hash the requester
// already has.
func IsRootAdvise(topo name.Name, n name.Name) (sliceHash [32]byte, root [32]byte, haveRoot bool, ok bool) {
	rest, matched := stripMarker(topo, n, markerRootAdvise)
	if !matched || len(rest) < 1 {
		return sliceHash, root, false, false
	}
	sh, ok1 := parseHashComponent(rest[0])
	if !ok1 {
		return sliceHash, root, false, false
	}
	sliceHash = sh
	if len(rest) >= 2 {
		rh, ok2 := parseHashComponent(rest[1])
		if !ok2 {
			return sliceHash, root, false, false
		}
		return sliceHash, rh, true, true
	}
	return sliceHash, root, false, true
}

// IsNodeFetch reports whether n is a node-fetch interest under topo,
// returning the slice hash and the requested node hash.
func IsNodeFetch(topo name.Name, n name.Name) (sliceHash [32]byte, hash [32]byte, ok bool) {
	rest, matched := stripMarker(topo, n, markerNodeFetch)
	if !matched || len(rest) < 2 {
		return sliceHash, hash, false
	}
	sh, ok1 := parseHashComponent(rest[0])
	h, ok2 := parseHashComponent(rest[1])
	if !ok1 || !ok2 {
		return sliceHash, hash, false
	}
	return sh, h, true
}

func stripMarker(topo name.Name, n name.Name, marker []byte) ([][]byte, bool) {
	if !topo.IsPrefixOf(n) {
		return nil, false
	}
	if n.Len() <= topo.Len() {
		return nil, false
	}
	if string(n.Component(topo.Len())) != string(marker) {
		return nil, false
	}
	rest := make([][]byte, 0, n.Len()-topo.Len()-1)
	for i := topo.Len() + 1; i < n.Len(); i++ {
		rest = append(rest, n.Component(i))
	}
	return rest, true
}

// hashComponent renders a 32 byte hash as a name component (hex text, so
// root-advise/node-fetch names remain printable in logs and traces).
func hashComponent(hash [32]byte) []byte {
	enc := make([]byte, hex.EncodedLen(len(hash)))
	hex.Encode(enc, hash[:])
	return enc
}

func parseHashComponent(c []byte) ([32]byte, bool) {
	var hash [32]byte
	if len(c) != hex.EncodedLen(len(hash)) {
		return hash, false
	}
	if _, err := hex.Decode(hash[:], c); err != nil {
		return hash, false
	}
	return hash, true
}
