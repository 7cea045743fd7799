// Package name implements CCNx hierarchical names: an ordered sequence of
// opaque byte-string components, their canonical ordering, wire encoding
// via pkg/ccnb, and ccnx: URI encoding/decoding.
package name

import (
	"bytes"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
)

// Name is an ordered sequence of components; each component is an opaque
// byte string.
type Name struct {
	Components [][]byte
}

// New builds a Name from raw component byte strings.
func New(components ...[]byte) Name {
	return Name{Components: components}
}

// FromStrings is a convenience constructor for ASCII/UTF-8 components.
func FromStrings(components ...string) Name {
	cs := make([][]byte, len(components))
	for i, s := range components {
		cs[i] = []byte(s)
	}
	return Name{Components: cs}
}

// Len returns the number of components.
func (n Name) Len() int { return len(n.Components) }

// Component returns the i'th component.
func (n Name) Component(i int) []byte { return n.Components[i] }

// Append returns a new Name with component appended.
func (n Name) Append(component []byte) Name {
	out := make([][]byte, len(n.Components)+1)
	copy(out, n.Components)
	out[len(n.Components)] = component
	return Name{Components: out}
}

// Prefix returns the first k components as a new Name.
func (n Name) Prefix(k int) Name {
	if k > len(n.Components) {
		k = len(n.Components)
	}
	return Name{Components: n.Components[:k:k]}
}

// IsPrefixOf reports whether n is a component-wise prefix of other.
func (n Name) IsPrefixOf(other Name) bool {
	if n.Len() > other.Len() {
		return false
	}
	for i := 0; i < n.Len(); i++ {
		if !bytes.Equal(n.Components[i], other.Components[i]) {
			return false
		}
	}
	return true
}

// compareComponent implements the canonical component order: shorter-first,
// then lexicographic over raw bytes.
func compareComponent(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return bytes.Compare(a, b)
}

// Compare implements the canonical name order: extends
// component-wise comparison lexicographically across the whole name,
// shorter name wins ties on a common prefix. Total, antisymmetric,
// transitive.
func Compare(a, b Name) int {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if c := compareComponent(a.Components[i], b.Components[i]); c != 0 {
			return c
		}
	}
	switch {
	case a.Len() < b.Len():
		return -1
	case a.Len() > b.Len():
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b have identical components.
func Equal(a, b Name) bool { return Compare(a, b) == 0 }

// Encode appends the wire form of n (a Name element containing zero or
// more Component blobs) to buf.
func Encode(buf *ccnb.Charbuf, n Name) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagName)
	for _, c := range n.Components {
		ccnb.AppendTaggedBlob(buf, ccnb.DTagComponent, c)
	}
	ccnb.AppendClose(buf)
}

// Decode reads a Name element at the reader's cursor (which must already
// be positioned on the Name's DTagOpen token, e.g. via TryDTagOpen). It
// also appends each component's [start,end) byte offsets to comps, so that
// component i spans buf[comps[i]:comps[i+1]] and comps[n] is the tail
// index, matching the wire's offset-table convention.
func Decode(r *ccnb.TokenReader, comps *ccnb.IndexBuf) (Name, error) {
	var components [][]byte
	for {
		start := r.Pos()
		ok, err := r.TryDTagOpen(ccnb.DTagComponent)
		if err != nil {
			return Name{}, err
		}
		if !ok {
			break
		}
		if err := r.Advance(); err != nil {
			return Name{}, err
		}
		blob, isBlob := r.MatchBlob()
		if !isBlob {
			return Name{}, ccnb.ErrSchema
		}
		if err := r.CheckClose(); err != nil {
			return Name{}, err
		}
		if comps != nil {
			comps.Append(start)
		}
		components = append(components, blob)
	}
	if comps != nil {
		comps.Append(r.Pos())
	}
	if err := r.CheckClose(); err != nil {
		return Name{}, err
	}
	return Name{Components: components}, nil
}
