package schema

import (
	"hash/fnv"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
)

// ExcludeTermKind distinguishes the three kinds of term an Exclude set can
// carry: a sorted run of Component entries with optional "any" gaps and
// Bloom approximations between them.
type ExcludeTermKind int

const (
	ExcludeComponent ExcludeTermKind = iota
	ExcludeAny
	ExcludeBloom
)

// ExcludeTerm is one element of an Exclude set's ordered term run.
type ExcludeTerm struct {
	Kind      ExcludeTermKind
	Component []byte // valid when Kind == ExcludeComponent
	Bloom     []byte // valid when Kind == ExcludeBloom
}

// Exclude is an ordered, canonically-sorted run of exclusion terms carried
// in an Interest.
type Exclude struct {
	Terms []ExcludeTerm
}

// Excludes reports whether candidate is ruled out by e: either it equals
// an explicit Component term, or it falls inside the span bracketed by an
// Any/Bloom gap term sitting between two Component terms (or at either
// open end of the run).
func (e *Exclude) Excludes(candidate []byte) bool {
	if e == nil {
		return false
	}
	for i, term := range e.Terms {
		switch term.Kind {
		case ExcludeComponent:
			if compareComponent(term.Component, candidate) == 0 {
				return true
			}
		case ExcludeAny:
			if e.gapCovers(i, candidate) {
				return true
			}
		case ExcludeBloom:
			if bloomMayContain(term.Bloom, candidate) && e.gapCovers(i, candidate) {
				return true
			}
		}
	}
	return false
}

// gapCovers reports whether candidate falls in the open interval bounded
// by the nearest Component terms flanking index i (an Any or Bloom term),
// i.e. strictly between the previous and next explicit Component, or
// unbounded on whichever side has no flanking Component.
func (e *Exclude) gapCovers(i int, candidate []byte) bool {
	lowOK := true
	highOK := true
	for j := i - 1; j >= 0; j-- {
		if e.Terms[j].Kind == ExcludeComponent {
			lowOK = compareComponent(e.Terms[j].Component, candidate) < 0
			break
		}
	}
	for j := i + 1; j < len(e.Terms); j++ {
		if e.Terms[j].Kind == ExcludeComponent {
			highOK = compareComponent(candidate, e.Terms[j].Component) < 0
			break
		}
	}
	return lowOK && highOK
}

// compareComponent orders raw component bytes canonically (shorter
// first, then lexicographic); duplicated here because pkg/name's
// identical comparator is unexported.
func compareComponent(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// bloomFilterHashes is the number of hash probes per membership test. A
// small fixed k keeps the approximate filter cheap to build and to check -
// this is a probabilistic over-approximation, not an exact exclusion list.
const bloomFilterHashes = 4

// bloomMayContain reports whether candidate might be a member of the set
// approximated by filter (false negatives impossible, false positives
// possible - the standard Bloom filter contract).
func bloomMayContain(filter []byte, candidate []byte) bool {
	if len(filter) == 0 {
		return false
	}
	bits := len(filter) * 8
	for i := 0; i < bloomFilterHashes; i++ {
		h := fnv.New64a()
		h.Write(candidate)
		h.Write([]byte{byte(i)})
		idx := int(h.Sum64() % uint64(bits))
		if filter[idx/8]&(1<<uint(idx%8)) == 0 {
			return false
		}
	}
	return true
}

// BuildBloom constructs an approximate Bloom filter of byteLen bytes over
// members, for use as an ExcludeBloom term.
func BuildBloom(byteLen int, members [][]byte) []byte {
	if byteLen <= 0 {
		byteLen = 13
	}
	filter := make([]byte, byteLen)
	bits := byteLen * 8
	for _, m := range members {
		for i := 0; i < bloomFilterHashes; i++ {
			h := fnv.New64a()
			h.Write(m)
			h.Write([]byte{byte(i)})
			idx := int(h.Sum64() % uint64(bits))
			filter[idx/8] |= 1 << uint(idx%8)
		}
	}
	return filter
}

// EncodeExclude appends the wire form of e.
func EncodeExclude(buf *ccnb.Charbuf, e *Exclude) {
	if e == nil {
		return
	}
	ccnb.AppendOpenDTag(buf, ccnb.DTagExclude)
	for _, term := range e.Terms {
		switch term.Kind {
		case ExcludeComponent:
			ccnb.AppendTaggedBlob(buf, ccnb.DTagComponent, term.Component)
		case ExcludeAny:
			ccnb.AppendOpenDTag(buf, ccnb.DTagAny)
			ccnb.AppendClose(buf)
		case ExcludeBloom:
			ccnb.AppendTaggedBlob(buf, ccnb.DTagBloom, term.Bloom)
		}
	}
	ccnb.AppendClose(buf)
}

// DecodeExclude reads an Exclude element assuming the reader's cursor is
// already positioned on its DTagOpen token (matched via TryDTagOpen).
func DecodeExclude(r *ccnb.TokenReader) (*Exclude, error) {
	var terms []ExcludeTerm
	for {
		if ok, err := r.TryDTagOpen(ccnb.DTagComponent); err != nil {
			return nil, err
		} else if ok {
			if err := r.Advance(); err != nil {
				return nil, err
			}
			blob, isBlob := r.MatchBlob()
			if !isBlob {
				return nil, ccnb.ErrSchema
			}
			if err := r.CheckClose(); err != nil {
				return nil, err
			}
			terms = append(terms, ExcludeTerm{Kind: ExcludeComponent, Component: blob})
			continue
		}
		if ok, err := r.TryDTagOpen(ccnb.DTagAny); err != nil {
			return nil, err
		} else if ok {
			if err := r.CheckClose(); err != nil {
				return nil, err
			}
			terms = append(terms, ExcludeTerm{Kind: ExcludeAny})
			continue
		}
		if ok, err := r.TryDTagOpen(ccnb.DTagBloom); err != nil {
			return nil, err
		} else if ok {
			if err := r.Advance(); err != nil {
				return nil, err
			}
			blob, isBlob := r.MatchBlob()
			if !isBlob {
				return nil, ccnb.ErrSchema
			}
			if err := r.CheckClose(); err != nil {
				return nil, err
			}
			terms = append(terms, ExcludeTerm{Kind: ExcludeBloom, Bloom: blob})
			continue
		}
		break
	}
	if err := r.CheckClose(); err != nil {
		return nil, err
	}
	return &Exclude{Terms: terms}, nil
}
