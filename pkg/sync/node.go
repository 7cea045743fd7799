package sync

import (
	"bytes"
	"crypto/sha256"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// ElementKind distinguishes a sync node's two kinds of child reference:
// a leaf (a name) or an inner reference (hash of a subtree).
type ElementKind int

const (
	ElementLeaf ElementKind = iota
	ElementSubtree
)

// Element is one child reference of a composite node. A subtree
// reference carries its own Min/Max name bounds so a comparison can prune
// without fetching the subtree's contents.
type Element struct {
	Kind ElementKind
	Leaf name.Name

	Hash [32]byte
	Min  name.Name
	Max  name.Name
}

// MinName and MaxName give the name bounds a comparison uses to order and
// prune elements, regardless of kind.
func (e Element) MinName() name.Name {
	if e.Kind == ElementLeaf {
		return e.Leaf
	}
	return e.Min
}

func (e Element) MaxName() name.Name {
	if e.Kind == ElementLeaf {
		return e.Leaf
	}
	return e.Max
}

// Node is a composite sync-tree node: an ordered list of child
// references, uniquely addressed by the hash of its own encoding. Level
// is an optional tree-depth hint, round-tripped but not required by
// comparison.
type Node struct {
	Level    int
	Elements []Element
}

// Hash returns the content address of n.
func (n *Node) Hash() [32]byte {
	buf := ccnb.NewCharbuf(256)
	EncodeNode(buf, n)
	return sha256.Sum256(buf.Bytes())
}

// EncodeNode appends the wire form of n to buf.
func EncodeNode(buf *ccnb.Charbuf, n *Node) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagSyncNode)
	ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagSyncNodeKind, int64(n.Level))
	ccnb.AppendOpenDTag(buf, ccnb.DTagSyncNodeElements)
	for _, e := range n.Elements {
		if e.Kind == ElementLeaf {
			ccnb.AppendOpenDTag(buf, ccnb.DTagSyncNodeElementLeaf)
			name.Encode(buf, e.Leaf)
			ccnb.AppendClose(buf)
			continue
		}
		ccnb.AppendOpenDTag(buf, ccnb.DTagSyncNodeElementProxy)
		ccnb.AppendTaggedBlob(buf, ccnb.DTagSyncContentHash, e.Hash[:])
		name.Encode(buf, e.Min)
		name.Encode(buf, e.Max)
		ccnb.AppendClose(buf)
	}
	ccnb.AppendClose(buf)
	ccnb.AppendClose(buf)
}

// DecodeNode reads a SyncNode element, cursor already on its DTagOpen
// token.
func DecodeNode(r *ccnb.TokenReader) (*Node, error) {
	var n Node

	if level, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagSyncNodeKind); err != nil {
		return nil, err
	} else if present {
		n.Level = int(level)
	}

	if ok, err := r.TryDTagOpen(ccnb.DTagSyncNodeElements); err != nil {
		return nil, err
	} else if !ok {
		return nil, ccnb.ErrSchema
	}
	for {
		if ok, err := r.TryDTagOpen(ccnb.DTagSyncNodeElementLeaf); err != nil {
			return nil, err
		} else if ok {
			if ok2, err := r.TryDTagOpen(ccnb.DTagName); err != nil {
				return nil, err
			} else if !ok2 {
				return nil, ccnb.ErrSchema
			}
			nm, err := name.Decode(r, nil)
			if err != nil {
				return nil, err
			}
			if err := r.CheckClose(); err != nil {
				return nil, err
			}
			n.Elements = append(n.Elements, Element{Kind: ElementLeaf, Leaf: nm})
			continue
		}

		if ok, err := r.TryDTagOpen(ccnb.DTagSyncNodeElementProxy); err != nil {
			return nil, err
		} else if ok {
			hash, err := ccnb.RequiredTaggedBlob(r, ccnb.DTagSyncContentHash, 32, 32)
			if err != nil {
				return nil, err
			}
			if ok2, err := r.TryDTagOpen(ccnb.DTagName); err != nil {
				return nil, err
			} else if !ok2 {
				return nil, ccnb.ErrSchema
			}
			min, err := name.Decode(r, nil)
			if err != nil {
				return nil, err
			}
			if ok2, err := r.TryDTagOpen(ccnb.DTagName); err != nil {
				return nil, err
			} else if !ok2 {
				return nil, ccnb.ErrSchema
			}
			max, err := name.Decode(r, nil)
			if err != nil {
				return nil, err
			}
			if err := r.CheckClose(); err != nil {
				return nil, err
			}
			var e Element
			e.Kind = ElementSubtree
			copy(e.Hash[:], hash)
			e.Min, e.Max = min, max
			n.Elements = append(n.Elements, e)
			continue
		}

		break
	}
	if err := r.CheckClose(); err != nil { // close SyncNodeElements
		return nil, err
	}
	if err := r.CheckClose(); err != nil { // close SyncNode
		return nil, err
	}
	sortElements(n.Elements) // decoded elements must be in canonical min-name order for comparison
	return &n, nil
}

// sortElements orders a node's children canonically by their min name.
func sortElements(elements []Element) {
	// Small node fan-outs in practice; insertion sort keeps this
	// allocation-free and avoids importing sort for a handful of items.
	for i := 1; i < len(elements); i++ {
		for j := i; j > 0 && name.Compare(elements[j].MinName(), elements[j-1].MinName()) < 0; j-- {
			elements[j], elements[j-1] = elements[j-1], elements[j]
		}
	}
}

// maxLeavesPerNode bounds a single node's fan-out before BuildTree splits
// a name set into subtrees (a deliberately unspecified implementation
// choice: only that the tree be content-addressed and that elements carry
// min/max bounds, not a particular splitting threshold).
const maxLeavesPerNode = 64

// BuildTree builds a sync tree over names, a flat node if the set is
// small enough, or split into even-sized subtrees otherwise, and returns
// every node produced (leaves first, so the caller can insert them into
// a cache as LOCAL before the root).
func BuildTree(names []name.Name) (root *Node, all []*Node) {
	sorted := make([]name.Name, len(names))
	copy(sorted, names)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && name.Compare(sorted[j], sorted[j-1]) < 0; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	root = buildTreeLevel(sorted, &all)
	return root, all
}

func buildTreeLevel(sorted []name.Name, all *[]*Node) *Node {
	if len(sorted) <= maxLeavesPerNode {
		n := &Node{Elements: make([]Element, len(sorted))}
		for i, nm := range sorted {
			n.Elements[i] = Element{Kind: ElementLeaf, Leaf: nm}
		}
		*all = append(*all, n)
		return n
	}

	chunks := splitEven(sorted, maxLeavesPerNode)
	n := &Node{Level: 1}
	for _, chunk := range chunks {
		child := buildTreeLevel(chunk, all)
		child.Level = 0
		hash := child.Hash()
		n.Elements = append(n.Elements, Element{
			Kind: ElementSubtree,
			Hash: hash,
			Min:  chunk[0],
			Max:  chunk[len(chunk)-1],
		})
	}
	*all = append(*all, n)
	return n
}

func splitEven(sorted []name.Name, chunkSize int) [][]name.Name {
	var chunks [][]name.Name
	for i := 0; i < len(sorted); i += chunkSize {
		end := i + chunkSize
		if end > len(sorted) {
			end = len(sorted)
		}
		chunks = append(chunks, sorted[i:end])
	}
	return chunks
}

// equalHash reports whether two content hashes are equal.
func equalHash(a, b [32]byte) bool { return bytes.Equal(a[:], b[:]) }
