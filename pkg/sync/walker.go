package sync

import "github.com/ProjectCCNx/ccnx-sub003/pkg/name"

// frame is one level of a walker's descent: the node being visited and
// the index of its current element.
type frame struct {
	node *Node
	idx  int
}

// walker is a resumable, stack-based iterator over a sync tree. It
// never recurses: Expand pushes a frame, Advance pops exhausted ones,
// so a comparison can pause mid-walk and resume later without losing
// its place.
type walker struct {
	resolve func(hash [32]byte) (*Node, bool)
	stack   []*frame
	added   []name.Name
}

// newWalker starts a walker at root. resolve looks up a subtree
// element's node by hash, from whichever side (local or remote) this
// walker traverses.
func newWalker(resolve func(hash [32]byte) (*Node, bool), root *Node) *walker {
	w := &walker{resolve: resolve}
	if root != nil {
		w.stack = []*frame{{node: root}}
	}
	w.climb()
	return w
}

// climb pops frames whose elements are exhausted, so the top of stack
// always points at the next unvisited element (or the stack is empty).
func (w *walker) climb() {
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		if top.idx < len(top.node.Elements) {
			return
		}
		w.stack = w.stack[:len(w.stack)-1]
	}
}

// Done reports whether the walk is exhausted.
func (w *walker) Done() bool {
	w.climb()
	return len(w.stack) == 0
}

// Peek returns the current element without consuming it.
func (w *walker) Peek() (Element, bool) {
	w.climb()
	if len(w.stack) == 0 {
		return Element{}, false
	}
	top := w.stack[len(w.stack)-1]
	return top.node.Elements[top.idx], true
}

// Advance consumes the current element, moving to the next sibling (or
// popping back up to the parent frame if it was the last one).
func (w *walker) Advance() {
	w.climb()
	if len(w.stack) == 0 {
		return
	}
	w.stack[len(w.stack)-1].idx++
	w.climb()
}

// Expand descends into the current element if it is a subtree
// reference: on success it moves the parent frame past that (now-superseded)
// element and pushes the resolved node, so the caller should not Advance
// separately. If the subtree isn't resolvable
// yet, Expand reports needed=true and the hash to fetch; the caller
// should pause the comparison and retry Expand once that hash arrives.
func (w *walker) Expand() (hash [32]byte, needed bool, expanded bool) {
	el, ok := w.Peek()
	if !ok || el.Kind != ElementSubtree {
		return hash, false, false
	}
	node, found := w.resolve(el.Hash)
	if !found {
		return el.Hash, true, false
	}
	w.stack[len(w.stack)-1].idx++
	w.stack = append(w.stack, &frame{node: node})
	w.climb()
	return hash, false, true
}

// MarkAddedHere records the current element's leaf name as newly
// discovered (present on this side, absent on the other) and advances
// past it. Only meaningful when the current element is a leaf; callers
// must Expand subtree elements instead.
func (w *walker) MarkAddedHere() {
	if el, ok := w.Peek(); ok && el.Kind == ElementLeaf {
		w.added = append(w.added, el.Leaf)
	}
	w.Advance()
}

// Added returns every leaf name recorded by MarkAddedHere so far.
func (w *walker) Added() []name.Name {
	return w.added
}
