package client

import (
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// UpcallInfo is passed to a Handler on every upcall: the raw message bytes, the parsed interest or
// content object (whichever applies to this upcall kind), and the number
// of prefix components that were matched.
type UpcallInfo struct {
	Raw           []byte
	Interest      *schema.Interest
	ContentObject *schema.ContentObject
	MatchedComps  int
}

// ExpressInterest sends an interest for n, applying template's optional
// fields (MinSuffixComponents, MaxSuffixComponents, PublisherPublicKeyDigest,
// Exclude, ChildSelector, AnswerOriginKind, Scope) onto the new interest.
// template may be nil. A fresh Nonce is generated if template.Nonce is
// empty. The interest is inserted into the PIT under n's prefix key with
// target=1.
func (h *Handle) ExpressInterest(n name.Name, template *schema.Interest, handler Handler) error {
	it := &schema.Interest{
		Name:                n,
		MinSuffixComponents: -1,
		MaxSuffixComponents: -1,
		ChildSelector:       -1,
		AnswerOriginKind:    -1,
		Scope:               -1,
	}
	if template != nil {
		it.MinSuffixComponents = template.MinSuffixComponents
		it.MaxSuffixComponents = template.MaxSuffixComponents
		it.PublisherPublicKeyDigest = template.PublisherPublicKeyDigest
		it.Exclude = template.Exclude
		it.ChildSelector = template.ChildSelector
		it.AnswerOriginKind = template.AnswerOriginKind
		it.Scope = template.Scope
		it.InterestLifetime = template.InterestLifetime
		it.Nonce = template.Nonce
	}
	if len(it.Nonce) == 0 {
		it.Nonce = newNonce()
	}

	buf := ccnb.NewCharbuf(256)
	if err := schema.EncodeInterest(buf, it); err != nil {
		return err
	}
	encoded := append([]byte(nil), buf.Bytes()...)

	key := keyOf(n)
	bucket, ok := h.pit[key]
	if !ok {
		bucket = &pitEntry{prefix: n}
		h.pit[key] = bucket
	}
	e := &expressedInterest{
		encoded:     encoded,
		template:    it,
		target:      1,
		outstanding: 1,
		lastSent:    time.Now(),
		handler:     handler,
		refs:        1,
	}
	bucket.expressed = append(bucket.expressed, e)

	h.enqueue(encoded)
	h.metrics.interestsExpressed.Inc()
	return nil
}

// CancelInterest removes future re-expression/timeout handling for every
// expression currently registered against prefix by setting its target to
// 0; the next aging pass releases each handler's reference, which is when
// its FINAL upcall is delivered.
func (h *Handle) CancelInterest(prefix name.Name) {
	key := keyOf(prefix)
	bucket, ok := h.pit[key]
	if !ok {
		return
	}
	for _, e := range bucket.expressed {
		e.target = 0
	}
}

// SetInterestFilter registers handler to receive INTEREST upcalls for
// incoming interests whose name has prefix as a component-wise prefix.
func (h *Handle) SetInterestFilter(prefix name.Name, handler Handler) {
	h.filters[keyOf(prefix)] = &filterEntry{prefix: prefix, handler: handler}
}

// ClearInterestFilter removes a previously registered filter.
func (h *Handle) ClearInterestFilter(prefix name.Name) {
	delete(h.filters, keyOf(prefix))
}

// Put publishes co by queuing its encoded bytes to the daemon: a fire-and-forget send, no PIT bookkeeping.
func (h *Handle) Put(co *schema.ContentObject) error {
	buf := ccnb.NewCharbuf(len(co.Content) + 256)
	schema.EncodeContentObject(buf, co)
	h.enqueue(buf.Bytes())
	h.metrics.contentPut.Inc()
	return nil
}

// enqueue appends data to the unsent tail of the output queue.
func (h *Handle) enqueue(data []byte) {
	h.out.Append(data)
}

// flushOutput writes as much of the unsent output queue as the socket
// currently accepts, advancing outCursor, and compacts the buffer back to
// empty once everything has been sent.
func (h *Handle) flushOutput() error {
	pending := h.out.Bytes()[h.outCursor:]
	if len(pending) == 0 {
		return nil
	}
	n, err := h.face.Write(pending)
	if n > 0 {
		h.outCursor += n
	}
	if h.outCursor >= h.out.Len() {
		h.out.Reset()
		h.outCursor = 0
	}
	if err != nil {
		return err
	}
	return nil
}
