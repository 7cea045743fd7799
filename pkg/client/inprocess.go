package client

import (
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnlog"
)

// NewUnconnected builds a Handle with no daemon socket: its PIT, filter
// table, and dispatch machinery work normally, but Run/ingest have
// nothing to poll. Layered clients (pkg/fetch, pkg/sync) and their tests
// use this to drive ExpressInterest/dispatchContent-style flows by
// invoking a Handler's Upcall directly, without a live face.Face.
func NewUnconnected() *Handle {
	return &Handle{
		out:     ccnb.NewCharbuf(256),
		in:      ccnb.NewCharbuf(inputReserve),
		scratch: ccnb.NewIndexBuf(),
		pit:     make(map[string]*pitEntry),
		filters: make(map[string]*filterEntry),
		log:     ccnlog.Default(),
		metrics: newMetrics(),
	}
}

// TakeOutput returns every complete message queued since the last call
// (via ExpressInterest/Put) and clears the queue, without going anywhere
// near a face. Paired with Dispatch, it lets two NewUnconnected handles
// exchange traffic in-process - a loopback bus for exercising layered
// clients (pkg/fetch, pkg/sync) end to end without a daemon.
func (h *Handle) TakeOutput() []byte {
	pending := append([]byte(nil), h.out.Bytes()[h.outCursor:]...)
	h.out.Reset()
	h.outCursor = 0
	return pending
}

// Dispatch feeds msg directly into this handle's interest/content
// dispatch, as if it had just arrived from the face. msg must be exactly
// one encoded Interest or ContentObject; TakeOutput's return value may
// contain several back to back, so split on message boundaries before
// calling this, or use DispatchAll.
func (h *Handle) Dispatch(msg []byte) { h.dispatch(msg) }

// DispatchAll splits buf on message boundaries using the same resumable
// decoder ingest uses, dispatching each complete message in turn.
func (h *Handle) DispatchAll(buf []byte) {
	var dec ccnb.Decoder
	lastEnd := 0
	for {
		if err := dec.Resume(buf); err != nil {
			break
		}
		if dec.Nest == 0 && dec.Pos > lastEnd {
			h.dispatch(buf[lastEnd:dec.Pos])
			lastEnd = dec.Pos
		}
		if dec.Pos >= len(buf) {
			break
		}
	}
}
