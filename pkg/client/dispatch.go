package client

import (
	"errors"
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/face"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// ingest reads available bytes from the face into the inbound buffer and
// dispatches every complete message the resumable decoder finds, then
// compacts the buffer.
func (h *Handle) ingest() error {
	tail := h.in.Reserve(inputReserve)
	n, err := h.face.Read(tail)
	h.in.Truncate(h.in.Len() - inputReserve + n)
	if err != nil {
		if errors.Is(err, face.ErrWouldBlock) {
			return nil
		}
		if errors.Is(err, ccnerr.ErrDisconnected) {
			h.disconnected = true
			return err
		}
		return err
	}
	if n == 0 {
		return nil
	}

	buf := h.in.Bytes()
	lastEnd := 0
	for {
		if err := h.dec.Resume(buf); err != nil {
			if errors.Is(err, ccnb.ErrNeedMoreData) {
				break
			}
			return err
		}
		// The decoder returns to the top of its state machine (Nest==0,
		// phase token) exactly at a message boundary.
		if h.dec.Nest == 0 && h.dec.Pos > lastEnd {
			msg := buf[lastEnd:h.dec.Pos]
			h.dispatch(msg)
			lastEnd = h.dec.Pos
		}
	}

	if lastEnd > 0 {
		remainder := append([]byte(nil), buf[lastEnd:]...)
		h.in.Reset()
		h.in.Append(remainder)
		h.dec.Rebase(lastEnd)
	}
	return nil
}

// dispatch tries parsing msg as an Interest first, then as a
// ContentObject, and routes to the filter table or PIT respectively.
func (h *Handle) dispatch(msg []byte) {
	r := ccnb.NewTokenReader(msg)
	if ok, err := r.TryDTagOpen(ccnb.DTagInterest); err == nil && ok {
		if it, err := schema.DecodeInterest(r, nil); err == nil {
			h.dispatchInterest(msg, it)
			return
		}
	}

	r = ccnb.NewTokenReader(msg)
	if ok, err := r.TryDTagOpen(ccnb.DTagContentObject); err == nil && ok {
		if parsed, err := schema.DecodeContentObject(r, msg); err == nil {
			h.dispatchContent(msg, parsed.Object)
			return
		}
	}

	h.log.Warn("ccn: dropped malformed inbound message")
}

// dispatchInterest scans the incoming interest's name components from
// longest to shortest prefix, invoking the filter table's registered
// handler at each matching length until one consumes it, then invokes any
// default (empty-prefix) handler with KindConsumedInterest.
func (h *Handle) dispatchInterest(msg []byte, it *schema.Interest) {
	consumed := false
	for length := it.Name.Len(); length >= 0; length-- {
		prefix := it.Name.Prefix(length)
		entry, ok := h.filters[keyOf(prefix)]
		if !ok {
			continue
		}
		info := &UpcallInfo{Raw: msg, Interest: it, MatchedComps: length}
		result := entry.handler.Upcall(h, ccnerr.KindInterest, info)
		if result == ccnerr.ResultInterestConsumed {
			consumed = true
			break
		}
	}
	if consumed {
		if entry, ok := h.filters[keyOf(name.New())]; ok {
			entry.handler.Upcall(h, ccnerr.KindConsumedInterest, &UpcallInfo{Raw: msg, Interest: it})
		}
	}
	h.metrics.interestsReceived.Inc()
}

// dispatchContent scans the PIT from longest to shortest prefix; for each
// bucket with an outstanding expression whose re-encoded interest
// actually matches co, it invokes the user handler with KindContent,
// honoring REEXPRESS.
func (h *Handle) dispatchContent(msg []byte, co *schema.ContentObject) {
	delivered := false
	for length := co.Name.Len(); length >= 0; length-- {
		prefix := co.Name.Prefix(length)
		bucket, ok := h.pit[keyOf(prefix)]
		if !ok {
			continue
		}
		for _, e := range bucket.expressed {
			if e.outstanding <= 0 || e.target == 0 {
				continue
			}
			if !schema.Matches(e.template, co) {
				continue
			}
			e.outstanding--
			if e.handler == nil {
				continue
			}
			info := &UpcallInfo{Raw: msg, ContentObject: co, MatchedComps: length}
			result := e.handler.Upcall(h, ccnerr.KindContent, info)
			if result == ccnerr.ResultReexpress {
				h.refreshExpressed(bucket.prefix, e, time.Now())
			} else {
				e.target = 0
			}
			delivered = true
		}
	}
	if !delivered {
		h.log.Debug("ccn: content matched no pending interest")
	}
	h.metrics.contentReceived.Inc()
}
