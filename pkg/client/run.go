package client

import (
	"errors"
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// refreshFactor is how much slack the poll timeout gets beyond a single
// HALFLIFE tick, so the loop doesn't wake purely to re-check aging more
// often than it needs to.
const refreshFactor = 5

// Run drives the single-goroutine event loop for up to timeoutMs
// milliseconds (0 means "return at the next quiescent point"). It ages
// interests, polls the
// daemon socket, ingests and dispatches inbound messages, and flushes the
// output queue, returning when the timeout elapses or the connection is
// lost.
func (h *Handle) Run(timeoutMs int) error {
	hasDeadline := timeoutMs > 0
	start := time.Now()
	h.runTimeoutRemaining = time.Duration(timeoutMs) * time.Millisecond

	for {
		now := time.Now()
		if hasDeadline {
			h.runTimeoutRemaining -= now.Sub(start)
			start = now
			if h.runTimeoutRemaining <= 0 {
				return nil
			}
		}

		nextTick := h.ageInterests(now)
		pollBudget := nextTick * refreshFactor
		if hasDeadline && h.runTimeoutRemaining < pollBudget {
			pollBudget = h.runTimeoutRemaining
		}
		if pollBudget < 0 {
			pollBudget = 0
		}

		wantWrite := h.out.Len() > h.outCursor
		readable, writable, err := h.face.Poll(int(pollBudget/time.Millisecond), wantWrite)
		if err != nil {
			return err
		}

		if readable {
			if err := h.ingest(); err != nil {
				h.disconnected = true
				return err
			}
		}
		if writable {
			if err := h.flushOutput(); err != nil {
				h.disconnected = true
				return err
			}
		}

		if timeoutMs == 0 {
			return nil
		}
	}
}

// SetRunTimeout re-arms the loop's remaining budget from inside a
// handler callback.
func (h *Handle) SetRunTimeout(ms int) {
	h.runTimeoutRemaining = time.Duration(ms) * time.Millisecond
}

// getHandler is the internal Handler Get uses to capture the first
// content object that arrives and stop the loop.
type getHandler struct {
	result *schema.ContentObject
	err    error
}

func (g *getHandler) Upcall(h *Handle, kind UpcallKind, info *UpcallInfo) UpcallResult {
	switch kind {
	case ccnerr.KindContent:
		g.result = info.ContentObject
		return ccnerr.ResultOK
	case ccnerr.KindInterestTimedOut:
		g.err = ccnerr.ErrTimeout
		return ccnerr.ResultOK
	default:
		return ccnerr.ResultOK
	}
}

// Get is the synchronous convenience wrapper: express an interest and run
// the loop in small increments until one ContentObject arrives or
// timeoutMs elapses.
func (h *Handle) Get(n name.Name, template *schema.Interest, timeoutMs int) (*schema.ContentObject, error) {
	g := &getHandler{}
	if err := h.ExpressInterest(n, template, g); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	const slice = 50 // ms per Run() call, so Get notices g.result promptly
	for time.Now().Before(deadline) {
		if err := h.Run(slice); err != nil {
			return nil, err
		}
		if g.result != nil {
			return g.result, nil
		}
		if g.err != nil {
			return nil, g.err
		}
	}
	h.CancelInterest(n)
	return nil, ccnerr.ErrTimeout
}
