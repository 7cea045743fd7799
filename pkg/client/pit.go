package client

import (
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// expressedInterest is one entry in a PIT bucket's list: one outstanding
// (or recently-outstanding) expression of an interest against a given
// prefix.
type expressedInterest struct {
	encoded  []byte // the interest's encoded bytes, kept for re-send
	template *schema.Interest

	target      int // 0 once the registration is done and awaiting teardown
	outstanding int // halves every HALFLIFE tick; re-expressed at 0

	lastSent        time.Time
	refreshedOnZero bool // whether the "first encounter" immediate refresh already fired since lastSent

	handler Handler
	refs    int
}

// pitEntry is one PIT bucket: all expressed interests currently
// registered against a given name prefix.
type pitEntry struct {
	prefix    name.Name
	expressed []*expressedInterest
}

// filterEntry is one interest-filter table bucket.
type filterEntry struct {
	prefix  name.Name
	handler Handler
}

// release drops one reference from e; at zero it invokes the handler's
// sole FINAL upcall.
func (e *expressedInterest) release(h *Handle) {
	e.refs--
	if e.refs > 0 {
		return
	}
	if e.handler != nil {
		e.handler.Upcall(h, ccnerr.KindFinal, &UpcallInfo{})
	}
}

// ageInterests implements interest aging: for every
// expressed interest, decay outstanding by half for every HALFLIFE
// elapsed since lastSent; entries at outstanding==0 with target>0 are
// refreshed immediately on first encounter, and receive an
// INTEREST_TIMED_OUT upcall on every encounter after that. It returns the
// duration until the next tick is needed, clamped to at most HALFLIFE.
func (h *Handle) ageInterests(now time.Time) time.Duration {
	halfLife := h.halfLife
	if halfLife <= 0 {
		halfLife = HalfLife
	}
	next := halfLife
	for key, bucket := range h.pit {
		kept := bucket.expressed[:0]
		for _, e := range bucket.expressed {
			delta := now.Sub(e.lastSent)
			for delta >= halfLife {
				e.outstanding /= 2
				delta -= halfLife
				e.lastSent = e.lastSent.Add(halfLife)
			}
			if remain := halfLife - delta; remain < next {
				next = remain
			}

			if e.outstanding == 0 && e.target > 0 {
				if !e.refreshedOnZero {
					h.refreshExpressed(bucket.prefix, e, now)
					e.refreshedOnZero = true
				} else if e.handler != nil {
					result := e.handler.Upcall(h, ccnerr.KindInterestTimedOut, &UpcallInfo{Interest: e.template})
					if result == ccnerr.ResultReexpress {
						h.refreshExpressed(bucket.prefix, e, now)
					} else {
						e.target = 0
					}
				} else {
					e.target = 0
				}
			}

			if e.target == 0 {
				e.release(h)
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(h.pit, key)
		} else {
			bucket.expressed = kept
		}
	}
	return next
}

// refreshExpressed resets outstanding/lastSent and re-queues the
// interest's encoded bytes for the next writable tick.
func (h *Handle) refreshExpressed(prefix name.Name, e *expressedInterest, now time.Time) {
	e.outstanding = 1
	e.lastSent = now
	e.refreshedOnZero = false
	h.enqueue(e.encoded)
}
