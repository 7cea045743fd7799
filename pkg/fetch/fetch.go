// Package fetch implements the segmented-stream consumer:
// reading a versioned, segmented data object named `<base>/<seqnum>`
// through a sliding-window prefetcher built on pkg/client.
package fetch

import (
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/client"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// DefaultCapacity is the ring's default segment window size.
const DefaultCapacity = 16

// DefaultTimeout is a stream's default per-segment interest budget.
const DefaultTimeout = 15 * time.Second

// Status is the outcome of a Read call.
type Status int

const (
	StatusN Status = iota
	StatusEnd
	StatusNone
	StatusTimeout
	StatusZero
)

func (s Status) String() string {
	switch s {
	case StatusN:
		return "N"
	case StatusEnd:
		return "END"
	case StatusNone:
		return "NONE"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusZero:
		return "ZERO"
	default:
		return "UNKNOWN"
	}
}

// segmentSlot is one ring buffer entry. Slots are reused by segment index
// modulo capacity: the same writePos/readPos wrap-modulo-length circular
// buffer internal/fifo uses for bytes, generalized to whole segments.
type segmentSlot struct {
	seq   uint64
	valid bool
	data  []byte
	final bool
}

// Stream consumes a segmented object rooted at base.
type Stream struct {
	h        *client.Handle
	base     name.Name
	template *schema.Interest
	capacity int
	timeout  time.Duration

	ring []segmentSlot

	curSeq  uint64 // segment index currently being read
	curOff  int    // byte offset within that segment already delivered
	nextSeq uint64 // next segment index not yet requested

	segSize int   // inferred fixed segment size, 0 until known
	size    int64 // total stream size, -1 until known
	pos     int64 // bytes delivered to the caller so far

	inflight  map[uint64]time.Time
	timeoutAt int64 // lowest segment index declared lost, -1 if none
}

// Option configures a Stream at Open time.
type Option func(*Stream)

// WithCapacity overrides the ring's window size.
func WithCapacity(n int) Option {
	return func(s *Stream) { s.capacity = n }
}

// WithTimeout overrides the per-segment interest budget.
func WithTimeout(d time.Duration) Option {
	return func(s *Stream) { s.timeout = d }
}

// WithTemplate sets the interest template applied to every segment
// request (MinSuffixComponents, Scope, and so on).
func WithTemplate(template *schema.Interest) Option {
	return func(s *Stream) { s.template = template }
}

// Open starts a stream over base and issues the initial prefetch window.
func Open(h *client.Handle, base name.Name, opts ...Option) *Stream {
	s := &Stream{
		h:         h,
		base:      base,
		capacity:  DefaultCapacity,
		timeout:   DefaultTimeout,
		size:      -1,
		timeoutAt: -1,
		inflight:  make(map[uint64]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]segmentSlot, s.capacity)
	s.prefetch()
	return s
}

// slotIndex returns the ring index for segment seq.
func (s *Stream) slotIndex(seq uint64) int {
	return int(seq % uint64(s.capacity))
}

func (s *Stream) slotFor(seq uint64) *segmentSlot {
	slot := &s.ring[s.slotIndex(seq)]
	if slot.valid && slot.seq == seq {
		return slot
	}
	return nil
}

// prefetch issues interests for contiguous segment indices the ring still
// has capacity for, stopping at a known end-of-stream or a declared
// timeout point.
func (s *Stream) prefetch() {
	if s.timeoutAt >= 0 {
		return
	}
	windowEnd := s.curSeq + uint64(s.capacity)
	start := s.nextSeq
	if s.curSeq > start {
		// Segments below the read cursor are obsolete; never re-request them.
		start = s.curSeq
	}
	for seq := start; seq < windowEnd; seq++ {
		if s.segSize > 0 && s.size >= 0 && int64(seq)*int64(s.segSize) >= s.size {
			break
		}
		s.nextSeq = seq + 1
		if _, inflight := s.inflight[seq]; inflight {
			continue
		}
		if slot := s.slotFor(seq); slot != nil {
			continue
		}
		s.request(seq)
		if s.segSize == 0 {
			// Size unknown until the first segment arrives; request just
			// that one segment before committing to a full window.
			break
		}
	}
}

// request issues a single segment interest, wiring its upcall back to
// this stream via a closure capturing the segment index.
func (s *Stream) request(seq uint64) {
	n := s.base.Append(segmentComponent(seq))
	s.inflight[seq] = time.Now()
	handler := client.HandlerFunc(func(h *client.Handle, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
		return s.onUpcall(seq, kind, info)
	})
	// ExpressInterest failures leave the segment inflight until it ages
	// out naturally; Open/Read never return a transport error directly.
	_ = s.h.ExpressInterest(n, s.template, handler)
}

// onUpcall handles CONTENT and INTEREST_TIMED_OUT for segment seq.
func (s *Stream) onUpcall(seq uint64, kind client.UpcallKind, info *client.UpcallInfo) client.UpcallResult {
	switch kind {
	case ccnerr.KindContent:
		delete(s.inflight, seq)
		s.store(seq, info.ContentObject)
		return ccnerr.ResultOK
	case ccnerr.KindInterestTimedOut:
		delete(s.inflight, seq)
		if s.timeoutAt < 0 || seq < uint64(s.timeoutAt) {
			s.timeoutAt = int64(seq)
		}
		return ccnerr.ResultOK
	default:
		return ccnerr.ResultOK
	}
}

// store records an arrived segment's content and, if it carries a
// FinalBlockID or is shorter than the prevailing segment size, infers the
// stream's total size.
func (s *Stream) store(seq uint64, co *schema.ContentObject) {
	data := co.Content
	final := isFinalBlock(co)

	if len(data) == 0 {
		// A zero-length arrival never establishes a segment size or stream
		// size; Read reports it as ZERO, a premature end, not END.
		slot := &s.ring[s.slotIndex(seq)]
		slot.seq = seq
		slot.valid = true
		slot.data = data
		slot.final = false
		return
	}

	if s.segSize == 0 {
		s.segSize = len(data)
	}
	if final || len(data) < s.segSize {
		s.size = int64(seq)*int64(s.segSize) + int64(len(data))
	}

	slot := &s.ring[s.slotIndex(seq)]
	slot.seq = seq
	slot.valid = true
	slot.data = data
	slot.final = final
}

// isFinalBlock reports whether co's FinalBlockID names its own last
// component, marking it as the stream's last segment.
func isFinalBlock(co *schema.ContentObject) bool {
	fb := co.SignedInfo.FinalBlockID
	if fb == nil || co.Name.Len() == 0 {
		return false
	}
	last := co.Name.Component(co.Name.Len() - 1)
	if len(fb) != len(last) {
		return false
	}
	for i := range fb {
		if fb[i] != last[i] {
			return false
		}
	}
	return true
}

// Read copies contiguous bytes starting at the stream's current position
// into buf, advancing the position and freeing consumed ring slots.
func (s *Stream) Read(buf []byte) (int, Status) {
	if s.size >= 0 && s.pos >= s.size {
		return 0, StatusEnd
	}
	if s.timeoutAt >= 0 && s.curSeq >= uint64(s.timeoutAt) {
		return 0, StatusTimeout
	}

	slot := s.slotFor(s.curSeq)
	if slot == nil {
		if start, inflight := s.inflight[s.curSeq]; inflight {
			if time.Since(start) > s.timeout {
				if s.timeoutAt < 0 || s.curSeq < uint64(s.timeoutAt) {
					s.timeoutAt = int64(s.curSeq)
				}
				return 0, StatusTimeout
			}
		}
		s.prefetch()
		return 0, StatusNone
	}

	if len(slot.data) == 0 {
		s.advanceSegment(slot)
		s.prefetch()
		return 0, StatusZero
	}

	n := copy(buf, slot.data[s.curOff:])
	s.curOff += n
	s.pos += int64(n)
	if s.curOff >= len(slot.data) {
		s.advanceSegment(slot)
	}
	s.prefetch()
	return n, StatusN
}

// advanceSegment frees slot and moves the cursor to the next segment.
func (s *Stream) advanceSegment(slot *segmentSlot) {
	slot.valid = false
	s.curSeq++
	s.curOff = 0
}

// Seek repositions the stream. Seeking to 0 clears the timeout/zero
// state; otherwise the target segment and offset are inferred from the
// known fixed segment size.
func (s *Stream) Seek(pos int64) error {
	if pos == 0 {
		s.curSeq, s.curOff, s.pos = 0, 0, 0
		s.nextSeq = 0
		s.timeoutAt = -1
		s.ring = make([]segmentSlot, s.capacity)
		s.inflight = make(map[uint64]time.Time)
		s.prefetch()
		return nil
	}
	if s.segSize == 0 {
		return ccnerr.ErrInvalidArgument
	}
	seq := uint64(pos / int64(s.segSize))
	off := int(pos % int64(s.segSize))

	for i := range s.ring {
		if s.ring[i].valid && s.ring[i].seq < seq {
			s.ring[i].valid = false
		}
	}
	s.curSeq, s.curOff, s.pos = seq, off, pos
	if s.nextSeq < seq {
		s.nextSeq = seq
	}
	s.timeoutAt = -1
	s.prefetch()
	return nil
}

// Size reports the inferred total stream size, or -1 if not yet known.
func (s *Stream) Size() int64 { return s.size }
