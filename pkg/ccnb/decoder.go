package ccnb

import "errors"

// ErrNeedMoreData is returned by Decoder.Resume when the supplied buffer
// does not yet contain enough bytes to complete the token or raw payload
// currently in progress. The caller should append more bytes to the same
// backing buffer and call Resume again; the decoder's internal phase is
// unaffected by the short read.
var ErrNeedMoreData = errors.New("ccnb: need more data")

// Decode error codes. Error states are negative; a
// Decoder whose State is negative is permanently wedged and must be
// discarded (and, for a client connection, treated as a rejected message
// with the connection otherwise unaffected).
const (
	DecStateOK              = 0
	DecErrOverflow           = -1 // numval accumulator exceeded the allowed range
	DecErrUnbalancedClose    = -2 // Close token seen with nest already at 0
	DecErrTrailingGarbage    = -3 // bytes remain after the top-level element closed
	DecErrMidElementAtEOF    = -4 // input exhausted with nest > 0 and no more bytes possible
)

type phase uint8

const (
	phaseToken phase = iota
	phaseRaw
)

type rawKind uint8

const (
	rawNone rawKind = iota
	rawBlobPayload
	rawUDataPayload
	rawTagName
	rawAttrName
)

// Decoder is the resumable ccnb skeleton decoder: an explicit state struct
// with a step method (Resume), not a stack-based recursive descent, so it
// can be suspended across socket reads. It holds no reference to the byte slice it reads;
// callers pass the (possibly growing) buffer to each call, which is what
// makes it safe to grow the client's inbound buffer between calls.
type Decoder struct {
	Pos          int
	Nest         int
	ElementIndex int
	TokenIndex   int
	Numval       uint64
	TokType      TokenType
	State        int

	phase       phase
	rawStart    int
	rawLen      int
	rawKind     rawKind
	numvalAcc   uint64
	numvalBytes int
}

// NewDecoder returns a Decoder positioned before the first token.
func NewDecoder() *Decoder { return &Decoder{} }

// Done reports whether the decoder has returned to zero nesting after
// having consumed at least one token - i.e. a complete top-level element
// has been decoded ending at Pos.
func (d *Decoder) Done() bool {
	return d.State == DecStateOK && d.Nest == 0 && d.phase == phaseToken && d.TokenIndex > 0
}

// Error returns the decode error for a negative State, or nil.
func (d *Decoder) Error() error {
	switch d.State {
	case DecStateOK:
		return nil
	case DecErrOverflow:
		return errors.New("ccnb: numval overflow")
	case DecErrUnbalancedClose:
		return errors.New("ccnb: close token with no matching open")
	case DecErrTrailingGarbage:
		return errors.New("ccnb: trailing bytes after top-level element")
	case DecErrMidElementAtEOF:
		return errors.New("ccnb: input ended inside an open element")
	default:
		return errors.New("ccnb: decode error")
	}
}

// Resume advances the decoder from its current position within buf,
// stopping at the next token boundary (paused mode). It returns
// ErrNeedMoreData if buf does not yet hold enough bytes to reach a
// boundary; the caller must not mutate bytes already consumed (Pos and
// earlier) and should call Resume again once buf has grown.
func (d *Decoder) Resume(buf []byte) error {
	if d.State != DecStateOK {
		return d.Error()
	}
	for {
		switch d.phase {
		case phaseRaw:
			if d.Pos+d.rawLen > len(buf) {
				return ErrNeedMoreData
			}
			switch d.rawKind {
			case rawBlobPayload, rawUDataPayload:
				d.Pos += d.rawLen
				d.phase = phaseToken
				d.rawKind = rawNone
				return nil // boundary: leaf token (with payload) fully consumed
			case rawTagName:
				d.Pos += d.rawLen
				d.phase = phaseToken
				d.rawKind = rawNone
				d.Nest++
				d.ElementIndex++
				return nil // boundary: string-named element opened
			case rawAttrName:
				d.Pos += d.rawLen
				d.phase = phaseToken
				d.rawKind = rawNone
				return nil // boundary: attribute name read, value token follows
			}
		case phaseToken:
			if d.Pos >= len(buf) {
				return ErrNeedMoreData
			}
			b := buf[d.Pos]
			d.Pos++
			if d.numvalBytes == 0 && b == 0x00 {
				if d.Nest == 0 {
					d.State = DecErrUnbalancedClose
					return d.Error()
				}
				d.Nest--
				d.TokType = TTClose
				d.Numval = 0
				d.TokenIndex++
				return nil // boundary: Close
			}
			if b&0x80 == 0 {
				d.numvalAcc = (d.numvalAcc << 7) | uint64(b&0x7F)
				d.numvalBytes++
				if d.numvalAcc > maxNumval {
					d.State = DecErrOverflow
					return d.Error()
				}
				continue
			}
			tt := TokenType(b & 0x07)
			low4 := uint64((b >> 3) & 0x0F)
			d.Numval = (d.numvalAcc << 4) | low4
			d.TokType = tt
			d.numvalAcc = 0
			d.numvalBytes = 0
			d.TokenIndex++
			switch tt {
			case TTDTagOpen:
				d.Nest++
				d.ElementIndex++
				return nil // boundary: numeric-tag-open
			case TTTagOpen:
				d.rawLen = int(d.Numval) + 1
				d.rawKind = rawTagName
				d.phase = phaseRaw
				continue
			case TTDAttr:
				return nil // boundary: numeric-attribute name; value token follows
			case TTAttr:
				d.rawLen = int(d.Numval) + 1
				d.rawKind = rawAttrName
				d.phase = phaseRaw
				continue
			case TTBlob:
				d.rawStart = d.Pos
				d.rawLen = int(d.Numval)
				if d.rawLen == 0 {
					return nil // boundary: empty blob
				}
				d.rawKind = rawBlobPayload
				d.phase = phaseRaw
				continue
			case TTUData:
				d.rawStart = d.Pos
				d.rawLen = int(d.Numval)
				if d.rawLen == 0 {
					return nil // boundary: empty udata
				}
				d.rawKind = rawUDataPayload
				d.phase = phaseRaw
				continue
			default:
				d.State = DecErrOverflow
				return d.Error()
			}
		}
	}
}

// Rebase adjusts the decoder's absolute byte offsets by -delta, for use
// after the caller compacts its backing buffer (moves the unconsumed tail
// starting at offset delta down to position 0). delta must not exceed any
// offset the decoder currently holds - safe whenever delta is the end of
// the last fully-dispatched top-level message, since everything the
// decoder still references belongs to the message in progress after it.
func (d *Decoder) Rebase(delta int) {
	d.Pos -= delta
	if d.phase == phaseRaw {
		d.rawStart -= delta
	}
}

// DecodeElement runs the decoder to completion (run-to-completion mode)
// over buf starting at the decoder's current Pos, consuming exactly one
// well-formed top-level element. It returns the end offset (exclusive) of
// the element, or ErrNeedMoreData if buf is exhausted before the element
// closes.
func DecodeElement(d *Decoder, buf []byte) (end int, err error) {
	for {
		err = d.Resume(buf)
		if err != nil {
			return 0, err
		}
		if d.Nest == 0 && d.phase == phaseToken {
			return d.Pos, nil
		}
	}
}

// WellFormed reports whether buf holds exactly one complete, well-formed
// ccnb element with no trailing bytes - the wire is well-formed iff the
// skeleton decoder reaches a final state with zero nesting and no pending
// token at exactly the claimed end position.
func WellFormed(buf []byte) bool {
	d := NewDecoder()
	end, err := DecodeElement(d, buf)
	if err != nil {
		return false
	}
	return end == len(buf)
}
