package ccnb

import "errors"

// ErrSchema signals a schema violation detected by a tagged reader or a
// match primitive: a required element missing, a length out of bounds, or
// an element out of the expected fixed order. The decoder's cursor is
// never advanced past the offending element when this is returned - the
// snapshot/restore dance in the optional readers below guarantees it.
var ErrSchema = errors.New("ccnb: schema violation")

// TokenReader is a pull-style cursor over a complete in-memory ccnb
// buffer, used by the schema parser to walk Interest/ContentObject
// elements field by field. It is a thin convenience over Decoder: each
// call to Advance moves to the next token boundary; the match and tagged
// reader functions only ever inspect the token the cursor is already
// positioned on (a "peek"), and use a cheap struct-copy snapshot to
// implement true lookahead for optional fields.
type TokenReader struct {
	buf []byte
	dec Decoder
}

// NewTokenReader returns a reader positioned before the first token of buf.
func NewTokenReader(buf []byte) *TokenReader {
	return &TokenReader{buf: buf}
}

// Advance moves to the next token boundary.
func (r *TokenReader) Advance() error {
	err := r.dec.Resume(r.buf)
	if err != nil {
		return err
	}
	return nil
}

// Type returns the token type the cursor is currently positioned on.
func (r *TokenReader) Type() TokenType { return r.dec.TokType }

// Numval returns the numval of the token the cursor is currently
// positioned on.
func (r *TokenReader) Numval() uint64 { return r.dec.Numval }

// Nest returns the current nesting depth.
func (r *TokenReader) Nest() int { return r.dec.Nest }

// Pos returns the byte offset immediately following the current token
// (and its raw payload, if any).
func (r *TokenReader) Pos() int { return r.dec.Pos }

// snapshot / restore implement lookahead without a second decoder type.
func (r *TokenReader) snapshot() Decoder { return r.dec }
func (r *TokenReader) restore(s Decoder) { r.dec = s }

// MatchDTag reports whether the cursor is on a numeric-tag-open token
// naming tag, WITHOUT consuming it.
func (r *TokenReader) MatchDTag(tag DTag) bool {
	return r.dec.TokType == TTDTagOpen && DTag(r.dec.Numval) == tag
}

// MatchBlob returns the payload of a binary-blob token the cursor is
// currently positioned on (zero-copy view into buf), or ok=false if the
// cursor is not on a blob.
func (r *TokenReader) MatchBlob() (data []byte, ok bool) {
	if r.dec.TokType != TTBlob {
		return nil, false
	}
	return r.buf[r.dec.rawStart : r.dec.rawStart+r.dec.rawLen], true
}

// MatchUData returns the payload of a UTF-8 text token the cursor is
// currently positioned on, or ok=false if the cursor is not on one.
func (r *TokenReader) MatchUData() (text []byte, ok bool) {
	if r.dec.TokType != TTUData {
		return nil, false
	}
	return r.buf[r.dec.rawStart : r.dec.rawStart+r.dec.rawLen], true
}

// CheckClose advances and errors if the next token is not a Close.
func (r *TokenReader) CheckClose() error {
	if err := r.Advance(); err != nil {
		return err
	}
	if r.dec.TokType != TTClose {
		return ErrSchema
	}
	return nil
}

// AdvancePastElement skips the rest of the subtree the cursor is
// currently inside of: it advances until nest drops back to the level it
// was at when this element's opening tag was matched (nest-1 below the
// open tag's post-open nest). Call this immediately after MatchDTag /
// TryDTagOpen matched an open tag whose whole subtree should be discarded.
func (r *TokenReader) AdvancePastElement() error {
	target := r.dec.Nest - 1
	for r.dec.Nest > target {
		if err := r.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// TryDTagOpen attempts to match and consume a DTagOpen(tag) token. On
// success the cursor is left positioned on that open-tag token itself
// (callers Advance() again to reach its first child or Close) and true is
// returned. On failure the cursor is restored to its pre-call position and
// false is returned - this is the primitive every optional-field reader in
// the schema package is built on.
func (r *TokenReader) TryDTagOpen(tag DTag) (bool, error) {
	saved := r.snapshot()
	if err := r.Advance(); err != nil {
		r.restore(saved)
		return false, err
	}
	if !r.MatchDTag(tag) {
		r.restore(saved)
		return false, nil
	}
	return true, nil
}
