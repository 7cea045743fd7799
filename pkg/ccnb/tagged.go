package ccnb

import (
	"encoding/binary"
	"strconv"
)

// Timestamp is a CCNx binary timestamp: a big-endian unsigned integer
// counting units of 1/4096 second since the Unix epoch (the "12-bit
// fraction seconds" encoding used for Timestamp and InterestLifetime).
type Timestamp uint64

// FromUnixSeconds builds a Timestamp from a floating point Unix time.
func FromUnixSeconds(sec float64) Timestamp {
	return Timestamp(sec * 4096)
}

// Seconds returns the timestamp as a floating point Unix time.
func (t Timestamp) Seconds() float64 { return float64(t) / 4096.0 }

// RequiredTaggedBlob reads <tag>BLOB</tag>, requiring the blob length to
// fall within [minLen,maxLen] (maxLen<0 means unbounded). It returns
// ErrSchema (decoder cursor unmoved past the failing element) if the tag
// is absent or the bounds are violated.
func RequiredTaggedBlob(r *TokenReader, tag DTag, minLen, maxLen int) ([]byte, error) {
	data, present, err := OptionalTaggedBlob(r, tag, minLen, maxLen)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrSchema
	}
	return data, nil
}

// OptionalTaggedBlob reads <tag>BLOB</tag> if present at the cursor,
// leaving the cursor immediately after it; if tag is not the element at
// the cursor, the cursor is left untouched and present=false.
func OptionalTaggedBlob(r *TokenReader, tag DTag, minLen, maxLen int) (data []byte, present bool, err error) {
	ok, err := r.TryDTagOpen(tag)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := r.Advance(); err != nil {
		return nil, false, err
	}
	blob, isBlob := r.MatchBlob()
	if !isBlob {
		return nil, false, ErrSchema
	}
	if len(blob) < minLen || (maxLen >= 0 && len(blob) > maxLen) {
		return nil, false, ErrSchema
	}
	if err := r.CheckClose(); err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// RequiredTaggedTimestamp reads <tag>BLOB</tag> where the blob is a
// big-endian binary timestamp.
func RequiredTaggedTimestamp(r *TokenReader, tag DTag) (Timestamp, error) {
	blob, err := RequiredTaggedBlob(r, tag, 1, 8)
	if err != nil {
		return 0, err
	}
	return Timestamp(bigEndianUint(blob)), nil
}

// OptionalTaggedTimestamp reads <tag>BLOB</tag> (a big-endian binary
// timestamp) if present at the cursor.
func OptionalTaggedTimestamp(r *TokenReader, tag DTag) (ts Timestamp, present bool, err error) {
	blob, present, err := OptionalTaggedBlob(r, tag, 1, 8)
	if err != nil || !present {
		return 0, present, err
	}
	return Timestamp(bigEndianUint(blob)), true, nil
}

// OptionalTaggedNonNegInt reads <tag>123</tag> (decimal UDATA) if present.
func OptionalTaggedNonNegInt(r *TokenReader, tag DTag) (value int64, present bool, err error) {
	ok, err := r.TryDTagOpen(tag)
	if err != nil || !ok {
		return 0, false, err
	}
	if err := r.Advance(); err != nil {
		return 0, false, err
	}
	text, isText := r.MatchUData()
	if !isText {
		return 0, false, ErrSchema
	}
	n, convErr := strconv.ParseInt(string(text), 10, 63)
	if convErr != nil || n < 0 {
		return 0, false, ErrSchema
	}
	if err := r.CheckClose(); err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// RequiredTaggedBinaryNumber reads <tag>BLOB</tag> where the blob is a
// big-endian unsigned integer of [minBytes,maxBytes] length.
func RequiredTaggedBinaryNumber(r *TokenReader, tag DTag, minBytes, maxBytes int) (uint64, error) {
	blob, err := RequiredTaggedBlob(r, tag, minBytes, maxBytes)
	if err != nil {
		return 0, err
	}
	return bigEndianUint(blob), nil
}

func bigEndianUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = (v << 8) | uint64(c)
	}
	return v
}

// minimalBigEndian returns the minimal-length big-endian encoding of v
// (no leading zero bytes; v==0 encodes as the single byte 0x00).
func minimalBigEndian(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	i := 0
	for i < 7 && tmp[i] == 0 {
		i++
	}
	return tmp[i:]
}
