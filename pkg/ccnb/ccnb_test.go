package ccnb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		tt     TokenType
		numval uint64
	}{
		{TTDTagOpen, 0},
		{TTDTagOpen, 14},
		{TTBlob, 0},
		{TTBlob, 4096},
		{TTUData, 200000},
		{TTDAttr, 31},
	}
	for _, c := range cases {
		buf := NewCharbuf(8)
		AppendTokenHeader(buf, c.tt, c.numval)
		d := NewDecoder()
		// a bare header with no element context: feed it directly through
		// the low level byte loop via a blob-less synthetic element.
		raw := buf.Bytes()
		pos := 0
		for pos < len(raw) {
			b := raw[pos]
			pos++
			if b&0x80 != 0 {
				tt := TokenType(b & 0x07)
				low4 := uint64((b >> 3) & 0x0F)
				assert.Equal(t, c.tt, tt)
				numval := (d.numvalAcc << 4) | low4
				assert.Equal(t, c.numval, numval)
				break
			}
			d.numvalAcc = (d.numvalAcc << 7) | uint64(b&0x7F)
		}
	}
}

func TestWellFormedBlobElement(t *testing.T) {
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagName)
	AppendTaggedBlob(buf, DTagComponent, []byte("a"))
	AppendClose(buf)
	assert.True(t, WellFormed(buf.Bytes()))
}

func TestWellFormedRejectsTrailingGarbage(t *testing.T) {
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagName)
	AppendClose(buf)
	buf.AppendByte(0xFF)
	assert.False(t, WellFormed(buf.Bytes()))
}

func TestWellFormedRejectsUnbalancedClose(t *testing.T) {
	buf := NewCharbuf(4)
	AppendClose(buf)
	assert.False(t, WellFormed(buf.Bytes()))
}

func TestDecoderResumableAcrossReads(t *testing.T) {
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagName)
	AppendTaggedBlob(buf, DTagComponent, []byte("hello"))
	AppendClose(buf)
	full := buf.Bytes()

	// Feed the decoder one byte at a time, simulating partial socket
	// reads; it must never report an error and must complete exactly at
	// len(full).
	d := NewDecoder()
	var growing []byte
	end := -1
	for i := 0; i < len(full); i++ {
		growing = append(growing, full[i])
		for {
			err := d.Resume(growing)
			if err == ErrNeedMoreData {
				break
			}
			require.NoError(t, err)
			if d.Nest == 0 {
				end = d.Pos
				break
			}
		}
		if end != -1 {
			break
		}
	}
	assert.Equal(t, len(full), end)
}

func TestTaggedBlobRoundTrip(t *testing.T) {
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagSignedInfo)
	AppendTaggedBlob(buf, DTagPublisherPublicKeyDigest, []byte("01234567890123456789012345678901"[:32]))
	AppendClose(buf)

	r := NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(DTagSignedInfo)
	require.NoError(t, err)
	require.True(t, ok)

	digest, err := RequiredTaggedBlob(r, DTagPublisherPublicKeyDigest, 32, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, len(digest))

	require.NoError(t, r.CheckClose())
}

func TestOptionalTaggedBlobAbsentLeavesCursor(t *testing.T) {
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagInterest)
	AppendTaggedNonNegInt(buf, DTagScope, 2)
	AppendClose(buf)

	r := NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(DTagInterest)
	require.NoError(t, err)
	require.True(t, ok)

	_, present, err := OptionalTaggedBlob(r, DTagPublisherPublicKeyDigest, 32, 32)
	require.NoError(t, err)
	assert.False(t, present)

	scope, present, err := OptionalTaggedNonNegInt(r, DTagScope)
	require.NoError(t, err)
	require.True(t, present)
	assert.Equal(t, int64(2), scope)
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := FromUnixSeconds(1700000000.5)
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagSignedInfo)
	AppendTaggedTimestamp(buf, DTagTimestamp, ts)
	AppendClose(buf)

	r := NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(DTagSignedInfo)
	require.NoError(t, err)
	require.True(t, ok)
	got, err := RequiredTaggedTimestamp(r, DTagTimestamp)
	require.NoError(t, err)
	assert.Equal(t, ts, got)
}

func TestAdvancePastElementSkipsSubtree(t *testing.T) {
	buf := NewCharbuf(16)
	AppendOpenDTag(buf, DTagExclude)
	AppendOpenDTag(buf, DTagComponent)
	AppendBlob(buf, []byte("skip-me"))
	AppendClose(buf)
	AppendTaggedNonNegInt(buf, DTagScope, 1)
	AppendClose(buf)

	r := NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(DTagExclude)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.TryDTagOpen(DTagComponent)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, r.AdvancePastElement())

	scope, present, err := OptionalTaggedNonNegInt(r, DTagScope)
	require.NoError(t, err)
	require.True(t, present)
	assert.Equal(t, int64(1), scope)
}
