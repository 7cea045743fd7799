package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/client"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// testHandle builds a Handle with no socket, exercising only the PIT and
// handler-invocation machinery fetch depends on.
func testHandle() *client.Handle {
	return client.NewUnconnected()
}

func segmentObject(base name.Name, seq uint64, content []byte, final bool) *schema.ContentObject {
	n := base.Append(segmentComponent(seq))
	co := &schema.ContentObject{
		Name: n,
		SignedInfo: schema.SignedInfo{
			PublisherPublicKeyDigest: []byte{0x01},
			Timestamp:                ccnb.FromUnixSeconds(1),
			Type:                     schema.ContentTypeData,
			FreshnessSeconds:         -1,
		},
		Content: content,
	}
	if final {
		co.SignedInfo.FinalBlockID = segmentComponent(seq)
	}
	return co
}

// TestSegmentedFetchThreeSegments pins the scenario of three 4096 byte
// segments with the last marked final, read in 4096-byte calls.
func TestSegmentedFetchThreeSegments(t *testing.T) {
	h := testHandle()
	base := name.FromStrings("v", "1")
	s := Open(h, base)

	seg0 := make([]byte, 4096)
	for i := range seg0 {
		seg0[i] = byte(i)
	}
	seg1 := make([]byte, 4096)
	for i := range seg1 {
		seg1[i] = byte(255 - i)
	}
	seg2 := make([]byte, 1808)
	for i := range seg2 {
		seg2[i] = byte(i * 3)
	}

	s.onUpcall(0, ccnerr.KindContent, &client.UpcallInfo{ContentObject: segmentObject(base, 0, seg0, false)})
	s.onUpcall(1, ccnerr.KindContent, &client.UpcallInfo{ContentObject: segmentObject(base, 1, seg1, false)})
	s.onUpcall(2, ccnerr.KindContent, &client.UpcallInfo{ContentObject: segmentObject(base, 2, seg2, true)})

	buf := make([]byte, 4096)

	n, status := s.Read(buf)
	require.Equal(t, StatusN, status)
	assert.Equal(t, 4096, n)
	assert.Equal(t, seg0, buf[:n])

	n, status = s.Read(buf)
	require.Equal(t, StatusN, status)
	assert.Equal(t, 4096, n)
	assert.Equal(t, seg1, buf[:n])

	n, status = s.Read(buf)
	require.Equal(t, StatusN, status)
	assert.Equal(t, 1808, n)
	assert.Equal(t, seg2, buf[:n])

	n, status = s.Read(buf)
	assert.Equal(t, StatusEnd, status)
	assert.Equal(t, 0, n)
}

func TestSegmentedFetchNoneBeforeArrival(t *testing.T) {
	h := testHandle()
	base := name.FromStrings("v", "1")
	s := Open(h, base)

	buf := make([]byte, 16)
	n, status := s.Read(buf)
	assert.Equal(t, StatusNone, status)
	assert.Equal(t, 0, n)
}

func TestSegmentedFetchZeroLengthSegment(t *testing.T) {
	h := testHandle()
	base := name.FromStrings("v", "1")
	s := Open(h, base)

	s.onUpcall(0, ccnerr.KindContent, &client.UpcallInfo{ContentObject: segmentObject(base, 0, nil, false)})

	buf := make([]byte, 16)
	n, status := s.Read(buf)
	assert.Equal(t, StatusZero, status)
	assert.Equal(t, 0, n)
}

func TestSegmentComponentRoundTrip(t *testing.T) {
	for _, seq := range []uint64{0, 1, 255, 256, 1 << 40} {
		c := segmentComponent(seq)
		got, ok := parseSegmentComponent(c)
		require.True(t, ok)
		assert.Equal(t, seq, got)
	}
}
