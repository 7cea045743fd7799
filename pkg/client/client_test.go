package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnlog"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// newTestHandle builds a Handle with no real socket, for exercising the
// PIT, filter table, and dispatch logic without a daemon connection.
func newTestHandle() *Handle {
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

func TestKeyOfDistinguishesPrefixes(t *testing.T) {
	a := keyOf(name.FromStrings("a", "b"))
	b := keyOf(name.FromStrings("a", "c"))
	c := keyOf(name.FromStrings("a", "b"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
}

// TestAgeInterestsHalvesOutstanding pins the halving rule: outstanding is
// halved once per HALFLIFE elapsed, so an entry starting at 8 and aged by
// one call spanning two half-lives ends at 8 >> 2 == 2 (no zero-crossing
// involved yet, so the immediate-refresh special case doesn't fire).
func TestAgeInterestsHalvesOutstanding(t *testing.T) {
	h := newTestHandle()
	n := name.FromStrings("a")
	t0 := time.Now()
	e := &expressedInterest{
		encoded:     []byte{0},
		template:    &schema.Interest{Name: n},
		target:      1,
		outstanding: 8,
		lastSent:    t0,
		refs:        1,
	}
	h.pit[keyOf(n)] = &pitEntry{prefix: n, expressed: []*expressedInterest{e}}

	h.ageInterests(t0.Add(2 * HalfLife))
	assert.Equal(t, 2, e.outstanding)
}

func TestAgeInterestsFirstZeroRefreshesImmediately(t *testing.T) {
	h := newTestHandle()
	n := name.FromStrings("a")
	t0 := time.Now()
	buf := ccnb.NewCharbuf(8)
	buf.AppendByte(0xAA)
	e := &expressedInterest{
		encoded:     buf.Bytes(),
		template:    &schema.Interest{Name: n},
		target:      1,
		outstanding: 1,
		lastSent:    t0,
		refs:        1,
	}
	h.pit[keyOf(n)] = &pitEntry{prefix: n, expressed: []*expressedInterest{e}}

	h.ageInterests(t0.Add(HalfLife))
	assert.Equal(t, 1, e.outstanding, "first zero-crossing refreshes immediately")
	assert.True(t, e.refreshedOnZero)
	assert.Greater(t, h.out.Len(), 0, "refresh re-queues the encoded interest")
}

type recordingHandler struct {
	kinds  []UpcallKind
	result UpcallResult
}

func (r *recordingHandler) Upcall(h *Handle, kind UpcallKind, info *UpcallInfo) UpcallResult {
	r.kinds = append(r.kinds, kind)
	return r.result
}

func TestDispatchContentDeliversToMatchingPIT(t *testing.T) {
	h := newTestHandle()
	n := name.FromStrings("a", "b")
	handler := &recordingHandler{result: ccnerr.ResultOK}
	require.NoError(t, h.ExpressInterest(name.FromStrings("a"), nil, handler))

	co := &schema.ContentObject{
		Name: n,
		SignedInfo: schema.SignedInfo{
			PublisherPublicKeyDigest: []byte{0x01},
			Timestamp:                ccnb.FromUnixSeconds(1),
			Type:                     schema.ContentTypeData,
			FreshnessSeconds:         -1,
		},
		Content:   []byte("payload"),
		Signature: schema.Signature{SignatureBits: []byte{0x02}},
	}
	h.dispatchContent([]byte("raw"), co)

	require.Len(t, handler.kinds, 1)
	assert.Equal(t, ccnerr.KindContent, handler.kinds[0])
}

func TestDispatchInterestConsumedInvokesDefaultHandler(t *testing.T) {
	h := newTestHandle()
	specific := &recordingHandler{result: ccnerr.ResultInterestConsumed}
	defaultHandler := &recordingHandler{result: ccnerr.ResultOK}
	h.SetInterestFilter(name.FromStrings("a"), specific)
	h.SetInterestFilter(name.New(), defaultHandler)

	it := &schema.Interest{Name: name.FromStrings("a", "b"), MinSuffixComponents: -1, MaxSuffixComponents: -1, ChildSelector: -1, AnswerOriginKind: -1, Scope: -1}
	h.dispatchInterest([]byte("raw"), it)

	require.Len(t, specific.kinds, 1)
	assert.Equal(t, ccnerr.KindInterest, specific.kinds[0])
	require.Len(t, defaultHandler.kinds, 1)
	assert.Equal(t, ccnerr.KindConsumedInterest, defaultHandler.kinds[0])
}
