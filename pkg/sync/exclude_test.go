package sync

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

func fakeHash(b byte) [32]byte {
	return sha256.Sum256([]byte{b})
}

func TestBuildExcludeListIncludesLocalAndCoveredRemote(t *testing.T) {
	cache := NewCache()
	now := time.Now()

	local := fakeHash(1)
	covered := fakeHash(2)
	stale := fakeHash(3)
	uncovered := fakeHash(4)

	// NoteRemoteHash assumes each call is more recent than the last (as
	// every real caller, driven by an advancing heartbeat clock, is), so
	// the oldest entry here must be recorded first.
	cache.NoteRemoteHash(stale, now.Add(-time.Hour))
	cache.MarkCovered(stale)
	cache.NoteRemoteHash(covered, now)
	cache.MarkCovered(covered)
	cache.NoteRemoteHash(uncovered, now)

	ex := buildExcludeList(cache, local, now)

	var components [][]byte
	for _, term := range ex.Terms {
		require.Equal(t, schema.ExcludeComponent, term.Kind)
		components = append(components, term.Component)
	}

	assert.Contains(t, components, hashComponent(local))
	assert.Contains(t, components, hashComponent(covered))
	assert.NotContains(t, components, hashComponent(stale))
	assert.NotContains(t, components, hashComponent(uncovered))
}

func TestBuildExcludeListDropsOverBudget(t *testing.T) {
	cache := NewCache()
	now := time.Now()
	for i := 0; i < 50; i++ {
		h := fakeHash(byte(i))
		cache.NoteRemoteHash(h, now)
		cache.MarkCovered(h)
	}

	ex := buildExcludeList(cache, fakeHash(200), now)
	size := 0
	for _, term := range ex.Terms {
		size += len(term.Component)
	}
	assert.LessOrEqual(t, len(ex.Terms)*approxComponentOverhead, excludeByteBudget)
	assert.Less(t, len(ex.Terms), 51)
	_ = size
}

func TestHashComponentRoundTrip(t *testing.T) {
	h := fakeHash(42)
	c := hashComponent(h)
	got, ok := parseHashComponent(c)
	require.True(t, ok)
	assert.Equal(t, h, got)

	_, ok = parseHashComponent([]byte("not-a-hash"))
	assert.False(t, ok)
}
