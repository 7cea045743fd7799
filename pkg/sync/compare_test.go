package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

func namesContain(names []name.Name, target name.Name) bool {
	for _, n := range names {
		if name.Equal(n, target) {
			return true
		}
	}
	return false
}

// TestComparisonFindsRemoteOnlyLeaf pins the scenario where two
// branches that share most of their names but have each picked up one
// name the other lacks converge to agreement on what's missing.
func TestComparisonFindsRemoteOnlyLeaf(t *testing.T) {
	shared := []name.Name{
		name.FromStrings("park", "sensors", "1"),
		name.FromStrings("park", "sensors", "2"),
	}
	localOnly := append(append([]name.Name{}, shared...), name.FromStrings("park", "sensors", "local"))
	remoteOnly := append(append([]name.Name{}, shared...), name.FromStrings("park", "sensors", "remote"))

	cache := NewCache()

	localRoot, localAll := BuildTree(localOnly)
	for _, n := range localAll {
		cache.PutLocal(n.Hash(), n)
	}

	remoteRoot, remoteAll := BuildTree(remoteOnly)
	for _, n := range remoteAll {
		cache.PutRemote(n.Hash(), n, time.Now())
	}

	var requested [][32]byte
	cmp := NewComparison(cache, localRoot, remoteRoot.Hash(), func(h [32]byte) {
		requested = append(requested, h)
	})

	for i := 0; i < 100 && cmp.State() != StateCompareDone && cmp.State() != StateCompareError; i++ {
		cmp.Step()
	}

	require.Equal(t, StateCompareDone, cmp.State())
	assert.Empty(t, requested, "every node was already cached, no fetch should have been needed")

	added := cmp.Added()
	require.Len(t, added, 1)
	assert.True(t, namesContain(added, name.FromStrings("park", "sensors", "remote")))
	assert.False(t, namesContain(added, name.FromStrings("park", "sensors", "local")))
}

// TestComparisonPausesUntilNodeArrives exercises the resumable waiting
// state: the remote root isn't cached yet, so Step must pause rather
// than block, and only finishes once the caller simulates the node
// fetch completing.
func TestComparisonPausesUntilNodeArrives(t *testing.T) {
	cache := NewCache()

	localRoot, localAll := BuildTree([]name.Name{name.FromStrings("a")})
	for _, n := range localAll {
		cache.PutLocal(n.Hash(), n)
	}

	remoteRoot, _ := BuildTree([]name.Name{name.FromStrings("a"), name.FromStrings("b")})

	var requested [][32]byte
	cmp := NewComparison(cache, localRoot, remoteRoot.Hash(), func(h [32]byte) {
		requested = append(requested, h)
	})

	state := cmp.Step()
	assert.Equal(t, StateCompareWaiting, state)
	require.Len(t, requested, 1)
	assert.Equal(t, remoteRoot.Hash(), requested[0])

	cache.PutRemote(remoteRoot.Hash(), remoteRoot, time.Now())
	cmp.NodeArrived(remoteRoot.Hash())

	for i := 0; i < 100 && cmp.State() != StateCompareDone && cmp.State() != StateCompareError; i++ {
		cmp.Step()
	}
	require.Equal(t, StateCompareDone, cmp.State())
	assert.True(t, namesContain(cmp.Added(), name.FromStrings("b")))
}
