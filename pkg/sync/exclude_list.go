package sync

import (
	"sort"
	"time"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnlog"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// coveredRecentWindow is how far back a root must have been marked
// COVERED to still count as "recently known" for exclusion purposes.
const coveredRecentWindow = 5 * time.Second

// excludeByteBudget caps the encoded size of the exclusion list a
// root-advise interest carries. Each hash
// component encodes as roughly 70 bytes (64 hex digits plus TLV
// overhead), so this bounds the list to a little over a dozen terms.
const excludeByteBudget = 1000

const approxComponentOverhead = 70

// buildExcludeList assembles the exclusion set a root-advise interest
// carries: the handle's current local root plus any roots recently
// found to be fully COVERED, so peers don't waste an answer repeating
// hashes already known. Entries beyond the byte budget are dropped,
// oldest (least recently seen) first, and the drop count is logged.
func buildExcludeList(cache *Cache, localHash [32]byte, now time.Time) *schema.Exclude {
	hashes := [][32]byte{localHash}
	hashes = append(hashes, cache.CoveredRecentRemoteHashes(now, coveredRecentWindow)...)

	components := make([][]byte, 0, len(hashes))
	seen := make(map[[32]byte]bool, len(hashes))
	for _, h := range hashes {
		if seen[h] {
			continue
		}
		seen[h] = true
		components = append(components, hashComponent(h))
	}

	budget := excludeByteBudget
	kept := components
	dropped := 0
	for len(kept) > 0 && len(kept)*approxComponentOverhead > budget {
		kept = kept[:len(kept)-1]
		dropped++
	}
	if dropped > 0 {
		ccnlog.Default().Warnf("sync: exclude list trimmed, dropped %d of %d entries over %d byte budget",
			dropped, len(components), excludeByteBudget)
	}
	sort.Slice(kept, func(i, j int) bool {
		return compareBytes(kept[i], kept[j]) < 0
	})

	terms := make([]schema.ExcludeTerm, len(kept))
	for i, c := range kept {
		terms[i] = schema.ExcludeTerm{Kind: schema.ExcludeComponent, Component: c}
	}
	return &schema.Exclude{Terms: terms}
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
