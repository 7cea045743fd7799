package schema

import (
	"bytes"
)

// Matches implements the content/interest match rule: a
// ContentObject satisfies an Interest iff all four conditions hold.
//
//  1. The Interest Name is a prefix of the ContentObject Name, OR the
//     Interest Name equals the ContentObject's full digest name (the
//     "exact match by implicit digest" case).
//  2. The number of ContentObject Name components beyond the Interest
//     Name's length (the "suffix count", which always includes the
//     implicit digest component) falls within
//     [MinSuffixComponents, MaxSuffixComponents].
//  3. PublisherPublicKeyDigest, if present on the Interest, equals the
//     ContentObject's SignedInfo.PublisherPublicKeyDigest.
//  4. The first ContentObject Name component beyond the Interest prefix
//     is not ruled out by the Interest's Exclude set.
//
// AnswerOriginKind plays no further role here: checkPolicy already
// rejects a NEW-only Interest (NEW set, FROM_CONTENT_STORE not set) at
// parse time, so by the time an Interest reaches Matches there is
// nothing left to degrade on.
func Matches(it *Interest, co *ContentObject) bool {
	suffixCount := co.Name.Len() - it.Name.Len() + 1 // +1 for the implicit digest component
	if !it.Name.IsPrefixOf(co.Name) {
		if !isExactDigestMatch(it, co) {
			return false
		}
		suffixCount = 1
	}

	min := it.EffectiveMinSuffix()
	max := it.EffectiveMaxSuffix()
	if suffixCount < min {
		return false
	}
	if max != NoMaxSuffixComponents && suffixCount > max {
		return false
	}

	if it.PublisherPublicKeyDigest != nil {
		if !bytes.Equal(it.PublisherPublicKeyDigest, co.SignedInfo.PublisherPublicKeyDigest) {
			return false
		}
	}

	if it.Exclude != nil && co.Name.Len() > it.Name.Len() {
		firstSuffixComponent := co.Name.Component(it.Name.Len())
		if it.Exclude.Excludes(firstSuffixComponent) {
			return false
		}
	}

	return true
}

// isExactDigestMatch reports whether it.Name equals co.Name with its
// implicit digest component appended, i.e. the Interest names this exact
// object by content digest.
func isExactDigestMatch(it *Interest, co *ContentObject) bool {
	if it.Name.Len() != co.Name.Len()+1 {
		return false
	}
	if !co.Name.IsPrefixOf(it.Name.Prefix(co.Name.Len())) {
		return false
	}
	digest := co.Digest()
	last := it.Name.Component(it.Name.Len() - 1)
	return bytes.Equal(last, digest[:])
}
