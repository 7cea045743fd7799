package schema

import (
	"crypto/sha256"
	"testing"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleInterest(n name.Name) *Interest {
	return &Interest{
		Name:                n,
		MinSuffixComponents: -1,
		MaxSuffixComponents: -1,
		ChildSelector:       -1,
		AnswerOriginKind:    -1,
		Scope:               -1,
	}
}

func TestInterestRoundTrip(t *testing.T) {
	n := name.FromStrings("a", "b")
	it := simpleInterest(n)
	it.MinSuffixComponents = 1
	it.MaxSuffixComponents = 3
	lifetime := ccnb.FromUnixSeconds(4)
	it.InterestLifetime = &lifetime
	it.Nonce = []byte{1, 2, 3, 4}

	buf := ccnb.NewCharbuf(64)
	require.NoError(t, EncodeInterest(buf, it))

	r := ccnb.NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(ccnb.DTagInterest)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := DecodeInterest(r, ccnb.NewIndexBuf())
	require.NoError(t, err)
	assert.True(t, name.Equal(n, got.Name))
	assert.Equal(t, 1, got.MinSuffixComponents)
	assert.Equal(t, 3, got.MaxSuffixComponents)
	assert.Equal(t, []byte{1, 2, 3, 4}, got.Nonce)
	require.NotNil(t, got.InterestLifetime)
	assert.Equal(t, lifetime, *got.InterestLifetime)
}

func TestInterestEmptyRoundTrip(t *testing.T) {
	it := simpleInterest(name.FromStrings())
	buf := ccnb.NewCharbuf(16)
	require.NoError(t, EncodeInterest(buf, it))

	r := ccnb.NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(ccnb.DTagInterest)
	require.NoError(t, err)
	require.True(t, ok)
	got, err := DecodeInterest(r, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Name.Len())
	assert.Nil(t, got.Nonce)
}

func TestInterestPolicyMinGreaterThanMaxRejected(t *testing.T) {
	it := simpleInterest(name.FromStrings("a"))
	it.MinSuffixComponents = 3
	it.MaxSuffixComponents = 1
	buf := ccnb.NewCharbuf(16)
	err := EncodeInterest(buf, it)
	assert.ErrorIs(t, err, ccnerr.ErrIllegalPolicy)
}

func TestInterestPolicyMarkStaleRequiresLocalScope(t *testing.T) {
	it := simpleInterest(name.FromStrings("a"))
	it.AnswerOriginKind = AOMarkStale
	it.Scope = 2
	buf := ccnb.NewCharbuf(16)
	err := EncodeInterest(buf, it)
	assert.ErrorIs(t, err, ccnerr.ErrIllegalPolicy)
}

func sampleContentObject(n name.Name, content []byte) *ContentObject {
	return &ContentObject{
		Name: n,
		SignedInfo: SignedInfo{
			PublisherPublicKeyDigest: []byte{0xAA, 0xBB},
			Timestamp:                ccnb.FromUnixSeconds(1000),
			Type:                     ContentTypeData,
			FreshnessSeconds:         -1,
		},
		Content: content,
		Signature: Signature{
			SignatureBits: []byte{0xDE, 0xAD, 0xBE, 0xEF},
		},
	}
}

func TestContentObjectRoundTrip(t *testing.T) {
	n := name.FromStrings("a", "b", "c")
	co := sampleContentObject(n, []byte("hello world"))

	buf := ccnb.NewCharbuf(128)
	EncodeContentObject(buf, co)

	r := ccnb.NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(ccnb.DTagContentObject)
	require.NoError(t, err)
	require.True(t, ok)

	parsed, err := DecodeContentObject(r, buf.Bytes())
	require.NoError(t, err)
	assert.True(t, name.Equal(n, parsed.Object.Name))
	assert.Equal(t, "hello world", string(parsed.Object.Content))
	assert.Equal(t, co.SignedInfo.PublisherPublicKeyDigest, parsed.Object.SignedInfo.PublisherPublicKeyDigest)
}

// TestContentObjectDigestHashesRawWireBytes pins Digest's contract for a
// decoded object: it hashes raw[B_Name:E_Content) directly rather than
// re-serializing the parsed struct fields. Mutating a parsed field right
// after decode (before Digest has cached anything) must not change the
// result - a re-serializing Digest would pick the mutation up, a
// raw-hashing one can't see it.
func TestContentObjectDigestHashesRawWireBytes(t *testing.T) {
	n := name.FromStrings("a", "b")
	co := sampleContentObject(n, []byte("payload"))

	buf := ccnb.NewCharbuf(128)
	EncodeContentObject(buf, co)
	wire := buf.Bytes()

	r := ccnb.NewTokenReader(wire)
	ok, err := r.TryDTagOpen(ccnb.DTagContentObject)
	require.NoError(t, err)
	require.True(t, ok)
	parsed, err := DecodeContentObject(r, wire)
	require.NoError(t, err)

	wantDigest := sha256.Sum256(wire[parsed.Object.signedStart:parsed.Object.signedEnd])

	parsed.Object.Content = []byte("mutated in memory only, raw wire is untouched")

	assert.Equal(t, wantDigest, parsed.Object.Digest())
}

func TestMatchPrefixAndSuffixBounds(t *testing.T) {
	co := sampleContentObject(name.FromStrings("a", "b"), []byte("x"))
	it := simpleInterest(name.FromStrings("a"))
	assert.True(t, Matches(it, co))

	it.MaxSuffixComponents = 1 // co has 1 name comp beyond the "a" prefix, plus the implicit digest -> suffix count 2
	assert.False(t, Matches(it, co))
}

func TestMatchPublisherDigestMismatchRejected(t *testing.T) {
	co := sampleContentObject(name.FromStrings("a"), []byte("x"))
	it := simpleInterest(name.FromStrings("a"))
	it.PublisherPublicKeyDigest = []byte{0x01}
	assert.False(t, Matches(it, co))
}

func TestMatchExcludeRejectsFirstSuffixComponent(t *testing.T) {
	co := sampleContentObject(name.FromStrings("a", "excluded"), []byte("x"))
	it := simpleInterest(name.FromStrings("a"))
	it.Exclude = &Exclude{Terms: []ExcludeTerm{{Kind: ExcludeComponent, Component: []byte("excluded")}}}
	assert.False(t, Matches(it, co))
}

func TestExcludeBuildBloomApproximateMembership(t *testing.T) {
	members := [][]byte{[]byte("x"), []byte("y"), []byte("z")}
	bloom := BuildBloom(32, members)
	for _, m := range members {
		assert.True(t, bloomMayContain(bloom, m))
	}
}
