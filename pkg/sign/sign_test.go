package sign

import (
	"crypto/sha256"
	"encoding/asn1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

func sampleObject() *schema.ContentObject {
	return &schema.ContentObject{
		Name: name.FromStrings("test", "data", "\x00\x42"),
		SignedInfo: schema.SignedInfo{
			PublisherPublicKeyDigest: []byte{0xAA},
			Timestamp:                ccnb.FromUnixSeconds(1000),
			Type:                     schema.ContentTypeData,
			FreshnessSeconds:         -1,
		},
		Content: []byte("DATA"),
	}
}

func TestHMACSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("shared-secret")
	o := sampleObject()
	require.NoError(t, Sign(o, HMACKey{Secret: secret}))
	assert.NoError(t, Verify(o, HMACPublicKey{Secret: secret}))
}

// TestSignatureFailure pins the scenario where flipping a bit in the
// signature bits must make verification fail.
func TestSignatureFailure(t *testing.T) {
	secret := []byte("shared-secret")
	o := sampleObject()
	require.NoError(t, Sign(o, HMACKey{Secret: secret}))

	o.Signature.SignatureBits[len(o.Signature.SignatureBits)-1] ^= 0x01
	assert.Error(t, Verify(o, HMACPublicKey{Secret: secret}))
}

func TestWitnessRootTwoLeafTree(t *testing.T) {
	leafA := sha256.Sum256([]byte("a"))
	leafB := sha256.Sum256([]byte("b"))
	root := sha256.Sum256(append(append([]byte{}, leafA[:]...), leafB[:]...))

	// node index 2 (even => leaf is left child), one sibling (leafB).
	payload := make([]byte, 8+32)
	payload[7] = 2
	copy(payload[8:], leafB[:])
	der, err := asn1.Marshal(witnessASN1{
		Algorithm: asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}, // sha256
		Bytes:     payload,
	})
	require.NoError(t, err)

	got, err := WitnessRoot(der, leafA)
	require.NoError(t, err)
	assert.Equal(t, root[:], got)
}

func TestDigestIsStableAndCached(t *testing.T) {
	o := sampleObject()
	d1 := Digest(o)
	d2 := Digest(o)
	assert.Equal(t, d1, d2)
}
