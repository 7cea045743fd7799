// Package sign implements ContentObject signing and verification:
// the Name+SignedInfo+Content digest, RSA/ECDSA/HMAC
// signature operations, and Merkle aggregate Witness verification. DSA is
// intentionally not implemented: it is a deprecated signature scheme kept
// around elsewhere only for legacy interoperability, and crypto/dsa was
// removed from the standard library's recommended path long before this
// package needed it.
package sign

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/hmac"
	cryptorand "crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"fmt"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/schema"
)

// DefaultDigestAlgorithm is used when a Signature's DigestAlgorithm field
// is absent.
const DefaultDigestAlgorithm = "SHA256"

// Key is the minimal capability this package needs from a keystore: sign
// a digest. Verification goes through the separate PublicKey interface. Keystore
// loading and disk-persisted key material are out of scope -
// callers supply whichever crypto.Signer/public key they already hold.
type Key interface {
	Sign(digest []byte) (signatureBits []byte, err error)
}

// RSAKey signs with an RSA private key using PKCS#1 v1.5 over SHA-256.
type RSAKey struct{ Private *rsa.PrivateKey }

func (k RSAKey) Sign(digest []byte) ([]byte, error) {
	return rsa.SignPKCS1v15(nil, k.Private, crypto.SHA256, digest)
}

// ECDSAKey signs with an ECDSA private key, ASN.1 DER encoded.
type ECDSAKey struct{ Private *ecdsa.PrivateKey }

func (k ECDSAKey) Sign(digest []byte) ([]byte, error) {
	return ecdsa.SignASN1(cryptorand.Reader, k.Private, digest)
}

// HMACKey signs with a shared secret.
type HMACKey struct{ Secret []byte }

func (k HMACKey) Sign(digest []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, k.Secret)
	mac.Write(digest)
	return mac.Sum(nil), nil
}

// Digest computes the signed-portion digest of o: SHA-256 over
// Name||SignedInfo||Content (pkg/schema.ContentObject.Digest does exactly
// this encoding; this wraps it so callers needn't import pkg/schema to
// get at the bytes).
func Digest(o *schema.ContentObject) [32]byte {
	return o.Digest()
}

// Sign computes o's signature bits using key, filling in o.Signature
// (leaving DigestAlgorithm empty to mean the default).
func Sign(o *schema.ContentObject, key Key) error {
	digest := Digest(o)
	bits, err := key.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	o.Signature.SignatureBits = bits
	return nil
}

// PublicKey is the minimal capability needed to verify a signature.
type PublicKey interface {
	Verify(digest, signatureBits []byte) error
}

// RSAPublicKey verifies PKCS#1 v1.5 signatures over SHA-256.
type RSAPublicKey struct{ Public *rsa.PublicKey }

func (k RSAPublicKey) Verify(digest, sig []byte) error {
	return rsa.VerifyPKCS1v15(k.Public, crypto.SHA256, digest, sig)
}

// ECDSAPublicKey verifies ASN.1 DER ECDSA signatures.
type ECDSAPublicKey struct{ Public *ecdsa.PublicKey }

func (k ECDSAPublicKey) Verify(digest, sig []byte) error {
	if !ecdsa.VerifyASN1(k.Public, digest, sig) {
		return ccnerr.ErrVerifyFailed
	}
	return nil
}

// HMACPublicKey "verifies" by recomputing the MAC with the shared secret.
type HMACPublicKey struct{ Secret []byte }

func (k HMACPublicKey) Verify(digest, sig []byte) error {
	mac := hmac.New(sha256.New, k.Secret)
	mac.Write(digest)
	if !hmac.Equal(mac.Sum(nil), sig) {
		return ccnerr.ErrVerifyFailed
	}
	return nil
}

// PublicKeyFromDER parses a DER-encoded SubjectPublicKeyInfo (as carried
// in a KeyLocator's Key field) into a PublicKey capable of RSA or ECDSA
// verification.
func PublicKeyFromDER(der []byte) (PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("sign: parse public key: %w", err)
	}
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return RSAPublicKey{Public: k}, nil
	case *ecdsa.PublicKey:
		return ECDSAPublicKey{Public: k}, nil
	default:
		return nil, fmt.Errorf("sign: unsupported public key type %T", pub)
	}
}

// Verify checks o's signature against key. If o.Signature.Witness is
// present, the value actually signed is the Merkle aggregate root
// (WitnessRoot) rather than Digest(o) directly.
func Verify(o *schema.ContentObject, key PublicKey) error {
	signedDigest := Digest(o)
	toVerify := signedDigest[:]
	if len(o.Signature.Witness) > 0 {
		root, err := WitnessRoot(o.Signature.Witness, signedDigest)
		if err != nil {
			return err
		}
		toVerify = root
	}
	return key.Verify(toVerify, o.Signature.SignatureBits)
}

// witnessASN1 mirrors the DER (algorithm-OID, octet-string) pair a
// Witness is encoded as.
type witnessASN1 struct {
	Algorithm asn1.ObjectIdentifier
	Bytes     []byte
}

// witnessPayload is the decoded form of the octet string:
// (node-index, sibling-hashes), big-endian node index followed by
// concatenated fixed-size sibling hashes.
func decodeWitnessPayload(payload []byte, hashSize int) (nodeIndex uint64, siblings [][]byte, err error) {
	if len(payload) < 8 {
		return 0, nil, fmt.Errorf("sign: witness payload too short")
	}
	for _, b := range payload[:8] {
		nodeIndex = (nodeIndex << 8) | uint64(b)
	}
	rest := payload[8:]
	if len(rest)%hashSize != 0 {
		return 0, nil, fmt.Errorf("sign: witness sibling hashes misaligned for hash size %d", hashSize)
	}
	for i := 0; i < len(rest); i += hashSize {
		siblings = append(siblings, rest[i:i+hashSize])
	}
	return nodeIndex, siblings, nil
}

// WitnessRoot reproduces the Merkle aggregate root hash a Witness
// attests to, starting from leafDigest (the digest of
// [B_Name, E_Content)): repeatedly combine with the indexed sibling
// (left-or-right determined by the low bit of the node index) until the
// index reaches 1.
func WitnessRoot(witnessDER []byte, leafDigest [32]byte) ([]byte, error) {
	var w witnessASN1
	if _, err := asn1.Unmarshal(witnessDER, &w); err != nil {
		return nil, fmt.Errorf("sign: parse witness: %w", err)
	}
	nodeIndex, siblings, err := decodeWitnessPayload(w.Bytes, sha256.Size)
	if err != nil {
		return nil, err
	}
	if nodeIndex == 0 {
		return nil, fmt.Errorf("%w: witness node index is zero", ccnerr.ErrVerifyFailed)
	}

	current := leafDigest[:]
	idx := nodeIndex
	for i := 0; idx > 1; i++ {
		if i >= len(siblings) {
			return nil, fmt.Errorf("%w: witness ran out of siblings before reaching the root", ccnerr.ErrVerifyFailed)
		}
		sib := siblings[i]
		if len(sib) != len(current) {
			return nil, fmt.Errorf("%w: witness sibling hash length mismatch", ccnerr.ErrVerifyFailed)
		}
		h := sha256.New()
		if idx&1 == 0 {
			h.Write(current)
			h.Write(sib)
		} else {
			h.Write(sib)
			h.Write(current)
		}
		sum := h.Sum(nil)
		current = sum
		idx >>= 1
	}
	return current, nil
}
