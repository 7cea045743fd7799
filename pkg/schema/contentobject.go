package schema

import (
	"crypto/sha256"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// ContentType is the SignedInfo Type field: DATA, a fragment
// of a Link, a key, a gone tombstone, or a NACK.
type ContentType uint32

const (
	ContentTypeData ContentType = 0x0C04C0
	ContentTypeLink ContentType = 0x0C3C04
	ContentTypeKey  ContentType = 0x0C3C02
	ContentTypeGone ContentType = 0x18E344
	ContentTypeNACK ContentType = 0x1800D2
)

// KeyLocator names where a publisher's key can be found: an embedded
// Key/Certificate blob, or a KeyName to fetch one by.
type KeyLocator struct {
	KeyDigest   []byte // PublisherPublicKeyDigest-style self-identifying digest, optional
	Key         []byte // DER-encoded public key, optional
	Certificate []byte // DER certificate, optional
	KeyName     *name.Name
}

// SignedInfo carries the publisher-attested metadata every ContentObject
// is signed over along with its Name and Content.
type SignedInfo struct {
	PublisherPublicKeyDigest []byte
	Timestamp                ccnb.Timestamp
	Type                     ContentType
	FreshnessSeconds         int // -1 if absent (never stale by freshness)
	FinalBlockID             []byte
	KeyLocator               *KeyLocator
}

// Signature carries the digest algorithm identifier and the signature (or
// Merkle Witness) bits over the ContentObject's signed portion.
type Signature struct {
	DigestAlgorithm string // "" means the schema default (SHA-256)
	Witness         []byte // non-nil for a Merkle-aggregated signature
	SignatureBits   []byte
}

// ContentObject is the in-memory, fixed-field-order form of a published
// object: Signature, Name, SignedInfo, Content.
type ContentObject struct {
	Signature  Signature
	Name       name.Name
	SignedInfo SignedInfo
	Content    []byte

	// raw, signedStart and signedEnd let Digest hash the exact wire
	// bytes this object was parsed from ([B_Name, E_Content)) instead of
	// re-serializing from the struct fields above. They're nil/zero for
	// an object built by hand for publication, which has no wire form
	// yet - Digest falls back to encoding one in that case.
	raw         []byte
	signedStart int
	signedEnd   int

	digest     [32]byte
	digestDone bool
}

// ParsedContentObject bundles a decoded ContentObject with the raw buffer
// it was parsed from, for callers (dispatch, pkg/fetch) that want the
// original bytes alongside the parsed fields. pkg/sign never needs this -
// Object.Digest() already hashes the matching wire range internally.
type ParsedContentObject struct {
	Object *ContentObject
	Raw    []byte
}

// Digest returns the SHA-256 digest over the object's signed portion,
// computing and caching it on first call. For an object decoded off the
// wire, this hashes the original raw[B_Name:E_Content) bytes; for one
// built in memory (not yet encoded), it re-serializes Name+SignedInfo+
// Content from the struct fields, since no wire bytes exist yet to hash
// directly.
func (o *ContentObject) Digest() [32]byte {
	if o.digestDone {
		return o.digest
	}
	if o.raw != nil {
		o.digest = sha256.Sum256(o.raw[o.signedStart:o.signedEnd])
	} else {
		buf := ccnb.NewCharbuf(256)
		name.Encode(buf, o.Name)
		encodeSignedInfo(buf, &o.SignedInfo)
		encodeContent(buf, o.Content)
		o.digest = sha256.Sum256(buf.Bytes())
	}
	o.digestDone = true
	return o.digest
}

func encodeSignedInfo(buf *ccnb.Charbuf, si *SignedInfo) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagSignedInfo)
	ccnb.AppendTaggedBlob(buf, ccnb.DTagPublisherPublicKeyDigest, si.PublisherPublicKeyDigest)
	ccnb.AppendTaggedTimestamp(buf, ccnb.DTagTimestamp, si.Timestamp)
	ccnb.AppendTaggedBinaryNumber(buf, ccnb.DTagType, uint64(si.Type))
	if si.FreshnessSeconds >= 0 {
		ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagFreshnessSeconds, int64(si.FreshnessSeconds))
	}
	if si.FinalBlockID != nil {
		ccnb.AppendTaggedBlob(buf, ccnb.DTagFinalBlockID, si.FinalBlockID)
	}
	if si.KeyLocator != nil {
		encodeKeyLocator(buf, si.KeyLocator)
	}
	ccnb.AppendClose(buf)
}

func encodeKeyLocator(buf *ccnb.Charbuf, kl *KeyLocator) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagKeyLocator)
	switch {
	case kl.Key != nil:
		ccnb.AppendTaggedBlob(buf, ccnb.DTagKey, kl.Key)
	case kl.Certificate != nil:
		ccnb.AppendTaggedBlob(buf, ccnb.DTagCertificate, kl.Certificate)
	case kl.KeyName != nil:
		ccnb.AppendOpenDTag(buf, ccnb.DTagKeyName)
		name.Encode(buf, *kl.KeyName)
		if kl.KeyDigest != nil {
			ccnb.AppendTaggedBlob(buf, ccnb.DTagPublisherPublicKeyDigest, kl.KeyDigest)
		}
		ccnb.AppendClose(buf)
	}
	ccnb.AppendClose(buf)
}

func encodeContent(buf *ccnb.Charbuf, content []byte) {
	ccnb.AppendTaggedBlob(buf, ccnb.DTagContent, content)
}

// EncodeSignature appends the Signature element.
func EncodeSignature(buf *ccnb.Charbuf, sig *Signature) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagSignature)
	if sig.DigestAlgorithm != "" {
		ccnb.AppendTaggedUData(buf, ccnb.DTagDigestAlgorithm, sig.DigestAlgorithm)
	}
	if sig.Witness != nil {
		ccnb.AppendTaggedBlob(buf, ccnb.DTagWitness, sig.Witness)
	}
	ccnb.AppendTaggedBlob(buf, ccnb.DTagSignatureBits, sig.SignatureBits)
	ccnb.AppendClose(buf)
}

// EncodeContentObject appends the complete wire form of o to buf.
func EncodeContentObject(buf *ccnb.Charbuf, o *ContentObject) {
	ccnb.AppendOpenDTag(buf, ccnb.DTagContentObject)
	EncodeSignature(buf, &o.Signature)
	name.Encode(buf, o.Name)
	encodeSignedInfo(buf, &o.SignedInfo)
	encodeContent(buf, o.Content)
	ccnb.AppendClose(buf)
}

// DecodeSignature reads a Signature element, cursor already on its
// DTagOpen token.
func DecodeSignature(r *ccnb.TokenReader) (*Signature, error) {
	var sig Signature
	if text, present, err := optionalTaggedUData(r, ccnb.DTagDigestAlgorithm); err != nil {
		return nil, err
	} else if present {
		sig.DigestAlgorithm = text
	}
	if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagWitness, 1, -1); err != nil {
		return nil, err
	} else if present {
		sig.Witness = blob
	}
	bits, err := ccnb.RequiredTaggedBlob(r, ccnb.DTagSignatureBits, 1, -1)
	if err != nil {
		return nil, err
	}
	sig.SignatureBits = bits
	if err := r.CheckClose(); err != nil {
		return nil, err
	}
	return &sig, nil
}

func optionalTaggedUData(r *ccnb.TokenReader, tag ccnb.DTag) (text string, present bool, err error) {
	ok, err := r.TryDTagOpen(tag)
	if err != nil || !ok {
		return "", false, err
	}
	if err := r.Advance(); err != nil {
		return "", false, err
	}
	data, isText := r.MatchUData()
	if !isText {
		return "", false, ccnb.ErrSchema
	}
	if err := r.CheckClose(); err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// DecodeKeyLocator reads a KeyLocator element, cursor already on its
// DTagOpen token.
func DecodeKeyLocator(r *ccnb.TokenReader) (*KeyLocator, error) {
	var kl KeyLocator
	if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagKey, 1, -1); err != nil {
		return nil, err
	} else if present {
		kl.Key = blob
		if err := r.CheckClose(); err != nil {
			return nil, err
		}
		return &kl, nil
	}
	if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagCertificate, 1, -1); err != nil {
		return nil, err
	} else if present {
		kl.Certificate = blob
		if err := r.CheckClose(); err != nil {
			return nil, err
		}
		return &kl, nil
	}
	if ok, err := r.TryDTagOpen(ccnb.DTagKeyName); err != nil {
		return nil, err
	} else if ok {
		comps := ccnb.NewIndexBuf()
		if ok2, err := r.TryDTagOpen(ccnb.DTagName); err != nil {
			return nil, err
		} else if !ok2 {
			return nil, ccnb.ErrSchema
		}
		n, err := name.Decode(r, comps)
		if err != nil {
			return nil, err
		}
		kl.KeyName = &n
		if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagPublisherPublicKeyDigest, 1, 64); err != nil {
			return nil, err
		} else if present {
			kl.KeyDigest = blob
		}
		if err := r.CheckClose(); err != nil {
			return nil, err
		}
		if err := r.CheckClose(); err != nil {
			return nil, err
		}
		return &kl, nil
	}
	return nil, ccnb.ErrSchema
}

// DecodeSignedInfo reads a SignedInfo element, cursor already on its
// DTagOpen token.
func DecodeSignedInfo(r *ccnb.TokenReader) (*SignedInfo, error) {
	si := SignedInfo{FreshnessSeconds: -1}
	digest, err := ccnb.RequiredTaggedBlob(r, ccnb.DTagPublisherPublicKeyDigest, 1, 64)
	if err != nil {
		return nil, err
	}
	si.PublisherPublicKeyDigest = digest
	ts, err := ccnb.RequiredTaggedTimestamp(r, ccnb.DTagTimestamp)
	if err != nil {
		return nil, err
	}
	si.Timestamp = ts
	typ, err := ccnb.RequiredTaggedBinaryNumber(r, ccnb.DTagType, 3, 3)
	if err != nil {
		return nil, err
	}
	si.Type = ContentType(typ)
	if v, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagFreshnessSeconds); err != nil {
		return nil, err
	} else if present {
		si.FreshnessSeconds = int(v)
	}
	if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagFinalBlockID, 1, -1); err != nil {
		return nil, err
	} else if present {
		si.FinalBlockID = blob
	}
	if ok, err := r.TryDTagOpen(ccnb.DTagKeyLocator); err != nil {
		return nil, err
	} else if ok {
		kl, err := DecodeKeyLocator(r)
		if err != nil {
			return nil, err
		}
		si.KeyLocator = kl
	}
	if err := r.CheckClose(); err != nil {
		return nil, err
	}
	return &si, nil
}

// DecodeContentObject reads a ContentObject element assuming the reader's
// cursor is already positioned on its DTagOpen token. The returned
// object's Digest hashes raw[B_Name:E_Content) directly rather than
// re-encoding the parsed fields.
func DecodeContentObject(r *ccnb.TokenReader, raw []byte) (*ParsedContentObject, error) {
	ok, err := r.TryDTagOpen(ccnb.DTagSignature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ccnb.ErrSchema
	}
	sig, err := DecodeSignature(r)
	if err != nil {
		return nil, err
	}

	signedStart := r.Pos()
	ok, err = r.TryDTagOpen(ccnb.DTagName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ccnb.ErrSchema
	}
	comps := ccnb.NewIndexBuf()
	n, err := name.Decode(r, comps)
	if err != nil {
		return nil, err
	}

	ok, err = r.TryDTagOpen(ccnb.DTagSignedInfo)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ccnb.ErrSchema
	}
	si, err := DecodeSignedInfo(r)
	if err != nil {
		return nil, err
	}

	content, err := ccnb.RequiredTaggedBlob(r, ccnb.DTagContent, 0, -1)
	if err != nil {
		return nil, err
	}
	signedEnd := r.Pos()

	if err := r.CheckClose(); err != nil {
		return nil, err
	}

	obj := &ContentObject{
		Signature:   *sig,
		Name:        n,
		SignedInfo:  *si,
		Content:     content,
		raw:         raw,
		signedStart: signedStart,
		signedEnd:   signedEnd,
	}
	return &ParsedContentObject{
		Object: obj,
		Raw:    raw,
	}, nil
}
