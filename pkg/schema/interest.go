// Package schema implements the Interest and ContentObject wire schema:
// fixed-field-order parsing/encoding over pkg/ccnb, the
// content/interest match rule, and the policy invariants a parse must
// enforce before a message is accepted into the rest of the engine.
package schema

import (
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
)

// ChildSelector picks which of several matching children a content store
// or publisher should prefer.
type ChildSelector int

const (
	ChildSelectorLeftmost ChildSelector = iota
	ChildSelectorRightmost
)

// AnswerOriginKind bits.
const (
	AOFromContentStore = 1 << 0
	AONewOk            = 1 << 1
	AOStaleOk          = 1 << 2
	AOMarkStale        = 1 << 4
)

// NoMaxSuffixComponents is the wire-absent sentinel for MaxSuffixComponents,
// meaning "unbounded".
const NoMaxSuffixComponents = -1

// Interest is the in-memory form of an Interest message. Optional fields
// absent on the wire are represented as nil slices / pointers / the -1
// sentinels documented per field, matching the wire's fixed field
// order: Name, MinSuffixComponents?, MaxSuffixComponents?,
// PublisherPublicKeyDigest?, Exclude?, ChildSelector?, AnswerOriginKind?,
// Scope?, InterestLifetime?, Nonce?.
type Interest struct {
	Name                     name.Name
	MinSuffixComponents      int // -1 if absent (defaults to 0)
	MaxSuffixComponents      int // -1 if absent (defaults to unbounded)
	PublisherPublicKeyDigest []byte
	Exclude                  *Exclude
	ChildSelector            int // -1 if absent (defaults to ChildSelectorLeftmost)
	AnswerOriginKind         int // -1 if absent
	Scope                    int // -1 if absent (0/1/2 otherwise)
	InterestLifetime         *ccnb.Timestamp
	Nonce                    []byte
}

// EffectiveMinSuffix returns the resolved MinSuffixComponents, applying the
// wire-absent default.
func (it *Interest) EffectiveMinSuffix() int {
	if it.MinSuffixComponents < 0 {
		return 0
	}
	return it.MinSuffixComponents
}

// EffectiveMaxSuffix returns the resolved MaxSuffixComponents (NoMaxSuffixComponents
// meaning unbounded), applying the wire-absent default.
func (it *Interest) EffectiveMaxSuffix() int {
	if it.MaxSuffixComponents < 0 {
		return NoMaxSuffixComponents
	}
	return it.MaxSuffixComponents
}

// EffectiveChildSelector applies the wire-absent default (Leftmost).
func (it *Interest) EffectiveChildSelector() ChildSelector {
	if it.ChildSelector < 0 {
		return ChildSelectorLeftmost
	}
	return ChildSelector(it.ChildSelector)
}

// checkPolicy enforces the invariants required of every
// parsed Interest, independent of whether it later matches any content:
// Min<=Max when both present, MARK_STALE only in combination with
// Scope==0 (a stale-marking Interest is inherently local-scope-only), and
// NEW_OK only in combination with FROM_CONTENT_STORE - NEW alone would
// mean "answer from nowhere", which the stricter reading of the wire
// format rejects outright rather than degrading at match time.
func (it *Interest) checkPolicy() error {
	if it.MinSuffixComponents >= 0 && it.MaxSuffixComponents >= 0 &&
		it.MinSuffixComponents > it.MaxSuffixComponents {
		return ccnerr.ErrIllegalPolicy
	}
	if it.AnswerOriginKind >= 0 {
		if it.AnswerOriginKind&AOMarkStale != 0 && it.Scope != 0 {
			return ccnerr.ErrIllegalPolicy
		}
		if it.AnswerOriginKind&AONewOk != 0 && it.AnswerOriginKind&AOFromContentStore == 0 {
			return ccnerr.ErrIllegalPolicy
		}
	}
	return nil
}

// EncodeInterest appends the wire form of it to buf.
func EncodeInterest(buf *ccnb.Charbuf, it *Interest) error {
	if err := it.checkPolicy(); err != nil {
		return err
	}
	ccnb.AppendOpenDTag(buf, ccnb.DTagInterest)
	name.Encode(buf, it.Name)
	if it.MinSuffixComponents >= 0 {
		ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagMinSuffixComponents, int64(it.MinSuffixComponents))
	}
	if it.MaxSuffixComponents >= 0 {
		ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagMaxSuffixComponents, int64(it.MaxSuffixComponents))
	}
	if it.PublisherPublicKeyDigest != nil {
		ccnb.AppendTaggedBlob(buf, ccnb.DTagPublisherPublicKeyDigest, it.PublisherPublicKeyDigest)
	}
	if it.Exclude != nil {
		EncodeExclude(buf, it.Exclude)
	}
	if it.ChildSelector >= 0 {
		ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagChildSelector, int64(it.ChildSelector))
	}
	if it.AnswerOriginKind >= 0 {
		ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagAnswerOriginKind, int64(it.AnswerOriginKind))
	}
	if it.Scope >= 0 {
		ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagScope, int64(it.Scope))
	}
	if it.InterestLifetime != nil {
		ccnb.AppendTaggedTimestamp(buf, ccnb.DTagInterestLifetime, *it.InterestLifetime)
	}
	if it.Nonce != nil {
		ccnb.AppendTaggedBlob(buf, ccnb.DTagNonce, it.Nonce)
	}
	ccnb.AppendClose(buf)
	return nil
}

// DecodeInterest reads an Interest element assuming the reader's cursor is
// already positioned on its DTagOpen token. Fields are read strictly in
// the fixed order the wire format specifies; an out-of-order field is a
// schema violation, not silently tolerated.
func DecodeInterest(r *ccnb.TokenReader, comps *ccnb.IndexBuf) (*Interest, error) {
	ok, err := r.TryDTagOpen(ccnb.DTagName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ccnb.ErrSchema
	}
	n, err := name.Decode(r, comps)
	if err != nil {
		return nil, err
	}

	it := &Interest{Name: n, MinSuffixComponents: -1, MaxSuffixComponents: -1, ChildSelector: -1, AnswerOriginKind: -1, Scope: -1}

	if v, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagMinSuffixComponents); err != nil {
		return nil, err
	} else if present {
		it.MinSuffixComponents = int(v)
	}
	if v, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagMaxSuffixComponents); err != nil {
		return nil, err
	} else if present {
		it.MaxSuffixComponents = int(v)
	}
	if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagPublisherPublicKeyDigest, 1, 64); err != nil {
		return nil, err
	} else if present {
		it.PublisherPublicKeyDigest = blob
	}
	if ok, err := r.TryDTagOpen(ccnb.DTagExclude); err != nil {
		return nil, err
	} else if ok {
		ex, err := DecodeExclude(r)
		if err != nil {
			return nil, err
		}
		it.Exclude = ex
	}
	if v, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagChildSelector); err != nil {
		return nil, err
	} else if present {
		it.ChildSelector = int(v)
	}
	if v, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagAnswerOriginKind); err != nil {
		return nil, err
	} else if present {
		it.AnswerOriginKind = int(v)
	}
	if v, present, err := ccnb.OptionalTaggedNonNegInt(r, ccnb.DTagScope); err != nil {
		return nil, err
	} else if present {
		it.Scope = int(v)
	}
	if ts, present, err := ccnb.OptionalTaggedTimestamp(r, ccnb.DTagInterestLifetime); err != nil {
		return nil, err
	} else if present {
		it.InterestLifetime = &ts
	}
	if blob, present, err := ccnb.OptionalTaggedBlob(r, ccnb.DTagNonce, 1, 32); err != nil {
		return nil, err
	} else if present {
		it.Nonce = blob
	}

	if err := r.CheckClose(); err != nil {
		return nil, err
	}
	if err := it.checkPolicy(); err != nil {
		return nil, err
	}
	return it, nil
}
