package schema

import (
	"testing"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
	"github.com/ProjectCCNx/ccnx-sub003/pkg/name"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInterestPolicyNewOnlyRejected pins the resolved reading of
// AnswerOriginKind: NEW_OK without FROM_CONTENT_STORE is illegal, not a
// request to skip the content store. The encoder and decoder must agree.
func TestInterestPolicyNewOnlyRejected(t *testing.T) {
	it := simpleInterest(name.FromStrings("a"))
	it.AnswerOriginKind = AONewOk

	buf := ccnb.NewCharbuf(16)
	err := EncodeInterest(buf, it)
	assert.ErrorIs(t, err, ccnerr.ErrIllegalPolicy)
}

// TestInterestPolicyNewWithContentStoreAccepted confirms the combination
// the stricter reading actually permits.
func TestInterestPolicyNewWithContentStoreAccepted(t *testing.T) {
	it := simpleInterest(name.FromStrings("a"))
	it.AnswerOriginKind = AONewOk | AOFromContentStore

	buf := ccnb.NewCharbuf(16)
	require.NoError(t, EncodeInterest(buf, it))

	r := ccnb.NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(ccnb.DTagInterest)
	require.NoError(t, err)
	require.True(t, ok)
	got, err := DecodeInterest(r, ccnb.NewIndexBuf())
	require.NoError(t, err)
	assert.Equal(t, AONewOk|AOFromContentStore, got.AnswerOriginKind)
}

// TestInterestPolicyNewOnlyRejectedOnDecode confirms a wire message
// carrying the illegal combination is rejected on the receiving side too,
// not just by the local encoder.
func TestInterestPolicyNewOnlyRejectedOnDecode(t *testing.T) {
	it := simpleInterest(name.FromStrings("a"))
	buf := ccnb.NewCharbuf(16)
	ccnb.AppendOpenDTag(buf, ccnb.DTagInterest)
	name.Encode(buf, it.Name)
	ccnb.AppendTaggedNonNegInt(buf, ccnb.DTagAnswerOriginKind, int64(AONewOk))
	ccnb.AppendClose(buf)

	r := ccnb.NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(ccnb.DTagInterest)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = DecodeInterest(r, ccnb.NewIndexBuf())
	assert.ErrorIs(t, err, ccnerr.ErrIllegalPolicy)
}
