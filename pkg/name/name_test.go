package name

import (
	"strings"
	"testing"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalOrderShorterFirst(t *testing.T) {
	a := FromStrings("a")
	b := FromStrings("aa")
	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, a))
}

func TestCanonicalOrderLexicographic(t *testing.T) {
	a := FromStrings("a")
	b := FromStrings("b")
	assert.Negative(t, Compare(a, b))
}

func TestCanonicalOrderTotalAntisymmetricTransitive(t *testing.T) {
	names := []Name{
		FromStrings("a"),
		FromStrings("b"),
		FromStrings("aa"),
		FromStrings("a", "b"),
		FromStrings(),
	}
	for _, x := range names {
		for _, y := range names {
			if Compare(x, y) < 0 {
				assert.Positive(t, Compare(y, x))
			}
		}
	}
}

func TestIsPrefixOf(t *testing.T) {
	p := FromStrings("a", "b")
	full := FromStrings("a", "b", "c")
	assert.True(t, p.IsPrefixOf(full))
	assert.False(t, full.IsPrefixOf(p))
}

func TestWireRoundTrip(t *testing.T) {
	n := FromStrings("test", "data", "object")
	buf := ccnb.NewCharbuf(32)
	Encode(buf, n)

	r := ccnb.NewTokenReader(buf.Bytes())
	ok, err := r.TryDTagOpen(ccnb.DTagName)
	require.NoError(t, err)
	require.True(t, ok)

	comps := ccnb.NewIndexBuf()
	got, err := Decode(r, comps)
	require.NoError(t, err)
	assert.True(t, Equal(n, got))
	require.Equal(t, n.Len()+1, comps.Len())
}

func TestURICanonicalization(t *testing.T) {
	n, err := ParseURI("ccnx:/...//../x")
	require.NoError(t, err)
	assert.Equal(t, 1, n.Len())
	assert.Equal(t, "x", string(n.Component(0)))
	assert.Equal(t, "ccnx:/x", FormatURI(n))
}

func TestURIRoundTrip(t *testing.T) {
	n := New([]byte("weird bytes/\xff"), []byte("..."), []byte("plain"))
	uri := FormatURI(n)
	back, err := ParseURI(uri)
	require.NoError(t, err)
	assert.True(t, Equal(n, back))
}

func TestURIAllDotsComponent(t *testing.T) {
	n := New([]byte(".."))
	uri := FormatURI(n)
	assert.Equal(t, "ccnx:/"+strings.Repeat(".", 5), uri)
	back, err := ParseURI(uri)
	require.NoError(t, err)
	assert.True(t, Equal(n, back))
}
