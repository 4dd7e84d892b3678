package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	store, err := refdata.Load()
	require.NoError(t, err)
	return NewResolver(store)
}

func TestResolveDirectMatch(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	tests := []struct {
		code  int
		group refdata.SpeciesGroup
	}{
		{318, "Hard maple"},    // sugar maple
		{316, "Soft maple"},    // red maple
		{105, "Jack pine"},     // jack pine
		{833, "Select red oaks"},
		{701, "Noncommercial spp."}, // eastern hophornbeam
	}
	for _, tt := range tests {
		res := r.Resolve(tt.code)
		assert.Equal(t, MatchedDirect, res.Kind, "code %d", tt.code)
		assert.Equal(t, tt.group, res.Group, "code %d", tt.code)
	}
}

func TestResolveIsStable(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	first := r.Resolve(318)
	second := r.Resolve(318)
	assert.Equal(t, first, second)
}

func TestResolveMajorGroupFallback(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	// Scotch pine: reference row with major group 1, no direct mapping
	res := r.Resolve(130)
	assert.Equal(t, FallbackSoftwood, res.Kind)
	assert.Equal(t, refdata.GroupOtherSoftwoods, res.Group)

	// Norway spruce: major group 2
	res = r.Resolve(91)
	assert.Equal(t, FallbackSoftwood, res.Kind)
	assert.Equal(t, refdata.GroupOtherSoftwoods, res.Group)

	// chokecherry: major group 3
	res = r.Resolve(763)
	assert.Equal(t, FallbackHardwood, res.Kind)
	assert.Equal(t, refdata.GroupOtherHardwoods, res.Group)

	// red mulberry: major group 4
	res = r.Resolve(682)
	assert.Equal(t, FallbackHardwood, res.Kind)
	assert.Equal(t, refdata.GroupOtherHardwoods, res.Group)
}

func TestResolveUnknownCode(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	res := r.Resolve(9999)
	assert.Equal(t, Unresolved, res.Kind)
	assert.Empty(t, res.Group)
}

func TestResolveAllPreservesOrder(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	groups, err := r.ResolveAll([]int{318, 130, 746})
	require.NoError(t, err)
	assert.Equal(t, []refdata.SpeciesGroup{"Hard maple", "Other softwoods", "Quaking aspen"}, groups)
}

func TestResolveAllFailsWholeBatch(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	groups, err := r.ResolveAll([]int{318, 9999, 746, 8888})
	assert.Nil(t, groups)

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []int{9999, 8888}, unresolved.Codes)
	assert.True(t, errors.IsCategory(err, errors.CategorySpeciesResolution))
}

func TestResolutionsReportUnresolvedEntries(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	resolutions := r.Resolutions([]int{318, 9999})
	require.Len(t, resolutions, 2)
	assert.Equal(t, MatchedDirect, resolutions[0].Kind)
	assert.Equal(t, Unresolved, resolutions[1].Kind)
	assert.Equal(t, "unresolved", resolutions[1].Kind.String())
}
