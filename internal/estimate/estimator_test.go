package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
	"github.com/timbermetrics/timbervol-go/internal/species"
)

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	store, err := refdata.Load()
	require.NoError(t, err)
	return New(store)
}

func TestHeightSugarMaple(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	heights, err := e.Height([]int{318}, []float64{12}, []float64{65}, []float64{4}, []float64{88})
	require.NoError(t, err)
	require.Len(t, heights, 1)
	assert.InDelta(t, 49.6419, heights[0], 1e-4)
}

func TestHeightFallbackSpecies(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	// Scotch pine resolves to Other softwoods via major group 1
	heights, err := e.Height([]int{130}, []float64{9}, []float64{55}, []float64{4}, []float64{70})
	require.NoError(t, err)
	assert.InDelta(t, 56.2523, heights[0], 1e-4)
}

func TestHeightBroadcastsStandValues(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	heights, err := e.Height(
		[]int{318, 318},
		[]float64{12, 12},
		[]float64{65}, // broadcast
		[]float64{4},  // broadcast
		[]float64{88}, // broadcast
	)
	require.NoError(t, err)
	require.Len(t, heights, 2)
	assert.Equal(t, heights[0], heights[1])
	assert.InDelta(t, 49.6419, heights[0], 1e-4)
}

func TestHeightRejectsInvalidInputs(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	tests := []struct {
		name string
		call func() ([]float64, error)
	}{
		{"mismatched dbh length", func() ([]float64, error) {
			return e.Height([]int{318, 318}, []float64{12}, []float64{65}, []float64{4}, []float64{88})
		}},
		{"bad broadcast length", func() ([]float64, error) {
			return e.Height([]int{318, 318, 318}, []float64{12, 12, 12}, []float64{65, 65}, []float64{4}, []float64{88})
		}},
		{"zero dbh", func() ([]float64, error) {
			return e.Height([]int{318}, []float64{0}, []float64{65}, []float64{4}, []float64{88})
		}},
		{"negative site index", func() ([]float64, error) {
			return e.Height([]int{318}, []float64{12}, []float64{-65}, []float64{4}, []float64{88})
		}},
		{"zero basal area", func() ([]float64, error) {
			return e.Height([]int{318}, []float64{12}, []float64{65}, []float64{4}, []float64{0})
		}},
		{"top dob above dbh", func() ([]float64, error) {
			return e.Height([]int{318}, []float64{12}, []float64{65}, []float64{14}, []float64{88})
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := tt.call()
			assert.Nil(t, result)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
		})
	}
}

func TestVolumeSugarMaple(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	cubic, err := e.Volume([]int{318}, []float64{12}, []float64{49.641905}, refdata.CubicFeet)
	require.NoError(t, err)
	assert.InDelta(t, 17.1307, cubic[0], 1e-4)

	board, err := e.Volume([]int{318}, []float64{12}, []float64{39.891562}, refdata.BoardFeet)
	require.NoError(t, err)
	assert.InDelta(t, 90.7888, board[0], 1e-4)
}

func TestVolumeSmallStemsAreMissing(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	volumes, err := e.Volume(
		[]int{318, 746, 105},
		[]float64{12, 4.9, 3},
		[]float64{50, 40, 30},
		refdata.CubicFeet,
	)
	require.NoError(t, err)
	require.Len(t, volumes, 3)
	assert.False(t, IsMissing(volumes[0]))
	assert.True(t, IsMissing(volumes[1]))
	assert.True(t, IsMissing(volumes[2]))
}

func TestVolumeRejectsUnknownType(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	_, err := e.Volume([]int{318}, []float64{12}, []float64{50}, refdata.VolumeType("cords"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBiomassComponentsSugarMaple(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	components, err := e.BiomassComponents([]int{318}, []float64{12}, []float64{65}, []float64{88})
	require.NoError(t, err)
	require.Len(t, components, 1)

	c := components[0]
	assert.False(t, c.SmallTree)
	assert.InDelta(t, 49.6419, c.Height, 1e-4)
	assert.InDelta(t, 17.1307, c.GrossVolume, 1e-4)
	assert.InDelta(t, 1.2807, c.StumpVolume, 1e-4)
	assert.InDelta(t, 0.9706, c.BarkFactor, 1e-4)
	assert.InDelta(t, 132.157, c.BarkWeight, 1e-3)
	assert.InDelta(t, 0.5816, c.BoleTons, 1e-4)
	assert.InDelta(t, 0.2480, c.TopTons, 1e-4)
	assert.InDelta(t, 0.8296, c.TotalTons, 1e-4)
}

func TestBiomassFallbackPipeline(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	// Scotch pine through the Other softwoods row
	totals, err := e.Biomass([]int{130}, []float64{9}, []float64{55}, []float64{70})
	require.NoError(t, err)
	assert.InDelta(t, 0.396075, totals[0], 1e-5)
}

func TestBiomassQuakingAspen(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	components, err := e.BiomassComponents([]int{746}, []float64{7}, []float64{62}, []float64{95})
	require.NoError(t, err)
	c := components[0]
	assert.InDelta(t, 39.2384, c.Height, 1e-4)
	assert.InDelta(t, 4.5138, c.GrossVolume, 1e-4)
	assert.InDelta(t, 0.233328, c.TotalTons, 1e-5)
}

func TestBiomassSmallTreeOverride(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	// The override is species independent: two different species, same dbh,
	// same result.
	totals, err := e.Biomass([]int{318, 105}, []float64{4, 4}, []float64{65, 40}, []float64{88, 120})
	require.NoError(t, err)
	assert.InDelta(t, 0.05699241, totals[0], 1e-7)
	assert.Equal(t, totals[0], totals[1])
}

func TestBiomassSmallStemsSkipChainValidation(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	// Site index and basal area feed only the height chain, which small
	// stems never enter.
	components, err := e.BiomassComponents([]int{746}, []float64{3.2}, []float64{0}, []float64{0})
	require.NoError(t, err)
	c := components[0]
	assert.True(t, c.SmallTree)
	assert.Zero(t, c.Height)
	assert.Zero(t, c.BoleTons)
	assert.InDelta(t, 0.03312031, c.TotalTons, 1e-7)
}

func TestBiomassMixedBatch(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	totals, err := e.Biomass(
		[]int{318, 746},
		[]float64{12, 4},
		[]float64{65}, // broadcast
		[]float64{88}, // broadcast
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.8296, totals[0], 1e-4)
	assert.InDelta(t, 0.05699241, totals[1], 1e-7)
}

func TestUnresolvedSpeciesAbortsBatch(t *testing.T) {
	t.Parallel()
	e := newTestEstimator(t)

	heights, err := e.Height(
		[]int{318, 9999, 746},
		[]float64{12, 10, 8},
		[]float64{65}, []float64{4}, []float64{88},
	)
	assert.Nil(t, heights)

	var unresolved *species.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []int{9999}, unresolved.Codes)
	assert.True(t, errors.IsCategory(err, errors.CategorySpeciesResolution))

	// same semantics for the other operations
	_, err = e.Volume([]int{9999}, []float64{12}, []float64{50}, refdata.CubicFeet)
	require.ErrorAs(t, err, &unresolved)

	_, err = e.Biomass([]int{9999}, []float64{12}, []float64{65}, []float64{88})
	require.ErrorAs(t, err, &unresolved)
}
