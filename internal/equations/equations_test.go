package equations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

// Published Hard maple rows; the expected values below are the worked
// example for a 12-inch sugar maple on site index 65 with 88 sq ft of
// basal area.
var (
	hardMapleHeight = refdata.HeightCoefficients{
		B1: 5.56652, B2: 0.1801, B3: 1.0402, B4: 0.5221, B5: 0.2481, B6: 0.0316,
	}
	hardMapleCubic = refdata.VolumeCoefficients{B0: 0.1317, B1: 0.002378}
	hardMapleBoard = refdata.VolumeCoefficients{B0: 6.3176, B1: 0.014705}
	hardMapleBio   = refdata.BiomassCoefficients{
		StumpCoefficient: 0.008894, BarkB0: 98.29, BarkB1: -0.1025, Density: 56.0,
	}
)

func TestHeightWorkedExample(t *testing.T) {
	t.Parallel()

	h := Height(hardMapleHeight, 12, 65, 4, 88)
	assert.InDelta(t, 49.6419, h, 1e-4)

	// board-foot merchantable limit
	h9 := Height(hardMapleHeight, 12, 65, 9, 88)
	assert.InDelta(t, 39.8916, h9, 1e-4)
}

func TestHeightTaperTermAtEqualDiameters(t *testing.T) {
	t.Parallel()

	// top DOB equal to DBH leaves a tiny positive taper term, so the model
	// stays defined at the boundary
	h := Height(hardMapleHeight, 12, 65, 12, 88)
	assert.False(t, math.IsNaN(h))
	assert.Greater(t, h, BreastHeight)
	assert.Less(t, h, 10.0)
}

func TestHeightUndefinedAboveDBH(t *testing.T) {
	t.Parallel()

	// d > D makes the taper base negative; with a fractional exponent the
	// result is NaN, which callers must reject before evaluation
	h := Height(hardMapleHeight, 12, 65, 14, 88)
	assert.True(t, math.IsNaN(h))
}

func TestVolumeWorkedExample(t *testing.T) {
	t.Parallel()

	v := Volume(hardMapleCubic, 12, 49.641905)
	assert.InDelta(t, 17.1307, v, 1e-4)

	bd := Volume(hardMapleBoard, 12, 39.891562)
	assert.InDelta(t, 90.7888, bd, 1e-4)
}

func TestStumpAndBarkWorkedExample(t *testing.T) {
	t.Parallel()

	stump := StumpVolume(hardMapleBio.StumpCoefficient, 12)
	assert.InDelta(t, 1.280736, stump, 1e-6)

	factor := BarkCorrectionFactor(hardMapleBio.BarkB0, hardMapleBio.BarkB1, 12)
	assert.InDelta(t, 0.9706, factor, 1e-6)

	bark := BarkWeight(17.130677, stump, factor)
	assert.InDelta(t, 132.1571, bark, 1e-3)
}

func TestWeightWorkedExample(t *testing.T) {
	t.Parallel()

	const (
		gross = 17.130677
		stump = 1.280736
		bark  = 132.157122
	)

	bole := BoleWeight(bark, gross, stump, hardMapleBio.Density)
	assert.InDelta(t, 0.581598, bole, 1e-5)

	top := TopWeight(bark, gross, hardMapleBio.Density)
	assert.InDelta(t, 0.248038, top, 1e-5)

	assert.InDelta(t, 0.829636, bole+top, 1e-5)
}

func TestSmallTreeBiomass(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.05699241, SmallTreeBiomass(4), 1e-7)
	assert.InDelta(t, 0.03312031, SmallTreeBiomass(3.2), 1e-7)
	assert.Zero(t, SmallTreeBiomass(0))
}
