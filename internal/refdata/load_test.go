package refdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timbermetrics/timbervol-go/internal/errors"
)

func TestLoadEmbeddedTables(t *testing.T) {
	t.Parallel()

	store, err := Load()
	require.NoError(t, err)

	groups := store.Groups()
	assert.Len(t, groups, 36)
	assert.Contains(t, groups, SpeciesGroup("Hard maple"))
	assert.Contains(t, groups, GroupOtherSoftwoods)
	assert.Contains(t, groups, GroupOtherHardwoods)
	assert.Contains(t, groups, SpeciesGroup("Noncommercial spp."))

	// sugar maple
	info, ok := store.Species(318)
	require.True(t, ok)
	assert.Equal(t, "Acer saccharum", info.ScientificName)
	assert.Equal(t, MajorGroupHardHardwood, info.MajorGroup)
	assert.False(t, info.Softwood())

	group, ok := store.DirectGroup(318)
	require.True(t, ok)
	assert.Equal(t, SpeciesGroup("Hard maple"), group)

	// Scotch pine has a reference row but no direct group mapping
	info, ok = store.Species(130)
	require.True(t, ok)
	assert.True(t, info.Softwood())
	_, ok = store.DirectGroup(130)
	assert.False(t, ok)
}

func TestLoadHardMapleCoefficients(t *testing.T) {
	t.Parallel()

	store, err := Load()
	require.NoError(t, err)

	h, err := store.Height("Hard maple")
	require.NoError(t, err)
	assert.InDelta(t, 5.56652, h.B1, 1e-9)
	assert.InDelta(t, 0.1801, h.B2, 1e-9)
	assert.InDelta(t, 5.62, h.StdError, 1e-9)

	cu, err := store.Volume("Hard maple", CubicFeet)
	require.NoError(t, err)
	assert.InDelta(t, 0.1317, cu.B0, 1e-9)
	assert.InDelta(t, 0.002378, cu.B1, 1e-9)
	assert.Equal(t, 412, cu.SampleSize)

	bd, err := store.Volume("Hard maple", BoardFeet)
	require.NoError(t, err)
	assert.InDelta(t, 0.014705, bd.B1, 1e-9)

	bm, err := store.Biomass("Hard maple")
	require.NoError(t, err)
	assert.InDelta(t, 0.008894, bm.StumpCoefficient, 1e-9)
	assert.InDelta(t, 98.29, bm.BarkB0, 1e-9)
	assert.InDelta(t, -0.1025, bm.BarkB1, 1e-9)
	assert.InDelta(t, 56.0, bm.Density, 1e-9)
}

func TestMissingCoefficientLookups(t *testing.T) {
	t.Parallel()

	store, err := Load()
	require.NoError(t, err)

	_, err = store.Height("No such group")
	var missing *MissingCoefficientError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, TableHeight, missing.Table)
	assert.True(t, errors.IsCategory(err, errors.CategoryReferenceData))

	_, err = store.Volume("No such group", BoardFeet)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, TableBoardVolume, missing.Table)

	_, err = store.Volume("Hard maple", VolumeType("cords"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestLoadFromRejectsBrokenCoverage(t *testing.T) {
	t.Parallel()

	// Copy the embedded tables to disk, then drop one group from the
	// biomass table to violate the coverage invariant.
	dir := t.TempDir()
	files := []string{speciesFile, speciesGroupsFile, heightFile, cubicVolumeFile, boardVolumeFile, biomassFile}
	for _, name := range files {
		data, err := embeddedTables.ReadFile("data/" + name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	data, err := os.ReadFile(filepath.Join(dir, biomassFile))
	require.NoError(t, err)
	var kept []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if strings.HasPrefix(line, "Hard maple,") {
			continue
		}
		kept = append(kept, line)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, biomassFile), []byte(strings.Join(kept, "\n")+"\n"), 0o644))

	_, err = LoadFrom(dir)
	require.Error(t, err)
	var missing *MissingCoefficientError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, SpeciesGroup("Hard maple"), missing.Group)
	assert.Equal(t, TableBiomass, missing.Table)
}

func TestLoadFromMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}
