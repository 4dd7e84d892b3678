// Package estimate composes the species resolver and the equation evaluators
// into the batch estimation operations. All operations are pure: they take
// parallel slices of per-tree inputs and return a result slice of equal
// length in the same order, or an error covering the whole batch.
package estimate

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/timbermetrics/timbervol-go/internal/equations"
	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/logging"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
	"github.com/timbermetrics/timbervol-go/internal/species"
)

// ErrInvalidParameter is wrapped by every structural input validation error.
var ErrInvalidParameter = errors.NewStd("invalid parameter")

// BiomassTopDOB is the fixed merchantable top used by the biomass pipeline,
// inches.
const BiomassTopDOB = 4.0

// Missing returns the sentinel used for undefined volume results, one per
// stem below the merchantable diameter limit.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether a result value is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// BiomassComponents is the per-tree breakdown of the biomass pipeline. For
// small stems (DBH below the merchantable limit) the chain fields are zero,
// SmallTree is set, and TotalTons carries the small-tree model output.
type BiomassComponents struct {
	Height      float64 `json:"height"`
	GrossVolume float64 `json:"gross_volume"`
	StumpVolume float64 `json:"stump_volume"`
	BarkFactor  float64 `json:"bark_factor"`
	BarkWeight  float64 `json:"bark_weight"`
	BoleTons    float64 `json:"bole_tons"`
	TopTons     float64 `json:"top_tons"`
	TotalTons   float64 `json:"total_tons"`
	SmallTree   bool    `json:"small_tree"`
}

// Estimator runs the estimation operations against one reference data store.
// It is safe for concurrent use.
type Estimator struct {
	store    *refdata.Store
	resolver *species.Resolver
	logger   *slog.Logger
}

// New returns an estimator backed by store.
func New(store *refdata.Store) *Estimator {
	logger := logging.ForService("estimate")
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{
		store:    store,
		resolver: species.NewResolver(store),
		logger:   logger,
	}
}

// Resolver exposes the estimator's species resolver for diagnostics.
func (e *Estimator) Resolver() *species.Resolver {
	return e.resolver
}

// Store exposes the backing reference data store.
func (e *Estimator) Store() *refdata.Store {
	return e.store
}

// Height estimates usable height in feet for each tree, to the given top
// diameter. siteIndex, topDOB and basalArea may be length 1 to broadcast a
// stand-level value across the batch.
func (e *Estimator) Height(codes []int, dbh, siteIndex, topDOB, basalArea []float64) ([]float64, error) {
	start := time.Now()
	n := len(codes)
	if err := sameLength("dbh", len(dbh), n); err != nil {
		return nil, err
	}
	siteIndex, err := broadcast("site_index", siteIndex, n)
	if err != nil {
		return nil, err
	}
	topDOB, err = broadcast("top_dob", topDOB, n)
	if err != nil {
		return nil, err
	}
	basalArea, err = broadcast("stand_basal_area", basalArea, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := validateHeightInputs(i, dbh[i], siteIndex[i], topDOB[i], basalArea[i]); err != nil {
			return nil, err
		}
	}

	groups, err := e.resolveBatch(codes)
	if err != nil {
		return nil, err
	}

	heights := make([]float64, n)
	for i, group := range groups {
		c, err := e.store.Height(group)
		if err != nil {
			return nil, e.coefficientErr(err, codes[i])
		}
		heights[i] = equations.Height(c, dbh[i], siteIndex[i], topDOB[i], basalArea[i])
	}

	e.logger.Debug("height batch complete", "trees", n, "duration_ms", time.Since(start).Milliseconds())
	return heights, nil
}

// Volume estimates gross volume for each tree in the units selected by
// volType. Stems below the merchantable diameter limit yield the missing
// sentinel; see IsMissing. height may be length 1 to broadcast.
func (e *Estimator) Volume(codes []int, dbh, height []float64, volType refdata.VolumeType) ([]float64, error) {
	start := time.Now()
	n := len(codes)
	if !volType.Valid() {
		return nil, invalidParam("vol_type must be %q or %q, got %q",
			refdata.CubicFeet, refdata.BoardFeet, volType)
	}
	if err := sameLength("dbh", len(dbh), n); err != nil {
		return nil, err
	}
	height, err := broadcast("height", height, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if dbh[i] <= 0 {
			return nil, invalidParam("dbh must be positive, got %v at row %d", dbh[i], i)
		}
		if height[i] <= 0 {
			return nil, invalidParam("height must be positive, got %v at row %d", height[i], i)
		}
	}

	groups, err := e.resolveBatch(codes)
	if err != nil {
		return nil, err
	}

	volumes := make([]float64, n)
	for i, group := range groups {
		c, err := e.store.Volume(group, volType)
		if err != nil {
			return nil, e.coefficientErr(err, codes[i])
		}
		volumes[i] = equations.Volume(c, dbh[i], height[i])
	}
	// Below the merchantable limit the table would produce a spurious value,
	// so those entries are defined as missing after evaluation.
	for i := range volumes {
		if dbh[i] < equations.MinMerchantableDBH {
			volumes[i] = Missing()
		}
	}

	e.logger.Debug("volume batch complete", "trees", n, "vol_type", string(volType),
		"duration_ms", time.Since(start).Milliseconds())
	return volumes, nil
}

// Biomass estimates total green biomass in tons for each tree: bole plus top
// weight from the height/volume/stump/bark chain to a 4-inch top, or the
// species-independent small-tree model below the merchantable limit.
func (e *Estimator) Biomass(codes []int, dbh, siteIndex, basalArea []float64) ([]float64, error) {
	components, err := e.BiomassComponents(codes, dbh, siteIndex, basalArea)
	if err != nil {
		return nil, err
	}
	totals := make([]float64, len(components))
	for i := range components {
		totals[i] = components[i].TotalTons
	}
	return totals, nil
}

// BiomassComponents runs the biomass pipeline and returns the per-tree
// breakdown. siteIndex and basalArea may be length 1 to broadcast; they are
// only required to be positive for stems the full chain applies to.
func (e *Estimator) BiomassComponents(codes []int, dbh, siteIndex, basalArea []float64) ([]BiomassComponents, error) {
	start := time.Now()
	n := len(codes)
	if err := sameLength("dbh", len(dbh), n); err != nil {
		return nil, err
	}
	siteIndex, err := broadcast("site_index", siteIndex, n)
	if err != nil {
		return nil, err
	}
	basalArea, err = broadcast("stand_basal_area", basalArea, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if dbh[i] <= 0 {
			return nil, invalidParam("dbh must be positive, got %v at row %d", dbh[i], i)
		}
		if dbh[i] >= equations.MinMerchantableDBH {
			if err := validateHeightInputs(i, dbh[i], siteIndex[i], BiomassTopDOB, basalArea[i]); err != nil {
				return nil, err
			}
		}
	}

	groups, err := e.resolveBatch(codes)
	if err != nil {
		return nil, err
	}

	components := make([]BiomassComponents, n)
	smallStems := 0
	for i, group := range groups {
		// The chain is undefined below the merchantable limit; the
		// small-tree model replaces it entirely.
		if dbh[i] < equations.MinMerchantableDBH {
			components[i] = BiomassComponents{
				TotalTons: equations.SmallTreeBiomass(dbh[i]),
				SmallTree: true,
			}
			smallStems++
			continue
		}

		hc, err := e.store.Height(group)
		if err != nil {
			return nil, e.coefficientErr(err, codes[i])
		}
		vc, err := e.store.Volume(group, refdata.CubicFeet)
		if err != nil {
			return nil, e.coefficientErr(err, codes[i])
		}
		bc, err := e.store.Biomass(group)
		if err != nil {
			return nil, e.coefficientErr(err, codes[i])
		}

		height := equations.Height(hc, dbh[i], siteIndex[i], BiomassTopDOB, basalArea[i])
		gross := equations.Volume(vc, dbh[i], height)
		stump := equations.StumpVolume(bc.StumpCoefficient, dbh[i])
		factor := equations.BarkCorrectionFactor(bc.BarkB0, bc.BarkB1, dbh[i])
		bark := equations.BarkWeight(gross, stump, factor)
		bole := equations.BoleWeight(bark, gross, stump, bc.Density)
		top := equations.TopWeight(bark, gross, bc.Density)

		components[i] = BiomassComponents{
			Height:      height,
			GrossVolume: gross,
			StumpVolume: stump,
			BarkFactor:  factor,
			BarkWeight:  bark,
			BoleTons:    bole,
			TopTons:     top,
			TotalTons:   bole + top,
		}
	}

	e.logger.Debug("biomass batch complete", "trees", n, "small_stems", smallStems,
		"duration_ms", time.Since(start).Milliseconds())
	return components, nil
}

// resolveBatch resolves every code or fails the batch with an enumerating
// error; mixing valid and silently-dropped estimates in one output would be
// worse than failing fast.
func (e *Estimator) resolveBatch(codes []int) ([]refdata.SpeciesGroup, error) {
	groups, err := e.resolver.ResolveAll(codes)
	if err != nil {
		return nil, errors.New(err).
			Component("estimate").
			Category(errors.CategorySpeciesResolution).
			Context("batch_size", len(codes)).
			Build()
	}
	return groups, nil
}

func (e *Estimator) coefficientErr(err error, code int) error {
	return errors.New(err).
		Component("estimate").
		Category(errors.CategoryReferenceData).
		Context("species_code", code).
		Build()
}

func validateHeightInputs(row int, dbh, siteIndex, topDOB, basalArea float64) error {
	switch {
	case dbh <= 0:
		return invalidParam("dbh must be positive, got %v at row %d", dbh, row)
	case siteIndex <= 0:
		return invalidParam("site_index must be positive, got %v at row %d", siteIndex, row)
	case basalArea <= 0:
		return invalidParam("stand_basal_area must be positive, got %v at row %d", basalArea, row)
	case topDOB < 0:
		return invalidParam("top_dob must not be negative, got %v at row %d", topDOB, row)
	case topDOB > dbh:
		// Undefined by the publication; rejected rather than clamped so bad
		// measurements surface instead of shifting the model silently.
		return invalidParam("top_dob %v exceeds dbh %v at row %d", topDOB, dbh, row)
	}
	return nil
}

// broadcast expands a length-1 slice across the batch, or verifies the
// slice already matches the batch length.
func broadcast(name string, values []float64, n int) ([]float64, error) {
	switch len(values) {
	case n:
		return values, nil
	case 1:
		expanded := make([]float64, n)
		for i := range expanded {
			expanded[i] = values[0]
		}
		return expanded, nil
	default:
		return nil, invalidParam("%s has length %d, want %d or 1", name, len(values), n)
	}
}

func sameLength(name string, got, want int) error {
	if got != want {
		return invalidParam("%s has length %d, want %d", name, got, want)
	}
	return nil
}

func invalidParam(format string, args ...any) error {
	return errors.New(fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))).
		Component("estimate").
		Category(errors.CategoryValidation).
		Build()
}
