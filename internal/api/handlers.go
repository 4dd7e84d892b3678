package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/estimate"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

// HeightRequest is the batch input for the height operation. SiteIndex,
// TopDOB and StandBasalArea may hold a single value to broadcast across the
// batch.
type HeightRequest struct {
	SpeciesCodes   []int     `json:"species_codes"`
	DBH            []float64 `json:"dbh"`
	SiteIndex      []float64 `json:"site_index"`
	TopDOB         []float64 `json:"top_dob"`
	StandBasalArea []float64 `json:"stand_basal_area"`
}

// HeightResponse carries one height in feet per input tree.
type HeightResponse struct {
	Heights []float64 `json:"heights"`
}

// VolumeRequest is the batch input for the volume operation. Height may hold
// a single value to broadcast.
type VolumeRequest struct {
	SpeciesCodes []int     `json:"species_codes"`
	DBH          []float64 `json:"dbh"`
	Height       []float64 `json:"height"`
	VolType      string    `json:"vol_type"`
}

// VolumeResponse carries one volume per input tree; stems below the
// merchantable diameter limit are null.
type VolumeResponse struct {
	VolType string     `json:"vol_type"`
	Volumes []*float64 `json:"volumes"`
}

// BiomassRequest is the batch input for the biomass operation. Components
// requests the full per-tree breakdown instead of totals only.
type BiomassRequest struct {
	SpeciesCodes   []int     `json:"species_codes"`
	DBH            []float64 `json:"dbh"`
	SiteIndex      []float64 `json:"site_index"`
	StandBasalArea []float64 `json:"stand_basal_area"`
	Components     bool      `json:"components"`
}

// BiomassResponse carries total green tons per input tree, and the component
// breakdown when requested.
type BiomassResponse struct {
	TotalTons  []float64                    `json:"total_tons"`
	Components []estimate.BiomassComponents `json:"components,omitempty"`
}

// EstimateHeight runs the height operation on a JSON batch.
func (c *Controller) EstimateHeight(ctx echo.Context) error {
	var req HeightRequest
	if err := ctx.Bind(&req); err != nil {
		return c.fail(ctx, "height", bindErr(err))
	}

	heights, err := c.estimator.Height(req.SpeciesCodes, req.DBH, req.SiteIndex, req.TopDOB, req.StandBasalArea)
	if err != nil {
		return c.fail(ctx, "height", err)
	}

	c.observeBatch("height", len(heights))
	return ctx.JSON(http.StatusOK, HeightResponse{Heights: heights})
}

// EstimateVolume runs the volume operation on a JSON batch.
func (c *Controller) EstimateVolume(ctx echo.Context) error {
	var req VolumeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.fail(ctx, "volume", bindErr(err))
	}

	volType := refdata.VolumeType(req.VolType)
	volumes, err := c.estimator.Volume(req.SpeciesCodes, req.DBH, req.Height, volType)
	if err != nil {
		return c.fail(ctx, "volume", err)
	}

	out := make([]*float64, len(volumes))
	for i := range volumes {
		if estimate.IsMissing(volumes[i]) {
			continue
		}
		v := volumes[i]
		out[i] = &v
	}

	c.observeBatch("volume", len(volumes))
	return ctx.JSON(http.StatusOK, VolumeResponse{VolType: string(volType), Volumes: out})
}

// EstimateBiomass runs the biomass operation on a JSON batch.
func (c *Controller) EstimateBiomass(ctx echo.Context) error {
	var req BiomassRequest
	if err := ctx.Bind(&req); err != nil {
		return c.fail(ctx, "biomass", bindErr(err))
	}

	components, err := c.estimator.BiomassComponents(req.SpeciesCodes, req.DBH, req.SiteIndex, req.StandBasalArea)
	if err != nil {
		return c.fail(ctx, "biomass", err)
	}

	resp := BiomassResponse{TotalTons: make([]float64, len(components))}
	for i := range components {
		resp.TotalTons[i] = components[i].TotalTons
	}
	if req.Components {
		resp.Components = components
	}

	c.observeBatch("biomass", len(components))
	return ctx.JSON(http.StatusOK, resp)
}

// GroupInfo describes one species group and its coefficient coverage.
type GroupInfo struct {
	Group   string `json:"group"`
	Height  bool   `json:"height"`
	Cubic   bool   `json:"cubic"`
	Board   bool   `json:"board"`
	Biomass bool   `json:"biomass"`
}

// SpeciesGroups lists every species group in the reference data with its
// per-table coefficient coverage.
func (c *Controller) SpeciesGroups(ctx echo.Context) error {
	store := c.estimator.Store()
	groups := store.Groups()

	out := make([]GroupInfo, 0, len(groups))
	for _, group := range groups {
		_, heightErr := store.Height(group)
		_, cubicErr := store.Volume(group, refdata.CubicFeet)
		_, boardErr := store.Volume(group, refdata.BoardFeet)
		_, biomassErr := store.Biomass(group)
		out = append(out, GroupInfo{
			Group:   string(group),
			Height:  heightErr == nil,
			Cubic:   cubicErr == nil,
			Board:   boardErr == nil,
			Biomass: biomassErr == nil,
		})
	}
	return ctx.JSON(http.StatusOK, out)
}

// ResolvedSpecies reports how one species code classified.
type ResolvedSpecies struct {
	Code  int    `json:"code"`
	Group string `json:"group,omitempty"`
	Kind  string `json:"kind"`
}

// ResolveSpecies classifies the comma-separated codes query parameter and
// reports the per-code outcome, including unresolved entries.
func (c *Controller) ResolveSpecies(ctx echo.Context) error {
	raw := ctx.QueryParam("codes")
	if raw == "" {
		return c.fail(ctx, "resolve", validationErr("codes query parameter is required"))
	}

	parts := strings.Split(raw, ",")
	codes := make([]int, 0, len(parts))
	for _, part := range parts {
		code, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return c.fail(ctx, "resolve", validationErr("invalid species code %q", part))
		}
		codes = append(codes, code)
	}

	resolutions := c.estimator.Resolver().Resolutions(codes)
	out := make([]ResolvedSpecies, len(resolutions))
	for i, res := range resolutions {
		out[i] = ResolvedSpecies{
			Code:  res.Code,
			Group: string(res.Group),
			Kind:  res.Kind.String(),
		}
	}
	return ctx.JSON(http.StatusOK, out)
}

func bindErr(err error) error {
	return errors.New(err).
		Component("api").
		Category(errors.CategoryValidation).
		Build()
}

func validationErr(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("api").
		Category(errors.CategoryValidation).
		Build()
}
