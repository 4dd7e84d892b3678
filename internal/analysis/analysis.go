// Package analysis runs batch estimation jobs: it reads a tree-list file,
// executes one estimation operation over the batch, writes the result CSV and
// optionally persists the run.
package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/timbermetrics/timbervol-go/internal/conf"
	"github.com/timbermetrics/timbervol-go/internal/datastore"
	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/estimate"
	"github.com/timbermetrics/timbervol-go/internal/inventory"
	"github.com/timbermetrics/timbervol-go/internal/logging"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

func logger() *slog.Logger {
	if l := logging.ForService("analysis"); l != nil {
		return l
	}
	return slog.Default()
}

// NewEstimator builds an estimator from the configured reference data: the
// embedded published tables, or an on-disk override when refdata.path is set.
func NewEstimator(settings *conf.Settings) (*estimate.Estimator, error) {
	var (
		store *refdata.Store
		err   error
	)
	if settings.Refdata.Path != "" {
		store, err = refdata.LoadFrom(settings.Refdata.Path)
	} else {
		store, err = refdata.Load()
	}
	if err != nil {
		return nil, err
	}
	return estimate.New(store), nil
}

func readTreeList(settings *conf.Settings, path string) (*inventory.TreeList, error) {
	return inventory.ReadTreeListFile(path, inventory.Defaults{
		SiteIndex: settings.Estimate.SiteIndex,
		TopDOB:    settings.Estimate.TopDiameter,
		BasalArea: settings.Estimate.BasalArea,
	})
}

// HeightAnalysis estimates usable height for every tree in the list file.
func HeightAnalysis(settings *conf.Settings, path string) error {
	estimator, err := NewEstimator(settings)
	if err != nil {
		return err
	}
	tl, err := readTreeList(settings, path)
	if err != nil {
		return err
	}

	start := time.Now()
	heights, err := estimator.Height(tl.Codes, tl.DBH, tl.SiteIndex, tl.TopDOB, tl.BasalArea)
	if err != nil {
		return err
	}

	if err := writeResults(settings, "height_ft", tl, heights); err != nil {
		return err
	}
	return finishRun(settings, "height", "", tl, heights, time.Since(start))
}

// VolumeAnalysis estimates gross volume for every tree in the list file, in
// the configured units. Heights missing from the input are estimated first.
func VolumeAnalysis(settings *conf.Settings, path string) error {
	volType := refdata.VolumeType(settings.Estimate.VolumeType)
	estimator, err := NewEstimator(settings)
	if err != nil {
		return err
	}
	tl, err := readTreeList(settings, path)
	if err != nil {
		return err
	}

	start := time.Now()
	heights, err := fillHeights(estimator, tl)
	if err != nil {
		return err
	}
	volumes, err := estimator.Volume(tl.Codes, tl.DBH, heights, volType)
	if err != nil {
		return err
	}

	column := "volume_cuft"
	if volType == refdata.BoardFeet {
		column = "volume_bdft"
	}
	if err := writeResults(settings, column, tl, volumes); err != nil {
		return err
	}
	return finishRun(settings, "volume", string(volType), tl, volumes, time.Since(start))
}

// BiomassAnalysis estimates total green biomass for every tree in the list
// file. With components set the per-tree pipeline breakdown is written
// instead of totals only.
func BiomassAnalysis(settings *conf.Settings, path string, components bool) error {
	estimator, err := NewEstimator(settings)
	if err != nil {
		return err
	}
	tl, err := readTreeList(settings, path)
	if err != nil {
		return err
	}

	start := time.Now()
	breakdown, err := estimator.BiomassComponents(tl.Codes, tl.DBH, tl.SiteIndex, tl.BasalArea)
	if err != nil {
		return err
	}
	totals := make([]float64, len(breakdown))
	for i := range breakdown {
		totals[i] = breakdown[i].TotalTons
	}

	if components {
		if err := writeComponentResults(settings, tl, breakdown); err != nil {
			return err
		}
	} else if err := writeResults(settings, "biomass_tons", tl, totals); err != nil {
		return err
	}
	return finishRun(settings, "biomass", "", tl, totals, time.Since(start))
}

// fillHeights returns the tree-list heights with zero entries (no height
// column, or an empty field) replaced by estimated values.
func fillHeights(estimator *estimate.Estimator, tl *inventory.TreeList) ([]float64, error) {
	needed := false
	for _, h := range tl.Height {
		if h <= 0 {
			needed = true
			break
		}
	}
	if !needed {
		return tl.Height, nil
	}

	estimated, err := estimator.Height(tl.Codes, tl.DBH, tl.SiteIndex, tl.TopDOB, tl.BasalArea)
	if err != nil {
		return nil, err
	}
	heights := make([]float64, tl.Len())
	for i := range heights {
		if tl.Height[i] > 0 {
			heights[i] = tl.Height[i]
		} else {
			heights[i] = estimated[i]
		}
	}
	return heights, nil
}

func writeResults(settings *conf.Settings, column string, tl *inventory.TreeList, values []float64) error {
	rows := make([][]string, tl.Len())
	for i := range rows {
		rows[i] = []string{
			strconv.Itoa(tl.Codes[i]),
			inventory.FormatValue(tl.DBH[i]),
			inventory.FormatValue(values[i]),
		}
	}
	header := []string{"species_code", "dbh", column}

	if err := writeCSV(settings, header, rows); err != nil {
		return err
	}
	if settings.Output.Summary {
		fmt.Println(inventory.Summarize(values).String())
	}
	return nil
}

func writeComponentResults(settings *conf.Settings, tl *inventory.TreeList, breakdown []estimate.BiomassComponents) error {
	header := []string{
		"species_code", "dbh", "height_ft", "gross_volume_cuft", "stump_volume_cuft",
		"bark_factor", "bark_weight_lbs", "bole_tons", "top_tons", "total_tons", "small_tree",
	}
	rows := make([][]string, len(breakdown))
	for i, c := range breakdown {
		rows[i] = []string{
			strconv.Itoa(tl.Codes[i]),
			inventory.FormatValue(tl.DBH[i]),
			inventory.FormatValue(c.Height),
			inventory.FormatValue(c.GrossVolume),
			inventory.FormatValue(c.StumpVolume),
			inventory.FormatValue(c.BarkFactor),
			inventory.FormatValue(c.BarkWeight),
			inventory.FormatValue(c.BoleTons),
			inventory.FormatValue(c.TopTons),
			inventory.FormatValue(c.TotalTons),
			strconv.FormatBool(c.SmallTree),
		}
	}
	return writeCSV(settings, header, rows)
}

func writeCSV(settings *conf.Settings, header []string, rows [][]string) error {
	var out io.Writer = os.Stdout
	if settings.Output.Path != "" {
		f, err := os.Create(settings.Output.Path)
		if err != nil {
			return errors.New(fmt.Errorf("creating output file: %w", err)).
				Component("analysis").
				Category(errors.CategoryFileIO).
				Context("path", settings.Output.Path).
				Build()
		}
		defer f.Close()
		out = f
	}
	return inventory.WriteResultCSV(out, header, rows)
}

// finishRun logs the batch outcome and persists the run when the datastore
// is enabled.
func finishRun(settings *conf.Settings, operation, volumeType string, tl *inventory.TreeList, values []float64, duration time.Duration) error {
	log := logger()
	summary := inventory.Summarize(values)
	log.Info("batch complete",
		"operation", operation,
		"trees", tl.Len(),
		"missing", summary.Missing,
		"duration_ms", duration.Milliseconds())

	if !settings.Datastore.Enabled {
		return nil
	}

	store, err := datastore.Open(settings.Datastore.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveRun(operation, volumeType, tl.Codes, tl.DBH, values, duration)
	if err != nil {
		return err
	}
	log.Info("run saved", "run_id", id, "path", settings.Datastore.Path)
	return nil
}
