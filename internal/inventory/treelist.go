// Package inventory reads tree-list CSV files into the columnar batches the
// estimator consumes, writes result CSVs, and summarizes result batches.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/timbermetrics/timbervol-go/internal/errors"
)

// Defaults supplies stand-level values for columns an input file omits.
type Defaults struct {
	SiteIndex float64
	TopDOB    float64
	BasalArea float64
}

// TreeList is a columnar batch of tree observations. Slices are parallel;
// optional columns are nil when the input had no such column and no default
// was configured.
type TreeList struct {
	Codes     []int
	DBH       []float64
	SiteIndex []float64
	TopDOB    []float64
	BasalArea []float64
	Height    []float64
}

// Len returns the number of trees in the list.
func (tl *TreeList) Len() int {
	return len(tl.Codes)
}

// Recognized tree-list column names. species_code and dbh are required.
const (
	colSpeciesCode = "species_code"
	colDBH         = "dbh"
	colSiteIndex   = "site_index"
	colTopDOB      = "top_dob"
	colBasalArea   = "basal_area"
	colHeight      = "height"
)

// ReadTreeListFile opens and parses a tree-list CSV file.
func ReadTreeListFile(path string, defaults Defaults) (*TreeList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("opening tree list: %w", err)).
			Component("inventory").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()
	return ReadTreeList(f, defaults)
}

// ReadTreeList parses a tree-list CSV. The header row names the columns;
// species_code and dbh are required, the rest are optional and fall back to
// the configured defaults when the column is absent or a field is empty.
func ReadTreeList(r io.Reader, defaults Defaults) (*TreeList, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, parseFailure(fmt.Errorf("reading header: %w", err))
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns[colSpeciesCode]; !ok {
		return nil, parseFailure(fmt.Errorf("tree list is missing the %s column", colSpeciesCode))
	}
	if _, ok := columns[colDBH]; !ok {
		return nil, parseFailure(fmt.Errorf("tree list is missing the %s column", colDBH))
	}

	tl := &TreeList{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, parseFailure(fmt.Errorf("line %d: %w", line, err))
		}

		code, err := strconv.Atoi(strings.TrimSpace(record[columns[colSpeciesCode]]))
		if err != nil {
			return nil, parseFailure(fmt.Errorf("line %d: species_code: %w", line, err))
		}
		dbh, err := strconv.ParseFloat(strings.TrimSpace(record[columns[colDBH]]), 64)
		if err != nil {
			return nil, parseFailure(fmt.Errorf("line %d: dbh: %w", line, err))
		}

		tl.Codes = append(tl.Codes, code)
		tl.DBH = append(tl.DBH, dbh)

		for _, col := range []struct {
			name     string
			fallback float64
			dest     *[]float64
		}{
			{colSiteIndex, defaults.SiteIndex, &tl.SiteIndex},
			{colTopDOB, defaults.TopDOB, &tl.TopDOB},
			{colBasalArea, defaults.BasalArea, &tl.BasalArea},
			{colHeight, 0, &tl.Height},
		} {
			value := col.fallback
			if idx, ok := columns[col.name]; ok {
				field := strings.TrimSpace(record[idx])
				if field != "" {
					value, err = strconv.ParseFloat(field, 64)
					if err != nil {
						return nil, parseFailure(fmt.Errorf("line %d: %s: %w", line, col.name, err))
					}
				}
			}
			*col.dest = append(*col.dest, value)
		}
	}

	if tl.Len() == 0 {
		return nil, parseFailure(fmt.Errorf("tree list has no data rows"))
	}
	return tl, nil
}

func parseFailure(err error) error {
	return errors.New(err).
		Component("inventory").
		Category(errors.CategoryFileParsing).
		Build()
}
