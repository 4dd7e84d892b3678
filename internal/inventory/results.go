package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/timbermetrics/timbervol-go/internal/errors"
)

// WriteResultCSV writes a header row followed by the result rows.
func WriteResultCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return writeFailure(err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return writeFailure(err)
		}
	}
	writer.Flush()
	return writeFailure(writer.Error())
}

func writeFailure(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(fmt.Errorf("writing results: %w", err)).
		Component("inventory").
		Category(errors.CategoryFileIO).
		Build()
}

// FormatValue renders a result value for CSV output; missing values become
// empty fields.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Summary holds batch statistics over the defined (non-missing) results.
type Summary struct {
	N       int
	Missing int
	Mean    float64
	Min     float64
	Max     float64
	StdDev  float64
}

// Summarize computes batch statistics, skipping missing entries.
func Summarize(values []float64) Summary {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	s := Summary{
		N:       len(defined),
		Missing: len(values) - len(defined),
	}
	if len(defined) == 0 {
		return s
	}
	s.Mean = stat.Mean(defined, nil)
	s.Min = floats.Min(defined)
	s.Max = floats.Max(defined)
	if len(defined) > 1 {
		s.StdDev = stat.StdDev(defined, nil)
	}
	return s
}

// String renders the summary for CLI output.
func (s Summary) String() string {
	if s.N == 0 {
		return fmt.Sprintf("n=0 missing=%d", s.Missing)
	}
	return fmt.Sprintf("n=%d missing=%d mean=%.4f min=%.4f max=%.4f stddev=%.4f",
		s.N, s.Missing, s.Mean, s.Min, s.Max, s.StdDev)
}
