package refdata

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/timbermetrics/timbervol-go/internal/errors"
)

//go:embed data/*.csv
var embeddedTables embed.FS

const (
	speciesFile       = "species.csv"
	speciesGroupsFile = "species_groups.csv"
	heightFile        = "height.csv"
	cubicVolumeFile   = "volume_cubic.csv"
	boardVolumeFile   = "volume_board.csv"
	biomassFile       = "biomass.csv"
)

// Load builds the store from the embedded published tables.
func Load() (*Store, error) {
	sub, err := fs.Sub(embeddedTables, "data")
	if err != nil {
		return nil, errors.New(err).
			Component("refdata").
			Category(errors.CategoryReferenceData).
			Build()
	}
	return load(sub)
}

// LoadFrom builds the store from CSV files in dir, overriding the embedded
// tables. The files must use the same names and schemas.
func LoadFrom(dir string) (*Store, error) {
	return load(os.DirFS(dir))
}

func load(fsys fs.FS) (*Store, error) {
	store := &Store{
		species:      make(map[int]SpeciesInfo),
		directGroups: make(map[int]SpeciesGroup),
		height:       make(map[SpeciesGroup]HeightCoefficients),
		cubic:        make(map[SpeciesGroup]VolumeCoefficients),
		board:        make(map[SpeciesGroup]VolumeCoefficients),
		biomass:      make(map[SpeciesGroup]BiomassCoefficients),
	}

	if err := store.loadSpecies(fsys); err != nil {
		return nil, err
	}
	if err := store.loadSpeciesGroups(fsys); err != nil {
		return nil, err
	}
	if err := store.loadHeight(fsys); err != nil {
		return nil, err
	}
	if err := store.loadVolume(fsys, cubicVolumeFile, store.cubic); err != nil {
		return nil, err
	}
	if err := store.loadVolume(fsys, boardVolumeFile, store.board); err != nil {
		return nil, err
	}
	if err := store.loadBiomass(fsys); err != nil {
		return nil, err
	}

	if err := store.checkCoverage(); err != nil {
		return nil, err
	}
	return store, nil
}

// readTable reads a CSV file and returns its records without the header row.
// csv.Reader enforces a consistent field count across rows.
func readTable(fsys fs.FS, name string, fields int) ([][]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errors.New(fmt.Errorf("opening reference table %s: %w", name, err)).
			Component("refdata").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = fields
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.New(fmt.Errorf("parsing reference table %s: %w", name, err)).
			Component("refdata").
			Category(errors.CategoryFileParsing).
			Build()
	}
	if len(records) < 2 {
		return nil, errors.Newf("reference table %s has no data rows", name).
			Component("refdata").
			Category(errors.CategoryReferenceData).
			Build()
	}
	return records[1:], nil
}

func parseErr(file string, row []string, err error) error {
	return errors.New(fmt.Errorf("reference table %s row %v: %w", file, row, err)).
		Component("refdata").
		Category(errors.CategoryFileParsing).
		Build()
}

func (s *Store) loadSpecies(fsys fs.FS) error {
	records, err := readTable(fsys, speciesFile, 4)
	if err != nil {
		return err
	}
	for _, row := range records {
		code, err := strconv.Atoi(row[0])
		if err != nil {
			return parseErr(speciesFile, row, err)
		}
		majorGroup, err := strconv.Atoi(row[3])
		if err != nil {
			return parseErr(speciesFile, row, err)
		}
		if majorGroup < MajorGroupPine || majorGroup > MajorGroupHardHardwood {
			return parseErr(speciesFile, row, fmt.Errorf("major group %d out of range", majorGroup))
		}
		if _, dup := s.species[code]; dup {
			return parseErr(speciesFile, row, fmt.Errorf("duplicate species code %d", code))
		}
		s.species[code] = SpeciesInfo{
			Code:           code,
			ScientificName: row[1],
			CommonName:     row[2],
			MajorGroup:     majorGroup,
		}
	}
	return nil
}

func (s *Store) loadSpeciesGroups(fsys fs.FS) error {
	records, err := readTable(fsys, speciesGroupsFile, 2)
	if err != nil {
		return err
	}
	for _, row := range records {
		code, err := strconv.Atoi(row[0])
		if err != nil {
			return parseErr(speciesGroupsFile, row, err)
		}
		if _, dup := s.directGroups[code]; dup {
			return parseErr(speciesGroupsFile, row, fmt.Errorf("duplicate mapping for species code %d", code))
		}
		if _, known := s.species[code]; !known {
			return parseErr(speciesGroupsFile, row, fmt.Errorf("species code %d missing from species reference", code))
		}
		s.directGroups[code] = SpeciesGroup(row[1])
	}
	return nil
}

func (s *Store) loadHeight(fsys fs.FS) error {
	records, err := readTable(fsys, heightFile, 8)
	if err != nil {
		return err
	}
	for _, row := range records {
		group := SpeciesGroup(row[0])
		if _, dup := s.height[group]; dup {
			return parseErr(heightFile, row, fmt.Errorf("duplicate row for group %q", group))
		}
		vals, err := parseFloats(row[1:])
		if err != nil {
			return parseErr(heightFile, row, err)
		}
		s.height[group] = HeightCoefficients{
			B1: vals[0], B2: vals[1], B3: vals[2],
			B4: vals[3], B5: vals[4], B6: vals[5],
			StdError: vals[6],
		}
	}
	return nil
}

func (s *Store) loadVolume(fsys fs.FS, file string, table map[SpeciesGroup]VolumeCoefficients) error {
	records, err := readTable(fsys, file, 6)
	if err != nil {
		return err
	}
	for _, row := range records {
		group := SpeciesGroup(row[0])
		if _, dup := table[group]; dup {
			return parseErr(file, row, fmt.Errorf("duplicate row for group %q", group))
		}
		b0, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return parseErr(file, row, err)
		}
		b1, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return parseErr(file, row, err)
		}
		r2, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return parseErr(file, row, err)
		}
		n, err := strconv.Atoi(row[4])
		if err != nil {
			return parseErr(file, row, err)
		}
		cull, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return parseErr(file, row, err)
		}
		table[group] = VolumeCoefficients{B0: b0, B1: b1, RSquared: r2, SampleSize: n, CullPct: cull}
	}
	return nil
}

func (s *Store) loadBiomass(fsys fs.FS) error {
	records, err := readTable(fsys, biomassFile, 5)
	if err != nil {
		return err
	}
	for _, row := range records {
		group := SpeciesGroup(row[0])
		if _, dup := s.biomass[group]; dup {
			return parseErr(biomassFile, row, fmt.Errorf("duplicate row for group %q", group))
		}
		vals, err := parseFloats(row[1:])
		if err != nil {
			return parseErr(biomassFile, row, err)
		}
		s.biomass[group] = BiomassCoefficients{
			StumpCoefficient: vals[0],
			BarkB0:           vals[1],
			BarkB1:           vals[2],
			Density:          vals[3],
		}
	}
	return nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// checkCoverage enforces the bidirectional coverage invariant: the set of
// groups resolvable from species codes (direct mappings plus the two
// major-group fallback targets) must equal the key set of every coefficient
// table.
func (s *Store) checkCoverage() error {
	resolvable := make(map[SpeciesGroup]bool, len(s.directGroups)+2)
	for _, g := range s.directGroups {
		resolvable[g] = true
	}
	for _, info := range s.species {
		if info.Softwood() {
			resolvable[GroupOtherSoftwoods] = true
		} else {
			resolvable[GroupOtherHardwoods] = true
		}
	}

	tables := []struct {
		name   string
		groups map[SpeciesGroup]bool
	}{
		{TableHeight, groupSet(s.height)},
		{TableCubicVolume, groupSet(s.cubic)},
		{TableBoardVolume, groupSet(s.board)},
		{TableBiomass, groupSet(s.biomass)},
	}

	for _, table := range tables {
		for g := range resolvable {
			if !table.groups[g] {
				return errors.New(&MissingCoefficientError{Group: g, Table: table.name}).
					Component("refdata").
					Category(errors.CategoryReferenceData).
					Context("table", table.name).
					Build()
			}
		}
		for g := range table.groups {
			if !resolvable[g] {
				return errors.Newf("group %q in %s table is not resolvable from any species code", g, table.name).
					Component("refdata").
					Category(errors.CategoryReferenceData).
					Context("table", table.name).
					Build()
			}
		}
	}
	return nil
}

func groupSet[V any](table map[SpeciesGroup]V) map[SpeciesGroup]bool {
	set := make(map[SpeciesGroup]bool, len(table))
	for g := range table {
		set[g] = true
	}
	return set
}
