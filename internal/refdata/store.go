package refdata

import (
	"fmt"
	"sort"

	"github.com/timbermetrics/timbervol-go/internal/errors"
)

// MissingCoefficientError reports a species group with no row in a required
// coefficient table. It indicates a reference-data integrity defect, not a
// user-input problem; the loader's coverage check makes it unreachable for
// stores built through Load.
type MissingCoefficientError struct {
	Group SpeciesGroup
	Table string
}

func (e *MissingCoefficientError) Error() string {
	return fmt.Sprintf("no %s coefficients for species group %q", e.Table, e.Group)
}

// ErrorCategory marks the error as a reference-data defect.
func (e *MissingCoefficientError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryReferenceData
}

// Store is the immutable reference data store: the species reference, the
// direct species-to-group map, and the four coefficient tables.
type Store struct {
	species      map[int]SpeciesInfo
	directGroups map[int]SpeciesGroup
	height       map[SpeciesGroup]HeightCoefficients
	cubic        map[SpeciesGroup]VolumeCoefficients
	board        map[SpeciesGroup]VolumeCoefficients
	biomass      map[SpeciesGroup]BiomassCoefficients
}

// Species returns the species reference row for a code.
func (s *Store) Species(code int) (SpeciesInfo, bool) {
	info, ok := s.species[code]
	return info, ok
}

// DirectGroup returns the directly mapped species group for a code, if any.
func (s *Store) DirectGroup(code int) (SpeciesGroup, bool) {
	g, ok := s.directGroups[code]
	return g, ok
}

// Height returns the height coefficients for a group.
func (s *Store) Height(group SpeciesGroup) (HeightCoefficients, error) {
	c, ok := s.height[group]
	if !ok {
		return HeightCoefficients{}, &MissingCoefficientError{Group: group, Table: TableHeight}
	}
	return c, nil
}

// Volume returns the volume coefficients for a group from the chosen table.
func (s *Store) Volume(group SpeciesGroup, volType VolumeType) (VolumeCoefficients, error) {
	var table map[SpeciesGroup]VolumeCoefficients
	var name string
	switch volType {
	case CubicFeet:
		table, name = s.cubic, TableCubicVolume
	case BoardFeet:
		table, name = s.board, TableBoardVolume
	default:
		return VolumeCoefficients{}, errors.Newf("unknown volume type %q", volType).
			Component("refdata").
			Category(errors.CategoryValidation).
			Build()
	}
	c, ok := table[group]
	if !ok {
		return VolumeCoefficients{}, &MissingCoefficientError{Group: group, Table: name}
	}
	return c, nil
}

// Biomass returns the stump/bark/density coefficients for a group.
func (s *Store) Biomass(group SpeciesGroup) (BiomassCoefficients, error) {
	c, ok := s.biomass[group]
	if !ok {
		return BiomassCoefficients{}, &MissingCoefficientError{Group: group, Table: TableBiomass}
	}
	return c, nil
}

// Groups returns all species groups in the height table, sorted by label.
func (s *Store) Groups() []SpeciesGroup {
	groups := make([]SpeciesGroup, 0, len(s.height))
	for g := range s.height {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

// SpeciesCodes returns all codes in the species reference, sorted.
func (s *Store) SpeciesCodes() []int {
	codes := make([]int, 0, len(s.species))
	for code := range s.species {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
