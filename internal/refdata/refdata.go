// Package refdata holds the published species-group regression tables and the
// species reference used to key into them. The tables are immutable after
// Load; every accessor is safe for concurrent use.
package refdata

// SpeciesGroup identifies one of the published species groups. Each group
// shares a single regression model per table.
type SpeciesGroup string

// Built-in groups used by the major-group fallback classification.
const (
	GroupOtherSoftwoods SpeciesGroup = "Other softwoods"
	GroupOtherHardwoods SpeciesGroup = "Other hardwoods"
)

// Major-group classification codes carried by the species reference.
// 1 and 2 are softwood super-groups, 3 and 4 hardwood.
const (
	MajorGroupPine          = 1
	MajorGroupOtherSoftwood = 2
	MajorGroupSoftHardwood  = 3
	MajorGroupHardHardwood  = 4
)

// SpeciesInfo is one row of the species reference.
type SpeciesInfo struct {
	Code           int
	ScientificName string
	CommonName     string
	MajorGroup     int
}

// Softwood reports whether the species belongs to a softwood super-group.
func (s SpeciesInfo) Softwood() bool {
	return s.MajorGroup == MajorGroupPine || s.MajorGroup == MajorGroupOtherSoftwood
}

// HeightCoefficients parameterize the height model
// H = 4.5 + b1*(1-exp(-b2*D))^b3 * S^b4 * T^b5 * B^b6.
type HeightCoefficients struct {
	B1, B2, B3, B4, B5, B6 float64
	StdError               float64
}

// VolumeCoefficients parameterize the volume model V = b0 + b1*D^2*H.
// The fit statistics and cull percentage are carried from the publication
// but not used in the computation itself.
type VolumeCoefficients struct {
	B0, B1     float64
	RSquared   float64
	SampleSize int
	CullPct    float64
}

// BiomassCoefficients parameterize the stump, bark and green-weight models.
type BiomassCoefficients struct {
	StumpCoefficient float64
	BarkB0, BarkB1   float64
	Density          float64 // green weight, lbs per cubic foot
}

// VolumeType selects which volume coefficient table an estimate uses.
type VolumeType string

const (
	CubicFeet VolumeType = "cubic-feet"
	BoardFeet VolumeType = "board-feet"
)

// Valid reports whether v names a known volume table.
func (v VolumeType) Valid() bool {
	return v == CubicFeet || v == BoardFeet
}

// Table names used in reference-data error reporting.
const (
	TableHeight      = "height"
	TableCubicVolume = "cubic-volume"
	TableBoardVolume = "board-volume"
	TableBiomass     = "biomass"
)
