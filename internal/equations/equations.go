// Package equations implements the closed-form regression models applied by
// the estimators. Every function is pure and element-wise; callers supply
// coefficients resolved from the reference tables.
package equations

import (
	"math"

	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

const (
	// BreastHeight is the model intercept, feet.
	BreastHeight = 4.5

	// MinMerchantableDBH is the diameter below which merchantable volume is
	// undefined and biomass switches to the small-tree model, inches.
	MinMerchantableDBH = 5.0

	// topTermOffset keeps the taper term positive when top DOB equals DBH.
	topTermOffset = 1.00001

	// Bark weight model constants from the publication.
	barkVolumeFactor = 1.1646
	barkDensity      = 37.0 // lbs per cubic foot of bark

	// topWeightFraction scales the top-and-limb weight from bole terms.
	topWeightFraction = 0.4545

	poundsPerTon = 2000.0

	// Species-independent small-tree total biomass power law.
	smallTreeCoefficient = 4.8900625
	smallTreeExponent    = 2.4323866
	smallTreeScale       = 0.8
)

// Height estimates total usable height to the given top diameter, feet.
//
// H = 4.5 + b1*(1-exp(-b2*D))^b3 * S^b4 * T^b5 * B^b6, T = 1.00001 - d/D.
//
// The result is NaN when topDOB exceeds dbh; callers guard against that
// before evaluation.
func Height(c refdata.HeightCoefficients, dbh, siteIndex, topDOB, basalArea float64) float64 {
	taper := topTermOffset - topDOB/dbh
	return BreastHeight +
		c.B1*
			math.Pow(1-math.Exp(-c.B2*dbh), c.B3)*
			math.Pow(siteIndex, c.B4)*
			math.Pow(taper, c.B5)*
			math.Pow(basalArea, c.B6)
}

// Volume estimates gross volume from DBH and height: V = b0 + b1*D^2*H.
// The same form serves cubic-foot and board-foot volume; only the
// coefficient table differs.
func Volume(c refdata.VolumeCoefficients, dbh, height float64) float64 {
	return c.B0 + c.B1*dbh*dbh*height
}

// StumpVolume estimates stump volume in cubic feet: stump = c*D^2.
func StumpVolume(stumpCoefficient, dbh float64) float64 {
	return stumpCoefficient * dbh * dbh
}

// BarkCorrectionFactor is the wood-to-total ratio: (b0 + b1*D)/100.
func BarkCorrectionFactor(barkB0, barkB1, dbh float64) float64 {
	return (barkB0 + barkB1*dbh) / 100
}

// BarkWeight estimates green bark weight in pounds.
func BarkWeight(grossCuFt, stumpCuFt, factor float64) float64 {
	return (grossCuFt + stumpCuFt) * (barkVolumeFactor - factor) * barkDensity
}

// BoleWeight estimates green bole weight in tons, stump included.
func BoleWeight(barkLbs, grossCuFt, stumpCuFt, density float64) float64 {
	return (barkLbs + (grossCuFt+stumpCuFt)*density) / poundsPerTon
}

// TopWeight estimates green top-and-limb weight in tons.
func TopWeight(barkLbs, grossCuFt, density float64) float64 {
	return topWeightFraction * (barkLbs + grossCuFt*density) / poundsPerTon
}

// SmallTreeBiomass is the species-independent total green biomass model in
// tons, applied when dbh < MinMerchantableDBH.
func SmallTreeBiomass(dbh float64) float64 {
	return smallTreeCoefficient * math.Pow(dbh, smallTreeExponent) * smallTreeScale / poundsPerTon
}
