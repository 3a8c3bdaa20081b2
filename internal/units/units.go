// Package units converts the search API's canonical square-meter area
// into the unit a local reader would quote the plot in.
package units

import "math"

const (
	SqftPerSqm    = 10.76391041671
	SqftPerMarla  = 225.0
	MarlaPerKanal = 20.0

	// A converted value counts as a whole number of kanal/marla when it
	// is within this relative tolerance of one.
	wholeTolerance = 0.08
)

// Normalize maps an area in square meters to (value, unit), preferring
// the largest unit that lands on a whole number. Kanal is checked before
// marla: round kanal counts are the common quote for large plots. When
// neither rounds cleanly, whole square feet are used if the conversion is
// essentially integral, else the raw square meters rounded to 2 decimals.
// Non-positive or non-finite input yields (nil, nil).
func Normalize(sqm float64) (*float64, *string) {
	if sqm <= 0 || math.IsNaN(sqm) || math.IsInf(sqm, 0) {
		return nil, nil
	}

	sqft := sqm * SqftPerSqm
	marla := sqft / SqftPerMarla
	kanal := marla / MarlaPerKanal

	if v, ok := wholeNumber(kanal); ok {
		return ptr(v), ptrs("kanal")
	}
	if v, ok := wholeNumber(marla); ok {
		return ptr(v), ptrs("marla")
	}

	// Areas that originated as an integral sqft figure survive the sqm
	// round trip to within a few hundredths; anything farther off is a
	// genuinely metric value and is reported as such.
	if r := math.Round(sqft); math.Abs(sqft-r) <= 0.02 && r >= 1 {
		return ptr(r), ptrs("sqft")
	}

	return ptr(math.Round(sqm*100) / 100), ptrs("sqm")
}

func wholeNumber(v float64) (float64, bool) {
	r := math.Round(v)
	if r < 1 {
		return 0, false
	}
	if math.Abs(v-r) <= wholeTolerance*r {
		return r, true
	}
	return 0, false
}

func ptr(v float64) *float64 { return &v }

func ptrs(s string) *string { return &s }
