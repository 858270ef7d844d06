package recommend

// Fixed strategic (pitch, zone) pairs used to round out the opening-pitch
// list when the model's zone data covers too few of the inventory.
var strategicDefaults = []struct {
	PitchType string
	Zone      int
}{
	{"FF", 5},
	{"SL", 9},
	{"CH", 8},
	{"CU", 7},
	{"SI", 4},
}

// Default target zones per pitch type for the last-resort first-pitch fill.
// Unknown pitch types fall back to dead center.
var defaultZones = map[string]int{
	"FF": 5,
	"SL": 9,
	"CH": 8,
	"CU": 7,
	"SI": 4,
	"FC": 6,
	"FS": 8,
	"ST": 9,
	"KC": 7,
}

const fallbackZone = 5

// fallbackOption is one entry of the count-situation fallback used when the
// pattern tables produce fewer than three reactive recommendations.
type fallbackOption struct {
	PitchType  string
	Zone       int
	Confidence float64
}

// Behind in the count (balls > strikes): get back to strikes with fastballs,
// sinkers and cutters over the plate.
var behindInCount = []fallbackOption{
	{"FF", 5, 0.30},
	{"SI", 5, 0.28},
	{"FC", 6, 0.26},
	{"FF", 2, 0.24},
	{"SI", 8, 0.22},
}

// Ahead in the count (strikes > balls): putaway breaking and offspeed pitches
// at the corners.
var aheadInCount = []fallbackOption{
	{"SL", 9, 0.30},
	{"CU", 7, 0.28},
	{"CH", 9, 0.26},
	{"FS", 7, 0.24},
	{"SL", 3, 0.22},
}

// Even count: balanced mix.
var evenCount = []fallbackOption{
	{"FF", 5, 0.30},
	{"SL", 9, 0.27},
	{"CH", 8, 0.25},
	{"SI", 4, 0.22},
	{"FF", 1, 0.20},
}

func countSituationFallback(balls, strikes int) []fallbackOption {
	switch {
	case balls > strikes:
		return behindInCount
	case strikes > balls:
		return aheadInCount
	default:
		return evenCount
	}
}
