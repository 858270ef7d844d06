package models

// The target grid is 25 fixed cells from the catcher's view. Zones 1-9 form
// the 3x3 strike zone, row-major from the top left. Zones 10-25 are the 16
// ball cells of the surrounding ring: 10-14 across the top, side pairs 15/16,
// 17/18 and 19/20 from high to low, and 21-25 across the bottom.
var zoneDescriptions = map[int]string{
	1:  "Strike zone: up and in",
	2:  "Strike zone: up and middle",
	3:  "Strike zone: up and away",
	4:  "Strike zone: middle in",
	5:  "Strike zone: dead center",
	6:  "Strike zone: middle away",
	7:  "Strike zone: down and in",
	8:  "Strike zone: down and middle",
	9:  "Strike zone: down and away",
	10: "Ball: high and far inside",
	11: "Ball: high, off the inside corner",
	12: "Ball: straight high",
	13: "Ball: high, off the outside corner",
	14: "Ball: high and far outside",
	15: "Ball: up-and-in, off the plate",
	16: "Ball: up-and-away, off the plate",
	17: "Ball: inside, level with the zone",
	18: "Ball: outside, level with the zone",
	19: "Ball: down-and-in, off the plate",
	20: "Ball: down-and-away, off the plate",
	21: "Ball: low and far inside",
	22: "Ball: low, below the inside corner",
	23: "Ball: straight low, in the dirt",
	24: "Ball: low, below the outside corner",
	25: "Ball: low and far outside",
}

// ZoneInfo describes one cell of the target grid
type ZoneInfo struct {
	Zone         int    `json:"zone"`
	Description  string `json:"description"`
	InStrikeZone bool   `json:"in_strike_zone"`
}

// IsValidZone reports whether z is one of the 25 grid cells
func IsValidZone(z int) bool {
	return z >= 1 && z <= 25
}

// IsStrikeZone reports whether z is inside the 3x3 strike zone
func IsStrikeZone(z int) bool {
	return z >= 1 && z <= 9
}

// ZoneDescription returns the fixed label for a zone, or empty for invalid
// zones.
func ZoneDescription(z int) string {
	return zoneDescriptions[z]
}

// AllZones returns the full grid in zone order
func AllZones() []ZoneInfo {
	zones := make([]ZoneInfo, 0, 25)
	for z := 1; z <= 25; z++ {
		zones = append(zones, ZoneInfo{
			Zone:         z,
			Description:  zoneDescriptions[z],
			InStrikeZone: IsStrikeZone(z),
		})
	}
	return zones
}
