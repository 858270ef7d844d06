package models

import (
	"fmt"
	"strings"
)

// Count represents balls and strikes within an at-bat
type Count struct {
	Balls   int `json:"balls"`
	Strikes int `json:"strikes"`
}

// At-bat outcomes
const (
	OutcomeStrikeout = "strikeout"
	OutcomeWalk      = "walk"
	OutcomeInPlay    = "in_play"
)

// Apply advances the count for a submitted pitch result. A foul with two
// strikes leaves the count unchanged; a ball in play never moves the count.
func (c *Count) Apply(result string) {
	switch {
	case strings.Contains(result, "strike") || result == ResultFoulTip:
		c.Strikes++
	case result == ResultBall:
		c.Balls++
	case result == ResultFoul && c.Strikes < 2:
		c.Strikes++
	}
}

// Outcome reports whether the at-bat ended on this pitch and how. Must be
// evaluated after Apply. The strikeout check runs before the walk check.
func (c Count) Outcome(result string) (string, bool) {
	if c.Strikes >= 3 {
		return OutcomeStrikeout, true
	}
	if c.Balls >= 4 {
		return OutcomeWalk, true
	}
	if result == ResultHitIntoPlay || strings.Contains(result, "in_play") {
		return OutcomeInPlay, true
	}
	return "", false
}

// Key returns the "balls-strikes" form used by the pattern tables
func (c Count) Key() string {
	return fmt.Sprintf("%d-%d", c.Balls, c.Strikes)
}

// IsValid checks the count is inside the range of an active at-bat
func (c Count) IsValid() bool {
	return c.Balls >= 0 && c.Balls <= 3 && c.Strikes >= 0 && c.Strikes <= 2
}
