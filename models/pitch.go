package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Pitch type codes follow the Statcast abbreviations used by the trained model.
var PitchTypeNames = map[string]string{
	"FF": "Four-Seam Fastball",
	"SL": "Slider",
	"CH": "Changeup",
	"CU": "Curveball",
	"SI": "Sinker",
	"FC": "Cutter",
	"FS": "Splitter",
	"ST": "Sweeper",
	"KC": "Knuckle Curve",
}

// FirstPitchPriority is the fixed order in which pitch types are considered
// for the opening pitch of an at-bat.
var FirstPitchPriority = []string{"FF", "SL", "CH", "CU", "SI", "FC", "FS", "ST", "KC"}

// DefaultPitchTypes is the hard-coded fallback used when the model document
// carries no encoder list. Matches the alphabetical encoder order produced by
// the training pipeline.
var DefaultPitchTypes = []string{"CH", "CU", "FC", "FF", "FS", "KC", "SI", "SL", "ST"}

// Pitch result codes submitted by the client.
const (
	ResultCalledStrike   = "called_strike"
	ResultSwingingStrike = "swinging_strike"
	ResultBall           = "ball"
	ResultFoul           = "foul"
	ResultFoulTip        = "foul_tip"
	ResultHitIntoPlay    = "hit_into_play"
)

// ValidResults enumerates every accepted pitch result.
var ValidResults = map[string]bool{
	ResultCalledStrike:   true,
	ResultSwingingStrike: true,
	ResultBall:           true,
	ResultFoul:           true,
	ResultFoulTip:        true,
	ResultHitIntoPlay:    true,
}

// Recommendation is a single ranked pitch suggestion
type Recommendation struct {
	PitchType   string  `json:"pitch_type"`
	Zone        int     `json:"zone"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// PitchEvent is one pitch of the at-bat history as resubmitted by the client
type PitchEvent struct {
	PitchType string `json:"pitch_type"`
	Zone      int    `json:"zone"`
	Result    string `json:"result"`
}

// UnmarshalJSON accepts both "pitch_type" and the shorter "pitch" key, since
// older clients sent the latter.
func (e *PitchEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		PitchType string `json:"pitch_type"`
		Pitch     string `json:"pitch"`
		Zone      int    `json:"zone"`
		Result    string `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.PitchType = raw.PitchType
	if e.PitchType == "" {
		e.PitchType = raw.Pitch
	}
	e.Zone = raw.Zone
	e.Result = raw.Result
	return nil
}

// ComboKey builds the "<pitch_type>-<zone>" key used throughout the pattern
// tables.
func ComboKey(pitchType string, zone int) string {
	return fmt.Sprintf("%s-%d", pitchType, zone)
}

// ParseComboKey splits a "<pitch_type>-<zone>" pattern key. Returns false for
// malformed keys.
func ParseComboKey(key string) (string, int, bool) {
	idx := strings.LastIndex(key, "-")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	zone, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:idx], zone, true
}

// InventorySet converts a pitch inventory list to a membership set
func InventorySet(inventory []string) map[string]bool {
	set := make(map[string]bool, len(inventory))
	for _, pt := range inventory {
		set[pt] = true
	}
	return set
}

// IsValidHand validates a handedness code
func IsValidHand(hand string) bool {
	return hand == "R" || hand == "L"
}
