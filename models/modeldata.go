package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ModelData is the trained pattern document produced by the offline training
// pipeline. It is read-only at request time.
type ModelData struct {
	Encoders           Encoders                      `json:"encoders"`
	Patterns           map[string]map[string]float64 `json:"patterns"`
	FirstPitchPatterns map[string]map[string]float64 `json:"first_pitch_patterns"`
	CountPatterns      map[string]map[string]float64 `json:"count_patterns"`
	MatchupPatterns    map[string]map[string]float64 `json:"matchup_patterns"`
	OptimalZones       map[string]ZoneScores         `json:"optimal_zones"`
}

// Encoders carries the label metadata from training. Only the pitch type list
// is consumed at request time.
type Encoders struct {
	PitchTypes []string `json:"pitch_types"`
}

// ZoneScore is one zone's effectiveness score for a pitch type
type ZoneScore struct {
	Zone  int
	Score float64
}

// ZoneScores holds a pitch type's zone effectiveness entries in document
// order. Order matters: score ties resolve to the first-listed zone.
type ZoneScores []ZoneScore

// UnmarshalJSON walks the object token by token so the document's key order
// survives decoding.
func (zs *ZoneScores) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*zs = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("optimal zones: expected object, got %v", tok)
	}

	var entries ZoneScores
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("optimal zones: unexpected key %v", keyTok)
		}
		zone, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("optimal zones: non-numeric zone %q", key)
		}
		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("optimal zones: zone %d: %w", zone, err)
		}
		entries = append(entries, ZoneScore{Zone: zone, Score: score})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*zs = entries
	return nil
}

// MarshalJSON writes the entries back as an object in held order
func (zs ZoneScores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range zs {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%g", strconv.Itoa(e.Zone), e.Score)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Best returns the entry with the highest score; ties keep the earlier entry.
// ok is false for an empty list.
func (zs ZoneScores) Best() (ZoneScore, bool) {
	if len(zs) == 0 {
		return ZoneScore{}, false
	}
	best := zs[0]
	for _, e := range zs[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}

// DefaultModelData returns the empty-table fallback used when the trained
// document is missing or unreadable.
func DefaultModelData() *ModelData {
	return &ModelData{
		Encoders:           Encoders{PitchTypes: append([]string(nil), DefaultPitchTypes...)},
		Patterns:           map[string]map[string]float64{},
		FirstPitchPatterns: map[string]map[string]float64{},
		CountPatterns:      map[string]map[string]float64{},
		MatchupPatterns:    map[string]map[string]float64{},
		OptimalZones:       map[string]ZoneScores{},
	}
}

// ParseModelData decodes a model document, filling the pitch type fallback
// when the encoder list is absent.
func ParseModelData(data []byte) (*ModelData, error) {
	var m ModelData
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model document: %w", err)
	}
	m.normalize()
	return &m, nil
}

func (m *ModelData) normalize() {
	if len(m.Encoders.PitchTypes) == 0 {
		m.Encoders.PitchTypes = append([]string(nil), DefaultPitchTypes...)
	}
	if m.Patterns == nil {
		m.Patterns = map[string]map[string]float64{}
	}
	if m.FirstPitchPatterns == nil {
		m.FirstPitchPatterns = map[string]map[string]float64{}
	}
	if m.CountPatterns == nil {
		m.CountPatterns = map[string]map[string]float64{}
	}
	if m.MatchupPatterns == nil {
		m.MatchupPatterns = map[string]map[string]float64{}
	}
	if m.OptimalZones == nil {
		m.OptimalZones = map[string]ZoneScores{}
	}
}

// PitchTypes returns the model's known pitch type codes
func (m *ModelData) PitchTypes() []string {
	return m.Encoders.PitchTypes
}

// HasFirstPitchData reports whether the document carries any opening-pitch
// signal. With a fully empty table the first-pitch selector goes straight to
// the default-zone fill.
func (m *ModelData) HasFirstPitchData() bool {
	return len(m.OptimalZones) > 0 || len(m.FirstPitchPatterns) > 0
}
