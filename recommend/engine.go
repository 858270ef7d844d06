package recommend

import (
	"fmt"
	"sort"
	"strings"

	"pitchcoach/models"
)

const (
	maxRecommendations = 5
	minRecommendations = 3
	maxCandidates      = 10

	// Reactive selector priority adjustments
	repeatPenalty  = 0.7
	diversityBonus = 1.2

	// Fallback-tier merge weights
	countMergeWeight   = 0.5
	matchupMergeWeight = 0.3

	// First-pitch confidence blend and caps
	observedWeight          = 0.7
	effectivenessWeight     = 0.3
	effectivenessScale      = 10.0
	maxFirstPitchConfidence = 0.95
	strategicConfidence     = 0.30
	defaultZoneConfidence   = 0.25
)

// RecommendationEngine ranks (pitch type, zone) suggestions against a trained
// pattern document.
type RecommendationEngine struct {
	model *models.ModelData
}

// NewRecommendationEngine creates an engine over a loaded model document
func NewRecommendationEngine(model *models.ModelData) *RecommendationEngine {
	return &RecommendationEngine{model: model}
}

// matchupKey composes the batter-stand / pitcher-hand context component
func matchupKey(batterStand, pitcherThrows string) string {
	return batterStand + "-" + pitcherThrows
}

// sequenceKey identifies the last two pitch types thrown, or "first" for an
// empty history.
func sequenceKey(history []models.PitchEvent) string {
	if len(history) == 0 {
		return "first"
	}
	start := len(history) - 2
	if start < 0 {
		start = 0
	}
	types := make([]string, 0, 2)
	for _, ev := range history[start:] {
		types = append(types, ev.PitchType)
	}
	return strings.Join(types, "-")
}

func newRecommendation(pitchType string, zone int, confidence float64) models.Recommendation {
	return models.Recommendation{
		PitchType:   pitchType,
		Zone:        zone,
		Description: models.ZoneDescription(zone),
		Confidence:  confidence,
	}
}

// FirstPitch selects up to five opening-pitch recommendations, one per pitch
// type, ranked by confidence. Zone choice comes from the per-pitch optimal
// zone scores rather than raw usage so over-thrown pitches are not favored.
func (e *RecommendationEngine) FirstPitch(batterStand, pitcherThrows string, inventory []string) []models.Recommendation {
	inv := models.InventorySet(inventory)
	context := matchupKey(batterStand, pitcherThrows) + "|0-0"

	observed := e.model.FirstPitchPatterns[context]
	var totalObserved float64
	for _, n := range observed {
		totalObserved += n
	}

	used := make(map[string]bool)
	var recs []models.Recommendation

	for _, pitchType := range models.FirstPitchPriority {
		if len(recs) >= maxRecommendations {
			break
		}
		if !inv[pitchType] || used[pitchType] {
			continue
		}
		best, ok := e.model.OptimalZones[pitchType].Best()
		if !ok {
			continue
		}

		confidence := best.Score / effectivenessScale
		if totalObserved > 0 {
			if n, seen := observed[models.ComboKey(pitchType, best.Zone)]; seen {
				confidence = observedWeight*(n/totalObserved) +
					effectivenessWeight*(best.Score/effectivenessScale)
			}
		}
		if confidence > maxFirstPitchConfidence {
			confidence = maxFirstPitchConfidence
		}

		recs = append(recs, newRecommendation(pitchType, best.Zone, confidence))
		used[pitchType] = true
	}

	// Strategic pairs only make sense when the model actually carries
	// opening-pitch data; an empty table goes straight to the default-zone
	// fill so every inventory pitch gets the flat default confidence.
	if len(recs) < maxRecommendations && e.model.HasFirstPitchData() {
		for _, d := range strategicDefaults {
			if len(recs) >= maxRecommendations {
				break
			}
			if !inv[d.PitchType] || used[d.PitchType] {
				continue
			}
			recs = append(recs, newRecommendation(d.PitchType, d.Zone, strategicConfidence))
			used[d.PitchType] = true
		}
	}

	if len(recs) < maxRecommendations {
		for _, pitchType := range inventory {
			if len(recs) >= maxRecommendations {
				break
			}
			if used[pitchType] {
				continue
			}
			zone, ok := defaultZones[pitchType]
			if !ok {
				zone = fallbackZone
			}
			recs = append(recs, newRecommendation(pitchType, zone, defaultZoneConfidence))
			used[pitchType] = true
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// scoredCombo is one (pitch type, zone) entry of the merged pattern map
type scoredCombo struct {
	pitchType string
	zone      int
	weight    float64
}

// candidate carries a combo's priority-adjusted score alongside its original
// merged weight. Reported confidence always uses the original weight.
type candidate struct {
	scoredCombo
	priority float64
}

// NextPitch selects three to five recommendations for the upcoming pitch,
// falling back through count-level and matchup-level pattern tables and
// finally a fixed count-situation table when the context has too little data.
func (e *RecommendationEngine) NextPitch(count models.Count, history []models.PitchEvent, batterStand, pitcherThrows string, inventory []string) []models.Recommendation {
	inv := models.InventorySet(inventory)
	matchup := matchupKey(batterStand, pitcherThrows)
	context := fmt.Sprintf("%s|%s|%s|p%d", matchup, count.Key(), sequenceKey(history), len(history)+2)

	// Tiered merge: full context first, then count-level patterns at half
	// weight, then matchup-level patterns at 0.3, each tier merged in only
	// while fewer than three distinct combos exist. Merges add into existing
	// entries, which can push a combo's confidence share past 1.0; that
	// matches the trained system's observed behavior and is left alone.
	merged := make(map[string]float64)
	for combo, n := range e.model.Patterns[context] {
		merged[combo] += n
	}
	if len(merged) < minRecommendations {
		for combo, n := range e.model.CountPatterns[count.Key()] {
			merged[combo] += n * countMergeWeight
		}
	}
	if len(merged) < minRecommendations {
		for combo, n := range e.model.MatchupPatterns[matchup] {
			merged[combo] += n * matchupMergeWeight
		}
	}

	combos := sortCombos(merged)
	var total float64
	for _, c := range combos {
		total += c.weight
	}

	thrown := make(map[string]bool, len(history))
	for _, ev := range history {
		thrown[models.ComboKey(ev.PitchType, ev.Zone)] = true
	}
	var lastPitchType string
	if len(history) > 0 {
		lastPitchType = history[len(history)-1].PitchType
	}

	var recs []models.Recommendation

	// Build the priority-adjusted candidate list. The repeat penalty is only
	// in force while fewer than three recommendations have been selected, so
	// late slots may repeat the previous pitch type.
	typesListed := make(map[string]bool)
	var candidates []candidate
	for _, c := range combos {
		if len(candidates) >= maxCandidates {
			break
		}
		if !inv[c.pitchType] || thrown[models.ComboKey(c.pitchType, c.zone)] {
			continue
		}
		priority := c.weight
		if c.pitchType == lastPitchType && len(recs) < minRecommendations {
			priority *= repeatPenalty
		}
		if !typesListed[c.pitchType] {
			priority *= diversityBonus
		}
		typesListed[c.pitchType] = true
		candidates = append(candidates, candidate{scoredCombo: c, priority: priority})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})

	// Strict pass: once three slots are filled, a pitch type may not repeat.
	usedTypes := make(map[string]bool)
	inRecs := make(map[string]bool)
	for _, c := range candidates {
		if len(recs) >= maxRecommendations {
			break
		}
		if len(recs) >= minRecommendations && usedTypes[c.pitchType] {
			continue
		}
		recs = append(recs, newRecommendation(c.pitchType, c.zone, c.weight/total))
		usedTypes[c.pitchType] = true
		inRecs[models.ComboKey(c.pitchType, c.zone)] = true
	}

	// Relaxed pass: drop the diversity rule, keep exact-duplicate avoidance.
	if len(recs) < minRecommendations {
		for _, c := range candidates {
			if len(recs) >= maxRecommendations {
				break
			}
			if inRecs[models.ComboKey(c.pitchType, c.zone)] {
				continue
			}
			recs = append(recs, newRecommendation(c.pitchType, c.zone, c.weight/total))
			inRecs[models.ComboKey(c.pitchType, c.zone)] = true
		}
	}

	// Count-situation fallback with fixed confidences. Appended entries are
	// not re-sorted against the pattern-derived ones.
	if len(recs) < minRecommendations {
		for _, f := range countSituationFallback(count.Balls, count.Strikes) {
			if len(recs) >= maxRecommendations {
				break
			}
			if !inv[f.PitchType] || inRecs[models.ComboKey(f.PitchType, f.Zone)] {
				continue
			}
			recs = append(recs, newRecommendation(f.PitchType, f.Zone, f.Confidence))
			inRecs[models.ComboKey(f.PitchType, f.Zone)] = true
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// sortCombos flattens a merged pattern map into weight-descending order.
// Malformed keys are skipped. Equal weights order by key so ranking is
// deterministic across runs.
func sortCombos(merged map[string]float64) []scoredCombo {
	combos := make([]scoredCombo, 0, len(merged))
	for key, weight := range merged {
		pitchType, zone, ok := models.ParseComboKey(key)
		if !ok {
			continue
		}
		combos = append(combos, scoredCombo{pitchType: pitchType, zone: zone, weight: weight})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].weight != combos[j].weight {
			return combos[i].weight > combos[j].weight
		}
		return models.ComboKey(combos[i].pitchType, combos[i].zone) <
			models.ComboKey(combos[j].pitchType, combos[j].zone)
	})
	return combos
}
