package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pitchcoach/models"
	"pitchcoach/recommend"
)

// StartSessionRequest begins a new at-bat session
type StartSessionRequest struct {
	PitcherThrows  string   `json:"pitcher_throws"`
	BatterStand    string   `json:"batter_stand"`
	PitchInventory []string `json:"pitch_inventory"`
}

// StartSessionResponse carries the opening-pitch recommendations
type StartSessionResponse struct {
	SessionID       string                  `json:"session_id"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Count           models.Count            `json:"count"`
	PitcherThrows   string                  `json:"pitcher_throws"`
	BatterStand     string                  `json:"batter_stand"`
}

// SubmitPitchRequest records a thrown pitch and its result
type SubmitPitchRequest struct {
	SessionID      string              `json:"session_id"`
	PitchType      string              `json:"pitch_type"`
	Zone           int                 `json:"zone"`
	Result         string              `json:"result"`
	CurrentCount   models.Count        `json:"current_count"`
	PitchHistory   []models.PitchEvent `json:"pitch_history"`
	PitcherThrows  string              `json:"pitcher_throws"`
	BatterStand    string              `json:"batter_stand"`
	PitchInventory []string            `json:"pitch_inventory"`
}

// SubmitPitchResponse carries either the terminal at-bat outcome or the
// updated count with the next set of recommendations
type SubmitPitchResponse struct {
	AtBatOver       bool                    `json:"atbat_over"`
	AtBatResult     string                  `json:"atbat_result,omitempty"`
	Count           models.Count            `json:"count"`
	Recommendations []models.Recommendation `json:"recommendations,omitempty"`
}

// APIError represents an API error response
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PitchTypeInfo is one entry of the pitch-type catalog
type PitchTypeInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"service": "Pitch Coach API",
		"version": "1.0",
		"endpoints": map[string]string{
			"health":        "/api/v1/health",
			"start_session": "/api/v1/session/start",
			"submit_pitch":  "/api/v1/session/pitch",
			"zones":         "/api/v1/zones",
			"pitch_types":   "/api/v1/pitch-types",
			"metrics":       "/api/v1/metrics",
			"model_refresh": "/api/v1/model/refresh",
		},
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) startSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateSessionContext(req.PitcherThrows, req.BatterStand, req.PitchInventory); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	model := s.modelStore.Load(r.Context())
	engine := recommend.NewRecommendationEngine(model)
	recs := engine.FirstPitch(req.BatterStand, req.PitcherThrows, req.PitchInventory)

	writeJSON(w, StartSessionResponse{
		SessionID:       uuid.New().String(),
		Recommendations: recs,
		Count:           models.Count{Balls: 0, Strikes: 0},
		PitcherThrows:   req.PitcherThrows,
		BatterStand:     req.BatterStand,
	})
}

func (s *Server) submitPitchHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitPitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateSubmitPitch(&req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	count := req.CurrentCount
	count.Apply(req.Result)

	if outcome, over := count.Outcome(req.Result); over {
		writeJSON(w, SubmitPitchResponse{
			AtBatOver:   true,
			AtBatResult: outcome,
			Count:       models.Count{Balls: 0, Strikes: 0},
		})
		return
	}

	model := s.modelStore.Load(r.Context())
	engine := recommend.NewRecommendationEngine(model)
	recs := engine.NextPitch(count, req.PitchHistory, req.BatterStand, req.PitcherThrows, req.PitchInventory)

	writeJSON(w, SubmitPitchResponse{
		AtBatOver:       false,
		Count:           count,
		Recommendations: recs,
	})
}

func (s *Server) zonesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"zones": models.AllZones(),
	})
}

func (s *Server) pitchTypesHandler(w http.ResponseWriter, r *http.Request) {
	model := s.modelStore.Load(r.Context())

	types := make([]PitchTypeInfo, 0, len(model.PitchTypes()))
	for _, code := range model.PitchTypes() {
		name := models.PitchTypeNames[code]
		if name == "" {
			name = code
		}
		types = append(types, PitchTypeInfo{Code: code, Name: name})
	}

	writeJSON(w, map[string]interface{}{
		"pitch_types": types,
	})
}

func (s *Server) refreshModelHandler(w http.ResponseWriter, r *http.Request) {
	s.modelStore.Invalidate()
	log.Printf("Model cache invalidated")
	writeJSON(w, map[string]string{"status": "refreshed"})
}

func validateSessionContext(pitcherThrows, batterStand string, inventory []string) error {
	if !models.IsValidHand(pitcherThrows) {
		return fmt.Errorf("pitcher_throws must be R or L")
	}
	if !models.IsValidHand(batterStand) {
		return fmt.Errorf("batter_stand must be R or L")
	}
	if len(inventory) == 0 {
		return fmt.Errorf("pitch_inventory must not be empty")
	}
	return nil
}

func validateSubmitPitch(req *SubmitPitchRequest) error {
	if err := validateSessionContext(req.PitcherThrows, req.BatterStand, req.PitchInventory); err != nil {
		return err
	}
	if req.PitchType == "" {
		return fmt.Errorf("pitch_type is required")
	}
	if !models.IsValidZone(req.Zone) {
		return fmt.Errorf("zone must be between 1 and 25")
	}
	if !models.ValidResults[req.Result] {
		return fmt.Errorf("result must be one of: called_strike, swinging_strike, ball, foul, foul_tip, hit_into_play")
	}
	if !req.CurrentCount.IsValid() {
		return fmt.Errorf("current_count is out of range")
	}
	for _, p := range req.PitchHistory {
		if p.PitchType == "" || !models.IsValidZone(p.Zone) {
			return fmt.Errorf("pitch_history contains an invalid entry")
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(APIError{Error: message, Code: errorCode(statusCode)}); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

func errorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return ""
	}
}
