package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchcoach/models"
	"pitchcoach/store"
)

// newTestServer builds a server backed by the given model file path. A path
// that does not exist exercises the empty-model fallback.
func newTestServer(modelPath string) *Server {
	s := &Server{
		config:     &Config{Port: "0", ModelPath: modelPath},
		router:     mux.NewRouter(),
		modelStore: store.NewService(modelPath, time.Minute),
	}
	s.setupRoutes()
	return s
}

func writeModelFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model_data.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestStartSessionEmptyModel(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", StartSessionRequest{
		PitcherThrows:  "R",
		BatterStand:    "R",
		PitchInventory: []string{"FF", "SL"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StartSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 0, resp.Count.Balls)
	assert.Equal(t, 0, resp.Count.Strikes)
	assert.Equal(t, "R", resp.PitcherThrows)
	assert.Equal(t, "R", resp.BatterStand)

	// With no optimal zones or first-pitch patterns, each inventory pitch
	// falls through to its default zone at the flat confidence.
	require.Len(t, resp.Recommendations, 2)
	seen := map[string]bool{}
	for _, r := range resp.Recommendations {
		assert.Contains(t, []string{"FF", "SL"}, r.PitchType)
		assert.False(t, seen[r.PitchType], "duplicate pitch type %s", r.PitchType)
		seen[r.PitchType] = true
		assert.InDelta(t, 0.25, r.Confidence, 1e-9)
		assert.NotEmpty(t, r.Description)
	}
}

func TestStartSessionWithModelData(t *testing.T) {
	path := writeModelFile(t, `{
		"encoders": {"pitch_types": ["FF", "SL", "CH"]},
		"patterns": {},
		"first_pitch_patterns": {"R-R|0-0": {"FF-5": 8.0, "SL-9": 2.0}},
		"count_patterns": {},
		"matchup_patterns": {},
		"optimal_zones": {"FF": {"5": 4.5}, "SL": {"9": 3.0}}
	}`)
	s := newTestServer(path)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", StartSessionRequest{
		PitcherThrows:  "R",
		BatterStand:    "R",
		PitchInventory: []string{"FF", "SL", "CH"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StartSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, "FF", resp.Recommendations[0].PitchType)
	assert.Equal(t, 5, resp.Recommendations[0].Zone)
	for i := 1; i < len(resp.Recommendations); i++ {
		assert.GreaterOrEqual(t, resp.Recommendations[i-1].Confidence, resp.Recommendations[i].Confidence)
	}
}

func TestStartSessionValidation(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	tests := []struct {
		name string
		req  StartSessionRequest
	}{
		{"bad pitcher hand", StartSessionRequest{PitcherThrows: "X", BatterStand: "R", PitchInventory: []string{"FF"}}},
		{"bad batter hand", StartSessionRequest{PitcherThrows: "R", BatterStand: "", PitchInventory: []string{"FF"}}},
		{"empty inventory", StartSessionRequest{PitcherThrows: "R", BatterStand: "L", PitchInventory: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/v1/session/start", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var apiErr APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, "invalid_request", apiErr.Code)
			assert.NotEmpty(t, apiErr.Error)
		})
	}
}

func TestStartSessionMalformedBody(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/start", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionEndpointsRejectWrongMethod(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	for _, path := range []string{"/api/v1/session/start", "/api/v1/session/pitch"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/zones", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func submitReq(balls, strikes int, result string) SubmitPitchRequest {
	return SubmitPitchRequest{
		SessionID:      "test-session",
		PitchType:      "FF",
		Zone:           5,
		Result:         result,
		CurrentCount:   models.Count{Balls: balls, Strikes: strikes},
		PitcherThrows:  "R",
		BatterStand:    "L",
		PitchInventory: []string{"FF", "SL", "CH"},
	}
}

func TestSubmitPitchWalk(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", submitReq(3, 2, "ball"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitPitchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.AtBatOver)
	assert.Equal(t, "walk", resp.AtBatResult)
	assert.Equal(t, 0, resp.Count.Balls)
	assert.Equal(t, 0, resp.Count.Strikes)
	assert.Empty(t, resp.Recommendations)
}

func TestSubmitPitchStrikeout(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", submitReq(1, 2, "swinging_strike"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitPitchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.AtBatOver)
	assert.Equal(t, "strikeout", resp.AtBatResult)
	assert.Equal(t, 0, resp.Count.Balls)
	assert.Equal(t, 0, resp.Count.Strikes)
}

func TestSubmitPitchInPlayEndsAtBat(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", submitReq(0, 0, "hit_into_play"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitPitchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.AtBatOver)
	assert.Equal(t, "in_play", resp.AtBatResult)
}

func TestSubmitPitchFoulAdvancesCount(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", submitReq(0, 1, "foul"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitPitchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.False(t, resp.AtBatOver)
	assert.Empty(t, resp.AtBatResult)
	assert.Equal(t, 0, resp.Count.Balls)
	assert.Equal(t, 2, resp.Count.Strikes)

	require.NotEmpty(t, resp.Recommendations)
	assert.LessOrEqual(t, len(resp.Recommendations), 5)
	for _, r := range resp.Recommendations {
		assert.Contains(t, []string{"FF", "SL", "CH"}, r.PitchType)
	}
}

func TestSubmitPitchFoulAtTwoStrikesContinues(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", submitReq(2, 2, "foul"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitPitchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.False(t, resp.AtBatOver)
	assert.Equal(t, 2, resp.Count.Balls)
	assert.Equal(t, 2, resp.Count.Strikes)
}

func TestSubmitPitchValidation(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	base := submitReq(1, 1, "ball")

	tests := []struct {
		name   string
		mutate func(r *SubmitPitchRequest)
	}{
		{"missing pitch type", func(r *SubmitPitchRequest) { r.PitchType = "" }},
		{"zone too low", func(r *SubmitPitchRequest) { r.Zone = 0 }},
		{"zone too high", func(r *SubmitPitchRequest) { r.Zone = 26 }},
		{"unknown result", func(r *SubmitPitchRequest) { r.Result = "pop_up" }},
		{"balls out of range", func(r *SubmitPitchRequest) { r.CurrentCount.Balls = 4 }},
		{"strikes out of range", func(r *SubmitPitchRequest) { r.CurrentCount.Strikes = 3 }},
		{"empty inventory", func(r *SubmitPitchRequest) { r.PitchInventory = nil }},
		{"bad handedness", func(r *SubmitPitchRequest) { r.BatterStand = "S" }},
		{"invalid history entry", func(r *SubmitPitchRequest) {
			r.PitchHistory = append(r.PitchHistory, models.PitchEvent{PitchType: "FF", Zone: 99, Result: "ball"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.PitchHistory = nil
			tt.mutate(&req)

			rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var apiErr APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, "invalid_request", apiErr.Code)
		})
	}
}

func TestSubmitPitchHistoryInfluencesRecommendations(t *testing.T) {
	path := writeModelFile(t, `{
		"encoders": {"pitch_types": ["FF", "SL", "CH"]},
		"patterns": {},
		"first_pitch_patterns": {},
		"count_patterns": {"0-1": {"FF-5": 6.0, "SL-9": 3.0, "CH-8": 1.0}},
		"matchup_patterns": {},
		"optimal_zones": {}
	}`)
	s := newTestServer(path)

	req := submitReq(0, 0, "called_strike")
	req.PitchHistory = []models.PitchEvent{{PitchType: "FF", Zone: 5, Result: "called_strike"}}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/session/pitch", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitPitchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.False(t, resp.AtBatOver)
	require.NotEmpty(t, resp.Recommendations)
	for _, r := range resp.Recommendations {
		if r.PitchType == "FF" {
			assert.NotEqual(t, 5, r.Zone, "already-thrown combination should not come back")
		}
	}
}

func TestZonesEndpoint(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/zones", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Zones []struct {
			Zone         int    `json:"zone"`
			Description  string `json:"description"`
			InStrikeZone bool   `json:"in_strike_zone"`
		} `json:"zones"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Zones, 25)
	for i, z := range resp.Zones {
		assert.Equal(t, i+1, z.Zone)
		assert.NotEmpty(t, z.Description)
		assert.Equal(t, z.Zone <= 9, z.InStrikeZone)
	}
	assert.Equal(t, "Strike zone: dead center", resp.Zones[4].Description)
}

func TestPitchTypesEndpoint(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/pitch-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PitchTypes []PitchTypeInfo `json:"pitch_types"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.PitchTypes, 9)
	codes := map[string]bool{}
	for _, pt := range resp.PitchTypes {
		assert.NotEmpty(t, pt.Name)
		codes[pt.Code] = true
	}
	assert.True(t, codes["FF"])
	assert.True(t, codes["SL"])
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pitch Coach API")
}

func TestModelRefreshEndpoint(t *testing.T) {
	path := writeModelFile(t, `{
		"encoders": {"pitch_types": ["FF"]},
		"patterns": {}, "first_pitch_patterns": {}, "count_patterns": {},
		"matchup_patterns": {}, "optimal_zones": {}
	}`)
	s := newTestServer(path)

	// Warm the cache, then swap the file under it.
	doJSON(t, s, http.MethodGet, "/api/v1/pitch-types", nil)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"encoders": {"pitch_types": ["FF", "SL"]},
		"patterns": {}, "first_pitch_patterns": {}, "count_patterns": {},
		"matchup_patterns": {}, "optimal_zones": {}
	}`), 0o644))

	rec := doJSON(t, s, http.MethodPost, "/api/v1/model/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/pitch-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PitchTypes []PitchTypeInfo `json:"pitch_types"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.PitchTypes, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(filepath.Join(t.TempDir(), "missing.json"))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MetricsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.System.GoVersion)
	assert.NotEmpty(t, resp.Uptime)
	assert.Nil(t, resp.Database)
}
