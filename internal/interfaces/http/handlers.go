package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/gridpulse/internal/market"
)

// errorBody is the JSON shape for every non-2xx response.
type errorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleMarketData(w http.ResponseWriter, r *http.Request) {
	b, err := s.reader.Latest()
	if err != nil {
		s.writeNotReady(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b.Snapshot)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	b, err := s.reader.Latest()
	if err != nil {
		s.writeNotReady(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b.Signals)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	b, err := s.reader.Latest()
	if err != nil {
		s.writeNotReady(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b.Alerts)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	b, err := s.reader.Latest()
	if err != nil {
		s.writeNotReady(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b.Predictions)
}

// handleRefresh queues a coalesced manual refresh. 202 either way a
// request is absorbed; 429 only when the rate limiter rejects it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.writeJSON(w, http.StatusTooManyRequests, errorBody{
			Error:     "refresh rate limit exceeded",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	queued := s.reader.TriggerRefresh()
	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "accepted",
		"queued": queued,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "healthy"
	var sequence uint64
	var generatedAt string
	if b, err := s.reader.Latest(); err == nil {
		sequence = b.Sequence
		generatedAt = b.GeneratedAt.UTC().Format(time.RFC3339)
	} else {
		status = "warming_up"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"service":      "gridpulse",
		"sequence":     sequence,
		"generated_at": generatedAt,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, http.StatusNotFound, errorBody{
		Error:     "not found",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeNotReady distinguishes "no data yet" from an empty result so a
// cold start can't be misread as a quiet market.
func (s *Server) writeNotReady(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, market.ErrNotReady) {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, errorBody{
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Response encode failed")
	}
}
