package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/feed"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: status, RequestID: requestID(r)})
}

// writeEngineError maps the boundary error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("feed request failed")
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}

// handleFeed serves GET /v1/feed/{client_id}?limit=&channel=&q=.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	req, ok := s.feedRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.engine.GetFeed(r.Context(), req)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// feedQueryBody is the POST body for explicit-embedding queries.
type feedQueryBody struct {
	Query     string    `json:"query,omitempty"`
	Embedding []float64 `json:"embedding,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Channel   string    `json:"channel,omitempty"`
}

// handleFeedQuery serves POST /v1/feed/{client_id}/query with an explicit
// query embedding in the body.
func (s *Server) handleFeedQuery(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["client_id"]

	var body feedQueryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	resp, err := s.engine.GetFeed(r.Context(), feed.Request{
		ClientID:       clientID,
		Query:          body.Query,
		QueryEmbedding: body.Embedding,
		Limit:          body.Limit,
		Channel:        body.Channel,
	})
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// feedRequest parses the common query parameters. Malformed or non-positive
// limits are rejected here; an absent limit stays 0 so the engine applies the
// configured default. Channel validation is the engine's job.
func (s *Server) feedRequest(w http.ResponseWriter, r *http.Request) (feed.Request, bool) {
	clientID := mux.Vars(r)["client_id"]
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit must be an integer")
			return feed.Request{}, false
		}
		if parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be positive")
			return feed.Request{}, false
		}
		limit = parsed
	}

	return feed.Request{
		ClientID: clientID,
		Query:    q.Get("q"),
		Limit:    limit,
		Channel:  q.Get("channel"),
	}, true
}
