package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parrisma/gofr-iq-sub004/internal/feed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleFeedStream serves GET /v1/feed/{client_id}/stream: a websocket that
// pushes a freshly assembled feed on every tick. Each push re-runs the full
// request pipeline, so portfolio mutations show up on the next tick without
// any cache invalidation.
func (s *Server) handleFeedStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.feedRequest(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	clientID := mux.Vars(r)["client_id"]
	log.Info().Str("client", clientID).Msg("feed stream opened")

	interval := s.feedCfg.StreamInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Reader goroutine only to surface client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() bool {
		resp, err := s.engine.GetFeed(r.Context(), feed.Request{
			ClientID: req.ClientID,
			Query:    req.Query,
			Limit:    req.Limit,
			Channel:  req.Channel,
		})
		if err != nil {
			log.Warn().Err(err).Str("client", clientID).Msg("stream refresh failed")
			return true // transient failure, keep the stream alive
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(resp); err != nil {
			return false
		}
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-done:
			log.Info().Str("client", clientID).Msg("feed stream closed by client")
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if !push() {
				return
			}
		}
	}
}
