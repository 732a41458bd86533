package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parrisma/gofr-iq-sub004/internal/config"
	"github.com/parrisma/gofr-iq-sub004/internal/domain"
	"github.com/parrisma/gofr-iq-sub004/internal/feed"
	"github.com/parrisma/gofr-iq-sub004/internal/telemetry/metrics"
)

type stubEngine struct {
	lastReq feed.Request
	resp    *domain.FeedResponse
	err     error
}

func (s *stubEngine) GetFeed(ctx context.Context, req feed.Request) (*domain.FeedResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestServer(engine *stubEngine) *Server {
	return NewServer(engine, config.Default(), nil)
}

func TestHandleFeed_OK(t *testing.T) {
	engine := &stubEngine{resp: &domain.FeedResponse{
		ClientID: "c-1",
		Items: []domain.FeedItem{
			{
				DocumentGUID:   "doc-1",
				Title:          "GTX beats guidance",
				Channel:        domain.ChannelMaintenance,
				RelevanceScore: 0.91,
				DiscoveredVia:  domain.PathDirect,
				ExpandedFrom:   "GTX",
				CreatedAt:      time.Now(),
			},
		},
		TotalCandidatesConsidered: 12,
		TotalAfterFilter:          5,
	}}
	srv := newTestServer(engine)

	req := httptest.NewRequest("GET", "/v1/feed/c-1?limit=5&channel=MAINTENANCE&q=chips", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	assert.Equal(t, "c-1", engine.lastReq.ClientID)
	assert.Equal(t, 5, engine.lastReq.Limit)
	assert.Equal(t, "MAINTENANCE", engine.lastReq.Channel)
	assert.Equal(t, "chips", engine.lastReq.Query)

	var resp domain.FeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "doc-1", resp.Items[0].DocumentGUID)
	assert.Equal(t, 12, resp.TotalCandidatesConsidered)
}

func TestHandleFeed_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: c-404", domain.ErrClientNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad limit", domain.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: both stores down", domain.ErrServiceUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		srv := newTestServer(&stubEngine{err: tc.err})
		req := httptest.NewRequest("GET", "/v1/feed/c-1", nil)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())

		var er errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
		assert.Equal(t, tc.status, er.Code)
	}
}

func TestHandleFeed_MalformedLimit(t *testing.T) {
	srv := newTestServer(&stubEngine{resp: &domain.FeedResponse{}})

	req := httptest.NewRequest("GET", "/v1/feed/c-1?limit=lots", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFeed_NonPositiveLimit(t *testing.T) {
	for _, raw := range []string{"0", "-3"} {
		engine := &stubEngine{resp: &domain.FeedResponse{}}
		srv := newTestServer(engine)

		req := httptest.NewRequest("GET", "/v1/feed/c-1?limit="+raw, nil)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)
		assert.Empty(t, engine.lastReq.ClientID, "engine must not be reached for limit=%s", raw)
	}
}

func TestRequestDurationObserved(t *testing.T) {
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	srv := NewServer(&stubEngine{resp: &domain.FeedResponse{}}, config.Default(), reg)

	req := httptest.NewRequest("GET", "/v1/feed/c-1", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(reg.FeedDuration), "duration histogram should record the request")
}

func TestHandleFeedQuery_PostBody(t *testing.T) {
	engine := &stubEngine{resp: &domain.FeedResponse{ClientID: "c-1"}}
	srv := newTestServer(engine)

	body := `{"query":"grid storage","embedding":[0.1,0.2],"limit":7,"channel":"OPPORTUNITY"}`
	req := httptest.NewRequest("POST", "/v1/feed/c-1/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []float64{0.1, 0.2}, engine.lastReq.QueryEmbedding)
	assert.Equal(t, 7, engine.lastReq.Limit)
	assert.Equal(t, "OPPORTUNITY", engine.lastReq.Channel)
}

func TestHandleFeedQuery_BadBody(t *testing.T) {
	srv := newTestServer(&stubEngine{resp: &domain.FeedResponse{}})

	req := httptest.NewRequest("POST", "/v1/feed/c-1/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubEngine{})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(&stubEngine{})

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}
	srv := NewServer(&stubEngine{resp: &domain.FeedResponse{}}, cfg, nil)

	var limited bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst exhaustion should trip the limiter")
}
