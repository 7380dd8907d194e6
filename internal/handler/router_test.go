package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/takumi/shiftgate/internal/bot"
	"github.com/takumi/shiftgate/internal/metrics"
	"github.com/takumi/shiftgate/internal/middleware"
	"github.com/takumi/shiftgate/internal/model"
)

// mockTokenStore はミドルウェアのTokenFinderを満たすモック実装。
type mockTokenStore struct {
	tokens map[string]*model.APIToken
}

func (m *mockTokenStore) FindByToken(ctx context.Context, token string) (*model.APIToken, error) {
	return m.tokens[token], nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(1000, 1000))
	t.Cleanup(rl.Stop)

	tokenStore := &mockTokenStore{tokens: map[string]*model.APIToken{
		"dyn-token": {
			ID:         "10.0.0.1",
			Token:      "dyn-token",
			ExpiresAt:  time.Now().Unix() + 3600,
			LinkString: "link-1",
		},
	}}

	deps := &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		TokenAuth:         middleware.NewTokenAuth(tokenStore, "static-secret", collector),
		Collector:         collector,
		Gatherer:          reg,
		Bot: &mockBot{
			guildCountFn: func() int { return 3 },
			latencyFn:    func() time.Duration { return 20 * time.Millisecond },
			guildFn: func(id string) *bot.Guild {
				if id == "100" {
					return &bot.Guild{ID: "100", Name: "Alpha", OwnerID: "owner"}
				}
				return nil
			},
		},
		AuthService: &mockAuthService{},
		TokenFinder: &mockTokenFinderByClient{},
		PrivateKey:  "private-key",
		Links: &mockLinkStringFinder{
			findByIDFn: func(ctx context.Context, id string) (*model.LinkString, error) {
				if id == "link-1" {
					return &model.LinkString{ID: id, Guild: "100"}, nil
				}
				return nil, nil
			},
		},
		Fivem:        &mockFivemLinkFinder{},
		Settings:     &mockSettingsStore{},
		ShiftService: &mockShiftService{},
	}

	return NewRouter(deps)
}

func TestRouter_RouteTable(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		headers  map[string]string
		wantCode int
	}{
		{name: "status is open", method: http.MethodGet, path: "/status", wantCode: http.StatusOK},
		{name: "health is open", method: http.MethodGet, path: "/health", wantCode: http.StatusOK},
		{name: "metrics is open", method: http.MethodGet, path: "/metrics", wantCode: http.StatusOK},
		{
			name:     "deprecated warnings endpoint",
			method:   http.MethodPost,
			path:     "/get_last_warnings",
			body:     `{"guild": "100"}`,
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "get_token rejects wrong key",
			method:   http.MethodGet,
			path:     "/get_token",
			headers:  map[string]string{"Authorization": "wrong"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "get_token accepts private key",
			method:   http.MethodGet,
			path:     "/get_token",
			headers:  map[string]string{"Authorization": "private-key"},
			wantCode: http.StatusOK,
		},
		{
			name:     "protected route rejects missing header",
			method:   http.MethodGet,
			path:     "/get_online_staff",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "protected route accepts dynamic token",
			method:   http.MethodGet,
			path:     "/get_online_staff",
			headers:  map[string]string{"Authorization": "dyn-token"},
			wantCode: http.StatusOK,
		},
		{
			name:     "get_link_string rejects static token",
			method:   http.MethodGet,
			path:     "/get_link_string",
			headers:  map[string]string{"Authorization": "static-secret"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown route",
			method:   http.MethodGet,
			path:     "/no_such_route",
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reader io.Reader
			if tt.body != "" {
				reader = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, reader)
			req.RemoteAddr = "10.0.0.9:4000"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestRouter_PreflightHandledByCORS(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/duty_on", nil)
	req.RemoteAddr = "10.0.0.9:4000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
