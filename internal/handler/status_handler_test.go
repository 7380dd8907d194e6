package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatusHandler_Status(t *testing.T) {
	b := &mockBot{
		guildCountFn: func() int { return 42 },
		latencyFn:    func() time.Duration { return 37 * time.Millisecond },
	}
	h := NewStatusHandler(b)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Guilds int `json:"guilds"`
		Ping   int `json:"ping"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Guilds != 42 {
		t.Errorf("guilds = %d, want 42", body.Guilds)
	}
	if body.Ping != 37 {
		t.Errorf("ping = %d, want 37", body.Ping)
	}
}

func TestStatusHandler_Health(t *testing.T) {
	h := NewStatusHandler(&mockBot{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}
