package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dompet/internal/log"
	"dompet/internal/services"
)

type recordingHandler struct {
	mu    sync.Mutex
	seen  []services.Message
	reply string
	ok    bool
}

func (h *recordingHandler) Handle(_ context.Context, msg services.Message) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, msg)
	return h.reply, h.ok
}

func newTestServer(t *testing.T, h Handler, rpm int) *Server {
	t.Helper()
	srv, err := NewServer(Options{Addr: ":0", AcceptMessages: true, RequestsPerMinute: rpm}, h, log.Discard())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func post(srv *Server, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleMessage(t *testing.T) {
	h := &recordingHandler{reply: "Saldo pocket utama", ok: true}
	srv := newTestServer(t, h, 10)

	rr := post(srv, `{"sender":"628111","text":"saldo pocket utama"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp messageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "Saldo pocket utama" || !resp.Replied {
		t.Errorf("response = %+v", resp)
	}
	if len(h.seen) != 1 || h.seen[0].Sender != "628111" || h.seen[0].Text != "saldo pocket utama" {
		t.Fatalf("handler saw %+v", h.seen)
	}
	if h.seen[0].ID == "" || h.seen[0].ID != resp.MessageID {
		t.Errorf("message id %q should match response %q", h.seen[0].ID, resp.MessageID)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestHandleMessageIgnoredChatter(t *testing.T) {
	srv := newTestServer(t, &recordingHandler{}, 10)
	rr := post(srv, `{"sender":"628111","text":"halo semua"}`)

	var resp messageResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if rr.Code != http.StatusOK || resp.Replied || resp.Reply != "" {
		t.Errorf("status = %d, response = %+v", rr.Code, resp)
	}
}

func TestHandleMessageRejections(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"bad json", http.MethodPost, `{"text":`, http.StatusBadRequest},
		{"empty text", http.MethodPost, `{"sender":"a","text":"   "}`, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"text":"` + strings.Repeat("a", defaultMaxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{ok: true}
			srv := newTestServer(t, h, 10)
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, httptest.NewRequest(tt.method, "/messages", strings.NewReader(tt.body)))
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if len(h.seen) != 0 {
				t.Error("handler must not run for rejected requests")
			}
		})
	}
}

func TestHandleMessageRateLimitPerSender(t *testing.T) {
	h := &recordingHandler{ok: true}
	srv := newTestServer(t, h, 2)

	for i := 0; i < 2; i++ {
		if rr := post(srv, `{"sender":"628111","text":"list pocket"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rr.Code)
		}
	}
	rr := post(srv, `{"sender":"628111","text":"list pocket"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Errorf("status = %d, Retry-After = %q", rr.Code, rr.Header().Get("Retry-After"))
	}
	if rr := post(srv, `{"sender":"628222","text":"list pocket"}`); rr.Code != http.StatusOK {
		t.Errorf("other sender status = %d", rr.Code)
	}
	if len(h.seen) != 3 {
		t.Errorf("handler calls = %d, want 3", len(h.seen))
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, &recordingHandler{}, 10)
	srv.AddReadinessCheck("ledger", func(context.Context) error { return nil })

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}

	srv.AddReadinessCheck("broker", func(context.Context) error { return errors.New("connection closed") })
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rr.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "not_ready" || body.Checks["ledger"] != "ok" || !strings.HasPrefix(body.Checks["broker"], "failed") {
		t.Errorf("body = %+v", body)
	}
}

func TestMessagesRouteDisabled(t *testing.T) {
	srv, err := NewServer(Options{Addr: ":0"}, &recordingHandler{ok: true}, log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	rr := post(srv, `{"sender":"628111","text":"list pocket"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when the HTTP channel is off", rr.Code)
	}
}

func TestNewServerRejectsBadProxyList(t *testing.T) {
	if _, err := NewServer(Options{TrustedProxies: []string{"nope"}}, &recordingHandler{}, log.Discard()); err == nil {
		t.Error("expected error for invalid trusted proxy")
	}
}
