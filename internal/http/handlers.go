package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dompet/internal/log"
	"dompet/internal/middleware/trace"
	"dompet/internal/services"
)

type messageRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type messageResponse struct {
	MessageID string `json:"message_id"`
	Reply     string `json:"reply"`
	Replied   bool   `json:"replied"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var req messageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "message too large"})
			return
		}
		logger.WarnContext(ctx, "Rejected malformed message", log.FieldError, err.Error())
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}

	// budget per chat sender; anonymous callers share their client IP
	key := strings.TrimSpace(req.Sender)
	if key == "" {
		key = s.clientIP(r)
	}
	if !s.limiter.Allow(key) {
		logger.WarnContext(ctx, "Rate limit exceeded", log.FieldSender, key)
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
		return
	}

	msg := services.Message{
		ID:     trace.GetRequestID(ctx),
		Sender: req.Sender,
		Text:   req.Text,
	}
	reply, ok := s.handler.Handle(ctx, msg)
	writeJSON(w, http.StatusOK, messageResponse{MessageID: msg.ID, Reply: reply, Replied: ok})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady probes every registered dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}
