package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"voice-scene/internal/application"
	"voice-scene/internal/domain"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 1024
)

// HTTPSource queues utterances posted over HTTP. The same mux can carry
// extra routes (the scene endpoints) through Handle.
type HTTPSource struct {
	addr        string
	server      *http.Server
	queue       chan domain.Utterance
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	closeOnce   sync.Once
	rateLimiter *RateLimiter
	authToken   string
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		queue:       make(chan domain.Utterance, 10),
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
		authToken:   authToken,
	}
	h.mux.HandleFunc("POST /audio", h.rateLimiter.Middleware(h.requireToken(h.handleAudio)))
	h.mux.HandleFunc("POST /text", h.rateLimiter.Middleware(h.requireToken(h.handleText)))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

// Handle registers an extra route on the source's mux. It must be called
// before Start.
func (h *HTTPSource) Handle(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, handler)
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.closeOnce.Do(func() {
		close(h.queue)
	})
	h.running = false
	return nil
}

func (h *HTTPSource) NextUtterance(ctx context.Context) (domain.Utterance, error) {
	select {
	case <-ctx.Done():
		return domain.Utterance{}, ctx.Err()
	case u, ok := <-h.queue:
		if !ok {
			return domain.Utterance{}, application.ErrSourceClosed
		}
		return u, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

// Inject queues u without blocking; it reports false when the queue is full.
func (h *HTTPSource) Inject(u domain.Utterance) bool {
	select {
	case h.queue <- u:
		return true
	default:
		return false
	}
}

func (h *HTTPSource) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != h.authToken {
				h.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r, maxAudioBytes)
	if !ok {
		return
	}

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	u := domain.NewAudioUtterance(data)
	if !h.Inject(u) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received audio via HTTP", "utterance", u.ID, "bytes", len(data))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "received",
		"utterance": u.ID,
		"bytes":     len(data),
	})
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r, maxTextBytes)
	if !ok {
		return
	}

	text := string(data)
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	u := domain.NewTextUtterance(text)
	if !h.Inject(u) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received text command via HTTP", "utterance", u.ID, "text", text)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":    "received",
		"utterance": u.ID,
		"text":      text,
	})
}

// readBody reads at most limit bytes. Larger bodies are rejected with 413
// rather than truncated, so a phrase is never cut mid-character.
func (h *HTTPSource) readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("request body too large", "path", r.URL.Path, "limit", limit)
			http.Error(w, fmt.Sprintf("body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		h.logger.Error("reading request body", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	queueSize := len(h.queue)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":     status,
		"running":    running,
		"queue_size": queueSize,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
