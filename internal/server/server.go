// Package server exposes the generation pipeline over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/backend"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/pipeline"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/publish"
)

// Server handles the HTTP API around a pipeline.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	mux      *http.ServeMux
}

// New builds a Server and registers its routes.
func New(cfg *config.Config, p *pipeline.Pipeline) *Server {
	s := &Server{cfg: cfg, pipeline: p, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/batch", s.handleBatch)
	s.mux.HandleFunc("POST /api/publish", s.handlePublish)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe blocks serving the API until the context is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Seed) == "" {
		writeError(w, http.StatusBadRequest, "seed is required")
		return
	}

	res, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		logger.Error("generation request failed", err, "seed", req.Seed)
		if errors.Is(err, backend.ErrAllBackendsFailed) {
			// Internal backend details stay in the logs.
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":    backend.ErrAllBackendsFailed.Error(),
				"attempts": res.Attempts,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Requests []pipeline.Request `json:"requests"`
}

// handleBatch kicks off a background batch run and returns immediately.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "requests must not be empty")
		return
	}

	delay := config.Duration(s.cfg.Batch.Delay, 5*time.Second)
	runner := pipeline.NewBatchRunner(s.pipeline, delay)
	runner.Start(context.Background(), req.Requests, func(results []pipeline.BatchResult) {
		var failed int
		for _, res := range results {
			if res.Err != "" {
				failed++
			}
		}
		logger.Info("batch finished", "total", len(results), "failed", failed)
	})

	writeJSON(w, http.StatusAccepted, map[string]any{
		"accepted": len(req.Requests),
		"delay":    delay.String(),
	})
}

type publishRequest struct {
	Platform    string    `json:"platform"`
	Post        core.Post `json:"post"`
	AccessToken string    `json:"access_token,omitempty"` // Blogger OAuth token
	IsDraft     bool      `json:"is_draft,omitempty"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Post.Title == "" || req.Post.Content == "" {
		writeError(w, http.StatusBadRequest, "post title and content are required")
		return
	}

	var (
		publisher publish.Publisher
		err       error
	)
	switch req.Platform {
	case "blogger":
		publisher, err = publish.NewBlogger(s.cfg.Publish.Blogger, req.AccessToken, req.IsDraft)
	case "wordpress":
		publisher, err = publish.NewWordPress(s.cfg.Publish.WordPress, req.IsDraft)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported platform: %q", req.Platform))
		return
	}
	if err != nil {
		if errors.Is(err, publish.ErrNotConfigured) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "publisher setup failed")
		return
	}

	receipt, err := publisher.Publish(r.Context(), req.Post)
	if err != nil {
		logger.Error("publish request failed", err, "platform", req.Platform, "post_id", req.Post.ID)
		writeError(w, http.StatusBadGateway, "publish failed")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
