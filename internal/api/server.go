package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"call-insights-go/internal/insights"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/store"
	"call-insights-go/internal/types"
)

// Processor runs one call through the pipeline.
type Processor interface {
	Process(ctx context.Context, rec types.CallRecord) (types.CallAnalysis, error)
}

// Repository is what the handlers need from the store.
type Repository interface {
	SaveAnalysis(ctx context.Context, a types.CallAnalysis) error
	GetAnalysis(ctx context.Context, callID string) (types.CallAnalysis, error)
	ListRecent(ctx context.Context, limit int) ([]types.CallAnalysis, error)
}

// Publisher emits completed analyses; nil when NATS is not configured.
type Publisher interface {
	PublishCompleted(a types.CallAnalysis) error
}

type Server struct {
	router    *chi.Mux
	processor Processor
	repo      Repository // nil when no database is configured
	publisher Publisher  // nil when NATS is not configured
	log       *logger.Logger
}

func NewServer(processor Processor, repo Repository, publisher Publisher) *Server {
	s := &Server{
		processor: processor,
		repo:      repo,
		publisher: publisher,
		log:       logger.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.health)
	r.Post("/process", s.process)
	r.Get("/calls", s.listCalls)
	r.Get("/calls/{callID}", s.getCall)
	r.Get("/insights", s.insights)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.log.WithField("addr", addr).Info("listening")
	return srv.ListenAndServe()
}

type processRequest struct {
	CallID     string `json:"call_id,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "process")

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reqLog.WithError(err).Warn("bad request body")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AudioURL == "" && req.Transcript == "" {
		reqLog.Warn("missing audio_url and transcript")
		writeError(w, http.StatusBadRequest, "audio_url or transcript is required")
		return
	}

	rec := types.CallRecord{
		CallID:     req.CallID,
		AudioURL:   req.AudioURL,
		Transcript: req.Transcript,
	}

	start := time.Now()
	analysis, err := s.processor.Process(r.Context(), rec)
	reqLog = reqLog.WithField("duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		reqLog.WithError(err).Warn("pipeline returned error")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.repo != nil {
		if err := s.repo.SaveAnalysis(r.Context(), analysis); err != nil {
			reqLog.WithError(err).Error("failed to persist analysis")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCompleted(analysis); err != nil {
			reqLog.WithError(err).Warn("failed to publish completed event")
		}
	}

	reqLog.WithField("call_id", analysis.Call.CallID).Info("call processed")
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) getCall(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "get_call")
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}
	callID := chi.URLParam(r, "callID")
	analysis, err := s.repo.GetAnalysis(r.Context(), callID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}
	if err != nil {
		reqLog.WithError(err).Error("store lookup failed")
		writeError(w, http.StatusInternalServerError, "store lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) listCalls(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "list_calls")
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}
	limit := 50
	analyses, err := s.repo.ListRecent(r.Context(), limit)
	if err != nil {
		reqLog.WithError(err).Error("store list failed")
		writeError(w, http.StatusInternalServerError, "store list failed")
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "insights")
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no database configured")
		return
	}
	analyses, err := s.repo.ListRecent(r.Context(), 200)
	if err != nil {
		reqLog.WithError(err).Error("store list failed")
		writeError(w, http.StatusInternalServerError, "store list failed")
		return
	}
	sum := insights.Aggregate(analyses)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":     sum,
		"action_card": insights.GenerateCard(sum),
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
