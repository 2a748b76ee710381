package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/stereocheck/internal/app"
	"github.com/raysh454/stereocheck/internal/logging"
	"github.com/raysh454/stereocheck/internal/suites"
	"github.com/raysh454/stereocheck/internal/tracker"
)

// Server is the HTTP + WebSocket API for running suites.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	comps, err := app.NewComponents(cfg.AppConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("creating components: %w", err)
	}

	orch := app.NewOrchestrator(cfg.AppConfig, comps, logger)

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/suites", s.optionsHandler("GET"))
	r.Options("/runs", s.optionsHandler("GET"))
	r.Options("/runs/{runID}", s.optionsHandler("GET"))
	r.Options("/suites/{suite}/runs", s.optionsHandler("POST"))
	r.Options("/suites/{suite}/jobs", s.optionsHandler("POST"))
	r.Options("/runs/{runID}/drift", s.optionsHandler("GET"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	r.Get("/health", s.handleHealth)
	r.Get("/suites", s.handleListSuites)
	r.Post("/suites/{suite}/runs", s.handleRunSuite)
	r.Post("/suites/{suite}/jobs", s.handleStartJob)

	// Run history
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{runID}", s.handleGetRun)
	r.Get("/runs/{runID}/drift", s.handleGetDrift)

	// Background jobs
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for live test progress
	r.Get("/ws/runs/{suite}", s.handleRunWS)

	// API docs
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			if len(bodyBytes) > 0 {
				fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() {
	if s.orchestrator != nil {
		if err := s.orchestrator.Close(); err != nil {
			s.logger.Warn("closing orchestrator", logging.Field{Key: "error", Value: err})
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSuites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuitesResponse{
		Suites:  suites.Names(),
		BaseURL: s.orchestrator.Config().BaseURL,
	})
}

// Runs

func (s *Server) handleRunSuite(w http.ResponseWriter, r *http.Request) {
	suite := chi.URLParam(r, "suite")

	res, err := s.orchestrator.RunSuite(r.Context(), suite, nil, nil)
	if errors.Is(err, suites.ErrUnknownSuite) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Warn("running suite", logging.Field{Key: "suite", Value: suite}, logging.Field{Key: "error", Value: err})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("ran suite", logging.Field{Key: "suite", Value: suite}, logging.Field{Key: "ok", Value: res.OK})
	writeJSON(w, http.StatusOK, RunResponse{res})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	runs, err := s.orchestrator.Tracker().ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing runs", logging.Field{Key: "error", Value: err})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*tracker.Run{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")

	run, err := s.orchestrator.Tracker().GetRun(r.Context(), id)
	if errors.Is(err, tracker.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetDrift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")

	drift, err := s.orchestrator.Tracker().PageDrift(r.Context(), id)
	if errors.Is(err, tracker.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, drift)
}

// Jobs

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	suite := chi.URLParam(r, "suite")

	job, err := s.orchestrator.StartJob(r.Context(), suite)
	if errors.Is(err, suites.ErrUnknownSuite) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Nobody reads this job's events over REST; drain them so it runs to completion.
	go func() {
		for range job.Events {
		}
	}()

	s.logger.Info("started job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "suite", Value: suite})
	snap, _ := s.orchestrator.GetJob(job.ID)
	writeJSON(w, http.StatusAccepted, snap)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, ok := s.orchestrator.GetJob(jobID); !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.orchestrator.CancelJob(jobID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed jobs", logging.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

func (s *Server) handleRunWS(w http.ResponseWriter, r *http.Request) {
	suite := chi.URLParam(r, "suite")
	if _, err := suites.Lookup(suite); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.orchestrator.StartJob(r.Context(), suite)
	if err != nil {
		s.logger.Warn("starting job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started job", logging.Field{Key: "job_id", Value: job.ID})
	snap, _ := s.orchestrator.GetJob(job.ID)
	_ = conn.WriteJSON(snap)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			for range job.Events {
			}
			return
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
}
