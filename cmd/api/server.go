package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"orderwalk/crawler"
	"orderwalk/internal/app"
	"orderwalk/internal/csvcodec"
	"orderwalk/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// CrawlRequest represents the request body for POST /crawl
type CrawlRequest struct {
	URL      string `json:"url"`
	Invoices bool   `json:"invoices"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RunStatus describes the last walk started through the API.
type RunStatus struct {
	URL        string    `json:"url"`
	Invoices   bool      `json:"invoices"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Pages      int       `json:"pages"`
	Rows       int       `json:"rows"`
	Exported   bool      `json:"exported"`
	Error      string    `json:"error,omitempty"`
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	Active   bool       `json:"active"`
	Running  bool       `json:"running"`
	Rows     int        `json:"rows"`
	Failures int        `json:"failures"`
	LastRun  *RunStatus `json:"lastRun,omitempty"`
}

// Server runs at most one walk at a time in the background
type Server struct {
	app      *app.App
	logger   *logrus.Logger
	ctx      context.Context
	openPage func(ctx context.Context, startURL string) (crawler.Page, error)

	mu      sync.Mutex
	running bool
	lastRun *RunStatus
	done    chan struct{}
}

// NewServer creates a server whose walks live as long as ctx
func NewServer(ctx context.Context, a *app.App, logger *logrus.Logger) *Server {
	return &Server{
		app:      a,
		logger:   logger,
		ctx:      ctx,
		openPage: a.OpenPage,
	}
}

// Router returns the HTTP routes of the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/metrics", promhttp.HandlerFor(s.app.Metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/health", s.handleHealth)
	r.Post("/crawl", s.handleCrawl)
	r.Get("/state", s.handleState)
	r.Get("/failures", s.handleFailures)

	return r
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req CrawlRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		req.URL = s.app.Config.StartURL
	}
	if parsed, err := url.Parse(req.URL); err != nil || parsed.Host == "" {
		s.sendError(w, "Invalid listing URL", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.sendError(w, "A walk is already running", http.StatusConflict)
		return
	}
	status := &RunStatus{URL: req.URL, Invoices: req.Invoices, StartedAt: time.Now()}
	s.running = true
	s.lastRun = status
	s.done = make(chan struct{})
	done := s.done
	started := *status
	s.mu.Unlock()

	s.logger.Infof("API request received to walk %s (invoices: %t)", req.URL, req.Invoices)
	go s.runWalk(status, done)

	s.sendJSON(w, http.StatusAccepted, APIResponse{Success: true, Data: started})
}

// runWalk drives one walk with every prompt answered yes.
func (s *Server) runWalk(status *RunStatus, done chan struct{}) {
	defer close(done)

	var (
		summary crawler.Summary
		err     error
	)
	walker, err := s.app.NewWalker(utils.AlwaysConfirm, status.Invoices)
	if err == nil {
		var page crawler.Page
		if page, err = s.openPage(s.ctx, status.URL); err == nil {
			summary, err = crawler.Run(s.ctx, walker, page, false)
		}
	}
	if err != nil {
		s.logger.Warnf("Walk of %s failed: %v", status.URL, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	status.FinishedAt = time.Now()
	status.Outcome = summary.Outcome.String()
	status.Pages = len(summary.Pages)
	status.Rows = summary.Rows()
	status.Exported = summary.Exported
	if err != nil {
		status.Error = err.Error()
	}
	s.running = false
}

// Wait blocks until the current walk, if any, has ended.
func (s *Server) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.app.State.Load(r.Context())
	if err != nil {
		s.logger.Errorf("Failed to load crawl state: %v", err)
		s.sendError(w, "Failed to load crawl state", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	resp := StateResponse{
		Active:   st.Active,
		Running:  s.running,
		Rows:     csvcodec.Rows(st.AccumulatedCSV),
		Failures: len(st.FailedSnapshots),
	}
	if s.lastRun != nil {
		last := *s.lastRun
		resp.LastRun = &last
	}
	s.mu.Unlock()

	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleFailures(w http.ResponseWriter, r *http.Request) {
	st, err := s.app.State.Load(r.Context())
	if err != nil {
		s.logger.Errorf("Failed to load crawl state: %v", err)
		s.sendError(w, "Failed to load crawl state", http.StatusInternalServerError)
		return
	}
	snapshots := st.FailedSnapshots
	if snapshots == nil {
		snapshots = []string{}
	}
	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string][]string{"snapshots": snapshots}})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}
