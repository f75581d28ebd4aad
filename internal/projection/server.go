package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/greenpill-dev-guild/garden-indexer/internal/metrics"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// Ingestor accepts raw events from the event-delivery substrate. The HTTP
// server forwards POSTed events to it; ordering within a chain is the
// substrate's responsibility.
type Ingestor interface {
	Submit(raw *models.RawEvent) error
}

// HTTPServer serves the query API, health and metrics endpoints, and the
// optional event ingestion boundary.
type HTTPServer struct {
	config     *ServerConfig
	server     *http.Server
	router     *mux.Router
	projection Projection
	ingestor   Ingestor
	metrics    *metrics.Manager
	logger     *logrus.Logger
}

// NewHTTPServer creates the query API server. ingestor and metricsManager
// may be nil; the corresponding endpoints are then not registered.
func NewHTTPServer(config *ServerConfig, proj Projection, ingestor Ingestor, metricsManager *metrics.Manager) *HTTPServer {
	s := &HTTPServer{
		config:     config,
		projection: proj,
		ingestor:   ingestor,
		metrics:    metricsManager,
		logger:     utils.GetLogger(),
	}

	s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/actions", s.handleListActions).Methods(http.MethodGet)
	api.HandleFunc("/actions/{key}", s.handleGetAction).Methods(http.MethodGet)
	api.HandleFunc("/gardens", s.handleListGardens).Methods(http.MethodGet)
	api.HandleFunc("/gardens/{key}", s.handleGetGarden).Methods(http.MethodGet)
	api.HandleFunc("/gardeners", s.handleListGardeners).Methods(http.MethodGet)
	api.HandleFunc("/gardeners/{key}", s.handleGetGardener).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	if s.ingestor != nil {
		api.HandleFunc("/events", s.handleIngestEvent).Methods(http.MethodPost)
	}
}

// Start starts serving in the background
func (s *HTTPServer) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying router, used by tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleListActions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.projection.Actions(r.Context(), chainIDParam(r))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, actions)
}

func (s *HTTPServer) handleGetAction(w http.ResponseWriter, r *http.Request) {
	action, err := s.projection.Action(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if action == nil {
		s.writeError(w, http.StatusNotFound, utils.NewAppError(utils.ErrCodeNotFound, "Action not found", ""))
		return
	}
	s.writeJSON(w, http.StatusOK, action)
}

func (s *HTTPServer) handleListGardens(w http.ResponseWriter, r *http.Request) {
	gardens, err := s.projection.Gardens(r.Context(), chainIDParam(r))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gardens)
}

func (s *HTTPServer) handleGetGarden(w http.ResponseWriter, r *http.Request) {
	garden, err := s.projection.Garden(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if garden == nil {
		s.writeError(w, http.StatusNotFound, utils.NewAppError(utils.ErrCodeNotFound, "Garden not found", ""))
		return
	}
	s.writeJSON(w, http.StatusOK, garden)
}

func (s *HTTPServer) handleListGardeners(w http.ResponseWriter, r *http.Request) {
	gardeners, err := s.projection.Gardeners(r.Context(), chainIDParam(r))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gardeners)
}

func (s *HTTPServer) handleGetGardener(w http.ResponseWriter, r *http.Request) {
	gardener, err := s.projection.Gardener(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if gardener == nil {
		s.writeError(w, http.StatusNotFound, utils.NewAppError(utils.ErrCodeNotFound, "Gardener not found", ""))
		return
	}
	s.writeJSON(w, http.StatusOK, gardener)
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.projection.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if s.metrics != nil {
		s.metrics.UpdateEntityCounts(stats)
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *HTTPServer) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	var raw models.RawEvent
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest,
			utils.NewAppError(utils.ErrCodeValidation, "Invalid event payload", err.Error()))
		return
	}
	if raw.ChainID == 0 || raw.EventName == "" {
		s.writeError(w, http.StatusBadRequest,
			utils.NewAppError(utils.ErrCodeValidation, "chain_id and event_name are required", ""))
		return
	}

	if err := s.ingestor.Submit(&raw); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func chainIDParam(r *http.Request) uint64 {
	raw := r.URL.Query().Get("chain_id")
	if raw == "" {
		return 0
	}
	chainID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return chainID
}
