package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/apperr"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/tokenstore"
)

// maxRosterSize bounds the uploaded roster file.
const maxRosterSize = 10 << 20

// Server carries the handler dependencies.
type Server struct {
	log    *logrus.Logger
	client *gitmetrics.Client
	holder *tokenstore.Holder
	gql    gitmetrics.GraphQLClient
	now    func() time.Time
}

// New wires a Server. The clock defaults to time.Now and exists as a seam
// for deterministic handler tests.
func New(log *logrus.Logger, client *gitmetrics.Client, holder *tokenstore.Holder, gql gitmetrics.GraphQLClient) *Server {
	return &Server{
		log:    log,
		client: client,
		holder: holder,
		gql:    gql,
		now:    time.Now,
	}
}

// Router builds the HTTP surface consumed by the dashboard frontend.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/teams", s.handleRosterUpload).Methods(http.MethodPost)
	api.HandleFunc("/metrics/commits", s.handleCommitMetrics).Methods(http.MethodGet)
	api.HandleFunc("/metrics/quality", s.handleQuality).Methods(http.MethodGet)
	api.HandleFunc("/metrics/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/repo", s.handleRepoSummary).Methods(http.MethodGet)
	api.HandleFunc("/token", s.handleTokenValidate).Methods(http.MethodPost)
	api.HandleFunc("/token", s.handleTokenState).Methods(http.MethodGet)
	api.HandleFunc("/token", s.handleTokenClear).Methods(http.MethodDelete)

	return r
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("server is running")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

func (s *Server) respond(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apperr.FromError(err)
	s.log.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"status": apiErr.Status,
		"code":   apiErr.Code,
	}).WithError(err).Warn("request failed")
	apperr.Write(w, err)
}
