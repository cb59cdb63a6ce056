package server

import (
	"database/sql"
	"net/http"

	"showdown-vote/internal/config"
	"showdown-vote/internal/constants"
	"showdown-vote/internal/metrics"
	"showdown-vote/internal/middleware"
	"showdown-vote/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type Server struct {
	ingestSvc *service.IngestService
	viewSvc   *service.ViewService
	voteSvc   *service.VoteService
	userSvc   *service.UserService
	db        *sql.DB
	cfg       *config.Config
	metrics   *metrics.Metrics
	limiter   *middleware.RateLimiter
	logger    zerolog.Logger
}

func NewServer(
	ingestSvc *service.IngestService,
	viewSvc *service.ViewService,
	voteSvc *service.VoteService,
	userSvc *service.UserService,
	db *sql.DB,
	cfg *config.Config,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	return &Server{
		ingestSvc: ingestSvc,
		viewSvc:   viewSvc,
		voteSvc:   voteSvc,
		userSvc:   userSvc,
		db:        db,
		cfg:       cfg,
		metrics:   m,
		limiter:   middleware.NewRateLimiter(cfg.VoteRateLimit, constants.VoteRateWindow),
		logger:    logger,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/ready", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.Handle("/api/relay/state", middleware.RelayAuth(s.cfg.RelayKey)(http.HandlerFunc(s.handleRelayState))).Methods(http.MethodPost)

	r.HandleFunc("/api/public/state", s.handlePublicState).Methods(http.MethodGet)
	r.HandleFunc("/api/current-showdown", s.handleCurrentShowdown).Methods(http.MethodGet)

	r.Handle("/api/vote", s.limiter.Middleware(http.HandlerFunc(s.handleVote))).Methods(http.MethodPost)
	r.HandleFunc("/api/results/{showdownId}", s.handleResults).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

// Handler is the full HTTP stack: CORS, request ids, request metrics and the router.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", constants.RelayKeyHeader, constants.RequestIDHeader},
		ExposedHeaders: []string{constants.RequestIDHeader},
	})

	router := s.Router()
	return c.Handler(middleware.RequestID(s.logger)(middleware.Metrics(s.metrics, router)(router)))
}
