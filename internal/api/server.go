package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/config"
	"github.com/user/agentlink-service/internal/links"
	"github.com/user/agentlink-service/internal/monitoring"
	"github.com/user/agentlink-service/internal/notify"
	"github.com/user/agentlink-service/internal/qc"
	"github.com/user/agentlink-service/internal/scraper"
	"github.com/user/agentlink-service/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	resolver   *links.Resolver
	qcService  *qc.Service
	scraper    *scraper.Scraper
	pgStore    *storage.PostgresStore
	redisStore *storage.RedisStore
	notifier   *notify.Telegram
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(
	cfg *config.Config,
	resolver *links.Resolver,
	qcService *qc.Service,
	sc *scraper.Scraper,
	ps *storage.PostgresStore,
	rs *storage.RedisStore,
	notifier *notify.Telegram,
	m *monitoring.Metrics,
	l *zap.Logger,
) *Server {
	s := &Server{
		config:     cfg,
		resolver:   resolver,
		qcService:  qcService,
		scraper:    sc,
		pgStore:    ps,
		redisStore: rs,
		notifier:   notifier,
		metrics:    m,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	// WriteTimeout must outlast the router's request timeout: QC
	// retrievals retry until the request context cancels them.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
