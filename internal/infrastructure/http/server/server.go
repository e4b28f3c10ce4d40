package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/application/use_cases"
	"github.com/expricer/exclusivity-service/internal/config"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/handlers"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	cfg            *config.Config
	cache          ports.Cache
	healthHandler  *handlers.HealthHandler
	pricingHandler *handlers.PricingHandler
	saleHandler    *handlers.SaleHandler
	ledgerHandler  *handlers.LedgerHandler
	adminHandler   *handlers.AdminHandler
}

func NewServer(
	cfg *config.Config,
	ledgerRepo ports.LedgerRepository,
	cache ports.Cache,
	db *sql.DB,
	redisClient *redis.Client,
	log *logger.Logger,
) *Server {
	lockTTL := time.Duration(cfg.Ledger.LockTimeoutMS) * time.Millisecond

	quoteUseCase := use_cases.NewQuoteUseCase(ledgerRepo, cache, cfg.Product, log)
	recordSaleUseCase := use_cases.NewRecordSaleUseCase(ledgerRepo, cache, cfg.Product, log, lockTTL)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:         server,
		logger:         log,
		cfg:            cfg,
		cache:          cache,
		healthHandler:  handlers.NewHealthHandler(db, redisClient, log),
		pricingHandler: handlers.NewPricingHandler(quoteUseCase, log),
		saleHandler:    handlers.NewSaleHandler(recordSaleUseCase, ledgerRepo, log),
		ledgerHandler:  handlers.NewLedgerHandler(ledgerRepo, cfg.Product, log),
		adminHandler:   handlers.NewAdminHandler(ledgerRepo, cache, log),
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
