package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/config"
	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
	"github.com/expricer/exclusivity-service/internal/infrastructure/http/server"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/infrastructure/persistence/fs"
	"github.com/expricer/exclusivity-service/internal/infrastructure/persistence/postgres"
	"github.com/expricer/exclusivity-service/internal/infrastructure/persistence/redis"
	"github.com/expricer/exclusivity-service/internal/infrastructure/scheduler"
	"github.com/expricer/exclusivity-service/internal/pkg/clock"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()
	log.Info("Starting Exclusivity Pricing Service")

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}

	clk := clock.NewRealClock()

	var ledgerRepo ports.LedgerRepository
	var db *sql.DB

	switch cfg.Ledger.Backend {
	case config.LedgerBackendPostgres:
		conn, dbErr := postgres.NewConnection(cfg.Database)
		if dbErr != nil {
			log.Fatal("Failed to connect to database", "error", dbErr)
		}
		defer conn.Close()
		db = conn.GetDB()

		if migrationErr := postgres.RunMigrations(cfg.Database, log); migrationErr != nil {
			log.Fatal("Failed to run migrations", "error", migrationErr)
		}

		ledgerRepo = postgres.NewLedgerRepository(conn, cfg.Product.MaxCopies, clk)

	case config.LedgerBackendFile:
		lockTimeout := time.Duration(cfg.Ledger.LockTimeoutMS) * time.Millisecond
		store, storeErr := fs.NewLedgerStore(cfg.Ledger.StatePath, cfg.Product.MaxCopies, lockTimeout, clk)
		if storeErr != nil {
			if errors.Is(storeErr, domainErrors.ErrLedgerCorrupted) {
				log.Fatal("Ledger state file is corrupted; refusing to start with a fresh ledger", "error", storeErr)
			}
			log.Fatal("Failed to open ledger state file", "error", storeErr)
		}
		ledgerRepo = store
	}

	redisConn, redisErr := redis.NewConnection(cfg.Redis)
	if redisErr != nil {
		log.Fatal("Failed to connect to Redis", "error", redisErr)
	}
	defer redisConn.Close()

	cache := redis.NewCache(redisConn, log)

	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	if db != nil {
		dbMetricsCollector := monitoring.NewDBMetricsCollector(db)
		dbMetricsCollector.StartCollecting(serverCtx, 30*time.Second)
	}

	ledgerMonitor := scheduler.NewLedgerMonitor(ledgerRepo, cfg.Product, log, 30*time.Second)
	go ledgerMonitor.Start(serverCtx)

	var redisClient *goredis.Client
	if redisConn != nil {
		redisClient = redisConn.GetClient()
	}

	httpServer := server.NewServer(cfg, ledgerRepo, cache, db, redisClient, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		log.Info("Shutting down server...")
		ledgerMonitor.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	log.Info("Server starting",
		"address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"ledger_backend", cfg.Ledger.Backend,
		"product", cfg.Product.Name,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
