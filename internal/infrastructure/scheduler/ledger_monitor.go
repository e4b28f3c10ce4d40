package scheduler

import (
	"context"
	"time"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	"github.com/expricer/exclusivity-service/internal/config"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

// LedgerMonitor keeps the ledger gauges fresh even when no writes arrive,
// so dashboards reflect the durable state and not just the last mutation.
type LedgerMonitor struct {
	ledgerRepo ports.LedgerRepository
	product    config.ProductConfig
	logger     *logger.Logger
	interval   time.Duration
	stopChan   chan struct{}
}

func NewLedgerMonitor(
	ledgerRepo ports.LedgerRepository,
	product config.ProductConfig,
	log *logger.Logger,
	interval time.Duration,
) *LedgerMonitor {
	return &LedgerMonitor{
		ledgerRepo: ledgerRepo,
		product:    product,
		logger:     log,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

func (m *LedgerMonitor) Start(ctx context.Context) {
	m.logger.Info("Starting ledger monitor", "interval", m.interval.String())

	m.refresh(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Ledger monitor stopped")
			return
		case <-m.stopChan:
			m.logger.Info("Ledger monitor stopped")
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *LedgerMonitor) Stop() {
	close(m.stopChan)
}

func (m *LedgerMonitor) refresh(ctx context.Context) {
	state, err := m.ledgerRepo.Snapshot(ctx)
	if err != nil {
		m.logger.Error("Failed to refresh ledger metrics", "error", err.Error())
		return
	}

	monitoring.UpdateLedgerCounts(m.product.MaxCopies, state.CopiesSold, state.TotalRevenue)
}
