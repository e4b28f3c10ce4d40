package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
	"github.com/expricer/exclusivity-service/internal/domain/ledger"
	"github.com/expricer/exclusivity-service/internal/pkg/clock"
	"github.com/expricer/exclusivity-service/internal/pkg/generator"
)

// persistedState is the on-disk shape of the ledger. Field names are kept
// stable so state files written by earlier deployments keep loading:
// history entries may carry session_id instead of transaction_id and
// integer unix timestamps, and missing fields default to zero rather than
// failing.
type persistedState struct {
	CopiesSold   int               `json:"copies_sold"`
	TotalSales   float64           `json:"total_sales"`
	SalesHistory []persistedRecord `json:"sales_history"`
	Sessions     []string          `json:"sessions"`
}

type persistedRecord struct {
	ID              string     `json:"id,omitempty"`
	Timestamp       legacyTime `json:"timestamp"`
	UnitsEliminated int        `json:"copies_eliminated"`
	BuyerContact    string     `json:"customer_email"`
	Amount          float64    `json:"price"`
	TransactionID   string     `json:"transaction_id,omitempty"`
	SessionID       string     `json:"session_id,omitempty"`
}

// legacyTime reads both the RFC 3339 strings this store writes and the
// integer unix timestamps older state files carry.
type legacyTime struct {
	time.Time
}

func (t *legacyTime) UnmarshalJSON(data []byte) error {
	var unix int64
	if err := json.Unmarshal(data, &unix); err == nil {
		t.Time = time.Unix(unix, 0).UTC()
		return nil
	}
	return t.Time.UnmarshalJSON(data)
}

func (r persistedRecord) toDomain() ledger.SaleRecord {
	transactionID := r.TransactionID
	if transactionID == "" {
		transactionID = r.SessionID
	}
	return ledger.SaleRecord{
		ID:              r.ID,
		Timestamp:       r.Timestamp.Time,
		UnitsEliminated: r.UnitsEliminated,
		BuyerContact:    r.BuyerContact,
		Amount:          r.Amount,
		TransactionID:   transactionID,
	}
}

func toPersisted(rec ledger.SaleRecord) persistedRecord {
	return persistedRecord{
		ID:              rec.ID,
		Timestamp:       legacyTime{rec.Timestamp},
		UnitsEliminated: rec.UnitsEliminated,
		BuyerContact:    rec.BuyerContact,
		Amount:          rec.Amount,
		TransactionID:   rec.TransactionID,
	}
}

// LedgerStore is a single-node ledger backed by one JSON state file.
// All mutation goes through a timed mutex: a writer that cannot acquire
// it within lockTimeout fails with ErrLedgerBusy instead of queueing
// indefinitely.
type LedgerStore struct {
	path        string
	maxCopies   int
	lockTimeout time.Duration
	sem         chan struct{}
	state       *ledger.State
	clk         clock.Clock
	codeGen     *generator.CodeGenerator
}

// NewLedgerStore loads the state file, creating a zeroed one when absent.
// maxCopies must be positive; RecordSale refuses to move copies_sold past
// it. A file that exists but cannot be parsed is a fatal condition:
// silently starting from zero would re-sell inventory the corrupt ledger
// already recorded, so the error is surfaced for operator intervention.
func NewLedgerStore(path string, maxCopies int, lockTimeout time.Duration, clk clock.Clock) (*LedgerStore, error) {
	if clk == nil {
		clk = clock.NewRealClock()
	}

	store := &LedgerStore{
		path:        path,
		maxCopies:   maxCopies,
		lockTimeout: lockTimeout,
		sem:         make(chan struct{}, 1),
		clk:         clk,
		codeGen:     generator.NewCodeGenerator(),
	}

	if err := store.load(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *LedgerStore) load() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating ledger directory: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.state = ledger.NewState()
		return s.persist(s.state)
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", domainErrors.ErrLedgerUnavailable, s.path, err)
	}

	var persisted persistedState
	if err := json.Unmarshal(data, &persisted); err != nil {
		return fmt.Errorf("%w: %s: %v", domainErrors.ErrLedgerCorrupted, s.path, err)
	}

	state := ledger.NewState()
	state.CopiesSold = persisted.CopiesSold
	state.TotalRevenue = persisted.TotalSales
	for _, rec := range persisted.SalesHistory {
		domainRec := rec.toDomain()
		state.History = append(state.History, domainRec)
		if domainRec.TransactionID != "" {
			state.ProcessedTransactions[domainRec.TransactionID] = struct{}{}
		}
	}
	for _, txID := range persisted.Sessions {
		state.ProcessedTransactions[txID] = struct{}{}
	}

	s.state = state
	return nil
}

// persist writes the full state with a temp-file-and-rename so a crash
// mid-write never leaves a truncated ledger behind.
func (s *LedgerStore) persist(state *ledger.State) error {
	// Sessions come from the full processed set, not from History: ids the
	// file was loaded with must survive every later persist even when no
	// history entry carries them.
	sessions := make([]string, 0, len(state.ProcessedTransactions))
	for txID := range state.ProcessedTransactions {
		sessions = append(sessions, txID)
	}
	sort.Strings(sessions)

	history := make([]persistedRecord, 0, len(state.History))
	for _, rec := range state.History {
		history = append(history, toPersisted(rec))
	}

	persisted := persistedState{
		CopiesSold:   state.CopiesSold,
		TotalSales:   state.TotalRevenue,
		SalesHistory: history,
		Sessions:     sessions,
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding state: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	return nil
}

func (s *LedgerStore) acquire(ctx context.Context) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return domainErrors.ErrLedgerBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LedgerStore) release() {
	<-s.sem
}

func (s *LedgerStore) CopiesSold(ctx context.Context) (int, error) {
	if err := s.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.release()

	return s.state.CopiesSold, nil
}

func (s *LedgerStore) RecordSale(ctx context.Context, params ledger.RecordSaleParams) (*ports.RecordSaleResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	if s.state.Seen(params.TransactionID) {
		return &ports.RecordSaleResult{
			Applied:      false,
			CopiesSold:   s.state.CopiesSold,
			TotalRevenue: s.state.TotalRevenue,
		}, nil
	}

	// Checked under the mutex so concurrent sales with distinct
	// transaction ids cannot both pass and push past the cap.
	if s.state.CopiesSold+params.UnitsEliminated > s.maxCopies {
		return nil, domainErrors.ErrEditionSoldOut
	}

	rec := ledger.SaleRecord{
		ID:              s.codeGen.GenerateRecordID(),
		Timestamp:       s.clk.Now(),
		UnitsEliminated: params.UnitsEliminated,
		BuyerContact:    params.BuyerContact,
		Amount:          params.Amount,
		TransactionID:   params.TransactionID,
	}

	// Mutate a copy and persist it before publishing, so a failed write
	// leaves the visible state exactly as durably recorded.
	next := cloneState(s.state)
	if _, err := next.Apply(rec); err != nil {
		return nil, err
	}
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.state = next

	return &ports.RecordSaleResult{
		Applied:      true,
		Record:       &rec,
		CopiesSold:   next.CopiesSold,
		TotalRevenue: next.TotalRevenue,
	}, nil
}

func (s *LedgerStore) History(ctx context.Context) ([]ledger.SaleRecord, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	history := make([]ledger.SaleRecord, len(s.state.History))
	copy(history, s.state.History)
	return history, nil
}

func (s *LedgerStore) Snapshot(ctx context.Context) (*ledger.State, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	return cloneState(s.state), nil
}

func (s *LedgerStore) Reset(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	fresh := ledger.NewState()
	if err := s.persist(fresh); err != nil {
		return err
	}
	s.state = fresh

	return nil
}

func cloneState(state *ledger.State) *ledger.State {
	next := ledger.NewState()
	next.CopiesSold = state.CopiesSold
	next.TotalRevenue = state.TotalRevenue
	next.History = make([]ledger.SaleRecord, len(state.History))
	copy(next.History, state.History)
	for txID := range state.ProcessedTransactions {
		next.ProcessedTransactions[txID] = struct{}{}
	}
	return next
}
