package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expricer/exclusivity-service/internal/application/ports"
	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
	"github.com/expricer/exclusivity-service/internal/domain/ledger"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/pkg/clock"
	"github.com/expricer/exclusivity-service/internal/pkg/generator"
)

// LedgerRepository stores the ledger across three tables: a singleton
// counters row, the append-only sale records, and the processed
// transaction ids. RecordSale runs serializable so concurrent
// completions cannot lose an increment or push copies_sold past the
// edition cap.
type LedgerRepository struct {
	db        *sql.DB
	maxCopies int
	clk       clock.Clock
	codeGen   *generator.CodeGenerator
}

// NewLedgerRepository requires a positive maxCopies; the counter update
// in RecordSale is conditional on staying at or below it.
func NewLedgerRepository(conn *Connection, maxCopies int, clk clock.Clock) *LedgerRepository {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &LedgerRepository{
		db:        conn.GetDB(),
		maxCopies: maxCopies,
		clk:       clk,
		codeGen:   generator.NewCodeGenerator(),
	}
}

func (r *LedgerRepository) CopiesSold(ctx context.Context) (int, error) {
	query := `SELECT copies_sold FROM ledger_state WHERE id = 1`

	var copiesSold int
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "ledger_state", query)
	if err := row.Scan(&copiesSold); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%w: ledger state row missing", domainErrors.ErrLedgerCorrupted)
		}
		return 0, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	return copiesSold, nil
}

func (r *LedgerRepository) RecordSale(ctx context.Context, params ledger.RecordSaleParams) (*ports.RecordSaleResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	defer tx.Rollback()

	if params.TransactionID != "" {
		result, err := monitoring.InstrumentTxExec(ctx, tx, "INSERT", "processed_transactions", `
			INSERT INTO processed_transactions (transaction_id)
			VALUES ($1)
			ON CONFLICT (transaction_id) DO NOTHING
		`, params.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
		}

		inserted, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
		}
		if inserted == 0 {
			// Replay of an already-processed transaction: report the
			// unchanged counters, mutate nothing.
			var copiesSold int
			var totalRevenue float64
			row := monitoring.InstrumentTxQueryRow(ctx, tx, "SELECT", "ledger_state",
				`SELECT copies_sold, total_revenue FROM ledger_state WHERE id = 1`)
			if err := row.Scan(&copiesSold, &totalRevenue); err != nil {
				return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
			}
			return &ports.RecordSaleResult{
				Applied:      false,
				CopiesSold:   copiesSold,
				TotalRevenue: totalRevenue,
			}, nil
		}
	}

	rec := ledger.SaleRecord{
		ID:              r.codeGen.GenerateRecordID(),
		Timestamp:       r.clk.Now(),
		UnitsEliminated: params.UnitsEliminated,
		BuyerContact:    params.BuyerContact,
		Amount:          params.Amount,
		TransactionID:   params.TransactionID,
	}

	var copiesSold int
	var totalRevenue float64
	row := monitoring.InstrumentTxQueryRow(ctx, tx, "UPDATE", "ledger_state", `
		UPDATE ledger_state
		SET copies_sold = copies_sold + $1,
		    total_revenue = total_revenue + $2,
		    updated_at = $3
		WHERE id = 1 AND copies_sold + $1 <= $4
		RETURNING copies_sold, total_revenue
	`, rec.UnitsEliminated, rec.Amount, rec.Timestamp, r.maxCopies)
	if err := row.Scan(&copiesSold, &totalRevenue); err != nil {
		if err == sql.ErrNoRows {
			return nil, r.soldOutOrMissing(ctx, tx)
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	var txID sql.NullString
	if rec.TransactionID != "" {
		txID = sql.NullString{String: rec.TransactionID, Valid: true}
	}

	if _, err := monitoring.InstrumentTxExec(ctx, tx, "INSERT", "sale_records", `
		INSERT INTO sale_records (id, recorded_at, units_eliminated, buyer_contact, amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.Timestamp, rec.UnitsEliminated, rec.BuyerContact, rec.Amount, txID); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	return &ports.RecordSaleResult{
		Applied:      true,
		Record:       &rec,
		CopiesSold:   copiesSold,
		TotalRevenue: totalRevenue,
	}, nil
}

// soldOutOrMissing tells apart the two reasons the guarded counter
// update matched no row: the increment would exceed the cap, or the
// singleton state row is gone.
func (r *LedgerRepository) soldOutOrMissing(ctx context.Context, tx *sql.Tx) error {
	var copiesSold int
	row := monitoring.InstrumentTxQueryRow(ctx, tx, "SELECT", "ledger_state",
		`SELECT copies_sold FROM ledger_state WHERE id = 1`)
	if err := row.Scan(&copiesSold); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: ledger state row missing", domainErrors.ErrLedgerCorrupted)
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	return domainErrors.ErrEditionSoldOut
}

func (r *LedgerRepository) History(ctx context.Context) ([]ledger.SaleRecord, error) {
	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "sale_records", `
		SELECT id, recorded_at, units_eliminated, buyer_contact, amount, transaction_id
		FROM sale_records
		ORDER BY recorded_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	defer rows.Close()

	history := []ledger.SaleRecord{}
	for rows.Next() {
		var rec ledger.SaleRecord
		var txID sql.NullString

		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.UnitsEliminated, &rec.BuyerContact, &rec.Amount, &txID); err != nil {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
		}
		if txID.Valid {
			rec.TransactionID = txID.String
		}

		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	return history, nil
}

func (r *LedgerRepository) Snapshot(ctx context.Context) (*ledger.State, error) {
	state := ledger.NewState()

	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "ledger_state",
		`SELECT copies_sold, total_revenue FROM ledger_state WHERE id = 1`)
	if err := row.Scan(&state.CopiesSold, &state.TotalRevenue); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: ledger state row missing", domainErrors.ErrLedgerCorrupted)
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	history, err := r.History(ctx)
	if err != nil {
		return nil, err
	}
	state.History = history
	for _, rec := range history {
		if rec.TransactionID != "" {
			state.ProcessedTransactions[rec.TransactionID] = struct{}{}
		}
	}

	return state, nil
}

func (r *LedgerRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}
	defer tx.Rollback()

	for _, stmt := range []struct {
		table string
		query string
	}{
		{"sale_records", `DELETE FROM sale_records`},
		{"processed_transactions", `DELETE FROM processed_transactions`},
		{"ledger_state", `UPDATE ledger_state SET copies_sold = 0, total_revenue = 0, updated_at = $1 WHERE id = 1`},
	} {
		var err error
		if stmt.table == "ledger_state" {
			_, err = monitoring.InstrumentTxExec(ctx, tx, "UPDATE", stmt.table, stmt.query, r.clk.Now())
		} else {
			_, err = monitoring.InstrumentTxExec(ctx, tx, "DELETE", stmt.table, stmt.query)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrLedgerUnavailable, err)
	}

	return nil
}
