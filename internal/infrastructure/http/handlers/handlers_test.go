package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expricer/exclusivity-service/internal/application/use_cases"
	"github.com/expricer/exclusivity-service/internal/config"
	"github.com/expricer/exclusivity-service/internal/infrastructure/persistence/fs"
	"github.com/expricer/exclusivity-service/internal/pkg/clock"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

type testHarness struct {
	pricing *PricingHandler
	sale    *SaleHandler
	ledger  *LedgerHandler
	admin   *AdminHandler
	store   *fs.LedgerStore
}

func newTestHarness(t *testing.T, product config.ProductConfig) *testHarness {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.json")
	store, err := fs.NewLedgerStore(path, product.MaxCopies, 200*time.Millisecond, clock.NewRealClock())
	require.NoError(t, err)

	log := logger.NewLogger()
	quoteUC := use_cases.NewQuoteUseCase(store, nil, product, log)
	recordUC := use_cases.NewRecordSaleUseCase(store, nil, product, log, time.Second)

	return &testHarness{
		pricing: NewPricingHandler(quoteUC, log),
		sale:    NewSaleHandler(recordUC, store, log),
		ledger:  NewLedgerHandler(store, product, log),
		admin:   NewAdminHandler(store, nil, log),
		store:   store,
	}
}

var smallEdition = config.ProductConfig{
	Name:      "Test Edition",
	WorkType:  "physical",
	MaxCopies: 3,
	MinPrice:  100,
}

func TestHandleCurrentQuote(t *testing.T) {
	h := newTestHarness(t, config.ProductConfig{
		Name:      "Test Edition",
		WorkType:  "physical",
		MaxCopies: 100,
		MinPrice:  100,
	})

	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	rec := httptest.NewRecorder()
	h.pricing.HandleCurrentQuote(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		CurrentState struct {
			CopiesSold         int     `json:"copies_sold"`
			CopiesRemaining    int     `json:"copies_remaining"`
			CurrentMarketPrice float64 `json:"current_market_price"`
		} `json:"current_state"`
		ExclusivityLevels []struct {
			RemainingCopies int     `json:"remaining_copies"`
			Price           float64 `json:"price"`
		} `json:"exclusivity_levels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 0, body.CurrentState.CopiesSold)
	assert.Equal(t, 100, body.CurrentState.CopiesRemaining)
	assert.Equal(t, 120.00, body.CurrentState.CurrentMarketPrice)
	require.NotEmpty(t, body.ExclusivityLevels)
	assert.Equal(t, 100, body.ExclusivityLevels[0].RemainingCopies)
}

func TestHandleCurrentQuoteMethodNotAllowed(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	req := httptest.NewRequest(http.MethodPost, "/pricing", nil)
	rec := httptest.NewRecorder()
	h.pricing.HandleCurrentQuote(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleExplicitQuoteInvalidBody(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	req := httptest.NewRequest(http.MethodPost, "/pricing/quote", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	h.pricing.HandleExplicitQuote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExplicitQuoteInvalidWorkType(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"work_type":"hologram","copies_sold":0,"max_copies":100,"min_price":100}`
	req := httptest.NewRequest(http.MethodPost, "/pricing/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.pricing.HandleExplicitQuote(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Code)
}

func TestHandleRecordSaleAndReplay(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"units_eliminated":1,"buyer_contact":"buyer@example.com","amount":120,"transaction_id":"tx-1"}`

	rec := httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var first struct {
		Applied    bool   `json:"applied"`
		RecordID   string `json:"record_id"`
		CopiesSold int    `json:"copies_sold"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.True(t, first.Applied)
	assert.NotEmpty(t, first.RecordID)
	assert.Equal(t, 1, first.CopiesSold)

	rec = httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		Applied    bool   `json:"applied"`
		RecordID   string `json:"record_id"`
		CopiesSold int    `json:"copies_sold"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.False(t, second.Applied)
	assert.Empty(t, second.RecordID)
	assert.Equal(t, 1, second.CopiesSold)
}

func TestHandleRecordSaleValidation(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"units_eliminated":0,"buyer_contact":"","amount":120}`
	rec := httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "units_eliminated")
	assert.Contains(t, resp.Errors, "buyer_contact")
}

func TestHandleRecordSaleSoldOut(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"units_eliminated":3,"buyer_contact":"buyer@example.com","amount":450,"transaction_id":"tx-all"}`
	rec := httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	overflow := `{"units_eliminated":1,"buyer_contact":"late@example.com","amount":150,"transaction_id":"tx-late"}`
	rec = httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(overflow)))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conflict", resp.Code)
}

func TestHandleGetHistory(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"units_eliminated":1,"buyer_contact":"buyer@example.com","amount":120,"transaction_id":"tx-1"}`
	rec := httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.sale.HandleGetHistory(rec, httptest.NewRequest(http.MethodGet, "/sales/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []SaleRecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "buyer@example.com", records[0].BuyerContact)
	assert.Equal(t, 120.00, records[0].Amount)
	assert.Equal(t, "tx-1", records[0].TransactionID)
}

func TestHandleGetLedger(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"units_eliminated":2,"buyer_contact":"buyer@example.com","amount":300,"transaction_id":"tx-1"}`
	rec := httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ledger.HandleGetLedger(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LedgerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.CopiesSold)
	assert.Equal(t, 1, resp.CopiesRemaining)
	assert.Equal(t, 300.00, resp.TotalRevenue)
	assert.False(t, resp.SoldOut)
}

func TestHandleResetLedger(t *testing.T) {
	h := newTestHarness(t, smallEdition)

	body := `{"units_eliminated":1,"buyer_contact":"buyer@example.com","amount":120}`
	rec := httptest.NewRecorder()
	h.sale.HandleRecordSale(rec, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.admin.HandleResetLedger(rec, httptest.NewRequest(http.MethodPost, "/admin/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ledger.HandleGetLedger(rec, httptest.NewRequest(http.MethodGet, "/ledger", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LedgerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.CopiesSold)
	assert.Zero(t, resp.TotalRevenue)
}
