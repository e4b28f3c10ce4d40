package server

import (
	"net/http"
	"time"

	"github.com/expricer/exclusivity-service/internal/infrastructure/http/middleware"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	monitoring.RegisterMetricsEndpoint(mux)

	mux.HandleFunc("/health", s.healthHandler.HandleHealth())

	mux.HandleFunc("/pricing", s.pricingHandler.HandleCurrentQuote)
	mux.HandleFunc("/pricing/quote", s.pricingHandler.HandleExplicitQuote)

	mux.HandleFunc("/sales", s.saleHandler.HandleRecordSale)
	mux.HandleFunc("/sales/history", s.saleHandler.HandleGetHistory)

	mux.HandleFunc("/ledger", s.ledgerHandler.HandleGetLedger)
	mux.HandleFunc("/admin/reset", s.adminHandler.HandleResetLedger)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	handler = middleware.NewRateLimitMiddleware(s.cache, s.cfg.RateLimit, s.logger)(handler)
	handler = s.corsMiddleware(handler)
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 30*time.Second, "Request timeout")
}
