// Package dashboard exposes the ledger's read-only query surface as a
// small JSON API. Every handler serves copies taken under the ledger's
// read lock; nothing here can block or mutate the driver loop.
package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"forex_pilot/internal/broker"
	"forex_pilot/internal/models"
)

const (
	defaultTradeLimit  = 10
	defaultEquityLimit = 50
)

// Server serves the dashboard API for one ledger.
type Server struct {
	ledger *broker.DemoBroker
	router *mux.Router
}

// NewServer builds the server and its routes.
func NewServer(ledger *broker.DemoBroker) *Server {
	s := &Server{ledger: ledger}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/api/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	router.HandleFunc("/api/positions", s.handlePositions).Methods(http.MethodGet)
	router.HandleFunc("/api/trades", s.handleTrades).Methods(http.MethodGet)
	router.HandleFunc("/api/equity-curve", s.handleEquityCurve).Methods(http.MethodGet)
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	s.router = logRequests(router)

	return s
}

// Handler returns the HTTP handler, for embedding in a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Dashboard API listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.ledger.PortfolioSummary())
}

func (s *Server) handlePositions(w http.ResponseWriter, _ *http.Request) {
	positions := s.ledger.OpenPositions()
	if positions == nil {
		positions = []models.Position{} // a list, never JSON null
	}
	writeJSON(w, positions)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades := s.ledger.LastTrades(limitParam(r, defaultTradeLimit))
	if trades == nil {
		trades = []models.TradeRecord{}
	}
	writeJSON(w, trades)
}

func (s *Server) handleEquityCurve(w http.ResponseWriter, r *http.Request) {
	points := s.ledger.LastEquity(limitParam(r, defaultEquityLimit))
	if points == nil {
		points = []models.EquityPoint{}
	}
	writeJSON(w, points)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Dashboard encode error: %v", err)
	}
}

// logRequests wraps the router with a one-line access log.
func logRequests(inner http.Handler) *mux.Router {
	outer := mux.NewRouter()
	outer.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Printf("%s\t%s\t%s", r.Method, r.RequestURI, time.Since(start))
	}))
	return outer
}
