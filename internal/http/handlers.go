package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"databank/internal/core"
	"databank/internal/reports"
)

const reportTimeout = 30 * time.Second

// batteryCacheKey is the single key of the battery cache; the dataset
// is immutable, so there is nothing to vary on.
const batteryCacheKey = "battery"

// handleBattery returns the full report battery, cached for the
// configured TTL.
func (s *Server) handleBattery(w http.ResponseWriter, r *http.Request) {
	if battery, ok := s.batteryCache.Get(batteryCacheKey); ok {
		writeJSON(w, r, battery)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	battery, err := s.svc.RunAll(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}

	s.batteryCache.Set(batteryCacheKey, battery)
	writeJSON(w, r, battery)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	uniqueNodes, err := s.svc.UniqueNodeCount(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	perRegion, err := s.svc.NodesPerRegion(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	customers, err := s.svc.CustomersPerRegion(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}

	writeJSON(w, r, struct {
		UniqueNodeCount    int64                      `json:"unique_node_count"`
		NodesPerRegion     []core.RegionNodeCount     `json:"nodes_per_region"`
		CustomersPerRegion []core.RegionCustomerCount `json:"customers_per_region"`
	}{uniqueNodes, perRegion, customers})
}

func (s *Server) handleReallocation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	avg, err := s.svc.AvgReallocationDays(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	percentiles, err := s.svc.ReallocationPercentiles(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}

	writeJSON(w, r, struct {
		AvgReallocationDays *float64                       `json:"avg_reallocation_days"`
		Percentiles         []core.ReallocationPercentiles `json:"percentiles"`
	}{avg, percentiles})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	summary, err := s.svc.TransactionTypeSummary(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	behavior, err := s.svc.AvgDepositBehavior(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	active, err := s.svc.ActiveCustomersPerMonth(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}

	writeJSON(w, r, struct {
		TypeSummary     []core.TxnTypeSummary         `json:"transaction_type_summary"`
		DepositBehavior *core.DepositBehavior         `json:"avg_deposit_behavior"`
		ActiveCustomers []core.MonthlyActiveCustomers `json:"active_customers_per_month"`
	}{summary, behavior, active})
}

func (s *Server) handleClosingBalances(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	balances, err := s.svc.MonthlyClosingBalances(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	pct, err := s.svc.PctCustomersBalanceIncrease(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}

	writeJSON(w, r, struct {
		MonthlyClosingBalances []core.MonthlyClosingBalance `json:"monthly_closing_balances"`
		PctBalanceIncrease     float64                      `json:"pct_customers_balance_increase"`
	}{balances, pct})
}

func (s *Server) handlePriorMonthEnd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	rows, err := s.svc.PriorMonthEndBalances(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	writeJSON(w, r, rows)
}

func (s *Server) handleTrailingAverage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	rows, err := s.svc.TrailingAverageBalances(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	writeJSON(w, r, rows)
}

func (s *Server) handleRunning(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	rows, err := s.svc.RunningBalances(ctx)
	if err != nil {
		reportError(w, r, err)
		return
	}
	writeJSON(w, r, rows)
}

// handleInterest projects one month of simple-interest growth on the
// initial allocation given in the "initial" query parameter.
func (s *Server) handleInterest(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("initial"))
	if raw == "" {
		http.Error(w, "missing 'initial' query parameter", http.StatusBadRequest)
		return
	}

	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		http.Error(w, "invalid 'initial' amount", http.StatusBadRequest)
		return
	}

	initial := core.Money{Cents: cents}
	projected := reports.SimpleInterestMonthlyGrowth(initial)

	writeJSON(w, r, struct {
		Initial   float64 `json:"initial_allocation"`
		Projected float64 `json:"projected_allocation"`
	}{initial.Amount(), projected.Amount()})
}
