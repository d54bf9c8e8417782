// Package reports computes the fixed battery of descriptive-analytics
// reports over the banking relations: node distribution, reallocation
// timing, deposit behavior, monthly closing balances, and the three
// balance-allocation policies. Every report is a pure, read-only
// derivation from the loaded dataset; reports share no state and may
// run concurrently.
package reports

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"databank/internal/core"
	"databank/internal/storage"
)

// Fixed report constants. These are part of the report definitions.
const (
	// ResultCap bounds the emitted result sets of the capped reports.
	ResultCap = 1000
	// TrailingWindowSize is the row window of the trailing-average policy.
	TrailingWindowSize = 30
	// IncreaseThreshold is the closing-balance growth ratio a customer
	// must exceed to count as increased.
	IncreaseThreshold = 0.05
)

// Service computes reports against a loaded repository.
type Service struct {
	store *storage.SQLiteRepository
}

func NewService(store *storage.SQLiteRepository) *Service {
	return &Service{store: store}
}

// UniqueNodeCount counts distinct node ids across all allocations.
func (s *Service) UniqueNodeCount(ctx context.Context) (int64, error) {
	return s.store.UniqueNodeCount(ctx)
}

// NodesPerRegion counts distinct node ids per region.
func (s *Service) NodesPerRegion(ctx context.Context) ([]core.RegionNodeCount, error) {
	return s.store.NodesPerRegion(ctx)
}

// CustomersPerRegion counts distinct customer ids per region.
func (s *Service) CustomersPerRegion(ctx context.Context) ([]core.RegionCustomerCount, error) {
	return s.store.CustomersPerRegion(ctx)
}

// AvgReallocationDays is the mean allocation span in days, nil when the
// allocation table is empty.
func (s *Service) AvgReallocationDays(ctx context.Context) (*float64, error) {
	return s.store.AvgReallocationDays(ctx)
}

// ReallocationPercentiles estimates the median, 80th and 95th
// percentile of allocation spans per region, using the linear
// interpolation estimator in Percentile.
func (s *Service) ReallocationPercentiles(ctx context.Context) ([]core.ReallocationPercentiles, error) {
	days, err := s.store.ReallocationDaysByRegion(ctx)
	if err != nil {
		return nil, err
	}

	var out []core.ReallocationPercentiles
	// Rows arrive ordered by region then days, so each region's values
	// form a contiguous, already-sorted run.
	start := 0
	for i := 1; i <= len(days); i++ {
		if i == len(days) || days[i].RegionName != days[start].RegionName {
			sorted := make([]float64, 0, i-start)
			for _, rd := range days[start:i] {
				sorted = append(sorted, rd.Days)
			}
			out = append(out, core.ReallocationPercentiles{
				RegionName: days[start].RegionName,
				MedianDays: Percentile(sorted, 50),
				P80Days:    Percentile(sorted, 80),
				P95Days:    Percentile(sorted, 95),
			})
			start = i
		}
	}
	return out, nil
}

// TransactionTypeSummary is count and total per transaction type,
// capped at ResultCap rows.
func (s *Service) TransactionTypeSummary(ctx context.Context) ([]core.TxnTypeSummary, error) {
	return s.store.TransactionTypeSummary(ctx)
}

// AvgDepositBehavior averages per-customer deposit count and total over
// depositing customers; nil when nobody deposited.
func (s *Service) AvgDepositBehavior(ctx context.Context) (*core.DepositBehavior, error) {
	return s.store.AvgDepositBehavior(ctx)
}

// ActiveCustomersPerMonth applies the two independent month filters and
// reports the distinct depositing-customer count per qualifying month.
func (s *Service) ActiveCustomersPerMonth(ctx context.Context) ([]core.MonthlyActiveCustomers, error) {
	return s.store.ActiveCustomersPerMonth(ctx)
}

// MonthlyClosingBalances is the per-customer, per-month net delta
// series, capped at ResultCap rows.
func (s *Service) MonthlyClosingBalances(ctx context.Context) ([]core.MonthlyClosingBalance, error) {
	return s.store.MonthlyClosingBalances(ctx, ResultCap)
}

// PctCustomersBalanceIncrease reports the percentage of customers whose
// (max-min)/min ratio over their monthly closing balances exceeds
// IncreaseThreshold. A customer whose minimum closing balance is not
// positive has no defined ratio and is excluded from both numerator and
// denominator. Returns 0 when no customer has a defined ratio.
//
// The ratio reads the uncapped closing-balance series: the 1000-row cap
// is a cap on the emitted report, not on this derivation's input.
func (s *Service) PctCustomersBalanceIncrease(ctx context.Context) (float64, error) {
	series, err := s.store.MonthlyClosingBalances(ctx, 0)
	if err != nil {
		return 0, err
	}

	var counted, increased int
	// Series is ordered by customer, so per-customer min/max fold over
	// contiguous runs.
	start := 0
	for i := 1; i <= len(series); i++ {
		if i == len(series) || series[i].CustomerID != series[start].CustomerID {
			min, max := series[start].ClosingBalance.Cents, series[start].ClosingBalance.Cents
			for _, cb := range series[start+1 : i] {
				if cb.ClosingBalance.Cents < min {
					min = cb.ClosingBalance.Cents
				}
				if cb.ClosingBalance.Cents > max {
					max = cb.ClosingBalance.Cents
				}
			}
			if min > 0 {
				counted++
				if float64(max-min)/float64(min) > IncreaseThreshold {
					increased++
				}
			}
			start = i
		}
	}

	if counted == 0 {
		return 0, nil
	}
	return float64(increased) / float64(counted) * 100, nil
}

// PriorMonthEndBalances is allocation policy 1 (prior-month-end).
func (s *Service) PriorMonthEndBalances(ctx context.Context) ([]core.PriorMonthEndBalance, error) {
	txns, err := s.store.SignedTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return priorMonthEndBalances(txns), nil
}

// TrailingAverageBalances is allocation policy 2 (trailing 30-row average).
func (s *Service) TrailingAverageBalances(ctx context.Context) ([]core.TrailingAverageBalance, error) {
	txns, err := s.store.SignedTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return trailingAverageBalances(txns), nil
}

// RunningBalances is allocation policy 3 (real-time running balance).
func (s *Service) RunningBalances(ctx context.Context) ([]core.RunningBalance, error) {
	txns, err := s.store.SignedTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return runningBalances(txns), nil
}

// Battery is the full report battery computed in one pass.
type Battery struct {
	UniqueNodeCount         int64                          `json:"unique_node_count"`
	NodesPerRegion          []core.RegionNodeCount         `json:"nodes_per_region"`
	CustomersPerRegion      []core.RegionCustomerCount     `json:"customers_per_region"`
	AvgReallocationDays     *float64                       `json:"avg_reallocation_days"`
	ReallocationPercentiles []core.ReallocationPercentiles `json:"reallocation_percentiles"`
	TransactionTypeSummary  []core.TxnTypeSummary          `json:"transaction_type_summary"`
	AvgDepositBehavior      *core.DepositBehavior          `json:"avg_deposit_behavior"`
	ActiveCustomersPerMonth []core.MonthlyActiveCustomers  `json:"active_customers_per_month"`
	MonthlyClosingBalances  []core.MonthlyClosingBalance   `json:"monthly_closing_balances"`
	PctBalanceIncrease      float64                        `json:"pct_customers_balance_increase"`
	PriorMonthEndBalances   []core.PriorMonthEndBalance    `json:"prior_month_end_balances"`
	TrailingAverageBalances []core.TrailingAverageBalance  `json:"trailing_average_balances"`
	RunningBalances         []core.RunningBalance          `json:"running_balances"`
}

// RunAll computes every report concurrently. The reports are
// independent and read-only, so they need no coordination beyond
// collecting the first error.
func (s *Service) RunAll(ctx context.Context) (*Battery, error) {
	var battery Battery
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		battery.UniqueNodeCount, err = s.UniqueNodeCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.NodesPerRegion, err = s.NodesPerRegion(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.CustomersPerRegion, err = s.CustomersPerRegion(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.AvgReallocationDays, err = s.AvgReallocationDays(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.ReallocationPercentiles, err = s.ReallocationPercentiles(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.TransactionTypeSummary, err = s.TransactionTypeSummary(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.AvgDepositBehavior, err = s.AvgDepositBehavior(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.ActiveCustomersPerMonth, err = s.ActiveCustomersPerMonth(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.MonthlyClosingBalances, err = s.MonthlyClosingBalances(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.PctBalanceIncrease, err = s.PctCustomersBalanceIncrease(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.PriorMonthEndBalances, err = s.PriorMonthEndBalances(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.TrailingAverageBalances, err = s.TrailingAverageBalances(ctx)
		return err
	})
	g.Go(func() (err error) {
		battery.RunningBalances, err = s.RunningBalances(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Report battery computed",
		"unique_nodes", battery.UniqueNodeCount,
		"closing_balance_rows", len(battery.MonthlyClosingBalances),
		"running_balance_rows", len(battery.RunningBalances))

	return &battery, nil
}
