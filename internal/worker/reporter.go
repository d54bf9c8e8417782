// Package worker runs report requests consumed from the message queue
// and optionally exports the resulting tables to a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"databank/internal/amqp"
	"databank/internal/core"
	"databank/internal/reports"
)

// Exporter writes one report table to an external destination.
type Exporter interface {
	ExportTable(ctx context.Context, report string, header []string, rows [][]interface{}) error
}

// ReportWorker computes requested reports and hands the tables to an
// optional exporter. With a nil exporter results are computed and
// logged only, which still validates the dataset end to end.
type ReportWorker struct {
	svc      *reports.Service
	exporter Exporter
	timeout  time.Duration
}

func NewReportWorker(svc *reports.Service, exporter Exporter) *ReportWorker {
	return &ReportWorker{
		svc:      svc,
		exporter: exporter,
		timeout:  2 * time.Minute,
	}
}

// HandleRequest dispatches one consumed report request. Unknown report
// names return an error so the consumer drops the message instead of
// requeueing it forever.
func (w *ReportWorker) HandleRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch msg.Report {
	case amqp.ReportAll:
		err = w.runAll(ctx)
	case amqp.ReportNodes:
		err = w.runNodes(ctx)
	case amqp.ReportReallocation:
		err = w.runReallocation(ctx)
	case amqp.ReportTransactions:
		err = w.runTransactions(ctx)
	case amqp.ReportClosingBalances:
		err = w.runClosingBalances(ctx)
	case amqp.ReportBalancePolicies:
		err = w.runBalancePolicies(ctx)
	default:
		return fmt.Errorf("unknown report %q", msg.Report)
	}
	if err != nil {
		return fmt.Errorf("report %s: %w", msg.Report, err)
	}

	slog.InfoContext(ctx, "Report request completed",
		"report", msg.Report,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *ReportWorker) runAll(ctx context.Context) error {
	battery, err := w.svc.RunAll(ctx)
	if err != nil {
		return err
	}
	if w.exporter == nil {
		return nil
	}
	if err := w.exportNodes(ctx, battery.NodesPerRegion, battery.CustomersPerRegion); err != nil {
		return err
	}
	if err := w.exportReallocation(ctx, battery.ReallocationPercentiles); err != nil {
		return err
	}
	if err := w.exportTransactions(ctx, battery.TransactionTypeSummary); err != nil {
		return err
	}
	if err := w.exportClosingBalances(ctx, battery.MonthlyClosingBalances); err != nil {
		return err
	}
	return w.exportPolicies(ctx, battery.RunningBalances)
}

func (w *ReportWorker) runNodes(ctx context.Context) error {
	nodes, err := w.svc.NodesPerRegion(ctx)
	if err != nil {
		return err
	}
	customers, err := w.svc.CustomersPerRegion(ctx)
	if err != nil {
		return err
	}
	if w.exporter == nil {
		return nil
	}
	return w.exportNodes(ctx, nodes, customers)
}

func (w *ReportWorker) runReallocation(ctx context.Context) error {
	pcts, err := w.svc.ReallocationPercentiles(ctx)
	if err != nil {
		return err
	}
	if w.exporter == nil {
		return nil
	}
	return w.exportReallocation(ctx, pcts)
}

func (w *ReportWorker) runTransactions(ctx context.Context) error {
	summary, err := w.svc.TransactionTypeSummary(ctx)
	if err != nil {
		return err
	}
	if w.exporter == nil {
		return nil
	}
	return w.exportTransactions(ctx, summary)
}

func (w *ReportWorker) runClosingBalances(ctx context.Context) error {
	balances, err := w.svc.MonthlyClosingBalances(ctx)
	if err != nil {
		return err
	}
	if w.exporter == nil {
		return nil
	}
	return w.exportClosingBalances(ctx, balances)
}

func (w *ReportWorker) runBalancePolicies(ctx context.Context) error {
	running, err := w.svc.RunningBalances(ctx)
	if err != nil {
		return err
	}
	if w.exporter == nil {
		return nil
	}
	return w.exportPolicies(ctx, running)
}

func (w *ReportWorker) exportNodes(ctx context.Context, nodes []core.RegionNodeCount, customers []core.RegionCustomerCount) error {
	byRegion := make(map[string]int64, len(customers))
	for _, c := range customers {
		byRegion[c.RegionName] = c.CustomerCount
	}
	rows := make([][]interface{}, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []interface{}{n.RegionName, n.NodeCount, byRegion[n.RegionName]})
	}
	return w.exporter.ExportTable(ctx, amqp.ReportNodes,
		[]string{"Region", "Nodes", "Customers"}, rows)
}

func (w *ReportWorker) exportReallocation(ctx context.Context, pcts []core.ReallocationPercentiles) error {
	rows := make([][]interface{}, 0, len(pcts))
	for _, p := range pcts {
		rows = append(rows, []interface{}{p.RegionName, p.MedianDays, p.P80Days, p.P95Days})
	}
	return w.exporter.ExportTable(ctx, amqp.ReportReallocation,
		[]string{"Region", "Median Days", "80th Pct Days", "95th Pct Days"}, rows)
}

func (w *ReportWorker) exportTransactions(ctx context.Context, summary []core.TxnTypeSummary) error {
	rows := make([][]interface{}, 0, len(summary))
	for _, t := range summary {
		rows = append(rows, []interface{}{string(t.TxnType), t.Count, t.TotalAmount.Amount()})
	}
	return w.exporter.ExportTable(ctx, amqp.ReportTransactions,
		[]string{"Type", "Count", "Total Amount"}, rows)
}

func (w *ReportWorker) exportClosingBalances(ctx context.Context, balances []core.MonthlyClosingBalance) error {
	rows := make([][]interface{}, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []interface{}{b.CustomerID, b.MonthEnd.String(), b.ClosingBalance.Amount()})
	}
	return w.exporter.ExportTable(ctx, amqp.ReportClosingBalances,
		[]string{"Customer", "Month End", "Closing Balance"}, rows)
}

func (w *ReportWorker) exportPolicies(ctx context.Context, running []core.RunningBalance) error {
	rows := make([][]interface{}, 0, len(running))
	for _, b := range running {
		rows = append(rows, []interface{}{b.CustomerID, b.TxnDate.String(), b.Balance.Amount()})
	}
	return w.exporter.ExportTable(ctx, amqp.ReportBalancePolicies,
		[]string{"Customer", "Txn Date", "Running Balance"}, rows)
}
