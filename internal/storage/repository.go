package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"databank/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository holds the three banking relations and runs the
// SQL-expressible half of the report battery. All report methods are
// read-only; the relations are loaded once and never mutated by reports.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertRegions loads region reference data in a single transaction.
func (r *SQLiteRepository) InsertRegions(ctx context.Context, regions []core.Region) error {
	return r.batch(ctx, "INSERT INTO regions (region_id, region_name) VALUES (?, ?)",
		len(regions), func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, regions[i].RegionID, regions[i].RegionName)
			return err
		})
}

// InsertCustomerNodes loads node allocations in a single transaction.
func (r *SQLiteRepository) InsertCustomerNodes(ctx context.Context, nodes []core.CustomerNode) error {
	return r.batch(ctx,
		"INSERT INTO customer_nodes (customer_id, region_id, node_id, start_date, end_date) VALUES (?, ?, ?, ?, ?)",
		len(nodes), func(stmt *sql.Stmt, i int) error {
			n := nodes[i]
			_, err := stmt.ExecContext(ctx, n.CustomerID, n.RegionID, n.NodeID,
				n.StartDate.String(), n.EndDate.String())
			return err
		})
}

// InsertTransactions appends to the transaction log in a single transaction.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txns []core.Transaction) error {
	return r.batch(ctx,
		"INSERT INTO customer_transactions (customer_id, txn_date, txn_type, amount_cents) VALUES (?, ?, ?, ?)",
		len(txns), func(stmt *sql.Stmt, i int) error {
			tx := txns[i]
			_, err := stmt.ExecContext(ctx, tx.CustomerID, tx.TxnDate.String(),
				string(tx.TxnType), tx.Amount.Cents)
			return err
		})
}

func (r *SQLiteRepository) batch(ctx context.Context, query string, n int, exec func(*sql.Stmt, int) error) error {
	if n == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return fmt.Errorf("batch insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}

	slog.InfoContext(ctx, "Batch insert committed", "rows", n)
	return nil
}

// UniqueNodeCount counts distinct node ids across all allocations.
func (r *SQLiteRepository) UniqueNodeCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, uniqueNodeCountSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("unique node count: %w", err)
	}
	return count, nil
}

// NodesPerRegion counts distinct node ids per region. A node id shared
// by two regions counts once in each.
func (r *SQLiteRepository) NodesPerRegion(ctx context.Context) ([]core.RegionNodeCount, error) {
	rows, err := r.db.QueryContext(ctx, nodesPerRegionSQL)
	if err != nil {
		return nil, fmt.Errorf("nodes per region: %w", err)
	}
	defer rows.Close()

	var out []core.RegionNodeCount
	for rows.Next() {
		var rc core.RegionNodeCount
		if err := rows.Scan(&rc.RegionName, &rc.NodeCount); err != nil {
			return nil, fmt.Errorf("scan nodes per region: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// CustomersPerRegion counts distinct customer ids per region.
func (r *SQLiteRepository) CustomersPerRegion(ctx context.Context) ([]core.RegionCustomerCount, error) {
	rows, err := r.db.QueryContext(ctx, customersPerRegionSQL)
	if err != nil {
		return nil, fmt.Errorf("customers per region: %w", err)
	}
	defer rows.Close()

	var out []core.RegionCustomerCount
	for rows.Next() {
		var rc core.RegionCustomerCount
		if err := rows.Scan(&rc.RegionName, &rc.CustomerCount); err != nil {
			return nil, fmt.Errorf("scan customers per region: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// AvgReallocationDays returns the mean elapsed days between allocation
// start and end dates, or nil when there are no allocations.
func (r *SQLiteRepository) AvgReallocationDays(ctx context.Context) (*float64, error) {
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, avgReallocationDaysSQL).Scan(&avg); err != nil {
		return nil, fmt.Errorf("avg reallocation days: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// RegionDays is one allocation's elapsed days, labeled with its region.
type RegionDays struct {
	RegionName string
	Days       float64
}

// ReallocationDaysByRegion returns every allocation's elapsed days
// ordered by region then days, feeding the percentile estimator.
func (r *SQLiteRepository) ReallocationDaysByRegion(ctx context.Context) ([]RegionDays, error) {
	rows, err := r.db.QueryContext(ctx, reallocationDaysByRegionSQL)
	if err != nil {
		return nil, fmt.Errorf("reallocation days by region: %w", err)
	}
	defer rows.Close()

	var out []RegionDays
	for rows.Next() {
		var rd RegionDays
		if err := rows.Scan(&rd.RegionName, &rd.Days); err != nil {
			return nil, fmt.Errorf("scan reallocation days: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// TransactionTypeSummary returns row count and amount total per
// transaction type, capped at 1000 result rows.
func (r *SQLiteRepository) TransactionTypeSummary(ctx context.Context) ([]core.TxnTypeSummary, error) {
	rows, err := r.db.QueryContext(ctx, txnTypeSummarySQL)
	if err != nil {
		return nil, fmt.Errorf("transaction type summary: %w", err)
	}
	defer rows.Close()

	var out []core.TxnTypeSummary
	for rows.Next() {
		var ts core.TxnTypeSummary
		if err := rows.Scan(&ts.TxnType, &ts.Count, &ts.TotalAmount.Cents); err != nil {
			return nil, fmt.Errorf("scan transaction type summary: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// AvgDepositBehavior averages the per-customer deposit count and total
// over customers with at least one deposit. Returns nil when no
// customer has deposited.
func (r *SQLiteRepository) AvgDepositBehavior(ctx context.Context) (*core.DepositBehavior, error) {
	var count, cents sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, avgDepositBehaviorSQL).Scan(&count, &cents); err != nil {
		return nil, fmt.Errorf("avg deposit behavior: %w", err)
	}
	if !count.Valid || !cents.Valid {
		return nil, nil
	}
	return &core.DepositBehavior{
		AvgDepositCount: count.Float64,
		AvgDepositCents: cents.Float64,
	}, nil
}

// ActiveCustomersPerMonth evaluates both month filters independently:
// a month qualifies when more than one distinct customer deposited AND
// at least one distinct customer made a purchase or withdrawal. The
// reported count is the distinct depositing customers. Nothing requires
// the same customer to appear on both sides.
func (r *SQLiteRepository) ActiveCustomersPerMonth(ctx context.Context) ([]core.MonthlyActiveCustomers, error) {
	rows, err := r.db.QueryContext(ctx, activeCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("active customers per month: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyActiveCustomers
	for rows.Next() {
		var mc core.MonthlyActiveCustomers
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.CustomerCount); err != nil {
			return nil, fmt.Errorf("scan active customers: %w", err)
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// MonthlyClosingBalances returns each customer's net signed total per
// calendar month they transacted in, dated at the month's final day.
// limit caps the result set; limit <= 0 returns all rows.
func (r *SQLiteRepository) MonthlyClosingBalances(ctx context.Context, limit int) ([]core.MonthlyClosingBalance, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := r.db.QueryContext(ctx, monthlyClosingBalancesSQL+" LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("monthly closing balances: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyClosingBalance
	for rows.Next() {
		var (
			cb          core.MonthlyClosingBalance
			year, month int
		)
		if err := rows.Scan(&cb.CustomerID, &year, &month, &cb.ClosingBalance.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly closing balance: %w", err)
		}
		cb.MonthEnd = core.NewDate(year, month+1, 0)
		out = append(out, cb)
	}
	return out, rows.Err()
}

// SignedTransactions streams every transaction with the sign convention
// applied, ordered by customer, date, and insertion id. The windowed
// balance policies scan this ordering.
func (r *SQLiteRepository) SignedTransactions(ctx context.Context) ([]core.SignedTxn, error) {
	rows, err := r.db.QueryContext(ctx, signedTransactionsSQL)
	if err != nil {
		return nil, fmt.Errorf("signed transactions: %w", err)
	}
	defer rows.Close()

	var out []core.SignedTxn
	for rows.Next() {
		var (
			st   core.SignedTxn
			date string
		)
		if err := rows.Scan(&st.CustomerID, &date, &st.SignedCents); err != nil {
			return nil, fmt.Errorf("scan signed transaction: %w", err)
		}
		st.TxnDate, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse txn date %q: %w", date, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
