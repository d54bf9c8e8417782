package core

// Report row shapes. Each slice type below is one tabular result set
// produced by the reporting service; ordering is part of the contract
// where the field comments say so.

// RegionNodeCount is a distinct-node count for one region.
type RegionNodeCount struct {
	RegionName string `json:"region_name"`
	NodeCount  int64  `json:"node_count"`
}

// RegionCustomerCount is a distinct-customer count for one region.
type RegionCustomerCount struct {
	RegionName    string `json:"region_name"`
	CustomerCount int64  `json:"customer_count"`
}

// ReallocationPercentiles holds per-region percentiles of the elapsed
// days between node-assignment start and end dates.
type ReallocationPercentiles struct {
	RegionName string  `json:"region_name"`
	MedianDays float64 `json:"median_days"`
	P80Days    float64 `json:"p80_days"`
	P95Days    float64 `json:"p95_days"`
}

// TxnTypeSummary is the row count and amount total for one transaction type.
type TxnTypeSummary struct {
	TxnType     TxnType `json:"txn_type"`
	Count       int64   `json:"count"`
	TotalAmount Money   `json:"total_amount"`
}

// DepositBehavior averages the per-customer deposit count and deposit
// total across customers who made at least one deposit.
type DepositBehavior struct {
	AvgDepositCount float64 `json:"avg_deposit_count"`
	AvgDepositCents float64 `json:"avg_deposit_cents"`
}

// MonthlyActiveCustomers is the distinct depositing-customer count for
// one calendar month that passed the activity filters.
type MonthlyActiveCustomers struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"`
	CustomerCount int64 `json:"customer_count"`
}

// MonthlyClosingBalance is a customer's net signed transaction total for
// one calendar month, dated at that month's final day. It is a per-month
// delta, not a balance carried over from prior months.
type MonthlyClosingBalance struct {
	CustomerID     int64 `json:"customer_id"`
	MonthEnd       Date  `json:"end_of_month_date"`
	ClosingBalance Money `json:"closing_balance"`
}

// PriorMonthEndBalance is a customer's net signed total of transactions
// dated strictly before one calendar month's final day.
type PriorMonthEndBalance struct {
	CustomerID int64 `json:"customer_id"`
	MonthEnd   Date  `json:"end_of_month_date"`
	Balance    Money `json:"balance"`
}

// TrailingAverageBalance is the moving average of a customer's signed
// amounts over their current transaction and up to 29 preceding ones,
// in date order.
type TrailingAverageBalance struct {
	CustomerID int64   `json:"customer_id"`
	TxnDate    Date    `json:"txn_date"`
	AvgCents   float64 `json:"avg_cents"`
}

// RunningBalance is a customer's cumulative signed total through one
// transaction, in date order.
type RunningBalance struct {
	CustomerID int64 `json:"customer_id"`
	TxnDate    Date  `json:"txn_date"`
	Balance    Money `json:"balance"`
}

// SignedTxn is one transaction of the per-customer signed stream the
// windowed balance policies scan, ordered by customer, date, insertion id.
type SignedTxn struct {
	CustomerID  int64
	TxnDate     Date
	SignedCents int64
}
