package reports

import (
	"databank/internal/core"
)

// The three balance-allocation policies are explicit per-customer
// sequential scans over the signed transaction stream (ordered by
// customer, date, insertion id). Keeping them as scans rather than SQL
// window functions makes the window bounds and tie-breaks visible.

// priorMonthEndBalances implements policy 1: for each calendar month a
// customer transacted in, the signed sum of that customer's
// transactions dated strictly before the month's final calendar day.
// A transaction on the final day itself is excluded from its own month
// and first counted in the next one.
func priorMonthEndBalances(txns []core.SignedTxn) []core.PriorMonthEndBalance {
	var out []core.PriorMonthEndBalance
	forEachCustomer(txns, func(customerID int64, part []core.SignedTxn) {
		months := distinctMonthEnds(part)
		cursor := 0
		var sum int64
		for _, monthEnd := range months {
			for cursor < len(part) && part[cursor].TxnDate.Before(monthEnd.Time) {
				sum += part[cursor].SignedCents
				cursor++
			}
			out = append(out, core.PriorMonthEndBalance{
				CustomerID: customerID,
				MonthEnd:   monthEnd,
				Balance:    core.Money{Cents: sum},
			})
		}
	})
	return out
}

// trailingAverageBalances implements policy 2: per transaction, the
// mean signed amount over the current and up to 29 preceding
// transactions of the same customer. The window is a row window over
// the customer's own sequence, not a calendar window; the head of the
// sequence averages over however many rows exist.
func trailingAverageBalances(txns []core.SignedTxn) []core.TrailingAverageBalance {
	var out []core.TrailingAverageBalance
	forEachCustomer(txns, func(customerID int64, part []core.SignedTxn) {
		var windowSum int64
		for i, tx := range part {
			windowSum += tx.SignedCents
			if i >= TrailingWindowSize {
				windowSum -= part[i-TrailingWindowSize].SignedCents
			}
			size := i + 1
			if size > TrailingWindowSize {
				size = TrailingWindowSize
			}
			out = append(out, core.TrailingAverageBalance{
				CustomerID: customerID,
				TxnDate:    tx.TxnDate,
				AvgCents:   float64(windowSum) / float64(size),
			})
		}
	})
	return out
}

// runningBalances implements policy 3: per transaction, the cumulative
// signed sum from the customer's first transaction through the current
// one. Ties in txn_date keep insertion order.
func runningBalances(txns []core.SignedTxn) []core.RunningBalance {
	var out []core.RunningBalance
	forEachCustomer(txns, func(customerID int64, part []core.SignedTxn) {
		var sum int64
		for _, tx := range part {
			sum += tx.SignedCents
			out = append(out, core.RunningBalance{
				CustomerID: customerID,
				TxnDate:    tx.TxnDate,
				Balance:    core.Money{Cents: sum},
			})
		}
	})
	return out
}

// forEachCustomer partitions the ordered stream by customer id and
// hands each partition to fn in input order.
func forEachCustomer(txns []core.SignedTxn, fn func(customerID int64, part []core.SignedTxn)) {
	start := 0
	for i := 1; i <= len(txns); i++ {
		if i == len(txns) || txns[i].CustomerID != txns[start].CustomerID {
			fn(txns[start].CustomerID, txns[start:i])
			start = i
		}
	}
}

// distinctMonthEnds lists the final calendar day of every month present
// in the (date-ordered) partition, ascending.
func distinctMonthEnds(part []core.SignedTxn) []core.Date {
	var out []core.Date
	lastKey := -1
	for _, tx := range part {
		if key := tx.TxnDate.MonthKey(); key != lastKey {
			out = append(out, tx.TxnDate.MonthEnd())
			lastKey = key
		}
	}
	return out
}
