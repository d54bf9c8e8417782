package storage

// Report SQL. The grouping keys, filter predicates, and LIMIT clauses
// here are the report contracts; do not "simplify" them (in particular
// the two separate HAVING predicates of activeCustomersSQL, which count
// distinct customers per condition rather than requiring the same
// customer to satisfy both).

const uniqueNodeCountSQL = `
SELECT COUNT(DISTINCT node_id) FROM customer_nodes
`

const nodesPerRegionSQL = `
SELECT r.region_name, COUNT(DISTINCT cn.node_id) AS node_count
FROM customer_nodes cn
JOIN regions r ON r.region_id = cn.region_id
GROUP BY r.region_name
ORDER BY r.region_name
`

const customersPerRegionSQL = `
SELECT r.region_name, COUNT(DISTINCT cn.customer_id) AS customer_count
FROM customer_nodes cn
JOIN regions r ON r.region_id = cn.region_id
GROUP BY r.region_name
ORDER BY r.region_name
`

const avgReallocationDaysSQL = `
SELECT AVG(julianday(end_date) - julianday(start_date)) FROM customer_nodes
`

const reallocationDaysByRegionSQL = `
SELECT r.region_name, julianday(cn.end_date) - julianday(cn.start_date) AS days
FROM customer_nodes cn
JOIN regions r ON r.region_id = cn.region_id
ORDER BY r.region_name, days
`

const txnTypeSummarySQL = `
SELECT txn_type, COUNT(*) AS txn_count, SUM(amount_cents) AS total_cents
FROM customer_transactions
GROUP BY txn_type
ORDER BY txn_type
LIMIT 1000
`

const avgDepositBehaviorSQL = `
SELECT AVG(txn_count), AVG(total_cents)
FROM (
    SELECT customer_id, COUNT(*) AS txn_count, SUM(amount_cents) AS total_cents
    FROM customer_transactions
    WHERE txn_type = 'deposit'
    GROUP BY customer_id
)
`

const activeCustomersSQL = `
SELECT CAST(strftime('%Y', txn_date) AS INTEGER) AS year,
       CAST(strftime('%m', txn_date) AS INTEGER) AS month,
       COUNT(DISTINCT CASE WHEN txn_type = 'deposit' THEN customer_id END) AS customer_count
FROM customer_transactions
GROUP BY year, month
HAVING COUNT(DISTINCT CASE WHEN txn_type = 'deposit' THEN customer_id END) > 1
   AND COUNT(DISTINCT CASE WHEN txn_type IN ('purchase', 'withdrawal') THEN customer_id END) >= 1
ORDER BY year, month
`

const monthlyClosingBalancesSQL = `
SELECT customer_id,
       CAST(strftime('%Y', txn_date) AS INTEGER) AS year,
       CAST(strftime('%m', txn_date) AS INTEGER) AS month,
       SUM(CASE WHEN txn_type = 'deposit' THEN amount_cents
                WHEN txn_type IN ('purchase', 'withdrawal') THEN -amount_cents
                ELSE 0 END) AS closing_cents
FROM customer_transactions
GROUP BY customer_id, year, month
ORDER BY customer_id, year, month
`

// Ordered stream feeding the windowed balance policies. The trailing id
// column is the documented tie-break for equal dates: stable insertion order.
const signedTransactionsSQL = `
SELECT customer_id, txn_date,
       CASE WHEN txn_type = 'deposit' THEN amount_cents
            WHEN txn_type IN ('purchase', 'withdrawal') THEN -amount_cents
            ELSE 0 END AS signed_cents
FROM customer_transactions
ORDER BY customer_id, txn_date, id
`
