// Package ingest materializes the three banking relations from CSV
// files. Loading is the boundary where schema validation happens; the
// reporting layers treat the loaded relations as immutable inputs.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"databank/internal/core"
	"databank/internal/storage"
)

// Expected file names inside the data directory.
const (
	RegionsFile      = "regions.csv"
	NodesFile        = "customer_nodes.csv"
	TransactionsFile = "customer_transactions.csv"
)

// LoadDir reads the three CSV files from dir and inserts them into the
// repository. Each file has a header row; dates are YYYY-MM-DD and
// amounts are decimal strings.
func LoadDir(ctx context.Context, repo *storage.SQLiteRepository, dir string) error {
	regions, err := readFile(dir, RegionsFile, ReadRegions)
	if err != nil {
		return err
	}
	nodes, err := readFile(dir, NodesFile, ReadCustomerNodes)
	if err != nil {
		return err
	}
	txns, err := readFile(dir, TransactionsFile, ReadTransactions)
	if err != nil {
		return err
	}

	if err := repo.InsertRegions(ctx, regions); err != nil {
		return fmt.Errorf("insert regions: %w", err)
	}
	if err := repo.InsertCustomerNodes(ctx, nodes); err != nil {
		return fmt.Errorf("insert customer nodes: %w", err)
	}
	if err := repo.InsertTransactions(ctx, txns); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}

	slog.InfoContext(ctx, "Dataset loaded",
		"dir", dir,
		"regions", len(regions),
		"customer_nodes", len(nodes),
		"transactions", len(txns))
	return nil
}

func readFile[T any](dir, name string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return out, nil
}

// ReadRegions parses region_id,region_name rows.
func ReadRegions(r io.Reader) ([]core.Region, error) {
	records, err := readRecords(r, 2)
	if err != nil {
		return nil, err
	}

	out := make([]core.Region, 0, len(records))
	for i, rec := range records {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: region_id: %w", i+1, err)
		}
		region := core.Region{RegionID: id, RegionName: rec[1]}
		if err := region.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, region)
	}
	return out, nil
}

// ReadCustomerNodes parses customer_id,region_id,node_id,start_date,end_date rows.
func ReadCustomerNodes(r io.Reader) ([]core.CustomerNode, error) {
	records, err := readRecords(r, 5)
	if err != nil {
		return nil, err
	}

	out := make([]core.CustomerNode, 0, len(records))
	for i, rec := range records {
		var (
			node core.CustomerNode
			err  error
		)
		if node.CustomerID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d: customer_id: %w", i+1, err)
		}
		if node.RegionID, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d: region_id: %w", i+1, err)
		}
		if node.NodeID, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d: node_id: %w", i+1, err)
		}
		if node.StartDate, err = core.ParseDate(rec[3]); err != nil {
			return nil, fmt.Errorf("row %d: start_date: %w", i+1, err)
		}
		if node.EndDate, err = core.ParseDate(rec[4]); err != nil {
			return nil, fmt.Errorf("row %d: end_date: %w", i+1, err)
		}
		if err := node.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, node)
	}
	return out, nil
}

// ReadTransactions parses customer_id,txn_date,txn_type,txn_amount rows.
func ReadTransactions(r io.Reader) ([]core.Transaction, error) {
	records, err := readRecords(r, 4)
	if err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0, len(records))
	for i, rec := range records {
		var (
			tx  core.Transaction
			err error
		)
		if tx.CustomerID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
			return nil, fmt.Errorf("row %d: customer_id: %w", i+1, err)
		}
		if tx.TxnDate, err = core.ParseDate(rec[1]); err != nil {
			return nil, fmt.Errorf("row %d: txn_date: %w", i+1, err)
		}
		tx.TxnType = core.TxnType(rec[2])
		if tx.Amount.Cents, err = core.ParseDecimalToCents(rec[3]); err != nil {
			return nil, fmt.Errorf("row %d: txn_amount %q: %w", i+1, rec[3], err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// readRecords reads all rows after the header, enforcing the column count.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil // skip header
}
