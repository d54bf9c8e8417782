package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"databank/internal/core"
	"databank/internal/storage"
)

func TestReadRegions(t *testing.T) {
	input := "region_id,region_name\n1,Africa\n2,Asia\n"

	got, err := ReadRegions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRegions() error = %v", err)
	}

	want := []core.Region{
		{RegionID: 1, RegionName: "Africa"},
		{RegionID: 2, RegionName: "Asia"},
	}
	if len(got) != len(want) {
		t.Fatalf("ReadRegions() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadRegions()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadRegionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"non-numeric id", "region_id,region_name\nabc,Africa\n"},
		{"empty region name", "region_id,region_name\n1,\n"},
		{"wrong column count", "region_id,region_name\n1,Africa,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadRegions(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadRegions() error = nil, want error")
			}
		})
	}
}

func TestReadCustomerNodes(t *testing.T) {
	input := "customer_id,region_id,node_id,start_date,end_date\n1,1,4,2020-01-02,2020-01-03\n"

	got, err := ReadCustomerNodes(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCustomerNodes() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReadCustomerNodes() length = %d, want 1", len(got))
	}

	node := got[0]
	if node.CustomerID != 1 || node.RegionID != 1 || node.NodeID != 4 {
		t.Errorf("ReadCustomerNodes()[0] ids = %+v, want 1,1,4", node)
	}
	if node.StartDate.String() != "2020-01-02" || node.EndDate.String() != "2020-01-03" {
		t.Errorf("ReadCustomerNodes()[0] dates = %s..%s, want 2020-01-02..2020-01-03",
			node.StartDate, node.EndDate)
	}
}

func TestReadCustomerNodesRejectsInvertedSpan(t *testing.T) {
	input := "customer_id,region_id,node_id,start_date,end_date\n1,1,4,2020-02-01,2020-01-01\n"

	if _, err := ReadCustomerNodes(strings.NewReader(input)); err == nil {
		t.Error("ReadCustomerNodes() error = nil, want error for start after end")
	}
}

func TestReadTransactions(t *testing.T) {
	input := strings.Join([]string{
		"customer_id,txn_date,txn_type,txn_amount",
		"1,2021-01-02,deposit,312.70",
		"1,2021-01-15,purchase,30",
		"2,2021-02-03,withdrawal,12.346",
		"",
	}, "\n")

	got, err := ReadTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTransactions() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadTransactions() length = %d, want 3", len(got))
	}

	wantCents := []int64{31270, 3000, 1235}
	wantTypes := []core.TxnType{core.Deposit, core.Purchase, core.Withdrawal}
	for i := range got {
		if got[i].Amount.Cents != wantCents[i] {
			t.Errorf("ReadTransactions()[%d].Amount = %d cents, want %d", i, got[i].Amount.Cents, wantCents[i])
		}
		if got[i].TxnType != wantTypes[i] {
			t.Errorf("ReadTransactions()[%d].TxnType = %q, want %q", i, got[i].TxnType, wantTypes[i])
		}
	}
}

func TestReadTransactionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", "customer_id,txn_date,txn_type,txn_amount\n1,2021-01-02,transfer,10.00\n"},
		{"negative amount", "customer_id,txn_date,txn_type,txn_amount\n1,2021-01-02,deposit,-10.00\n"},
		{"bad date", "customer_id,txn_date,txn_type,txn_amount\n1,01/02/2021,deposit,10.00\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTransactions(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadTransactions() error = nil, want error")
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		RegionsFile:      "region_id,region_name\n1,Africa\n",
		NodesFile:        "customer_id,region_id,node_id,start_date,end_date\n1,1,4,2020-01-02,2020-01-12\n",
		TransactionsFile: "customer_id,txn_date,txn_type,txn_amount\n1,2021-01-02,deposit,312.70\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := LoadDir(ctx, repo, dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	count, err := repo.UniqueNodeCount(ctx)
	if err != nil {
		t.Fatalf("UniqueNodeCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("UniqueNodeCount() after load = %d, want 1", count)
	}

	summary, err := repo.TransactionTypeSummary(ctx)
	if err != nil {
		t.Fatalf("TransactionTypeSummary() error = %v", err)
	}
	if len(summary) != 1 || summary[0].TotalAmount.Cents != 31270 {
		t.Errorf("TransactionTypeSummary() after load = %+v, want one deposit row of 31270 cents", summary)
	}
}

func TestLoadDirMissingFile(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	if err := LoadDir(context.Background(), repo, t.TempDir()); err == nil {
		t.Error("LoadDir() error = nil, want error for missing files")
	}
}
