package reports

import (
	"context"
	"path/filepath"
	"testing"

	"databank/internal/core"
	"databank/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewService(repo), repo
}

func TestReallocationPercentiles(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := repo.InsertRegions(ctx, []core.Region{{RegionID: 1, RegionName: "Africa"}}); err != nil {
		t.Fatalf("InsertRegions() error = %v", err)
	}
	if err := repo.InsertCustomerNodes(ctx, []core.CustomerNode{
		// 10-day and 20-day spans.
		{CustomerID: 1, RegionID: 1, NodeID: 1, StartDate: core.NewDate(2020, 1, 1), EndDate: core.NewDate(2020, 1, 11)},
		{CustomerID: 2, RegionID: 1, NodeID: 2, StartDate: core.NewDate(2020, 1, 1), EndDate: core.NewDate(2020, 1, 21)},
	}); err != nil {
		t.Fatalf("InsertCustomerNodes() error = %v", err)
	}

	got, err := svc.ReallocationPercentiles(ctx)
	if err != nil {
		t.Fatalf("ReallocationPercentiles() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReallocationPercentiles() length = %d, want 1", len(got))
	}

	want := core.ReallocationPercentiles{RegionName: "Africa", MedianDays: 15, P80Days: 18, P95Days: 19.5}
	if got[0] != want {
		t.Errorf("ReallocationPercentiles()[0] = %+v, want %+v", got[0], want)
	}
}

func TestPctCustomersBalanceIncrease(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	deposit := func(customer int64, y, m, d int, cents int64) core.Transaction {
		return core.Transaction{CustomerID: customer, TxnDate: core.NewDate(y, m, d), TxnType: core.Deposit, Amount: core.Money{Cents: cents}}
	}
	purchase := func(customer int64, y, m, d int, cents int64) core.Transaction {
		return core.Transaction{CustomerID: customer, TxnDate: core.NewDate(y, m, d), TxnType: core.Purchase, Amount: core.Money{Cents: cents}}
	}

	if err := repo.InsertTransactions(ctx, []core.Transaction{
		// Customer 1 doubles month over month: counted, increased.
		deposit(1, 2021, 1, 5, 10000), deposit(1, 2021, 2, 5, 20000),
		// Customer 2 is flat: counted, not increased.
		deposit(2, 2021, 1, 5, 10000), deposit(2, 2021, 2, 5, 10000),
		// Customer 3 grows 4%, under the 5% threshold: counted, not increased.
		deposit(3, 2021, 1, 5, 10000), deposit(3, 2021, 2, 5, 10400),
		// Customer 4 grows 1%: counted, not increased.
		deposit(4, 2021, 1, 5, 10000), deposit(4, 2021, 2, 5, 10100),
		// Customer 5 has a non-positive monthly minimum: no defined
		// ratio, excluded from numerator and denominator.
		deposit(5, 2021, 1, 5, 10000), purchase(5, 2021, 2, 5, 5000),
	}); err != nil {
		t.Fatalf("InsertTransactions() error = %v", err)
	}

	got, err := svc.PctCustomersBalanceIncrease(ctx)
	if err != nil {
		t.Fatalf("PctCustomersBalanceIncrease() error = %v", err)
	}
	if got != 25.0 {
		t.Errorf("PctCustomersBalanceIncrease() = %v, want 25.0 (1 of 4 counted customers)", got)
	}
}

func TestPctCustomersBalanceIncreaseEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.PctCustomersBalanceIncrease(context.Background())
	if err != nil {
		t.Fatalf("PctCustomersBalanceIncrease() error = %v", err)
	}
	if got != 0 {
		t.Errorf("PctCustomersBalanceIncrease() on empty dataset = %v, want 0", got)
	}
}

func TestBalancePoliciesFromStore(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := repo.InsertTransactions(ctx, []core.Transaction{
		{CustomerID: 1, TxnDate: core.NewDate(2021, 1, 2), TxnType: core.Deposit, Amount: core.Money{Cents: 10000}},
		{CustomerID: 1, TxnDate: core.NewDate(2021, 1, 15), TxnType: core.Purchase, Amount: core.Money{Cents: 3000}},
		{CustomerID: 1, TxnDate: core.NewDate(2021, 2, 3), TxnType: core.Deposit, Amount: core.Money{Cents: 5000}},
	}); err != nil {
		t.Fatalf("InsertTransactions() error = %v", err)
	}

	running, err := svc.RunningBalances(ctx)
	if err != nil {
		t.Fatalf("RunningBalances() error = %v", err)
	}
	wantRunning := []int64{10000, 7000, 12000}
	if len(running) != len(wantRunning) {
		t.Fatalf("RunningBalances() length = %d, want %d", len(running), len(wantRunning))
	}
	for i, want := range wantRunning {
		if running[i].Balance.Cents != want {
			t.Errorf("RunningBalances()[%d] = %d cents, want %d", i, running[i].Balance.Cents, want)
		}
	}

	prior, err := svc.PriorMonthEndBalances(ctx)
	if err != nil {
		t.Fatalf("PriorMonthEndBalances() error = %v", err)
	}
	if len(prior) != 2 {
		t.Fatalf("PriorMonthEndBalances() length = %d, want 2", len(prior))
	}
	if prior[0].Balance.Cents != 7000 || prior[1].Balance.Cents != 12000 {
		t.Errorf("PriorMonthEndBalances() = %d, %d cents, want 7000, 12000",
			prior[0].Balance.Cents, prior[1].Balance.Cents)
	}

	trailing, err := svc.TrailingAverageBalances(ctx)
	if err != nil {
		t.Fatalf("TrailingAverageBalances() error = %v", err)
	}
	if len(trailing) != 3 {
		t.Fatalf("TrailingAverageBalances() length = %d, want 3", len(trailing))
	}
	if trailing[0].AvgCents != 10000 || trailing[1].AvgCents != 3500 || trailing[2].AvgCents != 4000 {
		t.Errorf("TrailingAverageBalances() = %v, %v, %v, want 10000, 3500, 4000",
			trailing[0].AvgCents, trailing[1].AvgCents, trailing[2].AvgCents)
	}
}

func TestRunAll(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := repo.InsertRegions(ctx, []core.Region{{RegionID: 1, RegionName: "Africa"}}); err != nil {
		t.Fatalf("InsertRegions() error = %v", err)
	}
	if err := repo.InsertCustomerNodes(ctx, []core.CustomerNode{
		{CustomerID: 1, RegionID: 1, NodeID: 1, StartDate: core.NewDate(2020, 1, 1), EndDate: core.NewDate(2020, 1, 11)},
	}); err != nil {
		t.Fatalf("InsertCustomerNodes() error = %v", err)
	}
	if err := repo.InsertTransactions(ctx, []core.Transaction{
		{CustomerID: 1, TxnDate: core.NewDate(2021, 1, 2), TxnType: core.Deposit, Amount: core.Money{Cents: 10000}},
	}); err != nil {
		t.Fatalf("InsertTransactions() error = %v", err)
	}

	battery, err := svc.RunAll(ctx)
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	if battery.UniqueNodeCount != 1 {
		t.Errorf("UniqueNodeCount = %d, want 1", battery.UniqueNodeCount)
	}
	if len(battery.NodesPerRegion) != 1 {
		t.Errorf("NodesPerRegion length = %d, want 1", len(battery.NodesPerRegion))
	}
	if battery.AvgReallocationDays == nil || *battery.AvgReallocationDays != 10 {
		t.Errorf("AvgReallocationDays = %v, want 10", battery.AvgReallocationDays)
	}
	if len(battery.MonthlyClosingBalances) != 1 {
		t.Errorf("MonthlyClosingBalances length = %d, want 1", len(battery.MonthlyClosingBalances))
	}
	if len(battery.RunningBalances) != 1 {
		t.Errorf("RunningBalances length = %d, want 1", len(battery.RunningBalances))
	}
}
