package reports

import (
	"testing"

	"databank/internal/core"
)

func TestSimpleInterestMonthlyGrowth(t *testing.T) {
	tests := []struct {
		name    string
		initial int64
		want    int64
	}{
		{"zero allocation", 0, 0},
		{"1000.00 grows to exactly 1005.00", 100000, 100500},
		{"1.00 rounds half up", 100, 101},   // 1.005 -> 1.01
		{"0.50 rounds down", 50, 50},        // 0.5025 -> 0.50
		{"9.99 rounds half up", 999, 1004},  // 1003.995 cents -> 1004
		{"large allocation", 10000000, 10050000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimpleInterestMonthlyGrowth(core.Money{Cents: tt.initial})
			if got.Cents != tt.want {
				t.Errorf("SimpleInterestMonthlyGrowth(%d) = %d cents, want %d", tt.initial, got.Cents, tt.want)
			}
		})
	}
}
