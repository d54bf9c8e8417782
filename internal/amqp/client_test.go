package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{40, 30 * time.Second}, // shift overflow still capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"handler error", errors.New("report failed"), false},
		{"validation error", errors.New("unknown report"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestNewReportRequestMessage(t *testing.T) {
	msg := NewReportRequestMessage(ReportClosingBalances)

	if msg.Report != ReportClosingBalances {
		t.Errorf("Report = %q, want %q", msg.Report, ReportClosingBalances)
	}
	if msg.RequestedAt.IsZero() {
		t.Error("RequestedAt should not be zero")
	}
	if time.Since(msg.RequestedAt) > time.Second {
		t.Error("RequestedAt should be recent")
	}
}

func TestReportRequestMessage_Validate(t *testing.T) {
	valid := []string{ReportAll, ReportNodes, ReportReallocation,
		ReportTransactions, ReportClosingBalances, ReportBalancePolicies}
	for _, report := range valid {
		if err := NewReportRequestMessage(report).Validate(); err != nil {
			t.Errorf("%q: expected ok, got %v", report, err)
		}
	}

	if err := NewReportRequestMessage("cohorts").Validate(); err == nil {
		t.Error("expected error for unknown report")
	}
	if err := NewReportRequestMessage("").Validate(); err == nil {
		t.Error("expected error for empty report")
	}
}

func TestReportRequestMessage_JSON(t *testing.T) {
	requestedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ReportRequestMessage{
		Report:      ReportAll,
		RequestedAt: requestedAt,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ReportRequestMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ReportRequestMessageFromJSON() error = %v", err)
	}

	if parsed.Report != msg.Report {
		t.Errorf("Parsed Report = %q, want %q", parsed.Report, msg.Report)
	}
	if !parsed.RequestedAt.Equal(msg.RequestedAt) {
		t.Errorf("Parsed RequestedAt = %v, want %v", parsed.RequestedAt, msg.RequestedAt)
	}
}

func TestReportRequestMessage_InvalidJSON(t *testing.T) {
	if _, err := ReportRequestMessageFromJSON([]byte(`{"report": 42`)); err == nil {
		t.Error("ReportRequestMessageFromJSON() should fail with invalid JSON")
	}
}
