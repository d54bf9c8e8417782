package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Report names accepted in a request. "all" runs the full battery.
const (
	ReportAll             = "all"
	ReportNodes           = "nodes"
	ReportReallocation    = "reallocation"
	ReportTransactions    = "transactions"
	ReportClosingBalances = "closing_balances"
	ReportBalancePolicies = "balance_policies"
)

// ReportRequestMessage asks the worker to compute one report (or the
// whole battery) and, when configured, export it.
type ReportRequestMessage struct {
	Report      string    `json:"report"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewReportRequestMessage creates a request for the named report.
func NewReportRequestMessage(report string) *ReportRequestMessage {
	return &ReportRequestMessage{
		Report:      report,
		RequestedAt: time.Now(),
	}
}

// Validate checks the report name against the known set.
func (m *ReportRequestMessage) Validate() error {
	switch m.Report {
	case ReportAll, ReportNodes, ReportReallocation, ReportTransactions,
		ReportClosingBalances, ReportBalancePolicies:
		return nil
	default:
		return fmt.Errorf("unknown report %q", m.Report)
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON creates a message from JSON bytes
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
