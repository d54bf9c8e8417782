package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Deposit    TxnType = "deposit"
	Purchase   TxnType = "purchase"
	Withdrawal TxnType = "withdrawal"
)

type (
	TxnType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Region is static reference data: a named partition of nodes.
	Region struct {
		RegionID   int64
		RegionName string
	}

	// CustomerNode is a time-bounded assignment of a customer to a node
	// within a region. A customer may carry multiple historical assignments.
	CustomerNode struct {
		CustomerID int64
		RegionID   int64
		NodeID     int64
		StartDate  Date
		EndDate    Date
	}

	// Transaction is one row of the append-only customer transaction log.
	// Amount is always non-negative; the sign convention lives in TxnType.
	Transaction struct {
		CustomerID int64
		TxnDate    Date
		TxnType    TxnType
		Amount     Money
	}
)

var (
	ErrInvalidTxnType  = errors.New("invalid transaction type")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrInvalidDateSpan = errors.New("start date after end date")
	ErrEmptyRegionName = errors.New("empty region name")
)

// Sign returns the contribution direction of a transaction type to a
// balance: deposits add, purchases and withdrawals subtract, anything
// else contributes nothing.
func (t TxnType) Sign() int64 {
	switch t {
	case Deposit:
		return 1
	case Purchase, Withdrawal:
		return -1
	default:
		return 0
	}
}

func (t TxnType) Validate() error {
	switch t {
	case Deposit, Purchase, Withdrawal:
		return nil
	default:
		return ErrInvalidTxnType
	}
}

// NewDate creates a new Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String renders the date in the storage format (YYYY-MM-DD).
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthEnd returns the final calendar day of the date's month.
func (d Date) MonthEnd() Date {
	y, m, _ := d.Date()
	return Date{Time: time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string rather
// than the RFC 3339 timestamp of the embedded time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON renders money as integer cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	cents, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// MonthKey returns the year and month as a single sortable integer
// (e.g. 2021-03 -> 202103), used as a calendar-month grouping key.
func (d Date) MonthKey() int {
	y, m, _ := d.Date()
	return y*100 + int(m)
}

func (r Region) Validate() error {
	if strings.TrimSpace(r.RegionName) == "" {
		return ErrEmptyRegionName
	}
	return nil
}

func (cn CustomerNode) Validate() error {
	if err := cn.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := cn.EndDate.Validate(); err != nil {
		return errors.New("invalid end date: " + err.Error())
	}
	if cn.EndDate.Before(cn.StartDate.Time) {
		return ErrInvalidDateSpan
	}
	return nil
}

// ReallocationDays returns the elapsed days between the assignment's
// start and end dates.
func (cn CustomerNode) ReallocationDays() float64 {
	return cn.EndDate.Sub(cn.StartDate.Time).Hours() / 24
}

func (tx Transaction) Validate() error {
	if err := tx.TxnDate.Validate(); err != nil {
		return err
	}
	if err := tx.TxnType.Validate(); err != nil {
		return err
	}
	if tx.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// SignedCents returns the transaction amount with the type's sign applied.
func (tx Transaction) SignedCents() int64 {
	return tx.TxnType.Sign() * tx.Amount.Cents
}
