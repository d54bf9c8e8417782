package core

import (
	"testing"
	"time"
)

func TestTxnTypeSign(t *testing.T) {
	cases := []struct {
		tt   TxnType
		want int64
	}{
		{Deposit, 1},
		{Purchase, -1},
		{Withdrawal, -1},
		{TxnType("fee"), 0},
	}
	for _, tc := range cases {
		if got := tc.tt.Sign(); got != tc.want {
			t.Fatalf("%s: sign %d, want %d", tc.tt, got, tc.want)
		}
	}
}

func TestTxnTypeValidate(t *testing.T) {
	for _, tt := range []TxnType{Deposit, Purchase, Withdrawal} {
		if err := tt.Validate(); err != nil {
			t.Fatalf("%s: expected ok, got %v", tt, err)
		}
	}
	if err := TxnType("transfer").Validate(); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestDateMonthEnd(t *testing.T) {
	cases := []struct {
		d    Date
		want Date
	}{
		{NewDate(2021, 1, 5), NewDate(2021, 1, 31)},
		{NewDate(2021, 2, 2), NewDate(2021, 2, 28)},
		{NewDate(2020, 2, 15), NewDate(2020, 2, 29)}, // leap year
		{NewDate(2021, 12, 31), NewDate(2021, 12, 31)},
	}
	for _, tc := range cases {
		if got := tc.d.MonthEnd(); !got.Equal(tc.want.Time) {
			t.Fatalf("MonthEnd(%s) = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestDateMonthKey(t *testing.T) {
	if got := NewDate(2021, 3, 17).MonthKey(); got != 202103 {
		t.Fatalf("MonthKey = %d, want 202103", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-01-11")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !d.Equal(NewDate(2020, 1, 11).Time) {
		t.Fatalf("parsed %s", d)
	}
	if _, err := ParseDate("11/01/2020"); err == nil {
		t.Fatal("expected error for bad format")
	}
}

func TestCustomerNodeValidate(t *testing.T) {
	good := CustomerNode{
		CustomerID: 1, RegionID: 1, NodeID: 4,
		StartDate: NewDate(2020, 1, 1),
		EndDate:   NewDate(2020, 1, 11),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.StartDate, bad.EndDate = bad.EndDate, bad.StartDate
	if err := bad.Validate(); err != ErrInvalidDateSpan {
		t.Fatalf("expected ErrInvalidDateSpan, got %v", err)
	}

	zero := good
	zero.EndDate = Date{Time: time.Time{}}
	if err := zero.Validate(); err == nil {
		t.Fatal("expected error for zero end date")
	}
}

func TestReallocationDays(t *testing.T) {
	cn := CustomerNode{
		StartDate: NewDate(2020, 1, 1),
		EndDate:   NewDate(2020, 1, 21),
	}
	if got := cn.ReallocationDays(); got != 20 {
		t.Fatalf("ReallocationDays = %v, want 20", got)
	}
}

func TestTransactionValidateAndSign(t *testing.T) {
	tx := Transaction{
		CustomerID: 1,
		TxnDate:    NewDate(2021, 1, 5),
		TxnType:    Withdrawal,
		Amount:     Money{Cents: 3000},
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := tx.SignedCents(); got != -3000 {
		t.Fatalf("SignedCents = %d, want -3000", got)
	}

	tx.Amount.Cents = -1
	if err := tx.Validate(); err != ErrNegativeAmount {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}
