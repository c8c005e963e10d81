package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{"2025-01-01", true},
		{"2024-02-29", true},
		{NewDate(2025, 12, 31), true},
		{"", false},
		{"2025-1-01", false}, // not zero padded
		{"2023-02-29", false},
		{"2025-13-01", false},
		{"01/02/2025", false},
		{"2025-01-01T00:00:00Z", false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.d)
		}
	}
}

func TestDateOfUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 08:00 local on the 11th is 22:00 UTC on the 10th
	now := time.Date(2024, 1, 11, 8, 0, 0, 0, loc)
	if got := DateOf(now); got != "2024-01-10" {
		t.Fatalf("expected 2024-01-10, got %s", got)
	}
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: "2024-01-05", End: "2024-01-10"}
	for d, want := range map[Date]bool{
		"2024-01-04": false,
		"2024-01-05": true,
		"2024-01-10": true,
		"2024-01-11": false,
	} {
		if r.Contains(d) != want {
			t.Fatalf("Contains(%s) expected %v", d, want)
		}
	}
	if !(DateRange{End: "2024-01-10"}).Contains("1999-01-01") {
		t.Fatalf("open start should contain early dates")
	}
	if err := (DateRange{Start: "2024-02-01", End: "2024-01-01"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for reversed range, got %v", err)
	}
	if err := (DateRange{Start: "bad"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for malformed bound, got %v", err)
	}
	if err := (DateRange{}).Validate(); err != nil {
		t.Fatalf("empty range should be valid: %v", err)
	}
}

func TestSaleInputValidate(t *testing.T) {
	good := SaleInput{Amount: "100", Category: "retail", Date: "2024-01-10", Notes: "  walk-in\x07 "}
	data, err := good.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if data.Amount.String() != "100.00" || data.Category != CategoryRetail || data.Notes != "walk-in" {
		t.Fatalf("unexpected normalization: %+v", data)
	}

	_, err = SaleInput{Amount: "abc", Category: "", Date: "2024-13-01"}.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, f := range []string{"amount", "category", "date"} {
		if !verr.Has(f) {
			t.Fatalf("expected %s to be reported, got %v", f, verr)
		}
	}
	if verr.Has("notes") {
		t.Fatalf("notes should be valid")
	}

	if _, err := (SaleInput{Amount: "1", Category: "rent", Date: "2024-01-10"}).Validate(); err == nil {
		t.Fatalf("expense type must not be accepted as sale category")
	}
	if _, err := (SaleInput{Amount: "1", Category: "retail", Date: "2024-01-10", Notes: strings.Repeat("x", 501)}).Validate(); err == nil {
		t.Fatalf("expected error for long notes")
	}
}

func TestExpenseInputValidate(t *testing.T) {
	data, err := ExpenseInput{Amount: "30,5", Type: "rent", Date: "2024-01-10"}.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if data.Amount.String() != "30.50" || data.Type != ExpenseRent {
		t.Fatalf("unexpected normalization: %+v", data)
	}

	bads := []ExpenseInput{
		{Amount: "", Type: "rent", Date: "2024-01-10"},
		{Amount: "1", Type: "", Date: "2024-01-10"},
		{Amount: "1", Type: "retail", Date: "2024-01-10"},
		{Amount: "1", Type: "rent", Date: ""},
		{Amount: "-1", Type: "rent", Date: "2024-01-10"},
	}
	for i, in := range bads {
		if _, err := in.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d expected invalid input, got %v", i, err)
		}
	}
}

func TestSalePatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	sale := Sale{ID: 1, UserID: "u1", Amount: MoneyFromCents(1000), Category: CategoryRetail, Date: "2024-01-01", Notes: "a", CreatedAt: created, UpdatedAt: created}

	amount := "12.5"
	ch, err := SalePatch{Amount: &amount}.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	now := created.Add(time.Hour)
	got := sale.Apply(ch, now)
	if got.Amount.String() != "12.50" {
		t.Fatalf("amount not applied: %s", got.Amount)
	}
	if got.Category != CategoryRetail || got.Date != "2024-01-01" || got.Notes != "a" {
		t.Fatalf("omitted fields must keep prior values: %+v", got)
	}
	if !got.UpdatedAt.Equal(now) || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected timestamps: %+v", got)
	}

	bad := "nope"
	if _, err := (SalePatch{Category: &bad, Date: &bad}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestParseEntryKind(t *testing.T) {
	for _, s := range []string{"", "sale", "expense"} {
		if _, err := ParseEntryKind(s); err != nil {
			t.Fatalf("%q expected ok, got %v", s, err)
		}
	}
	if _, err := ParseEntryKind("refund"); err == nil {
		t.Fatalf("expected error")
	}
	if !EntryKind("").Includes(KindSale) || KindExpense.Includes(KindSale) {
		t.Fatalf("unexpected Includes semantics")
	}
}

func TestNormalizeTextStripsControlCharacters(t *testing.T) {
	cases := map[string]string{
		"bell\x07":             "bell",
		"del\x7f":              "del",
		"c1\u0085\u009b range": "c1 range",
		"tab\tkept":            "tab\tkept",
		"line\r\nbreaks":       "line\r\nbreaks",
		"caffè ☕":              "caffè ☕",
	}
	for in, want := range cases {
		got, err := normalizeText(in)
		if err != nil || got != want {
			t.Errorf("normalizeText(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}
