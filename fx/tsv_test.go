package fx

import (
	"strings"
	"testing"
)

func TestMakeTSV(t *testing.T) {
	expected := "Date\tBase\tINR\tEUR\n" +
		"2010-01-01\tUSD\t46.210000\t0.697500\n" +
		"2010-01-02\tUSD\t46.300000\t\n"

	var f strings.Builder
	var values = [][]any{
		[]any{"Date", "Base", "INR", "EUR"},
		[]any{"2010-01-01", "USD", "46.210000", "0.697500"},
		[]any{"Total", "", "92.51"},
		[]any{},
		[]any{"2010-01-02", "USD", "46.300000"},
	}

	err := MakeTSV(&f, values)
	if err != nil {
		t.Fatalf("Unexpected error returned from MakeTSV (%v)", err)
	}

	if f.String() != expected {
		t.Errorf("Incorrect TSV\n   expected: %s\n   got:      %s\n", expected, f.String())
	}
}

func TestMakeTSVWithEmptySheet(t *testing.T) {
	var f strings.Builder

	err := MakeTSV(&f, [][]any{})
	if err == nil {
		t.Fatalf("Expected error return for empty sheet, got %v", err)
	}
}

func TestMakeTSVWithoutHeaders(t *testing.T) {
	var f strings.Builder

	err := MakeTSV(&f, [][]any{[]any{}})
	if err == nil {
		t.Fatalf("Expected error return for missing headers, got %v", err)
	}
}

func TestMakeTSVWithMissingDate(t *testing.T) {
	var f strings.Builder

	err := MakeTSV(&f, [][]any{[]any{"Day", "Base"}})
	if err == nil {
		t.Fatalf("Expected error return for missing 'date' column, got %v", err)
	}
}

func TestMakeTSVWithMissingBase(t *testing.T) {
	var f strings.Builder

	err := MakeTSV(&f, [][]any{[]any{"Date"}})
	if err == nil {
		t.Fatalf("Expected error return for missing 'base' column, got %v", err)
	}
}
