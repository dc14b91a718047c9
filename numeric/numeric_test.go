package numeric

import (
	"math"
	"testing"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"1.234", 1234, true},
		{"1,50", 1.5, true},
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"abc", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"1.234.567", 1234567, true},
		{"1,234,567", 1234567, true},
		{"1.234.567,89", 1234567.89, true},
		{"12,5", 12.5, true},
		{"12.5", 12.5, true},
		{"0,125", 125, true},
		{"Gs. 1.500.000", 1500000, true},
		{"1.500.000 Gs", 1500000, true},
		{"₲ 25.000", 25000, true},
		{"$1,234.50", 1234.5, true},
		{"1\u00a0234,5", 1234.5, true},
		{"1 234,50", 1234.5, true},
		{"-1.234", -1234, true},
		{"-", 0, false},
		{".", 0, false},
		{"1-2", 0, false},
		{"42", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseText(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseText(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ParseText(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
		ok       bool
	}{
		{"nil", nil, 0, false},
		{"float", 1234.5, 1234.5, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"string", "1,50", 1.5, true},
		{"unsupported", []byte("1"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok || (ok && got != tt.expected) {
				t.Errorf("Parse(%v) = %v, %v; want %v, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestRoundHalfEven(t *testing.T) {
	tests := []struct {
		input    float64
		expected int64
	}{
		{2.5, 2},
		{3.5, 4},
		{-2.5, -2},
		{2.4999, 2},
		{2.5001, 3},
		{1000.0, 1000},
	}
	for _, tt := range tests {
		if got := RoundHalfEven(tt.input); got != tt.expected {
			t.Errorf("RoundHalfEven(%v) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestParseInt(t *testing.T) {
	if n, ok := ParseInt("1.234,5"); !ok || n != 1234 {
		t.Errorf("ParseInt(1.234,5) = %d, %v; want 1234 (half to even)", n, ok)
	}
	if n, ok := ParseInt(3.5); !ok || n != 4 {
		t.Errorf("ParseInt(3.5) = %d, %v", n, ok)
	}
	if _, ok := ParseInt("n/a"); ok {
		t.Error("expected failure for n/a")
	}
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{-45000, "-45.000"},
		{100000, "100.000"},
	}
	for _, tt := range tests {
		if got := FormatThousands(tt.input); got != tt.expected {
			t.Errorf("FormatThousands(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
