package fuel

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	assert.True(t, want.Equal(actual), append([]any{"expected %s, got %s", want, actual}, msgAndArgs...)...)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"indonesian with decimals", "12.000,50", "12000.5"},
		{"us with decimals", "12,000.50", "12000.5"},
		{"comma decimal", "12,5", "12.5"},
		{"indonesian thousands", "12.000", "12000"},
		{"us thousands", "1,234,567", "1234567"},
		{"four digits with dot", "1.234", "1234"},
		{"four digits with comma", "1,234", "1234"},
		{"dot decimal", "1.5", "1.5"},
		{"plain digits", "600", "600"},
		{"negative indonesian", "-1.234,5", "-1234.5"},
		{"inner whitespace", "1 234,5", "1234.5"},
		{"empty", "", "0"},
		{"blank", "   ", "0"},
		{"garbage", "abc", "0"},
		{"broken groups", "12.34.56", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeAny(t *testing.T) {
	s := "12.000,50"

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "0"},
		{"string", "12,5", "12.5"},
		{"string pointer", &s, "12000.5"},
		{"nil string pointer", (*string)(nil), "0"},
		{"json number", json.Number("1234.5"), "1234.5"},
		{"float", 12.5, "12.5"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"int", 7, "7"},
		{"int64", int64(-3), "-3"},
		{"decimal", decimal.NewFromInt(42), "42"},
		{"unsupported", true, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.expected, NormalizeAny(tt.input))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.InDelta(t, 12000.5, ParseNumber("12.000,50"), 1e-9)
	assert.Equal(t, 0.0, ParseNumber("n/a"))
}

func TestParseHeight(t *testing.T) {
	assertDecimal(t, "125.5", ParseHeight("125,5"))
	assertDecimal(t, "125.5", ParseHeight("125.5 cm"))
	assertDecimal(t, "100", ParseHeight(" 100 "))
	assertDecimal(t, "0", ParseHeight(""))
	assertDecimal(t, "0", ParseHeight("-"))
}

func TestParseIndonesian(t *testing.T) {
	assertDecimal(t, "1600.5", ParseIndonesian("1.600,5"))
	assertDecimal(t, "1000", ParseIndonesian("1.000"))
	assertDecimal(t, "0", ParseIndonesian(""))
}

func TestStripTrailingDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.234,5", "1.234"},
		{"1.234", "1"},
		{"1.500", "1"},
		{"1200.00", "1200"},
		{"1,200", "1"},
		{"1.234.567", "1.234"},
		{"600", "600"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTrailingDecimal(tt.input))
		})
	}
}

func TestParseIssuing(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"600", 600},
		{"1234", 1234},
		{"1.234", 1},
		{"1.500", 1},
		{"1.234,5", 1234},
		{"1,200.50", 1200},
		{"1.234,5 L", 1234},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseIssuing(tt.input))
		})
	}
}
