package fuel

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	usThousandsPattern      = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
	idThousandsPattern      = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
	trailingFractionPattern = regexp.MustCompile(`[.,]\d+$`)
	leadingNumberPattern    = regexp.MustCompile(`^-?\d+(\.\d+)?`)
	nonSeparatorPattern     = regexp.MustCompile(`[^0-9.,]`)
	nonDigitPattern         = regexp.MustCompile(`\D`)
)

// Normalize parses a number written in either Indonesian (1.234,5) or US
// (1,234.5) convention. Unparsable input yields zero.
func Normalize(raw string) decimal.Decimal {
	s := strings.Join(strings.Fields(raw), "")
	if s == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The separator that appears last is the decimal mark.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if usThousandsPattern.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	case lastDot >= 0:
		if idThousandsPattern.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	return parseOrZero(s)
}

// NormalizeAny accepts loosely typed input such as decoded JSON values.
// nil and unsupported types yield zero.
func NormalizeAny(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case string:
		return Normalize(x)
	case *string:
		if x == nil {
			return decimal.Zero
		}
		return Normalize(*x)
	case json.Number:
		// JSON numbers are never locale formatted
		return parseOrZero(x.String())
	case decimal.Decimal:
		return x
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return decimal.NewFromInt(int64(x))
	case uint32:
		return decimal.NewFromInt(int64(x))
	default:
		return decimal.Zero
	}
}

// ParseNumber is Normalize with a float result.
func ParseNumber(raw string) float64 {
	return Normalize(raw).InexactFloat64()
}

// ParseHeight parses a dipstick height where both ',' and '.' mark decimals.
// Trailing text after the leading number is ignored.
func ParseHeight(raw string) decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	m := leadingNumberPattern.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	return parseOrZero(m)
}

// ParseIndonesian parses a value where '.' groups thousands and ',' marks decimals.
func ParseIndonesian(raw string) decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return parseOrZero(s)
}

// StripTrailingDecimal drops the last '.' or ',' and the digits after it
// ("1.234,5" -> "1.234"). A lone thousands group is dropped too
// ("1.500" -> "1"), so issuing values should be written without grouping.
func StripTrailingDecimal(raw string) string {
	s := strings.TrimSpace(raw)
	if loc := trailingFractionPattern.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

// ParseIssuing reads an issuing quantity as a whole number of liters.
func ParseIssuing(raw string) int64 {
	s := nonSeparatorPattern.ReplaceAllString(raw, "")
	s = StripTrailingDecimal(s)
	s = nonDigitPattern.ReplaceAllString(s, "")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
