// Package reporttext reads and writes the free-form daily fuel report
// operators paste from chat.
package reporttext

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fuelops/backend/internal/domain/fuel"
)

var (
	datePattern  = regexp.MustCompile(`\b(\d{1,2})\s*[/.-]\s*(\d{1,2})\s*[/.-]\s*(\d{2,4})\b`)
	shiftPattern = regexp.MustCompile(`(?i)SHIFT\s*:?\s*(\d{1,2})`)

	bulletPattern   = regexp.MustCompile(`^(?:[-•·]|\d{1,2}[.)])\s+`)
	unitLinePattern = regexp.MustCompile(`^([A-Za-z0-9_-]+)\s*[=:]\s*(.*)$`)
	parenPattern    = regexp.MustCompile(`^(.*?)\s*\((.*)\)\s*$`)
	filterPattern   = regexp.MustCompile(`^([^*]*?)\s*(?:\*\s*(.*))?$`)
	ritasiStrip     = regexp.MustCompile(`[^0-9.,]`)
)

const maxShift = 3

// Parser turns report text into a fuel.ParseResult.
// A Parser holds no per-call state and is safe for concurrent use.
type Parser struct {
	ledger   fuel.Ledger
	previous fuel.ReportHeader
	logger   *zap.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithHubCode sets the warehouse code that marks partner transfers
func WithHubCode(code string) Option {
	return func(p *Parser) {
		p.ledger.HubCode = fuel.NormalizeUnitID(code)
	}
}

// WithLogger sets the logger used for skipped lines
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPreviousHeader sets the header kept when the text carries no valid date or shift.
func WithPreviousHeader(h fuel.ReportHeader) Option {
	return func(p *Parser) {
		p.previous = h
	}
}

// New creates a Parser. The hub code defaults to WHBC.
func New(opts ...Option) *Parser {
	p := &Parser{
		ledger: fuel.Ledger{HubCode: fuel.DefaultPolicy().HubCode},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts the header and all unit data. It never fails; lines that
// match nothing are counted in Skipped.
func (p *Parser) Parse(text string) *fuel.ParseResult {
	result := fuel.NewParseResult()
	result.Header = p.previous

	blocks := split(text)
	p.parseHeader(result, blocks)

	for _, b := range blocks {
		if !b.section.collectsData() {
			continue
		}
		for _, line := range b.lines {
			if !p.parseLine(result, b.section, line) {
				result.Skipped++
				p.logger.Debug("Skipped report line",
					zap.String("section", b.section.String()),
					zap.String("line", line),
				)
			}
		}
	}

	return result
}

func (p *Parser) parseHeader(result *fuel.ParseResult, blocks []block) {
	var dateSeen, shiftSeen bool
	for _, b := range blocks {
		if b.section != sectionNone && b.section != sectionHeader {
			continue
		}
		candidates := append([]string{b.marker}, b.lines...)
		for _, line := range candidates {
			if line == "" {
				continue
			}
			if !shiftSeen {
				if shift, ok := parseShift(line); ok {
					result.Header.Shift = shift
					shiftSeen = true
				}
			}
			if !dateSeen {
				if date, ok := parseDate(line); ok {
					result.Header.Date = date
					dateSeen = true
				}
			}
		}
	}

	if !dateSeen || !shiftSeen {
		p.logger.Debug("Report header incomplete, keeping previous values",
			zap.Bool("date_found", dateSeen),
			zap.Bool("shift_found", shiftSeen),
			zap.String("date", result.Header.Date),
			zap.Int("shift", result.Header.Shift),
		)
	}
}

// parseDate reads d/m/y with '/', '-' or '.' separators into ISO form.
func parseDate(line string) (string, bool) {
	m := datePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	switch len(m[3]) {
	case 2:
		year += 2000
	case 4:
	default:
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so a round trip rejects 31/02
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func parseShift(line string) (int, bool) {
	m := shiftPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	shift, err := strconv.Atoi(m[1])
	if err != nil || shift < 1 || shift > maxShift {
		return 0, false
	}
	return shift, true
}

// parseLine applies one body line. It returns false when nothing was recognized.
func (p *Parser) parseLine(result *fuel.ParseResult, s section, line string) bool {
	switch s {
	case sectionNote:
		note := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if note == "" {
			return true
		}
		result.Notes = append(result.Notes, note)
		return true
	case sectionTransfer:
		tr, ok := fuel.ParseTransferLine(bulletPattern.ReplaceAllString(line, ""))
		if !ok {
			return false
		}
		p.ledger.Apply(result, tr)
		return true
	}

	m := unitLinePattern.FindStringSubmatch(bulletPattern.ReplaceAllString(line, ""))
	if m == nil {
		return false
	}
	unitID, value := fuel.NormalizeUnitID(m[1]), strings.TrimSpace(m[2])

	switch s {
	case sectionSonding:
		awal, akhir, ok := splitPair(strings.ReplaceAll(value, ",", "."))
		if !ok {
			return false
		}
		u := result.Unit(unitID)
		u.SondingAwal, u.SondingAkhir = awal, akhir
	case sectionFlow:
		awal, akhir, ok := splitPair(value)
		if !ok {
			return false
		}
		u := result.Unit(unitID)
		u.FlowAwal, u.FlowAkhir = fuel.ParseIndonesian(awal), fuel.ParseIndonesian(akhir)
	case sectionRitasi:
		cleaned := ritasiStrip.ReplaceAllString(value, "")
		if cleaned == "" {
			return false
		}
		u := result.Unit(unitID)
		u.Ritasi = u.Ritasi.Add(fuel.Normalize(cleaned))
	case sectionIssuing:
		if !strings.ContainsAny(value, "0123456789") {
			return false
		}
		result.Unit(unitID).IssuingReport = decimal.NewFromInt(fuel.ParseIssuing(value))
	case sectionReadiness:
		status, lokasi := splitReadiness(value)
		if status == "" {
			return false
		}
		u := result.Unit(unitID)
		u.Status, u.Lokasi = status, lokasi
	case sectionFilter:
		fm := filterPattern.FindStringSubmatch(value)
		if fm == nil || strings.TrimSpace(fm[1]) == "" {
			return false
		}
		result.Unit(unitID)
		result.Filters = append(result.Filters, fuel.FilterReplacement{
			Unit:   unitID,
			Status: strings.ToUpper(strings.TrimSpace(fm[1])),
			Date:   strings.Trim(strings.TrimSpace(fm[2]), "*"),
		})
	default:
		return false
	}
	return true
}

// splitPair splits "awal - akhir" on whitespace and hyphens. A single
// value is used for both readings.
func splitPair(value string) (awal, akhir string, ok bool) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == '-' || r == '–' || r == ' ' || r == '\t'
	})
	numbers := fields[:0]
	for _, f := range fields {
		if strings.ContainsAny(f, "0123456789") {
			numbers = append(numbers, f)
		}
	}
	switch len(numbers) {
	case 0:
		return "", "", false
	case 1:
		return numbers[0], numbers[0], true
	default:
		return numbers[0], numbers[1], true
	}
}

// splitReadiness reads "STATUS - LOCATION" or "STATUS (LOCATION)".
func splitReadiness(value string) (status, lokasi string) {
	if m := parenPattern.FindStringSubmatch(value); m != nil {
		return strings.ToUpper(strings.TrimSpace(m[1])), strings.TrimSpace(m[2])
	}
	parts := strings.SplitN(value, "-", 2)
	status = strings.ToUpper(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		lokasi = strings.TrimSpace(parts[1])
	}
	return status, lokasi
}
