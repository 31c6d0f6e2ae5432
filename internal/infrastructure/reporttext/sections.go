package reporttext

import (
	"regexp"
	"strings"
)

// section identifies the block a line belongs to.
type section int

const (
	sectionNone section = iota
	sectionHeader
	sectionIssuing
	sectionSonding
	sectionFlow
	sectionRitasi
	sectionTransfer
	sectionReadiness
	sectionFilter
	sectionNote
	sectionUnknown
)

var sectionNames = map[section]string{
	sectionNone:      "none",
	sectionHeader:    "header",
	sectionIssuing:   "issuing",
	sectionSonding:   "sonding",
	sectionFlow:      "flowmeter",
	sectionRitasi:    "ritasi",
	sectionTransfer:  "transfer",
	sectionReadiness: "readiness",
	sectionFilter:    "filter",
	sectionNote:      "note",
	sectionUnknown:   "unknown",
}

func (s section) String() string {
	return sectionNames[s]
}

// collectsData reports whether lines of the section carry unit data
func (s section) collectsData() bool {
	return s != sectionNone && s != sectionHeader && s != sectionUnknown
}

type marker struct {
	pattern *regexp.Regexp
	section section
}

// markers are checked in order; the first match wins.
var markers = []marker{
	{regexp.MustCompile(`(?i)^\*+\s*ISSUING`), sectionIssuing},
	{regexp.MustCompile(`(?i)^\*+\s*SONDING`), sectionSonding},
	{regexp.MustCompile(`(?i)^\*+\s*FLOW\s*METER`), sectionFlow},
	{regexp.MustCompile(`(?i)^\*+\s*RITASI`), sectionRitasi},
	{regexp.MustCompile(`(?i)^\*+\s*(WAREHOUSE\s+)?TRANSFER`), sectionTransfer},
	{regexp.MustCompile(`(?i)^\*+\s*READINESS`), sectionReadiness},
	{regexp.MustCompile(`(?i)^\*+\s*(PENGGANTIAN\s+)?FILTER`), sectionFilter},
	{regexp.MustCompile(`(?i)^\*+\s*NOTE`), sectionNote},
	{regexp.MustCompile(`(?i)^\*+\s*(TANGGAL|SHIFT|REPORT|LAPORAN)`), sectionHeader},
}

// classify returns the section a marker line opens. ok is false for
// ordinary lines.
func classify(line string) (s section, ok bool) {
	if !strings.HasPrefix(line, "*") {
		return sectionNone, false
	}
	for _, m := range markers {
		if m.pattern.MatchString(line) {
			return m.section, true
		}
	}
	return sectionUnknown, true
}

// block is the trimmed, non-empty, non-marker body of one section occurrence.
type block struct {
	section section
	marker  string
	lines   []string
}

// split cuts text into blocks at marker lines. Lines before the first
// marker form a sectionNone block.
func split(text string) []block {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	current := block{section: sectionNone}
	blocks := make([]block, 0, 8)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if s, ok := classify(line); ok {
			blocks = append(blocks, current)
			current = block{section: s, marker: line}
			continue
		}
		current.lines = append(current.lines, line)
	}
	return append(blocks, current)
}
