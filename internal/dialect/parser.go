package dialect

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dynamicRe = regexp.MustCompile(
		`ref\s+autoptr\s+TIntArray\s+data_Zone(\d+)\s*=\s*\{\s*` +
			`(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)` +
			`\s*\}\s*;[ \t]*(?://[ \t]*(.*))?`)
	dynamicLooseRe = regexp.MustCompile(`\bdata_Zone\d+\b`)

	staticRe = regexp.MustCompile(
		`ref\s+autoptr\s+TFloatArray\s+data_HordeStatic(\d+)\s*=\s*\{([^}]*)\}\s*;[ \t]*(?://[ \t]*(.*))?`)
	staticLooseRe = regexp.MustCompile(`\bdata_HordeStatic\d+\b`)

	configRe = regexp.MustCompile(
		`data_Horde_(\d+)_\w*Categories\s*=\s*new\s+Param5[^(]*\(\s*['"]([^'"]*)['"]\s*,\s*(\d+)\s*,\s*([^)]*)\)`)
	configLooseRe = regexp.MustCompile(`\bdata_Horde_\d+_\w*Categories\b`)

	categoryRe = regexp.MustCompile(
		`data_\w+\s*=\s*new\s+Param4[^(]*\(\s*['"]([^'"]*)['"]\s*,\s*(\d+)\s*,\s*\{([^}]*)\}\s*,\s*\{([^}]*)\}\s*\)`)
	categoryLooseRe = regexp.MustCompile(`new\s+Param4\b`)

	numberRe = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	identRe  = regexp.MustCompile(`^\w+$`)
	quotedRe = regexp.MustCompile(`['"]([^'"]*)['"]`)
)

// ParseDynamicZones extracts dynamic-zone records from raw source text.
// Records come back in source order. Lines that mention a zone name without
// matching the full seven-value grammar produce warnings.
//
// Postcondition: every returned record has 1 <= Index and exactly the seven
// parsed values; warnings cover all skipped near-miss lines.
func ParseDynamicZones(src string) ([]DynamicRecord, []Warning) {
	var records []DynamicRecord
	matches := dynamicRe.FindAllStringSubmatchIndex(src, -1)
	for _, m := range matches {
		g := groups(src, m)
		rec := DynamicRecord{
			Index:   mustInt(g[1]),
			Config:  mustInt(g[2]),
			XUL:     mustInt(g[3]),
			ZUL:     mustInt(g[4]),
			XLR:     mustInt(g[5]),
			ZLR:     mustInt(g[6]),
			Qty:     mustInt(g[7]),
			Max:     mustInt(g[8]),
			Comment: strings.TrimSpace(g[9]),
		}
		records = append(records, rec)
	}
	warnings := nearMisses(src, dynamicLooseRe, matches, "dynamic zone declaration did not match")
	return records, warnings
}

// ParseStaticZones extracts static-zone records. The numeric tuple is kept
// as raw tokens; tuples with fewer than twelve fields (the config position
// plus one) or non-numeric tokens are rejected with a warning.
//
// Postcondition: every returned record has at least twelve verbatim numeric
// fields.
func ParseStaticZones(src string) ([]StaticRecord, []Warning) {
	var records []StaticRecord
	var malformed []Warning
	matches := staticRe.FindAllStringSubmatchIndex(src, -1)
	for _, m := range matches {
		g := groups(src, m)
		fields, ok := splitNumericFields(g[2])
		if !ok || len(fields) < 12 {
			malformed = append(malformed, Warning{
				Line:   lineAt(src, m[0]),
				Text:   firstLine(src[m[0]:m[1]]),
				Reason: "static zone tuple is not a list of at least 12 numeric values",
			})
			continue
		}
		records = append(records, StaticRecord{
			Index:   mustInt(g[1]),
			Fields:  fields,
			Comment: strings.TrimSpace(g[3]),
		})
	}
	warnings := nearMisses(src, staticLooseRe, matches, "static zone declaration did not match")
	return records, append(warnings, malformed...)
}

// ParseConfigMappings extracts config-mapping records. Category slots must
// be bare identifiers; the Empty sentinel is kept in place so slot positions
// survive round-tripping.
//
// Postcondition: every returned record has between one and four slots.
func ParseConfigMappings(src string) ([]ConfigRecord, []Warning) {
	var records []ConfigRecord
	var malformed []Warning
	matches := configRe.FindAllStringSubmatchIndex(src, -1)
	for _, m := range matches {
		g := groups(src, m)
		slots, ok := splitIdentFields(g[4])
		if !ok || len(slots) == 0 || len(slots) > 4 {
			malformed = append(malformed, Warning{
				Line:   lineAt(src, m[0]),
				Text:   firstLine(src[m[0]:m[1]]),
				Reason: "config mapping must list 1-4 category identifiers",
			})
			continue
		}
		records = append(records, ConfigRecord{
			Number: mustInt(g[1]),
			Name:   g[2],
			Weight: mustInt(g[3]),
			Slots:  slots,
		})
	}
	warnings := nearMisses(src, configLooseRe, matches, "config mapping declaration did not match")
	return records, append(warnings, malformed...)
}

// ParseCategories extracts category records. Classname and modifier lists
// keep duplicates and blank strings exactly as written.
func ParseCategories(src string) ([]CategoryRecord, []Warning) {
	var records []CategoryRecord
	matches := categoryRe.FindAllStringSubmatchIndex(src, -1)
	for _, m := range matches {
		g := groups(src, m)
		records = append(records, CategoryRecord{
			Name:       g[1],
			Weight:     mustInt(g[2]),
			Classnames: quotedStrings(g[3]),
			Modifiers:  quotedStrings(g[4]),
		})
	}
	warnings := nearMisses(src, categoryLooseRe, matches, "category declaration did not match")
	return records, warnings
}

// groups resolves a submatch index slice into capture-group strings. Group 0
// is the whole match; absent optional groups become "".
func groups(src string, m []int) []string {
	out := make([]string, len(m)/2)
	for i := range out {
		lo, hi := m[2*i], m[2*i+1]
		if lo < 0 {
			continue
		}
		out[i] = src[lo:hi]
	}
	return out
}

// mustInt parses an integer already validated by a \d+ capture.
func mustInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// splitNumericFields splits a comma-separated numeric tuple into trimmed
// verbatim tokens. Blank trailing entries (after a trailing comma) are
// dropped; any non-numeric token rejects the whole tuple.
func splitNumericFields(body string) ([]string, bool) {
	parts := strings.Split(body, ",")
	fields := make([]string, 0, len(parts))
	for i, p := range parts {
		tok := strings.TrimSpace(p)
		if tok == "" && i == len(parts)-1 {
			continue
		}
		if !numberRe.MatchString(tok) {
			return nil, false
		}
		fields = append(fields, tok)
	}
	return fields, true
}

// splitIdentFields splits comma-separated identifier arguments.
func splitIdentFields(body string) ([]string, bool) {
	parts := strings.Split(body, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		if !identRe.MatchString(tok) {
			return nil, false
		}
		fields = append(fields, tok)
	}
	return fields, true
}

// quotedStrings extracts every quoted literal from a list body, preserving
// order, duplicates, and empty strings.
func quotedStrings(body string) []string {
	var out []string
	for _, m := range quotedRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

// nearMisses reports every line that trips the loose marker pattern but is
// not covered by any full match, so a malformed declaration is surfaced
// instead of silently dropped.
func nearMisses(src string, loose *regexp.Regexp, matched [][]int, reason string) []Warning {
	var warnings []Warning
	offset := 0
	for lineNo, line := range strings.Split(src, "\n") {
		end := offset + len(line)
		if loose.MatchString(line) && !covered(offset, end, matched) {
			warnings = append(warnings, Warning{
				Line:   lineNo + 1,
				Text:   strings.TrimSpace(line),
				Reason: reason,
			})
		}
		offset = end + 1
	}
	return warnings
}

// covered reports whether the [lo, hi) line span overlaps any full match.
func covered(lo, hi int, matched [][]int) bool {
	for _, m := range matched {
		if lo < m[1] && hi > m[0] {
			return true
		}
	}
	return false
}

// lineAt returns the 1-based line number containing byte offset pos.
func lineAt(src string, pos int) int {
	return strings.Count(src[:pos], "\n") + 1
}

// firstLine returns the first line of a (possibly multi-line) match, trimmed.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
