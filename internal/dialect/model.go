// Package dialect parses and renders the spawn-system configuration dialect:
// declarative array literals in the mod's C-like scripting language. Parsing
// is permissive about whitespace and quoting but precise about arity; lines
// that resemble a declaration without fully matching are reported as
// warnings and skipped, never fatal.
package dialect

import "fmt"

// Warning is a non-fatal parse problem: a line that looks like a declaration
// but does not fully match the grammar. The line is skipped and ingestion
// continues.
type Warning struct {
	// Line is the 1-based source line number.
	Line int
	// Text is the offending line, trimmed.
	Text string
	// Reason describes what failed to match.
	Reason string
}

// String renders the warning for logs and CLI output.
func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Reason, w.Text)
}

// DynamicRecord is one parsed dynamic-zone declaration:
//
//	ref autoptr TIntArray data_Zone<N> = {config, xUL, zUL, xLR, zLR, qty, max}; // comment
type DynamicRecord struct {
	Index   int
	Config  int
	XUL     int
	ZUL     int
	XLR     int
	ZLR     int
	Qty     int
	Max     int
	Comment string
}

// StaticRecord is one parsed static-zone declaration. Fields holds every
// numeric token verbatim so unedited values round-trip exactly.
type StaticRecord struct {
	Index   int
	Fields  []string
	Comment string
}

// ConfigRecord is one parsed config-mapping declaration:
//
//	... data_Horde_<N>_ChooseCategories = new Param5<...>("Name", weight, CatA, CatB, Empty);
//
// Slots holds the positional category identifiers, sentinel included.
type ConfigRecord struct {
	Number int
	Name   string
	Weight int
	Slots  []string
}

// CategoryRecord is one parsed category declaration:
//
//	... = new Param4<...>("Name", weight, {"Zmb1", "Zmb2"}, {"mod1", "mod2"});
//
// Classnames and Modifiers preserve duplicates and blanks.
type CategoryRecord struct {
	Name       string
	Weight     int
	Classnames []string
	Modifiers  []string
}
