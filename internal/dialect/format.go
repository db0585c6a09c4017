package dialect

import (
	"fmt"
	"strings"
)

// FormatDynamic renders a dynamic-zone record back into declaration syntax.
// The output is parseable by ParseDynamicZones and preserves field order and
// values exactly, so an unedited record round-trips byte for byte.
func FormatDynamic(r DynamicRecord) string {
	line := fmt.Sprintf("ref autoptr TIntArray data_Zone%d = {%d, %d, %d, %d, %d, %d, %d};",
		r.Index, r.Config, r.XUL, r.ZUL, r.XLR, r.ZLR, r.Qty, r.Max)
	if r.Comment != "" {
		line += " // " + r.Comment
	}
	return line
}

// FormatStatic renders a static-zone record back into declaration syntax.
// Fields are emitted verbatim, which keeps fractional formatting (e.g.
// "132.5" vs "132.50") identical to the source.
func FormatStatic(r StaticRecord) string {
	line := fmt.Sprintf("ref autoptr TFloatArray data_HordeStatic%d = {%s};",
		r.Index, strings.Join(r.Fields, ", "))
	if r.Comment != "" {
		line += " // " + r.Comment
	}
	return line
}

// FormatConfigMapping renders a config-mapping record back into declaration
// syntax, sentinel slots included.
func FormatConfigMapping(r ConfigRecord) string {
	return fmt.Sprintf(
		"ref autoptr Param5<string, int, TStringArray, TStringArray, TStringArray> data_Horde_%d_ChooseCategories = new Param5<string, int, TStringArray, TStringArray, TStringArray>(%q, %d, %s);",
		r.Number, r.Name, r.Weight, strings.Join(r.Slots, ", "))
}

// FormatCategory renders a category record back into declaration syntax.
func FormatCategory(r CategoryRecord) string {
	return fmt.Sprintf(
		"ref autoptr Param4<string, int, TStringArray, TStringArray> data_Category_%s = new Param4<string, int, TStringArray, TStringArray>(%q, %d, {%s}, {%s});",
		sanitizeIdent(r.Name), r.Name, r.Weight, quoteList(r.Classnames), quoteList(r.Modifiers))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
