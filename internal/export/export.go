// Package export renders committed change records into the export manifest:
// summary counts, structured before/after entries, and dialect-faithful
// declaration fragments a renderer can splice back into the source files.
// Generation is a pure function of the snapshot and records; no files are
// written here.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hordetools/spawnedit/internal/dialect"
	"github.com/hordetools/spawnedit/internal/editor"
	"github.com/hordetools/spawnedit/internal/model"
)

// Summary holds the counts shown at the top of an export.
type Summary struct {
	ModifiedDynamic int `json:"modified_dynamic"`
	ModifiedStatic  int `json:"modified_static"`
	NewZones        int `json:"new_zones"`
	// ZonesRemaining is the number of dynamic slots still available:
	// 150 minus zones with nonzero config.
	ZonesRemaining int `json:"zones_remaining"`
}

// Change is one manifest entry with full before/after field snapshots.
type Change struct {
	Kind   string               `json:"kind"`
	ID     string               `json:"id"`
	Before *editor.ZoneSnapshot `json:"before,omitempty"`
	After  editor.ZoneSnapshot  `json:"after"`
}

// Manifest is the structured export document.
type Manifest struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Changes     []Change  `json:"changes"`
	// Code contains the new-zone and modified-zone declaration sections as
	// plain dialect text.
	Code string `json:"code"`
}

// Build assembles the manifest for every committed record. Zones are
// re-rendered through the same dialect the parser consumes, so emitted
// declarations parse back to identical values.
//
// Precondition: records must all be committed against snap.
// Postcondition: returns a manifest whose Code section holds exactly one
// declaration line per changed zone, or a non-nil error when a record's
// zone cannot be resolved.
func Build(snap *model.Snapshot, records []editor.ChangeRecord) (*Manifest, error) {
	m := &Manifest{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
	}

	var newLines, modLines []string
	for _, rec := range records {
		m.Changes = append(m.Changes, Change{
			Kind:   string(rec.Kind),
			ID:     rec.ZoneID,
			Before: rec.Before,
			After:  rec.After,
		})

		line, err := renderLine(snap, rec)
		if err != nil {
			return nil, err
		}

		switch {
		case rec.Kind == editor.ChangeAdd:
			m.Summary.NewZones++
			newLines = append(newLines, line)
		case rec.ZoneKind == model.KindDynamic:
			m.Summary.ModifiedDynamic++
			modLines = append(modLines, line)
		default:
			m.Summary.ModifiedStatic++
			modLines = append(modLines, line)
		}
	}

	m.Summary.ZonesRemaining = model.DynamicSlots - snap.OccupiedDynamicCount()
	m.Code = renderCode(newLines, modLines)
	return m, nil
}

// JSON serialises the manifest with stable indentation.
func (m *Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// renderLine produces the replacement (or new) declaration for one record,
// annotated with the field-level diff.
func renderLine(snap *model.Snapshot, rec editor.ChangeRecord) (string, error) {
	switch rec.ZoneKind {
	case model.KindDynamic:
		z, err := snap.DynamicZone(rec.ZoneID)
		if err != nil {
			return "", err
		}
		line := dialect.FormatDynamic(z.ToRecord())
		return line + annotation(rec), nil
	case model.KindStatic:
		z, err := snap.StaticZone(rec.ZoneID)
		if err != nil {
			return "", err
		}
		line := dialect.FormatStatic(z.ToRecord())
		return line + annotation(rec), nil
	default:
		return "", fmt.Errorf("record %s: unknown zone kind %q", rec.ZoneID, rec.ZoneKind)
	}
}

// annotation summarises what changed, old to new, in a trailing comment.
// Static config edits are flagged distinctly because the mutable field
// sits at a different position in that file kind.
func annotation(rec editor.ChangeRecord) string {
	if rec.Kind == editor.ChangeAdd {
		return " // ADDED"
	}

	var diffs []string
	if rec.Before != nil {
		b, a := *rec.Before, rec.After
		if b.Config != a.Config {
			diffs = append(diffs, fmt.Sprintf("config %d -> %d", b.Config, a.Config))
		}
		if b.Comment != a.Comment {
			diffs = append(diffs, fmt.Sprintf("comment %q -> %q", b.Comment, a.Comment))
		}
		if rec.ZoneKind == model.KindDynamic && b.Rect != a.Rect {
			diffs = append(diffs, rectDiff(b.Rect, a.Rect)...)
		}
	}

	label := "EDIT"
	if rec.ZoneKind == model.KindStatic {
		label = fmt.Sprintf("STATIC EDIT field %d", model.StaticConfigField)
	}
	if len(diffs) == 0 {
		return fmt.Sprintf(" // %s: no field changes", label)
	}
	return fmt.Sprintf(" // %s: %s", label, strings.Join(diffs, ", "))
}

func rectDiff(b, a model.Rect) []string {
	var diffs []string
	fields := []struct {
		name     string
		old, new int
	}{
		{"x_upperleft", b.XUpperLeft, a.XUpperLeft},
		{"z_upperleft", b.ZUpperLeft, a.ZUpperLeft},
		{"x_lowerright", b.XLowerRight, a.XLowerRight},
		{"z_lowerright", b.ZLowerRight, a.ZLowerRight},
	}
	for _, f := range fields {
		if f.old != f.new {
			diffs = append(diffs, fmt.Sprintf("%s %d -> %d", f.name, f.old, f.new))
		}
	}
	return diffs
}

// renderCode lays out the two labelled sections of the code fragment.
func renderCode(newLines, modLines []string) string {
	var b strings.Builder
	b.WriteString("// --- new zones ---\n")
	for _, l := range newLines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("\n// --- modified zones ---\n")
	for _, l := range modLines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
