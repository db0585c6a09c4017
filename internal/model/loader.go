package model

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hordetools/spawnedit/internal/dialect"
	"github.com/hordetools/spawnedit/internal/health"
)

// Paths names the source files for one editing session. Health is optional;
// an empty path disables danger classification.
type Paths struct {
	DynamicZones   string
	StaticZones    string
	ConfigMappings string
	Categories     string
	Health         string
}

// LoadResult is the outcome of one ingestion. File-level failures are
// localized: a missing file fails only its own kind and the snapshot stays
// usable for operations that do not need the missing data.
type LoadResult struct {
	Snapshot *Snapshot
	// Warnings collects non-fatal parse problems across every file kind.
	Warnings []dialect.Warning
	// Missing holds one error (wrapping ErrMissingInput) per file kind that
	// could not be read.
	Missing []error
}

// Load ingests every available source file into a fresh Snapshot. The
// original source bytes are only read, never modified; discarding the
// returned snapshot reverts every edit.
//
// Precondition: worldSize must be positive.
// Postcondition: returns a LoadResult with a non-nil Snapshot, or a non-nil
// error when no snapshot could be built at all.
func Load(paths Paths, worldSize int) (*LoadResult, error) {
	res := &LoadResult{}

	var dynamics []*DynamicZone
	if src, err := readKind(paths.DynamicZones, "dynamic zones"); err != nil {
		res.Missing = append(res.Missing, err)
	} else {
		records, warnings := dialect.ParseDynamicZones(src)
		res.Warnings = append(res.Warnings, warnings...)
		for _, r := range records {
			dynamics = append(dynamics, dynamicFromRecord(r))
		}
	}

	var statics []*StaticZone
	if src, err := readKind(paths.StaticZones, "static zones"); err != nil {
		res.Missing = append(res.Missing, err)
	} else {
		records, warnings := dialect.ParseStaticZones(src)
		res.Warnings = append(res.Warnings, warnings...)
		for _, r := range records {
			statics = append(statics, staticFromRecord(r))
		}
	}

	var configs []*ConfigMapping
	if src, err := readKind(paths.ConfigMappings, "config mappings"); err != nil {
		res.Missing = append(res.Missing, err)
	} else {
		records, warnings := dialect.ParseConfigMappings(src)
		res.Warnings = append(res.Warnings, warnings...)
		for _, r := range records {
			configs = append(configs, &ConfigMapping{Number: r.Number, Name: r.Name, Weight: r.Weight, Slots: r.Slots})
		}
	}

	var categories []*Category
	if src, err := readKind(paths.Categories, "categories"); err != nil {
		res.Missing = append(res.Missing, err)
	} else {
		records, warnings := dialect.ParseCategories(src)
		res.Warnings = append(res.Warnings, warnings...)
		for _, r := range records {
			categories = append(categories, &Category{Name: r.Name, Weight: r.Weight, Classnames: r.Classnames, Modifiers: r.Modifiers})
		}
	}

	snap, err := NewSnapshot(worldSize, dynamics, statics, configs, categories)
	if err != nil {
		return nil, err
	}
	res.Snapshot = snap

	if paths.Health != "" {
		healths, err := health.Load(paths.Health)
		if err != nil {
			res.Missing = append(res.Missing, fmt.Errorf("health data: %w (%v)", ErrMissingInput, err))
		} else {
			snap.SetHealths(healths)
		}
	}

	return res, nil
}

// readKind reads one source file, mapping any failure to ErrMissingInput for
// that kind alone.
func readKind(path, kind string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%s: no path configured: %w", kind, ErrMissingInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s (%s): %w (%v)", kind, path, ErrMissingInput, err)
	}
	return string(data), nil
}

func dynamicFromRecord(r dialect.DynamicRecord) *DynamicZone {
	return &DynamicZone{
		ID:     DynamicID(r.Index),
		Index:  r.Index,
		Config: r.Config,
		Rect: Rect{
			XUpperLeft:  r.XUL,
			ZUpperLeft:  r.ZUL,
			XLowerRight: r.XLR,
			ZLowerRight: r.ZLR,
		},
		QuantityRatio: r.Qty,
		MaxZombies:    r.Max,
		Comment:       r.Comment,
	}
}

func staticFromRecord(r dialect.StaticRecord) *StaticZone {
	z := &StaticZone{
		ID:      StaticID(r.Index),
		Index:   r.Index,
		Fields:  append([]string(nil), r.Fields...),
		Comment: r.Comment,
	}
	z.X = fieldFloat(r.Fields, 3)
	z.Y = fieldFloat(r.Fields, 4)
	z.Z = fieldFloat(r.Fields, 5)
	z.Config = int(fieldFloat(r.Fields, StaticConfigField))
	return z
}

func fieldFloat(fields []string, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0
	}
	return v
}

// Record builders for the export path: the generator re-renders zones using
// the same dialect records the parser produces, which is what guarantees
// round-trip fidelity.

// ToRecord converts a dynamic zone back into its dialect record.
func (z *DynamicZone) ToRecord() dialect.DynamicRecord {
	return dialect.DynamicRecord{
		Index:   z.Index,
		Config:  z.Config,
		XUL:     z.Rect.XUpperLeft,
		ZUL:     z.Rect.ZUpperLeft,
		XLR:     z.Rect.XLowerRight,
		ZLR:     z.Rect.ZLowerRight,
		Qty:     z.QuantityRatio,
		Max:     z.MaxZombies,
		Comment: z.Comment,
	}
}

// ToRecord converts a static zone back into its dialect record. Unedited
// fields are emitted verbatim.
func (z *StaticZone) ToRecord() dialect.StaticRecord {
	return dialect.StaticRecord{
		Index:   z.Index,
		Fields:  append([]string(nil), z.Fields...),
		Comment: z.Comment,
	}
}
