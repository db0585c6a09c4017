// Package analytics derives read-only findings from a model snapshot:
// unused configs, categories, and zombie classnames, plus danger-band
// classification over average zombie health. Every function is a pure
// computation over the snapshot passed in; results must be recomputed after
// each committed change and are never cached here.
package analytics

import (
	"math"
	"sort"

	"github.com/hordetools/spawnedit/internal/model"
)

// Unused lists entities declared in the source files that no zone can ever
// reach. Reachability is transitive: a category is used only through a
// config that some zone actually references, and a classname only through a
// used category.
type Unused struct {
	Configs    []int
	Categories []string
	Zombies    []string
}

// ComputeUnused walks zone -> config -> category -> classname and reports
// everything outside the reachable set. Output slices are sorted for stable
// presentation.
func ComputeUnused(snap *model.Snapshot) Unused {
	usedConfigs := make(map[int]bool)
	for _, z := range snap.Dynamics() {
		if z.Config != 0 {
			usedConfigs[z.Config] = true
		}
	}
	for _, z := range snap.Statics() {
		if z.Config != 0 {
			usedConfigs[z.Config] = true
		}
	}

	usedCategories := make(map[string]bool)
	for _, c := range snap.Configs() {
		if !usedConfigs[c.Number] {
			continue
		}
		for _, cat := range c.Categories() {
			usedCategories[cat] = true
		}
	}

	usedZombies := make(map[string]bool)
	for _, cat := range snap.Categories() {
		if !usedCategories[cat.Name] {
			continue
		}
		for _, cn := range cat.Classnames {
			if cn != "" {
				usedZombies[cn] = true
			}
		}
	}

	var out Unused
	for _, c := range snap.Configs() {
		if !usedConfigs[c.Number] {
			out.Configs = append(out.Configs, c.Number)
		}
	}
	for _, cat := range snap.Categories() {
		if !usedCategories[cat.Name] {
			out.Categories = append(out.Categories, cat.Name)
		}
	}
	seen := make(map[string]bool)
	for _, cat := range snap.Categories() {
		for _, cn := range cat.Classnames {
			if cn == "" || seen[cn] {
				continue
			}
			seen[cn] = true
			if !usedZombies[cn] {
				out.Zombies = append(out.Zombies, cn)
			}
		}
	}

	sort.Ints(out.Configs)
	sort.Strings(out.Categories)
	sort.Strings(out.Zombies)
	return out
}

// BandCount is the number of danger bands the health range is split into.
const BandCount = 5

// BandNoData marks zones excluded from classification: no health records
// loaded, config unassigned or unresolved, or no resolvable classnames.
const BandNoData = -1

// ZoneDanger is one zone's classification result.
type ZoneDanger struct {
	ZoneID string
	// Mean is the arithmetic mean health across the zone's resolvable
	// classnames; meaningful only when Band != BandNoData.
	Mean float64
	// Band is the value-range quintile index in [0, BandCount), or
	// BandNoData.
	Band int
}

// Danger is the classification over a whole snapshot.
type Danger struct {
	// MinAvg and MaxAvg span the means of every zone with data.
	MinAvg, MaxAvg float64
	// Zones holds one entry per zone (both kinds), in declaration order,
	// dynamic zones first.
	Zones []ZoneDanger
}

// Band returns the classification for one zone id.
//
// Postcondition: returns (entry, true), or (ZoneDanger{}, false) for an
// unknown id.
func (d Danger) Band(zoneID string) (ZoneDanger, bool) {
	for _, z := range d.Zones {
		if z.ZoneID == zoneID {
			return z, true
		}
	}
	return ZoneDanger{}, false
}

// ComputeDanger classifies every zone into one of five equal-width bands
// over [MinAvg, MaxAvg]. Band edges are inclusive at the top of each band;
// the final band is closed at MaxAvg. When no health data is loaded every
// zone gets BandNoData; when every mean is identical every zone with data
// falls into the middle band.
func ComputeDanger(snap *model.Snapshot) Danger {
	var d Danger

	type zoneRef struct {
		id     string
		config int
	}
	var refs []zoneRef
	for _, z := range snap.Dynamics() {
		refs = append(refs, zoneRef{z.ID, z.Config})
	}
	for _, z := range snap.Statics() {
		refs = append(refs, zoneRef{z.ID, z.Config})
	}

	if !snap.HasHealthData() {
		for _, r := range refs {
			d.Zones = append(d.Zones, ZoneDanger{ZoneID: r.id, Band: BandNoData})
		}
		return d
	}

	means := make([]float64, len(refs))
	hasData := make([]bool, len(refs))
	first := true
	for i, r := range refs {
		mean, ok := zoneMeanHealth(snap, r.config)
		means[i], hasData[i] = mean, ok
		if !ok {
			continue
		}
		if first || mean < d.MinAvg {
			d.MinAvg = mean
		}
		if first || mean > d.MaxAvg {
			d.MaxAvg = mean
		}
		first = false
	}

	for i, r := range refs {
		if !hasData[i] {
			d.Zones = append(d.Zones, ZoneDanger{ZoneID: r.id, Band: BandNoData})
			continue
		}
		d.Zones = append(d.Zones, ZoneDanger{
			ZoneID: r.id,
			Mean:   means[i],
			Band:   bandIndex(means[i], d.MinAvg, d.MaxAvg),
		})
	}
	return d
}

// zoneMeanHealth resolves config -> categories -> classnames -> health and
// averages every resolved value. Unresolved links are skipped, not fatal.
func zoneMeanHealth(snap *model.Snapshot, config int) (float64, bool) {
	if config == 0 {
		return 0, false
	}
	cfg, err := snap.Config(config)
	if err != nil {
		return 0, false
	}

	var sum float64
	var n int
	for _, catName := range cfg.Categories() {
		cat, err := snap.Category(catName)
		if err != nil {
			continue
		}
		for _, cn := range cat.Classnames {
			if cn == "" {
				continue
			}
			if v, ok := snap.Health(cn); ok {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// bandIndex maps a mean onto its value-range quintile. Each band is
// top-inclusive, so a value sitting exactly on an interior edge belongs to
// the band below it.
func bandIndex(mean, minAvg, maxAvg float64) int {
	if minAvg == maxAvg {
		return BandCount / 2
	}
	width := (maxAvg - minAvg) / BandCount
	idx := int(math.Ceil((mean-minAvg)/width)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= BandCount {
		idx = BandCount - 1
	}
	return idx
}
