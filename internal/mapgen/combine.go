// Package mapgen renders a snapshot as an interactive HTML map over the
// world background image.
package mapgen

import (
	"github.com/hordetools/spawnedit/internal/analytics"
	"github.com/hordetools/spawnedit/internal/model"
)

// CategoryDetail is one category expansion inside a zone payload.
type CategoryDetail struct {
	// Name is the category name.
	Name string `json:"name"`
	// Weight is the category spawn weight.
	Weight int `json:"weight"`
	// Classnames are the zombie classnames the category spawns.
	Classnames []string `json:"classnames"`
}

// ZonePayload is one zone combined with its expanded config data, as the
// browser-side viewer consumes it.
type ZonePayload struct {
	// ID is the zone identifier, e.g. "Zone17" or "HordeStatic3".
	ID string `json:"id"`
	// Static is true for point placements, false for rectangles.
	Static bool `json:"static"`
	// Config is the config mapping number, 0 for empty slots.
	Config int `json:"config"`
	// ConfigName is the mapping's display name, empty when unresolved.
	ConfigName string `json:"config_name,omitempty"`
	// Rect holds the rectangle corners for dynamic zones.
	Rect *model.Rect `json:"rect,omitempty"`
	// X and Z hold the placement point for static zones.
	X float64 `json:"x,omitempty"`
	Z float64 `json:"z,omitempty"`
	// Comment is the trailing source comment, if any.
	Comment string `json:"comment,omitempty"`
	// Categories expands the config's categories with their classnames.
	Categories []CategoryDetail `json:"categories,omitempty"`
	// DangerBand is the danger quintile, 0..4, or -1 without health data.
	DangerBand int `json:"danger_band"`
	// MeanHealth is the mean zombie health, 0 when unresolvable.
	MeanHealth float64 `json:"mean_health,omitempty"`
}

// Combine expands every occupied zone with its config, categories, and
// classnames, plus the danger classification.
//
// Precondition: snap must be non-nil.
// Postcondition: Returns payloads for all occupied dynamic zones followed by
// all static zones, in declaration order.
func Combine(snap *model.Snapshot, danger analytics.Danger) []ZonePayload {
	var payloads []ZonePayload

	for _, z := range snap.Dynamics() {
		if !z.Occupied() {
			continue
		}
		p := ZonePayload{
			ID:      z.ID,
			Config:  z.Config,
			Rect:    rectCopy(z.Rect),
			Comment: z.Comment,
		}
		fillConfig(snap, &p)
		fillDanger(danger, &p)
		payloads = append(payloads, p)
	}

	for _, z := range snap.Statics() {
		p := ZonePayload{
			ID:      z.ID,
			Static:  true,
			Config:  z.Config,
			X:       z.X,
			Z:       z.Z,
			Comment: z.Comment,
		}
		fillConfig(snap, &p)
		fillDanger(danger, &p)
		payloads = append(payloads, p)
	}

	return payloads
}

func rectCopy(r model.Rect) *model.Rect {
	c := r
	return &c
}

func fillConfig(snap *model.Snapshot, p *ZonePayload) {
	cfg, err := snap.Config(p.Config)
	if err != nil {
		return
	}
	p.ConfigName = cfg.Name
	for _, name := range cfg.Categories() {
		cat, err := snap.Category(name)
		if err != nil {
			// Unresolved category references stay visible by name.
			p.Categories = append(p.Categories, CategoryDetail{Name: name})
			continue
		}
		p.Categories = append(p.Categories, CategoryDetail{
			Name:       cat.Name,
			Weight:     cat.Weight,
			Classnames: append([]string(nil), cat.Classnames...),
		})
	}
}

func fillDanger(danger analytics.Danger, p *ZonePayload) {
	zd, ok := danger.Band(p.ID)
	if !ok {
		p.DangerBand = analytics.BandNoData
		return
	}
	p.DangerBand = zd.Band
	p.MeanHealth = zd.Mean
}
