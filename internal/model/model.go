// Package model provides the spawn-zone entity model: dynamic zones, static
// zones, config mappings, categories, and the cross-reference indices over
// them.
package model

import "fmt"

// ZoneKind distinguishes the two zone families.
type ZoneKind string

const (
	KindDynamic ZoneKind = "dynamic"
	KindStatic  ZoneKind = "static"
)

// Slot counts are fixed by the mod's data files. Zones are never removed
// from the series; a vacated slot keeps its id with config = 0.
const (
	DynamicSlots = 150
	StaticSlots  = 262
)

// StaticConfigField is the zero-based position of the config value inside a
// static zone's numeric tuple (radius, min, max, x, y, z, density, size,
// loadout, zmin, zmax, config, ...).
const StaticConfigField = 11

// EmptySentinel is the category-slot marker meaning "no category".
const EmptySentinel = "Empty"

// Rect is a dynamic zone's rectangle in world coordinates. North is +z, so
// the upper-left corner has the smaller x and the larger z.
type Rect struct {
	XUpperLeft  int `yaml:"x_upperleft" json:"x_upperleft"`
	ZUpperLeft  int `yaml:"z_upperleft" json:"z_upperleft"`
	XLowerRight int `yaml:"x_lowerright" json:"x_lowerright"`
	ZLowerRight int `yaml:"z_lowerright" json:"z_lowerright"`
}

// Width returns the rectangle's east-west extent.
func (r Rect) Width() int { return r.XLowerRight - r.XUpperLeft }

// Height returns the rectangle's north-south extent.
func (r Rect) Height() int { return r.ZUpperLeft - r.ZLowerRight }

// DynamicZone is a rectangular spawn region occupying one of the numbered
// Zone1..Zone150 slots.
type DynamicZone struct {
	// ID is the declaration name, e.g. "Zone42". Never reassigned by edits.
	ID string
	// Index is the 1-based slot number extracted from the ID.
	Index int
	// Config references a ConfigMapping by number; 0 means unassigned.
	Config int
	// Rect holds the two corner coordinates.
	Rect Rect
	// QuantityRatio and MaxZombies are trailing tuning fields, preserved
	// verbatim unless explicitly edited.
	QuantityRatio int
	MaxZombies    int
	// Comment is the optional trailing annotation from the declaration.
	Comment string
}

// Occupied reports whether the slot currently holds a live zone.
func (z *DynamicZone) Occupied() bool { return z.Config != 0 }

// StaticZone is a point spawn location occupying one of the numbered
// HordeStatic1..HordeStatic262 slots. Only Config and Comment are mutable;
// static zones are never moved.
type StaticZone struct {
	// ID is the declaration name, e.g. "HordeStatic7".
	ID string
	// Index is the 1-based slot number extracted from the ID.
	Index int
	// Fields holds every numeric token of the tuple exactly as written in
	// the source, so unedited values round-trip byte for byte.
	Fields []string
	// Config is the parsed value of Fields[StaticConfigField]; 0 means
	// unassigned.
	Config int
	// X, Y, Z are the spawn point coordinates (fields 3, 4, 5). Y is the
	// altitude and is immutable.
	X, Y, Z float64
	// Comment is the optional trailing annotation.
	Comment string
}

// ConfigMapping is one config-number entry selecting up to four category
// slots. A slot holding EmptySentinel is not a real reference.
type ConfigMapping struct {
	// Number is the config key referenced by zones.
	Number int
	// Name is the quoted display name from the declaration.
	Name string
	// Weight is the selection weight.
	Weight int
	// Slots holds the positional category arguments, sentinel included, in
	// declaration order.
	Slots []string
}

// Categories returns the non-sentinel category references in slot order.
func (c *ConfigMapping) Categories() []string {
	var out []string
	for _, s := range c.Slots {
		if s != EmptySentinel && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Category is a named group of zombie classnames with a selection weight.
// Duplicate and blank classnames are permitted and preserved.
type Category struct {
	Name       string
	Weight     int
	Classnames []string
	// Modifiers is the parallel modifier list; preserved but not
	// interpreted here.
	Modifiers []string
}

// DynamicID returns the declaration name for a dynamic slot index.
func DynamicID(index int) string { return fmt.Sprintf("Zone%d", index) }

// StaticID returns the declaration name for a static slot index.
func StaticID(index int) string { return fmt.Sprintf("HordeStatic%d", index) }
