package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the editing core. Callers match them with errors.Is;
// wrapped messages always carry the identifiers involved.
var (
	// ErrNotFound indicates an exact-id lookup for an entity that does not
	// exist in the snapshot.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidGeometry indicates a mutation that would invert rectangle
	// corners or place a corner outside [0, worldSize].
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrMissingInput indicates a required source file that could not be
	// read. Ingestion of the other file kinds continues.
	ErrMissingInput = errors.New("missing input file")
)

// FindingKind classifies a data-quality finding.
type FindingKind string

const (
	// FindingUnresolvedConfig is a zone whose nonzero config number has no
	// ConfigMapping entry.
	FindingUnresolvedConfig FindingKind = "unresolved-config"
	// FindingUnresolvedCategory is a config slot naming a category with no
	// CategoryDefinition entry.
	FindingUnresolvedCategory FindingKind = "unresolved-category"
)

// Finding is a tolerated referential-integrity problem. Dangling references
// never fail ingestion; they are surfaced for remediation instead.
type Finding struct {
	Kind FindingKind
	// ZoneID is set for unresolved-config findings.
	ZoneID string
	// ConfigNumber is the dangling config number, or the owning config for
	// unresolved-category findings.
	ConfigNumber int
	// Category is set for unresolved-category findings.
	Category string
}

// String renders the finding with every identifier needed to fix it.
func (f Finding) String() string {
	switch f.Kind {
	case FindingUnresolvedConfig:
		return fmt.Sprintf("zone %s references unknown config %d", f.ZoneID, f.ConfigNumber)
	case FindingUnresolvedCategory:
		return fmt.Sprintf("config %d references unknown category %q", f.ConfigNumber, f.Category)
	default:
		return fmt.Sprintf("unknown finding kind %q", f.Kind)
	}
}
