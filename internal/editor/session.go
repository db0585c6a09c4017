// Package editor tracks pending edits against a model snapshot. Edits are
// recorded without touching the snapshot; only Commit applies them, so
// discarding a session (or the whole snapshot) reverts everything. One
// session is the single logical owner of its snapshot.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hordetools/spawnedit/internal/model"
)

// Sentinel errors specific to session edits. Geometry and lookup failures
// surface the model package's sentinels.
var (
	// ErrSessionBusy rejects a move-resize start while another zone is
	// already in the interactive move-resize state.
	ErrSessionBusy = errors.New("another zone is being moved or resized")
	// ErrSlotExhausted rejects an add when no dynamic slot has config = 0.
	ErrSlotExhausted = errors.New("no free dynamic slot")
)

// ChangeKind distinguishes how a record came to exist.
type ChangeKind string

const (
	ChangeModify     ChangeKind = "modify"
	ChangeAdd        ChangeKind = "add"
	ChangeMoveResize ChangeKind = "move-resize"
)

// State is the per-zone change lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateCommitted State = "committed"
)

// ZoneSnapshot captures every mutable field of a zone at one instant. It is
// the before/after payload of a ChangeRecord for both zone kinds.
type ZoneSnapshot struct {
	Kind    model.ZoneKind `json:"kind"`
	Config  int            `json:"config"`
	Comment string         `json:"comment"`
	// Rect is meaningful for dynamic zones only.
	Rect model.Rect `json:"rect,omitempty"`
	// Fields holds the static zone's verbatim tuple.
	Fields []string `json:"fields,omitempty"`
}

// ChangeRecord tracks one zone's outstanding change. There is at most one
// record per zone id: re-editing updates the existing record.
type ChangeRecord struct {
	Kind     ChangeKind
	ZoneKind model.ZoneKind
	ZoneID   string
	// Before is the pre-edit snapshot; nil for creations.
	Before *ZoneSnapshot
	// After is the snapshot the zone will have once committed.
	After ZoneSnapshot
	State State
}

// Session owns the change records for one open editing run. All methods are
// safe for concurrent use, though the intended model is a single caller.
type Session struct {
	// ID identifies this session in logs and export manifests.
	ID uuid.UUID

	mu      sync.Mutex
	snap    *model.Snapshot
	records map[string]*ChangeRecord
	order   []string

	// editing is the zone id currently in interactive move-resize, or ""
	// when idle. A saved copy of its record state backs cancel.
	editing      string
	editingSaved *ChangeRecord

	minWidth  int
	minHeight int
}

// NewSession creates a Session over the given snapshot. minWidth and
// minHeight are the caller's minimum footprint policy for newly drawn
// rectangles; values below 1 are raised to 1 so width and height stay
// strictly positive.
//
// Precondition: snap must be non-nil.
func NewSession(snap *model.Snapshot, minWidth, minHeight int) *Session {
	if minWidth < 1 {
		minWidth = 1
	}
	if minHeight < 1 {
		minHeight = 1
	}
	return &Session{
		ID:        uuid.New(),
		snap:      snap,
		records:   make(map[string]*ChangeRecord),
		minWidth:  minWidth,
		minHeight: minHeight,
	}
}

// Snapshot returns the session's underlying model snapshot.
func (s *Session) Snapshot() *model.Snapshot { return s.snap }

// Modify records a config/comment change for a zone of either kind.
// Coordinates are never touched. When the zone already has a pending
// move-resize record this acts as its confirmation step, folding the new
// config and comment into that record.
//
// Precondition: config must be >= 0 (0 logically deletes the zone).
// Postcondition: the zone has exactly one pending record, or an error
// wrapping model.ErrNotFound.
func (s *Session) Modify(id string, config int, comment string) error {
	if config < 0 {
		return fmt.Errorf("zone %s: config must be >= 0, got %d", id, config)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before, kind, err := s.currentSnapshot(id)
	if err != nil {
		return err
	}

	rec, exists := s.records[id]
	if exists && rec.State != StateCommitted {
		rec.After.Config = config
		rec.After.Comment = comment
		return nil
	}

	after := before
	after.Config = config
	after.Comment = comment
	s.putRecord(&ChangeRecord{
		Kind:     ChangeModify,
		ZoneKind: kind,
		ZoneID:   id,
		Before:   &before,
		After:    after,
		State:    StatePending,
	})
	return nil
}

// Add records a new zone in the lowest-numbered dynamic slot currently at
// config = 0. The drawn rectangle must satisfy the session's minimum
// footprint and the world geometry invariants, and config must be nonzero.
//
// Postcondition: returns the assigned slot id with a pending add record, or
// an error wrapping ErrSlotExhausted, model.ErrInvalidGeometry, or a
// validation failure.
func (s *Session) Add(rect model.Rect, config int, comment string) (string, error) {
	if config <= 0 {
		return "", fmt.Errorf("add requires a nonzero config, got %d", config)
	}
	if rect.Width() < s.minWidth || rect.Height() < s.minHeight {
		return "", fmt.Errorf("drawn rectangle %dx%d below minimum footprint %dx%d: %w",
			rect.Width(), rect.Height(), s.minWidth, s.minHeight, model.ErrInvalidGeometry)
	}
	if err := s.snap.ValidateRect(rect); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.nextFreeSlotLocked()
	if !ok {
		return "", fmt.Errorf("all %d dynamic slots occupied: %w", model.DynamicSlots, ErrSlotExhausted)
	}

	s.putRecord(&ChangeRecord{
		Kind:     ChangeAdd,
		ZoneKind: model.KindDynamic,
		ZoneID:   id,
		After: ZoneSnapshot{
			Kind:    model.KindDynamic,
			Config:  config,
			Comment: comment,
			Rect:    rect,
		},
		State: StatePending,
	})
	return id, nil
}

// StartMoveResize begins the interactive move-resize state for a dynamic
// zone. Only one zone may be in this state per session.
//
// Postcondition: the session is editing id, or an error wrapping
// ErrSessionBusy or model.ErrNotFound.
func (s *Session) StartMoveResize(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing != "" {
		return fmt.Errorf("zone %s already in move-resize: %w", s.editing, ErrSessionBusy)
	}

	z, err := s.snap.DynamicZone(id)
	if err != nil {
		return err
	}

	// Remember the record state so cancel can restore it exactly.
	if rec, ok := s.records[id]; ok {
		saved := *rec
		s.editingSaved = &saved
	} else {
		s.editingSaved = nil
	}

	rec, ok := s.records[id]
	if !ok || rec.State == StateCommitted {
		before := dynamicSnapshot(z)
		rec = &ChangeRecord{
			Kind:     ChangeMoveResize,
			ZoneKind: model.KindDynamic,
			ZoneID:   id,
			Before:   &before,
			After:    before,
			State:    StatePending,
		}
		s.putRecord(rec)
	} else if rec.Kind != ChangeAdd {
		// A freshly added zone keeps its add identity; dragging it only
		// refines the same pending record.
		rec.Kind = ChangeMoveResize
	}

	s.editing = id
	return nil
}

// Drag applies an intermediate rectangle during move-resize. Repeated drags
// update the same pending record. A rectangle that would invert corners or
// leave the world is rejected and the previous rectangle stands.
//
// Precondition: a move-resize must be in progress.
func (s *Session) Drag(rect model.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == "" {
		return errors.New("no move-resize in progress")
	}
	if err := s.snap.ValidateRect(rect); err != nil {
		return fmt.Errorf("zone %s: %w", s.editing, err)
	}
	s.records[s.editing].After.Rect = rect
	return nil
}

// CancelMoveResize discards the in-progress move-resize. The zone reverts
// to its pre-session record state: no record at all if none existed, its
// prior pending record otherwise.
func (s *Session) CancelMoveResize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == "" {
		return
	}
	if s.editingSaved != nil {
		restored := *s.editingSaved
		s.records[s.editing] = &restored
	} else {
		s.removeRecord(s.editing)
	}
	s.editing = ""
	s.editingSaved = nil
}

// FinishMoveResize ends the interactive state. The record stays pending;
// the caller confirms config and comment through Modify before committing.
func (s *Session) FinishMoveResize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = ""
	s.editingSaved = nil
}

// Commit applies one zone's pending record to the snapshot. Committing an
// already-committed record with identical data is a no-op.
//
// Postcondition: the snapshot reflects After and the record is committed,
// or an error from the model's validated mutation and the record stays
// pending.
func (s *Session) Commit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(id)
}

// CommitAll commits every pending record in edit order, stopping at the
// first failure.
func (s *Session) CommitAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.records[id].State != StatePending {
			continue
		}
		if err := s.commitLocked(id); err != nil {
			return err
		}
	}
	return nil
}

// Record returns the change record for a zone id, if any.
func (s *Session) Record(id string) (ChangeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return ChangeRecord{}, false
	}
	return *rec, true
}

// Committed returns every committed record in edit order.
func (s *Session) Committed() []ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ChangeRecord
	for _, id := range s.order {
		if rec := s.records[id]; rec.State == StateCommitted {
			out = append(out, *rec)
		}
	}
	return out
}

func (s *Session) commitLocked(id string) error {
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("zone %s has no change record: %w", id, model.ErrNotFound)
	}
	if rec.State == StateCommitted {
		return nil
	}

	switch rec.ZoneKind {
	case model.KindDynamic:
		mut := model.DynamicMutation{
			Config:  &rec.After.Config,
			Comment: &rec.After.Comment,
		}
		if rec.Kind != ChangeModify {
			mut.Rect = &rec.After.Rect
		}
		if err := s.snap.ApplyDynamic(id, mut); err != nil {
			return err
		}
	case model.KindStatic:
		if err := s.snap.ApplyStatic(id, model.StaticMutation{
			Config:  &rec.After.Config,
			Comment: &rec.After.Comment,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("zone %s: unknown zone kind %q", id, rec.ZoneKind)
	}

	rec.State = StateCommitted
	return nil
}

// currentSnapshot captures a zone's present mutable fields, preferring the
// live model state. The id may name either kind.
func (s *Session) currentSnapshot(id string) (ZoneSnapshot, model.ZoneKind, error) {
	if z, err := s.snap.DynamicZone(id); err == nil {
		return dynamicSnapshot(z), model.KindDynamic, nil
	}
	z, err := s.snap.StaticZone(id)
	if err != nil {
		return ZoneSnapshot{}, "", fmt.Errorf("zone %s: %w", id, model.ErrNotFound)
	}
	return staticSnapshot(z), model.KindStatic, nil
}

// nextFreeSlotLocked skips slots already claimed by a pending add.
func (s *Session) nextFreeSlotLocked() (string, bool) {
	for idx := 1; idx <= model.DynamicSlots; idx++ {
		id := model.DynamicID(idx)
		if !s.snap.HasDynamic(id) {
			continue
		}
		z, err := s.snap.DynamicZone(id)
		if err != nil || z.Occupied() {
			continue
		}
		if rec, ok := s.records[id]; ok && rec.After.Config != 0 {
			continue
		}
		return id, true
	}
	return "", false
}

func (s *Session) putRecord(rec *ChangeRecord) {
	if _, exists := s.records[rec.ZoneID]; !exists {
		s.order = append(s.order, rec.ZoneID)
	}
	s.records[rec.ZoneID] = rec
}

func (s *Session) removeRecord(id string) {
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func dynamicSnapshot(z *model.DynamicZone) ZoneSnapshot {
	return ZoneSnapshot{
		Kind:    model.KindDynamic,
		Config:  z.Config,
		Comment: z.Comment,
		Rect:    z.Rect,
	}
}

func staticSnapshot(z *model.StaticZone) ZoneSnapshot {
	return ZoneSnapshot{
		Kind:    model.KindStatic,
		Config:  z.Config,
		Comment: z.Comment,
		Fields:  append([]string(nil), z.Fields...),
	}
}
