package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hordetools/spawnedit/internal/model"
)

func testSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	snap, err := model.NewSnapshot(16384,
		[]*model.DynamicZone{
			{ID: "Zone1", Index: 1, Config: 3, Rect: model.Rect{XUpperLeft: 100, ZUpperLeft: 900, XLowerRight: 300, ZLowerRight: 700}, QuantityRatio: 5, MaxZombies: 20, Comment: "west"},
			{ID: "Zone2", Index: 2, Config: 0, QuantityRatio: 5, MaxZombies: 20},
			{ID: "Zone3", Index: 3, Config: 0, QuantityRatio: 5, MaxZombies: 20},
		},
		[]*model.StaticZone{
			{ID: "HordeStatic1", Index: 1, Fields: []string{"60", "2", "6", "450.5", "339.0", "1053.5", "1", "1", "0", "0", "0", "4", "0"}, Config: 4, Y: 339},
		},
		nil, nil)
	require.NoError(t, err)
	return snap
}

func TestModifyDynamic(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)

	require.NoError(t, s.Modify("Zone1", 7, "rezoned"))

	rec, ok := s.Record("Zone1")
	require.True(t, ok)
	assert.Equal(t, ChangeModify, rec.Kind)
	assert.Equal(t, StatePending, rec.State)
	require.NotNil(t, rec.Before)
	assert.Equal(t, 3, rec.Before.Config)
	assert.Equal(t, 7, rec.After.Config)

	// Nothing applied until commit.
	z, err := s.Snapshot().DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, 3, z.Config)

	require.NoError(t, s.Commit("Zone1"))
	z, err = s.Snapshot().DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, 7, z.Config)
	assert.Equal(t, "rezoned", z.Comment)
	// Coordinates untouched by modify.
	assert.Equal(t, 100, z.Rect.XUpperLeft)
}

func TestModifyRejectsNegativeConfig(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	assert.Error(t, s.Modify("Zone1", -1, ""))
}

func TestModifyUnknownZone(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	err := s.Modify("Zone99", 1, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestModifyUpdatesExistingRecord(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.Modify("Zone1", 7, "first"))
	require.NoError(t, s.Modify("Zone1", 9, "second"))

	rec, ok := s.Record("Zone1")
	require.True(t, ok)
	assert.Equal(t, 9, rec.After.Config)
	assert.Equal(t, "second", rec.After.Comment)
	// Still a single record with the original baseline.
	assert.Equal(t, 3, rec.Before.Config)
}

func TestModifyStaticZone(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.Modify("HordeStatic1", 9, "repurposed"))
	require.NoError(t, s.Commit("HordeStatic1"))

	z, err := s.Snapshot().StaticZone("HordeStatic1")
	require.NoError(t, err)
	assert.Equal(t, 9, z.Config)
	assert.Equal(t, "9", z.Fields[model.StaticConfigField])
	assert.Equal(t, 339.0, z.Y)
}

func TestAddUsesLowestFreeSlot(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	rect := model.Rect{XUpperLeft: 500, ZUpperLeft: 600, XLowerRight: 700, ZLowerRight: 400}

	id, err := s.Add(rect, 5, "new camp")
	require.NoError(t, err)
	assert.Equal(t, "Zone2", id)

	rec, ok := s.Record(id)
	require.True(t, ok)
	assert.Equal(t, ChangeAdd, rec.Kind)
	assert.Nil(t, rec.Before)

	// Second add skips the slot claimed by the pending record.
	id2, err := s.Add(rect, 6, "another")
	require.NoError(t, err)
	assert.Equal(t, "Zone3", id2)
}

func TestAddValidation(t *testing.T) {
	s := NewSession(testSnapshot(t), 50, 50)

	// Zero config.
	_, err := s.Add(model.Rect{XUpperLeft: 0, ZUpperLeft: 100, XLowerRight: 100, ZLowerRight: 0}, 0, "")
	assert.Error(t, err)

	// Below minimum footprint.
	_, err = s.Add(model.Rect{XUpperLeft: 0, ZUpperLeft: 10, XLowerRight: 10, ZLowerRight: 0}, 5, "")
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)

	// Inverted corners.
	_, err = s.Add(model.Rect{XUpperLeft: 100, ZUpperLeft: 100, XLowerRight: 0, ZLowerRight: 0}, 5, "")
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)
}

func TestAddSlotExhausted(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	rect := model.Rect{XUpperLeft: 0, ZUpperLeft: 100, XLowerRight: 100, ZLowerRight: 0}

	_, err := s.Add(rect, 1, "")
	require.NoError(t, err)
	_, err = s.Add(rect, 1, "")
	require.NoError(t, err)
	_, err = s.Add(rect, 1, "")
	assert.ErrorIs(t, err, ErrSlotExhausted)
}

func TestMoveResizeLifecycle(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.StartMoveResize("Zone1"))

	// Session-wide lock: only one interactive move-resize at a time.
	err := s.StartMoveResize("Zone2")
	assert.ErrorIs(t, err, ErrSessionBusy)

	// Each drag updates the same record.
	require.NoError(t, s.Drag(model.Rect{XUpperLeft: 110, ZUpperLeft: 910, XLowerRight: 310, ZLowerRight: 710}))
	require.NoError(t, s.Drag(model.Rect{XUpperLeft: 120, ZUpperLeft: 920, XLowerRight: 320, ZLowerRight: 720}))

	rec, ok := s.Record("Zone1")
	require.True(t, ok)
	assert.Equal(t, ChangeMoveResize, rec.Kind)
	assert.Equal(t, 120, rec.After.Rect.XUpperLeft)

	// Inverted drag rejected; previous rectangle stands.
	err = s.Drag(model.Rect{XUpperLeft: 320, ZUpperLeft: 920, XLowerRight: 120, ZLowerRight: 720})
	assert.ErrorIs(t, err, model.ErrInvalidGeometry)
	rec, _ = s.Record("Zone1")
	assert.Equal(t, 120, rec.After.Rect.XUpperLeft)

	// Done: record stays pending until confirmed and committed.
	s.FinishMoveResize()
	rec, _ = s.Record("Zone1")
	assert.Equal(t, StatePending, rec.State)

	require.NoError(t, s.Modify("Zone1", 8, "moved"))
	require.NoError(t, s.Commit("Zone1"))

	z, err := s.Snapshot().DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, 120, z.Rect.XUpperLeft)
	assert.Equal(t, 8, z.Config)
}

func TestMoveResizeKeepsAddIdentity(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)

	id, err := s.Add(model.Rect{XUpperLeft: 100, ZUpperLeft: 300, XLowerRight: 200, ZLowerRight: 100}, 5, "camp")
	require.NoError(t, err)

	// Adjusting the freshly drawn zone refines the same add record.
	require.NoError(t, s.StartMoveResize(id))
	require.NoError(t, s.Drag(model.Rect{XUpperLeft: 150, ZUpperLeft: 350, XLowerRight: 250, ZLowerRight: 150}))
	s.FinishMoveResize()
	require.NoError(t, s.Modify(id, 5, "camp"))

	rec, ok := s.Record(id)
	require.True(t, ok)
	assert.Equal(t, ChangeAdd, rec.Kind)
	assert.Nil(t, rec.Before)
	assert.Equal(t, 150, rec.After.Rect.XUpperLeft)

	// Cancel after a second drag restores the add record, not a modify.
	require.NoError(t, s.StartMoveResize(id))
	require.NoError(t, s.Drag(model.Rect{XUpperLeft: 400, ZUpperLeft: 600, XLowerRight: 500, ZLowerRight: 400}))
	s.CancelMoveResize()
	rec, _ = s.Record(id)
	assert.Equal(t, ChangeAdd, rec.Kind)
	assert.Equal(t, 150, rec.After.Rect.XUpperLeft)

	require.NoError(t, s.CommitAll())
	z, err := s.Snapshot().DynamicZone(id)
	require.NoError(t, err)
	assert.Equal(t, 5, z.Config)
	assert.Equal(t, 150, z.Rect.XUpperLeft)
}

func TestMoveResizeCancelDiscardsFreshRecord(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.StartMoveResize("Zone1"))
	require.NoError(t, s.Drag(model.Rect{XUpperLeft: 110, ZUpperLeft: 910, XLowerRight: 310, ZLowerRight: 710}))

	s.CancelMoveResize()

	// Back to unedited: no record at all.
	_, ok := s.Record("Zone1")
	assert.False(t, ok)

	// And a new move-resize may start.
	require.NoError(t, s.StartMoveResize("Zone2"))
}

func TestMoveResizeCancelRestoresPriorPending(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.Modify("Zone1", 7, "pending edit"))

	require.NoError(t, s.StartMoveResize("Zone1"))
	require.NoError(t, s.Drag(model.Rect{XUpperLeft: 110, ZUpperLeft: 910, XLowerRight: 310, ZLowerRight: 710}))
	s.CancelMoveResize()

	rec, ok := s.Record("Zone1")
	require.True(t, ok)
	assert.Equal(t, ChangeModify, rec.Kind)
	assert.Equal(t, 7, rec.After.Config)
	assert.Equal(t, StatePending, rec.State)
}

func TestCommitIdempotent(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.Modify("Zone1", 7, "x"))
	require.NoError(t, s.Commit("Zone1"))

	zBefore, err := s.Snapshot().DynamicZone("Zone1")
	require.NoError(t, err)
	stateBefore := *zBefore

	require.NoError(t, s.Commit("Zone1"))
	zAfter, err := s.Snapshot().DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, stateBefore, *zAfter)
	assert.Len(t, s.Committed(), 1)
}

func TestCommitAllOrder(t *testing.T) {
	s := NewSession(testSnapshot(t), 10, 10)
	require.NoError(t, s.Modify("HordeStatic1", 2, ""))
	require.NoError(t, s.Modify("Zone1", 7, ""))
	require.NoError(t, s.CommitAll())

	committed := s.Committed()
	require.Len(t, committed, 2)
	assert.Equal(t, "HordeStatic1", committed[0].ZoneID)
	assert.Equal(t, "Zone1", committed[1].ZoneID)
}

func TestSlotBoundNeverExceeded(t *testing.T) {
	// A full 150-slot series accepts adds only while free slots remain.
	var zones []*model.DynamicZone
	for i := 1; i <= model.DynamicSlots; i++ {
		cfg := 1
		if i > 148 {
			cfg = 0
		}
		zones = append(zones, &model.DynamicZone{ID: model.DynamicID(i), Index: i, Config: cfg})
	}
	snap, err := model.NewSnapshot(16384, zones, nil, nil, nil)
	require.NoError(t, err)

	s := NewSession(snap, 1, 1)
	rect := model.Rect{XUpperLeft: 0, ZUpperLeft: 10, XLowerRight: 10, ZLowerRight: 0}

	id1, err := s.Add(rect, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Zone149", id1)
	id2, err := s.Add(rect, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Zone150", id2)

	_, err = s.Add(rect, 1, "")
	assert.ErrorIs(t, err, ErrSlotExhausted)

	require.NoError(t, s.CommitAll())
	assert.Equal(t, model.DynamicSlots, s.Snapshot().OccupiedDynamicCount())
}
