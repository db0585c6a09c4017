package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(16384,
		[]*DynamicZone{
			{ID: "Zone1", Index: 1, Config: 10, Rect: Rect{XUpperLeft: 100, ZUpperLeft: 900, XLowerRight: 300, ZLowerRight: 700}, QuantityRatio: 5, MaxZombies: 20, Comment: "west"},
			{ID: "Zone2", Index: 2, Config: 0, Rect: Rect{}, QuantityRatio: 5, MaxZombies: 20},
			{ID: "Zone3", Index: 3, Config: 99, Rect: Rect{XUpperLeft: 10, ZUpperLeft: 90, XLowerRight: 30, ZLowerRight: 70}, QuantityRatio: 5, MaxZombies: 20},
		},
		[]*StaticZone{
			{ID: "HordeStatic1", Index: 1, Fields: []string{"60", "2", "6", "450.5", "339.0", "1053.5", "1", "1", "0", "0", "0", "20", "0"}, Config: 20, X: 450.5, Y: 339, Z: 1053.5},
		},
		[]*ConfigMapping{
			{Number: 10, Name: "Low", Weight: 5, Slots: []string{"CatA", "Empty", "Empty"}},
			{Number: 20, Name: "High", Weight: 2, Slots: []string{"CatB", "CatMissing", "Empty"}},
		},
		[]*Category{
			{Name: "CatA", Weight: 1, Classnames: []string{"z1", "z1", "z2"}},
			{Name: "CatB", Weight: 1, Classnames: []string{"z3"}},
		},
	)
	require.NoError(t, err)
	return snap
}

func TestLookups(t *testing.T) {
	snap := testSnapshot(t)

	z, err := snap.DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, 10, z.Config)

	_, err = snap.DynamicZone("Zone151")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = snap.Config(42)
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := snap.Category("CatA")
	require.NoError(t, err)
	assert.Equal(t, []string{"z1", "z1", "z2"}, c.Classnames)
}

func TestDeclarationOrderEnumeration(t *testing.T) {
	snap := testSnapshot(t)
	var ids []string
	for _, z := range snap.Dynamics() {
		ids = append(ids, z.ID)
	}
	assert.Equal(t, []string{"Zone1", "Zone2", "Zone3"}, ids)
}

func TestIndices(t *testing.T) {
	snap := testSnapshot(t)

	assert.Equal(t, []string{"Zone1"}, snap.ZonesForConfig(10))
	assert.Equal(t, []string{"HordeStatic1"}, snap.ZonesForConfig(20))
	assert.Equal(t, []int{10}, snap.ConfigsForCategory("CatA"))
	assert.Equal(t, []string{"CatA"}, snap.CategoriesForClassname("z1"))
	assert.Empty(t, snap.ZonesForConfig(0))
}

func TestFindings(t *testing.T) {
	snap := testSnapshot(t)
	findings := snap.Findings()
	require.Len(t, findings, 2)

	assert.Equal(t, FindingUnresolvedConfig, findings[0].Kind)
	assert.Equal(t, "Zone3", findings[0].ZoneID)
	assert.Equal(t, 99, findings[0].ConfigNumber)

	assert.Equal(t, FindingUnresolvedCategory, findings[1].Kind)
	assert.Equal(t, 20, findings[1].ConfigNumber)
	assert.Equal(t, "CatMissing", findings[1].Category)
}

func TestNextFreeSlot(t *testing.T) {
	snap := testSnapshot(t)
	id, ok := snap.NextFreeSlot()
	require.True(t, ok)
	assert.Equal(t, "Zone2", id)

	cfg := 5
	require.NoError(t, snap.ApplyDynamic("Zone2", DynamicMutation{
		Config: &cfg,
		Rect:   &Rect{XUpperLeft: 1, ZUpperLeft: 9, XLowerRight: 3, ZLowerRight: 7},
	}))
	_, ok = snap.NextFreeSlot()
	assert.False(t, ok)
}

func TestApplyDynamicRejectsInvalidGeometry(t *testing.T) {
	snap := testSnapshot(t)
	before, _ := snap.DynamicZone("Zone1")
	prior := before.Rect

	err := snap.ApplyDynamic("Zone1", DynamicMutation{
		Rect: &Rect{XUpperLeft: 300, ZUpperLeft: 900, XLowerRight: 100, ZLowerRight: 700},
	})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	err = snap.ApplyDynamic("Zone1", DynamicMutation{
		Rect: &Rect{XUpperLeft: 100, ZUpperLeft: 700, XLowerRight: 300, ZLowerRight: 900},
	})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	err = snap.ApplyDynamic("Zone1", DynamicMutation{
		Rect: &Rect{XUpperLeft: 100, ZUpperLeft: 900, XLowerRight: 99999, ZLowerRight: 700},
	})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	// Model untouched after every rejection.
	after, _ := snap.DynamicZone("Zone1")
	assert.Equal(t, prior, after.Rect)
}

func TestApplyDynamicUpdatesIndices(t *testing.T) {
	snap := testSnapshot(t)
	cfg := 20
	require.NoError(t, snap.ApplyDynamic("Zone1", DynamicMutation{Config: &cfg}))
	assert.Empty(t, snap.ZonesForConfig(10))
	assert.ElementsMatch(t, []string{"Zone1", "HordeStatic1"}, snap.ZonesForConfig(20))
}

func TestApplyStaticWritesConfigField(t *testing.T) {
	snap := testSnapshot(t)
	cfg := 7
	comment := "rezoned"
	require.NoError(t, snap.ApplyStatic("HordeStatic1", StaticMutation{Config: &cfg, Comment: &comment}))

	z, err := snap.StaticZone("HordeStatic1")
	require.NoError(t, err)
	assert.Equal(t, 7, z.Config)
	assert.Equal(t, "7", z.Fields[StaticConfigField])
	assert.Equal(t, "rezoned", z.Comment)
	// Altitude immutable by construction: no mutation path exists.
	assert.Equal(t, 339.0, z.Y)
}

func TestDuplicateIDKeepsFirstDeclaration(t *testing.T) {
	snap, err := NewSnapshot(100,
		[]*DynamicZone{
			{ID: "Zone1", Index: 1, Config: 1, Comment: "first"},
			{ID: "Zone1", Index: 1, Config: 2, Comment: "second"},
		}, nil, nil, nil)
	require.NoError(t, err)
	z, err := snap.DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, "first", z.Comment)
}

func TestSlotSeriesBounds(t *testing.T) {
	_, err := NewSnapshot(100, []*DynamicZone{{ID: "Zone151", Index: 151}}, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewSnapshot(100, nil, []*StaticZone{{ID: "HordeStatic263", Index: 263}}, nil, nil)
	assert.Error(t, err)
}

// Property-based tests

func TestPropertyValidRectAccepted(t *testing.T) {
	snap := testSnapshot(t)
	rapid.Check(t, func(t *rapid.T) {
		xul := rapid.IntRange(0, 16382).Draw(t, "xul")
		xlr := rapid.IntRange(xul+1, 16384).Draw(t, "xlr")
		zlr := rapid.IntRange(0, 16382).Draw(t, "zlr")
		zul := rapid.IntRange(zlr+1, 16384).Draw(t, "zul")
		r := Rect{XUpperLeft: xul, ZUpperLeft: zul, XLowerRight: xlr, ZLowerRight: zlr}
		if err := snap.ValidateRect(r); err != nil {
			t.Fatalf("valid rect %+v rejected: %v", r, err)
		}
	})
}

func TestPropertyInvertedRectRejected(t *testing.T) {
	snap := testSnapshot(t)
	rapid.Check(t, func(t *rapid.T) {
		xlr := rapid.IntRange(0, 16384).Draw(t, "xlr")
		xul := rapid.IntRange(xlr, 16384).Draw(t, "xul")
		zlr := rapid.IntRange(0, 16383).Draw(t, "zlr")
		zul := rapid.IntRange(zlr+1, 16384).Draw(t, "zul")
		r := Rect{XUpperLeft: xul, ZUpperLeft: zul, XLowerRight: xlr, ZLowerRight: zlr}
		if err := snap.ValidateRect(r); err == nil {
			t.Fatalf("x-inverted rect %+v accepted", r)
		}
	})
}
