package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hordetools/spawnedit/internal/dialect"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAllKinds(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		DynamicZones: writeFile(t, dir, "DynamicSpawnZones.c",
			`ref autoptr TIntArray data_Zone1 = {10, 100, 900, 300, 700, 5, 20}; // west
ref autoptr TIntArray data_Zone2 = {0, 0, 0, 0, 0, 5, 20};
`),
		StaticZones: writeFile(t, dir, "StaticSpawnDatas.c",
			`ref autoptr TFloatArray data_HordeStatic1 = {60, 2, 6, 450.5, 339.0, 1053.5, 1, 1, 0, 0, 0, 20, 0}; // barracks
`),
		ConfigMappings: writeFile(t, dir, "ZombiesChooseCategories.c",
			`data_Horde_10_ChooseCategories = new Param5<string, int, TStringArray, TStringArray, TStringArray>("Low", 5, CatA, Empty, Empty);
data_Horde_20_ChooseCategories = new Param5<string, int, TStringArray, TStringArray, TStringArray>("High", 2, CatB, Empty, Empty);
`),
		Categories: writeFile(t, dir, "ZombiesCategories.c",
			`data_CatA = new Param4<string, int, TStringArray, TStringArray>("CatA", 1, {"z1", "z2"}, {"day", "day"});
`),
		Health: writeFile(t, dir, "health.xml",
			`<zombie_datas><zombie classname="z1"><health time="day" value="100"/></zombie></zombie_datas>`),
	}

	res, err := Load(paths, 16384)
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Warnings)

	z, err := res.Snapshot.DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, 10, z.Config)
	assert.Equal(t, Rect{XUpperLeft: 100, ZUpperLeft: 900, XLowerRight: 300, ZLowerRight: 700}, z.Rect)

	sz, err := res.Snapshot.StaticZone("HordeStatic1")
	require.NoError(t, err)
	assert.Equal(t, 20, sz.Config)
	assert.Equal(t, 339.0, sz.Y)

	assert.True(t, res.Snapshot.HasHealthData())
	v, ok := res.Snapshot.Health("z1")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestLoadPartialIngestion(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		DynamicZones: writeFile(t, dir, "DynamicSpawnZones.c",
			`ref autoptr TIntArray data_Zone1 = {10, 100, 900, 300, 700, 5, 20};
`),
		StaticZones:    filepath.Join(dir, "does-not-exist.c"),
		ConfigMappings: "",
		Categories: writeFile(t, dir, "ZombiesCategories.c",
			`data_CatA = new Param4<string, int, TStringArray, TStringArray>("CatA", 1, {"z1"}, {"day"});
`),
	}

	res, err := Load(paths, 16384)
	require.NoError(t, err)

	// Two kinds failed, each localized to its own kind.
	require.Len(t, res.Missing, 2)
	for _, e := range res.Missing {
		assert.ErrorIs(t, e, ErrMissingInput)
	}

	// Loaded kinds remain usable.
	_, err = res.Snapshot.DynamicZone("Zone1")
	assert.NoError(t, err)
	_, err = res.Snapshot.Category("CatA")
	assert.NoError(t, err)
	assert.Empty(t, res.Snapshot.Statics())
}

func TestLoadRoundTripUnedited(t *testing.T) {
	dir := t.TempDir()
	dynLine := `ref autoptr TIntArray data_Zone1 = {10, 100, 900, 300, 700, 5, 20}; // west`
	statLine := `ref autoptr TFloatArray data_HordeStatic1 = {60, 2, 6, 450.50, 339.0, 1053.5, 1, 1, 0, 0, 0, 20, 0}; // barracks`
	paths := Paths{
		DynamicZones: writeFile(t, dir, "dyn.c", dynLine+"\n"),
		StaticZones:  writeFile(t, dir, "stat.c", statLine+"\n"),
	}

	res, err := Load(paths, 16384)
	require.NoError(t, err)

	// Regenerating unedited declarations reproduces the source lines byte
	// for byte, including the "450.50" fractional formatting.
	z, err := res.Snapshot.DynamicZone("Zone1")
	require.NoError(t, err)
	assert.Equal(t, dynLine, dialect.FormatDynamic(z.ToRecord()))

	sz, err := res.Snapshot.StaticZone("HordeStatic1")
	require.NoError(t, err)
	assert.Equal(t, statLine, dialect.FormatStatic(sz.ToRecord()))
}
