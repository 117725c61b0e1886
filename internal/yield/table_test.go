package yield

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Lookups(t *testing.T) {
	tbl := DefaultTable()

	require.Equal(t, 5.6, tbl.BaseYield("Ragi"))
	require.Equal(t, DefaultBaseYield, tbl.BaseYield("Dragonfruit"))
	require.Equal(t, 0.85, tbl.IrrigationFactor("Rainfed"))
	require.Equal(t, DefaultFactor, tbl.SoilFactor("Volcanic"))
	require.Equal(t, DefaultFactor, tbl.SeasonFactor(""))
	require.InDelta(t, 4.76, tbl.YieldPerAcre("Ragi", "Red", "Kharif (Monsoon)", "Rainfed"), 1e-9)
}

func TestDefaultTable_UnknownKeysUseDefaults(t *testing.T) {
	tbl := DefaultTable()
	require.Equal(t, 5.0, tbl.YieldPerAcre("Quinoa", "Moon", "Monsoon-ish", "Hose"))
}

func TestDefaultTable_Crops(t *testing.T) {
	crops := DefaultTable().Crops()
	require.Contains(t, crops, "Paddy")
	require.IsNonDecreasing(t, crops)
}

func TestNewTable_RejectsNegative(t *testing.T) {
	spec := DefaultTableSpec()
	spec.SoilFactors["Red"] = -1
	_, err := NewTable(spec)
	require.Error(t, err)

	neg := -2.0
	_, err = NewTable(TableSpec{DefaultBaseYield: &neg})
	require.Error(t, err)
}

func TestNewTable_CopiesInput(t *testing.T) {
	spec := DefaultTableSpec()
	tbl, err := NewTable(spec)
	require.NoError(t, err)

	spec.BaseYield["Ragi"] = 100
	require.Equal(t, 5.6, tbl.BaseYield("Ragi"))
}

func TestLoadTable(t *testing.T) {
	t.Run("empty path is built-in", func(t *testing.T) {
		tbl, err := LoadTable("")
		require.NoError(t, err)
		require.Equal(t, 8.2, tbl.BaseYield("Paddy"))
	})

	t.Run("overlay replaces listed keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "yield.yaml")
		body := []byte("default_base_yield: 4\nbase_yield:\n  Ragi: 6.0\n  Millet: 3.5\nirrigation_factors:\n  Rainfed: 0.8\n")
		require.NoError(t, os.WriteFile(path, body, 0o600))

		tbl, err := LoadTable(path)
		require.NoError(t, err)
		require.Equal(t, 6.0, tbl.BaseYield("Ragi"))
		require.Equal(t, 3.5, tbl.BaseYield("Millet"))
		require.Equal(t, 8.2, tbl.BaseYield("Paddy"))
		require.Equal(t, 4.0, tbl.BaseYield("Unknown"))
		require.Equal(t, 0.8, tbl.IrrigationFactor("Rainfed"))
		require.Equal(t, 1.1, tbl.IrrigationFactor("Drip"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("base_yield: [1, 2"), 0o600))
		_, err := LoadTable(path)
		require.Error(t, err)
	})
}
