package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/migrate"
	"datafixer.ai/internal/nbt"
	"datafixer.ai/internal/persistence/save"
)

const testConfig = `mode: normal
integrations:
  extra_utils2: true
loaded_mods: [gregtech, xu2]
log:
  level: error
audit:
  enabled: true
  dir: audit
index:
  enabled: true
  path: index/fixer.sqlite
workers: 2
`

func execute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	root := &cobra.Command{Use: "fixer", SilenceUsage: true, SilenceErrors: true}
	Setup(root)
	root.AddCommand(MigrateCmd(), NewCmd(), RulesCmd(), InspectCmd(), HistoryCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "fixer.yaml"),
		"--catalogs", filepath.Join("..", "..", "configs", "catalogs"),
		"--data", filepath.Join(dir, "data"),
	}, args...))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func setup(t *testing.T) string {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fixer.yaml"), []byte(testConfig), 0o644))
	return dir
}

func TestNewCreatesWorldMarkedNew(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "fresh.sav")

	out := execute(t, dir, "new", path, "--world", "fresh")
	require.Contains(t, out, "created")

	s, err := save.Read(path)
	require.NoError(t, err)
	v, ok := s.FixVersion()
	require.True(t, ok)
	require.Equal(t, datafix.VersionNew, v)
	require.Contains(t, s.ModList, "xu2")

	out = execute(t, dir, "inspect", path)
	require.Contains(t, out, "stored fix version: NEW")
	require.Contains(t, out, "skip")
}

func TestMigrateLegacyWorld(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "legacy.sav")
	s := save.SaveV1{
		Header:  save.Header{Version: save.FormatVersion, WorldID: "legacy"},
		ModList: map[string]string{"xu2": "1.9.9"},
		Players: []save.PlayerV1{{
			ID:        "p1",
			Inventory: []*nbt.Compound{migrate.NewItem("contenttweaker:dark_red_coal", 3, 0, nil)},
		}},
	}
	require.NoError(t, save.Write(path, s))

	out := execute(t, dir, "inspect", path, "--raw")
	require.Contains(t, out, "stored fix version: none")
	require.Contains(t, out, "run")
	require.Contains(t, out, "legacy")

	out = execute(t, dir, "migrate", path)
	require.Contains(t, out, "Dark Red Coal Remap")
	require.Contains(t, out, "1 fixes applied")

	got, err := save.Read(path)
	require.NoError(t, err)
	v, ok := got.FixVersion()
	require.True(t, ok)
	require.Equal(t, datafix.VersionCurrent, v)
	require.Equal(t, "xu2:ingredients", got.Players[0].Inventory[0].GetString("id"))
	require.EqualValues(t, 4, got.Players[0].Inventory[0].GetShort("Damage"))

	backups, err := filepath.Glob(filepath.Join(dir, "data", "backups", "legacy", "*", "legacy.sav"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	_, err = os.Stat(filepath.Join(dir, "data", "index", "fixer.sqlite"))
	require.NoError(t, err)

	// A second run finds the world current and leaves it alone.
	out = execute(t, dir, "migrate", path)
	require.Contains(t, out, "up to date")
	require.Contains(t, out, "0 fixes applied")

	out = execute(t, dir, "history", "legacy")
	require.Contains(t, out, "ran from DEFAULT(0)")
	require.Contains(t, out, "skipped")
	require.Contains(t, out, "Dark Red Coal Remap")
}

func TestInspectHeaderOnly(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "fresh.sav")
	execute(t, dir, "new", path, "--world", "fresh")

	out := execute(t, dir, "inspect", path, "--header")
	require.Contains(t, out, "world: fresh (format 1)")
	require.Contains(t, out, "saved:")
	require.NotContains(t, out, "stored fix version")
	require.NotContains(t, out, "warning:")
}

func TestRulesListsEveryKind(t *testing.T) {
	dir := setup(t)
	out := execute(t, dir, "rules")
	for _, want := range []string{
		"Dark Red Coal Remap",
		"XU2 Frequency Removal",
		"Old Multiblock Metadata Remap",
		"Material Special Meta Block Remap",
		"Old Multiblock Tile Entity Meta ID Remap",
		"[mode]",
		"[tile entity]",
	} {
		require.Contains(t, out, want)
	}
	// EnderIO is not loaded.
	require.NotContains(t, out, "Custom Capacitor NBT Removal")
}
