package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 50.0, cfg.Threshold)
	require.Equal(t, 180, cfg.Movement.BaseStepMS)
	require.Equal(t, "iso", cfg.Grid.Layout)
	require.Equal(t, []grid.Cell{{X: 3, Y: 3}}, cfg.BlockedCells())

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	require.Equal(t, len(cfg.Commands), catalog.Len())
}

func TestDefaultCatalogResolvesMovement(t *testing.T) {
	cfg := Default()
	catalog, err := cfg.Catalog()
	require.NoError(t, err)

	cases := []struct {
		input string
		want  string
	}{
		{"go north 3", "move"},
		{"walk east quickly", "walk"},
		{"goto 4 5", "goto"},
		{"where am i", "where"},
		{"help", "help"},
	}
	for _, tc := range cases {
		match, ok := catalog.Resolve(parser.Tokenize(tc.input), cfg.Threshold)
		require.True(t, ok, tc.input)
		require.Equal(t, tc.want, match.Command.Name, tc.input)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clanker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
threshold: 75
grid:
  layout: square
  blocked: [[1, 2], [2, 2]]
actor:
  start: [4, 4]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 75.0, cfg.Threshold)
	require.Equal(t, "square", cfg.Grid.Layout)
	require.Equal(t, 10, cfg.Grid.Width)
	require.Equal(t, Cell{X: 4, Y: 4}, cfg.Actor.Start)
	require.Equal(t, "clanker", cfg.Actor.Name)
	require.Equal(t, []grid.Cell{{X: 1, Y: 2}, {X: 2, Y: 2}}, cfg.BlockedCells())
	require.Len(t, cfg.Commands, len(Default().Commands))
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CLANKER_THRESHOLD", "30")
	t.Setenv("CLANKER_BLOCK_ON_EMPTY", "true")
	t.Setenv("CLANKER_BASE_STEP_MS", "90")
	t.Setenv("CLANKER_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 30.0, cfg.Threshold)
	require.True(t, cfg.Movement.BlockOnEmpty)
	require.Equal(t, 90, cfg.Movement.BaseStepMS)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("CLANKER_THRESHOLD", "lots")
	_, err := Load("")
	require.ErrorContains(t, err, "parse env")
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"threshold":   "threshold: 120\n",
		"layout":      "grid: {layout: hex}\n",
		"start":       "actor: {start: [10, 0]}\n",
		"cell":        "actor: {start: [1, 2, 3]}\n",
		"keywords":    "commands: [{name: x, handler: move, keywords: []}]\n",
		"handler":     "commands: [{name: x, keywords: [a]}]\n",
		"speed":       "speeds: {fast: 0}\n",
		"step":        "movement: {base_step_ms: 0}\n",
		"no commands": "commands: []\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoadInvalidThresholdWraps(t *testing.T) {
	t.Setenv("CLANKER_THRESHOLD", "-1")
	_, err := Load("")
	require.ErrorIs(t, err, parser.ErrInvalidThreshold)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clanker.yaml")
	cfg := Default()
	cfg.Threshold = 66
	cfg.Grid.Blocked = append(cfg.Grid.Blocked, Cell{X: 7, Y: 1})

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}
