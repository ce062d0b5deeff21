package commands

import (
	"os"
	"path/filepath"
	"testing"

	"edarchive/internal/components/telemetry"
	"edarchive/internal/resources"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(tokenEnv, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "edarchive.json5"), false)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigRequired(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "edarchive.json5"), true)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(tokenEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "edarchive.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		token: "file-token",
		course_id: 1234,
		download: {
			title: "Special Participation B",
			limit: 5,
		},
		resources: {
			catalog: [{name: "lectures", items: [{name: "Lec_00", numbers: [6]}]}],
		},
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edarchive.local.json5"), []byte(`{
		process: {website: "site/data.js"},
	}`), 0600))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	expected := DefaultConfig()
	expected.Token = "file-token"
	expected.CourseId = 1234
	expected.Download.Title = "Special Participation B"
	expected.Download.Limit = 5
	expected.Resources.Catalog = resources.Catalog{
		{Name: "lectures", Items: []resources.Item{{Name: "Lec_00", Numbers: []int64{6}}}},
	}
	expected.Process.Website = "site/data.js"
	require.Equal(t, expected, cfg)
}

func TestLoadConfigTokenFromEnv(t *testing.T) {
	t.Setenv(tokenEnv, "env-token")

	dir := t.TempDir()
	path := filepath.Join(dir, "edarchive.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{token: "file-token"}`), 0600))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, "env-token", cfg.Token)
}

func TestLoadConfigTracing(t *testing.T) {
	t.Setenv(tokenEnv, "")

	path := filepath.Join(t.TempDir(), "edarchive.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		tracing: {http_endpoint: "http://localhost:4318", headers: {"x-team": "archive"}},
	}`), 0600))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, telemetry.OtlpConfig{
		HttpEndpoint: "http://localhost:4318",
		Headers:      map[string]string{"x-team": "archive"},
	}, cfg.Tracing)
	require.True(t, cfg.Tracing.Enabled())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
