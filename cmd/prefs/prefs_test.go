package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/sprefs/cmd/util"
	"github.com/ValentinKolb/sprefs/lib/common"
	prefslib "github.com/ValentinKolb/sprefs/lib/prefs"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) {
	t.Helper()
	a, err := util.InitPreferences(&common.CLIConfig{
		Host:      common.HostConfig{PackageName: "com.example.cmd", DataDir: t.TempDir()},
		Namespace: "cmd",
		Mode:      "private",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"":               "json",
		"-":              "json",
		"backup.json":    "json",
		"backup.toml":    "toml",
		"dir/backup.yml": "yml",
		"backup.yaml":    "yaml",
		"backup.txt":     "json",
	}
	for path, want := range tests {
		assert.Equal(t, want, formatFromPath(path), path)
	}
}

func TestPutAndGetTyped(t *testing.T) {
	setupTest(t)

	tests := []struct {
		typ  string
		raw  string
		want any
	}{
		{"int", "-7", int32(-7)},
		{"long", "9000000000", int64(9000000000)},
		{"float", "1.5", float32(1.5)},
		{"double", "2.25", 2.25},
		{"boolean", "true", true},
		{"bool", "false", false},
		{"string", "hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			key := "key-" + tt.typ
			require.NoError(t, putTyped(tt.typ, key, tt.raw))

			got, err := getTyped(tt.typ, key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPutTypedRejectsBadInput(t *testing.T) {
	setupTest(t)

	assert.Error(t, putTyped("int", "k", "not-a-number"))
	assert.Error(t, putTyped("double", "k", "x"))
	assert.Error(t, putTyped("bytes", "k", "x"))

	_, err := getTyped("bytes", "k")
	assert.Error(t, err)
}

func TestTeardownClosesAndWritesMetrics(t *testing.T) {
	a, err := util.InitPreferences(&common.CLIConfig{
		Host:      common.HostConfig{PackageName: "com.example.cmd", DataDir: t.TempDir()},
		Namespace: "teardown",
		Mode:      "private",
	})
	require.NoError(t, err)
	app = a
	t.Cleanup(func() { app = nil })

	out := filepath.Join(t.TempDir(), "metrics.txt")
	viper.Set("metrics-out", out)
	t.Cleanup(func() { viper.Set("metrics-out", "") })

	require.NoError(t, prefslib.PutString("theme", "dark"))
	require.NoError(t, teardownPreferences(nil, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sprefs_writes_total{namespace="teardown"}`)
	assert.Empty(t, a.Namespaces(), "teardown closes all namespaces")
}
