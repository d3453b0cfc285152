package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	}
	return path
}

func readConfig(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSetKeyInFile(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name                string
		initial             string
		section, key, value string
		want                string
	}{
		{
			name: "new file global",
			key:  "verbose", value: "true",
			want: "verbose true\n",
		},
		{
			name: "new file section",
			section: "jobs", key: "max-workers", value: "4",
			want: "[jobs]\nmax-workers 4\n",
		},
		{
			name:    "replace global",
			initial: "# logging\nlog.level info\nverbose false\n",
			key:     "log.level", value: "debug",
			want: "# logging\nlog.level debug\nverbose false\n",
		},
		{
			name:    "global inserted before first section",
			initial: "verbose true\n\n[jobs]\nmax-workers 2\n",
			key:     "log.level", value: "warn",
			want: "verbose true\nlog.level warn\n\n[jobs]\nmax-workers 2\n",
		},
		{
			name:    "section key with same name as another section's",
			initial: "[stress]\npriority high\n[planner]\nmax-nodes 5\n",
			section: "planner", key: "max-nodes", value: "9",
			want: "[stress]\npriority high\n[planner]\nmax-nodes 9\n",
		},
		{
			name:    "appended to existing section",
			initial: "[jobs]\nmax-workers 2\n\n[planner]\nheuristic zero\n",
			section: "jobs", key: "stop-timeout", value: "1s",
			want: "[jobs]\nmax-workers 2\nstop-timeout 1s\n\n[planner]\nheuristic zero\n",
		},
		{
			name:    "appended to last section",
			initial: "verbose true\n[planner]\nheuristic zero",
			section: "planner", key: "max-nodes", value: "10",
			want: "verbose true\n[planner]\nheuristic zero\nmax-nodes 10\n",
		},
		{
			name:    "new section",
			initial: "verbose true\n",
			section: "stress", key: "tasks", value: "50",
			want: "verbose true\n\n[stress]\ntasks 50\n",
		},
		{
			name:    "global key in section untouched",
			initial: "[jobs]\nverbose false\n",
			key:     "verbose", value: "true",
			want: "verbose true\n[jobs]\nverbose false\n",
		},
		{
			name:    "empty value",
			initial: "verbose true\n",
			key:     "verbose",
			want: "verbose\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tc.initial)
			require.NoError(t, SetKeyInFile(path, tc.section, tc.key, tc.value))
			assert.Equal(t, tc.want, readConfig(t, path))
		})
	}
}

func TestSetKeyInFileRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")

	require.NoError(t, SetKeyInFile(path, "", "log.level", "debug"))
	require.NoError(t, SetKeyInFile(path, "jobs", "max-workers", "2"))
	require.NoError(t, SetKeyInFile(path, "planner", "heuristic", "distance * 3"))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.False(t, cfg.HasWarnings(), "%v", cfg.Warnings)

	v, _ := cfg.GetGlobalOption("log.level")
	assert.Equal(t, "debug", v)
	v, _ = cfg.GetOption("jobs", "max-workers")
	assert.Equal(t, "2", v)
	v, _ = cfg.GetOption("planner", "heuristic")
	assert.Equal(t, "distance * 3", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
