package inputs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPath(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, m)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topic: AI\ncount: 3\ntags:\n  - news\n  - tech\n"), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AI", m["topic"])
	assert.Equal(t, 3, m["count"])
	assert.Equal(t, []any{"news", "tech"}, m["tags"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "cannot read inputs file")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(": not yaml ["), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "cannot parse inputs file")
}
