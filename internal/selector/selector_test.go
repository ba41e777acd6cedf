package selector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	c := Default()

	all := c.Filter("  ")
	assert.Len(t, all, len(DefaultOptions))

	nav := c.Filter("НАВИГАТОР")
	require.Len(t, nav, 2)
	assert.Equal(t, "ai_navigator", nav[0].Value)
	assert.Equal(t, "student_navigator", nav[1].Value)

	green := c.Filter("green")
	require.Len(t, green, 1)
	assert.Equal(t, "green_navigator", green[0].Value)

	assert.Empty(t, c.Filter("weather"))
}

func TestLookup(t *testing.T) {
	c := Default()
	assert.Equal(t, "ai_assistant", c.First().Value)
	assert.True(t, c.Has("communication"))
	assert.False(t, c.Has("auto"))

	o, ok := c.Lookup("ai_navigator")
	require.True(t, ok)
	assert.Equal(t, "🧭", o.Icon)
}

func TestOptionsReturnsCopy(t *testing.T) {
	c := Default()
	opts := c.Options()
	opts[0].Value = "mutated"
	assert.Equal(t, "ai_assistant", c.First().Value)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents:
  - value: admissions
    label: Поступление
    icon: "🎓"
  - value: scholarship
    label: Стипендия
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "admissions", c.First().Value)
	assert.True(t, c.Has("scholarship"))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("agents: []\n"), 0o644))
	_, err = Load(empty)
	assert.Error(t, err)

	novalue := filepath.Join(dir, "novalue.yaml")
	require.NoError(t, os.WriteFile(novalue, []byte("agents:\n  - label: x\n"), 0o644))
	_, err = Load(novalue)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
