package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`target: site/data/crops.js
fields: [tips, " vars ", ""]
add_missing: true
identity:
  category: group
eval_timeout: 500ms
`), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "site/data/crops.js", f.Target)
	assert.Equal(t, []string{"tips", "vars"}, f.Fields)
	require.NotNil(t, f.AddMissing)
	assert.True(t, *f.AddMissing)
	assert.Equal(t, "group", f.Identity.Category)
	assert.Empty(t, f.Identity.Name)
	assert.Equal(t, 500*time.Millisecond, f.EvalTimeout)
	assert.Equal(t, filepath.Join(dir, "site/data/crops.js"), f.ResolvePath(f.Target))
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("taget: x\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taget")
}

func TestDiscover(t *testing.T) {
	f, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestParseFields(t *testing.T) {
	assert.Equal(t, []string{"cn", "tips"}, ParseFields(" cn, ,tips,"))
	assert.Nil(t, ParseFields(""))
}

func TestResolvePath(t *testing.T) {
	var f *File
	assert.Equal(t, "a.js", f.ResolvePath("a.js"))

	f = &File{Dir: "/proj"}
	assert.Equal(t, "/abs.js", f.ResolvePath("/abs.js"))
	assert.Equal(t, filepath.Join("/proj", "a.js"), f.ResolvePath("a.js"))
}
