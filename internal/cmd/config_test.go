package cmd

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapFromStruct(t *testing.T) {
	root := buildMapFromStruct(reflect.TypeOf(Run{}))

	assert.Equal(t, false, root["enableShareButton"])
	assert.Equal(t, 0.08, root["deadzone"])
	assert.Equal(t, "legion-go", root["variant"])
	assert.Equal(t, "250ms", root["reconnectMin"])

	bus, ok := root["bus"].(map[string]any)
	require.True(t, ok, "embedded bus config becomes a nested table")
	assert.Equal(t, "127.0.0.1:27890", bus["addr"])
	assert.Equal(t, "3s", bus["dialTimeout"])
}

func TestConfigInitFormats(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "run."+format)
			c := ConfigInit{Format: format, Output: dest}
			require.NoError(t, c.Run())
			assert.FileExists(t, dest)

			// A second run without --force refuses to clobber.
			assert.Error(t, c.Run())
			c.Force = true
			assert.NoError(t, c.Run())
		})
	}
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "yaml", normalizeFormat("yml"))
	assert.Equal(t, "yaml", normalizeFormat("YAML"))
	assert.Equal(t, "toml", normalizeFormat("toml"))
	assert.Equal(t, "", normalizeFormat("ini"))
}
