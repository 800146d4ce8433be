package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/erkantaylan/markview/internal/viewstate"
)

func loadFile(t *testing.T, content string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, Load(v))
	return v
}

func TestDefaults(t *testing.T) {
	v := loadFile(t, "")

	c, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "localhost", c.Host)
	assert.Equal(t, 3000, c.Port)
	assert.Equal(t, "system", c.Theme)
	assert.Equal(t, "github", c.Highlight.Light)
	assert.Equal(t, "github-dark", c.Highlight.Dark)
	assert.Equal(t, 100*time.Millisecond, c.Watch.Debounce)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 100, c.View.Width)
	assert.Equal(t, "auto", c.View.Style)
	assert.Equal(t, viewstate.ThemeSystem, c.InitialTheme())
}

func TestFileOverridesDefaults(t *testing.T) {
	v := loadFile(t, "port: 8080\ntheme: dark\nwatch:\n  debounce: 250ms\nview:\n  style: dracula\n")

	c, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, viewstate.ThemeDark, c.InitialTheme())
	assert.Equal(t, 250*time.Millisecond, c.Watch.Debounce)
	assert.Equal(t, "dracula", c.View.Style)
	assert.Equal(t, "localhost", c.Host)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MARKVIEW_PORT", "9090")
	t.Setenv("MARKVIEW_HIGHLIGHT_DARK", "monokai")
	v := loadFile(t, "port: 8080\n")

	c, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, "monokai", c.Highlight.Dark)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, Load(v))
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [1, 2\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	assert.Error(t, Load(v))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := Config{
		Host:      " ",
		Port:      70000,
		Theme:     "sepia",
		Highlight: HighlightConfig{Light: "nope", Dark: "github-dark"},
		Watch:     WatchConfig{Debounce: 0},
		Log:       LogConfig{Level: "loud"},
		View:      ViewConfig{Width: 5, Style: "fancy"},
	}

	err := c.Validate()
	require.Error(t, err)

	for _, want := range []string{
		"host is required",
		"port 70000 out of range",
		"invalid theme 'sepia'",
		"highlight.light: unknown style 'nope'",
		"watch.debounce must be greater than 0",
		"log.level:",
		"view.width must be at least 20",
		"view.style: unknown style 'fancy'",
	} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "highlight.dark")
}

func TestFromViper_Invalid(t *testing.T) {
	v := loadFile(t, "port: 0\n")
	_, err := FromViper(v)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestRenderDefaultYAML(t *testing.T) {
	out := RenderDefaultYAML()

	assert.Contains(t, out, "# Port the live viewer listens on\nport: 3000\n")
	assert.Contains(t, out, "highlight:\n")

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "localhost", parsed["host"])
	assert.Equal(t, "100ms", parsed["watch"].(map[string]any)["debounce"])

	// The rendered file must load back to the defaults.
	c, err := FromViper(loadFile(t, out))
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, c.Watch.Debounce)
	assert.Equal(t, "github-dark", c.Highlight.Dark)
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[len(paths)-1])
	assert.Equal(t, "markview", filepath.Base(paths[0]))
	assert.Equal(t, "config.yaml", filepath.Base(DefaultConfigPath()))
}
