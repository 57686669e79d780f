package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsondiff/internal/config"
	"github.com/oakwood-commons/jsondiff/internal/filter"
)

func TestResolveConfigPath(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, "/explicit.yaml", resolveConfigPath("/explicit.yaml"))
	assert.Empty(t, resolveConfigPath(""), "no file yet")

	p := filepath.Join(dir, "config", "jsondiff", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("display:\n  context: 1\n"), 0o644))
	assert.Equal(t, p, resolveConfigPath(""))
	assert.Equal(t, p, defaultConfigPath())
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := isolate(t)
	cfg, path, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, filepath.Join(dir, "data", "jsondiff", "history.db"), cfg.History.DBPath)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Display.Context)
}

func TestLoadConfigUserFile(t *testing.T) {
	dir := isolate(t)
	p := writeFile(t, dir, "custom.yaml", `
history:
  db_path: "{{ .home }}/h.db"
ignore:
  fieldPaths: [meta]
  ignoreTypes: [boolean]
display:
  context: 0
`)
	t.Setenv("HOME", dir)
	cfg, path, err := loadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, p, path)
	assert.Equal(t, filepath.Join(dir, "h.db"), cfg.History.DBPath)
	assert.Equal(t, []string{"meta"}, cfg.Ignore.FieldPaths)
	assert.Equal(t, []filter.Type{filter.TypeBoolean}, cfg.Ignore.IgnoreTypes)
	assert.Equal(t, 0, cfg.Display.Context)
	assert.Equal(t, 30, cfg.Display.VisibleLines, "untouched keys keep defaults")
}

func TestLoadConfigErrors(t *testing.T) {
	dir := isolate(t)

	_, _, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	unknown := writeFile(t, dir, "unknown.yaml", "display:\n  colour: red\n")
	_, _, err = loadConfig(unknown)
	assert.ErrorContains(t, err, unknown)

	badTemplate := writeFile(t, dir, "tmpl.yaml", "history:\n  db_path: \"{{ .nope }}/h.db\"\n")
	_, _, err = loadConfig(badTemplate)
	assert.ErrorContains(t, err, "history.db_path")

	invalid := writeFile(t, dir, "invalid.yaml", "ignore:\n  regex: \"(\"\n")
	_, _, err = loadConfig(invalid)
	assert.ErrorContains(t, err, "config: ignore")
}

func TestProcessTemplateString(t *testing.T) {
	data := map[string]any{"dataDir": "/var/lib"}

	got, err := processTemplateString("plain/path", data)
	require.NoError(t, err)
	assert.Equal(t, "plain/path", got)

	got, err = processTemplateString("{{ .dataDir }}/jsondiff", data)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/jsondiff", got)

	_, err = processTemplateString("{{ .dataDir", data)
	assert.Error(t, err)
}

func TestRenderConfig(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	y, err := renderConfig(cfg, "yaml")
	require.NoError(t, err)
	assert.Contains(t, y, "read_timeout: 15s")

	js, err := renderConfig(cfg, "json")
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(js), &tree))
	server := tree["server"].(map[string]any)
	assert.Equal(t, "15s", server["read_timeout"])
	assert.Equal(t, "127.0.0.1:8787", server["addr"])

	_, err = renderConfig(cfg, "toml")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)

	out, _, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "(defaults; create "+filepath.Join(dir, "config", "jsondiff", "config.yaml")), out)

	_, errOut, err := runCLI(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, errOut, "wrote ")
	written := filepath.Join(dir, "config", "jsondiff", "config.yaml")
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultYAML(), data)

	_, _, err = runCLI(t, "", "config", "init")
	assert.ErrorContains(t, err, "already exists")
	_, _, err = runCLI(t, "", "-q", "config", "init", "--force")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, written+"\n", out)

	out, _, err = runCLI(t, "", "config", "get", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"read_timeout": "15s"`)
	assert.Contains(t, out, filepath.Join(dir, "data", "jsondiff", "history.db"))
}

func TestConfigInitIgnoresBrokenUserFile(t *testing.T) {
	dir := isolate(t)
	broken := writeFile(t, dir, "broken.yaml", "server: [\n")

	_, _, err := runCLI(t, "", "--config-file", broken, "version")
	assert.ErrorContains(t, err, "broken.yaml")

	_, _, err = runCLI(t, "", "--config-file", broken, "config", "init", "--force")
	require.NoError(t, err)
	data, err := os.ReadFile(broken)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultYAML(), data)
}

func TestThemeConversion(t *testing.T) {
	c := formatterColors(config.ThemeConfig{Added: "2", Removed: ""})
	assert.NotNil(t, c.Added)
	assert.Nil(t, c.Removed)

	th := uiTheme(config.ThemeConfig{Key: "#ff0000"})
	assert.NotNil(t, th.KeyColor)
	assert.Nil(t, th.SelectedBG)
}
