package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jsondiff/internal/config"
	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/internal/ui"
	"github.com/oakwood-commons/jsondiff/pkg/settings"
)

const configFileName = "config.yaml"

// loadConfig merges the embedded defaults with the user's config file and
// expands path templates. It returns the file that was merged, if any.
func loadConfig(explicit string) (config.Config, string, error) {
	cfg, err := config.Default()
	if err != nil {
		return cfg, "", fmt.Errorf("load default config: %w", err)
	}

	path := resolveConfigPath(explicit)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, "", fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return cfg, "", fmt.Errorf("config %s: %w", path, err)
		}
	}

	data := templateData()
	if cfg.History.DBPath, err = processTemplateString(cfg.History.DBPath, data); err != nil {
		return cfg, "", fmt.Errorf("history.db_path: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", fmt.Errorf("config: %w", err)
	}
	return cfg, path, nil
}

// resolveConfigPath returns explicit when set, otherwise the first existing
// file of $XDG_CONFIG_HOME/jsondiff/config.yaml and
// ~/.config/jsondiff/config.yaml. An empty result means defaults only.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := defaultConfigPath()
	if candidate == "" {
		return ""
	}
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		return candidate
	}
	return ""
}

// defaultConfigPath is where `config init` writes and where the loader
// looks first.
func defaultConfigPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, settings.CliBinaryName, configFileName)
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ""
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return ""
}

func templateData() map[string]any {
	home, _ := os.UserHomeDir()
	return map[string]any{
		"home":      home,
		"configDir": configDir(),
		"dataDir":   dataDir(),
	}
}

// processTemplateString expands {{ .name }} references in config values.
// Text without template syntax is returned unchanged.
func processTemplateString(text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("config").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderConfig renders cfg as yaml or json.
func renderConfig(cfg config.Config, format string) (string, error) {
	out, err := cfg.Marshal()
	if err != nil {
		return "", err
	}
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return string(out), nil
	case "json":
		// Go through a generic tree so durations keep their "15s" form.
		var tree any
		if err := yaml.Unmarshal(out, &tree); err != nil {
			return "", err
		}
		js, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return "", err
		}
		return string(js) + "\n", nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected yaml or json)", format)
	}
}

// writeDefaultConfig writes the embedded defaults to path, refusing to
// overwrite an existing file unless force is set.
func writeDefaultConfig(path string, force bool) error {
	if path == "" {
		return errors.New("cannot determine config directory; pass --config-file")
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, config.DefaultYAML(), 0o644)
}

func themeColor(s string) color.Color {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return lipgloss.Color(s)
}

func formatterColors(t config.ThemeConfig) formatter.Colors {
	return formatter.Colors{
		HeaderFG:       themeColor(t.HeaderFG),
		HeaderBG:       themeColor(t.HeaderBG),
		KeyColor:       themeColor(t.Key),
		ValueColor:     themeColor(t.Value),
		SeparatorColor: themeColor(t.Separator),
		Added:          themeColor(t.Added),
		Removed:        themeColor(t.Removed),
		Context:        themeColor(t.Context),
	}
}

// uiTheme maps the shared palette onto the explorer. Colors the config does
// not name keep the explorer defaults.
func uiTheme(t config.ThemeConfig) ui.Theme {
	return ui.Theme{
		HeaderFG:      themeColor(t.HeaderFG),
		HeaderBG:      themeColor(t.HeaderBG),
		KeyColor:      themeColor(t.Key),
		ValueColor:    themeColor(t.Value),
		MutedColor:    themeColor(t.Context),
		StatusError:   themeColor(t.Removed),
		StatusSuccess: themeColor(t.Added),
	}
}
