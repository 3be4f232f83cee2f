/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/interact"
)

// ErrInvalidConfig wraps every schema or parse failure of the config file.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed schema.json
var schemaJSON []byte

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied after the file.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type DocumentConfig struct {
	PageSize   string `yaml:"page_size"`  // "a4" | "letter"
	Background string `yaml:"background"` // #rrggbb
	UndoDepth  int    `yaml:"undo_depth"`
}

type EditorConfig struct {
	SnapThreshold   float64 `yaml:"snap_threshold"`
	Grid            bool    `yaml:"grid"`
	GridSpacing     float64 `yaml:"grid_spacing"`
	HandleSize      float64 `yaml:"handle_size"`
	Padding         float64 `yaml:"padding"`
	PageGap         float64 `yaml:"page_gap"`
	DefaultFontSize float64 `yaml:"default_font_size"`
	LineWidth       float64 `yaml:"line_width"`
	LineColor       string  `yaml:"line_color"`
	FontFile        string  `yaml:"font_file"` // optional TTF/OTF used for text metrics
}

type ExportConfig struct {
	Dir      string  `yaml:"dir"`
	PNGScale float64 `yaml:"png_scale"`
	Author   string  `yaml:"author"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Document      DocumentConfig `yaml:"document"`
	Editor        EditorConfig   `yaml:"editor"`
	Export        ExportConfig   `yaml:"export"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Document:      DocumentConfig{PageSize: "a4", Background: "#ffffff", UndoDepth: 50},
		Editor: EditorConfig{
			SnapThreshold:   5,
			GridSpacing:     20,
			HandleSize:      10,
			Padding:         24,
			PageGap:         24,
			DefaultFontSize: 18,
			LineWidth:       2,
			LineColor:       "#000000",
		},
		Export:  ExportConfig{PNGScale: 2},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath    = "PGC_CONFIG"
	EnvPageSize      = "PGC_PAGE_SIZE"
	EnvSnapThreshold = "PGC_SNAP_THRESHOLD"
	EnvGrid          = "PGC_GRID"
	EnvExportDir     = "PGC_EXPORT_DIR"
	EnvLogLevel      = "PGC_LOG_LEVEL"
	EnvLogFormat     = "PGC_LOG_FORMAT"
	EnvLogSource     = "PGC_LOG_SOURCE"
	EnvLogFile       = "PGC_LOG_FILE"
)

// ConfigPath returns the per-user config file path. PGC_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageComposer")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageComposer")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "pagecomposer")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file at ConfigPath.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile merges the file at path over the defaults and applies environment
// overrides. A missing file is not an error. An invalid file yields the defaults
// (plus overrides) and an error wrapping ErrInvalidConfig.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decode(data, &cfg); err != nil {
			cfg = Defaults()
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func decode(data []byte, cfg *AppConfig) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc == nil {
		return nil
	}
	if err := validateDoc(doc); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	normalize(cfg)
	return nil
}

// Validate checks cfg against the embedded JSON schema.
func Validate(cfg AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	return validateDoc(doc)
}

func validateDoc(doc map[string]any) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Save writes cfg as YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg AppConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func normalize(cfg *AppConfig) {
	cfg.Document.PageSize = strings.TrimSpace(cfg.Document.PageSize)
	cfg.Document.Background = strings.ToLower(strings.TrimSpace(cfg.Document.Background))
	cfg.Editor.LineColor = strings.ToLower(strings.TrimSpace(cfg.Editor.LineColor))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.Export.Dir = strings.TrimSpace(cfg.Export.Dir)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		if ps, ok := domain.PageSizeByName(v); ok {
			cfg.Document.PageSize = ps.Name
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.SnapThreshold = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGrid)); v != "" {
		cfg.Editor.Grid = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env := map[string]string{
		"document.page_size":    EnvPageSize,
		"editor.snap_threshold": EnvSnapThreshold,
		"editor.grid":           EnvGrid,
		"export.dir":            EnvExportDir,
		"logging.level":         EnvLogLevel,
		"logging.format":        EnvLogFormat,
		"logging.source":        EnvLogSource,
		"logging.file":          EnvLogFile,
	}[key]
	if env == "" || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// PageSizeValue resolves the configured page format, falling back to A4.
func (d DocumentConfig) PageSizeValue() domain.PageSize {
	if ps, ok := domain.PageSizeByName(d.PageSize); ok {
		return ps
	}
	return domain.A4
}

func (d DocumentConfig) BackgroundValue() domain.Color {
	if c, err := domain.ParseHex(d.Background); err == nil {
		return c
	}
	return domain.White
}

// Controller maps the editor section onto the interaction controller settings.
func (e EditorConfig) Controller() interact.Config {
	cfg := interact.DefaultConfig()
	cfg.SnapThreshold = e.SnapThreshold
	cfg.Grid = e.Grid
	cfg.GridSpacing = e.GridSpacing
	cfg.HandleSize = e.HandleSize
	cfg.Padding = e.Padding
	cfg.PageGap = e.PageGap
	cfg.DefaultFontSize = e.DefaultFontSize
	cfg.LineWidth = e.LineWidth
	if c, err := domain.ParseHex(e.LineColor); err == nil {
		cfg.LineColor = c
	}
	return cfg
}
