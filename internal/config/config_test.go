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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pagecomposer/internal/domain"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Validate(Defaults()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Document.PageSize != "a4" || cfg.Editor.SnapThreshold != 5 || cfg.Document.UndoDepth != 50 {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "document:\n  page_size: Letter\n  background: \"#FFEEDD\"\neditor:\n  grid: true\nlogging:\n  level: DEBUG\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Document.PageSizeValue() != domain.Letter {
		t.Fatalf("page size: %q", cfg.Document.PageSize)
	}
	if got := cfg.Document.BackgroundValue(); got != (domain.Color{R: 0xff, G: 0xee, B: 0xdd, A: 0xff}) {
		t.Fatalf("background: %+v", got)
	}
	if !cfg.Editor.Grid || cfg.Editor.GridSpacing != 20 {
		t.Fatalf("editor merge: %#v", cfg.Editor)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level must be normalized: %q", cfg.Logging.Level)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "document:\n  page_size: A3\n  undo_depth: 0\n")
	cfg, err := LoadFile(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if cfg.Document.PageSize != "a4" || cfg.Document.UndoDepth != 50 {
		t.Fatalf("invalid file must yield defaults: %#v", cfg.Document)
	}

	writeFile(t, path, "document: [unclosed\n")
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for bad yaml, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPageSize, "letter")
	t.Setenv(EnvSnapThreshold, "8")
	t.Setenv(EnvGrid, "yes")
	t.Setenv(EnvExportDir, "/tmp/out")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "1")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Document.PageSize != "letter" || cfg.Editor.SnapThreshold != 8 || !cfg.Editor.Grid || cfg.Export.Dir != "/tmp/out" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("logging overrides: %#v", cfg.Logging)
	}
	if name, ok := EnvOverrideFor("editor.grid"); !ok || name != EnvGrid {
		t.Fatalf("EnvOverrideFor: %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("export.author"); ok {
		t.Fatalf("author has no env override")
	}
}

func TestConfigPathEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, want)
	if got, err := ConfigPath(); err != nil || got != want {
		t.Fatalf("ConfigPath() = %q, %v", got, err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	t.Setenv(EnvConfigPath, path)
	cfg := Defaults()
	cfg.Export.Author = "Jane"
	cfg.Editor.LineWidth = 3
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, cfg)
	}

	cfg.Logging.Format = "xml"
	if err := Save(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Save must validate, got %v", err)
	}
}

func TestEditorControllerMapping(t *testing.T) {
	e := Defaults().Editor
	e.LineColor = "#ff0000"
	e.SnapThreshold = 7
	c := e.Controller()
	if c.SnapThreshold != 7 || c.LineColor != (domain.Color{R: 0xff, A: 0xff}) || c.Padding != 24 {
		t.Fatalf("controller config: %+v", c)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "editor:\n  grid: false\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan AppConfig, 8)
	if err := Watch(ctx, path, func(c AppConfig, err error) {
		if err == nil {
			got <- c
		}
	}); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	writeFile(t, path, "editor:\n  grid: true\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Editor.Grid {
				return
			}
		case <-deadline:
			t.Fatalf("no reload observed")
		}
	}
}
