/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop shell. The fyne build renders the interaction
// controller's frames; other builds only carry a stub Run.
package ui

import (
	"log/slog"

	"pagecomposer/internal/config"
	"pagecomposer/internal/document"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/textlayout"
)

// Options configure Run.
type Options struct {
	Config config.AppConfig
	// ConfigPath is watched for changes when set.
	ConfigPath string
}

// NewDocument creates an empty document from the document and editor sections.
// Text is measured with editor.font_file when it loads, otherwise with the bundled
// Go font the page renderer draws with.
func NewDocument(cfg config.AppConfig) *document.Model {
	return document.New(document.Options{
		PageSize:   cfg.Document.PageSizeValue(),
		Background: cfg.Document.BackgroundValue(),
		UndoDepth:  cfg.Document.UndoDepth,
		Measurer:   measurer(cfg.Editor.FontFile),
	})
}

func measurer(fontFile string) textlayout.Measurer {
	l := applog.WithComponent("ui")
	if fontFile != "" {
		m, err := textlayout.LoadFontMeasurer(fontFile)
		if err == nil {
			return m
		}
		l.Warn("font file unusable, using bundled font", slog.String("path", fontFile), slog.Any("err", err))
	}
	m, err := textlayout.NewGoFontMeasurer()
	if err != nil {
		l.Warn("bundled font unusable, using basic metrics", slog.Any("err", err))
		return textlayout.BasicMeasurer{}
	}
	return m
}
