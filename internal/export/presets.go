/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls a batch export into one directory.
//
// Path semantics:
//   - Files are named <Base>.pdf and <Base>.png (or <Base>-<n>.png per page) in Dir.
//   - Base defaults to "document", Dir to the current directory.
//   - Formats empty means the preset defaults.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: pdf, png
	Dir     string
	Base    string
	Scale   float64 // PNG pixels per point; when 0 the preset decides
	PDF     PDFOptions
}

// Batch runs ExportDocument once per format and returns every written file.
// It stops at the first failure; files of formats already done stay in place.
func Batch(doc Document, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := strings.TrimSpace(opt.Base)
	if base == "" {
		base = "document"
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = presetScale(opt.Preset)
	}

	var out []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if _, err := ResolveFormat("", f); err != nil {
			return out, err
		}
		path := filepath.Join(opt.Dir, base+"."+f)
		files, err := ExportDocument(doc, path, Options{Format: f, Scale: scale, PDF: opt.PDF})
		if err != nil {
			return out, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, files...)
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{FormatPNG}
	case PresetPrint:
		return []string{FormatPDF, FormatPNG}
	default:
		return []string{FormatPDF}
	}
}

// presetScale is 1x for screens and 300 dpi for print.
func presetScale(p PresetName) float64 {
	switch p {
	case PresetWeb:
		return 1
	case PresetPrint:
		return 300.0 / 72.0
	default:
		return 2
	}
}
