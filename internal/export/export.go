/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/textlayout"
)

var (
	ErrNoPages       = errors.New("nothing to export")
	ErrUnknownFormat = errors.New("unknown export format")
)

const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Document is a Source that can be told an export succeeded.
type Document interface {
	Source
	Measurer() textlayout.Measurer
	MarkExported()
}

// Options controls ExportDocument. Format overrides the path extension.
// Scale is pixels per point for PNG output; zero means 2.
type Options struct {
	Format string
	Scale  float64
	PDF    PDFOptions
}

// ResolveFormat picks the output format from an explicit name or the path extension.
func ResolveFormat(path, format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case FormatPDF, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// ExportDocument writes doc to path and clears its unsaved-changes flag on success.
// Output goes to temporary files that are renamed into place, so a failed export
// leaves neither a partial file nor a changed document. A multi-page PNG export
// writes <stem>-<n>.png beside path.
func ExportDocument(doc Document, path string, opt Options) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "export_document")
	start := time.Now()
	format, err := ResolveFormat(path, opt.Format)
	if err != nil {
		return nil, err
	}
	pages := BuildPages(doc, doc.Measurer())

	var files []string
	switch format {
	case FormatPDF:
		err = writePDFFile(path, pages, opt.PDF)
		files = []string{path}
	case FormatPNG:
		scale := opt.Scale
		if scale <= 0 {
			scale = 2
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		files, err = WritePNGPages(filepath.Dir(path), stem, pages, scale)
	}
	if err != nil {
		l.Error("export failed", slog.String("path", path), slog.String("format", format), slog.Any("err", err))
		return nil, err
	}
	doc.MarkExported()
	l.Info("exported",
		slog.String("path", path),
		slog.String("format", format),
		slog.Int("pages", len(pages)),
		slog.Duration("dur", time.Since(start)),
	)
	return files, nil
}

func writePDFFile(path string, pages []PageBatch, opt PDFOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	tmp, err := writeTemp(dir, ".pdf", func(f *os.File) error { return WritePDF(f, pages, opt) })
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename pdf: %w", err)
	}
	return nil
}

// writeTemp creates a hidden temporary file in dir, fills it with write and
// closes it. On failure the temporary is removed.
func writeTemp(dir, ext string, write func(*os.File) error) (string, error) {
	f, err := os.CreateTemp(dir, ".pgc-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	name := f.Name()
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp: %w", err)
	}
	return name, nil
}
