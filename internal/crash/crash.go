/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unrecovered panic into a report file and, when the
// document has unexported changes, an emergency PDF next to it.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"pagecomposer/internal/document"
	"pagecomposer/internal/export"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// reportDir is where reports and emergency exports go.
var reportDir = os.TempDir

// Recover captures a panic, logs it with the stack trace, writes a crash report
// and exports a dirty document as PDF. doc may be nil.
//
// Usage: defer crash.Recover(doc)
func Recover(doc *document.Model) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	stamp := time.Now().Format("20060102-150405")
	var rescued string
	if doc != nil && doc.Dirty() {
		path, err := emergencyExport(doc, stamp)
		if err != nil {
			l.Error("emergency export failed", slog.Any("err", err))
		} else {
			rescued = path
			l.Info("emergency export written", slog.String("path", path))
		}
	}
	reportPath, err := writeReport(doc, r, stack, stamp, rescued)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err))
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if rescued != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Unexported changes were saved to: %s\n", rescued)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// emergencyExport reports a second panic during export as an error.
func emergencyExport(doc *document.Model, stamp string) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("export panicked: %v", r)
		}
	}()
	path = filepath.Join(reportDir(), fmt.Sprintf("pagecomposer-recovered-%s.pdf", stamp))
	if _, err := export.ExportDocument(doc, path, export.Options{Format: export.FormatPDF}); err != nil {
		return "", err
	}
	return path, nil
}

func writeReport(doc *document.Model, panicVal any, stack []byte, stamp, rescued string) (string, error) {
	dir := reportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("pagecomposer-crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Page Composer Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if doc != nil {
		_, _ = fmt.Fprintf(&buf, "Session: %s\n", doc.SessionID())
		_, _ = fmt.Fprintf(&buf, "Pages: %d (%s)\n", doc.PageCount(), doc.PageSize().Name)
		_, _ = fmt.Fprintf(&buf, "Entities: %d images, %d texts, %d lines\n", len(doc.Images()), len(doc.Texts()), len(doc.Lines()))
		_, _ = fmt.Fprintf(&buf, "Dirty: %v\n", doc.Dirty())
	}
	if rescued != "" {
		_, _ = fmt.Fprintf(&buf, "Recovered: %s\n", rescued)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
