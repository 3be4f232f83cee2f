/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
)

// silenceStderr swaps os.Stderr for a pipe until the test ends.
func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, r)
		close(done)
	}()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func useDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := reportDir
	reportDir = func() string { return dir }
	t.Cleanup(func() { reportDir = old })
	return dir
}

func interceptExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func find(t *testing.T, dir, prefix, suffix string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func TestRecoverWritesReportAndEmergencyExport(t *testing.T) {
	silenceStderr(t)
	dir := useDir(t)
	code := interceptExit(t)

	doc := document.New(document.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if _, err := doc.AddImage(domain.NewBitmap(image.NewRGBA(image.Rect(0, 0, 8, 4))), 10, 10, 80); err != nil {
		t.Fatalf("add image: %v", err)
	}

	func() {
		defer Recover(doc)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	report := find(t, dir, "pagecomposer-crash-", ".log")
	if report == "" {
		t.Fatalf("expected crash report in %s", dir)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"Page Composer Crash Report", "Panic: boom", "Entities: 1 images", "Recovered: "} {
		if !bytes.Contains(b, []byte(want)) {
			t.Fatalf("report missing %q:\n%s", want, b)
		}
	}
	if find(t, dir, "pagecomposer-recovered-", ".pdf") == "" {
		t.Fatalf("expected emergency pdf for a dirty document")
	}
	if doc.Dirty() {
		t.Fatalf("emergency export clears dirty like any export")
	}
}

func TestRecoverWithoutDocument(t *testing.T) {
	silenceStderr(t)
	dir := useDir(t)
	code := interceptExit(t)

	func() {
		defer Recover(nil)
		panic("kaboom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	if find(t, dir, "pagecomposer-crash-", ".log") == "" {
		t.Fatalf("expected crash report")
	}
	if find(t, dir, "pagecomposer-recovered-", ".pdf") != "" {
		t.Fatalf("no export without a document")
	}
}

func TestRecoverNoPanicIsNoop(t *testing.T) {
	dir := useDir(t)
	code := interceptExit(t)
	func() {
		defer Recover(nil)
	}()
	if *code != -1 {
		t.Fatalf("exit must not be called")
	}
	if find(t, dir, "", "") != "" {
		t.Fatalf("nothing may be written")
	}
}
