/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

func TestDecodeImagePNGAndBMP(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 40, 10))
	var pb, bb bytes.Buffer
	if err := png.Encode(&pb, src); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	if err := bmp.Encode(&bb, src); err != nil {
		t.Fatalf("bmp encode: %v", err)
	}
	for name, buf := range map[string]*bytes.Buffer{"png": &pb, "bmp": &bb} {
		bm, err := DecodeImage(buf)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if w, h := bm.Size(); w != 40 || h != 10 {
			t.Fatalf("%s size: %dx%d", name, w, h)
		}
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage(strings.NewReader("not an image")); !errors.Is(err, image.ErrFormat) {
		t.Fatalf("expected image.ErrFormat, got %v", err)
	}
}

func TestDecodeImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if bm, err := DecodeImageFile(path); err != nil || !bm.Valid() {
		t.Fatalf("DecodeImageFile: %v", err)
	}
	if _, err := DecodeImageFile(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
}

func TestIsImageFile(t *testing.T) {
	for path, want := range map[string]bool{"a.PNG": true, "b.webp": true, "c.tiff": true, "d.txt": false, "e": false} {
		if got := IsImageFile(path); got != want {
			t.Fatalf("IsImageFile(%q) = %v", path, got)
		}
	}
}

func TestSystemClipboardNormalizesLineEndings(t *testing.T) {
	var written string
	oldR, oldW := readAll, writeAll
	t.Cleanup(func() { readAll, writeAll = oldR, oldW })
	readAll = func() (string, error) { return "a\r\nb", nil }
	writeAll = func(s string) error {
		written = s
		return nil
	}

	var c Clipboard = SystemClipboard{}
	got, err := c.ReadText()
	if err != nil || got != "a\nb" {
		t.Fatalf("ReadText() = %q, %v", got, err)
	}
	if err := c.WriteText("x"); err != nil || written != "x" {
		t.Fatalf("WriteText: %q %v", written, err)
	}

	readAll = func() (string, error) { return "", errors.New("no tool") }
	if _, err := c.ReadText(); err == nil {
		t.Fatalf("expected error")
	}

	m := &MemoryClipboard{}
	_ = m.WriteText("mem")
	if s, _ := m.ReadText(); s != "mem" {
		t.Fatalf("memory clipboard: %q", s)
	}
}
