/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// GoFontMeasurer measures text with an OpenType font, Go Regular by default.
// Faces are cached per size; opentype faces are not safe for concurrent use, so
// every measurement holds the lock.
type GoFontMeasurer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewGoFontMeasurer parses the bundled Go Regular font.
func NewGoFontMeasurer() (*GoFontMeasurer, error) {
	return newMeasurer(goregular.TTF, "goregular")
}

// LoadFontMeasurer parses a TTF/OTF file from disk.
func LoadFontMeasurer(path string) (*GoFontMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return newMeasurer(data, path)
}

func newMeasurer(data []byte, name string) (*GoFontMeasurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return &GoFontMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

func (m *GoFontMeasurer) Layout(content string, sizePt float64) Block {
	if sizePt <= 0 {
		sizePt = DefaultSizePt
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	face, err := m.faceLocked(sizePt)
	if err != nil {
		return BasicMeasurer{}.Layout(content, sizePt)
	}
	ascent := float64(face.Metrics().Ascent) / 64
	return layout(content, sizePt, ascent, func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	})
}

func (m *GoFontMeasurer) faceLocked(sizePt float64) (font.Face, error) {
	if f, ok := m.faces[sizePt]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{Size: sizePt, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	m.faces[sizePt] = f
	return f, nil
}
