/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Abstractions for text measurement. Text items carry no cached geometry: every
// query lays the content out again through a Measurer, so the result always
// follows the current content and font size.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// LineSpacing is the line height as a multiple of the font size.
const LineSpacing = 1.2

// DefaultSizePt is used when a non-positive size is requested.
const DefaultSizePt = 12.0

// LineBox is a single laid out line. Baseline is measured from the top of the block.
type LineBox struct {
	Text     string
	Width    float64
	Baseline float64
}

// Block is the result of laying out a text item. Lines are split on '\n' only.
type Block struct {
	Lines  []LineBox
	Width  float64
	Height float64
}

// Measurer lays out text for a given font size in points.
type Measurer interface {
	Layout(content string, sizePt float64) Block
}

// BasicMeasurer uses x/image/basicfont Face7x13 scaled linearly to the requested
// size. It needs no font data and is fully deterministic, which suits tests.
type BasicMeasurer struct{}

func (BasicMeasurer) Layout(content string, sizePt float64) Block {
	if sizePt <= 0 {
		sizePt = DefaultSizePt
	}
	f := basicfont.Face7x13
	scale := sizePt / float64(f.Height)
	ascent := float64(f.Ascent) * scale
	return layout(content, sizePt, ascent, func(s string) float64 {
		return float64(font.MeasureString(f, s)) / 64 * scale
	})
}

// layout splits content into lines and measures each with advance.
func layout(content string, sizePt, ascent float64, advance func(string) float64) Block {
	lineH := sizePt * LineSpacing
	parts := strings.Split(content, "\n")
	b := Block{Lines: make([]LineBox, 0, len(parts))}
	for i, p := range parts {
		w := advance(p)
		b.Lines = append(b.Lines, LineBox{Text: p, Width: w, Baseline: float64(i)*lineH + ascent})
		if w > b.Width {
			b.Width = w
		}
	}
	b.Height = float64(len(parts)) * lineH
	return b
}
