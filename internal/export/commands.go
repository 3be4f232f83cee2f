/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns a document into fixed-size pages of draw commands and writes
// them as PDF or PNG. Commands are in page-local points; no viewport scale applies.
package export

import (
	"pagecomposer/internal/domain"
	"pagecomposer/internal/textlayout"
	"pagecomposer/internal/vector"
)

// Source is everything an export reads from a document. Entity lists are in
// back-to-front order. *document.Model satisfies it.
type Source interface {
	PageSize() domain.PageSize
	PageCount() int
	Background() domain.Color
	Lines() []domain.Line
	Images() []domain.Image
	Texts() []domain.Text
}

// Command is one draw operation of a page batch.
type Command interface {
	command()
}

type LineCmd struct {
	From, To vector.Pt
	Color    domain.Color
	Width    float64
}

// ImageCmd draws Bitmap into Rect, rotated clockwise by Rotation degrees about the
// rect center.
type ImageCmd struct {
	Rect     vector.Rect
	Bitmap   *domain.Bitmap
	Opacity  float64
	Rotation float64
	Frame    domain.Frame
}

// TextCmd draws laid out lines; each baseline is page-local.
type TextCmd struct {
	Origin   vector.Pt
	FontSize float64
	Color    domain.Color
	Lines    []TextLine
}

type TextLine struct {
	Text     string
	Baseline float64
}

func (LineCmd) command()  {}
func (ImageCmd) command() {}
func (TextCmd) command()  {}

// PageBatch is one output page.
type PageBatch struct {
	Index      int
	Size       domain.PageSize
	Background domain.Color
	Commands   []Command
}

// BuildPages emits one batch per page. Within a page the order is fixed: lines,
// then images, then text, each in list order. An entity goes to every page its
// vertical extent overlaps; images use their rotated bounds.
func BuildPages(src Source, m textlayout.Measurer) []PageBatch {
	if m == nil {
		m = textlayout.BasicMeasurer{}
	}
	ps := src.PageSize()
	n := max(src.PageCount(), 1)
	lines, images, texts := src.Lines(), src.Images(), src.Texts()

	blocks := make([]textlayout.Block, len(texts))
	for i, t := range texts {
		blocks[i] = m.Layout(t.Content, t.FontSize)
	}

	out := make([]PageBatch, 0, n)
	for p := 0; p < n; p++ {
		top := float64(p) * ps.H
		bottom := top + ps.H
		b := PageBatch{Index: p, Size: ps, Background: src.Background()}

		for _, l := range lines {
			if !l.Bounds().OverlapsSpan(top, bottom) {
				continue
			}
			b.Commands = append(b.Commands, LineCmd{
				From:  vector.Pt{X: l.X1, Y: l.Y1 - top},
				To:    vector.Pt{X: l.X2, Y: l.Y2 - top},
				Color: l.Color,
				Width: l.Width,
			})
		}
		for _, im := range images {
			if !im.VisualBounds().OverlapsSpan(top, bottom) {
				continue
			}
			b.Commands = append(b.Commands, ImageCmd{
				Rect:     im.Rect().Translate(0, -top),
				Bitmap:   im.Bitmap,
				Opacity:  im.Opacity,
				Rotation: im.Rotation,
				Frame:    im.Frame,
			})
		}
		for i, t := range texts {
			blk := blocks[i]
			if !vector.R(t.X, t.Y, blk.Width, blk.Height).OverlapsSpan(top, bottom) {
				continue
			}
			cmd := TextCmd{Origin: vector.Pt{X: t.X, Y: t.Y - top}, FontSize: t.FontSize, Color: t.Color}
			for _, lb := range blk.Lines {
				cmd.Lines = append(cmd.Lines, TextLine{Text: lb.Text, Baseline: t.Y - top + lb.Baseline})
			}
			b.Commands = append(b.Commands, cmd)
		}
		out = append(out, b)
	}
	return out
}
