/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"pagecomposer/internal/domain"
	"pagecomposer/internal/textlayout"
	"pagecomposer/internal/vector"
)

// Segment is a line in screen space.
type Segment struct{ From, To vector.Pt }

type ImageView struct {
	Image    domain.Image
	Rect     vector.Rect // unrotated, screen
	Selected bool
}

// TextView carries the layout in document units; FontSize is already scaled.
type TextView struct {
	Text     domain.Text
	Rect     vector.Rect
	Block    textlayout.Block
	FontSize float64
	Selected bool
	Editing  bool
}

type LineView struct {
	Segment
	Color    domain.Color
	Width    float64
	Selected bool
}

type GuideView struct {
	Segment
	Kind string
}

// Frame is a read-only snapshot of everything the canvas draws, in screen space.
type Frame struct {
	Layout     Layout
	Background domain.Color
	Lines      []LineView
	Images     []ImageView
	Texts      []TextView
	Draft      *LineView
	Guides     []GuideView
	Handles    []vector.Rect
	Grid       []Segment
	Editing    domain.ID
	State      State
}

// Frame builds the render view. Entity slices keep document z-order.
func (c *Controller) Frame() Frame {
	l := c.Layout()
	sel := c.doc.Selection()
	f := Frame{Layout: l, Background: c.doc.Background(), State: c.state}
	if c.edit != nil {
		f.Editing = c.edit.TextID
	}
	seg := func(a, b vector.Pt) Segment { return Segment{From: l.ToScreen(a), To: l.ToScreen(b)} }

	for _, ln := range c.doc.Lines() {
		f.Lines = append(f.Lines, LineView{
			Segment:  seg(ln.P1(), ln.P2()),
			Color:    ln.Color,
			Width:    ln.Width * l.Scale,
			Selected: sel == domain.LineHandle(ln.ID),
		})
	}
	for _, im := range c.doc.Images() {
		f.Images = append(f.Images, ImageView{
			Image:    im,
			Rect:     l.RectToScreen(im.Rect()),
			Selected: sel == domain.ImageHandle(im.ID),
		})
	}
	for _, t := range c.doc.Texts() {
		f.Texts = append(f.Texts, TextView{
			Text:     t,
			Rect:     l.RectToScreen(c.doc.TextRect(t)),
			Block:    c.doc.TextBlock(t),
			FontSize: t.FontSize * l.Scale,
			Selected: sel == domain.TextHandle(t.ID),
			Editing:  f.Editing == t.ID && f.Editing != 0,
		})
	}
	if c.state == StateDrawingLine {
		f.Draft = &LineView{Segment: seg(c.g.anchor, c.g.end), Color: c.cfg.LineColor, Width: c.cfg.LineWidth * l.Scale}
	}
	for _, g := range c.doc.Guides() {
		f.Guides = append(f.Guides, GuideView{Segment: seg(g.From, g.To), Kind: g.Kind})
	}
	for _, h := range c.handles(l) {
		f.Handles = append(f.Handles, h.rect)
	}
	if sel.Kind == domain.KindLine {
		if ln, ok := c.doc.Line(sel.ID); ok {
			f.Handles = append(f.Handles, c.square(l.ToScreen(ln.P1())), c.square(l.ToScreen(ln.P2())))
		}
	}
	if c.grid {
		f.Grid = c.gridSegments()
	}
	return f
}

func (c *Controller) gridSegments() []Segment {
	l := c.Layout()
	step := c.cfg.GridSpacing
	var out []Segment
	for i := 0; i < c.doc.PageCount(); i++ {
		r := c.doc.PageRect(i)
		for x := r.X + step; x < r.Right(); x += step {
			out = append(out, Segment{From: l.ToScreen(vector.Pt{X: x, Y: r.Y}), To: l.ToScreen(vector.Pt{X: x, Y: r.Bottom() - 1e-9})})
		}
		for y := r.Y + step; y < r.Bottom(); y += step {
			out = append(out, Segment{From: l.ToScreen(vector.Pt{X: r.X, Y: y}), To: l.ToScreen(vector.Pt{X: r.Right(), Y: y})})
		}
	}
	return out
}
