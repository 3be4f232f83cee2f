/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"math"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// handle is a resize grip in screen space. sx is +1 for grips on the right side.
type handle struct {
	rect vector.Rect
	sx   float64
}

func (c *Controller) square(p vector.Pt) vector.Rect {
	s := c.cfg.HandleSize
	return vector.R(p.X-s/2, p.Y-s/2, s, s)
}

// handles returns the grips of the current selection: four corners of an image's
// visual bounds, the bottom-right corner of a text, none for lines.
func (c *Controller) handles(l Layout) []handle {
	h := c.doc.Selection()
	switch h.Kind {
	case domain.KindImage:
		im, ok := c.doc.Image(h.ID)
		if !ok {
			return nil
		}
		r := l.RectToScreen(im.VisualBounds())
		return []handle{
			{c.square(r.Min()), -1},
			{c.square(vector.Pt{X: r.Right(), Y: r.Y}), 1},
			{c.square(vector.Pt{X: r.X, Y: r.Bottom()}), -1},
			{c.square(r.Max()), 1},
		}
	case domain.KindText:
		t, ok := c.doc.Text(h.ID)
		if !ok {
			return nil
		}
		r := l.RectToScreen(c.doc.TextRect(t))
		return []handle{{c.square(r.Max()), 1}}
	}
	return nil
}

func (c *Controller) handleAt(l Layout, p vector.Pt) (domain.Handle, float64, bool) {
	for _, h := range c.handles(l) {
		if h.rect.Contains(p) {
			return c.doc.Selection(), h.sx, true
		}
	}
	return domain.None, 0, false
}

func (c *Controller) hasHandleAt(l Layout, p vector.Pt) bool {
	_, _, ok := c.handleAt(l, p)
	return ok
}

// imageAt hit-tests images topmost first against their rotated rectangles.
func (c *Controller) imageAt(p vector.Pt) (domain.ID, bool) {
	ims := c.doc.Images()
	for i := len(ims) - 1; i >= 0; i-- {
		im := ims[i]
		q := p
		if im.Rotation != 0 {
			q = vector.RotateAbout(im.Center(), -im.Rotation).Apply(p)
		}
		if im.Rect().Contains(q) {
			return im.ID, true
		}
	}
	return 0, false
}

func (c *Controller) hasImageAt(p vector.Pt) bool {
	_, ok := c.imageAt(p)
	return ok
}

func (c *Controller) textAt(p vector.Pt) (domain.ID, bool) {
	ts := c.doc.Texts()
	for i := len(ts) - 1; i >= 0; i-- {
		if c.doc.TextRect(ts[i]).Contains(p) {
			return ts[i].ID, true
		}
	}
	return 0, false
}

func (c *Controller) hasTextAt(p vector.Pt) bool {
	_, ok := c.textAt(p)
	return ok
}

// endpointAt returns 1 or 2 when p is on an endpoint grip of the selected line.
func (c *Controller) endpointAt(l Layout, p vector.Pt) int {
	h := c.doc.Selection()
	if h.Kind != domain.KindLine {
		return 0
	}
	ln, ok := c.doc.Line(h.ID)
	if !ok {
		return 0
	}
	if c.square(l.ToScreen(ln.P1())).Contains(p) {
		return 1
	}
	if c.square(l.ToScreen(ln.P2())).Contains(p) {
		return 2
	}
	return 0
}

// lineAt hit-tests lines topmost first. The tolerance is the larger of half the
// stroke and the screen slop.
func (c *Controller) lineAt(l Layout, p vector.Pt) (domain.ID, bool) {
	slop := c.cfg.HitSlop / l.Scale
	ls := c.doc.Lines()
	for i := len(ls) - 1; i >= 0; i-- {
		tol := math.Max(ls[i].Width/2, slop)
		if vector.DistToSegment(p, ls[i].P1(), ls[i].P2()) <= tol {
			return ls[i].ID, true
		}
	}
	return 0, false
}

func (c *Controller) hasLineAt(l Layout, p vector.Pt) bool {
	_, ok := c.lineAt(l, p)
	return ok
}
