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

// AddPageZoneHeight is the screen height of the hot zone below the last page.
const AddPageZoneHeight = 44.0

// minScale keeps the mapping invertible for degenerate viewports.
const minScale = 0.05

// Layout maps between screen space and the continuous document space. Pages are
// stacked vertically with a fixed padding and gap; one uniform scale applies to x and y.
type Layout struct {
	Scale       float64
	Padding     float64
	Gap         float64
	Page        domain.PageSize
	Pages       []vector.Rect
	AddPageZone vector.Rect
}

// ComputeLayout derives the layout from the current viewport width.
func ComputeLayout(viewportWidth float64, page domain.PageSize, numPages int, padding, gap float64) Layout {
	numPages = max(numPages, 1)
	scale := (viewportWidth - 2*padding) / page.W
	if scale < minScale || math.IsNaN(scale) {
		scale = minScale
	}
	l := Layout{Scale: scale, Padding: padding, Gap: gap, Page: page, Pages: make([]vector.Rect, numPages)}
	w, h := page.W*scale, page.H*scale
	for i := range l.Pages {
		l.Pages[i] = vector.R(padding, padding+float64(i)*(h+gap), w, h)
	}
	last := l.Pages[numPages-1]
	l.AddPageZone = vector.R(padding, last.Bottom()+gap, w, AddPageZoneHeight)
	return l
}

// ContentHeight is the scrollable height including the add-page zone.
func (l Layout) ContentHeight() float64 { return l.AddPageZone.Bottom() + l.Padding }

func (l Layout) stride() float64 { return l.Page.H*l.Scale + l.Gap }

// ToDoc converts a screen point. Points in the gap below page i map to the boundary
// (i+1)·H, the first row of page i+1.
func (l Layout) ToDoc(p vector.Pt) vector.Pt {
	i := int(math.Floor((p.Y - l.Padding) / l.stride()))
	i = min(max(i, 0), len(l.Pages)-1)
	r := l.Pages[i]
	local := (p.Y - r.Y) / l.Scale
	if i < len(l.Pages)-1 && local > l.Page.H {
		local = l.Page.H
	}
	return vector.Pt{X: (p.X - l.Padding) / l.Scale, Y: float64(i)*l.Page.H + local}
}

// ToScreen converts a document point; y beyond the last page extrapolates from it.
func (l Layout) ToScreen(p vector.Pt) vector.Pt {
	i := int(math.Floor(p.Y / l.Page.H))
	i = min(max(i, 0), len(l.Pages)-1)
	r := l.Pages[i]
	return vector.Pt{X: l.Padding + p.X*l.Scale, Y: r.Y + (p.Y-float64(i)*l.Page.H)*l.Scale}
}

// RectToScreen maps a document rectangle by its top-left corner and the scale.
func (l Layout) RectToScreen(r vector.Rect) vector.Rect {
	p := l.ToScreen(r.Min())
	return vector.R(p.X, p.Y, r.W*l.Scale, r.H*l.Scale)
}

// PageAt returns the page whose screen rectangle contains p.
func (l Layout) PageAt(p vector.Pt) (int, bool) {
	for i, r := range l.Pages {
		if r.Contains(p) {
			return i, true
		}
	}
	return 0, false
}
