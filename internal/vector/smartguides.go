/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides and snapping helpers for interactive tools (dragging items, drawing lines).
// These utilities are UI-agnostic and deterministic to enable unit testing and
// reuse across different frontends.

import "math"

const (
	// DefaultSnapThreshold is the maximum edge distance, in document units, that snaps.
	DefaultSnapThreshold = 5.0
	// AlignTolerance decides which targets count as aligned once the delta is applied.
	AlignTolerance = 0.5
)

// AxisSnap is the result of snapping along a single axis. Matched lists the target
// positions that line up with some drag edge after Delta is applied.
type AxisSnap struct {
	Delta   float64
	Snapped bool
	Matched []float64
}

// Axes selects which axes SnapPoint may adjust.
type Axes uint8

const (
	SnapX Axes = 1 << iota
	SnapY
	SnapBoth = SnapX | SnapY
)

// GuideLine describes a visual guide generated during a snap alignment.
// Orientation is "vertical" or "horizontal".
// Kind is "page" when the guide comes from the page edges or center, "item" otherwise.
// From and To denote the guide extents for rendering.
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// AxisEdges returns the near edge, center and far edge of a span.
func AxisEdges(near, size float64) []float64 {
	return []float64{near, near + size/2, near + size}
}

// SnapAxis finds the (drag, target) pair with the smallest distance. Targets are the
// outer loop so that earlier targets win ties; only a strictly smaller distance
// replaces the current best. Nothing snaps when the best distance exceeds threshold.
func SnapAxis(dragEdges, targetEdges []float64, threshold float64) AxisSnap {
	if threshold <= 0 {
		threshold = DefaultSnapThreshold
	}
	best := math.Inf(1)
	delta := 0.0
	for _, t := range targetEdges {
		for _, d := range dragEdges {
			if dist := math.Abs(t - d); dist < best {
				best = dist
				delta = t - d
			}
		}
	}
	if best > threshold {
		return AxisSnap{}
	}
	var matched []float64
	for _, t := range targetEdges {
		if containsApprox(matched, t) {
			continue
		}
		for _, d := range dragEdges {
			if math.Abs(d+delta-t) <= AlignTolerance {
				matched = append(matched, t)
				break
			}
		}
	}
	return AxisSnap{Delta: delta, Snapped: true, Matched: matched}
}

// ComputeSmartGuides snaps a moving rectangle against the page (edges and center,
// considered first) and the other rectangles on that page. It returns the correction
// to add to the moving rectangle and the guides to render. X and Y snap independently.
func ComputeSmartGuides(moving Rect, page Rect, others []Rect, threshold float64) (Pt, []GuideLine) {
	xs, ys := targets(page, others)
	sx := SnapAxis(AxisEdges(moving.X, moving.W), xs, threshold)
	sy := SnapAxis(AxisEdges(moving.Y, moving.H), ys, threshold)
	return Pt{X: sx.Delta, Y: sy.Delta}, guidesFor(page, sx, sy)
}

// SnapPoint snaps a single point (a line endpoint) the same way ComputeSmartGuides
// snaps a rectangle. Axes not listed in axes are left untouched.
func SnapPoint(p Pt, page Rect, others []Rect, threshold float64, axes Axes) (Pt, []GuideLine) {
	xs, ys := targets(page, others)
	var sx, sy AxisSnap
	if axes&SnapX != 0 {
		sx = SnapAxis([]float64{p.X}, xs, threshold)
	}
	if axes&SnapY != 0 {
		sy = SnapAxis([]float64{p.Y}, ys, threshold)
	}
	return Pt{X: p.X + sx.Delta, Y: p.Y + sy.Delta}, guidesFor(page, sx, sy)
}

func targets(page Rect, others []Rect) (xs, ys []float64) {
	xs = AxisEdges(page.X, page.W)
	ys = AxisEdges(page.Y, page.H)
	for _, o := range others {
		xs = append(xs, AxisEdges(o.X, o.W)...)
		ys = append(ys, AxisEdges(o.Y, o.H)...)
	}
	return xs, ys
}

func guidesFor(page Rect, sx, sy AxisSnap) []GuideLine {
	var guides []GuideLine
	pageXs := AxisEdges(page.X, page.W)
	pageYs := AxisEdges(page.Y, page.H)
	for _, x := range sx.Matched {
		x = FloatRound(x, 3)
		guides = append(guides, GuideLine{
			Orientation: "vertical",
			Kind:        guideKind(x, pageXs),
			Position:    x,
			From:        Pt{x, page.Y},
			To:          Pt{x, page.Bottom()},
		})
	}
	for _, y := range sy.Matched {
		y = FloatRound(y, 3)
		guides = append(guides, GuideLine{
			Orientation: "horizontal",
			Kind:        guideKind(y, pageYs),
			Position:    y,
			From:        Pt{page.X, y},
			To:          Pt{page.Right(), y},
		})
	}
	return guides
}

func guideKind(v float64, pageEdges []float64) string {
	if containsApprox(pageEdges, v) {
		return "page"
	}
	return "item"
}

func containsApprox(vs []float64, v float64) bool {
	for _, x := range vs {
		if math.Abs(x-v) <= 1e-9 {
			return true
		}
	}
	return false
}
