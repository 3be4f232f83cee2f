/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry in continuous document units. One unit equals one PDF point,
// so values flow unchanged into the exporters.

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt         { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt         { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Center() Pt      { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// OverlapsSpan reports whether the vertical extent [r.Y, r.Y+r.H) of r shares a row
// with the half-open span [top, bottom). A zero-height extent counts as the single
// row r.Y.
func (r Rect) OverlapsSpan(top, bottom float64) bool {
	if r.H <= 0 {
		return r.Y >= top && r.Y < bottom
	}
	return r.Y < bottom && r.Y+r.H > top
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// RotateAbout rotates by deg degrees around c. The y axis points down, so positive
// angles turn clockwise on screen, matching Image.Rotation.
func RotateAbout(c Pt, deg float64) Affine2D {
	return Translate(c.X, c.Y).Mul(Rotate(Radians(deg))).Mul(Translate(-c.X, -c.Y))
}

// RotatedBounds returns the axis-aligned bounds of r rotated by deg around its center.
func RotatedBounds(r Rect, deg float64) Rect {
	if NormalizeDegrees(deg) == 0 {
		return r
	}
	m := RotateAbout(r.Center(), deg)
	corners := [4]Pt{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X, r.Y + r.H}, {r.X + r.W, r.Y + r.H}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.Apply(c)
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// AngleDelta returns the signed shortest rotation from a to b, in (-180, 180].
func AngleDelta(a, b float64) float64 {
	d := NormalizeDegrees(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}

func Dist(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// DistToSegment returns the distance from p to the segment a-b.
func DistToSegment(p, a, b Pt) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Dist(p, Pt{a.X + t*dx, a.Y + t*dy})
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
