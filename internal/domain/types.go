/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the scene entities placed on the pages of a document.
// Entities are plain values; geometry is expressed in the continuous document space
// where page N covers y in [N*PageHeight, (N+1)*PageHeight).

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"pagecomposer/internal/vector"
)

// Limits applied by geometric operations. Requests below a minimum are clamped.
const (
	MinImageWidth     = 20.0
	MinFontSize       = 6.0
	MinOpacity        = 0.05
	MaxOpacity        = 1.0
	DuplicateOffset   = 15.0
	DefaultFrameWidth = 2.0
	MaxFrameWidth     = 40.0
	MinLineLength     = 2.0
	// PasteWidthRatio caps the width of a pasted image relative to the page width.
	PasteWidthRatio = 0.6
)

// ID identifies an entity for the lifetime of a document. IDs are never reused.
type ID uint64

// Kind tags the entity collection a Handle points into.
type Kind uint8

const (
	KindNone Kind = iota
	KindImage
	KindText
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindLine:
		return "line"
	default:
		return "none"
	}
}

// Handle refers to one entity of any kind. The zero value selects nothing.
type Handle struct {
	Kind Kind
	ID   ID
}

// None is the empty selection.
var None = Handle{}

func ImageHandle(id ID) Handle { return Handle{Kind: KindImage, ID: id} }
func TextHandle(id ID) Handle  { return Handle{Kind: KindText, ID: id} }
func LineHandle(id ID) Handle  { return Handle{Kind: KindLine, ID: id} }

func (h Handle) IsNone() bool { return h.Kind == KindNone }

func (h Handle) String() string {
	if h.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

var (
	White = Color{R: 255, G: 255, B: 255, A: 255}
	Black = Color{A: 255}
)

// Hex formats the color as #rrggbb, or #rrggbbaa when not fully opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * uint32(c.A) / 255
	g = uint32(c.G) * uint32(c.A) / 255
	b = uint32(c.B) * uint32(c.A) / 255
	a = uint32(c.A)
	return r | r<<8, g | g<<8, b | b<<8, a | a<<8
}

// ParseHex reads #rgb, #rrggbb or #rrggbbaa.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// PageSize is a document-wide page format in points.
type PageSize struct {
	Name string
	W, H float64
}

var (
	A4     = PageSize{Name: "a4", W: 595, H: 842}
	Letter = PageSize{Name: "letter", W: 612, H: 792}
)

// PageSizeByName resolves a preset; the lookup is case-insensitive.
func PageSizeByName(name string) (PageSize, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "a4":
		return A4, true
	case "letter", "us-letter":
		return Letter, true
	}
	return PageSize{}, false
}

// Bitmap is an immutable decoded image shared by every entity that shows it.
// Entities hold the pointer; pixel data is never copied.
type Bitmap struct {
	img  image.Image
	w, h int
}

func NewBitmap(img image.Image) *Bitmap {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	return &Bitmap{img: img, w: b.Dx(), h: b.Dy()}
}

func (b *Bitmap) Image() image.Image { return b.img }

// Size returns the natural pixel dimensions.
func (b *Bitmap) Size() (int, int) { return b.w, b.h }

// Valid reports whether the bitmap can be placed: it must exist and have area.
func (b *Bitmap) Valid() bool { return b != nil && b.img != nil && b.w > 0 && b.h > 0 }

// Frame is the optional border around an image.
type Frame struct {
	Enabled bool
	Color   Color
	Width   float64
}

// Image is a placed bitmap. Height is always Width/AspectRatio; only Width is free.
// Rotation (degrees, clockwise) is applied around the center when drawing and does
// not alter the stored rectangle.
type Image struct {
	ID          ID
	Bitmap      *Bitmap
	X, Y        float64
	Width       float64
	AspectRatio float64
	Opacity     float64
	Frame       Frame
	Rotation    float64
}

// NewImage builds an image whose aspect ratio comes from the bitmap's natural size.
func NewImage(id ID, bm *Bitmap, x, y, width float64) Image {
	w, h := bm.Size()
	return Image{
		ID:          id,
		Bitmap:      bm,
		X:           x,
		Y:           y,
		Width:       math.Max(width, MinImageWidth),
		AspectRatio: float64(w) / float64(h),
		Opacity:     1,
	}
}

func (im Image) Height() float64 { return im.Width / im.AspectRatio }

func (im Image) Rect() vector.Rect { return vector.R(im.X, im.Y, im.Width, im.Height()) }

func (im Image) Center() vector.Pt { return im.Rect().Center() }

// VisualBounds is the axis-aligned box covered once rotation is applied.
func (im Image) VisualBounds() vector.Rect { return vector.RotatedBounds(im.Rect(), im.Rotation) }

// ResizeCentered sets a new width (clamped to MinImageWidth) and keeps the center.
func (im *Image) ResizeCentered(width float64) {
	c := im.Center()
	im.Width = math.Max(width, MinImageWidth)
	im.X = c.X - im.Width/2
	im.Y = c.Y - im.Height()/2
}

// Clone copies every field under a new id; the bitmap is shared.
func (im Image) Clone(id ID) Image {
	im.ID = id
	return im
}

// Text is a single block of text; its size is derived from the content and font size.
type Text struct {
	ID       ID
	Content  string
	X, Y     float64
	FontSize float64
	Color    Color
}

func (t Text) Clone(id ID) Text {
	t.ID = id
	return t
}

// Line is a straight stroke between two points. Its geometry is its rotation.
type Line struct {
	ID             ID
	X1, Y1, X2, Y2 float64
	Color          Color
	Width          float64
}

func (l Line) P1() vector.Pt { return vector.Pt{X: l.X1, Y: l.Y1} }
func (l Line) P2() vector.Pt { return vector.Pt{X: l.X2, Y: l.Y2} }

func (l Line) Length() float64 { return vector.Dist(l.P1(), l.P2()) }

func (l Line) Midpoint() vector.Pt { return vector.Pt{X: (l.X1 + l.X2) / 2, Y: (l.Y1 + l.Y2) / 2} }

// Angle is the direction from P1 to P2 in degrees, [0, 360).
func (l Line) Angle() float64 { return vector.SegmentAngle(l.P1(), l.P2()) }

// Top is the smaller y of both endpoints.
func (l Line) Top() float64 { return math.Min(l.Y1, l.Y2) }

func (l Line) Bounds() vector.Rect {
	x0, x1 := math.Min(l.X1, l.X2), math.Max(l.X1, l.X2)
	y0, y1 := math.Min(l.Y1, l.Y2), math.Max(l.Y1, l.Y2)
	return vector.R(x0, y0, x1-x0, y1-y0)
}

// Rotated returns the line turned rigidly by deg degrees about its midpoint.
func (l Line) Rotated(deg float64) Line {
	m := vector.RotateAbout(l.Midpoint(), deg)
	p1, p2 := m.Apply(l.P1()), m.Apply(l.P2())
	l.X1, l.Y1, l.X2, l.Y2 = p1.X, p1.Y, p2.X, p2.Y
	return l
}

func (l Line) Translated(dx, dy float64) Line {
	l.X1 += dx
	l.X2 += dx
	l.Y1 += dy
	l.Y2 += dy
	return l
}

func (l Line) Clone(id ID) Line {
	l.ID = id
	return l
}
