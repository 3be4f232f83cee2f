/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func goRegular() (*truetype.Font, error) {
	fontOnce.Do(func() { fontTTF, fontErr = truetype.Parse(goregular.TTF) })
	return fontTTF, fontErr
}

// RenderPage rasterizes a batch at scale pixels per point. It draws the same
// commands in the same order as the PDF writer; the UI uses it for page rasters.
func RenderPage(b PageBatch, scale float64) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	w := max(int(math.Ceil(b.Size.W*scale)), 1)
	h := max(int(math.Ceil(b.Size.H*scale)), 1)
	dc := gg.NewContext(w, h)
	dc.SetColor(b.Background)
	dc.Clear()

	r := &rasterizer{dc: dc, s: scale, faces: make(map[float64]font.Face)}
	for _, c := range b.Commands {
		switch c := c.(type) {
		case LineCmd:
			r.line(c)
		case ImageCmd:
			r.image(c)
		case TextCmd:
			r.text(c)
		}
	}
	return dc.Image().(*image.RGBA)
}

// rasterizer works in pixel space: gg strokes are not scaled by the context
// matrix, so every coordinate and width is multiplied by s here.
type rasterizer struct {
	dc    *gg.Context
	s     float64
	faces map[float64]font.Face
}

func (r *rasterizer) line(c LineCmd) {
	r.dc.SetColor(c.Color)
	r.dc.SetLineWidth(c.Width * r.s)
	r.dc.SetLineCapRound()
	r.dc.DrawLine(c.From.X*r.s, c.From.Y*r.s, c.To.X*r.s, c.To.Y*r.s)
	r.dc.Stroke()
}

func (r *rasterizer) image(c ImageCmd) {
	if !c.Bitmap.Valid() {
		return
	}
	src := c.Bitmap.Image()
	if c.Opacity < 1 {
		src = faded(src, c.Opacity)
	}
	pw, ph := c.Bitmap.Size()
	ctr := c.Rect.Center()
	w, h := c.Rect.W*r.s, c.Rect.H*r.s

	r.dc.Push()
	r.dc.Translate(ctr.X*r.s, ctr.Y*r.s)
	r.dc.Rotate(gg.Radians(c.Rotation))
	r.dc.Push()
	r.dc.Scale(w/float64(pw), h/float64(ph))
	r.dc.DrawImageAnchored(src, 0, 0, 0.5, 0.5)
	r.dc.Pop()
	if c.Frame.Enabled && c.Frame.Width > 0 {
		fc := c.Frame.Color
		fc.A = uint8(math.Round(float64(fc.A) * c.Opacity))
		r.dc.SetColor(fc)
		r.dc.SetLineWidth(c.Frame.Width * r.s)
		r.dc.DrawRectangle(-w/2, -h/2, w, h)
		r.dc.Stroke()
	}
	r.dc.Pop()
}

func (r *rasterizer) text(c TextCmd) {
	face := r.face(c.FontSize * r.s)
	if face == nil {
		return
	}
	r.dc.SetFontFace(face)
	r.dc.SetColor(c.Color)
	for _, l := range c.Lines {
		if l.Text != "" {
			r.dc.DrawString(l.Text, c.Origin.X*r.s, l.Baseline*r.s)
		}
	}
}

func (r *rasterizer) face(size float64) font.Face {
	if f, ok := r.faces[size]; ok {
		return f
	}
	ttf, err := goRegular()
	if err != nil {
		return nil
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	r.faces[size] = f
	return f
}

// faded multiplies the alpha of src by op.
func faded(src image.Image, op float64) image.Image {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(math.Max(op, 0) * 255))})
	draw.DrawMask(dst, dst.Bounds(), src, b.Min, mask, image.Point{}, draw.Src)
	return dst
}

// WritePNGPages renders every batch and writes <base>-<n>.png into dir, or
// <base>.png when there is a single page. All files are written to temporaries
// first and only renamed once every page encoded.
func WritePNGPages(dir, base string, pages []PageBatch, scale float64) ([]string, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	names := make([]string, len(pages))
	temps := make([]string, 0, len(pages))
	cleanup := func() {
		for _, t := range temps {
			_ = os.Remove(t)
		}
	}
	for i, pg := range pages {
		names[i] = filepath.Join(dir, pngName(base, i, len(pages)))
		tmp, err := writeTemp(dir, ".png", func(f *os.File) error {
			return png.Encode(f, RenderPage(pg, scale))
		})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("png page %d: %w", i+1, err)
		}
		temps = append(temps, tmp)
	}
	for i, tmp := range temps {
		if err := os.Rename(tmp, names[i]); err != nil {
			cleanup()
			return nil, fmt.Errorf("rename png: %w", err)
		}
	}
	return names, nil
}

func pngName(base string, i, n int) string {
	if n == 1 {
		return base + ".png"
	}
	return fmt.Sprintf("%s-%d.png", base, i+1)
}
