/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/goregular"

	"pagecomposer/internal/domain"
)

// pdfFont is the family name Go Regular is embedded under, the face the
// canvas and PNG export draw text with.
const pdfFont = "goregular"

// PDFOptions controls the document info of a PDF export.
// Units are points (pt) and the page origin is top-left, matching page batches 1:1.
// Text is set in an embedded UTF-8 subset of Go Regular.
type PDFOptions struct {
	Title   string
	Author  string
	Creator string
}

// WritePDF writes one PDF page per batch to w.
func WritePDF(w io.Writer, pages []PageBatch, opt PDFOptions) error {
	pdf, err := buildPDF(pages, opt)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func buildPDF(pages []PageBatch, opt PDFOptions) (*gofpdf.Fpdf, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	first := pages[0].Size
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.W, Ht: first.H},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	creator := opt.Creator
	if creator == "" {
		creator = "pagecomposer"
	}
	pdf.SetCreator(creator, true)
	pdf.AddUTF8FontFromBytes(pdfFont, "", goregular.TTF)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("embed font: %w", err)
	}

	w := &pdfWriter{pdf: pdf, images: make(map[*domain.Bitmap]string)}
	for _, pg := range pages {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pg.Size.W, Ht: pg.Size.H})
		setFillColor(pdf, pg.Background)
		pdf.Rect(0, 0, pg.Size.W, pg.Size.H, "F")
		for _, c := range pg.Commands {
			switch c := c.(type) {
			case LineCmd:
				w.line(c)
			case ImageCmd:
				if err := w.image(c); err != nil {
					return nil, err
				}
			case TextCmd:
				w.text(c)
			}
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", pg.Index+1, err)
		}
	}
	return pdf, nil
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	images map[*domain.Bitmap]string
}

func (w *pdfWriter) line(c LineCmd) {
	w.pdf.SetAlpha(alpha(c.Color), "Normal")
	setDrawColor(w.pdf, c.Color)
	w.pdf.SetLineWidth(c.Width)
	w.pdf.SetLineCapStyle("round")
	w.pdf.Line(c.From.X, c.From.Y, c.To.X, c.To.Y)
	w.pdf.SetAlpha(1, "Normal")
}

// image draws the bitmap rotated about the rect center. gofpdf rotates
// counter-clockwise, stored rotation is clockwise.
func (w *pdfWriter) image(c ImageCmd) error {
	if !c.Bitmap.Valid() {
		return nil
	}
	name, err := w.register(c.Bitmap)
	if err != nil {
		return err
	}
	r := c.Rect
	ctr := r.Center()
	w.pdf.TransformBegin()
	if c.Rotation != 0 {
		w.pdf.TransformRotate(-c.Rotation, ctr.X, ctr.Y)
	}
	w.pdf.SetAlpha(c.Opacity, "Normal")
	w.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	if c.Frame.Enabled && c.Frame.Width > 0 {
		setDrawColor(w.pdf, c.Frame.Color)
		w.pdf.SetLineWidth(c.Frame.Width)
		w.pdf.Rect(r.X, r.Y, r.W, r.H, "D")
	}
	w.pdf.SetAlpha(1, "Normal")
	w.pdf.TransformEnd()
	return nil
}

// register embeds a bitmap once per document; entities sharing it share the XObject.
func (w *pdfWriter) register(bm *domain.Bitmap) (string, error) {
	if name, ok := w.images[bm]; ok {
		return name, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bm.Image()); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	name := fmt.Sprintf("img%d", len(w.images)+1)
	w.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := w.pdf.Error(); err != nil {
		return "", fmt.Errorf("register image: %w", err)
	}
	w.images[bm] = name
	return name, nil
}

func (w *pdfWriter) text(c TextCmd) {
	w.pdf.SetFont(pdfFont, "", c.FontSize)
	w.pdf.SetTextColor(int(c.Color.R), int(c.Color.G), int(c.Color.B))
	w.pdf.SetAlpha(alpha(c.Color), "Normal")
	for _, l := range c.Lines {
		if l.Text == "" {
			continue
		}
		w.pdf.Text(c.Origin.X, l.Baseline, l.Text)
	}
	w.pdf.SetAlpha(1, "Normal")
}

func alpha(c domain.Color) float64 { return float64(c.A) / 255 }

func setDrawColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
