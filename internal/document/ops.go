/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// Select makes h the only selected entity and clears the snap guides.
// Selecting an entity that does not exist is ignored.
func (m *Model) Select(h domain.Handle) bool {
	if !h.IsNone() && !m.Exists(h) {
		return false
	}
	m.selection = h
	m.guides = nil
	m.notify(Change{Kinds: ChangeSelection | ChangeGuides})
	return true
}

func (m *Model) ClearSelection() bool { return m.Select(domain.None) }

func (m *Model) SetMode(mode Mode) {
	if mode == m.mode {
		return
	}
	m.mode = mode
	m.log.Debug("mode changed", slog.String("mode", mode.String()))
	m.notify(Change{Kinds: ChangeMode})
}

// AddImage places bm with its top-left at (x, y). A non-positive width uses the
// natural pixel width. The new image is appended on top and selected.
func (m *Model) AddImage(bm *domain.Bitmap, x, y, width float64) (domain.ID, error) {
	if !bm.Valid() {
		return 0, ErrInvalidBitmap
	}
	if width <= 0 {
		w, _ := bm.Size()
		width = float64(w)
	}
	m.record()
	im := domain.NewImage(m.newID(), bm, x, y, width)
	m.images = append(m.images, im)
	m.selection = domain.ImageHandle(im.ID)
	m.guides = nil
	m.log.Debug("image added", slog.Uint64("id", uint64(im.ID)), slog.Float64("w", im.Width))
	m.changed(ChangeContent | ChangeSelection | ChangeGuides)
	return im.ID, nil
}

// AddImageAt centers bm on c with its natural width, capped at a share of the page width.
func (m *Model) AddImageAt(bm *domain.Bitmap, c vector.Pt) (domain.ID, error) {
	if !bm.Valid() {
		return 0, ErrInvalidBitmap
	}
	w, h := bm.Size()
	width := math.Max(math.Min(float64(w), domain.PasteWidthRatio*m.page.W), domain.MinImageWidth)
	height := width * float64(h) / float64(w)
	return m.AddImage(bm, c.X-width/2, c.Y-height/2, width)
}

// AddImageCentered is the paste placement: centered on the given page.
func (m *Model) AddImageCentered(bm *domain.Bitmap, page int) (domain.ID, error) {
	page = min(max(page, 0), m.numPages-1)
	return m.AddImageAt(bm, m.PageRect(page).Center())
}

// AddText creates a text item at (x, y). Content may be empty; the caller is
// expected to open an edit session for it.
func (m *Model) AddText(x, y float64, content string, size float64, c domain.Color) domain.ID {
	m.record()
	t := domain.Text{ID: m.newID(), Content: content, X: x, Y: y, FontSize: math.Max(size, domain.MinFontSize), Color: c}
	m.texts = append(m.texts, t)
	m.selection = domain.TextHandle(t.ID)
	m.guides = nil
	m.log.Debug("text added", slog.Uint64("id", uint64(t.ID)))
	m.changed(ChangeContent | ChangeSelection | ChangeGuides)
	return t.ID
}

// AddLine commits a drawn line. Lines not longer than MinLineLength are discarded.
func (m *Model) AddLine(p1, p2 vector.Pt, c domain.Color, width float64) (domain.ID, bool) {
	if vector.Dist(p1, p2) <= domain.MinLineLength {
		return 0, false
	}
	m.record()
	l := domain.Line{ID: m.newID(), X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y, Color: c, Width: math.Max(width, 0.5)}
	m.lines = append(m.lines, l)
	m.selection = domain.LineHandle(l.ID)
	m.guides = nil
	m.log.Debug("line added", slog.Uint64("id", uint64(l.ID)), slog.Float64("len", l.Length()))
	m.changed(ChangeContent | ChangeSelection | ChangeGuides)
	return l.ID, true
}

// DeleteSelected removes the selected entity.
func (m *Model) DeleteSelected() bool {
	h := m.selection
	if !m.Exists(h) {
		return false
	}
	m.record()
	switch h.Kind {
	case domain.KindImage:
		m.images = slices.Delete(m.images, m.imageIndex(h.ID), m.imageIndex(h.ID)+1)
	case domain.KindText:
		m.texts = slices.Delete(m.texts, m.textIndex(h.ID), m.textIndex(h.ID)+1)
	case domain.KindLine:
		m.lines = slices.Delete(m.lines, m.lineIndex(h.ID), m.lineIndex(h.ID)+1)
	}
	m.selection = domain.None
	m.guides = nil
	m.log.Debug("entity deleted", slog.String("entity", h.String()))
	m.changed(ChangeContent | ChangeSelection | ChangeGuides)
	return true
}

// Duplicate copies the selection at the standard offset.
func (m *Model) Duplicate() (domain.Handle, bool) {
	return m.DuplicateSelected(domain.DuplicateOffset, domain.DuplicateOffset)
}

// DuplicateSelected clones the selected entity shifted by (dx, dy). The clone keeps
// every style field, goes on top of its list and becomes the selection.
func (m *Model) DuplicateSelected(dx, dy float64) (domain.Handle, bool) {
	h := m.selection
	if !m.Exists(h) {
		return domain.None, false
	}
	m.record()
	var out domain.Handle
	switch h.Kind {
	case domain.KindImage:
		im := m.images[m.imageIndex(h.ID)].Clone(m.newID())
		im.X += dx
		im.Y += dy
		m.images = append(m.images, im)
		out = domain.ImageHandle(im.ID)
	case domain.KindText:
		t := m.texts[m.textIndex(h.ID)].Clone(m.newID())
		t.X += dx
		t.Y += dy
		m.texts = append(m.texts, t)
		out = domain.TextHandle(t.ID)
	case domain.KindLine:
		l := m.lines[m.lineIndex(h.ID)].Clone(m.newID()).Translated(dx, dy)
		m.lines = append(m.lines, l)
		out = domain.LineHandle(l.ID)
	}
	m.selection = out
	m.guides = nil
	m.log.Debug("entity duplicated", slog.String("from", h.String()), slog.String("to", out.String()))
	m.changed(ChangeContent | ChangeSelection | ChangeGuides)
	return out, true
}

// BringToFront moves the selection to the end of its own list.
func (m *Model) BringToFront() bool { return m.reorderSelected(true) }

// SendToBack moves the selection to the start of its own list.
func (m *Model) SendToBack() bool { return m.reorderSelected(false) }

func (m *Model) reorderSelected(front bool) bool {
	h := m.selection
	switch h.Kind {
	case domain.KindImage:
		return m.reorder(h, m.imageIndex(h.ID), len(m.images), front, func(i int) { m.images = moveTo(m.images, i, front) })
	case domain.KindText:
		return m.reorder(h, m.textIndex(h.ID), len(m.texts), front, func(i int) { m.texts = moveTo(m.texts, i, front) })
	case domain.KindLine:
		return m.reorder(h, m.lineIndex(h.ID), len(m.lines), front, func(i int) { m.lines = moveTo(m.lines, i, front) })
	}
	return false
}

func (m *Model) reorder(h domain.Handle, i, n int, front bool, apply func(int)) bool {
	if i < 0 || (front && i == n-1) || (!front && i == 0) {
		return false
	}
	m.record()
	apply(i)
	m.log.Debug("entity reordered", slog.String("entity", h.String()), slog.Bool("front", front))
	m.changed(ChangeContent)
	return true
}

func moveTo[T any](s []T, i int, front bool) []T {
	v := s[i]
	s = slices.Delete(s, i, i+1)
	if front {
		return append(s, v)
	}
	return slices.Insert(s, 0, v)
}

// Nudge moves the selection by (dx, dy).
func (m *Model) Nudge(dx, dy float64) bool {
	if dx == 0 && dy == 0 {
		return false
	}
	h := m.selection
	switch h.Kind {
	case domain.KindImage:
		return m.updateImage("nudge", h.ID, func(im *domain.Image) { im.X += dx; im.Y += dy })
	case domain.KindText:
		return m.updateText("nudge", h.ID, func(t *domain.Text) { t.X += dx; t.Y += dy })
	case domain.KindLine:
		return m.updateLine("nudge", h.ID, func(l *domain.Line) { *l = l.Translated(dx, dy) })
	}
	return false
}

// SetOpacity applies to the selected image; the value is clamped to [0.05, 1].
func (m *Model) SetOpacity(v float64) bool {
	v = math.Min(math.Max(v, domain.MinOpacity), domain.MaxOpacity)
	return m.updateSelectedImage("opacity", func(im *domain.Image) { im.Opacity = v })
}

// SetFrameColor colors the frame of the selected image, turning the frame on if needed.
func (m *Model) SetFrameColor(c domain.Color) bool {
	return m.updateSelectedImage("frame color", func(im *domain.Image) {
		im.Frame.Color = c
		if !im.Frame.Enabled {
			im.Frame.Enabled = true
			if im.Frame.Width <= 0 {
				im.Frame.Width = domain.DefaultFrameWidth
			}
		}
	})
}

// SetFrameWidth sets the frame width of the selected image. Zero removes the frame.
func (m *Model) SetFrameWidth(w float64) bool {
	w = math.Min(math.Max(w, 0), domain.MaxFrameWidth)
	return m.updateSelectedImage("frame width", func(im *domain.Image) {
		if w == 0 {
			im.Frame = domain.Frame{}
			return
		}
		if !im.Frame.Enabled {
			im.Frame = domain.Frame{Enabled: true, Color: domain.Black}
		}
		im.Frame.Width = w
	})
}

// ToggleFrame turns the frame of the selected image on with the default style, or off.
func (m *Model) ToggleFrame() bool {
	return m.updateSelectedImage("toggle frame", func(im *domain.Image) {
		if im.Frame.Enabled {
			im.Frame = domain.Frame{}
			return
		}
		im.Frame = domain.Frame{Enabled: true, Color: domain.Black, Width: domain.DefaultFrameWidth}
	})
}

// Rotate turns an image (stored rotation, mod 360) or a line (rigidly about its
// midpoint) by deg degrees. Text does not rotate.
func (m *Model) Rotate(h domain.Handle, deg float64) bool {
	if vector.NormalizeDegrees(deg) == 0 {
		return false
	}
	switch h.Kind {
	case domain.KindImage:
		return m.updateImage("rotate", h.ID, func(im *domain.Image) {
			im.Rotation = vector.NormalizeDegrees(im.Rotation + deg)
		})
	case domain.KindLine:
		return m.updateLine("rotate", h.ID, func(l *domain.Line) { *l = l.Rotated(deg) })
	}
	return false
}

func (m *Model) RotateSelected(deg float64) bool { return m.Rotate(m.selection, deg) }

// ScaleSelected scales the selected image about its center or the selected text's
// font size. Minimums apply.
func (m *Model) ScaleSelected(factor float64) bool {
	if factor <= 0 || factor == 1 {
		return false
	}
	h := m.selection
	switch h.Kind {
	case domain.KindImage:
		return m.updateImage("scale", h.ID, func(im *domain.Image) { im.ResizeCentered(im.Width * factor) })
	case domain.KindText:
		return m.updateText("scale", h.ID, func(t *domain.Text) {
			t.FontSize = math.Max(t.FontSize*factor, domain.MinFontSize)
		})
	}
	return false
}

// SetTextContent commits an edit session. Unchanged content is a no-op; empty
// (or whitespace-only) content deletes the item.
func (m *Model) SetTextContent(id domain.ID, content string) bool {
	i := m.textIndex(id)
	if i < 0 || m.texts[i].Content == content {
		return false
	}
	m.record()
	kinds := ChangeContent
	if strings.TrimSpace(content) == "" {
		m.texts = slices.Delete(m.texts, i, i+1)
		if m.selection == domain.TextHandle(id) {
			m.selection = domain.None
			m.guides = nil
			kinds |= ChangeSelection | ChangeGuides
		}
		m.log.Debug("empty text removed", slog.Uint64("id", uint64(id)))
	} else {
		m.texts[i].Content = content
		m.log.Debug("text changed", slog.Uint64("id", uint64(id)), slog.Int("len", len(content)))
	}
	m.changed(kinds)
	return true
}

// ExtendLineToPage turns a line into a ruler across its page: full width when it is
// closer to horizontal, full height otherwise, centered on the mean of the other axis.
func (m *Model) ExtendLineToPage(id domain.ID) bool {
	l, ok := m.Line(id)
	if !ok {
		return false
	}
	mid := l.Midpoint()
	page := m.PageRect(m.PageIndexOf(mid.Y))
	return m.updateLine("extend", id, func(l *domain.Line) {
		if math.Abs(l.X2-l.X1) >= math.Abs(l.Y2-l.Y1) {
			l.X1, l.Y1, l.X2, l.Y2 = page.X, mid.Y, page.Right(), mid.Y
			return
		}
		l.X1, l.Y1, l.X2, l.Y2 = mid.X, page.Y, mid.X, page.Bottom()
	})
}

func (m *Model) updateSelectedImage(op string, f func(*domain.Image)) bool {
	if m.selection.Kind != domain.KindImage {
		return false
	}
	return m.updateImage(op, m.selection.ID, f)
}

// updateImage, updateText and updateLine apply f to a copy and record only when
// the entity actually changed.
func (m *Model) updateImage(op string, id domain.ID, f func(*domain.Image)) bool {
	i := m.imageIndex(id)
	if i < 0 {
		return false
	}
	next := m.images[i]
	f(&next)
	if next == m.images[i] {
		return false
	}
	m.record()
	m.images[i] = next
	m.logUpdate(op, domain.ImageHandle(id))
	m.changed(ChangeContent)
	return true
}

func (m *Model) updateText(op string, id domain.ID, f func(*domain.Text)) bool {
	i := m.textIndex(id)
	if i < 0 {
		return false
	}
	next := m.texts[i]
	f(&next)
	if next == m.texts[i] {
		return false
	}
	m.record()
	m.texts[i] = next
	m.logUpdate(op, domain.TextHandle(id))
	m.changed(ChangeContent)
	return true
}

func (m *Model) updateLine(op string, id domain.ID, f func(*domain.Line)) bool {
	i := m.lineIndex(id)
	if i < 0 {
		return false
	}
	next := m.lines[i]
	f(&next)
	if next == m.lines[i] {
		return false
	}
	m.record()
	m.lines[i] = next
	m.logUpdate(op, domain.LineHandle(id))
	m.changed(ChangeContent)
	return true
}

func (m *Model) logUpdate(op string, h domain.Handle) {
	m.log.Debug(fmt.Sprintf("%s applied", op), slog.String("entity", h.String()))
}
