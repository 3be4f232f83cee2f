/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"log/slog"
	"slices"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// AddPage appends a page below the last one and returns the new page count.
// Callers decide whether the addition is undoable.
func (m *Model) AddPage(rec Record) int {
	if rec == WithUndo {
		m.record()
	}
	m.numPages++
	m.log.Debug("page added", slog.Int("pages", m.numPages))
	m.changed(ChangePages)
	return m.numPages
}

// RemovePage removes the highest-indexed page together with every entity whose
// page-derived top lies on it. The last remaining page is never removed.
func (m *Model) RemovePage() bool {
	if m.numPages <= 1 {
		return false
	}
	m.record()
	last := m.numPages - 1
	onLast := func(top float64) bool { return m.PageIndexOf(top) >= last }
	before := len(m.images) + len(m.texts) + len(m.lines)
	m.images = slices.DeleteFunc(m.images, func(im domain.Image) bool { return onLast(im.Y) })
	m.texts = slices.DeleteFunc(m.texts, func(t domain.Text) bool { return onLast(t.Y) })
	m.lines = slices.DeleteFunc(m.lines, func(l domain.Line) bool { return onLast(l.Top()) })
	m.numPages--

	kinds := ChangePages | ChangeContent
	if !m.selection.IsNone() && !m.Exists(m.selection) {
		m.selection = domain.None
		m.guides = nil
		kinds |= ChangeSelection | ChangeGuides
	}
	m.log.Debug("page removed",
		slog.Int("pages", m.numPages),
		slog.Int("deleted", before-len(m.images)-len(m.texts)-len(m.lines)))
	m.changed(kinds)
	return true
}

// ChangePageSize switches the document-wide format. Existing coordinates are kept
// as they are, so entities may end up outside the new page bounds.
func (m *Model) ChangePageSize(ps domain.PageSize) bool {
	if ps.W <= 0 || ps.H <= 0 || ps == m.page {
		return false
	}
	m.record()
	m.page = ps
	m.log.Debug("page size changed", slog.String("size", ps.Name), slog.Float64("w", ps.W), slog.Float64("h", ps.H))
	m.changed(ChangePages)
	return true
}

func (m *Model) ChangeBackgroundColor(c domain.Color) bool {
	if c == m.background {
		return false
	}
	m.record()
	m.background = c
	m.log.Debug("background changed", slog.String("color", c.Hex()))
	m.changed(ChangeContent)
	return true
}

// SnapTargets returns the visual bounds of every entity on page, in image, text,
// line order, leaving out exclude.
func (m *Model) SnapTargets(page int, exclude domain.Handle) []vector.Rect {
	var out []vector.Rect
	for _, im := range m.images {
		if domain.ImageHandle(im.ID) != exclude && m.PageIndexOf(im.Y) == page {
			out = append(out, im.VisualBounds())
		}
	}
	for _, t := range m.texts {
		if domain.TextHandle(t.ID) != exclude && m.PageIndexOf(t.Y) == page {
			out = append(out, m.TextRect(t))
		}
	}
	for _, l := range m.lines {
		if domain.LineHandle(l.ID) != exclude && m.PageIndexOf(l.Top()) == page {
			out = append(out, l.Bounds())
		}
	}
	return out
}

// Guides returns the snap guides to render.
func (m *Model) Guides() []vector.GuideLine { return slices.Clone(m.guides) }

func (m *Model) SetGuides(g []vector.GuideLine) {
	if len(g) == 0 && len(m.guides) == 0 {
		return
	}
	m.guides = slices.Clone(g)
	m.notify(Change{Kinds: ChangeGuides})
}

func (m *Model) ClearGuides() { m.SetGuides(nil) }
