/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

// Live mutators for continuous gestures. They do not record undo snapshots; the
// controller calls BeginEdit once before the first live change of a gesture so the
// whole gesture undoes as one step.

import (
	"math"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// BeginEdit records the current state as the undo point of a gesture.
func (m *Model) BeginEdit() {
	m.record()
	m.log.Debug("gesture started")
}

func (m *Model) MoveImage(id domain.ID, x, y float64) bool {
	return m.liveImage(id, func(im *domain.Image) { im.X, im.Y = x, y })
}

// SetImageGeometry gives the image a new width (clamped) centered on c.
func (m *Model) SetImageGeometry(id domain.ID, c vector.Pt, width float64) bool {
	return m.liveImage(id, func(im *domain.Image) {
		im.Width = math.Max(width, domain.MinImageWidth)
		im.X = c.X - im.Width/2
		im.Y = c.Y - im.Height()/2
	})
}

func (m *Model) SetImageRotation(id domain.ID, deg float64) bool {
	return m.liveImage(id, func(im *domain.Image) { im.Rotation = vector.NormalizeDegrees(deg) })
}

func (m *Model) MoveText(id domain.ID, x, y float64) bool {
	return m.liveText(id, func(t *domain.Text) { t.X, t.Y = x, y })
}

func (m *Model) SetTextFontSize(id domain.ID, size float64) bool {
	return m.liveText(id, func(t *domain.Text) { t.FontSize = math.Max(size, domain.MinFontSize) })
}

func (m *Model) SetLineEndpoints(id domain.ID, p1, p2 vector.Pt) bool {
	i := m.lineIndex(id)
	if i < 0 {
		return false
	}
	next := m.lines[i]
	next.X1, next.Y1, next.X2, next.Y2 = p1.X, p1.Y, p2.X, p2.Y
	if next == m.lines[i] {
		return false
	}
	m.lines[i] = next
	m.changed(ChangeContent)
	return true
}

func (m *Model) liveImage(id domain.ID, f func(*domain.Image)) bool {
	i := m.imageIndex(id)
	if i < 0 {
		return false
	}
	next := m.images[i]
	f(&next)
	if next == m.images[i] {
		return false
	}
	m.images[i] = next
	m.changed(ChangeContent)
	return true
}

func (m *Model) liveText(id domain.ID, f func(*domain.Text)) bool {
	i := m.textIndex(id)
	if i < 0 {
		return false
	}
	next := m.texts[i]
	f(&next)
	if next == m.texts[i] {
		return false
	}
	m.texts[i] = next
	m.changed(ChangeContent)
	return true
}

// SetTextDraft fills in a text item created in the same gesture; AddText already
// recorded its undo point.
func (m *Model) SetTextDraft(id domain.ID, content string) bool {
	return m.liveText(id, func(t *domain.Text) { t.Content = content })
}
