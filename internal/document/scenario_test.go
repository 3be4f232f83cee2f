/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"testing"

	"pagecomposer/internal/vector"
)

func TestPasteDragResizeScenario(t *testing.T) {
	m := newTestModel()
	id, err := m.AddImageCentered(bitmap(1000, 500), 0)
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	im, _ := m.Image(id)
	if im.Width != 357 || !approx(im.Height(), 178.5) {
		t.Fatalf("paste size: got %vx%v want 357x178.5", im.Width, im.Height())
	}

	// drag to 3 units right of the page center and let the guides pull it back
	m.BeginEdit()
	moved := im.Rect().Translate(300.5-im.Center().X, 0)
	delta, guides := vector.ComputeSmartGuides(moved, m.PageRect(0), m.SnapTargets(0, m.Selection()), vector.DefaultSnapThreshold)
	m.MoveImage(id, moved.X+delta.X, moved.Y+delta.Y)
	m.SetGuides(guides)
	im, _ = m.Image(id)
	if !approx(im.Center().X, 297.5) {
		t.Fatalf("horizontal center must snap to 297.5, got %v", im.Center().X)
	}
	if len(m.Guides()) == 0 {
		t.Fatalf("expected a page center guide")
	}

	c := im.Center()
	m.SetImageGeometry(id, c, 400)
	im, _ = m.Image(id)
	if !approx(im.Height(), 200) || !approx(im.Center().X, c.X) || !approx(im.Center().Y, c.Y) {
		t.Fatalf("symmetric resize: %+v", im)
	}
}
