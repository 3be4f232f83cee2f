/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"image"
	"io"
	"log/slog"
	"math"
	"testing"

	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

func newTestModel() *Model {
	return New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func bitmap(w, h int) *domain.Bitmap {
	return domain.NewBitmap(image.NewRGBA(image.Rect(0, 0, w, h)))
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewDefaults(t *testing.T) {
	m := newTestModel()
	if m.PageCount() != 1 || m.PageSize() != domain.A4 || m.Background() != domain.White {
		t.Fatalf("unexpected defaults: pages=%d size=%+v bg=%+v", m.PageCount(), m.PageSize(), m.Background())
	}
	if !m.Selection().IsNone() || m.Mode() != ModeSelect || m.Dirty() {
		t.Fatalf("fresh model must have no selection, select mode and be clean")
	}
	if m.SessionID().String() == "" {
		t.Fatalf("expected a session id")
	}
}

func TestSelectSingleAndClearsGuides(t *testing.T) {
	m := newTestModel()
	img, _ := m.AddImage(bitmap(10, 10), 0, 0, 50)
	txt := m.AddText(10, 10, "hi", 12, domain.Black)
	if m.Selection() != domain.TextHandle(txt) {
		t.Fatalf("new text should be selected, got %s", m.Selection())
	}
	m.SetGuides([]vector.GuideLine{{Orientation: "vertical", Position: 1}})
	if !m.Select(domain.ImageHandle(img)) {
		t.Fatalf("select image failed")
	}
	if m.Selection() != domain.ImageHandle(img) {
		t.Fatalf("selection: got %s", m.Selection())
	}
	if len(m.Guides()) != 0 {
		t.Fatalf("selection change must clear guides")
	}
	if m.Select(domain.LineHandle(999)) {
		t.Fatalf("selecting a missing entity must be ignored")
	}
	if m.Selection() != domain.ImageHandle(img) {
		t.Fatalf("failed select must keep the previous selection")
	}
	m.ClearSelection()
	if !m.Selection().IsNone() {
		t.Fatalf("clear selection failed")
	}
}

func TestObserversNotifiedAndCancelled(t *testing.T) {
	m := newTestModel()
	var got []Change
	cancel := m.Subscribe(ObserverFunc(func(c Change) { got = append(got, c) }))
	m.AddText(0, 0, "a", 12, domain.Black)
	if len(got) != 1 || !got[0].Has(ChangeContent) || !got[0].Has(ChangeSelection) || !got[0].Has(ChangeDirty) {
		t.Fatalf("unexpected notifications: %+v", got)
	}
	m.SetMode(ModeDrawLine)
	if len(got) != 2 || !got[1].Has(ChangeMode) {
		t.Fatalf("mode change not notified: %+v", got)
	}
	m.SetMode(ModeDrawLine)
	if len(got) != 2 {
		t.Fatalf("unchanged mode must not notify")
	}
	cancel()
	m.AddPage(WithUndo)
	if len(got) != 2 {
		t.Fatalf("cancelled observer still notified")
	}
}

func TestDirtyAndMarkExported(t *testing.T) {
	m := newTestModel()
	m.AddPage(WithoutUndo)
	if !m.Dirty() {
		t.Fatalf("add page must set dirty")
	}
	m.MarkExported()
	if m.Dirty() {
		t.Fatalf("mark exported must clear dirty")
	}
	m.ClearSelection()
	if m.Dirty() {
		t.Fatalf("selection changes must not set dirty")
	}
}

func TestPageIndexOfClamped(t *testing.T) {
	m := newTestModel()
	m.AddPage(WithoutUndo)
	cases := []struct {
		y    float64
		want int
	}{{-10, 0}, {0, 0}, {841.9, 0}, {842, 1}, {5000, 1}}
	for _, c := range cases {
		if got := m.PageIndexOf(c.y); got != c.want {
			t.Fatalf("PageIndexOf(%v): got %d want %d", c.y, got, c.want)
		}
	}
	if r := m.PageRect(1); r.Y != 842 || r.H != 842 || r.W != 595 {
		t.Fatalf("page rect: %+v", r)
	}
}

func TestTextRectFollowsContent(t *testing.T) {
	m := newTestModel()
	id := m.AddText(5, 5, "ab", 13, domain.Black)
	tx, _ := m.Text(id)
	r1 := m.TextRect(tx)
	m.SetTextContent(id, "abcd")
	tx, _ = m.Text(id)
	r2 := m.TextRect(tx)
	if !approx(r2.W, 2*r1.W) {
		t.Fatalf("text width must be derived from content: %v then %v", r1.W, r2.W)
	}
}

func TestSnapTargetsSamePageOnly(t *testing.T) {
	m := newTestModel()
	m.AddPage(WithoutUndo)
	a, _ := m.AddImage(bitmap(10, 10), 10, 10, 50)
	m.AddImage(bitmap(10, 10), 10, 900, 50)
	m.AddLine(vector.Pt{X: 0, Y: 100}, vector.Pt{X: 100, Y: 100}, domain.Black, 2)
	got := m.SnapTargets(0, domain.ImageHandle(a))
	if len(got) != 1 || got[0].Y != 100 {
		t.Fatalf("expected only the line on page 0, got %+v", got)
	}
}
