/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"image"
	"io"
	"log/slog"
	"math"
	"testing"

	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

type fakeHost struct {
	NopHost
	content  string
	opened   []EditSession
	closed   int
	scrolled []float64
	detents  int
}

func (h *fakeHost) ScrollIntoView(y float64)     { h.scrolled = append(h.scrolled, y) }
func (h *fakeHost) DetentFeedback()              { h.detents++ }
func (h *fakeHost) OpenTextEditor(s EditSession) { h.opened = append(h.opened, s) }
func (h *fakeHost) CloseTextEditor() string      { h.closed++; return h.content }

// newTestController maps screen to document 1:1: no padding, no gap, A4 width.
func newTestController(t *testing.T) (*Controller, *document.Model, *fakeHost) {
	t.Helper()
	doc := document.New(document.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	h := &fakeHost{}
	c := New(doc, h, Config{Padding: 0, PageGap: 0})
	return c, doc, h
}

func bitmap(w, h int) *domain.Bitmap {
	return domain.NewBitmap(image.NewRGBA(image.Rect(0, 0, w, h)))
}

func addImage(t *testing.T, doc *document.Model) domain.ID {
	t.Helper()
	id, err := doc.AddImage(bitmap(100, 50), 100, 100, 100)
	if err != nil {
		t.Fatalf("add image: %v", err)
	}
	return id
}

func pt(x, y float64) vector.Pt { return vector.Pt{X: x, Y: y} }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func undoDepth(doc *document.Model) int {
	n, _ := doc.History().Stats()
	return n
}

func TestDragSnapsToPageCenter(t *testing.T) {
	c, doc, _ := newTestController(t)
	id := addImage(t, doc)

	c.PointerDown(pt(150, 125), 0)
	if c.State() != StateDragging {
		t.Fatalf("state: got %v want dragging", c.State())
	}
	c.PointerMove(pt(296, 125), 0)
	im, _ := doc.Image(id)
	if !approx(im.X, 247.5) || !approx(im.Y, 100) {
		t.Fatalf("snapped position: got (%v,%v) want (247.5,100)", im.X, im.Y)
	}
	g := doc.Guides()
	if len(g) != 1 || g[0].Orientation != "vertical" || g[0].Kind != "page" || g[0].Position != 297.5 {
		t.Fatalf("guides: %+v", g)
	}
	c.PointerUp(pt(296, 125), 0)
	if len(doc.Guides()) != 0 {
		t.Fatalf("guides must clear on release")
	}
	if got := undoDepth(doc); got != 2 {
		t.Fatalf("undo depth: got %d want 2", got)
	}
	doc.Undo()
	im, _ = doc.Image(id)
	if im.X != 100 {
		t.Fatalf("drag must undo as one step, x=%v", im.X)
	}
}

func TestDragWithAltDoesNotSnap(t *testing.T) {
	c, doc, _ := newTestController(t)
	id := addImage(t, doc)
	c.PointerDown(pt(150, 125), 0)
	c.PointerMove(pt(296, 125), ModAlt)
	c.PointerUp(pt(296, 125), ModAlt)
	im, _ := doc.Image(id)
	if im.X != 246 {
		t.Fatalf("x: got %v want 246", im.X)
	}
}

func TestClickWithoutMoveLeavesNoUndoStep(t *testing.T) {
	c, doc, _ := newTestController(t)
	addImage(t, doc)
	c.PointerDown(pt(150, 125), 0)
	c.PointerUp(pt(150, 125), 0)
	if got := undoDepth(doc); got != 1 {
		t.Fatalf("undo depth: got %d want 1", got)
	}
}

func TestResizeKeepsCenter(t *testing.T) {
	c, doc, _ := newTestController(t)
	id := addImage(t, doc)

	c.PointerDown(pt(200, 150), 0)
	if c.State() != StateResizing {
		t.Fatalf("state: got %v want resizing", c.State())
	}
	c.PointerMove(pt(250, 150), 0)
	c.PointerUp(pt(250, 150), 0)
	im, _ := doc.Image(id)
	if im.Width != 200 || im.Height() != 100 {
		t.Fatalf("size: got %vx%v want 200x100", im.Width, im.Height())
	}
	if im.Center() != pt(150, 125) {
		t.Fatalf("center moved: %+v", im.Center())
	}

	// West handles grow when dragged left.
	c.PointerDown(pt(50, 75), 0)
	c.PointerMove(pt(40, 75), 0)
	c.PointerUp(pt(40, 75), 0)
	im, _ = doc.Image(id)
	if im.Width != 220 {
		t.Fatalf("west resize: got %v want 220", im.Width)
	}
}

func TestResizeClampsMinimumWidth(t *testing.T) {
	c, doc, _ := newTestController(t)
	id := addImage(t, doc)
	c.PointerDown(pt(200, 150), 0)
	c.PointerMove(pt(100, 150), 0)
	c.PointerUp(pt(100, 150), 0)
	im, _ := doc.Image(id)
	if im.Width != domain.MinImageWidth {
		t.Fatalf("width: got %v want %v", im.Width, domain.MinImageWidth)
	}
}

func TestDrawLineMagnetAndSnap(t *testing.T) {
	c, doc, _ := newTestController(t)
	doc.SetMode(document.ModeDrawLine)

	c.PointerDown(pt(100, 300), 0)
	if c.State() != StateDrawingLine {
		t.Fatalf("state: got %v want drawing", c.State())
	}
	c.PointerMove(pt(300, 302), 0)
	f := c.Frame()
	if f.Draft == nil || f.Draft.To != pt(297.5, 300) {
		t.Fatalf("draft: %+v", f.Draft)
	}
	c.PointerUp(pt(300, 302), 0)

	lines := doc.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines: got %d want 1", len(lines))
	}
	l := lines[0]
	if l.P1() != pt(100, 300) || l.P2() != pt(297.5, 300) {
		t.Fatalf("line: %+v", l)
	}
	if doc.Selection() != domain.LineHandle(l.ID) {
		t.Fatalf("new line must be selected")
	}
	if c.Frame().Draft != nil || len(doc.Guides()) != 0 {
		t.Fatalf("draft and guides must clear")
	}
}

func TestShortLineDiscarded(t *testing.T) {
	c, doc, _ := newTestController(t)
	doc.SetMode(document.ModeDrawLine)
	c.PointerDown(pt(100, 300), 0)
	c.PointerUp(pt(101, 300), 0)
	if len(doc.Lines()) != 0 || undoDepth(doc) != 0 {
		t.Fatalf("short line must leave no trace: lines=%d undo=%d", len(doc.Lines()), undoDepth(doc))
	}
}

func TestEndpointCollapseRollsBack(t *testing.T) {
	c, doc, _ := newTestController(t)
	id, _ := doc.AddLine(pt(100, 300), pt(200, 300), domain.Black, 2)

	c.PointerDown(pt(200, 300), 0)
	if c.State() != StateDraggingLineEndpoint {
		t.Fatalf("state: got %v want endpoint drag", c.State())
	}
	c.PointerMove(pt(101, 300), 0)
	c.PointerUp(pt(101, 300), 0)
	l, _ := doc.Line(id)
	if l.P2() != pt(200, 300) || undoDepth(doc) != 1 {
		t.Fatalf("collapse must roll back: %+v undo=%d", l, undoDepth(doc))
	}
}

func TestDoubleClickExtendsSelectedLine(t *testing.T) {
	c, doc, _ := newTestController(t)
	id, _ := doc.AddLine(pt(100, 300), pt(200, 310), domain.Black, 2)
	c.DoubleClick(pt(150, 305))
	l, _ := doc.Line(id)
	if l.P1() != pt(0, 305) || l.P2() != pt(595, 305) {
		t.Fatalf("ruler: %+v", l)
	}
}

func TestPlaceTextCommit(t *testing.T) {
	c, doc, h := newTestController(t)
	doc.SetMode(document.ModePlaceText)

	c.PointerDown(pt(50, 60), 0)
	if len(h.opened) != 1 || !h.opened[0].Fresh {
		t.Fatalf("expected a fresh edit session, got %+v", h.opened)
	}
	if doc.Mode() != document.ModeSelect {
		t.Fatalf("mode: got %v want select", doc.Mode())
	}
	if c.KeyDown(KeyDelete, 0) {
		t.Fatalf("keys belong to the editor while a session is open")
	}
	c.CommitText("Hello")
	ts := doc.Texts()
	if len(ts) != 1 || ts[0].Content != "Hello" || ts[0].X != 50 || ts[0].Y != 60 {
		t.Fatalf("texts: %+v", ts)
	}
	if got := undoDepth(doc); got != 1 {
		t.Fatalf("placement and first content are one step, got %d", got)
	}
	doc.Undo()
	if len(doc.Texts()) != 0 {
		t.Fatalf("undo must remove the placed text")
	}
}

func TestPlaceTextEmptyCommitLeavesNothing(t *testing.T) {
	c, doc, _ := newTestController(t)
	doc.SetMode(document.ModePlaceText)
	c.PointerDown(pt(50, 60), 0)
	c.CommitText("   ")
	if len(doc.Texts()) != 0 || doc.History().CanUndo() || doc.History().CanRedo() {
		t.Fatalf("empty fresh text must vanish without history")
	}
	if !doc.Selection().IsNone() {
		t.Fatalf("selection: %v", doc.Selection())
	}
}

func TestEditExistingTextOnEscape(t *testing.T) {
	c, doc, h := newTestController(t)
	id := doc.AddText(300, 500, "Hi", 13, domain.Black)

	c.DoubleClick(pt(305, 505))
	if s, ok := c.Editing(); !ok || s.Fresh || s.Original != "Hi" {
		t.Fatalf("session: %+v %v", s, ok)
	}
	h.content = "Changed"
	if !c.KeyDown(KeyEscape, 0) {
		t.Fatalf("escape must commit the session")
	}
	tx, _ := doc.Text(id)
	if tx.Content != "Changed" || undoDepth(doc) != 2 {
		t.Fatalf("text: %+v undo=%d", tx, undoDepth(doc))
	}
	if _, ok := c.Editing(); ok {
		t.Fatalf("session must be closed")
	}
}

func TestClickElsewhereCommitsEdit(t *testing.T) {
	c, doc, h := newTestController(t)
	id := doc.AddText(300, 500, "Hi", 13, domain.Black)
	c.DoubleClick(pt(305, 505))
	h.content = "Hi"
	c.PointerDown(pt(20, 20), 0)
	if h.closed != 1 {
		t.Fatalf("editor must close once, closed=%d", h.closed)
	}
	if got := undoDepth(doc); got != 1 {
		t.Fatalf("unchanged commit must not record, got %d", got)
	}
	if _, ok := doc.Text(id); !ok || !doc.Selection().IsNone() {
		t.Fatalf("click on empty page must clear the selection")
	}
}

func TestPriorityImageBeforeTextAndMode(t *testing.T) {
	c, doc, h := newTestController(t)
	imgID := addImage(t, doc)
	doc.AddText(120, 110, "under", 13, domain.Black)
	doc.SetMode(document.ModePlaceText)

	c.PointerDown(pt(125, 115), 0)
	c.PointerUp(pt(125, 115), 0)
	if doc.Selection() != domain.ImageHandle(imgID) {
		t.Fatalf("selection: got %v want image", doc.Selection())
	}
	if len(h.opened) != 0 || len(doc.Texts()) != 1 {
		t.Fatalf("press on an image must not place text")
	}
}

func TestAddPageZone(t *testing.T) {
	c, doc, h := newTestController(t)
	c.PointerDown(pt(10, 850), 0)
	if doc.PageCount() != 2 {
		t.Fatalf("pages: got %d want 2", doc.PageCount())
	}
	if len(h.scrolled) != 1 || h.scrolled[0] != 842 {
		t.Fatalf("scroll: %+v", h.scrolled)
	}
	if c.State() != StateIdle {
		t.Fatalf("state: %v", c.State())
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	c, doc, _ := newTestController(t)
	id := addImage(t, doc)

	c.KeyDown(KeyRight, ModShift)
	if im, _ := doc.Image(id); im.X != 110 {
		t.Fatalf("nudge: got %v want 110", im.X)
	}
	c.KeyDown(KeyZ, ModCtrl)
	if im, _ := doc.Image(id); im.X != 100 {
		t.Fatalf("undo: got %v want 100", im.X)
	}
	c.KeyDown(KeyZ, ModSuper|ModShift)
	if im, _ := doc.Image(id); im.X != 110 {
		t.Fatalf("redo: got %v want 110", im.X)
	}
	c.KeyDown(KeyR, 0)
	if im, _ := doc.Image(id); im.Rotation != 90 {
		t.Fatalf("rotate: got %v want 90", im.Rotation)
	}
	if !c.KeyDown(KeyD, ModCtrl) || len(doc.Images()) != 2 {
		t.Fatalf("duplicate failed")
	}
	c.KeyDown(KeyG, 0)
	if !c.GridVisible() || len(c.Frame().Grid) == 0 {
		t.Fatalf("grid must be visible")
	}
	c.KeyDown(KeyL, 0)
	if doc.Mode() != document.ModeDrawLine {
		t.Fatalf("mode: %v", doc.Mode())
	}
	c.KeyDown(KeyEscape, 0)
	if doc.Mode() != document.ModeSelect || doc.Selection().IsNone() {
		t.Fatalf("first escape leaves the mode only")
	}
	c.KeyDown(KeyEscape, 0)
	if !doc.Selection().IsNone() {
		t.Fatalf("second escape clears the selection")
	}
	if !c.KeyDown(KeyReturn, ModCtrl) || doc.PageCount() != 2 {
		t.Fatalf("cmd+enter must add a page")
	}
}

func TestKeysIgnoredDuringGesture(t *testing.T) {
	c, doc, _ := newTestController(t)
	addImage(t, doc)
	c.PointerDown(pt(150, 125), 0)
	if c.KeyDown(KeyEscape, 0) || c.KeyDown(KeyDelete, 0) {
		t.Fatalf("keys must be ignored while dragging")
	}
	c.PointerUp(pt(150, 125), 0)
	if len(doc.Images()) != 1 {
		t.Fatalf("image must survive")
	}
}

func TestRotateGestureDetents(t *testing.T) {
	c, doc, h := newTestController(t)
	id := addImage(t, doc)

	c.RotateBegin()
	if c.State() != StateRotating {
		t.Fatalf("state: %v", c.State())
	}
	c.RotateUpdate(5)
	if im, _ := doc.Image(id); im.Rotation != 0 || h.detents != 0 {
		t.Fatalf("held at 0: rot=%v detents=%d", im.Rotation, h.detents)
	}
	c.RotateUpdate(20)
	if im, _ := doc.Image(id); im.Rotation != 20 {
		t.Fatalf("free: got %v want 20", im.Rotation)
	}
	c.RotateUpdate(88)
	c.RotateUpdate(89)
	if im, _ := doc.Image(id); im.Rotation != 90 || h.detents != 1 {
		t.Fatalf("detent: rot=%v detents=%d", im.Rotation, h.detents)
	}
	c.RotateEnd()
	if c.State() != StateIdle || undoDepth(doc) != 2 {
		t.Fatalf("rotation must end as one step: state=%v undo=%d", c.State(), undoDepth(doc))
	}
}

func TestNoopGesturesKeepRedo(t *testing.T) {
	c, doc, _ := newTestController(t)
	addImage(t, doc)
	doc.SetOpacity(0.5)
	doc.Undo()

	c.RotateBegin()
	c.RotateUpdate(2)
	c.RotateEnd()
	if u, r := doc.History().Stats(); u != 1 || r != 1 {
		t.Fatalf("rotate held by the detent: undo=%d redo=%d want 1 1", u, r)
	}
	c.PinchBegin()
	c.PinchUpdate(1)
	c.PinchEnd()
	if !doc.History().CanRedo() {
		t.Fatalf("pinch at scale 1 must keep the redo entry")
	}
}

func TestDragBackToStartKeepsCleanState(t *testing.T) {
	c, doc, _ := newTestController(t)
	addImage(t, doc)
	doc.MarkExported()
	c.PointerDown(pt(150, 125), 0)
	c.PointerMove(pt(200, 160), ModAlt)
	c.PointerMove(pt(150, 125), ModAlt)
	c.PointerUp(pt(150, 125), ModAlt)
	if got := undoDepth(doc); got != 1 {
		t.Fatalf("undo depth: got %d want 1", got)
	}
	if doc.Dirty() {
		t.Fatalf("a drag that ends where it started must leave the document clean")
	}
}

func TestPinchScalesImage(t *testing.T) {
	c, doc, _ := newTestController(t)
	id := addImage(t, doc)
	c.PinchBegin()
	c.PinchUpdate(2)
	c.PinchEnd()
	im, _ := doc.Image(id)
	if im.Width != 200 || im.Center() != pt(150, 125) {
		t.Fatalf("pinch: %+v", im)
	}
}

func TestPasteImageOnVisiblePage(t *testing.T) {
	c, doc, _ := newTestController(t)
	doc.AddPage(document.WithoutUndo)
	c.Resize(595, 842)
	c.SetScroll(842)
	id, err := c.PasteImage(bitmap(1000, 500))
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	im, _ := doc.Image(id)
	if c := im.Center(); !approx(im.Width, 357) || !approx(c.X, 297.5) || !approx(c.Y, 842+421) {
		t.Fatalf("pasted: w=%v center=%+v", im.Width, c)
	}
}

func TestDropInvalidBitmap(t *testing.T) {
	c, doc, _ := newTestController(t)
	if _, err := c.DropImage(nil, pt(10, 10)); err == nil {
		t.Fatalf("expected error")
	}
	if len(doc.Images()) != 0 || undoDepth(doc) != 0 {
		t.Fatalf("document must stay untouched")
	}
}

func TestPasteText(t *testing.T) {
	c, doc, _ := newTestController(t)
	if _, ok := c.PasteText(" \n "); ok {
		t.Fatalf("blank paste must be ignored")
	}
	id, ok := c.PasteText("clip")
	if !ok {
		t.Fatalf("paste text failed")
	}
	tx, _ := doc.Text(id)
	if !approx(doc.TextRect(tx).Center().X, 297.5) {
		t.Fatalf("text not centered: %+v", doc.TextRect(tx))
	}
}

func TestHoverCursor(t *testing.T) {
	c, doc, _ := newTestController(t)
	addImage(t, doc)
	cases := []struct {
		p    vector.Pt
		want Cursor
	}{
		{pt(150, 125), CursorMove},
		{pt(200, 150), CursorResize},
		{pt(400, 400), CursorDefault},
		{pt(10, 850), CursorPointer},
	}
	for _, tc := range cases {
		if got := c.HoverCursor(tc.p); got != tc.want {
			t.Fatalf("cursor at %+v: got %v want %v", tc.p, got, tc.want)
		}
	}
}

func TestFrameHandles(t *testing.T) {
	c, doc, _ := newTestController(t)
	addImage(t, doc)
	f := c.Frame()
	if len(f.Images) != 1 || !f.Images[0].Selected || len(f.Handles) != 4 {
		t.Fatalf("frame: images=%d handles=%d", len(f.Images), len(f.Handles))
	}
	if f.Grid != nil {
		t.Fatalf("grid is off by default")
	}
}

func TestSetConfigAppliesGridAndDefaults(t *testing.T) {
	c, _, _ := newTestController(t)
	c.SetConfig(Config{Grid: true, SnapThreshold: 9})
	if !c.GridVisible() || c.Config().SnapThreshold != 9 || c.Config().HandleSize != DefaultConfig().HandleSize {
		t.Fatalf("config not applied: %+v", c.Config())
	}
	if len(c.Frame().Grid) == 0 {
		t.Fatalf("grid must be part of the frame once enabled")
	}
}
