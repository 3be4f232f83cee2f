//go:build fyne && cgo

package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"pagecomposer/internal/config"
	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/input"
	"pagecomposer/internal/interact"
)

func newTestCanvas(t *testing.T) (*DocCanvas, *document.Model) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	doc := NewDocument(config.Defaults())
	w := test.NewWindow(nil)
	dc := NewDocCanvas(doc, interact.DefaultConfig(), w)
	w.SetContent(dc.Container())
	w.Resize(fyne.NewSize(400, 600))
	dc.Controller().Resize(400, 600)
	dc.clip = &input.MemoryClipboard{}
	return dc, doc
}

func TestDocCanvasKeysReachController(t *testing.T) {
	dc, doc := newTestCanvas(t)
	dc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyT})
	if doc.Mode() != document.ModePlaceText {
		t.Fatalf("mode: got %v want place text", doc.Mode())
	}
	dc.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	if doc.Mode() != document.ModeSelect {
		t.Fatalf("mode after escape: got %v", doc.Mode())
	}

	dc.KeyDown(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	if !dc.mods.Shift() {
		t.Fatalf("shift must be tracked while held")
	}
	dc.KeyUp(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	if dc.mods != 0 {
		t.Fatalf("modifiers after release: %v", dc.mods)
	}
}

func TestDocCanvasPasteAndCopy(t *testing.T) {
	dc, doc := newTestCanvas(t)
	if err := dc.clip.WriteText("hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	dc.TypedShortcut(&fyne.ShortcutPaste{})
	texts := doc.Texts()
	if len(texts) != 1 || texts[0].Content != "hello" {
		t.Fatalf("pasted texts: %+v", texts)
	}

	_ = dc.clip.WriteText("")
	doc.Select(domain.TextHandle(texts[0].ID))
	dc.TypedShortcut(&fyne.ShortcutCopy{})
	if got, _ := dc.clip.ReadText(); got != "hello" {
		t.Fatalf("copied text: got %q", got)
	}

	dc.TypedShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierControl})
	if n := len(doc.Texts()); n != 2 {
		t.Fatalf("duplicate via shortcut: got %d texts", n)
	}
}

func TestDocCanvasRastersFollowContent(t *testing.T) {
	dc, doc := newTestCanvas(t)
	l := dc.Controller().Layout()
	first := dc.pageRasters(l)
	if len(first) != 1 {
		t.Fatalf("rasters: got %d want 1", len(first))
	}
	doc.AddPage(document.WithUndo)
	if got := len(dc.pageRasters(dc.Controller().Layout())); got != 2 {
		t.Fatalf("rasters after add page: got %d want 2", got)
	}
	if cursorFor(interact.CursorText) != desktop.TextCursor || cursorFor(interact.CursorDefault) != desktop.DefaultCursor {
		t.Fatalf("cursor mapping")
	}
}
