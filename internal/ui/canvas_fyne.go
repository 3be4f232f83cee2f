//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/export"
	"pagecomposer/internal/input"
	"pagecomposer/internal/interact"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/vector"
)

var (
	deskColor   = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	pageBorder  = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	selectColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
	guideColor  = color.NRGBA{R: 255, G: 0, B: 170, A: 220}
	gridColor   = color.NRGBA{R: 0, G: 120, B: 255, A: 50}
	zoneColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 24}
)

// Wheel gestures: a pause this long ends the rotate or pinch.
const (
	gestureIdle     = 250 * time.Millisecond
	degreesPerPixel = 0.5
	pinchPerPixel   = 0.005
)

type wheelGesture uint8

const (
	gestureNone wheelGesture = iota
	gestureRotate
	gesturePinch
)

// DocCanvas draws the page stack and forwards pointer, key and wheel input to the
// interaction controller. It is the controller's Host.
type DocCanvas struct {
	widget.BaseWidget

	doc    *document.Model
	ctrl   *interact.Controller
	win    fyne.Window
	scroll *container.Scroll
	editor *textEditor
	clip   input.Clipboard
	log    *slog.Logger

	// OnStatus receives a short status line after every document change.
	OnStatus func(string)

	mods   interact.Modifiers
	cursor desktop.Cursor
	last   vector.Pt

	// Page rasters are rebuilt when gen moves past rasterGen or the pixel scale changes.
	gen         uint64
	rasterGen   uint64
	rasterScale float64
	rasters     []*canvas.Image

	gesture wheelGesture
	wheelN  int
	wheelV  float64
}

func NewDocCanvas(doc *document.Model, cfg interact.Config, win fyne.Window) *DocCanvas {
	c := &DocCanvas{
		doc:    doc,
		win:    win,
		log:    applog.WithComponent("ui"),
		cursor: desktop.DefaultCursor,
		gen:    1,
	}
	if input.Unsupported() {
		c.clip = &input.MemoryClipboard{}
	} else {
		c.clip = input.SystemClipboard{}
	}
	c.ExtendBaseWidget(c)
	c.editor = newTextEditor(c)
	c.ctrl = interact.New(doc, c, cfg)
	c.scroll = container.NewVScroll(c)
	c.scroll.OnScrolled = func(p fyne.Position) { c.ctrl.SetScroll(float64(p.Y)) }
	doc.Subscribe(document.ObserverFunc(c.documentChanged))
	return c
}

// Container is the scroll view holding the canvas.
func (c *DocCanvas) Container() fyne.CanvasObject { return c.scroll }

func (c *DocCanvas) Controller() *interact.Controller { return c.ctrl }

func (c *DocCanvas) documentChanged(ch document.Change) {
	if ch.Has(document.ChangeContent | document.ChangePages) {
		c.gen++
	}
	if ch.Has(document.ChangePages) {
		c.scroll.Refresh()
	}
	c.Refresh()
	c.status("")
}

func (c *DocCanvas) status(msg string) {
	if c.OnStatus == nil {
		return
	}
	parts := []string{c.doc.Mode().String(), pageCountLabel(c.doc.PageCount())}
	if sel := c.doc.Selection(); !sel.IsNone() {
		parts = append(parts, sel.Kind.String()+" selected")
	}
	if c.doc.Dirty() {
		parts = append(parts, "unsaved changes")
	}
	if msg != "" {
		parts = append(parts, msg)
	}
	c.OnStatus(strings.Join(parts, " · "))
}

func pageCountLabel(n int) string {
	if n == 1 {
		return "1 page"
	}
	return strconv.Itoa(n) + " pages"
}

// commitEdit closes an open text edit so menu actions see the final content.
func (c *DocCanvas) commitEdit() {
	if _, ok := c.ctrl.Editing(); ok {
		c.ctrl.CommitText(c.editor.Text)
	}
}

// key runs a shortcut as if typed on the canvas.
func (c *DocCanvas) key(k interact.Key, mods interact.Modifiers) {
	c.commitEdit()
	if c.ctrl.KeyDown(k, mods) {
		c.Refresh()
	}
}

// Host

func (c *DocCanvas) Invalidate() { c.Refresh() }

func (c *DocCanvas) ScrollIntoView(docY float64) {
	l := c.ctrl.Layout()
	y := float32(math.Max(0, l.ToScreen(vector.Pt{Y: docY}).Y-l.Padding))
	fyne.Do(func() {
		c.scroll.Refresh()
		c.scroll.Offset.Y = y
		c.scroll.Refresh()
		c.ctrl.SetScroll(float64(c.scroll.Offset.Y))
	})
}

func (c *DocCanvas) DetentFeedback() { c.status("snapped") }

func (c *DocCanvas) OpenTextEditor(s interact.EditSession) {
	c.editor.open(s)
	c.Refresh()
	c.win.Canvas().Focus(c.editor)
}

func (c *DocCanvas) CloseTextEditor() string {
	text := c.editor.close()
	c.win.Canvas().Focus(c)
	return text
}

// Input

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func modsFrom(m fyne.KeyModifier) interact.Modifiers {
	var out interact.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		out |= interact.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= interact.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= interact.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= interact.ModSuper
	}
	return out
}

func (c *DocCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.endGesture()
	c.last = toPt(e.Position)
	c.ctrl.PointerDown(c.last, c.mods|modsFrom(e.Modifier))
	if _, editing := c.ctrl.Editing(); !editing {
		c.win.Canvas().Focus(c)
	}
}

func (c *DocCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.last = toPt(e.Position)
	c.ctrl.PointerUp(c.last, c.mods|modsFrom(e.Modifier))
}

func (c *DocCanvas) Dragged(e *fyne.DragEvent) {
	c.last = toPt(e.Position)
	c.ctrl.PointerMove(c.last, c.mods)
}

// DragEnd finishes a gesture whose mouse-up was not delivered to the canvas.
func (c *DocCanvas) DragEnd() {
	if c.ctrl.State() != interact.StateIdle {
		c.ctrl.PointerUp(c.last, c.mods)
	}
}

func (c *DocCanvas) DoubleTapped(e *fyne.PointEvent) { c.ctrl.DoubleClick(toPt(e.Position)) }

func (c *DocCanvas) MouseIn(e *desktop.MouseEvent) { c.MouseMoved(e) }

func (c *DocCanvas) MouseMoved(e *desktop.MouseEvent) {
	c.cursor = cursorFor(c.ctrl.HoverCursor(toPt(e.Position)))
}

func (c *DocCanvas) MouseOut() { c.cursor = desktop.DefaultCursor }

func (c *DocCanvas) Cursor() desktop.Cursor { return c.cursor }

func cursorFor(k interact.Cursor) desktop.Cursor {
	switch k {
	case interact.CursorMove, interact.CursorPointer:
		return desktop.PointerCursor
	case interact.CursorResize:
		return desktop.HResizeCursor
	case interact.CursorCrosshair:
		return desktop.CrosshairCursor
	case interact.CursorText:
		return desktop.TextCursor
	}
	return desktop.DefaultCursor
}

// Scrolled turns Alt+wheel into a rotate gesture and Ctrl/Cmd+wheel into a pinch;
// anything else scrolls the pages.
func (c *DocCanvas) Scrolled(e *fyne.ScrollEvent) {
	switch {
	case c.mods.Primary():
		c.wheel(gesturePinch, float64(e.Scrolled.DY))
	case c.mods.Alt():
		c.wheel(gestureRotate, float64(e.Scrolled.DY))
	default:
		c.scroll.Scrolled(e)
	}
}

func (c *DocCanvas) wheel(kind wheelGesture, dy float64) {
	if c.gesture != kind {
		c.endGesture()
		c.gesture, c.wheelV = kind, 0
		if kind == gesturePinch {
			c.ctrl.PinchBegin()
		} else {
			c.ctrl.RotateBegin()
		}
	}
	c.wheelV += dy
	if kind == gesturePinch {
		c.ctrl.PinchUpdate(math.Exp(c.wheelV * pinchPerPixel))
	} else {
		c.ctrl.RotateUpdate(c.wheelV * degreesPerPixel)
	}
	c.wheelN++
	n := c.wheelN
	time.AfterFunc(gestureIdle, func() {
		fyne.Do(func() {
			if c.wheelN == n {
				c.endGesture()
			}
		})
	})
}

func (c *DocCanvas) endGesture() {
	switch c.gesture {
	case gesturePinch:
		c.ctrl.PinchEnd()
	case gestureRotate:
		c.ctrl.RotateEnd()
	}
	c.gesture = gestureNone
}

func (c *DocCanvas) FocusGained() {}

func (c *DocCanvas) FocusLost() { c.mods = 0 }

func (c *DocCanvas) TypedRune(rune) {}

func (c *DocCanvas) TypedKey(e *fyne.KeyEvent) {
	if c.ctrl.KeyDown(interact.Key(e.Name), c.mods) {
		c.Refresh()
	}
}

// TypedShortcut receives every Ctrl/Cmd/Alt combination while the canvas has focus.
func (c *DocCanvas) TypedShortcut(s fyne.Shortcut) {
	ks, ok := s.(fyne.KeyboardShortcut)
	if !ok {
		return
	}
	mods := modsFrom(ks.Mod())
	switch {
	case ks.Key() == fyne.KeyV && mods.Primary():
		c.paste()
	case ks.Key() == fyne.KeyC && mods.Primary():
		c.copySelection()
	default:
		if c.ctrl.KeyDown(interact.Key(ks.Key()), mods) {
			c.Refresh()
		}
	}
}

// KeyDown and KeyUp only track modifiers; shortcuts arrive through TypedKey.
func (c *DocCanvas) KeyDown(e *fyne.KeyEvent) { c.mods |= modifierKey(e.Name) }

func (c *DocCanvas) KeyUp(e *fyne.KeyEvent) { c.mods &^= modifierKey(e.Name) }

func modifierKey(k fyne.KeyName) interact.Modifiers {
	switch k {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		return interact.ModShift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		return interact.ModCtrl
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		return interact.ModAlt
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		return interact.ModSuper
	}
	return 0
}

// paste inserts clipboard text, or the image a copied file path points to.
func (c *DocCanvas) paste() {
	s, err := c.clip.ReadText()
	if err != nil {
		c.log.Warn("clipboard read failed", slog.Any("err", err))
		return
	}
	if p := strings.TrimSpace(s); input.IsImageFile(p) {
		if bm, err := input.DecodeImageFile(p); err == nil {
			if _, err := c.ctrl.PasteImage(bm); err != nil {
				c.log.Warn("paste image failed", slog.Any("err", err))
			}
			return
		}
	}
	c.ctrl.PasteText(s)
}

func (c *DocCanvas) copySelection() {
	sel := c.doc.Selection()
	if sel.Kind != domain.KindText {
		return
	}
	if t, ok := c.doc.Text(sel.ID); ok {
		if err := c.clip.WriteText(t.Content); err != nil {
			c.log.Warn("clipboard write failed", slog.Any("err", err))
		}
	}
}

// dropImages places decoded files side by side around the drop point. Decoding
// runs off the UI thread.
func (c *DocCanvas) dropImages(winPos fyne.Position, uris []fyne.URI) {
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(c)
	at := toPt(winPos.Subtract(origin))
	for i, u := range uris {
		path := u.Path()
		if !input.IsImageFile(path) {
			c.log.Info("drop ignored", slog.String("path", path))
			continue
		}
		p := vector.Pt{X: at.X + float64(i)*16, Y: at.Y + float64(i)*16}
		go func() {
			bm, err := input.DecodeImageFile(path)
			fyne.Do(func() {
				if err != nil {
					c.status(err.Error())
					return
				}
				if _, err := c.ctrl.DropImage(bm, p); err != nil {
					c.status(err.Error())
				}
			})
		}()
	}
}

// Rendering

func (c *DocCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &docRenderer{
		c:         c,
		bg:        canvas.NewRectangle(deskColor),
		zone:      canvas.NewRectangle(zoneColor),
		zoneLabel: canvas.NewText("+ Add page", color.NRGBA{R: 200, G: 200, B: 200, A: 255}),
	}
	r.zone.StrokeColor = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
	r.zone.StrokeWidth = 1
	r.zone.CornerRadius = 4
	r.zoneLabel.Alignment = fyne.TextAlignCenter
	r.rebuild()
	return r
}

// pageRasters renders every page with the export rasterizer at device resolution.
func (c *DocCanvas) pageRasters(l interact.Layout) []*canvas.Image {
	px := l.Scale * float64(c.win.Canvas().Scale())
	if c.rasterGen == c.gen && c.rasterScale == px && len(c.rasters) == len(l.Pages) {
		return c.rasters
	}
	start := time.Now()
	c.rasters = c.rasters[:0]
	for _, b := range export.BuildPages(c.doc, c.doc.Measurer()) {
		img := canvas.NewImageFromImage(export.RenderPage(b, px))
		img.FillMode = canvas.ImageFillStretch
		c.rasters = append(c.rasters, img)
	}
	c.rasterGen, c.rasterScale = c.gen, px
	c.log.Debug("pages rendered", slog.Int("pages", len(c.rasters)), slog.Duration("dur", time.Since(start)))
	return c.rasters
}

type docRenderer struct {
	c         *DocCanvas
	bg        *canvas.Rectangle
	zone      *canvas.Rectangle
	zoneLabel *canvas.Text
	objects   []fyne.CanvasObject
}

func (r *docRenderer) Destroy()                     {}
func (r *docRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *docRenderer) Refresh()                     { r.rebuild(); canvas.Refresh(r.c) }

func (r *docRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, float32(r.c.ctrl.Layout().ContentHeight()))
}

func (r *docRenderer) Layout(size fyne.Size) {
	r.c.ctrl.Resize(float64(size.Width), float64(r.c.scroll.Size().Height))
	r.rebuild()
}

func (r *docRenderer) rebuild() {
	f := r.c.ctrl.Frame()
	l := f.Layout
	r.bg.Resize(r.c.Size())
	objs := []fyne.CanvasObject{r.bg}

	for i, img := range r.c.pageRasters(l) {
		pr := l.Pages[i]
		img.Move(pos(pr.X, pr.Y))
		img.Resize(size(pr.W, pr.H))
		objs = append(objs, img, outline(pr, pageBorder))
	}
	for _, s := range f.Grid {
		objs = append(objs, segment(s, gridColor, 1))
	}
	for _, im := range f.Images {
		if im.Selected {
			objs = append(objs, rotatedOutline(im.Rect, im.Image.Rotation, selectColor)...)
		}
	}
	for _, t := range f.Texts {
		if t.Selected && !t.Editing {
			objs = append(objs, outline(t.Rect, selectColor))
		}
	}
	if f.Draft != nil {
		objs = append(objs, segment(f.Draft.Segment, f.Draft.Color, f.Draft.Width))
	}
	for _, g := range f.Guides {
		objs = append(objs, segment(g.Segment, guideColor, 1))
	}
	for _, h := range f.Handles {
		sq := canvas.NewRectangle(color.White)
		sq.StrokeColor = selectColor
		sq.StrokeWidth = 1.5
		sq.Move(pos(h.X, h.Y))
		sq.Resize(size(h.W, h.H))
		objs = append(objs, sq)
	}

	z := l.AddPageZone
	r.zone.Move(pos(z.X, z.Y))
	r.zone.Resize(size(z.W, z.H))
	r.zoneLabel.Move(pos(z.X, z.Y+z.H/2-10))
	r.zoneLabel.Resize(size(z.W, 20))
	objs = append(objs, r.zone, r.zoneLabel)

	if e := r.c.editor; e.Visible() {
		for _, t := range f.Texts {
			if t.Editing {
				e.place(t.Rect)
			}
		}
		objs = append(objs, e)
	}
	r.objects = objs
}

func pos(x, y float64) fyne.Position { return fyne.NewPos(float32(x), float32(y)) }
func size(w, h float64) fyne.Size    { return fyne.NewSize(float32(w), float32(h)) }

func outline(rc vector.Rect, c color.Color) *canvas.Rectangle {
	o := canvas.NewRectangle(color.Transparent)
	o.StrokeColor = c
	o.StrokeWidth = 1
	o.Move(pos(rc.X, rc.Y))
	o.Resize(size(rc.W, rc.H))
	return o
}

func segment(s interact.Segment, c color.Color, width float64) *canvas.Line {
	ln := canvas.NewLine(c)
	ln.StrokeWidth = float32(math.Max(width, 1))
	ln.Position1 = pos(s.From.X, s.From.Y)
	ln.Position2 = pos(s.To.X, s.To.Y)
	return ln
}

func rotatedOutline(rc vector.Rect, deg float64, c color.Color) []fyne.CanvasObject {
	m := vector.RotateAbout(rc.Center(), deg)
	pts := []vector.Pt{
		m.Apply(rc.Min()),
		m.Apply(vector.Pt{X: rc.Right(), Y: rc.Y}),
		m.Apply(rc.Max()),
		m.Apply(vector.Pt{X: rc.X, Y: rc.Bottom()}),
	}
	out := make([]fyne.CanvasObject, 0, len(pts))
	for i, p := range pts {
		out = append(out, segment(interact.Segment{From: p, To: pts[(i+1)%len(pts)]}, c, 1))
	}
	return out
}

// textEditor is the in-place multi-line entry used while a text item is edited.
type textEditor struct {
	widget.Entry
	owner *DocCanvas
}

func newTextEditor(owner *DocCanvas) *textEditor {
	e := &textEditor{owner: owner}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapOff
	e.ExtendBaseWidget(e)
	e.Hide()
	return e
}

// TypedKey commits on Escape; everything else edits the text.
func (e *textEditor) TypedKey(k *fyne.KeyEvent) {
	if k.Name == fyne.KeyEscape {
		e.owner.ctrl.KeyDown(interact.KeyEscape, 0)
		return
	}
	e.Entry.TypedKey(k)
}

func (e *textEditor) open(s interact.EditSession) {
	e.SetText(s.Original)
	e.place(s.Rect)
	e.Show()
}

func (e *textEditor) close() string {
	text := e.Text
	e.Hide()
	return text
}

func (e *textEditor) place(r vector.Rect) {
	ms := e.MinSize()
	e.Move(pos(r.X-6, r.Y-6))
	e.Resize(fyne.NewSize(
		float32(math.Max(r.W+48, 160)),
		float32(math.Max(r.H+12, float64(ms.Height))),
	))
}
