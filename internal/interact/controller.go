/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer, keyboard and gesture events into document
// operations. It owns the screen layout, the gesture state machine, the draft line
// and the text edit session; everything persistent lives in document.Model.
package interact

import (
	"log/slog"
	"strings"

	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/vector"
)

// gesture is the scratch state of one pointer or trackpad gesture. The entity
// copies are taken at the start; live updates are always computed from them.
type gesture struct {
	target   domain.Handle
	press    vector.Pt
	began    bool
	image    domain.Image
	text     domain.Text
	textRect vector.Rect
	line     domain.Line
	endpoint int
	sx       float64
	magnet   vector.MagnetState
	detent   vector.DetentState
	start    float64
	anchor   vector.Pt
	end      vector.Pt
}

type Controller struct {
	doc  *document.Model
	host Host
	cfg  Config

	viewW, viewH float64
	scrollY      float64

	state State
	g     gesture
	edit  *EditSession
	grid  bool

	log *slog.Logger
}

func New(doc *document.Model, host Host, cfg Config) *Controller {
	if host == nil {
		host = NopHost{}
	}
	cfg = cfg.withDefaults()
	return &Controller{
		doc:   doc,
		host:  host,
		cfg:   cfg,
		viewW: doc.PageSize().W + 2*cfg.Padding,
		grid:  cfg.Grid,
		log:   applog.WithComponent("interact"),
	}
}

func (c *Controller) State() State              { return c.state }
func (c *Controller) Document() *document.Model { return c.doc }
func (c *Controller) GridVisible() bool         { return c.grid }

// Editing returns the open text edit session, if any.
func (c *Controller) Editing() (EditSession, bool) {
	if c.edit == nil {
		return EditSession{}, false
	}
	return *c.edit, true
}

// Layout is recomputed from the document on every call, so page changes need no
// notification.
func (c *Controller) Layout() Layout {
	return ComputeLayout(c.viewW, c.doc.PageSize(), c.doc.PageCount(), c.cfg.Padding, c.cfg.PageGap)
}

// Resize updates the viewport size in screen pixels.
func (c *Controller) Resize(w, h float64) {
	if w == c.viewW && h == c.viewH {
		return
	}
	c.viewW, c.viewH = w, h
	c.host.Invalidate()
}

// SetScroll tells the controller the vertical scroll offset of the viewport.
func (c *Controller) SetScroll(offsetY float64) { c.scrollY = offsetY }

// VisiblePage is the page under the center of the viewport.
func (c *Controller) VisiblePage() int {
	p := c.Layout().ToDoc(vector.Pt{X: 0, Y: c.scrollY + c.viewH/2})
	return c.doc.PageIndexOf(p.Y)
}

// PointerDown dispatches a press in screen coordinates. An open edit session is
// committed first.
func (c *Controller) PointerDown(p vector.Pt, mods Modifiers) {
	if c.state != StateIdle {
		return
	}
	c.closeEdit()
	l := c.Layout()
	dp := l.ToDoc(p)
	c.g = gesture{press: dp}

	if l.AddPageZone.Contains(p) {
		c.addPage()
		return
	}
	if h, sx, ok := c.handleAt(l, p); ok {
		c.startResize(h, sx)
		return
	}
	if id, ok := c.imageAt(dp); ok {
		c.startDrag(domain.ImageHandle(id))
		return
	}
	switch c.doc.Mode() {
	case document.ModePlaceText:
		c.placeText(dp)
		return
	case document.ModeDrawLine:
		c.startLine(dp, mods)
		return
	}
	if id, ok := c.textAt(dp); ok {
		c.startDrag(domain.TextHandle(id))
		return
	}
	if end := c.endpointAt(l, p); end != 0 {
		c.startEndpoint(end)
		return
	}
	if id, ok := c.lineAt(l, dp); ok {
		c.startDrag(domain.LineHandle(id))
		return
	}
	c.doc.ClearSelection()
}

func (c *Controller) PointerMove(p vector.Pt, mods Modifiers) {
	cur := c.Layout().ToDoc(p)
	switch c.state {
	case StateDragging:
		c.drag(cur, mods)
	case StateResizing:
		c.resizeImage(cur)
	case StateResizingText:
		c.resizeText(cur)
	case StateDrawingLine:
		c.g.end, c.g.magnet = c.constrain(c.g.anchor, cur, c.g.magnet, mods, domain.None)
		c.host.Invalidate()
	case StateDraggingLineEndpoint:
		c.dragEndpoint(cur, mods)
	}
}

// PointerUp commits the current pointer gesture. There is no cancel.
func (c *Controller) PointerUp(p vector.Pt, mods Modifiers) {
	switch c.state {
	case StateDrawingLine:
		c.PointerMove(p, mods)
		a, b := c.g.anchor, c.g.end
		c.reset()
		c.doc.ClearGuides()
		if _, ok := c.doc.AddLine(a, b, c.cfg.LineColor, c.cfg.LineWidth); !ok {
			c.log.Debug("line too short, discarded", slog.Float64("len", vector.Dist(a, b)))
		}
		c.host.Invalidate()
	case StateDraggingLineEndpoint:
		if l, ok := c.doc.Line(c.g.target.ID); ok && c.g.began && l.Length() <= domain.MinLineLength {
			c.doc.Rollback()
			c.reset()
			return
		}
		c.finish()
	case StateDragging, StateResizing, StateResizingText:
		c.finish()
	}
}

// DoubleClick opens an existing text for editing or turns the selected line into
// a page-wide ruler.
func (c *Controller) DoubleClick(p vector.Pt) {
	if c.state != StateIdle {
		c.finish()
	}
	l := c.Layout()
	dp := l.ToDoc(p)
	if id, ok := c.imageAt(dp); ok {
		c.doc.Select(domain.ImageHandle(id))
		return
	}
	if id, ok := c.textAt(dp); ok {
		c.closeEdit()
		if t, ok := c.doc.Text(id); ok {
			c.doc.Select(domain.TextHandle(id))
			c.openEdit(t, false)
		}
		return
	}
	if id, ok := c.lineAt(l, dp); ok && c.doc.Selection() == domain.LineHandle(id) {
		c.doc.ExtendLineToPage(id)
	}
}

// KeyDown handles a shortcut and reports whether it was consumed. Keys go to the
// text editor while a session is open, except Escape which commits it.
func (c *Controller) KeyDown(k Key, mods Modifiers) bool {
	if c.edit != nil {
		if k == KeyEscape {
			c.closeEdit()
			return true
		}
		return false
	}
	if c.state != StateIdle {
		return false
	}
	step := c.cfg.NudgeStep
	if mods.Shift() {
		step = c.cfg.NudgeLargeStep
	}
	switch {
	case (k == KeyDelete || k == KeyBackspace) && mods.Primary() && mods.Shift():
		return c.doc.RemovePage()
	case k == KeyDelete || k == KeyBackspace:
		return c.doc.DeleteSelected()
	case k == KeyZ && mods.Primary() && mods.Shift(), k == KeyY && mods.Primary():
		return c.doc.Redo()
	case k == KeyZ && mods.Primary():
		return c.doc.Undo()
	case k == KeyD && mods.Primary():
		_, ok := c.doc.Duplicate()
		return ok
	case (k == KeyReturn || k == KeyEnter) && mods.Primary():
		c.addPage()
		return true
	case mods.Primary():
		return false
	case k == KeyUp:
		return c.doc.Nudge(0, -step)
	case k == KeyDown:
		return c.doc.Nudge(0, step)
	case k == KeyLeft:
		return c.doc.Nudge(-step, 0)
	case k == KeyRight:
		return c.doc.Nudge(step, 0)
	case k == KeyRightBracket:
		return c.doc.BringToFront()
	case k == KeyLeftBracket:
		return c.doc.SendToBack()
	case k == KeyEqual:
		return c.doc.ScaleSelected(c.cfg.ScaleStep)
	case k == KeyMinus:
		return c.doc.ScaleSelected(1 / c.cfg.ScaleStep)
	case k == KeyR:
		return c.doc.RotateSelected(90)
	case k == KeyF:
		return c.doc.ToggleFrame()
	case k == KeyG:
		c.SetGrid(!c.grid)
		return true
	case k == KeyT:
		c.doc.SetMode(document.ModePlaceText)
		return true
	case k == KeyL:
		c.doc.SetMode(document.ModeDrawLine)
		return true
	case k == KeyEscape:
		if c.doc.Mode() != document.ModeSelect {
			c.doc.SetMode(document.ModeSelect)
			return true
		}
		return c.doc.ClearSelection()
	}
	return false
}

// SetGrid shows or hides the alignment grid. The grid is never exported.
func (c *Controller) SetGrid(on bool) {
	if on == c.grid {
		return
	}
	c.grid = on
	c.host.Invalidate()
}

// SetConfig replaces the interaction settings, for example after a config reload.
// A gesture in progress keeps running with the new values.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg.withDefaults()
	c.grid = c.cfg.Grid
	c.host.Invalidate()
}

// Config returns the active settings.
func (c *Controller) Config() Config { return c.cfg }

// RotateBegin starts a trackpad rotation of the selected image or line.
func (c *Controller) RotateBegin() {
	if c.state != StateIdle || c.edit != nil {
		return
	}
	h := c.doc.Selection()
	g := gesture{target: h}
	switch h.Kind {
	case domain.KindImage:
		im, ok := c.doc.Image(h.ID)
		if !ok {
			return
		}
		g.image, g.start = im, im.Rotation
	case domain.KindLine:
		l, ok := c.doc.Line(h.ID)
		if !ok {
			return
		}
		g.line, g.start = l, l.Angle()
	default:
		return
	}
	g.detent = vector.DetentAt(g.start)
	c.g = g
	c.enter(StateRotating)
}

// RotateUpdate applies the cumulative gesture angle in degrees.
func (c *Controller) RotateUpdate(cumDeg float64) {
	if c.state != StateRotating {
		return
	}
	shown, next, entered := vector.StepDetent(c.g.detent, c.g.start+cumDeg)
	c.g.detent = next
	if entered {
		c.host.DetentFeedback()
	}
	c.touch()
	switch c.g.target.Kind {
	case domain.KindImage:
		c.doc.SetImageRotation(c.g.target.ID, shown)
	case domain.KindLine:
		l := c.g.line.Rotated(vector.AngleDelta(c.g.start, shown))
		c.doc.SetLineEndpoints(c.g.target.ID, l.P1(), l.P2())
	}
}

func (c *Controller) RotateEnd() {
	if c.state == StateRotating {
		c.finish()
	}
}

// PinchBegin starts scaling the selected image (about its center) or text.
func (c *Controller) PinchBegin() {
	if c.state != StateIdle || c.edit != nil {
		return
	}
	h := c.doc.Selection()
	g := gesture{target: h}
	switch h.Kind {
	case domain.KindImage:
		im, ok := c.doc.Image(h.ID)
		if !ok {
			return
		}
		g.image = im
	case domain.KindText:
		t, ok := c.doc.Text(h.ID)
		if !ok {
			return
		}
		g.text = t
	default:
		return
	}
	c.g = g
	c.enter(StatePinching)
}

// PinchUpdate applies the cumulative scale factor of the gesture.
func (c *Controller) PinchUpdate(scale float64) {
	if c.state != StatePinching || scale <= 0 {
		return
	}
	c.touch()
	switch c.g.target.Kind {
	case domain.KindImage:
		c.doc.SetImageGeometry(c.g.target.ID, c.g.image.Center(), c.g.image.Width*scale)
	case domain.KindText:
		c.doc.SetTextFontSize(c.g.target.ID, c.g.text.FontSize*scale)
	}
}

func (c *Controller) PinchEnd() {
	if c.state == StatePinching {
		c.finish()
	}
}

// CommitText ends the edit session with the editor's content.
func (c *Controller) CommitText(content string) {
	if c.edit == nil {
		return
	}
	c.host.CloseTextEditor()
	c.finishEdit(content)
}

// DropImage places a dropped bitmap centered on the drop point.
func (c *Controller) DropImage(bm *domain.Bitmap, p vector.Pt) (domain.ID, error) {
	c.closeEdit()
	return c.doc.AddImageAt(bm, c.Layout().ToDoc(p))
}

// PasteImage centers a pasted bitmap on the visible page.
func (c *Controller) PasteImage(bm *domain.Bitmap) (domain.ID, error) {
	c.closeEdit()
	return c.doc.AddImageCentered(bm, c.VisiblePage())
}

// PasteText creates a text item from clipboard text, centered on the visible page.
func (c *Controller) PasteText(s string) (domain.ID, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	c.closeEdit()
	center := c.doc.PageRect(c.VisiblePage()).Center()
	b := c.doc.Measurer().Layout(s, c.cfg.DefaultFontSize)
	return c.doc.AddText(center.X-b.Width/2, center.Y-b.Height/2, s, c.cfg.DefaultFontSize, c.cfg.TextColor), true
}

// HoverCursor reports the cursor for a pointer at p.
func (c *Controller) HoverCursor(p vector.Pt) Cursor {
	switch c.state {
	case StateDragging:
		return CursorMove
	case StateResizing, StateResizingText, StateDraggingLineEndpoint:
		return CursorResize
	case StateDrawingLine:
		return CursorCrosshair
	}
	l := c.Layout()
	dp := l.ToDoc(p)
	switch {
	case l.AddPageZone.Contains(p):
		return CursorPointer
	case c.hasHandleAt(l, p):
		return CursorResize
	case c.hasImageAt(dp):
		return CursorMove
	case c.doc.Mode() == document.ModePlaceText:
		return CursorText
	case c.doc.Mode() == document.ModeDrawLine:
		return CursorCrosshair
	case c.hasTextAt(dp):
		return CursorMove
	case c.endpointAt(l, p) != 0:
		return CursorResize
	case c.hasLineAt(l, dp):
		return CursorMove
	}
	return CursorDefault
}

func (c *Controller) addPage() {
	n := c.doc.AddPage(document.WithUndo)
	c.host.ScrollIntoView(c.doc.PageRect(n - 1).Y)
}

func (c *Controller) startDrag(h domain.Handle) {
	c.doc.Select(h)
	c.g.target = h
	switch h.Kind {
	case domain.KindImage:
		c.g.image, _ = c.doc.Image(h.ID)
	case domain.KindText:
		c.g.text, _ = c.doc.Text(h.ID)
		c.g.textRect = c.doc.TextRect(c.g.text)
	case domain.KindLine:
		c.g.line, _ = c.doc.Line(h.ID)
	}
	c.enter(StateDragging)
}

func (c *Controller) startResize(h domain.Handle, sx float64) {
	c.g.target = h
	c.g.sx = sx
	switch h.Kind {
	case domain.KindImage:
		c.g.image, _ = c.doc.Image(h.ID)
		c.enter(StateResizing)
	case domain.KindText:
		c.g.text, _ = c.doc.Text(h.ID)
		c.g.textRect = c.doc.TextRect(c.g.text)
		c.enter(StateResizingText)
	}
}

func (c *Controller) startLine(dp vector.Pt, mods Modifiers) {
	anchor := dp
	if !mods.Alt() {
		page := c.doc.PageIndexOf(dp.Y)
		anchor, _ = vector.SnapPoint(dp, c.doc.PageRect(page), c.doc.SnapTargets(page, domain.None), c.cfg.SnapThreshold, vector.SnapBoth)
	}
	c.g.anchor, c.g.end = anchor, anchor
	c.enter(StateDrawingLine)
}

func (c *Controller) startEndpoint(end int) {
	h := c.doc.Selection()
	c.g.target = h
	c.g.line, _ = c.doc.Line(h.ID)
	c.g.endpoint = end
	c.enter(StateDraggingLineEndpoint)
}

func (c *Controller) placeText(dp vector.Pt) {
	id := c.doc.AddText(dp.X, dp.Y, "", c.cfg.DefaultFontSize, c.cfg.TextColor)
	c.doc.SetMode(document.ModeSelect)
	if t, ok := c.doc.Text(id); ok {
		c.openEdit(t, true)
	}
}

// drag moves the target by the pointer delta plus the snap correction. Alt
// disables snapping.
func (c *Controller) drag(cur vector.Pt, mods Modifiers) {
	d := vector.Pt{X: cur.X - c.g.press.X, Y: cur.Y - c.g.press.Y}
	if !c.g.began && d == (vector.Pt{}) {
		return
	}
	var bounds vector.Rect
	var top float64
	switch c.g.target.Kind {
	case domain.KindImage:
		bounds, top = c.g.image.VisualBounds(), c.g.image.Y
	case domain.KindText:
		bounds, top = c.g.textRect, c.g.text.Y
	case domain.KindLine:
		bounds, top = c.g.line.Bounds(), c.g.line.Top()
	}
	var guides []vector.GuideLine
	if !mods.Alt() {
		page := c.doc.PageIndexOf(top + d.Y)
		var corr vector.Pt
		corr, guides = vector.ComputeSmartGuides(bounds.Translate(d.X, d.Y), c.doc.PageRect(page),
			c.doc.SnapTargets(page, c.g.target), c.cfg.SnapThreshold)
		d.X += corr.X
		d.Y += corr.Y
	}
	c.touch()
	id := c.g.target.ID
	switch c.g.target.Kind {
	case domain.KindImage:
		c.doc.MoveImage(id, c.g.image.X+d.X, c.g.image.Y+d.Y)
	case domain.KindText:
		c.doc.MoveText(id, c.g.text.X+d.X, c.g.text.Y+d.Y)
	case domain.KindLine:
		l := c.g.line.Translated(d.X, d.Y)
		c.doc.SetLineEndpoints(id, l.P1(), l.P2())
	}
	c.doc.SetGuides(guides)
}

// resizeImage scales symmetrically about the pre-drag center: the horizontal
// pointer travel counts on both sides.
func (c *Controller) resizeImage(cur vector.Pt) {
	dx := cur.X - c.g.press.X
	if !c.g.began && dx == 0 {
		return
	}
	c.touch()
	c.doc.SetImageGeometry(c.g.target.ID, c.g.image.Center(), c.g.image.Width+2*c.g.sx*dx)
}

// resizeText scales the font size by the ratio of the new to the old text width.
func (c *Controller) resizeText(cur vector.Pt) {
	dx := cur.X - c.g.press.X
	if !c.g.began && dx == 0 {
		return
	}
	base := max(c.g.textRect.W, 1)
	ratio := max((base+dx)/base, 0)
	c.touch()
	c.doc.SetTextFontSize(c.g.target.ID, c.g.text.FontSize*ratio)
}

func (c *Controller) dragEndpoint(cur vector.Pt, mods Modifiers) {
	d := vector.Pt{X: cur.X - c.g.press.X, Y: cur.Y - c.g.press.Y}
	if !c.g.began && d == (vector.Pt{}) {
		return
	}
	anchor, moving := c.g.line.P1(), c.g.line.P2()
	if c.g.endpoint == 1 {
		anchor, moving = moving, anchor
	}
	moving = vector.Pt{X: moving.X + d.X, Y: moving.Y + d.Y}
	moving, c.g.magnet = c.constrain(anchor, moving, c.g.magnet, mods, c.g.target)
	c.touch()
	if c.g.endpoint == 1 {
		c.doc.SetLineEndpoints(c.g.target.ID, moving, anchor)
	} else {
		c.doc.SetLineEndpoints(c.g.target.ID, anchor, moving)
	}
}

// constrain applies line magnetism, then edge snapping on the axes the magnet left
// free, and publishes the guides.
func (c *Controller) constrain(anchor, p vector.Pt, st vector.MagnetState, mods Modifiers, exclude domain.Handle) (vector.Pt, vector.MagnetState) {
	p, st = vector.Magnetize(anchor, p, st, mods.Shift())
	if mods.Alt() {
		c.doc.ClearGuides()
		return p, st
	}
	axes := vector.SnapBoth
	switch st.Lock {
	case vector.LockHorizontal:
		axes = vector.SnapX
	case vector.LockVertical:
		axes = vector.SnapY
	}
	page := c.doc.PageIndexOf(p.Y)
	snapped, guides := vector.SnapPoint(p, c.doc.PageRect(page), c.doc.SnapTargets(page, exclude), c.cfg.SnapThreshold, axes)
	c.doc.SetGuides(guides)
	return snapped, st
}

// touch records the undo point on the first real change of a gesture.
func (c *Controller) touch() {
	if !c.g.began {
		c.doc.BeginEdit()
		c.g.began = true
	}
}

// finish ends a gesture. A gesture that recorded but left its target as it was
// is rolled back so it leaves no undo step.
func (c *Controller) finish() {
	c.doc.ClearGuides()
	if c.g.began && !c.targetChanged() {
		c.doc.Rollback()
	}
	c.reset()
}

func (c *Controller) reset() {
	from := c.state
	c.g = gesture{}
	c.state = StateIdle
	if from != StateIdle {
		c.log.Debug("gesture ended", slog.String("state", from.String()))
	}
	c.host.Invalidate()
}

func (c *Controller) enter(s State) {
	c.state = s
	c.log.Debug("gesture started", slog.String("state", s.String()), slog.String("target", c.g.target.String()))
	c.host.Invalidate()
}

func (c *Controller) targetChanged() bool {
	h := c.g.target
	switch h.Kind {
	case domain.KindImage:
		im, ok := c.doc.Image(h.ID)
		return !ok || im != c.g.image
	case domain.KindText:
		t, ok := c.doc.Text(h.ID)
		return !ok || t != c.g.text
	case domain.KindLine:
		l, ok := c.doc.Line(h.ID)
		return !ok || l != c.g.line
	}
	return false
}

func (c *Controller) openEdit(t domain.Text, fresh bool) {
	l := c.Layout()
	s := &EditSession{
		TextID:   t.ID,
		Fresh:    fresh,
		Original: t.Content,
		Rect:     l.RectToScreen(c.doc.TextRect(t)),
		FontSize: t.FontSize * l.Scale,
		Color:    t.Color,
	}
	c.edit = s
	c.log.Debug("text edit opened", slog.Uint64("id", uint64(t.ID)), slog.Bool("fresh", fresh))
	c.host.OpenTextEditor(*s)
}

func (c *Controller) closeEdit() {
	if c.edit == nil {
		return
	}
	c.finishEdit(c.host.CloseTextEditor())
}

// finishEdit applies the edit commit rules. A freshly placed text committed empty
// is rolled back entirely; its first content joins the placement's undo step.
func (c *Controller) finishEdit(content string) {
	s := c.edit
	c.edit = nil
	defer c.host.Invalidate()
	if !s.Fresh {
		c.doc.SetTextContent(s.TextID, content)
		return
	}
	if strings.TrimSpace(content) == "" {
		c.doc.Rollback()
		return
	}
	c.doc.SetTextDraft(s.TextID, content)
}
