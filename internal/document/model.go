/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document owns the scene of a page composition session: the ordered entity
// lists of every page, the page format, the selection and the undo history.
// All mutations go through Model; it is meant to be driven from a single goroutine.
package document

import (
	"errors"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"pagecomposer/internal/domain"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/textlayout"
	"pagecomposer/internal/undo"
	"pagecomposer/internal/vector"
)

// ErrInvalidBitmap is returned when an image cannot be placed; the model is unchanged.
var ErrInvalidBitmap = errors.New("invalid bitmap")

// Mode is the tool the pointer currently acts with.
type Mode uint8

const (
	ModeSelect Mode = iota
	ModePlaceText
	ModeDrawLine
)

func (m Mode) String() string {
	switch m {
	case ModePlaceText:
		return "place-text"
	case ModeDrawLine:
		return "draw-line"
	default:
		return "select"
	}
}

// Record tells AddPage whether to push an undo snapshot.
type Record bool

const (
	WithoutUndo Record = false
	WithUndo    Record = true
)

// Snapshot is a deep copy of everything undo restores. Bitmaps are shared.
type Snapshot struct {
	Images     []domain.Image
	Texts      []domain.Text
	Lines      []domain.Line
	NumPages   int
	PageSize   domain.PageSize
	Background domain.Color
}

// Options configure a new Model. Zero values fall back to A4, white, depth 50,
// the basic measurer and the component logger.
type Options struct {
	PageSize   domain.PageSize
	Background domain.Color
	UndoDepth  int
	Measurer   textlayout.Measurer
	Logger     *slog.Logger
}

type Model struct {
	images []domain.Image
	texts  []domain.Text
	lines  []domain.Line

	numPages   int
	page       domain.PageSize
	background domain.Color

	selection domain.Handle
	mode      Mode
	guides    []vector.GuideLine

	history *undo.Manager[Snapshot]
	dirty   bool
	nextID  domain.ID
	session uuid.UUID

	// dirty as it was at the newest record, for Rollback
	recordDirty bool

	observers map[int]Observer
	nextObs   int

	measurer textlayout.Measurer
	log      *slog.Logger
}

func New(opts Options) *Model {
	if opts.PageSize.W <= 0 || opts.PageSize.H <= 0 {
		opts.PageSize = domain.A4
	}
	if opts.Background == (domain.Color{}) {
		opts.Background = domain.White
	}
	if opts.Measurer == nil {
		opts.Measurer = textlayout.BasicMeasurer{}
	}
	sid := uuid.New()
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("document")
	}
	return &Model{
		numPages:   1,
		page:       opts.PageSize,
		background: opts.Background,
		history:    undo.NewManager[Snapshot](undo.Config{MaxDepth: opts.UndoDepth}),
		session:    sid,
		observers:  make(map[int]Observer),
		measurer:   opts.Measurer,
		log:        l.With(slog.String("session", sid.String())),
	}
}

func (m *Model) SessionID() uuid.UUID          { return m.session }
func (m *Model) Measurer() textlayout.Measurer { return m.measurer }
func (m *Model) PageCount() int                { return m.numPages }
func (m *Model) PageSize() domain.PageSize     { return m.page }
func (m *Model) Background() domain.Color      { return m.background }
func (m *Model) Selection() domain.Handle      { return m.selection }
func (m *Model) Mode() Mode                    { return m.mode }
func (m *Model) Dirty() bool                   { return m.dirty }

func (m *Model) History() *undo.Manager[Snapshot] { return m.history }

// Images returns a copy of the image list in z-order (last is topmost).
func (m *Model) Images() []domain.Image { return slices.Clone(m.images) }
func (m *Model) Texts() []domain.Text   { return slices.Clone(m.texts) }
func (m *Model) Lines() []domain.Line   { return slices.Clone(m.lines) }

func (m *Model) Image(id domain.ID) (domain.Image, bool) {
	if i := m.imageIndex(id); i >= 0 {
		return m.images[i], true
	}
	return domain.Image{}, false
}

func (m *Model) Text(id domain.ID) (domain.Text, bool) {
	if i := m.textIndex(id); i >= 0 {
		return m.texts[i], true
	}
	return domain.Text{}, false
}

func (m *Model) Line(id domain.ID) (domain.Line, bool) {
	if i := m.lineIndex(id); i >= 0 {
		return m.lines[i], true
	}
	return domain.Line{}, false
}

// Exists reports whether h refers to a live entity.
func (m *Model) Exists(h domain.Handle) bool {
	switch h.Kind {
	case domain.KindImage:
		return m.imageIndex(h.ID) >= 0
	case domain.KindText:
		return m.textIndex(h.ID) >= 0
	case domain.KindLine:
		return m.lineIndex(h.ID) >= 0
	}
	return false
}

// TextBlock lays the text out with the model's measurer. Nothing is cached.
func (m *Model) TextBlock(t domain.Text) textlayout.Block {
	return m.measurer.Layout(t.Content, t.FontSize)
}

func (m *Model) TextRect(t domain.Text) vector.Rect {
	b := m.TextBlock(t)
	return vector.R(t.X, t.Y, b.Width, b.Height)
}

// Bounds returns the visual bounding box of any entity.
func (m *Model) Bounds(h domain.Handle) (vector.Rect, bool) {
	switch h.Kind {
	case domain.KindImage:
		if im, ok := m.Image(h.ID); ok {
			return im.VisualBounds(), true
		}
	case domain.KindText:
		if t, ok := m.Text(h.ID); ok {
			return m.TextRect(t), true
		}
	case domain.KindLine:
		if l, ok := m.Line(h.ID); ok {
			return l.Bounds(), true
		}
	}
	return vector.Rect{}, false
}

// Top is the y an entity's page is derived from.
func (m *Model) Top(h domain.Handle) (float64, bool) {
	switch h.Kind {
	case domain.KindImage:
		if im, ok := m.Image(h.ID); ok {
			return im.Y, true
		}
	case domain.KindText:
		if t, ok := m.Text(h.ID); ok {
			return t.Y, true
		}
	case domain.KindLine:
		if l, ok := m.Line(h.ID); ok {
			return l.Top(), true
		}
	}
	return 0, false
}

// Snapshot captures the current state for undo or export.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Images:     slices.Clone(m.images),
		Texts:      slices.Clone(m.texts),
		Lines:      slices.Clone(m.lines),
		NumPages:   m.numPages,
		PageSize:   m.page,
		Background: m.background,
	}
}

func (m *Model) restore(s Snapshot) {
	m.images = slices.Clone(s.Images)
	m.texts = slices.Clone(s.Texts)
	m.lines = slices.Clone(s.Lines)
	m.numPages = max(s.NumPages, 1)
	m.page = s.PageSize
	m.background = s.Background
	if !m.Exists(m.selection) {
		m.selection = domain.None
	}
	m.guides = nil
}

// record pushes the pre-mutation state onto the undo stack.
func (m *Model) record() {
	m.history.Push(m.Snapshot())
	m.recordDirty = m.dirty
}

// Undo restores the newest snapshot. It reports false when the history is empty.
func (m *Model) Undo() bool {
	s, ok := m.history.Undo(m.Snapshot())
	if !ok {
		return false
	}
	m.restore(s)
	m.log.Debug("undo")
	m.changed(ChangeContent | ChangePages | ChangeSelection | ChangeGuides)
	return true
}

func (m *Model) Redo() bool {
	s, ok := m.history.Redo(m.Snapshot())
	if !ok {
		return false
	}
	m.restore(s)
	m.log.Debug("redo")
	m.changed(ChangeContent | ChangePages | ChangeSelection | ChangeGuides)
	return true
}

// Rollback reverts to the newest snapshot and forgets it. The history and the
// dirty flag return to what they were before that snapshot was recorded.
func (m *Model) Rollback() bool {
	s, ok := m.history.Discard()
	if !ok {
		return false
	}
	m.restore(s)
	m.log.Debug("rollback")
	kinds := ChangeContent | ChangePages | ChangeSelection | ChangeGuides
	if m.dirty != m.recordDirty {
		m.dirty = m.recordDirty
		kinds |= ChangeDirty
	}
	m.notify(Change{Kinds: kinds})
	return true
}

// MarkExported clears the unsaved-changes flag after a successful export.
func (m *Model) MarkExported() {
	if !m.dirty {
		return
	}
	m.dirty = false
	m.notify(Change{Kinds: ChangeDirty})
}

// changed marks the model dirty when content or pages changed and notifies observers.
func (m *Model) changed(kinds ChangeKind) {
	if kinds&(ChangeContent|ChangePages) != 0 && !m.dirty {
		m.dirty = true
		kinds |= ChangeDirty
	}
	m.notify(Change{Kinds: kinds})
}

func (m *Model) newID() domain.ID {
	m.nextID++
	return m.nextID
}

func (m *Model) imageIndex(id domain.ID) int {
	return slices.IndexFunc(m.images, func(im domain.Image) bool { return im.ID == id })
}

func (m *Model) textIndex(id domain.ID) int {
	return slices.IndexFunc(m.texts, func(t domain.Text) bool { return t.ID == id })
}

func (m *Model) lineIndex(id domain.ID) int {
	return slices.IndexFunc(m.lines, func(l domain.Line) bool { return l.ID == id })
}

// PageRect is page i in document space.
func (m *Model) PageRect(i int) vector.Rect {
	return vector.R(0, float64(i)*m.page.H, m.page.W, m.page.H)
}

// PageIndexOf maps a document y to its page, clamped to the existing pages.
func (m *Model) PageIndexOf(y float64) int {
	i := int(math.Floor(y / m.page.H))
	return min(max(i, 0), m.numPages-1)
}
