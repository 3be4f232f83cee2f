/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"pagecomposer/internal/domain"
	"pagecomposer/internal/vector"
)

// State is the pointer state of the controller.
type State uint8

const (
	StateIdle State = iota
	StateDragging
	StateResizing
	StateDrawingLine
	StateDraggingLineEndpoint
	StateResizingText
	StateRotating
	StatePinching
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StateDrawingLine:
		return "drawing-line"
	case StateDraggingLineEndpoint:
		return "dragging-endpoint"
	case StateResizingText:
		return "resizing-text"
	case StateRotating:
		return "rotating"
	case StatePinching:
		return "pinching"
	default:
		return "idle"
	}
}

// Modifiers is the set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }

// Primary is Cmd on macOS and Ctrl elsewhere; either counts.
func (m Modifiers) Primary() bool { return m&(ModCtrl|ModSuper) != 0 }

// Key names follow fyne.KeyName so the UI can pass them through unchanged.
type Key string

const (
	KeyDelete       Key = "Delete"
	KeyBackspace    Key = "BackSpace"
	KeyEscape       Key = "Escape"
	KeyReturn       Key = "Return"
	KeyEnter        Key = "KP_Enter"
	KeyUp           Key = "Up"
	KeyDown         Key = "Down"
	KeyLeft         Key = "Left"
	KeyRight        Key = "Right"
	KeyLeftBracket  Key = "["
	KeyRightBracket Key = "]"
	KeyEqual        Key = "="
	KeyMinus        Key = "-"
	KeyD            Key = "D"
	KeyF            Key = "F"
	KeyG            Key = "G"
	KeyL            Key = "L"
	KeyR            Key = "R"
	KeyT            Key = "T"
	KeyY            Key = "Y"
	KeyZ            Key = "Z"
)

// Cursor is the pointer shape the UI should show.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorMove
	CursorResize
	CursorCrosshair
	CursorText
	CursorPointer
)

// EditSession is an open text editor anchored to a text item. Rect is in screen
// space and FontSize is scaled to the current layout.
type EditSession struct {
	TextID   domain.ID
	Fresh    bool
	Original string
	Rect     vector.Rect
	FontSize float64
	Color    domain.Color
}

// Host is implemented by the UI. Document changes arrive through document observers;
// Invalidate covers state only the controller holds (draft line, grid, gestures).
type Host interface {
	Invalidate()
	ScrollIntoView(docY float64)
	DetentFeedback()
	OpenTextEditor(s EditSession)
	// CloseTextEditor hides the editor and returns its current content.
	CloseTextEditor() string
}

// NopHost ignores every callback. CloseTextEditor returns an empty string.
type NopHost struct{}

func (NopHost) Invalidate()                {}
func (NopHost) ScrollIntoView(float64)     {}
func (NopHost) DetentFeedback()            {}
func (NopHost) OpenTextEditor(EditSession) {}
func (NopHost) CloseTextEditor() string    { return "" }

// Config holds the tunables of the controller. Sizes marked screen are in pixels,
// the rest in document units.
type Config struct {
	SnapThreshold   float64
	HandleSize      float64 // screen
	HitSlop         float64 // screen
	Padding         float64 // screen
	PageGap         float64 // screen
	DefaultFontSize float64
	TextColor       domain.Color
	LineColor       domain.Color
	LineWidth       float64
	GridSpacing     float64
	Grid            bool
	NudgeStep       float64
	NudgeLargeStep  float64
	ScaleStep       float64
}

func DefaultConfig() Config {
	return Config{
		SnapThreshold:   vector.DefaultSnapThreshold,
		HandleSize:      10,
		HitSlop:         6,
		Padding:         24,
		PageGap:         24,
		DefaultFontSize: 18,
		TextColor:       domain.Black,
		LineColor:       domain.Black,
		LineWidth:       2,
		GridSpacing:     20,
		NudgeStep:       1,
		NudgeLargeStep:  10,
		ScaleStep:       1.1,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SnapThreshold <= 0 {
		c.SnapThreshold = d.SnapThreshold
	}
	if c.HandleSize <= 0 {
		c.HandleSize = d.HandleSize
	}
	if c.HitSlop <= 0 {
		c.HitSlop = d.HitSlop
	}
	if c.Padding < 0 {
		c.Padding = d.Padding
	}
	if c.PageGap < 0 {
		c.PageGap = d.PageGap
	}
	if c.DefaultFontSize <= 0 {
		c.DefaultFontSize = d.DefaultFontSize
	}
	if c.TextColor == (domain.Color{}) {
		c.TextColor = d.TextColor
	}
	if c.LineColor == (domain.Color{}) {
		c.LineColor = d.LineColor
	}
	if c.LineWidth <= 0 {
		c.LineWidth = d.LineWidth
	}
	if c.GridSpacing <= 0 {
		c.GridSpacing = d.GridSpacing
	}
	if c.NudgeStep <= 0 {
		c.NudgeStep = d.NudgeStep
	}
	if c.NudgeLargeStep <= 0 {
		c.NudgeLargeStep = d.NudgeLargeStep
	}
	if c.ScaleStep <= 1 {
		c.ScaleStep = d.ScaleStep
	}
	return c
}
