/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package input

import (
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard is the text clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// SystemClipboard uses the platform clipboard (pbcopy, xclip/xsel, wl-clipboard
// or the Windows API).
type SystemClipboard struct{}

var (
	readAll  = clipboard.ReadAll
	writeAll = clipboard.WriteAll
)

// ReadText returns the clipboard text with Windows line endings normalized.
func (SystemClipboard) ReadText() (string, error) {
	s, err := readAll()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s, "\r\n", "\n"), nil
}

func (SystemClipboard) WriteText(s string) error { return writeAll(s) }

// Unsupported reports whether the platform has no clipboard tool installed.
func Unsupported() bool { return clipboard.Unsupported }

// MemoryClipboard keeps text in process; the UI falls back to it when the system
// clipboard is unsupported.
type MemoryClipboard struct {
	text string
}

func (m *MemoryClipboard) ReadText() (string, error) { return m.text, nil }

func (m *MemoryClipboard) WriteText(s string) error {
	m.text = s
	return nil
}
