/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"slices"
	"sync"
)

// DefaultMaxDepth is the undo capacity used when Config.MaxDepth is not set.
const DefaultMaxDepth = 50

// Config controls the depth cap.
type Config struct {
	// MaxDepth limits the number of undo entries; the oldest entry is dropped first.
	MaxDepth int
}

// Manager provides a linear undo/redo history of full state snapshots.
// Snapshots are opaque to the manager. It is safe for concurrent use.
type Manager[T any] struct {
	cfg  Config
	mu   sync.Mutex
	undo []T
	redo []T

	// what the newest Push displaced, so Discard can put it back
	displaced []T
	dropped   []T
	canReturn bool
}

func NewManager[T any](cfg Config) *Manager[T] {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &Manager[T]{cfg: cfg}
}

// Push records the state captured before a mutation. Any new change invalidates redo
// unless Discard takes the push back.
func (m *Manager[T]) Push(s T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displaced, m.canReturn = m.redo, true
	m.undo = append(m.undo, s)
	m.redo = nil
	m.dropped = m.enforceCapLocked()
}

// Undo pops the newest snapshot and stores current on the redo stack.
// It reports false, and leaves both stacks alone, when there is nothing to undo.
func (m *Manager[T]) Undo(current T) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if len(m.undo) == 0 {
		return zero, false
	}
	s := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = zero
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, current)
	m.forgetLocked()
	return s, true
}

// Redo is the mirror of Undo.
func (m *Manager[T]) Redo(current T) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if len(m.redo) == 0 {
		return zero, false
	}
	s := m.redo[len(m.redo)-1]
	m.redo[len(m.redo)-1] = zero
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, current)
	m.enforceCapLocked()
	m.forgetLocked()
	return s, true
}

// Discard drops the newest undo entry and returns it. When that entry came from the
// latest Push, the redo entries and the capped-off oldest entry it displaced come back,
// so a push followed by a discard leaves the history as it was.
func (m *Manager[T]) Discard() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if len(m.undo) == 0 {
		return zero, false
	}
	s := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = zero
	m.undo = m.undo[:len(m.undo)-1]
	if m.canReturn {
		m.undo = append(slices.Clone(m.dropped), m.undo...)
		m.redo = m.displaced
	}
	m.forgetLocked()
	return s, true
}

// Clear empties both stacks to free memory.
func (m *Manager[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
	m.forgetLocked()
}

// Stats returns current stack sizes for diagnostics.
func (m *Manager[T]) Stats() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

func (m *Manager[T]) CanUndo() bool {
	u, _ := m.Stats()
	return u > 0
}

func (m *Manager[T]) CanRedo() bool {
	_, r := m.Stats()
	return r > 0
}

// enforceCapLocked drops the oldest extras and returns them.
func (m *Manager[T]) enforceCapLocked() []T {
	over := len(m.undo) - m.cfg.MaxDepth
	if over <= 0 {
		return nil
	}
	dropped := slices.Clone(m.undo[:over])
	m.undo = append([]T(nil), m.undo[over:]...)
	return dropped
}

func (m *Manager[T]) forgetLocked() {
	m.displaced, m.dropped, m.canReturn = nil, nil, false
}
