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
	"sync"
	"testing"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager[string](Config{})
	m.Push("a")
	m.Push("b")
	if u, r := m.Stats(); u != 2 || r != 0 {
		t.Fatalf("expected 2 undo and 0 redo, got undo=%d redo=%d", u, r)
	}
	s, ok := m.Undo("c")
	if !ok || s != "b" {
		t.Fatalf("undo expected 'b', got ok=%v s=%q", ok, s)
	}
	s, ok = m.Redo("b")
	if !ok || s != "c" {
		t.Fatalf("redo expected 'c', got ok=%v s=%q", ok, s)
	}
	if u, r := m.Stats(); u != 2 || r != 0 {
		t.Fatalf("after redo expected undo=2 redo=0, got %d %d", u, r)
	}
}

func TestUndoExhaustedIsNoop(t *testing.T) {
	m := NewManager[int](Config{})
	m.Push(1)
	if _, ok := m.Undo(2); !ok {
		t.Fatalf("first undo should succeed")
	}
	if _, ok := m.Undo(1); ok {
		t.Fatalf("undo on empty stack must report false")
	}
	if u, r := m.Stats(); u != 0 || r != 1 {
		t.Fatalf("empty undo must not touch redo, got undo=%d redo=%d", u, r)
	}
	if _, ok := NewManager[int](Config{}).Redo(0); ok {
		t.Fatalf("redo on fresh manager must report false")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager[int](Config{})
	m.Push(1)
	m.Push(2)
	m.Undo(3)
	if !m.CanRedo() {
		t.Fatalf("expected redo entry after undo")
	}
	m.Push(4)
	if m.CanRedo() {
		t.Fatalf("push after undo must discard redo")
	}
}

func TestMaxDepthFIFO(t *testing.T) {
	m := NewManager[int](Config{MaxDepth: 3})
	for i := 1; i <= 10; i++ {
		m.Push(i)
	}
	if u, _ := m.Stats(); u != 3 {
		t.Fatalf("expected depth cap 3, got %d", u)
	}
	var got []int
	for {
		s, ok := m.Undo(0)
		if !ok {
			break
		}
		got = append(got, s)
	}
	if len(got) != 3 || got[0] != 10 || got[2] != 8 {
		t.Fatalf("expected newest entries 10,9,8 to survive, got %v", got)
	}
}

func TestDefaultDepth(t *testing.T) {
	m := NewManager[int](Config{})
	for i := 0; i < DefaultMaxDepth+7; i++ {
		m.Push(i)
	}
	if u, _ := m.Stats(); u != DefaultMaxDepth {
		t.Fatalf("expected default depth %d, got %d", DefaultMaxDepth, u)
	}
}

func TestDiscardRestoresDisplacedRedo(t *testing.T) {
	m := NewManager[string](Config{})
	m.Push("a")
	m.Push("b")
	m.Undo("c")
	m.Push("x")
	if s, ok := m.Discard(); !ok || s != "x" {
		t.Fatalf("discard expected 'x', got ok=%v s=%q", ok, s)
	}
	if u, r := m.Stats(); u != 1 || r != 1 {
		t.Fatalf("discard must bring back the redo entry the push displaced: undo=%d redo=%d", u, r)
	}
	if s, ok := m.Redo("b"); !ok || s != "c" {
		t.Fatalf("redo after discard expected 'c', got ok=%v s=%q", ok, s)
	}
	m.Undo("c")
	m.Discard()
	if u, r := m.Stats(); u != 0 || r != 1 {
		t.Fatalf("discard after undo must leave redo alone: undo=%d redo=%d", u, r)
	}
	m.Clear()
	if _, ok := m.Discard(); ok {
		t.Fatalf("discard on empty stack must report false")
	}
}

func TestDiscardRestoresCappedEntry(t *testing.T) {
	m := NewManager[int](Config{MaxDepth: 2})
	m.Push(1)
	m.Push(2)
	m.Push(3)
	m.Discard()
	var got []int
	for {
		s, ok := m.Undo(0)
		if !ok {
			break
		}
		got = append(got, s)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("expected 2,1 after discarding the capped push, got %v", got)
	}
}

func TestConcurrentPush(t *testing.T) {
	m := NewManager[int](Config{MaxDepth: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Push(n*100 + j)
			}
		}(i)
	}
	wg.Wait()
	if u, _ := m.Stats(); u != 400 {
		t.Fatalf("expected 400 entries, got %d", u)
	}
}
