/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import "strings"

// ChangeKind is a bit set describing what a mutation touched.
type ChangeKind uint8

const (
	ChangeContent ChangeKind = 1 << iota
	ChangeSelection
	ChangePages
	ChangeGuides
	ChangeMode
	ChangeDirty
)

var changeNames = []struct {
	k ChangeKind
	n string
}{
	{ChangeContent, "content"},
	{ChangeSelection, "selection"},
	{ChangePages, "pages"},
	{ChangeGuides, "guides"},
	{ChangeMode, "mode"},
	{ChangeDirty, "dirty"},
}

func (k ChangeKind) String() string {
	var parts []string
	for _, c := range changeNames {
		if k&c.k != 0 {
			parts = append(parts, c.n)
		}
	}
	return strings.Join(parts, "|")
}

// Change is delivered once per mutating call.
type Change struct {
	Kinds ChangeKind
}

func (c Change) Has(k ChangeKind) bool { return c.Kinds&k != 0 }

// Observer receives change notifications synchronously on the mutating goroutine.
type Observer interface {
	DocumentChanged(Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) DocumentChanged(c Change) { f(c) }

// Subscribe registers o and returns a function that removes it again.
func (m *Model) Subscribe(o Observer) (cancel func()) {
	id := m.nextObs
	m.nextObs++
	m.observers[id] = o
	return func() { delete(m.observers, id) }
}

func (m *Model) notify(c Change) {
	if c.Kinds == 0 {
		return
	}
	for _, o := range m.observers {
		o.DocumentChanged(c)
	}
}
