/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Rotation detents for continuous rotate gestures.
const (
	DetentCapture = 3.0
	DetentEscape  = 8.0
)

var detentAngles = [...]float64{0, 90, 180, 270}

// DetentState is either free or snapped to one of the right angles.
type DetentState struct {
	Snapped bool
	Angle   float64
}

// DetentAt seeds a gesture: an angle already sitting on a detent starts snapped, so
// the first frame does not report a fresh entry.
func DetentAt(angle float64) DetentState {
	angle = NormalizeDegrees(angle)
	for _, a := range detentAngles {
		if math.Abs(AngleDelta(a, angle)) < 1e-9 {
			return DetentState{Snapped: true, Angle: a}
		}
	}
	return DetentState{}
}

// StepDetent advances the detent machine with the raw gesture angle. It returns the
// angle to display, the next state and whether a detent was entered on this step.
func StepDetent(st DetentState, raw float64) (float64, DetentState, bool) {
	raw = NormalizeDegrees(raw)
	if st.Snapped {
		if math.Abs(AngleDelta(st.Angle, raw)) <= DetentEscape {
			return st.Angle, st, false
		}
		st = DetentState{}
	}
	for _, a := range detentAngles {
		if math.Abs(AngleDelta(a, raw)) <= DetentCapture {
			return a, DetentState{Snapped: true, Angle: a}, true
		}
	}
	return raw, st, false
}
