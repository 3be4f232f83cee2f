/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestStepDetent_CaptureAndEscape(t *testing.T) {
	shown, st, entered := StepDetent(DetentState{}, 87.1)
	if !entered || !st.Snapped || shown != 90 {
		t.Fatalf("87.1° should enter the 90° detent, got shown=%v st=%+v entered=%v", shown, st, entered)
	}
	shown, st, entered = StepDetent(st, 97.9)
	if entered || !st.Snapped || shown != 90 {
		t.Fatalf("97.9° should stay in the detent without feedback, got shown=%v st=%+v entered=%v", shown, st, entered)
	}
	shown, st, entered = StepDetent(st, 98.1)
	if entered || st.Snapped || shown != 98.1 {
		t.Fatalf("98.1° should escape, got shown=%v st=%+v entered=%v", shown, st, entered)
	}
	shown, st, entered = StepDetent(st, 93.1)
	if entered || st.Snapped || shown != 93.1 {
		t.Fatalf("93.1° is outside capture once free, got shown=%v st=%+v", shown, st)
	}
	_, _, entered = StepDetent(st, 92.9)
	if !entered {
		t.Fatalf("92.9° should re-enter the detent")
	}
}

func TestStepDetent_WrapsAroundZero(t *testing.T) {
	shown, st, entered := StepDetent(DetentState{}, -2)
	if !entered || shown != 0 || st.Angle != 0 {
		t.Fatalf("-2° should snap to 0, got shown=%v st=%+v", shown, st)
	}
	shown, _, _ = StepDetent(st, 355)
	if shown != 0 {
		t.Fatalf("355° is within escape of 0, got %v", shown)
	}
}

func TestDetentAt(t *testing.T) {
	if st := DetentAt(270); !st.Snapped || st.Angle != 270 {
		t.Fatalf("expected seeded detent at 270, got %+v", st)
	}
	if st := DetentAt(45); st.Snapped {
		t.Fatalf("45° is not a detent")
	}
}
