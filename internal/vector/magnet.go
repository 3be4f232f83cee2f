/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Angle zones, in degrees, for magnetic line drawing. Inside MagnetZone the free
// coordinate is pulled toward the nearest axis, inside LockZone it is locked, and a
// lock only releases once the deviation exceeds EscapeZone.
const (
	MagnetZone = 12.0
	LockZone   = 3.0
	EscapeZone = 8.0
)

// Lock names the axis a segment is locked to.
type Lock uint8

const (
	LockNone Lock = iota
	// LockHorizontal keeps y equal to the anchor (0° or 180°).
	LockHorizontal
	// LockVertical keeps x equal to the anchor (90° or 270°).
	LockVertical
)

// MagnetState is carried between pointer moves of a single line gesture.
type MagnetState struct {
	Lock Lock
}

func (s MagnetState) Locked() bool { return s.Lock != LockNone }

// SegmentAngle returns the direction of a->b in degrees, [0, 360).
func SegmentAngle(a, b Pt) float64 {
	return NormalizeDegrees(Degrees(math.Atan2(b.Y-a.Y, b.X-a.X)))
}

// Magnetize applies line-angle magnetism to the free endpoint p of a segment anchored
// at anchor. force (the Shift modifier) locks to the nearer axis unconditionally.
func Magnetize(anchor, p Pt, st MagnetState, force bool) (Pt, MagnetState) {
	if p == anchor {
		return p, st
	}
	theta := SegmentAngle(anchor, p)
	dH := axisDeviation(theta, 0)
	dV := axisDeviation(theta, 90)

	nearest, d := LockHorizontal, dH
	if dV < dH {
		nearest, d = LockVertical, dV
	}
	if force {
		return lockTo(anchor, p, nearest), MagnetState{Lock: nearest}
	}

	if st.Locked() {
		held := dH
		if st.Lock == LockVertical {
			held = dV
		}
		if held <= EscapeZone {
			return lockTo(anchor, p, st.Lock), st
		}
	}

	switch {
	case d <= LockZone:
		return lockTo(anchor, p, nearest), MagnetState{Lock: nearest}
	case d <= MagnetZone:
		strength := (MagnetZone - d) / (MagnetZone - LockZone)
		return blend(anchor, p, nearest, strength), MagnetState{}
	}
	return p, MagnetState{}
}

// axisDeviation returns how far theta is from the axis through base and base+180.
func axisDeviation(theta, base float64) float64 {
	a := math.Abs(AngleDelta(base, theta))
	b := math.Abs(AngleDelta(base+180, theta))
	return min(a, b)
}

func lockTo(anchor, p Pt, l Lock) Pt {
	switch l {
	case LockHorizontal:
		return Pt{X: p.X, Y: anchor.Y}
	case LockVertical:
		return Pt{X: anchor.X, Y: p.Y}
	}
	return p
}

func blend(anchor, p Pt, l Lock, t float64) Pt {
	switch l {
	case LockHorizontal:
		return Pt{X: p.X, Y: p.Y + (anchor.Y-p.Y)*t}
	case LockVertical:
		return Pt{X: p.X + (anchor.X-p.X)*t, Y: p.Y}
	}
	return p
}
