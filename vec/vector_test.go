// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package vec

import (
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	v := New(1, 2).Add(New(3, 4))
	if want := New(4, 6); !v.Eq(want) {
		t.Errorf("got %v want %v", v, want)
	}
}

func TestSub(t *testing.T) {
	v := New(3, 4).Sub(New(1, 1))
	if want := New(2, 3); !v.Eq(want) {
		t.Errorf("got %v want %v", v, want)
	}
}

func TestDot(t *testing.T) {
	if d := New(1, 0).Dot(New(0, 1)); d != 0 {
		t.Errorf("perpendicular dot got %v want 0", d)
	}
	if d := New(2, 3).Dot(New(4, 5)); d != 23 {
		t.Errorf("got %v want 23", d)
	}
}

func TestCross(t *testing.T) {
	if c := New(1, 0).Cross(New(0, 1)); c != 1 {
		t.Errorf("got %v want 1", c)
	}
}

func TestMagnitude(t *testing.T) {
	if m := New(3, 4).Magnitude(); m != 5 {
		t.Errorf("got %v want 5", m)
	}
}

func TestNormalizeZero(t *testing.T) {
	v := New(0, 0).Normalize()
	if !v.Eq(Zero) {
		t.Errorf("normalize of zero vector got %v want zero sentinel", v)
	}
}

func TestNormalizeUnit(t *testing.T) {
	v := New(3, 4).Normalize()
	if !v.Aeq(New(0.6, 0.8), 1e-9) {
		t.Errorf("got %v want (0.6, 0.8)", v)
	}
	if math.Abs(v.Magnitude()-1) > 1e-9 {
		t.Errorf("normalized magnitude got %v want 1", v.Magnitude())
	}
}

func TestRotate(t *testing.T) {
	v := New(1, 0).Rotate(math.Pi / 2)
	if !v.Aeq(New(0, 1), 1e-9) {
		t.Errorf("got %v want (0, 1)", v)
	}
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(0)
	if !v.Aeq(New(1, 0), 1e-9) {
		t.Errorf("got %v want (1, 0)", v)
	}
}

func TestLerp(t *testing.T) {
	v := New(0, 0).Lerp(New(10, 10), 0.5)
	if !v.Eq(New(5, 5)) {
		t.Errorf("got %v want (5, 5)", v)
	}
}

func TestDistanceTo(t *testing.T) {
	if d := New(0, 0).DistanceTo(New(3, 4)); d != 5 {
		t.Errorf("got %v want 5", d)
	}
}

func TestReflect(t *testing.T) {
	// incoming ray travelling in +x and +y, mirror normal is +y (horizontal mirror).
	v := New(1, 1).Reflect(New(0, 1))
	if !v.Aeq(New(1, -1), 1e-9) {
		t.Errorf("got %v want (1, -1)", v)
	}
}

func TestIsFinite(t *testing.T) {
	if !New(1, 2).IsFinite() {
		t.Errorf("(1,2) should be finite")
	}
	if New(math.NaN(), 0).IsFinite() {
		t.Errorf("NaN vector should not be finite")
	}
	if New(math.Inf(1), 0).IsFinite() {
		t.Errorf("+Inf vector should not be finite")
	}
}
