// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ray

import (
	"math"
	"testing"

	"github.com/galvanized/opticslab/vec"
)

func defaultLimits() Limits {
	return Limits{MinIntensityThreshold: 0.01, MaxBounces: 10}
}

func TestNewRejectsNonFinite(t *testing.T) {
	bad := vec.New(math.NaN(), 0)
	if _, err := New(bad, vec.New(1, 0), 500, 1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits()); err != ErrInvalidRay {
		t.Fatalf("got err %v want ErrInvalidRay", err)
	}
}

func TestNewRejectsZeroDirection(t *testing.T) {
	if _, err := New(vec.Zero, vec.Zero, 500, 1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits()); err != ErrInvalidRay {
		t.Fatalf("got err %v want ErrInvalidRay", err)
	}
}

func TestNewNormalizesDirection(t *testing.T) {
	s, err := New(vec.Zero, vec.New(2, 0), 500, 1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.Direction.Magnitude()-1) > 1e-12 {
		t.Errorf("direction not normalized: %v", s.Direction)
	}
}

func TestNewSeedsHistoryWithOrigin(t *testing.T) {
	origin := vec.New(1, 2)
	s, err := New(origin, vec.New(1, 0), 500, 1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.History) != 1 || !s.History[0].Eq(origin) {
		t.Errorf("history[0] = %v, want origin %v", s.History, origin)
	}
}

func TestAddHistoryPointSkipsDuplicate(t *testing.T) {
	s, _ := New(vec.Zero, vec.New(1, 0), 500, 1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits())
	s.AddHistoryPoint(vec.New(1e-6, 0))
	if len(s.History) != 1 {
		t.Errorf("near-duplicate point should be skipped, got %d history points", len(s.History))
	}
	s.AddHistoryPoint(vec.New(5, 0))
	if len(s.History) != 2 {
		t.Errorf("distinct point should be appended, got %d history points", len(s.History))
	}
}

func TestTerminateIdempotent(t *testing.T) {
	s, _ := New(vec.Zero, vec.New(1, 0), 500, 1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits())
	s.Terminate(OutOfBounds)
	s.Terminate(Blocked)
	if s.EndReason != OutOfBounds {
		t.Errorf("got %v want first reason to stick (%v)", s.EndReason, OutOfBounds)
	}
}

func TestShouldTerminateAtIntensityFloor(t *testing.T) {
	limits := Limits{MinIntensityThreshold: 0.1, MaxBounces: 10}
	atFloor, _ := New(vec.Zero, vec.New(1, 0), 500, 0.1, 0, 0, 1, "s1", Unpolarized, 0, false, nil, limits)
	if atFloor.ShouldTerminate() {
		t.Errorf("intensity == threshold should not terminate")
	}
	belowFloor, _ := New(vec.Zero, vec.New(1, 0), 500, 0.099999, 0, 0, 1, "s1", Unpolarized, 0, false, nil, limits)
	if !belowFloor.ShouldTerminate() {
		t.Errorf("intensity < threshold should terminate")
	}
	if belowFloor.EndReason != LowIntensity {
		t.Errorf("got reason %v want %v", belowFloor.EndReason, LowIntensity)
	}
}

func TestShouldTerminateAtMaxBounces(t *testing.T) {
	limits := Limits{MinIntensityThreshold: 0.01, MaxBounces: 3}
	s, _ := New(vec.Zero, vec.New(1, 0), 500, 1, 0, 3, 1, "s1", Unpolarized, 0, false, nil, limits)
	if !s.ShouldTerminate() {
		t.Errorf("bouncesSoFar >= maxBounces should terminate")
	}
	if s.EndReason != MaxBounces {
		t.Errorf("got reason %v want %v", s.EndReason, MaxBounces)
	}
}

func TestSuccessorInheritsSourceAndBounceCount(t *testing.T) {
	parent, _ := New(vec.Zero, vec.New(1, 0), 500, 1, 0, 2, 1, "laser-1", Linear, 0.3, true, nil, defaultLimits())
	child, err := parent.Successor(vec.New(5, 0), vec.New(-1, 0), 500, 0.9, math.Pi, 1, Linear, 0.3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if child.SourceID != "laser-1" {
		t.Errorf("got source %q want inherited %q", child.SourceID, "laser-1")
	}
	if child.BouncesSoFar != 3 {
		t.Errorf("got bounces %d want 3", child.BouncesSoFar)
	}
	if !child.IgnoreDecay {
		t.Errorf("successor should inherit IgnoreDecay")
	}
}

func TestColorDimsWithIntensity(t *testing.T) {
	s, _ := New(vec.Zero, vec.New(1, 0), 632.8, 0.5, 0, 0, 1, "s1", Unpolarized, 0, false, nil, defaultLimits())
	full := s.Color(0.5)
	half := s.Color(1.0)
	if full.R < half.R {
		// not a strict requirement for every wavelength, but red channel
		// should never go up when dimming at 632.8nm (strongly red).
		t.Errorf("dimmer render should not have a brighter channel: full=%v half=%v", full, half)
	}
}
