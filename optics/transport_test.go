// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"
	"testing"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

func modulatorTestRay(t *testing.T) *ray.Segment {
	t.Helper()
	in, err := ray.New(vec.New(-50, 0), vec.New(1, 0), 632.8, 1.0, 0, 0, 1.0, "src-1",
		ray.Unpolarized, 0, false, nil, ray.Limits{MinIntensityThreshold: 0.01, MaxBounces: 20})
	if err != nil {
		t.Fatal(err)
	}
	return in
}

func TestOpticalChopperGatesOnSimClock(t *testing.T) {
	chopper := NewOpticalChopper("chopper-1", vec.New(0, 0), math.Pi/2, 50, 1, 0.5)
	hit := Hit{Distance: 50, Point: vec.New(0, 0), Normal: vec.New(-1, 0)}

	// First half of the 1 Hz period: open.
	open := modulatorTestRay(t)
	successors, err := chopper.Interact(open, hit, NewTraceConfig(SimClock(0.25)))
	if err != nil {
		t.Fatal(err)
	}
	if len(successors) != 1 || successors[0].Intensity != open.Intensity {
		t.Fatalf("got %d successors in the open phase, want 1 unattenuated", len(successors))
	}

	// Second half: shutter closed, beam blocked.
	closed := modulatorTestRay(t)
	successors, err = chopper.Interact(closed, hit, NewTraceConfig(SimClock(0.75)))
	if err != nil {
		t.Fatal(err)
	}
	if len(successors) != 0 {
		t.Fatalf("got %d successors in the closed phase, want 0", len(successors))
	}
	if closed.EndReason != ray.Blocked {
		t.Errorf("got end reason %q, want %q", closed.EndReason, ray.Blocked)
	}
}

func TestVariableAttenuatorStaysWithinRange(t *testing.T) {
	att := NewVariableAttenuator("att-1", vec.New(0, 0), math.Pi/2, 50, 0.2, 1)
	hit := Hit{Distance: 50, Point: vec.New(0, 0), Normal: vec.New(-1, 0)}

	for _, clock := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9} {
		in := modulatorTestRay(t)
		successors, err := att.Interact(in, hit, NewTraceConfig(SimClock(clock)))
		if err != nil {
			t.Fatal(err)
		}
		if len(successors) != 1 {
			t.Fatalf("got %d successors at t=%v, want 1", len(successors), clock)
		}
		got := successors[0].Intensity
		if got < 0.2-1e-9 || got > 1+1e-9 {
			t.Errorf("got transmitted intensity %v at t=%v, want within [0.2, 1]", got, clock)
		}
	}
}

func TestPulsedLaserSourceDutyCycle(t *testing.T) {
	laser := NewPulsedLaserSource("pulsed-1", vec.New(0, 0), 0, 1, 0.5)

	on, err := laser.GenerateRays(NewTraceConfig(SimClock(0.25)))
	if err != nil {
		t.Fatal(err)
	}
	if len(on) != 1 {
		t.Fatalf("got %d rays during the pulse, want 1", len(on))
	}
	if on[0].Intensity != 1.0 {
		t.Errorf("got intensity %v during the pulse, want full intensity", on[0].Intensity)
	}

	off, err := laser.GenerateRays(NewTraceConfig(SimClock(0.75)))
	if err != nil {
		t.Fatal(err)
	}
	if len(off) != 1 {
		t.Fatalf("got %d rays between pulses, want 1", len(off))
	}
	if off[0].Intensity != 0 {
		t.Errorf("got intensity %v between pulses, want 0", off[0].Intensity)
	}
}

func TestFaradayIsolatorBlocksBackwardPropagation(t *testing.T) {
	iso := NewFaradayIsolator("iso-1", vec.New(0, 0), -math.Pi/2, 50, 0.95)
	hit := Hit{Distance: 50, Point: vec.New(0, 0), Normal: vec.New(-1, 0)}

	forward := modulatorTestRay(t)
	successors, err := iso.Interact(forward, hit, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(successors) != 1 || math.Abs(successors[0].Intensity-0.95) > 1e-9 {
		t.Fatalf("forward beam: got %d successors, want 1 at 0.95 intensity", len(successors))
	}

	backward, err := ray.New(vec.New(50, 0), vec.New(-1, 0), 632.8, 1.0, 0, 0, 1.0, "src-1",
		ray.Unpolarized, 0, false, nil, ray.Limits{MinIntensityThreshold: 0.01, MaxBounces: 20})
	if err != nil {
		t.Fatal(err)
	}
	successors, err = iso.Interact(backward, hit, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(successors) != 0 {
		t.Fatalf("backward beam: got %d successors, want 0", len(successors))
	}
	if backward.EndReason != ray.Blocked {
		t.Errorf("got end reason %q, want %q", backward.EndReason, ray.Blocked)
	}
}
