// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"
	"testing"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// segmentsWithReason filters completed segments by EndReason.
func segmentsWithReason(segs []*ray.Segment, reason ray.TerminationReason) []*ray.Segment {
	var out []*ray.Segment
	for _, s := range segs {
		if s.EndReason == reason {
			out = append(out, s)
		}
	}
	return out
}

// TestTracePlanarReflectionObeysLawOfReflection checks that a
// mirror reflects a beam incident at 45 degrees such that the angle of
// incidence equals the angle of reflection, and that the
// struck parent carries segment_end_after_interaction rather than a
// blocked mistermination.
func TestTracePlanarReflectionObeysLawOfReflection(t *testing.T) {
	scene := NewScene("Reflection")
	laser := NewLaserSource(scene.NextID("LaserSource"), vec.New(-100, 0), 0)
	scene.Add(laser)
	mirror := NewMirror(scene.NextID("Mirror"), vec.New(0, 0), math.Pi/4, 200)
	scene.Add(mirror)

	engine := NewTraceEngine()
	result, err := engine.Trace(scene, 1000, 1000, nil, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}

	parents := segmentsWithReason(result.CompletedPaths, ray.SegmentEndAfterInteraction)
	if len(parents) != 1 {
		t.Fatalf("got %d segments ending in segment_end_after_interaction, want 1", len(parents))
	}
	outbound := segmentsWithReason(result.CompletedPaths, ray.OutOfBounds)
	if len(outbound) != 1 {
		t.Fatalf("got %d segments ending out_of_bounds, want 1", len(outbound))
	}

	n := mirror.axis().Perp()
	want := reflect(laser.axis(), n)
	got := outbound[0].Direction
	if !got.Aeq(want, 1e-9) {
		t.Errorf("reflected direction %v does not obey the law of reflection, want %v", got, want)
	}
	if outbound[0].Intensity <= 0 || outbound[0].Intensity >= 1 {
		t.Errorf("got reflected intensity %v, want in (0,1) after mirror reflectivity loss", outbound[0].Intensity)
	}
}

// TestDielectricInteractTotalInternalReflection checks that a
// ray inside glass striking the exit face beyond the critical angle
// total-internally-reflects, producing exactly one successor and a
// parent terminated tir instead of the generic reason.
func TestDielectricInteractTotalInternalReflection(t *testing.T) {
	const n0 = 1.5
	const incidenceRad = 65 * math.Pi / 180 // > critical angle asin(1/1.5) =~ 41.8 deg

	normal := vec.New(0, 1)
	dir := vec.New(math.Cos(-math.Pi/2+incidenceRad), math.Sin(-math.Pi/2+incidenceRad))

	in, err := ray.New(vec.New(0, -10), dir, 589.3, 1.0, 0, 0, n0, "src-1",
		ray.Unpolarized, 0, false, nil, ray.Limits{MinIntensityThreshold: 0.01, MaxBounces: 20})
	if err != nil {
		t.Fatal(err)
	}
	hit := Hit{Distance: 10, Point: vec.New(0, 0), Normal: normal}

	successors, err := dielectricInteract(in, hit, n0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if in.EndReason != ray.TIR {
		t.Fatalf("got end reason %q, want %q", in.EndReason, ray.TIR)
	}
	if len(successors) != 1 {
		t.Fatalf("got %d successors, want 1 (TIR reflects only)", len(successors))
	}
	if successors[0].Intensity != in.Intensity {
		t.Errorf("got reflected intensity %v, want unattenuated %v", successors[0].Intensity, in.Intensity)
	}

	want := reflect(dir, normal)
	if !successors[0].Direction.Aeq(want, 1e-9) {
		t.Errorf("got TIR direction %v, want law-of-reflection direction %v", successors[0].Direction, want)
	}
}

// TestDielectricInteractRefractsBelowCriticalAngle covers the non-TIR
// branch: Snell's law holds between the incident and transmitted rays,
// and (with zero absorption) the transmitted and reflected intensities
// conserve the parent's intensity exactly.
func TestDielectricInteractRefractsBelowCriticalAngle(t *testing.T) {
	const n0 = 1.5
	const incidenceRad = 10 * math.Pi / 180

	normal := vec.New(0, 1)
	dir := vec.New(math.Cos(-math.Pi/2+incidenceRad), math.Sin(-math.Pi/2+incidenceRad))

	in, err := ray.New(vec.New(0, -10), dir, 589.3, 1.0, 0, 0, n0, "src-1",
		ray.Unpolarized, 0, false, nil, ray.Limits{MinIntensityThreshold: 0.01, MaxBounces: 20})
	if err != nil {
		t.Fatal(err)
	}
	hit := Hit{Distance: 10, Point: vec.New(0, 0), Normal: normal}

	successors, err := dielectricInteract(in, hit, n0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(successors) != 2 {
		t.Fatalf("got %d successors, want 2 (transmitted, reflected)", len(successors))
	}
	transmitted, reflected := successors[0], successors[1]

	cosThetaI := -normal.Dot(dir)
	cosThetaT := -normal.Dot(transmitted.Direction)
	if cosThetaT < 0 {
		cosThetaT = -cosThetaT
	}
	sinThetaI := math.Sqrt(1 - cosThetaI*cosThetaI)
	sinThetaT := math.Sqrt(1 - cosThetaT*cosThetaT)
	lhs, rhs := n0*sinThetaI, 1.0*sinThetaT
	if math.Abs(lhs-rhs) > 1e-9 {
		t.Errorf("Snell's law violated: n0*sin(thetaI)=%v, n2*sin(thetaT)=%v", lhs, rhs)
	}

	sum := transmitted.Intensity + reflected.Intensity
	if math.Abs(sum-in.Intensity) > 1e-9 {
		t.Errorf("got transmitted+reflected intensity %v, want conserved parent intensity %v", sum, in.Intensity)
	}
	if in.EndReason != ray.None {
		t.Errorf("dielectricInteract must not terminate the parent in the non-TIR branch, got %q", in.EndReason)
	}
}

// TestTraceThinLensConvergence checks that a fan of rays from
// a common object point converges, through an ideal thin lens, back to
// a common image point.
func TestTraceThinLensConvergence(t *testing.T) {
	scene := NewScene("Imaging")
	fan := NewFanSource(scene.NextID("FanSource"), vec.New(-200, 0), 0, 5, 4)
	scene.Add(fan)
	lens := NewThinLens(scene.NextID("ThinLens"), vec.New(0, 0), math.Pi/2, 200, 100)
	scene.Add(lens)

	engine := NewTraceEngine()
	result, err := engine.Trace(scene, 2000, 2000, nil, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}

	postLens := segmentsWithReason(result.CompletedPaths, ray.OutOfBounds)
	if len(postLens) != 5 {
		t.Fatalf("got %d post-lens segments, want 5", len(postLens))
	}

	const imagePlaneX = 200.0
	var ys []float64
	for _, seg := range postLens {
		if seg.Direction.X == 0 {
			t.Fatalf("post-lens ray travels parallel to the image plane: %v", seg.Direction)
		}
		tt := (imagePlaneX - seg.Origin.X) / seg.Direction.X
		ys = append(ys, seg.Origin.Y+seg.Direction.Y*tt)
	}
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if spread := maxY - minY; spread > 1e-3 {
		t.Errorf("fan did not converge at x=%v: intersection spread %v, want <= 1e-3 (ys=%v)", imagePlaneX, spread, ys)
	}
}

// TestTracePolarizerThenPBSAppliesMalusLaw checks that a
// linear polarizer followed by a polarizing beam splitter whose
// transmission axis is 45 degrees from the incoming polarization splits
// the beam 50/50 per Malus' law.
func TestTracePolarizerThenPBSAppliesMalusLaw(t *testing.T) {
	scene := NewScene("PBS")
	laser := NewLaserSource(scene.NextID("LaserSource"), vec.New(-200, 0), 0)
	if err := laser.SetProperty("polarization", "linear"); err != nil {
		t.Fatal(err)
	}
	if err := laser.SetProperty("polarizationAngleRad", 0.0); err != nil {
		t.Fatal(err)
	}
	scene.Add(laser)

	polarizer := NewPolarizer(scene.NextID("Polarizer"), vec.New(-100, 0), math.Pi/2, 50, 0)
	scene.Add(polarizer)

	pbs := NewPolarizingBeamSplitter(scene.NextID("BeamSplitter"), vec.New(0, 0), math.Pi/4, 80, 0.5)
	scene.Add(pbs)

	engine := NewTraceEngine()
	result, err := engine.Trace(scene, 1000, 1000, nil, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}

	final := segmentsWithReason(result.CompletedPaths, ray.OutOfBounds)
	if len(final) != 2 {
		t.Fatalf("got %d final segments past the PBS, want 2 (reflected, transmitted)", len(final))
	}
	for _, seg := range final {
		if math.Abs(seg.Intensity-0.5) > 1e-9 {
			t.Errorf("got final intensity %v, want 0.5 (Malus' law at 45 degrees)", seg.Intensity)
		}
	}
	sum := final[0].Intensity + final[1].Intensity
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("got total intensity %v past the PBS, want conserved 1.0", sum)
	}
}

// TestDiffractionGratingOrders checks that a normally incident
// beam splits into every diffraction order m in [-maxOrder, maxOrder]
// whose grating equation solution is physical, with intensity split
// equally across the surviving orders.
func TestDiffractionGratingOrders(t *testing.T) {
	grating := NewDiffractionGrating("grating-1", vec.New(0, 0), math.Pi/2, 100, 2, 2)

	in, err := ray.New(vec.New(-100, 0), vec.New(1, 0), 500, 1.0, 0, 0, 1.0, "src-1",
		ray.Unpolarized, 0, false, nil, ray.Limits{MinIntensityThreshold: 0.01, MaxBounces: 20})
	if err != nil {
		t.Fatal(err)
	}
	hit := Hit{Distance: 100, Point: vec.New(0, 0), Normal: vec.New(-1, 0)}

	successors, err := grating.Interact(in, hit, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(successors) != 5 {
		t.Fatalf("got %d surviving orders, want 5 (m = -2..2)", len(successors))
	}

	wantSin := []float64{-0.5, -0.25, 0, 0.25, 0.5}
	for i, s := range successors {
		gotSin := s.Direction.Dot(vec.New(0, 1))
		if math.Abs(gotSin-wantSin[i]) > 1e-9 {
			t.Errorf("order %d: got sin(theta)=%v, want %v", i-2, gotSin, wantSin[i])
		}
		if math.Abs(s.Intensity-0.2) > 1e-9 {
			t.Errorf("order %d: got intensity %v, want 1/5", i-2, s.Intensity)
		}
	}
}

// TestTraceFiberDeferral checks fiber deferral: a ray captured by a
// fiber's input facet in frame N terminates captured_by_fiber with no
// successor that frame; the fiber's output appears only once that
// frame's GeneratedRaysNextFrame is fed back in as frame N+1's
// initialActiveRays.
func TestTraceFiberDeferral(t *testing.T) {
	scene := NewScene("Fiber")
	laser := NewLaserSource(scene.NextID("LaserSource"), vec.New(-50, 0), 0)
	scene.Add(laser)
	fiber := NewOpticalFiber(scene.NextID("OpticalFiber"), vec.New(0, 0), math.Pi/2,
		vec.New(100, 50), math.Pi/4, 50, 0.2, 0.8, 0, 0)
	scene.Add(fiber)

	engine := NewTraceEngine()
	cfg := NewTraceConfig()

	frame1, err := engine.Trace(scene, 1000, 1000, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(frame1.CompletedPaths) != 1 {
		t.Fatalf("got %d completed segments in frame 1, want 1", len(frame1.CompletedPaths))
	}
	if frame1.CompletedPaths[0].EndReason != ray.CapturedByFiber {
		t.Fatalf("got end reason %q in frame 1, want %q", frame1.CompletedPaths[0].EndReason, ray.CapturedByFiber)
	}
	if len(frame1.GeneratedRaysNextFrame) != 1 {
		t.Fatalf("got %d rays generated for next frame, want 1", len(frame1.GeneratedRaysNextFrame))
	}

	frame2, err := engine.Trace(scene, 1000, 1000, frame1.GeneratedRaysNextFrame, cfg)
	if err != nil {
		t.Fatal(err)
	}

	var fromFiber *ray.Segment
	for _, seg := range frame2.CompletedPaths {
		if seg.SourceID == fiber.ID() {
			fromFiber = seg
		}
	}
	if fromFiber == nil {
		t.Fatalf("frame 2 has no completed segment sourced from the fiber's output (got %d total)", len(frame2.CompletedPaths))
	}
	if !fromFiber.Origin.Aeq(vec.New(100, 50), 1e-6) {
		t.Errorf("got fiber output origin %v, want %v", fromFiber.Origin, vec.New(100, 50))
	}
	const wantIntensity = 0.8 // normal incidence: full NA acceptance * intrinsicEfficiency * unit loss factor
	if math.Abs(fromFiber.Intensity-wantIntensity) > 1e-9 {
		t.Errorf("got fiber output intensity %v, want %v", fromFiber.Intensity, wantIntensity)
	}
}

// TestTraceEveryCompletedSegmentHasNonEmptyReason checks that every
// completed segment carries a termination reason, across a trace of
// the shared buildTestScene bench.
func TestTraceEveryCompletedSegmentHasNonEmptyReason(t *testing.T) {
	scene := buildTestScene()
	engine := NewTraceEngine()

	result, err := engine.Trace(scene, 400, 400, nil, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.CompletedPaths) == 0 {
		t.Fatal("expected at least one completed segment")
	}
	for i, seg := range result.CompletedPaths {
		if seg.EndReason == ray.None {
			t.Errorf("completed segment %d has no termination reason", i)
		}
	}
}

// TestTraceNonPolarizingBeamSplitterConservesIntensity checks that a
// non-polarizing split conserves total intensity across
// its two successors exactly (no coating loss is modeled for
// BeamSplitter).
func TestTraceNonPolarizingBeamSplitterConservesIntensity(t *testing.T) {
	scene := NewScene("Split")
	laser := NewLaserSource(scene.NextID("LaserSource"), vec.New(-100, 0), 0)
	scene.Add(laser)
	bs := NewBeamSplitter(scene.NextID("BeamSplitter"), vec.New(0, 0), math.Pi/4, 80, 0.3)
	scene.Add(bs)

	engine := NewTraceEngine()
	result, err := engine.Trace(scene, 1000, 1000, nil, NewTraceConfig())
	if err != nil {
		t.Fatal(err)
	}

	final := segmentsWithReason(result.CompletedPaths, ray.OutOfBounds)
	if len(final) != 2 {
		t.Fatalf("got %d final segments, want 2", len(final))
	}
	sum := final[0].Intensity + final[1].Intensity
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("got total intensity %v past the beam splitter, want conserved 1.0", sum)
	}
}
