// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
)

// trace.go implements the queue-driven segment processor: a
// bounded work queue drained once per tick, generalized from a 3D
// per-frame scene update shape to 2D ray segments, fiber deferral, and
// animation arbitration.

// maxTotalSegmentsPerFrame is the trace loop's safety bound against
// runaway successor generation.
const maxTotalSegmentsPerFrame = 100_000

// Animation arbitration thresholds.
const (
	bsSplitArrowThreshold      = 0.20
	minArrowIntensityThreshold = 0.05
)

// TraceResult is what one call to Trace produces.
type TraceResult struct {
	CompletedPaths         []*ray.Segment
	GeneratedRaysNextFrame []*ray.Segment
}

// TraceEngine pushes ray segments from a scene's sources through its
// components to completion.
type TraceEngine struct{}

// NewTraceEngine returns a TraceEngine. It is stateless; all per-frame
// state lives in TraceResult and the scene's own accumulators.
func NewTraceEngine() *TraceEngine { return &TraceEngine{} }

// Trace runs one full frame: resets accumulators, generates rays
// from enabled sources, appends initialActiveRays (the previous frame's
// deferred fiber outputs), drains the queue to completion, and collects
// newly captured fiber outputs for the next frame.
func (e *TraceEngine) Trace(scene *Scene, w, h float64, initialActiveRays []*ray.Segment, cfg TraceConfig) (TraceResult, error) {
	scene.ResetAccumulators()

	var completed []*ray.Segment
	var queue []*ray.Segment

	for _, src := range scene.Sources() {
		if !src.Enabled() {
			continue
		}
		// A source error has no ray yet to attribute it to, so it cannot
		// be isolated to a single ray and is fatal to the frame.
		rays, err := src.GenerateRays(cfg)
		if err != nil {
			return TraceResult{}, err
		}
		for _, r := range rays {
			if r.ShouldTerminate() {
				if r.EndReason == ray.LowIntensity {
					r.AnimateArrow = false
				}
				completed = append(completed, r)
				continue
			}
			queue = append(queue, r)
		}
	}
	queue = append(queue, initialActiveRays...)

	interactors := scene.Interactors()
	fibers := scene.Fibers()
	maxDim := math.Max(w, h)

	segmentsProcessed := 0
	for len(queue) > 0 && segmentsProcessed < maxTotalSegmentsPerFrame {
		segmentsProcessed++
		in := queue[0]
		queue = queue[1:]

		if in.BouncesSoFar >= in.MaxBounces {
			in.Terminate(ray.MaxBounces)
		}
		if in.ShouldTerminate() {
			completed = append(completed, in)
			continue
		}

		fiberHit, fiberOK, fiber := closestFiberHit(fibers, in)
		componentHit, componentOK, component := closestComponentHit(interactors, in)

		// At equal distance the component hit wins over the fiber
		// candidate; fiber only takes priority when strictly closer.
		if fiberOK && (!componentOK || fiberHit.Distance < componentHit.Distance) {
			if err := fiber.HandleInputInteraction(in, fiberHit); err != nil {
				in.Terminate(ray.InteractionError)
				completed = append(completed, in)
				continue
			}
			completed = append(completed, in)
			continue
		}

		if componentOK {
			in.AddHistoryPoint(componentHit.Point)
			successors, err := component.Interact(in, componentHit, cfg)
			if err != nil {
				in.Terminate(ray.InteractionError)
				completed = append(completed, in)
				continue
			}
			arbitrateAnimation(in, successors, component.Kind())
			for _, s := range successors {
				if s.ShouldTerminate() {
					completed = append(completed, s)
					continue
				}
				queue = append(queue, s)
			}
			if !in.Terminated {
				in.Terminate(ray.SegmentEndAfterInteraction)
			}
			completed = append(completed, in)
			continue
		}

		exitPoint := in.Origin.Add(in.Direction.Scale(2 * maxDim))
		in.AddHistoryPoint(exitPoint)
		in.Terminate(ray.OutOfBounds)
		completed = append(completed, in)
	}

	for len(queue) > 0 {
		in := queue[0]
		queue = queue[1:]
		in.Terminate(ray.StuckInQueue)
		completed = append(completed, in)
	}

	// Fiber output generation has no incoming ray of its own either; an
	// error here is likewise fatal to the frame rather than isolated.
	var nextFrame []*ray.Segment
	for _, fiber := range fibers {
		rays, err := fiber.GenerateOutputRays(cfg)
		if err != nil {
			return TraceResult{}, err
		}
		nextFrame = append(nextFrame, rays...)
	}

	return TraceResult{CompletedPaths: completed, GeneratedRaysNextFrame: nextFrame}, nil
}

// validHit discards self-intersections at or below hitEpsilon and any
// hit whose distance or point is non-finite: a NaN/Inf intersection is
// dropped rather than propagated, and a ray left with no other
// candidate simply runs out of bounds.
func validHit(h Hit) bool {
	if h.Distance <= hitEpsilon || math.IsNaN(h.Distance) || math.IsInf(h.Distance, 0) {
		return false
	}
	return h.Point.IsFinite()
}

// closestFiberHit finds the nearest valid check_input_coupling result
// across every fiber in scene order.
func closestFiberHit(fibers []FiberInteractor, in *ray.Segment) (Hit, bool, FiberInteractor) {
	var best Hit
	var bestFiber FiberInteractor
	found := false
	for _, f := range fibers {
		hit, ok := f.CheckInputCoupling(in.Origin, in.Direction)
		if !ok || !validHit(hit) {
			continue
		}
		if !found || hit.Distance < best.Distance {
			best, bestFiber, found = hit, f, true
		}
	}
	return best, found, bestFiber
}

// closestComponentHit finds the nearest valid intersection across every
// ordinary interactor in scene order, discarding a bounce-0 ray's hit on
// its own originating source and any hit at or below hitEpsilon. Ties
// at equal distance favor the first component in scene order.
func closestComponentHit(interactors []Interactor, in *ray.Segment) (Hit, bool, Interactor) {
	var best Hit
	var bestComponent Interactor
	found := false
	for _, c := range interactors {
		if in.BouncesSoFar == 0 && c.ID() == in.SourceID {
			continue
		}
		for _, hit := range c.Intersect(in.Origin, in.Direction) {
			if !validHit(hit) {
				continue
			}
			if !found || hit.Distance < best.Distance {
				best, bestComponent, found = hit, c, true
			}
		}
	}
	return best, found, bestComponent
}

// dielectricTransmittedRatio is the dielectric animation arbitration
// ratio: transmitted wins ties against reflected once it carries at
// least this fraction of the reflected successor's intensity.
const dielectricTransmittedRatio = 0.8

// isDielectricKind reports whether kind is one of the components whose
// two-successor split is transmitted/reflected rather than a beam
// splitter's reflected/transmitted arms.
func isDielectricKind(kind string) bool {
	return kind == "DielectricBlock" || kind == "Prism"
}

// arbitrateAnimation sets AnimateArrow on zero or more successors.
// If the parent was not animated, no successor is.
// kind is the interacting component's Kind(), used to distinguish a
// dielectric's transmitted/reflected split from a beam splitter's.
func arbitrateAnimation(parent *ray.Segment, successors []*ray.Segment, kind string) {
	if !parent.AnimateArrow || len(successors) == 0 {
		return
	}
	for _, s := range successors {
		s.AnimateArrow = false
	}

	if parent.EndReason == ray.TIR {
		// dielectricInteract's TIR branch returns exactly one successor,
		// the reflected ray.
		successors[0].AnimateArrow = true
		return
	}

	if len(successors) == 2 {
		threshold := bsSplitArrowThreshold * parent.Intensity

		if isDielectricKind(kind) {
			// dielectricInteract orders its two successors as
			// {transmitted, reflected}.
			transmitted, reflected := successors[0], successors[1]
			if transmitted.Intensity >= dielectricTransmittedRatio*reflected.Intensity &&
				transmitted.Intensity >= threshold && reflected.Intensity >= threshold {
				transmitted.AnimateArrow = true
				return
			}
			if transmitted.Intensity >= reflected.Intensity {
				transmitted.AnimateArrow = true
			} else {
				reflected.AnimateArrow = true
			}
			return
		}

		a, b := successors[0], successors[1]
		if a.Intensity >= threshold && b.Intensity >= threshold {
			a.AnimateArrow, b.AnimateArrow = true, true
			return
		}
		if a.Intensity >= b.Intensity {
			a.AnimateArrow = true
		} else {
			b.AnimateArrow = true
		}
		return
	}

	threshold := minArrowIntensityThreshold * parent.Intensity
	var strongest *ray.Segment
	for _, s := range successors {
		if strongest == nil || s.Intensity > strongest.Intensity {
			strongest = s
		}
	}
	if strongest != nil && strongest.Intensity >= threshold {
		strongest.AnimateArrow = true
	}
}
