// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package ray implements the ray segment entity: one straight portion of
// a photon's path between a source, an interaction, or the edge of the
// scene, together with its termination bookkeeping.
package ray

import (
	"errors"
	"math"

	"github.com/galvanized/opticslab/vec"
)

// ErrInvalidRay is returned by New when a ray would be constructed with
// a non-finite origin, direction, or other numeric field.
var ErrInvalidRay = errors.New("ray: invalid (non-finite) field")

// PolarizationType enumerates the supported polarization states.
type PolarizationType int

const (
	Unpolarized PolarizationType = iota
	Linear
	Circular
)

func (p PolarizationType) String() string {
	switch p {
	case Linear:
		return "linear"
	case Circular:
		return "circular"
	default:
		return "unpolarized"
	}
}

// ParsePolarizationType is String's inverse, used by the scene
// serializer to restore a source's polarization from its JSON property
// value. Unrecognized strings map to Unpolarized.
func ParsePolarizationType(s string) PolarizationType {
	switch s {
	case "linear":
		return Linear
	case "circular":
		return Circular
	default:
		return Unpolarized
	}
}

// TerminationReason names why a ray segment stopped propagating.
type TerminationReason string

// The complete set of termination reasons a segment may carry. None is
// the zero value and is never a valid reason on a terminated segment
// (invariant 3).
const (
	None                       TerminationReason = ""
	LowIntensity               TerminationReason = "low_intensity"
	MaxBounces                 TerminationReason = "max_bounces"
	OutOfBounds                TerminationReason = "out_of_bounds"
	Blocked                    TerminationReason = "blocked"
	AbsorbedScreen             TerminationReason = "absorbed_screen"
	AbsorbedDetector           TerminationReason = "absorbed_detector"
	TIR                        TerminationReason = "tir"
	CapturedByFiber            TerminationReason = "captured_by_fiber"
	StuckInQueue               TerminationReason = "stuck_in_queue"
	InteractionError           TerminationReason = "interaction_error"
	SegmentEndAfterInteraction TerminationReason = "segment_end_after_interaction"
	UnimplementedComponent     TerminationReason = "unimplemented_component"
)

// Limits bundles the two global trace settings copied into every ray at
// construction time.
type Limits struct {
	MinIntensityThreshold float64
	MaxBounces            uint32
}

// Segment is one straight portion of a photon's path.
type Segment struct {
	Origin                vec.Vector
	Direction             vec.Vector // unit length; invariant.
	WavelengthNm          float64
	Intensity             float64
	Phase                 float64
	BouncesSoFar          uint32
	MediumRefractiveIndex float64
	SourceID              string
	PolarizationType      PolarizationType
	PolarizationAngleRad  float64
	IgnoreDecay           bool
	BeamWidth             float64
	History               []vec.Vector
	Terminated            bool
	EndReason             TerminationReason
	AnimateArrow          bool
	MinIntensityThreshold float64
	MaxBounces            uint32
}

// New constructs a ray segment. Direction need not already be unit
// length; it is normalized (unless it is the zero vector, which fails
// validation below since a zero direction cannot propagate). Non-finite
// numeric fields cause New to return ErrInvalidRay.
func New(origin, direction vec.Vector, wavelengthNm, intensity, phase float64, bouncesSoFar uint32,
	mediumN float64, sourceID string, pol PolarizationType, polAngleRad float64, ignoreDecay bool,
	historySoFar []vec.Vector, limits Limits) (*Segment, error) {

	dir := direction.Normalize()
	if !origin.IsFinite() || !direction.IsFinite() || dir.Eq(vec.Zero) ||
		math.IsNaN(wavelengthNm) || math.IsInf(wavelengthNm, 0) ||
		math.IsNaN(intensity) || math.IsInf(intensity, 0) ||
		math.IsNaN(phase) || math.IsInf(phase, 0) ||
		math.IsNaN(mediumN) || math.IsInf(mediumN, 0) {
		return nil, ErrInvalidRay
	}

	history := make([]vec.Vector, len(historySoFar), len(historySoFar)+4)
	copy(history, historySoFar)
	if len(history) == 0 {
		history = append(history, origin)
	}

	return &Segment{
		Origin:                origin,
		Direction:             dir,
		WavelengthNm:          wavelengthNm,
		Intensity:             intensity,
		Phase:                 phase,
		BouncesSoFar:          bouncesSoFar,
		MediumRefractiveIndex: mediumN,
		SourceID:              sourceID,
		PolarizationType:      pol,
		PolarizationAngleRad:  polAngleRad,
		IgnoreDecay:           ignoreDecay,
		History:               history,
		MinIntensityThreshold: limits.MinIntensityThreshold,
		MaxBounces:            limits.MaxBounces,
	}, nil
}

// historyMergeEpsilon is the distance within which a newly added history
// point is considered a duplicate of the last recorded point.
const historyMergeEpsilon = 1e-4

// AddHistoryPoint appends p to the segment's vertex history, unless p
// coincides with the last recorded point within historyMergeEpsilon.
func (s *Segment) AddHistoryPoint(p vec.Vector) {
	if n := len(s.History); n > 0 && s.History[n-1].DistanceTo(p) < historyMergeEpsilon {
		return
	}
	s.History = append(s.History, p)
}

// Terminate marks the segment terminated with reason. Idempotent: once
// terminated, later calls are no-ops so the first recorded reason wins.
func (s *Segment) Terminate(reason TerminationReason) {
	if s.Terminated {
		return
	}
	s.Terminated = true
	s.EndReason = reason
}

// ShouldTerminate reports whether the segment must stop propagating:
// already terminated, below the intensity floor, past the bounce cap,
// or carrying non-finite geometry. A max-bounces termination is
// recorded here even if the caller never calls Terminate explicitly,
// so a stopped ray always carries a reason.
func (s *Segment) ShouldTerminate() bool {
	if s.Terminated {
		return true
	}
	if s.Intensity < s.MinIntensityThreshold {
		s.Terminate(LowIntensity)
		return true
	}
	if s.BouncesSoFar >= s.MaxBounces {
		s.Terminate(MaxBounces)
		return true
	}
	if !s.Origin.IsFinite() || !s.Direction.IsFinite() {
		s.Terminate(OutOfBounds)
		return true
	}
	return false
}

// baseIntensity is the reference a ray's stroke dimming is relative to;
// callers pass the originating source's configured intensity.
//
// Color returns the ray's stroke color: its wavelength mapped to sRGB,
// dimmed by min(1, intensity/baseIntensity).
func (s *Segment) Color(baseIntensity float64) vec.RGBA {
	factor := 1.0
	if baseIntensity > 0 {
		factor = s.Intensity / baseIntensity
		if factor > 1 {
			factor = 1
		}
	}
	return vec.WavelengthToRGB(s.WavelengthNm).Dim(factor)
}

// Line width bounds in arbitrary render units.
const (
	MinLineWidth = 1.0
	MaxLineWidth = 6.0
)

// LineWidth maps the ray's intensity (relative to baseIntensity) to a
// stroke width in [MinLineWidth, MaxLineWidth], with a mild additional
// contribution from BeamWidth for Gaussian-annotated sources.
func (s *Segment) LineWidth(baseIntensity float64) float64 {
	ratio := 1.0
	if baseIntensity > 0 {
		ratio = s.Intensity / baseIntensity
	}
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	width := MinLineWidth + ratio*(MaxLineWidth-MinLineWidth)
	if s.BeamWidth > 0 {
		width += math.Min(s.BeamWidth*0.05, MaxLineWidth-MinLineWidth)
	}
	return width
}

// Successor builds a new ray segment carrying BouncesSoFar+1,
// inheriting SourceID, IgnoreDecay, and the parent's limits.
// The caller supplies the new origin,
// direction, wavelength, intensity, phase, medium index, polarization,
// and beam width; the successor's history is seeded with its origin
// only (the hit point, which the caller has already added to the
// parent via AddHistoryPoint), so it starts its own local history at
// the hit.
func (s *Segment) Successor(origin, direction vec.Vector, wavelengthNm, intensity, phase, mediumN float64,
	pol PolarizationType, polAngleRad, beamWidth float64) (*Segment, error) {

	limits := Limits{MinIntensityThreshold: s.MinIntensityThreshold, MaxBounces: s.MaxBounces}
	child, err := New(origin, direction, wavelengthNm, intensity, phase, s.BouncesSoFar+1,
		mediumN, s.SourceID, pol, polAngleRad, s.IgnoreDecay, nil, limits)
	if err != nil {
		return nil, err
	}
	child.BeamWidth = beamWidth
	return child, nil
}
