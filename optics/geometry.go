// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/vec"
)

// geometry.go collects the handful of ray/shape intersection routines
// shared by several component variants, generalized from a 3D
// ray-plane/ray-sphere cast style to 2D and from a single first-hit
// result to the Hit type this package shares across components.

// orientAgainst flips n so that it points against dir (the convention
// Hit.Normal uses throughout).
func orientAgainst(n, dir vec.Vector) vec.Vector {
	if n.Dot(dir) > 0 {
		return n.Neg()
	}
	return n
}

// intersectPlaneSegment casts (origin, dir) against the finite line
// segment centered at center, running along tangent for ±halfLength on
// each side. tangent must be a unit vector.
func intersectPlaneSegment(origin, dir, center, tangent vec.Vector, halfLength float64) (Hit, bool) {
	normal := tangent.Perp()
	denom := dir.Dot(normal)
	if math.Abs(denom) < 1e-12 {
		return Hit{}, false
	}
	t := center.Sub(origin).Dot(normal) / denom
	if t <= hitEpsilon {
		return Hit{}, false
	}
	point := origin.Add(dir.Scale(t))
	proj := point.Sub(center).Dot(tangent)
	if math.Abs(proj) > halfLength {
		return Hit{}, false
	}
	return Hit{
		Distance: t,
		Point:    point,
		Normal:   orientAgainst(normal, dir),
		Extra:    map[string]any{"tangentOffset": proj},
	}, true
}

// intersectDisk casts (origin, dir) against the flat disk of radius
// centered at center and lying in the plane whose normal is tangent.Perp().
// Extra carries "radialDistance" for components like RingMirror that
// mask by how far from center the hit landed.
func intersectDisk(origin, dir, center, tangent vec.Vector, radius float64) (Hit, bool) {
	hit, ok := intersectPlaneSegment(origin, dir, center, tangent, radius)
	if !ok {
		return Hit{}, false
	}
	r := hit.Point.DistanceTo(center)
	if r > radius {
		return Hit{}, false
	}
	hit.Extra["radialDistance"] = r
	return hit, true
}

// intersectCircle returns both real roots (ordered, smallest first) of
// the ray against the circle of radius centered at center, or ok=false
// if the ray misses entirely.
func intersectCircle(origin, dir, center vec.Vector, radius float64) (t0, t1 float64, ok bool) {
	oc := origin.Sub(center)
	b := 2 * dir.Dot(oc)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - 4*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	t0 = (-b - sq) / 2
	t1 = (-b + sq) / 2
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

// intersectSphericalArc casts against the arc of a circle of the given
// (signed) radius whose vertex sits at vertexPos with face direction
// faceNormal (unit), masking hits whose angle subtended from the center
// of curvature, measured from the vertex direction, exceeds
// halfApertureRad.
//
// radius > 0 curves the surface away from faceNormal (concave toward
// faceNormal, like a concave mirror); radius < 0 curves it the other way.
func intersectSphericalArc(origin, dir, vertexPos, faceNormal vec.Vector, radius, halfApertureRad float64) (Hit, bool) {
	if math.Abs(radius) < 1e-9 {
		return Hit{}, false
	}
	center := vertexPos.Add(faceNormal.Scale(radius))
	t0, t1, ok := intersectCircle(origin, dir, center, math.Abs(radius))
	if !ok {
		return Hit{}, false
	}
	vertexDir := vertexPos.Sub(center).Normalize()
	tryRoot := func(t float64) (Hit, bool) {
		if t <= hitEpsilon {
			return Hit{}, false
		}
		point := origin.Add(dir.Scale(t))
		radial := point.Sub(center).Normalize()
		if vertexDir.Dot(radial) < math.Cos(halfApertureRad) {
			return Hit{}, false
		}
		normal := orientAgainst(radial, dir)
		return Hit{Distance: t, Point: point, Normal: normal}, true
	}
	if h, ok := tryRoot(t0); ok {
		return h, true
	}
	if h, ok := tryRoot(t1); ok {
		return h, true
	}
	return Hit{}, false
}

// intersectParabola casts against a parabolic arc with vertex at
// vertexPos, axis direction faceNormal (the direction the concave side
// opens away from) and tangent direction tangent (unit, perpendicular to
// faceNormal), defined in local (v, u) coordinates by u = -v^2/(4*focal),
// restricted to |v| <= halfWidth. Grounded on the same closed-form
// quadratic approach as intersectSphericalArc, specialized to a parabola
// instead of a circle.
func intersectParabola(origin, dir, vertexPos, faceNormal, tangent vec.Vector, focal, halfWidth float64) (Hit, bool) {
	if math.Abs(focal) < 1e-9 {
		return Hit{}, false
	}
	rel := origin.Sub(vertexPos)
	ox, oy := rel.Dot(tangent), rel.Dot(faceNormal)
	dx, dy := dir.Dot(tangent), dir.Dot(faceNormal)

	a := dx * dx
	b := 2*ox*dx + 4*focal*dy
	c := ox*ox + 4*focal*oy

	var roots []float64
	if math.Abs(a) < 1e-12 {
		if math.Abs(b) > 1e-12 {
			roots = []float64{-c / b}
		}
	} else {
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := math.Sqrt(disc)
			roots = []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)}
		}
	}
	if len(roots) == 2 && roots[0] > roots[1] {
		roots[0], roots[1] = roots[1], roots[0]
	}

	for _, t := range roots {
		if t <= hitEpsilon {
			continue
		}
		v := ox + dx*t
		if math.Abs(v) > halfWidth {
			continue
		}
		point := origin.Add(dir.Scale(t))
		tangentDir := tangent.Sub(faceNormal.Scale(v / (2 * focal))).Normalize()
		normal := orientAgainst(tangentDir.Perp(), dir)
		return Hit{Distance: t, Point: point, Normal: normal, Extra: map[string]any{"tangentOffset": v}}, true
	}
	return Hit{}, false
}

// intersectSegmentPoints casts (origin, dir) against the finite segment
// running from p1 to p2, used by polygonal shapes (Prism) whose edges
// aren't naturally expressed as a center + tangent + half-length.
func intersectSegmentPoints(origin, dir, p1, p2 vec.Vector) (Hit, bool) {
	tangent := p2.Sub(p1)
	length := tangent.Magnitude()
	if length < 1e-9 {
		return Hit{}, false
	}
	tangent = tangent.Scale(1 / length)
	center := p1.Lerp(p2, 0.5)
	return intersectPlaneSegment(origin, dir, center, tangent, length/2)
}

// refract computes the Snell's-law-refracted direction of unit incident
// direction i crossing an interface with unit normal n (oriented
// opposite i) from a medium of index n1 into one of index n2. ok is
// false on total internal reflection (sin^2(theta_t) > 1).
func refract(i, n vec.Vector, n1, n2 float64) (vec.Vector, bool) {
	eta := n1 / n2
	cosThetaI := -n.Dot(i)
	sin2ThetaT := eta * eta * (1 - cosThetaI*cosThetaI)
	if sin2ThetaT > 1 {
		return vec.Zero, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	return i.Scale(eta).Add(n.Scale(eta*cosThetaI - cosThetaT)), true
}

// fresnelReflectance returns the unpolarized Fresnel reflectance for
// light crossing from index n1 to n2 at incidence angle whose cosine is
// cosThetaI, given the transmitted angle's cosine cosThetaT.
func fresnelReflectance(n1, n2, cosThetaI, cosThetaT float64) float64 {
	rs := (n1*cosThetaI - n2*cosThetaT) / (n1*cosThetaI + n2*cosThetaT)
	rp := (n1*cosThetaT - n2*cosThetaI) / (n1*cosThetaT + n2*cosThetaI)
	return 0.5 * (rs*rs + rp*rp)
}

// reflect returns I reflected about unit normal N: R = I - 2(I.N)N.
func reflect(i, n vec.Vector) vec.Vector {
	return i.Sub(n.Scale(2 * i.Dot(n)))
}

// clampPositive returns max(min, v).
func clampPositive(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

// lensForward picks the optical-axis direction (the component's normal,
// oriented so it points the way dir is generally traveling) used by thin
// lens and grating refraction math to decompose a ray into an
// along-axis height and an angle from the axis.
func lensForward(normal, dir vec.Vector) vec.Vector {
	if normal.Dot(dir) < 0 {
		return normal.Neg()
	}
	return normal
}

// thinLensDirection applies the ideal lens law: a ray crossing
// the lens plane at tangential height y, with incoming direction dir
// decomposed against forward (the optical axis) and its perpendicular
// tangent, emerges with its slope u/v (the tangent of its angle to the
// axis) reduced by y/focalLength, so every parallel ray meets at the
// focal point; the angle is optionally perturbed by sphericalCoeff*y^2
// for a simple spherical-aberration term.
func thinLensDirection(dir, forward vec.Vector, y, focalLength, sphericalCoeff float64) vec.Vector {
	tangent := forward.Perp()
	u, v := dir.Dot(tangent), dir.Dot(forward)
	newAngle := math.Atan(u/v - y/focalLength)
	if sphericalCoeff != 0 {
		newAngle += sphericalCoeff * y * y
	}
	return forward.Rotate(newAngle)
}
