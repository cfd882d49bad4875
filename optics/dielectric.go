// Copyright © 2024-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package optics

import (
	"math"

	"github.com/galvanized/opticslab/ray"
	"github.com/galvanized/opticslab/vec"
)

// dielectric.go implements the three dispersive/refractive variants:
// DielectricBlock, Prism (a dielectric with two non-parallel faces),
// and DiffractionGrating.

const airIndex = 1.0

// dielectricInteract implements the shared entering/exiting Snell's-law
// rule both DielectricBlock and Prism use: whichever side of the
// interface the ray currently occupies is inferred from whether its
// medium index is air or the glass, Fresnel splits the non-TIR case
// between a reflected and transmitted successor, and a transmitted ray
// leaving the glass is attenuated by exp(-absorption * path length)
// using only the most recent internal segment's length (absorption is
// attributed at the exit face, not accumulated per internal step).
func dielectricInteract(in *ray.Segment, hit Hit, n0, b, absorptionPerUnit float64) ([]*ray.Segment, error) {
	enteringFromAir := math.Abs(in.MediumRefractiveIndex-airIndex) < 1e-6
	glassN := refractiveIndex(n0, b, in.WavelengthNm)
	n1, n2 := glassN, airIndex
	if enteringFromAir {
		n1, n2 = airIndex, glassN
	}

	transmittedDir, ok := refract(in.Direction, hit.Normal, n1, n2)
	if !ok {
		// Total internal reflection: one reflected successor, parent
		// marked tir instead of the generic interaction termination.
		reflectedDir := reflect(in.Direction, hit.Normal)
		successor, err := in.Successor(hit.Point, reflectedDir, in.WavelengthNm, in.Intensity, in.Phase+math.Pi,
			n1, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
		in.Terminate(ray.TIR)
		if err != nil {
			return nil, err
		}
		return []*ray.Segment{successor}, nil
	}

	reflectance := 0.0
	if !in.IgnoreDecay {
		cosThetaI := -hit.Normal.Dot(in.Direction)
		cosThetaT := -hit.Normal.Dot(transmittedDir)
		if cosThetaT < 0 {
			cosThetaT = -cosThetaT
		}
		reflectance = fresnelReflectance(n1, n2, cosThetaI, cosThetaT)
	}

	transmittedIntensity := in.Intensity * (1 - reflectance)
	if !enteringFromAir && !in.IgnoreDecay && absorptionPerUnit > 0 {
		pathLength := in.Origin.DistanceTo(hit.Point)
		transmittedIntensity *= math.Exp(-absorptionPerUnit * pathLength)
	}

	transmitted, err := in.Successor(hit.Point, transmittedDir, in.WavelengthNm, transmittedIntensity, in.Phase,
		n2, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	if reflectance <= 0 {
		return []*ray.Segment{transmitted}, nil
	}
	reflected, err := in.Successor(hit.Point, reflect(in.Direction, hit.Normal), in.WavelengthNm, in.Intensity*reflectance,
		in.Phase+math.Pi, n1, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
	if err != nil {
		return nil, err
	}
	return []*ray.Segment{transmitted, reflected}, nil
}

// ============================================================================
// DielectricBlock

// DielectricBlock is an axis-aligned (relative to its own angleRad)
// rectangular slab of dispersive glass.
type DielectricBlock struct {
	Base
	width, height float64
	n0, b         float64
	absorption    float64
	glassName     string
}

// NewDielectricBlock constructs a block from explicit dispersion
// coefficients.
func NewDielectricBlock(id string, pos vec.Vector, angleRad, width, height, n0, b, absorption float64) *DielectricBlock {
	return &DielectricBlock{
		Base: newBase(id, "DielectricBlock", pos, angleRad), width: clampPositive(width, 1),
		height: clampPositive(height, 1), n0: n0, b: b, absorption: absorption,
	}
}

// NewDielectricBlockByGlassName constructs a block using a catalog glass
// (glass.go), letting the scene reference named glasses instead of raw
// dispersion coefficients.
func NewDielectricBlockByGlassName(id string, pos vec.Vector, angleRad, width, height float64, glassName string) (*DielectricBlock, bool) {
	g, ok := GlassByName(glassName)
	if !ok {
		return nil, false
	}
	blk := NewDielectricBlock(id, pos, angleRad, width, height, g.N0, g.B, g.Absorption)
	blk.glassName = glassName
	return blk, true
}

// blockFaceNames tag a DielectricBlock hit with which edge it struck,
// in corners() winding order.
var blockFaceNames = [4]string{"bottom", "right", "top", "left"}

func (d *DielectricBlock) corners() [4]vec.Vector {
	hw, hh := d.width/2, d.height/2
	t, n := d.axis(), d.normal()
	return [4]vec.Vector{
		d.pos.Add(t.Scale(-hw)).Add(n.Scale(-hh)),
		d.pos.Add(t.Scale(hw)).Add(n.Scale(-hh)),
		d.pos.Add(t.Scale(hw)).Add(n.Scale(hh)),
		d.pos.Add(t.Scale(-hw)).Add(n.Scale(hh)),
	}
}

func (d *DielectricBlock) Intersect(origin, dir vec.Vector) []Hit {
	corners := d.corners()
	var hits []Hit
	for i := 0; i < 4; i++ {
		if hit, ok := intersectSegmentPoints(origin, dir, corners[i], corners[(i+1)%4]); ok {
			hit.SurfaceID = blockFaceNames[i]
			hits = append(hits, hit)
		}
	}
	return hits
}

func (d *DielectricBlock) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	return dielectricInteract(in, hit, d.n0, d.b, d.absorption)
}

func (d *DielectricBlock) GetProperties() *Properties {
	p := NewProperties()
	p.Set("width", PropertyDescriptor{Value: d.width, Label: "Width", Type: PropNumber, Min: numPtr(1)})
	p.Set("height", PropertyDescriptor{Value: d.height, Label: "Height", Type: PropNumber, Min: numPtr(1)})
	p.Set("n0", PropertyDescriptor{Value: d.n0, Label: "n0", Type: PropNumber, Min: numPtr(1)})
	p.Set("b", PropertyDescriptor{Value: d.b, Label: "Dispersion B", Type: PropNumber})
	p.Set("absorption", PropertyDescriptor{Value: d.absorption, Label: "Absorption (1/unit)", Type: PropNumber, Min: numPtr(0)})
	p.Set("glassName", PropertyDescriptor{Value: d.glassName, Label: "Glass", Type: PropSelect, Options: GlassNames()})
	return p
}

func (d *DielectricBlock) SetProperty(name string, value any) error {
	switch name {
	case "width":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(d.kind, name)
		}
		d.width = clampPositive(v, 1)
	case "height":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(d.kind, name)
		}
		d.height = clampPositive(v, 1)
	case "n0":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(d.kind, name)
		}
		d.n0 = v
	case "b":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(d.kind, name)
		}
		d.b = v
	case "absorption":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(d.kind, name)
		}
		d.absorption = v
	case "glassName":
		glassName, ok := toString(value)
		if !ok {
			return errUnknownProperty(d.kind, "glassName")
		}
		g, found := GlassByName(glassName)
		if !found {
			return errUnknownProperty(d.kind, "glassName")
		}
		d.glassName, d.n0, d.b, d.absorption = glassName, g.N0, g.B, g.Absorption
	default:
		return errUnknownProperty(d.kind, name)
	}
	return nil
}

func (d *DielectricBlock) ToJSON() map[string]any {
	return map[string]any{
		"width": d.width, "height": d.height, "n0": d.n0, "b": d.b,
		"absorption": d.absorption, "glassName": d.glassName,
	}
}

func (d *DielectricBlock) ContainsPoint(p vec.Vector) bool {
	local := p.Sub(d.pos)
	return math.Abs(local.Dot(d.axis())) <= d.width/2 && math.Abs(local.Dot(d.normal())) <= d.height/2
}

func (d *DielectricBlock) BoundingBox() (vec.Vector, vec.Vector) {
	corners := d.corners()
	min, max := corners[0], corners[0]
	for _, c := range corners[1:] {
		min = vec.New(math.Min(min.X, c.X), math.Min(min.Y, c.Y))
		max = vec.New(math.Max(max.X, c.X), math.Max(max.Y, c.Y))
	}
	return min, max
}

// ============================================================================
// Prism

// Prism is a triangular dielectric with two non-parallel refracting
// faces and a base, sharing DielectricBlock's Snell/Fresnel interaction
// rule.
type Prism struct {
	Base
	size         float64
	apexAngleRad float64
	n0, b        float64
	absorption   float64
}

// NewPrism constructs a symmetric triangular prism with the given base
// size and apex angle.
func NewPrism(id string, pos vec.Vector, angleRad, size, apexAngleRad, n0, b, absorption float64) *Prism {
	return &Prism{
		Base: newBase(id, "Prism", pos, angleRad), size: clampPositive(size, 1),
		apexAngleRad: apexAngleRad, n0: n0, b: b, absorption: absorption,
	}
}

// prismFaceNames tag a Prism hit with which face it struck, in
// vertices() winding order.
var prismFaceNames = [3]string{"base", "right", "left"}

func (pr *Prism) vertices() [3]vec.Vector {
	t, n := pr.axis(), pr.normal()
	half := pr.size / 2
	height := half / math.Tan(pr.apexAngleRad/2)
	return [3]vec.Vector{
		pr.pos.Add(t.Scale(-half)),
		pr.pos.Add(t.Scale(half)),
		pr.pos.Add(n.Scale(height)),
	}
}

func (pr *Prism) Intersect(origin, dir vec.Vector) []Hit {
	v := pr.vertices()
	var hits []Hit
	for i := 0; i < 3; i++ {
		if hit, ok := intersectSegmentPoints(origin, dir, v[i], v[(i+1)%3]); ok {
			hit.SurfaceID = prismFaceNames[i]
			hits = append(hits, hit)
		}
	}
	return hits
}

func (pr *Prism) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	return dielectricInteract(in, hit, pr.n0, pr.b, pr.absorption)
}

func (pr *Prism) GetProperties() *Properties {
	p := NewProperties()
	p.Set("size", PropertyDescriptor{Value: pr.size, Label: "Base Size", Type: PropNumber, Min: numPtr(1)})
	p.Set("apexAngleRad", PropertyDescriptor{Value: pr.apexAngleRad, Label: "Apex Angle (rad)", Type: PropNumber})
	p.Set("n0", PropertyDescriptor{Value: pr.n0, Label: "n0", Type: PropNumber, Min: numPtr(1)})
	p.Set("b", PropertyDescriptor{Value: pr.b, Label: "Dispersion B", Type: PropNumber})
	p.Set("absorption", PropertyDescriptor{Value: pr.absorption, Label: "Absorption (1/unit)", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (pr *Prism) SetProperty(name string, value any) error {
	switch name {
	case "size":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(pr.kind, name)
		}
		pr.size = clampPositive(v, 1)
	case "apexAngleRad":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(pr.kind, name)
		}
		pr.apexAngleRad = v
	case "n0":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(pr.kind, name)
		}
		pr.n0 = v
	case "b":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(pr.kind, name)
		}
		pr.b = v
	case "absorption":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(pr.kind, name)
		}
		pr.absorption = v
	default:
		return errUnknownProperty(pr.kind, name)
	}
	return nil
}

func (pr *Prism) ToJSON() map[string]any {
	return map[string]any{
		"size": pr.size, "apexAngleRad": pr.apexAngleRad,
		"n0": pr.n0, "b": pr.b, "absorption": pr.absorption,
	}
}

func (pr *Prism) ContainsPoint(p vec.Vector) bool { return p.DistanceTo(pr.pos) <= pr.size }
func (pr *Prism) BoundingBox() (vec.Vector, vec.Vector) {
	v := pr.vertices()
	min, max := v[0], v[0]
	for _, c := range v[1:] {
		min = vec.New(math.Min(min.X, c.X), math.Min(min.Y, c.Y))
		max = vec.New(math.Max(max.X, c.X), math.Max(max.Y, c.Y))
	}
	return min, max
}

// ============================================================================
// DiffractionGrating

// DiffractionGrating is planar, producing one successor per surviving
// order m in [-maxOrder, +maxOrder] satisfying sin(theta_m) = sin(theta_i)
// + m*wavelength/grooveSpacing, intensity split uniformly across
// the surviving orders.
type DiffractionGrating struct {
	planarAperture
	grooveSpacingUm float64
	maxOrder        uint32
}

// NewDiffractionGrating constructs a grating with groove spacing in
// micrometers.
func NewDiffractionGrating(id string, pos vec.Vector, angleRad, aperture, grooveSpacingUm float64, maxOrder uint32) *DiffractionGrating {
	return &DiffractionGrating{
		planarAperture:  newPlanarAperture(id, "DiffractionGrating", pos, angleRad, clampPositive(aperture, 10)),
		grooveSpacingUm: grooveSpacingUm, maxOrder: maxOrder,
	}
}

func (g *DiffractionGrating) Interact(in *ray.Segment, hit Hit, cfg TraceConfig) ([]*ray.Segment, error) {
	forward := lensForward(g.normal(), in.Direction)
	tangent := forward.Perp()
	sinThetaI := in.Direction.Dot(tangent)
	wavelengthUm := in.WavelengthNm / 1000.0

	type order struct {
		sinThetaM float64
	}
	var surviving []order
	for m := -int(g.maxOrder); m <= int(g.maxOrder); m++ {
		sinThetaM := sinThetaI + float64(m)*wavelengthUm/g.grooveSpacingUm
		if math.Abs(sinThetaM) <= 1 {
			surviving = append(surviving, order{sinThetaM: sinThetaM})
		}
	}
	if len(surviving) == 0 {
		return nil, nil
	}
	perOrder := in.Intensity / float64(len(surviving))
	successors := make([]*ray.Segment, 0, len(surviving))
	for _, o := range surviving {
		thetaM := math.Asin(o.sinThetaM)
		dir := forward.Rotate(thetaM)
		successor, err := in.Successor(hit.Point, dir, in.WavelengthNm, perOrder, in.Phase,
			in.MediumRefractiveIndex, in.PolarizationType, in.PolarizationAngleRad, in.BeamWidth)
		if err != nil {
			return nil, err
		}
		successors = append(successors, successor)
	}
	return successors, nil
}

func (g *DiffractionGrating) GetProperties() *Properties {
	p := NewProperties()
	p.Set("aperture", PropertyDescriptor{Value: g.aperture, Label: "Aperture", Type: PropNumber, Min: numPtr(1)})
	p.Set("grooveSpacingUm", PropertyDescriptor{Value: g.grooveSpacingUm, Label: "Groove Spacing (um)", Type: PropNumber, Min: numPtr(0.01)})
	p.Set("maxOrder", PropertyDescriptor{Value: g.maxOrder, Label: "Max Order", Type: PropNumber, Min: numPtr(0)})
	return p
}

func (g *DiffractionGrating) SetProperty(name string, value any) error {
	switch name {
	case "aperture":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(g.kind, name)
		}
		g.aperture = clampPositive(v, 10)
	case "grooveSpacingUm":
		v, ok := toFloat(value)
		if !ok {
			return errUnknownProperty(g.kind, name)
		}
		g.grooveSpacingUm = v
	case "maxOrder":
		v, ok := toFloat(value)
		if !ok || v < 0 {
			return errUnknownProperty(g.kind, name)
		}
		g.maxOrder = uint32(v)
	default:
		return errUnknownProperty(g.kind, name)
	}
	return nil
}

func (g *DiffractionGrating) ToJSON() map[string]any {
	return map[string]any{"aperture": g.aperture, "grooveSpacingUm": g.grooveSpacingUm, "maxOrder": g.maxOrder}
}
