// Package spline builds Catmull-Rom curves through ordered control points and
// sweeps 2D profiles along them.
package spline

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrTooFewPoints = errors.New("spline: at least two control points are required")

type CurveType int

const (
	// Centripetal uses knot spacing of |Δp|^0.5. It never forms cusps or
	// self-intersections within a segment.
	Centripetal CurveType = iota
	// Chordal uses knot spacing of |Δp|.
	Chordal
	// Uniform is the classic Catmull-Rom scheme scaled by Tension.
	Uniform
)

func (t CurveType) String() string {
	switch t {
	case Centripetal:
		return "centripetal"
	case Chordal:
		return "chordal"
	case Uniform:
		return "catmullrom"
	}
	return fmt.Sprintf("CurveType(%d)", int(t))
}

// ParseCurveType accepts the names produced by CurveType.String, plus
// "uniform" as an alias for the tensioned scheme.
func ParseCurveType(name string) (CurveType, error) {
	switch name {
	case "", "centripetal":
		return Centripetal, nil
	case "chordal":
		return Chordal, nil
	case "catmullrom", "uniform":
		return Uniform, nil
	}
	return 0, fmt.Errorf("spline: unknown curve type %q", name)
}

const DefaultTension = 0.5

type Option func(*Curve)

func WithType(t CurveType) Option {
	return func(c *Curve) { c.kind = t }
}

func WithTension(tension float32) Option {
	return func(c *Curve) { c.tension = tension }
}

// Closed makes the curve loop back to its first point.
func Closed(closed bool) Option {
	return func(c *Curve) { c.closed = closed }
}

// Curve is an immutable Catmull-Rom spline. The parameter t in [0, 1] is
// spread evenly across segments, not across arc length.
type Curve struct {
	points  []mgl32.Vec3
	kind    CurveType
	tension float32
	closed  bool
}

func New(points []mgl32.Vec3, opts ...Option) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}

	c := &Curve{
		points:  append([]mgl32.Vec3(nil), points...),
		kind:    Centripetal,
		tension: DefaultTension,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Curve) Type() CurveType { return c.kind }
func (c *Curve) Len() int        { return len(c.points) }
func (c *Curve) IsClosed() bool  { return c.closed }

// ControlPoints returns a copy of the points the curve was built from.
func (c *Curve) ControlPoints() []mgl32.Vec3 {
	return append([]mgl32.Vec3(nil), c.points...)
}

// Point evaluates the curve at t. Values outside [0, 1] are clamped.
func (c *Curve) Point(t float32) mgl32.Vec3 {
	px, py, pz, w := c.segment(t)
	return mgl32.Vec3{px.at(w), py.at(w), pz.at(w)}
}

// Tangent returns the normalized first derivative at t.
func (c *Curve) Tangent(t float32) mgl32.Vec3 {
	px, py, pz, w := c.segment(t)
	d := mgl32.Vec3{px.slope(w), py.slope(w), pz.slope(w)}
	if d.Len() < 1e-9 {
		// Coincident control points; fall back to the chord.
		lo := c.Point(t - 1e-3)
		hi := c.Point(t + 1e-3)
		d = hi.Sub(lo)
		if d.Len() < 1e-9 {
			return mgl32.Vec3{0, 0, -1}
		}
	}
	return d.Normalize()
}

// Samples returns exactly m points at t = i/(m-1). m below 2 is raised to 2.
func (c *Curve) Samples(m int) []mgl32.Vec3 {
	if m < 2 {
		m = 2
	}
	out := make([]mgl32.Vec3, m)
	last := float32(m - 1)
	for i := range out {
		out[i] = c.Point(float32(i) / last)
	}
	return out
}

func (c *Curve) segment(t float32) (px, py, pz cubic, weight float32) {
	if t != t { // NaN
		t = 0
	}
	t = mgl32.Clamp(t, 0, 1)

	pts := c.points
	l := len(pts)
	span := l - 1
	if c.closed {
		span = l
	}

	p := float32(span) * t
	idx := int(math.Floor(float64(p)))
	weight = p - float32(idx)

	if c.closed {
		idx %= l
	} else if idx >= l-1 {
		idx = l - 2
		weight = 1
	}

	var p0, p3 mgl32.Vec3
	if c.closed || idx > 0 {
		p0 = pts[(idx-1+l)%l]
	} else {
		p0 = pts[0].Mul(2).Sub(pts[1])
	}
	p1 := pts[idx%l]
	p2 := pts[(idx+1)%l]
	if c.closed || idx+2 < l {
		p3 = pts[(idx+2)%l]
	} else {
		p3 = pts[l-1].Mul(2).Sub(pts[l-2])
	}

	switch c.kind {
	case Centripetal, Chordal:
		exp := 0.25
		if c.kind == Chordal {
			exp = 0.5
		}
		dt0 := float32(math.Pow(float64(distSq(p0, p1)), exp))
		dt1 := float32(math.Pow(float64(distSq(p1, p2)), exp))
		dt2 := float32(math.Pow(float64(distSq(p2, p3)), exp))

		if dt1 < 1e-4 {
			dt1 = 1
		}
		if dt0 < 1e-4 {
			dt0 = dt1
		}
		if dt2 < 1e-4 {
			dt2 = dt1
		}

		px = nonUniform(p0[0], p1[0], p2[0], p3[0], dt0, dt1, dt2)
		py = nonUniform(p0[1], p1[1], p2[1], p3[1], dt0, dt1, dt2)
		pz = nonUniform(p0[2], p1[2], p2[2], p3[2], dt0, dt1, dt2)
	default:
		px = tensioned(p0[0], p1[0], p2[0], p3[0], c.tension)
		py = tensioned(p0[1], p1[1], p2[1], p3[1], c.tension)
		pz = tensioned(p0[2], p1[2], p2[2], p3[2], c.tension)
	}
	return px, py, pz, weight
}

func distSq(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// cubic is a Hermite segment c0 + c1·t + c2·t² + c3·t³ over t in [0, 1].
type cubic struct {
	c0, c1, c2, c3 float32
}

func hermite(x0, x1, t0, t1 float32) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func tensioned(x0, x1, x2, x3, tension float32) cubic {
	return hermite(x1, x2, tension*(x2-x0), tension*(x3-x1))
}

func nonUniform(x0, x1, x2, x3, dt0, dt1, dt2 float32) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2

	// rescale tangents for parametrization in [0,1]
	t1 *= dt1
	t2 *= dt1

	return hermite(x1, x2, t1, t2)
}

func (p cubic) at(t float32) float32 {
	t2 := t * t
	return p.c0 + p.c1*t + p.c2*t2 + p.c3*t2*t
}

func (p cubic) slope(t float32) float32 {
	return p.c1 + 2*p.c2*t + 3*p.c3*t*t
}
