package geometry

import "fmt"

// Shape selects how a pipe path is drawn between its endpoints.
type Shape int

const (
	// ShapeCurve is the default S-shaped cubic curve.
	ShapeCurve Shape = iota
	// ShapeStraight is a single straight segment.
	ShapeStraight
)

// String returns the persisted name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeCurve:
		return "curve"
	case ShapeStraight:
		return "straight"
	default:
		return "unknown"
	}
}

// ParseShape maps a persisted shape name back to a Shape. The empty string is
// the default curve.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "", "curve":
		return ShapeCurve, nil
	case "straight":
		return ShapeStraight, nil
	default:
		return ShapeCurve, fmt.Errorf("unknown path shape %q", s)
	}
}

const (
	// CurveBuffer is the vertical offset applied to both control points.
	CurveBuffer = 20.0
	// LineWidth is the rendered stroke width of a pipe.
	LineWidth = 5.0
	// PickWidth is the stroke width used for selecting a pipe.
	PickWidth = LineWidth + 5

	flattenSegments = 32
)

// Path is a pipe path. A straight path keeps its control points equal to its
// endpoints so that evaluation is uniform.
type Path struct {
	Shape    Shape `json:"shape"`
	Start    Point `json:"start"`
	Control1 Point `json:"control1"`
	Control2 Point `json:"control2"`
	End      Point `json:"end"`
}

// CurvePath builds the default cubic between start and end. Each control point
// sits half the horizontal span inward from its endpoint and CurveBuffer
// below it. The buffer is applied even when the horizontal span is zero, so
// vertical pipes still bend.
func CurvePath(start, end Point) Path {
	half := (end.X - start.X) / 2
	return Path{
		Shape:    ShapeCurve,
		Start:    start,
		Control1: Point{X: start.X + half, Y: start.Y + CurveBuffer},
		Control2: Point{X: end.X - half, Y: end.Y + CurveBuffer},
		End:      end,
	}
}

// StraightPath builds a straight segment between start and end.
func StraightPath(start, end Point) Path {
	return Path{
		Shape:    ShapeStraight,
		Start:    start,
		Control1: start,
		Control2: end,
		End:      end,
	}
}

// PathFor builds the path of the given shape.
func PathFor(shape Shape, start, end Point) Path {
	if shape == ShapeStraight {
		return StraightPath(start, end)
	}
	return CurvePath(start, end)
}

// At evaluates the path at parameter t in [0, 1].
func (p Path) At(t float64) Point {
	if p.Shape == ShapeStraight {
		return p.Start.Add(p.End.Sub(p.Start).Scale(t))
	}
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p.Start.X + b*p.Control1.X + c*p.Control2.X + d*p.End.X,
		Y: a*p.Start.Y + b*p.Control1.Y + c*p.Control2.Y + d*p.End.Y,
	}
}

// Flatten approximates the path with n+1 points. n < 1 uses the default
// resolution.
func (p Path) Flatten(n int) []Point {
	if p.Shape == ShapeStraight {
		return []Point{p.Start, p.End}
	}
	if n < 1 {
		n = flattenSegments
	}
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = p.At(float64(i) / float64(n))
	}
	return pts
}

// Length is the arc length of the flattened path. It is the rendered length,
// not a pipe's logical distance.
func (p Path) Length() float64 {
	pts := p.Flatten(0)
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// Bounds returns the bounding box of the flattened path.
func (p Path) Bounds() Rect {
	pts := p.Flatten(0)
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, pt := range pts[1:] {
		r = r.Union(pt)
	}
	return r
}

// Hit reports whether pt lies within the path stroked to width.
func (p Path) Hit(pt Point, width float64) bool {
	half := width / 2
	if !p.Bounds().Expand(half).Contains(pt) {
		return false
	}
	pts := p.Flatten(0)
	for i := 1; i < len(pts); i++ {
		if segmentDistance(pt, pts[i-1], pts[i]) <= half {
			return true
		}
	}
	return false
}
