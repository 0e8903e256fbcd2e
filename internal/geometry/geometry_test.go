package geometry

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPortPosition(t *testing.T) {
	origin := Pt(100, 300)

	tests := []struct {
		index int
		want  Point
	}{
		{0, Pt(157.5, 290)},
		{1, Pt(157.5, 367.5)},
		{2, Pt(90, 330)},
		{3, Pt(225, 330)},
	}

	for _, tt := range tests {
		got, ok := PortPosition(origin, tt.index)
		if !ok {
			t.Fatalf("PortPosition(%d) reported out of range", tt.index)
		}
		if got != tt.want {
			t.Errorf("PortPosition(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}

	t.Run("rejects out of range index", func(t *testing.T) {
		for _, i := range []int{-1, 4, 99} {
			if _, ok := PortPosition(origin, i); ok {
				t.Errorf("PortPosition(%d) should be out of range", i)
			}
		}
	})
}

func TestPortHit(t *testing.T) {
	pos := Pt(57.5, -10)

	if !PortHit(pos, Pt(62.5, -5)) {
		t.Error("expected marker center to hit")
	}
	if !PortHit(pos, Pt(57.5, -5)) {
		t.Error("expected left edge of marker to hit")
	}
	if PortHit(pos, pos) {
		t.Error("corner of bounding square lies outside the circular marker")
	}
	if PortHit(pos, Pt(80, 0)) {
		t.Error("expected distant point to miss")
	}
}

func TestDistance(t *testing.T) {
	t.Run("scenario ports", func(t *testing.T) {
		d := Distance(Pt(57.5, -10), Pt(90, 330))
		if math.Abs(d-341.55) > 0.01 {
			t.Errorf("Distance = %f, want ~341.55", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := Pt(-3, 4), Pt(12, -7.5)
		if Distance(a, b) != Distance(b, a) {
			t.Error("expected Distance to be symmetric")
		}
	})

	t.Run("zero for identical points", func(t *testing.T) {
		if d := Distance(Pt(1, 1), Pt(1, 1)); d != 0 {
			t.Errorf("Distance = %f, want 0", d)
		}
	})
}

func TestCurvePath(t *testing.T) {
	t.Run("control points use half span plus buffer", func(t *testing.T) {
		p := CurvePath(Pt(0, 0), Pt(100, 50))

		if p.Control1 != Pt(50, 20) {
			t.Errorf("Control1 = %v, want (50,20)", p.Control1)
		}
		if p.Control2 != Pt(50, 70) {
			t.Errorf("Control2 = %v, want (50,70)", p.Control2)
		}
		if p.Shape != ShapeCurve {
			t.Errorf("Shape = %v, want curve", p.Shape)
		}
	})

	t.Run("vertical span still bends", func(t *testing.T) {
		p := CurvePath(Pt(10, 0), Pt(10, 100))

		if p.Control1 != Pt(10, 20) || p.Control2 != Pt(10, 120) {
			t.Errorf("unexpected control points %v %v", p.Control1, p.Control2)
		}
		mid := p.At(0.5)
		if math.IsNaN(mid.X) || math.IsNaN(mid.Y) {
			t.Fatal("degenerate path produced NaN")
		}
	})

	t.Run("zero length path is valid", func(t *testing.T) {
		p := CurvePath(Pt(5, 5), Pt(5, 5))
		if p.Length() <= 0 {
			t.Error("expected buffer to give a zero-span curve some length")
		}
	})

	t.Run("endpoints are exact", func(t *testing.T) {
		p := CurvePath(Pt(-12.5, 7), Pt(300, -40))
		if p.At(0) != p.Start {
			t.Errorf("At(0) = %v, want %v", p.At(0), p.Start)
		}
		if p.At(1) != p.End {
			t.Errorf("At(1) = %v, want %v", p.At(1), p.End)
		}
	})
}

func TestStraightPath(t *testing.T) {
	p := StraightPath(Pt(0, 0), Pt(30, 40))

	if !approx(p.Length(), 50) {
		t.Errorf("Length = %f, want 50", p.Length())
	}
	if got := p.At(0.5); got != Pt(15, 20) {
		t.Errorf("At(0.5) = %v, want (15,20)", got)
	}
	if len(p.Flatten(64)) != 2 {
		t.Error("straight path should flatten to its two endpoints")
	}
}

func TestPathHit(t *testing.T) {
	p := StraightPath(Pt(0, 0), Pt(100, 0))

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"on line", Pt(50, 0), true},
		{"within pick width", Pt(50, 4.9), true},
		{"outside pick width", Pt(50, 6), false},
		{"past the end", Pt(110, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Hit(tt.pt, PickWidth); got != tt.want {
				t.Errorf("Hit(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}

	t.Run("pick width is wider than the line", func(t *testing.T) {
		if PickWidth <= LineWidth {
			t.Errorf("PickWidth %f should exceed LineWidth %f", PickWidth, LineWidth)
		}
		if p.Hit(Pt(50, 4), LineWidth) {
			t.Error("point 4 units away should miss the rendered stroke")
		}
		if !p.Hit(Pt(50, 4), PickWidth) {
			t.Error("point 4 units away should hit the pick stroke")
		}
	})

	t.Run("curve hit follows the curve", func(t *testing.T) {
		c := CurvePath(Pt(0, 0), Pt(200, 100))
		if !c.Hit(c.At(0.37), PickWidth) {
			t.Error("expected a point on the curve to hit")
		}
	})
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{"", ShapeCurve, false},
		{"curve", ShapeCurve, false},
		{"straight", ShapeStraight, false},
		{"zigzag", ShapeCurve, true},
	}

	for _, tt := range tests {
		got, err := ParseShape(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShape(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseShape(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestFootprint(t *testing.T) {
	r := Footprint(Pt(10, 20))
	if !r.Contains(Pt(10, 20)) || !r.Contains(Pt(135, 87.5)) {
		t.Error("footprint should include its corners")
	}
	if r.Contains(Pt(136, 50)) {
		t.Error("footprint should exclude points past the east edge")
	}
}
