package domain

import (
	"errors"
	"testing"

	"gasmap/internal/geometry"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"Gas", CategorySource, false},
		{"gas", CategorySource, false},
		{"source", CategorySource, false},
		{"User", CategoryConsumer, false},
		{" consumer ", CategoryConsumer, false},
		{"pipe", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewNode(t *testing.T) {
	t.Run("source gets default errorp and four ports", func(t *testing.T) {
		n := NewNode("s1", CategorySource, geometry.Pt(0, 0), 1000)

		if n.ErrorP != DefaultErrorP {
			t.Errorf("expected errorp %v, got %v", DefaultErrorP, n.ErrorP)
		}
		for i, p := range n.Ports {
			if p == nil {
				t.Fatalf("port %d is nil", i)
			}
			if p.Node != n {
				t.Errorf("port %d does not point back to its node", i)
			}
			if p.Index != PortIndex(i) {
				t.Errorf("port %d has index %d", i, p.Index)
			}
		}
		if n.Ports[PortNorth].Position != geometry.Pt(57.5, -10) {
			t.Errorf("north port at %v", n.Ports[PortNorth].Position)
		}
	})

	t.Run("consumer has no errorp", func(t *testing.T) {
		n := NewNode("c1", CategoryConsumer, geometry.Pt(100, 300), 1000)

		if n.ErrorP != 0 {
			t.Errorf("expected zero errorp, got %v", n.ErrorP)
		}
		if n.Ports[PortWest].Position != geometry.Pt(90, 330) {
			t.Errorf("west port at %v", n.Ports[PortWest].Position)
		}
		if n.Attr().ErrorP != nil {
			t.Error("consumer attribute snapshot should omit errorp")
		}
	})
}

func TestNodePort(t *testing.T) {
	n := NewNode("n", CategorySource, geometry.Pt(0, 0), 1)

	if _, err := n.Port(PortEast); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, idx := range []PortIndex{-1, 4, 9} {
		_, err := n.Port(idx)
		if !errors.Is(err, ErrInvalidPortReference) {
			t.Errorf("Port(%d): expected ErrInvalidPortReference, got %v", idx, err)
		}
		var perr *InvalidPortReferenceError
		if !errors.As(err, &perr) || perr.Index != int(idx) {
			t.Errorf("Port(%d): expected typed error carrying the index, got %v", idx, err)
		}
	}
}

func TestNodeTranslate(t *testing.T) {
	n := NewNode("n", CategoryConsumer, geometry.Pt(10, 10), 1)
	before := make([]geometry.Point, len(n.Ports))
	for i, p := range n.Ports {
		before[i] = p.Position
	}

	n.Translate(geometry.Pt(5, -3))

	if n.Position != geometry.Pt(15, 7) {
		t.Errorf("expected position (15,7), got %v", n.Position)
	}
	for i, p := range n.Ports {
		want := before[i].Add(geometry.Pt(5, -3))
		if p.Position != want {
			t.Errorf("port %d: expected %v, got %v", i, want, p.Position)
		}
	}
}

func TestPipe(t *testing.T) {
	a := NewNode("a", CategorySource, geometry.Pt(0, 0), 1000)
	b := NewNode("b", CategoryConsumer, geometry.Pt(100, 300), 1000)

	t.Run("provisional end follows pointer", func(t *testing.T) {
		p := NewProvisionalPipe("p", a.Ports[PortNorth], geometry.Pt(50, 50))
		p.SetFreeEnd(geometry.Pt(70, 80))

		if p.Path().End != geometry.Pt(70, 80) {
			t.Errorf("expected free end (70,80), got %v", p.Path().End)
		}
		if _, other := p.Nodes(); other != nil {
			t.Error("provisional pipe should have no second node")
		}
		if p.ErrorP != DefaultErrorP {
			t.Errorf("expected default errorp, got %v", p.ErrorP)
		}
	})

	t.Run("bound pipe ignores free end and tracks ports", func(t *testing.T) {
		p := NewProvisionalPipe("p", a.Ports[PortNorth], geometry.Pt(0, 0))
		p.Bind(b.Ports[PortWest])
		p.SetFreeEnd(geometry.Pt(1, 1))

		if p.Path().End != b.Ports[PortWest].Position {
			t.Errorf("expected end at west port, got %v", p.Path().End)
		}
		if p.Other(a) != b || p.Other(b) != a {
			t.Error("Other should return the opposite node")
		}
		ai, bi := p.BindIDs()
		if ai != PortNorth || bi != PortWest {
			t.Errorf("expected bind ids (0,2), got (%d,%d)", ai, bi)
		}
	})

	t.Run("shape switch keeps distance", func(t *testing.T) {
		p := NewProvisionalPipe("p", a.Ports[PortNorth], geometry.Pt(0, 0))
		p.Bind(b.Ports[PortWest])
		p.Distance = 100
		p.SetShape(geometry.ShapeStraight)

		if p.Path().Shape != geometry.ShapeStraight {
			t.Error("expected straight path")
		}
		if p.Distance != 100 {
			t.Errorf("distance changed to %v", p.Distance)
		}
		attr := p.Attr()
		if attr.Shape != "straight" || attr.AX != 0 || attr.BY != 300 {
			t.Errorf("unexpected attr %+v", attr)
		}
	})
}

func TestErrors(t *testing.T) {
	t.Run("typed errors unwrap to sentinels", func(t *testing.T) {
		cases := []struct {
			err    error
			target error
		}{
			{&FileFormatError{Field: "version", Reason: "missing"}, ErrFileFormat},
			{&SpatialResolutionError{Record: 2, Endpoint: "a", X: 1, Y: 2}, ErrSpatialResolution},
			{&InvalidPortReferenceError{Record: 0, Index: 7}, ErrInvalidPortReference},
		}
		for _, c := range cases {
			if !errors.Is(c.err, c.target) {
				t.Errorf("%v should match %v", c.err, c.target)
			}
		}
	})

	t.Run("io error exposes cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := &IOError{Op: "write", Location: "/tmp/x.mj5", Err: cause}

		if !errors.Is(err, ErrIO) {
			t.Error("expected ErrIO")
		}
		if !errors.Is(err, cause) {
			t.Error("expected underlying cause")
		}
	})
}

func TestDeriveGraph(t *testing.T) {
	a := NewNode("a", CategorySource, geometry.Pt(0, 0), 1000)
	b := NewNode("b", CategoryConsumer, geometry.Pt(100, 300), 10)
	p := NewProvisionalPipe("p", a.Ports[PortNorth], geometry.Pt(0, 0))
	p.Bind(b.Ports[PortWest])
	p.Distance = 100
	dangling := NewProvisionalPipe("q", a.Ports[PortEast], geometry.Pt(0, 0))

	graph := DeriveGraph([]*Node{a, b}, []*Pipe{p, dangling})

	if len(graph.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(graph.Nodes))
	}
	if graph.Nodes[0].Group != "source" || graph.Nodes[1].Group != "consumer" {
		t.Errorf("unexpected groups %q %q", graph.Nodes[0].Group, graph.Nodes[1].Group)
	}
	if len(graph.Edges) != 1 {
		t.Fatalf("expected provisional pipe to be skipped, got %d edges", len(graph.Edges))
	}
	e := graph.Edges[0]
	if e.From != "a" || e.To != "b" || e.FromPort != PortNorth || e.ToPort != PortWest {
		t.Errorf("unexpected edge %+v", e)
	}
	if e.Label != "100.0" {
		t.Errorf("expected label 100.0, got %q", e.Label)
	}
}
