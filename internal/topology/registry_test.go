package topology

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"gasmap/internal/domain"
	"gasmap/internal/geometry"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func mustNode(t *testing.T, r *Registry, id domain.NodeID) *domain.Node {
	t.Helper()
	n, err := r.Node(id)
	if err != nil {
		t.Fatalf("node %s: %v", id, err)
	}
	return n
}

func mustPipe(t *testing.T, r *Registry, a, b *domain.Port, opts ...PipeOption) *domain.Pipe {
	t.Helper()
	p, err := r.AddPipe(a, b, opts...)
	if err != nil {
		t.Fatalf("AddPipe: %v", err)
	}
	return p
}

func TestAddNode(t *testing.T) {
	r := New(seqIDs())

	t.Run("allocates id and ports", func(t *testing.T) {
		id := r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1000, WithNodeErrorP(0.5))
		n := mustNode(t, r, id)

		if n.ErrorP != 0.5 {
			t.Errorf("expected errorp 0.5, got %v", n.ErrorP)
		}
		if n.Ports[domain.PortNorth].Position != geometry.Pt(57.5, -10) {
			t.Errorf("north port at %v", n.Ports[domain.PortNorth].Position)
		}
	})

	t.Run("requested id is kept unless taken", func(t *testing.T) {
		id := r.AddNode(domain.CategoryConsumer, geometry.Pt(0, 0), 1, WithNodeID("pump"))
		if id != "pump" {
			t.Errorf("expected id pump, got %s", id)
		}
		again := r.AddNode(domain.CategoryConsumer, geometry.Pt(0, 0), 1, WithNodeID("pump"))
		if again == "pump" {
			t.Error("duplicate id should be replaced")
		}
	})

	t.Run("errorp option ignored for consumers", func(t *testing.T) {
		id := r.AddNode(domain.CategoryConsumer, geometry.Pt(0, 0), 1, WithNodeErrorP(0.9))
		if n := mustNode(t, r, id); n.ErrorP != 0 {
			t.Errorf("expected zero errorp, got %v", n.ErrorP)
		}
	})
}

func TestAddPipeScenario(t *testing.T) {
	r := New(seqIDs())
	src := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1000, WithNodeErrorP(0.5)))
	dst := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(100, 300), 1000))

	p := mustPipe(t, r, src.Ports[domain.PortNorth], dst.Ports[domain.PortWest], WithDistance(100), WithErrorP(0.05))

	if r.PipeCount() != 1 {
		t.Fatalf("expected 1 pipe, got %d", r.PipeCount())
	}
	if p.Distance != 100 {
		t.Errorf("expected distance 100, got %v", p.Distance)
	}
	if sep := p.PortSeparation(); math.Abs(sep-341.55) > 0.01 {
		t.Errorf("expected separation ~341.55, got %v", sep)
	}
	if r.FindPipe(src.ID, dst.ID) != p || r.FindPipe(dst.ID, src.ID) != p {
		t.Error("adjacency should be symmetric")
	}

	removed, err := r.RemoveNode(src.ID)
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if len(removed) != 1 || removed[0] != p {
		t.Errorf("expected the pipe to be removed, got %v", removed)
	}
	if r.PipeCount() != 0 {
		t.Errorf("expected no pipes, got %d", r.PipeCount())
	}
	if _, err := r.Node(dst.ID); err != nil {
		t.Errorf("consumer should survive: %v", err)
	}
	for i, port := range dst.Ports {
		if port == nil || port.Node != dst {
			t.Errorf("consumer port %d damaged", i)
		}
	}
	if r.FindPipe(dst.ID, src.ID) != nil {
		t.Error("removed node should have no neighbors")
	}
}

func TestAddPipeConstraints(t *testing.T) {
	r := New(seqIDs())
	a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1))

	t.Run("self loop", func(t *testing.T) {
		_, err := r.AddPipe(a.Ports[0], a.Ports[3])
		if !errors.Is(err, domain.ErrSelfLoop) {
			t.Errorf("expected ErrSelfLoop, got %v", err)
		}
	})

	t.Run("duplicate from either side and any ports", func(t *testing.T) {
		mustPipe(t, r, a.Ports[domain.PortEast], b.Ports[domain.PortWest])

		_, err := r.AddPipe(a.Ports[domain.PortSouth], b.Ports[domain.PortNorth])
		if !errors.Is(err, domain.ErrDuplicateConnection) {
			t.Errorf("expected ErrDuplicateConnection, got %v", err)
		}
		_, err = r.AddPipe(b.Ports[domain.PortWest], a.Ports[domain.PortEast])
		if !errors.Is(err, domain.ErrDuplicateConnection) {
			t.Errorf("expected ErrDuplicateConnection, got %v", err)
		}
		if r.PipeCount() != 1 {
			t.Errorf("expected 1 pipe, got %d", r.PipeCount())
		}
	})

	t.Run("port may host several pipes", func(t *testing.T) {
		c := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 300), 1))
		mustPipe(t, r, a.Ports[domain.PortEast], c.Ports[domain.PortWest])
		if r.PipeCount() != 2 {
			t.Errorf("expected 2 pipes, got %d", r.PipeCount())
		}
	})

	t.Run("omitted distance uses separation, explicit zero kept", func(t *testing.T) {
		r := New(seqIDs())
		a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
		b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1))
		c := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(600, 0), 1))

		p := mustPipe(t, r, a.Ports[domain.PortEast], b.Ports[domain.PortWest])
		if p.Distance != 165 {
			t.Errorf("expected distance 165, got %v", p.Distance)
		}
		q := mustPipe(t, r, b.Ports[domain.PortEast], c.Ports[domain.PortWest], WithDistance(0))
		if q.Distance != 0 {
			t.Errorf("expected explicit zero, got %v", q.Distance)
		}
	})
}

func TestCommitProvisional(t *testing.T) {
	r := New(seqIDs())
	a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1))

	p := r.NewProvisionalPipe(a.Ports[domain.PortEast], geometry.Pt(200, 40))
	if r.PipeCount() != 0 {
		t.Fatal("provisional pipe must not be registered")
	}

	if err := r.CommitPipe(p, a.Ports[domain.PortWest]); !errors.Is(err, domain.ErrSelfLoop) {
		t.Fatalf("expected ErrSelfLoop, got %v", err)
	}
	if p.Committed() || p.B != nil {
		t.Error("failed commit must leave the pipe unbound")
	}

	if err := r.CommitPipe(p, b.Ports[domain.PortWest]); err != nil {
		t.Fatalf("CommitPipe: %v", err)
	}
	if !p.Committed() {
		t.Error("expected committed pipe")
	}
	if err := r.CommitPipe(p, b.Ports[domain.PortWest]); err == nil {
		t.Error("second commit should fail")
	}
}

func TestMoveNode(t *testing.T) {
	r := New(seqIDs())
	a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1))
	p := mustPipe(t, r, a.Ports[domain.PortEast], b.Ports[domain.PortWest], WithDistance(42))

	if err := r.MoveNode(b.ID, geometry.Pt(300, 200)); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}

	if b.Ports[domain.PortWest].Position != geometry.Pt(290, 230) {
		t.Errorf("west port at %v", b.Ports[domain.PortWest].Position)
	}
	if p.Path().End != geometry.Pt(290, 230) {
		t.Errorf("pipe end not refreshed: %v", p.Path().End)
	}
	if p.Path().Start != a.Ports[domain.PortEast].Position {
		t.Errorf("pipe start moved: %v", p.Path().Start)
	}
	if p.Distance != 42 {
		t.Errorf("distance changed to %v", p.Distance)
	}

	if err := r.MoveNode("missing", geometry.Pt(0, 0)); !errors.Is(err, domain.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestUpdateAttributes(t *testing.T) {
	r := New(seqIDs())
	src := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	dst := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1))
	p := mustPipe(t, r, src.Ports[domain.PortEast], dst.Ports[domain.PortWest])

	tests := []struct {
		name    string
		apply   func() error
		wantErr error
	}{
		{"source errorp", func() error {
			return r.UpdateNode(src.ID, domain.NodeUpdate{ErrorP: domain.Float(0.2)})
		}, nil},
		{"consumer errorp rejected", func() error {
			return r.UpdateNode(dst.ID, domain.NodeUpdate{ErrorP: domain.Float(0.2)})
		}, domain.ErrInvalidAttribute},
		{"negative magnitude", func() error {
			return r.UpdateNode(dst.ID, domain.NodeUpdate{Magnitude: domain.Float(-1)})
		}, domain.ErrInvalidAttribute},
		{"pipe errorp out of range", func() error {
			return r.UpdatePipe(p.ID, domain.PipeUpdate{ErrorP: domain.Float(1.5)})
		}, domain.ErrInvalidAttribute},
		{"pipe distance and price", func() error {
			return r.UpdatePipe(p.ID, domain.PipeUpdate{Distance: domain.Float(7), Price: domain.Float(3)})
		}, nil},
		{"unknown pipe", func() error {
			return r.UpdatePipe("nope", domain.PipeUpdate{})
		}, domain.ErrPipeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.apply()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if src.ErrorP != 0.2 {
		t.Errorf("expected errorp 0.2, got %v", src.ErrorP)
	}
	if p.Distance != 7 || p.Price != 3 {
		t.Errorf("expected distance 7 price 3, got %v %v", p.Distance, p.Price)
	}
	if p.ErrorP != domain.DefaultErrorP {
		t.Errorf("rejected edit changed errorp to %v", p.ErrorP)
	}
}

func TestAllNodesSnapshot(t *testing.T) {
	r := New(seqIDs())
	first := r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1)
	r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1)

	seq := r.AllNodes()
	r.AddNode(domain.CategoryConsumer, geometry.Pt(600, 0), 1)
	if _, err := r.RemoveNode(first); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		got := slices.Collect(seq)
		if len(got) != 2 {
			t.Fatalf("expected snapshot of 2 nodes, got %d", len(got))
		}
		if got[0].ID != first {
			t.Errorf("expected creation order, got %s first", got[0].ID)
		}
	}
}

func TestClear(t *testing.T) {
	r := New(seqIDs())
	a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1))
	p := mustPipe(t, r, a.Ports[domain.PortEast], b.Ports[domain.PortWest])

	r.Clear()

	if r.NodeCount() != 0 || r.PipeCount() != 0 {
		t.Errorf("expected empty registry, got %d nodes %d pipes", r.NodeCount(), r.PipeCount())
	}
	if p.Committed() {
		t.Error("cleared pipe still marked committed")
	}
	if r.FindPipe(a.ID, b.ID) != nil {
		t.Error("adjacency not cleared")
	}
}

func TestAbsorb(t *testing.T) {
	live := New(seqIDs())
	live.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1, WithNodeID("shared"))

	staged := New()
	a := mustNode(t, staged, staged.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1, WithNodeID("shared")))
	b := mustNode(t, staged, staged.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 1, WithNodeID("other")))
	p := mustPipe(t, staged, a.Ports[domain.PortEast], b.Ports[domain.PortWest], WithDistance(9))

	live.Absorb(staged)

	if staged.NodeCount() != 0 || staged.PipeCount() != 0 {
		t.Error("staging registry should be empty")
	}
	if live.NodeCount() != 3 || live.PipeCount() != 1 {
		t.Fatalf("expected 3 nodes 1 pipe, got %d %d", live.NodeCount(), live.PipeCount())
	}
	if a.ID == "shared" {
		t.Error("colliding id should be replaced")
	}
	if b.ID != "other" {
		t.Errorf("free id should be kept, got %s", b.ID)
	}
	if live.FindPipe(a.ID, b.ID) != p || !p.Committed() || p.Distance != 9 {
		t.Error("pipe not absorbed intact")
	}
}

func TestHitTest(t *testing.T) {
	r := New(seqIDs())
	a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(500, 0), 1))
	p := mustPipe(t, r, a.Ports[domain.PortEast], b.Ports[domain.PortWest])

	tests := []struct {
		name string
		pt   geometry.Point
		want HitKind
	}{
		{"port marker", geometry.Pt(62.5, -5), HitPort},
		{"node body", geometry.Pt(60, 30), HitNode},
		{"curve midpoint", geometry.Pt(307.5, 45), HitPipe},
		{"under the chord of a curve", geometry.Pt(307.5, 30), HitNone},
		{"empty space", geometry.Pt(1000, 1000), HitNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.HitTest(tt.pt).Kind; got != tt.want {
				t.Errorf("HitTest(%v) = %s, want %s", tt.pt, got, tt.want)
			}
		})
	}

	t.Run("straight pipe picks on the chord", func(t *testing.T) {
		if err := r.SetPipeShape(p.ID, geometry.ShapeStraight); err != nil {
			t.Fatal(err)
		}
		hit := r.HitTest(geometry.Pt(307.5, 33))
		if hit.Kind != HitPipe || hit.Pipe != p {
			t.Errorf("expected pipe hit, got %s", hit.Kind)
		}
	})
}

func TestNodeAt(t *testing.T) {
	r := New(seqIDs())
	a := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1))
	b := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(50, 20), 1))

	if got := r.NodeAt(geometry.Pt(0, 0)); got != a {
		t.Error("exact origin should win over a containing footprint")
	}
	if got := r.NodeAt(geometry.Pt(60, 30)); got != b {
		t.Error("overlapping footprints should resolve to the latest node")
	}
	if got := r.NodeAt(geometry.Pt(-50, -50)); got != nil {
		t.Error("expected no node")
	}
}

func TestNeighborsAndRemoval(t *testing.T) {
	r := New(seqIDs())
	hub := mustNode(t, r, r.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1000))
	east := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(300, 0), 10))
	south := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(0, 300), 10))
	far := mustNode(t, r, r.AddNode(domain.CategoryConsumer, geometry.Pt(600, 600), 10))

	mustPipe(t, r, hub.Ports[domain.PortEast], east.Ports[domain.PortWest])
	mustPipe(t, r, hub.Ports[domain.PortSouth], south.Ports[domain.PortNorth])
	kept := mustPipe(t, r, east.Ports[domain.PortSouth], far.Ports[domain.PortNorth])

	if got, want := r.Neighbors(hub.ID), []domain.NodeID{east.ID, south.ID}; !slices.Equal(got, want) {
		t.Errorf("Neighbors(hub) = %v, want %v", got, want)
	}
	if got := r.Neighbors("missing"); len(got) != 0 {
		t.Errorf("Neighbors(missing) = %v, want none", got)
	}

	removed, err := r.RemoveNode(hub.ID)
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 pipes removed, got %d", len(removed))
	}
	if _, ok := r.adjacency[hub.ID]; ok {
		t.Error("removed node still has an adjacency entry")
	}
	for _, n := range []*domain.Node{east, south} {
		if _, ok := r.adjacency[n.ID][hub.ID]; ok {
			t.Errorf("neighbor %s still points at the removed node", n.ID)
		}
	}
	if _, ok := r.adjacency[south.ID]; ok {
		t.Error("a node left without pipes should have no adjacency entry")
	}
	if got := r.Neighbors(east.ID); !slices.Equal(got, []domain.NodeID{far.ID}) {
		t.Errorf("Neighbors(east) = %v, want [%s]", got, far.ID)
	}
	if r.FindPipe(far.ID, east.ID) != kept {
		t.Error("unrelated pipe should survive")
	}
}
