package topology

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"gasmap/internal/domain"
	"gasmap/internal/geometry"
)

const propNodes = 6

// buildNetwork places propNodes nodes on a grid and attempts one pipe per
// entry of attempts. Each entry encodes a node pair and a port pair.
func buildNetwork(attempts []int) (*Registry, []*domain.Node) {
	r := New()
	nodes := make([]*domain.Node, propNodes)
	for i := range nodes {
		cat := domain.CategoryConsumer
		if i%2 == 0 {
			cat = domain.CategorySource
		}
		id := r.AddNode(cat, geometry.Pt(float64(i%3)*300, float64(i/3)*200), 10)
		nodes[i], _ = r.Node(id)
	}
	for _, k := range attempts {
		a := nodes[k%propNodes]
		b := nodes[(k/propNodes)%propNodes]
		_, _ = r.AddPipe(a.Ports[k%4], b.Ports[(k/4)%4])
	}
	return r, nodes
}

func TestRegistryInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	attempts := gen.SliceOf(gen.IntRange(0, propNodes*propNodes*4))

	properties.Property("adjacency is symmetric with one pipe per pair", prop.ForAll(
		func(attempts []int) bool {
			r, nodes := buildNetwork(attempts)
			pairs := make(map[[2]domain.NodeID]bool)
			for p := range r.AllPipes() {
				a, b := p.Nodes()
				if a == b {
					return false
				}
				key := [2]domain.NodeID{a.ID, b.ID}
				if a.ID > b.ID {
					key = [2]domain.NodeID{b.ID, a.ID}
				}
				if pairs[key] {
					return false
				}
				pairs[key] = true
			}
			for _, a := range nodes {
				for _, b := range nodes {
					if r.FindPipe(a.ID, b.ID) != r.FindPipe(b.ID, a.ID) {
						return false
					}
				}
			}
			return len(pairs) == r.PipeCount()
		},
		attempts,
	))

	properties.Property("removing a node removes exactly its pipes", prop.ForAll(
		func(attempts []int, victim int) bool {
			r, nodes := buildNetwork(attempts)
			target := nodes[victim]

			kept := make(map[domain.PipeID]float64)
			incident := 0
			for p := range r.AllPipes() {
				if p.Other(target) != nil {
					incident++
					continue
				}
				kept[p.ID] = p.Distance
			}
			before := r.PipeCount()

			removed, err := r.RemoveNode(target.ID)
			if err != nil || len(removed) != incident {
				return false
			}
			if r.PipeCount() != before-incident {
				return false
			}
			for p := range r.AllPipes() {
				d, ok := kept[p.ID]
				if !ok || d != p.Distance {
					return false
				}
			}
			for _, n := range nodes {
				if r.FindPipe(n.ID, target.ID) != nil {
					return false
				}
			}
			return true
		},
		attempts,
		gen.IntRange(0, propNodes-1),
	))

	properties.TestingRun(t)
}
