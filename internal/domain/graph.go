package domain

import (
	"fmt"

	"gasmap/internal/geometry"
)

// Graph is the derived view sent to presentation clients
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is a node with its footprint and absolute port positions.
type GraphNode struct {
	ID       NodeID                             `json:"id"`
	Label    string                             `json:"label"`
	Group    string                             `json:"group"` // "source" or "consumer"
	Title    string                             `json:"title"` // tooltip
	Position geometry.Point                     `json:"position"`
	Bounds   geometry.Rect                      `json:"bounds"`
	Ports    [geometry.PortCount]geometry.Point `json:"ports"`
}

// GraphEdge is a committed pipe with its current path.
type GraphEdge struct {
	ID       PipeID        `json:"id"`
	From     NodeID        `json:"from"`
	To       NodeID        `json:"to"`
	FromPort PortIndex     `json:"from_port"`
	ToPort   PortIndex     `json:"to_port"`
	Label    string        `json:"label"`
	Path     geometry.Path `json:"path"`
}

// DeriveGraph builds the view from nodes and committed pipes, in the order
// given.
func DeriveGraph(nodes []*Node, pipes []*Pipe) *Graph {
	graph := &Graph{
		Nodes: make([]GraphNode, 0, len(nodes)),
		Edges: make([]GraphEdge, 0, len(pipes)),
	}

	for _, n := range nodes {
		gn := GraphNode{
			ID:       n.ID,
			Label:    n.Category.Label(),
			Group:    groupFor(n.Category),
			Title:    nodeTooltip(n),
			Position: n.Position,
			Bounds:   n.Footprint(),
		}
		for i, p := range n.Ports {
			gn.Ports[i] = p.Position
		}
		graph.Nodes = append(graph.Nodes, gn)
	}

	for _, p := range pipes {
		if p.B == nil {
			continue
		}
		graph.Edges = append(graph.Edges, GraphEdge{
			ID:       p.ID,
			From:     p.A.Node.ID,
			To:       p.B.Node.ID,
			FromPort: p.A.Index,
			ToPort:   p.B.Index,
			Label:    distanceLabel(p.Distance),
			Path:     p.Path(),
		})
	}

	return graph
}

func groupFor(c Category) string {
	if c == CategorySource {
		return "source"
	}
	return "consumer"
}

func nodeTooltip(n *Node) string {
	if n.IsSource() {
		return fmt.Sprintf("%s\ncapacity %g\nerrorp %g", n.Category.Label(), n.Magnitude, n.ErrorP)
	}
	return fmt.Sprintf("%s\ndemand %g", n.Category.Label(), n.Magnitude)
}

func distanceLabel(d float64) string {
	return fmt.Sprintf("%.1f", d)
}
