package domain

import (
	"fmt"
	"strings"

	"gasmap/internal/geometry"
)

// Category distinguishes supply sources from consumers. The values are the
// names written to documents.
type Category string

const (
	CategorySource   Category = "Gas"
	CategoryConsumer Category = "User"
)

// Attribute defaults for new nodes and pipes.
const (
	DefaultSourceCapacity = 10000.0
	DefaultConsumerDemand = 10.0
	DefaultErrorP         = 0.05
)

// ParseCategory accepts the document names and the tool command names.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gas", "source":
		return CategorySource, nil
	case "user", "consumer":
		return CategoryConsumer, nil
	default:
		return "", fmt.Errorf("unknown node category %q", s)
	}
}

// Label returns a human-readable name for the category
func (c Category) Label() string {
	switch c {
	case CategorySource:
		return "Source"
	case CategoryConsumer:
		return "Consumer"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	return c == CategorySource || c == CategoryConsumer
}

// NodeID identifies a node
type NodeID string

// Node is a Source or Consumer in the network.
//
// Magnitude is the stored capacity of a Source or the demand of a Consumer.
// ErrorP is the failure probability and is meaningful for sources only.
type Node struct {
	ID        NodeID
	Category  Category
	Position  geometry.Point
	Magnitude float64
	ErrorP    float64
	Ports     [geometry.PortCount]*Port
}

// NewNode creates a node with its four ports laid out around position.
func NewNode(id NodeID, category Category, position geometry.Point, magnitude float64) *Node {
	n := &Node{
		ID:        id,
		Category:  category,
		Position:  position,
		Magnitude: magnitude,
	}
	if category == CategorySource {
		n.ErrorP = DefaultErrorP
	}
	for i := range n.Ports {
		pos, _ := geometry.PortPosition(position, i)
		n.Ports[i] = &Port{Node: n, Index: PortIndex(i), Position: pos}
	}
	return n
}

// Port returns the port at index i.
func (n *Node) Port(i PortIndex) (*Port, error) {
	if !i.Valid() {
		return nil, &InvalidPortReferenceError{Record: -1, Index: int(i)}
	}
	return n.Ports[i], nil
}

// Footprint returns the node's body rectangle.
func (n *Node) Footprint() geometry.Rect {
	return geometry.Footprint(n.Position)
}

// Translate moves the node and its ports by delta.
func (n *Node) Translate(delta geometry.Point) {
	n.Position = n.Position.Add(delta)
	for _, p := range n.Ports {
		p.Position = p.Position.Add(delta)
	}
}

// IsSource reports whether the node supplies gas
func (n *Node) IsSource() bool {
	return n.Category == CategorySource
}

// Attr returns an attribute snapshot of the node.
func (n *Node) Attr() NodeAttr {
	attr := NodeAttr{
		ID:        n.ID,
		Category:  n.Category,
		X:         n.Position.X,
		Y:         n.Position.Y,
		Magnitude: n.Magnitude,
	}
	for i, p := range n.Ports {
		attr.Ports[i] = p.Position
	}
	if n.IsSource() {
		errp := n.ErrorP
		attr.ErrorP = &errp
	}
	return attr
}
