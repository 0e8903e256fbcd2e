package domain

import "gasmap/internal/geometry"

// PortIndex is the fixed position of a port on its node.
type PortIndex int

const (
	PortNorth PortIndex = iota
	PortSouth
	PortWest
	PortEast
)

// String returns the side name
func (i PortIndex) String() string {
	switch i {
	case PortNorth:
		return "north"
	case PortSouth:
		return "south"
	case PortWest:
		return "west"
	case PortEast:
		return "east"
	default:
		return "invalid"
	}
}

// Valid reports whether i is within 0..3.
func (i PortIndex) Valid() bool {
	return i >= PortNorth && i <= PortEast
}

// Port is a connection point owned by exactly one node. Position is absolute
// and kept in step with the node by Node.Translate.
type Port struct {
	Node     *Node
	Index    PortIndex
	Position geometry.Point
}
