package topology

import (
	"gasmap/internal/domain"
	"gasmap/internal/geometry"
)

// HitKind says what a hit test found.
type HitKind int

const (
	HitNone HitKind = iota
	HitPort
	HitNode
	HitPipe
)

func (k HitKind) String() string {
	switch k {
	case HitPort:
		return "port"
	case HitNode:
		return "node"
	case HitPipe:
		return "pipe"
	default:
		return "none"
	}
}

// Hit is the result of a hit test. Node is set for port and node hits.
type Hit struct {
	Kind HitKind
	Node *domain.Node
	Port *domain.Port
	Pipe *domain.Pipe
}

// HitTest returns the topmost item under pt. Ports sit above node bodies,
// which sit above pipes. Among items of one kind the most recently created
// wins.
func (r *Registry) HitTest(pt geometry.Point) Hit {
	if port := r.PortAt(pt); port != nil {
		return Hit{Kind: HitPort, Node: port.Node, Port: port}
	}
	for i := len(r.nodes) - 1; i >= 0; i-- {
		if n := r.nodes[i]; n.Footprint().Contains(pt) {
			return Hit{Kind: HitNode, Node: n}
		}
	}
	for i := len(r.pipes) - 1; i >= 0; i-- {
		if p := r.pipes[i]; p.Path().Hit(pt, geometry.PickWidth) {
			return Hit{Kind: HitPipe, Pipe: p}
		}
	}
	return Hit{}
}

// PortAt returns the topmost port whose marker contains pt, or nil.
func (r *Registry) PortAt(pt geometry.Point) *domain.Port {
	for i := len(r.nodes) - 1; i >= 0; i-- {
		for _, p := range r.nodes[i].Ports {
			if geometry.PortHit(p.Position, pt) {
				return p
			}
		}
	}
	return nil
}

// NodeAt resolves a stored node coordinate. A node whose origin equals pt
// is preferred; otherwise the topmost node whose footprint contains pt.
func (r *Registry) NodeAt(pt geometry.Point) *domain.Node {
	for i := len(r.nodes) - 1; i >= 0; i-- {
		if r.nodes[i].Position == pt {
			return r.nodes[i]
		}
	}
	for i := len(r.nodes) - 1; i >= 0; i-- {
		if r.nodes[i].Footprint().Contains(pt) {
			return r.nodes[i]
		}
	}
	return nil
}
