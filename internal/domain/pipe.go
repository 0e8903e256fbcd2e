package domain

import "gasmap/internal/geometry"

// PipeID identifies a pipe
type PipeID string

// Pipe connects two ports on two different nodes.
//
// Distance is the logical length used by the simulation. It is set once when
// the pipe is committed and afterwards only changes through an explicit edit;
// recomputing the path never touches it.
type Pipe struct {
	ID       PipeID
	A        *Port
	B        *Port
	Distance float64
	ErrorP   float64
	Price    float64
	Shape    geometry.Shape

	start     geometry.Point
	end       geometry.Point
	path      geometry.Path
	committed bool
}

// NewProvisionalPipe starts a pipe at origin with its free end at free.
func NewProvisionalPipe(id PipeID, origin *Port, free geometry.Point) *Pipe {
	p := &Pipe{
		ID:     id,
		A:      origin,
		ErrorP: DefaultErrorP,
		start:  origin.Position,
		end:    free,
	}
	p.path = geometry.PathFor(p.Shape, p.start, p.end)
	return p
}

// SetFreeEnd moves the unbound end of a provisional pipe.
func (p *Pipe) SetFreeEnd(pt geometry.Point) {
	if p.B != nil {
		return
	}
	p.end = pt
	p.path = geometry.PathFor(p.Shape, p.start, p.end)
}

// FreeEnd returns the current end point of the path.
func (p *Pipe) FreeEnd() geometry.Point {
	return p.end
}

// Bind attaches the second endpoint.
func (p *Pipe) Bind(b *Port) {
	p.B = b
	p.RefreshPath()
}

// RefreshPath recomputes the path from the current port positions.
func (p *Pipe) RefreshPath() {
	p.start = p.A.Position
	if p.B != nil {
		p.end = p.B.Position
	}
	p.path = geometry.PathFor(p.Shape, p.start, p.end)
}

// SetShape switches the path shape and rebuilds the path.
func (p *Pipe) SetShape(s geometry.Shape) {
	p.Shape = s
	p.path = geometry.PathFor(p.Shape, p.start, p.end)
}

// Path returns the current path.
func (p *Pipe) Path() geometry.Path {
	return p.path
}

// PortSeparation is the live Euclidean distance between the two ends.
func (p *Pipe) PortSeparation() float64 {
	return geometry.Distance(p.start, p.end)
}

// Committed reports whether the pipe is registered in a topology.
func (p *Pipe) Committed() bool {
	return p.committed
}

// MarkCommitted flags the pipe as registered. Only the registry calls this.
func (p *Pipe) MarkCommitted(v bool) {
	p.committed = v
}

// Nodes returns the two endpoint nodes. The second is nil while provisional.
func (p *Pipe) Nodes() (*Node, *Node) {
	if p.B == nil {
		return p.A.Node, nil
	}
	return p.A.Node, p.B.Node
}

// Other returns the endpoint node opposite n, or nil.
func (p *Pipe) Other(n *Node) *Node {
	a, b := p.Nodes()
	switch n {
	case a:
		return b
	case b:
		return a
	default:
		return nil
	}
}

// BindIDs returns the port indices used on each endpoint node.
func (p *Pipe) BindIDs() (PortIndex, PortIndex) {
	if p.B == nil {
		return p.A.Index, -1
	}
	return p.A.Index, p.B.Index
}

// Attr returns an attribute snapshot of the pipe.
func (p *Pipe) Attr() PipeAttr {
	attr := PipeAttr{
		ID:       p.ID,
		NodeA:    p.A.Node.ID,
		PortA:    p.A.Index,
		AX:       p.A.Node.Position.X,
		AY:       p.A.Node.Position.Y,
		Distance: p.Distance,
		ErrorP:   p.ErrorP,
		Price:    p.Price,
		Shape:    p.Shape.String(),
	}
	if p.B != nil {
		attr.NodeB = p.B.Node.ID
		attr.PortB = p.B.Index
		attr.BX = p.B.Node.Position.X
		attr.BY = p.B.Node.Position.Y
	}
	return attr
}
