package domain

import "gasmap/internal/geometry"

// NodeAttr is the node-attribute snapshot sent to presentation collaborators.
type NodeAttr struct {
	ID        NodeID                              `json:"id"`
	Category  Category                            `json:"category"`
	X         float64                             `json:"x"`
	Y         float64                             `json:"y"`
	Magnitude float64                             `json:"magnitude"`
	ErrorP    *float64                            `json:"errorp,omitempty"` // sources only
	Ports     [geometry.PortCount]geometry.Point `json:"ports"`
}

// PipeAttr is the pipe-attribute snapshot. AX/AY and BX/BY are the endpoint
// nodes' positions.
type PipeAttr struct {
	ID       PipeID    `json:"id"`
	NodeA    NodeID    `json:"node_a"`
	PortA    PortIndex `json:"port_a"`
	NodeB    NodeID    `json:"node_b"`
	PortB    PortIndex `json:"port_b"`
	AX       float64   `json:"ax"`
	AY       float64   `json:"ay"`
	BX       float64   `json:"bx"`
	BY       float64   `json:"by"`
	Distance float64   `json:"distance"`
	ErrorP   float64   `json:"errorp"`
	Price    float64   `json:"price"`
	Shape    string    `json:"shape"`
}

// NodeUpdate carries optional attribute edits. Nil fields are left unchanged.
type NodeUpdate struct {
	Magnitude *float64 `json:"magnitude,omitempty"`
	ErrorP    *float64 `json:"errorp,omitempty"`
}

// PipeUpdate carries optional attribute edits. Nil fields are left unchanged.
type PipeUpdate struct {
	Distance *float64 `json:"distance,omitempty"`
	ErrorP   *float64 `json:"errorp,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}
