// Package persistence converts between a topology and its document form and
// runs document I/O off the interaction loop.
package persistence

import (
	"fmt"

	"gasmap/internal/domain"
	"gasmap/internal/geometry"
	"gasmap/internal/topology"
)

// Snapshot captures every node, then every committed pipe, as a document.
// It reads the registry only and must run on the goroutine that owns it.
func Snapshot(reg *topology.Registry) *domain.Document {
	doc := &domain.Document{
		Version: domain.DocumentVersion,
		Nodes:   make([]domain.NodeRecord, 0, reg.NodeCount()),
		Pipes:   make([]domain.PipeRecord, 0, reg.PipeCount()),
	}

	for n := range reg.AllNodes() {
		rec := domain.NodeRecord{
			ID:       string(n.ID),
			X:        domain.Float(n.Position.X),
			Y:        domain.Float(n.Position.Y),
			Category: string(n.Category),
			Current:  domain.Float(n.Magnitude),
		}
		if n.IsSource() {
			rec.ErrorP = domain.Float(n.ErrorP)
		}
		doc.Nodes = append(doc.Nodes, rec)
	}

	for p := range reg.AllPipes() {
		a, b := p.Nodes()
		ai, bi := p.BindIDs()
		rec := domain.PipeRecord{
			BindIDs:  []int{int(ai), int(bi)},
			NodeIDs:  []string{string(a.ID), string(b.ID)},
			AX:       domain.Float(a.Position.X),
			AY:       domain.Float(a.Position.Y),
			BX:       domain.Float(b.Position.X),
			BY:       domain.Float(b.Position.Y),
			Distance: domain.Float(p.Distance),
			ErrorP:   domain.Float(p.ErrorP),
		}
		if p.Price != 0 {
			rec.Price = domain.Float(p.Price)
		}
		if p.Shape != geometry.ShapeCurve {
			rec.Shape = p.Shape.String()
		}
		doc.Pipes = append(doc.Pipes, rec)
	}

	return doc
}

// Apply builds the document's nodes and pipes in reg. Nodes are created
// first. Each pipe endpoint is resolved by stored node id when the document
// carries one, and otherwise by the stored coordinate.
//
// Apply stops at the first bad record and leaves what it already created in
// reg; callers that need all-or-nothing apply into an empty staging registry.
func Apply(doc *domain.Document, reg *topology.Registry) error {
	if doc == nil {
		return &domain.FileFormatError{Reason: "empty document"}
	}
	if !domain.SupportedVersion(doc.Version) {
		return &domain.FileFormatError{Field: "version", Reason: fmt.Sprintf("unsupported version %q", doc.Version)}
	}
	useIDs := doc.Version != domain.LegacyDocumentVersion

	byID := make(map[string]*domain.Node, len(doc.Nodes))
	for i, rec := range doc.Nodes {
		if _, dup := byID[rec.ID]; dup {
			return &domain.FileFormatError{Field: fmt.Sprintf("nodes[%d].id", i), Reason: fmt.Sprintf("duplicate node id %q", rec.ID)}
		}
		n, err := applyNode(i, rec, reg)
		if err != nil {
			return err
		}
		if rec.ID != "" {
			byID[rec.ID] = n
		}
	}

	for i, rec := range doc.Pipes {
		if err := applyPipe(i, rec, reg, byID, useIDs); err != nil {
			return err
		}
	}
	return nil
}

func applyNode(i int, rec domain.NodeRecord, reg *topology.Registry) (*domain.Node, error) {
	if rec.X == nil || rec.Y == nil || rec.Current == nil {
		return nil, &domain.FileFormatError{Field: fmt.Sprintf("nodes[%d]", i), Reason: "position and current are required"}
	}
	cat := domain.Category(rec.Category)
	if !cat.Valid() {
		return nil, &domain.FileFormatError{Field: fmt.Sprintf("nodes[%d].category", i), Reason: fmt.Sprintf("unknown category %q", rec.Category)}
	}

	var opts []topology.NodeOption
	if rec.ID != "" {
		opts = append(opts, topology.WithNodeID(domain.NodeID(rec.ID)))
	}
	if rec.ErrorP != nil {
		opts = append(opts, topology.WithNodeErrorP(*rec.ErrorP))
	}
	id := reg.AddNode(cat, geometry.Pt(*rec.X, *rec.Y), *rec.Current, opts...)
	return reg.Node(id)
}

func applyPipe(i int, rec domain.PipeRecord, reg *topology.Registry, byID map[string]*domain.Node, useIDs bool) error {
	if len(rec.BindIDs) != 2 {
		return &domain.FileFormatError{Field: fmt.Sprintf("pipes[%d].bindIds", i), Reason: "must have exactly 2 elements"}
	}
	if rec.AX == nil || rec.AY == nil || rec.BX == nil || rec.BY == nil || rec.ErrorP == nil {
		return &domain.FileFormatError{Field: fmt.Sprintf("pipes[%d]", i), Reason: "endpoint coordinates and errorp are required"}
	}
	shape, err := geometry.ParseShape(rec.Shape)
	if err != nil {
		return &domain.FileFormatError{Field: fmt.Sprintf("pipes[%d].shape", i), Reason: err.Error()}
	}

	ends := [2]struct {
		name string
		pt   geometry.Point
	}{
		{"a", geometry.Pt(*rec.AX, *rec.AY)},
		{"b", geometry.Pt(*rec.BX, *rec.BY)},
	}
	var ports [2]*domain.Port
	for k, end := range ends {
		var n *domain.Node
		if useIDs && len(rec.NodeIDs) == 2 {
			n = byID[rec.NodeIDs[k]]
		}
		if n == nil {
			n = reg.NodeAt(end.pt)
		}
		if n == nil {
			return &domain.SpatialResolutionError{Record: i, Endpoint: end.name, X: end.pt.X, Y: end.pt.Y}
		}
		idx := domain.PortIndex(rec.BindIDs[k])
		if !idx.Valid() {
			return &domain.InvalidPortReferenceError{Record: i, Index: rec.BindIDs[k]}
		}
		ports[k] = n.Ports[idx]
	}

	opts := []topology.PipeOption{
		topology.WithErrorP(*rec.ErrorP),
		topology.WithShape(shape),
	}
	if rec.Distance != nil {
		opts = append(opts, topology.WithDistance(*rec.Distance))
	}
	if rec.Price != nil {
		opts = append(opts, topology.WithPrice(*rec.Price))
	}
	if _, err := reg.AddPipe(ports[0], ports[1], opts...); err != nil {
		return fmt.Errorf("pipe %d: %w", i, err)
	}
	return nil
}
