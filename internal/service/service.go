package service

import (
	"context"
	"fmt"
	"io"
	"slices"

	"gasmap/internal/codec"
	"gasmap/internal/domain"
	"gasmap/internal/editor"
	"gasmap/internal/geometry"
	"gasmap/internal/persistence"
)

// View is the network as presented to clients, with the editing mode and
// the pipe being drawn, if any.
type View struct {
	Mode    string        `json:"mode"`
	Armed   string        `json:"armed,omitempty"`
	Graph   *domain.Graph `json:"graph"`
	Drawing *DrawingView  `json:"drawing,omitempty"`
}

// DrawingView is the provisional pipe following the pointer
type DrawingView struct {
	From     domain.NodeID    `json:"from"`
	FromPort domain.PortIndex `json:"from_port"`
	Path     geometry.Path    `json:"path"`
}

// NetworkService provides the operations of the editor to transports
type NetworkService struct {
	loop *editor.Loop
}

// NewNetworkService creates a new network service over a running loop
func NewNetworkService(loop *editor.Loop) *NetworkService {
	return &NetworkService{loop: loop}
}

// Command issues a toolbar command. Load and export wait for the document
// job to finish; the returned result is nil for every other command.
func (s *NetworkService) Command(ctx context.Context, name editor.Command, location string) (*editor.JobResult, error) {
	if !slices.Contains(editor.Commands, name) {
		return nil, fmt.Errorf("%w: %q", editor.ErrUnknownCommand, name)
	}

	cmd := editor.ToolCommand{Name: name, Location: location}
	if name != editor.CmdLoad && name != editor.CmdExport {
		return nil, s.loop.Send(ctx, cmd)
	}

	results := make(chan editor.JobResult, 1)
	cmd.Done = func(res editor.JobResult) { results <- res }
	if err := s.loop.Send(ctx, cmd); err != nil {
		return nil, err
	}

	select {
	case res := <-results:
		return &res, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// PointerDown forwards a pointer press at pt
func (s *NetworkService) PointerDown(ctx context.Context, pt geometry.Point) error {
	return s.loop.Send(ctx, editor.PointerDown{At: pt})
}

// PointerMove forwards a pointer move to pt
func (s *NetworkService) PointerMove(ctx context.Context, pt geometry.Point) error {
	return s.loop.Send(ctx, editor.PointerMove{At: pt})
}

// PointerUp forwards a pointer release at pt
func (s *NetworkService) PointerUp(ctx context.Context, pt geometry.Point) error {
	return s.loop.Send(ctx, editor.PointerUp{At: pt})
}

// Cancel forwards the cancel key
func (s *NetworkService) Cancel(ctx context.Context) error {
	return s.loop.Send(ctx, editor.Cancel{})
}

// View returns a consistent snapshot of the network and editing state
func (s *NetworkService) View(ctx context.Context) (*View, error) {
	var view *View
	err := s.loop.Do(ctx, func(m *editor.Machine) error {
		reg := m.Registry()
		state := m.State()
		view = &View{
			Mode:  state.Mode.String(),
			Graph: domain.DeriveGraph(slices.Collect(reg.AllNodes()), slices.Collect(reg.AllPipes())),
		}
		if state.Mode == editor.ModeArmedPlacement {
			view.Armed = string(state.Category)
		}
		if origin := state.Origin(); origin != nil {
			view.Drawing = &DrawingView{
				From:     origin.Node.ID,
				FromPort: origin.Index,
				Path:     state.Pipe.Path(),
			}
		}
		return nil
	})
	return view, err
}

// GetNode returns the attributes of a node
func (s *NetworkService) GetNode(ctx context.Context, id domain.NodeID) (domain.NodeAttr, error) {
	var attr domain.NodeAttr
	err := s.loop.Do(ctx, func(m *editor.Machine) error {
		n, err := m.Registry().Node(id)
		if err != nil {
			return err
		}
		attr = n.Attr()
		return nil
	})
	return attr, err
}

// GetPipe returns the attributes of a pipe
func (s *NetworkService) GetPipe(ctx context.Context, id domain.PipeID) (domain.PipeAttr, error) {
	var attr domain.PipeAttr
	err := s.loop.Do(ctx, func(m *editor.Machine) error {
		p, err := m.Registry().Pipe(id)
		if err != nil {
			return err
		}
		attr = p.Attr()
		return nil
	})
	return attr, err
}

// UpdateNode edits a node's attributes and returns the result
func (s *NetworkService) UpdateNode(ctx context.Context, id domain.NodeID, u domain.NodeUpdate) (domain.NodeAttr, error) {
	var attr domain.NodeAttr
	err := s.loop.Do(ctx, func(m *editor.Machine) error {
		if err := m.Handle(editor.EditNode{ID: id, Update: u}); err != nil {
			return err
		}
		n, err := m.Registry().Node(id)
		if err != nil {
			return err
		}
		attr = n.Attr()
		return nil
	})
	return attr, err
}

// UpdatePipe edits a pipe's attributes and returns the result
func (s *NetworkService) UpdatePipe(ctx context.Context, id domain.PipeID, u domain.PipeUpdate) (domain.PipeAttr, error) {
	var attr domain.PipeAttr
	err := s.loop.Do(ctx, func(m *editor.Machine) error {
		if err := m.Handle(editor.EditPipe{ID: id, Update: u}); err != nil {
			return err
		}
		p, err := m.Registry().Pipe(id)
		if err != nil {
			return err
		}
		attr = p.Attr()
		return nil
	})
	return attr, err
}

// MoveNode moves a node to pt; attached pipes follow
func (s *NetworkService) MoveNode(ctx context.Context, id domain.NodeID, pt geometry.Point) error {
	return s.loop.Send(ctx, editor.MoveNode{ID: id, To: pt})
}

// DeleteNode removes a node and its pipes
func (s *NetworkService) DeleteNode(ctx context.Context, id domain.NodeID) error {
	return s.loop.Send(ctx, editor.DeleteNode{ID: id})
}

// DeletePipe removes a pipe
func (s *NetworkService) DeletePipe(ctx context.Context, id domain.PipeID) error {
	return s.loop.Send(ctx, editor.DeletePipe{ID: id})
}

// SetPipeShape switches a pipe between curve and straight
func (s *NetworkService) SetPipeShape(ctx context.Context, id domain.PipeID, shape geometry.Shape) error {
	return s.loop.Send(ctx, editor.ShapePipe{ID: id, Shape: shape})
}

// Snapshot returns the current network as a document
func (s *NetworkService) Snapshot(ctx context.Context) (*domain.Document, error) {
	var doc *domain.Document
	err := s.loop.Do(ctx, func(m *editor.Machine) error {
		doc = persistence.Snapshot(m.Registry())
		return nil
	})
	return doc, err
}

// WriteDocument writes the current network to w in the given format
func (s *NetworkService) WriteDocument(ctx context.Context, format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	return c.Export(doc, w)
}
