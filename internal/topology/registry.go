// Package topology owns the nodes, ports and pipes of a network and keeps the
// adjacency index consistent with them.
//
// A Registry enforces two structural rules when a pipe is committed: its two
// endpoints must be on different nodes, and no two nodes may be joined by more
// than one pipe. Provisional pipes are not registered and are exempt until
// they are committed.
//
// Registry is not safe for concurrent use. It is owned by the interaction
// loop; other goroutines work on snapshots.
package topology

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/google/uuid"

	"gasmap/internal/domain"
	"gasmap/internal/geometry"
)

// Registry holds the committed network.
type Registry struct {
	nodes     []*domain.Node
	nodeIndex map[domain.NodeID]*domain.Node
	pipes     []*domain.Pipe
	pipeIndex map[domain.PipeID]*domain.Pipe

	// adjacency[a][b] and adjacency[b][a] hold the same pipe.
	adjacency map[domain.NodeID]map[domain.NodeID]*domain.Pipe
	// watchers lists the pipes that follow a node when it moves.
	watchers map[domain.NodeID]map[domain.PipeID]*domain.Pipe

	newID func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		nodeIndex: make(map[domain.NodeID]*domain.Node),
		pipeIndex: make(map[domain.PipeID]*domain.Pipe),
		adjacency: make(map[domain.NodeID]map[domain.NodeID]*domain.Pipe),
		watchers:  make(map[domain.NodeID]map[domain.PipeID]*domain.Pipe),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NodeOption sets optional node attributes at creation.
type NodeOption func(*domain.Node)

// WithNodeErrorP sets a source's failure probability.
func WithNodeErrorP(p float64) NodeOption {
	return func(n *domain.Node) {
		if n.IsSource() {
			n.ErrorP = p
		}
	}
}

// WithNodeID requests a specific identity. It is ignored if the id is
// already taken.
func WithNodeID(id domain.NodeID) NodeOption {
	return func(n *domain.Node) {
		n.ID = id
	}
}

// AddNode creates a node with its four ports and returns its id.
func (r *Registry) AddNode(category domain.Category, pos geometry.Point, magnitude float64, opts ...NodeOption) domain.NodeID {
	n := domain.NewNode("", category, pos, magnitude)
	for _, opt := range opts {
		opt(n)
	}
	if n.ID == "" || r.nodeIndex[n.ID] != nil {
		n.ID = domain.NodeID(r.newID())
	}
	r.nodes = append(r.nodes, n)
	r.nodeIndex[n.ID] = n
	return n.ID
}

// Node returns the node with the given id.
func (r *Registry) Node(id domain.NodeID) (*domain.Node, error) {
	n, ok := r.nodeIndex[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
	}
	return n, nil
}

// Pipe returns the committed pipe with the given id.
func (r *Registry) Pipe(id domain.PipeID) (*domain.Pipe, error) {
	p, ok := r.pipeIndex[id]
	if !ok {
		return nil, fmt.Errorf("pipe %s: %w", id, domain.ErrPipeNotFound)
	}
	return p, nil
}

// PipeOption sets pipe attributes at commit.
type PipeOption func(*pipeSettings)

type pipeSettings struct {
	distance *float64
	errorp   *float64
	price    *float64
	shape    *geometry.Shape
}

// WithDistance sets an explicit logical distance. Zero is a valid value.
func WithDistance(d float64) PipeOption {
	return func(s *pipeSettings) { s.distance = &d }
}

// WithErrorP sets the pipe failure probability.
func WithErrorP(p float64) PipeOption {
	return func(s *pipeSettings) { s.errorp = &p }
}

// WithPrice sets the unit price.
func WithPrice(p float64) PipeOption {
	return func(s *pipeSettings) { s.price = &p }
}

// WithShape sets the path shape.
func WithShape(shape geometry.Shape) PipeOption {
	return func(s *pipeSettings) { s.shape = &shape }
}

// NewProvisionalPipe starts an unregistered pipe at origin.
func (r *Registry) NewProvisionalPipe(origin *domain.Port, free geometry.Point) *domain.Pipe {
	return domain.NewProvisionalPipe(domain.PipeID(r.newID()), origin, free)
}

// AddPipe connects two ports. When no distance is given, the live separation
// of the two ports is used.
func (r *Registry) AddPipe(a, b *domain.Port, opts ...PipeOption) (*domain.Pipe, error) {
	p := r.NewProvisionalPipe(a, b.Position)
	if err := r.CommitPipe(p, b, opts...); err != nil {
		return nil, err
	}
	return p, nil
}

// CommitPipe validates a provisional pipe against target and registers it.
// On error the pipe is left unbound and unregistered.
func (r *Registry) CommitPipe(p *domain.Pipe, target *domain.Port, opts ...PipeOption) error {
	if p.Committed() {
		return fmt.Errorf("pipe %s is already committed", p.ID)
	}
	a := p.A.Node
	b := target.Node
	if r.nodeIndex[a.ID] != a || r.nodeIndex[b.ID] != b {
		return fmt.Errorf("commit pipe %s: %w", p.ID, domain.ErrNodeNotFound)
	}
	if a == b {
		return domain.ErrSelfLoop
	}
	if r.adjacency[a.ID][b.ID] != nil {
		return domain.ErrDuplicateConnection
	}

	var s pipeSettings
	for _, opt := range opts {
		opt(&s)
	}
	if s.shape != nil {
		p.Shape = *s.shape
	}
	p.Bind(target)
	if s.distance != nil {
		p.Distance = *s.distance
	} else {
		p.Distance = p.PortSeparation()
	}
	if s.errorp != nil {
		p.ErrorP = *s.errorp
	}
	if s.price != nil {
		p.Price = *s.price
	}

	r.link(a.ID, b.ID, p)
	r.watch(a.ID, p)
	r.watch(b.ID, p)
	r.pipes = append(r.pipes, p)
	r.pipeIndex[p.ID] = p
	p.MarkCommitted(true)
	return nil
}

func (r *Registry) link(a, b domain.NodeID, p *domain.Pipe) {
	for _, pair := range [2][2]domain.NodeID{{a, b}, {b, a}} {
		m := r.adjacency[pair[0]]
		if m == nil {
			m = make(map[domain.NodeID]*domain.Pipe)
			r.adjacency[pair[0]] = m
		}
		m[pair[1]] = p
	}
}

func (r *Registry) unlink(a, b domain.NodeID) {
	delete(r.adjacency[a], b)
	if len(r.adjacency[a]) == 0 {
		delete(r.adjacency, a)
	}
	delete(r.adjacency[b], a)
	if len(r.adjacency[b]) == 0 {
		delete(r.adjacency, b)
	}
}

func (r *Registry) watch(id domain.NodeID, p *domain.Pipe) {
	m := r.watchers[id]
	if m == nil {
		m = make(map[domain.PipeID]*domain.Pipe)
		r.watchers[id] = m
	}
	m[p.ID] = p
}

func (r *Registry) unwatch(id domain.NodeID, p *domain.Pipe) {
	delete(r.watchers[id], p.ID)
	if len(r.watchers[id]) == 0 {
		delete(r.watchers, id)
	}
}

// RemovePipe unregisters a committed pipe.
func (r *Registry) RemovePipe(id domain.PipeID) error {
	p, err := r.Pipe(id)
	if err != nil {
		return err
	}
	r.dropPipe(p)
	return nil
}

func (r *Registry) dropPipe(p *domain.Pipe) {
	a, b := p.Nodes()
	r.unlink(a.ID, b.ID)
	r.unwatch(a.ID, p)
	r.unwatch(b.ID, p)
	r.pipes = slices.DeleteFunc(r.pipes, func(q *domain.Pipe) bool { return q == p })
	delete(r.pipeIndex, p.ID)
	p.MarkCommitted(false)
}

// RemoveNode deletes a node and every pipe incident to it. It returns the
// removed pipes in no particular order.
func (r *Registry) RemoveNode(id domain.NodeID) ([]*domain.Pipe, error) {
	n, err := r.Node(id)
	if err != nil {
		return nil, err
	}
	removed := make([]*domain.Pipe, 0, len(r.adjacency[id]))
	for _, p := range r.adjacency[id] {
		removed = append(removed, p)
	}
	for _, p := range removed {
		r.dropPipe(p)
	}
	r.nodes = slices.DeleteFunc(r.nodes, func(m *domain.Node) bool { return m == n })
	delete(r.nodeIndex, id)
	return removed, nil
}

// FindPipe returns the pipe joining a and b, or nil. The result does not
// depend on argument order.
func (r *Registry) FindPipe(a, b domain.NodeID) *domain.Pipe {
	return r.adjacency[a][b]
}

// Neighbors returns the ids of the nodes connected to id, sorted.
func (r *Registry) Neighbors(id domain.NodeID) []domain.NodeID {
	return slices.Sorted(maps.Keys(r.adjacency[id]))
}

// AllNodes returns a snapshot of the nodes in creation order. The sequence
// can be ranged over more than once and is not affected by later changes.
func (r *Registry) AllNodes() iter.Seq[*domain.Node] {
	return slices.Values(slices.Clone(r.nodes))
}

// AllPipes returns a snapshot of the committed pipes in commit order.
func (r *Registry) AllPipes() iter.Seq[*domain.Pipe] {
	return slices.Values(slices.Clone(r.pipes))
}

// NodeCount returns the number of nodes.
func (r *Registry) NodeCount() int { return len(r.nodes) }

// PipeCount returns the number of committed pipes.
func (r *Registry) PipeCount() int { return len(r.pipes) }

// MoveNode places a node at pos and re-derives the paths of its pipes.
// Pipe distances are not touched.
func (r *Registry) MoveNode(id domain.NodeID, pos geometry.Point) error {
	n, err := r.Node(id)
	if err != nil {
		return err
	}
	n.Translate(pos.Sub(n.Position))
	for _, p := range r.watchers[id] {
		p.RefreshPath()
	}
	return nil
}

// UpdateNode applies attribute edits. Failure probability is only accepted on
// sources.
func (r *Registry) UpdateNode(id domain.NodeID, u domain.NodeUpdate) error {
	n, err := r.Node(id)
	if err != nil {
		return err
	}
	if u.Magnitude != nil && *u.Magnitude < 0 {
		return fmt.Errorf("magnitude %g: %w", *u.Magnitude, domain.ErrInvalidAttribute)
	}
	if u.ErrorP != nil {
		if !n.IsSource() {
			return fmt.Errorf("errorp on consumer %s: %w", id, domain.ErrInvalidAttribute)
		}
		if !validProbability(*u.ErrorP) {
			return fmt.Errorf("errorp %g: %w", *u.ErrorP, domain.ErrInvalidAttribute)
		}
	}
	if u.Magnitude != nil {
		n.Magnitude = *u.Magnitude
	}
	if u.ErrorP != nil {
		n.ErrorP = *u.ErrorP
	}
	return nil
}

// UpdatePipe applies attribute edits.
func (r *Registry) UpdatePipe(id domain.PipeID, u domain.PipeUpdate) error {
	p, err := r.Pipe(id)
	if err != nil {
		return err
	}
	if u.Distance != nil && *u.Distance < 0 {
		return fmt.Errorf("distance %g: %w", *u.Distance, domain.ErrInvalidAttribute)
	}
	if u.ErrorP != nil && !validProbability(*u.ErrorP) {
		return fmt.Errorf("errorp %g: %w", *u.ErrorP, domain.ErrInvalidAttribute)
	}
	if u.Price != nil && *u.Price < 0 {
		return fmt.Errorf("price %g: %w", *u.Price, domain.ErrInvalidAttribute)
	}
	if u.Distance != nil {
		p.Distance = *u.Distance
	}
	if u.ErrorP != nil {
		p.ErrorP = *u.ErrorP
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	return nil
}

// SetPipeShape switches a pipe between the default curve and a straight line.
func (r *Registry) SetPipeShape(id domain.PipeID, shape geometry.Shape) error {
	p, err := r.Pipe(id)
	if err != nil {
		return err
	}
	p.SetShape(shape)
	return nil
}

// Clear removes every pipe, then every node.
func (r *Registry) Clear() {
	for _, p := range slices.Clone(r.pipes) {
		r.dropPipe(p)
	}
	r.nodes = nil
	clear(r.nodeIndex)
}

// Absorb moves every node and pipe of staged into r. Ids already used in r
// are replaced. staged is empty afterwards.
func (r *Registry) Absorb(staged *Registry) {
	pipes := slices.Clone(staged.pipes)
	for _, p := range pipes {
		staged.dropPipe(p)
	}
	for _, n := range staged.nodes {
		if n.ID == "" || r.nodeIndex[n.ID] != nil {
			n.ID = domain.NodeID(r.newID())
		}
		r.nodes = append(r.nodes, n)
		r.nodeIndex[n.ID] = n
	}
	staged.nodes = nil
	clear(staged.nodeIndex)

	for _, p := range pipes {
		if r.pipeIndex[p.ID] != nil {
			p.ID = domain.PipeID(r.newID())
		}
		a, b := p.Nodes()
		r.link(a.ID, b.ID, p)
		r.watch(a.ID, p)
		r.watch(b.ID, p)
		r.pipes = append(r.pipes, p)
		r.pipeIndex[p.ID] = p
		p.MarkCommitted(true)
	}
}

func validProbability(p float64) bool {
	return p >= 0 && p <= 1
}
