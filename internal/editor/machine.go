// Package editor implements the interactive editing state machine and the
// serial loop that feeds it.
//
// The machine is driven by one event at a time: toolbar commands, pointer
// events, the cancel key, attribute requests and the completions of
// background document jobs. It owns the registry; nothing else mutates it.
package editor

import (
	"errors"
	"fmt"

	"gasmap/internal/domain"
	"gasmap/internal/geometry"
	"gasmap/internal/persistence"
	"gasmap/internal/topology"
)

var (
	// ErrNoLocation is returned by load and export without a location.
	ErrNoLocation = errors.New("a storage location is required")
	// ErrNothingToExport is returned when exporting an empty network.
	ErrNothingToExport = errors.New("the network has no nodes")
	// ErrUnknownCommand is returned for a command name outside Commands.
	ErrUnknownCommand = errors.New("unknown command")

	errNoWorker = errors.New("no document worker attached")
)

// Defaults are the attributes given to newly placed nodes and drawn pipes.
type Defaults struct {
	SourceCapacity float64
	ConsumerDemand float64
	SourceErrorP   float64
	PipeErrorP     float64
	PipePrice      float64
}

// DefaultDefaults returns the stock attribute values.
func DefaultDefaults() Defaults {
	return Defaults{
		SourceCapacity: domain.DefaultSourceCapacity,
		ConsumerDemand: domain.DefaultConsumerDemand,
		SourceErrorP:   domain.DefaultErrorP,
		PipeErrorP:     domain.DefaultErrorP,
	}
}

// Machine is the editing state machine. It is not safe for concurrent use;
// drive it through a Loop.
type Machine struct {
	reg      *topology.Registry
	jobs     Jobs
	notify   Notifier
	recorder Recorder
	defaults Defaults
	inject   func()

	state State

	// post hands worker completions back to the loop.
	post func(Event)
}

// Option configures a Machine.
type Option func(*Machine)

// WithNotifier sets the outbound notification sink.
func WithNotifier(n Notifier) Option {
	return func(m *Machine) { m.notify = n }
}

// WithJobs sets the background document worker.
func WithJobs(j Jobs) Option {
	return func(m *Machine) { m.jobs = j }
}

// WithRecorder sets the instrumentation sink.
func WithRecorder(r Recorder) Option {
	return func(m *Machine) { m.recorder = r }
}

// WithDefaults overrides the attributes of new nodes and pipes.
func WithDefaults(d Defaults) Option {
	return func(m *Machine) { m.defaults = d }
}

// WithInjectHook sets the function run by the inject command.
func WithInjectHook(fn func()) Option {
	return func(m *Machine) { m.inject = fn }
}

// NewMachine creates an idle machine over reg.
func NewMachine(reg *topology.Registry, opts ...Option) *Machine {
	m := &Machine{
		reg:      reg,
		notify:   nopNotifier{},
		recorder: nopRecorder{},
		defaults: DefaultDefaults(),
		state:    idle(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current editing state.
func (m *Machine) State() State {
	return m.state
}

// Registry returns the owned registry. Callers must be on the loop.
func (m *Machine) Registry() *topology.Registry {
	return m.reg
}

// Handle processes one event to completion. Errors from drawing are
// recovered here and reported on the status channel; the returned error is
// for the sender of the event.
func (m *Machine) Handle(e Event) error {
	defer func() {
		m.recorder.EventHandled(eventName(e))
		m.recorder.Topology(m.reg.NodeCount(), m.reg.PipeCount())
	}()

	switch e := e.(type) {
	case ToolCommand:
		return m.command(e)
	case PointerDown:
		m.pointerDown(e.At)
	case PointerMove:
		m.pointerMove(e.At)
	case PointerUp:
		m.pointerUp(e.At)
	case Cancel:
		m.cancel()
	case InspectNode:
		n, err := m.reg.Node(e.ID)
		if err != nil {
			return err
		}
		m.notify.NodeAttributes(n.Attr())
	case InspectPipe:
		p, err := m.reg.Pipe(e.ID)
		if err != nil {
			return err
		}
		m.notify.PipeAttributes(p.Attr())
	case EditNode:
		if err := m.reg.UpdateNode(e.ID, e.Update); err != nil {
			m.notify.Status(fmt.Sprintf("Node not updated: %v", err))
			return err
		}
		n, _ := m.reg.Node(e.ID)
		m.notify.NodeAttributes(n.Attr())
		m.notify.Redraw()
	case EditPipe:
		if err := m.reg.UpdatePipe(e.ID, e.Update); err != nil {
			m.notify.Status(fmt.Sprintf("Pipe not updated: %v", err))
			return err
		}
		p, _ := m.reg.Pipe(e.ID)
		m.notify.PipeAttributes(p.Attr())
		m.notify.Redraw()
	case MoveNode:
		if err := m.reg.MoveNode(e.ID, e.To); err != nil {
			return err
		}
		m.notify.Redraw()
	case DeleteNode:
		return m.deleteNode(e.ID)
	case DeletePipe:
		if err := m.reg.RemovePipe(e.ID); err != nil {
			return err
		}
		m.notify.Redraw()
	case ShapePipe:
		if err := m.reg.SetPipeShape(e.ID, e.Shape); err != nil {
			return err
		}
		m.notify.Redraw()
	case ImportCompleted:
		m.importCompleted(e)
	case ExportCompleted:
		m.exportCompleted(e)
	default:
		return fmt.Errorf("unhandled event %T", e)
	}
	return nil
}

func (m *Machine) command(c ToolCommand) error {
	switch c.Name {
	case CmdGas, CmdUser, CmdPipe:
		return m.arm(c.Name)
	case CmdLoad:
		m.abandonDrawing()
		return m.load(c)
	case CmdExport:
		return m.export(c)
	case CmdClear:
		m.abandonDrawing()
		m.reg.Clear()
		m.notify.Status("Network cleared")
		m.notify.Redraw()
	case CmdUpdate:
		m.notify.Redraw()
		m.notify.Status("Scene refreshed")
	case CmdInject:
		if m.inject == nil {
			m.notify.Status("No inject handler registered")
			return nil
		}
		m.inject()
		m.notify.Status("Inject requested")
	case CmdDev:
		m.abandonDrawing()
		if err := Seed(m.reg); err != nil {
			m.notify.Status(fmt.Sprintf("Seed failed: %v", err))
			return err
		}
		m.notify.Redraw()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	return nil
}

func (m *Machine) arm(name Command) error {
	if m.state.Mode == ModeDrawingPipe {
		m.notify.Status("Finish or cancel the current pipe first")
		return nil
	}
	switch name {
	case CmdGas:
		m.state = State{Mode: ModeArmedPlacement, Category: domain.CategorySource}
		m.notify.Status("Click to place a source")
	case CmdUser:
		m.state = State{Mode: ModeArmedPlacement, Category: domain.CategoryConsumer}
		m.notify.Status("Click to place a consumer")
	case CmdPipe:
		m.state = State{Mode: ModeArmedPipe}
		m.notify.Status("Press on a port and drag to another node's port")
	}
	return nil
}

func (m *Machine) pointerDown(at geometry.Point) {
	switch m.state.Mode {
	case ModeArmedPlacement:
		cat := m.state.Category
		magnitude := m.defaults.ConsumerDemand
		if cat == domain.CategorySource {
			magnitude = m.defaults.SourceCapacity
		}
		m.reg.AddNode(cat, at, magnitude, topology.WithNodeErrorP(m.defaults.SourceErrorP))
		m.state = idle()
		m.notify.Status(fmt.Sprintf("%s placed", cat.Label()))
		m.notify.Redraw()

	case ModeArmedPipe:
		port := m.reg.PortAt(at)
		if port == nil {
			return
		}
		p := m.reg.NewProvisionalPipe(port, at)
		p.ErrorP = m.defaults.PipeErrorP
		p.Price = m.defaults.PipePrice
		m.state = State{Mode: ModeDrawingPipe, Pipe: p}
		m.notify.Redraw()

	case ModeIdle:
		hit := m.reg.HitTest(at)
		switch hit.Kind {
		case topology.HitPort, topology.HitNode:
			m.notify.NodeAttributes(hit.Node.Attr())
		case topology.HitPipe:
			m.notify.PipeAttributes(hit.Pipe.Attr())
		}
	}
}

func (m *Machine) pointerMove(at geometry.Point) {
	if m.state.Mode != ModeDrawingPipe {
		return
	}
	m.state.Pipe.SetFreeEnd(at)
	m.notify.Redraw()
}

func (m *Machine) pointerUp(at geometry.Point) {
	if m.state.Mode != ModeDrawingPipe {
		return
	}
	p := m.state.Pipe
	m.state = idle()

	target := m.reg.PortAt(at)
	if target == nil || target.Node == p.A.Node {
		m.notify.Status("Pipe discarded: release over a port on another node")
		m.notify.Redraw()
		return
	}

	if err := m.reg.CommitPipe(p, target); err != nil {
		m.recorder.PipeRejected(rejectReason(err))
		m.notify.Status(fmt.Sprintf("Pipe rejected: %v", err))
		m.notify.Redraw()
		return
	}
	m.notify.Status(fmt.Sprintf("Pipe connected, distance %.1f", p.Distance))
	m.notify.Redraw()
}

func (m *Machine) cancel() {
	if m.state.Mode == ModeIdle {
		return
	}
	drawing := m.state.Mode == ModeDrawingPipe
	m.state = idle()
	m.notify.Status("Cancelled")
	if drawing {
		m.notify.Redraw()
	}
}

// abandonDrawing drops a provisional pipe, if any, and returns to idle.
func (m *Machine) abandonDrawing() {
	if m.state.Mode != ModeDrawingPipe {
		return
	}
	m.state = idle()
	m.notify.Status("Pipe discarded")
	m.notify.Redraw()
}

func (m *Machine) deleteNode(id domain.NodeID) error {
	if origin := m.state.Origin(); origin != nil && origin.Node.ID == id {
		m.abandonDrawing()
	}
	removed, err := m.reg.RemoveNode(id)
	if err != nil {
		return err
	}
	m.notify.Status(fmt.Sprintf("Node deleted with %d pipe(s)", len(removed)))
	m.notify.Redraw()
	return nil
}

func (m *Machine) load(c ToolCommand) error {
	if c.Location == "" {
		return m.refuse(c, JobImport, ErrNoLocation)
	}
	if m.jobs == nil || m.post == nil {
		return m.refuse(c, JobImport, errNoWorker)
	}
	err := m.jobs.Import(c.Location, func(doc *domain.Document, err error) {
		m.post(ImportCompleted{Location: c.Location, Document: doc, Err: err, replace: c.Replace, done: c.Done})
	})
	if err != nil {
		return m.refuse(c, JobImport, err)
	}
	m.notify.Status(fmt.Sprintf("Loading %s", c.Location))
	return nil
}

func (m *Machine) export(c ToolCommand) error {
	if c.Location == "" {
		return m.refuse(c, JobExport, ErrNoLocation)
	}
	if m.reg.NodeCount() == 0 {
		return m.refuse(c, JobExport, ErrNothingToExport)
	}
	if m.jobs == nil || m.post == nil {
		return m.refuse(c, JobExport, errNoWorker)
	}
	doc := persistence.Snapshot(m.reg)
	err := m.jobs.Export(doc, c.Location, func(err error) {
		m.post(ExportCompleted{Location: c.Location, Err: err, done: c.Done})
	})
	if err != nil {
		return m.refuse(c, JobExport, err)
	}
	m.notify.Status(fmt.Sprintf("Exporting to %s", c.Location))
	return nil
}

// refuse reports a job that was never started.
func (m *Machine) refuse(c ToolCommand, kind JobKind, err error) error {
	m.notify.Status(fmt.Sprintf("Cannot %s: %v", c.Name, err))
	res := JobResult{Kind: kind, Location: c.Location, Err: err}
	if c.Done != nil {
		c.Done(res)
	}
	return err
}

// importCompleted applies a loaded document. The document is built in a
// staging registry and absorbed only if every record applied.
func (m *Machine) importCompleted(e ImportCompleted) {
	res := JobResult{Kind: JobImport, Location: e.Location, Err: e.Err}
	if res.Err == nil {
		staged := topology.New()
		if err := persistence.Apply(e.Document, staged); err != nil {
			res.Err = err
		} else {
			res.Nodes, res.Pipes = staged.NodeCount(), staged.PipeCount()
			if e.replace {
				m.abandonDrawing()
				m.reg.Clear()
			}
			m.reg.Absorb(staged)
		}
	}

	if res.Err != nil {
		m.notify.Status(fmt.Sprintf("Load failed: %v", res.Err))
	} else {
		m.notify.Status(fmt.Sprintf("Loaded %d node(s) and %d pipe(s) from %s", res.Nodes, res.Pipes, e.Location))
		m.notify.Redraw()
	}
	m.finish(res, e.done)
}

func (m *Machine) exportCompleted(e ExportCompleted) {
	res := JobResult{Kind: JobExport, Location: e.Location, Err: e.Err}
	if res.Err != nil {
		m.notify.Status(fmt.Sprintf("Export failed: %v", res.Err))
	} else {
		m.notify.Status(fmt.Sprintf("Exported to %s", e.Location))
	}
	m.finish(res, e.done)
}

func (m *Machine) finish(res JobResult, done func(JobResult)) {
	m.notify.JobDone(res)
	if done != nil {
		done(res)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfLoop):
		return "self_loop"
	case errors.Is(err, domain.ErrDuplicateConnection):
		return "duplicate_connection"
	default:
		return "other"
	}
}

// Seed adds the development network: a source at the origin, a consumer
// below it and a pipe from the source's north port to the consumer's west
// port.
func Seed(reg *topology.Registry) error {
	src, err := reg.Node(reg.AddNode(domain.CategorySource, geometry.Pt(0, 0), 1000, topology.WithNodeErrorP(0.5)))
	if err != nil {
		return err
	}
	dst, err := reg.Node(reg.AddNode(domain.CategoryConsumer, geometry.Pt(100, 300), 1000))
	if err != nil {
		return err
	}
	_, err = reg.AddPipe(src.Ports[domain.PortNorth], dst.Ports[domain.PortWest],
		topology.WithDistance(100), topology.WithErrorP(0.05))
	return err
}
