package editor

import "gasmap/internal/domain"

// Notifier receives the outbound notifications of the editor. Methods are
// called on the loop goroutine and must not block.
type Notifier interface {
	Status(msg string)
	NodeAttributes(attr domain.NodeAttr)
	PipeAttributes(attr domain.PipeAttr)
	// Redraw is called after anything visible changed.
	Redraw()
	JobDone(res JobResult)
}

// Jobs runs document I/O off the loop. done is called from another
// goroutine. A second job of a kind that is still running is refused with
// domain.ErrJobInFlight.
type Jobs interface {
	Export(doc *domain.Document, location string, done func(error)) error
	Import(location string, done func(*domain.Document, error)) error
}

// Recorder receives instrumentation from the machine.
type Recorder interface {
	EventHandled(name string)
	PipeRejected(reason string)
	Topology(nodes, pipes int)
}

type nopNotifier struct{}

func (nopNotifier) Status(string)                  {}
func (nopNotifier) NodeAttributes(domain.NodeAttr) {}
func (nopNotifier) PipeAttributes(domain.PipeAttr) {}
func (nopNotifier) Redraw()                        {}
func (nopNotifier) JobDone(JobResult)              {}

type nopRecorder struct{}

func (nopRecorder) EventHandled(string) {}
func (nopRecorder) PipeRejected(string) {}
func (nopRecorder) Topology(int, int)   {}
