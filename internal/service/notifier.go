package service

import (
	"gasmap/internal/domain"
	"gasmap/internal/editor"
)

// StatusPayload is the payload of a status event
type StatusPayload struct {
	Message string `json:"message"`
}

// JobPayload is the payload of a job_done event
type JobPayload struct {
	Kind     editor.JobKind `json:"kind"`
	Location string         `json:"location"`
	Nodes    int            `json:"nodes"`
	Pipes    int            `json:"pipes"`
	Error    string         `json:"error,omitempty"`
}

func jobPayload(res editor.JobResult) JobPayload {
	p := JobPayload{
		Kind:     res.Kind,
		Location: res.Location,
		Nodes:    res.Nodes,
		Pipes:    res.Pipes,
	}
	if res.Err != nil {
		p.Error = res.Err.Error()
	}
	return p
}

// BusNotifier publishes editor notifications on an EventBus
type BusNotifier struct {
	bus *EventBus
}

var _ editor.Notifier = (*BusNotifier)(nil)

// NewBusNotifier creates a notifier publishing to bus
func NewBusNotifier(bus *EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) Status(msg string) {
	n.bus.Publish(Event{Type: EventStatus, Payload: StatusPayload{Message: msg}})
}

func (n *BusNotifier) NodeAttributes(attr domain.NodeAttr) {
	n.bus.Publish(Event{Type: EventNodeAttributes, Payload: attr})
}

func (n *BusNotifier) PipeAttributes(attr domain.PipeAttr) {
	n.bus.Publish(Event{Type: EventPipeAttributes, Payload: attr})
}

func (n *BusNotifier) Redraw() {
	n.bus.Publish(Event{Type: EventNetworkChanged})
}

func (n *BusNotifier) JobDone(res editor.JobResult) {
	n.bus.Publish(Event{Type: EventJobDone, Payload: jobPayload(res)})
}

// InjectHook returns an inject hook that announces the request on the bus.
// The debug script runner is an external subscriber.
func (n *BusNotifier) InjectHook() func() {
	return func() {
		n.bus.Publish(Event{Type: EventInject})
	}
}
