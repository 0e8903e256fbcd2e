package editor

import (
	"gasmap/internal/domain"
	"gasmap/internal/geometry"
)

// Event is any message processed by the loop.
type Event any

// Command is a toolbar command name.
type Command string

const (
	CmdGas    Command = "gas"
	CmdUser   Command = "user"
	CmdPipe   Command = "pipe"
	CmdLoad   Command = "load"
	CmdExport Command = "export"
	CmdClear  Command = "clear"
	CmdUpdate Command = "update"
	CmdInject Command = "inject"
	CmdDev    Command = "dev"
)

// Commands lists every accepted command.
var Commands = []Command{CmdGas, CmdUser, CmdPipe, CmdLoad, CmdExport, CmdClear, CmdUpdate, CmdInject, CmdDev}

// ToolCommand is a toolbar command. Location is the storage location for
// load and export. A load with Replace set swaps the whole network for the
// document, and only once the document has been applied. Done, if set, is
// called on the loop goroutine once a load or export has finished or was
// refused.
type ToolCommand struct {
	Name     Command
	Location string
	Replace  bool
	Done     func(JobResult)
}

type PointerDown struct{ At geometry.Point }

type PointerMove struct{ At geometry.Point }

type PointerUp struct{ At geometry.Point }

// Cancel is the cancel key.
type Cancel struct{}

// InspectNode requests a node attribute snapshot.
type InspectNode struct{ ID domain.NodeID }

// InspectPipe requests a pipe attribute snapshot.
type InspectPipe struct{ ID domain.PipeID }

type EditNode struct {
	ID     domain.NodeID
	Update domain.NodeUpdate
}

type EditPipe struct {
	ID     domain.PipeID
	Update domain.PipeUpdate
}

type MoveNode struct {
	ID domain.NodeID
	To geometry.Point
}

type DeleteNode struct{ ID domain.NodeID }

type DeletePipe struct{ ID domain.PipeID }

// ShapePipe switches a pipe between curve and straight.
type ShapePipe struct {
	ID    domain.PipeID
	Shape geometry.Shape
}

// ImportCompleted is posted by the worker when a document has been read.
type ImportCompleted struct {
	Location string
	Document *domain.Document
	Err      error
	replace  bool
	done     func(JobResult)
}

// ExportCompleted is posted by the worker when a document has been written.
type ExportCompleted struct {
	Location string
	Err      error
	done     func(JobResult)
}

// JobKind names a background job.
type JobKind string

const (
	JobImport JobKind = "import"
	JobExport JobKind = "export"
)

// JobResult reports the outcome of a load or export.
type JobResult struct {
	Kind     JobKind
	Location string
	Nodes    int
	Pipes    int
	Err      error
}

func eventName(e Event) string {
	switch e := e.(type) {
	case ToolCommand:
		return "command_" + string(e.Name)
	case PointerDown:
		return "pointer_down"
	case PointerMove:
		return "pointer_move"
	case PointerUp:
		return "pointer_up"
	case Cancel:
		return "cancel"
	case InspectNode:
		return "inspect_node"
	case InspectPipe:
		return "inspect_pipe"
	case EditNode:
		return "edit_node"
	case EditPipe:
		return "edit_pipe"
	case MoveNode:
		return "move_node"
	case DeleteNode:
		return "delete_node"
	case DeletePipe:
		return "delete_pipe"
	case ShapePipe:
		return "shape_pipe"
	case ImportCompleted:
		return "import_completed"
	case ExportCompleted:
		return "export_completed"
	default:
		return "unknown"
	}
}
