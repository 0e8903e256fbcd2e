package editor

import "gasmap/internal/domain"

// Mode is the tag of the editing state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeArmedPlacement
	ModeArmedPipe
	ModeDrawingPipe
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeArmedPlacement:
		return "armed_placement"
	case ModeArmedPipe:
		return "armed_pipe"
	case ModeDrawingPipe:
		return "drawing_pipe"
	default:
		return "unknown"
	}
}

// State is the current editing state. Category is set only in
// ModeArmedPlacement; Pipe only in ModeDrawingPipe.
type State struct {
	Mode     Mode
	Category domain.Category
	Pipe     *domain.Pipe
}

// Origin returns the port a pipe is being drawn from, or nil.
func (s State) Origin() *domain.Port {
	if s.Pipe == nil {
		return nil
	}
	return s.Pipe.A
}

func idle() State {
	return State{Mode: ModeIdle}
}
