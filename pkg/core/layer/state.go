package layer

import (
	"fmt"

	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// Pass selects one sweep of the layout cycle.
type Pass uint8

const (
	// Pass1 builds the physical layout: positions, bounding box and pins.
	Pass1 Pass = 1
	// Pass2 lets every virtual layer build its mapping table.
	Pass2 Pass = 2
)

// State is the position of the physical layer in the layout cycle.
//
//	Idle ──pre(1)──▶ Pass1 ──post──▶ Pass1Done ──pre(2)──▶ Pass2 ──post──▶ Complete
//	                   ▲                 │                                    │
//	                   └─────pre(1)──────┴───────────────pre(1)───────────────┘
//
// Complete also accepts pre(2) to remap virtual layers without rebuilding the
// physical layout.
type State uint8

const (
	StateIdle State = iota
	StatePass1
	StatePass1Done
	StatePass2
	StateComplete
)

func (s State) String() string {
	switch s {
	case StatePass1:
		return "pass1"
	case StatePass1Done:
		return "pass1-done"
	case StatePass2:
		return "pass2"
	case StateComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Active reports whether a pass is running.
func (s State) Active() bool { return s == StatePass1 || s == StatePass2 }

// begin returns the state entered by pre(pass), or an INVALID_STATE error.
func (s State) begin(pass Pass) (State, error) {
	if s.Active() {
		return s, lerrors.New(lerrors.ErrCodeInvalidState, "cannot start pass %d while %s is active", pass, s)
	}
	switch pass {
	case Pass1:
		return StatePass1, nil
	case Pass2:
		if s == StatePass1Done || s == StateComplete {
			return StatePass2, nil
		}
		return s, lerrors.New(lerrors.ErrCodeInvalidState, "pass 2 requires a completed pass 1 (state %s)", s)
	}
	return s, lerrors.New(lerrors.ErrCodeInvalidInput, "unknown pass %d", pass)
}

// end returns the state entered by post, or an INVALID_STATE error.
func (s State) end() (State, error) {
	switch s {
	case StatePass1:
		return StatePass1Done, nil
	case StatePass2:
		return StateComplete, nil
	}
	return s, lerrors.New(lerrors.ErrCodeInvalidState, "no active pass to complete (state %s)", s)
}

func (s State) requireActive(op string) error {
	if s.Active() {
		return nil
	}
	return lerrors.New(lerrors.ErrCodeInvalidState, "%s outside an active pass (state %s)", op, s)
}

func (p Pass) String() string { return fmt.Sprintf("pass%d", uint8(p)) }
