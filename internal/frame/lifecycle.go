package frame

import (
	"fmt"
	"sync/atomic"
)

type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// Lifecycle is the load-once record for one mount. The zero value is
// Unloaded.
type Lifecycle struct {
	state atomic.Int32
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Begin moves Unloaded to Loading. Only the first caller gets true.
func (l *Lifecycle) Begin() bool {
	return l.state.CompareAndSwap(int32(StateUnloaded), int32(StateLoading))
}

func (l *Lifecycle) finish() {
	l.state.CompareAndSwap(int32(StateLoading), int32(StateReady))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unloaded":
		*s = StateUnloaded
	case "loading":
		*s = StateLoading
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("unknown frame state %q", b)
	}
	return nil
}
