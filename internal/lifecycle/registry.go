// Package lifecycle provides the process-wide cleanup registry.
//
// Cleanup actions are grouped into numbered rings. On termination the rings
// are run from the highest ring down to ring 0 and, inside a ring, actions run
// in reverse order of registration, the same way deferred calls unwind. This
// lets the terminal be restored (ring 1) after outer cleanups such as stopping
// watchers (ring 2 and above), while diagnostics queued in the reserved ring 0
// are printed last, once the screen is usable again.
package lifecycle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Ring identifies a group of cleanup actions.
type Ring int

const (
	// RingReserved is used internally for exit diagnostics.
	RingReserved Ring = iota
	// RingTerminal restores terminal state.
	RingTerminal
	// RingServices stops background services before the terminal is restored.
	RingServices
	Ring3
	Ring4
	Ring5
	Ring6
	Ring7

	// RingCount is the number of supported rings.
	RingCount
)

// Registry errors.
var (
	// ErrReservedRing is returned when registering into ring 0.
	ErrReservedRing = errors.New("ring 0 is reserved")

	// ErrRingOutOfRange is returned for rings outside [1, RingCount).
	ErrRingOutOfRange = errors.New("ring out of range")

	// ErrAlreadyRun is returned when registering after Run.
	ErrAlreadyRun = errors.New("registry already run")
)

// Action is a cleanup callback.
type Action func() error

type entry struct {
	name   string
	action Action
}

// Registry holds cleanup actions by ring.
type Registry struct {
	mu     sync.Mutex
	rings  [RingCount][]entry
	once   sync.Once
	ran    bool
	debug  bool
	output io.Writer
}

// NewRegistry creates an empty registry writing diagnostics to stderr.
func NewRegistry() *Registry {
	r := &Registry{output: os.Stderr}
	for i := range r.rings {
		r.rings[i] = make([]entry, 0, 8)
	}
	return r
}

// SetDebug enables source locations in exit diagnostics.
func (r *Registry) SetDebug(debug bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debug = debug
}

// SetOutput sets where exit diagnostics are written.
func (r *Registry) SetOutput(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = w
}

// Register appends action to ring.
// Registering into ring 0 or an unknown ring is a programming error.
func (r *Registry) Register(ring Ring, name string, action Action) error {
	if ring == RingReserved {
		return fmt.Errorf("register %q: %w", name, ErrReservedRing)
	}
	if ring < 0 || ring >= RingCount {
		return fmt.Errorf("register %q in ring %d (maximum is %d): %w", name, ring, RingCount-1, ErrRingOutOfRange)
	}
	return r.register(ring, name, action)
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ring Ring, name string, action Action) {
	if err := r.Register(ring, name, action); err != nil {
		panic(err)
	}
}

func (r *Registry) register(ring Ring, name string, action Action) error {
	if action == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ran {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyRun)
	}
	r.rings[ring] = append(r.rings[ring], entry{name: name, action: action})
	return nil
}

// Fail queues err to be printed in ring 0, after every other cleanup.
func (r *Registry) Fail(err error) {
	if err == nil {
		return
	}
	_ = r.register(RingReserved, "diagnostic", func() error {
		r.mu.Lock()
		w, debug := r.output, r.debug
		r.mu.Unlock()
		_, _ = io.WriteString(w, FormatError(err, debug)+"\n")
		return nil
	})
}

// Len returns the number of actions registered in ring.
func (r *Registry) Len(ring Ring) int {
	if ring < 0 || ring >= RingCount {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rings[ring])
}

// Run invokes every registered action. Only the first call has any effect.
// Errors from actions do not stop the remaining cleanups.
func (r *Registry) Run() error {
	var errs []error
	r.once.Do(func() {
		r.mu.Lock()
		r.ran = true
		r.mu.Unlock()

		for ring := RingCount - 1; ring >= 0; ring-- {
			r.mu.Lock()
			actions := append([]entry(nil), r.rings[ring]...)
			r.mu.Unlock()

			for i := len(actions) - 1; i >= 0; i-- {
				if err := runAction(actions[i]); err != nil {
					errs = append(errs, err)
				}
			}
		}
	})
	return errors.Join(errs...)
}

func runAction(e entry) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("cleanup %s: panic: %v", e.name, v)
		}
	}()
	if err := e.action(); err != nil {
		return fmt.Errorf("cleanup %s: %w", e.name, err)
	}
	return nil
}

// Exit runs the registry and terminates the process with code.
func (r *Registry) Exit(code int) {
	if err := r.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}
