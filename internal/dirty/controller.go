// Package dirty coalesces bursts of local edits into debounced saves and
// tracks the edit→save lifecycle as a small state machine.
package dirty

import (
	"context"
	"sync"
	"time"
)

type State int

const (
	StateClean State = iota
	StatePendingSave
	StateSaving
	StateSaved
	StateSaveError
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StatePendingSave:
		return "pending"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateSaveError:
		return "error"
	default:
		return "unknown"
	}
}

// Opts configures a Controller.
type Opts[T any] struct {
	// Debounce is the quiescence window; defaults to 500ms.
	Debounce time.Duration

	// Snapshot captures the state to save. It is called when a save cycle
	// actually starts, never earlier, so the snapshot reflects every edit in
	// the burst. It must return a copy the caller will not mutate further.
	Snapshot func() T

	// Save persists one snapshot. One call at most is in flight at a time.
	Save func(context.Context, T) error

	// OnState observes state transitions (err is non-nil for StateSaveError
	// only). Called outside the controller lock, possibly from the timer or
	// save goroutine; it must not call back into the controller.
	OnState func(State, error)
}

// Controller owns the dirty-state lifecycle for one document.
//
// Notify re-arms the debounce timer; only the last edit's timer fires. Edits
// arriving while a save is in flight are never dropped: they mark the
// controller pending and exactly one follow-up cycle runs once the in-flight
// save resolves. A failed save is not retried; the next edit (or SaveNow)
// starts a fresh cycle.
type Controller[T any] struct {
	debounce time.Duration
	snapshot func() T
	save     func(context.Context, T) error
	onState  func(State, error)

	mu      sync.Mutex
	timer   *time.Timer
	state   State
	lastErr error
	pending bool
	saving  bool
}

func New[T any](opts Opts[T]) *Controller[T] {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Controller[T]{
		debounce: debounce,
		snapshot: opts.Snapshot,
		save:     opts.Save,
		onState:  opts.OnState,
		state:    StateClean,
	}
}

// State returns the current state and, for StateSaveError, the failure.
func (c *Controller[T]) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastErr
}

// Dirty reports whether edits exist that are not yet confirmed written.
func (c *Controller[T]) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending || c.saving
}

// Notify records a document change and (re)arms the debounce timer.
func (c *Controller[T]) Notify() {
	c.mu.Lock()
	c.pending = true
	var fire func()
	if !c.saving {
		fire = c.setStateLocked(StatePendingSave, nil)
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, c.onTimer)
	} else {
		c.timer.Reset(c.debounce)
	}
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// SaveNow bypasses the debounce timer. If a save is already in flight the
// request coalesces into the follow-up cycle instead of starting a second
// concurrent save.
func (c *Controller[T]) SaveNow() {
	c.mu.Lock()
	if c.saving {
		c.pending = true
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = true
	c.mu.Unlock()
	go c.runSave()
}

// Flush performs a final synchronous save if edits are outstanding. Used on
// quit and before replacing the document on a project switch. Waits for an
// in-flight save to resolve first so the one-in-flight rule holds.
func (c *Controller[T]) Flush(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.saving {
			c.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}
		if !c.pending {
			c.mu.Unlock()
			return nil
		}
		if c.timer != nil {
			c.timer.Stop()
		}
		c.pending = false
		c.saving = true
		fire := c.setStateLocked(StateSaving, nil)
		c.mu.Unlock()
		if fire != nil {
			fire()
		}

		err := c.save(ctx, c.snapshot())
		c.finishSave(err)
		if err != nil {
			return err
		}
	}
}

func (c *Controller[T]) onTimer() {
	c.mu.Lock()
	if c.saving {
		// A save is in flight; run again afterwards to pick up the pending edits.
		if c.timer != nil {
			c.timer.Reset(c.debounce)
		}
		c.mu.Unlock()
		return
	}
	if !c.pending {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.runSave()
}

func (c *Controller[T]) runSave() {
	c.mu.Lock()
	if c.saving || !c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = false
	c.saving = true
	fire := c.setStateLocked(StateSaving, nil)
	c.mu.Unlock()
	if fire != nil {
		fire()
	}

	err := c.save(context.Background(), c.snapshot())
	c.finishSave(err)
}

func (c *Controller[T]) finishSave(err error) {
	c.mu.Lock()
	c.saving = false
	var fire func()
	if err != nil {
		fire = c.setStateLocked(StateSaveError, err)
	} else if c.pending {
		fire = c.setStateLocked(StatePendingSave, nil)
	} else {
		fire = c.setStateLocked(StateSaved, nil)
	}
	// Edits queued during the save trigger exactly one follow-up cycle.
	if c.pending {
		if c.timer == nil {
			c.timer = time.AfterFunc(c.debounce, c.onTimer)
		} else {
			c.timer.Reset(c.debounce)
		}
	}
	c.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// setStateLocked updates state under c.mu and returns the observer call to
// run once the lock is released, keeping transitions ordered per goroutine.
func (c *Controller[T]) setStateLocked(s State, err error) func() {
	c.state = s
	c.lastErr = err
	if c.onState == nil {
		return nil
	}
	cb := c.onState
	return func() { cb(s, err) }
}
