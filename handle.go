package connpool

import (
	"context"
	"sync"
)

// Native is the connection resource a backend supplies.
// Close must tolerate being called on a never-opened or closed value.
type Native interface {
	Open(ctx context.Context, connString string) error
	Close() error
}

// State is the lifecycle state of a Handle
type State int

const (
	StateClosed State = iota
	StateOpen
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Handle wraps one native connection and the string used to open it.
//
// Handles returned by a Registry are shared references; the registry keeps
// treating them as registered until they are removed through it.
type Handle[K comparable, N Native] struct {
	key       K
	newNative func() N

	mu         sync.Mutex
	connString string
	hasString  bool
	native     N
	hasNative  bool
	state      State
}

// NewHandle creates an unopened handle for key. newNative builds a fresh
// native resource on every Open.
func NewHandle[K comparable, N Native](key K, newNative func() N) *Handle[K, N] {
	return &Handle[K, N]{
		key:       key,
		newNative: newNative,
	}
}

// Key returns the handle's registry key
func (h *Handle[K, N]) Key() K {
	return h.key
}

// SetConnectionString stores s for the next Open.
// An already open native is left untouched.
func (h *Handle[K, N]) SetConnectionString(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connString = s
	h.hasString = true
}

// ConnectionString returns the stored connection string
func (h *Handle[K, N]) ConnectionString() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connString
}

// State returns the current lifecycle state
func (h *Handle[K, N]) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Native returns the underlying native connection and whether one exists
func (h *Handle[K, N]) Native() (N, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.native, h.hasNative
}

// Open builds a native resource and opens it with the stored string
func (h *Handle[K, N]) Open(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.state == StateDisposed:
		return &Error{Code: CodeInvalidState, Message: "connection is disposed", Op: "Open", Key: keyString(h.key)}
	case h.state == StateOpen:
		return &Error{Code: CodeInvalidState, Message: "connection is already open", Op: "Open", Key: keyString(h.key)}
	case !h.hasString:
		return &Error{Code: CodeInvalidState, Message: "connection string not set", Op: "Open", Key: keyString(h.key)}
	case h.newNative == nil:
		return &Error{Code: CodeInvalidState, Message: "no native constructor", Op: "Open", Key: keyString(h.key)}
	}

	native := h.newNative()
	if err := native.Open(ctx, h.connString); err != nil {
		_ = native.Close()
		return wrapOpenError(err, h.key)
	}

	h.native = native
	h.hasNative = true
	h.state = StateOpen
	return nil
}

// Close closes the native resource if one exists. Safe to call in any state.
func (h *Handle[K, N]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeLocked()
}

func (h *Handle[K, N]) closeLocked() error {
	if h.state != StateOpen {
		return nil
	}
	h.state = StateClosed
	if !h.hasNative {
		return nil
	}
	return h.native.Close()
}

// Dispose closes the handle and releases the native resource.
// Repeated calls are no-ops.
func (h *Handle[K, N]) Dispose() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateDisposed {
		return nil
	}

	err := h.closeLocked()

	var zero N
	h.native = zero
	h.hasNative = false
	h.state = StateDisposed
	return err
}
