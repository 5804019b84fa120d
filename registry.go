package connpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/fernandezvara/connpool/hooks"
)

// Registry tracks checked-out connection handles by key.
//
// Single-key operations are atomic. Operations spanning keys are not:
// a connection created while SetConnectionString or Close sweeps the map
// may be created with either string and may survive the sweep.
type Registry[K comparable, N Native] struct {
	factory     Factory[K, N]
	connections *xsync.MapOf[K, *Handle[K, N]]
	hooks       []hooks.Hook
	config      Config

	mu         sync.RWMutex
	connString string

	created      atomic.Uint64
	removed      atomic.Uint64
	collisions   atomic.Uint64
	openFailures atomic.Uint64
	notFound     atomic.Uint64
}

// New creates a registry that obtains connections from factory
func New[K comparable, N Native](factory Factory[K, N], cfg Config) (*Registry[K, N], error) {
	cfg.applyDefaults()

	if factory == nil {
		return nil, &Error{
			Code:    CodeError,
			Message: "connection factory is required",
			Op:      "New",
		}
	}

	r := &Registry[K, N]{
		factory:     factory,
		connections: xsync.NewMapOf[K, *Handle[K, N]](),
		config:      cfg,
	}

	// Add observability hooks
	if cfg.Logger != nil {
		r.hooks = append(r.hooks, hooks.NewLoggerHook(cfg.Logger, cfg.LogSlowOps))
	}
	if cfg.MetricsRegistry != nil {
		hook, err := hooks.NewMetricsHook(cfg.MetricsRegistry)
		if err != nil {
			return nil, fmt.Errorf("connpool: failed to create metrics hook: %w", err)
		}
		r.hooks = append(r.hooks, hook)
	}
	if cfg.Tracer != nil {
		r.hooks = append(r.hooks, hooks.NewTracingHook(cfg.Tracer))
	}
	r.hooks = append(r.hooks, cfg.Hooks...)

	if cfg.HasConnectionString {
		r.connString = cfg.ConnectionString
		factory.SetConnectionString(cfg.ConnectionString)
	}

	return r, nil
}

// Config returns the configuration the registry was created with
func (r *Registry[K, N]) Config() Config {
	return r.config
}

// ConnectionString returns the string applied to future connections
func (r *Registry[K, N]) ConnectionString() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connString
}

// SetConnectionString changes the string used for future connections and
// closes and removes every registered connection. Existing handles are not
// migrated. Entries are removed even when closing them fails; the close
// errors are returned joined.
func (r *Registry[K, N]) SetConnectionString(ctx context.Context, s string) error {
	ctx, event := r.before(ctx, hooks.OpSetConnectionString, "")

	r.mu.Lock()
	r.connString = s
	r.factory.SetConnectionString(s)
	r.mu.Unlock()

	removed, err := r.removeAll()
	event.Removed = removed
	r.after(ctx, event, err)
	return err
}

// CheckOutNew creates, opens and registers a new connection
func (r *Registry[K, N]) CheckOutNew(ctx context.Context) (*Handle[K, N], error) {
	ctx, event := r.before(ctx, hooks.OpCheckOutNew, "")

	conn, err := r.factory.CreateConnection(ctx)
	if err != nil {
		r.openFailures.Add(1)
		r.after(ctx, event, err)
		return nil, err
	}
	if conn == nil {
		r.openFailures.Add(1)
		err := &Error{
			Code:    CodeError,
			Message: "factory returned no connection",
			Op:      "CheckOutNew",
		}
		r.after(ctx, event, err)
		return nil, err
	}
	event.Key = keyString(conn.Key())

	if _, loaded := r.connections.LoadOrStore(conn.Key(), conn); loaded {
		r.collisions.Add(1)
		_ = conn.Dispose()
		err := &Error{
			Code:    CodeError,
			Message: "cannot open connection",
			Op:      "CheckOutNew",
			Key:     event.Key,
		}
		r.after(ctx, event, err)
		return nil, err
	}

	r.created.Add(1)
	r.after(ctx, event, nil)
	return conn, nil
}

// CheckOut returns the registered connection for key.
// The registry keeps its own reference to the same handle.
func (r *Registry[K, N]) CheckOut(ctx context.Context, key K) (*Handle[K, N], error) {
	ctx, event := r.before(ctx, hooks.OpCheckOut, keyString(key))

	conn, ok := r.connections.Load(key)
	if !ok {
		r.notFound.Add(1)
		err := newNotFoundError("CheckOut", key)
		r.after(ctx, event, err)
		return nil, err
	}

	r.after(ctx, event, nil)
	return conn, nil
}

// CheckIn verifies that conn is still registered. It does not change the
// stored entry or the handle.
func (r *Registry[K, N]) CheckIn(ctx context.Context, conn *Handle[K, N]) error {
	if conn == nil {
		return &Error{Code: CodeInvalidState, Message: "connection is nil", Op: "CheckIn"}
	}

	ctx, event := r.before(ctx, hooks.OpCheckIn, keyString(conn.Key()))

	// TODO: decide whether CheckIn should replace the stored handle with conn
	// when both share a key but differ; callers only get validation today.
	if _, ok := r.connections.Load(conn.Key()); !ok {
		r.notFound.Add(1)
		err := newNotFoundError("CheckIn", conn.Key())
		r.after(ctx, event, err)
		return err
	}

	r.after(ctx, event, nil)
	return nil
}

// CloseAndRemove removes the connection for key and disposes it.
// An unknown key is a no-op.
func (r *Registry[K, N]) CloseAndRemove(ctx context.Context, key K) error {
	ctx, event := r.before(ctx, hooks.OpCloseAndRemove, keyString(key))

	removed, err := r.remove(key)
	if removed {
		event.Removed = 1
	}

	r.after(ctx, event, err)
	return err
}

// CloseAndRemoveConn removes conn by its key and disposes the registered handle
func (r *Registry[K, N]) CloseAndRemoveConn(ctx context.Context, conn *Handle[K, N]) error {
	if conn == nil {
		return nil
	}
	return r.CloseAndRemove(ctx, conn.Key())
}

// Count returns the number of registered connections
func (r *Registry[K, N]) Count() int {
	return r.connections.Size()
}

// Keys returns a snapshot of the registered keys
func (r *Registry[K, N]) Keys() []K {
	keys := make([]K, 0, r.connections.Size())
	r.connections.Range(func(key K, _ *Handle[K, N]) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Close closes and removes every registered connection. The connection
// string is kept, so the registry stays usable.
func (r *Registry[K, N]) Close() error {
	ctx, event := r.before(context.Background(), hooks.OpClose, "")

	removed, err := r.removeAll()
	event.Removed = removed
	r.after(ctx, event, err)
	return err
}

// remove drops key from the map and disposes the handle it held
func (r *Registry[K, N]) remove(key K) (bool, error) {
	conn, ok := r.connections.LoadAndDelete(key)
	if !ok {
		return false, nil
	}

	r.removed.Add(1)
	if err := conn.Dispose(); err != nil {
		return true, &Error{
			Code:    CodeError,
			Message: "failed to close connection",
			Op:      "CloseAndRemove",
			Key:     keyString(key),
			Cause:   err,
		}
	}
	return true, nil
}

// removeAll removes the keys registered at call time
func (r *Registry[K, N]) removeAll() (int, error) {
	var (
		removed int
		errs    []error
	)
	for _, key := range r.Keys() {
		ok, err := r.remove(key)
		if ok {
			removed++
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

func (r *Registry[K, N]) before(ctx context.Context, op, key string) (context.Context, *hooks.Event) {
	event := &hooks.Event{
		Op:        op,
		Key:       key,
		StartTime: time.Now(),
	}
	for _, h := range r.hooks {
		ctx = h.BeforeOperation(ctx, event)
	}
	return ctx, event
}

func (r *Registry[K, N]) after(ctx context.Context, event *hooks.Event, err error) {
	if len(r.hooks) == 0 {
		return
	}
	event.Err = err
	event.Count = r.connections.Size()
	for _, h := range r.hooks {
		h.AfterOperation(ctx, event)
	}
}
