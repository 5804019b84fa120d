package connpool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Factory produces opened handles bound to its current connection string
type Factory[K comparable, N Native] interface {
	SetConnectionString(s string)
	CreateConnection(ctx context.Context) (*Handle[K, N], error)
}

// NewKey returns a random UUID string, the default key for string-keyed registries
func NewKey() string {
	return uuid.NewString()
}

// ConnFactory is the default Factory. Each CreateConnection generates a new
// key, builds a handle around a fresh native and opens it.
type ConnFactory[K comparable, N Native] struct {
	newNative func() N
	newKey    func() K
	logger    *slog.Logger

	mu         sync.RWMutex
	connString string
}

// Ensure ConnFactory implements Factory
var _ Factory[string, Native] = (*ConnFactory[string, Native])(nil)

// NewFactory creates a factory with a custom key generator.
// newKey must never repeat a key during the registry's lifetime.
func NewFactory[K comparable, N Native](newNative func() N, newKey func() K) *ConnFactory[K, N] {
	return &ConnFactory[K, N]{
		newNative: newNative,
		newKey:    newKey,
	}
}

// NewUUIDFactory creates a string-keyed factory using NewKey
func NewUUIDFactory[N Native](newNative func() N) *ConnFactory[string, N] {
	return NewFactory(newNative, NewKey)
}

// WithLogger enables debug logging of connection creation
func (f *ConnFactory[K, N]) WithLogger(logger *slog.Logger) *ConnFactory[K, N] {
	f.logger = logger
	return f
}

// SetConnectionString sets the string applied to future connections
func (f *ConnFactory[K, N]) SetConnectionString(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connString = s
}

// ConnectionString returns the string applied to future connections
func (f *ConnFactory[K, N]) ConnectionString() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connString
}

// CreateConnection builds and opens a new handle
func (f *ConnFactory[K, N]) CreateConnection(ctx context.Context) (*Handle[K, N], error) {
	f.debug(ctx, "create connection started")

	key := f.newKey()
	f.debug(ctx, "new connection key", slog.String("key", keyString(key)))

	h := NewHandle(key, f.newNative)
	h.SetConnectionString(f.ConnectionString())
	if err := h.Open(ctx); err != nil {
		if f.logger != nil {
			f.logger.LogAttrs(ctx, slog.LevelError, "create connection failed",
				slog.String("key", keyString(key)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	f.debug(ctx, "create connection ready", slog.String("key", keyString(key)))
	return h, nil
}

func (f *ConnFactory[K, N]) debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if f.logger == nil {
		return
	}
	f.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
