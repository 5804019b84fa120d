package connpool

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeNative records calls made by a Handle
type fakeNative struct {
	backend    *fakeBackend
	connString string
	opened     bool
	closes     int
}

func (n *fakeNative) Open(ctx context.Context, connString string) error {
	n.backend.mu.Lock()
	defer n.backend.mu.Unlock()
	n.connString = connString
	if n.backend.openErr != nil {
		return n.backend.openErr
	}
	n.opened = true
	return nil
}

func (n *fakeNative) Close() error {
	n.backend.mu.Lock()
	defer n.backend.mu.Unlock()
	n.closes++
	n.opened = false
	return n.backend.closeErr
}

func (n *fakeNative) isOpen() bool {
	n.backend.mu.Lock()
	defer n.backend.mu.Unlock()
	return n.opened
}

func (n *fakeNative) closeCount() int {
	n.backend.mu.Lock()
	defer n.backend.mu.Unlock()
	return n.closes
}

// fakeBackend builds fakeNatives and remembers them
type fakeBackend struct {
	mu       sync.Mutex
	natives  []*fakeNative
	openErr  error
	closeErr error
}

func (b *fakeBackend) newNative() *fakeNative {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := &fakeNative{backend: b}
	b.natives = append(b.natives, n)
	return n
}

func (b *fakeBackend) all() []*fakeNative {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeNative(nil), b.natives...)
}

func (b *fakeBackend) openCount() int {
	n := 0
	for _, native := range b.all() {
		if native.isOpen() {
			n++
		}
	}
	return n
}

// sequentialKeys returns a collision-free string key generator
func sequentialKeys() func() string {
	var n atomic.Int64
	return func() string {
		return "conn-" + keyString(n.Add(1))
	}
}

// newTestRegistry returns a registry backed by fake natives
func newTestRegistry(cfg Config) (*Registry[string, *fakeNative], *fakeBackend, error) {
	backend := &fakeBackend{}
	factory := NewUUIDFactory(backend.newNative)
	reg, err := New[string, *fakeNative](factory, cfg)
	return reg, backend, err
}

// fixedKeyFactory always produces handles with the same key
type fixedKeyFactory struct {
	key        string
	backend    *fakeBackend
	connString string
	created    []*Handle[string, *fakeNative]
}

func (f *fixedKeyFactory) SetConnectionString(s string) {
	f.connString = s
}

func (f *fixedKeyFactory) CreateConnection(ctx context.Context) (*Handle[string, *fakeNative], error) {
	h := NewHandle(f.key, f.backend.newNative)
	h.SetConnectionString(f.connString)
	if err := h.Open(ctx); err != nil {
		return nil, err
	}
	f.created = append(f.created, h)
	return h, nil
}
