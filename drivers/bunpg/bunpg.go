// Package bunpg provides a connpool native backend for PostgreSQL built on
// Bun with the pgdriver connector.
package bunpg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/fernandezvara/connpool"
)

// Config holds connector settings applied on every Open
type Config struct {
	DialTimeout  time.Duration // Connection dial timeout (default: 5s)
	ReadTimeout  time.Duration // Read timeout (default: 30s)
	WriteTimeout time.Duration // Write timeout (default: 30s)
	MaxOpenConns int           // Max open connections of the underlying sql.DB (default: 1)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		DialTimeout:  5 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxOpenConns: 1,
	}
}

func (c *Config) applyDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 1
	}
}

// Conn is a PostgreSQL connection exposed as a bun.DB
type Conn struct {
	config Config
	db     *bun.DB
}

// Ensure Conn implements connpool.Native
var _ connpool.Native = (*Conn)(nil)

// New creates an unopened connection
func New(cfg Config) *Conn {
	cfg.applyDefaults()
	return &Conn{config: cfg}
}

// Constructor returns a native constructor for connpool factories
func Constructor(cfg Config) func() *Conn {
	return func() *Conn {
		return New(cfg)
	}
}

// Open connects to dsn and verifies the connection with a ping
func (c *Conn) Open(ctx context.Context, dsn string) (err error) {
	// pgdriver panics on a malformed DSN
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("bunpg: invalid dsn: %v", p)
		}
	}()

	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithDialTimeout(c.config.DialTimeout),
		pgdriver.WithReadTimeout(c.config.ReadTimeout),
		pgdriver.WithWriteTimeout(c.config.WriteTimeout),
	)

	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxOpenConns(c.config.MaxOpenConns)

	db := bun.NewDB(sqlDB, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	c.db = db
	return nil
}

// Close closes the database. Safe to call when never opened.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// DB returns the underlying bun.DB, nil when not open
func (c *Conn) DB() *bun.DB {
	return c.db
}

// NewRegistry creates a string-keyed registry of Bun PostgreSQL connections
func NewRegistry(cfg Config, registryCfg connpool.Config) (*connpool.Registry[string, *Conn], error) {
	factory := connpool.NewUUIDFactory(Constructor(cfg))
	if registryCfg.Logger != nil {
		factory.WithLogger(registryCfg.Logger)
	}
	return connpool.New[string, *Conn](factory, registryCfg)
}
