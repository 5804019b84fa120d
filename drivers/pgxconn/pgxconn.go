// Package pgxconn provides a connpool native backend holding a single
// pgx PostgreSQL connection.
package pgxconn

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fernandezvara/connpool"
)

// closeTimeout bounds the graceful termination message sent on Close
const closeTimeout = 5 * time.Second

// Conn wraps a *pgx.Conn
type Conn struct {
	conn *pgx.Conn
}

// Ensure Conn implements connpool.Native
var _ connpool.Native = (*Conn)(nil)

// New creates an unopened connection
func New() *Conn {
	return &Conn{}
}

// Open parses dsn and connects
func (c *Conn) Open(ctx context.Context, dsn string) error {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return err
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return err
	}

	c.conn = conn
	return nil
}

// Close closes the connection. Safe to call when never opened.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := c.conn.Close(ctx)
	c.conn = nil
	return err
}

// Conn returns the underlying pgx connection, nil when not open
func (c *Conn) Conn() *pgx.Conn {
	return c.conn
}

// Ping verifies the connection is alive
func (c *Conn) Ping(ctx context.Context) error {
	if c.conn == nil {
		return &connpool.Error{
			Code:    connpool.CodeInvalidState,
			Message: "connection is not open",
			Op:      "Ping",
		}
	}
	return c.conn.Ping(ctx)
}

// NewRegistry creates a string-keyed registry of pgx connections
func NewRegistry(cfg connpool.Config) (*connpool.Registry[string, *Conn], error) {
	factory := connpool.NewUUIDFactory(New)
	if cfg.Logger != nil {
		factory.WithLogger(cfg.Logger)
	}
	return connpool.New[string, *Conn](factory, cfg)
}
