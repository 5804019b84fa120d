// Package sqlxdb provides a connpool native backend over database/sql using
// sqlx. Supported drivers: sqlite3, mysql, postgres.
package sqlxdb

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/fernandezvara/connpool"
)

// Supported driver names
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Conn is a database/sql connection for one driver
type Conn struct {
	driver string
	db     *sqlx.DB
}

// Ensure Conn implements connpool.Native
var _ connpool.Native = (*Conn)(nil)

// New creates an unopened connection for driver
func New(driver string) *Conn {
	return &Conn{driver: driver}
}

// Constructor returns a native constructor for connpool factories
func Constructor(driver string) func() *Conn {
	return func() *Conn {
		return New(driver)
	}
}

// sqlDriverName maps a supported driver to its database/sql registration
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		// modernc/sqlite registers as "sqlite" (CGO-free)
		return "sqlite", nil
	case DriverMySQL, DriverPostgres:
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported DB driver %q: must be sqlite3, mysql, or postgres", driver)
	}
}

// Open opens dsn with the configured driver and pings it
func (c *Conn) Open(ctx context.Context, dsn string) error {
	name, err := sqlDriverName(c.driver)
	if err != nil {
		return err
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping %s: %w", c.driver, err)
	}

	if c.driver == DriverSQLite {
		// SQLite WAL mode for better concurrency
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return fmt.Errorf("enable WAL: %w", err)
		}
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

// DB returns the underlying sqlx.DB, nil when not open
func (c *Conn) DB() *sqlx.DB {
	return c.db
}

// Driver returns the configured driver name
func (c *Conn) Driver() string {
	return c.driver
}

// NewRegistry creates a string-keyed registry of connections for driver
func NewRegistry(driver string, cfg connpool.Config) (*connpool.Registry[string, *Conn], error) {
	if _, err := sqlDriverName(driver); err != nil {
		return nil, err
	}
	factory := connpool.NewUUIDFactory(Constructor(driver))
	if cfg.Logger != nil {
		factory.WithLogger(cfg.Logger)
	}
	return connpool.New[string, *Conn](factory, cfg)
}
