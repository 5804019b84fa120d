// Package hooks provides observability hooks for connpool
package hooks

import (
	"context"
	"time"
)

// Operation names reported in Event.Op
const (
	OpCheckOutNew         = "check_out_new"
	OpCheckOut            = "check_out"
	OpCheckIn             = "check_in"
	OpCloseAndRemove      = "close_and_remove"
	OpSetConnectionString = "set_connection_string"
	OpClose               = "close"
)

// Event describes one registry operation
type Event struct {
	Op        string
	Key       string // Empty when the operation is not bound to one key
	StartTime time.Time
	Err       error
	Removed   int // Handles closed and removed by the operation
	Count     int // Registered connections after the operation
}

// Hook observes registry operations. Hooks cannot fail an operation.
type Hook interface {
	BeforeOperation(ctx context.Context, event *Event) context.Context
	AfterOperation(ctx context.Context, event *Event)
}
