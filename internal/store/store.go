// Package store persists captured leads and serves them back to the
// dashboard. The PostgreSQL implementation is the production path; the
// in-memory implementation backs deployments without a configured database.
package store

import (
	"context"
	"errors"
	"time"
)

// Lead is a prospective customer's captured contact record.
type Lead struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Company   string    `db:"company" json:"company,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ErrLeadNotFound is returned when a lead identifier matches no record.
var ErrLeadNotFound = errors.New("lead not found")

// Store persists and retrieves leads. Leads are created once and never
// updated or deleted.
type Store interface {
	// CreateLead persists a new lead and fills in its ID and CreatedAt.
	CreateLead(ctx context.Context, lead *Lead) error
	// GetLead returns the lead with the given ID, or ErrLeadNotFound.
	GetLead(ctx context.Context, id int64) (*Lead, error)
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connections.
	Close() error
}
