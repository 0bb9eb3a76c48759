package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/captaleads/funnelcast/pkg/constants"
)

const leadsSchema = `
CREATE TABLE IF NOT EXISTS leads (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	phone VARCHAR(50) NOT NULL,
	email VARCHAR(120) NOT NULL,
	company VARCHAR(160),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const leadsInsert = `INSERT INTO leads (name, phone, email, company)
VALUES ($1, $2, $3, $4) RETURNING id, created_at`

const leadsSelectByID = `SELECT id, name, phone, email, COALESCE(company, '') AS company, created_at
FROM leads WHERE id = $1`

// PostgresStore persists leads in PostgreSQL. When a Redis client is
// provided, reads go through a cache keyed by lead ID.
type PostgresStore struct {
	db     *sqlx.DB
	cache  *redis.Client
	logger *zap.Logger
}

// NewPostgres creates a lead store backed by the given database connection.
// cache may be nil to disable caching. If logger is nil, it will use a no-op
// logger to prevent panics.
func NewPostgres(db *sqlx.DB, cache *redis.Client, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, cache: cache, logger: logger}
}

// Migrate creates the leads table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, leadsSchema); err != nil {
		return fmt.Errorf("failed to create leads table: %w", err)
	}
	return nil
}

// CreateLead inserts the lead inside a transaction and fills in the
// database-assigned ID and creation timestamp. On any failure the insert is
// rolled back and no record remains.
func (s *PostgresStore) CreateLead(ctx context.Context, lead *Lead) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	company := sql.NullString{String: lead.Company, Valid: lead.Company != ""}
	err = tx.QueryRowxContext(ctx, leadsInsert, lead.Name, lead.Phone, lead.Email, company).
		Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("failed to roll back lead insert",
				zap.String("op", "store.CreateLead"),
				zap.Error(rbErr),
			)
		}
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lead insert: %w", err)
	}

	s.logger.Debug("lead persisted",
		zap.String("op", "store.CreateLead"),
		zap.Int64("id", lead.ID),
	)
	s.cacheLead(ctx, lead)
	return nil
}

// GetLead returns the lead with the given ID, consulting the cache first.
// Cache failures fall back to the database.
func (s *PostgresStore) GetLead(ctx context.Context, id int64) (*Lead, error) {
	if s.cache != nil {
		payload, err := s.cache.Get(ctx, leadCacheKey(id)).Result()
		if err == nil {
			var lead Lead
			if jsonErr := json.Unmarshal([]byte(payload), &lead); jsonErr == nil {
				return &lead, nil
			}
			s.logger.Warn("discarding malformed cached lead",
				zap.String("op", "store.GetLead"),
				zap.Int64("id", id),
			)
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("lead cache lookup failed",
				zap.String("op", "store.GetLead"),
				zap.Int64("id", id),
				zap.Error(err),
			)
		}
	}

	var lead Lead
	if err := s.db.GetContext(ctx, &lead, leadsSelectByID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to select lead %d: %w", id, err)
	}

	s.cacheLead(ctx, &lead)
	return &lead, nil
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database connection and the cache client.
func (s *PostgresStore) Close() error {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("failed to close redis client",
				zap.String("op", "store.Close"),
				zap.Error(err),
			)
		}
	}
	return s.db.Close()
}

// cacheLead stores the lead in Redis. Failures are logged and ignored; the
// database remains the source of truth.
func (s *PostgresStore) cacheLead(ctx context.Context, lead *Lead) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		s.logger.Warn("failed to encode lead for cache",
			zap.String("op", "store.cacheLead"),
			zap.Int64("id", lead.ID),
			zap.Error(err),
		)
		return
	}

	if err := s.cache.Set(ctx, leadCacheKey(lead.ID), payload, constants.LeadCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache lead",
			zap.String("op", "store.cacheLead"),
			zap.Int64("id", lead.ID),
			zap.Error(err),
		)
	}
}

func leadCacheKey(id int64) string {
	return fmt.Sprintf("funnelcast:lead:%d", id)
}
