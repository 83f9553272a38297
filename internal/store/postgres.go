package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/signalworks/agency-ops/internal/model"
)

// PgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgres connects a pool to the given connection string.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (tests use pgxmock here).
func NewPostgresFromPool(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS graphs (
	entity_id  TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_by TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS graph_audit (
	id          TEXT PRIMARY KEY,
	entity_id   TEXT NOT NULL,
	writer      TEXT NOT NULL,
	field_count INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_graph_audit_entity ON graph_audit(entity_id, created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadGraph(ctx context.Context, entityID string) (*model.Graph, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM graphs WHERE entity_id = $1`, entityID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load graph %s", entityID)
	}

	var g model.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, eris.Wrapf(err, "postgres: decode graph %s", entityID)
	}
	if g.Fields == nil {
		g.Fields = make(map[string]*model.Field)
	}
	return &g, nil
}

func (s *PostgresStore) SaveGraph(ctx context.Context, g *model.Graph, writerTag string) error {
	now := time.Now().UTC()
	g.UpdatedAt = now
	g.UpdatedBy = writerTag

	data, err := json.Marshal(g)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal graph %s", g.EntityID)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO graphs (entity_id, data, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entity_id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		g.EntityID, data, writerTag, now,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save graph %s", g.EntityID)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO graph_audit (id, entity_id, writer, field_count, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), g.EntityID, writerTag, len(g.Fields), now,
	)
	return eris.Wrapf(err, "postgres: audit graph %s", g.EntityID)
}

func (s *PostgresStore) ListEntities(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT entity_id FROM graphs ORDER BY entity_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list entities")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entity")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: iterate entities")
}

func (s *PostgresStore) AuditTrail(ctx context.Context, entityID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, entity_id, writer, field_count, created_at
		FROM graph_audit WHERE entity_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		entityID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: audit trail %s", entityID)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityID, &e.Writer, &e.FieldCount, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit entry")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate audit")
}
