package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/signalworks/agency-ops/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS graphs (
	entity_id  TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_by TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS graph_audit (
	id          TEXT PRIMARY KEY,
	entity_id   TEXT NOT NULL,
	writer      TEXT NOT NULL,
	field_count INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_graph_audit_entity ON graph_audit(entity_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context, entityID string) (*model.Graph, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM graphs WHERE entity_id = ?`, entityID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load graph %s", entityID)
	}

	var g model.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil, eris.Wrapf(err, "sqlite: decode graph %s", entityID)
	}
	if g.Fields == nil {
		g.Fields = make(map[string]*model.Field)
	}
	return &g, nil
}

func (s *SQLiteStore) SaveGraph(ctx context.Context, g *model.Graph, writerTag string) error {
	now := time.Now().UTC()
	g.UpdatedAt = now
	g.UpdatedBy = writerTag

	data, err := json.Marshal(g)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal graph %s", g.EntityID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO graphs (entity_id, data, updated_by, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			data = excluded.data,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`,
		g.EntityID, string(data), writerTag, now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save graph %s", g.EntityID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO graph_audit (id, entity_id, writer, field_count, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), g.EntityID, writerTag, len(g.Fields), now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: audit graph %s", g.EntityID)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save")
}

func (s *SQLiteStore) ListEntities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entity_id FROM graphs ORDER BY entity_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entities")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entity")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate entities")
}

func (s *SQLiteStore) AuditTrail(ctx context.Context, entityID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_id, writer, field_count, created_at
		FROM graph_audit WHERE entity_id = ?
		ORDER BY created_at DESC LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: audit trail %s", entityID)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityID, &e.Writer, &e.FieldCount, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit entry")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate audit")
}
