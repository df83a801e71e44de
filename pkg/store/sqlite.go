package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritzau/blueprint/pkg/model"
)

const schemaVersion = 1

// SQLitePersister keeps the diagram in a SQLite database so an editing session
// survives restarts.
type SQLitePersister struct {
	conn   *sql.DB
	dbPath string
}

// OpenSQLite opens or creates the diagram database at path. The special path
// ":memory:" keeps everything in memory.
func OpenSQLite(path string) (*SQLitePersister, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagram database: %w", err)
	}
	// One connection, so ":memory:" databases are shared by every query.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-16000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	p := &SQLitePersister{conn: conn, dbPath: path}
	if err := p.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize diagram schema: %w", err)
	}
	log.Debug("opened diagram database", "path", path)
	return p, nil
}

func (p *SQLitePersister) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS diagram (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			version TEXT NOT NULL,
			created_at TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			ord INTEGER NOT NULL,
			category TEXT NOT NULL,
			label TEXT NOT NULL,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			meta TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_nodes_ord ON nodes(ord);

		CREATE TABLE IF NOT EXISTS edges (
			id TEXT PRIMARY KEY,
			ord INTEGER NOT NULL,
			source TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			target TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			label TEXT,
			source_handle TEXT,
			target_handle TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_edges_ord ON edges(ord);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := p.conn.Exec(schema); err != nil {
		return err
	}
	_, err := p.conn.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

// Close closes the database connection.
func (p *SQLitePersister) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Save replaces the stored diagram with g in one transaction.
func (p *SQLitePersister) Save(ctx context.Context, g model.Graph) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM edges", "DELETE FROM nodes", "DELETE FROM diagram"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear diagram: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO diagram (id, version, created_at, saved_at) VALUES (1, ?, ?, ?)",
		g.Version,
		g.CreatedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save diagram header: %w", err)
	}

	for i, n := range g.Nodes {
		meta, err := json.Marshal(n.Meta)
		if err != nil {
			return fmt.Errorf("failed to encode meta of node %s: %w", n.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO nodes (id, ord, category, label, x, y, meta) VALUES (?, ?, ?, ?, ?, ?, ?)",
			n.ID, i, string(n.Category), n.Label, n.Position.X, n.Position.Y, string(meta),
		)
		if err != nil {
			return fmt.Errorf("failed to save node %s: %w", n.ID, err)
		}
	}

	for i, e := range g.Edges {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO edges (id, ord, source, target, label, source_handle, target_handle) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, i, e.Source, e.Target,
			nullString(e.Label), nullString(e.SourceHandle), nullString(e.TargetHandle),
		)
		if err != nil {
			return fmt.Errorf("failed to save edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit diagram: %w", err)
	}
	return nil
}

// Load reads the stored diagram, returning ErrNoDiagram when none was saved.
func (p *SQLitePersister) Load(ctx context.Context) (*model.Graph, error) {
	var version, createdAt string
	err := p.conn.QueryRowContext(ctx, "SELECT version, created_at FROM diagram WHERE id = 1").
		Scan(&version, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoDiagram
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram header: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	g := model.NewGraph(created)
	g.Version = version

	if err := p.loadNodes(ctx, g); err != nil {
		return nil, err
	}
	if err := p.loadEdges(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *SQLitePersister) loadNodes(ctx context.Context, g *model.Graph) error {
	rows, err := p.conn.QueryContext(ctx, "SELECT id, category, label, x, y, meta FROM nodes ORDER BY ord")
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n model.Node
		var category, meta string
		if err := rows.Scan(&n.ID, &category, &n.Label, &n.Position.X, &n.Position.Y, &meta); err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}
		n.Category = model.Category(category)
		if err := json.Unmarshal([]byte(meta), &n.Meta); err != nil {
			return fmt.Errorf("failed to decode meta of node %s: %w", n.ID, err)
		}
		g.Nodes = append(g.Nodes, n)
	}
	return rows.Err()
}

func (p *SQLitePersister) loadEdges(ctx context.Context, g *model.Graph) error {
	rows, err := p.conn.QueryContext(ctx,
		"SELECT id, source, target, label, source_handle, target_handle FROM edges ORDER BY ord")
	if err != nil {
		return fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.Edge
		var label, sourceHandle, targetHandle sql.NullString
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &label, &sourceHandle, &targetHandle); err != nil {
			return fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Label = label.String
		e.SourceHandle = sourceHandle.String
		e.TargetHandle = targetHandle.String
		g.Edges = append(g.Edges, e)
	}
	return rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
