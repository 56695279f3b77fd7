// Package library stores named asset-tree projects in SQLite.
package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agentic-research/rbxforge/api"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("project not found")

// ProjectInfo summarizes a stored project.
type ProjectInfo struct {
	Name      string
	RootName  string
	RootClass string
	NodeCount int
	UpdatedAt time.Time
}

// SQLiteLibrary persists projects as JSON trees plus a flattened nodes table
// for listing and class queries.
type SQLiteLibrary struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	name TEXT PRIMARY KEY,
	updated_at INTEGER NOT NULL,
	node_count INTEGER NOT NULL,
	tree JSON NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	project TEXT NOT NULL,
	id TEXT NOT NULL,
	parent_id TEXT,
	name TEXT NOT NULL,
	class_name TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (project, id)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_nodes_class ON nodes(project, class_name);
`

// Open opens (or creates) the library database at dbPath.
func Open(dbPath string) (*SQLiteLibrary, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteLibrary{db: db, now: time.Now}, nil
}

// Save stores root under name, replacing any previous version.
func (l *SQLiteLibrary) Save(name string, root api.Node) error {
	if name == "" {
		return errors.New("save project: name required")
	}
	tree, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", name, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // safe to ignore (no-op if committed)

	if _, err := tx.Exec(`DELETE FROM nodes WHERE project = ?`, name); err != nil {
		return fmt.Errorf("clear nodes for %s: %w", name, err)
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO projects (name, updated_at, node_count, tree) VALUES (?, ?, ?, ?)`,
		name, l.now().UnixNano(), root.Count(), string(tree),
	); err != nil {
		return fmt.Errorf("insert project %s: %w", name, err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO nodes (project, id, parent_id, name, class_name, position) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() // safe to ignore

	// Node IDs may be missing or repeated in hand-written files, so rows are
	// keyed by document position instead.
	position := 0
	var insert func(n *api.Node, parentKey *string) error
	insert = func(n *api.Node, parentKey *string) error {
		key := fmt.Sprintf("%d", position)
		if _, err := stmt.Exec(name, key, parentKey, n.Name, n.ClassName, position); err != nil {
			return fmt.Errorf("insert node %s: %w", n.Name, err)
		}
		position++
		for i := range n.Children {
			if err := insert(&n.Children[i], &key); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(&root, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the tree stored under name.
func (l *SQLiteLibrary) Load(name string) (api.Node, error) {
	var raw string
	err := l.db.QueryRow(`SELECT tree FROM projects WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Node{}, fmt.Errorf("load %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return api.Node{}, fmt.Errorf("load %s: %w", name, err)
	}
	var root api.Node
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return api.Node{}, fmt.Errorf("decode project %s: %w", name, err)
	}
	return root, nil
}

// List returns every project, most recently updated first.
func (l *SQLiteLibrary) List() ([]ProjectInfo, error) {
	rows, err := l.db.Query(`
		SELECT p.name, p.updated_at, p.node_count, COALESCE(n.name, ''), COALESCE(n.class_name, '')
		FROM projects p
		LEFT JOIN nodes n ON n.project = p.name AND n.parent_id IS NULL
		ORDER BY p.updated_at DESC, p.name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []ProjectInfo
	for rows.Next() {
		var info ProjectInfo
		var updated int64
		if err := rows.Scan(&info.Name, &updated, &info.NodeCount, &info.RootName, &info.RootClass); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		info.UpdatedAt = time.Unix(0, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// CountByClass returns how many nodes of className the project holds.
func (l *SQLiteLibrary) CountByClass(name, className string) (int, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM nodes WHERE project = ? AND class_name = ?`, name, className).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s in %s: %w", className, name, err)
	}
	return n, nil
}

// Delete removes the project stored under name.
func (l *SQLiteLibrary) Delete(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.db.Exec(`DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s: %w", name, ErrNotFound)
	}
	if _, err := l.db.Exec(`DELETE FROM nodes WHERE project = ?`, name); err != nil {
		return fmt.Errorf("delete nodes for %s: %w", name, err)
	}
	return nil
}

func (l *SQLiteLibrary) Close() error {
	return l.db.Close()
}
