// Package store persists call graphs into a SQLite node/edge database
// with content-addressed node IDs.
package store

import (
	"database/sql"
	"fmt"

	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"github.com/Frankenween/dot-linker/internal/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id   BLOB PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
	src BLOB NOT NULL,
	dst BLOB NOT NULL,
	PRIMARY KEY (src, dst)
) WITHOUT ROWID;
`

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the database at the given path and applies the
// schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Fail early if connection is bad
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Enable WAL mode
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Wait up to 5s on lock instead of failing immediately
	conn.Exec("PRAGMA busy_timeout=5000")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// NodeID computes the content-addressed ID of a graph node:
// blake3("func\n" + name).
func NodeID(name string) []byte {
	hash := blake3.Sum256([]byte("func\n" + name))
	return hash[:]
}

// InsertGraph stores every node and edge of g. Inserts are idempotent:
// re-exporting the same graph, or a graph sharing functions with an
// earlier export, leaves one row per distinct node and edge. Parallel
// edges collapse into one row.
func (db *DB) InsertGraph(g *graph.Graph[string]) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([][]byte, g.Len())
	for v := 0; v < g.Len(); v++ {
		ids[v] = NodeID(g.Payload(v))
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO nodes (id, name) VALUES (?, ?)
		`, ids[v], g.Payload(v)); err != nil {
			return fmt.Errorf("inserting node %q: %w", g.Payload(v), err)
		}
	}
	for v := 0; v < g.Len(); v++ {
		for _, u := range g.Succs(v) {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO edges (src, dst) VALUES (?, ?)
			`, ids[v], ids[u]); err != nil {
				return fmt.Errorf("inserting edge %q -> %q: %w", g.Payload(v), g.Payload(u), err)
			}
		}
	}
	return tx.Commit()
}

// CountNodes returns the number of stored nodes.
func (db *DB) CountNodes() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&n)
	return n, err
}

// CountEdges returns the number of stored edges.
func (db *DB) CountEdges() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&n)
	return n, err
}

// Callees returns the stored successor names of the named function,
// ordered by name.
func (db *DB) Callees(name string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT n.name FROM edges e JOIN nodes n ON n.id = e.dst
		WHERE e.src = ? ORDER BY n.name
	`, NodeID(name))
	if err != nil {
		return nil, fmt.Errorf("querying callees: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var callee string
		if err := rows.Scan(&callee); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, callee)
	}
	return out, rows.Err()
}
