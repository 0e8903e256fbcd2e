package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gasmap/internal/codec"
	"gasmap/internal/domain"
	"gasmap/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dbPath != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database, and SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS networks (
		name TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS nodes (
		network TEXT NOT NULL,
		seq INTEGER NOT NULL,
		node_id TEXT,
		category TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		current REAL NOT NULL,
		errorp REAL,
		PRIMARY KEY (network, seq),
		FOREIGN KEY (network) REFERENCES networks(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS pipes (
		network TEXT NOT NULL,
		seq INTEGER NOT NULL,
		port_a INTEGER NOT NULL,
		port_b INTEGER NOT NULL,
		node_ids TEXT,
		ax REAL NOT NULL,
		ay REAL NOT NULL,
		bx REAL NOT NULL,
		by REAL NOT NULL,
		distance REAL,
		errorp REAL NOT NULL,
		price REAL,
		shape TEXT,
		PRIMARY KEY (network, seq),
		FOREIGN KEY (network) REFERENCES networks(name) ON DELETE CASCADE
	);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveNetwork validates doc and replaces the network stored under name
func (r *Repository) SaveNetwork(ctx context.Context, name string, doc *domain.Document) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("network name is required")
	}
	if err := codec.Validate(doc); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear existing records (order matters due to foreign keys)
	if _, err := tx.ExecContext(ctx, `DELETE FROM pipes WHERE network = ?`, name); err != nil {
		return fmt.Errorf("failed to clear pipes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE network = ?`, name); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO networks (name, version) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET version = excluded.version, updated_at = CURRENT_TIMESTAMP
	`, name, doc.Version)
	if err != nil {
		return fmt.Errorf("failed to upsert network: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (network, seq, `+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range doc.Nodes {
		_, err := nodeStmt.ExecContext(ctx, name, i,
			stringToNull(n.ID), n.Category, floatOrZero(n.X), floatOrZero(n.Y),
			floatOrZero(n.Current), floatPtrToNull(n.ErrorP))
		if err != nil {
			return fmt.Errorf("failed to insert node %d: %w", i, err)
		}
	}

	pipeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pipes (network, seq, `+pipeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer pipeStmt.Close()

	for i, p := range doc.Pipes {
		ids, err := nodeIDsToNull(p.NodeIDs)
		if err != nil {
			return fmt.Errorf("failed to encode node ids of pipe %d: %w", i, err)
		}
		_, err = pipeStmt.ExecContext(ctx, name, i,
			p.BindIDs[0], p.BindIDs[1], ids,
			floatOrZero(p.AX), floatOrZero(p.AY), floatOrZero(p.BX), floatOrZero(p.BY),
			floatPtrToNull(p.Distance), floatOrZero(p.ErrorP), floatPtrToNull(p.Price), stringToNull(p.Shape))
		if err != nil {
			return fmt.Errorf("failed to insert pipe %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadNetwork rebuilds the document stored under name
func (r *Repository) LoadNetwork(ctx context.Context, name string) (*domain.Document, error) {
	doc := &domain.Document{
		Nodes: []domain.NodeRecord{},
		Pipes: []domain.PipeRecord{},
	}

	err := r.db.QueryRowContext(ctx, `SELECT version FROM networks WHERE name = ?`, name).Scan(&doc.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, repository.ErrNetworkNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query network: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE network = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		doc.Nodes = append(doc.Nodes, row.toRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	pipeRows, err := r.db.QueryContext(ctx, `SELECT `+pipeColumns+` FROM pipes WHERE network = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipes: %w", err)
	}
	defer pipeRows.Close()

	for pipeRows.Next() {
		var row pipeRow
		if err := pipeRows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan pipe: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("failed to decode pipe: %w", err)
		}
		doc.Pipes = append(doc.Pipes, rec)
	}
	if err := pipeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipes: %w", err)
	}

	return doc, nil
}

// ListNetworks returns every saved network, most recently updated first
func (r *Repository) ListNetworks(ctx context.Context) ([]repository.NetworkInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.name, n.version, n.updated_at,
			(SELECT COUNT(*) FROM nodes WHERE network = n.name),
			(SELECT COUNT(*) FROM pipes WHERE network = n.name)
		FROM networks n
		ORDER BY n.updated_at DESC, n.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query networks: %w", err)
	}
	defer rows.Close()

	var out []repository.NetworkInfo
	for rows.Next() {
		var info repository.NetworkInfo
		var updated time.Time
		if err := rows.Scan(&info.Name, &info.Version, &updated, &info.Nodes, &info.Pipes); err != nil {
			return nil, fmt.Errorf("failed to scan network: %w", err)
		}
		info.UpdatedAt = updated
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteNetwork removes a network and its records
func (r *Repository) DeleteNetwork(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM networks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete network: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", name, repository.ErrNetworkNotFound)
	}
	return nil
}

// Save implements persistence.Store with the location as network name.
// Failures other than an invalid document are reported as IOError.
func (r *Repository) Save(ctx context.Context, location string, doc *domain.Document) error {
	err := r.SaveNetwork(ctx, location, doc)
	if err == nil || errors.Is(err, domain.ErrFileFormat) {
		return err
	}
	return &domain.IOError{Op: "write", Location: location, Err: err}
}

// Load implements persistence.Store with the location as network name.
func (r *Repository) Load(ctx context.Context, location string) (*domain.Document, error) {
	doc, err := r.LoadNetwork(ctx, location)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Location: location, Err: err}
	}
	return doc, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
