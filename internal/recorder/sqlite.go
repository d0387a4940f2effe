package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists alignment snapshots to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (a dashboard reads
	// while snapshots are being written).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id          TEXT PRIMARY KEY,
			created_at  INTEGER NOT NULL,
			label       TEXT,
			fill_gaps   INTEGER NOT NULL,
			range_start INTEGER NOT NULL,
			range_end   INTEGER NOT NULL,
			row_count   INTEGER NOT NULL,
			col_count   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`,

		`CREATE TABLE IF NOT EXISTS snapshot_cells (
			snapshot_id TEXT NOT NULL,
			column_name TEXT NOT NULL,
			row_idx     INTEGER NOT NULL,
			ts          INTEGER NOT NULL,
			value       REAL,
			PRIMARY KEY (snapshot_id, column_name, row_idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cells_snapshot ON snapshot_cells(snapshot_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot writes the snapshot header plus one row per table cell.
// Missing cells become NULL.
func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	created := snap.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO snapshots
		(id, created_at, label, fill_gaps, range_start, range_end, row_count, col_count)
		VALUES (?,?,?,?,?,?,?,?)`,
		id, created.Unix(), snap.Label, snap.FillGaps,
		snap.Start, snap.End, snap.Table.Rows(), len(snap.Table.Columns),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO snapshot_cells
		(snapshot_id, column_name, row_idx, ts, value) VALUES (?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare cells: %w", err)
	}
	defer stmt.Close()

	for _, col := range snap.Table.Columns {
		for i, v := range col.Values {
			cell := sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
			if _, err := stmt.Exec(id, col.Name, i, snap.Table.Index[i].Unix(), cell); err != nil {
				return fmt.Errorf("insert cell %s[%d]: %w", col.Name, i, err)
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
