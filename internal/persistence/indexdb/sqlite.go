package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"datafixer.ai/internal/catalogs"
)

// SQLiteIndex is a queryable secondary index of fix passes. All writes go
// through one writer goroutine; the audit JSONL files remain the source of
// truth, so writes are dropped rather than block when the queue is full.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropRun atomic.Uint64
	dropHit atomic.Uint64
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqHits
	reqFlush
)

type req struct {
	kind reqKind

	run  RunRow
	hits []HitRow
	done chan struct{}
}

// RunRow is one fix pass over one world.
type RunRow struct {
	RunID     string
	WorldID   string
	SavePath  string
	StartedAt string
	Ran       bool
	Previous  int
	Stored    sql.NullInt64
	Items     int
	Blocks    int
	Tiles     int
	Fired     int
}

// HitRow counts how often one fix fired during one run.
type HitRow struct {
	RunID string
	Kind  string
	Fix   string
	Count int
}

type Stats struct {
	DropRunTotal uint64
	DropHitTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			entries INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			save_path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ran INTEGER NOT NULL,
			previous INTEGER NOT NULL,
			stored INTEGER,
			items INTEGER NOT NULL,
			blocks INTEGER NOT NULL,
			tile_entities INTEGER NOT NULL,
			fired INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_world ON runs(world_id, started_at);`,
		`CREATE TABLE IF NOT EXISTS fix_hits (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			fix TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, kind, fix)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fix_hits_fix ON fix_hits(kind, fix);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{DropRunTotal: s.dropRun.Load(), DropHitTotal: s.dropHit.Load()}
}

func (s *SQLiteIndex) RecordRun(r RunRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.StartedAt == "" {
		r.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		s.dropRun.Add(1)
	}
}

// RecordHits stores per-fix counts for a run. counts is keyed by kind, then
// fix name.
func (s *SQLiteIndex) RecordHits(runID string, counts map[string]map[string]int) {
	if s == nil || s.closed.Load() || len(counts) == 0 {
		return
	}
	var rows []HitRow
	for kind, byFix := range counts {
		for fix, n := range byFix {
			rows = append(rows, HitRow{RunID: runID, Kind: kind, Fix: fix, Count: n})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Kind != rows[j].Kind {
			return rows[i].Kind < rows[j].Kind
		}
		return rows[i].Fix < rows[j].Fix
	})
	select {
	case s.ch <- req{kind: reqHits, hits: rows}:
	default:
		s.dropHit.Add(1)
	}
}

// Flush waits until every queued write is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpsertCatalogs records which catalog revision the fixes were built from.
func (s *SQLiteIndex) UpsertCatalogs(ctx context.Context, cats *catalogs.Catalogs) error {
	if s == nil {
		return nil
	}
	if cats == nil {
		return errors.New("nil catalogs")
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := []struct {
		name    string
		digest  string
		entries int
	}{
		{"materials", cats.Materials.Digest, len(cats.Materials.Defs)},
		{"pipes", cats.Pipes.Digest, len(cats.Pipes.Insulations) + len(cats.Pipes.FluidPipes) + len(cats.Pipes.ItemPipes)},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO catalogs(name,digest,entries,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.digest == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, r.name, r.digest, r.entries, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Runs lists the runs recorded for worldID, oldest first.
func (s *SQLiteIndex) Runs(ctx context.Context, worldID string) ([]RunRow, error) {
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,world_id,save_path,started_at,ran,previous,stored,items,blocks,tile_entities,fired
		FROM runs WHERE world_id = ? ORDER BY started_at, run_id`, worldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.RunID, &r.WorldID, &r.SavePath, &r.StartedAt, &r.Ran, &r.Previous, &r.Stored, &r.Items, &r.Blocks, &r.Tiles, &r.Fired); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Hits lists the per-fix counts of one run ordered by kind and name.
func (s *SQLiteIndex) Hits(ctx context.Context, runID string) ([]HitRow, error) {
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id,kind,fix,count FROM fix_hits WHERE run_id = ? ORDER BY kind, fix`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HitRow
	for rows.Next() {
		var h HitRow
		if err := rows.Scan(&h.RunID, &h.Kind, &h.Fix, &h.Count); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,world_id,save_path,started_at,ran,previous,stored,items,blocks,tile_entities,fired) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertHit, _ := s.db.Prepare(`INSERT OR REPLACE INTO fix_hits(run_id,kind,fix,count) VALUES(?,?,?,?)`)
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
		if insertHit != nil {
			_ = insertHit.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqRun:
			ru := r.run
			if insertRun == nil {
				break
			}
			if _, err := tx.Stmt(insertRun).Exec(
				ru.RunID,
				ru.WorldID,
				ru.SavePath,
				ru.StartedAt,
				ru.Ran,
				ru.Previous,
				ru.Stored,
				ru.Items,
				ru.Blocks,
				ru.Tiles,
				ru.Fired,
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqHits:
			for _, h := range r.hits {
				if insertHit == nil {
					break
				}
				if _, err := tx.Stmt(insertHit).Exec(h.RunID, h.Kind, h.Fix, h.Count); err != nil {
					rollback()
					break
				}
				opCount++
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
