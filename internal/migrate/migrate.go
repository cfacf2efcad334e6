// Package migrate runs the fix pass over stored world saves.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/nbt"
	"datafixer.ai/internal/persistence/archive"
	"datafixer.ai/internal/persistence/indexdb"
	auditlog "datafixer.ai/internal/persistence/log"
	"datafixer.ai/internal/persistence/save"
)

type AuditSink interface {
	WriteRun(auditlog.RunEntry) error
	WriteHit(auditlog.HitEntry) error
}

type IndexSink interface {
	RecordRun(indexdb.RunRow)
	RecordHits(runID string, counts map[string]map[string]int)
}

type Option func(*Migrator)

func WithLogger(l *zap.Logger) Option { return func(m *Migrator) { m.log = l } }

// WithSpecialMode treats unversioned worlds as DEFAULT_SPECIAL.
func WithSpecialMode(on bool) Option { return func(m *Migrator) { m.special = on } }

func WithAudit(a AuditSink) Option { return func(m *Migrator) { m.audit = a } }

func WithIndex(i IndexSink) Option { return func(m *Migrator) { m.index = i } }

// WithBackupDir copies each save there before a pass that will rewrite it.
func WithBackupDir(dir string) Option { return func(m *Migrator) { m.backupDir = dir } }

// Migrator applies one registry to world saves. It is safe for concurrent
// use across different saves.
type Migrator struct {
	reg       *datafix.Registry
	special   bool
	log       *zap.Logger
	audit     AuditSink
	index     IndexSink
	backupDir string
}

func New(reg *datafix.Registry, opts ...Option) *Migrator {
	m := &Migrator{reg: reg, log: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.Named("migrate")
	return m
}

type Result struct {
	RunID    string
	WorldID  string
	Path     string
	Decision datafix.Decision

	// Records visited.
	Items        int
	Blocks       int
	TileEntities int

	Fired int
	Hits  map[datafix.Kind]map[string]int

	Backup string
}

func (r *Result) hit(h datafix.Hit) {
	if r.Hits == nil {
		r.Hits = map[datafix.Kind]map[string]int{}
	}
	byFix := r.Hits[h.Kind]
	if byFix == nil {
		byFix = map[string]int{}
		r.Hits[h.Kind] = byFix
	}
	byFix[h.Fix]++
	r.Fired++
}

// HitsByName flattens Hits for storage, keyed by kind name.
func (r *Result) HitsByName() map[string]map[string]int {
	out := make(map[string]map[string]int, len(r.Hits))
	for k, byFix := range r.Hits {
		out[k.String()] = byFix
	}
	return out
}

// Fix runs the gated pass over s in memory and marks it CURRENT.
func (m *Migrator) Fix(s *save.SaveV1) Result {
	res := Result{RunID: uuid.NewString(), WorldID: s.Header.WorldID, Decision: m.gate(s)}
	m.fix(s, &res)
	return res
}

func (m *Migrator) gate(s *save.SaveV1) datafix.Decision {
	stored, has := s.FixVersion()
	return datafix.ShouldRun(stored, has, m.special)
}

// fix runs the pass for the decision already in res.
func (m *Migrator) fix(s *save.SaveV1, res *Result) {
	log := m.log.With(zap.String("world", res.WorldID), zap.String("run", res.RunID))

	if res.Decision.Newer() {
		log.Warn("stored fix version is newer than this build, running fixes anyway",
			zap.Int("stored", res.Decision.Stored), zap.Int("current", datafix.VersionCurrent))
	}
	if res.Decision.Run {
		e := datafix.NewEngine(m.reg, res.Decision.Previous, s.Mods(), datafix.WithObserver(func(h datafix.Hit) {
			res.hit(h)
			log.Debug("fix applied",
				zap.Stringer("kind", h.Kind),
				zap.String("fix", h.Fix),
				zap.String("before", h.Before),
				zap.String("after", h.After))
			if m.audit != nil {
				err := m.audit.WriteHit(auditlog.HitEntry{
					RunID: res.RunID, WorldID: res.WorldID,
					Kind: h.Kind.String(), Fix: h.Fix, Before: h.Before, After: h.After,
				})
				if err != nil {
					log.Warn("audit write failed", zap.Error(err))
				}
			}
		}))
		walk(e, s, res)
	}
	s.SetFixVersion(datafix.VersionCurrent)

	log.Info("fix pass done",
		zap.Bool("ran", res.Decision.Run),
		zap.String("previous", datafix.VersionName(res.Decision.Previous)),
		zap.Int("items", res.Items),
		zap.Int("blocks", res.Blocks),
		zap.Int("tile_entities", res.TileEntities),
		zap.Int("fired", res.Fired))
}

// walk visits items first, then tile entities (nested items before the
// owning compound), then placed blocks.
func walk(e *datafix.Engine, s *save.SaveV1, res *Result) {
	for _, p := range s.Players {
		res.Items += fixItems(e, p.Inventory)
		res.Items += fixItems(e, p.EnderChest)
	}
	for _, ent := range s.Entities {
		res.Items += fixItems(e, ent.Equipment)
	}

	for _, te := range s.TileEntities {
		for _, child := range te.GetList(itemsKey, nbt.TypeCompound) {
			if c, ok := child.(*nbt.Compound); ok && fixItem(e, c) {
				res.Items++
			}
		}
		e.ApplyTileEntity(te)
		res.TileEntities++
	}

	tiles := s.TileEntityIndex()
	for ci := range s.Chunks {
		blocks := s.Chunks[ci].Blocks
		for bi := range blocks {
			b := &blocks[bi]
			state := &datafix.BlockState{ID: datafix.ParseResource(b.ID), Meta: b.Meta}
			pos := b.Pos
			if e.ApplyBlock(state, func() *nbt.Compound { return tiles[pos] }) {
				b.ID = state.ID.String()
				b.Meta = state.Meta
			}
			res.Blocks++
		}
	}
}

func fixItems(e *datafix.Engine, items []*nbt.Compound) int {
	n := 0
	for _, c := range items {
		if fixItem(e, c) {
			n++
		}
	}
	return n
}

// fixItem reports whether c was a readable item compound.
func fixItem(e *datafix.Engine, c *nbt.Compound) bool {
	s, ok := ItemFromCompound(c)
	if !ok {
		return false
	}
	if e.ApplyItem(s) {
		WriteItem(c, s)
	}
	return true
}

// Run loads the save at path, runs the pass and writes it back.
func (m *Migrator) Run(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s, err := save.Read(path)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	res := Result{RunID: uuid.NewString(), WorldID: s.Header.WorldID, Path: path, Decision: m.gate(&s)}
	started := time.Now().UTC()

	if m.backupDir != "" && res.Decision.Run {
		dst, err := archive.BackupSave(m.backupDir, path, worldDirName(res.WorldID, path), res.RunID, res.Decision)
		if err != nil {
			return res, fmt.Errorf("%s: backup: %w", filepath.Base(path), err)
		}
		res.Backup = dst
	}

	m.fix(&s, &res)

	if err := save.Write(path, s); err != nil {
		return res, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m.record(res, started)
	return res, nil
}

func (m *Migrator) record(res Result, started time.Time) {
	stored, has := res.Decision.Stored, res.Decision.HasStored
	if m.audit != nil {
		e := auditlog.RunEntry{
			RunID: res.RunID, WorldID: res.WorldID, Ran: res.Decision.Run, Previous: res.Decision.Previous,
			Items: res.Items, Blocks: res.Blocks, Tiles: res.TileEntities, Fired: res.Fired,
		}
		if has {
			e.Stored = &stored
		}
		if err := m.audit.WriteRun(e); err != nil {
			m.log.Warn("audit write failed", zap.String("world", res.WorldID), zap.Error(err))
		}
	}
	if m.index != nil {
		m.index.RecordRun(indexdb.RunRow{
			RunID:     res.RunID,
			WorldID:   res.WorldID,
			SavePath:  res.Path,
			StartedAt: started.Format(time.RFC3339Nano),
			Ran:       res.Decision.Run,
			Previous:  res.Decision.Previous,
			Stored:    sql.NullInt64{Int64: int64(stored), Valid: has},
			Items:     res.Items,
			Blocks:    res.Blocks,
			Tiles:     res.TileEntities,
			Fired:     res.Fired,
		})
		m.index.RecordHits(res.RunID, res.HitsByName())
	}
}

func worldDirName(worldID, path string) string {
	if strings.TrimSpace(worldID) != "" {
		return worldID
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// RunAll migrates every save with at most workers passes in flight. Each
// save is still processed by a single goroutine. Results keep the order of
// paths; the first error cancels the saves not yet started.
func (m *Migrator) RunAll(ctx context.Context, paths []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := m.Run(ctx, path)
			results[i] = res
			return err
		})
	}
	err := g.Wait()
	return results, err
}
