package datafix

import (
	"fmt"

	"datafixer.ai/internal/nbt"
)

// TileEntitySupplier resolves the tile-entity tag of the block being fixed.
// It returns nil when the block has none.
type TileEntitySupplier func() *nbt.Compound

// Hit describes one fired fix. Before and After are rendered records.
type Hit struct {
	Kind   Kind
	Fix    string
	Before string
	After  string
}

type Observer func(Hit)

type EngineOption func(*Engine)

// WithObserver reports every fired fix. Records are only rendered when an
// observer is set.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observe = o }
}

// Engine applies one registry to the records of one world load. The version
// and mod list are fixed for the pass, so version and mod-list predicates are
// evaluated once up front; order within each kind is preserved.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	items []ItemFix
	block []BlockFix
	tiles []TileEntityFix

	observe Observer
}

// NewEngine selects the fixes of reg that are eligible for a world upgrading
// from previous with the given mods loaded.
func NewEngine(reg *Registry, previous int, mods ModList, opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, f := range reg.items {
		if f.eligible(previous, mods) {
			e.items = append(e.items, f)
		}
	}
	for _, f := range reg.block {
		if f.eligible(previous, mods) {
			e.block = append(e.block, f)
		}
	}
	for _, f := range reg.tiles {
		if f.eligible(previous, mods) {
			e.tiles = append(e.tiles, f)
		}
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Active reports how many fixes of kind k can fire during this pass.
func (e *Engine) Active(k Kind) int {
	switch k {
	case KindItem:
		return len(e.items)
	case KindBlock:
		return len(e.block)
	case KindTileEntity:
		return len(e.tiles)
	}
	return 0
}

// Apply dispatches on the record kind. For blocks the tile entity is
// unavailable; use ApplyBlock to supply one.
func (e *Engine) Apply(r Record) bool {
	switch v := r.(type) {
	case *ItemStack:
		return e.ApplyItem(v)
	case *BlockState:
		return e.ApplyBlock(v, nil)
	case *TileEntity:
		return e.ApplyTileEntity(v.Tag)
	default:
		panic(fmt.Sprintf("datafix: unhandled record kind %T", r))
	}
}

// ApplyItem runs every matching item fix in order, each seeing the result of
// the previous ones. It reports whether any fix fired.
func (e *Engine) ApplyItem(s *ItemStack) bool {
	fired := false
	for _, f := range e.items {
		if !f.Matches(s) {
			continue
		}
		before := e.render(s)
		f.Transform(s)
		fired = true
		e.hit(KindItem, f.Name, before, s)
	}
	return fired
}

// ApplyBlock runs every matching block fix in order. supplier is called at
// most once, and only when a fix declaring NeedsTileEntity has passed its
// primary predicate. supplier may be nil.
func (e *Engine) ApplyBlock(s *BlockState, supplier TileEntitySupplier) bool {
	var (
		fired   bool
		fetched bool
		te      *nbt.Compound
	)
	for _, f := range e.block {
		if !f.Primary(s) {
			continue
		}
		if f.NeedsTileEntity {
			if !fetched {
				if supplier != nil {
					te = supplier()
				}
				fetched = true
			}
			s.expose(te)
		}
		if f.Secondary == nil || f.Secondary(s) {
			before := e.render(s)
			f.Transform(s)
			fired = true
			e.hit(KindBlock, f.Name, before, s)
		}
		if f.NeedsTileEntity {
			te = s.conceal()
		}
	}
	return fired
}

// ApplyTileEntity runs every matching tile-entity fix in order. Nested items
// are expected to have been fixed by the caller already.
func (e *Engine) ApplyTileEntity(c *nbt.Compound) bool {
	if c == nil {
		return false
	}
	fired := false
	for _, f := range e.tiles {
		if !f.Matches(c) {
			continue
		}
		before := ""
		if e.observe != nil {
			before = c.String()
		}
		f.Transform(c)
		fired = true
		if e.observe != nil {
			e.observe(Hit{Kind: KindTileEntity, Fix: f.Name, Before: before, After: c.String()})
		}
	}
	return fired
}

func (e *Engine) render(r Record) string {
	if e.observe == nil {
		return ""
	}
	return r.String()
}

func (e *Engine) hit(k Kind, name, before string, after Record) {
	if e.observe == nil {
		return
	}
	e.observe(Hit{Kind: k, Fix: name, Before: before, After: after.String()})
}
