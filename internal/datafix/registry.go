package datafix

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Registry holds the ordered fixes per kind. Registration order is
// application order. A built Registry is never modified.
type Registry struct {
	items []ItemFix
	block []BlockFix
	tiles []TileEntityFix
}

func (r *Registry) Items() []ItemFix              { return slices.Clone(r.items) }
func (r *Registry) Blocks() []BlockFix            { return slices.Clone(r.block) }
func (r *Registry) TileEntities() []TileEntityFix { return slices.Clone(r.tiles) }

func (r *Registry) Len(k Kind) int {
	switch k {
	case KindItem:
		return len(r.items)
	case KindBlock:
		return len(r.block)
	case KindTileEntity:
		return len(r.tiles)
	}
	return 0
}

// Describe lists every fix in application order, kinds in Kinds order.
func (r *Registry) Describe() []FixInfo {
	out := make([]FixInfo, 0, len(r.items)+len(r.block)+len(r.tiles))
	for _, f := range r.items {
		out = append(out, info(KindItem, f.Header, false))
	}
	for _, f := range r.block {
		out = append(out, info(KindBlock, f.Header, f.NeedsTileEntity))
	}
	for _, f := range r.tiles {
		out = append(out, info(KindTileEntity, f.Header, false))
	}
	return out
}

// Names returns fix names of kind k in application order.
func (r *Registry) Names(k Kind) []string {
	var out []string
	for _, fi := range r.Describe() {
		if fi.Kind == k {
			out = append(out, fi.Name)
		}
	}
	return out
}

func info(k Kind, h Header, needsTE bool) FixInfo {
	return FixInfo{Kind: k, Name: h.Name, Description: h.Description, NeedsMode: h.NeedsMode, NeedsTileEntity: needsTE}
}

// Builder collects fixes and validates them once on Build.
type Builder struct {
	reg   Registry
	names map[Kind]map[string]struct{}
	errs  []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{names: map[Kind]map[string]struct{}{}}
}

func (b *Builder) Item(f ItemFix) *Builder {
	if b.header(KindItem, f.Header) && b.require(KindItem, f.Name, f.Matches != nil, f.Transform != nil) {
		b.reg.items = append(b.reg.items, f)
	}
	return b
}

func (b *Builder) Block(f BlockFix) *Builder {
	if b.header(KindBlock, f.Header) && b.require(KindBlock, f.Name, f.Primary != nil, f.Transform != nil) {
		b.reg.block = append(b.reg.block, f)
	}
	return b
}

func (b *Builder) TileEntity(f TileEntityFix) *Builder {
	if b.header(KindTileEntity, f.Header) && b.require(KindTileEntity, f.Name, f.Matches != nil, f.Transform != nil) {
		b.reg.tiles = append(b.reg.tiles, f)
	}
	return b
}

// Build returns the frozen registry, or every validation error joined.
func (b *Builder) Build() (*Registry, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	reg := &Registry{
		items: slices.Clone(b.reg.items),
		block: slices.Clone(b.reg.block),
		tiles: slices.Clone(b.reg.tiles),
	}
	return reg, nil
}

func (b *Builder) header(k Kind, h Header) bool {
	name := strings.TrimSpace(h.Name)
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("%s fix: empty name", k))
		return false
	}
	if h.Version == nil {
		b.errs = append(b.errs, fmt.Errorf("%s fix %q: missing version predicate", k, name))
		return false
	}
	seen := b.names[k]
	if seen == nil {
		seen = map[string]struct{}{}
		b.names[k] = seen
	}
	if _, dup := seen[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("%s fix %q: duplicate name", k, name))
		return false
	}
	seen[name] = struct{}{}
	return true
}

func (b *Builder) require(k Kind, name string, hasMatch, hasTransform bool) bool {
	if !hasMatch {
		b.errs = append(b.errs, fmt.Errorf("%s fix %q: missing content predicate", k, name))
		return false
	}
	if !hasTransform {
		b.errs = append(b.errs, fmt.Errorf("%s fix %q: missing transform", k, name))
		return false
	}
	return true
}
