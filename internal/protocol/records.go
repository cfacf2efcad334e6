package protocol

import (
	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/nbt"
)

type ItemRecord struct {
	ID   string        `json:"id"`
	Meta int16         `json:"meta"`
	Tag  *nbt.Compound `json:"tag,omitempty"`
}

// BlockRecord carries the block's tile entity up front, if it has one; the
// server only hands it to fixes that ask for it.
type BlockRecord struct {
	ID         string        `json:"id"`
	Meta       int16         `json:"meta"`
	TileEntity *nbt.Compound `json:"tile_entity,omitempty"`
}

func (r *ItemRecord) Stack() *datafix.ItemStack {
	return &datafix.ItemStack{ID: datafix.ParseResource(r.ID), Meta: r.Meta, Tag: r.Tag}
}

func ItemFromStack(s *datafix.ItemStack) *ItemRecord {
	rec := &ItemRecord{ID: s.ID.String(), Meta: s.Meta}
	if !s.Tag.Empty() {
		rec.Tag = s.Tag
	}
	return rec
}

func (r *BlockRecord) State() *datafix.BlockState {
	return &datafix.BlockState{ID: datafix.ParseResource(r.ID), Meta: r.Meta}
}

// Supplier resolves the tile entity sent with the block.
func (r *BlockRecord) Supplier() datafix.TileEntitySupplier {
	return func() *nbt.Compound { return r.TileEntity }
}

func BlockFromState(s *datafix.BlockState, te *nbt.Compound) *BlockRecord {
	return &BlockRecord{ID: s.ID.String(), Meta: s.Meta, TileEntity: te}
}
