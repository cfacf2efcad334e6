package datafix

import (
	"fmt"

	"datafixer.ai/internal/nbt"
)

// Kind is the closed set of record kinds a fix can target.
type Kind int

const (
	KindItem Kind = iota + 1
	KindBlock
	KindTileEntity
)

var Kinds = []Kind{KindItem, KindBlock, KindTileEntity}

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindBlock:
		return "block"
	case KindTileEntity:
		return "tile_entity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown record kind %q", b)
	}
	*k = v
	return nil
}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Record is one of *ItemStack, *BlockState or *TileEntity.
type Record interface {
	Kind() Kind
	String() string
	record()
}

// ItemStack is an item reference: identifier, metadata code and an optional tag.
type ItemStack struct {
	ID   ResourceLocation
	Meta int16
	Tag  *nbt.Compound // nil when absent
}

func (*ItemStack) Kind() Kind { return KindItem }
func (*ItemStack) record()    {}

func (s *ItemStack) String() string {
	if s.Tag.Empty() {
		return fmt.Sprintf("%s@%d", s.ID, s.Meta)
	}
	return fmt.Sprintf("%s@%d%s", s.ID, s.Meta, s.Tag)
}

func (s *ItemStack) Clone() *ItemStack {
	return &ItemStack{ID: s.ID, Meta: s.Meta, Tag: s.Tag.CloneCompound()}
}

// BlockState is a placed block. Its tile-entity tag is only reachable while a
// fix that declared NeedsTileEntity is being evaluated or applied.
type BlockState struct {
	ID   ResourceLocation
	Meta int16

	tileEntity *nbt.Compound
	exposed    bool
}

func (*BlockState) Kind() Kind { return KindBlock }
func (*BlockState) record()    {}

func (s *BlockState) String() string {
	if s.exposed && s.tileEntity != nil {
		return fmt.Sprintf("%s@%d%s", s.ID, s.Meta, s.tileEntity)
	}
	return fmt.Sprintf("%s@%d", s.ID, s.Meta)
}

// TileEntity returns the attached tile-entity tag, or nil when the current fix
// did not declare the dependency or the block has none.
func (s *BlockState) TileEntity() *nbt.Compound {
	if !s.exposed {
		return nil
	}
	return s.tileEntity
}

// SetTileEntity replaces the attached tag. It is a no-op outside a fix that
// declared NeedsTileEntity.
func (s *BlockState) SetTileEntity(c *nbt.Compound) {
	if !s.exposed {
		return
	}
	s.tileEntity = c
}

func (s *BlockState) expose(c *nbt.Compound) {
	s.tileEntity, s.exposed = c, true
}

func (s *BlockState) conceal() *nbt.Compound {
	c := s.tileEntity
	s.tileEntity, s.exposed = nil, false
	return c
}

// TileEntity wraps a tile-entity compound so it can travel as a Record.
type TileEntity struct {
	Tag *nbt.Compound
}

func (*TileEntity) Kind() Kind { return KindTileEntity }
func (*TileEntity) record()    {}

func (t *TileEntity) String() string { return t.Tag.String() }
