package migrate

import (
	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/nbt"
)

const (
	itemIDKey     = "id"
	itemDamageKey = "Damage"
	itemTagKey    = "tag"
	itemsKey      = "Items"
)

// ItemFromCompound reads an item compound ({id, Count, Damage, tag}). The
// returned stack shares its tag with c.
func ItemFromCompound(c *nbt.Compound) (*datafix.ItemStack, bool) {
	if !c.HasKey(itemIDKey, nbt.TypeString) {
		return nil, false
	}
	id := c.GetString(itemIDKey)
	if id == "" {
		return nil, false
	}
	return &datafix.ItemStack{
		ID:   datafix.ParseResource(id),
		Meta: c.GetShort(itemDamageKey),
		Tag:  c.GetCompound(itemTagKey),
	}, true
}

// WriteItem stores s back into c. Count and unrelated keys are kept.
func WriteItem(c *nbt.Compound, s *datafix.ItemStack) {
	c.SetString(itemIDKey, s.ID.String())
	c.SetShort(itemDamageKey, s.Meta)
	if s.Tag.Empty() {
		c.Remove(itemTagKey)
		return
	}
	c.Set(itemTagKey, s.Tag)
}

// NewItem builds an item compound.
func NewItem(id string, count int8, damage int16, tag *nbt.Compound) *nbt.Compound {
	c := nbt.NewCompound().SetString(itemIDKey, id).SetByte("Count", count).SetShort(itemDamageKey, damage)
	if !tag.Empty() {
		c.Set(itemTagKey, tag)
	}
	return c
}
