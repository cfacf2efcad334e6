package datafix

import "datafixer.ai/internal/nbt"

// ModList maps mod id to the version string recorded when the world was last
// saved.
type ModList map[string]string

func (m ModList) Has(modID string) bool {
	_, ok := m[modID]
	return ok
}

// VersionPredicate decides from the previous fix version whether a fix applies.
type VersionPredicate func(previous int) bool

// ModListPredicate decides from the previous mod list whether a fix applies.
type ModListPredicate func(mods ModList) bool

// AtMost matches previous versions <= v. Never use it against VersionNew.
func AtMost(v int) VersionPredicate {
	return func(previous int) bool { return previous <= v }
}

// Exactly matches a single previous version.
func Exactly(v int) VersionPredicate {
	return func(previous int) bool { return previous == v }
}

func AnyVersion(preds ...VersionPredicate) VersionPredicate {
	return func(previous int) bool {
		for _, p := range preds {
			if p(previous) {
				return true
			}
		}
		return false
	}
}

// AnyMods matches every mod list.
func AnyMods(ModList) bool { return true }

// HasMod matches mod lists that contain modID.
func HasMod(modID string) ModListPredicate {
	return func(mods ModList) bool { return mods.Has(modID) }
}

// Header is shared by every fix kind.
type Header struct {
	Name        string
	Description string
	// NeedsMode marks fixes that are only correct when the special mode is on.
	// It is reported, never enforced.
	NeedsMode bool
	Version   VersionPredicate
	ModList   ModListPredicate
}

func (h Header) eligible(previous int, mods ModList) bool {
	if !h.Version(previous) {
		return false
	}
	return h.ModList == nil || h.ModList(mods)
}

// ItemFix rewrites item stacks that Matches accepts.
type ItemFix struct {
	Header
	Matches   func(*ItemStack) bool
	Transform func(*ItemStack)
}

// BlockFix rewrites block states accepted by Primary and then Secondary.
type BlockFix struct {
	Header
	// NeedsTileEntity makes the block's tile-entity tag visible to Secondary
	// and Transform. The tag is fetched at most once per block.
	NeedsTileEntity bool
	Primary         func(*BlockState) bool
	// Secondary may be nil.
	Secondary func(*BlockState) bool
	Transform func(*BlockState)
}

// TileEntityFix rewrites tile-entity tags that Matches accepts.
type TileEntityFix struct {
	Header
	Matches   func(*nbt.Compound) bool
	Transform func(*nbt.Compound)
}

// FixInfo is the descriptive part of a registered fix.
type FixInfo struct {
	Kind            Kind   `json:"kind"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	NeedsMode       bool   `json:"needs_mode"`
	NeedsTileEntity bool   `json:"needs_tile_entity,omitempty"`
}
