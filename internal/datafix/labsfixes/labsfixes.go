// Package labsfixes registers every data fix shipped with the pack.
//
// Fixes are not applied to new items, blocks or tile entities. Item fixes run
// on player, entity and tile-entity inventories and inside ender chests; block
// fixes run on placed blocks; tile-entity fixes run on the stored compound
// after the items it holds have been fixed.
package labsfixes

import (
	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/datafix/remap"
	"datafixer.ai/internal/nbt"
)

const (
	XU2ModID     = "xu2"
	EnderIOModID = "enderio"
)

// Options carries the environment toggles that decide which fixes exist at all.
type Options struct {
	// XU2Integration enables fixes for Extra Utilities 2 items.
	XU2Integration bool
	// EnderIOLoaded enables fixes for EnderIO capacitors.
	EnderIOLoaded bool
}

var (
	darkRedCoal    = datafix.NewResource(remap.ContentTweakerModID, "dark_red_coal")
	xu2Ingredients = datafix.NewResource(XU2ModID, "ingredients")
	gtMachine      = datafix.NewResource(remap.GregTechModID, "machine")
)

// redCoalMeta is the XU2 ingredients meta of red coal.
const redCoalMeta = 4

// Build registers the fixes for the given tables and environment.
func Build(t *remap.Tables, opts Options) (*datafix.Registry, error) {
	b := datafix.NewBuilder()
	for _, f := range itemFixes(t, opts) {
		b.Item(f)
	}
	for _, f := range blockFixes(t) {
		b.Block(f)
	}
	for _, f := range tileEntityFixes(t) {
		b.TileEntity(f)
	}
	return b.Build()
}

func itemFixes(t *remap.Tables, opts Options) []datafix.ItemFix {
	var fixes []datafix.ItemFix

	fixes = append(fixes, datafix.ItemFix{
		Header: datafix.Header{
			Name:        "Dark Red Coal Remap",
			Description: "Correctly remaps Content Tweaker Dark Red Coal to XU2 Red Coal.",
			Version:     datafix.AtMost(datafix.VersionDefault),
			ModList:     datafix.AnyMods,
		},
		Matches: func(s *datafix.ItemStack) bool { return s.ID == darkRedCoal },
		Transform: func(s *datafix.ItemStack) {
			s.ID = xu2Ingredients
			s.Meta = redCoalMeta
		},
	})

	if opts.XU2Integration {
		fixes = append(fixes, datafix.ItemFix{
			Header: datafix.Header{
				Name:        "XU2 Frequency Removal",
				Description: "Removes Frequency from XU2 Ingredients.",
				Version: datafix.AnyVersion(
					datafix.AtMost(datafix.VersionDefault),
					datafix.Exactly(datafix.VersionNew),
				),
				ModList: datafix.HasMod(XU2ModID),
			},
			Matches: func(s *datafix.ItemStack) bool {
				if s.ID != xu2Ingredients {
					return false
				}
				_, ok := s.Tag.Get("Freq")
				return ok
			},
			Transform: func(s *datafix.ItemStack) {
				s.Tag.Remove("Freq")
				if s.Tag.Empty() {
					s.Tag = nil
				}
			},
		})
	}

	fixes = append(fixes, datafix.ItemFix{
		Header: datafix.Header{
			Name:        "Old Multiblock Metadata Remap",
			Description: "Remaps old Multiblock Metadata to the new format.",
			NeedsMode:   true,
			Version:     datafix.AtMost(datafix.VersionDefaultSpecial),
			ModList:     datafix.AnyMods,
		},
		Matches: func(s *datafix.ItemStack) bool {
			if s.ID != gtMachine {
				return false
			}
			_, ok := t.MultiblockMeta[s.Meta]
			return ok
		},
		Transform: func(s *datafix.ItemStack) { s.Meta = t.MultiblockMeta[s.Meta] },
	})

	fixes = append(fixes, datafix.ItemFix{
		Header: datafix.Header{
			Name:        "Material Meta Item Remap",
			Description: "Remaps old Meta Items, from Custom Materials, to the new format and registry.",
			Version:     datafix.AtMost(datafix.VersionPreMaterialRework),
			ModList:     datafix.AnyMods,
		},
		Matches: func(s *datafix.ItemStack) bool {
			return s.ID.Namespace == remap.GregTechModID &&
				remap.IsMetaItemPath(s.ID.Path) &&
				s.Meta >= remap.MinMetaItemBaseID
		},
		Transform: toLabsMetaItem,
	})

	fixes = append(fixes, datafix.ItemFix{
		Header: datafix.Header{
			Name:        "Material Special Meta Item Remap",
			Description: "Remaps old special placeable Meta Items, from Custom Materials, to the new format and registry.",
			Version:     datafix.AtMost(datafix.VersionPreMaterialRework),
			ModList:     datafix.AnyMods,
		},
		Matches: func(s *datafix.ItemStack) bool {
			return t.IsSpecialMetaItem(s.ID) && s.Meta >= remap.MinMetaItemBaseID
		},
		Transform: toLabsMetaItem,
	})

	if opts.EnderIOLoaded {
		fixes = append(fixes, datafix.ItemFix{
			Header: datafix.Header{
				Name:        "Custom Capacitor NBT Removal",
				Description: "Removes NBT from Custom Capacitors.",
				Version:     datafix.AtMost(datafix.VersionPreCapacitorRemapping),
				ModList:     datafix.AnyMods,
			},
			Matches: func(s *datafix.ItemStack) bool {
				if s.ID.Namespace != remap.LabsModID && s.ID.Namespace != remap.ContentTweakerModID {
					return false
				}
				spec, ok := t.Capacitors[s.ID.Path]
				return ok && spec.NeedsChange(s.Tag)
			},
			Transform: func(s *datafix.ItemStack) {
				s.Tag = t.Capacitors[s.ID.Path].Remove(s.Tag)
			},
		})
	}

	return fixes
}

func toLabsMetaItem(s *datafix.ItemStack) {
	s.Meta -= remap.MinMetaItemBaseID
	s.ID = remap.LabsName(s.ID.Path)
}

const (
	pipeBlockKey    = "PipeBlock"
	pipeMaterialKey = "PipeMaterial"
)

func blockFixes(t *remap.Tables) []datafix.BlockFix {
	return []datafix.BlockFix{
		{
			Header: datafix.Header{
				Name:        "Material Special Meta Block Remap",
				Description: "Remaps old special placeable Meta Blocks, from Custom Materials, to the new format and registry.",
				Version:     datafix.AtMost(datafix.VersionPreMaterialRework),
				ModList:     datafix.AnyMods,
			},
			NeedsTileEntity: true,
			Primary:         func(s *datafix.BlockState) bool { return t.IsSpecialMetaItem(s.ID) },
			Secondary: func(s *datafix.BlockState) bool {
				te := s.TileEntity()
				if !te.HasKey(pipeBlockKey, nbt.TypeString) || !te.HasKey(pipeMaterialKey, nbt.TypeString) {
					return false
				}
				return t.IsSpecialMetaItem(datafix.ParseResource(te.GetString(pipeBlockKey))) &&
					t.IsMaterial(te.GetString(pipeMaterialKey))
			},
			Transform: func(s *datafix.BlockState) {
				s.ID = remap.LabsName(s.ID.Path)
				te := s.TileEntity()
				pipe := datafix.ParseResource(te.GetString(pipeBlockKey))
				te.SetString(pipeBlockKey, remap.LabsName(pipe.Path).String())
			},
		},
	}
}

const (
	metaIDKey = "MetaId"
	idKey     = "id"
)

func tileEntityFixes(t *remap.Tables) []datafix.TileEntityFix {
	return []datafix.TileEntityFix{
		{
			Header: datafix.Header{
				Name:        "Old Multiblock Tile Entity Meta ID Remap",
				Description: "Remaps old Multiblock Tile Entity Names to the new format.",
				Version:     datafix.AtMost(datafix.VersionDefaultSpecial),
				ModList:     datafix.AnyMods,
			},
			Matches: func(c *nbt.Compound) bool {
				if !c.HasKey(metaIDKey, nbt.TypeString) || !c.HasKey(idKey, nbt.TypeString) {
					return false
				}
				if datafix.ParseResource(c.GetString(idKey)) != gtMachine {
					return false
				}
				_, ok := t.MultiblockMetaID[datafix.ParseResource(c.GetString(metaIDKey))]
				return ok
			},
			Transform: func(c *nbt.Compound) {
				to := t.MultiblockMetaID[datafix.ParseResource(c.GetString(metaIDKey))]
				c.SetString(metaIDKey, to.String())
			},
		},
	}
}
