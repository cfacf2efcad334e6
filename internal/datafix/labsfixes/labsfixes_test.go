package labsfixes

import (
	"strings"
	"testing"

	"datafixer.ai/internal/catalogs"
	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/datafix/remap"
	"datafixer.ai/internal/nbt"
)

func testTables(t *testing.T) *remap.Tables {
	t.Helper()
	c := &catalogs.Catalogs{
		Materials: catalogs.MaterialCatalog{
			Registry: remap.LabsModID,
			Defs:     []catalogs.MaterialDef{{Name: "microversium"}, {Name: "taranium"}},
		},
		Pipes: catalogs.PipeCatalog{
			Insulations: []string{"wire_single"},
			FluidPipes:  []string{"tiny", "normal"},
			ItemPipes:   []string{"small"},
		},
	}
	tables, err := remap.Build(c, remap.ModeNormal)
	if err != nil {
		t.Fatalf("remap.Build: %v", err)
	}
	return tables
}

func build(t *testing.T, opts Options) *datafix.Registry {
	t.Helper()
	reg, err := Build(testTables(t), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func TestBuild_RegistrationOrder(t *testing.T) {
	reg := build(t, Options{XU2Integration: true, EnderIOLoaded: true})
	want := []string{
		"Dark Red Coal Remap",
		"XU2 Frequency Removal",
		"Old Multiblock Metadata Remap",
		"Material Meta Item Remap",
		"Material Special Meta Item Remap",
		"Custom Capacitor NBT Removal",
	}
	if got := reg.Names(datafix.KindItem); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("item fixes:\n got %v\nwant %v", got, want)
	}
	if got := reg.Names(datafix.KindBlock); len(got) != 1 || got[0] != "Material Special Meta Block Remap" {
		t.Fatalf("block fixes: %v", got)
	}
	if got := reg.Names(datafix.KindTileEntity); len(got) != 1 || got[0] != "Old Multiblock Tile Entity Meta ID Remap" {
		t.Fatalf("tile entity fixes: %v", got)
	}
}

func TestBuild_ConditionalFixes(t *testing.T) {
	reg := build(t, Options{})
	for _, name := range reg.Names(datafix.KindItem) {
		if name == "XU2 Frequency Removal" || name == "Custom Capacitor NBT Removal" {
			t.Fatalf("%s registered without its integration", name)
		}
	}
	if reg.Len(datafix.KindItem) != 4 {
		t.Fatalf("item fixes: %d", reg.Len(datafix.KindItem))
	}
}

func TestDarkRedCoal(t *testing.T) {
	reg := build(t, Options{})
	s := &datafix.ItemStack{ID: datafix.ParseResource("contenttweaker:dark_red_coal")}
	if !datafix.NewEngine(reg, datafix.VersionDefault, nil).ApplyItem(s) {
		t.Fatalf("expected fired")
	}
	if s.ID.String() != "xu2:ingredients" || s.Meta != 4 {
		t.Fatalf("got %s", s)
	}

	s = &datafix.ItemStack{ID: datafix.ParseResource("contenttweaker:dark_red_coal")}
	if datafix.NewEngine(reg, datafix.VersionPreMaterialRework, nil).ApplyItem(s) {
		t.Fatalf("must not fire past DEFAULT: %s", s)
	}
}

func TestMaterialMetaItem(t *testing.T) {
	reg := build(t, Options{})
	e := datafix.NewEngine(reg, datafix.VersionPreMaterialRework, nil)

	s := &datafix.ItemStack{ID: datafix.ParseResource("gregtech:meta_item_1"), Meta: 32050}
	if !e.ApplyItem(s) {
		t.Fatalf("expected fired")
	}
	if s.ID.String() != "nomilabs:meta_item_1" || s.Meta != 50 {
		t.Fatalf("got %s", s)
	}

	for _, tc := range []datafix.ItemStack{
		{ID: datafix.ParseResource("gregtech:meta_item_1"), Meta: 31999},
		{ID: datafix.ParseResource("gregtech:meta_block_compressed_1"), Meta: 32050},
		{ID: datafix.ParseResource("nomilabs:meta_item_1"), Meta: 32050},
	} {
		s := tc
		if e.ApplyItem(&s) {
			t.Fatalf("%s must not be remapped, got %s", tc.String(), s.String())
		}
	}

	s = &datafix.ItemStack{ID: datafix.ParseResource("gregtech:meta_item_1"), Meta: 32050}
	if datafix.NewEngine(reg, datafix.VersionPreCapacitorRemapping, nil).ApplyItem(s) {
		t.Fatalf("must not fire past PRE_MATERIAL_REWORK")
	}
}

func TestMaterialSpecialMetaItem(t *testing.T) {
	reg := build(t, Options{})
	s := &datafix.ItemStack{ID: datafix.ParseResource("gregtech:fluid_pipe_tiny"), Meta: 32001}
	if !datafix.NewEngine(reg, datafix.VersionPreMaterialRework, nil).ApplyItem(s) {
		t.Fatalf("expected fired")
	}
	if s.ID.String() != "nomilabs:fluid_pipe_tiny" || s.Meta != 1 {
		t.Fatalf("got %s", s)
	}
}

func TestOldMultiblockMetadata(t *testing.T) {
	reg := build(t, Options{})
	s := &datafix.ItemStack{ID: datafix.ParseResource("gregtech:machine"), Meta: 3100}
	if !datafix.NewEngine(reg, datafix.VersionDefaultSpecial, nil).ApplyItem(s) {
		t.Fatalf("expected fired")
	}
	if s.ID.String() != "gregtech:machine" || s.Meta != 32108 {
		t.Fatalf("got %s", s)
	}

	s = &datafix.ItemStack{ID: datafix.ParseResource("gregtech:machine"), Meta: 3100}
	if datafix.NewEngine(reg, datafix.VersionDefault, nil).ApplyItem(s) {
		t.Fatalf("must only fire in special mode, got %s", s)
	}
}

func TestXU2FrequencyRemoval(t *testing.T) {
	reg := build(t, Options{XU2Integration: true})
	mods := datafix.ModList{XU2ModID: "1.9.9"}

	s := &datafix.ItemStack{
		ID:   datafix.ParseResource("xu2:ingredients"),
		Meta: 4,
		Tag:  nbt.NewCompound().SetInt("Freq", 1234).SetString("Owner", "steve"),
	}
	if !datafix.NewEngine(reg, datafix.VersionNew, mods).ApplyItem(s) {
		t.Fatalf("expected fired at NEW")
	}
	if _, ok := s.Tag.Get("Freq"); ok || s.Tag.GetString("Owner") != "steve" {
		t.Fatalf("got %s", s)
	}

	s.Tag = nbt.NewCompound().SetLong("Freq", 1)
	if !datafix.NewEngine(reg, datafix.VersionDefault, mods).ApplyItem(s) {
		t.Fatalf("expected fired at DEFAULT")
	}
	if s.Tag != nil {
		t.Fatalf("empty tag must be dropped, got %s", s.Tag)
	}

	s.Tag = nbt.NewCompound().SetLong("Freq", 1)
	if datafix.NewEngine(reg, datafix.VersionDefault, datafix.ModList{"gregtech": "2.8"}).ApplyItem(s) {
		t.Fatalf("must not fire when xu2 was absent from the mod list")
	}
	if datafix.NewEngine(reg, datafix.VersionPreMaterialRework, mods).ApplyItem(s) {
		t.Fatalf("must not fire at PRE_MATERIAL_REWORK")
	}
}

func TestCustomCapacitorRemoval(t *testing.T) {
	reg := build(t, Options{EnderIOLoaded: true})
	eio := nbt.NewCompound().SetFloat("level", 4)
	tag := nbt.NewCompound().Set("eiocap", eio).SetInt("Energy", 10)
	s := &datafix.ItemStack{ID: datafix.ParseResource("contenttweaker:compressedoctadiccapacitor"), Tag: tag}

	if !datafix.NewEngine(reg, datafix.VersionPreCapacitorRemapping, nil).ApplyItem(s) {
		t.Fatalf("expected fired")
	}
	if s.Tag.HasKey("eiocap", nbt.TypeCompound) || s.Tag.GetInt("Energy") != 10 {
		t.Fatalf("got %s", s.Tag)
	}

	only := nbt.NewCompound().Set("eiocap", nbt.NewCompound().SetFloat("level", 5))
	s = &datafix.ItemStack{ID: datafix.ParseResource("nomilabs:doublecompressedoctadiccapacitor"), Tag: only}
	if !datafix.NewEngine(reg, datafix.VersionDefault, nil).ApplyItem(s) || s.Tag != nil {
		t.Fatalf("expected tag dropped, got %s", s)
	}

	s = &datafix.ItemStack{ID: datafix.ParseResource("nomilabs:compressedoctadiccapacitor"),
		Tag: nbt.NewCompound().Set("eiocap", nbt.NewCompound().SetFloat("level", 4))}
	if datafix.NewEngine(reg, datafix.VersionCurrent, nil).ApplyItem(s) {
		t.Fatalf("must not fire at CURRENT")
	}
}

func TestSpecialMetaBlock(t *testing.T) {
	reg := build(t, Options{})
	e := datafix.NewEngine(reg, datafix.VersionDefault, nil)

	fetches := 0
	te := nbt.NewCompound().
		SetString("PipeBlock", "gregtech:fluid_pipe_normal").
		SetString("PipeMaterial", "taranium")
	supplier := func() *nbt.Compound { fetches++; return te }

	b := &datafix.BlockState{ID: datafix.ParseResource("gregtech:fluid_pipe_normal"), Meta: 3}
	if !e.ApplyBlock(b, supplier) {
		t.Fatalf("expected fired")
	}
	if fetches != 1 {
		t.Fatalf("fetches=%d", fetches)
	}
	if b.ID.String() != "nomilabs:fluid_pipe_normal" || b.Meta != 3 {
		t.Fatalf("block: %s", b)
	}
	if te.GetString("PipeBlock") != "nomilabs:fluid_pipe_normal" || te.GetString("PipeMaterial") != "taranium" {
		t.Fatalf("tile entity: %s", te)
	}

	// Unknown material leaves both untouched.
	te = nbt.NewCompound().
		SetString("PipeBlock", "gregtech:fluid_pipe_normal").
		SetString("PipeMaterial", "steel")
	b = &datafix.BlockState{ID: datafix.ParseResource("gregtech:fluid_pipe_normal")}
	if e.ApplyBlock(b, func() *nbt.Compound { return te }) {
		t.Fatalf("unknown material must not fire")
	}

	// Non-pipe blocks never fetch the tile entity.
	fetches = 0
	if e.ApplyBlock(&datafix.BlockState{ID: datafix.ParseResource("minecraft:stone")}, supplier) || fetches != 0 {
		t.Fatalf("stone: fetches=%d", fetches)
	}
}

func TestMultiblockTileEntityMetaID(t *testing.T) {
	reg := build(t, Options{})
	c := nbt.NewCompound().
		SetString("MetaId", "microverse_tweaker:microverse_projector_basic").
		SetString("id", "gregtech:machine")
	if !datafix.NewEngine(reg, datafix.VersionDefaultSpecial, nil).ApplyTileEntity(c) {
		t.Fatalf("expected fired")
	}
	if got := c.GetString("MetaId"); got != "nomilabs:microverse_projector_1" {
		t.Fatalf("MetaId=%s", got)
	}
	if c.GetString("id") != "gregtech:machine" {
		t.Fatalf("id changed: %s", c)
	}

	c = nbt.NewCompound().
		SetString("MetaId", "microverse_tweaker:microverse_projector_basic").
		SetString("id", "gregtech:machine")
	if datafix.NewEngine(reg, datafix.VersionDefault, nil).ApplyTileEntity(c) {
		t.Fatalf("must not fire at DEFAULT")
	}

	other := nbt.NewCompound().
		SetString("MetaId", "microverse_tweaker:microverse_projector_basic").
		SetString("id", "minecraft:chest")
	if datafix.NewEngine(reg, datafix.VersionDefaultSpecial, nil).ApplyTileEntity(other) {
		t.Fatalf("must only fire on gregtech machines")
	}
}
