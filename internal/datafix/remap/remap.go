// Package remap builds the read-only lookup tables the labs fixes consult.
// Tables are built once per process from the host catalogs and never mutated.
package remap

import (
	"errors"
	"fmt"
	"regexp"

	"datafixer.ai/internal/catalogs"
	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/datafix/shape"
)

const (
	GregTechModID          = "gregtech"
	LabsModID              = "nomilabs"
	ContentTweakerModID    = "contenttweaker"
	MicroverseTweakerModID = "microverse_tweaker"
	MultiblockTweakerModID = "multiblocktweaker"
)

// MinMetaItemBaseID is the offset old custom material meta items were
// registered at inside GregTech's registries.
const MinMetaItemBaseID = 32000

var (
	metaItemPattern  = regexp.MustCompile(`^meta_\w+$`)
	metaBlockPattern = regexp.MustCompile(`^meta_block_\w+$`)
)

// IsMetaItemPath reports a material meta item path that is not a meta block.
func IsMetaItemPath(path string) bool {
	return metaItemPattern.MatchString(path) && !metaBlockPattern.MatchString(path)
}

// LabsName moves path into the labs namespace.
func LabsName(path string) datafix.ResourceLocation {
	return datafix.NewResource(LabsModID, path)
}

// Mode is the pack mode active in the environment.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeExpert Mode = "expert"
)

var (
	ErrNoCatalog     = errors.New("remap: host catalog unavailable")
	ErrNoMaterials   = errors.New("remap: material registry is empty")
	ErrWrongRegistry = errors.New("remap: material catalog is not the labs registry")
)

type Tables struct {
	// SpecialMetaItems are placeable meta items whose old encoding did not use
	// the base id scheme.
	SpecialMetaItems map[datafix.ResourceLocation]struct{}
	MaterialNames    map[string]struct{}
	MultiblockMeta   map[int16]int16
	MultiblockMetaID map[datafix.ResourceLocation]datafix.ResourceLocation
	Capacitors       map[string]shape.Capacitor
}

func (t *Tables) IsSpecialMetaItem(id datafix.ResourceLocation) bool {
	_, ok := t.SpecialMetaItems[id]
	return ok
}

func (t *Tables) IsMaterial(name string) bool {
	_, ok := t.MaterialNames[name]
	return ok
}

type metaPair struct{ from, to int16 }

var (
	// Microverse projectors 1-3.
	sharedMultiblockMeta = []metaPair{{32000, 32100}, {32001, 32101}, {32002, 32102}}

	// Creative tank provider, naquadah reactors 1-2, DME sim chamber.
	normalMultiblockMeta = []metaPair{{32003, 32103}, {32004, 32104}, {32005, 32105}, {3100, 32108}}

	// Naquadah reactors 1-2, actualization chamber, universal crystallizer.
	expertMultiblockMeta = []metaPair{{32003, 32104}, {32004, 32105}, {32005, 32106}, {32006, 32107}}
)

var multiblockMetaIDs = []struct {
	ns, from, to string
}{
	{MicroverseTweakerModID, "microverse_projector_basic", "microverse_projector_1"},
	{MicroverseTweakerModID, "microverse_projector_advanced", "microverse_projector_2"},
	{MicroverseTweakerModID, "microverse_projector_advanced_ii", "microverse_projector_3"},
	{MicroverseTweakerModID, "creative_tank_provider", "creative_tank_provider"},
	{MultiblockTweakerModID, "naquadah_reactor_1", "naquadah_reactor_1"},
	{MultiblockTweakerModID, "naquadah_reactor_2", "naquadah_reactor_2"},
	{MultiblockTweakerModID, "actualization_chamber", "actualization_chamber"},
	{MultiblockTweakerModID, "universal_crystallizer", "universal_crystallizer"},
	{MultiblockTweakerModID, "dml_sim_chamber", "dme_sim_chamber"},
}

// Build derives every table from the catalogs. Mode selects which of the two
// exclusive multiblock meta tables is merged; any other mode gets only the
// shared entries.
func Build(c *catalogs.Catalogs, mode Mode) (*Tables, error) {
	if c == nil {
		return nil, ErrNoCatalog
	}
	if c.Materials.Registry != LabsModID {
		return nil, fmt.Errorf("%w: got %q", ErrWrongRegistry, c.Materials.Registry)
	}
	if len(c.Materials.Defs) == 0 {
		return nil, ErrNoMaterials
	}
	if len(c.Pipes.Insulations) == 0 || len(c.Pipes.FluidPipes) == 0 || len(c.Pipes.ItemPipes) == 0 {
		return nil, fmt.Errorf("%w: pipe types missing", ErrNoCatalog)
	}

	t := &Tables{
		SpecialMetaItems: map[datafix.ResourceLocation]struct{}{},
		MaterialNames:    map[string]struct{}{},
		MultiblockMeta:   map[int16]int16{},
		MultiblockMetaID: map[datafix.ResourceLocation]datafix.ResourceLocation{},
	}

	// Fine wire is not placeable and follows the normal meta item rules.
	for _, name := range c.Pipes.Insulations {
		t.SpecialMetaItems[datafix.NewResource(GregTechModID, name)] = struct{}{}
	}
	for _, name := range c.Pipes.FluidPipes {
		t.SpecialMetaItems[datafix.NewResource(GregTechModID, "fluid_pipe_"+name)] = struct{}{}
	}
	for _, name := range c.Pipes.ItemPipes {
		t.SpecialMetaItems[datafix.NewResource(GregTechModID, "item_pipe_"+name)] = struct{}{}
	}

	for _, name := range c.Materials.Names() {
		t.MaterialNames[name] = struct{}{}
	}

	for _, p := range sharedMultiblockMeta {
		t.MultiblockMeta[p.from] = p.to
	}
	switch mode {
	case ModeNormal:
		for _, p := range normalMultiblockMeta {
			t.MultiblockMeta[p.from] = p.to
		}
	case ModeExpert:
		for _, p := range expertMultiblockMeta {
			t.MultiblockMeta[p.from] = p.to
		}
	}

	for _, e := range multiblockMetaIDs {
		t.MultiblockMetaID[datafix.NewResource(e.ns, e.from)] = LabsName(e.to)
	}

	t.Capacitors = map[string]shape.Capacitor{
		"compressedoctadiccapacitor": shape.NewCapacitor(4, "Compressed Octadic RF Capacitor",
			"This is what is known as a Compressed Octadic Capacitor.",
			"Or, you could just call this an Octadic Capacitor Two.",
			"Can be inserted into EnderIO machines.",
			"Level: 4"),
		"doublecompressedoctadiccapacitor": shape.NewCapacitor(5, "Double Compressed Octadic RF Capacitor",
			"AND THIS IS TO GO EVEN FURTHER BEYOND!",
			"Can be inserted into EnderIO machines.",
			"Level: 9.001",
			"Just kidding, it's only 5."),
	}
	return t, nil
}
