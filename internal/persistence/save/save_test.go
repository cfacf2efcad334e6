package save

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/nbt"
)

var compoundEqual = cmp.Comparer(func(a, b *nbt.Compound) bool { return a.Equal(b) })

func sampleSave() SaveV1 {
	s := New("overworld")
	s.ModList = map[string]string{"gregtech": "2.8.10", "xu2": "1.9.9"}
	s.Players = []PlayerV1{{
		ID:   "p1",
		Name: "steve",
		Inventory: []*nbt.Compound{
			nbt.NewCompound().SetString("id", "gregtech:meta_item_1").SetByte("Count", 3).SetShort("Damage", 32050),
		},
		EnderChest: []*nbt.Compound{
			nbt.NewCompound().SetString("id", "xu2:ingredients").SetByte("Count", 1).SetShort("Damage", 4).
				Set("tag", nbt.NewCompound().SetInt("Freq", 7)),
		},
	}}
	s.Chunks = []ChunkV1{{CX: 0, CZ: 0, Blocks: []BlockV1{{Pos: Pos{1, 64, 2}, ID: "gregtech:fluid_pipe_tiny"}}}}
	s.TileEntities = []*nbt.Compound{
		nbt.NewCompound().SetInt("x", 1).SetInt("y", 64).SetInt("z", 2).SetString("id", "gregtech:pipe"),
	}
	return s
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worlds", "overworld.save.zst")
	in := sampleSave()
	if err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out.Header.WorldID != "overworld" || out.Header.Version != FormatVersion || out.Header.SavedAt == 0 {
		t.Fatalf("header: %+v", out.Header)
	}
	in.Header = out.Header
	if diff := cmp.Diff(in, out, compoundEqual); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	// Numeric widths survive.
	if !out.Players[0].Inventory[0].HasKey("Damage", nbt.TypeShort) {
		t.Fatalf("Damage lost its width: %s", out.Players[0].Inventory[0])
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h != out.Header {
		t.Fatalf("header line %+v != %+v", h, out.Header)
	}
}

func TestNew_MarkedNew(t *testing.T) {
	s := New("w")
	v, ok := s.FixVersion()
	if !ok || v != datafix.VersionNew {
		t.Fatalf("fix version: %d %t", v, ok)
	}
	s.SetFixVersion(datafix.VersionCurrent)
	if v, _ := s.FixVersion(); v != datafix.VersionCurrent {
		t.Fatalf("after set: %d", v)
	}
}

func TestFixVersion_Absent(t *testing.T) {
	var s SaveV1
	if _, ok := s.FixVersion(); ok {
		t.Fatalf("empty save reported a version")
	}
	s.Data = map[string]*nbt.Compound{datafix.DataName: nbt.NewCompound().SetString(datafix.DataKey, "3")}
	if _, ok := s.FixVersion(); ok {
		t.Fatalf("mistyped version must read as absent")
	}
}

func TestWrite_RejectsNilEntries(t *testing.T) {
	s := sampleSave()
	s.TileEntities = append(s.TileEntities, nil)
	if err := Write(filepath.Join(t.TempDir(), "x.zst"), s); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTileEntityIndex(t *testing.T) {
	s := sampleSave()
	s.TileEntities = append(s.TileEntities, nbt.NewCompound().SetString("id", "nowhere"))
	idx := s.TileEntityIndex()
	if len(idx) != 1 {
		t.Fatalf("index: %v", idx)
	}
	if idx[Pos{1, 64, 2}].GetString("id") != "gregtech:pipe" {
		t.Fatalf("lookup failed")
	}
}
