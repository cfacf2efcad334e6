package datafix

import (
	"strings"
	"testing"

	"datafixer.ai/internal/nbt"
)

func TestBuilder_Validation(t *testing.T) {
	matchAll := func(*ItemStack) bool { return true }
	noop := func(*ItemStack) {}

	_, err := NewBuilder().
		Item(ItemFix{Header: Header{Name: "a", Version: AtMost(0)}, Matches: matchAll, Transform: noop}).
		Item(ItemFix{Header: Header{Name: "a", Version: AtMost(0)}, Matches: matchAll, Transform: noop}).
		Item(ItemFix{Header: Header{Name: "", Version: AtMost(0)}, Matches: matchAll, Transform: noop}).
		Item(ItemFix{Header: Header{Name: "b"}, Matches: matchAll, Transform: noop}).
		Item(ItemFix{Header: Header{Name: "c", Version: AtMost(0)}, Transform: noop}).
		Block(BlockFix{Header: Header{Name: "d", Version: AtMost(0)}, Primary: func(*BlockState) bool { return true }}).
		Build()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{`"a": duplicate name`, "empty name", `"b": missing version`, `"c": missing content`, `"d": missing transform`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestBuilder_SameNameAcrossKinds(t *testing.T) {
	reg, err := NewBuilder().
		Item(ItemFix{Header: Header{Name: "x", Version: AtMost(0)}, Matches: func(*ItemStack) bool { return true }, Transform: func(*ItemStack) {}}).
		TileEntity(TileEntityFix{Header: Header{Name: "x", Version: AtMost(0)}, Matches: func(*nbt.Compound) bool { return true }, Transform: func(*nbt.Compound) {}}).
		Build()
	if err != nil {
		t.Fatalf("names are unique per kind only: %v", err)
	}
	if reg.Len(KindItem) != 1 || reg.Len(KindTileEntity) != 1 || reg.Len(KindBlock) != 0 {
		t.Fatalf("lens: %d %d %d", reg.Len(KindItem), reg.Len(KindBlock), reg.Len(KindTileEntity))
	}
}

func TestRegistry_PreservesOrderAndIsFrozen(t *testing.T) {
	b := NewBuilder()
	for _, name := range []string{"first", "second", "third"} {
		b.Item(ItemFix{Header: Header{Name: name, Version: AtMost(0)}, Matches: func(*ItemStack) bool { return true }, Transform: func(*ItemStack) {}})
	}
	reg, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(reg.Names(KindItem), ","); got != "first,second,third" {
		t.Fatalf("order: %s", got)
	}

	items := reg.Items()
	items[0].Name = "mutated"
	if reg.Names(KindItem)[0] != "first" {
		t.Fatalf("registry mutated through returned slice")
	}

	b.Item(ItemFix{Header: Header{Name: "late", Version: AtMost(0)}, Matches: func(*ItemStack) bool { return true }, Transform: func(*ItemStack) {}})
	if reg.Len(KindItem) != 3 {
		t.Fatalf("built registry changed after later registration")
	}
}

func TestParseResource(t *testing.T) {
	cases := map[string]string{
		"gregtech:machine": "gregtech:machine",
		"Stone":            "minecraft:stone",
		":x":               "minecraft:x",
		" a:B ":            "a:b",
	}
	for in, want := range cases {
		if got := ParseResource(in).String(); got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}
}
