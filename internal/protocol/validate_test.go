package protocol

import (
	"encoding/json"
	"fmt"
	"testing"

	"datafixer.ai/internal/nbt"
)

func TestValidate_Samples(t *testing.T) {
	valid := map[string]string{
		TypeHello:  `{"type":"HELLO","protocol_version":"1.0","world_id":"w","stored_version":1,"special_mode":true,"mod_list":{"xu2":"1.9"}}`,
		TypeRecord: `{"type":"RECORD","protocol_version":"1.0","seq":1,"kind":"item","item":{"id":"gregtech:meta_item_1","meta":32050}}`,
		TypeDone:   `{"type":"DONE","protocol_version":"1.0"}`,
	}
	for typ, raw := range valid {
		if err := Validate(typ, []byte(raw)); err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
	}

	invalid := []struct {
		typ string
		raw string
	}{
		{TypeHello, `{"type":"HELLO"}`},
		{TypeHello, `{"type":"HELLO","protocol_version":"1.0","stored_version":"3"}`},
		{TypeRecord, `{"type":"RECORD","protocol_version":"1.0","seq":1,"kind":"item"}`},
		{TypeRecord, `{"type":"RECORD","protocol_version":"1.0","seq":1,"kind":"block","item":{"id":"a:b"}}`},
		{TypeRecord, `{"type":"RECORD","protocol_version":"1.0","seq":1,"kind":"item","item":{"id":"a:b","meta":40000}}`},
		{TypeRecord, `{"type":"RECORD","protocol_version":"1.0","seq":1,"kind":"entity","item":{"id":"a:b"}}`},
		{TypeDone, `{"type":"DONE","protocol_version":"1.0","extra":1}`},
		{TypeGate, `{"type":"GATE"}`},
	}
	for _, tc := range invalid {
		if err := Validate(tc.typ, []byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected rejection of %s", tc.typ, tc.raw)
		}
	}
}

func TestRecordMsg_MarshalledRecordValidates(t *testing.T) {
	msg := RecordMsg{
		Type:            TypeRecord,
		ProtocolVersion: Version,
		Seq:             7,
		Kind:            "block",
		Block: &BlockRecord{
			ID:         "gregtech:fluid_pipe_tiny",
			TileEntity: nbt.NewCompound().SetString("PipeMaterial", "taranium"),
		},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(TypeRecord, b); err != nil {
		t.Fatalf("validate: %v\n%s", err, b)
	}
}

func TestItemRecord_StackConversion(t *testing.T) {
	rec := &ItemRecord{ID: "GregTech:Meta_Item_1", Meta: 5}
	s := rec.Stack()
	if s.ID.String() != "gregtech:meta_item_1" || s.Meta != 5 || s.Tag != nil {
		t.Fatalf("stack: %s", s)
	}
	s.Tag = nbt.NewCompound()
	if out := ItemFromStack(s); out.Tag != nil {
		t.Fatalf("empty tag must be omitted")
	}
}

func TestValidate_NumbersAndMalformedInput(t *testing.T) {
	base := `{"type":"HELLO","protocol_version":"1.0","world_id":"w","stored_version":%s}`
	if err := Validate(TypeHello, []byte(fmt.Sprintf(base, "2147483647"))); err != nil {
		t.Fatalf("NEW as stored version: %v", err)
	}
	if err := Validate(TypeHello, []byte(fmt.Sprintf(base, "-1"))); err != nil {
		t.Fatalf("DEFAULT_SPECIAL as stored version: %v", err)
	}
	if err := Validate(TypeHello, []byte(fmt.Sprintf(base, "1.5"))); err == nil {
		t.Fatalf("fractional stored version accepted")
	}
	if err := Validate(TypeHello, []byte(`{"type":"HELLO",`)); err == nil {
		t.Fatalf("truncated frame accepted")
	}
}
