package nbt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON form: a compound is an object whose values are single-key objects
// naming the tag type, e.g. {"id":{"string":"x"},"Count":{"byte":1}}.
// This keeps numeric widths intact across JSON and gob round trips.

func (c *Compound) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCompound(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Compound) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		c.keys, c.m = nil, map[string]Tag{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("nbt: compound must be an object")
	}
	c.keys, c.m = nil, map[string]Tag{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("nbt: key %q: %w", key, err)
		}
		t, err := decodeTag(raw)
		if err != nil {
			return fmt.Errorf("nbt: key %q: %w", key, err)
		}
		c.Set(key, t)
	}
	_, err = dec.Token()
	return err
}

func (c *Compound) GobEncode() ([]byte, error) { return c.MarshalJSON() }
func (c *Compound) GobDecode(b []byte) error   { return c.UnmarshalJSON(b) }

func writeCompound(buf *bytes.Buffer, c *Compound) error {
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		if err := writeTag(buf, c.m[k]); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeTag(buf *bytes.Buffer, t Tag) error {
	buf.WriteString(`{"`)
	buf.WriteString(t.Type().String())
	buf.WriteString(`":`)
	switch v := t.(type) {
	case *Compound:
		if err := writeCompound(buf, v); err != nil {
			return err
		}
	case List:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeTag(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return nil
}

func decodeTag(raw json.RawMessage) (Tag, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if len(env) != 1 {
		return nil, fmt.Errorf("tag must have exactly one type key, got %d", len(env))
	}
	for typ, v := range env {
		switch typ {
		case "byte":
			var n Byte
			return n, json.Unmarshal(v, &n)
		case "short":
			var n Short
			return n, json.Unmarshal(v, &n)
		case "int":
			var n Int
			return n, json.Unmarshal(v, &n)
		case "long":
			var n Long
			return n, json.Unmarshal(v, &n)
		case "float":
			var n Float
			return n, json.Unmarshal(v, &n)
		case "double":
			var n Double
			return n, json.Unmarshal(v, &n)
		case "string":
			var s String
			return s, json.Unmarshal(v, &s)
		case "list":
			var items []json.RawMessage
			if err := json.Unmarshal(v, &items); err != nil {
				return nil, err
			}
			l := make(List, 0, len(items))
			for i, it := range items {
				t, err := decodeTag(it)
				if err != nil {
					return nil, fmt.Errorf("list[%d]: %w", i, err)
				}
				l = append(l, t)
			}
			return l, nil
		case "compound":
			c := NewCompound()
			if err := c.UnmarshalJSON(v); err != nil {
				return nil, err
			}
			return c, nil
		default:
			return nil, fmt.Errorf("unknown tag type %q", typ)
		}
	}
	return nil, nil
}
