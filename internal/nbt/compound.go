package nbt

// Compound is a set of named tags. Key order is insertion order so encoded
// trees are stable across load/save cycles.
//
// A nil *Compound reads as empty.
type Compound struct {
	keys []string
	m    map[string]Tag
}

func NewCompound() *Compound {
	return &Compound{m: map[string]Tag{}}
}

func (*Compound) Type() Type { return TypeCompound }

func (c *Compound) Clone() Tag { return c.CloneCompound() }

// CloneCompound deep-copies c. A nil compound clones to nil.
func (c *Compound) CloneCompound() *Compound {
	if c == nil {
		return nil
	}
	out := &Compound{keys: make([]string, len(c.keys)), m: make(map[string]Tag, len(c.m))}
	copy(out.keys, c.keys)
	for k, v := range c.m {
		out.m[k] = v.Clone()
	}
	return out
}

func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

func (c *Compound) Empty() bool { return c.Len() == 0 }

// Keys returns the keys in insertion order.
func (c *Compound) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Compound) Get(key string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.m[key]
	return t, ok
}

// HasKey reports whether key exists with the given type. TypeAnyNumeric
// matches any numeric tag.
func (c *Compound) HasKey(key string, typ Type) bool {
	t, ok := c.Get(key)
	if !ok {
		return false
	}
	if typ == TypeAnyNumeric {
		return t.Type().numeric()
	}
	return t.Type() == typ
}

func (c *Compound) GetString(key string) string {
	t, _ := c.Get(key)
	s, _ := t.(String)
	return string(s)
}

// GetFloat returns numeric tags widened or narrowed to float32.
func (c *Compound) GetFloat(key string) float32 {
	t, _ := c.Get(key)
	switch v := t.(type) {
	case Float:
		return float32(v)
	case Double:
		return float32(v)
	case Byte:
		return float32(v)
	case Short:
		return float32(v)
	case Int:
		return float32(v)
	case Long:
		return float32(v)
	}
	return 0
}

func (c *Compound) GetLong(key string) int64 {
	t, _ := c.Get(key)
	switch v := t.(type) {
	case Byte:
		return int64(v)
	case Short:
		return int64(v)
	case Int:
		return int64(v)
	case Long:
		return int64(v)
	case Float:
		return int64(v)
	case Double:
		return int64(v)
	}
	return 0
}

func (c *Compound) GetInt(key string) int32   { return int32(c.GetLong(key)) }
func (c *Compound) GetShort(key string) int16 { return int16(c.GetLong(key)) }
func (c *Compound) GetByte(key string) int8   { return int8(c.GetLong(key)) }

// GetCompound returns the nested compound or nil.
func (c *Compound) GetCompound(key string) *Compound {
	t, _ := c.Get(key)
	v, _ := t.(*Compound)
	return v
}

// GetList returns the list under key when every element has type elem.
// Empty lists match any element type.
func (c *Compound) GetList(key string, elem Type) List {
	t, _ := c.Get(key)
	l, ok := t.(List)
	if !ok {
		return nil
	}
	for _, e := range l {
		if e.Type() != elem {
			return nil
		}
	}
	return l
}

// Set stores t under key, keeping the original position when replacing.
func (c *Compound) Set(key string, t Tag) *Compound {
	if c.m == nil {
		c.m = map[string]Tag{}
	}
	if _, ok := c.m[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.m[key] = t
	return c
}

func (c *Compound) SetString(key, v string) *Compound    { return c.Set(key, String(v)) }
func (c *Compound) SetInt(key string, v int32) *Compound { return c.Set(key, Int(v)) }
func (c *Compound) SetShort(key string, v int16) *Compound {
	return c.Set(key, Short(v))
}
func (c *Compound) SetByte(key string, v int8) *Compound     { return c.Set(key, Byte(v)) }
func (c *Compound) SetFloat(key string, v float32) *Compound { return c.Set(key, Float(v)) }
func (c *Compound) SetLong(key string, v int64) *Compound    { return c.Set(key, Long(v)) }

func (c *Compound) Remove(key string) {
	if c == nil {
		return
	}
	if _, ok := c.m[key]; !ok {
		return
	}
	delete(c.m, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Equal compares keys and values; key order is ignored.
func (c *Compound) Equal(o *Compound) bool {
	if c.Len() != o.Len() {
		return false
	}
	for _, k := range c.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		if !Equal(c.m[k], ov) {
			return false
		}
	}
	return true
}
