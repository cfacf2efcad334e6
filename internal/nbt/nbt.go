// Package nbt models named, typed tag trees as persisted in world saves.
//
// Accessors are total: reading a missing or mistyped key yields the zero value,
// so predicates over partially populated records never fail.
package nbt

// Type ids match the on-disk tag ids.
type Type byte

const (
	TypeEnd      Type = 0
	TypeByte     Type = 1
	TypeShort    Type = 2
	TypeInt      Type = 3
	TypeLong     Type = 4
	TypeFloat    Type = 5
	TypeDouble   Type = 6
	TypeString   Type = 8
	TypeList     Type = 9
	TypeCompound Type = 10

	// TypeAnyNumeric is only valid as a HasKey filter.
	TypeAnyNumeric Type = 99
)

func (t Type) String() string {
	switch t {
	case TypeEnd:
		return "end"
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeCompound:
		return "compound"
	case TypeAnyNumeric:
		return "any_numeric"
	default:
		return "unknown"
	}
}

func (t Type) numeric() bool {
	return t >= TypeByte && t <= TypeDouble
}

type Tag interface {
	Type() Type
	Clone() Tag
}

type (
	Byte   int8
	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64
	String string
)

func (Byte) Type() Type   { return TypeByte }
func (Short) Type() Type  { return TypeShort }
func (Int) Type() Type    { return TypeInt }
func (Long) Type() Type   { return TypeLong }
func (Float) Type() Type  { return TypeFloat }
func (Double) Type() Type { return TypeDouble }
func (String) Type() Type { return TypeString }

func (v Byte) Clone() Tag   { return v }
func (v Short) Clone() Tag  { return v }
func (v Int) Clone() Tag    { return v }
func (v Long) Clone() Tag   { return v }
func (v Float) Clone() Tag  { return v }
func (v Double) Clone() Tag { return v }
func (v String) Clone() Tag { return v }

// List is an ordered sequence of tags. Elements are expected to share one type
// but readers must not rely on it.
type List []Tag

func (List) Type() Type { return TypeList }

func (l List) Clone() Tag {
	if l == nil {
		return List(nil)
	}
	out := make(List, len(l))
	for i, t := range l {
		out[i] = t.Clone()
	}
	return out
}

// Strings returns the string elements of l and false if any element is not a
// string.
func (l List) Strings() ([]string, bool) {
	out := make([]string, 0, len(l))
	for _, t := range l {
		s, ok := t.(String)
		if !ok {
			return nil, false
		}
		out = append(out, string(s))
	}
	return out, true
}

// StringList builds a list of string tags.
func StringList(ss ...string) List {
	out := make(List, 0, len(ss))
	for _, s := range ss {
		out = append(out, String(s))
	}
	return out
}

// Equal reports deep equality, including numeric width.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return isNilTag(a) && isNilTag(b)
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Compound:
		return av.Equal(b.(*Compound))
	default:
		return a == b
	}
}

func isNilTag(t Tag) bool {
	if t == nil {
		return true
	}
	c, ok := t.(*Compound)
	return ok && c == nil
}
