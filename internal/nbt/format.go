package nbt

import (
	"strconv"
	"strings"
)

// String renders c in the familiar bracketed text form, e.g.
// {id:"minecraft:chest",Count:1b}. Used for logs and inspection only.
func (c *Compound) String() string {
	var sb strings.Builder
	formatTag(&sb, c)
	return sb.String()
}

func formatTag(sb *strings.Builder, t Tag) {
	switch v := t.(type) {
	case nil:
		sb.WriteString("null")
	case *Compound:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(formatKey(k))
			sb.WriteByte(':')
			formatTag(sb, v.m[k])
		}
		sb.WriteByte('}')
	case List:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			formatTag(sb, e)
		}
		sb.WriteByte(']')
	case String:
		sb.WriteString(strconv.Quote(string(v)))
	case Byte:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('b')
	case Short:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('s')
	case Int:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('L')
	case Float:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		sb.WriteByte('f')
	case Double:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		sb.WriteByte('d')
	}
}

func formatKey(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		if !(r == '_' || r == '-' || r == '.' || r == '+' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return strconv.Quote(k)
		}
	}
	return k
}
