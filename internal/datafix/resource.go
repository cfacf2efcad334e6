package datafix

import "strings"

const DefaultNamespace = "minecraft"

// ResourceLocation is a namespaced identifier such as "gregtech:machine".
type ResourceLocation struct {
	Namespace string
	Path      string
}

// ParseResource splits s at the first colon; a bare path gets the default
// namespace. Both halves are lower-cased.
func ParseResource(s string) ResourceLocation {
	s = strings.ToLower(strings.TrimSpace(s))
	ns, path, ok := strings.Cut(s, ":")
	if !ok {
		return ResourceLocation{Namespace: DefaultNamespace, Path: s}
	}
	if ns == "" {
		ns = DefaultNamespace
	}
	return ResourceLocation{Namespace: ns, Path: path}
}

func NewResource(namespace, path string) ResourceLocation {
	return ResourceLocation{Namespace: strings.ToLower(namespace), Path: strings.ToLower(path)}
}

func (r ResourceLocation) String() string { return r.Namespace + ":" + r.Path }

func (r ResourceLocation) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ResourceLocation) UnmarshalText(b []byte) error {
	*r = ParseResource(string(b))
	return nil
}
