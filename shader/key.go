package shader

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Key identifies a compiled program: a source ref plus the structural
// values baked into the source. Runtime parameters never appear in a key.
type Key struct {
	Ref string
	// Specialization is the canonical "name=value,..." list, sorted by
	// name, or empty.
	Specialization string
}

// NewKey builds the key for ref specialized with defines.
func NewKey(ref string, defines map[string]int) Key {
	if len(defines) == 0 {
		return Key{Ref: ref}
	}
	names := slices.Sorted(maps.Keys(defines))
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + strconv.Itoa(defines[n])
	}
	return Key{Ref: ref, Specialization: strings.Join(parts, ",")}
}

// Defines parses the specialization back into name/value pairs.
// Malformed entries are ignored.
func (k Key) Defines() map[string]int {
	if k.Specialization == "" {
		return nil
	}
	out := make(map[string]int)
	for part := range strings.SplitSeq(k.Specialization, ",") {
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			continue
		}
		out[name] = n
	}
	return out
}

func (k Key) String() string {
	if k.Specialization == "" {
		return k.Ref
	}
	return k.Ref + "[" + k.Specialization + "]"
}
