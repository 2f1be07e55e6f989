package param

import "maps"

// Values maps parameter names to values.
type Values map[string]Value

// Clone returns an independent copy of vs.
func (vs Values) Clone() Values {
	if vs == nil {
		return Values{}
	}
	return maps.Clone(vs)
}

// Merge returns a copy of vs with every entry of patch applied on top.
func (vs Values) Merge(patch Values) Values {
	out := vs.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same entries.
func (vs Values) Equal(o Values) bool {
	return maps.Equal(vs, o)
}

// Normalize returns a complete value set for specs: every declared
// parameter is present and valid, and names not in specs are dropped.
func Normalize(specs []Spec, vs Values) Values {
	out := make(Values, len(specs))
	for _, s := range specs {
		out[s.Name] = s.Normalize(vs[s.Name])
	}
	return out
}

// FromMap converts untyped values, as decoded from JSON, into Values.
// Entries that cannot be converted are dropped, which makes them fall
// back to their defaults during normalization.
func FromMap(m map[string]any) Values {
	out := make(Values, len(m))
	for k, x := range m {
		if v, err := FromAny(x); err == nil && !v.IsZero() {
			out[k] = v
		}
	}
	return out
}
