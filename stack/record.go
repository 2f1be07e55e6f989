package stack

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/fx/param"
)

// Record is the persisted form of a layer. A project stores a stack as an
// ordered JSON array of records; layer ids are not persisted.
type Record struct {
	EffectID  string       `json:"effectId"`
	Params    param.Values `json:"params"`
	Opacity   float64      `json:"opacity"`
	Visible   bool         `json:"visible"`
	BlendMode BlendMode    `json:"blendMode"`
}

// Records returns the persisted form of s.
func (s Stack) Records() []Record {
	out := make([]Record, len(s.layers))
	for i, l := range s.layers {
		out[i] = Record{
			EffectID:  l.EffectID,
			Params:    l.Params.Clone(),
			Opacity:   l.Opacity,
			Visible:   l.Visible,
			BlendMode: l.Blend,
		}
	}
	return out
}

// FromRecords rebuilds a stack, asking newID for each layer's id.
func FromRecords(recs []Record, newID func() string) (Stack, error) {
	var s Stack
	for i, r := range recs {
		if r.EffectID == "" {
			return Stack{}, fmt.Errorf("stack: record %d: missing effect id", i)
		}
		l := Layer{
			ID:       newID(),
			EffectID: r.EffectID,
			Params:   r.Params,
			Opacity:  r.Opacity,
			Visible:  r.Visible,
			Blend:    r.BlendMode,
		}
		var err error
		if s, err = s.Append(l); err != nil {
			return Stack{}, fmt.Errorf("stack: record %d: %w", i, err)
		}
	}
	return s, nil
}

// MarshalJSON encodes s as its record array.
func (s Stack) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Records())
}

// ParseRecords decodes a JSON record array. Params holding values that
// cannot be decoded fail the whole parse.
func ParseRecords(b []byte) ([]Record, error) {
	var recs []Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("stack: decode records: %w", err)
	}
	return recs, nil
}
