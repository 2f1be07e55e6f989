package stack

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/fx/param"
)

func threeLayers(t *testing.T) Stack {
	t.Helper()
	s, err := New(
		NewLayer("a", "pixelate", param.Values{"cellSize": param.Number(4)}),
		NewLayer("b", "sepia", param.Values{"intensity": param.Number(0.5)}),
		NewLayer("c", "twirl", nil),
	)
	require.NoError(t, err)
	return s
}

func ids(s Stack) []string {
	var out []string
	for _, l := range s.All() {
		out = append(out, l.ID)
	}
	return out
}

func TestMoveFirstToLast(t *testing.T) {
	s := threeLayers(t)
	moved, err := s.Move(0, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c", "a"}, ids(moved))
	assert.Equal(t, []string{"a", "b", "c"}, ids(s), "receiver changed")
	for _, id := range []string{"a", "b", "c"} {
		before, _ := s.Layer(id)
		after, _ := moved.Layer(id)
		assert.True(t, before.Equal(after), "layer %s changed", id)
	}

	back, err := moved.Move(2, 0)
	require.NoError(t, err)
	assert.True(t, back.Equal(s))
}

func TestMoveOutOfRange(t *testing.T) {
	s := threeLayers(t)
	for _, mv := range [][2]int{{-1, 0}, {0, 3}, {3, 0}, {0, -1}} {
		got, err := s.Move(mv[0], mv[1])
		require.ErrorIs(t, err, ErrIndexOutOfRange, "move %v", mv)
		assert.True(t, got.Equal(s))
	}
	same, err := s.Move(1, 1)
	require.NoError(t, err)
	assert.True(t, same.Equal(s))
}

func TestUpdateIsCopyOnWrite(t *testing.T) {
	s := threeLayers(t)
	u, err := s.Update("a", func(l *Layer) {
		l.Params["cellSize"] = param.Number(20)
		l.Opacity = 3
		l.ID = "hijack"
	})
	require.NoError(t, err)

	orig, _ := s.Layer("a")
	assert.Equal(t, 4.0, orig.Params["cellSize"].Float())
	got, ok := u.Layer("a")
	require.True(t, ok)
	assert.Equal(t, 20.0, got.Params["cellSize"].Float())
	assert.Equal(t, 1.0, got.Opacity)

	_, err = s.Update("zzz", func(*Layer) {})
	require.ErrorIs(t, err, ErrLayerNotFound)
}

func TestLayerCopiesDoNotAlias(t *testing.T) {
	s := threeLayers(t)
	l := s.At(0)
	l.Params["cellSize"] = param.Number(99)
	ls := s.Layers()
	ls[0].Params["cellSize"] = param.Number(98)
	assert.Equal(t, 4.0, s.At(0).Params["cellSize"].Float())
}

func TestRemoveAndClear(t *testing.T) {
	s := threeLayers(t)
	r, err := s.Remove("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(r))
	assert.Equal(t, 3, s.Len())

	_, err = s.Remove("b2")
	require.ErrorIs(t, err, ErrLayerNotFound)

	assert.True(t, s.Clear().IsEmpty())
	assert.Equal(t, 3, s.Len())
}

func TestAppendRejectsDuplicate(t *testing.T) {
	s := threeLayers(t)
	_, err := s.Append(NewLayer("b", "noir", nil))
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = New(NewLayer("x", "noir", nil), NewLayer("x", "noir", nil))
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestAppendDoesNotShareBacking(t *testing.T) {
	base := threeLayers(t)
	a, err := base.Append(NewLayer("d", "noir", nil))
	require.NoError(t, err)
	b, err := base.Append(NewLayer("e", "warm", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(a))
	assert.Equal(t, []string{"a", "b", "c", "e"}, ids(b))
}

func TestRecordsJSONShape(t *testing.T) {
	s := threeLayers(t)
	s, err := s.Update("b", func(l *Layer) {
		l.Visible = false
		l.Opacity = 0.25
		l.Blend = BlendScreen
	})
	require.NoError(t, err)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Len(t, raw, 3)
	for _, r := range raw {
		assert.Len(t, r, 5)
		for _, k := range []string{"effectId", "params", "opacity", "visible", "blendMode"} {
			assert.Contains(t, r, k)
		}
	}
	assert.Equal(t, "screen", raw[1]["blendMode"])
	assert.Equal(t, false, raw[1]["visible"])
	assert.Equal(t, 0.25, raw[1]["opacity"])
	assert.Equal(t, map[string]any{"cellSize": 4.0}, raw[0]["params"])

	recs, err := ParseRecords(b)
	require.NoError(t, err)
	n := 0
	back, err := FromRecords(recs, func() string { n++; return fmt.Sprintf("id-%d", n) })
	require.NoError(t, err)
	assert.Equal(t, s.Records(), back.Records())
	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, ids(back))
}

func TestFromRecordsErrors(t *testing.T) {
	_, err := FromRecords([]Record{{Params: nil}}, func() string { return "x" })
	require.Error(t, err)

	_, err = FromRecords([]Record{{EffectID: "noir"}, {EffectID: "warm"}}, func() string { return "same" })
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = ParseRecords([]byte(`[{"effectId":"noir","blendMode":"dissolve"}]`))
	require.Error(t, err)
	_, err = ParseRecords([]byte(`{}`))
	require.Error(t, err)
}

func TestClampOpacity(t *testing.T) {
	nan := math.NaN()
	tests := []struct{ in, want float64 }{
		{-1, 0}, {0, 0}, {0.4, 0.4}, {1, 1}, {7, 1}, {nan, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampOpacity(tt.in), "ClampOpacity(%v)", tt.in)
	}
}
