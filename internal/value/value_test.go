package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = String("test")
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}

	var _ Key = Int(1)
	var _ Key = String("day")
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800...) and sorts before U+E000.
	obj := Object{"\uE000": Int(1), "\U00010000": Int(2)}
	assert.Equal(t, []string{"\U00010000", "\uE000"}, obj.SortedKeys())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same ints", Int(1), Int(1), true},
		{"int vs float", Int(1), Float(1), false},
		{"strings", String("a"), String("b"), false},
		{"nulls", Null{}, Null{}, true},
		{"null vs nil", Null{}, nil, false},
		{"empty vs nil array", Array{}, Array(nil), true},
		{"nested objects", Object{"a": Array{Int(1), Bool(true)}}, Object{"a": Array{Int(1), Bool(true)}}, true},
		{"missing key", Object{"a": Int(1)}, Object{"b": Int(1)}, false},
		{"array length", Array{Int(1)}, Array{Int(1), Int(2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestFromAny(t *testing.T) {
	got, err := FromAny(map[string]any{
		"count": 3,
		"ratio": 0.5,
		"tags":  []any{"x", true, nil},
	})
	require.NoError(t, err)

	want := Object{
		"count": Int(3),
		"ratio": Float(0.5),
		"tags":  Array{String("x"), Bool(true), Null{}},
	}
	assert.True(t, Equal(want, got), "got %#v", got)
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")

	_, err = FromAny(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object["ch"]`)
}

func TestToAny(t *testing.T) {
	v := Object{"n": Int(7), "f": Float(2.5), "l": Array{Null{}, String("s")}}
	assert.Equal(t, map[string]any{
		"n": int64(7),
		"f": 2.5,
		"l": []any{nil, "s"},
	}, ToAny(v))
}
