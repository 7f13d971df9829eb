package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ X, Y int }

func TestToScalar(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
		ok   bool
	}{
		{"string", "Finance", StringValue("Finance"), true},
		{"int", 42, IntValue(42), true},
		{"uint16", uint16(7), IntValue(7), true},
		{"float32", float32(0.5), FloatValue(0.5), true},
		{"bool", true, BoolValue(true), true},
		{"value passthrough", IntValue(3), IntValue(3), true},
		{"string slice", []string{"tax", "2024"}, StringValue("tax,2024"), true},
		{"empty slice", []string{}, StringValue(""), true},
		{"any slice of scalars", []any{"a", 2, 1.5, false}, StringValue("a,2,1.5,false"), true},
		{"int array", [3]int{1, 2, 3}, StringValue("1,2,3"), true},
		{"named string", DocumentTypeVideo, StringValue("video"), true},
		{"nested slice", [][]string{{"a"}, {"b"}}, Value{}, false},
		{"slice with map", []any{"a", map[string]int{}}, Value{}, false},
		{"map", map[string]any{"a": 1}, Value{}, false},
		{"struct", point{1, 2}, Value{}, false},
		{"bytes", []byte("raw"), Value{}, false},
		{"nil", nil, Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToScalar(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSanitize_OnlyScalars(t *testing.T) {
	raw := map[string]any{
		"source": "a.pdf",
		"tags":   []string{"x", "y"},
		"pages":  3,
		"info":   map[string]any{"title": "t"},
		"list":   []map[string]int{{"a": 1}},
	}

	meta, dropped := Sanitize(raw)

	assert.Equal(t, []string{"info", "list"}, dropped)
	assert.Len(t, meta, 3)
	for k, v := range meta {
		switch v.Kind() {
		case KindString, KindInt, KindFloat, KindBool:
		default:
			t.Errorf("key %s has non-scalar kind %v", k, v.Kind())
		}
	}
	assert.Equal(t, "x,y", meta.String("tags"))
}

func TestValue_Accessors(t *testing.T) {
	s, ok := StringValue("a").Str()
	assert.True(t, ok)
	assert.Equal(t, "a", s)

	_, ok = StringValue("a").Int()
	assert.False(t, ok)

	f, ok := FloatValue(1.25).Float()
	assert.True(t, ok)
	assert.InDelta(t, 1.25, f, 1e-9)

	assert.Equal(t, "1.25", FloatValue(1.25).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "-4", IntValue(-4).String())
	assert.Equal(t, KindString, Value{}.Kind())
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	m := Metadata{
		"source": StringValue("guide.pdf"),
		"pages":  IntValue(12),
		"score":  FloatValue(0.75),
		"ratio":  FloatValue(2),
		"big":    FloatValue(1e21),
		"ok":     BoolValue(true),
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Metadata
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestValue_MarshalIntegralFloat(t *testing.T) {
	data, err := json.Marshal(FloatValue(2))
	require.NoError(t, err)
	assert.Equal(t, "2.0", string(data))

	data, err = json.Marshal(IntValue(2))
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))

	var back Value
	require.NoError(t, json.Unmarshal([]byte("2.0"), &back))
	assert.Equal(t, KindFloat, back.Kind())
}

func TestMetadata_UnmarshalRejectsNested(t *testing.T) {
	var m Metadata
	err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &m)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMetadata_CloneAndKeys(t *testing.T) {
	m := Metadata{"b": StringValue("2"), "a": StringValue("1")}
	c := m.Clone()
	c["a"] = StringValue("changed")

	assert.Equal(t, "1", m.String("a"))
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Nil(t, Metadata(nil).Clone())
	assert.Equal(t, "", m.String("missing"))
}
