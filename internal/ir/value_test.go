package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRNumber("12.50")
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "aa", -1},
		{"", "a", -1},
		// U+FFFD (BMP) sorts after U+1F600 in UTF-16 because the emoji
		// starts with a high surrogate (0xD83D).
		{"\U0001F600", "\uFFFD", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(IRNull{}))
	assert.False(t, IsNull(IRString("")))
	assert.False(t, IsNull(IRInt(0)))
}

func TestIsComposite(t *testing.T) {
	assert.True(t, IsComposite(IRArray{}))
	assert.True(t, IsComposite(IRObject{}))
	assert.False(t, IsComposite(IRString("x")))
	assert.False(t, IsComposite(IRNull{}))
}

func TestUnmarshalValue_Order(t *testing.T) {
	data := []byte(`{
		"orderId": "1234-01",
		"value": 15990,
		"rate": 12.5,
		"huge": 123456789012345678901234567890,
		"isGift": false,
		"cancellationData": null,
		"items": [{"id": "1"}, {"id": "2"}]
	}`)

	v, err := UnmarshalValue(data)
	require.NoError(t, err)

	obj, ok := v.(IRObject)
	require.True(t, ok)
	assert.Equal(t, IRString("1234-01"), obj["orderId"])
	assert.Equal(t, IRInt(15990), obj["value"])
	assert.Equal(t, IRNumber("12.5"), obj["rate"])
	assert.Equal(t, IRNumber("123456789012345678901234567890"), obj["huge"])
	assert.Equal(t, IRBool(false), obj["isGift"])
	assert.Equal(t, IRNull{}, obj["cancellationData"])
	assert.Len(t, obj["items"], 2)
}

func TestUnmarshalValue_RejectsTrailingData(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{} {}`))
	assert.Error(t, err)
}

func TestUnmarshalValue_InvalidJSON(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestIRObjectUnmarshalJSON(t *testing.T) {
	var obj IRObject
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"b":[1,"x",null]}}`), &obj))

	inner, ok := obj["a"].(IRObject)
	require.True(t, ok)
	assert.Equal(t, IRArray{IRInt(1), IRString("x"), IRNull{}}, inner["b"])
}

func TestIRObjectUnmarshalJSON_WrongShape(t *testing.T) {
	var obj IRObject
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &obj))

	var arr IRArray
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &arr))
}

func TestMarshalIRValue(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want string
	}{
		{"nil", nil, "null"},
		{"null", IRNull{}, "null"},
		{"string", IRString("a<b"), `"a<b"`},
		{"int", IRInt(-3), "-3"},
		{"number", IRNumber("0.10"), "0.10"},
		{"bool", IRBool(true), "true"},
		{"array", IRArray{IRInt(1), IRNull{}}, "[1,null]"},
		{"object sorted", IRObject{"b": IRInt(1), "a": IRInt(2)}, `{"a":2,"b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalIRValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"n":     nil,
		"i":     7,
		"f":     2.25,
		"whole": 3.0,
		"list":  []any{"a", true},
	})
	require.NoError(t, err)

	obj := v.(IRObject)
	assert.Equal(t, IRNull{}, obj["n"])
	assert.Equal(t, IRInt(7), obj["i"])
	assert.Equal(t, IRNumber("2.25"), obj["f"])
	assert.Equal(t, IRInt(3), obj["whole"])
	assert.Equal(t, IRArray{IRString("a"), IRBool(true)}, obj["list"])
}

func TestFromGo_Unsupported(t *testing.T) {
	_, err := FromGo(struct{}{})
	assert.Error(t, err)
}

func TestNewIRObjectFromPairs(t *testing.T) {
	obj := NewIRObjectFromPairs(O("orderId", IRString("1")), O("value", IRInt(5)))
	assert.Equal(t, IRObject{"orderId": IRString("1"), "value": IRInt(5)}, obj)
}
