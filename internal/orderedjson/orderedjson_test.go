package orderedjson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembers_PreservesOrder(t *testing.T) {
	members, err := Members([]byte(`{"zeta": 1, "alpha": [2], "mid": {"x": 3}}`))
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, "zeta", members[0].Key)
	assert.Equal(t, "alpha", members[1].Key)
	assert.Equal(t, "mid", members[2].Key)
	assert.JSONEq(t, `{"x": 3}`, string(members[2].Value))
}

func TestMembers_NotAnObject(t *testing.T) {
	_, err := Members([]byte(`["a", "b"]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}

func TestMembers_Malformed(t *testing.T) {
	_, err := Members([]byte(`{"a": `))
	assert.Error(t, err)
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"flat array", `["CMPUT 201", "CMPUT 175"]`, []string{"CMPUT 201", "CMPUT 175"}},
		{"grouped", `{"one of": ["MATH 125", "MATH 127"], "and": ["CMPUT 175"]}`, []string{"MATH 125", "MATH 127", "CMPUT 175"}},
		{"nested", `{"a": [["X 100"], {"b": "Y 200"}]}`, []string{"X 100", "Y 200"}},
		{"ignores scalars", `[1, true, null, "Z 300"]`, []string{"Z 300"}},
		{"single string", `"CMPUT 174"`, []string{"CMPUT 174"}},
		{"empty", `[]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Strings([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrings_Malformed(t *testing.T) {
	_, err := Strings([]byte(`["a", `))
	assert.Error(t, err)
}

func TestWriteObject(t *testing.T) {
	data, err := WriteObject([]Member{
		{Key: "b", Value: json.RawMessage(`[1]`)},
		{Key: "a", Value: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1],"a":null}`, string(data))
}
