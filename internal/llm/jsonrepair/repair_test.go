package jsonrepair

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairPassesThroughValidJSON(t *testing.T) {
	in := []byte(`{"a": 1}`)
	out, ok := Repair(in)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestRepairStripsMarkdownFence(t *testing.T) {
	cases := map[string]string{
		"tagged fence":   "```json\n{\"score\": 7}\n```",
		"untagged fence": "```\n{\"score\": 7}\n```",
		"no newline tag": "```json\n{\"score\": 7}```",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, ok := Repair([]byte(in))
			require.True(t, ok, "output: %s", out)
			var v map[string]any
			require.NoError(t, json.Unmarshal(out, &v))
			assert.Equal(t, float64(7), v["score"])
		})
	}
}

func TestRepairExtractsDocumentFromProse(t *testing.T) {
	in := []byte("Here is the report you asked for:\n{\"summary\": \"ok\", \"items\": [1, 2]}\nLet me know if you need more.")
	out, ok := Repair(in)
	require.True(t, ok)
	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, "ok", v["summary"])
}

func TestRepairIgnoresBracesInsideStrings(t *testing.T) {
	in := []byte(`noise {"text": "a } inside", "n": 1} trailing`)
	out, ok := Repair(in)
	require.True(t, ok)
	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, "a } inside", v["text"])
}

func TestRepairRemovesTrailingCommas(t *testing.T) {
	in := []byte(`{"items": [1, 2, 3,], "name": "x",}`)
	out, ok := Repair(in)
	require.True(t, ok, "output: %s", out)
	var v struct {
		Items []int  `json:"items"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, []int{1, 2, 3}, v.Items)
	assert.Equal(t, "x", v.Name)
}

func TestRepairKeepsCommasInsideStrings(t *testing.T) {
	in := []byte("```json\n{\"text\": \"a, b,]\"}\n```")
	out, ok := Repair(in)
	require.True(t, ok)
	var v map[string]string
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, "a, b,]", v["text"])
}

func TestRepairHandlesTopLevelArray(t *testing.T) {
	in := []byte("```json\n[{\"id\": \"a\"},]\n```")
	out, ok := Repair(in)
	require.True(t, ok)
	var v []map[string]string
	require.NoError(t, json.Unmarshal(out, &v))
	require.Len(t, v, 1)
	assert.Equal(t, "a", v[0]["id"])
}

func TestRepairGivesUpOnGarbage(t *testing.T) {
	_, ok := Repair([]byte("I could not produce the requested structure."))
	assert.False(t, ok)

	_, ok = Repair([]byte(`{"never": "closed"`))
	assert.False(t, ok)
}
