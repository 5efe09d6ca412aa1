package jsonfix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidDocument(t *testing.T) {
	res, err := Parse(`{"name": "syskit", "count": 3, "ratio": 0.5, "on": true, "none": null, "tags": ["a", "b"]}`)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Repairs)

	obj := res.Value.(map[string]any)
	assert.Equal(t, "syskit", obj["name"])
	assert.Equal(t, int64(3), obj["count"])
	assert.Equal(t, 0.5, obj["ratio"])
	assert.Equal(t, true, obj["on"])
	assert.Nil(t, obj["none"])
	assert.Equal(t, []any{"a", "b"}, obj["tags"])
}

func TestParseStripsBlockComments(t *testing.T) {
	res, err := Parse(`{"a": /* noise */ 1}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Value.(map[string]any)["a"])
}

func TestParseRecoversBareKeys(t *testing.T) {
	res, err := Parse(`{name: "box", port: 80}`)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Repairs)

	obj := res.Value.(map[string]any)
	assert.Equal(t, "box", obj["name"])
	assert.Equal(t, int64(80), obj["port"])
}

func TestParseRecoversUnterminatedString(t *testing.T) {
	res, err := Parse(`"never closed`)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Repairs)
	assert.Equal(t, "never closed", res.Value)
}

func TestParseRecoversUnclosedContainers(t *testing.T) {
	res, err := Parse(`{"a": [1, 2`)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Repairs) // array and object both left open

	obj := res.Value.(map[string]any)
	assert.Equal(t, []any{int64(1), int64(2)}, obj["a"])
}

func TestParseToleratesTrailingAndMissingCommas(t *testing.T) {
	res, err := Parse(`{"a": 1, "b": 2,}`)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Repairs)
	assert.Len(t, res.Value.(map[string]any), 2)

	res, err = Parse(`[1 2 3]`)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, res.Value)
}

func TestParseSingleQuotedStrings(t *testing.T) {
	res, err := Parse(`{'key': 'value'}`)
	require.NoError(t, err)
	assert.Equal(t, "value", res.Value.(map[string]any)["key"])
}

func TestParseEscapeSequences(t *testing.T) {
	res, err := Parse(`"line\none\ttab \"quoted\" é"`)
	require.NoError(t, err)
	assert.Equal(t, "line\none\ttab \"quoted\" é", res.Value)
}

func TestParseErrorCarriesPositionAndContext(t *testing.T) {
	_, err := Parse(`{"a": @}`)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindInvalidCharacter, perr.Kind)
	assert.Equal(t, 6, perr.Position)
	assert.Contains(t, perr.Context, "@")
	assert.Contains(t, err.Error(), "position 6")
}

func TestParseRejectsBadLiteral(t *testing.T) {
	_, err := Parse(`[tru]`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindUnexpectedToken, perr.Kind)
}

func TestParseRejectsEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/* only a comment */"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestCleanNormalizesOutput(t *testing.T) {
	out, repairs, err := Clean([]byte(`{b: 2, "a": [1,]}`), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, repairs) // bare key and trailing comma

	s := string(out)
	assert.Contains(t, s, `"a": [`)
	assert.Contains(t, s, `"b": 2`)
	assert.True(t, strings.HasSuffix(s, "\n"))

	// Normalized output parses cleanly with zero repairs.
	res, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Repairs)
}

func TestCleanCompact(t *testing.T) {
	out, _, err := Clean([]byte("{\n  \"a\": 1\n}\n"), Options{Compact: true})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(out))
}

func TestEmitIndentWidth(t *testing.T) {
	out, err := Emit(map[string]any{"a": int64(1)}, Options{Indent: 4})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n    \"a\"")
}
