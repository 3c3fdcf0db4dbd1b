package export

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audittools/gh-audit-export/pkg/pagination"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func mustResultSet(t *testing.T, body string) pagination.ResultSet {
	t.Helper()
	var rs pagination.ResultSet
	require.NoError(t, json.Unmarshal([]byte(body), &rs))
	return rs
}

func TestEncodeCSV_ColumnStability(t *testing.T) {
	// Header comes from the first record only; later extras are dropped,
	// missing keys become empty fields.
	rs := mustResultSet(t, `[{"a":1,"b":2},{"a":3}]`)

	data, err := encodeCSV(rs, false, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "a,b\n1,2\n3,\n", string(data))
}

func TestEncodeCSV_ExtraKeysDropped(t *testing.T) {
	rs := mustResultSet(t, `[{"a":1},{"a":2,"b":"surprise"}]`)

	data, err := encodeCSV(rs, false, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "a\n1\n2\n", string(data))
}

func TestEncodeCSV_AllColumnsUnion(t *testing.T) {
	rs := mustResultSet(t, `[{"a":1},{"a":2,"b":"kept"},{"c":true}]`)

	data, err := encodeCSV(rs, true, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "a,b,c\n1,,\n2,kept,\n,,true\n", string(data))
}

func TestEncodeCSV_Empty(t *testing.T) {
	data, err := encodeCSV(pagination.ResultSet{}, false, testLogger())
	require.NoError(t, err)

	// Documented empty-file behavior: no header, no rows
	assert.Empty(t, data)
}

func TestEncodeCSV_FlattensNestedObjects(t *testing.T) {
	rs := mustResultSet(t, `[{"action":"repo.create","config":{"visibility":"private","limits":{"forks":0}}}]`)

	data, err := encodeCSV(rs, false, testLogger())
	require.NoError(t, err)

	assert.Equal(t,
		"action,config_visibility,config_limits_forks\nrepo.create,private,0\n",
		string(data))
}

func TestEncodeCSV_ArraysAsJSON(t *testing.T) {
	rs := mustResultSet(t, `[{"action":"team.add","members":["a","b"]}]`)

	data, err := encodeCSV(rs, false, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "action,members\nteam.add,\"[\"\"a\"\",\"\"b\"\"]\"\n", string(data))
}

func TestRenderField(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: ""},
		{name: "string", value: "text", expected: "text"},
		{name: "number", value: json.Number("42.5"), expected: "42.5"},
		{name: "bool", value: true, expected: "true"},
		{name: "array", value: []any{json.Number("1"), "x"}, expected: `[1,"x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderField(tt.value))
		})
	}
}
