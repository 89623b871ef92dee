package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONBody compares two JSON documents after normalising both through
// unmarshal, so key order and whitespace never matter.
func AssertJSONBody(t *testing.T, expected string, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expVal), "expected body is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual body is not valid JSON\nbody: %s", string(actual)) {
		return
	}
	assert.Equal(t, expVal, actVal, "body mismatch")
}

// JSONField decodes body and returns the top-level field name, or nil.
func JSONField(t *testing.T, body []byte, name string) interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m), "body is not a JSON object: %s", string(body))
	return m[name]
}
