package testutil

import (
	"encoding/json"
	"testing"

	"testdata-grafana-plugin/pkg/editor"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/stretchr/testify/require"
)

// CreateRenderBody creates an editor render request body around the given query JSON
func CreateRenderBody(t *testing.T, query string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"query": json.RawMessage(query),
	})
	require.NoError(t, err)
	return body
}

// CreateChangeBody creates an editor change request body applying ev to the given query JSON
func CreateChangeBody(t *testing.T, query string, ev editor.Event) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"query": json.RawMessage(query),
		"event": ev,
	})
	require.NoError(t, err)
	return body
}

// CreateTestSettings creates test datasource settings using the built-in catalog
// with the given scenarios hidden
func CreateTestSettings(t *testing.T, hidden ...string) *backend.DataSourceInstanceSettings {
	t.Helper()

	jsonData := map[string]interface{}{}
	if len(hidden) > 0 {
		jsonData["hiddenScenarios"] = hidden
	}
	raw, err := json.Marshal(jsonData)
	require.NoError(t, err)

	return &backend.DataSourceInstanceSettings{
		ID:       1,
		UID:      "testdata",
		Name:     "TestData",
		JSONData: raw,
	}
}

// CreateTestPluginContext creates a test plugin context
func CreateTestPluginContext(t *testing.T, settings *backend.DataSourceInstanceSettings) backend.PluginContext {
	t.Helper()
	return backend.PluginContext{
		DataSourceInstanceSettings: settings,
	}
}
