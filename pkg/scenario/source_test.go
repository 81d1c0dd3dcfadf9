package scenario

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"testdata-grafana-plugin/pkg/client"
	"testdata-grafana-plugin/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFromSettings_Local(t *testing.T) {
	src, err := SourceFromSettings(&models.PluginSettings{HiddenScenarios: []string{"logs"}}, &client.DefaultClientFactory{})
	require.NoError(t, err)

	list, err := src.GetScenarios(context.Background())
	require.NoError(t, err)
	for _, s := range list {
		assert.NotEqual(t, models.ScenarioLogs, s.ID)
	}
	assert.NotEmpty(t, list)
}

func TestSourceFromSettings_BadCatalog(t *testing.T) {
	_, err := SourceFromSettings(&models.PluginSettings{CatalogPath: "/does/not/exist.yaml"}, &client.DefaultClientFactory{})
	assert.Error(t, err)
}

func TestSourceFromSettings_Upstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"random_walk","name":"Random Walk"},{"id":"logs","name":"Logs"}]`))
	}))
	defer srv.Close()

	settings := &models.PluginSettings{
		HiddenScenarios: []string{"logs"},
		Upstream:        &models.UpstreamSettings{URL: srv.URL, DatasourceUID: "td"},
		Secrets:         &models.SecretPluginSettings{APIToken: "token"},
	}
	src, err := SourceFromSettings(settings, &client.DefaultClientFactory{})
	require.NoError(t, err)

	list, err := src.GetScenarios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Scenario{{ID: models.ScenarioRandomWalk, Name: "Random Walk"}}, list)
}
