package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"testdata-grafana-plugin/pkg/constant"
	"testdata-grafana-plugin/pkg/editor"
	"testdata-grafana-plugin/pkg/handler"
	"testdata-grafana-plugin/pkg/health"
	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/testutil"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatasource(t *testing.T, settings backend.DataSourceInstanceSettings) *Datasource {
	t.Helper()
	inst, err := NewDatasource(context.Background(), settings)
	require.NoError(t, err)
	ds, ok := inst.(*Datasource)
	require.True(t, ok)
	return ds
}

func callResource(t *testing.T, ds *Datasource, method, path string, body []byte) *backend.CallResourceResponse {
	t.Helper()
	var resp *backend.CallResourceResponse
	err := ds.CallResource(context.Background(), &backend.CallResourceRequest{
		Method: method,
		Path:   strings.TrimPrefix(path, "/"),
		URL:    path,
		Body:   body,
	}, backend.CallResourceResponseSenderFunc(func(r *backend.CallResourceResponse) error {
		resp = r
		return nil
	}))
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func TestNewDatasource(t *testing.T) {
	ds, err := NewDatasource(context.Background(), *testutil.CreateTestSettings(t))
	require.NoError(t, err)
	assert.NotNil(t, ds)
}

func TestNewDatasource_BadConfigStillServes(t *testing.T) {
	ds := newTestDatasource(t, backend.DataSourceInstanceSettings{JSONData: []byte(`invalid json`)})

	resp := callResource(t, ds, http.MethodGet, constant.ScenariosRoute, nil)
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Contains(t, string(resp.Body), "failed to load plugin settings")

	resp = callResource(t, ds, http.MethodPost, constant.EditorRenderRoute, testutil.CreateRenderBody(t, `{"scenarioId": "random_walk"}`))
	require.Equal(t, http.StatusOK, resp.Status)
	var view editor.View
	require.NoError(t, json.Unmarshal(resp.Body, &view))
	require.NotNil(t, view.Form)
	assert.Contains(t, view.Form.Error, "Failed to load scenarios")
}

func TestDispose(t *testing.T) {
	ds := &Datasource{}
	// Should not panic
	ds.Dispose()
}

func TestCallResource_Scenarios(t *testing.T) {
	ds := newTestDatasource(t, *testutil.CreateTestSettings(t, "logs", "arrow"))

	resp := callResource(t, ds, http.MethodGet, constant.ScenariosRoute, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []string{constant.ContentTypeJSON}, resp.Headers[constant.ContentTypeHeader])

	var list []models.Scenario
	require.NoError(t, json.Unmarshal(resp.Body, &list))
	require.NotEmpty(t, list)
	for _, s := range list {
		assert.NotEqual(t, models.ScenarioLogs, s.ID)
		assert.NotEqual(t, models.ScenarioArrow, s.ID)
	}
}

func TestCallResource_Render(t *testing.T) {
	ds := newTestDatasource(t, *testutil.CreateTestSettings(t))

	resp := callResource(t, ds, http.MethodPost, constant.EditorRenderRoute, testutil.CreateRenderBody(t, `{"refId": "A", "scenarioId": "predictable_pulse"}`))
	require.Equal(t, http.StatusOK, resp.Status)

	var view editor.View
	require.NoError(t, json.Unmarshal(resp.Body, &view))
	assert.Equal(t, editor.StateReady, view.State)
	require.NotNil(t, view.Form)
	require.NotNil(t, view.Form.SubForm)
	_, ok := view.Form.Field("labels")
	assert.True(t, ok)
	_, ok = view.Form.Field("onCount")
	assert.True(t, ok)
}

func TestCallResource_Change(t *testing.T) {
	ds := newTestDatasource(t, *testutil.CreateTestSettings(t))

	body := testutil.CreateChangeBody(t, `{"refId": "A", "scenarioId": "random_walk"}`, editor.Event{
		Kind:  editor.EventScenario,
		Value: string(models.ScenarioCSVMetricValues),
	})
	resp := callResource(t, ds, http.MethodPost, constant.EditorChangeRoute, body)
	require.Equal(t, http.StatusOK, resp.Status)

	var change handler.ChangeResponse
	require.NoError(t, json.Unmarshal(resp.Body, &change))
	assert.True(t, change.Run)
	assert.Equal(t, models.ScenarioCSVMetricValues, change.Query.ScenarioID)
	assert.Equal(t, "1,20,90,30,5,0", change.Query.StringInput)
}

func TestCallResource_ChangeRejected(t *testing.T) {
	ds := newTestDatasource(t, *testutil.CreateTestSettings(t))

	body := testutil.CreateChangeBody(t, `{"scenarioId": "grafana_api"}`, editor.Event{
		Kind:  editor.EventEndpoint,
		Value: "users",
	})
	resp := callResource(t, ds, http.MethodPost, constant.EditorChangeRoute, body)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(resp.Body, &errResp))
	assert.Contains(t, errResp.Error, "edit rejected")
}

func TestCallResource_Metrics(t *testing.T) {
	ds := newTestDatasource(t, *testutil.CreateTestSettings(t))

	_ = callResource(t, ds, http.MethodPost, constant.EditorRenderRoute, testutil.CreateRenderBody(t, `{}`))
	resp := callResource(t, ds, http.MethodGet, constant.MetricsRoute, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), "testdata_editor_renders_total")
}

func TestCallResource_WrongMethod(t *testing.T) {
	ds := newTestDatasource(t, *testutil.CreateTestSettings(t))

	resp := callResource(t, ds, http.MethodGet, constant.EditorRenderRoute, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
}

func TestCheckHealth(t *testing.T) {
	originalExecuteHealthCheck := health.ExecuteHealthCheck
	defer func() { health.ExecuteHealthCheck = originalExecuteHealthCheck }()

	ds := &Datasource{}

	t.Run("delegates to health package", func(t *testing.T) {
		health.ExecuteHealthCheck = func(ctx context.Context, dsSettings backend.DataSourceInstanceSettings) (*backend.CheckHealthResult, error) {
			return &backend.CheckHealthResult{Status: backend.HealthStatusOk, Message: "ok"}, nil
		}
		result, err := ds.CheckHealth(context.Background(), &backend.CheckHealthRequest{
			PluginContext: testutil.CreateTestPluginContext(t, testutil.CreateTestSettings(t)),
		})
		require.NoError(t, err)
		assert.Equal(t, backend.HealthStatusOk, result.Status)
	})

	t.Run("internal error becomes error status", func(t *testing.T) {
		health.ExecuteHealthCheck = func(ctx context.Context, dsSettings backend.DataSourceInstanceSettings) (*backend.CheckHealthResult, error) {
			return nil, errors.New("boom")
		}
		result, err := ds.CheckHealth(context.Background(), &backend.CheckHealthRequest{
			PluginContext: testutil.CreateTestPluginContext(t, testutil.CreateTestSettings(t)),
		})
		require.NoError(t, err)
		assert.Equal(t, backend.HealthStatusError, result.Status)
		assert.Contains(t, result.Message, "boom")
	})

	t.Run("missing settings", func(t *testing.T) {
		result, err := ds.CheckHealth(context.Background(), &backend.CheckHealthRequest{})
		require.NoError(t, err)
		assert.Equal(t, backend.HealthStatusError, result.Status)
	})
}
