// Package plugin implements the testdata Grafana datasource plugin.
// It serves the scenario catalog and the headless query editor as datasource resources.
package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"testdata-grafana-plugin/pkg/client"
	"testdata-grafana-plugin/pkg/constant"
	"testdata-grafana-plugin/pkg/handler"
	"testdata-grafana-plugin/pkg/health"
	"testdata-grafana-plugin/pkg/metrics"
	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/scenario"
	"testdata-grafana-plugin/pkg/validator"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/backend/instancemgmt"
	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
	"github.com/grafana/grafana-plugin-sdk-go/backend/resource/httpadapter"
)

var (
	_ backend.CallResourceHandler   = (*Datasource)(nil)
	_ backend.CheckHealthHandler    = (*Datasource)(nil)
	_ instancemgmt.InstanceDisposer = (*Datasource)(nil)
)

// maxRequestBytes bounds editor request bodies.
const maxRequestBytes = 1 << 20

// Datasource implements the testdata Grafana datasource plugin.
// It handles resource calls from the query editor and health checks.
type Datasource struct {
	source          scenario.Source
	metrics         *metrics.Collector
	resourceHandler backend.CallResourceHandler
}

// NewDatasource creates a new instance of the testdata datasource.
// It is called by the Grafana plugin SDK when a new datasource instance is needed.
//
// Configuration problems do not fail instance creation. The instance is still
// built around a scenario source that reports the problem, so the editor can
// render its failed state and the health check can explain what is wrong.
func NewDatasource(ctx context.Context, settings backend.DataSourceInstanceSettings) (instancemgmt.Instance, error) {
	logger := log.DefaultLogger.FromContext(ctx)

	collector, err := metrics.NewCollector()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}

	source, err := sourceFromInstanceSettings(settings)
	if err != nil {
		logger.Error("Failed to set up scenario source", "error", err, "datasourceID", settings.ID)
		source = unavailableSource{err: err}
	}

	return newDatasource(source, collector), nil
}

func newDatasource(source scenario.Source, collector *metrics.Collector) *Datasource {
	d := &Datasource{
		source:  source,
		metrics: collector,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constant.ScenariosRoute, d.handleScenarios)
	mux.HandleFunc("POST "+constant.EditorRenderRoute, d.handleRender)
	mux.HandleFunc("POST "+constant.EditorChangeRoute, d.handleChange)
	mux.Handle("GET "+constant.MetricsRoute, collector.Handler())
	d.resourceHandler = httpadapter.New(mux)

	return d
}

func sourceFromInstanceSettings(settings backend.DataSourceInstanceSettings) (scenario.Source, error) {
	config, err := models.LoadPluginSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugin settings: %w", err)
	}
	if err := validator.ValidatePluginSettings(config); err != nil {
		return nil, fmt.Errorf("invalid plugin configuration: %w", err)
	}
	return scenario.SourceFromSettings(config, &client.DefaultClientFactory{})
}

// unavailableSource stands in for a source that could not be configured.
type unavailableSource struct {
	err error
}

func (s unavailableSource) GetScenarios(ctx context.Context) ([]models.Scenario, error) {
	return nil, s.err
}

// Dispose cleans up resources when a datasource instance is no longer needed.
func (d *Datasource) Dispose() {
	log.DefaultLogger.Debug("Testdata Datasource instance disposed")
}

// CallResource routes resource requests from the frontend to the mux built in newDatasource.
func (d *Datasource) CallResource(ctx context.Context, req *backend.CallResourceRequest, sender backend.CallResourceResponseSender) error {
	return d.resourceHandler.CallResource(ctx, req, sender)
}

// CheckHealth performs a health check of the datasource.
// It validates the configuration and fetches the scenario list.
func (d *Datasource) CheckHealth(ctx context.Context, req *backend.CheckHealthRequest) (*backend.CheckHealthResult, error) {
	log.DefaultLogger.Debug("Datasource.CheckHealth: Initiating health check routing")

	if req.PluginContext.DataSourceInstanceSettings == nil {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: "Health check requires datasource instance settings",
		}, nil
	}

	healthResult, err := health.ExecuteHealthCheck(ctx, *req.PluginContext.DataSourceInstanceSettings)
	if err != nil {
		log.DefaultLogger.Error("Datasource.CheckHealth: Health check failed internally", "error", err)
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Health check encountered an internal error: %s", err.Error()),
		}, nil
	}

	return healthResult, nil
}

func (d *Datasource) handleScenarios(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, err := d.source.GetScenarios(r.Context())
	d.metrics.RecordFetch(time.Since(start), err)
	if err != nil {
		log.DefaultLogger.FromContext(r.Context()).Error("Failed to list scenarios", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (d *Datasource) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := handler.HandleRender(r.Context(), d.source, d.metrics, body)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (d *Datasource) handleChange(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := handler.HandleChange(r.Context(), d.source, d.metrics, body)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("could not read request body: %w", err)
	}
	if len(body) > maxRequestBytes {
		return nil, errors.New("request body too large")
	}
	return body, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeRequestError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var reqErr *handler.RequestError
	if errors.As(err, &reqErr) {
		status = reqErr.Status
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(constant.ContentTypeHeader, constant.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.DefaultLogger.Error("Failed to write resource response", "error", err)
	}
}
