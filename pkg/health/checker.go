// Package health checks that a testdata datasource can serve its scenarios.
package health

import (
	"context"
	"fmt"

	"testdata-grafana-plugin/pkg/client"
	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/scenario"
	"testdata-grafana-plugin/pkg/validator"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

// PerformHealthCheck loads and validates the settings, resolves the scenario
// source and fetches the scenario list from it. Problems are reported as
// HealthStatusError results; the error return is reserved for internal failures.
func PerformHealthCheck(ctx context.Context, dsSettings backend.DataSourceInstanceSettings) (*backend.CheckHealthResult, error) {
	logger := log.DefaultLogger.FromContext(ctx)
	logger.Debug("health.PerformHealthCheck: Starting health check")

	config, err := models.LoadPluginSettings(dsSettings)
	if err != nil {
		logger.Error("health.PerformHealthCheck: Failed to load plugin settings", "error", err)
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Failed to load datasource configuration: %s", err.Error()),
		}, nil
	}

	if err := validator.ValidatePluginSettings(config); err != nil {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Plugin configuration validation failed: %s", err.Error()),
		}, nil
	}

	source, err := scenario.SourceFromSettings(config, &client.DefaultClientFactory{})
	if err != nil {
		logger.Error("health.PerformHealthCheck: Failed to set up scenario source", "error", err)
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Failed to set up scenario source: %s", err.Error()),
		}, nil
	}

	return CheckScenarios(ctx, source), nil
}

// CheckScenarios fetches the scenario list from source and reports how many
// scenarios it offers and how many of them have a dedicated editor.
func CheckScenarios(ctx context.Context, source scenario.Source) *backend.CheckHealthResult {
	list, err := source.GetScenarios(ctx)
	if err != nil {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: fmt.Sprintf("Failed to load scenarios: %s", err.Error()),
		}
	}
	if len(list) == 0 {
		return &backend.CheckHealthResult{
			Status:  backend.HealthStatusError,
			Message: "No scenarios are available. Check the catalog and the hidden scenarios list.",
		}
	}

	withEditor := 0
	for _, s := range list {
		if scenario.EditorFor(s.ID) != scenario.EditorNone {
			withEditor++
		}
	}

	return &backend.CheckHealthResult{
		Status:  backend.HealthStatusOk,
		Message: fmt.Sprintf("Data source is working. %d scenario(s) available, %d with a dedicated editor.", len(list), withEditor),
	}
}

// ExecuteHealthCheck is a variable so tests can replace the health check.
var ExecuteHealthCheck = PerformHealthCheck
