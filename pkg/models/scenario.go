package models

// ScenarioID identifies a testdata scenario.
type ScenarioID string

const (
	ScenarioAnnotations              ScenarioID = "annotations"
	ScenarioArrow                    ScenarioID = "arrow"
	ScenarioCSVMetricValues          ScenarioID = "csv_metric_values"
	ScenarioDatapointsOutsideRange   ScenarioID = "datapoints_outside_range"
	ScenarioExponentialHeatmapBucket ScenarioID = "exponential_heatmap_bucket_data"
	ScenarioGrafanaAPI               ScenarioID = "grafana_api"
	ScenarioLinearHeatmapBucket      ScenarioID = "linear_heatmap_bucket_data"
	ScenarioLive                     ScenarioID = "live"
	ScenarioLogs                     ScenarioID = "logs"
	ScenarioManualEntry              ScenarioID = "manual_entry"
	ScenarioNoDataPoints             ScenarioID = "no_data_points"
	ScenarioPredictableCSVWave       ScenarioID = "predictable_csv_wave"
	ScenarioPredictablePulse         ScenarioID = "predictable_pulse"
	ScenarioRandomWalk               ScenarioID = "random_walk"
	ScenarioRandomWalkTable          ScenarioID = "random_walk_table"
	ScenarioRandomWalkWithError      ScenarioID = "random_walk_with_error"
	ScenarioServerError500           ScenarioID = "server_error_500"
	ScenarioSlowQuery                ScenarioID = "slow_query"
	ScenarioStreamingClient          ScenarioID = "streaming_client"
	ScenarioTableStatic              ScenarioID = "table_static"
)

// GrafanaAPIStringInput is the string input forced for the grafana_api scenario.
const GrafanaAPIStringInput = "datasources"

// Scenario is a query-generation mode offered by the datasource.
type Scenario struct {
	ID          ScenarioID `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	StringInput string     `json:"stringInput" yaml:"stringInput"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}
