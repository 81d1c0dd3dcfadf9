package constant

const (
	// PluginID is the id the datasource is registered under in plugin.json.
	PluginID = "grafana-testdata-datasource"

	// Resource routes served through CallResource
	ScenariosRoute    = "/scenarios"
	EditorRenderRoute = "/editor/render"
	EditorChangeRoute = "/editor/change"
	MetricsRoute      = "/metrics"

	// Upstream Grafana path segments for the scenarios resource of another testdata datasource
	UpstreamDatasourcesPath = "api/datasources/uid"
	UpstreamScenariosPath   = "resources/scenarios"

	// Headers
	ContentTypeHeader = "Content-Type"
	ContentTypeJSON   = "application/json"
)
