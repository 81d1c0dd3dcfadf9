package models

import (
	"encoding/json"
	"fmt"

	"github.com/grafana/grafana-plugin-sdk-go/backend"
)

// PluginSettingsError represents an error specifically related to plugin settings.
type PluginSettingsError struct {
	Msg string
	Err error // Wrapped error
}

func (e *PluginSettingsError) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("plugin settings error: %s: %v", e.Msg, e.Err)
		}
		return fmt.Sprintf("plugin settings error: %v", e.Err)
	}
	return fmt.Sprintf("plugin settings error: %s", e.Msg)
}

func (e *PluginSettingsError) Unwrap() error {
	return e.Err
}

// PluginSettings holds the configuration settings for the testdata data source.
type PluginSettings struct {
	// CatalogPath points at a YAML scenario catalog replacing the built-in one.
	CatalogPath     string   `json:"catalogPath"`
	HiddenScenarios []string `json:"hiddenScenarios"`
	// Upstream, when set, makes the datasource serve the scenarios of another
	// testdata datasource instead of its own catalog.
	Upstream *UpstreamSettings     `json:"upstream,omitempty"`
	Secrets  *SecretPluginSettings `json:"-"`
}

// UpstreamSettings locates a testdata datasource on another Grafana server.
type UpstreamSettings struct {
	URL           string `json:"url"`
	DatasourceUID string `json:"datasourceUid"`
	// RequestsPerSecond caps scenario fetches sent upstream. Zero selects
	// DefaultUpstreamRequestsPerSecond.
	RequestsPerSecond float64 `json:"requestsPerSecond,omitempty"`
}

// DefaultUpstreamRequestsPerSecond is the upstream fetch rate used when none is configured.
const DefaultUpstreamRequestsPerSecond = 5

// SecretPluginSettings holds sensitive data.
type SecretPluginSettings struct {
	APIToken string `json:"apiToken"`
}

// LoadPluginSettings unmarshals the JSON data and decrypted secure JSON data
// from Grafana's DataSourceInstanceSettings into a PluginSettings struct.
func LoadPluginSettings(source backend.DataSourceInstanceSettings) (*PluginSettings, error) {
	settings := PluginSettings{}
	if len(source.JSONData) > 0 {
		if err := json.Unmarshal(source.JSONData, &settings); err != nil {
			return nil, &PluginSettingsError{Msg: "could not unmarshal PluginSettings JSON", Err: err}
		}
	}

	secretSettings, err := loadSecretPluginSettings(settings.Upstream, source.DecryptedSecureJSONData)
	if err != nil {
		return nil, &PluginSettingsError{Err: err}
	}

	settings.Secrets = secretSettings
	return &settings, nil
}

// loadSecretPluginSettings extracts secure data from the decrypted map.
// The API token is only required when an upstream server is configured.
func loadSecretPluginSettings(upstream *UpstreamSettings, source map[string]string) (*SecretPluginSettings, error) {
	apiToken := source["apiToken"]
	if upstream != nil && apiToken == "" {
		return nil, &PluginSettingsError{Msg: "Enter an API token for the upstream Grafana server."}
	}

	return &SecretPluginSettings{
		APIToken: apiToken,
	}, nil
}
