// Package validator provides validation functions for plugin settings and
// query fields. Query validation never rejects an edit; it reports problems so
// the editor can show them next to the offending field.
package validator

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"

	"testdata-grafana-plugin/pkg/models"

	"github.com/grafana/grafana-plugin-sdk-go/data"
)

// aliasPattern matches the characters the alias input accepts.
var aliasPattern = regexp.MustCompile(`^[^<>&\\"]+$`)

// ValidatePluginSettings validates the plugin settings
func ValidatePluginSettings(settings *models.PluginSettings) error {
	if settings == nil {
		return &models.PluginSettingsError{Msg: "plugin settings cannot be nil"}
	}

	if settings.Secrets == nil {
		return &models.PluginSettingsError{Msg: "plugin secrets cannot be nil"}
	}

	if settings.CatalogPath != "" {
		switch filepath.Ext(settings.CatalogPath) {
		case ".yaml", ".yml":
		default:
			return &models.PluginSettingsError{Msg: fmt.Sprintf("catalog path %q must point at a .yaml or .yml file", settings.CatalogPath)}
		}
	}

	for i, id := range settings.HiddenScenarios {
		if id == "" {
			return &models.PluginSettingsError{Msg: fmt.Sprintf("hidden scenario at index %d is empty", i)}
		}
	}

	if up := settings.Upstream; up != nil {
		u, err := url.Parse(up.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &models.PluginSettingsError{Msg: fmt.Sprintf("upstream URL %q must be an absolute URL", up.URL), Err: err}
		}
		if up.DatasourceUID == "" {
			return &models.PluginSettingsError{Msg: "upstream datasource UID cannot be empty"}
		}
		if up.RequestsPerSecond < 0 {
			return &models.PluginSettingsError{Msg: "upstream requests per second cannot be negative"}
		}
		if settings.Secrets.APIToken == "" {
			return &models.PluginSettingsError{Msg: "upstream API token cannot be empty"}
		}
	}

	return nil
}

// ValidateAlias checks the alias against the characters the input accepts.
// An empty alias is valid.
func ValidateAlias(alias string) error {
	if alias == "" || aliasPattern.MatchString(alias) {
		return nil
	}
	return fmt.Errorf("alias must not contain any of <>&\\\"")
}

// ParseLabels parses a labels string in any of the accepted forms:
//
//	{ key = "value", key2 = "value" }
//	key="value", key2="value"
//	key=value, key2=value
func ParseLabels(labels string) (data.Labels, error) {
	parsed, err := data.LabelsFromString(labels)
	if err != nil {
		return nil, fmt.Errorf("invalid labels %q: %w", labels, err)
	}
	return parsed, nil
}

// ValidateQuery returns the problems found in a query keyed by field name.
// The map is empty when the query is valid.
func ValidateQuery(q models.Query) map[string]error {
	problems := map[string]error{}
	if err := ValidateAlias(q.Alias); err != nil {
		problems["alias"] = err
	}
	if _, err := ParseLabels(q.Labels); err != nil {
		problems["labels"] = err
	}
	if q.CSVWave != nil {
		if _, err := ParseLabels(q.CSVWave.Labels); err != nil {
			problems["csvWave.labels"] = err
		}
	}
	return problems
}
