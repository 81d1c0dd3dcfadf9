package scenario

import (
	"fmt"

	"testdata-grafana-plugin/pkg/models"
)

// EditorKind names the scenario-specific sub-form shown under the common fields.
type EditorKind int

const (
	EditorNone EditorKind = iota
	EditorManualEntry
	EditorRandomWalk
	EditorStreamingClient
	EditorGrafanaAPI
	EditorRawFrame
	EditorPredictablePulse
	EditorCSVWave
)

var editorKindNames = map[EditorKind]string{
	EditorNone:             "none",
	EditorManualEntry:      "manual_entry",
	EditorRandomWalk:       "random_walk",
	EditorStreamingClient:  "streaming_client",
	EditorGrafanaAPI:       "grafana_api",
	EditorRawFrame:         "raw_frame",
	EditorPredictablePulse: "predictable_pulse",
	EditorCSVWave:          "csv_wave",
}

func (k EditorKind) String() string {
	if name, ok := editorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EditorKind(%d)", int(k))
}

// MarshalText encodes the kind by name so form trees read well as JSON.
func (k EditorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *EditorKind) UnmarshalText(text []byte) error {
	for kind, name := range editorKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown editor kind %q", string(text))
}

// EditorFor maps every scenario id to its sub-form. Ids without a dedicated
// sub-form map to EditorNone.
func EditorFor(id models.ScenarioID) EditorKind {
	switch id {
	case models.ScenarioManualEntry:
		return EditorManualEntry
	case models.ScenarioRandomWalk:
		return EditorRandomWalk
	case models.ScenarioStreamingClient:
		return EditorStreamingClient
	case models.ScenarioGrafanaAPI:
		return EditorGrafanaAPI
	case models.ScenarioArrow:
		return EditorRawFrame
	case models.ScenarioPredictablePulse:
		return EditorPredictablePulse
	case models.ScenarioPredictableCSVWave:
		return EditorCSVWave
	default:
		return EditorNone
	}
}

// ShowsLabels reports whether the labels field is offered for the scenario.
func ShowsLabels(id models.ScenarioID) bool {
	switch id {
	case models.ScenarioRandomWalk, models.ScenarioPredictablePulse, models.ScenarioPredictableCSVWave:
		return true
	}
	return false
}

// Endpoint is a value/label pair offered by the grafana_api endpoint picker.
type Endpoint struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Endpoints lists the Grafana API endpoints the grafana_api scenario can call.
var Endpoints = []Endpoint{
	{Value: "datasources", Label: "Data Sources"},
	{Value: "search", Label: "Search"},
	{Value: "annotations", Label: "Annotations"},
}
