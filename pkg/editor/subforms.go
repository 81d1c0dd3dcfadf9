package editor

import (
	"strconv"

	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/scenario"
)

var streamTypes = []Option{
	{Value: "signal", Label: "Signal"},
	{Value: "logs", Label: "Logs"},
	{Value: "fetch", Label: "Fetch"},
}

// subFormFor returns the sub-form of kind for q, or nil for EditorNone.
func subFormFor(kind scenario.EditorKind, q models.Query) *SubForm {
	var fields []Field
	switch kind {
	case scenario.EditorManualEntry:
		fields = manualEntryFields(q)
	case scenario.EditorRandomWalk:
		fields = randomWalkFields(q)
	case scenario.EditorStreamingClient:
		fields = streamingClientFields(q)
	case scenario.EditorGrafanaAPI:
		fields = grafanaAPIFields(q)
	case scenario.EditorRawFrame:
		fields = rawFrameFields(q)
	case scenario.EditorPredictablePulse:
		fields = pulseWaveFields(q)
	case scenario.EditorCSVWave:
		fields = csvWaveFields(q)
	default:
		return nil
	}
	return &SubForm{Editor: kind, Fields: fields}
}

func manualEntryFields(q models.Query) []Field {
	return []Field{{
		Kind:       FieldPoints,
		Name:       "points",
		Label:      "Points",
		LabelWidth: 14,
		Points:     append([]models.Point(nil), q.Points...),
		Handler:    EventManual,
	}}
}

func randomWalkFields(q models.Query) []Field {
	return []Field{
		numberField("seriesCount", "Series count", formatInt(q.SeriesCount), "1", EventInput),
		numberField("startValue", "Start value", formatFloat(q.StartValue), "auto", EventInput),
		numberField("min", "Min", formatFloat(q.Min), "none", EventInput),
		numberField("max", "Max", formatFloat(q.Max), "none", EventInput),
		numberField("spread", "Spread", formatFloat(q.Spread), "1", EventInput),
		numberField("noise", "Noise", formatFloat(q.Noise), "0", EventInput),
		numberField("dropPercent", "Drop (%)", formatFloat(q.DropPercent), "0", EventInput),
	}
}

func streamingClientFields(q models.Query) []Field {
	s := streamForDisplay(q.Stream)

	fields := []Field{{
		Kind:       FieldSelect,
		Name:       "type",
		Label:      "Type",
		Value:      selectedValue(streamTypes, s.Type),
		LabelWidth: 14,
		Width:      20,
		Options:    streamTypes,
		Handler:    EventStream,
	}}

	switch s.Type {
	case "signal":
		fields = append(fields,
			numberField("speed", "Speed (ms)", formatFloat(s.Speed), "ms", EventStream),
			numberField("spread", "Spread", formatFloat(s.Spread), "value", EventStream),
			numberField("noise", "Noise", formatFloat(s.Noise), "value", EventStream),
			numberField("bands", "Bands", formatInt(s.Bands), "bands", EventStream),
			numberField("delay", "Delay (ms)", formatInt(s.Delay), "ms", EventStream),
		)
	case "logs":
		fields = append(fields,
			numberField("speed", "Speed (ms)", formatFloat(s.Speed), "ms", EventStream),
			numberField("lines", "Lines", formatInt(q.Lines), "lines", EventStream),
			numberField("delay", "Delay (ms)", formatInt(s.Delay), "ms", EventStream),
		)
	case "fetch":
		fields = append(fields, Field{
			Kind:        FieldInput,
			Name:        "url",
			Label:       "URL",
			Value:       s.URL,
			Placeholder: "Fetch URL",
			LabelWidth:  14,
			Width:       50,
			Handler:     EventStream,
		})
	}
	return fields
}

func grafanaAPIFields(q models.Query) []Field {
	options := make([]Option, 0, len(scenario.Endpoints))
	for _, ep := range scenario.Endpoints {
		options = append(options, Option{Value: ep.Value, Label: ep.Label})
	}
	return []Field{{
		Kind:       FieldSelect,
		Name:       "endpoint",
		Label:      "Endpoint",
		Value:      selectedValue(options, q.StringInput),
		LabelWidth: 14,
		Width:      32,
		Options:    options,
		Handler:    EventEndpoint,
	}}
}

func rawFrameFields(q models.Query) []Field {
	return []Field{{
		Kind:        FieldTextArea,
		Name:        "stringInput",
		Value:       q.StringInput,
		Rows:        10,
		Placeholder: "Copy base64 text data from query result",
		Handler:     EventInput,
	}}
}

func pulseWaveFields(q models.Query) []Field {
	p := pulseWaveForDisplay(q.PulseWave)
	return []Field{
		numberField("timeStep", "Step", formatInt(p.TimeStep), "60", EventPulseWave),
		numberField("onCount", "On Count", formatInt(p.OnCount), "3", EventPulseWave),
		numberField("offCount", "Off Count", formatInt(p.OffCount), "6", EventPulseWave),
		numberField("onValue", "On Value", formatFloat(p.OnValue), "1", EventPulseWave),
		numberField("offValue", "Off Value", formatFloat(p.OffValue), "1", EventPulseWave),
	}
}

func csvWaveFields(q models.Query) []Field {
	c := csvWaveForDisplay(q.CSVWave)
	return []Field{
		numberField("timeStep", "Step", formatInt(c.TimeStep), "60", EventCSVWave),
		{
			Kind:        FieldInput,
			Name:        "valuesCSV",
			Label:       "Values",
			Value:       c.ValuesCSV,
			Placeholder: "CSV values",
			LabelWidth:  14,
			Width:       40,
			Handler:     EventCSVWave,
		},
	}
}

// streamForDisplay fills the unset fields of s with the defaults the form
// shows. The query itself is left as it is.
func streamForDisplay(s *models.StreamQuery) models.StreamQuery {
	out := models.DefaultStreamQuery()
	if s == nil {
		return out
	}
	if s.Type != "" {
		out.Type = s.Type
	}
	if s.Speed != nil {
		out.Speed = s.Speed
	}
	if s.Spread != nil {
		out.Spread = s.Spread
	}
	if s.Noise != nil {
		out.Noise = s.Noise
	}
	if s.Bands != nil {
		out.Bands = s.Bands
	}
	out.Delay = s.Delay
	out.URL = s.URL
	return out
}

func pulseWaveForDisplay(p *models.PulseWaveQuery) models.PulseWaveQuery {
	out := models.DefaultPulseWaveQuery()
	if p == nil {
		return out
	}
	if p.TimeStep != nil {
		out.TimeStep = p.TimeStep
	}
	if p.OnCount != nil {
		out.OnCount = p.OnCount
	}
	if p.OnValue != nil {
		out.OnValue = p.OnValue
	}
	if p.OffCount != nil {
		out.OffCount = p.OffCount
	}
	if p.OffValue != nil {
		out.OffValue = p.OffValue
	}
	return out
}

func csvWaveForDisplay(c *models.CSVWaveQuery) models.CSVWaveQuery {
	out := models.DefaultCSVWaveQuery()
	if c == nil {
		return out
	}
	if c.TimeStep != nil {
		out.TimeStep = c.TimeStep
	}
	if c.ValuesCSV != "" {
		out.ValuesCSV = c.ValuesCSV
	}
	out.Labels = c.Labels
	out.Name = c.Name
	return out
}

func numberField(name, label, value, placeholder string, handler EventKind) Field {
	return Field{
		Kind:        FieldInput,
		Name:        name,
		Label:       label,
		Value:       value,
		Placeholder: placeholder,
		InputType:   "number",
		LabelWidth:  14,
		Width:       10,
		Handler:     handler,
	}
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
