package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrUnknownField is returned when a patch names a field the query does not have.
var ErrUnknownField = errors.New("unknown query field")

// FieldError reports a field patch whose value could not be applied.
type FieldError struct {
	Field string
	Value string
	Err   error // Wrapped error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid value %q for field %q: %v", e.Value, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid value %q for field %q", e.Value, e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Point is a single manual-entry data point: value followed by a Unix time in milliseconds.
type Point [2]float64

// Query represents the testdata query sent from Grafana.
// Top-level scalars hold the generic inputs; Stream, PulseWave and CSVWave
// hold the parameters of the scenarios that have their own sub-form.
type Query struct {
	RefID       string          `json:"refId"`
	Datasource  json.RawMessage `json:"datasource,omitempty"`
	Hide        bool            `json:"hide,omitempty"`
	ScenarioID  ScenarioID      `json:"scenarioId,omitempty"`
	StringInput string          `json:"stringInput,omitempty"`
	Alias       string          `json:"alias,omitempty"`
	Labels      string          `json:"labels,omitempty"`
	Lines       *int64          `json:"lines,omitempty"`
	Points      []Point         `json:"points,omitempty"`

	// Random walk parameters.
	SeriesCount *int64   `json:"seriesCount,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Spread      *float64 `json:"spread,omitempty"`
	Noise       *float64 `json:"noise,omitempty"`
	StartValue  *float64 `json:"startValue,omitempty"`
	DropPercent *float64 `json:"dropPercent,omitempty"`

	Stream    *StreamQuery    `json:"stream,omitempty"`
	PulseWave *PulseWaveQuery `json:"pulseWave,omitempty"`
	CSVWave   *CSVWaveQuery   `json:"csvWave,omitempty"`

	// Extra keeps the keys this editor does not model (queryType, intervalMs,
	// channel, ...) so they survive a decode/encode round trip unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// queryJSON has the fields of Query without its JSON methods.
type queryJSON Query

// queryKeys are the JSON keys declared by Query.
var queryKeys = func() map[string]struct{} {
	t := reflect.TypeOf(Query{})
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = struct{}{}
		}
	}
	return keys
}()

// UnmarshalJSON decodes the declared fields and stores every other key in Extra.
func (q *Query) UnmarshalJSON(data []byte) error {
	var decoded queryJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key, raw := range all {
		if _, known := queryKeys[key]; known {
			continue
		}
		if decoded.Extra == nil {
			decoded.Extra = make(map[string]json.RawMessage)
		}
		decoded.Extra[key] = raw
	}
	*q = Query(decoded)
	return nil
}

// MarshalJSON encodes the declared fields followed by the keys kept in Extra.
// A declared field always wins over an Extra key of the same name.
func (q Query) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(queryJSON(q))
	if err != nil || len(q.Extra) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for key, raw := range q.Extra {
		if _, known := queryKeys[key]; known {
			continue
		}
		all[key] = raw
	}
	return json.Marshal(all)
}

// StreamQuery holds the streaming_client parameters. Unset fields stay nil so
// an edit never writes values the user did not enter.
type StreamQuery struct {
	Type   string   `json:"type,omitempty"`
	Speed  *float64 `json:"speed,omitempty"`
	Spread *float64 `json:"spread,omitempty"`
	Noise  *float64 `json:"noise,omitempty"`
	Bands  *int64   `json:"bands,omitempty"`
	Delay  *int64   `json:"delay,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// PulseWaveQuery holds the predictable_pulse parameters.
type PulseWaveQuery struct {
	TimeStep *int64   `json:"timeStep,omitempty"`
	OnCount  *int64   `json:"onCount,omitempty"`
	OnValue  *float64 `json:"onValue,omitempty"`
	OffCount *int64   `json:"offCount,omitempty"`
	OffValue *float64 `json:"offValue,omitempty"`
}

// CSVWaveQuery holds the predictable_csv_wave parameters.
type CSVWaveQuery struct {
	TimeStep  *int64 `json:"timeStep,omitempty"`
	ValuesCSV string `json:"valuesCSV,omitempty"`
	Labels    string `json:"labels,omitempty"`
	Name      string `json:"name,omitempty"`
}

// DefaultQuery returns the query every incoming query is merged with.
func DefaultQuery() Query {
	return Query{
		ScenarioID:  ScenarioRandomWalk,
		SeriesCount: Int64(1),
	}
}

// DefaultStreamQuery returns the streaming parameters shown for unset fields.
func DefaultStreamQuery() StreamQuery {
	return StreamQuery{
		Type:   "signal",
		Speed:  Float64(250),
		Spread: Float64(3.5),
		Noise:  Float64(2.2),
		Bands:  Int64(1),
	}
}

// DefaultPulseWaveQuery returns the pulse parameters shown for unset fields.
func DefaultPulseWaveQuery() PulseWaveQuery {
	return PulseWaveQuery{
		TimeStep: Int64(60),
		OnCount:  Int64(3),
		OnValue:  Float64(2),
		OffCount: Int64(3),
		OffValue: Float64(1),
	}
}

// DefaultCSVWaveQuery returns the CSV wave parameters shown for unset fields.
func DefaultCSVWaveQuery() CSVWaveQuery {
	return CSVWaveQuery{
		TimeStep:  Int64(60),
		ValuesCSV: "0,0,2,2,1,1",
	}
}

// ParseQuery unmarshals the JSON of a single query.
func ParseQuery(raw []byte) (Query, error) {
	var q Query
	if len(raw) == 0 {
		return q, nil
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return Query{}, fmt.Errorf("error parsing query JSON: %w", err)
	}
	return q, nil
}

// WithDefaults returns a copy of q where every unset field takes the default value.
func WithDefaults(q Query) Query {
	d := DefaultQuery()
	out := q.Clone()
	if out.ScenarioID == "" {
		out.ScenarioID = d.ScenarioID
	}
	if out.StringInput == "" {
		out.StringInput = d.StringInput
	}
	if out.SeriesCount == nil {
		out.SeriesCount = d.SeriesCount
	}
	return out
}

// Clone returns a deep copy of the query. Patches are always applied to a
// clone so the caller's value is never modified.
func (q Query) Clone() Query {
	out := q
	if q.Datasource != nil {
		out.Datasource = append(json.RawMessage(nil), q.Datasource...)
	}
	if q.Points != nil {
		out.Points = append([]Point(nil), q.Points...)
	}
	out.Lines = cloneInt64(q.Lines)
	out.SeriesCount = cloneInt64(q.SeriesCount)
	out.Min = cloneFloat64(q.Min)
	out.Max = cloneFloat64(q.Max)
	out.Spread = cloneFloat64(q.Spread)
	out.Noise = cloneFloat64(q.Noise)
	out.StartValue = cloneFloat64(q.StartValue)
	out.DropPercent = cloneFloat64(q.DropPercent)
	if q.Stream != nil {
		s := q.Stream.clone()
		out.Stream = &s
	}
	if q.PulseWave != nil {
		p := *q.PulseWave
		p.TimeStep = cloneInt64(p.TimeStep)
		p.OnCount = cloneInt64(p.OnCount)
		p.OnValue = cloneFloat64(p.OnValue)
		p.OffCount = cloneInt64(p.OffCount)
		p.OffValue = cloneFloat64(p.OffValue)
		out.PulseWave = &p
	}
	if q.CSVWave != nil {
		c := *q.CSVWave
		c.TimeStep = cloneInt64(c.TimeStep)
		out.CSVWave = &c
	}
	if q.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(q.Extra))
		for key, raw := range q.Extra {
			out.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return out
}

func (s StreamQuery) clone() StreamQuery {
	out := s
	out.Speed = cloneFloat64(s.Speed)
	out.Spread = cloneFloat64(s.Spread)
	out.Noise = cloneFloat64(s.Noise)
	out.Bands = cloneInt64(s.Bands)
	out.Delay = cloneInt64(s.Delay)
	return out
}

// WithField returns a copy of q with the named top-level field set from its
// text value. Numeric fields are parsed; an empty value clears them.
func (q Query) WithField(name, value string) (Query, error) {
	out := q.Clone()
	var err error
	switch name {
	case "scenarioId":
		out.ScenarioID = ScenarioID(value)
	case "stringInput":
		out.StringInput = value
	case "alias":
		out.Alias = value
	case "labels":
		out.Labels = value
	case "lines":
		out.Lines, err = parseInt64(value)
	case "seriesCount":
		out.SeriesCount, err = parseInt64(value)
	case "min":
		out.Min, err = parseFloat64(value)
	case "max":
		out.Max, err = parseFloat64(value)
	case "spread":
		out.Spread, err = parseFloat64(value)
	case "noise":
		out.Noise, err = parseFloat64(value)
	case "startValue":
		out.StartValue, err = parseFloat64(value)
	case "dropPercent":
		out.DropPercent, err = parseFloat64(value)
	default:
		return q, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err != nil {
		return q, &FieldError{Field: name, Value: value, Err: err}
	}
	return out, nil
}

// WithField returns a copy of s with the named streaming field set.
func (s StreamQuery) WithField(name, value string) (StreamQuery, error) {
	out := s.clone()
	var err error
	switch name {
	case "type":
		out.Type = value
	case "url":
		out.URL = value
	case "speed":
		out.Speed, err = parseFloat64(value)
	case "spread":
		out.Spread, err = parseFloat64(value)
	case "noise":
		out.Noise, err = parseFloat64(value)
	case "bands":
		out.Bands, err = parseInt64(value)
	case "delay":
		out.Delay, err = parseInt64(value)
	default:
		return s, fmt.Errorf("%w: stream.%s", ErrUnknownField, name)
	}
	if err != nil {
		return s, &FieldError{Field: "stream." + name, Value: value, Err: err}
	}
	return out, nil
}

// WithField returns a copy of p with the named pulse field set.
func (p PulseWaveQuery) WithField(name, value string) (PulseWaveQuery, error) {
	out := PulseWaveQuery{
		TimeStep: cloneInt64(p.TimeStep),
		OnCount:  cloneInt64(p.OnCount),
		OnValue:  cloneFloat64(p.OnValue),
		OffCount: cloneInt64(p.OffCount),
		OffValue: cloneFloat64(p.OffValue),
	}
	var err error
	switch name {
	case "timeStep":
		out.TimeStep, err = parseInt64(value)
	case "onCount":
		out.OnCount, err = parseInt64(value)
	case "onValue":
		out.OnValue, err = parseFloat64(value)
	case "offCount":
		out.OffCount, err = parseInt64(value)
	case "offValue":
		out.OffValue, err = parseFloat64(value)
	default:
		return p, fmt.Errorf("%w: pulseWave.%s", ErrUnknownField, name)
	}
	if err != nil {
		return p, &FieldError{Field: "pulseWave." + name, Value: value, Err: err}
	}
	return out, nil
}

// WithField returns a copy of c with the named CSV wave field set.
func (c CSVWaveQuery) WithField(name, value string) (CSVWaveQuery, error) {
	out := c
	out.TimeStep = cloneInt64(c.TimeStep)
	var err error
	switch name {
	case "timeStep":
		out.TimeStep, err = parseInt64(value)
	case "valuesCSV":
		out.ValuesCSV = value
	case "labels":
		out.Labels = value
	case "name":
		out.Name = value
	default:
		return c, fmt.Errorf("%w: csvWave.%s", ErrUnknownField, name)
	}
	if err != nil {
		return c, &FieldError{Field: "csvWave." + name, Value: value, Err: err}
	}
	return out, nil
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	return Int64(*v)
}

func cloneFloat64(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float64(*v)
}

func parseInt64(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseFloat64(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
