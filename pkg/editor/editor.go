// Package editor implements the testdata query editor as a headless component.
// It loads the scenario list once, renders a form tree for a query and turns
// field edits into patched query copies delivered through the OnChange and
// OnRunQuery callbacks. Drawing the form is left to the host toolkit.
package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"testdata-grafana-plugin/pkg/metrics"
	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/scenario"
	"testdata-grafana-plugin/pkg/validator"

	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

const labelsTooltip = `Set labels using a key=value syntax:
{ key = "value", key2 = "value" }
key="value", key2="value"
key=value, key2=value`

// EventKind selects the handler an edit is routed to.
type EventKind string

const (
	EventScenario  EventKind = "scenario"
	EventInput     EventKind = "input"
	EventEndpoint  EventKind = "endpoint"
	EventStream    EventKind = "stream"
	EventPulseWave EventKind = "pulseWave"
	EventCSVWave   EventKind = "csvWave"
	EventManual    EventKind = "manual"
)

// Manual entry event names.
const (
	ManualAddPoint    = "addPoint"
	ManualDeletePoint = "deletePoint"
)

// Event is a single field edit. Name is the field's JSON name within the
// record the handler patches; Value is the raw text of the control.
type Event struct {
	Kind  EventKind `json:"kind"`
	Name  string    `json:"name"`
	Value string    `json:"value"`
}

// Props are the inputs the host passes to the editor.
type Props struct {
	Datasource ScenarioSource
	OnChange   func(models.Query)
	OnRunQuery func()
	Metrics    *metrics.Collector
}

// View is the result of a render: the load state, the form (nil while
// loading) and the query the form reflects after defaults and string-input
// resolution.
type View struct {
	State State        `json:"state"`
	Form  *Form        `json:"form,omitempty"`
	Query models.Query `json:"query"`
}

// QueryEditor binds a testdata query to its form.
type QueryEditor struct {
	props Props
	once  sync.Once

	mu        sync.RWMutex
	state     State
	scenarios []models.Scenario
	err       error
}

// New creates an editor in the loading state. Nil callbacks are ignored.
func New(props Props) *QueryEditor {
	if props.OnChange == nil {
		props.OnChange = func(models.Query) {}
	}
	if props.OnRunQuery == nil {
		props.OnRunQuery = func() {}
	}
	return &QueryEditor{props: props}
}

// Load fetches the scenario list. Only the first call reaches the datasource;
// concurrent callers wait for it and later callers get its outcome.
func (e *QueryEditor) Load(ctx context.Context) error {
	e.once.Do(func() {
		logger := log.DefaultLogger.FromContext(ctx)
		start := time.Now()

		var (
			list []models.Scenario
			err  error
		)
		if e.props.Datasource == nil {
			err = fmt.Errorf("no scenario source configured")
		} else {
			list, err = e.props.Datasource.GetScenarios(ctx)
		}
		e.props.Metrics.RecordFetch(time.Since(start), err)

		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			logger.Error("Failed to load scenarios", "error", err)
			e.state = StateFailed
			e.err = err
			return
		}
		logger.Debug("Loaded scenarios", "count", len(list))
		e.state = StateReady
		e.scenarios = append([]models.Scenario(nil), list...)
	})

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// State returns the current load state.
func (e *QueryEditor) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Scenarios returns a copy of the loaded scenario list.
func (e *QueryEditor) Scenarios() []models.Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.Scenario(nil), e.scenarios...)
}

// ResolveStringInput returns the string input shown for q. The forced value
// of grafana_api wins over a user-entered value, which wins over the current
// scenario's default. current is nil when q's scenario is not listed, and then
// nothing is forced.
func ResolveStringInput(q models.Query, current *models.Scenario) string {
	if current != nil && current.ID == models.ScenarioGrafanaAPI {
		return models.GrafanaAPIStringInput
	}
	if q.StringInput != "" {
		return q.StringInput
	}
	if current != nil {
		return current.StringInput
	}
	return ""
}

// Render builds the form for q. Nothing is rendered while loading.
func (e *QueryEditor) Render(q models.Query) View {
	e.mu.RLock()
	state, fetchErr := e.state, e.err
	e.mu.RUnlock()
	e.props.Metrics.RecordRender(state.String())

	switch state {
	case StateLoading:
		return View{State: state, Query: q}
	case StateFailed:
		return View{
			State: state,
			Form:  &Form{Error: fmt.Sprintf("Failed to load scenarios: %s", fetchErr)},
			Query: q,
		}
	}

	q, current := e.prepare(q)
	problems := validator.ValidateQuery(q)

	options := e.options()
	form := &Form{}
	form.Row = append(form.Row, Field{
		Kind:       FieldSelect,
		Name:       "scenarioId",
		Label:      "Scenario",
		Value:      selectedValue(options, string(q.ScenarioID)),
		LabelWidth: 14,
		Width:      32,
		Options:    options,
		Handler:    EventScenario,
	})

	if current != nil && current.StringInput != "" {
		form.Row = append(form.Row, Field{
			Kind:        FieldInput,
			Name:        "stringInput",
			Label:       "String Input",
			Value:       q.StringInput,
			Placeholder: q.StringInput,
			Handler:     EventInput,
		})
	}

	form.Row = append(form.Row, Field{
		Kind:        FieldInput,
		Name:        "alias",
		Label:       "Alias",
		Value:       q.Alias,
		Placeholder: "optional",
		Pattern:     `[^<>&\\"]+`,
		InputType:   "text",
		LabelWidth:  14,
		Width:       32,
		Handler:     EventInput,
		Error:       errorText(problems["alias"]),
	})

	if scenario.ShowsLabels(q.ScenarioID) {
		form.Row = append(form.Row, Field{
			Kind:        FieldInput,
			Name:        "labels",
			Label:       "Labels",
			Value:       q.Labels,
			Placeholder: "key=value, key2=value2",
			Tooltip:     labelsTooltip,
			LabelWidth:  14,
			Width:       32,
			Handler:     EventInput,
			Error:       errorText(problems["labels"]),
		})
	}

	if current != nil {
		form.SubForm = subFormFor(scenario.EditorFor(current.ID), q)
	}

	return View{State: state, Form: form, Query: q}
}

// OnScenarioChange switches q to scenario id, resets the string input to the
// new scenario's default and runs the query.
func (e *QueryEditor) OnScenarioChange(q models.Query, id models.ScenarioID) error {
	return e.Dispatch(q, Event{Kind: EventScenario, Name: "scenarioId", Value: string(id)})
}

// OnInputChange sets a top-level field and runs the query.
func (e *QueryEditor) OnInputChange(q models.Query, name, value string) error {
	return e.Dispatch(q, Event{Kind: EventInput, Name: name, Value: value})
}

// OnEndpointChange sets the grafana_api endpoint without running the query.
func (e *QueryEditor) OnEndpointChange(q models.Query, value string) error {
	return e.Dispatch(q, Event{Kind: EventEndpoint, Name: "stringInput", Value: value})
}

// OnStreamChange sets a streaming field. "lines" is a top-level field and runs
// the query; every other field is merged into q.Stream, or a new empty stream
// record, without a run.
func (e *QueryEditor) OnStreamChange(q models.Query, name, value string) error {
	return e.Dispatch(q, Event{Kind: EventStream, Name: name, Value: value})
}

// OnPulseWaveChange sets a field of q.PulseWave without running the query.
func (e *QueryEditor) OnPulseWaveChange(q models.Query, name, value string) error {
	return e.Dispatch(q, Event{Kind: EventPulseWave, Name: name, Value: value})
}

// OnCSVWaveChange sets a field of q.CSVWave without running the query.
func (e *QueryEditor) OnCSVWaveChange(q models.Query, name, value string) error {
	return e.Dispatch(q, Event{Kind: EventCSVWave, Name: name, Value: value})
}

// OnAddPoint appends a manual-entry point and runs the query.
func (e *QueryEditor) OnAddPoint(q models.Query, p models.Point) error {
	value := strconv.FormatFloat(p[0], 'f', -1, 64) + "," + strconv.FormatFloat(p[1], 'f', -1, 64)
	return e.Dispatch(q, Event{Kind: EventManual, Name: ManualAddPoint, Value: value})
}

// OnDeletePoint removes the manual-entry point at index and runs the query.
func (e *QueryEditor) OnDeletePoint(q models.Query, index int) error {
	return e.Dispatch(q, Event{Kind: EventManual, Name: ManualDeletePoint, Value: strconv.Itoa(index)})
}

// Dispatch applies ev to q and reports the result through the callbacks.
// On error neither callback is called.
func (e *QueryEditor) Dispatch(q models.Query, ev Event) error {
	if e.State() != StateReady {
		return ErrNotLoaded
	}

	prepared, _ := e.prepare(q)
	next, run, err := e.apply(prepared, ev)
	if err != nil {
		log.DefaultLogger.Debug("Rejected query edit", "kind", ev.Kind, "field", ev.Name, "error", err)
		return err
	}

	e.props.Metrics.RecordEdit(string(ev.Kind), run)
	e.props.OnChange(next)
	if run {
		e.props.OnRunQuery()
	}
	return nil
}

func (e *QueryEditor) apply(q models.Query, ev Event) (models.Query, bool, error) {
	switch ev.Kind {
	case EventScenario:
		return e.changeScenario(q, models.ScenarioID(ev.Value)), true, nil

	case EventInput:
		if ev.Name == "scenarioId" {
			return e.changeScenario(q, models.ScenarioID(ev.Value)), true, nil
		}
		next, err := q.WithField(ev.Name, ev.Value)
		return next, err == nil, err

	case EventEndpoint:
		if !isEndpoint(ev.Value) {
			return q, false, &models.FieldError{Field: "stringInput", Value: ev.Value, Err: fmt.Errorf("unknown endpoint")}
		}
		next := q.Clone()
		next.StringInput = ev.Value
		return next, false, nil

	case EventStream:
		if ev.Name == "lines" {
			next, err := q.WithField(ev.Name, ev.Value)
			return next, err == nil, err
		}
		var base models.StreamQuery
		if q.Stream != nil {
			base = *q.Stream
		}
		stream, err := base.WithField(ev.Name, ev.Value)
		if err != nil {
			return q, false, err
		}
		next := q.Clone()
		next.Stream = &stream
		return next, false, nil

	case EventPulseWave:
		var base models.PulseWaveQuery
		if q.PulseWave != nil {
			base = *q.PulseWave
		}
		pulse, err := base.WithField(ev.Name, ev.Value)
		if err != nil {
			return q, false, err
		}
		next := q.Clone()
		next.PulseWave = &pulse
		return next, false, nil

	case EventCSVWave:
		var base models.CSVWaveQuery
		if q.CSVWave != nil {
			base = *q.CSVWave
		}
		wave, err := base.WithField(ev.Name, ev.Value)
		if err != nil {
			return q, false, err
		}
		next := q.Clone()
		next.CSVWave = &wave
		return next, false, nil

	case EventManual:
		next, err := applyManual(q, ev)
		return next, err == nil, err
	}

	return q, false, fmt.Errorf("unknown event kind %q", ev.Kind)
}

func (e *QueryEditor) changeScenario(q models.Query, id models.ScenarioID) models.Query {
	next := q.Clone()
	next.ScenarioID = id
	next.StringInput = ""
	if s := e.find(id); s != nil {
		next.StringInput = s.StringInput
	}
	return next
}

func applyManual(q models.Query, ev Event) (models.Query, error) {
	next := q.Clone()
	switch ev.Name {
	case ManualAddPoint:
		parts := strings.Split(ev.Value, ",")
		if len(parts) != 2 {
			return q, &models.FieldError{Field: "points", Value: ev.Value, Err: fmt.Errorf("expected value,time")}
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return q, &models.FieldError{Field: "points", Value: ev.Value, Err: err}
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return q, &models.FieldError{Field: "points", Value: ev.Value, Err: err}
		}
		next.Points = append(next.Points, models.Point{value, ts})
	case ManualDeletePoint:
		i, err := strconv.Atoi(ev.Value)
		if err != nil {
			return q, &models.FieldError{Field: "points", Value: ev.Value, Err: err}
		}
		if i < 0 || i >= len(next.Points) {
			return q, &models.FieldError{Field: "points", Value: ev.Value, Err: fmt.Errorf("index out of range")}
		}
		next.Points = append(next.Points[:i], next.Points[i+1:]...)
	default:
		return q, fmt.Errorf("%w: %q", models.ErrUnknownField, ev.Name)
	}
	return next, nil
}

// prepare merges q with the default query and resolves its string input
// against the current scenario, which is nil when the id is not listed.
func (e *QueryEditor) prepare(q models.Query) (models.Query, *models.Scenario) {
	out := models.WithDefaults(q)
	current := e.find(out.ScenarioID)
	out.StringInput = ResolveStringInput(out, current)
	return out, current
}

func (e *QueryEditor) find(id models.ScenarioID) *models.Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := range e.scenarios {
		if e.scenarios[i].ID == id {
			s := e.scenarios[i]
			return &s
		}
	}
	return nil
}

func (e *QueryEditor) options() []Option {
	e.mu.RLock()
	defer e.mu.RUnlock()
	options := make([]Option, 0, len(e.scenarios))
	for _, s := range e.scenarios {
		options = append(options, Option{Value: string(s.ID), Label: s.Name})
	}
	return options
}

func selectedValue(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return value
		}
	}
	return ""
}

func isEndpoint(value string) bool {
	for _, ep := range scenario.Endpoints {
		if ep.Value == value {
			return true
		}
	}
	return false
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
