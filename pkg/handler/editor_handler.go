// Package handler processes query editor requests from the frontend. Each
// request builds a short-lived editor over the datasource's scenario source,
// applies the request to it and returns the outcome as JSON-ready values.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"testdata-grafana-plugin/pkg/editor"
	"testdata-grafana-plugin/pkg/metrics"
	"testdata-grafana-plugin/pkg/models"

	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

// RequestError is an editor request failure with the HTTP status it maps to.
type RequestError struct {
	Status int
	Msg    string
	Err    error // Wrapped error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// RenderRequest asks for the form of a query.
type RenderRequest struct {
	Query json.RawMessage `json:"query"`
}

// ChangeRequest applies one edit to a query.
type ChangeRequest struct {
	Query json.RawMessage `json:"query"`
	Event editor.Event    `json:"event"`
}

// ChangeResponse is the patched query and whether the edit asks for a run.
type ChangeResponse struct {
	Query models.Query `json:"query"`
	Run   bool         `json:"run"`
}

// HandleRender renders the form for the query in body. A failed scenario
// fetch is not an error here: the view carries the failed state.
func HandleRender(ctx context.Context, source editor.ScenarioSource, collector *metrics.Collector, body []byte) (*editor.View, error) {
	var req RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{Status: http.StatusBadRequest, Msg: "error parsing render request", Err: err}
	}
	q, err := models.ParseQuery(req.Query)
	if err != nil {
		return nil, &RequestError{Status: http.StatusBadRequest, Msg: "error parsing query", Err: err}
	}

	ed := editor.New(editor.Props{Datasource: source, Metrics: collector})
	if err := ed.Load(ctx); err != nil {
		log.DefaultLogger.FromContext(ctx).Warn("Rendering editor without scenarios", "refId", q.RefID, "error", err)
	}

	view := ed.Render(q)
	return &view, nil
}

// HandleChange applies the event in body to its query.
func HandleChange(ctx context.Context, source editor.ScenarioSource, collector *metrics.Collector, body []byte) (*ChangeResponse, error) {
	logger := log.DefaultLogger.FromContext(ctx)

	var req ChangeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{Status: http.StatusBadRequest, Msg: "error parsing change request", Err: err}
	}
	q, err := models.ParseQuery(req.Query)
	if err != nil {
		return nil, &RequestError{Status: http.StatusBadRequest, Msg: "error parsing query", Err: err}
	}

	resp := &ChangeResponse{}
	changed := false
	ed := editor.New(editor.Props{
		Datasource: source,
		Metrics:    collector,
		OnChange: func(next models.Query) {
			resp.Query = next
			changed = true
		},
		OnRunQuery: func() { resp.Run = true },
	})

	if err := ed.Load(ctx); err != nil {
		logger.Error("Failed to load scenarios for edit", "refId", q.RefID, "error", err)
		return nil, &RequestError{Status: http.StatusBadGateway, Msg: "failed to load scenarios", Err: err}
	}

	if err := ed.Dispatch(q, req.Event); err != nil {
		logger.Debug("Rejected edit", "refId", q.RefID, "kind", req.Event.Kind, "field", req.Event.Name, "error", err)
		return nil, &RequestError{Status: statusFor(err), Msg: "edit rejected", Err: err}
	}
	if !changed {
		return nil, &RequestError{Status: http.StatusInternalServerError, Msg: "edit produced no query"}
	}

	logger.Debug("Applied edit", "refId", q.RefID, "scenarioId", resp.Query.ScenarioID, "run", resp.Run)
	return resp, nil
}

func statusFor(err error) int {
	if errors.Is(err, editor.ErrNotLoaded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}
