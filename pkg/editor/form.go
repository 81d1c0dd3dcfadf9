package editor

import (
	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/scenario"
)

// FieldKind is the toolkit control a field is drawn with.
type FieldKind string

const (
	FieldSelect   FieldKind = "select"
	FieldInput    FieldKind = "input"
	FieldTextArea FieldKind = "textarea"
	FieldPoints   FieldKind = "points"
)

// Option is a value/label pair of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one labelled control. Handler names the Event kind an edit of this
// field must be sent as.
type Field struct {
	Kind        FieldKind      `json:"kind"`
	Name        string         `json:"name"`
	Label       string         `json:"label,omitempty"`
	Value       string         `json:"value"`
	Placeholder string         `json:"placeholder,omitempty"`
	Pattern     string         `json:"pattern,omitempty"`
	Tooltip     string         `json:"tooltip,omitempty"`
	InputType   string         `json:"type,omitempty"`
	LabelWidth  int            `json:"labelWidth,omitempty"`
	Width       int            `json:"width,omitempty"`
	Rows        int            `json:"rows,omitempty"`
	Options     []Option       `json:"options,omitempty"`
	Points      []models.Point `json:"points,omitempty"`
	Handler     EventKind      `json:"handler"`
	Error       string         `json:"error,omitempty"`
}

// SubForm is the scenario-specific section drawn under the common fields.
type SubForm struct {
	Editor scenario.EditorKind `json:"editor"`
	Fields []Field             `json:"fields"`
}

// Form is the rendered editor. A failed scenario fetch yields a form that
// only carries Error.
type Form struct {
	Row     []Field  `json:"row,omitempty"`
	SubForm *SubForm `json:"subForm,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Field returns the field with the given name from the common row or the
// sub-form.
func (f *Form) Field(name string) (Field, bool) {
	if f == nil {
		return Field{}, false
	}
	for _, field := range f.Row {
		if field.Name == name {
			return field, true
		}
	}
	if f.SubForm != nil {
		for _, field := range f.SubForm.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}
