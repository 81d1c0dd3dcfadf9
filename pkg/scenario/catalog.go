// Package scenario holds the testdata scenario catalog and the mapping from
// scenario ids to the sub-forms the query editor shows for them.
package scenario

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"testdata-grafana-plugin/pkg/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// CatalogError represents an error loading or validating a scenario catalog.
type CatalogError struct {
	Source string
	Msg    string
	Err    error // Wrapped error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scenario catalog %s: %s: %v", e.Source, e.Msg, e.Err)
	}
	return fmt.Sprintf("scenario catalog %s: %s", e.Source, e.Msg)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

type catalogFile struct {
	Scenarios []models.Scenario `yaml:"scenarios"`
}

// Catalog is an ordered, immutable list of scenarios.
type Catalog struct {
	scenarios []models.Scenario
	byID      map[models.ScenarioID]int
}

// Builtin returns the catalog shipped with the plugin.
func Builtin() (*Catalog, error) {
	return Parse("builtin", builtinCatalog)
}

// Load reads a catalog from path, or returns the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Source: path, Msg: "could not read file", Err: err}
	}
	return Parse(path, raw)
}

// Parse decodes a YAML catalog. Every scenario needs an id and a name, and ids
// must be unique.
func Parse(source string, raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &CatalogError{Source: source, Msg: "could not decode YAML", Err: err}
	}
	return New(source, file.Scenarios)
}

// New builds a catalog from scenarios, keeping their order.
func New(source string, scenarios []models.Scenario) (*Catalog, error) {
	c := &Catalog{
		scenarios: make([]models.Scenario, 0, len(scenarios)),
		byID:      make(map[models.ScenarioID]int, len(scenarios)),
	}
	for i, s := range scenarios {
		if s.ID == "" {
			return nil, &CatalogError{Source: source, Msg: fmt.Sprintf("scenario at index %d has no id", i)}
		}
		if s.Name == "" {
			return nil, &CatalogError{Source: source, Msg: fmt.Sprintf("scenario %q has no name", s.ID)}
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, &CatalogError{Source: source, Msg: fmt.Sprintf("duplicate scenario id %q", s.ID)}
		}
		c.byID[s.ID] = len(c.scenarios)
		c.scenarios = append(c.scenarios, s)
	}
	return c, nil
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.scenarios)
}

// List returns a copy of the scenarios in catalog order.
func (c *Catalog) List() []models.Scenario {
	return append([]models.Scenario(nil), c.scenarios...)
}

// Find looks a scenario up by id.
func (c *Catalog) Find(id models.ScenarioID) (models.Scenario, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Scenario{}, false
	}
	return c.scenarios[i], true
}

// Without returns a catalog with the given ids removed. Unknown ids are ignored.
func (c *Catalog) Without(ids []string) *Catalog {
	if len(ids) == 0 {
		return c
	}
	hidden := make(map[models.ScenarioID]struct{}, len(ids))
	for _, id := range ids {
		hidden[models.ScenarioID(id)] = struct{}{}
	}
	out := &Catalog{byID: make(map[models.ScenarioID]int, len(c.scenarios))}
	for _, s := range c.scenarios {
		if _, skip := hidden[s.ID]; skip {
			continue
		}
		out.byID[s.ID] = len(out.scenarios)
		out.scenarios = append(out.scenarios, s)
	}
	return out
}

// GetScenarios returns the scenario list, letting a catalog act as the
// editor's scenario source.
func (c *Catalog) GetScenarios(ctx context.Context) ([]models.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.List(), nil
}
