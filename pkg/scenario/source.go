package scenario

import (
	"context"

	"testdata-grafana-plugin/pkg/client"
	"testdata-grafana-plugin/pkg/models"
	"testdata-grafana-plugin/pkg/ratelimit"
)

// Source provides a scenario list.
type Source interface {
	GetScenarios(ctx context.Context) ([]models.Scenario, error)
}

// SourceFromSettings returns the scenario source configured by settings: the
// upstream datasource when one is set, the local catalog otherwise. Upstream
// fetches are rate limited. Hidden scenarios are removed from either.
func SourceFromSettings(settings *models.PluginSettings, factory client.ClientFactory) (Source, error) {
	if settings.Upstream != nil {
		c, err := client.GetClient(settings, factory)
		if err != nil {
			return nil, err
		}
		rate := settings.Upstream.RequestsPerSecond
		if rate == 0 {
			rate = models.DefaultUpstreamRequestsPerSecond
		}
		var src Source = ratelimit.Throttle(c, ratelimit.NewLimiter(rate, int(rate)))
		if len(settings.HiddenScenarios) == 0 {
			return src, nil
		}
		return &filteredSource{source: src, hidden: settings.HiddenScenarios}, nil
	}

	catalog, err := Load(settings.CatalogPath)
	if err != nil {
		return nil, err
	}
	return catalog.Without(settings.HiddenScenarios), nil
}

type filteredSource struct {
	source Source
	hidden []string
}

func (f *filteredSource) GetScenarios(ctx context.Context) ([]models.Scenario, error) {
	list, err := f.source.GetScenarios(ctx)
	if err != nil {
		return nil, err
	}
	c, err := New("upstream", list)
	if err != nil {
		return nil, err
	}
	return c.Without(f.hidden).List(), nil
}
