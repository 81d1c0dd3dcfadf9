// Package client fetches the scenario list of a testdata datasource through
// the Grafana HTTP API, so a datasource or editor can use another server's
// catalog.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"testdata-grafana-plugin/pkg/constant"
	"testdata-grafana-plugin/pkg/models"

	"github.com/grafana/grafana-plugin-sdk-go/backend/httpclient"
)

// httpclientNewFunc is swapped out in tests.
var httpclientNewFunc = httpclient.New

// maxResponseBytes bounds the scenario list body.
const maxResponseBytes = 1 << 20

// ClientConfig holds configuration options for the scenario client.
type ClientConfig struct {
	BaseURL       string
	DatasourceUID string
	APIToken      string
	Timeout       time.Duration
	UserAgent     string
}

// DefaultConfig returns a ClientConfig with sensible defaults
func DefaultConfig() ClientConfig {
	return ClientConfig{
		Timeout:   30 * time.Second,
		UserAgent: "testdata-grafana-plugin",
	}
}

// ConfigFromSettings builds a client configuration for the upstream server
// named in the plugin settings.
func ConfigFromSettings(settings *models.PluginSettings) (ClientConfig, error) {
	if settings == nil || settings.Upstream == nil {
		return ClientConfig{}, &ScenarioClientError{Msg: "no upstream configured"}
	}
	cfg := DefaultConfig()
	cfg.BaseURL = settings.Upstream.URL
	cfg.DatasourceUID = settings.Upstream.DatasourceUID
	if settings.Secrets != nil {
		cfg.APIToken = settings.Secrets.APIToken
	}
	return cfg, nil
}

// ScenarioClientError represents an error specifically related to scenario client operations.
type ScenarioClientError struct {
	Msg        string
	StatusCode int
	Err        error
}

func (e *ScenarioClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scenario client error: %s: %v", e.Msg, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("scenario client error: %s (status %d)", e.Msg, e.StatusCode)
	}
	return fmt.Sprintf("scenario client error: %s", e.Msg)
}

func (e *ScenarioClientError) Unwrap() error {
	return e.Err
}

// ClientFactory defines an interface for creating scenario clients.
type ClientFactory interface {
	CreateClient(config ClientConfig) (*ScenarioClient, error)
}

// DefaultClientFactory builds clients on the plugin SDK HTTP client.
type DefaultClientFactory struct{}

// CreateClient implements the ClientFactory interface.
func (f *DefaultClientFactory) CreateClient(config ClientConfig) (*ScenarioClient, error) {
	if config.BaseURL == "" {
		return nil, &ScenarioClientError{Msg: "base URL cannot be empty"}
	}
	if config.DatasourceUID == "" {
		return nil, &ScenarioClientError{Msg: "datasource UID cannot be empty"}
	}

	endpoint, err := url.JoinPath(config.BaseURL, constant.UpstreamDatasourcesPath, config.DatasourceUID, constant.UpstreamScenariosPath)
	if err != nil {
		return nil, &ScenarioClientError{Msg: "invalid base URL", Err: err}
	}

	timeouts := httpclient.DefaultTimeoutOptions
	if config.Timeout > 0 {
		timeouts.Timeout = config.Timeout
	}
	hc, err := httpclientNewFunc(httpclient.Options{Timeouts: &timeouts})
	if err != nil {
		return nil, &ScenarioClientError{Msg: "failed to initialize HTTP client", Err: err}
	}

	return &ScenarioClient{
		http:      hc,
		endpoint:  endpoint,
		token:     config.APIToken,
		userAgent: config.UserAgent,
	}, nil
}

// GetClient initializes a scenario client from settings using factory.
func GetClient(settings *models.PluginSettings, factory ClientFactory) (*ScenarioClient, error) {
	config, err := ConfigFromSettings(settings)
	if err != nil {
		return nil, err
	}
	return factory.CreateClient(config)
}

// ScenarioClient reads the scenarios resource of one datasource.
type ScenarioClient struct {
	http      *http.Client
	endpoint  string
	token     string
	userAgent string
}

// GetScenarios fetches the scenario list.
func (c *ScenarioClient) GetScenarios(ctx context.Context) ([]models.Scenario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &ScenarioClientError{Msg: "could not build request", Err: err}
	}
	req.Header.Set("Accept", constant.ContentTypeJSON)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ScenarioClientError{Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ScenarioClientError{Msg: "could not read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &ScenarioClientError{Msg: msg, StatusCode: resp.StatusCode}
	}

	var scenarios []models.Scenario
	if err := json.Unmarshal(body, &scenarios); err != nil {
		return nil, &ScenarioClientError{Msg: "could not decode scenarios", Err: err}
	}
	return scenarios, nil
}
