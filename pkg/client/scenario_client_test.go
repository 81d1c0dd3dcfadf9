package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"testdata-grafana-plugin/pkg/models"

	"github.com/grafana/grafana-plugin-sdk-go/backend/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultClientFactory_CreateClient(t *testing.T) {
	originalNewFunc := httpclientNewFunc
	defer func() { httpclientNewFunc = originalNewFunc }()

	tests := []struct {
		name    string
		config  ClientConfig
		mockFn  func(...httpclient.Options) (*http.Client, error)
		wantErr string
	}{
		{
			name:   "successful client creation",
			config: ClientConfig{BaseURL: "https://grafana.example.com", DatasourceUID: "td"},
			mockFn: func(...httpclient.Options) (*http.Client, error) { return &http.Client{}, nil },
		},
		{
			name:    "missing base URL",
			config:  ClientConfig{DatasourceUID: "td"},
			mockFn:  originalNewFunc,
			wantErr: "base URL cannot be empty",
		},
		{
			name:    "missing datasource UID",
			config:  ClientConfig{BaseURL: "https://grafana.example.com"},
			mockFn:  originalNewFunc,
			wantErr: "datasource UID cannot be empty",
		},
		{
			name:   "http client error",
			config: ClientConfig{BaseURL: "https://grafana.example.com", DatasourceUID: "td"},
			mockFn: func(...httpclient.Options) (*http.Client, error) {
				return nil, errors.New("boom")
			},
			wantErr: "failed to initialize HTTP client",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpclientNewFunc = tt.mockFn

			factory := &DefaultClientFactory{}
			c, err := factory.CreateClient(tt.config)

			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Nil(t, c)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "https://grafana.example.com/api/datasources/uid/td/resources/scenarios", c.endpoint)
			}
		})
	}
}

func TestClientFactoryInterface(t *testing.T) {
	var _ ClientFactory = (*DefaultClientFactory)(nil)
	require.Implements(t, (*ClientFactory)(nil), &DefaultClientFactory{})
}

func TestGetClient(t *testing.T) {
	_, err := GetClient(&models.PluginSettings{}, &DefaultClientFactory{})
	assert.Error(t, err)

	c, err := GetClient(&models.PluginSettings{
		Upstream: &models.UpstreamSettings{URL: "https://grafana.example.com/", DatasourceUID: "td"},
		Secrets:  &models.SecretPluginSettings{APIToken: "token"},
	}, &DefaultClientFactory{})
	require.NoError(t, err)
	assert.Equal(t, "token", c.token)
}

func TestScenarioClient_GetScenarios(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"random_walk","name":"Random Walk","stringInput":""},{"id":"slow_query","name":"Slow Query","stringInput":"5s"}]`))
	}))
	defer srv.Close()

	c, err := (&DefaultClientFactory{}).CreateClient(ClientConfig{
		BaseURL:       srv.URL,
		DatasourceUID: "td",
		APIToken:      "secret",
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)

	scenarios, err := c.GetScenarios(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/api/datasources/uid/td/resources/scenarios", gotPath)
	assert.Equal(t, []models.Scenario{
		{ID: models.ScenarioRandomWalk, Name: "Random Walk"},
		{ID: models.ScenarioSlowQuery, Name: "Slow Query", StringInput: "5s"},
	}, scenarios)
}

func TestScenarioClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: "invalid API key", wantStatus: http.StatusUnauthorized, wantMsg: "invalid API key"},
		{name: "empty error body", status: http.StatusNotFound, wantStatus: http.StatusNotFound, wantMsg: "Not Found"},
		{name: "bad json", status: http.StatusOK, body: "{", wantMsg: "could not decode scenarios"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := (&DefaultClientFactory{}).CreateClient(ClientConfig{BaseURL: srv.URL, DatasourceUID: "td"})
			require.NoError(t, err)

			_, err = c.GetScenarios(context.Background())
			var clientErr *ScenarioClientError
			require.ErrorAs(t, err, &clientErr)
			assert.Equal(t, tt.wantStatus, clientErr.StatusCode)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
