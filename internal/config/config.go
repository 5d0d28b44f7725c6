package config

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// Defaults for the optional model settings.
const (
	DefaultAPIVersion = "2025-01-01"
	DefaultDeployment = "gpt-4o"
)

// Environment variables that supply the model settings.
const (
	EnvAPIKey     = "MODEL_API_KEY"
	EnvEndpoint   = "MODEL_ENDPOINT"
	EnvAPIVersion = "MODEL_API_VERSION"
	EnvDeployment = "MODEL_DEPLOYMENT"
)

// ConfigError reports a missing required model setting.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("model config: %s is required", e.Field)
}

// ModelConfig holds the inference backend settings. Values are immutable once
// built; Manager.Update swaps in a replacement instead of mutating in place.
type ModelConfig struct {
	APIKey     string
	Endpoint   string
	APIVersion string
	Deployment string
}

// NewModelConfig applies defaults for api version and deployment and validates
// that every field is set, checked in order: api key, endpoint, api version,
// deployment.
func NewModelConfig(apiKey, endpoint, apiVersion, deployment string) (ModelConfig, error) {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if deployment == "" {
		deployment = DefaultDeployment
	}
	cfg := ModelConfig{
		APIKey:     apiKey,
		Endpoint:   endpoint,
		APIVersion: apiVersion,
		Deployment: deployment,
	}
	if err := cfg.validate(); err != nil {
		return ModelConfig{}, err
	}
	return cfg, nil
}

func (c ModelConfig) validate() error {
	switch {
	case c.APIKey == "":
		return &ConfigError{Field: "api key"}
	case c.Endpoint == "":
		return &ConfigError{Field: "endpoint"}
	case c.APIVersion == "":
		return &ConfigError{Field: "api version"}
	case c.Deployment == "":
		return &ConfigError{Field: "deployment"}
	}
	return nil
}

// FromEnv builds a ModelConfig from the MODEL_* environment variables.
func FromEnv() (ModelConfig, error) {
	return NewModelConfig(
		os.Getenv(EnvAPIKey),
		os.Getenv(EnvEndpoint),
		os.Getenv(EnvAPIVersion),
		os.Getenv(EnvDeployment),
	)
}

// Overrides carries fields to merge in Manager.Update. Nil means keep current.
type Overrides struct {
	APIKey     *string
	Endpoint   *string
	APIVersion *string
	Deployment *string
}

// Manager owns the current ModelConfig and a lazily built inference client.
// Built for single-threaded callers; no locking.
type Manager struct {
	cfg    ModelConfig
	client *genai.Client
}

func NewManager(cfg ModelConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Config returns the current configuration.
func (m *Manager) Config() ModelConfig {
	return m.cfg
}

// Client returns the cached inference client, building it from the current
// configuration on first use. No network call happens before this point.
func (m *Manager) Client(ctx context.Context) (*genai.Client, error) {
	if m.client != nil {
		return m.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: m.cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    m.cfg.Endpoint,
			APIVersion: m.cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}
	m.client = client
	return m.client, nil
}

// Update merges the given overrides over the current configuration,
// re-validates with the construction rules, and discards the cached client so
// the next Client call rebuilds it. The stored configuration is unchanged when
// validation fails.
func (m *Manager) Update(o Overrides) error {
	next := m.cfg
	if o.APIKey != nil {
		next.APIKey = *o.APIKey
	}
	if o.Endpoint != nil {
		next.Endpoint = *o.Endpoint
	}
	if o.APIVersion != nil {
		next.APIVersion = *o.APIVersion
	}
	if o.Deployment != nil {
		next.Deployment = *o.Deployment
	}
	if err := next.validate(); err != nil {
		return err
	}
	m.cfg = next
	m.client = nil
	return nil
}
