// Package config loads adapter settings from a YAML file. The file carries
// the non-secret connection values and default generation parameters; the
// credential stays in the environment, referenced by name.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cexll/llmadapter-go/pkg/model"
	"github.com/cexll/llmadapter-go/pkg/model/azure"
)

// Settings is the on-disk adapter configuration.
//
//	endpoint: https://example.openai.azure.com
//	deployment: gpt-4o-prod
//	api_version: 2024-02-01
//	api_key_env: AZURE_OPENAI_API_KEY
//	params:
//	  temperature: 0.2
//	  top_p: 0.9
type Settings struct {
	Endpoint   string         `yaml:"endpoint"`
	Deployment string         `yaml:"deployment"`
	APIVersion string         `yaml:"api_version"`
	APIKeyEnv  string         `yaml:"api_key_env"`
	Params     map[string]any `yaml:"params"`
}

// Load reads and normalizes a settings file. Values may reference
// environment variables as ${VAR}; they expand at load time.
func Load(path string) (*Settings, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes settings from raw YAML.
func Parse(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	settings.normalize()
	return &settings, nil
}

func (s *Settings) normalize() {
	s.Endpoint = expand(s.Endpoint)
	s.Deployment = expand(s.Deployment)
	s.APIVersion = expand(s.APIVersion)
	s.APIKeyEnv = strings.TrimSpace(s.APIKeyEnv)
}

func expand(value string) string {
	return strings.TrimSpace(os.Expand(strings.TrimSpace(value), func(name string) string {
		return os.Getenv(name)
	}))
}

// AzureConfig converts the settings into an adapter configuration. Fields
// the file does not provide stay empty and fall back to the adapter's own
// environment resolution.
func (s *Settings) AzureConfig() azure.Config {
	cfg := azure.Config{
		Endpoint:   s.Endpoint,
		Deployment: s.Deployment,
		APIVersion: s.APIVersion,
		Params:     model.Params(s.Params),
	}
	if s.APIKeyEnv != "" {
		cfg.APIKey = os.Getenv(s.APIKeyEnv)
	}
	return cfg
}
