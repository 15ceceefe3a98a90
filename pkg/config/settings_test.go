package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TEST_AZURE_REGION", "eastus2")
	t.Setenv("TEST_AZURE_KEY", "secret-key")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := []byte(`
endpoint: https://${TEST_AZURE_REGION}.openai.azure.com
deployment: gpt-4o-prod
api_version: "2024-02-01"
api_key_env: TEST_AZURE_KEY
params:
  temperature: 0.2
  top_p: 0.9
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	settings, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://eastus2.openai.azure.com", settings.Endpoint)
	require.Equal(t, "gpt-4o-prod", settings.Deployment)
	require.Equal(t, "2024-02-01", settings.APIVersion)

	cfg := settings.AzureConfig()
	require.Equal(t, "secret-key", cfg.APIKey)
	require.Equal(t, 0.2, cfg.Params["temperature"])
	require.Equal(t, 0.9, cfg.Params["top_p"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("  ")
	require.Error(t, err)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("endpoint: [unclosed"))
	require.Error(t, err)
}

func TestAzureConfigLeavesUnsetFieldsToEnvResolution(t *testing.T) {
	settings, err := Parse([]byte("deployment: gpt-4o-prod\n"))
	require.NoError(t, err)

	cfg := settings.AzureConfig()
	require.Empty(t, cfg.APIKey)
	require.Empty(t, cfg.Endpoint)
	require.Equal(t, "gpt-4o-prod", cfg.Deployment)
}
