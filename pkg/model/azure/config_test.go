package azure

import (
	"errors"
	"strings"
	"testing"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func fullEnv() map[string]string {
	return map[string]string{
		EnvAPIKey:     "secret-key",
		EnvEndpoint:   "https://example.openai.azure.com/",
		EnvAPIVersion: "2024-02-01",
		EnvDeployment: "gpt-4o-prod",
	}
}

func TestNewModelResolvesFromEnv(t *testing.T) {
	t.Parallel()

	m, err := NewModel(Config{LookupEnv: fakeEnv(fullEnv())})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	if m.Deployment() != "gpt-4o-prod" {
		t.Fatalf("deployment: %q", m.Deployment())
	}
	if m.endpoint != "https://example.openai.azure.com" {
		t.Fatalf("endpoint not trimmed: %q", m.endpoint)
	}
}

func TestNewModelExplicitArgumentWinsOverEnv(t *testing.T) {
	t.Parallel()

	m, err := NewModel(Config{
		Deployment: "gpt-4o-canary",
		LookupEnv:  fakeEnv(fullEnv()),
	})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	if m.Deployment() != "gpt-4o-canary" {
		t.Fatalf("deployment: %q", m.Deployment())
	}
}

func TestNewModelFailsFastOnMissingValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		drop   string
		envVar string
	}{
		{"api key", EnvAPIKey, EnvAPIKey},
		{"endpoint", EnvEndpoint, EnvEndpoint},
		{"api version", EnvAPIVersion, EnvAPIVersion},
		{"deployment", EnvDeployment, EnvDeployment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vars := fullEnv()
			delete(vars, tc.drop)

			_, err := NewModel(Config{LookupEnv: fakeEnv(vars)})

			var cfgErr *modelpkg.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.EnvVar != tc.envVar {
				t.Fatalf("env var: %q", cfgErr.EnvVar)
			}
			if !strings.Contains(cfgErr.Error(), tc.envVar) {
				t.Fatalf("error does not name env var: %v", cfgErr)
			}
		})
	}
}

func TestNewModelTreatsBlankEnvAsMissing(t *testing.T) {
	t.Parallel()

	vars := fullEnv()
	vars[EnvAPIKey] = "   "

	_, err := NewModel(Config{LookupEnv: fakeEnv(vars)})

	var cfgErr *modelpkg.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestNewSDKModelFailsFastOnMissingValues(t *testing.T) {
	t.Parallel()

	_, err := NewSDKModel(Config{LookupEnv: fakeEnv(nil)})

	var cfgErr *modelpkg.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
