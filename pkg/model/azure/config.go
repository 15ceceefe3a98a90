package azure

import (
	"net/http"
	"os"
	"strings"
	"time"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

// Environment variables consulted when a Config field is left empty.
const (
	EnvAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAPIVersion = "OPENAI_API_VERSION"
	EnvDeployment = "AZURE_OPENAI_DEPLOYMENT"
)

const quickstartURL = "https://learn.microsoft.com/en-us/azure/ai-services/openai/quickstart"

// Config carries everything needed to talk to an Azure OpenAI deployment.
// Each of the four required values is taken from the explicit field when
// set, otherwise from its environment variable; if neither yields a value,
// construction fails with *model.ConfigError before any network IO.
type Config struct {
	// APIKey authenticates requests (env: AZURE_OPENAI_API_KEY).
	APIKey string
	// Endpoint is the resource base URL (env: AZURE_OPENAI_ENDPOINT).
	Endpoint string
	// APIVersion selects the wire protocol (env: OPENAI_API_VERSION).
	APIVersion string
	// Deployment names the model deployment (env: AZURE_OPENAI_DEPLOYMENT).
	Deployment string

	// Params are the default generation parameters applied to every call
	// unless overridden per call.
	Params modelpkg.Params

	// Headers are added to every request on top of the defaults.
	Headers map[string]string

	// HTTPClient overrides the transport. Nil means a client with a sane
	// default timeout.
	HTTPClient *http.Client

	// LookupEnv overrides environment resolution, so construction is
	// testable without mutating the process environment. Nil means
	// os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// resolved is a Config with every required field filled in.
type resolved struct {
	apiKey     string
	endpoint   string
	apiVersion string
	deployment string
}

// resolve fills blanks from the environment and fails fast on the first
// missing value.
func (c Config) resolve() (resolved, error) {
	lookup := c.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var out resolved
	fields := []struct {
		field  string
		value  string
		envVar string
		dst    *string
	}{
		{"Azure OpenAI API key", c.APIKey, EnvAPIKey, &out.apiKey},
		{"Azure OpenAI endpoint", c.Endpoint, EnvEndpoint, &out.endpoint},
		{"Azure OpenAI API version", c.APIVersion, EnvAPIVersion, &out.apiVersion},
		{"Azure OpenAI deployment name", c.Deployment, EnvDeployment, &out.deployment},
	}

	for _, f := range fields {
		value := strings.TrimSpace(f.value)
		if value == "" {
			if env, ok := lookup(f.envVar); ok {
				value = strings.TrimSpace(env)
			}
		}
		if value == "" {
			return resolved{}, &modelpkg.ConfigError{
				Field:  f.field,
				EnvVar: f.envVar,
				Hint:   quickstartURL,
			}
		}
		*f.dst = value
	}

	out.endpoint = strings.TrimRight(out.endpoint, "/")
	return out, nil
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultHTTPTimeout * time.Second}
}
