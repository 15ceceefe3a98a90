package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsMerge(t *testing.T) {
	defaults := Params{"temperature": 0.7}
	overrides := Params{"temperature": 0.2, "top_p": 0.9}

	merged := defaults.Merge(overrides)

	require.Equal(t, Params{"temperature": 0.2, "top_p": 0.9}, merged)
	require.Equal(t, Params{"temperature": 0.7}, defaults, "defaults must not be mutated")
	require.Equal(t, Params{"temperature": 0.2, "top_p": 0.9}, overrides, "overrides must not be mutated")
}

func TestParamsMergeKeepsUntouchedDefaults(t *testing.T) {
	defaults := Params{"temperature": 0.7, "seed": 42, "logit_bias": map[string]any{"50256": -100}}

	merged := defaults.Merge(Params{"temperature": 0.1})

	require.Equal(t, 0.1, merged["temperature"])
	require.Equal(t, 42, merged["seed"])
	require.Equal(t, map[string]any{"50256": -100}, merged["logit_bias"])
	require.Len(t, merged, 3)
}

func TestParamsMergeNilReceiver(t *testing.T) {
	var defaults Params

	merged := defaults.Merge(Params{"top_p": 0.5})

	require.Equal(t, Params{"top_p": 0.5}, merged)
	require.Empty(t, Params(nil).Merge(nil))
}

func TestApplyCallOptions(t *testing.T) {
	settings := ApplyCallOptions([]CallOption{
		WithMaxTokens(128),
		WithParams(Params{"temperature": 0.3}),
		WithParams(Params{"temperature": 0.1, "seed": 7}),
		WithUser("tester"),
		nil,
	})

	require.Equal(t, 128, settings.MaxTokens)
	require.Equal(t, "tester", settings.User)
	require.Equal(t, Params{"temperature": 0.1, "seed": 7}, settings.Params)
}

func TestWithMaxTokensIgnoresNonPositive(t *testing.T) {
	settings := ApplyCallOptions([]CallOption{WithMaxTokens(0), WithMaxTokens(-5)})
	require.Zero(t, settings.MaxTokens)
}
