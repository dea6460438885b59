package config

import (
	"testing"
	"time"

	"github.com/mlindqvist/despot/internal/parameters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero time per move", func(c *Config) { c.TimePerMove = 0 }},
		{"negative search depth", func(c *Config) { c.SearchDepth = -1 }},
		{"zero num scenarios", func(c *Config) { c.NumScenarios = 0 }},
		{"discount out of range", func(c *Config) { c.Discount = 1.5 }},
		{"xi out of range", func(c *Config) { c.Xi = 0 }},
		{"negative pruning constant", func(c *Config) { c.PruningConstant = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFromParamsOverridesDefaults(t *testing.T) {
	params := parameters.Params{
		"search_depth":     "10",
		"num_scenarios":    "128",
		"discount":         "0.8",
		"pruning_constant": "0.01",
		"xi":               "0.9",
		"time_per_move":    "0.5",
		"lower_bound":      "toy-rollout",
		"upper_bound":      "particle-upper",
		"num_workers":      "4",
	}

	cfg, err := FromParams(params)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.SearchDepth)
	assert.Equal(t, 128, cfg.NumScenarios)
	assert.Equal(t, 0.8, cfg.Discount)
	assert.Equal(t, 0.01, cfg.PruningConstant)
	assert.Equal(t, 0.9, cfg.Xi)
	assert.Equal(t, 500*time.Millisecond, cfg.TimePerMove)
	assert.Equal(t, "toy-rollout", cfg.LowerBoundName)
	assert.Equal(t, 4, cfg.NumWorkers)
}

func TestFromParamsConsumesEveryKeyItReads(t *testing.T) {
	params := parameters.Params{"search_depth": "5"}
	_, err := FromParams(params)
	require.NoError(t, err)
	assert.Empty(t, params, "FromParams must pop every key it reads")
}
