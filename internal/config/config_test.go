package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rows", func(c *Config) { c.MaxRows = 0 }},
		{"negative cols", func(c *Config) { c.MaxCols = -1 }},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }},
		{"negative precision", func(c *Config) { c.Precision = -1 }},
		{"huge precision", func(c *Config) { c.Precision = 16 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
