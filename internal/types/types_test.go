package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Validate())
	assert.Equal(t, 1200*time.Millisecond, config.SettleDelay)
	assert.Equal(t, 5, config.MaxConcurrentRequests)
	assert.False(t, config.FetchInvoices)
}

func TestConfigValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "start url without host", mutate: func(c *Config) { c.StartURL = "/gp/orders" }},
		{name: "negative settle", mutate: func(c *Config) { c.SettleDelay = -time.Second }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.MaxConcurrentRequests = 0 }},
		{name: "empty state", mutate: func(c *Config) { c.StateURL = "" }},
		{name: "empty namespace", mutate: func(c *Config) { c.StateNamespace = "" }},
		{name: "empty output", mutate: func(c *Config) { c.OutputDir = "" }},
		{name: "empty total chain", mutate: func(c *Config) { c.Selectors.Total = nil }},
		{name: "empty next page", mutate: func(c *Config) { c.Selectors.NextPage = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestOrderRecord_HeaderMatchesValues(t *testing.T) {
	record := OrderRecord{Title: "a | b", ProductLink: "x | y"}

	assert.Len(t, record.Values(), len(record.Header()))
	assert.Equal(t, 2, record.Segments())
}

func TestLoadSelectors_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	content := "total:\n  - \".grand-total\"\nnext_page: \"li.next a\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	selectors, err := LoadSelectors(path)

	require.NoError(t, err)
	assert.Equal(t, []string{".grand-total"}, selectors.Total)
	assert.Equal(t, "li.next a", selectors.NextPage)
	assert.Equal(t, DefaultSelectors().TitleLink, selectors.TitleLink)
}

func TestLoadSelectors_MissingFile(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ORDERWALK_STATE", "memory://")
	t.Setenv("ORDERWALK_SETTLE_DELAY", "50ms")
	t.Setenv("ORDERWALK_INVOICES", "true")
	t.Setenv("ORDERWALK_CONCURRENCY", "2")

	config := DefaultConfig()
	require.NoError(t, ApplyEnv(config))

	assert.Equal(t, "memory://", config.StateURL)
	assert.Equal(t, 50*time.Millisecond, config.SettleDelay)
	assert.True(t, config.FetchInvoices)
	assert.Equal(t, 2, config.MaxConcurrentRequests)
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	t.Setenv("ORDERWALK_SETTLE_DELAY", "soon")

	err := ApplyEnv(DefaultConfig())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ORDERWALK_SETTLE_DELAY")
}
