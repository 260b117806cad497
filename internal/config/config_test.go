package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
providers:
  - name: openai
    kind: primary
    api_key: sk-test
    model: gpt-4o-mini
    timeout: 20s
  - name: anthropic
    kind: secondary
    api_key: ak-test

orchestrator:
  max_retries: 2
  sweep_stale_after: 2m

prober:
  interval: 30s

cache:
  enabled: true
  addr: redis:6379
  ttl: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "openai", cfg.Providers[0].Name)
	assert.Equal(t, "primary", cfg.Providers[0].Kind)
	assert.Equal(t, "sk-test", cfg.Providers[0].Key())
	assert.Equal(t, 20*time.Second, cfg.Providers[0].Timeout)

	assert.Equal(t, 2, cfg.Orchestrator.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Orchestrator.SweepStaleAfter)
	assert.Equal(t, 30*time.Second, cfg.Prober.Interval)
	assert.Equal(t, 5*time.Second, cfg.Prober.ProbeTimeout, "unset fields get defaults")
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
}

func TestLoad_KeyFromEnv(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")

	path := writeConfig(t, `
providers:
  - name: openai
    kind: primary
    api_key_env: TEST_OPENAI_KEY
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Providers[0].Key())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no providers",
			content: "providers: []\n",
			wantErr: "no providers",
		},
		{
			name: "duplicate name",
			content: `
providers:
  - {name: openai, kind: primary, api_key: a}
  - {name: openai, kind: secondary, api_key: b}
`,
			wantErr: "duplicate name",
		},
		{
			name: "unknown kind",
			content: `
providers:
  - {name: openai, kind: quaternary, api_key: a}
`,
			wantErr: "unknown kind",
		},
		{
			name: "missing key",
			content: `
providers:
  - {name: openai, kind: primary}
`,
			wantErr: "no API key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv_StockProviders(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-1")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-1")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2, "providers without keys are omitted")
	assert.Equal(t, "openai", cfg.Providers[0].Name)
	assert.Equal(t, "gemini", cfg.Providers[1].Name)
	assert.Equal(t, 3, cfg.Orchestrator.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Orchestrator.SweepStaleAfter)
}

func TestLoadFromEnv_NoneConfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}
