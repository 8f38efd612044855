package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

const sampleYAML = `
storage:
  database_path: ${TEST_COSTSHARE_DIR}/costs.db
server:
  port: 9090
observability:
  logging:
    level: debug
    format: tint
projects:
  - id: alpha
    name: Alpha
    tag_label: ALP
    tag_class: tag-blue
    client: Acme
    billable: true
  - id: lab
    name: Internal Lab
    tag_label: LAB
services:
  - id: OPENAI_API_KEY
    name: OpenAI
    category: ai
    cost_estimate: "$120/mo"
    projects: [alpha, lab]
  - id: extra-github
    name: GitHub
    category: devtools
    cost_estimate: "$21"
    all_projects: true
allocation_weights:
  _comment: "weights are percentage points"
  OPENAI_API_KEY:
    alpha: 70
    lab: 30
    _note: "lab only runs evals"
  extra-github:
    alpha: 2.5
    lab: 1
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_COSTSHARE_DIR", "/var/lib/costshare")
	path := writeConfig(t, sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/costshare/costs.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "tint", cfg.Observability.Logging.Format)

	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "alpha", cfg.Projects[0].ID)
	assert.True(t, cfg.Projects[0].Billable)

	require.Len(t, cfg.Services, 2)
	assert.Equal(t, "$120/mo", cfg.Services[0].CostEstimate)
	assert.True(t, cfg.Services[1].AllProjects)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "projects: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COSTSHARE_DB_PATH", "test.db")
	t.Setenv("COSTSHARE_PORT", "8181")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg := LoadFromEnv()
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Empty(t, cfg.Projects)
}

func TestLoadOrEnvWithPath_FallsBack(t *testing.T) {
	t.Setenv("COSTSHARE_DB_PATH", "fallback.db")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "maven", cfg.Observability.Logging.Format)
}

func TestDefaultWeights(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	weights := cfg.DefaultWeights()

	assert.Equal(t, map[string]allocator.Weights{
		"OPENAI_API_KEY": {"alpha": 70, "lab": 30},
		// 2.5 is not a whole number and is dropped
		"extra-github": {"lab": 1},
	}, weights)
}

func TestAllocatorProjects(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	projects := cfg.AllocatorProjects()

	require.Len(t, projects, 2)
	assert.Equal(t, allocator.Project{
		ID: "alpha", Name: "Alpha", TagLabel: "ALP", TagClass: "tag-blue", Client: "Acme", Billable: true,
	}, projects[0])
	assert.Equal(t, "No client", projects[1].Client)
	assert.False(t, projects[1].Billable)

	assert.Equal(t, []string{"alpha", "lab"}, cfg.ProjectIDs())
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("COSTSHARE_TEST_HOME", "/home/billing")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"braced reference", "${COSTSHARE_TEST_HOME}/db", "/home/billing/db"},
		{"unset reference", "${COSTSHARE_TEST_UNSET}x", "x"},
		{"dollar amount", `"$120/mo"`, `"$120/mo"`},
		{"bare name", "$COSTSHARE_TEST_HOME", "$COSTSHARE_TEST_HOME"},
		{"approximate amount", "~$1,200", "~$1,200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.input))
		})
	}
}

func TestLoad_ExampleConfigKeepsCostEstimates(t *testing.T) {
	t.Setenv("HOME", "/home/costshare")

	cfg, err := Load(filepath.Join("..", "..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/home/costshare/.costshare/costshare.db", cfg.Storage.DatabasePath)

	estimates := make(map[string]string, len(cfg.Services))
	for _, s := range cfg.Services {
		estimates[s.ID] = s.CostEstimate
	}
	assert.Equal(t, map[string]string{
		"OPENAI_API_KEY": "~$120/mo",
		"extra-github":   "$21/mo",
		"extra-domain":   "$12/yr",
	}, estimates)
}
