package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/scoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand(out)
	cmd.SetArgs(args)
	return out, cmd.Execute()
}

func registryConfig(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/edge-runner", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"edge-runner","description":"Quantized inference for tiny devices","html_url":"https://github.com/octo/edge-runner","license":{"key":"mit"}}`))
	})
	mux.HandleFunc("/repos/octo/edge-runner/commits", func(w http.ResponseWriter, r *http.Request) {
		date := time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
		_, _ = fmt.Fprintf(w, `[{"commit":{"author":{"date":%q}}}]`, date)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "frugal.yaml")
	yaml := fmt.Sprintf("registries:\n  github_api_url: %s\n  github_raw_url: %s/raw\n  huggingface_url: %s\n", server.URL, server.URL, server.URL)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestScoreCommand(t *testing.T) {
	out, err := run(t, "score",
		"--ram", types.RAMUnder1GB, "--storage", "500MB", "--offline",
		"--hardware", "CPU", "--hardware", "GPU", "--hardware", "Edge/NPU",
		"--context", types.DeploymentEdge, "--context", types.DeploymentOnPrem,
		"--has-weights", "--license-ok")
	require.NoError(t, err)

	var score types.FrugalScore
	require.NoError(t, json.Unmarshal(out.Bytes(), &score))
	assert.Equal(t, 100, score.Total)
}

func TestScoreCommand_Defaults(t *testing.T) {
	out, err := run(t, "score", "--hardware", "TPU")
	require.NoError(t, err)

	var score types.FrugalScore
	require.NoError(t, json.Unmarshal(out.Bytes(), &score))
	assert.Equal(t, scoring.Calculate(types.ToolAttributes{}, false, false), score)

	_, err = run(t, "score", "extra")
	assert.Error(t, err)
}

func TestIngestCommand(t *testing.T) {
	cfgPath := registryConfig(t)

	out, err := run(t, "ingest", "--config", cfgPath, "https://github.com/octo/edge-runner")
	require.NoError(t, err)

	var got ingestOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "edge-runner", got.Result.Name)
	assert.Equal(t, "Quantized inference for tiny devices", got.Result.Tagline)
	assert.True(t, got.Result.Analysis.LicenseOK)
	assert.True(t, got.Result.Analysis.IsActive)
	assert.Equal(t, scoring.Calculate(types.ToolAttributes{}, got.Result.Analysis.HasWeights, true), got.Score)
}

func TestIngestCommand_Errors(t *testing.T) {
	cfgPath := registryConfig(t)

	_, err := run(t, "ingest", "--config", cfgPath)
	assert.Error(t, err)

	_, err = run(t, "ingest", "--config", cfgPath, "octo/missing-model")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = run(t, "ingest", "--config", filepath.Join(t.TempDir(), "frugal.toml"), "octo/x")
	assert.Error(t, err)
}
