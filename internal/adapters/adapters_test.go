package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitHubFake(t *testing.T) (*GitHubAdapter, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/tiny-llm", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"name": "tiny-llm",
			"full_name": "octo/tiny-llm",
			"description": "A small quantized model runner",
			"html_url": "https://github.com/octo/tiny-llm",
			"license": {"key": "apache-2.0", "spdx_id": "Apache-2.0", "name": "Apache License 2.0"}
		}`))
	})
	mux.HandleFunc("/repos/octo/tiny-llm/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"sha":"abc","commit":{"author":{"date":"2026-09-01T12:00:00Z"}}}]`))
	})
	mux.HandleFunc("/repos/octo/empty/commits", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/repos/octo/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"full_name": "octo/broken"}`))
	})
	mux.HandleFunc("/repos/octo/garbled", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	mux.HandleFunc("/raw/octo/tiny-llm/HEAD/README.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# tiny-llm\nRuns on edge devices."))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	adapter := NewGitHubAdapter(GitHubConfig{
		Token:      "ghp_test",
		APIBaseURL: server.URL,
		RawBaseURL: server.URL + "/raw",
		Pool:       resilience.DefaultPoolConfig(),
	})
	t.Cleanup(func() { _ = adapter.Close() })

	return adapter, server
}

func TestGitHubAdapter_FetchRepo(t *testing.T) {
	adapter, _ := newGitHubFake(t)

	tests := []struct {
		name        string
		repo        string
		wantErr     func(error) bool
		wantLicense string
	}{
		{name: "valid repository", repo: "tiny-llm", wantLicense: "apache-2.0"},
		{name: "unknown repository is not found", repo: "missing", wantErr: errors.IsNotFound},
		{name: "payload without required fields", repo: "broken", wantErr: errors.IsIngestion},
		{name: "undecodable payload", repo: "garbled", wantErr: errors.IsIngestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := adapter.FetchRepo(context.Background(), "octo", tt.repo)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error kind: %v", err)
				assert.Nil(t, repo)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "tiny-llm", repo.Name)
			assert.Equal(t, "A small quantized model runner", repo.DescriptionText())
			assert.Equal(t, tt.wantLicense, repo.LicenseKey())
		})
	}
}

func TestGitHubAdapter_FetchLatestCommitTime(t *testing.T) {
	adapter, _ := newGitHubFake(t)

	ts, err := adapter.FetchLatestCommitTime(context.Background(), "octo", "tiny-llm")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), ts.UTC())

	ts, err = adapter.FetchLatestCommitTime(context.Background(), "octo", "empty")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestGitHubAdapter_FetchReadme(t *testing.T) {
	adapter, _ := newGitHubFake(t)

	readme, err := adapter.FetchReadme(context.Background(), "octo", "tiny-llm")
	require.NoError(t, err)
	assert.Contains(t, readme, "edge devices")

	_, err = adapter.FetchReadme(context.Background(), "octo", "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestGitHubAdapter_UnreachableRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	adapter := NewGitHubAdapter(GitHubConfig{APIBaseURL: base, RawBaseURL: base})

	_, err := adapter.FetchRepo(context.Background(), "octo", "tiny-llm")
	require.Error(t, err)
	assert.True(t, errors.IsIngestion(err))
	assert.False(t, errors.IsNotFound(err))
}

func TestNewGitHubAdapter_Defaults(t *testing.T) {
	adapter := NewGitHubAdapter(GitHubConfig{})
	assert.Equal(t, DefaultGitHubAPIURL, adapter.apiBaseURL)
	assert.Equal(t, DefaultGitHubRawURL, adapter.rawBaseURL)
	assert.Empty(t, adapter.token)
	assert.Equal(t, resilience.StateClosed, adapter.Breaker().State())
	assert.Equal(t, "closed", adapter.GetPoolStats()["circuit_breaker_state"])
}

func TestHuggingFaceAdapter_FetchModel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/TheBloke/Mistral-7B-GGUF", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": "TheBloke/Mistral-7B-GGUF",
			"author": "TheBloke",
			"pipeline_tag": "text-generation",
			"lastModified": "2026-08-20T10:00:00.000Z",
			"siblings": [{"rfilename": "config.json"}, {"rfilename": "mistral-7b.Q4_K_M.gguf"}],
			"tags": ["gguf", "license:apache-2.0"],
			"cardData": {"license": "apache-2.0"}
		}`))
	})
	mux.HandleFunc("/api/models/acme/multi", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"modelId": "acme/multi", "cardData": {"license": ["mit", "cc-by-4.0"]}}`))
	})
	mux.HandleFunc("/api/models/acme/tagged", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "acme/tagged", "tags": ["onnx", "license:openrail"], "cardData": null}`))
	})
	mux.HandleFunc("/api/models/acme/badcard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "acme/badcard", "cardData": {"license": 42}}`))
	})
	mux.HandleFunc("/api/models/acme/anonymous", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pipeline_tag": "fill-mask"}`))
	})
	mux.HandleFunc("/TheBloke/Mistral-7B-GGUF/resolve/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("---\nlicense: apache-2.0\n---\n# Mistral GGUF"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := NewHuggingFaceAdapter(HuggingFaceConfig{BaseURL: server.URL})
	defer adapter.Close()
	ctx := context.Background()

	t.Run("full payload", func(t *testing.T) {
		model, err := adapter.FetchModel(ctx, "TheBloke/Mistral-7B-GGUF")
		require.NoError(t, err)
		assert.Equal(t, "TheBloke", model.Author)
		assert.Equal(t, "text-generation", model.PipelineTag)
		assert.Equal(t, "apache-2.0", model.License())
		assert.Equal(t, []string{"config.json", "mistral-7b.Q4_K_M.gguf"}, model.Filenames())
		require.NotNil(t, model.LastModified)
		assert.Equal(t, 2026, model.LastModified.Year())
	})

	t.Run("license list and modelId fallback", func(t *testing.T) {
		model, err := adapter.FetchModel(ctx, "acme/multi")
		require.NoError(t, err)
		assert.Equal(t, "acme/multi", model.ID)
		assert.Equal(t, "mit", model.License())
		assert.Nil(t, model.LastModified)
	})

	t.Run("license from tag", func(t *testing.T) {
		model, err := adapter.FetchModel(ctx, "acme/tagged")
		require.NoError(t, err)
		assert.Equal(t, "openrail", model.License())
	})

	t.Run("malformed card license", func(t *testing.T) {
		_, err := adapter.FetchModel(ctx, "acme/badcard")
		assert.True(t, errors.IsIngestion(err))
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := adapter.FetchModel(ctx, "acme/anonymous")
		assert.True(t, errors.IsIngestion(err))
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := adapter.FetchModel(ctx, "nobody/nothing")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("readme", func(t *testing.T) {
		readme, err := adapter.FetchReadme(ctx, "TheBloke/Mistral-7B-GGUF")
		require.NoError(t, err)
		assert.Contains(t, readme, "# Mistral GGUF")
	})
}

func TestLicenseField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LicenseField
	}{
		{name: "string", input: `"mit"`, want: LicenseField{"mit"}},
		{name: "list", input: `["mit","apache-2.0"]`, want: LicenseField{"mit", "apache-2.0"}},
		{name: "empty string", input: `""`, want: nil},
		{name: "null", input: `null`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LicenseField
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
