package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsGitHub(t *testing.T) {
	assert.True(t, IsGitHub("https://github.com/owner/repo"))
	assert.True(t, IsGitHub("github.com/owner/repo"))
	assert.False(t, IsGitHub("TheBloke/Mistral-7B-GGUF"))
	assert.False(t, IsGitHub("gpt2"))
}

func TestParseGitHub(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantOK    bool
	}{
		{input: "https://github.com/owner/repo", wantOwner: "owner", wantRepo: "repo", wantOK: true},
		{input: "https://github.com/ggerganov/llama.cpp", wantOwner: "ggerganov", wantRepo: "llama.cpp", wantOK: true},
		{input: "https://github.com/owner/repo.git", wantOwner: "owner", wantRepo: "repo", wantOK: true},
		{input: "https://github.com/owner/repo/tree/main/src", wantOwner: "owner", wantRepo: "repo", wantOK: true},
		{input: "github.com/owner/repo?tab=readme", wantOwner: "owner", wantRepo: "repo", wantOK: true},
		{input: "https://github.com/owner", wantOK: false},
		{input: "https://github.com/", wantOK: false},
		{input: "https://github.com/owner/..", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, repo, ok := ParseGitHub(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestNormalizeModelID(t *testing.T) {
	tests := map[string]string{
		"TheBloke/Mistral-7B-GGUF":                                  "TheBloke/Mistral-7B-GGUF",
		"https://huggingface.co/TheBloke/Mistral-7B-GGUF":           "TheBloke/Mistral-7B-GGUF",
		"https://huggingface.co/TheBloke/Mistral-7B-GGUF/tree/main": "TheBloke/Mistral-7B-GGUF",
		"http://huggingface.co/gpt2/":                               "gpt2",
		"huggingface.co/microsoft/phi-2":                            "microsoft/phi-2",
		"gpt2":                                                      "gpt2",
		"https://huggingface.co/org/model/blob/main/README.md":      "org/model",
		"huggingface.co/org/model/resolve/main/model.gguf":          "org/model",
		"org/model/blob/v1.0/config.json":                           "org/model",
	}
	for input, want := range tests {
		assert.Equal(t, want, NormalizeModelID(input), input)
	}
}

func TestStripFrontmatter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "leading block", input: "---\nlicense: mit\ntags: [gguf]\n---\n# Title\nBody", want: "# Title\nBody"},
		{name: "crlf block", input: "---\r\nlicense: mit\r\n---\r\n# Title", want: "# Title"},
		{name: "no block", input: "# Title\n---\nnot frontmatter\n---\n", want: "# Title\n---\nnot frontmatter\n---\n"},
		{name: "unterminated", input: "---\nlicense: mit\n# Title", want: "---\nlicense: mit\n# Title"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFrontmatter(tt.input))
		})
	}
}

func TestLicenseOK(t *testing.T) {
	tests := []struct {
		license    string
		allowOther bool
		want       bool
	}{
		{"apache-2.0", false, true},
		{"MIT", false, true},
		{"bsd-3-clause", false, true},
		{"cc-by-4.0", false, true},
		{"creativeml-openrail-m", false, true},
		{"openrail++", false, true},
		{"other", true, true},
		{"OTHER", true, true},
		{"other", false, false},
		{"gpl-3.0", true, false},
		{"llama2", false, false},
		{"cc-by-nc-4.0", false, false},
		{"", true, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LicenseOK(tt.license, tt.allowOther), "%q allowOther=%v", tt.license, tt.allowOther)
	}
}

func TestIsActive(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsActive(now.AddDate(0, -1, 0), now))
	assert.True(t, IsActive(now.AddDate(0, -6, 1), now))
	assert.False(t, IsActive(now.AddDate(0, -6, 0), now))
	assert.False(t, IsActive(now.AddDate(-1, 0, 0), now))
	assert.False(t, IsActive(time.Time{}, now))
}

func TestDetectKeywords(t *testing.T) {
	found := DetectKeywords("This model uses GGUF quantization for edge deployment")
	assert.Subset(t, found, []string{"gguf", "quantization", "edge"})

	// vocabulary order, substring semantics
	assert.Equal(t, []string{"quantization", "gguf", "edge"}, found)
	assert.Equal(t, []string{"distilled", "small"}, DetectKeywords("A DISTILLED smaller model"))

	empty := DetectKeywords("A large language model")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestHasWeightFile(t *testing.T) {
	assert.True(t, HasWeightFile([]string{"config.json", "model.safetensors"}))
	assert.True(t, HasWeightFile([]string{"pytorch_model.bin"}))
	assert.True(t, HasWeightFile([]string{"model.Q4_K_M.GGUF"}))
	assert.True(t, HasWeightFile([]string{"model.onnx"}))
	assert.True(t, HasWeightFile([]string{"model.tflite"}))
	assert.False(t, HasWeightFile([]string{"config.json", "README.md", "tokenizer.json"}))
	assert.False(t, HasWeightFile(nil))
}
