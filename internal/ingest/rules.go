package ingest

import (
	"regexp"
	"strings"
	"time"
)

// EfficiencyKeywords is the vocabulary searched for in a tool's text, in report order
var EfficiencyKeywords = []string{
	"quantization", "quantized", "gguf", "awq", "gptq", "exl2", "hqq",
	"distillation", "distilled",
	"pruning", "pruned",
	"sparse", "sparsity",
	"edge", "on-device", "mobile", "android", "ios",
	"optimized", "efficient", "fast", "lightweight", "small",
}

// PermissiveLicenses allow commercial use and modification
var PermissiveLicenses = []string{
	"apache-2.0", "mit", "bsd-3-clause", "bsd-2-clause", "cc-by-4.0", "openrail", "openrail++",
}

// WeightExtensions mark a file as model weights
var WeightExtensions = []string{".safetensors", ".bin", ".gguf", ".onnx", ".tflite"}

const (
	FlagNoWeights = "No model weights found"

	// otherLicense is GitHub's key for a license it could not classify
	otherLicense = "other"

	activityWindowMonths = 6
)

var (
	githubRepoPattern = regexp.MustCompile(`github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)`)
	frontmatter       = regexp.MustCompile(`^---\r?\n[\s\S]*?\r?\n---\r?\n`)

	huggingFacePrefixes = []string{
		"https://huggingface.co/",
		"http://huggingface.co/",
		"https://www.huggingface.co/",
		"huggingface.co/",
	}
)

// IsGitHub reports whether an identifier addresses GitHub. Anything else is
// treated as a Hugging Face model id.
func IsGitHub(identifier string) bool {
	return strings.Contains(identifier, "github.com")
}

// ParseGitHub extracts owner and repository from a GitHub URL
func ParseGitHub(identifier string) (owner, repo string, ok bool) {
	m := githubRepoPattern.FindStringSubmatch(identifier)
	if m == nil {
		return "", "", false
	}

	owner = m[1]
	repo = strings.TrimSuffix(m[2], ".git")
	if isDotSegment(owner) || isDotSegment(repo) {
		return "", "", false
	}
	return owner, repo, true
}

func isDotSegment(s string) bool {
	return s == "" || strings.Trim(s, ".") == ""
}

// hubPathMarkers introduce the ref and file path in hub page URLs
var hubPathMarkers = []string{"/tree/", "/blob/", "/resolve/"}

// NormalizeModelID strips the hub URL prefix and any "/tree/", "/blob/" or
// "/resolve/" ref path
func NormalizeModelID(identifier string) string {
	id := identifier
	for _, prefix := range huggingFacePrefixes {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimPrefix(id, prefix)
			break
		}
	}
	for _, marker := range hubPathMarkers {
		if i := strings.Index(id, marker); i >= 0 {
			id = id[:i]
		}
	}
	return strings.TrimSuffix(id, "/")
}

// StripFrontmatter removes a leading YAML frontmatter block
func StripFrontmatter(readme string) string {
	return frontmatter.ReplaceAllString(readme, "")
}

// LicenseOK reports whether a declared license is on the permissive
// allow-list. allowOther admits GitHub's unclassified "other" key.
func LicenseOK(license string, allowOther bool) bool {
	l := strings.ToLower(strings.TrimSpace(license))
	if l == "" {
		return false
	}
	if allowOther && l == otherLicense {
		return true
	}
	for _, allowed := range PermissiveLicenses {
		if strings.Contains(l, allowed) {
			return true
		}
	}
	return false
}

// IsActive reports whether last falls within six months before now
func IsActive(last, now time.Time) bool {
	if last.IsZero() {
		return false
	}
	return last.After(now.AddDate(0, -activityWindowMonths, 0))
}

// DetectKeywords returns the vocabulary words found in text, case-insensitively
func DetectKeywords(text string) []string {
	content := strings.ToLower(text)
	found := make([]string, 0)
	for _, k := range EfficiencyKeywords {
		if strings.Contains(content, k) {
			found = append(found, k)
		}
	}
	return found
}

// HasWeightFile reports whether any filename carries a weight extension
func HasWeightFile(filenames []string) bool {
	for _, name := range filenames {
		lower := strings.ToLower(name)
		for _, ext := range WeightExtensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
	}
	return false
}
