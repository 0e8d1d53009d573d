package extraction

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultTagRules maps a tag to keywords that indicate it in learning text
// or file paths.
var DefaultTagRules = map[string][]string{
	"golang":     {".go", "go mod", "go build", "go test", "golang"},
	"python":     {".py", "pip", "pytest", "python", "django", "flask"},
	"typescript": {".ts", ".tsx", "typescript", "tsc"},
	"javascript": {".js", ".jsx", "npm", "node", "javascript"},
	"rust":       {".rs", "cargo", "rustc", "rust"},
	"java":       {".java", "maven", "gradle", "java"},

	"kubernetes": {"kubectl", "k8s", "helm", "kubernetes"},
	"terraform":  {".tf", "terraform", "tfstate", "tfvars"},
	"docker":     {"dockerfile", "docker-compose", "docker"},
	"git":        {"git ", "rebase", "merge conflict", ".gitignore"},

	"testing":     {"test", "coverage", "mock", "assert"},
	"security":    {"auth", "secret", "credential", "permission", "encrypt"},
	"performance": {"optimize", "slow", "cache", "latency", "performance"},
	"database":    {"database", "sql", "sqlite", "postgres", "mysql", "migration"},
	"ci":          {"github actions", ".github/workflows", "ci pipeline", "gitlab-ci"},
}

// Tagger infers tags from keywords.
type Tagger struct {
	rules map[string][]string
}

// NewTagger creates a Tagger. Empty rules select DefaultTagRules.
func NewTagger(rules map[string][]string) *Tagger {
	if len(rules) == 0 {
		rules = DefaultTagRules
	}
	return &Tagger{rules: rules}
}

// Infer returns the sorted tags whose keywords occur in content or in one of
// files (by extension, base name or path substring). Matching ignores case.
func (t *Tagger) Infer(content string, files []string) []string {
	content = strings.ToLower(content)
	found := map[string]bool{}

	for tag, keywords := range t.rules {
		for _, kw := range keywords {
			kw = strings.ToLower(kw)
			if strings.Contains(content, kw) || matchesFile(files, kw) {
				found[tag] = true
				break
			}
		}
	}

	tags := make([]string, 0, len(found))
	for tag := range found {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func matchesFile(files []string, kw string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		if strings.ToLower(filepath.Ext(f)) == kw || strings.ToLower(filepath.Base(f)) == kw || strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
