package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

type scrubRule struct {
	re          *regexp.Regexp
	replacement string
}

// scrubRules run in order. Anthropic keys precede the generic sk- rule so
// they keep their own label, and assignment rules skip values that an
// earlier rule already redacted.
var scrubRules = []scrubRule{
	{
		regexp.MustCompile(`(OPENAI_API_KEY|ANTHROPIC_API_KEY|GITHUB_TOKEN|GITLAB_TOKEN|AWS_SECRET_ACCESS_KEY)\s*=\s*([^\s]+)`),
		"$1=[REDACTED:ENV_SECRET]",
	},
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-]{20,}`), "[REDACTED:ANTHROPIC_KEY]"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`), "[REDACTED:OPENAI_KEY]"},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?\s*([^"'\s\[][^"'\s]{7,})["']?`),
		"$1=[REDACTED:API_KEY]",
	},
	{regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.=]{20,}`), "[REDACTED:BEARER_TOKEN]"},
	{
		regexp.MustCompile(`(?i)(token|auth[_-]?token)\s*[:=]\s*["']?\s*([^"'\s\[][^"'\s]{7,})["']?`),
		"$1=[REDACTED:TOKEN]",
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?\s*([^"'\s\[][^"'\s]{3,})["']?`),
		"$1=[REDACTED:PASSWORD]",
	},
	{
		regexp.MustCompile(`(?i)-----BEGIN (RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----[\s\S]*?-----END (RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
		"[REDACTED:PRIVATE_KEY]",
	},
}

// detector is the gitleaks default rule set, compiled on first use.
var detector = sync.OnceValues(detect.NewDetectorDefaultConfig)

// ScrubSecrets redacts API keys, tokens, passwords and private keys from
// text bound for a third-party model.
//
// The pattern rules run first. The result is then scanned with the gitleaks
// default rules and every finding is replaced by [REDACTED:<RULE_ID>]. If the
// detector cannot be built, the pattern-scrubbed text is returned together
// with the error.
func ScrubSecrets(text string) (string, error) {
	text = scrubPatterns(text)

	d, err := detector()
	if err != nil {
		return text, fmt.Errorf("loading secret detector: %w", err)
	}
	for _, f := range d.DetectString(text) {
		if f.Secret == "" {
			continue
		}
		label := "[REDACTED:" + strings.ToUpper(strings.ReplaceAll(f.RuleID, "-", "_")) + "]"
		text = strings.ReplaceAll(text, f.Secret, label)
	}
	return text, nil
}

func scrubPatterns(text string) string {
	for _, r := range scrubRules {
		text = r.re.ReplaceAllString(text, r.replacement)
	}
	return text
}
