package analyzers

import "regexp"

type secretPattern struct {
	kind string
	re   *regexp.Regexp
}

// Secret patterns are matched case-insensitively per line.
var secretPatterns = []secretPattern{
	{"api_key", regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*["']([^"']{20,})["']`)},
	{"api_key", regexp.MustCompile(`(?i)key\s*[=:]\s*["']([A-Za-z0-9]{32,})["']`)},
	{"password", regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*["']([^"']{8,})["']`)},
	{"secret", regexp.MustCompile(`(?i)(secret|token)\s*[=:]\s*["']([^"']{20,})["']`)},
	{"aws_key", regexp.MustCompile(`(?i)(AKIA[0-9A-Z]{16})`)},
	{"private_key", regexp.MustCompile(`(?i)-----BEGIN (RSA|EC|OPENSSH|DSA|PGP) PRIVATE KEY-----`)},
	{"github_token", regexp.MustCompile(`(?i)(ghp_[a-zA-Z0-9]{36})`)},
	{"slack_token", regexp.MustCompile(`(?i)(xox[pboa]-[0-9]{12}-[0-9]{12}-[a-zA-Z0-9]{24,32})`)},
}

// Matches containing any of these are treated as placeholders.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)your_key_here`),
	regexp.MustCompile(`(?i)your_.*_here`),
	regexp.MustCompile(`(?i)example`),
	regexp.MustCompile(`(?i)dummy`),
	regexp.MustCompile(`(?i)fake`),
	regexp.MustCompile(`(?i)test`),
	regexp.MustCompile(`(?i)placeholder`),
	regexp.MustCompile(`<.*>`),
	regexp.MustCompile(`\{.*\}`),
}

// Files scanned for secrets.
var secretScanExtensions = []string{".py", ".js", ".ts", ".env", ".yaml", ".yml", ".json"}

// Entries .gitignore must contain.
var requiredGitignorePatterns = []string{".env", "*.key", "credentials.json", "secrets.yaml", "*.pem"}

func isPlaceholder(match string) bool {
	for _, re := range placeholderPatterns {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}
