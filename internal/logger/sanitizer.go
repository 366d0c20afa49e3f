package logger

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Sanitizer masks credentials before log lines leave the SDK.
//
// Limitations:
//   - SanitizeArgs() only masks values whose key looks sensitive
//     (api_key, token, secret, ...)
//   - Credentials embedded in values under non-sensitive keys are only
//     caught by the message-level patterns, e.g. bearer headers and
//     key=value query fragments
type Sanitizer struct {
	mu       sync.RWMutex
	patterns []SanitizeRule
}

// SanitizeRule is a single masking rule
type SanitizeRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewSanitizer creates a sanitizer with the default rules
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: defaultSanitizeRules(),
	}
}

// defaultSanitizeRules returns the built-in masking rules
func defaultSanitizeRules() []SanitizeRule {
	return []SanitizeRule{
		// API keys and tokens in query strings or config dumps
		{regexp.MustCompile(`(?i)api[_-]?key=\S+`), "api_key=***"},
		{regexp.MustCompile(`(?i)token=\S+`), "token=***"},
		{regexp.MustCompile(`(?i)secret=\S+`), "secret=***"},

		// Authorization headers
		{regexp.MustCompile(`(?i)bearer\s+\S+`), "bearer ***"},
		{regexp.MustCompile(`(?i)authorization:\s*\S+`), "authorization: ***"},

		// OAuth client credentials
		{regexp.MustCompile(`(?i)client[_-]?secret=\S+`), "client_secret=***"},

		// SandGrid key format: sg-<hex>
		{regexp.MustCompile(`\bsg-[0-9a-fA-F]{8,}\b`), "sg-***"},
	}
}

// Sanitize applies all masking rules to a string
func (s *Sanitizer) Sanitize(input string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := input
	for _, rule := range s.patterns {
		result = rule.Pattern.ReplaceAllString(result, rule.Replacement)
	}
	return result
}

// SanitizeArgs masks values of sensitive keys in key-value logging args
func (s *Sanitizer) SanitizeArgs(args []any) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}

		if s.isSensitiveKey(key) {
			switch v := result[i+1].(type) {
			case string:
				result[i+1] = s.maskValue(v)
			case error:
				result[i+1] = s.maskValue(v.Error())
			default:
				// other types pass through (documented limitation)
				continue
			}
		}
	}

	return result
}

// isSensitiveKey reports whether a key name looks credential-bearing
func (s *Sanitizer) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	sensitiveKeys := []string{
		"api_key", "apikey", "key",
		"token", "secret", "credential",
		"auth", "password",
	}

	for _, sk := range sensitiveKeys {
		if strings.Contains(lowerKey, sk) {
			return true
		}
	}
	return false
}

// maskValue masks a value, keeping one character of context at each end
func (s *Sanitizer) maskValue(value string) string {
	if len(value) <= 2 {
		return "***"
	}
	if len(value) <= 8 {
		return fmt.Sprintf("%s***", string(value[0]))
	}
	return fmt.Sprintf("%s***%s", string(value[0]), string(value[len(value)-1]))
}

// AddRule registers an additional masking rule
func (s *Sanitizer) AddRule(pattern string, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	s.patterns = append(s.patterns, SanitizeRule{
		Pattern:     re,
		Replacement: replacement,
	})
	return nil
}
