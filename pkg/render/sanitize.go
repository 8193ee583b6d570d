package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans free text before it enters form state.
type Sanitizer interface {
	Sanitize(text string) string
}

// SanitizerFunc adapts a function to Sanitizer.
type SanitizerFunc func(string) string

// Sanitize implements Sanitizer.
func (f SanitizerFunc) Sanitize(text string) string { return f(text) }

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// TextSanitizer strips all markup and restores the entities the policy
// escapes, so "Q&A" stays "Q&A" while "<script>" and "&lt;script&gt;"
// disappear.
func TextSanitizer() Sanitizer {
	return SanitizerFunc(sanitizeText)
}

// NopSanitizer returns text unchanged.
func NopSanitizer() Sanitizer {
	return SanitizerFunc(func(text string) string { return text })
}

// maxSanitizePasses bounds the unescape loop for deeply entity-encoded input.
const maxSanitizePasses = 8

// sanitizeText strips markup until unescaping the policy output reveals no
// more of it, so entity-encoded tags are removed as well. Input that is still
// changing after maxSanitizePasses is returned in its escaped form.
func sanitizeText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	policy := strictPolicy()
	text := raw
	for range maxSanitizePasses {
		next := html.UnescapeString(policy.Sanitize(text))
		if next == text {
			return next
		}
		text = next
	}
	return policy.Sanitize(text)
}

func strictPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
