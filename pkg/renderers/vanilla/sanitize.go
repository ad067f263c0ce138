package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips all markup from catalog-provided text (function and
// metric descriptions) before it reaches the HTML snapshot. The catalog is an
// external document; its strings are untrusted here.
func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(trimmed))
}
