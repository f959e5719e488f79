package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// visibleText runs raw through policy and decodes the entities it escaped, so the
// stored value is the text a reader sees rather than its HTML encoding.
func visibleText(policy *bluemonday.Policy, raw string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(raw)))
}
