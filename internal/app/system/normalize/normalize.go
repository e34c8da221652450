// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// QueryParam trims surrounding whitespace from a query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
