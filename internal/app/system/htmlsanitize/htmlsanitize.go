// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips unsafe markup from user-generated content
// before it is stored. Issue descriptions and comment bodies accept a
// limited HTML subset (the bluemonday UGC policy).
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugc = bluemonday.UGCPolicy()

// UGC sanitizes user-generated HTML, allowing the common formatting subset.
func UGC(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
