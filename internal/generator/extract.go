// internal/generator/extract.go
package generator

import "strings"

const (
	openFence  = "```html\n"
	closeFence = "```"
)

// ExtractHTML returns the text strictly between the first ```html fence
// and the nearest closing fence that follows it. It applies equally to
// the cumulative buffer during streaming (live preview) and to the
// finalized message (persistence). Returns false when either fence is
// missing or the closing fence precedes the opening one.
func ExtractHTML(text string) (string, bool) {
	start := strings.Index(text, openFence)
	if start < 0 {
		return "", false
	}
	start += len(openFence)

	end := strings.Index(text[start:], closeFence)
	if end < 0 {
		return "", false
	}
	return text[start : start+end], true
}
