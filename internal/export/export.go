// internal/export/export.go
package export

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/quickgen/internal/types"
)

// Format selects the output representation of an exported artifact.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".html"
}

// Render produces the artifact's content in the requested format. HTML
// is the stored snapshot verbatim; markdown is a converted rendition
// for sharing in text form.
func Render(artifact *types.GeneratedArtifact, format Format) ([]byte, error) {
	switch format {
	case FormatHTML:
		return []byte(artifact.HTMLContent), nil
	case FormatMarkdown:
		md, err := htmltomarkdown.ConvertString(artifact.HTMLContent)
		if err != nil {
			return nil, fmt.Errorf("convert to markdown: %w", err)
		}
		return []byte(md), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}
