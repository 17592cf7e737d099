package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const (
	containerStyle = "font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background-color: #ffffff;"
	paragraphStyle = "color: #333333; line-height: 1.6; margin: 0 0 16px 0; font-size: 16px;"
)

// Paragraphs splits plain text into trimmed, non-blank lines.
func Paragraphs(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Paragraph renders one styled <p>. The text is HTML-escaped.
func Paragraph(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p style="`+paragraphStyle+`">`+templ.EscapeString(text)+`</p>`)
		return err
	})
}

// PreviewBody renders the fixed-width email container with one Paragraph per entry.
func PreviewBody(paragraphs []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div style="`+containerStyle+`">`); err != nil {
			return err
		}
		for _, p := range paragraphs {
			if err := Paragraph(p).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
