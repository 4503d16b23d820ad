package preview

import (
	"fmt"
	"html/template"
	"io"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// CommentPreview is one line comment as it would be posted.
type CommentPreview struct {
	Anchor string // "path" or "path:line"
	HTML   template.HTML
}

type pageData struct {
	Title    string
	Summary  template.HTML
	Comments []CommentPreview
}

var pageTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 980px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
section { border: 1px solid #d0d7de; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; }
.anchor { font-family: ui-monospace, monospace; font-size: 0.85rem; color: #59636e; margin-bottom: 0.5rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 4px 8px; }
pre { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
</style>
</head>
<body>
<section class="summary">
{{.Summary}}
</section>
{{range .Comments}}<section class="comment">
<div class="anchor">{{.Anchor}}</div>
{{.HTML}}
</section>
{{end}}</body>
</html>
`))

// WritePage writes a self-contained HTML document holding the rendered
// summary followed by every line comment. Markdown is sanitized before it is
// marked safe for the template.
func WritePage(w io.Writer, title, summary string, comments []model.ReviewComment) error {
	data := pageData{
		Title:   title,
		Summary: template.HTML(RenderMarkdown(summary)), //nolint:gosec // sanitized by bluemonday
	}
	for _, c := range comments {
		anchor := c.Path
		if c.Line > 0 {
			anchor = fmt.Sprintf("%s:%d", c.Path, c.Line)
		}
		data.Comments = append(data.Comments, CommentPreview{
			Anchor: anchor,
			HTML:   template.HTML(RenderMarkdown(c.Body)), //nolint:gosec // sanitized by bluemonday
		})
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering preview page: %w", err)
	}
	return nil
}
