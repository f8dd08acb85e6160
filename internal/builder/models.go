// internal/builder/models.go
package builder

import (
	"html/template"

	"rough/internal/config"
)

// Project is one rendered document from the projects directory.
type Project struct {
	// Meta is the decoded front matter, empty when the document has none.
	Meta map[string]any
	// Content is the rendered Markdown body.
	Content template.HTML
	// Slug is the source file name without its extension.
	Slug string
	// Href is the page path relative to the site root, e.g. "projects/a.html".
	Href string
}

// ProjectPage is passed to project.html.
type ProjectPage struct {
	Project
	Site     config.SiteConfig
	BaseHref string
}

// IndexPage is passed to index.html. Projects are in file name order.
type IndexPage struct {
	Projects []Project
	Site     config.SiteConfig
	BaseHref string
}

func isDraft(meta map[string]any) bool {
	draft, _ := meta["draft"].(bool)
	return draft
}
