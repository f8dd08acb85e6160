// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"rough/internal/builder"
	"rough/internal/config"
	"rough/internal/util"
)

const (
	ArchetypeDir  = "archetypes"
	archetypeFile = "project.md"
)

// ErrExists is returned instead of overwriting an existing file.
var ErrExists = errors.New("already exists")

// CreateSite writes a starter source tree into dir and returns the files
// it created. dir may exist but must not contain any of those files.
func CreateSite(dir string) ([]string, error) {
	files := map[string]string{
		"site.yaml":                                      siteYamlContent,
		builder.IndexTemplate:                            indexHtmlContent,
		builder.ProjectTemplate:                          projectHtmlContent,
		"header.html":                                    headerHtmlContent,
		filepath.Join(builder.StaticDir, "style.css"):    staticCssContent,
		filepath.Join(builder.ProjectsDir, "example.md"): exampleProjectContent,
		filepath.Join(ArchetypeDir, archetypeFile):       archetypeContent,
	}
	for path := range files {
		if _, err := os.Stat(filepath.Join(dir, path)); err == nil {
			return nil, fmt.Errorf("%s: %w", filepath.Join(dir, path), ErrExists)
		}
	}

	var created []string
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write file %s: %w", path, err)
		}
		created = append(created, full)
	}
	return created, nil
}

// CreateProject writes projects/<slug>.md under srcDir from the site's
// archetype, or the built-in one when the site has none, and returns its
// path.
func CreateProject(srcDir, title string) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable characters for a file name", title)
	}
	site, err := config.LoadSiteConfig(srcDir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(srcDir, builder.ProjectsDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s: %w", path, ErrExists)
	}

	archetypePath := filepath.Join(srcDir, ArchetypeDir, archetypeFile)
	tmplBytes, err := os.ReadFile(archetypePath)
	if errors.Is(err, fs.ErrNotExist) {
		tmplBytes = []byte(archetypeContent)
	} else if err != nil {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(string(tmplBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		Title  string
		Author string
		Date   string
	}{
		Title:  title,
		Author: site.Site.Author,
		Date:   time.Now().Format(time.DateOnly),
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, output.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

const siteYamlContent = `title: My Projects
author: Your Name
baseurl: /
description: A portfolio rendered by rough.
`

const archetypeContent = `---
title: {{ printf "%q" .Title }}
author: {{ printf "%q" .Author }}
date: {{ .Date }}
draft: true
---

![Cover image](../static/cover.png)

Describe the project here.
`

const exampleProjectContent = `---
title: Example Project
summary: Shows what a project page looks like.
---

A paragraph that holds only an image renders as a bare image:

![A placeholder](https://placehold.co/600x400)

Link to [another project](example.md) with its Markdown file name.
`

const staticCssContent = `body {
  font-family: sans-serif;
  max-width: 700px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
main > img { display: block; max-width: 100%; margin: 1.5em auto; }
header { margin-bottom: 2em; }
.site-name { font-size: 0.9em; color: #777; font-style: italic; }
ul.projects { list-style: none; padding: 0; }
ul.projects li { margin-bottom: 1em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
`

const headerHtmlContent = `{{ define "header" }}
<header>
  <a class="site-name" href="{{ .BaseHref }}index.html">{{ .Site.Title }}</a>
</header>
{{ end }}`

const indexHtmlContent = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Site.Title }}</title>
  <meta name="description" content="{{ .Site.Description }}">
  <link rel="stylesheet" href="{{ .BaseHref }}static/style.css">
</head>
<body>
  {{ template "header" . }}
  <main>
    <ul class="projects">
    {{ range .Projects }}
      <li>
        <a href="{{ .Href }}">{{ with .Meta.title }}{{ . }}{{ else }}{{ .Slug }}{{ end }}</a>
        {{ with .Meta.summary }}<p>{{ . }}</p>{{ end }}
      </li>
    {{ end }}
    </ul>
  </main>
  <footer>&copy; {{ .Site.Author }}</footer>
</body>
</html>
`

const projectHtmlContent = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ with .Meta.title }}{{ . }} | {{ end }}{{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .BaseHref }}static/style.css">
</head>
<body>
  {{ template "header" . }}
  <main>
    {{ .Content }}
  </main>
  <footer>&copy; {{ .Site.Author }}</footer>
</body>
</html>
`
