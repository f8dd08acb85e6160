// internal/builder/builder.go
package builder

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"rough/internal/config"
	"rough/internal/frontmatter"
	"rough/internal/logger"
	"rough/internal/render"
	"rough/internal/util"
)

const (
	ProjectsDir = "projects"
	StaticDir   = "static"

	IndexTemplate   = "index.html"
	ProjectTemplate = "project.html"
)

var (
	// ErrMissingTemplate is returned when index.html or project.html is
	// needed but the source directory does not define it.
	ErrMissingTemplate = errors.New("missing template")
	// ErrOutputContainsSource is returned when the output directory is the
	// source directory or one of its ancestors.
	ErrOutputContainsSource = errors.New("output directory contains the source directory")
)

type BuildOptions struct {
	// SrcDir is the site source: templates, projects/ and static/.
	SrcDir string
	// OutDir receives the generated site.
	OutDir string
	Config config.Config
	Logger *slog.Logger
}

// Result summarizes a build.
type Result struct {
	Pages    int
	Drafts   int
	Duration time.Duration
}

// BuildSite copies static assets, renders every project and then the index.
func BuildSite(opts BuildOptions) (Result, error) {
	start := time.Now()
	log := logger.OrNop(opts.Logger)

	if err := prepareOutput(opts.SrcDir, opts.OutDir, opts.Config.Build.Clean, log); err != nil {
		return Result{}, err
	}

	if err := copyStaticAssets(filepath.Join(opts.SrcDir, StaticDir), filepath.Join(opts.OutDir, StaticDir), log); err != nil {
		return Result{}, fmt.Errorf("failed to copy static assets: %w", err)
	}

	tmpl, err := LoadTemplates(opts.SrcDir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load templates: %w", err)
	}

	r := render.New(render.Options{Unsafe: opts.Config.Build.Unsafe, Logger: log})
	site := opts.Config.Site
	res := Result{}

	projects, drafts, err := renderProjects(r, opts, tmpl, log)
	if err != nil {
		return Result{}, err
	}
	res.Pages += len(projects)
	res.Drafts = drafts

	index := IndexPage{Projects: projects, Site: site, BaseHref: util.ComputeBaseHref(IndexTemplate)}
	if err := renderPage(tmpl, IndexTemplate, filepath.Join(opts.OutDir, IndexTemplate), index); err != nil {
		return Result{}, fmt.Errorf("failed to render index: %w", err)
	}
	res.Pages++

	res.Duration = time.Since(start)
	return res, nil
}

// prepareOutput creates outDir and, when clean is set, empties it.
func prepareOutput(srcDir, outDir string, clean bool, log *slog.Logger) error {
	if util.IsWithin(srcDir, outDir) {
		return fmt.Errorf("%w: %s contains %s", ErrOutputContainsSource, outDir, srcDir)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if !clean {
		return nil
	}

	log.Debug("cleaning destination directory", logger.Path(outDir))
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(outDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// renderProjects renders each regular file in <src>/projects, in file name
// order, to <out>/projects/<slug>.html. It returns the rendered projects and
// the number of drafts left out. Pages left in <out>/projects by earlier
// builds whose source is gone are removed.
func renderProjects(r *render.Renderer, opts BuildOptions, tmpl *template.Template, log *slog.Logger) ([]Project, int, error) {
	dir := filepath.Join(opts.SrcDir, ProjectsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("no projects directory", logger.Path(dir))
		entries = nil
	} else if err != nil {
		return nil, 0, err
	}

	var projects []Project
	drafts := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		p, err := RenderProject(r, entry.Name(), raw)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to process content for %s: %w", path, err)
		}
		if isDraft(p.Meta) && !opts.Config.Build.Drafts {
			log.Debug("skipping draft", logger.Path(path))
			drafts++
			continue
		}

		page := ProjectPage{Project: p, Site: opts.Config.Site, BaseHref: util.ComputeBaseHref(filepath.FromSlash(p.Href))}
		outPath := filepath.Join(opts.OutDir, filepath.FromSlash(p.Href))
		if err := renderPage(tmpl, ProjectTemplate, outPath, page); err != nil {
			return nil, 0, fmt.Errorf("failed to render page %s: %w", path, err)
		}
		log.Debug("rendered project", logger.Path(outPath))
		projects = append(projects, p)
	}

	if err := pruneProjectPages(filepath.Join(opts.OutDir, ProjectsDir), projects, log); err != nil {
		return nil, 0, err
	}
	return projects, drafts, nil
}

// RenderProject turns the raw contents of the project file name into a
// Project: front matter is decoded into Meta and the body rendered to HTML.
func RenderProject(r *render.Renderer, name string, raw []byte) (Project, error) {
	if !utf8.Valid(raw) {
		return Project{}, errors.New("content file is not valid UTF-8")
	}
	meta, body, err := frontmatter.Parse(raw)
	if err != nil {
		return Project{}, err
	}
	html, err := r.Render([]byte(body))
	if err != nil {
		return Project{}, err
	}
	slug := strings.TrimSuffix(name, filepath.Ext(name))
	return Project{
		Meta:    meta,
		Content: template.HTML(html),
		Slug:    slug,
		Href:    ProjectsDir + "/" + slug + ".html",
	}, nil
}

// pruneProjectPages removes the .html files in dir that are not pages of
// projects.
func pruneProjectPages(dir string, projects []Project, log *slog.Logger) error {
	keep := make(map[string]bool, len(projects))
	for _, p := range projects {
		keep[p.Slug+".html"] = true
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || filepath.Ext(name) != ".html" || keep[name] {
			continue
		}
		stale := filepath.Join(dir, name)
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("failed to remove stale page %s: %w", stale, err)
		}
		log.Debug("removed stale page", logger.Path(stale))
	}
	return nil
}

// copyStaticAssets copies the static directory tree verbatim. A missing
// static directory is skipped.
func copyStaticAssets(staticDir, outDir string, log *slog.Logger) error {
	if _, err := os.Stat(staticDir); errors.Is(err, fs.ErrNotExist) {
		log.Debug("no static directory", logger.Path(staticDir))
		return nil
	}
	return filepath.WalkDir(staticDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(outDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, dest)
	})
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// renderPage executes the named template and writes the result to outPath.
// Nothing is written if execution fails.
func renderPage(tmpl *template.Template, name, outPath string, data any) error {
	t := tmpl.Lookup(name)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

// LoadTemplates parses every *.html file directly inside srcDir. Templates
// are named by file name, so pages can include each other with
// {{ template "header.html" . }}.
func LoadTemplates(srcDir string) (*template.Template, error) {
	pattern := filepath.Join(srcDir, "*.html")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no templates match %s", ErrMissingTemplate, pattern)
	}
	return template.ParseFiles(matches...)
}
