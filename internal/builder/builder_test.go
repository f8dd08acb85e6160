package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rough/internal/config"
	"rough/internal/frontmatter"
	"rough/internal/render"
)

const (
	indexTmpl   = `<ul>{{ range .Projects }}<li><a href="{{ .Href }}">{{ with .Meta.title }}{{ . }}{{ end }}</a></li>{{ end }}</ul>{{ template "footer.html" . }}`
	projectTmpl = `<title>{{ .Meta.title }} | {{ .Site.Title }}</title><link href="{{ .BaseHref }}static/style.css"><main>{{ .Content }}</main>`
	footerTmpl  = `<footer>{{ .Site.Title }}</footer>`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// newSite lays out a source tree with templates, two projects (one a
// draft) and a static asset.
func newSite(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "index.html"), indexTmpl)
	writeFile(t, filepath.Join(src, "project.html"), projectTmpl)
	writeFile(t, filepath.Join(src, "footer.html"), footerTmpl)
	writeFile(t, filepath.Join(src, "projects", "alpha.md"),
		"---\ntitle: Alpha\n---\n![cover](cover.png)\n\nSee [beta](beta.md).\n")
	writeFile(t, filepath.Join(src, "projects", "beta.md"),
		"---\ntitle: Beta\ndraft: true\n---\nWork in progress.\n")
	writeFile(t, filepath.Join(src, "projects", "gamma.md"), "No front matter here.\n")
	writeFile(t, filepath.Join(src, "projects", ".hidden.md"), "---\ntitle: [broken\n")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "projects", "nested"), 0o755))
	writeFile(t, filepath.Join(src, "static", "style.css"), "body{}")
	writeFile(t, filepath.Join(src, "static", "img", "cover.png"), "png")
	return src
}

func build(t *testing.T, src, out string, cfg config.Config) Result {
	t.Helper()
	res, err := BuildSite(BuildOptions{SrcDir: src, OutDir: out, Config: cfg})
	require.NoError(t, err)
	return res
}

func TestBuildSite_RendersProjectsIndexAndStatic(t *testing.T) {
	src := newSite(t)
	out := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Site.Title = "Rough"

	res := build(t, src, out, cfg)
	require.Equal(t, 3, res.Pages, "two projects and the index")
	require.Equal(t, 1, res.Drafts)

	alpha := readFile(t, filepath.Join(out, "projects", "alpha.html"))
	require.Contains(t, alpha, "<title>Alpha | Rough</title>")
	require.Contains(t, alpha, `href="../static/style.css"`)
	require.Contains(t, alpha, `<img src="cover.png" alt="cover">`)
	require.NotContains(t, alpha, "<p><img")
	require.Contains(t, alpha, `href="beta.html"`)

	gamma := readFile(t, filepath.Join(out, "projects", "gamma.html"))
	require.Contains(t, gamma, "<p>No front matter here.</p>")

	require.NoFileExists(t, filepath.Join(out, "projects", "beta.html"))
	require.NoFileExists(t, filepath.Join(out, "projects", ".hidden.html"))

	index := readFile(t, filepath.Join(out, "index.html"))
	require.Contains(t, index, `<li><a href="projects/alpha.html">Alpha</a></li><li><a href="projects/gamma.html"></a></li>`)
	require.Contains(t, index, "<footer>Rough</footer>")

	require.Equal(t, "body{}", readFile(t, filepath.Join(out, "static", "style.css")))
	require.Equal(t, "png", readFile(t, filepath.Join(out, "static", "img", "cover.png")))
}

func TestBuildSite_DraftsIncludedWhenEnabled(t *testing.T) {
	src := newSite(t)
	out := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Build.Drafts = true

	res := build(t, src, out, cfg)
	require.Equal(t, 4, res.Pages)
	require.Zero(t, res.Drafts)
	require.FileExists(t, filepath.Join(out, "projects", "beta.html"))
}

func TestBuildSite_UnsafeKeepsRawHTML(t *testing.T) {
	src := newSite(t)
	writeFile(t, filepath.Join(src, "projects", "raw.md"), "<video src=\"v.mp4\" autoplay></video>\n")

	safeOut := t.TempDir()
	build(t, src, safeOut, config.NewDefaultConfig())
	require.NotContains(t, readFile(t, filepath.Join(safeOut, "projects", "raw.html")), "<video")

	unsafeOut := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Build.Unsafe = true
	build(t, src, unsafeOut, cfg)
	require.Contains(t, readFile(t, filepath.Join(unsafeOut, "projects", "raw.html")), `<video src="v.mp4" autoplay></video>`)
}

func TestBuildSite_CleanRemovesStaleFiles(t *testing.T) {
	src := newSite(t)
	out := t.TempDir()
	writeFile(t, filepath.Join(out, "stale.html"), "old")

	build(t, src, out, config.NewDefaultConfig())
	require.FileExists(t, filepath.Join(out, "stale.html"))

	cfg := config.NewDefaultConfig()
	cfg.Build.Clean = true
	build(t, src, out, cfg)
	require.NoFileExists(t, filepath.Join(out, "stale.html"))
	require.FileExists(t, filepath.Join(out, "index.html"))
}

func TestBuildSite_MinimalSite(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "index.html"), `{{ len .Projects }} projects`)
	out := filepath.Join(t.TempDir(), "public")

	res := build(t, src, out, config.NewDefaultConfig())
	require.Equal(t, 1, res.Pages)
	require.Equal(t, "0 projects", readFile(t, filepath.Join(out, "index.html")))
}

func TestBuildSite_Errors(t *testing.T) {
	t.Run("missing project template", func(t *testing.T) {
		src := newSite(t)
		require.NoError(t, os.Remove(filepath.Join(src, "project.html")))

		_, err := BuildSite(BuildOptions{SrcDir: src, OutDir: t.TempDir()})
		require.ErrorIs(t, err, ErrMissingTemplate)
	})

	t.Run("no templates at all", func(t *testing.T) {
		_, err := BuildSite(BuildOptions{SrcDir: t.TempDir(), OutDir: t.TempDir()})
		require.ErrorIs(t, err, ErrMissingTemplate)
	})

	t.Run("invalid front matter names the file", func(t *testing.T) {
		src := newSite(t)
		bad := filepath.Join(src, "projects", "bad.md")
		writeFile(t, bad, "---\ntitle: [unclosed\n---\nbody\n")

		_, err := BuildSite(BuildOptions{SrcDir: src, OutDir: t.TempDir()})
		require.ErrorIs(t, err, frontmatter.ErrInvalidFrontMatter)
		require.ErrorContains(t, err, bad)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		src := newSite(t)
		writeFile(t, filepath.Join(src, "projects", "bin.md"), "\xff\xfe")

		_, err := BuildSite(BuildOptions{SrcDir: src, OutDir: t.TempDir()})
		require.ErrorContains(t, err, "not valid UTF-8")
	})

	t.Run("output is source", func(t *testing.T) {
		src := newSite(t)
		_, err := BuildSite(BuildOptions{SrcDir: src, OutDir: src})
		require.ErrorIs(t, err, ErrOutputContainsSource)
	})
}

func TestBuildSite_CleanNeverRemovesSourceInsideOutput(t *testing.T) {
	parent := t.TempDir()
	src := filepath.Join(parent, "site")
	require.NoError(t, os.CopyFS(src, os.DirFS(newSite(t))))
	writeFile(t, filepath.Join(parent, "keep.txt"), "mine")

	cfg := config.NewDefaultConfig()
	cfg.Build.Clean = true
	_, err := BuildSite(BuildOptions{SrcDir: src, OutDir: parent, Config: cfg})
	require.ErrorIs(t, err, ErrOutputContainsSource)

	require.FileExists(t, filepath.Join(src, "index.html"))
	require.FileExists(t, filepath.Join(src, "projects", "alpha.md"))
	require.FileExists(t, filepath.Join(parent, "keep.txt"))
}

func TestBuildSite_OutputInsideSource(t *testing.T) {
	src := newSite(t)
	out := filepath.Join(src, "public")
	cfg := config.NewDefaultConfig()
	cfg.Build.Clean = true

	build(t, src, out, cfg)
	build(t, src, out, cfg)
	require.FileExists(t, filepath.Join(out, "projects", "alpha.html"))
	require.FileExists(t, filepath.Join(src, "index.html"))
}

func TestBuildSite_RemovesPagesOfDeletedProjects(t *testing.T) {
	src := newSite(t)
	out := t.TempDir()
	writeFile(t, filepath.Join(out, "projects", "notes.txt"), "kept")

	build(t, src, out, config.NewDefaultConfig())
	require.FileExists(t, filepath.Join(out, "projects", "gamma.html"))

	require.NoError(t, os.Rename(filepath.Join(src, "projects", "gamma.md"), filepath.Join(src, "projects", "delta.md")))
	build(t, src, out, config.NewDefaultConfig())

	require.NoFileExists(t, filepath.Join(out, "projects", "gamma.html"))
	require.FileExists(t, filepath.Join(out, "projects", "delta.html"))
	require.FileExists(t, filepath.Join(out, "projects", "alpha.html"))
	require.FileExists(t, filepath.Join(out, "projects", "notes.txt"))
}

func TestRenderProject(t *testing.T) {
	r := render.New(render.Options{})

	p, err := RenderProject(r, "cover.md", []byte("---\ntitle: Cover\n---\n![c](c.png)\n"))
	require.NoError(t, err)
	require.Equal(t, "cover", p.Slug)
	require.Equal(t, "projects/cover.html", p.Href)
	require.Equal(t, "Cover", p.Meta["title"])
	require.Equal(t, `<img src="c.png" alt="c">`, strings.TrimSpace(string(p.Content)))

	p, err = RenderProject(r, "plain.txt", []byte("hello\n"))
	require.NoError(t, err)
	require.Empty(t, p.Meta)
	require.Equal(t, "plain", p.Slug)

	_, err = RenderProject(r, "bin.md", []byte("\xff"))
	require.ErrorContains(t, err, "not valid UTF-8")

	_, err = RenderProject(r, "bad.md", []byte("---\ntitle: [x\n---\n"))
	require.ErrorIs(t, err, frontmatter.ErrInvalidFrontMatter)
}
