package util

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that CSS/JS links work correctly for pages at any depth.
// For example, a page at projects/a/b.html would get a BaseHref of "../../".
func ComputeBaseHref(relPath string) string {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, string(os.PathSeparator)) + 1
	return strings.Repeat("../", depth)
}

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9_ -]+`)
	dashes  = regexp.MustCompile(`[ -]+`)
)

// Slugify turns a title into a file name stem: "My First Post!" -> "my-first-post".
func Slugify(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "")
	s = dashes.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-")
}

// IsWithin reports whether path is dir or lies below it. Both are resolved
// to absolute paths first.
func IsWithin(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
