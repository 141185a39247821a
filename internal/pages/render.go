package pages

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/matsen/pubsync/internal/publication"
)

// ErrPageExists indicates a page file already occupies a nickname.
var ErrPageExists = errors.New("page already exists")

// Template renders publication pages. The placeholder set is fixed:
// title, nickname, authors, year, journal, volume, image, issue,
// pages, pmcid, doi, pmid, abstract. A template referencing anything
// else fails at render time instead of emitting an empty string.
type Template struct {
	tmpl *template.Template
}

// LoadTemplate reads and parses the page template at path.
func LoadTemplate(path string) (*Template, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	t, err := NewTemplate(string(src))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return t, nil
}

// NewTemplate parses page template source.
func NewTemplate(src string) (*Template, error) {
	tmpl, err := template.New("page").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

// Render fills the template from p. Absent optional fields render as
// empty strings. Double quotes in the title become single quotes so
// the quoted front-matter line stays parseable.
func (t *Template) Render(p publication.Publication) (string, error) {
	vars := map[string]string{
		"title":    strings.ReplaceAll(p.Title, `"`, "'"),
		"nickname": Nickname(p),
		"authors":  strings.Join(p.Authors, ", "),
		"year":     strconv.Itoa(p.Year),
		"journal":  p.Journal,
		"volume":   p.Volume,
		"image":    ImagePath(p.Journal),
		"issue":    p.Issue,
		"pages":    p.Pages,
		"pmcid":    p.PMCID,
		"doi":      p.DOI,
		"pmid":     p.PMID,
		"abstract": p.Abstract,
	}

	var b strings.Builder
	if err := t.tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("rendering page for PMID %s: %w", p.PMID, err)
	}
	return b.String(), nil
}

// WritePage creates <dir>/<nickname>.md holding content. An existing
// file is never overwritten; the collision comes back as ErrPageExists
// for the caller to report.
func WritePage(dir, nickname, content string) (string, error) {
	path := filepath.Join(dir, nickname+".md")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPageExists, path)
		}
		return "", fmt.Errorf("creating page: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return "", fmt.Errorf("writing page: %w", err)
	}

	return path, nil
}
