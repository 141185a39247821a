// Package config handles site configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the marker file identifying a site root.
const ConfigFile = "pubsync.yml"

// Defaults applied when pubsync.yml leaves the field empty. Paths are
// relative to the site root.
const (
	DefaultPapersDir = "_papers"
	DefaultTemplate  = "paper-template.md"
	DefaultExport    = "articles.csv"
	DefaultTool      = "pubsync"
)

// Author is one tracked author entry.
type Author struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"` // Earliest publication date, YYYY-MM-DD or YYYY/MM/DD
}

// Site is the configuration stored in pubsync.yml at the site root.
type Site struct {
	Email        string   `yaml:"email,omitempty"`
	Tool         string   `yaml:"tool,omitempty"`
	Authors      []Author `yaml:"authors"`
	ExcludePMIDs []string `yaml:"exclude_pmids,omitempty"`
	PapersDir    string   `yaml:"papers_dir,omitempty"`
	Template     string   `yaml:"template,omitempty"`
	Export       string   `yaml:"export,omitempty"`
}

// Load reads and validates pubsync.yml from the site root. Every
// tracked author needs a name and a well-formed start date; defaults
// fill the remaining fields.
func Load(root string) (*Site, error) {
	path := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(site.Authors) == 0 {
		return nil, fmt.Errorf("%s must track at least one author", ConfigFile)
	}
	for i, a := range site.Authors {
		if a.Name == "" {
			return nil, fmt.Errorf("author entry %d has no name", i+1)
		}
		if a.Start == "" {
			return nil, fmt.Errorf("author %q has no start date", a.Name)
		}
		if _, err := NormalizeStart(a.Start); err != nil {
			return nil, fmt.Errorf("author %q: %w", a.Name, err)
		}
	}

	if site.Tool == "" {
		site.Tool = DefaultTool
	}
	if site.PapersDir == "" {
		site.PapersDir = DefaultPapersDir
	}
	if site.Template == "" {
		site.Template = DefaultTemplate
	}
	if site.Export == "" {
		site.Export = DefaultExport
	}

	return &site, nil
}

// NormalizeStart converts a configured start date to the YYYY/MM/DD
// form Entrez date ranges use. Both - and / separators are accepted.
func NormalizeStart(start string) (string, error) {
	parts := strings.Split(strings.ReplaceAll(start, "-", "/"), "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("start date %q is not YYYY-MM-DD", start)
	}

	y, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return "", fmt.Errorf("start date %q has an invalid year", start)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return "", fmt.Errorf("start date %q has an invalid month", start)
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil || d < 1 || d > 31 {
		return "", fmt.Errorf("start date %q has an invalid day", start)
	}

	return fmt.Sprintf("%04d/%02d/%02d", y, m, d), nil
}

// EntrezStart returns the author's start date in Entrez form. Load has
// already validated the value, so a malformed date comes back empty.
func (a Author) EntrezStart() string {
	s, _ := NormalizeStart(a.Start)
	return s
}

// PapersPath returns the absolute papers directory for the site.
func (s *Site) PapersPath(root string) string {
	return filepath.Join(root, s.PapersDir)
}

// TemplatePath returns the absolute page template path.
func (s *Site) TemplatePath(root string) string {
	return filepath.Join(root, s.Template)
}

// ExportPath returns the absolute CSV export path.
func (s *Site) ExportPath(root string) string {
	return filepath.Join(root, s.Export)
}

// IsSite checks if the given path contains a pubsync site config.
func IsSite(root string) bool {
	info, err := os.Stat(filepath.Join(root, ConfigFile))
	return err == nil && !info.IsDir()
}

// FindSite walks up from the given path to the directory holding
// pubsync.yml. Returns the site root path or an error if not found.
func FindSite(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsSite(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not inside a site (no %s found)", ConfigFile)
		}
		abs = parent
	}
}
