// Package pages reads and writes the publication pages of the site.
package pages

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/pubsync/internal/publication"
)

// Field returns the value of the first line in the file at path whose
// prefix is key + ":", with surrounding whitespace trimmed. Returns ""
// when no such line exists.
func Field(path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	prefix := key + ":"
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	return "", nil
}

// ScanResult summarizes a pages directory scan.
type ScanResult struct {
	Files int      `json:"files"` // Markdown files examined
	IDs   []string `json:"pmids"` // Distinct non-empty pmid values found
}

// Scan reads every Markdown file directly under dir and collects the
// PMIDs the pages declare. Pages without a pmid line (project pages,
// for example) count toward Files but contribute no identifier.
func Scan(dir string) (ScanResult, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return ScanResult{}, fmt.Errorf("listing pages: %w", err)
	}

	var res ScanResult
	seen := make(map[string]bool)
	for _, path := range matches {
		res.Files++
		pmid, err := Field(path, "pmid")
		if err != nil {
			return ScanResult{}, err
		}
		if pmid == "" || seen[pmid] {
			continue
		}
		seen[pmid] = true
		res.IDs = append(res.IDs, pmid)
	}

	return res, nil
}

// SeenSet unions scanned page IDs with the configured exclusions.
// Empty strings are dropped so a blank line in either source cannot
// swallow records with no PMID match.
func SeenSet(ids, exclude []string) map[string]bool {
	seen := make(map[string]bool, len(ids)+len(exclude))
	for _, id := range ids {
		if id != "" {
			seen[id] = true
		}
	}
	for _, id := range exclude {
		if id != "" {
			seen[id] = true
		}
	}
	return seen
}

// FilterNew returns the publications whose PMIDs are absent from seen.
func FilterNew(pubs []publication.Publication, seen map[string]bool) []publication.Publication {
	var out []publication.Publication
	for _, p := range pubs {
		if !seen[p.PMID] {
			out = append(out, p)
		}
	}
	return out
}
