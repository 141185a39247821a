package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matsen/pubsync/internal/pages"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify site page integrity",
	Long: `Verify the publication pages of the site.

Reports pages without a pmid field, PMIDs claimed by more than one
page, cover images referenced by an image field that do not exist
under the site root, and excluded PMIDs that still have pages.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status string       `json:"status"`
	Pages  int          `json:"pages"`
	Issues []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type     string   `json:"type"`
	File     string   `json:"file,omitempty"`
	Files    []string `json:"files,omitempty"`
	PMID     string   `json:"pmid,omitempty"`
	Expected string   `json:"expected,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	site := mustLoadSite(root)

	issues, checked, err := collectIssues(root, site.PapersPath(root), site.ExcludePMIDs)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	// Determine status
	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}

	// Ensure issues is an empty array, not null
	if issues == nil {
		issues = []CheckIssue{}
	}

	// Output results
	if humanOutput {
		if len(issues) == 0 {
			fmt.Printf("Site check: OK\n\n%d pages checked\n", checked)
		} else {
			fmt.Printf("Site check: %d issues found\n\n", len(issues))
			for _, issue := range issues {
				switch issue.Type {
				case "missing_pmid":
					fmt.Printf("  [WARN] No pmid field in %s\n\n", issue.File)
				case "missing_image":
					fmt.Printf("  [WARN] Missing image for %s\n", issue.File)
					fmt.Printf("         Expected: %s\n\n", issue.Expected)
				case "duplicate_pmid":
					fmt.Printf("  [WARN] Duplicate PMID %s\n", issue.PMID)
					fmt.Printf("         Found in: %s\n\n", formatFileList(issue.Files))
				case "excluded_has_page":
					fmt.Printf("  [WARN] Excluded PMID %s still has a page\n", issue.PMID)
					fmt.Printf("         Found in: %s\n\n", formatFileList(issue.Files))
				}
			}
			fmt.Printf("%d pages checked\n", checked)
		}
	} else {
		outputJSON(CheckResult{
			Status: status,
			Pages:  checked,
			Issues: issues,
		})
	}

	return nil
}

// collectIssues scans the papers directory and returns the integrity
// issues found along with the number of pages examined.
func collectIssues(root, papersDir string, exclude []string) ([]CheckIssue, int, error) {
	matches, err := filepath.Glob(filepath.Join(papersDir, "*.md"))
	if err != nil {
		return nil, 0, fmt.Errorf("listing pages: %w", err)
	}

	var issues []CheckIssue
	pmidFiles := make(map[string][]string) // PMID -> pages carrying it

	for _, path := range matches {
		rel := path
		if r, relErr := filepath.Rel(root, path); relErr == nil {
			rel = r
		}

		pmid, err := pages.Field(path, "pmid")
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", rel, err)
		}
		if pmid == "" {
			issues = append(issues, CheckIssue{Type: "missing_pmid", File: rel})
		} else {
			pmidFiles[pmid] = append(pmidFiles[pmid], rel)
		}

		// Cover images are site-root-relative and never verified at
		// render time, so stale references surface here
		image, err := pages.Field(path, "image")
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", rel, err)
		}
		if image != "" {
			if _, err := os.Stat(filepath.Join(root, image)); os.IsNotExist(err) {
				issues = append(issues, CheckIssue{Type: "missing_image", File: rel, Expected: image})
			}
		}
	}

	// Check for PMIDs claimed by more than one page
	var dupIDs []string
	for pmid, files := range pmidFiles {
		if len(files) > 1 {
			dupIDs = append(dupIDs, pmid)
		}
	}
	sort.Strings(dupIDs)
	for _, pmid := range dupIDs {
		issues = append(issues, CheckIssue{Type: "duplicate_pmid", PMID: pmid, Files: pmidFiles[pmid]})
	}

	// Check for excluded PMIDs that have pages anyway
	for _, pmid := range exclude {
		if files, ok := pmidFiles[pmid]; ok {
			issues = append(issues, CheckIssue{Type: "excluded_has_page", PMID: pmid, Files: files})
		}
	}

	return issues, len(matches), nil
}
