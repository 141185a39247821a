package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/pubsync/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

// defaultConfig seeds a new site's pubsync.yml.
const defaultConfig = `# pubsync site configuration
#
# email is sent to NCBI with every request, per their usage policy.
# It can also come from the NCBI_EMAIL environment variable (a .env
# file at the site root is read too).
email: you@example.org

# Authors to track, in the PubMed search form "Family Initials".
# start bounds the search: only publications dated on or after it
# are fetched.
authors:
  - name: Matsen FA
    start: 2008-01-01

# PMIDs that match an author query but do not belong to the lab.
exclude_pmids: []
`

// defaultTemplate seeds a new site's page template. The pmid line is
// what later syncs read back to recognize the page.
const defaultTemplate = `---
layout: paper
title: "{{.title}}"
nickname: {{.nickname}}
authors: {{.authors}}
year: {{.year}}
journal: {{.journal}}
volume: {{.volume}}
issue: {{.issue}}
pages: {{.pages}}
image: {{.image}}
pmid: {{.pmid}}
pmcid: {{.pmcid}}
doi: {{.doi}}
---

{{.abstract}}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new pubsync site",
	Long: `Initialize a pubsync site in the current directory.

Creates:
  pubsync.yml         # Site configuration to edit
  paper-template.md   # Default page template
  _papers/            # Directory pages are rendered into`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getSiteRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	// Check if already initialized
	if config.IsSite(root) {
		if humanOutput {
			fmt.Fprintln(os.Stderr, "error: directory already contains a pubsync site")
		} else {
			outputJSON(ErrorResponse{Error: "directory already contains a pubsync site"})
		}
		os.Exit(ExitError)
	}

	if err := os.WriteFile(filepath.Join(root, config.ConfigFile), []byte(defaultConfig), 0644); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.ConfigFile, err)
	}
	if err := os.WriteFile(filepath.Join(root, config.DefaultTemplate), []byte(defaultTemplate), 0644); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.DefaultTemplate, err)
	}
	if err := os.MkdirAll(filepath.Join(root, config.DefaultPapersDir), 0755); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.DefaultPapersDir, err)
	}

	// Output success
	if humanOutput {
		fmt.Printf("Initialized pubsync site in %s\n", root)
		fmt.Println("Edit pubsync.yml to set your email and tracked authors.")
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
