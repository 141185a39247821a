package main

import (
	"fmt"

	"github.com/matsen/pubsync/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved site configuration",
	Long: `Show the site configuration with defaults applied.

The configuration lives in pubsync.yml at the site root; edit that
file directly to change it.`,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Root         string          `json:"root"`
	Email        string          `json:"email,omitempty"`
	Tool         string          `json:"tool"`
	Authors      []config.Author `json:"authors"`
	ExcludePMIDs []string        `json:"exclude_pmids"`
	PapersDir    string          `json:"papers_dir"`
	Template     string          `json:"template"`
	Export       string          `json:"export"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	site := mustLoadSite(root)

	if humanOutput {
		fmt.Printf("root:       %s\n", root)
		fmt.Printf("email:      %s\n", site.Email)
		fmt.Printf("tool:       %s\n", site.Tool)
		fmt.Printf("papers dir: %s\n", site.PapersDir)
		fmt.Printf("template:   %s\n", site.Template)
		fmt.Printf("export:     %s\n", site.Export)
		fmt.Println("authors:")
		for _, a := range site.Authors {
			fmt.Printf("  %s (since %s)\n", a.Name, a.Start)
		}
		if len(site.ExcludePMIDs) > 0 {
			fmt.Printf("excluded:   %s\n", formatFileList(site.ExcludePMIDs))
		}
	} else {
		excluded := site.ExcludePMIDs
		if excluded == nil {
			excluded = []string{}
		}
		outputJSON(ConfigResponse{
			Root:         root,
			Email:        site.Email,
			Tool:         site.Tool,
			Authors:      site.Authors,
			ExcludePMIDs: excluded,
			PapersDir:    site.PapersDir,
			Template:     site.Template,
			Export:       site.Export,
		})
	}

	return nil
}
