// Package main provides the pubsync CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pubsync",
	Short: "Keep a lab site's publication pages in sync with PubMed",
	Long: `pubsync keeps a Jekyll-style lab website in sync with PubMed.

It searches NCBI Entrez for publications by the site's tracked authors,
writes a CSV export of everything it fetched, and renders a templated
Markdown page for each publication the site does not have yet. All
commands output JSON by default for easy scripting; use --human for
readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for NCBI_EMAIL / NCBI_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getSiteRoot returns the directory site discovery starts from, or exits
// with an error if the working directory cannot be determined.
func getSiteRoot() (string, int) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}

	// Check PUBSYNC_ROOT environment variable first
	if root := os.Getenv("PUBSYNC_ROOT"); root != "" {
		cwd = root
	}

	return cwd, 0
}
