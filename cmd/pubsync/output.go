package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/pubsync/internal/config"
	"github.com/matsen/pubsync/internal/entrez"
)

// Constants for output formatting.
const (
	SearchTitleMaxLen = 70 // Title truncation in search result summaries
	MaxAuthorsShown   = 3  // Authors listed before "et al."
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// mustFindSite locates the site root or exits with a config error.
func mustFindSite() string {
	start, exitCode := getSiteRoot()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindSite(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

// mustLoadSite loads and validates the site configuration or exits.
func mustLoadSite(root string) *config.Site {
	site, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return site
}

// mustEntrezClient builds the Entrez client. NCBI asks every client to
// identify itself, so a contact email has to come from the site config
// or the NCBI_EMAIL environment variable.
func mustEntrezClient(site *config.Site) *entrez.Client {
	if site.Email == "" && os.Getenv("NCBI_EMAIL") == "" {
		exitWithError(ExitConfigError, "no contact email: set email in %s or the NCBI_EMAIL environment variable", config.ConfigFile)
	}

	opts := []entrez.ClientOption{entrez.WithTool(site.Tool)}
	if site.Email != "" {
		opts = append(opts, entrez.WithEmail(site.Email))
	}
	return entrez.NewClient(opts...)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatAuthors formats an author list with "et al." past maxCount.
func formatAuthors(authors []string, maxCount int) string {
	if len(authors) == 0 {
		return "Unknown"
	}
	if len(authors) > maxCount {
		return strings.Join(authors[:maxCount], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

// formatFileList formats a list of files as a comma-separated string.
func formatFileList(files []string) string {
	return strings.Join(files, ", ")
}
