package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matsen/pubsync/internal/pages"
	"github.com/matsen/pubsync/internal/publication"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <pmid>...",
	Short: "Create pages for specific PMIDs",
	Long: `Fetch specific PubMed records and create their pages.

The records go through the same type filter, validation, and rendering
as sync, but no author search runs and the CSV export is untouched.
This is the escape hatch for records the author queries miss.

Examples:
  pubsync add 32075431
  pubsync add 32075431 31498825 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

// AddResult is the response for the add command.
type AddResult struct {
	Status      string          `json:"status"`
	Requested   int             `json:"requested"`
	Created     []string        `json:"created"`
	SkippedSeen []string        `json:"skipped_seen,omitempty"`
	SkippedType []string        `json:"skipped_type,omitempty"`
	Missing     []string        `json:"missing,omitempty"`
	Collisions  []SyncCollision `json:"collisions,omitempty"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	for _, id := range args {
		if _, err := strconv.Atoi(id); err != nil {
			exitWithError(ExitError, "invalid PMID %q", id)
		}
	}

	root := mustFindSite()
	site := mustLoadSite(root)
	client := mustEntrezClient(site)
	ctx := context.Background()

	records, err := client.FetchMedline(ctx, args)
	if err != nil {
		exitWithError(ExitAPIError, "fetching records: %v", err)
	}

	// PMIDs EFetch silently returned nothing for
	returned := make(map[string]bool, len(records))
	for _, rec := range records {
		returned[rec.Get("PMID")] = true
	}
	var missing []string
	for _, id := range args {
		if !returned[id] {
			missing = append(missing, id)
		}
	}

	var pubs []publication.Publication
	var skippedType []string
	for _, rec := range records {
		if !publication.TypeAllowed(rec) {
			skippedType = append(skippedType, rec.Get("PMID"))
			continue
		}
		pub, err := publication.FromMedline(rec)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		pubs = append(pubs, pub)
	}
	pubs = publication.Dedupe(pubs)

	papersDir := site.PapersPath(root)
	scan, err := pages.Scan(papersDir)
	if err != nil {
		exitWithError(ExitError, "scanning %s: %v", papersDir, err)
	}
	seen := pages.SeenSet(scan.IDs, site.ExcludePMIDs)

	tmpl, err := pages.LoadTemplate(site.TemplatePath(root))
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	created := []string{}
	var skippedSeen []string
	var collisions []SyncCollision
	for _, p := range pubs {
		if seen[p.PMID] {
			skippedSeen = append(skippedSeen, p.PMID)
			continue
		}

		nickname := pages.Nickname(p)
		content, err := tmpl.Render(p)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}

		path, err := pages.WritePage(papersDir, nickname, content)
		if errors.Is(err, pages.ErrPageExists) {
			collisions = append(collisions, SyncCollision{PMID: p.PMID, Page: nickname + ".md"})
			continue
		}
		if err != nil {
			exitWithError(ExitError, "page for PMID %s: %v", p.PMID, err)
		}

		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			path = rel
		}
		created = append(created, path)
		if humanOutput {
			outputHuman("Created %s\n", path)
		}
	}

	status := "ok"
	if len(collisions) > 0 {
		status = "collisions"
	}

	if humanOutput {
		fmt.Printf("Added %d of %d requested PMIDs\n", len(created), len(args))
		if len(skippedSeen) > 0 {
			fmt.Printf("  Already on site:       %s\n", formatFileList(skippedSeen))
		}
		if len(skippedType) > 0 {
			fmt.Printf("  Dropped by type filter: %s\n", formatFileList(skippedType))
		}
		if len(missing) > 0 {
			fmt.Printf("  Not returned by PubMed: %s\n", formatFileList(missing))
		}
		for _, c := range collisions {
			fmt.Printf("  [WARN] Page already exists for PMID %s: %s\n", c.PMID, c.Page)
		}
	} else {
		outputJSON(AddResult{
			Status:      status,
			Requested:   len(args),
			Created:     created,
			SkippedSeen: skippedSeen,
			SkippedType: skippedType,
			Missing:     missing,
			Collisions:  collisions,
		})
	}

	if len(collisions) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}
