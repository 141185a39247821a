package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/pubsync/internal/config"
	"github.com/matsen/pubsync/internal/entrez"
	"github.com/matsen/pubsync/internal/export"
	"github.com/matsen/pubsync/internal/pages"
	"github.com/matsen/pubsync/internal/publication"
	"github.com/spf13/cobra"
)

var syncDryRun bool

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would change without writing")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch new publications and render their pages",
	Long: `Fetch publications for every tracked author and bring the site up to date.

For each author in pubsync.yml the PubMed history from the configured
start date is searched and fetched. Records passing the publication
type filter are normalized, deduplicated, and written to the CSV
export. A page is then rendered for each record the site does not
already have, skipping PMIDs found in existing pages or listed in
exclude_pmids.

Examples:
  pubsync sync
  pubsync sync --dry-run
  pubsync sync --human`,
	RunE: runSync,
}

// SyncResult is the response for the sync command.
type SyncResult struct {
	Status     string          `json:"status"`
	Authors    int             `json:"authors"`
	Fetched    int             `json:"fetched"`
	Dropped    int             `json:"dropped"`
	Exported   int             `json:"exported"`
	ExportPath string          `json:"export_path"`
	Pages      int             `json:"pages"`
	Known      int             `json:"known"`
	Created    []string        `json:"created"`
	Collisions []SyncCollision `json:"collisions,omitempty"`
}

// SyncDryRunResult is the response for sync --dry-run.
type SyncDryRunResult struct {
	Authors     int      `json:"authors"`
	Fetched     int      `json:"fetched"`
	Dropped     int      `json:"dropped"`
	WouldExport int      `json:"would_export"`
	Pages       int      `json:"pages"`
	Known       int      `json:"known"`
	WouldCreate []string `json:"would_create"`
}

// SyncCollision records a new publication whose page file already exists.
type SyncCollision struct {
	PMID string `json:"pmid"`
	Page string `json:"page"`
}

func runSync(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	site := mustLoadSite(root)
	client := mustEntrezClient(site)
	ctx := context.Background()

	// Fetch and normalize, one author at a time
	var pubs []publication.Publication
	var fetched, dropped int
	for _, a := range site.Authors {
		term := entrez.AuthorTerm(a.Name, a.EntrezStart())
		ids, err := client.SearchAllIDs(ctx, term)
		if err != nil {
			exitWithError(ExitAPIError, "searching %s: %v", a.Name, err)
		}

		records, err := client.FetchMedline(ctx, ids)
		if err != nil {
			exitWithError(ExitAPIError, "fetching records for %s: %v", a.Name, err)
		}
		fetched += len(records)

		for _, rec := range records {
			if !publication.TypeAllowed(rec) {
				dropped++
				continue
			}
			pub, err := publication.FromMedline(rec)
			if err != nil {
				// A record the filter admitted but the parser cannot
				// validate is an upstream defect worth stopping for.
				exitWithError(ExitDataError, "%v", err)
			}
			pubs = append(pubs, pub)
		}
	}
	pubs = publication.Dedupe(pubs)

	out, code, err := performSync(root, site, pubs, syncDryRun)
	if err != nil {
		exitWithError(code, "%v", err)
	}

	if syncDryRun {
		if humanOutput {
			fmt.Printf("Dry run - would sync %d authors...\n", len(site.Authors))
			fmt.Printf("  Fetched:      %d records (%d dropped by type filter)\n", fetched, dropped)
			fmt.Printf("  Would export: %d publications to %s\n", len(pubs), site.Export)
			fmt.Printf("  Pages:        %d scanned, %d known PMIDs\n", out.pages, out.known)
			fmt.Printf("  Would create: %d pages\n", len(out.created))
			for _, name := range out.created {
				fmt.Printf("    %s\n", name)
			}
		} else {
			outputJSON(SyncDryRunResult{
				Authors:     len(site.Authors),
				Fetched:     fetched,
				Dropped:     dropped,
				WouldExport: len(pubs),
				Pages:       out.pages,
				Known:       out.known,
				WouldCreate: out.created,
			})
		}
		return nil
	}

	status := "ok"
	if len(out.collisions) > 0 {
		status = "collisions"
	}

	if humanOutput {
		for _, path := range out.created {
			outputHuman("Created %s\n", path)
		}
		fmt.Printf("Synced %d authors\n", len(site.Authors))
		fmt.Printf("  Fetched:  %d records (%d dropped by type filter)\n", fetched, dropped)
		fmt.Printf("  Exported: %d publications to %s\n", out.exported, site.Export)
		fmt.Printf("  Pages:    %d scanned, %d known PMIDs, %d created\n", out.pages, out.known, len(out.created))
		for _, c := range out.collisions {
			fmt.Printf("  [WARN] Page already exists for PMID %s: %s\n", c.PMID, c.Page)
		}
	} else {
		outputJSON(SyncResult{
			Status:     status,
			Authors:    len(site.Authors),
			Fetched:    fetched,
			Dropped:    dropped,
			Exported:   out.exported,
			ExportPath: out.exportPath,
			Pages:      out.pages,
			Known:      out.known,
			Created:    out.created,
			Collisions: out.collisions,
		})
	}

	// Collisions mean a nickname clash or a page whose pmid line does
	// not match its record; the run is not clean
	if len(out.collisions) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// syncOutcome carries what performSync produced for one run.
type syncOutcome struct {
	exported   int
	exportPath string
	pages      int
	known      int
	created    []string
	collisions []SyncCollision
}

// performSync runs the pipeline tail: CSV export, page scan, novelty
// filter, and rendering. The export covers the full fetch, not just
// new records, and is written before the scan and template stages run.
// In a dry run nothing is written, but every would-be page is still
// rendered to validate the template. Errors come back with the exit
// code classifying them.
func performSync(root string, site *config.Site, pubs []publication.Publication, dryRun bool) (syncOutcome, int, error) {
	out := syncOutcome{exportPath: site.ExportPath(root)}

	if !dryRun {
		n, err := export.WriteCSV(out.exportPath, pubs)
		if err != nil {
			return out, ExitError, fmt.Errorf("writing export: %w", err)
		}
		out.exported = n
	}

	papersDir := site.PapersPath(root)
	scan, err := pages.Scan(papersDir)
	if err != nil {
		return out, ExitError, fmt.Errorf("scanning %s: %w", papersDir, err)
	}
	seen := pages.SeenSet(scan.IDs, site.ExcludePMIDs)
	newPubs := pages.FilterNew(pubs, seen)
	out.pages = scan.Files
	out.known = len(seen)

	tmpl, err := pages.LoadTemplate(site.TemplatePath(root))
	if err != nil {
		return out, ExitConfigError, err
	}

	out.created = []string{}
	for _, p := range newPubs {
		nickname := pages.Nickname(p)
		content, err := tmpl.Render(p)
		if err != nil {
			return out, ExitConfigError, err
		}

		path := filepath.Join(papersDir, nickname+".md")
		if !dryRun {
			path, err = pages.WritePage(papersDir, nickname, content)
			if errors.Is(err, pages.ErrPageExists) {
				out.collisions = append(out.collisions, SyncCollision{PMID: p.PMID, Page: nickname + ".md"})
				continue
			}
			if err != nil {
				return out, ExitError, fmt.Errorf("page for PMID %s: %w", p.PMID, err)
			}
		}

		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			path = rel
		}
		out.created = append(out.created, path)
	}

	return out, 0, nil
}
