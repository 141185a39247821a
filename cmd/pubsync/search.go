package main

import (
	"context"
	"fmt"

	"github.com/matsen/pubsync/internal/config"
	"github.com/matsen/pubsync/internal/entrez"
	"github.com/matsen/pubsync/internal/pages"
	"github.com/matsen/pubsync/internal/publication"
	"github.com/spf13/cobra"
)

var searchFrom string

func init() {
	searchCmd.Flags().StringVar(&searchFrom, "from", "1900-01-01", "Earliest publication date (YYYY-MM-DD)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <author>",
	Short: "Preview PubMed results for an author",
	Long: `Preview what PubMed returns for an author without writing anything.

The author name uses the PubMed search form ("Family Initials"). Each
result is marked new or known against the site's existing pages and
exclusion list, which makes this the place to vet a prospective
tracked author or a suspected false-positive name match.

Examples:
  pubsync search "Matsen FA"
  pubsync search "Bloom JD" --from 2011-01-01 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// SearchResult is the response for the search command.
type SearchResult struct {
	Term    string        `json:"term"`
	Matched int           `json:"matched"`
	Dropped int           `json:"dropped"`
	Results []SearchEntry `json:"results"`
	Errors  []string      `json:"errors,omitempty"`
}

// SearchEntry is one result row for the search command.
type SearchEntry struct {
	PMID    string   `json:"pmid"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    int      `json:"year"`
	Journal string   `json:"journal,omitempty"`
	New     bool     `json:"new"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	site := mustLoadSite(root)
	client := mustEntrezClient(site)
	ctx := context.Background()

	start, err := config.NormalizeStart(searchFrom)
	if err != nil {
		exitWithError(ExitError, "bad --from date: %v", err)
	}

	term := entrez.AuthorTerm(args[0], start)
	ids, err := client.SearchAllIDs(ctx, term)
	if err != nil {
		exitWithError(ExitAPIError, "searching %s: %v", args[0], err)
	}

	records, err := client.FetchMedline(ctx, ids)
	if err != nil {
		exitWithError(ExitAPIError, "fetching records: %v", err)
	}

	// Unlike sync, a preview lists defective records instead of
	// stopping on the first one
	var pubs []publication.Publication
	var errs []string
	var dropped int
	for _, rec := range records {
		if !publication.TypeAllowed(rec) {
			dropped++
			continue
		}
		pub, err := publication.FromMedline(rec)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		pubs = append(pubs, pub)
	}
	pubs = publication.Dedupe(pubs)

	scan, err := pages.Scan(site.PapersPath(root))
	if err != nil {
		exitWithError(ExitError, "scanning pages: %v", err)
	}
	seen := pages.SeenSet(scan.IDs, site.ExcludePMIDs)

	entries := make([]SearchEntry, 0, len(pubs))
	for _, p := range pubs {
		entries = append(entries, SearchEntry{
			PMID:    p.PMID,
			Title:   p.Title,
			Authors: p.Authors,
			Year:    p.Year,
			Journal: p.Journal,
			New:     !seen[p.PMID],
		})
	}

	if humanOutput {
		if len(ids) == 0 {
			fmt.Println("No publications found")
			return nil
		}
		fmt.Printf("Found %d publications for %s\n", len(ids), term)
		if dropped > 0 {
			fmt.Printf("  (%d dropped by publication type filter)\n", dropped)
		}
		fmt.Println()
		for i, e := range entries {
			marker := ""
			if e.New {
				marker = " [new]"
			}
			fmt.Printf("%d. %s%s\n", i+1, truncateString(e.Title, SearchTitleMaxLen), marker)
			fmt.Printf("   %s (%d)", formatAuthors(e.Authors, MaxAuthorsShown), e.Year)
			if e.Journal != "" {
				fmt.Printf(" - %s", e.Journal)
			}
			fmt.Println()
			fmt.Printf("   PMID: %s\n\n", e.PMID)
		}
		if len(errs) > 0 {
			fmt.Println("Records with defects:")
			for _, e := range errs {
				fmt.Printf("  - %s\n", e)
			}
		}
	} else {
		outputJSON(SearchResult{
			Term:    term,
			Matched: len(ids),
			Dropped: dropped,
			Results: entries,
			Errors:  errs,
		})
	}

	return nil
}
