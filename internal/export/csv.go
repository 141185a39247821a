// Package export provides functions to export publications to flat files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/pubsync/internal/publication"
)

// Columns is the fixed header of the CSV export.
var Columns = []string{
	"pmid", "pmcid", "doi", "title", "authors",
	"year", "month", "day", "journal", "volume", "issue", "pages", "abstract",
}

// WriteCSV writes every publication to path as CSV, replacing whatever
// was there. Rows are sorted by PMID and duplicate PMIDs collapse to
// their first occurrence, so consecutive runs over the same data yield
// identical files. Returns the number of data rows written.
func WriteCSV(path string, pubs []publication.Publication) (int, error) {
	rows := make([]publication.Publication, len(pubs))
	copy(rows, pubs)
	sort.SliceStable(rows, func(i, j int) bool {
		return pmidLess(rows[i].PMID, rows[j].PMID)
	})

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	n := 0
	seen := make(map[string]bool, len(rows))
	for _, p := range rows {
		if seen[p.PMID] {
			continue
		}
		seen[p.PMID] = true

		row := []string{
			p.PMID,
			p.PMCID,
			p.DOI,
			p.Title,
			strings.Join(p.Authors, "; "),
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Month),
			strconv.Itoa(p.Day),
			p.Journal,
			p.Volume,
			p.Issue,
			p.Pages,
			p.Abstract,
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("writing row for PMID %s: %w", p.PMID, err)
		}
		n++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing export file: %w", err)
	}

	return n, nil
}

// pmidLess orders PMIDs numerically, falling back to lexicographic
// order when either side is not a number.
func pmidLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
