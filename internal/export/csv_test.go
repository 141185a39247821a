package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/pubsync/internal/publication"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	return rows
}

func TestWriteCSV_SortedAndComplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	pubs := []publication.Publication{
		{PMID: "100", Title: "Middle", Authors: []string{"Chan KMW"}, Year: 2021, Month: 2, Day: 3},
		{PMID: "9", Title: "Oldest", Authors: []string{"Smith JD", "Doe JR"}, Year: 2019, Month: 1, Day: 1,
			PMCID: "PMC1", DOI: "10.1/x", Journal: "J Test", Volume: "4", Issue: "2", Pages: "10-12", Abstract: "Text."},
		{PMID: "25", Title: "Between", Authors: []string{"Bloom J"}, Year: 2020, Month: 6, Day: 29},
	}

	n, err := WriteCSV(path, pubs)
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if n != 3 {
		t.Errorf("WriteCSV() wrote %d rows, want 3", n)
	}

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("export has %d lines, want header + 3 rows", len(rows))
	}

	wantHeader := []string{"pmid", "pmcid", "doi", "title", "authors", "year", "month", "day", "journal", "volume", "issue", "pages", "abstract"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	// Numeric PMID order, not lexicographic
	if rows[1][0] != "9" || rows[2][0] != "25" || rows[3][0] != "100" {
		t.Errorf("PMID order = [%s %s %s], want [9 25 100]", rows[1][0], rows[2][0], rows[3][0])
	}

	full := rows[1]
	if full[1] != "PMC1" || full[2] != "10.1/x" || full[3] != "Oldest" {
		t.Errorf("row for PMID 9 = %v", full)
	}
	if full[4] != "Smith JD; Doe JR" {
		t.Errorf("authors cell = %q, want %q", full[4], "Smith JD; Doe JR")
	}
	if full[5] != "2019" || full[6] != "1" || full[7] != "1" {
		t.Errorf("date cells = %v", full[5:8])
	}
	if full[8] != "J Test" || full[9] != "4" || full[10] != "2" || full[11] != "10-12" || full[12] != "Text." {
		t.Errorf("journal cells = %v", full[8:])
	}
}

func TestWriteCSV_DropsDuplicatePMIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	pubs := []publication.Publication{
		{PMID: "100", Title: "First fetch", Year: 2020, Month: 1, Day: 1},
		{PMID: "100", Title: "Second fetch", Year: 2020, Month: 1, Day: 1},
	}

	n, err := WriteCSV(path, pubs)
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if n != 1 {
		t.Errorf("WriteCSV() wrote %d rows, want 1", n)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("export has %d lines, want header + 1 row", len(rows))
	}
	if rows[1][3] != "First fetch" {
		t.Errorf("kept title = %q, want the first occurrence", rows[1][3])
	}
}

func TestWriteCSV_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	if _, err := WriteCSV(path, []publication.Publication{
		{PMID: "1", Title: "A", Year: 2020, Month: 1, Day: 1},
		{PMID: "2", Title: "B", Year: 2020, Month: 1, Day: 1},
	}); err != nil {
		t.Fatalf("first WriteCSV() error = %v", err)
	}

	if _, err := WriteCSV(path, []publication.Publication{
		{PMID: "3", Title: "C", Year: 2021, Month: 1, Day: 1},
	}); err != nil {
		t.Fatalf("second WriteCSV() error = %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("export has %d lines after rewrite, want header + 1 row", len(rows))
	}
	if rows[1][0] != "3" {
		t.Errorf("surviving PMID = %q, want 3", rows[1][0])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	n, err := WriteCSV(path, nil)
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if n != 0 {
		t.Errorf("WriteCSV() wrote %d rows, want 0", n)
	}

	rows := readCSV(t, path)
	if len(rows) != 1 {
		t.Fatalf("export has %d lines, want header only", len(rows))
	}
}

func TestWriteCSV_QuotedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	pubs := []publication.Publication{
		{
			PMID:     "100",
			Title:    `Effects of "stress", revisited`,
			Year:     2020, Month: 1, Day: 1,
			Abstract: "Line one.\nLine two, with a comma.",
		},
	}

	if _, err := WriteCSV(path, pubs); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows := readCSV(t, path)
	if rows[1][3] != pubs[0].Title {
		t.Errorf("title round-trip = %q, want %q", rows[1][3], pubs[0].Title)
	}
	if rows[1][12] != pubs[0].Abstract {
		t.Errorf("abstract round-trip = %q, want %q", rows[1][12], pubs[0].Abstract)
	}
}

func TestPMIDLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"numeric order", "9", "100", true},
		{"numeric reversed", "100", "9", false},
		{"equal", "100", "100", false},
		{"non-numeric falls back to lexicographic", "12", "abc", true},
		{"both non-numeric", "abc", "abd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pmidLess(tt.a, tt.b); got != tt.want {
				t.Errorf("pmidLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
