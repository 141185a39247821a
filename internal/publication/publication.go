// Package publication normalizes MEDLINE records into the entries the
// rest of the tool consumes.
package publication

import (
	"fmt"
	"strings"

	"github.com/matsen/pubsync/internal/entrez"
)

// Publication types that belong on the website. Records whose PT list
// has no overlap with this set are dropped before normalization.
var allowedTypes = map[string]bool{
	"Journal Article":              true,
	"Comparative Study":            true,
	"Editorial":                    true,
	"Introductory Journal Article": true,
}

// doiMarker suffixes the AID value that carries the DOI.
const doiMarker = " [doi]"

// Publication is a normalized bibliographic record keyed on PMID.
// Month and Day fall back to 1 when the source date omits them; every
// string field other than PMID and Title may be empty.
type Publication struct {
	PMID     string   `json:"pmid"`
	PMCID    string   `json:"pmcid,omitempty"`
	DOI      string   `json:"doi,omitempty"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	Day      int      `json:"day"`
	Journal  string   `json:"journal,omitempty"`
	Volume   string   `json:"volume,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	Pages    string   `json:"pages,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
}

// TypeAllowed reports whether the record's publication types intersect
// the allow-list.
func TypeAllowed(rec entrez.Record) bool {
	for _, pt := range rec.All("PT") {
		if allowedTypes[pt] {
			return true
		}
	}
	return false
}

// FromMedline normalizes one MEDLINE record. PMID, title, and a
// parseable publication date are required; their absence is a
// RecordError naming the record. Everything else defaults to empty.
func FromMedline(rec entrez.Record) (Publication, error) {
	pmid := rec.Get("PMID")
	if pmid == "" {
		return Publication{}, &RecordError{Field: "PMID", Err: ErrNoPMID}
	}

	title := strings.TrimSpace(rec.Get("TI"))
	if title == "" {
		return Publication{}, &RecordError{PMID: pmid, Field: "TI", Err: ErrMissingTitle}
	}
	title = strings.TrimSuffix(title, ".")

	dp := rec.Get("DP")
	if dp == "" {
		return Publication{}, &RecordError{PMID: pmid, Field: "DP", Err: ErrMissingDate}
	}
	year, month, day, err := ParseDate(dp)
	if err != nil {
		return Publication{}, &RecordError{PMID: pmid, Field: "DP", Err: fmt.Errorf("%w: %v", ErrMissingDate, err)}
	}

	p := Publication{
		PMID:     pmid,
		PMCID:    rec.Get("PMC"),
		Title:    title,
		Year:     year,
		Month:    month,
		Day:      day,
		Journal:  rec.Get("TA"),
		Volume:   rec.Get("VI"),
		Issue:    rec.Get("IP"),
		Pages:    rec.Get("PG"),
		Abstract: rec.Get("AB"),
	}

	for _, aid := range rec.All("AID") {
		if strings.HasSuffix(aid, doiMarker) {
			p.DOI = strings.TrimSpace(strings.TrimSuffix(aid, doiMarker))
			break
		}
	}

	p.Authors = append(p.Authors, rec.All("AU")...)

	return p, nil
}

// Dedupe drops repeated PMIDs, keeping the first occurrence. Two
// tracked authors on the same paper fetch the same record twice.
func Dedupe(pubs []Publication) []Publication {
	seen := make(map[string]bool, len(pubs))
	var out []Publication
	for _, p := range pubs {
		if seen[p.PMID] {
			continue
		}
		seen[p.PMID] = true
		out = append(out, p)
	}
	return out
}
