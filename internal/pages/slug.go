package pages

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/pubsync/internal/author"
	"github.com/matsen/pubsync/internal/publication"
)

// imageDir is where the site keeps per-venue cover art.
const imageDir = "/images/papers"

// Nickname derives the page identifier for a publication: the date,
// the first author's family name, then the first three title words,
// lowercased and hyphen-joined, with colons removed. The same record
// always produces the same nickname; titles differing only in
// punctuation can collide, which page creation reports.
func Nickname(p publication.Publication) string {
	family := "unknown"
	if len(p.Authors) > 0 {
		if f := author.FamilyName(p.Authors[0]); f != "" {
			family = f
		}
	}

	id := fmt.Sprintf("%d-%02d-%02d-%s-%s", p.Year, p.Month, p.Day, slugify(family), titleWords(p.Title))
	return strings.ReplaceAll(id, ":", "")
}

// ImagePath maps a journal name to the venue cover image the page
// template points at. The file itself is not checked here; the check
// command reports missing cover art.
func ImagePath(journal string) string {
	return imageDir + "/" + slugify(journal) + ".png"
}

// slugify lowercases s and replaces spaces with hyphens.
func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// titleWords takes the first three words of the title, strips each
// down to letters and digits, and hyphen-joins the lowercased
// remainder. Words that strip to nothing are dropped.
func titleWords(title string) string {
	fields := strings.Fields(title)
	if len(fields) > 3 {
		fields = fields[:3]
	}

	var words []string
	for _, f := range fields {
		w := stripNonWord(strings.ToLower(f))
		if w != "" {
			words = append(words, w)
		}
	}
	return strings.Join(words, "-")
}

// stripNonWord removes everything but letters and digits.
func stripNonWord(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
