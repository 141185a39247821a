package entrez

import "fmt"

// futureBound is the open upper end of publication-date ranges. Entrez
// ranges are inclusive and need both endpoints spelled out.
const futureBound = "3000"

// AuthorTerm builds an ESearch term matching an author's publications
// from start onward. The name uses PubMed author form ("Matsen FA");
// start is a YYYY/MM/DD publication date.
func AuthorTerm(name, start string) string {
	return fmt.Sprintf("\"%s\"[au] AND (\"%s\"[PDAT] : \"%s\"[PDAT])", name, start, futureBound)
}
