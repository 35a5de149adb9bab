package wiki

import (
	"fmt"
	"strings"
	"time"

	"github.com/smhanov/wikifacts"
)

// MLA formats Wikipedia articles as MLA 9th edition citations.
//
// Format: "Article Title." *Wikipedia*, Wikimedia Foundation, Last Modified
// Date, URL. Accessed Access Date.
type MLA struct{}

var _ wikifacts.CitationFormatter = MLA{}

// WorksCited returns one MLA citation per document, in document order.
func (m MLA) WorksCited(docs []wikifacts.Document, accessed time.Time) []string {
	citations := make([]string, 0, len(docs))
	for _, d := range docs {
		citations = append(citations, m.Format(d, accessed))
	}
	return citations
}

// Format renders a single citation, e.g.
//
//	"Quantum Computing." *Wikipedia*, Wikimedia Foundation, 15 Nov. 2024,
//	en.wikipedia.org/wiki/Quantum_computing. Accessed 21 Nov. 2025.
func (m MLA) Format(doc wikifacts.Document, accessed time.Time) string {
	var modified string
	if doc.LastModified != nil {
		modified = " " + mlaDate(*doc.LastModified) + ","
	}

	cleanURL := strings.TrimPrefix(strings.TrimPrefix(doc.URL, "https://"), "http://")

	return fmt.Sprintf("%q *Wikipedia*, Wikimedia Foundation,%s %s. Accessed %s.",
		doc.Title+".", modified, cleanURL, mlaDate(accessed))
}

// MLA month abbreviations. May, June, and July are not abbreviated.
var mlaMonths = [...]string{
	"Jan.", "Feb.", "Mar.", "Apr.", "May", "June",
	"July", "Aug.", "Sept.", "Oct.", "Nov.", "Dec.",
}

func mlaDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), mlaMonths[t.Month()-1], t.Year())
}
