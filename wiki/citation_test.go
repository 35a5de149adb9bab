package wiki

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smhanov/wikifacts"
)

func TestMLAFormat(t *testing.T) {
	modified := time.Date(2024, time.November, 15, 10, 30, 0, 0, time.UTC)
	accessed := time.Date(2025, time.November, 21, 0, 0, 0, 0, time.UTC)

	doc := wikifacts.Document{
		Title:        "Quantum computing",
		URL:          "https://en.wikipedia.org/wiki/Quantum_computing",
		LastModified: &modified,
	}

	got := MLA{}.Format(doc, accessed)
	want := `"Quantum computing." *Wikipedia*, Wikimedia Foundation, 15 Nov. 2024, en.wikipedia.org/wiki/Quantum_computing. Accessed 21 Nov. 2025.`
	assert.Equal(t, want, got)
}

func TestMLAFormatWithoutLastModified(t *testing.T) {
	accessed := time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)
	doc := wikifacts.Document{
		Title: "Go (programming language)",
		URL:   "https://en.wikipedia.org/wiki/Go_(programming_language)",
	}

	got := MLA{}.Format(doc, accessed)
	want := `"Go (programming language)." *Wikipedia*, Wikimedia Foundation, en.wikipedia.org/wiki/Go_(programming_language). Accessed 3 June 2025.`
	assert.Equal(t, want, got)
}

func TestMLADateMonths(t *testing.T) {
	// May, June, and July are written out; the rest are abbreviated.
	assert.Equal(t, "1 May 2024", mlaDate(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "4 July 2024", mlaDate(time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "9 Sept. 2024", mlaDate(time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)))
}

func TestWorksCitedOrder(t *testing.T) {
	accessed := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	docs := []wikifacts.Document{
		{Title: "First", URL: "https://en.wikipedia.org/wiki/First"},
		{Title: "Second", URL: "https://en.wikipedia.org/wiki/Second"},
	}

	cited := MLA{}.WorksCited(docs, accessed)
	assert.Len(t, cited, 2)
	assert.Contains(t, cited[0], `"First."`)
	assert.Contains(t, cited[1], `"Second."`)
}
