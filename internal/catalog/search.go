package catalog

import (
	"strings"

	"github.com/mediafolio/catalog-backend/pkg/db/models"
	"github.com/sahilm/fuzzy"
)

// SearchDoc is the projection of an item exposed through search results. Only
// these fields leave the service; view counts and flags stay internal.
type SearchDoc struct {
	PublicID     string   `json:"public_id"`
	CategoryName string   `json:"category_name"`
	Tags         []string `json:"tags"`
	URL          string   `json:"url"`
	OptimizedURL string   `json:"optimized_url"`
}

// ProjectSearchDocs maps items onto their search projection, keeping
// collection order.
func ProjectSearchDocs(items []models.Item) []SearchDoc {
	docs := make([]SearchDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, SearchDoc{
			PublicID:     item.PublicID,
			CategoryName: item.CategoryName,
			Tags:         item.Tags,
			URL:          item.URL,
			OptimizedURL: item.OptimizedURL,
		})
	}
	return docs
}

// docCorpus adapts a doc slice to the fuzzy matcher. Each document is matched
// on its category name joined with its tags.
type docCorpus []SearchDoc

func (c docCorpus) String(i int) string {
	doc := c[i]
	parts := make([]string, 0, len(doc.Tags)+1)
	parts = append(parts, doc.CategoryName)
	parts = append(parts, doc.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func (c docCorpus) Len() int { return len(c) }

// SearchDocs runs a fuzzy match over the docs and returns matches ordered by
// descending relevance. Equal scores keep the docs' collection order. An empty
// query matches nothing.
//
// Matching is ordered-subsequence: every query character must appear, in
// order, somewhere in the doc's name-plus-tags haystack. Partial words and
// skipped characters match; transposed characters and out-of-order tokens do
// not.
func SearchDocs(docs []SearchDoc, query string) []SearchDoc {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []SearchDoc{}
	}

	matches := fuzzy.FindFrom(query, docCorpus(docs))
	results := make([]SearchDoc, 0, len(matches))
	for _, m := range matches {
		results = append(results, docs[m.Index])
	}
	return results
}
