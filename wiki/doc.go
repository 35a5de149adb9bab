// Package wiki provides the Wikipedia source provider for the wikifacts
// agent, backed by the MediaWiki Action API, plus MLA citation formatting.
//
// # Example
//
//	client := wiki.NewClient(wiki.Config{Language: "en"})
//	docs, err := client.SearchAndRetrieve(ctx, "quantum computing", 3, 3000)
//
// Implement the wikifacts.SourceProvider interface to substitute another
// encyclopedia backend:
//
//	type SourceProvider interface {
//	    SearchAndRetrieve(ctx context.Context, query string, maxArticles, maxCharsPerArticle int) ([]wikifacts.Document, error)
//	}
package wiki
