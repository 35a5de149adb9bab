// Package wikifacts provides a Wikipedia research agent: it searches the
// encyclopedia for articles matching a question and asks a language model to
// synthesize an answer, either as cited prose with an MLA works-cited block
// or as a structured, schema-validated fact document.
//
// # Architecture
//
// Each query runs through a fixed lifecycle:
//
//  1. Retrieval: the SourceProvider searches Wikipedia and retrieves up to
//     MaxArticles articles, each capped at MaxArticleChars characters. Every
//     article is registered in a per-query source registry under a stable id
//     (source_1, source_2, ... in retrieval order).
//  2. Reasoning (JSON mode): the model reads the articles and records facts
//     through the record_fact tool across a bounded number of rounds. The
//     fact ledger accepts every call: unknown categories are coerced to
//     "other" and a bare source id becomes a one-element list.
//  3. Finalization (JSON mode): the model is asked for a schema-constrained
//     document. Validation at this boundary is strict. On failure the agent
//     falls back, in order, to a document assembled from the ledger and
//     registry, to the model's best-effort free text, and finally to an
//     empty document whose summary explains the failure. JSON-mode callers
//     always receive a parseable document.
//
// Citation mode shares retrieval but bypasses the ledger and validator: the
// model's prose is returned with the works-cited list appended.
//
// # Basic Usage
//
//	agent := wikifacts.New(
//	    wikifacts.WithLLMClient(client),
//	    wikifacts.WithSourceProvider(wiki.NewClient(wiki.Config{})),
//	    wikifacts.WithCitationFormatter(wiki.MLA{}),
//	    wikifacts.WithOutputFormat(wikifacts.FormatJSON),
//	)
//
//	res, err := agent.Query(ctx, "What is quantum computing?")
//	fmt.Println(res.Text)
//
// # Interfaces
//
// Implement LLMClient to connect any language model backend; the llm
// subpackage ships Ollama and OpenRouter clients. Implement SourceProvider
// to swap the encyclopedia backend; the wiki subpackage ships a MediaWiki
// client. Progress reporting is available per query via WithStatusFunc.
package wikifacts
