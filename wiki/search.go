package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smhanov/wikifacts"
)

// DefaultUserAgent identifies this client to the MediaWiki API, which
// rejects requests without a descriptive User-Agent.
const DefaultUserAgent = "wikifacts/0.1 (https://github.com/smhanov/wikifacts)"

// Config configures the Wikipedia client.
type Config struct {
	// Language selects the Wikipedia edition (default "en").
	Language string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// BaseURL overrides the API endpoint. Useful for tests.
	BaseURL string
	// Client overrides the default HTTP client.
	Client *http.Client
}

// Client talks to the MediaWiki Action API.
type Client struct {
	apiURL    string
	userAgent string
	client    *http.Client
}

// NewClient creates a Wikipedia client with a modest timeout.
func NewClient(cfg Config) *Client {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	apiURL := cfg.BaseURL
	if apiURL == "" {
		apiURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{apiURL: apiURL, userAgent: ua, client: client}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type pagesResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			FullURL   string `json:"fullurl"`
			Extract   string `json:"extract"`
			Revisions []struct {
				Timestamp string `json:"timestamp"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// Search returns the titles of articles matching the query, best first.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprintf("%d", maxResults))
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// Article retrieves one article by title. The second return value is false
// when the article does not exist.
func (c *Client) Article(ctx context.Context, title string) (wikifacts.Document, bool, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "extracts|info|revisions")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")
	params.Set("rvprop", "timestamp")
	params.Set("rvlimit", "1")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var resp pagesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return wikifacts.Document{}, false, err
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing {
		return wikifacts.Document{}, false, nil
	}

	page := resp.Query.Pages[0]
	doc := wikifacts.Document{
		Title:     page.Title,
		URL:       page.FullURL,
		Summary:   firstParagraph(page.Extract),
		Content:   page.Extract,
		WordCount: len(strings.Fields(page.Extract)),
	}
	if len(page.Revisions) > 0 {
		if ts, err := time.Parse(time.RFC3339, page.Revisions[0].Timestamp); err == nil {
			doc.LastModified = &ts
		}
	}
	return doc, true, nil
}

// SearchAndRetrieve searches Wikipedia and retrieves the matching articles,
// truncating each article body to maxCharsPerArticle.
func (c *Client) SearchAndRetrieve(ctx context.Context, query string, maxArticles, maxCharsPerArticle int) ([]wikifacts.Document, error) {
	titles, err := c.Search(ctx, query, maxArticles)
	if err != nil {
		return nil, err
	}

	var docs []wikifacts.Document
	for _, title := range titles {
		doc, ok, err := c.Article(ctx, title)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if maxCharsPerArticle > 0 && len(doc.Content) > maxCharsPerArticle {
			cut := maxCharsPerArticle
			// Back up so the cut never splits a multi-byte rune.
			for cut > 0 && !utf8.RuneStart(doc.Content[cut]) {
				cut--
			}
			doc.Content = doc.Content[:cut] + "..."
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// get issues an API request, backing off and retrying on 429.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err = c.client.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// firstParagraph returns the extract's leading paragraph as the summary.
func firstParagraph(extract string) string {
	trimmed := strings.TrimSpace(extract)
	if idx := strings.Index(trimmed, "\n\n"); idx > 0 {
		return trimmed[:idx]
	}
	if idx := strings.Index(trimmed, "\n"); idx > 0 {
		return trimmed[:idx]
	}
	return trimmed
}
