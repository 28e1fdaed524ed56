// Package websearch implements the web search pipeline: obtain result
// links from DuckDuckGo's HTML endpoint, fetch a few pages, strip
// markup, and ask Gemini for one combined summary.
package websearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/telegembot/telegem/internal/config"
	"github.com/telegembot/telegem/internal/gemini"
)

const maxBodyBytes = 2 * 1024 * 1024

// Client performs a web search and produces an AI summary of the results.
type Client interface {
	// SearchAndSummarize returns a summary and the full result link
	// list. When every page fetch fails it returns the fixed "nothing
	// found" message with the links and makes no generation call.
	SearchAndSummarize(ctx context.Context, query string) (string, []string, error)
}

type duckDuckGoClient struct {
	httpClient *http.Client
	gen        gemini.Client
	log        *slog.Logger
	cfg        config.SearchConfig

	nothingFoundMsg string
}

// New creates a search client using DuckDuckGo's HTML endpoint as the
// result provider and the given Gemini client as the summarizer.
func New(gen gemini.Client, cfg config.SearchConfig, msgs config.MessagesConfig, log *slog.Logger) Client {
	return &duckDuckGoClient{
		// Single shared client; per-call timeouts come from request contexts.
		httpClient:      &http.Client{},
		gen:             gen,
		log:             log.With("component", "websearch"),
		cfg:             cfg,
		nothingFoundMsg: msgs.NothingFound,
	}
}

// SearchAndSummarize runs the full pipeline. Individual page-fetch
// failures are skipped; only a provider or summarizer failure is
// returned as an error.
func (c *duckDuckGoClient) SearchAndSummarize(ctx context.Context, query string) (string, []string, error) {
	links, err := c.search(ctx, query)
	if err != nil {
		c.log.ErrorContext(ctx, "Search provider request failed", "query", query, "error", err)
		return "", nil, fmt.Errorf("search failed: %w", err)
	}

	fetchCount := c.cfg.FetchCount
	if fetchCount > len(links) {
		fetchCount = len(links)
	}

	var summaries []string
	for _, link := range links[:fetchCount] {
		content, fetchErr := c.fetchPageText(ctx, link)
		if fetchErr != nil {
			c.log.WarnContext(ctx, "Failed to fetch page content, skipping link", "url", link, "error", fetchErr)
			continue
		}
		summaries = append(summaries, content)
	}

	if len(summaries) == 0 {
		c.log.InfoContext(ctx, "No page content obtained, skipping summarization", "query", query, "link_count", len(links))
		return c.nothingFoundMsg, links, nil
	}

	prompt := fmt.Sprintf("Summarize these search results for '%s': %s", query, strings.Join(summaries, "\n"))
	summary, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		c.log.ErrorContext(ctx, "Search summarization failed", "query", query, "error", err)
		return "", links, fmt.Errorf("search summarization failed: %w", err)
	}

	return summary, links, nil
}

// search queries the DuckDuckGo HTML endpoint and extracts up to
// MaxResults result links.
func (c *duckDuckGoClient) search(ctx context.Context, query string) ([]string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search base URL: %w", err)
	}
	u := *base
	qs := u.Query()
	qs.Set("q", query)
	u.RawQuery = qs.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	links, err := parseResultLinks(body, c.cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	c.log.DebugContext(ctx, "Search completed", "query", query, "link_count", len(links))
	return links, nil
}

// fetchPageText retrieves one result page, strips markup, and truncates
// the plain text to the configured limit. Each call gets its own short
// timeout so one slow page cannot stall the whole search.
func (c *duckDuckGoClient) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create page request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	text := extractText(body)
	if text == "" {
		return "", fmt.Errorf("page yielded no text content")
	}

	if len(text) > c.cfg.PageContentLimit {
		text = text[:c.cfg.PageContentLimit]
	}
	return text, nil
}

// parseResultLinks walks the DuckDuckGo HTML result page. Result title
// links look like: <a class="result__a" href="...">Title</a>.
func parseResultLinks(htmlBytes []byte, maxResults int) ([]string, error) {
	root, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, err
	}

	var out []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil || len(out) >= maxResults {
			return
		}

		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			if href := attr(n, "href"); href != "" {
				out = append(out, normalizeResultURL(href))
			}
		}

		for child := n.FirstChild; child != nil && len(out) < maxResults; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return out, nil
}

// normalizeResultURL unwraps DuckDuckGo's redirect URLs, which look
// like /l/?uddg=<encoded target>.
func normalizeResultURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	if u.Path == "/l/" {
		if uddg := u.Query().Get("uddg"); uddg != "" {
			if decoded, err := url.QueryUnescape(uddg); err == nil && decoded != "" {
				return decoded
			}
		}
	}

	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	return href
}

// extractText renders the visible text of an HTML document, skipping
// script and style elements and collapsing whitespace.
func extractText(htmlBytes []byte) string {
	root, err := html.Parse(bytes.NewReader(htmlBytes))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(b.String()), " ")
}

func hasClass(n *html.Node, want string) bool {
	for _, part := range strings.Fields(attr(n, "class")) {
		if part == want {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
