// Package websearch_test tests the search pipeline against local HTTP
// servers standing in for the search provider and result pages.
package websearch_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/telegembot/telegem/internal/config"
	"github.com/telegembot/telegem/internal/websearch"
)

type fakeGen struct {
	response string
	err      error
	prompts  []string
}

func (g *fakeGen) GenerateText(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

func (g *fakeGen) GenerateFromImage(context.Context, string, []byte) (string, error) {
	return "", fmt.Errorf("not used in search")
}

func searchConfig(baseURL string) config.SearchConfig {
	return config.SearchConfig{
		BaseURL:          baseURL,
		UserAgent:        "test-agent",
		MaxResults:       5,
		FetchCount:       3,
		FetchTimeout:     2 * time.Second,
		PageContentLimit: 1000,
	}
}

func testMessages() config.MessagesConfig {
	return config.MessagesConfig{NothingFound: "I couldn't find any relevant information."}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resultsPage renders a minimal provider result page with one
// result__a anchor per link, wrapped in the provider's redirect form.
func resultsPage(links []string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, link := range links {
		fmt.Fprintf(&b, `<div class="result"><a class="result__a" href="/l/?uddg=%s">Title</a></div>`, url.QueryEscape(link))
	}
	// Unrelated anchors must be ignored.
	b.WriteString(`<a href="https://ads.example/ignored">Ad</a>`)
	b.WriteString("</body></html>")
	return b.String()
}

func TestSearchAndSummarize(t *testing.T) {
	t.Parallel()

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body><p>Content of %s</p><script>ignored()</script></body></html>", r.URL.Path)
	}))
	t.Cleanup(pages.Close)

	links := []string{pages.URL + "/one", pages.URL + "/two"}
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go generics" {
			t.Errorf("provider received query %q", got)
		}
		fmt.Fprint(w, resultsPage(links))
	}))
	t.Cleanup(provider.Close)

	gen := &fakeGen{response: "a combined summary"}
	client := websearch.New(gen, searchConfig(provider.URL), testMessages(), discardLogger())

	summary, gotLinks, err := client.SearchAndSummarize(context.Background(), "go generics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "a combined summary" {
		t.Errorf("summary = %q", summary)
	}
	if len(gotLinks) != 2 || gotLinks[0] != links[0] || gotLinks[1] != links[1] {
		t.Errorf("links = %v, want %v", gotLinks, links)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("generation calls = %d, want 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.HasPrefix(prompt, "Summarize these search results for 'go generics': ") {
		t.Errorf("prompt = %q", prompt)
	}
	if !strings.Contains(prompt, "Content of /one") || !strings.Contains(prompt, "Content of /two") {
		t.Errorf("prompt missing page content: %q", prompt)
	}
	if strings.Contains(prompt, "ignored()") {
		t.Errorf("script content leaked into prompt: %q", prompt)
	}
}

func TestAllPageFetchesFail(t *testing.T) {
	t.Parallel()

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(pages.Close)

	links := []string{pages.URL + "/a", pages.URL + "/b", pages.URL + "/c"}
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage(links))
	}))
	t.Cleanup(provider.Close)

	gen := &fakeGen{response: "should not be called"}
	client := websearch.New(gen, searchConfig(provider.URL), testMessages(), discardLogger())

	summary, gotLinks, err := client.SearchAndSummarize(context.Background(), "anything")
	if err != nil {
		t.Fatalf("fetch failures must not fail the search: %v", err)
	}
	if summary != "I couldn't find any relevant information." {
		t.Errorf("summary = %q, want the fixed nothing-found message", summary)
	}
	if len(gotLinks) != 3 {
		t.Errorf("links = %v, links must still be returned", gotLinks)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("summarizer called with no content, prompts = %v", gen.prompts)
	}
}

func TestProviderFailure(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(provider.Close)

	client := websearch.New(&fakeGen{}, searchConfig(provider.URL), testMessages(), discardLogger())

	if _, _, err := client.SearchAndSummarize(context.Background(), "q"); err == nil {
		t.Error("expected error when the provider fails")
	}
}

func TestSummarizerFailure(t *testing.T) {
	t.Parallel()

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>some text</body></html>")
	}))
	t.Cleanup(pages.Close)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage([]string{pages.URL + "/p"}))
	}))
	t.Cleanup(provider.Close)

	gen := &fakeGen{err: fmt.Errorf("quota exceeded")}
	client := websearch.New(gen, searchConfig(provider.URL), testMessages(), discardLogger())

	if _, _, err := client.SearchAndSummarize(context.Background(), "q"); err == nil {
		t.Error("expected error when summarization fails")
	}
}

func TestResultLimitRespected(t *testing.T) {
	t.Parallel()

	var many []string
	for i := 0; i < 12; i++ {
		many = append(many, fmt.Sprintf("https://example.com/%d", i))
	}
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage(many))
	}))
	t.Cleanup(provider.Close)

	gen := &fakeGen{response: "summary"}
	client := websearch.New(gen, searchConfig(provider.URL), testMessages(), discardLogger())

	_, links, err := client.SearchAndSummarize(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 5 {
		t.Errorf("links = %d, want the configured maximum of 5", len(links))
	}
}

func TestPageContentTruncated(t *testing.T) {
	t.Parallel()

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><body>%s</body></html>", strings.Repeat("a", 5000))
	}))
	t.Cleanup(pages.Close)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, resultsPage([]string{pages.URL + "/long"}))
	}))
	t.Cleanup(provider.Close)

	gen := &fakeGen{response: "summary"}
	cfg := searchConfig(provider.URL)
	cfg.PageContentLimit = 1000
	client := websearch.New(gen, cfg, testMessages(), discardLogger())

	if _, _, err := client.SearchAndSummarize(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := gen.prompts[0]
	if strings.Count(prompt, "a") > 1100 {
		t.Errorf("page content was not truncated, prompt length %d", len(prompt))
	}
}
