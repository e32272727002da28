package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	webSearchDefaultCount = 5
	webSearchMaxCount     = 10
	webSearchTimeout      = 30 * time.Second
	braveSearchEndpoint   = "https://api.search.brave.com/res/v1/web/search"
)

// SearchResult is one web_search hit.
type SearchResult struct {
	Title       string
	URL         string
	Description string
}

// SearchProvider abstracts a web search backend so web_search can be
// wired to different APIs without changing the tool contract.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, count int) ([]SearchResult, *ToolError)
}

// WebSearchTool implements web_search: delegate to a pluggable
// provider, caching results for 15 minutes.
type WebSearchTool struct {
	provider SearchProvider
	cache    *webCache
}

func NewWebSearchTool(provider SearchProvider) *WebSearchTool {
	return &WebSearchTool{provider: provider, cache: newWebCache(webCacheMaxSize, webCacheTTL)}
}

func (t *WebSearchTool) ID() string          { return "web_search" }
func (t *WebSearchTool) Description() string { return "Search the web for current information. Returns titles, URLs, and snippets." }

func (t *WebSearchTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":           map[string]any{"type": "string", "description": "Search query"},
			"count":           map[string]any{"type": "integer", "description": "Number of results (1-10, default 5)"},
			"allowed_domains": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"blocked_domains": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []any{"query"},
		"additionalProperties": false,
	}
}

type webSearchArgs struct {
	Query          string   `json:"query"`
	Count          int      `json:"count"`
	AllowedDomains []string `json:"allowed_domains"`
	BlockedDomains []string `json:"blocked_domains"`
}

func (t *WebSearchTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a webSearchArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.Query == "" {
		return Result{}, NewToolError(ErrInvalidParams, "query is required")
	}
	if t.provider == nil {
		return Result{}, NewToolError(ErrExecutionFailed, "no search provider configured")
	}

	count := a.Count
	if count <= 0 {
		count = webSearchDefaultCount
	}
	if count > webSearchMaxCount {
		count = webSearchMaxCount
	}

	cacheKey := fmt.Sprintf("%s|%d|%s|%s", a.Query, count, strings.Join(a.AllowedDomains, ","), strings.Join(a.BlockedDomains, ","))
	if cached, ok := t.cache.get(cacheKey); ok {
		return Result{Title: "web_search", Output: cached}, nil
	}

	results, toolErr := t.provider.Search(ctx.Context(), a.Query, count)
	if toolErr != nil {
		return Result{}, toolErr
	}
	results = filterDomains(results, a.AllowedDomains, a.BlockedDomains)

	output := formatSearchResults(a.Query, results, t.provider.Name())
	t.cache.set(cacheKey, output)

	return Result{
		Title:  "web_search",
		Output: output,
		Metadata: map[string]any{
			"count": len(results),
		},
	}, nil
}

func filterDomains(results []SearchResult, allowed, blocked []string) []SearchResult {
	if len(allowed) == 0 && len(blocked) == 0 {
		return results
	}
	var out []SearchResult
	for _, r := range results {
		host := hostOf(r.URL)
		if len(allowed) > 0 && !domainMatchesAny(host, allowed) {
			continue
		}
		if domainMatchesAny(host, blocked) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func domainMatchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func formatSearchResults(query string, results []SearchResult, provider string) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for: %s", query)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Search results for: %s (via %s)\n\n", query, provider))
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s\n", i+1, r.Title, r.URL))
		if r.Description != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", r.Description))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// BraveSearchProvider queries the Brave Search API, the default
// web_search backend.
type BraveSearchProvider struct {
	apiKey string
	client *http.Client
}

func NewBraveSearchProvider(apiKey string) *BraveSearchProvider {
	return &BraveSearchProvider{apiKey: apiKey, client: &http.Client{Timeout: webSearchTimeout}}
}

func (p *BraveSearchProvider) Name() string { return "brave" }

func (p *BraveSearchProvider) Search(ctx context.Context, query string, count int) ([]SearchResult, *ToolError) {
	if p.apiKey == "" {
		return nil, NewToolError(ErrInvalidAPIKey, "brave search api key is not configured")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", count))

	req, err := http.NewRequestWithContext(ctx, "GET", braveSearchEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, NewToolErrorf(ErrExecutionFailed, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewToolErrorf(ErrExecutionFailed, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewToolErrorf(ErrExecutionFailed, "read response: %v", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewToolErrorf(ErrInvalidAPIKey, "brave search rejected the api key: %s", string(body))
	case http.StatusTooManyRequests:
		return nil, NewToolErrorf(ErrRateLimited, "brave search rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewToolErrorf(ErrExecutionFailed, "brave search returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewToolErrorf(ErrExecutionFailed, "parse response: %v", err)
	}

	results := make([]SearchResult, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, SearchResult{Title: r.Title, URL: r.URL, Description: r.Description})
	}
	return results, nil
}
