package tools

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeSearchProvider struct {
	results []SearchResult
	err     *ToolError
	calls   int
}

func (p *fakeSearchProvider) Name() string { return "fake" }

func (p *fakeSearchProvider) Search(ctx context.Context, query string, count int) ([]SearchResult, *ToolError) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

func TestWebSearch_ReturnsFormattedResults(t *testing.T) {
	provider := &fakeSearchProvider{results: []SearchResult{
		{Title: "Go", URL: "https://go.dev", Description: "The Go language"},
	}}
	tool := NewWebSearchTool(provider)
	ctx := newTestContext(t, t.TempDir())

	args, _ := json.Marshal(webSearchArgs{Query: "golang"})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Metadata["count"] != 1 {
		t.Fatalf("expected 1 result, got %v", res.Metadata["count"])
	}
}

func TestWebSearch_CachesSecondCallWithinTTL(t *testing.T) {
	provider := &fakeSearchProvider{results: []SearchResult{{Title: "A", URL: "https://a.com"}}}
	tool := NewWebSearchTool(provider)
	ctx := newTestContext(t, t.TempDir())

	args, _ := json.Marshal(webSearchArgs{Query: "golang"})
	if _, toolErr := tool.Execute(ctx, args); toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if _, toolErr := tool.Execute(ctx, args); toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if provider.calls != 1 {
		t.Fatalf("expected provider called once due to caching, got %d", provider.calls)
	}
}

func TestWebSearch_FiltersByAllowedDomain(t *testing.T) {
	provider := &fakeSearchProvider{results: []SearchResult{
		{Title: "Go", URL: "https://go.dev/"},
		{Title: "Other", URL: "https://example.org/"},
	}}
	tool := NewWebSearchTool(provider)
	ctx := newTestContext(t, t.TempDir())

	args, _ := json.Marshal(webSearchArgs{Query: "golang", AllowedDomains: []string{"go.dev"}})
	res, toolErr := tool.Execute(ctx, args)
	if toolErr != nil {
		t.Fatalf("Execute: %v", toolErr)
	}
	if res.Metadata["count"] != 1 {
		t.Fatalf("expected 1 filtered result, got %v", res.Metadata["count"])
	}
}

func TestWebSearch_SurfacesDistinctErrorTypes(t *testing.T) {
	provider := &fakeSearchProvider{err: NewToolError(ErrInvalidAPIKey, "bad key")}
	tool := NewWebSearchTool(provider)
	ctx := newTestContext(t, t.TempDir())

	args, _ := json.Marshal(webSearchArgs{Query: "golang"})
	_, toolErr := tool.Execute(ctx, args)
	if toolErr == nil || toolErr.Type != ErrInvalidAPIKey {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", toolErr)
	}
}

func TestBraveSearchProvider_MissingAPIKeyIsInvalidAPIKey(t *testing.T) {
	provider := NewBraveSearchProvider("")
	_, toolErr := provider.Search(context.Background(), "golang", 5)
	if toolErr == nil || toolErr.Type != ErrInvalidAPIKey {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", toolErr)
	}
}
