package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	webFetchMaxBytes = 200 * 1024
	webFetchTimeout  = 30 * time.Second
	webCacheTTL      = 15 * time.Minute
	webCacheMaxSize  = 100
	webFetchUserAgent = "Mozilla/5.0 (compatible; ok-agent/1.0)"
)

// WebFetchTool implements web_fetch: retrieve a URL and extract its
// text content. HTTPS-only; upgrades a plain http:// URL before
// dialing, and refuses to silently follow a redirect to a different
// host.
type WebFetchTool struct {
	client *http.Client
	cache  *webCache
}

func NewWebFetchTool() *WebFetchTool {
	return &WebFetchTool{
		client: &http.Client{
			Timeout: webFetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) == 0 {
					return nil
				}
				if req.URL.Host != via[0].URL.Host {
					return errCrossHostRedirect{from: via[0].URL.String(), to: req.URL.String()}
				}
				return nil
			},
		},
		cache: newWebCache(webCacheMaxSize, webCacheTTL),
	}
}

type errCrossHostRedirect struct{ from, to string }

func (e errCrossHostRedirect) Error() string {
	return fmt.Sprintf("redirect from %s to a different host (%s)", e.from, e.to)
}

func (t *WebFetchTool) ID() string          { return "web_fetch" }
func (t *WebFetchTool) Description() string { return "Fetch a URL over HTTPS and return its content as markdown or plain text." }

func (t *WebFetchTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "URL to fetch; http:// is upgraded to https://"},
		},
		"required":             []any{"url"},
		"additionalProperties": false,
	}
}

type webFetchArgs struct {
	URL string `json:"url"`
}

func (t *WebFetchTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a webFetchArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.URL == "" {
		return Result{}, NewToolError(ErrInvalidParams, "url is required")
	}

	parsed, err := url.Parse(a.URL)
	if err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid url: %v", err)
	}
	if parsed.Scheme == "http" {
		parsed.Scheme = "https"
	}
	if parsed.Scheme != "https" {
		return Result{}, NewToolError(ErrInvalidParams, "only http/https URLs are supported")
	}
	if parsed.Host == "" {
		return Result{}, NewToolError(ErrInvalidParams, "missing hostname in url")
	}
	resolvedURL := parsed.String()

	if cached, ok := t.cache.get(resolvedURL); ok {
		return Result{Title: "web_fetch", Output: cached}, nil
	}

	req, err := http.NewRequestWithContext(ctx.Context(), "GET", resolvedURL, nil)
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "build request: %v", err)
	}
	req.Header.Set("User-Agent", webFetchUserAgent)
	req.Header.Set("Accept", "text/html,application/json,text/plain;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		if redir, ok := asCrossHostRedirect(err); ok {
			return Result{}, NewToolError(ErrRedirectDetected, redir.Error())
		}
		return Result{}, NewToolErrorf(ErrExecutionFailed, "fetch %s: %v", resolvedURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, webFetchMaxBytes))
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "read body: %v", err)
	}

	finalURL := resolvedURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	contentType := resp.Header.Get("Content-Type")
	text := extractFetchedText(body, contentType)

	output := fmt.Sprintf("URL: %s\nStatus: %d\n\n%s", finalURL, resp.StatusCode, text)
	t.cache.set(resolvedURL, output)

	return Result{
		Title:  "web_fetch",
		Output: output,
		Metadata: map[string]any{
			"url":    finalURL,
			"status": resp.StatusCode,
		},
	}, nil
}

func asCrossHostRedirect(err error) (errCrossHostRedirect, bool) {
	for err != nil {
		if redir, ok := err.(errCrossHostRedirect); ok {
			return redir, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return errCrossHostRedirect{}, false
}

func extractFetchedText(body []byte, contentType string) string {
	switch {
	case strings.Contains(contentType, "application/json"):
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			formatted, _ := json.MarshalIndent(v, "", "  ")
			return string(formatted)
		}
		return string(body)
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		return htmlToMarkdown(string(body))
	default:
		return string(body)
	}
}
