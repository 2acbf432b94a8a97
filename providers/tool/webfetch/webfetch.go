package webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/leofalp/aimux/internal/utils"
	"github.com/leofalp/aimux/providers/tool"
)

const (
	// Name is the name the tool registers under.
	Name = "web_fetch"

	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "aimux-webfetch/1.0"
	// MaxBodySize caps the downloaded HTML.
	MaxBodySize = 10 * 1024 * 1024
	// MaxMarkdownLength caps the Markdown handed back to the model.
	MaxMarkdownLength = 20_000
	maxRedirects      = 10
)

// Input is the argument object the model supplies.
type Input struct {
	URL string `json:"url" jsonschema:"description=URL of the page to fetch; https:// is assumed when the scheme is missing"`
}

// Output is returned to the model.
type Output struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// Fetcher downloads pages and converts them to Markdown.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher. A nil client gets a client with
// DefaultTimeout that follows up to ten redirects.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (>%d)", maxRedirects)
				}
				return nil
			},
		}
	}
	return &Fetcher{client: client, userAgent: DefaultUserAgent}
}

// NewWebFetchTool returns the tool definition backed by a default Fetcher.
func NewWebFetchTool() tool.Definition {
	return NewFetcher(nil).Tool()
}

// Tool returns a tool definition backed by f.
func (f *Fetcher) Tool() tool.Definition {
	return tool.NewTool(Name, f.Fetch,
		tool.WithDescription("Fetches a web page and returns its content converted to Markdown, together with the final URL after redirects."),
	)
}

// Fetch downloads in.URL and converts the HTML body to Markdown.
func (f *Fetcher) Fetch(ctx context.Context, in Input) (Output, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return Output{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return Output{
		URL:      resp.Request.URL.String(),
		Markdown: utils.TruncateString(markdown, MaxMarkdownLength),
	}, nil
}
