// Package pagetext obtains the visible text of a page, the input a
// summarize run sends to a provider.
package pagetext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/render"
)

const (
	defaultMaxBytes = 5 << 20
	defaultTimeout  = 30 * time.Second

	// below this many characters the readability extract is considered a miss
	minReadableChars = 200
)

// Fetcher downloads a URL and extracts its readable text.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Client    *http.Client
	UserAgent string
	// MaxBytes caps the downloaded body. Zero means 5 MiB.
	MaxBytes int64
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{client: client, userAgent: cfg.UserAgent, maxBytes: maxBytes}
}

// Text fetches pageURL and returns its text.
func (f *Fetcher) Text(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.InvalidInput(fmt.Sprintf("not a web page URL: %q", pageURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "build page request")
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.InvalidInput(fmt.Sprintf("fetch page: status %d", resp.StatusCode),
			errors.WithStatus(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", errors.Wrap(err, "read page")
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		return normalize(string(body)), nil
	}
	return Extract(body, u), nil
}

// Extract returns the main text of an HTML document. Readability picks the
// article body; when it finds too little, the whole <body> text is used with
// script, style and noscript removed.
func Extract(html []byte, pageURL *url.URL) string {
	if article, err := readability.FromReader(bytes.NewReader(html), pageURL); err == nil && article.Node != nil {
		if inner, err := goquery.NewDocumentFromNode(article.Node).Html(); err == nil {
			if text := normalize(render.PlainText(inner)); len(text) >= minReadableChars {
				return text
			}
		}
	}
	return BodyText(html)
}

// BodyText returns the visible text of the document body, one block per line.
func BodyText(html []byte) string {
	return normalize(render.PlainText(string(html)))
}

// normalize collapses runs of spaces within lines and drops blank lines.
func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Static is a page source that always returns the same text. It serves
// callers that already have the text (stdin, an HTTP request body).
type Static string

// Text returns s.
func (s Static) Text(context.Context, string) (string, error) {
	return string(s), nil
}
