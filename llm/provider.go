// Package llm builds provider-specific summarize requests and performs the
// single HTTP call that turns them into a summary.
//
// Build is a pure transform: it picks the codec for the selected provider
// and produces a ProviderRequest (endpoint, headers, body). An Invoker sends
// it and decodes the reply with the same codec. Wire encoding uses the
// official SDK parameter and response types; transport is a plain
// http.Client so the request stays an inspectable value.
package llm

import (
	"context"
	"net/http"

	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/preferences"
	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/render"
)

// NoSummary is the result text when a provider answers successfully but
// without any assistant text. It is a success, not an error.
const NoSummary = "No summary available."

// MarkupInstruction is appended to prompts when the presentation layer
// expects raw HTML.
const MarkupInstruction = " Summary MUST be returned in valid HTML5 format. The output should not have ```html opening and closing ticks"

// Default endpoints.
const (
	OpenAIBaseURL   = "https://api.openai.com/v1"
	ClaudeBaseURL   = "https://api.anthropic.com/v1"
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// ProviderRequest is a fully prepared outbound call.
type ProviderRequest struct {
	Provider provider.ID
	Model    string
	Endpoint string
	Headers  http.Header
	Body     []byte
	Format   render.Format
}

// Result is a successful summarize call.
type Result struct {
	Provider provider.ID
	Model    string
	Text     string
	Format   render.Format
	// Empty is set when the provider returned no text and Text is NoSummary.
	Empty bool
}

// BuildOptions adjusts request construction. The zero value targets the
// public endpoints.
type BuildOptions struct {
	// BaseURLs overrides the API root per provider (proxies, tests).
	BaseURLs map[provider.ID]string
}

// Invoker performs one provider call.
type Invoker interface {
	Invoke(ctx context.Context, req *ProviderRequest) (*Result, error)
}

// codec pairs the request encoder with the response decoder of one provider.
type codec struct {
	baseURL string
	path    string
	build   func(sel preferences.Selection, pageText, markup string) (body []byte, headers http.Header, err error)
	parse   func(body []byte) (string, error)
}

var codecs = map[provider.ID]codec{
	provider.OpenAI:   {baseURL: OpenAIBaseURL, path: "/responses", build: buildOpenAI, parse: parseOpenAI},
	provider.Claude:   {baseURL: ClaudeBaseURL, path: "/messages", build: buildClaude, parse: parseClaude},
	provider.DeepSeek: {baseURL: DeepSeekBaseURL, path: "/chat/completions", build: buildDeepSeek, parse: parseDeepSeek},
}

func lookupCodec(id provider.ID) (codec, error) {
	c, ok := codecs[id]
	if !ok {
		return codec{}, errors.UnsupportedProvider(string(id))
	}
	return c, nil
}

// Build prepares the request for sel. It performs no I/O.
func Build(sel preferences.Selection, pageText string, format render.Format, opts BuildOptions) (*ProviderRequest, error) {
	c, err := lookupCodec(sel.Provider)
	if err != nil {
		return nil, err
	}

	markup := ""
	if format != render.FormatMarkdown {
		format = render.FormatHTML
		markup = MarkupInstruction
	}

	body, headers, err := c.build(sel, pageText, markup)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInternal, "encode request",
			errors.WithProvider(provider.Name(sel.Provider)))
	}
	headers.Set("Content-Type", "application/json")

	base := c.baseURL
	if u := opts.BaseURLs[sel.Provider]; u != "" {
		base = u
	}

	return &ProviderRequest{
		Provider: sel.Provider,
		Model:    sel.Model,
		Endpoint: base + c.path,
		Headers:  headers,
		Body:     body,
		Format:   format,
	}, nil
}

func bearer(secret string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+secret)
	return h
}
