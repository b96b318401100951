package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/preferences"
	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/render"
)

type capture struct {
	calls   atomic.Int32
	mu      sync.Mutex
	path    string
	headers http.Header
	body    string
}

func fakeProvider(t *testing.T, status int, envelope string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls.Add(1)
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.path = r.URL.Path
		c.headers = r.Header.Clone()
		c.body = string(b)
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, envelope)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func invokeAgainst(t *testing.T, srv *httptest.Server, p preferences.Preferences) (*Result, error) {
	t.Helper()
	sel, err := preferences.Resolve(p)
	if err != nil {
		t.Fatal(err)
	}
	req, err := Build(sel, "Hello world", render.FormatHTML, BuildOptions{
		BaseURLs: map[provider.ID]string{sel.Provider: srv.URL + "/v1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	inv := NewHTTPInvoker(HTTPInvokerConfig{Logger: logging.Discard(), UserAgent: "pagesum-test"})
	return inv.Invoke(context.Background(), req)
}

func TestInvoke_ClaudeEndToEnd(t *testing.T) {
	srv, c := fakeProvider(t, http.StatusOK, `{"content":[{"text":"Summary: hi"}]}`)

	res, err := invokeAgainst(t, srv, preferences.Preferences{
		Provider: provider.Claude,
		Secrets:  map[provider.ID]string{provider.Claude: "sk-x"},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Text != "Summary: hi" || res.Empty {
		t.Errorf("Result = %+v", res)
	}
	if res.Model != "claude-3-5-haiku-latest" {
		t.Errorf("Model = %s", res.Model)
	}
	if c.path != "/v1/messages" {
		t.Errorf("path = %s", c.path)
	}
	if c.headers.Get("x-api-key") != "sk-x" || c.headers.Get("anthropic-version") != "2023-06-01" {
		t.Errorf("headers = %v", c.headers)
	}
	if c.headers.Get("User-Agent") != "pagesum-test" {
		t.Errorf("User-Agent = %q", c.headers.Get("User-Agent"))
	}
	if !strings.Contains(c.body, preferences.DefaultInstruction) {
		t.Errorf("body lacks default instruction: %s", c.body)
	}
}

func TestInvoke_OpenAIJoinsAssistantText(t *testing.T) {
	envelope := `{
		"id": "resp_1",
		"object": "response",
		"status": "completed",
		"output": [
			{"type": "reasoning", "id": "rs_1", "summary": []},
			{"type": "message", "id": "msg_1", "role": "assistant", "status": "completed", "content": [
				{"type": "output_text", "text": "<p>About Go</p>", "annotations": []},
				{"type": "output_text", "text": "<ul><li>fast</li></ul>  ", "annotations": []}
			]}
		]
	}`
	srv, c := fakeProvider(t, http.StatusOK, envelope)

	res, err := invokeAgainst(t, srv, preferences.Preferences{
		Provider: provider.OpenAI,
		Secrets:  map[provider.ID]string{provider.OpenAI: "sk-o"},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Text != "<p>About Go</p>\n<ul><li>fast</li></ul>" {
		t.Errorf("Text = %q", res.Text)
	}
	if c.path != "/v1/responses" || c.headers.Get("Authorization") != "Bearer sk-o" {
		t.Errorf("path %s auth %q", c.path, c.headers.Get("Authorization"))
	}
}

func TestInvoke_DeepSeekTrims(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusOK,
		`{"id":"c1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Deep summary \n"}}]}`)

	res, err := invokeAgainst(t, srv, preferences.Preferences{Provider: provider.DeepSeek})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Text != "Deep summary" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestInvoke_EmptyEnvelopeIsPlaceholder(t *testing.T) {
	tests := []struct {
		id       provider.ID
		envelope string
	}{
		{provider.OpenAI, `{"output":[]}`},
		{provider.OpenAI, `{"output":[{"type":"message","role":"assistant","content":[]}]}`},
		{provider.Claude, `{"content":[]}`},
		{provider.Claude, `{"content":[{"type":"text","text":"   "}]}`},
		{provider.DeepSeek, `{"choices":[]}`},
		{provider.DeepSeek, `{"choices":[{"message":{"content":""}}]}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.id)+" "+tt.envelope, func(t *testing.T) {
			srv, _ := fakeProvider(t, http.StatusOK, tt.envelope)
			res, err := invokeAgainst(t, srv, preferences.Preferences{Provider: tt.id})
			if err != nil {
				t.Fatalf("empty envelope must not fail: %v", err)
			}
			if res.Text != NoSummary || !res.Empty {
				t.Errorf("Result = %+v, want placeholder", res)
			}
		})
	}
}

func TestInvoke_Non2xxIsTransport(t *testing.T) {
	for _, id := range provider.IDs() {
		t.Run(string(id), func(t *testing.T) {
			srv, c := fakeProvider(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`)
			_, err := invokeAgainst(t, srv, preferences.Preferences{Provider: id})
			if !errors.Is(err, errors.ErrCodeTransport) {
				t.Fatalf("err = %v, want TRANSPORT", err)
			}
			want := provider.Name(id) + " HTTP error! status: 500"
			if err.Error() != want {
				t.Errorf("Error() = %q, want %q", err.Error(), want)
			}
			if sErr := errors.AsSummaryError(err); sErr.Metadata()["status"] != "500" {
				t.Errorf("metadata = %v", sErr.Metadata())
			}
			if c.calls.Load() != 1 {
				t.Errorf("calls = %d, want exactly 1 (no retry)", c.calls.Load())
			}
		})
	}
}

func TestInvoke_MalformedIsProtocol(t *testing.T) {
	for _, id := range provider.IDs() {
		t.Run(string(id), func(t *testing.T) {
			srv, _ := fakeProvider(t, http.StatusOK, `<html>gateway</html>`)
			_, err := invokeAgainst(t, srv, preferences.Preferences{Provider: id})
			if !errors.Is(err, errors.ErrCodeProtocol) {
				t.Fatalf("err = %v, want PROTOCOL", err)
			}
			if errors.Display(err) != "unexpected response from "+provider.Name(id) {
				t.Errorf("Display() = %q", errors.Display(err))
			}
		})
	}
}

func TestInvoke_WrongShapeIsProtocol(t *testing.T) {
	tests := []struct {
		id       provider.ID
		envelope string
	}{
		{provider.Claude, `{}`},
		{provider.Claude, `[]`},
		{provider.Claude, `null`},
		{provider.Claude, `42`},
		{provider.Claude, `{"content":"oops"}`},
		{provider.Claude, `{"content":null}`},
		{provider.Claude, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`},
		{provider.OpenAI, `{}`},
		{provider.OpenAI, `null`},
		{provider.OpenAI, `{"output":{"text":"x"}}`},
		{provider.OpenAI, `{"error":{"message":"server_error"}}`},
		{provider.DeepSeek, `42`},
		{provider.DeepSeek, `[]`},
		{provider.DeepSeek, `null`},
		{provider.DeepSeek, `"text"`},
		{provider.DeepSeek, `{"choices":"oops"}`},
		{provider.DeepSeek, `{"choices":{"message":{"content":"x"}}}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.id)+" "+tt.envelope, func(t *testing.T) {
			srv, _ := fakeProvider(t, http.StatusOK, tt.envelope)
			res, err := invokeAgainst(t, srv, preferences.Preferences{Provider: tt.id})
			if !errors.Is(err, errors.ErrCodeProtocol) {
				t.Fatalf("Invoke = %+v, %v; want PROTOCOL", res, err)
			}
		})
	}
}

func TestInvoke_DeepSeekMissingChoicesIsPlaceholder(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusOK, `{"id":"c1","object":"chat.completion"}`)
	res, err := invokeAgainst(t, srv, preferences.Preferences{Provider: provider.DeepSeek})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Text != NoSummary || !res.Empty {
		t.Errorf("Result = %+v, want placeholder", res)
	}
}

func TestInvoke_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sel, _ := preferences.Resolve(preferences.Preferences{Provider: provider.OpenAI})
	req, _ := Build(sel, "x", render.FormatHTML, BuildOptions{BaseURLs: map[provider.ID]string{provider.OpenAI: url}})

	_, err := NewHTTPInvoker(HTTPInvokerConfig{Logger: logging.Discard()}).Invoke(context.Background(), req)
	if !errors.Is(err, errors.ErrCodeNetworkErr) {
		t.Fatalf("err = %v, want NETWORK_ERR", err)
	}
	if !strings.HasPrefix(err.Error(), "OpenAI request failed: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestInvoke_ContextCanceled(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusOK, `{}`)
	sel, _ := preferences.Resolve(preferences.Preferences{Provider: provider.Claude})
	req, _ := Build(sel, "x", render.FormatHTML, BuildOptions{BaseURLs: map[provider.ID]string{provider.Claude: srv.URL}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPInvoker(HTTPInvokerConfig{Logger: logging.Discard()}).Invoke(ctx, req)
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("err = %v, want CANCELED", err)
	}
}

func TestInvoke_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	sel, _ := preferences.Resolve(preferences.Preferences{Provider: provider.DeepSeek})
	req, _ := Build(sel, "x", render.FormatHTML, BuildOptions{BaseURLs: map[provider.ID]string{provider.DeepSeek: srv.URL}})

	inv := NewHTTPInvoker(HTTPInvokerConfig{Timeout: 50 * time.Millisecond, Logger: logging.Discard()})
	_, err := inv.Invoke(context.Background(), req)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestInvoke_UnsupportedProvider(t *testing.T) {
	inv := NewHTTPInvoker(HTTPInvokerConfig{Logger: logging.Discard()})
	_, err := inv.Invoke(context.Background(), &ProviderRequest{Provider: "gemini", Endpoint: "http://127.0.0.1:1"})
	if !errors.Is(err, errors.ErrCodeUnsupportedProvider) {
		t.Errorf("err = %v, want UNSUPPORTED_PROVIDER", err)
	}
	_, err = inv.Invoke(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil request err = %v", err)
	}
}

func TestMockInvoker(t *testing.T) {
	m := NewMockInvoker("done")
	req := &ProviderRequest{Provider: provider.Claude, Model: "m", Format: render.FormatMarkdown}

	res, err := m.Invoke(context.Background(), req)
	if err != nil || res.Text != "done" || res.Format != render.FormatMarkdown {
		t.Fatalf("Invoke = %+v, %v", res, err)
	}
	if m.CallCount() != 1 || m.LastRequest() != req {
		t.Error("call tracking mismatch")
	}

	m.SetResponse("")
	res, _ = m.Invoke(context.Background(), req)
	if res.Text != NoSummary || !res.Empty {
		t.Errorf("empty mock response = %+v", res)
	}

	m.SetError(errors.Transport("Claude", 503))
	if _, err := m.Invoke(context.Background(), req); !errors.Is(err, errors.ErrCodeTransport) {
		t.Errorf("err = %v", err)
	}
}
