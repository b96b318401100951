package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vinayprograms/pagesum/cache"
	"github.com/vinayprograms/pagesum/credentials"
	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/llm"
	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/pagetext"
	"github.com/vinayprograms/pagesum/preferences"
	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/state"
	"github.com/vinayprograms/pagesum/summarize"
)

type testEnv struct {
	srv     *httptest.Server
	prefs   *preferences.Store
	cache   *cache.Cache
	invoker *llm.MockInvoker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, id := range provider.IDs() {
		for _, name := range credentials.EnvVars(id) {
			t.Setenv(name, "")
		}
	}

	kv := state.NewMemoryStore()
	env := &testEnv{
		prefs:   preferences.NewStore(kv),
		cache:   cache.New(kv),
		invoker: llm.NewMockInvoker("<p>fresh</p>"),
	}
	orch, err := summarize.New(summarize.Config{
		Preferences: env.prefs,
		Cache:       env.cache,
		Source:      pagetext.Static("page body"),
		Invoker:     env.invoker,
		Logger:      logging.Discard(),
	})
	if err != nil {
		t.Fatal(err)
	}
	env.srv = httptest.NewServer(New(orch, env.cache, logging.Discard()).Router())
	t.Cleanup(env.srv.Close)
	return env
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	var h healthResponse
	decode(t, resp, &h)
	if resp.StatusCode != http.StatusOK || h.Status != "ok" || h.Warning != summarize.WarningNoKeys {
		t.Errorf("health = %d %+v", resp.StatusCode, h)
	}
}

func TestProviders(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/providers")
	if err != nil {
		t.Fatal(err)
	}
	var got []provider.Provider
	decode(t, resp, &got)
	if len(got) != 3 || got[0].ID != provider.OpenAI {
		t.Errorf("providers = %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	env := newTestEnv(t)
	if err := env.prefs.SetSecret(provider.OpenAI, "sk-o"); err != nil {
		t.Fatal(err)
	}

	resp := post(t, env.srv.URL+"/api/summarize", `{"url":"see https://example.com/a please","model":"openai:gpt-4o"}`)
	var got summaryResponse
	decode(t, resp, &got)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got.URL != "https://example.com/a" || got.Summary != "<p>fresh</p>" || got.Model != "gpt-4o" {
		t.Errorf("response = %+v", got)
	}

	// The fresh summary is now served from the cache.
	cached, err := http.Get(env.srv.URL + "/api/summary?url=https://example.com/a")
	if err != nil {
		t.Fatal(err)
	}
	var c summaryResponse
	decode(t, cached, &c)
	if cached.StatusCode != http.StatusOK || !c.Cached || c.Summary != "<p>fresh</p>" {
		t.Errorf("cached = %d %+v", cached.StatusCode, c)
	}
}

func TestSummarize_UsesGivenText(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.SetSecret(provider.OpenAI, "sk-o")

	resp := post(t, env.srv.URL+"/api/summarize", `{"url":"https://example.com/b","text":"pasted article"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := string(env.invoker.LastRequest().Body); !strings.Contains(body, "pasted article") {
		t.Errorf("request body missing given text: %s", body)
	}
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		setup   func(env *testEnv)
		status  int
		message string
		code    errors.ErrorCode
	}{
		{
			name:    "missing key",
			body:    `{"url":"https://example.com"}`,
			status:  http.StatusBadRequest,
			message: "Please set your OpenAI API key in extension options.",
			code:    errors.ErrCodeConfiguration,
		},
		{
			name:   "no url",
			body:   `{"url":"nothing here"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "bad json",
			body:   `{`,
			status: http.StatusBadRequest,
		},
		{
			name: "unknown provider",
			body: `{"url":"https://example.com","model":"gemini:pro"}`,
			setup: func(env *testEnv) {
				env.prefs.SetSecret(provider.OpenAI, "sk-o")
			},
			status: http.StatusBadRequest,
		},
		{
			name: "provider failure",
			body: `{"url":"https://example.com"}`,
			setup: func(env *testEnv) {
				env.prefs.SetSecret(provider.OpenAI, "sk-o")
				env.invoker.SetError(errors.Transport("OpenAI", 500))
			},
			status:  http.StatusBadGateway,
			message: "OpenAI HTTP error! status: 500",
			code:    errors.ErrCodeTransport,
		},
		{
			name: "wrong envelope",
			body: `{"url":"https://example.com"}`,
			setup: func(env *testEnv) {
				env.prefs.SetSecret(provider.OpenAI, "sk-o")
				env.invoker.SetError(errors.Protocol("OpenAI"))
			},
			status:  http.StatusBadGateway,
			message: "unexpected response from OpenAI",
			code:    errors.ErrCodeProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env)
			}
			resp := post(t, env.srv.URL+"/api/summarize", tt.body)
			var got errorResponse
			decode(t, resp, &got)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, got.Error)
			}
			if tt.message != "" && got.Error != tt.message {
				t.Errorf("error = %q, want %q", got.Error, tt.message)
			}
			if got.Error == "" {
				t.Error("error message should not be empty")
			}
			if tt.code != "" {
				if got.Detail == nil {
					t.Fatal("structured error detail missing")
				}
				if got.Detail.Code() != tt.code || got.Detail.Provider() != "OpenAI" {
					t.Errorf("detail = %s/%s, want %s/OpenAI", got.Detail.Code(), got.Detail.Provider(), tt.code)
				}
			}
		})
	}
}

func TestSummarize_TransportDetail(t *testing.T) {
	env := newTestEnv(t)
	env.prefs.SetSecret(provider.OpenAI, "sk-o")
	env.invoker.SetError(errors.Transport("OpenAI", 429))

	resp := post(t, env.srv.URL+"/api/summarize", `{"url":"https://example.com"}`)
	var got errorResponse
	decode(t, resp, &got)
	if got.Detail == nil || got.Detail.Status() != 429 || !got.Detail.Retryable() {
		t.Errorf("detail = %+v", got.Detail)
	}
	if got.Detail != nil && got.Detail.Category() != errors.CategoryTransient {
		t.Errorf("category = %s", got.Detail.Category())
	}
}

func TestCachedSummary_Miss(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/api/summary?url=https://example.com/none")
	if err != nil {
		t.Fatal(err)
	}
	var got errorResponse
	decode(t, resp, &got)
	if resp.StatusCode != http.StatusNotFound || got.Error != summarize.StatusNoCache {
		t.Errorf("miss = %d %+v", resp.StatusCode, got)
	}
	if env.invoker.CallCount() != 0 {
		t.Error("page-load path must not call a provider")
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Record("https://example.com/go", "<p>Go generics explained</p>")
	env.cache.Record("https://example.com/rust", "<p>Rust borrow checker</p>")

	resp, err := http.Get(env.srv.URL + "/api/history?q=generics")
	if err != nil {
		t.Fatal(err)
	}
	var got []historyEntry
	decode(t, resp, &got)
	if len(got) != 1 || got[0].URL != "https://example.com/go" {
		t.Errorf("history = %+v", got)
	}

	resp, err = http.Get(env.srv.URL + "/api/history?limit=zero")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.Configuration("Claude"), http.StatusBadRequest},
		{errors.UnknownProvider("x"), http.StatusBadRequest},
		{errors.Busy(), http.StatusConflict},
		{errors.Transport("Claude", 500), http.StatusBadGateway},
		{errors.Protocol("Claude"), http.StatusBadGateway},
		{errors.FromCode(errors.ErrCodeTimeout), http.StatusGatewayTimeout},
		{errors.Internal("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
