package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vinayprograms/pagesum/cache"
	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/pagetext"
	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/summarize"
)

// errorResponse carries the user-facing message and, for structured
// errors, the code, provider and status so clients can branch on them.
type errorResponse struct {
	Error  string        `json:"error"`
	Detail *errors.Error `json:"detail,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

type summaryResponse struct {
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	Text     string `json:"text,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Cached   bool   `json:"cached"`
	Empty    bool   `json:"empty,omitempty"`
}

type summarizeRequest struct {
	URL    string `json:"url"`
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	// Text, when set, is summarized instead of fetching URL.
	Text string `json:"text,omitempty"`
}

type historyEntry struct {
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.Code(err) {
	case errors.ErrCodeConfiguration, errors.ErrCodeInvalidInput,
		errors.ErrCodeUnknownProvider, errors.ErrCodeUnsupportedProvider:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeResourceBusy:
		return http.StatusConflict
	case errors.ErrCodeTransport, errors.ErrCodeProtocol, errors.ErrCodeNetworkErr:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request_failed", map[string]interface{}{
			"code":     string(errors.Code(err)),
			"category": string(errors.Category(err)),
			"error":    err.Error(),
			"cause":    errors.Cause(err).Error(),
		})
	}
	resp := errorResponse{Error: errors.Display(err)}
	if detail, ok := errors.AsSummaryError(err).(*errors.Error); ok {
		resp.Detail = detail
	}
	writeJSON(w, code, resp)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	warning, err := s.orch.Readiness()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Warning: warning})
}

func (s *Server) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, provider.List())
}

// cachedSummary is the page-load path: it never calls a provider.
func (s *Server) cachedSummary(w http.ResponseWriter, r *http.Request) {
	pageURL, err := pagetext.FindURL(r.URL.Query().Get("url"))
	if err != nil {
		s.fail(w, err)
		return
	}

	view := &summarize.Recorder{}
	hit, err := s.orch.Open(r.Context(), pageURL, view)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !hit {
		writeError(w, http.StatusNotFound, summarize.StatusNoCache)
		return
	}

	_, _, html, _ := view.Last()
	writeJSON(w, http.StatusOK, summaryResponse{URL: pageURL, Summary: html, Cached: true})
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pageURL, err := pagetext.FindURL(req.URL)
	if err != nil {
		s.fail(w, err)
		return
	}

	opts := summarize.Options{Selection: req.Model, Prompt: req.Prompt}
	if req.Text != "" {
		opts.Source = pagetext.Static(req.Text)
	}

	view := &summarize.Recorder{}
	res, err := s.orch.Summarize(r.Context(), pageURL, view, opts)
	if err != nil {
		s.fail(w, err)
		return
	}

	_, _, html, _ := view.Last()
	writeJSON(w, http.StatusOK, summaryResponse{
		URL:      pageURL,
		Summary:  html,
		Text:     res.Text,
		Provider: string(res.Provider),
		Model:    res.Model,
		Empty:    res.Empty,
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit := cache.MaxEntries
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	hits, err := s.cache.Search(r.URL.Query().Get("q"), limit)
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]historyEntry, 0, len(hits))
	for _, h := range hits {
		out = append(out, historyEntry{URL: h.URL, Summary: h.Summary, Timestamp: h.Timestamp, Score: h.Score})
	}
	writeJSON(w, http.StatusOK, out)
}
