package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/provider"
)

// maxResponseBytes bounds how much of a provider reply is read.
const maxResponseBytes = 8 << 20

// HTTPInvoker sends a ProviderRequest with a plain http.Client.
// It makes exactly one attempt per call.
type HTTPInvoker struct {
	client    *http.Client
	userAgent string
	logger    *logging.Logger
}

// HTTPInvokerConfig configures an HTTPInvoker.
type HTTPInvokerConfig struct {
	// Client defaults to an http.Client with Timeout.
	Client *http.Client
	// Timeout applies only when Client is nil. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	Logger    *logging.Logger
}

// NewHTTPInvoker creates an invoker.
func NewHTTPInvoker(cfg HTTPInvokerConfig) *HTTPInvoker {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New().WithComponent("llm")
	}
	return &HTTPInvoker{client: client, userAgent: cfg.UserAgent, logger: logger}
}

// Invoke posts req and decodes the reply.
//
// A non-2xx status fails with TRANSPORT without reading the body. A 2xx
// body that cannot be decoded fails with PROTOCOL. A decoded reply with no
// text succeeds with NoSummary.
func (inv *HTTPInvoker) Invoke(ctx context.Context, req *ProviderRequest) (*Result, error) {
	if req == nil {
		return nil, errors.InvalidInput("nil provider request")
	}
	c, err := lookupCodec(req.Provider)
	if err != nil {
		return nil, err
	}
	name := provider.Name(req.Provider)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(req.Body))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s request", name), errors.WithProvider(name))
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if inv.userAgent != "" {
		httpReq.Header.Set("User-Agent", inv.userAgent)
	}

	start := time.Now()
	inv.logger.ProviderCall(name, req.Model, req.Endpoint)

	httpResp, err := inv.client.Do(httpReq)
	if err != nil {
		inv.logger.ProviderResult(name, 0, time.Since(start), err)
		return nil, errors.Wrap(err, fmt.Sprintf("%s request failed", name), errors.WithProvider(name))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		tErr := errors.Transport(name, httpResp.StatusCode)
		inv.logger.ProviderResult(name, httpResp.StatusCode, time.Since(start), tErr)
		return nil, tErr
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		inv.logger.ProviderResult(name, httpResp.StatusCode, time.Since(start), err)
		return nil, errors.Wrap(err, fmt.Sprintf("%s read response", name), errors.WithProvider(name))
	}

	text, err := safeParse(c.parse, body)
	if err != nil {
		pErr := errors.Protocol(name, errors.WithCause(err))
		inv.logger.ProviderResult(name, httpResp.StatusCode, time.Since(start), pErr)
		return nil, pErr
	}
	inv.logger.ProviderResult(name, httpResp.StatusCode, time.Since(start), nil)

	res := &Result{
		Provider: req.Provider,
		Model:    req.Model,
		Text:     text,
		Format:   req.Format,
	}
	if strings.TrimSpace(text) == "" {
		res.Text = NoSummary
		res.Empty = true
	}
	return res, nil
}

// safeParse turns a decoder panic into an error.
func safeParse(parse func([]byte) (string, error), body []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.RecoverPanic(r)
		}
	}()
	return parse(body)
}
