package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
)

// Response is what came back from the provider. Truncated is set when the body was
// larger than the configured limit and only the first part was read.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Truncated   bool
	Duration    time.Duration
}

// Caller performs rendered provider requests.
type Caller interface {
	// Do sends req under the call deadline. Network failures are returned as
	// *operationDomain.Error of kind transport_error; any HTTP status is a Response.
	Do(ctx context.Context, req *Request) (*Response, error)
}

type httpCaller struct {
	client           *http.Client
	timeout          time.Duration
	maxResponseBytes int64
}

// NewHTTPCaller creates a Caller. The transport is normally metrics.NewOutboundTransport.
// Redirects are not followed so a rendered credential header never reaches another host.
func NewHTTPCaller(transport http.RoundTripper, timeout time.Duration, maxResponseBytes int64) Caller {
	return &httpCaller{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:          timeout,
		maxResponseBytes: maxResponseBytes,
	}
}

func (c *httpCaller) Do(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &operationDomain.Error{
			Kind:   operationDomain.KindTemplateError,
			Detail: "request could not be built",
		}
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
	if req.ContentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, transportError(ctx, err)
	}

	out := &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
		Duration:    time.Since(start),
	}
	if int64(len(data)) > c.maxResponseBytes {
		out.Body = data[:c.maxResponseBytes]
		out.Truncated = true
	}
	return out, nil
}

// transportError strips the request URL from err, since a rendered URL may carry the
// credential, and flags deadline failures.
func transportError(ctx context.Context, err error) *operationDomain.Error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	timeout := errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}

	detail := "request failed"
	if timeout {
		detail = "request timed out"
	} else if errors.Is(err, context.Canceled) {
		detail = "request canceled"
	}

	return &operationDomain.Error{
		Kind:    operationDomain.KindTransportError,
		Timeout: timeout,
		Detail:  detail,
		Cause:   err,
	}
}
