package http

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// RestyDoer sends requests through a resty client. Retries are disabled so
// that each Do is a single round trip.
type RestyDoer struct {
	client *resty.Client
}

// NewRestyDoer wraps client. A nil client gets resty's defaults. Passing a
// RoundTripper from pkg/http keeps lambda:// URLs working.
func NewRestyDoer(client *resty.Client, transport http.RoundTripper) *RestyDoer {
	if client == nil {
		client = resty.New()
	}
	client.SetRetryCount(0)
	client.SetPreRequestHook(restoreHeaders)
	if transport != nil {
		client.SetTransport(transport)
	}
	return &RestyDoer{client: client}
}

type sentHeaderKey struct{}

// restoreHeaders puts back the exact header set of the assembled request.
// resty's middleware adds Content-Type, Accept and User-Agent values the
// caller never supplied.
func restoreHeaders(_ *resty.Client, raw *http.Request) error {
	if h, ok := raw.Context().Value(sentHeaderKey{}).(http.Header); ok {
		raw.Header = h.Clone()
	}
	return nil
}

// Do implements HTTPClientProvider. The wire headers are exactly req.Header
// and the body is buffered so the returned response can be read like a
// net/http one.
func (d *RestyDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := context.WithValue(req.Context(), sentHeaderKey{}, req.Header.Clone())
	r := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	raw := resp.RawResponse
	defer raw.Body.Close()

	body, err := io.ReadAll(raw.Body)
	if err != nil {
		return nil, err
	}
	raw.Body = io.NopCloser(bytes.NewReader(body))
	raw.ContentLength = int64(len(body))
	return raw, nil
}
