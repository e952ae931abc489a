package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyDoer(t *testing.T) {
	var seen struct {
		method string
		query  string
		body   string
		header http.Header
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.query = r.URL.RawQuery
		seen.header = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		seen.body = string(body)

		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("accepted"))
	}))
	defer server.Close()

	doer := NewRestyDoer(resty.New(), nil)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/accounts/?_HttpMethod=PATCH", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace", "t-1")

	resp, err := doer.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "accepted", string(body))
	assert.Equal(t, int64(len("accepted")), resp.ContentLength)
	assert.Equal(t, "yes", resp.Header.Get("X-Reply"))

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "_HttpMethod=PATCH", seen.query)
	assert.Equal(t, `{"a":1}`, seen.body)
	assert.Equal(t, "application/json", seen.header.Get("Content-Type"))
	assert.Equal(t, "t-1", seen.header.Get("X-Trace"))
}

func TestRestyDoerSendsHeadersUnchanged(t *testing.T) {
	var received []http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = append(received, r.Header.Clone())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	newRequest := func() *http.Request {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/accounts/?_HttpMethod=PATCH", strings.NewReader(`{"a":1}`))
		require.NoError(t, err)
		req.Header = http.Header{"X-Test": {"1"}}
		return req
	}

	resp, err := server.Client().Do(newRequest())
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = NewRestyDoer(resty.New(), nil).Do(newRequest())
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, received, 2)
	viaNet, viaResty := received[0], received[1]
	assert.Equal(t, viaNet, viaResty)
	assert.Equal(t, "1", viaResty.Get("X-Test"))
	assert.NotContains(t, viaResty, "Content-Type")
	assert.NotContains(t, viaResty, "Accept")
}

func TestRestyDoerDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := resty.New().SetRetryCount(3)
	doer := NewRestyDoer(client, nil)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/", nil)
	require.NoError(t, err)

	resp, err := doer.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRestyDoerUsesTransport(t *testing.T) {
	var called atomic.Bool
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called.Store(true)
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("from transport")),
			Request:    r,
		}, nil
	})

	doer := NewRestyDoer(nil, rt)
	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	resp, err := doer.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.True(t, called.Load())
	assert.Equal(t, "from transport", string(body))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
