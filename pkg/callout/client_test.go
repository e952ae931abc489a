package callout

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method      string
	escapedPath string
	rawQuery    string
	header      http.Header
	body        string
}

func newCaptureServer(t *testing.T, status int, respBody string) (*httptest.Server, *[]captured) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []captured
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		calls = append(calls, captured{
			method:      r.Method,
			escapedPath: r.URL.EscapedPath(),
			rawQuery:    r.URL.RawQuery,
			header:      r.Header.Clone(),
			body:        string(body),
		})
		mu.Unlock()
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func staticResolver(base string) Resolver {
	return ResolverFunc(func(ctx context.Context, alias string) (Endpoint, error) {
		return Endpoint{Alias: alias, BaseURL: base + "/"}, nil
	})
}

func TestClientCallReturnsRawResponse(t *testing.T) {
	server, calls := newCaptureServer(t, http.StatusTeapot, `{"error":"short and stout"}`)
	client := NewClient("Kettle", staticResolver(server.URL), NewHTTPTransport(server.Client()))

	resp, err := client.GetQuery(context.Background(), "volumes", "q=salesforce")
	require.NoError(t, err, "non-2xx statuses are not errors")
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Equal(t, `{"error":"short and stout"}`, resp.Body)
	require.Equal(t, "yes", resp.Header.Get("X-Upstream"))

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	require.Equal(t, http.MethodGet, got.method)
	require.Equal(t, "/volumes/q%3Dsalesforce", got.escapedPath)
	require.Equal(t, "application/json", got.header.Get("Accept"))
	require.Empty(t, got.body)
}

func TestClientConveniences(t *testing.T) {
	server, calls := newCaptureServer(t, http.StatusOK, "ok")
	client := NewClient("Svc", staticResolver(server.URL), NewHTTPTransport(server.Client()))
	ctx := context.Background()

	steps := []struct {
		name   string
		call   func() (*Response, error)
		method string
		path   string
		query  string
		body   string
	}{
		{"Get", func() (*Response, error) { return client.Get(ctx, "a") }, "GET", "/a/", "", ""},
		{"Head", func() (*Response, error) { return client.Head(ctx, "a") }, "HEAD", "/a/", "", ""},
		{"Delete", func() (*Response, error) { return client.Delete(ctx, "a/1") }, "DELETE", "/a/1/", "", ""},
		{"DeleteQuery", func() (*Response, error) { return client.DeleteQuery(ctx, "a", "id=1") }, "DELETE", "/a/id%3D1", "", ""},
		{"Post", func() (*Response, error) { return client.Post(ctx, "a", `{"x":1}`) }, "POST", "/a/", "", `{"x":1}`},
		{"PostQuery", func() (*Response, error) { return client.PostQuery(ctx, "a", "k=v", "b") }, "POST", "/a/k%3Dv", "", "b"},
		{"Put", func() (*Response, error) { return client.Put(ctx, "a", "b") }, "PUT", "/a/", "", "b"},
		{"PutQuery", func() (*Response, error) { return client.PutQuery(ctx, "a", "k=v", "b") }, "PUT", "/a/k%3Dv", "", "b"},
		{"Patch", func() (*Response, error) { return client.Patch(ctx, "a", "b") }, "POST", "/a/", "_HttpMethod=PATCH", "b"},
		{"PatchQuery", func() (*Response, error) { return client.PatchQuery(ctx, "a", "id=1", "b") }, "POST", "/a/id%3D1", "_HttpMethod=PATCH", "b"},
	}

	for i, step := range steps {
		resp, err := step.call()
		require.NoError(t, err, step.name)
		require.Equal(t, http.StatusOK, resp.StatusCode, step.name)

		got := (*calls)[i]
		require.Equal(t, step.method, got.method, step.name)
		require.Equal(t, step.path, got.escapedPath, step.name)
		require.Equal(t, step.query, got.rawQuery, step.name)
		require.Equal(t, step.body, got.body, step.name)
	}
}

func TestClientNativePatch(t *testing.T) {
	server, calls := newCaptureServer(t, http.StatusOK, "")
	client := NewClient("Svc", staticResolver(server.URL), NewHTTPTransport(server.Client()), WithPatchPolicy(PatchNative))

	_, err := client.Patch(context.Background(), "accounts/1", `{"Name":"A"}`)
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, (*calls)[0].method)
	require.Empty(t, (*calls)[0].rawQuery)
	require.Equal(t, `{"Name":"A"}`, (*calls)[0].body)
}

func TestClientDefaultHeadersOption(t *testing.T) {
	client := NewClient("Svc", staticResolver("https://h"), nil, WithDefaultHeaders(map[string]string{"Accept": "text/plain"}))

	req, err := client.Prepare(context.Background(), Request{Verb: GET, Path: "x"})
	require.NoError(t, err)
	require.Equal(t, http.Header{"Accept": {"text/plain"}}, req.Header)

	other := NewClient("Svc", staticResolver("https://h"), nil)
	req, err = other.Prepare(context.Background(), Request{Verb: GET, Path: "x"})
	require.NoError(t, err)
	require.Equal(t, "application/json", req.Header.Get("Accept"), "options must not leak between clients")
}

func TestClientAppliesAuthorizer(t *testing.T) {
	server, calls := newCaptureServer(t, http.StatusOK, "")
	resolver := ResolverFunc(func(ctx context.Context, alias string) (Endpoint, error) {
		return Endpoint{
			Alias:   alias,
			BaseURL: server.URL,
			Authorizer: AuthorizerFunc(func(ctx context.Context, req *http.Request) error {
				req.Header.Set("Authorization", "Bearer "+alias)
				return nil
			}),
		}, nil
	})
	client := NewClient("Secure", resolver, NewHTTPTransport(server.Client()))

	prepared, err := client.Prepare(context.Background(), Request{Verb: GET, Path: "me"})
	require.NoError(t, err)
	require.Empty(t, prepared.Header.Get("Authorization"), "assembled headers stay as supplied")

	_, err = client.Get(context.Background(), "me")
	require.NoError(t, err)
	require.Equal(t, "Bearer Secure", (*calls)[0].header.Get("Authorization"))
}

func TestClientPropagatesErrorsUnchanged(t *testing.T) {
	resolveErr := stderrors.New("no such alias")
	client := NewClient("Missing", ResolverFunc(func(ctx context.Context, alias string) (Endpoint, error) {
		return Endpoint{}, resolveErr
	}), nil)
	_, err := client.Get(context.Background(), "x")
	require.Same(t, resolveErr, err)

	authErr := stderrors.New("token expired")
	client = NewClient("A", ResolverFunc(func(ctx context.Context, alias string) (Endpoint, error) {
		return Endpoint{BaseURL: "https://h/", Authorizer: AuthorizerFunc(func(context.Context, *http.Request) error {
			return authErr
		})}, nil
	}), nil)
	_, err = client.Get(context.Background(), "x")
	require.Same(t, authErr, err)

	sendErr := stderrors.New("connection reset")
	client = NewClient("A", staticResolver("https://h"), TransportFunc(func(*http.Request) (*Response, error) {
		return nil, sendErr
	}))
	_, err = client.Get(context.Background(), "x")
	require.Same(t, sendErr, err)
}

func TestClientRejectsEmptyPathBeforeResolving(t *testing.T) {
	resolved := false
	client := NewClient("A", ResolverFunc(func(ctx context.Context, alias string) (Endpoint, error) {
		resolved = true
		return Endpoint{BaseURL: "https://h/"}, nil
	}), nil)

	_, err := client.Get(context.Background(), "")
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	require.False(t, resolved)
}

func TestClientOneRoundTripPerCall(t *testing.T) {
	sends := 0
	client := NewClient("A", staticResolver("https://h"), TransportFunc(func(*http.Request) (*Response, error) {
		sends++
		return &Response{StatusCode: http.StatusServiceUnavailable}, nil
	}))

	resp, err := client.Post(context.Background(), "jobs", "{}")
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, 1, sends)
}
