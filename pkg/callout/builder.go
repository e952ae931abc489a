package callout

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brendan.keane/callout/internal/errors"
)

// Assembled is a request after verb translation, path normalization, query
// encoding and header/body policy have been applied.
type Assembled struct {
	Method   string
	Endpoint string
	Path     string
	Query    string
	Header   map[string]string
	Body     string
	HasBody  bool
}

// Assemble applies the request-building rules to req against baseURL.
// defaults is the header table used when req.Headers is nil.
func Assemble(baseURL string, req Request, policy PatchPolicy, defaults map[string]string) (*Assembled, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	path := ensureTrailingSlash(req.Path)
	query := url.QueryEscape(req.Query)

	verb := req.Verb
	if verb == PATCH && policy == PatchOverride {
		verb = POST
		query += MethodOverrideMarker
	}

	headers := req.Headers
	if headers == nil {
		headers = defaults
	}

	a := &Assembled{
		Method:   verb.String(),
		Endpoint: joinBase(baseURL, path) + query,
		Path:     path,
		Query:    query,
		Header:   copyHeaders(headers),
	}

	// PATCH is still a body verb after being downgraded to POST.
	if req.Verb.carriesBody() && strings.TrimSpace(req.Body) != "" {
		a.Body = req.Body
		a.HasBody = true
	}

	return a, nil
}

// HTTPRequest converts the assembled request into an *http.Request. Header
// names are kept exactly as supplied.
func (a *Assembled) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if a.HasBody {
		body = strings.NewReader(a.Body)
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, a.Endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to create HTTP request").
			WithContext("method", a.Method).
			WithContext("url", a.Endpoint)
	}

	for name, value := range a.Header {
		req.Header[name] = []string{value}
	}

	return req, nil
}

// BuildRequest assembles req against baseURL and returns the *http.Request
// that would be handed to the transport.
func BuildRequest(ctx context.Context, baseURL string, req Request, policy PatchPolicy, defaults map[string]string) (*http.Request, error) {
	a, err := Assemble(baseURL, req, policy, defaults)
	if err != nil {
		return nil, err
	}
	return a.HTTPRequest(ctx)
}

func validate(req Request) error {
	if !req.Verb.Valid() {
		return errors.New(errors.ErrorTypeValidation, "unsupported verb").
			WithContext("field", "verb").
			WithContext("verb", string(req.Verb))
	}
	if req.Path == "" {
		return errors.New(errors.ErrorTypeValidation, "path is required").
			WithContext("field", "path")
	}
	return nil
}

func ensureTrailingSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// joinBase concatenates base and path with exactly one "/" between them.
func joinBase(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
