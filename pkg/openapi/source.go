package openapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Source is a lazily loaded OpenAPI document identified by URL.
type Source struct {
	specURL string
	parser  *Parser

	mu sync.Mutex
}

func NewSource(client HTTPClient, specURL string) *Source {
	return &Source{
		specURL: specURL,
		parser:  NewParserWithClient(client),
	}
}

// URL returns the document location.
func (s *Source) URL() string {
	return s.specURL
}

func (s *Source) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parser.Loaded() {
		return nil
	}
	if s.specURL == "" {
		return fmt.Errorf("no spec URL available")
	}
	if err := s.parser.LoadFromURL(ctx, s.specURL); err != nil {
		return fmt.Errorf("loading OpenAPI spec: %w", err)
	}
	return nil
}

// BaseURL returns the base URL for API requests. The first server entry wins;
// a relative server URL is joined to the document's scheme and host. With no
// servers the document's scheme and host are used.
func (s *Source) BaseURL(ctx context.Context) (string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}

	servers, err := s.parser.Servers()
	if err != nil {
		return "", fmt.Errorf("getting servers from spec: %w", err)
	}

	if len(servers) > 0 && servers[0].URL != "" {
		serverURL := servers[0].URL
		if isAbsolute(serverURL) {
			return serverURL, nil
		}

		scheme, host, err := s.origin()
		if err != nil {
			return "", fmt.Errorf("server URL is relative but %w", err)
		}
		if !strings.HasPrefix(serverURL, "/") {
			serverURL = "/" + serverURL
		}
		return fmt.Sprintf("%s://%s%s", scheme, host, serverURL), nil
	}

	scheme, host, err := s.origin()
	if err != nil {
		return "", fmt.Errorf("no servers defined and %w", err)
	}
	return fmt.Sprintf("%s://%s", scheme, host), nil
}

// Operations lists the documented operations matching the filters.
func (s *Source) Operations(ctx context.Context, pathFilter, methodFilter string) ([]Operation, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.parser.Operations(pathFilter, methodFilter)
}

func (s *Source) origin() (scheme, host string, err error) {
	parsed, err := url.Parse(s.specURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing OpenAPI URL: %w", err)
	}
	if parsed.Scheme == "file" || parsed.Host == "" {
		return "", "", fmt.Errorf("spec URL %q has no host", s.specURL)
	}
	return parsed.Scheme, parsed.Host, nil
}

func isAbsolute(u string) bool {
	for _, prefix := range []string{"http://", "https://", "lambda://"} {
		if strings.HasPrefix(u, prefix) {
			return true
		}
	}
	return false
}
