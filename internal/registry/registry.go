// Package registry maps alias names to base URLs and credential policies.
package registry

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/brendan.keane/callout/pkg/openapi"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// DefaultDocumentCacheSize bounds how many parsed OpenAPI documents are kept.
const DefaultDocumentCacheSize = 16

// Registry resolves aliases. It is safe for concurrent use.
type Registry struct {
	entries     map[string]Entry
	names       []string
	authorizers map[string]callout.Authorizer

	httpClient *http.Client
	documents  *lru.Cache[string, *openapi.Source]
	logger     zerolog.Logger
}

type Option func(*settings)

type settings struct {
	httpClient *http.Client
	cacheSize  int
	logger     zerolog.Logger
}

// WithHTTPClient sets the client used to fetch OpenAPI documents and OAuth2
// tokens. Passing a client built on pkg/http enables lambda:// documents.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) { s.httpClient = client }
}

// WithDocumentCacheSize bounds the number of cached OpenAPI documents.
func WithDocumentCacheSize(n int) Option {
	return func(s *settings) { s.cacheSize = n }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New builds a registry from entries. Entries are validated and names must be
// unique.
func New(entries []Entry, opts ...Option) (*Registry, error) {
	s := settings{
		httpClient: http.DefaultClient,
		cacheSize:  DefaultDocumentCacheSize,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.cacheSize <= 0 {
		s.cacheSize = DefaultDocumentCacheSize
	}

	documents, err := lru.New[string, *openapi.Source](s.cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create document cache")
	}

	r := &Registry{
		entries:     make(map[string]Entry, len(entries)),
		authorizers: make(map[string]callout.Authorizer, len(entries)),
		httpClient:  s.httpClient,
		documents:   documents,
		logger:      s.logger.With().Str("component", "registry").Logger(),
	}

	for _, entry := range entries {
		entry.Name = strings.TrimSpace(entry.Name)
		if err := entry.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.entries[entry.Name]; dup {
			return nil, errors.New(errors.ErrorTypeConfig, "duplicate alias").
				WithContext("alias", entry.Name)
		}
		r.entries[entry.Name] = entry
		r.names = append(r.names, entry.Name)
		if authorizer := newAuthorizer(entry.Auth, s.httpClient); authorizer != nil {
			r.authorizers[entry.Name] = authorizer
		}
	}
	sort.Strings(r.names)

	return r, nil
}

// Names lists the registered aliases in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Entry returns the configuration of an alias.
func (r *Registry) Entry(alias string) (Entry, bool) {
	entry, ok := r.entries[alias]
	return entry, ok
}

// Resolve implements callout.Resolver. The returned base URL always ends in
// a single "/".
func (r *Registry) Resolve(ctx context.Context, alias string) (callout.Endpoint, error) {
	entry, ok := r.entries[alias]
	if !ok {
		return callout.Endpoint{}, errors.New(errors.ErrorTypeResolution, "unknown alias").
			WithContext("alias", alias).
			WithContext("known_aliases", r.Names())
	}

	base := entry.URL
	if entry.OpenAPI != "" {
		var err error
		base, err = r.document(entry).BaseURL(ctx)
		if err != nil {
			return callout.Endpoint{}, errors.Wrap(err, errors.ErrorTypeResolution, "failed to resolve base URL from OpenAPI document").
				WithContext("alias", alias).
				WithContext("openapi", entry.OpenAPI)
		}
	}

	endpoint := callout.Endpoint{
		Alias:      alias,
		BaseURL:    strings.TrimRight(base, "/") + "/",
		Authorizer: r.authorizers[alias],
	}

	r.logger.Debug().
		Str("alias", alias).
		Str("base_url", endpoint.BaseURL).
		Str("auth", entry.Auth.Kind()).
		Msg("alias resolved")

	return endpoint, nil
}

// Operations lists the operations documented for an OpenAPI-backed alias.
func (r *Registry) Operations(ctx context.Context, alias, pathFilter, methodFilter string) ([]openapi.Operation, error) {
	entry, ok := r.entries[alias]
	if !ok {
		return nil, errors.New(errors.ErrorTypeResolution, "unknown alias").
			WithContext("alias", alias)
	}
	if entry.OpenAPI == "" {
		return nil, errors.New(errors.ErrorTypeResolution, "alias has no OpenAPI document").
			WithContext("alias", alias)
	}

	ops, err := r.document(entry).Operations(ctx, pathFilter, methodFilter)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeResolution, "failed to read OpenAPI operations").
			WithContext("alias", alias)
	}
	return ops, nil
}

func (r *Registry) document(entry Entry) *openapi.Source {
	if src, ok := r.documents.Get(entry.Name); ok {
		return src
	}
	src := openapi.NewSource(r.httpClient, entry.OpenAPI)
	// A concurrent miss may race here; the loser's source is dropped.
	if prev, ok, _ := r.documents.PeekOrAdd(entry.Name, src); ok {
		return prev
	}
	return src
}
