// Package openapi loads OpenAPI v3 documents so that registry aliases can take
// their base URL from a document's servers section instead of a literal URL.
package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// ErrNotLoaded is returned when the parser is queried before a document is loaded.
var ErrNotLoaded = fmt.Errorf("no OpenAPI document loaded")

// HTTPClient interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Parser struct {
	model      *libopenapi.DocumentModel[v3.Document]
	httpClient HTTPClient
}

func NewParser() *Parser {
	return NewParserWithClient(http.DefaultClient)
}

func NewParserWithClient(client HTTPClient) *Parser {
	if client == nil {
		client = http.DefaultClient
	}
	return &Parser{httpClient: client}
}

// Loaded reports whether a document has been parsed.
func (p *Parser) Loaded() bool {
	return p.model != nil
}

// LoadFromURL fetches and parses a document. file:// URLs are read from disk,
// anything else (http, https, lambda) goes through the HTTP client.
func (p *Parser) LoadFromURL(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing URL: %w", err)
	}

	if parsed.Scheme == "file" {
		return p.loadFromFile(filePathFromURL(parsed))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching OpenAPI document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return p.LoadFromBytes(body)
}

// file://host/path is treated as the relative path host/path.
func filePathFromURL(u *url.URL) string {
	path := u.Path
	if u.Host != "" {
		path = u.Host + u.Path
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}

func (p *Parser) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file %s: %w", path, err)
	}
	return p.LoadFromBytes(data)
}

func (p *Parser) LoadFromBytes(data []byte) error {
	document, err := libopenapi.NewDocument(data)
	if err != nil {
		return fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	model, errs := document.BuildV3Model()
	if len(errs) > 0 {
		return fmt.Errorf("building v3 model: %v", errs)
	}

	p.model = model
	return nil
}

func (p *Parser) Title() string {
	if p.model == nil || p.model.Model.Info == nil {
		return ""
	}
	return p.model.Model.Info.Title
}

func (p *Parser) Servers() ([]*v3.Server, error) {
	if p.model == nil {
		return nil, ErrNotLoaded
	}
	return p.model.Model.Servers, nil
}

// Operation is one method on one documented path.
type Operation struct {
	Path    string
	Method  string
	Summary string
}

// Operations lists documented operations sorted by path then method. An
// empty or "*" filter matches everything; a trailing "*" on the path filter
// matches by prefix.
func (p *Parser) Operations(pathFilter, methodFilter string) ([]Operation, error) {
	if p.model == nil {
		return nil, ErrNotLoaded
	}

	var ops []Operation
	if p.model.Model.Paths == nil || p.model.Model.Paths.PathItems == nil {
		return ops, nil
	}

	for path, item := range p.model.Model.Paths.PathItems.FromOldest() {
		if !matchesPath(path, pathFilter) {
			continue
		}
		for method, op := range operationsOf(item) {
			if !matchesMethod(method, methodFilter) {
				continue
			}
			ops = append(ops, Operation{Path: path, Method: method, Summary: op.Summary})
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return methodRank(ops[i].Method) < methodRank(ops[j].Method)
	})
	return ops, nil
}

func matchesPath(path, filter string) bool {
	if filter == "" || filter == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(filter, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return path == filter
}

func matchesMethod(method, filter string) bool {
	if filter == "" || filter == "*" || strings.EqualFold(filter, "ANY") {
		return true
	}
	for _, m := range strings.Split(filter, ",") {
		if strings.EqualFold(method, strings.TrimSpace(m)) {
			return true
		}
	}
	return false
}

func operationsOf(item *v3.PathItem) map[string]*v3.Operation {
	ops := make(map[string]*v3.Operation)
	for method, op := range map[string]*v3.Operation{
		http.MethodGet:    item.Get,
		http.MethodPost:   item.Post,
		http.MethodPut:    item.Put,
		http.MethodPatch:  item.Patch,
		http.MethodDelete: item.Delete,
		http.MethodHead:   item.Head,
	} {
		if op != nil {
			ops[method] = op
		}
	}
	return ops
}

var methodOrder = []string{
	http.MethodGet, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodHead,
}

func methodRank(method string) int {
	for i, m := range methodOrder {
		if m == method {
			return i
		}
	}
	return len(methodOrder)
}
