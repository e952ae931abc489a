// Package testutil provides shared testing utilities and fixtures
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// BooksAPISpec is a small OpenAPI 3 document with a relative server.
const BooksAPISpec = `{
	"openapi": "3.0.0",
	"info": {"title": "Books API", "version": "1.0.0"},
	"servers": [{"url": "/books/v1"}],
	"paths": {
		"/volumes": {
			"get": {"summary": "Search volumes", "responses": {"200": {"description": "OK"}}}
		},
		"/volumes/{id}": {
			"get": {"summary": "Get a volume", "responses": {"200": {"description": "OK"}}},
			"patch": {"summary": "Update a volume", "responses": {"200": {"description": "OK"}}}
		}
	}
}`

// RegistryYAML returns a registry document with a plain URL alias named
// Books and a bearer-authenticated alias named Orders, both pointing at
// baseURL.
func RegistryYAML(baseURL string) string {
	return fmt.Sprintf(`aliases:
  - name: Books
    url: %[1]s
    description: Book search
  - name: Orders
    url: %[1]s/orders
    auth:
      type: bearer
      token: test-token
`, baseURL)
}

// WriteFile writes content into a file under t.TempDir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
