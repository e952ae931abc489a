package http

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/rs/zerolog"
)

func sampleResponse() *callout.Response {
	return &callout.Response{
		StatusCode: 404,
		Status:     "404 Not Found",
		Proto:      "HTTP/1.1",
		Header:     http.Header{"Content-Type": {"application/json"}, "X-Request-Id": {"r-1"}},
		Body:       `{"error":"missing"}`,
	}
}

func TestResponseHandler(t *testing.T) {
	tests := []struct {
		name           string
		verbose        bool
		includeHeaders bool
		wantStdout     []string
		wantStderr     []string
		emptyStderr    bool
	}{
		{
			name:        "body only",
			wantStdout:  []string{`{"error":"missing"}`},
			emptyStderr: true,
		},
		{
			name:           "include headers",
			includeHeaders: true,
			wantStdout:     []string{"HTTP/1.1 404 Not Found\n", "Content-Type: application/json\n", "X-Request-Id: r-1\n", "\n\n{\"error\""},
			emptyStderr:    true,
		},
		{
			name:       "verbose",
			verbose:    true,
			wantStdout: []string{`{"error":"missing"}`},
			wantStderr: []string{"> GET https://api.example.com/items/", "> Host: api.example.com", "> Accept: application/json", "< HTTP/1.1", "404 Not Found", "X-Request-Id: r-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			handler := NewResponseHandlerWithOutput(zerolog.Nop(), Output{Stdout: &stdout, Stderr: &stderr}, tt.verbose, tt.includeHeaders)

			req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/items/", nil)
			req.Header["Accept"] = []string{"application/json"}

			if err := handler.HandleResponse(req, sampleResponse()); err != nil {
				t.Fatalf("HandleResponse failed: %v", err)
			}

			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout.String())
				}
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr.String())
				}
			}
			if tt.emptyStderr && stderr.Len() != 0 {
				t.Errorf("expected empty stderr, got %q", stderr.String())
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	if got := StatusLine(&callout.Response{StatusCode: 201}); !strings.Contains(got, "201 Created") {
		t.Errorf("synthesized status: got %q", got)
	}
	if got := StatusLine(&callout.Response{StatusCode: 999, Status: "999 Odd"}); got != "999 Odd" {
		t.Errorf("unknown class should be unstyled: got %q", got)
	}
}
