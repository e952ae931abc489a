package testutil

import (
	"net/http"
	"strings"
	"testing"

	"github.com/brendan.keane/callout/internal/errors"
)

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: got error %v, expected none", msg, err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got none", msg)
	}
}

// AssertStringEqual fails the test if got != expected (string-specific for cleaner output)
func AssertStringEqual(t *testing.T, got, expected string, msg string) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: got %q, expected %q", msg, got, expected)
	}
}

// AssertStringContains fails the test if str doesn't contain substring
func AssertStringContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if !strings.Contains(str, substring) {
		t.Fatalf("%s: expected %q to contain %q", msg, str, substring)
	}
}

// AssertStringNotContains fails the test if str contains substring
func AssertStringNotContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if strings.Contains(str, substring) {
		t.Fatalf("%s: expected %q to not contain %q", msg, str, substring)
	}
}

// AssertHeaderSet fails the test if h doesn't have the expected header value
func AssertHeaderSet(t *testing.T, h http.Header, header, expectedValue string, msg string) {
	t.Helper()
	actualValue := h.Get(header)
	if actualValue != expectedValue {
		t.Fatalf("%s: header %q: got %q, expected %q", msg, header, actualValue, expectedValue)
	}
}

// AssertHeaderNotSet fails the test if h has the specified header
func AssertHeaderNotSet(t *testing.T, h http.Header, header string, msg string) {
	t.Helper()
	if h.Get(header) != "" {
		t.Fatalf("%s: expected header %q to not be set, but got %q", msg, header, h.Get(header))
	}
}

// AssertRequestLine fails the test unless the recorded method, escaped path
// and raw query match
func AssertRequestLine(t *testing.T, got RecordedRequest, method, path, rawQuery string, msg string) {
	t.Helper()
	if got.Method != method || got.EscapedPath != path || got.RawQuery != rawQuery {
		t.Fatalf("%s: got %s %s?%s, expected %s %s?%s", msg, got.Method, got.EscapedPath, got.RawQuery, method, path, rawQuery)
	}
}

// AssertErrorType fails the test unless err is a CalloutError of type typ
func AssertErrorType(t *testing.T, err error, typ errors.ErrorType, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error, got none", msg, typ)
	}
	if !errors.IsType(err, typ) {
		t.Fatalf("%s: expected %s error, got %v", msg, typ, err)
	}
}
