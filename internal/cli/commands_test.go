package cli

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/internal/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CALLOUT_ALIAS", "")

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func registryFor(t *testing.T, baseURL string) string {
	t.Helper()
	return testutil.WriteFile(t, "callout.yaml", testutil.RegistryYAML(baseURL))
}

func TestCallGetWithOpaqueQuery(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{"items":[]}`)
	reg := registryFor(t, server.URL)

	stdout, _, err := run(t, "--registry", reg, "--alias", "Books", "volumes", "-q", "q=salesforce")
	testutil.AssertNoError(t, err, "call")

	testutil.AssertStringEqual(t, stdout, `{"items":[]}`, "stdout is the raw body")
	got := rec.Last(t)
	testutil.AssertRequestLine(t, got, http.MethodGet, "/volumes/q%3Dsalesforce", "", "request line")
	testutil.AssertHeaderSet(t, got.Header, "Accept", "application/json", "default Accept")
	testutil.AssertHeaderSet(t, got.Header, "Content-Type", "application/json", "default Content-Type")
}

func TestCallPatchIsShimmedToPost(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, "")
	reg := registryFor(t, server.URL)

	_, _, err := run(t, "--registry", reg, "-a", "Orders", "-X", "patch", "accounts/1", "-d", `{"Name":"Acme"}`)
	testutil.AssertNoError(t, err, "patch call")

	got := rec.Last(t)
	testutil.AssertRequestLine(t, got, http.MethodPost, "/orders/accounts/1/", "_HttpMethod=PATCH", "shimmed request")
	testutil.AssertHeaderSet(t, got.Header, "Authorization", "Bearer test-token", "bearer auth from registry")
	testutil.AssertStringEqual(t, got.Body, `{"Name":"Acme"}`, "body")
}

func TestCallPatchNative(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, "")
	reg := registryFor(t, server.URL)

	_, _, err := run(t, "--registry", reg, "-a", "Books", "-X", "PATCH", "--patch-native", "volumes/1", "-d", "{}")
	testutil.AssertNoError(t, err, "native patch")

	testutil.AssertRequestLine(t, rec.Last(t), http.MethodPatch, "/volumes/1/", "", "native request")
}

func TestCallExplicitHeadersReplaceDefaults(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, "")
	reg := registryFor(t, server.URL)

	_, _, err := run(t, "--registry", reg, "-a", "Books", "-H", "X-Trace: abc", "volumes")
	testutil.AssertNoError(t, err, "call with header")

	got := rec.Last(t)
	testutil.AssertHeaderSet(t, got.Header, "X-Trace", "abc", "explicit header")
	testutil.AssertHeaderNotSet(t, got.Header, "Accept", "defaults are replaced")
}

func TestCallGetDropsBody(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, "")
	reg := registryFor(t, server.URL)

	_, _, err := run(t, "--registry", reg, "-a", "Books", "-d", "ignored", "volumes")
	testutil.AssertNoError(t, err, "get with data")
	testutil.AssertStringEqual(t, rec.Last(t).Body, "", "GET carries no body")
}

func TestCallIncludeHeaders(t *testing.T) {
	server, _ := testutil.NewRecordingServer(t, http.StatusCreated, `{"id":7}`)
	reg := registryFor(t, server.URL)

	stdout, _, err := run(t, "--registry", reg, "-a", "Books", "-X", "POST", "-i", "volumes", "-d", `{"t":1}`)
	testutil.AssertNoError(t, err, "include call")

	testutil.AssertStringContains(t, stdout, "201 Created", "status line")
	testutil.AssertStringContains(t, stdout, "Content-Type: application/json", "response header")
	if !strings.HasSuffix(stdout, "\n\n"+`{"id":7}`) {
		t.Fatalf("body should follow a blank line, got %q", stdout)
	}
}

func TestCallVerboseWritesTraceToStderr(t *testing.T) {
	server, _ := testutil.NewRecordingServer(t, http.StatusOK, "ok")
	reg := registryFor(t, server.URL)

	stdout, stderr, err := run(t, "--registry", reg, "-a", "Orders", "-v", "items")
	testutil.AssertNoError(t, err, "verbose call")

	testutil.AssertStringEqual(t, stdout, "ok", "stdout")
	testutil.AssertStringContains(t, stderr, "> GET "+server.URL+"/orders/items/", "request line")
	testutil.AssertStringNotContains(t, stderr, "test-token", "credentials are not traced")
}

func TestCallNon2xxIsNotAnError(t *testing.T) {
	server, _ := testutil.NewRecordingServer(t, http.StatusNotFound, `{"error":"missing"}`)
	reg := registryFor(t, server.URL)

	stdout, _, err := run(t, "--registry", reg, "-a", "Books", "nope")
	testutil.AssertNoError(t, err, "404 call")
	testutil.AssertStringEqual(t, stdout, `{"error":"missing"}`, "body")
}

func TestCallRestyTransport(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, "via resty")
	reg := registryFor(t, server.URL)

	stdout, _, err := run(t, "--registry", reg, "--transport", "resty", "-a", "Orders", "-X", "PATCH", "a", "-q", "id=1", "-d", "{}")
	testutil.AssertNoError(t, err, "resty call")

	testutil.AssertStringEqual(t, stdout, "via resty", "body")
	testutil.AssertRequestLine(t, rec.Last(t), http.MethodPost, "/orders/a/id%3D1", "_HttpMethod=PATCH", "resty request")
}

func TestCallErrors(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, "")
	reg := registryFor(t, server.URL)

	tests := []struct {
		name    string
		args    []string
		errType errors.ErrorType
	}{
		{"unknown alias", []string{"--registry", reg, "-a", "Nope", "x"}, errors.ErrorTypeResolution},
		{"missing alias", []string{"--registry", reg, "x"}, errors.ErrorTypeValidation},
		{"bad verb", []string{"--registry", reg, "-a", "Books", "-X", "OPTIONS", "x"}, errors.ErrorTypeValidation},
		{"malformed header", []string{"--registry", reg, "-a", "Books", "-H", "nocolon", "x"}, errors.ErrorTypeValidation},
		{"bad transport", []string{"--registry", reg, "--transport", "grpc", "-a", "Books", "x"}, errors.ErrorTypeValidation},
		{"missing registry", []string{"--registry", filepath.Join(t.TempDir(), "none.yaml"), "-a", "Books", "x"}, errors.ErrorTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			testutil.AssertErrorType(t, err, tt.errType, tt.name)
		})
	}

	if n := len(rec.Requests()); n != 0 {
		t.Fatalf("no request should be sent, got %d", n)
	}
}

func TestRootWithoutPathShowsHelp(t *testing.T) {
	stdout, _, err := run(t, "--registry", "unused.yaml")
	testutil.AssertNoError(t, err, "help")
	testutil.AssertStringContains(t, stdout, "callout [path]", "usage")
}

func TestAliasesCommand(t *testing.T) {
	reg := registryFor(t, "https://api.example.com")

	stdout, _, err := run(t, "--registry", reg, "aliases")
	testutil.AssertNoError(t, err, "aliases")

	for _, want := range []string{"ALIAS", "Books", "Orders", "bearer", "Book search", "https://api.example.com/orders"} {
		testutil.AssertStringContains(t, stdout, want, "aliases table")
	}
}

func TestRecordsAndJobs(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{}`)
	reg := registryFor(t, server.URL)
	store := filepath.Join(t.TempDir(), "records.db")
	global := []string{"--registry", reg, "--store", store}

	stdout, _, err := run(t, append(global, "records", "put", "001", "Acme")...)
	testutil.AssertNoError(t, err, "records put")
	testutil.AssertStringEqual(t, stdout, "saved 001\n", "put output")

	stdout, _, err = run(t, append(global, "job", "queueable", "--alias", "Books", "--path", "accounts/001", "--record", "001")...)
	testutil.AssertNoError(t, err, "queueable job")
	testutil.AssertStringContains(t, stdout, "succeeded: Synced via Books", "job output")
	testutil.AssertRequestLine(t, rec.Last(t), http.MethodGet, "/accounts/001/", "", "job request")

	stdout, _, err = run(t, append(global, "job", "batch", "--suffix", " Corp")...)
	testutil.AssertNoError(t, err, "batch job")
	testutil.AssertStringEqual(t, stdout, "scopes=1 succeeded=1 failed=0\n", "batch summary")

	stdout, _, err = run(t, append(global, "records", "list")...)
	testutil.AssertNoError(t, err, "records list")
	testutil.AssertStringContains(t, stdout, "Acme Corp", "renamed record")
	testutil.AssertStringContains(t, stdout, "Synced via Books", "job status")
}

func TestQueueableJobRecordsFailureStatus(t *testing.T) {
	server, _ := testutil.NewRecordingServer(t, http.StatusInternalServerError, "boom")
	reg := registryFor(t, server.URL)
	store := filepath.Join(t.TempDir(), "records.db")
	global := []string{"--registry", reg, "--store", store}

	_, _, err := run(t, append(global, "records", "put", "r1", "Initech")...)
	testutil.AssertNoError(t, err, "records put")

	stdout, _, err := run(t, append(global, "job", "queueable", "--alias", "Books", "--path", "x", "--record", "r1")...)
	testutil.AssertNoError(t, err, "callout failures are recorded, not returned")
	testutil.AssertStringContains(t, stdout, "Callout returned 500", "failure status")
}

func TestQueueableJobRequiresFlags(t *testing.T) {
	_, _, err := run(t, "--registry", "unused.yaml", "job", "queueable", "--alias", "Books")
	testutil.AssertErrorType(t, err, errors.ErrorTypeValidation, "missing --path and --record")
}

func TestQueueableJobUnknownRecord(t *testing.T) {
	server, _ := testutil.NewRecordingServer(t, http.StatusOK, "")
	reg := registryFor(t, server.URL)
	store := filepath.Join(t.TempDir(), "records.db")

	_, _, err := run(t, "--registry", reg, "--store", store, "job", "queueable", "--alias", "Books", "--path", "x", "--record", "missing")
	testutil.AssertErrorType(t, err, errors.ErrorTypeStorage, "unknown record")
}

func TestMethodCompletion(t *testing.T) {
	got, _ := methodCompletion(nil, nil, "p")
	testutil.AssertStringEqual(t, strings.Join(got, ","), "POST,PATCH,PUT", "completions")
}
