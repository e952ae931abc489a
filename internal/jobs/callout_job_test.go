package jobs

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	calloutErrors "github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/internal/storage"
	"github.com/brendan.keane/callout/internal/testutil"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobClient(transport callout.Transport) *callout.Client {
	resolver := testutil.StaticResolver(map[string]string{"Orders": "https://orders.example.com/"})
	return callout.NewClient("Orders", resolver, transport)
}

func TestCalloutJob(t *testing.T) {
	tests := []struct {
		name       string
		transport  callout.TransportFunc
		wantStatus string
	}{
		{
			name: "success",
			transport: func(*http.Request) (*callout.Response, error) {
				return &callout.Response{StatusCode: http.StatusOK}, nil
			},
			wantStatus: "Synced via Orders",
		},
		{
			name: "non success status",
			transport: func(*http.Request) (*callout.Response, error) {
				return &callout.Response{StatusCode: http.StatusBadGateway}, nil
			},
			wantStatus: "Callout returned 502",
		},
		{
			name: "transport error is recorded",
			transport: func(*http.Request) (*callout.Response, error) {
				return nil, calloutErrors.New(calloutErrors.ErrorTypeNetwork, "connection reset")
			},
			wantStatus: "Callout failed: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.Put(storage.Record{ID: "001", Name: "Acme"}))

			var calls atomic.Int32
			var gotURL string
			transport := callout.TransportFunc(func(req *http.Request) (*callout.Response, error) {
				calls.Add(1)
				gotURL = req.URL.String()
				return tt.transport(req)
			})

			job := &CalloutJob{Client: newJobClient(transport), Store: store, RecordID: "001", Path: "accounts"}
			require.NoError(t, job.Run(context.Background(), zerolog.Nop()))

			assert.Equal(t, int32(1), calls.Load(), "no retries")
			assert.Equal(t, "https://orders.example.com/accounts/", gotURL)

			rec, err := store.Get("001")
			require.NoError(t, err)
			assert.Contains(t, rec.Status, tt.wantStatus)
			assert.Equal(t, "Acme", rec.Name)
		})
	}
}

func TestCalloutJobMissingRecord(t *testing.T) {
	transport := callout.TransportFunc(func(*http.Request) (*callout.Response, error) {
		t.Fatal("transport must not be called")
		return nil, nil
	})
	job := &CalloutJob{Client: newJobClient(transport), Store: storage.NewMemoryStore(), RecordID: "nope", Path: "x"}

	err := job.Run(context.Background(), zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, "callout", job.Kind())
}

func TestCalloutJobSendsBodylessGet(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(storage.Record{ID: "001", Name: "Acme"}))
	transport := &testutil.MockTransport{Response: &callout.Response{StatusCode: http.StatusNoContent}}

	job := &CalloutJob{Client: newJobClient(transport), Store: store, RecordID: "001", Path: "accounts/001"}
	require.NoError(t, job.Run(context.Background(), zerolog.Nop()))

	require.Len(t, transport.Requests, 1)
	sent := transport.Requests[0]
	assert.Equal(t, http.MethodGet, sent.Method)
	assert.Nil(t, sent.Body)
	assert.Equal(t, "application/json", sent.Header.Get("Accept"))
}
