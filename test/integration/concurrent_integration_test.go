//go:build integration

package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-machine/internal/adapters/clients"
)

// TestConcurrent_APIReadsAndWrites hammers the full stack with parallel
// creates and reads and verifies nothing is lost or corrupted.
func TestConcurrent_APIReadsAndWrites(t *testing.T) {
	qs, err := newQuoteServer()
	require.NoError(t, err)
	defer qs.close()

	client := &http.Client{Timeout: 10 * time.Second}

	// Pre-seed so /api/v1/random never sees an empty store.
	for i := range 3 {
		body := fmt.Sprintf(`{"quote_text": "Seed quote %d", "character": "Scruffy"}`, i)
		resp, postErr := client.Post(qs.server.URL+"/api/v1/quotes", "application/json", bytes.NewBufferString(body))
		require.NoError(t, postErr)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	const writers = 20
	const readers = 20

	var wg sync.WaitGroup
	var failures int32

	wg.Add(writers)
	for i := range writers {
		go func(n int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"quote_text": "Concurrent quote %d", "character": "Writer %d"}`, n, n%4)
			resp, postErr := client.Post(qs.server.URL+"/api/v1/quotes", "application/json", bytes.NewBufferString(body))
			if postErr != nil || resp.StatusCode != http.StatusCreated {
				atomic.AddInt32(&failures, 1)
			}
			if postErr == nil {
				resp.Body.Close()
			}
		}(i)
	}

	wg.Add(readers)
	for i := range readers {
		go func(n int) {
			defer wg.Done()

			path := "/api/v1/quotes?per_page=100"
			if n%2 == 0 {
				path = "/api/v1/random"
			}

			resp, getErr := client.Get(qs.server.URL + path)
			if getErr != nil || resp.StatusCode != http.StatusOK {
				atomic.AddInt32(&failures, 1)
			}
			if getErr == nil {
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&failures), "all concurrent requests should succeed")

	// Every write must be visible afterwards.
	count, err := qs.repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3+writers, count)
}

// TestConcurrent_ClientFetches verifies one shared client handles parallel
// fetches without races or spurious breaker trips.
func TestConcurrent_ClientFetches(t *testing.T) {
	var serverCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&serverCalls, 1)
		_, _ = w.Write([]byte("Bender: Bite my shiny metal ass!\n"))
	}))
	defer server.Close()

	client, err := clients.New(testClientConfig(server.URL))
	require.NoError(t, err)

	const fetches = 50

	var wg sync.WaitGroup
	var failures int32

	wg.Add(fetches)
	for range fetches {
		go func() {
			defer wg.Done()

			resp, getErr := client.Get(context.Background(), "/seeds/futurama.txt")
			if getErr != nil {
				atomic.AddInt32(&failures, 1)
				return
			}

			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				atomic.AddInt32(&failures, 1)
			}
		}()
	}

	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&failures))
	assert.EqualValues(t, fetches, atomic.LoadInt32(&serverCalls))
	assert.Equal(t, clients.StateClosed, client.CircuitState())
}

// TestConcurrent_CircuitBreakerUnderLoad verifies the breaker state machine
// stays consistent when many goroutines fail at once: every request errors
// with either the retry error or the open-circuit error, never a panic or
// a stuck state.
func TestConcurrent_CircuitBreakerUnderLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 5
	cfg.Circuit.Timeout = time.Minute // stay open for the rest of the test

	client, err := clients.New(cfg)
	require.NoError(t, err)

	const requests = 20

	var wg sync.WaitGroup
	var unexpected int32

	wg.Add(requests)
	for range requests {
		go func() {
			defer wg.Done()

			_, getErr := client.Get(context.Background(), "/seeds/futurama.txt")
			if !errors.Is(getErr, clients.ErrMaxRetriesExceeded) && !errors.Is(getErr, clients.ErrCircuitOpen) {
				atomic.AddInt32(&unexpected, 1)
			}
		}()
	}

	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&unexpected), "every request should fail with a known error")
	assert.Equal(t, clients.StateOpen, client.CircuitState())
}
