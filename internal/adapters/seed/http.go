package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/quote-machine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-machine/internal/domain"
	"github.com/jsamuelsen/quote-machine/internal/platform/config"
)

// sourceServiceName identifies remote seed fetches in logs and traces.
const sourceServiceName = "seed-source"

// HTTPSource fetches seed data from a remote URL. Transient failures are
// retried with exponential backoff per the seed retry configuration, and
// a circuit breaker guards against hammering a source that is down.
type HTTPSource struct {
	client *clients.Client
	path   string
	rawURL string
}

// NewHTTPSource creates a source over the given http(s) URL.
func NewHTTPSource(rawURL string, cfg config.SeedConfig, logger *slog.Logger) (*HTTPSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing seed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("seed url %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("seed url %q: missing host", rawURL)
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     u.Scheme + "://" + u.Host,
		ServiceName: sourceServiceName,
		Timeout:     cfg.Timeout,
		Retry:       cfg.Retry,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating seed client: %w", err)
	}

	return &HTTPSource{
		client: client,
		path:   u.RequestURI(),
		rawURL: rawURL,
	}, nil
}

// Open fetches the URL and returns the response body. Exhausted retries,
// an open circuit, or a non-200 status all surface as an unavailable
// source.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.path)
	if err != nil {
		return nil, domain.NewUnavailableError(sourceServiceName, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		if closeErr := resp.Body.Close(); closeErr != nil {
			return nil, domain.NewUnavailableError(sourceServiceName,
				fmt.Sprintf("status %d from %s (close: %v)", resp.StatusCode, s.rawURL, closeErr))
		}

		return nil, domain.NewUnavailableError(sourceServiceName,
			fmt.Sprintf("status %d from %s", resp.StatusCode, s.rawURL))
	}

	return resp.Body, nil
}
