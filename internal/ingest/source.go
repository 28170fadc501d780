package ingest

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/resilience"
)

// Source opens the dataset, which may be a local path or an http(s) URL.
type Source struct {
	Client *http.Client
	Retry  resilience.Policy
}

// DefaultSource downloads with a 5 minute timeout and the default retry
// policy.
func DefaultSource() *Source {
	return &Source{
		Client: &http.Client{Timeout: 5 * time.Minute},
		Retry:  resilience.DefaultPolicy(),
	}
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a reader for location. The caller closes it.
func (s *Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !isURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: open %s", location)
		}
		return f, nil
	}

	policy := s.Retry
	policy.OnRetry = resilience.RetryLogger("dataset", "download")
	body, err := resilience.DoVal(ctx, policy, func(ctx context.Context) (io.ReadCloser, error) {
		return s.download(ctx, location)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: download %s", location)
	}
	return body, nil
}

func (s *Source) download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "text/csv, */*")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		zap.L().Info("ingest: downloading dataset",
			zap.String("url", rawURL),
			zap.Int64("content_length", resp.ContentLength),
		)
		return resp.Body, nil
	}

	_ = resp.Body.Close()
	statusErr := eris.Errorf("http %d from %s", resp.StatusCode, rawURL)
	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
	}
	return nil, statusErr
}
