package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inbucket/html2text"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/retry"
)

const maxArticleSize = 2 * 1024 * 1024

// Fetcher downloads web articles and flattens them to text for ingestion.
type Fetcher struct {
	client  *http.Client
	retrier *retry.Retrier
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		retrier: retry.NewRetrier(retry.NewTransportConfig()),
	}
}

func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	var body string
	err := f.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", core.SakhiUserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(err)
			}
			return err
		}

		body, err = html2text.FromReader(io.LimitReader(resp.Body, maxArticleSize), html2text.Options{
			OmitLinks: true,
		})
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to read body: %w", err))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}
