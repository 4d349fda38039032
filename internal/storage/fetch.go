package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/kozaktomas/lab-kiosk/internal/constants"
)

// ErrPhotoNotFound is returned when the object store has no photo for the key.
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoSource loads enrollment photos by object key.
type PhotoSource interface {
	FetchPhoto(ctx context.Context, key string) ([]byte, error)
}

// Fetcher downloads photos through presigned URLs, retrying transient failures.
type Fetcher struct {
	presigner URLPresigner
	client    *http.Client
	retries   uint64
	baseDelay time.Duration
	maxSize   int64
}

var _ PhotoSource = (*Fetcher)(nil)

// NewFetcher creates a fetcher.
func NewFetcher(presigner URLPresigner, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		presigner: presigner,
		client:    client,
		retries:   constants.PhotoFetchRetries,
		baseDelay: 200 * time.Millisecond,
		maxSize:   constants.MaxPhotoSize,
	}
}

// FetchPhoto presigns the key and downloads the object.
func (f *Fetcher) FetchPhoto(ctx context.Context, key string) ([]byte, error) {
	url, err := f.presigner.PresignGet(ctx, key)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(f.retries, retry.NewExponential(f.baseDelay))

	var data []byte
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		data, err = f.download(ctx, url)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrPhotoNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, retry.RetryableError(fmt.Errorf("storage error (status %d)", resp.StatusCode))
	default:
		return nil, fmt.Errorf("storage error (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to read body: %w", err))
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("photo exceeds %d bytes", f.maxSize)
	}
	return data, nil
}
