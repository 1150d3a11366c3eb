// Package http_client is a module producing HTTP clients and fetching
// documents over HTTP. Fetches run asynchronously and are awaited by the
// factory. Transport errors, 429 and 5xx responses are retried with
// exponential backoff.
package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/registry"
)

// Name is the module name http_client registers under.
const Name = "http_client"

// maxBody caps how much of a response body is read.
const maxBody = 10 << 20

// maxRetries bounds the retries after the first attempt of a fetch.
const maxRetries = 3

// newBackOff is the retry schedule of one fetch.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 10 * time.Second
	return backoff.WithMaxRetries(b, maxRetries)
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// NewClient returns a live *http.Client. timeout is a time.ParseDuration
// string; empty means no timeout.
func NewClient(timeout string) (*http.Client, error) {
	var d time.Duration
	if timeout != "" {
		var err error
		if d, err = time.ParseDuration(timeout); err != nil {
			return nil, err
		}
	}

	return &http.Client{
		Timeout: d,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}, nil
}

// Get fetches url and resolves to the response body. Non-2xx responses are
// rejected.
func Get(ctx context.Context, url string) *factory.Future[string] {
	return GetWith(ctx, http.DefaultClient, url)
}

// GetWith is Get using client.
func GetWith(ctx context.Context, client *http.Client, url string) *factory.Future[string] {
	logger := ctxlog.FromContext(ctx)
	return factory.Go(func() (string, error) {
		attempt := 0
		fetch := func() (string, error) {
			attempt++
			return get(ctx, client, url, attempt)
		}
		notify := func(err error, wait time.Duration) {
			logger.Warn("HTTP request failed, retrying.", "url", url, "attempt", attempt, "wait", wait, "error", err)
		}
		return backoff.RetryNotifyWithData(fetch, backoff.WithContext(newBackOff(), ctx), notify)
	})
}

func get(ctx context.Context, client *http.Client, url string, attempt int) (string, error) {
	logger := ctxlog.FromContext(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	logger.Debug("Executing HTTP request.", "method", req.Method, "url", url, "attempt", attempt)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", err
	}
	logger.Debug("HTTP request completed.", "url", url, "status", resp.StatusCode, "bytes", len(body))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return string(body), nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	default:
		return "", backoff.Permanent(fmt.Errorf("GET %s: unexpected status %s", url, resp.Status))
	}
}

// Register registers the module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModule(Name, factory.Exports{
		"NewClient": factory.NewConstructor(NewClient),
		"get":       Get,
	})
}
