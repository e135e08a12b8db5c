// Package repository implements the downstream fetch capability over HTTP.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	cacheDomain "github.com/allisson/entitygate/internal/cache/domain"
	apperrors "github.com/allisson/entitygate/internal/errors"
)

// HTTPFetcher fetches the complete entity dataset from the downstream API.
// It is safe to call repeatedly and has no side effects beyond its return
// value; transient downstream failures are retried with backoff before the
// fetch is reported as failed.
type HTTPFetcher struct {
	client  *retryablehttp.Client
	baseURL string
	logger  *slog.Logger
}

// NewHTTPFetcher creates a fetcher against the given base URL. A GET request
// to {baseURL}/entities must return a JSON array of entities.
func NewHTTPFetcher(
	baseURL string,
	timeout time.Duration,
	maxRetries int,
	logger *slog.Logger,
) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = maxRetries
	client.HTTPClient.Timeout = timeout
	client.Logger = &retryLogger{logger: logger}

	return &HTTPFetcher{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Fetch retrieves all entities keyed by id. Entity ids are unique in the
// returned dataset; when the downstream repeats an id the last record wins
// and a warning is logged, since a torn dataset would otherwise poison every
// snapshot built from it.
func (f *HTTPFetcher) Fetch(ctx context.Context) (map[string]cacheDomain.Entity, error) {
	url := f.baseURL + "/entities"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(cacheDomain.ErrFetch, err.Error())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(cacheDomain.ErrFetch, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperrors.Wrap(
			cacheDomain.ErrFetch,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url),
		)
	}

	var raw []cacheDomain.Entity
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperrors.Wrap(cacheDomain.ErrFetch, fmt.Sprintf("malformed dataset: %s", err))
	}

	entities := make(map[string]cacheDomain.Entity, len(raw))
	for _, entity := range raw {
		if entity.ID == "" {
			return nil, apperrors.Wrap(cacheDomain.ErrFetch, "malformed dataset: entity without id")
		}
		if _, exists := entities[entity.ID]; exists {
			f.logger.Warn("duplicate entity id in downstream dataset",
				slog.String("entity_id", entity.ID))
		}
		entities[entity.ID] = entity
	}

	return entities, nil
}

// retryLogger adapts slog to retryablehttp's leveled logger.
type retryLogger struct {
	logger *slog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}
