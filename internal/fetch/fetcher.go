// Package fetch retrieves remote images with retry and validation.
package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/dmorenoc/cronograma/internal/findings"
	"github.com/dmorenoc/cronograma/internal/store"
)

// defaultExtension is used when the content-type carries no subtype.
const defaultExtension = "jpg"

// Fetcher downloads a single image with retry/backoff, validates it, and
// persists the bytes to the working download directory. It implements
// findings.Fetcher.
type Fetcher struct {
	client    *http.Client
	policy    Policy
	dirs      *store.WorkDirs
	userAgent string
	logger    *zap.Logger
}

// New builds a Fetcher. The per-attempt timeout comes from the policy, so
// the shared client carries none.
func New(policy Policy, dirs *store.WorkDirs, userAgent string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{},
		policy:    policy,
		dirs:      dirs,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch retrieves the task's URL. On success the raw bytes are written to
// the download directory keyed "{row}_{col}.{ext}" and the base64 copy is
// returned for in-memory reporting; a file write failure is logged but does
// not fail the task. On failure the returned error is a *findings.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, task findings.DownloadTask) (findings.FetchResult, error) {
	var lastErr *findings.FetchError
	for attempt := 0; attempt < f.policy.MaxAttempts; attempt++ {
		result, ferr := f.attempt(ctx, task, attempt)
		if ferr == nil {
			return result, nil
		}
		lastErr = ferr
		f.logTaskFailure(task, attempt, ferr)
		if !f.policy.Retryable(ferr.Kind) || f.policy.LastAttempt(attempt) {
			return findings.FetchResult{}, ferr
		}
	}
	return findings.FetchResult{}, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, task findings.DownloadTask, attempt int) (findings.FetchResult, *findings.FetchError) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.policy.AttemptTimeout(attempt))
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, task.URL, nil)
	if err != nil {
		return findings.FetchResult{}, &findings.FetchError{
			Kind: findings.FailureUnexpected,
			URL:  task.URL,
			Err:  err,
		}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return findings.FetchResult{}, f.classifyTransportError(task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return findings.FetchResult{}, &findings.FetchError{
			Kind:       findings.FailureHTTPStatus,
			URL:        task.URL,
			StatusCode: resp.StatusCode,
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return findings.FetchResult{}, &findings.FetchError{
			Kind: findings.FailureNotAnImage,
			URL:  task.URL,
			Err:  fmt.Errorf("content-type %q", contentType),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return findings.FetchResult{}, f.classifyTransportError(task.URL, err)
	}

	if f.dirs != nil {
		if path, err := f.dirs.SaveDownload(task.Key, extensionFor(contentType), body); err != nil {
			f.logger.Error("persist download failed",
				zap.Int("row", task.Key.Row),
				zap.Int("col", task.Key.Col),
				zap.String("url", task.URL),
				zap.Error(err),
			)
		} else {
			f.logger.Debug("image downloaded", zap.String("path", path))
		}
	}

	return findings.FetchResult{
		Bytes:       body,
		Base64:      base64.StdEncoding.EncodeToString(body),
		ContentType: contentType,
	}, nil
}

func (f *Fetcher) classifyTransportError(rawURL string, err error) *findings.FetchError {
	kind := findings.FailureNetworkError
	switch {
	case errors.Is(err, context.Canceled):
		kind = findings.FailureUnexpected
	case isTimeout(err):
		kind = findings.FailureTimeout
	}
	return &findings.FetchError{Kind: kind, URL: rawURL, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}

func (f *Fetcher) logTaskFailure(task findings.DownloadTask, attempt int, ferr *findings.FetchError) {
	fields := []zap.Field{
		zap.Int("row", task.Key.Row),
		zap.Int("col", task.Key.Col),
		zap.String("url", task.URL),
		zap.String("kind", string(ferr.Kind)),
		zap.Int("attempt", attempt+1),
		zap.Int("max_attempts", f.policy.MaxAttempts),
	}
	if ferr.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", ferr.StatusCode))
	}
	switch ferr.Kind {
	case findings.FailureNotAnImage, findings.FailureTimeout:
		f.logger.Warn("image fetch attempt failed", fields...)
	default:
		f.logger.Error("image fetch attempt failed", append(fields, zap.Error(ferr.Err))...)
	}
}

// extensionFor derives a file extension from the content-type subtype,
// defaulting to jpg when absent.
func extensionFor(contentType string) string {
	sub := contentType
	if i := strings.LastIndex(sub, "/"); i >= 0 {
		sub = sub[i+1:]
	}
	if i := strings.Index(sub, ";"); i >= 0 {
		sub = sub[:i]
	}
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return defaultExtension
	}
	return sub
}
