package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/Belphemur/ReelRoulette/internal/cache"
	"github.com/Belphemur/ReelRoulette/internal/config"
)

// maxPayloadBytes bounds how much of one upstream document is read.
const maxPayloadBytes = 64 << 20

// get performs one bounded GET against the media server and returns the
// decompressed body of a 200 response. The token travels in the X-Plex-Token
// header so it never appears in URLs or error messages.
func (c *client) get(ctx context.Context, baseURL, token, path string, limit time.Duration) ([]byte, error) {
	logger := config.GetLogger()
	target := baseURL + path
	start := time.Now()

	policy := timeout.New[[]byte](limit)
	body, err := failsafe.With[[]byte](policy).WithContext(ctx).GetWithExecution(func(exec failsafe.Execution[[]byte]) ([]byte, error) {
		req, err := http.NewRequestWithContext(exec.Context(), http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if token != "" {
			req.Header.Set("X-Plex-Token", token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, &ErrUnexpectedStatus{StatusCode: resp.StatusCode, Path: path}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPayload+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if int64(len(data)) > c.maxPayload {
			return nil, &ErrPayloadTooLarge{Limit: c.maxPayload, Path: path}
		}
		return data, nil
	})
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Dur("elapsed", time.Since(start)).Msg("Upstream request failed")
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("bytes", len(body)).Dur("elapsed", time.Since(start)).Msg("Upstream request completed")
	return body, nil
}

func (c *client) cached(key cache.Key) ([]byte, bool) {
	if c.payloads == nil {
		return nil, false
	}
	doc, ok := c.payloads.Get(key)
	if !ok {
		return nil, false
	}
	logger := config.GetLogger()
	logger.Debug().
		Str("kind", string(key.Kind())).
		Dur("age", doc.Age(time.Now())).
		Msg("Upstream document served from cache")
	return doc.Body, true
}

func (c *client) store(key cache.Key, body []byte) {
	if c.payloads != nil {
		c.payloads.Put(key, body)
	}
}

func (c *client) forget(key cache.Key) {
	if c.payloads != nil {
		c.payloads.Forget(key)
	}
}
