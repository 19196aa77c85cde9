// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// StatusError reports a response with status >= 400.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scrape: GET %s: status %d", e.URL, e.Code)
}

// response is a fully read HTTP response.
type response struct {
	contentType string
	body        []byte
}

// fetcher issues paced GETs through a circuit breaker.
type fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	userAgent string
}

func newFetcher(opts Options, logger *slog.Logger) *fetcher {
	return &fetcher{
		client:    opts.Client,
		limiter:   rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		userAgent: opts.UserAgent,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "scrape-source",
			Timeout: opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= opts.BreakerFailures
			},
			// A 4xx is the site answering; only transport errors and 5xx trip.
			IsSuccessful: func(err error) bool {
				var statusErr *StatusError
				if errors.As(err, &statusErr) {
					return statusErr.Code < http.StatusInternalServerError
				}
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit_breaker_state_change",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		}),
	}
}

// get waits for a rate-limit token and fetches target, reading at most
// limit bytes of body.
func (f *fetcher) get(ctx context.Context, target string, limit int64) (*response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(request)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			return nil, &StatusError{URL: target, Code: resp.StatusCode}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
		if err != nil {
			return nil, fmt.Errorf("scrape: read %s: %w", target, err)
		}
		return &response{contentType: resp.Header.Get("Content-Type"), body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*response), nil
}
