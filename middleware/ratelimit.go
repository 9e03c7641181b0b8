// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/danielhkuo/roodle/logging"
)

const MsgTooManyRequests = "Too many requests. Try again later."

// RateLimit limits requests per account, or per client IP for anonymous
// callers. rate uses the limiter format, e.g. "10000-H". Install it inside
// LoadSession so the account is known.
func RateLimit(rate string) (func(http.Handler) http.Handler, error) {
	limit, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	instance := limiter.New(memory.NewStore(), limit)
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithKeyGetter(rateLimitKey),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(w, http.StatusTooManyRequests, MsgTooManyRequests)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context()).Error("rate limiter failed", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, MsgInternalError)
		}),
	)

	return mw.Handler, nil
}

func rateLimitKey(r *http.Request) string {
	if s, ok := SessionFromContext(r.Context()); ok {
		return "account:" + s.AccountID
	}
	return "ip:" + GetClientIP(r)
}
