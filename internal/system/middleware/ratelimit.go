/*
 * Copyright (c) 2025, The Algafood Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package middleware provides HTTP middleware functions for request processing.
package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/metrics"
	"github.com/algafood/authserver/internal/system/utils"
)

const (
	// limiterIdleTimeout is how long a caller's bucket is kept after its last request.
	limiterIdleTimeout = 30 * time.Minute
	limiterCleanup     = 5 * time.Minute

	defaultRequestsPerSecond = 10
	defaultBurst             = 20

	errorRateLimited = "too_many_requests"
)

// RateLimiter keeps one token bucket per caller. Idle buckets expire.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *gocache.Cache
	mu       sync.Mutex
}

// NewRateLimiter creates a limiter from the rate limit configuration.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: gocache.New(limiterIdleTimeout, limiterCleanup),
	}
}

// Allow reports whether the caller may make a request now.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := rl.limiters.Get(identifier); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	rl.limiters.Set(identifier, limiter, gocache.DefaultExpiration)
	return limiter.Allow()
}

// RateLimit rejects callers that exceed their bucket with 429 and counts the rejections.
func RateLimit(rl *RateLimiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / float64(rl.limit))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := clientIP(r)
			if !rl.Allow(caller) {
				m.IncRateLimited()
				log.GetLogger().Debug("Request rate limited",
					log.String(log.LoggerKeyComponentName, "RateLimitMiddleware"),
					log.String("caller", log.MaskString(caller)))
				utils.WriteJSONError(w, errorRateLimited, "Too many requests", http.StatusTooManyRequests,
					[]map[string]string{{"Retry-After": retryAfter}})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of the remote address. Behind chi's RealIP middleware the
// address may already be a bare IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
