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

// Package metrics exposes the server's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authserver"

// Result labels.
const (
	ResultSuccess = "success"
	ResultDenied  = "denied"
	ResultError   = "error"
)

// Metrics groups the token issuance instruments and the registry they are registered on.
type Metrics struct {
	registry        *prometheus.Registry
	tokenRequests   *prometheus.CounterVec
	tokenDuration   *prometheus.HistogramVec
	codeRedemptions *prometheus.CounterVec
	refreshRotation *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// New creates the instruments on a fresh registry that also carries the Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		tokenRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_requests_total",
			Help:      "Token endpoint requests by grant type, result and OAuth error code.",
		}, []string{"grant_type", "result", "error"}),
		tokenDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "token_request_duration_seconds",
			Help:      "Time spent issuing tokens by grant type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"grant_type"}),
		codeRedemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_code_redemptions_total",
			Help:      "Authorization code redemptions by result.",
		}, []string{"result"}),
		refreshRotation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_token_exchanges_total",
			Help:      "Refresh token exchanges by result.",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
	registry.MustRegister(m.tokenRequests, m.tokenDuration, m.codeRedemptions, m.refreshRotation, m.rateLimited)
	return m
}

// Registry returns the registry the instruments live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTokenRequest records one token endpoint outcome. errorCode is empty on success.
func (m *Metrics) ObserveTokenRequest(grantType, result, errorCode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.tokenRequests.WithLabelValues(grantType, result, errorCode).Inc()
	m.tokenDuration.WithLabelValues(grantType).Observe(elapsed.Seconds())
}

// ObserveCodeRedemption records an authorization code redemption outcome.
func (m *Metrics) ObserveCodeRedemption(result string) {
	if m == nil {
		return
	}
	m.codeRedemptions.WithLabelValues(result).Inc()
}

// ObserveRefreshExchange records a refresh token exchange outcome.
func (m *Metrics) ObserveRefreshExchange(result string) {
	if m == nil {
		return
	}
	m.refreshRotation.WithLabelValues(result).Inc()
}

// IncRateLimited counts a rejected request.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
