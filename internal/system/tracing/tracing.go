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

// Package tracing holds the OpenTelemetry tracer and span helpers used around token issuance.
// Never put credentials (tokens, codes, secrets) in span attributes.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies the tracer.
const InstrumentationName = "github.com/algafood/authserver"

// Span attribute keys.
const (
	AttrClientID   = "oauth.client_id"
	AttrGrantType  = "oauth.grant_type"
	AttrScope      = "oauth.scope"
	AttrPKCEMethod = "oauth.pkce.method"
	AttrError      = "oauth.error"
	AttrRotated    = "oauth.token.rotated"
)

// Tracer returns a tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// RecordError records an error on a span and marks it failed. Nil spans and errors are ignored.
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanError marks the span failed with an OAuth error code.
func SetSpanError(span trace.Span, errorCode string) {
	if span != nil {
		span.SetAttributes(attribute.String(AttrError, errorCode))
		span.SetStatus(codes.Error, errorCode)
	}
}

// SetSpanSuccess marks the span successful.
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// AddGrantAttributes adds the client and grant type of a token request.
func AddGrantAttributes(span trace.Span, clientID, grantType string) {
	if span == nil {
		return
	}
	if clientID != "" {
		span.SetAttributes(attribute.String(AttrClientID, clientID))
	}
	if grantType != "" {
		span.SetAttributes(attribute.String(AttrGrantType, grantType))
	}
}
