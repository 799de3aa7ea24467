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

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/algafood/authserver/internal/system/config"
)

type TracingTestSuite struct {
	suite.Suite
	recorder *tracetest.SpanRecorder
	provider *sdktrace.TracerProvider
}

func TestTracingSuite(t *testing.T) {
	suite.Run(t, new(TracingTestSuite))
}

func (suite *TracingTestSuite) SetupTest() {
	suite.recorder = tracetest.NewSpanRecorder()
	suite.provider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(suite.recorder))
}

func (suite *TracingTestSuite) TestSuccessSpan() {
	_, span := suite.provider.Tracer(InstrumentationName).Start(context.Background(), "grant")
	AddGrantAttributes(span, "algafood-web", "password")
	SetSpanSuccess(span)
	span.End()

	ended := suite.recorder.Ended()
	suite.Require().Len(ended, 1)
	assert.Equal(suite.T(), codes.Ok, ended[0].Status().Code)
	assert.Contains(suite.T(), ended[0].Attributes(), attribute.String(AttrClientID, "algafood-web"))
	assert.Contains(suite.T(), ended[0].Attributes(), attribute.String(AttrGrantType, "password"))
}

func (suite *TracingTestSuite) TestErrorSpan() {
	_, span := suite.provider.Tracer(InstrumentationName).Start(context.Background(), "grant")
	RecordError(span, errors.New("boom"))
	SetSpanError(span, "invalid_grant")
	span.End()

	ended := suite.recorder.Ended()
	suite.Require().Len(ended, 1)
	assert.Equal(suite.T(), codes.Error, ended[0].Status().Code)
	assert.Equal(suite.T(), "invalid_grant", ended[0].Status().Description)
	assert.Len(suite.T(), ended[0].Events(), 1)
}

func (suite *TracingTestSuite) TestNilSpan() {
	assert.NotPanics(suite.T(), func() {
		RecordError(nil, errors.New("x"))
		SetSpanError(nil, "x")
		SetSpanSuccess(nil)
		AddGrantAttributes(nil, "a", "b")
	})
}

func (suite *TracingTestSuite) TestDisabledProvider() {
	tp, err := NewTracerProvider(context.Background(), config.TracingConfig{})

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), tp)
}

func (suite *TracingTestSuite) TestEnabledProvider() {
	tp, err := NewTracerProvider(context.Background(), config.TracingConfig{
		Enabled:      true,
		OTLPEndpoint: "127.0.0.1:4318",
		Insecure:     true,
		SampleRatio:  0.5,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(tp)
	assert.NoError(suite.T(), tp.Shutdown(context.Background()))
}

func (suite *TracingTestSuite) TestSampleRatio() {
	assert.Equal(suite.T(), 1.0, sampleRatio(0))
	assert.Equal(suite.T(), 1.0, sampleRatio(2))
	assert.Equal(suite.T(), 0.25, sampleRatio(0.25))
}
