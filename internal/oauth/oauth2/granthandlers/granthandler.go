/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
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

// Package granthandlers provides an interface and implementations for handling OAuth 2.0 grant types.
package granthandlers

import (
	"context"
	"sync"

	clientmodel "github.com/algafood/authserver/internal/client/model"
	"github.com/algafood/authserver/internal/oauth/oauth2/constants"
	"github.com/algafood/authserver/internal/oauth/oauth2/model"
)

// GrantHandlerInterface defines the interface for handling OAuth 2.0 grants.
type GrantHandlerInterface interface {
	ValidateGrant(tokenRequest *model.TokenRequest, client *clientmodel.Client) *model.ErrorResponse
	HandleGrant(ctx context.Context, tokenRequest *model.TokenRequest,
		client *clientmodel.Client) (*model.TokenResponseDTO, *model.ErrorResponse)
}

// GrantHandlerProviderInterface resolves the handler for a grant type.
type GrantHandlerProviderInterface interface {
	GetGrantHandler(grantType string) (GrantHandlerInterface, error)
	RegisterGrantHandler(grantType string, handler GrantHandlerInterface)
}

// GrantHandlerProvider is an open registry of grant handlers keyed by grant type.
type GrantHandlerProvider struct {
	mu       sync.RWMutex
	handlers map[string]GrantHandlerInterface
}

// NewGrantHandlerProvider creates an empty provider.
func NewGrantHandlerProvider() *GrantHandlerProvider {
	return &GrantHandlerProvider{handlers: make(map[string]GrantHandlerInterface)}
}

// RegisterGrantHandler adds or replaces the handler for a grant type.
func (p *GrantHandlerProvider) RegisterGrantHandler(grantType string, handler GrantHandlerInterface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[grantType] = handler
}

// GetGrantHandler returns the handler for the grant type, or ErrUnsupportedGrantType.
func (p *GrantHandlerProvider) GetGrantHandler(grantType string) (GrantHandlerInterface, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	handler, ok := p.handlers[grantType]
	if !ok {
		return nil, constants.ErrUnsupportedGrantType
	}
	return handler, nil
}
