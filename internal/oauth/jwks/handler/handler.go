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

// Package handler provides the HTTP handlers for the JWKS and token key endpoints.
package handler

import (
	"net/http"

	"github.com/algafood/authserver/internal/oauth/jwks"
	"github.com/algafood/authserver/internal/system/error/apierror"
	"github.com/algafood/authserver/internal/system/error/serviceerror"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/system/utils"
)

// JWKSHandler handles requests for the JSON Web Key Set (JWKS).
type JWKSHandler struct {
	jwksService jwks.JWKSServiceInterface
}

// NewJWKSHandler creates a new instance of JWKSHandler.
func NewJWKSHandler(jwksService jwks.JWKSServiceInterface) *JWKSHandler {
	return &JWKSHandler{
		jwksService: jwksService,
	}
}

// HandleJWKSRequest handles the HTTP request to retrieve the JSON Web Key Set (JWKS).
func (h *JWKSHandler) HandleJWKSRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "JWKSHandler"))

	jwksResponse, svcErr := h.jwksService.GetJWKS()
	if svcErr != nil {
		h.handleError(w, logger, svcErr)
		return
	}

	utils.WriteJSON(w, http.StatusOK, jwksResponse, nil)
	logger.Debug("JWKS response successfully sent")
}

// HandleTokenKeyRequest returns the active verification key. The endpoint is open to anyone.
func (h *JWKSHandler) HandleTokenKeyRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "JWKSHandler"))

	tokenKey, svcErr := h.jwksService.GetTokenKey()
	if svcErr != nil {
		h.handleError(w, logger, svcErr)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tokenKey, nil)
}

// handleError handles errors by writing an appropriate error response to the HTTP response writer.
func (h *JWKSHandler) handleError(w http.ResponseWriter, logger *log.Logger,
	svcErr *serviceerror.ServiceError) {
	logger.Error("Failed to serve verification keys", log.String("code", svcErr.Code))

	errResp := apierror.ErrorResponse{
		Code:        svcErr.Code,
		Message:     svcErr.Error,
		Description: svcErr.ErrorDescription,
	}

	statusCode := http.StatusInternalServerError
	if svcErr.Type == serviceerror.ClientErrorType {
		statusCode = http.StatusBadRequest
	}
	utils.WriteJSON(w, statusCode, errResp, nil)
}
