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

// Package constants defines the constants used in the JWKS service.
package constants

import "github.com/algafood/authserver/internal/system/error/serviceerror"

// ErrorNoSigningKey is returned when no active signing key is loaded.
var ErrorNoSigningKey = &serviceerror.ServiceError{
	Code:             "JWKS-5001",
	Type:             serviceerror.ServerErrorType,
	Error:            "No signing key found.",
	ErrorDescription: "The server has no active token signing key.",
}

// ErrorUnsupportedPublicKeyType is returned when a public key type is not supported for JWKS.
var ErrorUnsupportedPublicKeyType = &serviceerror.ServiceError{
	Code:             "JWKS-5002",
	Type:             serviceerror.ServerErrorType,
	Error:            "Unsupported public key type.",
	ErrorDescription: "The signing public key type is not supported for JWKS.",
}

// ErrorWhileEncodingPublicKey is returned when the active public key cannot be PEM encoded.
var ErrorWhileEncodingPublicKey = &serviceerror.ServiceError{
	Code:             "JWKS-5003",
	Type:             serviceerror.ServerErrorType,
	Error:            "Error while encoding public key.",
	ErrorDescription: "An error occurred while encoding the token verification key.",
}

// KeyUseSignature is the use of every published key.
const KeyUseSignature = "sig"
