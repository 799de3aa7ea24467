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

// Package constants defines constants used by the client registry.
package constants

import "time"

// Token lifetimes applied when neither the client nor the server configuration sets one.
const (
	DefaultAccessTokenValidity  = 12 * time.Hour
	DefaultRefreshTokenValidity = 30 * 24 * time.Hour
)
