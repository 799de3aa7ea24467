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

package utils

import "slices"

// ContainsAll reports whether every element of subset is present in set.
func ContainsAll(set, subset []string) bool {
	for _, s := range subset {
		if !slices.Contains(set, s) {
			return false
		}
	}
	return true
}

// CopyStrings returns an independent copy of the given slice. A nil input yields nil.
func CopyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append([]string(nil), src...)
}

// DeepCopyMap creates a shallow copy of each top-level entry of a claims style map.
func DeepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if s, ok := v.([]string); ok {
			dst[k] = CopyStrings(s)
			continue
		}
		dst[k] = v
	}
	return dst
}
