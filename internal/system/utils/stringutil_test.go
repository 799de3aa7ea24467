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

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StringUtilTestSuite struct {
	suite.Suite
}

func TestStringUtilSuite(t *testing.T) {
	suite.Run(t, new(StringUtilTestSuite))
}

func (suite *StringUtilTestSuite) TestParseScopes() {
	assert.Equal(suite.T(), []string{"READ", "WRITE"}, ParseScopes("READ WRITE"))
	assert.Equal(suite.T(), []string{"READ", "WRITE"}, ParseScopes("  READ   WRITE READ "))
	assert.Equal(suite.T(), []string{}, ParseScopes(""))
	assert.Equal(suite.T(), []string{}, ParseScopes("   "))
}

func (suite *StringUtilTestSuite) TestJoinScopes() {
	assert.Equal(suite.T(), "READ WRITE", JoinScopes([]string{"READ", "WRITE"}))
	assert.Equal(suite.T(), "", JoinScopes(nil))
}

func (suite *StringUtilTestSuite) TestGenerateUUID() {
	first := GenerateUUID()
	second := GenerateUUID()

	_, err := uuid.Parse(first)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), first, second)
}

func (suite *StringUtilTestSuite) TestContainsAll() {
	assert.True(suite.T(), ContainsAll([]string{"READ", "WRITE"}, []string{"READ"}))
	assert.True(suite.T(), ContainsAll([]string{"READ"}, nil))
	assert.False(suite.T(), ContainsAll([]string{"READ"}, []string{"READ", "WRITE"}))
}

func (suite *StringUtilTestSuite) TestDeepCopyMap() {
	src := map[string]any{"authorities": []string{"EDITAR_COZINHAS"}, "usuario_id": int64(1)}

	dst := DeepCopyMap(src)
	dst["authorities"].([]string)[0] = "CHANGED"

	assert.Equal(suite.T(), "EDITAR_COZINHAS", src["authorities"].([]string)[0])
	assert.Equal(suite.T(), int64(1), dst["usuario_id"])
	assert.Nil(suite.T(), DeepCopyMap(nil))
}
