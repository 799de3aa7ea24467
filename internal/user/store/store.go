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

package store

import (
	"context"
	"fmt"

	"github.com/algafood/authserver/internal/system/database/provider"
	"github.com/algafood/authserver/internal/system/log"
	"github.com/algafood/authserver/internal/user/constants"
	"github.com/algafood/authserver/internal/user/model"
)

const loggerComponentName = "UserStore"

// UserStoreInterface looks up resource owners.
type UserStoreInterface interface {
	FindByUsername(ctx context.Context, username string) (*model.UserIdentity, error)
}

// UserStore is the SQL backed UserStoreInterface.
type UserStore struct {
	DBProvider provider.DBProviderInterface
}

// NewUserStore creates a store reading from the given database provider.
func NewUserStore(dbProvider provider.DBProviderInterface) *UserStore {
	return &UserStore{DBProvider: dbProvider}
}

// FindByUsername loads the user whose e-mail matches username together with their authorities.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.UserIdentity, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.DBProvider.GetDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(ctx, QueryGetUserByEmail, username)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, constants.ErrUserNotFound
	}
	if len(results) != 1 {
		logger.Error("More than one user shares an e-mail address", log.Int("count", len(results)))
		return nil, fmt.Errorf("unexpected number of results: %d", len(results))
	}

	user, err := buildUserFromResultRow(results[0])
	if err != nil {
		return nil, err
	}

	authorityRows, err := dbClient.Query(ctx, QueryGetUserAuthorities, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorities: %w", err)
	}
	user.Authorities = make([]string, 0, len(authorityRows))
	for _, row := range authorityRows {
		name, err := asString(row["nome"])
		if err != nil {
			return nil, fmt.Errorf("failed to parse permission name: %w", err)
		}
		user.Authorities = append(user.Authorities, name)
	}

	return user, nil
}

// buildUserFromResultRow constructs a model.UserIdentity from a database result row.
func buildUserFromResultRow(row map[string]interface{}) (*model.UserIdentity, error) {
	id, ok := row["id"].(int64)
	if !ok {
		return nil, fmt.Errorf("failed to parse id as int64")
	}
	code, err := asString(row["codigo"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse codigo: %w", err)
	}
	name, err := asString(row["nome"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse nome: %w", err)
	}
	email, err := asString(row["email"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	password, err := asString(row["senha"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse senha: %w", err)
	}

	return &model.UserIdentity{
		ID:           id,
		Code:         code,
		FullName:     name,
		Email:        email,
		PasswordHash: password,
	}, nil
}

// asString accepts both string and []byte column values; drivers differ for uuid and text columns.
func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unexpected type %T", value)
	}
}
