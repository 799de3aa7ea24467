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

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/algafood/authserver/internal/system/database/client"
	dbmodel "github.com/algafood/authserver/internal/system/database/model"
	"github.com/algafood/authserver/internal/user/constants"
)

type stubDBProvider struct {
	dbClient client.DBClientInterface
	err      error
}

func (p *stubDBProvider) GetDBClient() (client.DBClientInterface, error) {
	return p.dbClient, p.err
}

func (p *stubDBProvider) Close() error {
	return nil
}

type UserStoreTestSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *UserStore
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreTestSuite))
}

func (suite *UserStoreTestSuite) SetupTest() {
	var err error
	suite.db, suite.mock, err = sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	suite.Require().NoError(err)

	dbClient := client.NewDBClient(dbmodel.NewDB(suite.db), "postgres")
	suite.store = NewUserStore(&stubDBProvider{dbClient: dbClient})
}

func (suite *UserStoreTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	_ = suite.db.Close()
}

func (suite *UserStoreTestSuite) TestFindByUsername() {
	suite.mock.ExpectQuery(QueryGetUserByEmail.PostgresQuery).
		WithArgs("ana@algafood.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "codigo", "nome", "email", "senha"}).
			AddRow(int64(7), []byte("0f8fad5b-d9cb-469f-a165-70867728950e"), "Ana Souza",
				"ana@algafood.com", "$2a$10$hash"))
	suite.mock.ExpectQuery(QueryGetUserAuthorities.PostgresQuery).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"nome"}).
			AddRow("CONSULTAR_PEDIDOS").
			AddRow("EDITAR_COZINHAS"))

	user, err := suite.store.FindByUsername(context.Background(), "ana@algafood.com")

	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(7), user.ID)
	assert.Equal(suite.T(), "0f8fad5b-d9cb-469f-a165-70867728950e", user.Code)
	assert.Equal(suite.T(), "Ana Souza", user.FullName)
	assert.Equal(suite.T(), "ana@algafood.com", user.Username())
	assert.Equal(suite.T(), "$2a$10$hash", user.PasswordHash)
	assert.Equal(suite.T(), []string{"CONSULTAR_PEDIDOS", "EDITAR_COZINHAS"}, user.Authorities)
}

func (suite *UserStoreTestSuite) TestFindByUsernameWithoutGroups() {
	suite.mock.ExpectQuery(QueryGetUserByEmail.PostgresQuery).
		WithArgs("bruno@algafood.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "codigo", "nome", "email", "senha"}).
			AddRow(int64(8), "code", "Bruno Lima", "bruno@algafood.com", "$2a$10$hash"))
	suite.mock.ExpectQuery(QueryGetUserAuthorities.PostgresQuery).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"nome"}))

	user, err := suite.store.FindByUsername(context.Background(), "bruno@algafood.com")

	suite.Require().NoError(err)
	assert.Empty(suite.T(), user.Authorities)
	assert.NotNil(suite.T(), user.Authorities)
}

func (suite *UserStoreTestSuite) TestFindByUsernameNotFound() {
	suite.mock.ExpectQuery(QueryGetUserByEmail.PostgresQuery).
		WithArgs("ghost@algafood.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "codigo", "nome", "email", "senha"}))

	user, err := suite.store.FindByUsername(context.Background(), "ghost@algafood.com")

	assert.ErrorIs(suite.T(), err, constants.ErrUserNotFound)
	assert.Nil(suite.T(), user)
}

func (suite *UserStoreTestSuite) TestFindByUsernameQueryError() {
	suite.mock.ExpectQuery(QueryGetUserByEmail.PostgresQuery).
		WithArgs("ana@algafood.com").
		WillReturnError(errors.New("connection reset"))

	user, err := suite.store.FindByUsername(context.Background(), "ana@algafood.com")

	assert.ErrorContains(suite.T(), err, "connection reset")
	assert.Nil(suite.T(), user)
}

func (suite *UserStoreTestSuite) TestFindByUsernameBadRow() {
	suite.mock.ExpectQuery(QueryGetUserByEmail.PostgresQuery).
		WithArgs("ana@algafood.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "codigo", "nome", "email", "senha"}).
			AddRow("not-a-number", "code", "Ana", "ana@algafood.com", "x"))

	_, err := suite.store.FindByUsername(context.Background(), "ana@algafood.com")

	assert.ErrorContains(suite.T(), err, "failed to parse id")
}

func (suite *UserStoreTestSuite) TestProviderFailure() {
	store := NewUserStore(&stubDBProvider{err: errors.New("no database")})

	_, err := store.FindByUsername(context.Background(), "ana@algafood.com")

	assert.ErrorContains(suite.T(), err, "failed to get database client")
}
