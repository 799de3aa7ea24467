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

// Package store provides read access to users, their groups and the permissions granted to them.
package store

import "github.com/algafood/authserver/internal/system/database/model"

var (
	// QueryGetUserByEmail is the query to get a user by e-mail address.
	QueryGetUserByEmail = model.DBQuery{
		ID:            "ASQ-USER-01",
		Query:         "SELECT id, codigo, nome, email, senha FROM usuarios WHERE email = ?",
		PostgresQuery: "SELECT id, codigo, nome, email, senha FROM usuarios WHERE email = $1",
	}
	// QueryGetUserAuthorities is the query to get the permission names reachable through the user's groups.
	QueryGetUserAuthorities = model.DBQuery{
		ID: "ASQ-USER-02",
		Query: "SELECT DISTINCT p.nome FROM permissoes p " +
			"JOIN grupos_permissoes gp ON gp.permissao_id = p.id " +
			"JOIN usuarios_grupos ug ON ug.grupo_id = gp.grupo_id " +
			"WHERE ug.usuario_id = ? ORDER BY p.nome",
		PostgresQuery: "SELECT DISTINCT p.nome FROM permissoes p " +
			"JOIN grupos_permissoes gp ON gp.permissao_id = p.id " +
			"JOIN usuarios_grupos ug ON ug.grupo_id = gp.grupo_id " +
			"WHERE ug.usuario_id = $1 ORDER BY p.nome",
	}
)
