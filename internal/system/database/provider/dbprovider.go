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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/algafood/authserver/internal/system/config"
	"github.com/algafood/authserver/internal/system/database/client"
	"github.com/algafood/authserver/internal/system/database/model"
)

const (
	dataSourceTypePostgres = "postgres"
	dataSourceTypeSQLite   = "sqlite"
	pingTimeout            = 5 * time.Second
)

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient() (client.DBClientInterface, error)
	Close() error
}

// DBProvider lazily opens a pooled connection to the identity database.
// The returned client is shared and must not be closed by callers.
type DBProvider struct {
	serverHome string
	dataSource config.DataSource
	dbClient   client.DBClientInterface
	mutex      sync.RWMutex
}

// NewDBProvider creates a provider for the given data source.
func NewDBProvider(serverHome string, dataSource config.DataSource) DBProviderInterface {
	return &DBProvider{
		serverHome: serverHome,
		dataSource: dataSource,
	}
}

// GetDBClient returns the shared database client, connecting on first use.
func (d *DBProvider) GetDBClient() (client.DBClientInterface, error) {
	d.mutex.RLock()
	if d.dbClient != nil {
		c := d.dbClient
		d.mutex.RUnlock()
		return c, nil
	}
	d.mutex.RUnlock()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.dbClient != nil {
		return d.dbClient, nil
	}

	c, err := d.initializeClient()
	if err != nil {
		return nil, err
	}
	d.dbClient = c
	return c, nil
}

// Close closes the underlying connection pool if it was opened.
func (d *DBProvider) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.dbClient == nil {
		return nil
	}
	err := d.dbClient.Close()
	d.dbClient = nil
	if err != nil {
		return fmt.Errorf("failed to close database client: %w", err)
	}
	return nil
}

func (d *DBProvider) initializeClient() (client.DBClientInterface, error) {
	dbConfig, err := d.getDBConfig()
	if err != nil {
		return nil, err
	}
	dbName := d.dataSource.Name

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dbName, err)
	}

	if d.dataSource.MaxOpenConns > 0 {
		db.SetMaxOpenConns(d.dataSource.MaxOpenConns)
	}
	if d.dataSource.MaxIdleConns > 0 {
		db.SetMaxIdleConns(d.dataSource.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Duration(d.dataSource.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database %s: %w (close error: %w)", dbName, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database %s: %w", dbName, err)
	}

	return client.NewDBClient(model.NewDB(db), dbConfig.driverName), nil
}

// getDBConfig returns the driver and DSN for the configured data source.
func (d *DBProvider) getDBConfig() (dbConfig, error) {
	ds := d.dataSource

	switch ds.Type {
	case dataSourceTypePostgres:
		return dbConfig{
			driverName: dataSourceTypePostgres,
			dsn: fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				ds.Hostname, ds.Port, ds.Username, ds.Password, ds.Name, ds.SSLMode),
		}, nil
	case dataSourceTypeSQLite:
		options := ds.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dbPath := ds.Path
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(d.serverHome, dbPath)
		}
		return dbConfig{
			driverName: dataSourceTypeSQLite,
			dsn:        dbPath + options,
		}, nil
	default:
		return dbConfig{}, fmt.Errorf("unsupported data source type: %q", ds.Type)
	}
}
