// config.go
//
// IT asset and software license tracking service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of itassetdb.
// itassetdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// itassetdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with itassetdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType               string // mysql, mariadb, postgres, sqlite, sqlite-nocgo, sqlserver
	DBHost               string
	DBPort               string
	DBAppDatabase        string
	DBAppUser            string
	DBAppPassword        string
	DBAppConnectionLimit int
	DBMaxRetries         int
	DBMaxRetryInterval   time.Duration

	// Token configuration
	JWTSecret        string
	JWTIssuer        string
	JWTExpiryMinutes int

	// Authorizer configuration, optional
	AuthzURL      string
	AuthzClientID string

	// Logging
	LogLevel  string
	LogFormat string

	// Initial administrator, created when both are set
	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load loads configuration from environment variables.
// A .env file named by ENV_FILE (or ./.env when present) is loaded first and
// never overrides variables already set in the environment.
func Load() (*Config, error) {
	if err := loadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		DBType:               strings.ToLower(getEnv("DB_TYPE", "mysql")),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBAppDatabase:        getEnv("DB_APP_DATABASE", ""),
		DBAppUser:            getEnv("DB_APP_USER", ""),
		DBAppPassword:        getEnv("DB_APP_PASSWORD", ""),
		DBAppConnectionLimit: getEnvAsInt("DB_APP_CONNECTION_LIMIT", 5),
		DBMaxRetries:         getEnvAsInt("DB_MAX_RETRIES", 5),
		DBMaxRetryInterval:   time.Duration(getEnvAsInt("DB_MAX_RETRY_SECONDS", 30)) * time.Second,
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTIssuer:            getEnv("JWT_ISSUER", "itassetdb"),
		JWTExpiryMinutes:     getEnvAsInt("JWT_EXPIRY_MINUTES", 60),
		AuthzURL:             getEnv("AUTHZ_URL", ""),
		AuthzClientID:        getEnv("AUTHZ_CLIENT_ID", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		SeedAdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and field combinations
func (cfg *Config) Validate() error {
	if cfg.DBAppDatabase == "" {
		return fmt.Errorf("DB_APP_DATABASE is required")
	}
	if !cfg.IsSQLite() && cfg.DBAppUser == "" {
		return fmt.Errorf("DB_APP_USER is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is required and must be at least 32 characters")
	}
	if (cfg.AuthzURL == "") != (cfg.AuthzClientID == "") {
		return fmt.Errorf("AUTHZ_URL and AUTHZ_CLIENT_ID must be set together")
	}
	if cfg.JWTExpiryMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRY_MINUTES must be positive")
	}
	return nil
}

// IsSQLite reports whether the configured store is a sqlite file
func (cfg *Config) IsSQLite() bool {
	return cfg.DBType == "sqlite" || cfg.DBType == "sqlite-nocgo"
}

// AuthorizerEnabled reports whether Authorizer cookie sessions are accepted
func (cfg *Config) AuthorizerEnabled() bool {
	return cfg.AuthzURL != ""
}

// TokenTTL is the lifetime of issued tokens
func (cfg *Config) TokenTTL() time.Duration {
	return time.Duration(cfg.JWTExpiryMinutes) * time.Minute
}

func loadEnvFile(filename string) error {
	if filename != "" {
		if err := godotenv.Load(filename); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", filename, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load()
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
