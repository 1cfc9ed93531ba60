// config_test.go
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
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_APP_DATABASE", "assets.db")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %s", cfg.Port)
	}
	if cfg.DBMaxRetries != 5 || cfg.DBMaxRetryInterval != 30*time.Second {
		t.Errorf("Unexpected retry defaults: %d %v", cfg.DBMaxRetries, cfg.DBMaxRetryInterval)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Errorf("Expected 1h token ttl, got %v", cfg.TokenTTL())
	}
	if cfg.AuthorizerEnabled() {
		t.Error("Expected authorizer disabled without AUTHZ_URL")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database", map[string]string{"DB_TYPE": "sqlite", "JWT_SECRET": testSecret}},
		{"missing user", map[string]string{"DB_TYPE": "postgres", "DB_APP_DATABASE": "x", "JWT_SECRET": testSecret}},
		{"short secret", map[string]string{"DB_TYPE": "sqlite", "DB_APP_DATABASE": "x", "JWT_SECRET": "short"}},
		{"half authorizer", map[string]string{"DB_TYPE": "sqlite", "DB_APP_DATABASE": "x", "JWT_SECRET": testSecret, "AUTHZ_URL": "http://authz:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DB_TYPE", "DB_APP_DATABASE", "DB_APP_USER", "JWT_SECRET", "AUTHZ_URL", "AUTHZ_CLIENT_ID"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "DB_TYPE=sqlite\nDB_APP_DATABASE=file.db\nJWT_SECRET=" + testSecret + "\nPORT=4000\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	t.Setenv("ENV_FILE", envFile)
	t.Setenv("PORT", "5000")
	for _, k := range []string{"DB_TYPE", "DB_APP_DATABASE", "JWT_SECRET"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBAppDatabase != "file.db" {
		t.Errorf("Expected database from env file, got %q", cfg.DBAppDatabase)
	}
	if cfg.Port != "5000" {
		t.Errorf("Expected environment to win over env file, got %s", cfg.Port)
	}
}
