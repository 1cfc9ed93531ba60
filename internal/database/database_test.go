// database_test.go
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

package database_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/itassetdb/internal/config"
	"github.com/localnerve/itassetdb/internal/database"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/testutil"
)

func fastRetry(t *testing.T, maxRetries uint64) {
	t.Helper()
	database.ConfigureRetry(database.RetryPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", fmt.Errorf("query: %w", driver.ErrBadConn), true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"postgres serialization", &pgconn.PgError{Code: "40001"}, true},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"refused", errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"), true},
		{"missing table", errors.New("no such table: change_logs"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := database.IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	fastRetry(t, 5)
	permanent := errors.New("constraint failed")

	calls := 0
	err := database.Retry(context.Background(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Expected the permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	fastRetry(t, 5)

	calls := 0
	err := database.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	fastRetry(t, 2)

	calls := 0
	err := database.Retry(context.Background(), func() error {
		calls++
		return driver.ErrBadConn
	})
	if !errors.Is(err, driver.ErrBadConn) {
		t.Errorf("Expected the last transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	fastRetry(t, 100)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := database.Retry(ctx, func() error {
		calls++
		cancel()
		return driver.ErrBadConn
	})
	if err == nil {
		t.Fatal("Expected an error after cancellation")
	}
	if calls > 2 {
		t.Errorf("Expected retries to stop after cancellation, got %d calls", calls)
	}
}

func TestAutoMigrate(t *testing.T) {
	db := testutil.SetupTestDB(t)

	for _, m := range database.Models() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("Expected table for %T", m)
		}
	}
	if !db.Migrator().HasIndex(&models.LicenseAssignment{}, "ux_license_assignments_active_unscoped") {
		t.Error("Expected the active unscoped assignment index")
	}
	if !db.Migrator().HasIndex(&models.SoftwareProduct{}, "ux_software_products_name_version") {
		t.Error("Expected the product name and version index")
	}

	// a second run is a no-op
	if err := database.AutoMigrate(db); err != nil {
		t.Errorf("Second AutoMigrate failed: %v", err)
	}
}

func TestActiveUnscopedIndexRejectsSecondActiveRow(t *testing.T) {
	db := testutil.SetupTestDB(t)

	product := models.SoftwareProduct{Name: "Visio"}
	db.Create(&product)
	first := models.LicenseAssignment{SoftwareProductID: product.ID, AssignedOn: time.Now(), IsActive: true}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create first assignment: %v", err)
	}
	second := models.LicenseAssignment{SoftwareProductID: product.ID, AssignedOn: time.Now(), IsActive: true}
	if err := db.Create(&second).Error; err == nil {
		t.Error("Expected the second active unscoped assignment to be rejected")
	}
}

func TestDialector(t *testing.T) {
	tests := []struct {
		dbType string
		want   string
	}{
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlite-nocgo", "sqlite"},
		{"sqlserver", "sqlserver"},
	}
	for _, tt := range tests {
		cfg := &config.Config{DBType: tt.dbType, DBHost: "localhost", DBPort: "1", DBAppDatabase: "itassetdb", DBAppUser: "app"}
		d, err := database.Dialector(cfg)
		if err != nil {
			t.Errorf("Dialector(%s) failed: %v", tt.dbType, err)
			continue
		}
		if d.Name() != tt.want {
			t.Errorf("Dialector(%s).Name() = %s, want %s", tt.dbType, d.Name(), tt.want)
		}
	}

	if _, err := database.Dialector(&config.Config{DBType: "oracle"}); err == nil {
		t.Error("Expected an error for an unsupported type")
	}
}

func TestConnectSQLiteFile(t *testing.T) {
	cfg := &config.Config{
		DBType:        "sqlite-nocgo",
		DBAppDatabase: filepath.Join(t.TempDir(), "itassetdb.db"),
		LogLevel:      "silent",
		DBMaxRetries:  1,
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	var fk int
	db.Raw("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Errorf("Expected foreign keys enabled, got %d", fk)
	}
}
