// helpers_test.go
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

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/testutil"
	"gorm.io/gorm"
)

// today is the fixed calendar date most service tests run on
var today = testutil.Date(2026, time.March, 10)

// fixToday pins the services clock to mid-morning of day
func fixToday(t *testing.T, day time.Time) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return day.Add(9*time.Hour + 30*time.Minute) }
	t.Cleanup(func() { Now = prev })
}

func asUser(name string) context.Context {
	return audit.WithActor(context.Background(), name)
}

func daysFromToday(n int) *time.Time {
	return testutil.DatePtr(today.AddDate(0, 0, n))
}

func seedPerson(t *testing.T, db *gorm.DB, first, last string) models.Person {
	t.Helper()
	p := models.Person{FirstName: first, LastName: last}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to seed person: %v", err)
	}
	return p
}

func seedAsset(t *testing.T, db *gorm.DB, tag string, personID *uint) models.Asset {
	t.Helper()
	a := models.Asset{AssetTag: tag, Name: tag, Status: models.AssetStatusActive, PersonID: personID}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("Failed to seed asset: %v", err)
	}
	return a
}

func seedProduct(t *testing.T, db *gorm.DB, name string, licenses ...models.SoftwareLicense) models.SoftwareProduct {
	t.Helper()
	p := models.SoftwareProduct{Name: name, Vendor: "Vendor", Version: "1"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	for i := range licenses {
		licenses[i].SoftwareProductID = p.ID
		if err := db.Create(&licenses[i]).Error; err != nil {
			t.Fatalf("Failed to seed license: %v", err)
		}
	}
	p.Licenses = licenses
	return p
}

func changeLogsFor(t *testing.T, db *gorm.DB, entity string) []models.ChangeLog {
	t.Helper()
	var entries []models.ChangeLog
	if err := db.Where("entity = ?", entity).Order("id").Find(&entries).Error; err != nil {
		t.Fatalf("Failed to read change logs: %v", err)
	}
	return entries
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// failOnce makes the first create or update on table fail with a transient
// storage error, so the surrounding unit of work is retried
func failOnce(t *testing.T, db *gorm.DB, operation, table string) *int {
	t.Helper()
	calls := 0
	fail := func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != table {
			return
		}
		calls++
		if calls == 1 {
			tx.AddError(errors.New("database is locked"))
		}
	}

	var err error
	switch operation {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register("test:fail_once_create", fail)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register("test:fail_once_update", fail)
	default:
		t.Fatalf("Unknown operation %q", operation)
	}
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}
	return &calls
}
