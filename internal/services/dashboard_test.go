// dashboard_test.go
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

	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/testutil"
	"gorm.io/gorm"
)

// seedInventory creates assets with warranties around today and three products
func seedInventory(t *testing.T, db *gorm.DB) {
	t.Helper()

	assets := []models.Asset{
		{Name: "past", AssetTag: "A", Status: models.AssetStatusActive, WarrantyExpiry: daysFromToday(-5)},
		{Name: "today", AssetTag: "B", Status: models.AssetStatusActive, WarrantyExpiry: daysFromToday(0)},
		{Name: "month", AssetTag: "C", Status: models.AssetStatusActive, WarrantyExpiry: daysFromToday(30)},
		{Name: "later", AssetTag: "D", Status: models.AssetStatusActive, WarrantyExpiry: daysFromToday(31)},
		{Name: "repair", AssetTag: "E", Status: models.AssetStatusInRepair},
	}
	if err := db.Create(&assets).Error; err != nil {
		t.Fatalf("Failed to seed assets: %v", err)
	}

	seedProduct(t, db, "Office 365",
		models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(10), SeatsAssigned: testutil.IntPtr(6), ExpiryDate: daysFromToday(20)},
		models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(5), SeatsAssigned: testutil.IntPtr(3), ExpiryDate: daysFromToday(200)},
	)
	seedProduct(t, db, "Acrobat",
		models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(5), ExpiryDate: daysFromToday(90)},
	)
	visio := seedProduct(t, db, "Visio")
	person := seedPerson(t, db, "Ada", "Lovelace")
	assignment := models.LicenseAssignment{SoftwareProductID: visio.ID, PersonID: &person.ID, AssignedOn: today, IsActive: true}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("Failed to seed assignment: %v", err)
	}
}

func TestGetDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixToday(t, today)
	seedInventory(t, db)

	d, err := GetDashboard(context.Background(), db)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}

	want := Dashboard{
		TotalAssets:          5,
		InRepair:             1,
		ExpiringWarranty30:   3,
		SoftwareProducts:     3,
		LicensesTotalSeats:   20,
		LicensesSeatsInUse:   10,
		LicensesExpiringSoon: 1,
	}
	if *d != want {
		t.Errorf("GetDashboard() = %+v, want %+v", *d, want)
	}
}

func TestGetDashboardEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	d, err := GetDashboard(context.Background(), db)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if *d != (Dashboard{}) {
		t.Errorf("Expected an empty dashboard, got %+v", *d)
	}
}

func TestWarrantyExpiring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixToday(t, today)
	seedInventory(t, db)
	ctx := context.Background()

	tests := []struct {
		days int
		want []string
	}{
		{0, []string{"B"}},
		{30, []string{"B", "C"}},
		{90, []string{"B", "C", "D"}},
	}
	for _, tt := range tests {
		assets, err := WarrantyExpiring(ctx, db, tt.days)
		if err != nil {
			t.Fatalf("WarrantyExpiring(%d) failed: %v", tt.days, err)
		}
		var got []string
		for _, a := range assets {
			got = append(got, a.AssetTag)
		}
		if len(got) != len(tt.want) {
			t.Errorf("WarrantyExpiring(%d) = %v, want %v", tt.days, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("WarrantyExpiring(%d) = %v, want %v", tt.days, got, tt.want)
				break
			}
		}
	}

	if _, err := WarrantyExpiring(ctx, db, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestLicensesExpiring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixToday(t, today)
	seedInventory(t, db)
	ctx := context.Background()

	licenses, err := LicensesExpiring(ctx, db, DefaultLicenseWindow)
	if err != nil {
		t.Fatalf("LicensesExpiring failed: %v", err)
	}
	if len(licenses) != 1 || licenses[0].SoftwareProduct == nil || licenses[0].SoftwareProduct.Name != "Office 365" {
		t.Fatalf("Unexpected licenses: %+v", licenses)
	}

	licenses, _ = LicensesExpiring(ctx, db, 90)
	if len(licenses) != 2 {
		t.Errorf("Expected 2 licenses within 90 days, got %d", len(licenses))
	}

	if _, err := LicensesExpiring(ctx, db, 4000); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestReportsUseCalendarDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	// late evening must still count the same calendar day
	fixToday(t, today.Add(14*time.Hour))
	seedInventory(t, db)

	assets, err := WarrantyExpiring(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("WarrantyExpiring failed: %v", err)
	}
	if len(assets) != 1 || assets[0].AssetTag != "B" {
		t.Errorf("Expected only the asset expiring today, got %d", len(assets))
	}
}
