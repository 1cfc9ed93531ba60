// assignments_test.go
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

	"github.com/localnerve/itassetdb/internal/metrics"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/testutil"
	dto "github.com/prometheus/client_model/go"
)

func operationCount(t *testing.T, operation string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.LicenseAssignments.WithLabelValues(operation).Write(&m); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestAssignLicenseReplacesInPlace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixToday(t, today)
	ctx := asUser("helpdesk@example.com")

	product := seedProduct(t, db, "Office 365", models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(5)})
	ada := seedPerson(t, db, "Ada", "Lovelace")
	grace := seedPerson(t, db, "Grace", "Hopper")

	first, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID})
	if err != nil {
		t.Fatalf("First assign failed: %v", err)
	}
	second, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &grace.ID})
	if err != nil {
		t.Fatalf("Second assign failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected the assignment to be replaced in place, got ids %d and %d", first.ID, second.ID)
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, "software_product_id = ? AND is_active = ?", product.ID, true); n != 1 {
		t.Errorf("Expected 1 active assignment, got %d", n)
	}

	var stored models.LicenseAssignment
	if err := db.First(&stored, first.ID).Error; err != nil {
		t.Fatalf("Failed to load assignment: %v", err)
	}
	if stored.PersonID == nil || *stored.PersonID != grace.ID {
		t.Errorf("Expected person %d, got %v", grace.ID, stored.PersonID)
	}

	entries := changeLogsFor(t, db, "LicenseAssignment")
	if len(entries) != 2 || entries[0].Action != models.ActionInsert || entries[1].Action != models.ActionUpdate {
		t.Fatalf("Unexpected change log entries: %+v", entries)
	}
	if entries[1].UserName != "helpdesk@example.com" {
		t.Errorf("Expected actor to be recorded, got %q", entries[1].UserName)
	}
	var changes map[string]interface{}
	if err := entries[1].Changes.Decode(&changes); err != nil {
		t.Fatalf("Failed to decode changes: %v", err)
	}
	if _, ok := changes["person_id"]; !ok {
		t.Errorf("Expected person_id in changes, got %v", changes)
	}
}

func TestAssignLicenseScopedByAsset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, "AutoCAD")
	ada := seedPerson(t, db, "Ada", "Lovelace")
	laptop := seedAsset(t, db, "LT-1", &ada.ID)
	desktop := seedAsset(t, db, "DT-1", &ada.ID)

	a, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID, AssetID: &laptop.ID})
	if err != nil {
		t.Fatalf("Assign to laptop failed: %v", err)
	}
	b, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID, AssetID: &desktop.ID})
	if err != nil {
		t.Fatalf("Assign to desktop failed: %v", err)
	}
	if a.ID == b.ID {
		t.Error("Expected separate assignments per asset")
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, "is_active = ?", true); n != 2 {
		t.Errorf("Expected 2 active assignments, got %d", n)
	}
}

func TestAssignLicenseRetriesTransientFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixToday(t, today)
	ctx := asUser("helpdesk@example.com")

	ada := seedPerson(t, db, "Ada", "Lovelace")
	grace := seedPerson(t, db, "Grace", "Hopper")
	laptop := seedAsset(t, db, "LT-1", nil)
	product := seedProduct(t, db, "Office365")

	if _, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID, AssetID: &laptop.ID}); err != nil {
		t.Fatalf("AssignLicense failed: %v", err)
	}
	if err := UnassignLicense(ctx, db, product.ID, &laptop.ID); err != nil {
		t.Fatalf("UnassignLicense failed: %v", err)
	}

	assigns, reactivations := operationCount(t, "assign"), operationCount(t, "reactivate")
	calls := failOnce(t, db, "update", "license_assignments")

	got, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &grace.ID, AssetID: &laptop.ID})
	if err != nil {
		t.Fatalf("AssignLicense failed after a transient error: %v", err)
	}
	if *calls != 2 {
		t.Errorf("Expected 2 assignment updates, got %d", *calls)
	}
	if !got.IsActive || got.PersonID == nil || *got.PersonID != grace.ID {
		t.Errorf("Unexpected assignment: %+v", got)
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, ""); n != 1 {
		t.Errorf("Expected the retained row reactivated, got %d rows", n)
	}
	if d := operationCount(t, "reactivate") - reactivations; d != 1 {
		t.Errorf("Expected one reactivation counted, got %v", d)
	}
	if d := operationCount(t, "assign") - assigns; d != 0 {
		t.Errorf("Expected no plain assignment counted, got %v", d)
	}
}

func TestUnassignThenReactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixToday(t, today)
	ctx := context.Background()

	product := seedProduct(t, db, "AutoCAD")
	ada := seedPerson(t, db, "Ada", "Lovelace")
	grace := seedPerson(t, db, "Grace", "Hopper")
	laptop := seedAsset(t, db, "LT-1", nil)

	original, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID, AssetID: &laptop.ID})
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if err := UnassignLicense(ctx, db, product.ID, &laptop.ID); err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}

	var stored models.LicenseAssignment
	db.First(&stored, original.ID)
	if stored.IsActive {
		t.Fatal("Expected the assignment to be retained inactive")
	}

	again, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &grace.ID, AssetID: &laptop.ID})
	if err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}
	if again.ID != original.ID || !again.IsActive {
		t.Errorf("Expected retained row %d reactivated, got %+v", original.ID, again)
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, ""); n != 1 {
		t.Errorf("Expected a single assignment row, got %d", n)
	}
}

func TestUnassignUnscopedKeepsHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, "Visio")
	ada := seedPerson(t, db, "Ada", "Lovelace")

	if _, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID}); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if err := UnassignLicense(ctx, db, product.ID, nil); err != nil {
		t.Fatalf("Unassign failed: %v", err)
	}
	if err := UnassignLicense(ctx, db, product.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound with nothing active, got %v", err)
	}
	if _, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID}); err != nil {
		t.Fatalf("Assign after unassign failed: %v", err)
	}

	all, err := ListAssignments(ctx, db, product.ID, false)
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	active, err := ListAssignments(ctx, db, product.ID, true)
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(all) != 2 || len(active) != 1 {
		t.Errorf("Expected 2 rows with 1 active, got %d and %d", len(all), len(active))
	}
	if active[0].Person == nil || active[0].Person.ID != ada.ID {
		t.Errorf("Expected person preloaded, got %+v", active[0].Person)
	}
}

func TestAssignLicenseValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, "Visio")
	ada := seedPerson(t, db, "Ada", "Lovelace")
	missing := uint(999)

	tests := []struct {
		name string
		in   AssignInput
		want error
	}{
		{"no product", AssignInput{PersonID: &ada.ID}, ErrInvalidAssignment},
		{"no holder", AssignInput{ProductID: product.ID}, ErrValidation},
		{"unknown product", AssignInput{ProductID: missing, PersonID: &ada.ID}, ErrNotFound},
		{"unknown person", AssignInput{ProductID: product.ID, PersonID: &missing}, ErrNotFound},
		{"unknown asset", AssignInput{ProductID: product.ID, PersonID: &ada.ID, AssetID: &missing}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AssignLicense(ctx, db, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if n := countRows(t, db, &models.LicenseAssignment{}, ""); n != 0 {
		t.Errorf("Expected no assignments written, got %d", n)
	}
	if err := UnassignLicense(ctx, db, 0, nil); !errors.Is(err, ErrInvalidAssignment) {
		t.Errorf("Expected ErrInvalidAssignment, got %v", err)
	}
}

func TestDeleteProductRequiresDeactivation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := asUser("admin@example.com")

	visio := seedProduct(t, db, "Visio", models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(5), SeatsAssigned: testutil.IntPtr(1)})
	ada := seedPerson(t, db, "Ada", "Lovelace")
	if _, err := AssignLicense(ctx, db, AssignInput{ProductID: visio.ID, PersonID: &ada.ID}); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := DeleteProduct(ctx, db, visio.ID); !errors.Is(err, ErrReferentialConflict) {
		t.Fatalf("Expected ErrReferentialConflict, got %v", err)
	}
	if n := countRows(t, db, &models.SoftwareProduct{}, ""); n != 1 {
		t.Fatalf("Expected the product to remain, got %d rows", n)
	}

	n, err := DeactivateAllForProduct(ctx, db, visio.ID)
	if err != nil || n != 1 {
		t.Fatalf("Expected 1 deactivated, got %d (%v)", n, err)
	}
	if n, _ := DeactivateAllForProduct(ctx, db, visio.ID); n != 0 {
		t.Errorf("Expected nothing left to deactivate, got %d", n)
	}

	if err := DeleteProduct(ctx, db, visio.ID); err != nil {
		t.Fatalf("Delete after deactivation failed: %v", err)
	}
	if countRows(t, db, &models.SoftwareProduct{}, "") != 0 ||
		countRows(t, db, &models.SoftwareLicense{}, "") != 0 ||
		countRows(t, db, &models.LicenseAssignment{}, "") != 0 {
		t.Error("Expected product, licenses and assignments removed")
	}

	deletes := 0
	for _, entity := range []string{"SoftwareProduct", "SoftwareLicense", "LicenseAssignment"} {
		for _, e := range changeLogsFor(t, db, entity) {
			if e.Action == models.ActionDelete {
				deletes++
			}
		}
	}
	if deletes != 3 {
		t.Errorf("Expected 3 delete entries, got %d", deletes)
	}
}

func TestDeleteLastLicenseDeactivatesAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	product := seedProduct(t, db, "Photoshop",
		models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(2)},
		models.SoftwareLicense{SeatsPurchased: testutil.IntPtr(3)},
	)
	ada := seedPerson(t, db, "Ada", "Lovelace")
	if _, err := AssignLicense(ctx, db, AssignInput{ProductID: product.ID, PersonID: &ada.ID}); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := DeleteLicense(ctx, db, product.Licenses[0].ID); err != nil {
		t.Fatalf("Delete first license failed: %v", err)
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, "is_active = ?", true); n != 1 {
		t.Fatalf("Expected assignment to stay active while a license remains, got %d", n)
	}

	if err := DeleteLicense(ctx, db, product.Licenses[1].ID); err != nil {
		t.Fatalf("Delete last license failed: %v", err)
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, "is_active = ?", true); n != 0 {
		t.Errorf("Expected assignments deactivated, got %d active", n)
	}
	if n := countRows(t, db, &models.LicenseAssignment{}, ""); n != 1 {
		t.Errorf("Expected the assignment row retained, got %d", n)
	}
}
