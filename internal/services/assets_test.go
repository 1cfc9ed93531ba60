// assets_test.go
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

	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/testutil"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestCreateAssetWithNewPersonAndLocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := asUser("helpdesk@example.com")

	asset, err := CreateAsset(ctx, db, AssetInput{
		AssetTag:            "LT-100",
		Name:                "ThinkPad",
		SerialNumber:        strPtr(" SN-1 "),
		PurchaseCost:        decimal.NewNullDecimal(decimal.RequireFromString("1499.99")),
		NewPersonName:       "Grace Hopper",
		NewPersonEmail:      "grace@example.com",
		NewLocationBuilding: "Main",
		NewLocationRoom:     "101",
	})
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	if asset.Status != models.AssetStatusActive {
		t.Errorf("Expected default status, got %q", asset.Status)
	}
	if asset.SerialNumber == nil || *asset.SerialNumber != "SN-1" {
		t.Errorf("Expected trimmed serial, got %v", asset.SerialNumber)
	}
	if asset.Person == nil || asset.Person.FirstName != "Grace" || asset.Person.LastName != "Hopper" {
		t.Errorf("Expected new person linked, got %+v", asset.Person)
	}
	if asset.Location == nil || asset.Location.Building != "Main" {
		t.Errorf("Expected new location linked, got %+v", asset.Location)
	}

	for _, entity := range []string{"Asset", "Person", "Location"} {
		entries := changeLogsFor(t, db, entity)
		if len(entries) != 1 || entries[0].UserName != "helpdesk@example.com" {
			t.Errorf("Expected one %s entry by the caller, got %+v", entity, entries)
		}
	}
}

func TestCreateAssetValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	if _, err := CreateAsset(ctx, db, AssetInput{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for missing name, got %v", err)
	}
	if _, err := CreateAsset(ctx, db, AssetInput{Name: "X", PurchaseCost: decimal.NewNullDecimal(decimal.NewFromInt(-1))}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for negative cost, got %v", err)
	}
	missing := uint(42)
	if _, err := CreateAsset(ctx, db, AssetInput{Name: "X", PersonID: &missing}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown person, got %v", err)
	}

	if _, err := CreateAsset(ctx, db, AssetInput{Name: "A", SerialNumber: strPtr("SN-1")}); err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if _, err := CreateAsset(ctx, db, AssetInput{Name: "B", SerialNumber: strPtr("SN-1")}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for duplicate serial, got %v", err)
	}
	if _, err := CreateAsset(ctx, db, AssetInput{Name: "C", SerialNumber: strPtr("")}); err != nil {
		t.Errorf("Expected an empty serial to be stored as absent: %v", err)
	}
}

func TestListAssetsSearchAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	grace := seedPerson(t, db, "Grace", "Hopper")
	ada := seedPerson(t, db, "Ada", "Lovelace")
	seedAsset(t, db, "LT-003", &grace.ID)
	seedAsset(t, db, "LT-001", &ada.ID)
	seedAsset(t, db, "DT-002", nil)

	tests := []struct {
		search string
		want   int64
	}{
		{"", 3},
		{"lt-", 2},
		{"GRACE", 1},
		{"grace hop", 1},
		{"lovelace", 1},
		{"active", 3},
		{"nothing", 0},
	}
	for _, tt := range tests {
		page, err := ListAssets(ctx, db, AssetQuery{Search: tt.search})
		if err != nil {
			t.Fatalf("ListAssets(%q) failed: %v", tt.search, err)
		}
		if page.Total != tt.want || int64(len(page.Items)) != tt.want {
			t.Errorf("ListAssets(%q) = %d/%d, want %d", tt.search, len(page.Items), page.Total, tt.want)
		}
	}

	page, err := ListAssets(ctx, db, AssetQuery{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 || page.Items[0].AssetTag != "LT-003" {
		t.Errorf("Unexpected second page: %+v", page)
	}

	page, _ = ListAssets(ctx, db, AssetQuery{Sort: "tag"})
	if page.Items[0].AssetTag != "DT-002" || page.Items[0].Person != nil {
		t.Errorf("Unexpected first item: %+v", page.Items[0])
	}
	if page.Items[1].Person == nil || page.Items[1].Person.ID != ada.ID {
		t.Errorf("Expected person preloaded, got %+v", page.Items[1].Person)
	}
}

func TestUpdateAssetVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	laptop := seedAsset(t, db, "LT-1", nil)

	updated, err := UpdateAsset(ctx, db, laptop.ID, 0, AssetInput{Name: "Laptop", Status: models.AssetStatusInRepair})
	if err != nil {
		t.Fatalf("UpdateAsset failed: %v", err)
	}
	if updated.Version != 1 || updated.Status != models.AssetStatusInRepair {
		t.Errorf("Unexpected update result: %+v", updated)
	}

	if _, err := UpdateAsset(ctx, db, laptop.ID, 0, AssetInput{Name: "Stale"}); !errors.Is(err, ErrConcurrencyConflict) {
		t.Errorf("Expected ErrConcurrencyConflict, got %v", err)
	}
	if _, err := UpdateAsset(ctx, db, 999, 0, AssetInput{Name: "Missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateAssetRetriesWithNewPerson(t *testing.T) {
	db := testutil.SetupTestDB(t)
	calls := failOnce(t, db, "create", "assets")

	asset, err := CreateAsset(asUser("ada@example.com"), db, AssetInput{
		Name:                "Laptop",
		NewPersonName:       "Ada Lovelace",
		NewLocationBuilding: "Main",
	})
	if err != nil {
		t.Fatalf("CreateAsset failed after a transient error: %v", err)
	}
	if *calls != 2 {
		t.Errorf("Expected 2 asset inserts, got %d", *calls)
	}

	var people []models.Person
	db.Find(&people)
	if len(people) != 1 || asset.PersonID == nil || *asset.PersonID != people[0].ID {
		t.Fatalf("Expected the asset owned by the one created person, got %+v and %+v", asset, people)
	}
	if n := countRows(t, db, &models.Location{}, ""); n != 1 || asset.LocationID == nil {
		t.Errorf("Expected one location referenced by the asset, got %d (%v)", n, asset.LocationID)
	}
	if got := changeLogsFor(t, db, "Person"); len(got) != 1 {
		t.Errorf("Expected one Person entry from the committed attempt, got %d", len(got))
	}
}

func TestUpdateAssetRetriesWithNewLocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	laptop := seedAsset(t, db, "LT-1", nil)
	calls := failOnce(t, db, "update", "assets")

	updated, err := UpdateAsset(context.Background(), db, laptop.ID, 0, AssetInput{
		Name:                "Laptop",
		NewLocationBuilding: "Annex",
		NewLocationRoom:     "12",
	})
	if err != nil {
		t.Fatalf("UpdateAsset failed after a transient error: %v", err)
	}
	if *calls != 2 {
		t.Errorf("Expected 2 asset updates, got %d", *calls)
	}

	var locations []models.Location
	db.Find(&locations)
	if len(locations) != 1 || updated.LocationID == nil || *updated.LocationID != locations[0].ID {
		t.Fatalf("Expected the asset at the one created location, got %+v and %+v", updated, locations)
	}
	if updated.Version != 1 {
		t.Errorf("Expected version 1, got %d", updated.Version)
	}
}

func TestListAssetsSearchIsLiteral(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	seedAsset(t, db, "LT_1", nil)
	seedAsset(t, db, "LTX1", nil)
	seedAsset(t, db, "100%", nil)

	tests := []struct {
		search string
		want   int64
	}{
		{"lt_", 1},
		{"%", 1},
		{"0%", 1},
		{"_", 1},
		{"!", 0},
		{"[l]", 0},
		{"ltx", 1},
	}
	for _, tt := range tests {
		page, err := ListAssets(ctx, db, AssetQuery{Search: tt.search})
		if err != nil {
			t.Fatalf("ListAssets(%q) failed: %v", tt.search, err)
		}
		if page.Total != tt.want {
			t.Errorf("ListAssets(%q) = %d, want %d", tt.search, page.Total, tt.want)
		}
	}
}

func TestDeleteAssetWithTicketIsBlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	laptop := seedAsset(t, db, "LT-1", nil)

	if _, err := CreateTicket(ctx, db, laptop.ID, "Broken hinge"); err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	if err := DeleteAsset(ctx, db, laptop.ID); !errors.Is(err, ErrReferentialConflict) {
		t.Fatalf("Expected ErrReferentialConflict, got %v", err)
	}

	spare := seedAsset(t, db, "LT-2", nil)
	if err := DeleteAsset(ctx, db, spare.ID); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}
	if _, err := GetAsset(ctx, db, spare.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestAssetChangesSurviveChangeLogOutage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := asUser("helpdesk@example.com")

	if err := db.Migrator().DropTable(&models.ChangeLog{}); err != nil {
		t.Fatalf("Failed to drop change_logs: %v", err)
	}

	asset, err := CreateAsset(ctx, db, AssetInput{Name: "Laptop"})
	if err != nil {
		t.Fatalf("CreateAsset failed with the change log unavailable: %v", err)
	}
	if _, err := UpdateAsset(ctx, db, asset.ID, asset.Version, AssetInput{Name: "Laptop 2"}); err != nil {
		t.Fatalf("UpdateAsset failed with the change log unavailable: %v", err)
	}
	if err := DeleteAsset(ctx, db, asset.ID); err != nil {
		t.Fatalf("DeleteAsset failed with the change log unavailable: %v", err)
	}
	if n := countRows(t, db, &models.Asset{}, ""); n != 0 {
		t.Errorf("Expected the asset removed, got %d rows", n)
	}
}
