// handlers_test.go
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

package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/config"
	"github.com/localnerve/itassetdb/internal/handlers"
	"github.com/localnerve/itassetdb/internal/middleware"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/services"
	"github.com/localnerve/itassetdb/internal/testutil"
	"github.com/localnerve/itassetdb/internal/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	admin string
	dev   string
	staff string
}

// setupApp wires every route against an in-memory database and issues a
// token for each role.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{DBType: "sqlite-nocgo", DBAppDatabase: "itassetdb"}
	tokens := services.NewTokenService("handlers-test-secret-of-32-chars!!", "itassetdb-test", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.SetupRoutes(app, cfg, db, tokens)
	app.Use(handlers.NotFound)

	issue := func(email, role string) string {
		user := &models.AppUser{ID: email, Email: email}
		user.SetRoles([]string{role})
		token, err := tokens.IssueToken(user)
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		return token
	}

	return &testEnv{
		app:   app,
		db:    db,
		admin: issue("admin@example.com", models.RoleAdministrator),
		dev:   issue("dev@example.com", models.RoleDeveloper),
		staff: issue("staff@example.com", models.RoleGeneralStaff),
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}, token string) *http.Response {
	t.Helper()
	resp, err := e.app.Test(testutil.JSONRequest(t, method, target, body, token), -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return resp
}

func assertError(t *testing.T, resp *http.Response, status int, errorType string) utils.ErrorResponseStruct {
	t.Helper()
	testutil.AssertStatus(t, resp, status)
	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Ok || body.Status != status || body.Type != errorType || body.Timestamp == "" {
		t.Errorf("Unexpected error envelope: %+v", body)
	}
	return body
}

func TestAuthRoutes(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, "POST", "/api/auth/register", map[string]string{
		"email": "ada@example.com", "password": "correct-horse", "fullName": "Ada Lovelace",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var registered services.AuthResponse
	testutil.ParseJSON(t, resp, &registered)
	if !registered.Success || registered.Token == "" || len(registered.Roles) != 1 || registered.Roles[0] != models.RoleGeneralStaff {
		t.Fatalf("Unexpected register response: %+v", registered)
	}
	if !strings.Contains(resp.Header.Get("Set-Cookie"), middleware.SessionCookie+"=") {
		t.Errorf("Expected the session cookie, got %q", resp.Header.Get("Set-Cookie"))
	}

	resp = env.do(t, "POST", "/api/auth/register", map[string]string{
		"email": "ADA@example.com", "password": "correct-horse",
	}, "")
	assertError(t, resp, http.StatusConflict, "duplicate")

	resp = env.do(t, "POST", "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong-horse"}, "")
	assertError(t, resp, http.StatusUnauthorized, "authentication")

	resp = env.do(t, "POST", "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "correct-horse"}, "")
	testutil.AssertStatus(t, resp, http.StatusOK)
	var login services.AuthResponse
	testutil.ParseJSON(t, resp, &login)

	resp = env.do(t, "GET", "/api/auth/validate", nil, login.Token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var validated services.AuthResponse
	testutil.ParseJSON(t, resp, &validated)
	if validated.Email != "ada@example.com" || validated.UserID != registered.UserID {
		t.Errorf("Unexpected validate response: %+v", validated)
	}

	resp = env.do(t, "GET", "/api/auth/validate", nil, "")
	assertError(t, resp, http.StatusUnauthorized, "authorization.AllUsers")

	resp = env.do(t, "POST", "/api/auth/logout", nil, "")
	testutil.AssertStatus(t, resp, http.StatusOK)
}

func TestAssetRoutes(t *testing.T) {
	env := setupApp(t)

	asset := map[string]interface{}{
		"assetTag":       "LT-100",
		"name":           "ThinkPad",
		"serialNumber":   "SN-100",
		"purchaseCost":   "1499.99",
		"warrantyExpiry": "2027-01-31",
		"newPersonName":  "Grace Hopper",
	}

	resp := env.do(t, "POST", "/api/assets", asset, env.dev)
	assertError(t, resp, http.StatusForbidden, "authorization.AdminOnly")

	resp = env.do(t, "POST", "/api/assets", asset, env.admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var created models.Asset
	testutil.ParseJSON(t, resp, &created)
	if created.ID == 0 || created.Person == nil || created.Person.LastName != "Hopper" {
		t.Fatalf("Unexpected created asset: %+v", created)
	}
	if created.WarrantyExpiry == nil || created.WarrantyExpiry.Format("2006-01-02") != "2027-01-31" {
		t.Errorf("Unexpected warranty: %v", created.WarrantyExpiry)
	}
	assetURL := fmt.Sprintf("/api/assets/%d", created.ID)

	resp = env.do(t, "GET", "/api/assets?q=grace", nil, env.staff)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var page services.Page[models.Asset]
	testutil.ParseJSON(t, resp, &page)
	if page.Total != 1 || page.PageSize != 10 {
		t.Errorf("Unexpected page: %+v", page)
	}

	update := map[string]interface{}{"version": 0, "name": "ThinkPad X1", "status": "InRepair", "personId": created.Person.ID}
	resp = env.do(t, "PUT", assetURL, update, env.dev)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var updated models.Asset
	testutil.ParseJSON(t, resp, &updated)
	if updated.Version != 1 || updated.Name != "ThinkPad X1" {
		t.Errorf("Unexpected update result: %+v", updated)
	}

	resp = env.do(t, "PUT", assetURL, update, env.dev)
	body := assertError(t, resp, http.StatusConflict, "version")
	if !body.VersionError || !strings.HasPrefix(body.Message, "E_VERSION") {
		t.Errorf("Expected a version error, got %+v", body)
	}

	resp = env.do(t, "POST", assetURL+"/tickets", map[string]string{"description": "Hinge cracked"}, env.staff)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var ticket models.MaintenanceTicket
	testutil.ParseJSON(t, resp, &ticket)

	resp = env.do(t, "PUT", fmt.Sprintf("/api/tickets/%d", ticket.ID), map[string]interface{}{"version": "0", "status": "Closed"}, env.staff)
	assertError(t, resp, http.StatusForbidden, "authorization.CanManageTickets")
	resp = env.do(t, "PUT", fmt.Sprintf("/api/tickets/%d", ticket.ID), map[string]interface{}{"version": "0", "status": "Closed"}, env.dev)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = env.do(t, "DELETE", assetURL, nil, env.admin)
	assertError(t, resp, http.StatusConflict, "conflict")

	resp = env.do(t, "GET", "/api/assets/9999", nil, env.staff)
	assertError(t, resp, http.StatusNotFound, "notFound")
}

func TestInvalidInput(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, "GET", "/api/assets/abc", nil, env.staff)
	assertError(t, resp, http.StatusBadRequest, "validation.input")

	resp = env.do(t, "GET", "/api/assets?page=x", nil, env.staff)
	assertError(t, resp, http.StatusBadRequest, "validation.input")

	req := httptest.NewRequest("POST", "/api/assets", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.admin)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertError(t, resp, http.StatusBadRequest, "validation.input")

	resp = env.do(t, "POST", "/api/assets", map[string]string{"assetTag": "X"}, env.admin)
	assertError(t, resp, http.StatusBadRequest, "validation")

	resp = env.do(t, "POST", "/api/assets", map[string]string{"name": "X", "warrantyExpiry": "31/01/2027"}, env.admin)
	assertError(t, resp, http.StatusBadRequest, "validation.input")

	resp = env.do(t, "GET", "/api/nowhere", nil, "")
	assertError(t, resp, http.StatusNotFound, "notFound")
}

func TestPeopleRoutes(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, "POST", "/api/people", map[string]string{"firstName": "Ada", "lastName": "Lovelace"}, env.admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var single []models.Person
	testutil.ParseJSON(t, resp, &single)
	if len(single) != 1 {
		t.Fatalf("Expected one person, got %d", len(single))
	}

	resp = env.do(t, "POST", "/api/people", []map[string]string{
		{"firstName": "Grace", "lastName": "Hopper"},
		{"firstName": "Alan", "lastName": "Turing"},
	}, env.admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	resp = env.do(t, "GET", "/api/people", nil, env.staff)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var people []models.Person
	testutil.ParseJSON(t, resp, &people)
	if len(people) != 3 {
		t.Errorf("Expected 3 people, got %d", len(people))
	}

	asset := models.Asset{Name: "Laptop", PersonID: &single[0].ID}
	env.db.Create(&asset)

	resp = env.do(t, "DELETE", fmt.Sprintf("/api/people/%d", single[0].ID), nil, env.admin)
	assertError(t, resp, http.StatusConflict, "conflict")
}

func TestProductAssignmentRoutes(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, "POST", "/api/products", map[string]string{"name": "Visio", "vendor": "Microsoft", "version": "2024"}, env.admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var product models.SoftwareProduct
	testutil.ParseJSON(t, resp, &product)
	productURL := fmt.Sprintf("/api/products/%d", product.ID)

	resp = env.do(t, "POST", "/api/licenses", map[string]interface{}{
		"softwareProductId": product.ID, "seatsPurchased": 5, "seatsAssigned": 1, "expiryDate": "2099-12-31",
	}, env.admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	person := models.Person{FirstName: "Ada", LastName: "Lovelace"}
	env.db.Create(&person)

	resp = env.do(t, "POST", productURL+"/assign", map[string]interface{}{"personId": person.ID}, env.staff)
	assertError(t, resp, http.StatusForbidden, "authorization.CanManageAssets")
	resp = env.do(t, "POST", productURL+"/assign", map[string]interface{}{"personId": person.ID}, env.dev)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp = env.do(t, "POST", productURL+"/assign", map[string]interface{}{}, env.dev)
	assertError(t, resp, http.StatusBadRequest, "validation")

	resp = env.do(t, "GET", productURL+"/summary", nil, env.staff)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var summary services.ProductSummary
	testutil.ParseJSON(t, resp, &summary)
	if summary.TotalSeats != 5 || summary.SeatsAssigned != 1 || summary.SeatsAvailable != 4 || summary.ExpiryStatus != services.ExpiryActive {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	resp = env.do(t, "PUT", productURL, map[string]interface{}{"rowVersion": 3, "name": "Visio"}, env.dev)
	assertError(t, resp, http.StatusConflict, "version")

	resp = env.do(t, "DELETE", productURL, nil, env.admin)
	assertError(t, resp, http.StatusConflict, "conflict")

	resp = env.do(t, "POST", productURL+"/deactivate-assignments", nil, env.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var deactivated utils.SuccessResponseStruct
	testutil.ParseJSON(t, resp, &deactivated)
	if !deactivated.Ok || deactivated.AffectedRows != 1 {
		t.Errorf("Unexpected deactivate response: %+v", deactivated)
	}

	resp = env.do(t, "GET", productURL+"/assignments?active=true", nil, env.staff)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var active []models.LicenseAssignment
	testutil.ParseJSON(t, resp, &active)
	if len(active) != 0 {
		t.Errorf("Expected no active assignments, got %d", len(active))
	}

	resp = env.do(t, "DELETE", productURL, nil, env.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = env.do(t, "GET", "/api/changelogs?entity=SoftwareProduct", nil, env.dev)
	assertError(t, resp, http.StatusForbidden, "authorization.CanManageSettings")

	resp = env.do(t, "GET", "/api/changelogs?entity=SoftwareProduct", nil, env.admin)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var logs handlers.ChangeLogPage
	testutil.ParseJSON(t, resp, &logs)
	if logs.Total != 2 || logs.Items[0].Action != models.ActionDelete || logs.Items[0].UserName != "admin@example.com" {
		t.Errorf("Unexpected change log page: %+v", logs)
	}
}

func TestDashboardAndReportRoutes(t *testing.T) {
	env := setupApp(t)
	env.db.Create(&models.Asset{Name: "Laptop", Status: models.AssetStatusInRepair})

	resp := env.do(t, "GET", "/api/dashboard", nil, env.staff)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var d services.Dashboard
	testutil.ParseJSON(t, resp, &d)
	if d.TotalAssets != 1 || d.InRepair != 1 {
		t.Errorf("Unexpected dashboard: %+v", d)
	}

	resp = env.do(t, "GET", "/api/reports/warranty-expiring", nil, env.staff)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp = env.do(t, "GET", "/api/reports/licenses-expiring?days=-1", nil, env.staff)
	assertError(t, resp, http.StatusBadRequest, "validation")

	resp = env.do(t, "GET", "/api/dashboard", nil, "")
	assertError(t, resp, http.StatusUnauthorized, "authorization.CanAccessReports")
}

func TestHealthRoute(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, "GET", "/api/health", nil, "")
	testutil.AssertStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("X-Api-Version"); got != "1.0.0" {
		t.Errorf("Expected the API version header, got %q", got)
	}
	var result services.HealthCheckResult
	testutil.ParseJSON(t, resp, &result)
	if result.Status != "healthy" {
		t.Errorf("Unexpected health: %+v", result)
	}
}
