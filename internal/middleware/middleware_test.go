// middleware_test.go
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

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/config"
	"github.com/localnerve/itassetdb/internal/handlers"
	"github.com/localnerve/itassetdb/internal/middleware"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/localnerve/itassetdb/internal/policy"
	"github.com/localnerve/itassetdb/internal/services"
	"github.com/localnerve/itassetdb/internal/testutil"
	"github.com/localnerve/itassetdb/internal/utils"
)

const secret = "middleware-test-secret-of-32-chars!"

type whoami struct {
	Email string `json:"email"`
	Actor string `json:"actor"`
}

func newApp(tokens *services.TokenService, p policy.Policy) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	auth := middleware.NewAuth(&config.Config{}, tokens)
	app.Get("/guarded", auth.Require(p), func(c *fiber.Ctx) error {
		principal := middleware.PrincipalFrom(c)
		return c.JSON(whoami{Email: principal.Email, Actor: audit.ActorFrom(c.UserContext())})
	})
	return app
}

func issue(t *testing.T, tokens *services.TokenService, email string, roles ...string) string {
	t.Helper()
	user := &models.AppUser{ID: email, Email: email}
	user.SetRoles(roles)
	token, err := tokens.IssueToken(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

func TestRequire(t *testing.T) {
	tokens := services.NewTokenService(secret, "itassetdb-test", time.Hour)
	admin := issue(t, tokens, "admin@example.com", models.RoleAdministrator)
	staff := issue(t, tokens, "staff@example.com", models.RoleGeneralStaff)
	foreign := issue(t, services.NewTokenService("another-secret-that-is-long-enough", "itassetdb-test", time.Hour),
		"admin@example.com", models.RoleAdministrator)

	tests := []struct {
		name   string
		policy policy.Policy
		header string
		want   int
	}{
		{"no credentials", policy.AdminOnly, "", http.StatusUnauthorized},
		{"malformed header", policy.AdminOnly, "Token " + admin, http.StatusUnauthorized},
		{"empty bearer", policy.AdminOnly, "Bearer ", http.StatusUnauthorized},
		{"forged token", policy.AdminOnly, "Bearer " + foreign, http.StatusUnauthorized},
		{"missing role", policy.AdminOnly, "Bearer " + staff, http.StatusForbidden},
		{"admin", policy.AdminOnly, "Bearer " + admin, http.StatusOK},
		{"any user", policy.AllUsers, "Bearer " + staff, http.StatusOK},
		{"staff may view assets", policy.CanViewAssets, "Bearer " + staff, http.StatusOK},
		{"staff may not manage users", policy.CanManageUsers, "Bearer " + staff, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(tokens, tt.policy)
			req := httptest.NewRequest("GET", "/guarded", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			testutil.AssertStatus(t, resp, tt.want)

			if tt.want != http.StatusOK {
				var body utils.ErrorResponseStruct
				testutil.ParseJSON(t, resp, &body)
				if body.Ok || body.Type != "authorization."+string(tt.policy) {
					t.Errorf("Unexpected error envelope: %+v", body)
				}
			}
		})
	}
}

func TestRequireSetsActor(t *testing.T) {
	tokens := services.NewTokenService(secret, "itassetdb-test", time.Hour)
	app := newApp(tokens, policy.AdminOnly)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, "admin@example.com", models.RoleAdministrator))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusOK)

	var body whoami
	testutil.ParseJSON(t, resp, &body)
	if body.Email != "admin@example.com" || body.Actor != "admin@example.com" {
		t.Errorf("Unexpected principal: %+v", body)
	}
}

func TestRequireAcceptsSessionCookie(t *testing.T) {
	tokens := services.NewTokenService(secret, "itassetdb-test", time.Hour)
	app := newApp(tokens, policy.CanManageTickets)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: issue(t, tokens, "dev@example.com", models.RoleDeveloper)})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusOK)

	req = httptest.NewRequest("GET", "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "garbage"})
	resp, _ = app.Test(req)
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
}

func TestAuthorizerCookieIgnoredWhenDisabled(t *testing.T) {
	tokens := services.NewTokenService(secret, "itassetdb-test", time.Hour)
	app := newApp(tokens, policy.AllUsers)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: services.AuthorizerCookie, Value: "session"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	tests := []struct {
		header string
		want   string
	}{
		{"", middleware.CurrentAPIVersion},
		{"1", middleware.CurrentAPIVersion},
		{"v1.0", middleware.CurrentAPIVersion},
		{"2.1.0", "2.1.0"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("X-Api-Version", tt.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if got := resp.Header.Get("X-Api-Version"); got != tt.want {
			t.Errorf("X-Api-Version(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
