// routes.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/config"
	"github.com/localnerve/itassetdb/internal/middleware"
	"github.com/localnerve/itassetdb/internal/policy"
	"github.com/localnerve/itassetdb/internal/services"
	"gorm.io/gorm"
)

// SetupRoutes mounts the API under /api. Every route except auth and health
// is guarded by a named policy.
func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, tokens *services.TokenService) {
	auth := middleware.NewAuth(cfg, tokens)
	require := auth.Require

	authHandler := &AuthHandler{DB: db, Tokens: tokens}
	healthHandler := &HealthHandler{DB: db, Config: cfg}
	dashboardHandler := &DashboardHandler{DB: db}
	assetHandler := &AssetHandler{DB: db}
	peopleHandler := &PeopleHandler{DB: db}
	locationHandler := &LocationHandler{DB: db}
	productHandler := &ProductHandler{DB: db}
	licenseHandler := &LicenseHandler{DB: db}
	changeLogHandler := &ChangeLogHandler{DB: db}

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	api.Get("/health", healthHandler.Health)

	// Authentication
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)
	api.Get("/auth/validate", require(policy.AllUsers), authHandler.Validate)

	// Dashboard and reports
	api.Get("/dashboard", require(policy.CanAccessReports), dashboardHandler.GetDashboard)
	api.Get("/reports/warranty-expiring", require(policy.CanAccessReports), dashboardHandler.WarrantyExpiring)
	api.Get("/reports/licenses-expiring", require(policy.CanAccessReports), dashboardHandler.LicensesExpiring)

	// Assets and maintenance tickets
	api.Get("/assets", require(policy.CanViewAssets), assetHandler.ListAssets)
	api.Get("/assets/:id", require(policy.CanViewAssets), assetHandler.GetAsset)
	api.Post("/assets", require(policy.AdminOnly), assetHandler.CreateAsset)
	api.Put("/assets/:id", require(policy.CanManageAssets), assetHandler.UpdateAsset)
	api.Delete("/assets/:id", require(policy.AdminOnly), assetHandler.DeleteAsset)
	api.Get("/assets/:id/tickets", require(policy.CanViewAssets), assetHandler.ListTickets)
	api.Post("/assets/:id/tickets", require(policy.CanCreateTickets), assetHandler.CreateTicket)
	api.Put("/tickets/:id", require(policy.CanManageTickets), assetHandler.UpdateTicket)

	// People
	api.Get("/people", require(policy.AllUsers), peopleHandler.ListPeople)
	api.Get("/people/:id", require(policy.AllUsers), peopleHandler.GetPerson)
	api.Post("/people", require(policy.AdminOnly), peopleHandler.CreatePeople)
	api.Put("/people/:id", require(policy.AdminOrDeveloper), peopleHandler.UpdatePerson)
	api.Delete("/people/:id", require(policy.AdminOnly), peopleHandler.DeletePerson)

	// Locations
	api.Get("/locations", require(policy.AllUsers), locationHandler.ListLocations)
	api.Get("/locations/:id", require(policy.AllUsers), locationHandler.GetLocation)
	api.Post("/locations", require(policy.AdminOnly), locationHandler.CreateLocation)
	api.Put("/locations/:id", require(policy.AdminOrDeveloper), locationHandler.UpdateLocation)
	api.Delete("/locations/:id", require(policy.AdminOnly), locationHandler.DeleteLocation)

	// Software products and license assignments
	api.Get("/products", require(policy.AllUsers), productHandler.ListProducts)
	api.Get("/products/:id", require(policy.AllUsers), productHandler.GetProduct)
	api.Get("/products/:id/summary", require(policy.AllUsers), productHandler.GetProductSummary)
	api.Post("/products", require(policy.AdminOnly), productHandler.CreateProduct)
	api.Put("/products/:id", require(policy.AdminOrDeveloper), productHandler.UpdateProduct)
	api.Delete("/products/:id", require(policy.AdminOnly), productHandler.DeleteProduct)
	api.Get("/products/:id/assignments", require(policy.AllUsers), productHandler.ListAssignments)
	api.Post("/products/:id/assign", require(policy.CanManageAssets), productHandler.Assign)
	api.Post("/products/:id/unassign", require(policy.CanManageAssets), productHandler.Unassign)
	api.Post("/products/:id/deactivate-assignments", require(policy.AdminOnly), productHandler.DeactivateAssignments)

	// Software licenses
	api.Get("/licenses", require(policy.AllUsers), licenseHandler.ListLicenses)
	api.Get("/licenses/:id", require(policy.AllUsers), licenseHandler.GetLicense)
	api.Post("/licenses", require(policy.AdminOnly), licenseHandler.CreateLicense)
	api.Put("/licenses/:id", require(policy.AdminOnly), licenseHandler.UpdateLicense)
	api.Delete("/licenses/:id", require(policy.AdminOnly), licenseHandler.DeleteLicense)

	// Audit trail
	api.Get("/changelogs", require(policy.CanManageSettings), changeLogHandler.ListChangeLogs)
}
