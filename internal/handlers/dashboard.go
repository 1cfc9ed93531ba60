// dashboard.go
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
	"github.com/localnerve/itassetdb/internal/services"
	"gorm.io/gorm"
)

// DashboardHandler handles the dashboard and report routes
type DashboardHandler struct {
	DB *gorm.DB
}

// GetDashboard handles GET /api/dashboard
// @Summary Dashboard counts
// @Description Asset, warranty and license seat totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.Dashboard
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := services.GetDashboard(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// WarrantyExpiring handles GET /api/reports/warranty-expiring
// @Summary Assets with warranty ending soon
// @Tags Reports
// @Produce json
// @Param days query int false "Window in days" default(90)
// @Success 200 {array} models.Asset
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /reports/warranty-expiring [get]
func (h *DashboardHandler) WarrantyExpiring(c *fiber.Ctx) error {
	days, err := queryInt(c, "days", services.DefaultWarrantyWindow)
	if err != nil {
		return err
	}
	assets, err := services.WarrantyExpiring(c.UserContext(), h.DB, days)
	if err != nil {
		return err
	}
	return c.JSON(assets)
}

// LicensesExpiring handles GET /api/reports/licenses-expiring
// @Summary Licenses expiring soon
// @Tags Reports
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {array} models.SoftwareLicense
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /reports/licenses-expiring [get]
func (h *DashboardHandler) LicensesExpiring(c *fiber.Ctx) error {
	days, err := queryInt(c, "days", services.DefaultLicenseWindow)
	if err != nil {
		return err
	}
	licenses, err := services.LicensesExpiring(c.UserContext(), h.DB, days)
	if err != nil {
		return err
	}
	return c.JSON(licenses)
}
