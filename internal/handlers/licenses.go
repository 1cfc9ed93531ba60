// licenses.go
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
	"github.com/localnerve/itassetdb/internal/types"
	"github.com/localnerve/itassetdb/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LicenseHandler handles software license routes
type LicenseHandler struct {
	DB *gorm.DB
}

type licenseRequest struct {
	Version           types.FlexUint64    `json:"version"`
	SoftwareProductID types.FlexUint64    `json:"softwareProductId" swaggertype:"integer"`
	LicenseKey        string              `json:"licenseKey"`
	PurchaseDate      *types.FlexDate     `json:"purchaseDate" swaggertype:"string"`
	ExpiryDate        *types.FlexDate     `json:"expiryDate" swaggertype:"string"`
	SeatsPurchased    *types.FlexInt      `json:"seatsPurchased" swaggertype:"integer"`
	SeatsAssigned     *types.FlexInt      `json:"seatsAssigned" swaggertype:"integer"`
	Cost              decimal.NullDecimal `json:"cost" swaggertype:"string"`
	Vendor            string              `json:"vendor"`
	Notes             string              `json:"notes"`
}

func (r licenseRequest) input() services.LicenseInput {
	return services.LicenseInput{
		SoftwareProductID: uint(r.SoftwareProductID),
		LicenseKey:        r.LicenseKey,
		PurchaseDate:      types.TimePtr(r.PurchaseDate),
		ExpiryDate:        types.TimePtr(r.ExpiryDate),
		SeatsPurchased:    types.IntPtr(r.SeatsPurchased),
		SeatsAssigned:     types.IntPtr(r.SeatsAssigned),
		Cost:              r.Cost,
		Vendor:            r.Vendor,
		Notes:             r.Notes,
	}
}

// ListLicenses handles GET /api/licenses
// @Summary List software licenses
// @Tags Licenses
// @Produce json
// @Success 200 {array} models.SoftwareLicense
// @Security BearerAuth
// @Router /licenses [get]
func (h *LicenseHandler) ListLicenses(c *fiber.Ctx) error {
	licenses, err := services.ListLicenses(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return c.JSON(licenses)
}

// GetLicense handles GET /api/licenses/:id
// @Summary Get a software license
// @Tags Licenses
// @Produce json
// @Param id path int true "License ID"
// @Success 200 {object} models.SoftwareLicense
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /licenses/{id} [get]
func (h *LicenseHandler) GetLicense(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	license, err := services.GetLicense(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(license)
}

// CreateLicense handles POST /api/licenses
// @Summary Create a software license
// @Tags Licenses
// @Accept json
// @Produce json
// @Param body body licenseRequest true "License"
// @Success 201 {object} models.SoftwareLicense
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /licenses [post]
func (h *LicenseHandler) CreateLicense(c *fiber.Ctx) error {
	var body licenseRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	license, err := services.CreateLicense(c.UserContext(), h.DB, body.input())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, license, fiber.StatusCreated)
}

// UpdateLicense handles PUT /api/licenses/:id
// @Summary Update a software license
// @Tags Licenses
// @Accept json
// @Produce json
// @Param id path int true "License ID"
// @Param body body licenseRequest true "License with current version"
// @Success 200 {object} models.SoftwareLicense
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /licenses/{id} [put]
func (h *LicenseHandler) UpdateLicense(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body licenseRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	license, err := services.UpdateLicense(c.UserContext(), h.DB, id, body.Version.Uint64(), body.input())
	if err != nil {
		return err
	}
	return c.JSON(license)
}

// DeleteLicense handles DELETE /api/licenses/:id
// @Summary Delete a software license
// @Description Deleting a product's last license deactivates its assignments
// @Tags Licenses
// @Produce json
// @Param id path int true "License ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /licenses/{id} [delete]
func (h *LicenseHandler) DeleteLicense(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteLicense(c.UserContext(), h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "License deleted", 1)
}
