// assets.go
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

// AssetHandler handles asset and maintenance ticket routes
type AssetHandler struct {
	DB *gorm.DB
}

type assetRequest struct {
	Version        types.FlexUint64    `json:"version"`
	AssetTag       string              `json:"assetTag"`
	Name           string              `json:"name"`
	Brand          string              `json:"brand"`
	Model          string              `json:"model"`
	SerialNumber   *string             `json:"serialNumber"`
	Category       string              `json:"category"`
	PurchaseCost   decimal.NullDecimal `json:"purchaseCost" swaggertype:"string"`
	PurchaseDate   *types.FlexDate     `json:"purchaseDate" swaggertype:"string"`
	WarrantyExpiry *types.FlexDate     `json:"warrantyExpiry" swaggertype:"string"`
	Status         string              `json:"status"`
	Notes          string              `json:"notes"`
	LocationID     *types.FlexUint64   `json:"locationId" swaggertype:"integer"`
	PersonID       *types.FlexUint64   `json:"personId" swaggertype:"integer"`

	NewPersonName        string `json:"newPersonName"`
	NewPersonEmail       string `json:"newPersonEmail"`
	NewLocationBuilding  string `json:"newLocationBuilding"`
	NewLocationRoom      string `json:"newLocationRoom"`
	NewLocationLabNumber string `json:"newLocationLabNumber"`
}

func (r assetRequest) input() services.AssetInput {
	return services.AssetInput{
		AssetTag:             r.AssetTag,
		Name:                 r.Name,
		Brand:                r.Brand,
		Model:                r.Model,
		SerialNumber:         r.SerialNumber,
		Category:             r.Category,
		PurchaseCost:         r.PurchaseCost,
		PurchaseDate:         types.TimePtr(r.PurchaseDate),
		WarrantyExpiry:       types.TimePtr(r.WarrantyExpiry),
		Status:               r.Status,
		Notes:                r.Notes,
		LocationID:           types.IDPtr(r.LocationID),
		PersonID:             types.IDPtr(r.PersonID),
		NewPersonName:        r.NewPersonName,
		NewPersonEmail:       r.NewPersonEmail,
		NewLocationBuilding:  r.NewLocationBuilding,
		NewLocationRoom:      r.NewLocationRoom,
		NewLocationLabNumber: r.NewLocationLabNumber,
	}
}

type ticketRequest struct {
	Version     types.FlexUint64 `json:"version"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
}

// ListAssets handles GET /api/assets
// @Summary List assets
// @Description Search and page assets by tag, model, serial number, status or person name
// @Tags Assets
// @Produce json
// @Param q query string false "Search text"
// @Param sort query string false "tag, model or status"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} services.Page[models.Asset]
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /assets [get]
func (h *AssetHandler) ListAssets(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "pageSize", 10)
	if err != nil {
		return err
	}

	result, err := services.ListAssets(c.UserContext(), h.DB, services.AssetQuery{
		Search:   c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetAsset handles GET /api/assets/:id
// @Summary Get an asset
// @Tags Assets
// @Produce json
// @Param id path int true "Asset ID"
// @Success 200 {object} models.Asset
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /assets/{id} [get]
func (h *AssetHandler) GetAsset(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	asset, err := services.GetAsset(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(asset)
}

// CreateAsset handles POST /api/assets
// @Summary Create an asset
// @Description Create an asset, optionally creating a new person or location by name
// @Tags Assets
// @Accept json
// @Produce json
// @Param body body assetRequest true "Asset"
// @Success 201 {object} models.Asset
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /assets [post]
func (h *AssetHandler) CreateAsset(c *fiber.Ctx) error {
	var body assetRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	asset, err := services.CreateAsset(c.UserContext(), h.DB, body.input())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, asset, fiber.StatusCreated)
}

// UpdateAsset handles PUT /api/assets/:id
// @Summary Update an asset
// @Tags Assets
// @Accept json
// @Produce json
// @Param id path int true "Asset ID"
// @Param body body assetRequest true "Asset with current version"
// @Success 200 {object} models.Asset
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /assets/{id} [put]
func (h *AssetHandler) UpdateAsset(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body assetRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	asset, err := services.UpdateAsset(c.UserContext(), h.DB, id, body.Version.Uint64(), body.input())
	if err != nil {
		return err
	}
	return c.JSON(asset)
}

// DeleteAsset handles DELETE /api/assets/:id
// @Summary Delete an asset
// @Description Fails with 409 while tickets or license assignments refer to the asset
// @Tags Assets
// @Produce json
// @Param id path int true "Asset ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteAsset(c.UserContext(), h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Asset deleted", 1)
}

// ListTickets handles GET /api/assets/:id/tickets
// @Summary List maintenance tickets for an asset
// @Tags Tickets
// @Produce json
// @Param id path int true "Asset ID"
// @Success 200 {array} models.MaintenanceTicket
// @Security BearerAuth
// @Router /assets/{id}/tickets [get]
func (h *AssetHandler) ListTickets(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tickets, err := services.ListTickets(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(tickets)
}

// CreateTicket handles POST /api/assets/:id/tickets
// @Summary Open a maintenance ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path int true "Asset ID"
// @Param body body ticketRequest true "Ticket"
// @Success 201 {object} models.MaintenanceTicket
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /assets/{id}/tickets [post]
func (h *AssetHandler) CreateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body ticketRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	ticket, err := services.CreateTicket(c.UserContext(), h.DB, id, body.Description)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, ticket, fiber.StatusCreated)
}

// UpdateTicket handles PUT /api/tickets/:id
// @Summary Update a maintenance ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param body body ticketRequest true "Status, description and current version"
// @Success 200 {object} models.MaintenanceTicket
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /tickets/{id} [put]
func (h *AssetHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body ticketRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	ticket, err := services.UpdateTicket(c.UserContext(), h.DB, id, body.Version.Uint64(), body.Status, body.Description)
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}
