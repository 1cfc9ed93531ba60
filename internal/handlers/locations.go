// locations.go
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
	"gorm.io/gorm"
)

// LocationHandler handles location routes
type LocationHandler struct {
	DB *gorm.DB
}

type locationRequest struct {
	services.LocationInput
	Version types.FlexUint64 `json:"version"`
}

// ListLocations handles GET /api/locations
// @Summary List locations
// @Tags Locations
// @Produce json
// @Success 200 {array} models.Location
// @Security BearerAuth
// @Router /locations [get]
func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := services.ListLocations(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return c.JSON(locations)
}

// GetLocation handles GET /api/locations/:id
// @Summary Get a location
// @Tags Locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} models.Location
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /locations/{id} [get]
func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	location, err := services.GetLocation(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(location)
}

// CreateLocation handles POST /api/locations
// @Summary Create a location
// @Tags Locations
// @Accept json
// @Produce json
// @Param body body services.LocationInput true "Location"
// @Success 201 {object} models.Location
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /locations [post]
func (h *LocationHandler) CreateLocation(c *fiber.Ctx) error {
	var body services.LocationInput
	if err := parseBody(c, &body); err != nil {
		return err
	}
	location, err := services.CreateLocation(c.UserContext(), h.DB, body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, location, fiber.StatusCreated)
}

// UpdateLocation handles PUT /api/locations/:id
// @Summary Update a location
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path int true "Location ID"
// @Param body body locationRequest true "Location with current version"
// @Success 200 {object} models.Location
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /locations/{id} [put]
func (h *LocationHandler) UpdateLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body locationRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	location, err := services.UpdateLocation(c.UserContext(), h.DB, id, body.Version.Uint64(), body.LocationInput)
	if err != nil {
		return err
	}
	return c.JSON(location)
}

// DeleteLocation handles DELETE /api/locations/:id
// @Summary Delete a location
// @Tags Locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /locations/{id} [delete]
func (h *LocationHandler) DeleteLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteLocation(c.UserContext(), h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Location deleted", 1)
}
