// people.go
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

// maxBulkPeople bounds a single create request
const maxBulkPeople = 500

// PeopleHandler handles person routes
type PeopleHandler struct {
	DB *gorm.DB
}

type personRequest struct {
	services.PersonInput
	Version types.FlexUint64 `json:"version"`
}

// ListPeople handles GET /api/people
// @Summary List people
// @Tags People
// @Produce json
// @Success 200 {array} models.Person
// @Security BearerAuth
// @Router /people [get]
func (h *PeopleHandler) ListPeople(c *fiber.Ctx) error {
	people, err := services.ListPeople(c.UserContext(), h.DB)
	if err != nil {
		return err
	}
	return c.JSON(people)
}

// GetPerson handles GET /api/people/:id
// @Summary Get a person
// @Tags People
// @Produce json
// @Param id path int true "Person ID"
// @Success 200 {object} models.Person
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /people/{id} [get]
func (h *PeopleHandler) GetPerson(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	person, err := services.GetPerson(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(person)
}

// CreatePeople handles POST /api/people
// @Summary Create one or more people
// @Description Accepts a single person object or an array of them
// @Tags People
// @Accept json
// @Produce json
// @Param body body []services.PersonInput true "People"
// @Success 201 {array} models.Person
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /people [post]
func (h *PeopleHandler) CreatePeople(c *fiber.Ctx) error {
	var body types.FlexList[services.PersonInput]
	if err := parseBody(c, &body); err != nil {
		return err
	}
	inputs, err := body.Bounded(maxBulkPeople)
	if err != nil {
		return types.BadRequest(err.Error(), errInput)
	}

	people, err := services.CreatePeople(c.UserContext(), h.DB, inputs)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, people, fiber.StatusCreated)
}

// UpdatePerson handles PUT /api/people/:id
// @Summary Update a person
// @Tags People
// @Accept json
// @Produce json
// @Param id path int true "Person ID"
// @Param body body personRequest true "Person with current version"
// @Success 200 {object} models.Person
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /people/{id} [put]
func (h *PeopleHandler) UpdatePerson(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body personRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	person, err := services.UpdatePerson(c.UserContext(), h.DB, id, body.Version.Uint64(), body.PersonInput)
	if err != nil {
		return err
	}
	return c.JSON(person)
}

// DeletePerson handles DELETE /api/people/:id
// @Summary Delete a person
// @Description Fails with 409 while assets or license assignments refer to the person
// @Tags People
// @Produce json
// @Param id path int true "Person ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /people/{id} [delete]
func (h *PeopleHandler) DeletePerson(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeletePerson(c.UserContext(), h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Person deleted", 1)
}
