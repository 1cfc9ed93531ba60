// products.go
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
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/services"
	"github.com/localnerve/itassetdb/internal/types"
	"github.com/localnerve/itassetdb/internal/utils"
	"gorm.io/gorm"
)

// ProductHandler handles software product and license assignment routes
type ProductHandler struct {
	DB *gorm.DB
}

type productRequest struct {
	services.ProductInput
	RowVersion types.FlexUint64 `json:"rowVersion"`
}

type assignRequest struct {
	PersonID *types.FlexUint64 `json:"personId" swaggertype:"integer"`
	AssetID  *types.FlexUint64 `json:"assetId" swaggertype:"integer"`
}

// ListProducts handles GET /api/products
// @Summary List software products with seat rollups
// @Tags Products
// @Produce json
// @Param sort query string false "name, expiry or available"
// @Success 200 {array} services.ProductSummary
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	summaries, err := services.ListProductSummaries(c.UserContext(), h.DB, c.Query("sort", services.SortByName))
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}

// GetProduct handles GET /api/products/:id
// @Summary Get a product with licenses and assignments
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} services.ProductDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := services.GetProduct(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// GetProductSummary handles GET /api/products/:id/summary
// @Summary Get the seat and expiry rollup of a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} services.ProductSummary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id}/summary [get]
func (h *ProductHandler) GetProductSummary(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	summary, err := services.GetProductSummary(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// CreateProduct handles POST /api/products
// @Summary Create a software product
// @Tags Products
// @Accept json
// @Produce json
// @Param body body services.ProductInput true "Product"
// @Success 201 {object} models.SoftwareProduct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var body services.ProductInput
	if err := parseBody(c, &body); err != nil {
		return err
	}
	product, err := services.CreateProduct(c.UserContext(), h.DB, body)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, product, fiber.StatusCreated)
}

// UpdateProduct handles PUT /api/products/:id
// @Summary Update a software product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body productRequest true "Product with current rowVersion"
// @Success 200 {object} models.SoftwareProduct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body productRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	product, err := services.UpdateProduct(c.UserContext(), h.DB, id, body.RowVersion.Uint64(), body.ProductInput)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /api/products/:id
// @Summary Delete a software product
// @Description Fails with 409 while any assignment of the product is active
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteProduct(c.UserContext(), h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Product deleted", 1)
}

// ListAssignments handles GET /api/products/:id/assignments
// @Summary List license assignments of a product
// @Tags Assignments
// @Produce json
// @Param id path int true "Product ID"
// @Param active query bool false "Only active assignments"
// @Success 200 {array} models.LicenseAssignment
// @Security BearerAuth
// @Router /products/{id}/assignments [get]
func (h *ProductHandler) ListAssignments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		if activeOnly, err = strconv.ParseBool(raw); err != nil {
			return types.BadRequest("Invalid query parameter active", errInput)
		}
	}
	assignments, err := services.ListAssignments(c.UserContext(), h.DB, id, activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(assignments)
}

// Assign handles POST /api/products/:id/assign
// @Summary Assign a license seat
// @Description Replaces the person on an existing active assignment in the same scope
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body assignRequest true "Person and optional asset"
// @Success 200 {object} models.LicenseAssignment
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id}/assign [post]
func (h *ProductHandler) Assign(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body assignRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}
	assignment, err := services.AssignLicense(c.UserContext(), h.DB, services.AssignInput{
		ProductID: id,
		PersonID:  types.IDPtr(body.PersonID),
		AssetID:   types.IDPtr(body.AssetID),
	})
	if err != nil {
		return err
	}
	return c.JSON(assignment)
}

// Unassign handles POST /api/products/:id/unassign
// @Summary Deactivate a license assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body assignRequest false "Optional asset scope"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id}/unassign [post]
func (h *ProductHandler) Unassign(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var body assignRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &body); err != nil {
			return err
		}
	}
	if err := services.UnassignLicense(c.UserContext(), h.DB, id, types.IDPtr(body.AssetID)); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "License unassigned", 1)
}

// DeactivateAssignments handles POST /api/products/:id/deactivate-assignments
// @Summary Deactivate every active assignment of a product
// @Tags Assignments
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /products/{id}/deactivate-assignments [post]
func (h *ProductHandler) DeactivateAssignments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	n, err := services.DeactivateAllForProduct(c.UserContext(), h.DB, id)
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Assignments deactivated", int64(n))
}
