// errors.go
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
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/services"
	"github.com/localnerve/itassetdb/internal/types"
	"github.com/localnerve/itassetdb/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrorHandler converts errors returned by handlers and middleware into the
// standard error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var customErr *types.CustomError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &customErr):
		return utils.ErrorResponse(c, customErr.Message, customErr.Code, customErr.Type)
	case errors.As(err, &fiberErr):
		return utils.ErrorResponse(c, fiberErr.Message, fiberErr.Code, "http")
	case errors.Is(err, services.ErrConcurrencyConflict):
		return utils.VersionErrorResponse(c)
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidAssignment):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "validation")
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrReferentialConflict):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "conflict")
	case errors.Is(err, services.ErrDuplicate):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "duplicate")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, "Invalid credentials", fiber.StatusUnauthorized, "authentication")
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"url":    c.OriginalURL(),
	}).Error("Unhandled request error")
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, "unknown")
}

// NotFound is the catch-all route handler
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}
