// error.go
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

package types

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// CustomError is an error with an HTTP status and a dotted error type
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unauthorized is returned when no caller identity could be resolved
func Unauthorized(message, errorType string) *CustomError {
	return &CustomError{Code: fiber.StatusUnauthorized, Message: message, Type: errorType}
}

// Forbidden is returned when the caller is known but not permitted
func Forbidden(message, errorType string) *CustomError {
	return &CustomError{Code: fiber.StatusForbidden, Message: message, Type: errorType}
}

// BadRequest is returned for unparseable input
func BadRequest(message, errorType string) *CustomError {
	return &CustomError{Code: fiber.StatusBadRequest, Message: message, Type: errorType}
}
