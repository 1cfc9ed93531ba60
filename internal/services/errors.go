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

package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrValidation marks input that fails a required field or range rule
	ErrValidation = errors.New("validation failed")

	// ErrConcurrencyConflict marks a stale row version
	ErrConcurrencyConflict = errors.New("E_VERSION")

	// ErrReferentialConflict marks a delete blocked by dependent rows
	ErrReferentialConflict = errors.New("referenced by dependent records")

	// ErrNotFound marks a missing entity
	ErrNotFound = errors.New("not found")

	// ErrInvalidAssignment marks an assignment request without a product
	ErrInvalidAssignment = errors.New("invalid assignment")

	// ErrInvalidCredentials marks a failed login or token check
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicate marks a unique value already in use
	ErrDuplicate = errors.New("already exists")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(entity string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrReferentialConflict, fmt.Sprintf(format, args...))
}

// findErr maps gorm.ErrRecordNotFound to ErrNotFound
func findErr(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}
