// migrate.go
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

package database

import (
	"fmt"

	"github.com/localnerve/itassetdb/internal/models"
	"gorm.io/gorm"
)

const activeUnscopedIndex = "ux_license_assignments_active_unscoped"

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.Location{},
		&models.Person{},
		&models.Asset{},
		&models.SoftwareProduct{},
		&models.SoftwareLicense{},
		&models.LicenseAssignment{},
		&models.MaintenanceTicket{},
		&models.ChangeLog{},
		&models.AppUser{},
	}
}

// AutoMigrate runs automatic migrations for all models, then adds the
// partial index allowing one active unscoped assignment per product.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return createActiveAssignmentIndex(db)
}

// createActiveAssignmentIndex is skipped on mysql, which has no partial
// indexes. AssignLicense serializes on the product row lock there.
func createActiveAssignmentIndex(db *gorm.DB) error {
	var predicate string
	switch db.Dialector.Name() {
	case "postgres":
		predicate = "is_active = true AND asset_id IS NULL"
	case "sqlite", "sqlserver":
		predicate = "is_active = 1 AND asset_id IS NULL"
	default:
		return nil
	}

	if db.Migrator().HasIndex(&models.LicenseAssignment{}, activeUnscopedIndex) {
		return nil
	}

	stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON license_assignments (software_product_id) WHERE %s",
		activeUnscopedIndex, predicate)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", activeUnscopedIndex, err)
	}
	return nil
}
