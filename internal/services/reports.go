// reports.go
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
	"context"

	"github.com/localnerve/itassetdb/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Default report windows, in days
const (
	DefaultWarrantyWindow = 90
	DefaultLicenseWindow  = 30
)

// WarrantyExpiring returns assets whose warranty ends between today and
// today+days inclusive, soonest first.
func WarrantyExpiring(ctx context.Context, db *gorm.DB, days int) ([]models.Asset, error) {
	if days < 0 || days > 3650 {
		return nil, validationError("days must be between 0 and 3650")
	}
	today := models.DateOf(Now())

	var assets []models.Asset
	err := db.WithContext(ctx).Clauses(hints.CommentBefore("select", "report_warranty")).
		Preload("Person").Preload("Location").
		Where("warranty_expiry >= ? AND warranty_expiry < ?", today, today.AddDate(0, 0, days+1)).
		Order("warranty_expiry").Order("id").
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// LicensesExpiring returns licenses expiring between today and today+days inclusive, soonest first
func LicensesExpiring(ctx context.Context, db *gorm.DB, days int) ([]models.SoftwareLicense, error) {
	if days < 0 || days > 3650 {
		return nil, validationError("days must be between 0 and 3650")
	}
	today := models.DateOf(Now())

	var licenses []models.SoftwareLicense
	err := db.WithContext(ctx).Clauses(hints.CommentBefore("select", "report_licenses")).
		Preload("SoftwareProduct").
		Where("expiry_date >= ? AND expiry_date < ?", today, today.AddDate(0, 0, days+1)).
		Order("expiry_date").Order("id").
		Find(&licenses).Error
	if err != nil {
		return nil, err
	}
	return licenses, nil
}
