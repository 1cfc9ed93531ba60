// dashboard.go
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

// Dashboard is the landing page rollup
type Dashboard struct {
	TotalAssets          int64 `json:"totalAssets"`
	InRepair             int64 `json:"inRepair"`
	ExpiringWarranty30   int64 `json:"expiringWarranty30"`
	SoftwareProducts     int64 `json:"softwareProducts"`
	LicensesTotalSeats   int   `json:"licensesTotalSeats"`
	LicensesSeatsInUse   int   `json:"licensesSeatsInUse"`
	LicensesExpiringSoon int   `json:"licensesExpiringSoon"`
}

// GetDashboard counts assets and sums seat figures over every product.
// Seat sums use the same per-product rules as the product summaries.
func GetDashboard(ctx context.Context, db *gorm.DB) (*Dashboard, error) {
	tagged := func() *gorm.DB {
		return db.WithContext(ctx).Clauses(hints.CommentBefore("select", "dashboard"))
	}

	var d Dashboard
	today := models.DateOf(Now())

	if err := tagged().Model(&models.Asset{}).Count(&d.TotalAssets).Error; err != nil {
		return nil, err
	}
	if err := tagged().Model(&models.Asset{}).Where("status = ?", models.AssetStatusInRepair).Count(&d.InRepair).Error; err != nil {
		return nil, err
	}
	// before the first day past the window, past warranties included
	cutoff := today.AddDate(0, 0, 31)
	if err := tagged().Model(&models.Asset{}).
		Where("warranty_expiry IS NOT NULL AND warranty_expiry < ?", cutoff).
		Count(&d.ExpiringWarranty30).Error; err != nil {
		return nil, err
	}

	var products []models.SoftwareProduct
	if err := withSeatData(tagged()).Find(&products).Error; err != nil {
		return nil, err
	}
	d.SoftwareProducts = int64(len(products))
	for _, p := range products {
		d.LicensesTotalSeats += TotalSeats(p)
		d.LicensesSeatsInUse += SeatsAssigned(p)
		if ExpiryStatus(p, today) == ExpiryExpiringSoon {
			d.LicensesExpiringSoon++
		}
	}

	return &d, nil
}
