// licenses.go
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
	"strings"
	"time"

	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LicenseInput carries the editable license fields
type LicenseInput struct {
	SoftwareProductID uint
	LicenseKey        string
	PurchaseDate      *time.Time
	ExpiryDate        *time.Time
	SeatsPurchased    *int
	SeatsAssigned     *int
	Cost              decimal.NullDecimal
	Vendor            string
	Notes             string
}

func (in *LicenseInput) normalize() error {
	in.LicenseKey = strings.TrimSpace(in.LicenseKey)
	if in.SoftwareProductID == 0 {
		return validationError("softwareProductId is required")
	}
	if in.SeatsPurchased != nil && *in.SeatsPurchased < 0 {
		return validationError("seatsPurchased cannot be negative")
	}
	if in.SeatsAssigned != nil && *in.SeatsAssigned < 0 {
		return validationError("seatsAssigned cannot be negative")
	}
	if in.Cost.Valid && in.Cost.Decimal.IsNegative() {
		return validationError("cost cannot be negative")
	}
	if len(in.LicenseKey) > 200 || len(in.Vendor) > 100 || len(in.Notes) > 500 {
		return validationError("field too long")
	}
	if in.PurchaseDate != nil && in.ExpiryDate != nil && in.ExpiryDate.Before(*in.PurchaseDate) {
		return validationError("expiryDate is before purchaseDate")
	}
	return nil
}

// ListLicenses returns every license with its product, ordered by product name
func ListLicenses(ctx context.Context, db *gorm.DB) ([]models.SoftwareLicense, error) {
	var licenses []models.SoftwareLicense
	err := db.WithContext(ctx).
		Joins("JOIN software_products ON software_products.id = software_licenses.software_product_id").
		Select("software_licenses.*").
		Preload("SoftwareProduct").
		Order("software_products.name").Order("software_licenses.id").
		Find(&licenses).Error
	if err != nil {
		return nil, err
	}
	return licenses, nil
}

// GetLicense returns one license with its product
func GetLicense(ctx context.Context, db *gorm.DB, id uint) (*models.SoftwareLicense, error) {
	var license models.SoftwareLicense
	if err := db.WithContext(ctx).Preload("SoftwareProduct").First(&license, id).Error; err != nil {
		return nil, findErr(err, "license", id)
	}
	return &license, nil
}

// CreateLicense adds a license to an existing product
func CreateLicense(ctx context.Context, db *gorm.DB, in LicenseInput) (*models.SoftwareLicense, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	license := models.SoftwareLicense{
		SoftwareProductID: in.SoftwareProductID,
		LicenseKey:        in.LicenseKey,
		PurchaseDate:      in.PurchaseDate,
		ExpiryDate:        in.ExpiryDate,
		SeatsPurchased:    in.SeatsPurchased,
		SeatsAssigned:     in.SeatsAssigned,
		Cost:              in.Cost,
		Vendor:            in.Vendor,
		Notes:             in.Notes,
	}
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if _, err := lockProduct(tx, in.SoftwareProductID); err != nil {
			return err
		}
		return tx.Create(&license).Error
	})
	if err != nil {
		return nil, err
	}
	return GetLicense(ctx, db, license.ID)
}

// UpdateLicense replaces the editable fields when version is current.
// The owning product cannot change.
func UpdateLicense(ctx context.Context, db *gorm.DB, id uint, version uint64, in LicenseInput) (*models.SoftwareLicense, error) {
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var license models.SoftwareLicense
		if err := tx.First(&license, id).Error; err != nil {
			return findErr(err, "license", id)
		}
		if in.SoftwareProductID == 0 {
			in.SoftwareProductID = license.SoftwareProductID
		}
		if in.SoftwareProductID != license.SoftwareProductID {
			return validationError("a license cannot move to another product")
		}
		if err := in.normalize(); err != nil {
			return err
		}

		return updateVersioned(tx, &license, "version", version, map[string]interface{}{
			"license_key":     in.LicenseKey,
			"purchase_date":   in.PurchaseDate,
			"expiry_date":     in.ExpiryDate,
			"seats_purchased": in.SeatsPurchased,
			"seats_assigned":  in.SeatsAssigned,
			"cost":            in.Cost,
			"vendor":          in.Vendor,
			"notes":           in.Notes,
		})
	})
	if err != nil {
		return nil, err
	}
	return GetLicense(ctx, db, id)
}

// DeleteLicense removes a license. Removing a product's last license also
// deactivates all of its assignments, since no seats remain.
func DeleteLicense(ctx context.Context, db *gorm.DB, id uint) error {
	return audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var license models.SoftwareLicense
		if err := tx.First(&license, id).Error; err != nil {
			return findErr(err, "license", id)
		}
		if _, err := lockProduct(tx, license.SoftwareProductID); err != nil {
			return err
		}
		if err := tx.Delete(&license).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.SoftwareLicense{}).
			Where("software_product_id = ?", license.SoftwareProductID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			_, err := deactivateAssignments(tx, license.SoftwareProductID)
			return err
		}
		return nil
	})
}
