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

package services

import (
	"context"
	"strings"

	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProductInput carries the editable product fields
type ProductInput struct {
	Name        string `json:"name"`
	Vendor      string `json:"vendor"`
	Version     string `json:"version"`
	Publisher   string `json:"publisher"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ProductDetail is a product with its licenses, assignment history and rollup
type ProductDetail struct {
	models.SoftwareProduct
	Summary ProductSummary `json:"summary"`
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Version = strings.TrimSpace(in.Version)
	if in.Name == "" {
		return validationError("name is required")
	}
	if len(in.Name) > 100 || len(in.Version) > 50 || len(in.Vendor) > 100 || len(in.Publisher) > 100 ||
		len(in.Category) > 50 || len(in.Description) > 500 {
		return validationError("field too long")
	}
	return nil
}

func checkProductUnique(tx *gorm.DB, name, version string, exceptID uint) error {
	var count int64
	err := tx.Model(&models.SoftwareProduct{}).
		Where("name = ? AND version = ? AND id <> ?", name, version, exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return validationError("%s %s %s", name, version, ErrDuplicate)
	}
	return nil
}

// GetProduct returns the product with licenses and every assignment, active or retained
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*ProductDetail, error) {
	var product models.SoftwareProduct
	err := db.WithContext(ctx).
		Preload("Licenses").
		Preload("Assignments").Preload("Assignments.Person").Preload("Assignments.Asset").
		First(&product, id).Error
	if err != nil {
		return nil, findErr(err, "product", id)
	}

	// the rollup counts active assignments only
	seatView := product
	seatView.Assignments = nil
	for _, a := range product.Assignments {
		if a.IsActive {
			seatView.Assignments = append(seatView.Assignments, a)
		}
	}

	return &ProductDetail{SoftwareProduct: product, Summary: Summarize(seatView, Now())}, nil
}

// CreateProduct inserts a product; name and version are unique together
func CreateProduct(ctx context.Context, db *gorm.DB, in ProductInput) (*models.SoftwareProduct, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	product := models.SoftwareProduct{
		Name:        in.Name,
		Vendor:      in.Vendor,
		Version:     in.Version,
		Publisher:   in.Publisher,
		Category:    in.Category,
		Description: in.Description,
	}
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if err := checkProductUnique(tx, in.Name, in.Version, 0); err != nil {
			return err
		}
		return tx.Create(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces the editable fields when rowVersion is current
func UpdateProduct(ctx context.Context, db *gorm.DB, id uint, rowVersion uint64, in ProductInput) (*models.SoftwareProduct, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var product models.SoftwareProduct
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return findErr(err, "product", id)
		}
		if err := checkProductUnique(tx, in.Name, in.Version, id); err != nil {
			return err
		}
		err := updateVersioned(tx, &product, "row_version", rowVersion, map[string]interface{}{
			"name":        in.Name,
			"vendor":      in.Vendor,
			"version":     in.Version,
			"publisher":   in.Publisher,
			"category":    in.Category,
			"description": in.Description,
		})
		if err != nil {
			return err
		}
		return tx.First(&product, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product with no active assignment. Its licenses and
// retained inactive assignments are removed with it, each one audited.
func DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	removed := struct{ licenses, assignments int }{}

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		product, err := lockProduct(tx, id)
		if err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.LicenseAssignment{}).
			Where("software_product_id = ? AND is_active = ?", id, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return conflict("%s has %d active license assignments; deactivate them first", product.Name, active)
		}

		var retained []models.LicenseAssignment
		if err := tx.Where("software_product_id = ?", id).Find(&retained).Error; err != nil {
			return err
		}
		for i := range retained {
			if err := tx.Delete(&retained[i]).Error; err != nil {
				return err
			}
		}

		var licenses []models.SoftwareLicense
		if err := tx.Where("software_product_id = ?", id).Find(&licenses).Error; err != nil {
			return err
		}
		for i := range licenses {
			if err := tx.Delete(&licenses[i]).Error; err != nil {
				return err
			}
		}

		removed.licenses, removed.assignments = len(licenses), len(retained)
		return tx.Delete(product).Error
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"product":     id,
		"licenses":    removed.licenses,
		"assignments": removed.assignments,
		"user":        audit.ActorFrom(ctx),
	}).Info("Software product deleted")
	return nil
}
