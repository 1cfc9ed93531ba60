// assignments.go
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
	"errors"

	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/metrics"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignInput names the seat to assign. AssetID scopes the assignment to a
// device; without it the product has a single unscoped active assignment.
type AssignInput struct {
	ProductID uint
	PersonID  *uint
	AssetID   *uint
}

// lockProduct reads the product row under an update lock. sqlite ignores the
// locking clause and serializes writers on its own.
func lockProduct(tx *gorm.DB, productID uint) (*models.SoftwareProduct, error) {
	var product models.SoftwareProduct
	var query *gorm.DB
	if tx.Dialector.Name() == "sqlserver" {
		query = tx.Table("software_products WITH (UPDLOCK, ROWLOCK)")
	} else {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&product, productID).Error; err != nil {
		return nil, findErr(err, "product", productID)
	}
	return &product, nil
}

func scopeAsset(query *gorm.DB, assetID *uint) *gorm.DB {
	if assetID == nil {
		return query.Where("asset_id IS NULL")
	}
	return query.Where("asset_id = ?", *assetID)
}

func mustExist(tx *gorm.DB, model interface{}, entity string, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound(entity, id)
	}
	return nil
}

// AssignLicense makes personID the holder of the product's seat in the given
// scope. An active assignment in that scope has its person replaced in place,
// so a scope never holds two active rows.
func AssignLicense(ctx context.Context, db *gorm.DB, in AssignInput) (*models.LicenseAssignment, error) {
	if in.ProductID == 0 {
		return nil, ErrInvalidAssignment
	}
	if in.PersonID == nil && in.AssetID == nil {
		return nil, validationError("a person or an asset is required")
	}

	var result models.LicenseAssignment
	var operation string

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		operation = "assign"
		if _, err := lockProduct(tx, in.ProductID); err != nil {
			return err
		}
		if in.PersonID != nil {
			if err := mustExist(tx, &models.Person{}, "person", *in.PersonID); err != nil {
				return err
			}
		}
		if in.AssetID != nil {
			if err := mustExist(tx, &models.Asset{}, "asset", *in.AssetID); err != nil {
				return err
			}
		}

		var current models.LicenseAssignment
		err := scopeAsset(tx.Where("software_product_id = ? AND is_active = ?", in.ProductID, true), in.AssetID).
			First(&current).Error
		switch {
		case err == nil:
			operation = "reassign"
			if err := tx.Model(&current).Updates(map[string]interface{}{"person_id": in.PersonID}).Error; err != nil {
				return err
			}
			result = current
			result.PersonID = in.PersonID
			return nil

		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		// the (product, asset) pair is unique, so a retained row is reused
		if in.AssetID != nil {
			var retained models.LicenseAssignment
			err := tx.Where("software_product_id = ? AND asset_id = ? AND is_active = ?", in.ProductID, *in.AssetID, false).
				First(&retained).Error
			if err == nil {
				operation = "reactivate"
				assignedOn := Now().UTC()
				err := tx.Model(&retained).Updates(map[string]interface{}{
					"person_id":   in.PersonID,
					"is_active":   true,
					"assigned_on": assignedOn,
				}).Error
				if err != nil {
					return err
				}
				result = retained
				result.PersonID = in.PersonID
				result.IsActive = true
				result.AssignedOn = assignedOn
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		result = models.LicenseAssignment{
			SoftwareProductID: in.ProductID,
			PersonID:          in.PersonID,
			AssetID:           in.AssetID,
			AssignedOn:        Now().UTC(),
			IsActive:          true,
		}
		return tx.Create(&result).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.LicenseAssignments.WithLabelValues(operation).Inc()
	logrus.WithFields(logrus.Fields{
		"product":    in.ProductID,
		"assignment": result.ID,
		"operation":  operation,
		"user":       audit.ActorFrom(ctx),
	}).Info("License assigned")

	return &result, nil
}

// UnassignLicense deactivates the active assignment in the given scope.
// The row is kept; no license seat counter changes.
func UnassignLicense(ctx context.Context, db *gorm.DB, productID uint, assetID *uint) error {
	if productID == 0 {
		return ErrInvalidAssignment
	}

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if _, err := lockProduct(tx, productID); err != nil {
			return err
		}

		var current models.LicenseAssignment
		err := scopeAsset(tx.Where("software_product_id = ? AND is_active = ?", productID, true), assetID).
			First(&current).Error
		if err != nil {
			return findErr(err, "active assignment for product", productID)
		}
		return tx.Model(&current).Update("is_active", false).Error
	})
	if err != nil {
		return err
	}

	metrics.LicenseAssignments.WithLabelValues("unassign").Inc()
	return nil
}

// DeactivateAllForProduct deactivates every active assignment of the product
// and returns how many rows changed.
func DeactivateAllForProduct(ctx context.Context, db *gorm.DB, productID uint) (int, error) {
	deactivated := 0
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if _, err := lockProduct(tx, productID); err != nil {
			return err
		}
		n, err := deactivateAssignments(tx, productID)
		deactivated = n
		return err
	})
	if err != nil {
		return 0, err
	}

	metrics.LicenseAssignments.WithLabelValues("deactivate_all").Add(float64(deactivated))
	return deactivated, nil
}

// deactivateAssignments updates rows one at a time so each gets its own change log entry
func deactivateAssignments(tx *gorm.DB, productID uint) (int, error) {
	var active []models.LicenseAssignment
	if err := tx.Where("software_product_id = ? AND is_active = ?", productID, true).Find(&active).Error; err != nil {
		return 0, err
	}
	for i := range active {
		if err := tx.Model(&active[i]).Update("is_active", false).Error; err != nil {
			return 0, err
		}
	}
	return len(active), nil
}

// ListAssignments returns the product's assignments with person and asset, newest first
func ListAssignments(ctx context.Context, db *gorm.DB, productID uint, activeOnly bool) ([]models.LicenseAssignment, error) {
	if err := mustExist(db.WithContext(ctx), &models.SoftwareProduct{}, "product", productID); err != nil {
		return nil, err
	}

	query := db.WithContext(ctx).Preload("Person").Preload("Asset").
		Where("software_product_id = ?", productID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var assignments []models.LicenseAssignment
	if err := query.Order("assigned_on DESC").Order("id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
