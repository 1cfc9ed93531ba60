// assets.go
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

// AssetInput carries the editable asset fields. The New* fields create a
// person or location in the same unit of work when no id is given.
type AssetInput struct {
	AssetTag       string
	Name           string
	Brand          string
	Model          string
	SerialNumber   *string
	Category       string
	PurchaseCost   decimal.NullDecimal
	PurchaseDate   *time.Time
	WarrantyExpiry *time.Time
	Status         string
	Notes          string
	LocationID     *uint
	PersonID       *uint

	NewPersonName        string
	NewPersonEmail       string
	NewLocationBuilding  string
	NewLocationRoom      string
	NewLocationLabNumber string
}

// AssetQuery filters and pages the asset list
type AssetQuery struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
}

var assetSortColumns = map[string]string{
	"tag":    "assets.asset_tag",
	"model":  "assets.model",
	"status": "assets.status",
}

func (in *AssetInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.AssetTag = strings.TrimSpace(in.AssetTag)
	in.Status = strings.TrimSpace(in.Status)
	if in.SerialNumber != nil {
		serial := strings.TrimSpace(*in.SerialNumber)
		if serial == "" {
			in.SerialNumber = nil
		} else {
			in.SerialNumber = &serial
		}
	}

	if in.Name == "" {
		return validationError("name is required")
	}
	if len(in.Name) > 100 || len(in.AssetTag) > 50 || len(in.Status) > 20 || len(in.Notes) > 500 {
		return validationError("field too long")
	}
	if in.SerialNumber != nil && len(*in.SerialNumber) > 50 {
		return validationError("serial number too long")
	}
	if in.PurchaseCost.Valid && in.PurchaseCost.Decimal.IsNegative() {
		return validationError("purchase cost cannot be negative")
	}
	if in.Status == "" {
		in.Status = models.AssetStatusActive
	}
	return nil
}

// likeEscaper makes search text match literally under ESCAPE '!'.
// sqlserver also treats brackets as pattern characters.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListAssets searches tag, model, serial, status and person name case-insensitively
func ListAssets(ctx context.Context, db *gorm.DB, q AssetQuery) (*Page[models.Asset], error) {
	page, pageSize := normalizePage(q.Page, q.PageSize, 10)

	filtered := func() *gorm.DB {
		query := db.WithContext(ctx).Model(&models.Asset{}).
			Joins("LEFT JOIN people ON people.id = assets.person_id")
		term := strings.ToLower(strings.TrimSpace(q.Search))
		if term == "" {
			return query
		}

		like := "%" + escapeLike(term) + "%"
		cond := db.Where("LOWER(assets.asset_tag) LIKE ? ESCAPE '!'", like).
			Or("LOWER(assets.model) LIKE ? ESCAPE '!'", like).
			Or("LOWER(assets.serial_number) LIKE ? ESCAPE '!'", like).
			Or("LOWER(assets.status) LIKE ? ESCAPE '!'", like).
			Or("LOWER(people.first_name) LIKE ? ESCAPE '!'", like).
			Or("LOWER(people.last_name) LIKE ? ESCAPE '!'", like)
		if first, last := models.SplitFullName(term); last != "" {
			cond = cond.Or("LOWER(people.first_name) LIKE ? ESCAPE '!' AND LOWER(people.last_name) LIKE ? ESCAPE '!'",
				escapeLike(first)+"%", escapeLike(last)+"%")
		}
		return query.Where(cond)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := assetSortColumns[strings.ToLower(q.Sort)]
	if !ok {
		column = assetSortColumns["tag"]
	}

	var assets []models.Asset
	err := filtered().Select("assets.*").
		Preload("Person").Preload("Location").
		Order(column).Order("assets.id").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}

	return &Page[models.Asset]{Items: assets, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetAsset returns an asset with its person and location
func GetAsset(ctx context.Context, db *gorm.DB, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := db.WithContext(ctx).Preload("Person").Preload("Location").First(&asset, id).Error; err != nil {
		return nil, findErr(err, "asset", id)
	}
	return &asset, nil
}

// resolveOwners creates the free-typed person or location when requested and
// checks that referenced ids exist. It fills in the ids of created rows, so
// callers pass a copy that does not outlive the transaction attempt.
func resolveOwners(tx *gorm.DB, in *AssetInput) error {
	if in.PersonID == nil && strings.TrimSpace(in.NewPersonName) != "" {
		first, last := models.SplitFullName(in.NewPersonName)
		person := models.Person{FirstName: first, LastName: last, Email: strings.TrimSpace(in.NewPersonEmail)}
		if err := tx.Create(&person).Error; err != nil {
			return err
		}
		in.PersonID = &person.ID
	} else if in.PersonID != nil {
		if err := mustExist(tx, &models.Person{}, "person", *in.PersonID); err != nil {
			return validationError("person %d does not exist", *in.PersonID)
		}
	}

	if in.LocationID == nil && strings.TrimSpace(in.NewLocationBuilding) != "" {
		location := models.Location{
			Building:  strings.TrimSpace(in.NewLocationBuilding),
			Room:      strings.TrimSpace(in.NewLocationRoom),
			LabNumber: strings.TrimSpace(in.NewLocationLabNumber),
		}
		if err := tx.Create(&location).Error; err != nil {
			return err
		}
		in.LocationID = &location.ID
	} else if in.LocationID != nil {
		if err := mustExist(tx, &models.Location{}, "location", *in.LocationID); err != nil {
			return validationError("location %d does not exist", *in.LocationID)
		}
	}
	return nil
}

func checkSerialUnique(tx *gorm.DB, serial *string, exceptID uint) error {
	if serial == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Asset{}).Where("serial_number = ? AND id <> ?", *serial, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return validationError("serial number %s %s", *serial, ErrDuplicate)
	}
	return nil
}

// CreateAsset inserts an asset, creating a free-typed person or location first when given
func CreateAsset(ctx context.Context, db *gorm.DB, in AssetInput) (*models.Asset, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var asset models.Asset
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if err := checkSerialUnique(tx, in.SerialNumber, 0); err != nil {
			return err
		}
		// each attempt resolves owners from the caller's input
		owned := in
		if err := resolveOwners(tx, &owned); err != nil {
			return err
		}

		asset = models.Asset{
			AssetTag:       in.AssetTag,
			Name:           in.Name,
			Brand:          in.Brand,
			Model:          in.Model,
			SerialNumber:   in.SerialNumber,
			Category:       in.Category,
			PurchaseCost:   in.PurchaseCost,
			PurchaseDate:   in.PurchaseDate,
			WarrantyExpiry: in.WarrantyExpiry,
			Status:         in.Status,
			Notes:          in.Notes,
			LocationID:     owned.LocationID,
			PersonID:       owned.PersonID,
		}
		return tx.Create(&asset).Error
	})
	if err != nil {
		return nil, err
	}

	return GetAsset(ctx, db, asset.ID)
}

// UpdateAsset replaces the editable fields when version is current
func UpdateAsset(ctx context.Context, db *gorm.DB, id uint, version uint64, in AssetInput) (*models.Asset, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.First(&asset, id).Error; err != nil {
			return findErr(err, "asset", id)
		}
		if asset.Version != version {
			return ErrConcurrencyConflict
		}
		if err := checkSerialUnique(tx, in.SerialNumber, id); err != nil {
			return err
		}
		owned := in
		if err := resolveOwners(tx, &owned); err != nil {
			return err
		}

		return updateVersioned(tx, &asset, "version", version, map[string]interface{}{
			"asset_tag":       in.AssetTag,
			"name":            in.Name,
			"brand":           in.Brand,
			"model":           in.Model,
			"serial_number":   in.SerialNumber,
			"category":        in.Category,
			"purchase_cost":   in.PurchaseCost,
			"purchase_date":   in.PurchaseDate,
			"warranty_expiry": in.WarrantyExpiry,
			"status":          in.Status,
			"notes":           in.Notes,
			"location_id":     owned.LocationID,
			"person_id":       owned.PersonID,
		})
	})
	if err != nil {
		return nil, err
	}

	return GetAsset(ctx, db, id)
}

// DeleteAsset removes an asset no ticket or license assignment refers to
func DeleteAsset(ctx context.Context, db *gorm.DB, id uint) error {
	return audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.First(&asset, id).Error; err != nil {
			return findErr(err, "asset", id)
		}

		var tickets, assignments int64
		if err := tx.Model(&models.MaintenanceTicket{}).Where("asset_id = ?", id).Count(&tickets).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LicenseAssignment{}).Where("asset_id = ?", id).Count(&assignments).Error; err != nil {
			return err
		}
		if tickets > 0 || assignments > 0 {
			return conflict("asset %d has %d maintenance tickets and %d license assignments", id, tickets, assignments)
		}

		return tx.Delete(&asset).Error
	})
}
