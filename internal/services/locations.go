// locations.go
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
	"gorm.io/gorm"
)

// LocationInput carries the editable location fields
type LocationInput struct {
	Building    string `json:"building"`
	Room        string `json:"room"`
	Floor       string `json:"floor"`
	LabNumber   string `json:"labNumber"`
	Department  string `json:"department"`
	Description string `json:"description"`
}

func (in *LocationInput) normalize() error {
	in.Building = strings.TrimSpace(in.Building)
	in.Room = strings.TrimSpace(in.Room)
	in.Floor = strings.TrimSpace(in.Floor)
	in.LabNumber = strings.TrimSpace(in.LabNumber)
	in.Department = strings.TrimSpace(in.Department)
	if in.Building == "" {
		return validationError("building is required")
	}
	if len(in.Building) > 100 || len(in.Room) > 50 || len(in.Floor) > 20 || len(in.LabNumber) > 20 ||
		len(in.Department) > 100 || len(in.Description) > 500 {
		return validationError("field too long")
	}
	return nil
}

func (in LocationInput) changes() map[string]interface{} {
	return map[string]interface{}{
		"building":    in.Building,
		"room":        in.Room,
		"floor":       in.Floor,
		"lab_number":  in.LabNumber,
		"department":  in.Department,
		"description": in.Description,
	}
}

// ListLocations orders by building, then room
func ListLocations(ctx context.Context, db *gorm.DB) ([]models.Location, error) {
	var locations []models.Location
	if err := db.WithContext(ctx).Order("building").Order("room").Order("id").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// GetLocation returns one location
func GetLocation(ctx context.Context, db *gorm.DB, id uint) (*models.Location, error) {
	var location models.Location
	if err := db.WithContext(ctx).First(&location, id).Error; err != nil {
		return nil, findErr(err, "location", id)
	}
	return &location, nil
}

// CreateLocation inserts a location
func CreateLocation(ctx context.Context, db *gorm.DB, in LocationInput) (*models.Location, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	location := models.Location{
		Building:    in.Building,
		Room:        in.Room,
		Floor:       in.Floor,
		LabNumber:   in.LabNumber,
		Department:  in.Department,
		Description: in.Description,
	}
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&location).Error
	})
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// UpdateLocation replaces the editable fields when version is current
func UpdateLocation(ctx context.Context, db *gorm.DB, id uint, version uint64, in LocationInput) (*models.Location, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.First(&location, id).Error; err != nil {
			return findErr(err, "location", id)
		}
		return updateVersioned(tx, &location, "version", version, in.changes())
	})
	if err != nil {
		return nil, err
	}
	return GetLocation(ctx, db, id)
}

// DeleteLocation removes a location no asset refers to
func DeleteLocation(ctx context.Context, db *gorm.DB, id uint) error {
	return audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.First(&location, id).Error; err != nil {
			return findErr(err, "location", id)
		}

		var assets int64
		if err := tx.Model(&models.Asset{}).Where("location_id = ?", id).Count(&assets).Error; err != nil {
			return err
		}
		if assets > 0 {
			return conflict("%s has %d assets", location.DisplayName(), assets)
		}
		return tx.Delete(&location).Error
	})
}
