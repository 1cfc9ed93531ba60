// people.go
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

// PersonInput carries the editable person fields
type PersonInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (in *PersonInput) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.FirstName == "" && in.LastName == "" {
		return validationError("first or last name is required")
	}
	if len(in.FirstName) > 50 || len(in.LastName) > 50 || len(in.Email) > 100 || len(in.PhoneNumber) > 20 {
		return validationError("field too long")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return validationError("email %q is not valid", in.Email)
	}
	return nil
}

// ListPeople returns everyone ordered by last then first name
func ListPeople(ctx context.Context, db *gorm.DB) ([]models.Person, error) {
	var people []models.Person
	if err := db.WithContext(ctx).Order("last_name").Order("first_name").Order("id").Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

// GetPerson returns one person
func GetPerson(ctx context.Context, db *gorm.DB, id uint) (*models.Person, error) {
	var person models.Person
	if err := db.WithContext(ctx).First(&person, id).Error; err != nil {
		return nil, findErr(err, "person", id)
	}
	return &person, nil
}

// CreatePeople inserts one or more people in a single unit of work
func CreatePeople(ctx context.Context, db *gorm.DB, inputs []PersonInput) ([]models.Person, error) {
	if len(inputs) == 0 {
		return nil, validationError("at least one person is required")
	}

	people := make([]models.Person, 0, len(inputs))
	for i := range inputs {
		if err := inputs[i].normalize(); err != nil {
			return nil, err
		}
		people = append(people, models.Person{
			FirstName:   inputs[i].FirstName,
			LastName:    inputs[i].LastName,
			Email:       inputs[i].Email,
			PhoneNumber: inputs[i].PhoneNumber,
		})
	}

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		return tx.Create(&people).Error
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

// UpdatePerson replaces the editable fields when version is current
func UpdatePerson(ctx context.Context, db *gorm.DB, id uint, version uint64, in PersonInput) (*models.Person, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var person models.Person
		if err := tx.First(&person, id).Error; err != nil {
			return findErr(err, "person", id)
		}
		return updateVersioned(tx, &person, "version", version, map[string]interface{}{
			"first_name":   in.FirstName,
			"last_name":    in.LastName,
			"email":        in.Email,
			"phone_number": in.PhoneNumber,
		})
	})
	if err != nil {
		return nil, err
	}
	return GetPerson(ctx, db, id)
}

// DeletePerson removes a person no asset or license assignment refers to.
// A blocked delete leaves every row unchanged.
func DeletePerson(ctx context.Context, db *gorm.DB, id uint) error {
	return audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var person models.Person
		if err := tx.First(&person, id).Error; err != nil {
			return findErr(err, "person", id)
		}

		var assets, assignments int64
		if err := tx.Model(&models.Asset{}).Where("person_id = ?", id).Count(&assets).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LicenseAssignment{}).Where("person_id = ?", id).Count(&assignments).Error; err != nil {
			return err
		}
		if assets > 0 || assignments > 0 {
			return conflict("%s has %d assets and %d license assignments; reassign them first",
				person.FullName(), assets, assignments)
		}

		return tx.Delete(&person).Error
	})
}
