// asset.go
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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset status values. Status is free text; these are the values the service writes and counts.
const (
	AssetStatusActive   = "Active"
	AssetStatusInRepair = "InRepair"
	AssetStatusRetired  = "Retired"
)

// Asset is a tracked piece of hardware
type Asset struct {
	ID             uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	AssetTag       string              `gorm:"size:50;index" json:"assetTag"`
	Name           string              `gorm:"size:100;not null" json:"name"`
	Brand          string              `gorm:"size:100" json:"brand"`
	Model          string              `gorm:"size:100" json:"model"`
	SerialNumber   *string             `gorm:"size:50;uniqueIndex" json:"serialNumber"`
	Category       string              `gorm:"size:50" json:"category"`
	PurchaseCost   decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"purchaseCost"`
	PurchaseDate   *time.Time          `json:"purchaseDate"`
	WarrantyExpiry *time.Time          `gorm:"index" json:"warrantyExpiry"`
	Status         string              `gorm:"size:20;index" json:"status"`
	Notes          string              `gorm:"size:500" json:"notes"`
	LocationID     *uint               `gorm:"index" json:"locationId"`
	Location       *Location           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"location,omitempty"`
	PersonID       *uint               `gorm:"index" json:"personId"`
	Person         *Person             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"person,omitempty"`
	Version        uint64              `gorm:"not null;default:0" json:"version"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// TableName overrides the table name for Asset
func (Asset) TableName() string {
	return "assets"
}

// WarrantyExpiresWithin reports whether the warranty ends on or before today+days.
// An asset without a warranty date never qualifies.
func (a Asset) WarrantyExpiresWithin(today time.Time, days int) bool {
	if a.WarrantyExpiry == nil {
		return false
	}
	return !DateOf(*a.WarrantyExpiry).After(DateOf(today).AddDate(0, 0, days))
}
