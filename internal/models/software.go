// software.go
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

// ExpiringSoonDays is the window in which a license counts as expiring soon
const ExpiringSoonDays = 30

// SoftwareProduct is a licensable product. Seat and expiry figures are
// derived from its license rows and are never stored on the product.
type SoftwareProduct struct {
	ID          uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string              `gorm:"size:100;not null;uniqueIndex:ux_software_products_name_version" json:"name"`
	Vendor      string              `gorm:"size:100" json:"vendor"`
	Version     string              `gorm:"size:50;uniqueIndex:ux_software_products_name_version" json:"version"`
	Publisher   string              `gorm:"size:100" json:"publisher"`
	Category    string              `gorm:"size:50" json:"category"`
	Description string              `gorm:"size:500" json:"description"`
	RowVersion  uint64              `gorm:"not null;default:0" json:"rowVersion"`
	Licenses    []SoftwareLicense   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"licenses,omitempty"`
	Assignments []LicenseAssignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"assignments,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// TableName overrides the table name for SoftwareProduct
func (SoftwareProduct) TableName() string {
	return "software_products"
}

// SoftwareLicense is one purchase of seats for a product
type SoftwareLicense struct {
	ID                uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	SoftwareProductID uint                `gorm:"not null;index" json:"softwareProductId"`
	SoftwareProduct   *SoftwareProduct    `json:"softwareProduct,omitempty"`
	LicenseKey        string              `gorm:"size:200" json:"licenseKey"`
	PurchaseDate      *time.Time          `json:"purchaseDate"`
	ExpiryDate        *time.Time          `gorm:"index" json:"expiryDate"`
	SeatsPurchased    *int                `json:"seatsPurchased"`
	SeatsAssigned     *int                `json:"seatsAssigned"`
	Cost              decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"cost"`
	Vendor            string              `gorm:"size:100" json:"vendor"`
	Notes             string              `gorm:"size:500" json:"notes"`
	Version           uint64              `gorm:"not null;default:0" json:"version"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// TableName overrides the table name for SoftwareLicense
func (SoftwareLicense) TableName() string {
	return "software_licenses"
}

// SeatsAvailable is purchased minus assigned, nulls as zero. It is not clamped,
// so an over-assigned license reports a negative value.
func (l SoftwareLicense) SeatsAvailable() int {
	return IntValue(l.SeatsPurchased) - IntValue(l.SeatsAssigned)
}

// IsExpired compares by calendar date
func (l SoftwareLicense) IsExpired(today time.Time) bool {
	return l.ExpiryDate != nil && DateOf(*l.ExpiryDate).Before(DateOf(today))
}

// IsExpiringSoon is true for any expiry on or before today+30, including past dates
func (l SoftwareLicense) IsExpiringSoon(today time.Time) bool {
	return l.ExpiryDate != nil && !DateOf(*l.ExpiryDate).After(DateOf(today).AddDate(0, 0, ExpiringSoonDays))
}

// LicenseAssignment binds a product seat to a person, optionally scoped to an asset.
// Inactive rows are retained as history.
type LicenseAssignment struct {
	ID                uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	SoftwareProductID uint             `gorm:"not null;uniqueIndex:ux_license_assignments_product_asset" json:"softwareProductId"`
	SoftwareProduct   *SoftwareProduct `json:"softwareProduct,omitempty"`
	AssetID           *uint            `gorm:"uniqueIndex:ux_license_assignments_product_asset" json:"assetId"`
	Asset             *Asset           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"asset,omitempty"`
	PersonID          *uint            `gorm:"index" json:"personId"`
	Person            *Person          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"person,omitempty"`
	AssignedOn        time.Time        `gorm:"not null" json:"assignedOn"`
	IsActive          bool             `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// TableName overrides the table name for LicenseAssignment
func (LicenseAssignment) TableName() string {
	return "license_assignments"
}

// IntValue reads a nullable count as zero when absent
func IntValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// DateOf truncates a timestamp to its calendar date in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
