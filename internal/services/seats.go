// seats.go
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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/localnerve/itassetdb/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Expiry status labels
const (
	ExpiryNone         = "-"
	ExpiryExpired      = "Expired"
	ExpiryExpiringSoon = "Expiring Soon"
	ExpiryActive       = "Active"
)

// ProductSummary is the seat and expiry rollup of one product
type ProductSummary struct {
	ProductID      uint            `json:"productId"`
	Name           string          `json:"name"`
	Vendor         string          `json:"vendor"`
	Version        string          `json:"version"`
	Category       string          `json:"category"`
	TotalSeats     int             `json:"totalSeats"`
	SeatsAssigned  int             `json:"seatsAssigned"`
	SeatsAvailable int             `json:"seatsAvailable"`
	NextExpiry     *time.Time      `json:"nextExpiry"`
	ExpiryStatus   string          `json:"expiryStatus"`
	SeatStatus     string          `json:"seatStatus"`
	LicenseCount   int             `json:"licenseCount"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	RowVersion     uint64          `json:"rowVersion"`
}

// TotalSeats sums purchased seats over the product's licenses.
// A product without license rows has no seats.
func TotalSeats(p models.SoftwareProduct) int {
	total := 0
	for _, l := range p.Licenses {
		total += models.IntValue(l.SeatsPurchased)
	}
	return total
}

// SeatsAssigned sums the licenses' assigned counters. Without license rows
// it falls back to the number of active assignments. Assignment rows are not
// counted while licenses exist, and AssignLicense never moves the counters.
func SeatsAssigned(p models.SoftwareProduct) int {
	if len(p.Licenses) == 0 {
		active := 0
		for _, a := range p.Assignments {
			if a.IsActive {
				active++
			}
		}
		return active
	}

	assigned := 0
	for _, l := range p.Licenses {
		assigned += models.IntValue(l.SeatsAssigned)
	}
	return assigned
}

// SeatsAvailable is never negative at the product level
func SeatsAvailable(p models.SoftwareProduct) int {
	available := TotalSeats(p) - SeatsAssigned(p)
	if available < 0 {
		return 0
	}
	return available
}

// NextExpiry is the earliest license expiry, nil when no license has one
func NextExpiry(p models.SoftwareProduct) *time.Time {
	var next *time.Time
	for i := range p.Licenses {
		exp := p.Licenses[i].ExpiryDate
		if exp == nil {
			continue
		}
		if next == nil || exp.Before(*next) {
			e := *exp
			next = &e
		}
	}
	return next
}

// ExpiryStatus classifies the next expiry against today by calendar date
func ExpiryStatus(p models.SoftwareProduct, today time.Time) string {
	next := NextExpiry(p)
	if next == nil {
		return ExpiryNone
	}

	expiry := models.DateOf(*next)
	day := models.DateOf(today)
	switch {
	case expiry.Before(day):
		return ExpiryExpired
	case !expiry.After(day.AddDate(0, 0, models.ExpiringSoonDays)):
		return ExpiryExpiringSoon
	}
	return ExpiryActive
}

// TotalCost sums license cost, absent costs as zero
func TotalCost(p models.SoftwareProduct) decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Licenses {
		if l.Cost.Valid {
			total = total.Add(l.Cost.Decimal)
		}
	}
	return total
}

// Summarize computes the rollup of a product loaded with its licenses and assignments
func Summarize(p models.SoftwareProduct, today time.Time) ProductSummary {
	total := TotalSeats(p)
	assigned := SeatsAssigned(p)
	return ProductSummary{
		ProductID:      p.ID,
		Name:           p.Name,
		Vendor:         p.Vendor,
		Version:        p.Version,
		Category:       p.Category,
		TotalSeats:     total,
		SeatsAssigned:  assigned,
		SeatsAvailable: SeatsAvailable(p),
		NextExpiry:     NextExpiry(p),
		ExpiryStatus:   ExpiryStatus(p, today),
		SeatStatus:     fmt.Sprintf("%d/%d seats used", assigned, total),
		LicenseCount:   len(p.Licenses),
		TotalCost:      TotalCost(p),
		RowVersion:     p.RowVersion,
	}
}

// withSeatData preloads what Summarize needs
func withSeatData(db *gorm.DB) *gorm.DB {
	return db.Preload("Licenses").Preload("Assignments", "is_active = ?", true)
}

// GetProductSummary returns the rollup of one product
func GetProductSummary(ctx context.Context, db *gorm.DB, productID uint) (*ProductSummary, error) {
	var product models.SoftwareProduct
	err := withSeatData(db.WithContext(ctx)).First(&product, productID).Error
	if err != nil {
		return nil, findErr(err, "product", productID)
	}
	summary := Summarize(product, Now())
	return &summary, nil
}

// Product list sort keys
const (
	SortByName      = "name"
	SortByExpiry    = "expiry"
	SortByAvailable = "available"
)

// ListProductSummaries returns every product's rollup sorted by the given key.
// Sorting happens after computation so every key orders the same figures the caller sees.
func ListProductSummaries(ctx context.Context, db *gorm.DB, sortKey string) ([]ProductSummary, error) {
	var products []models.SoftwareProduct
	err := withSeatData(db.WithContext(ctx).Clauses(hints.CommentBefore("select", "product_summaries"))).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	today := Now()
	summaries := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, Summarize(p, today))
	}

	SortSummaries(summaries, sortKey)
	return summaries, nil
}

// SortSummaries orders summaries in place, ties broken by name and version
func SortSummaries(summaries []ProductSummary, sortKey string) {
	byName := func(a, b ProductSummary) bool {
		if n := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); n != 0 {
			return n < 0
		}
		return a.Version < b.Version
	}

	var less func(a, b ProductSummary) bool
	switch sortKey {
	case SortByExpiry:
		// no expiry sorts last
		less = func(a, b ProductSummary) bool {
			switch {
			case a.NextExpiry == nil && b.NextExpiry == nil:
				return byName(a, b)
			case a.NextExpiry == nil:
				return false
			case b.NextExpiry == nil:
				return true
			case !a.NextExpiry.Equal(*b.NextExpiry):
				return a.NextExpiry.Before(*b.NextExpiry)
			}
			return byName(a, b)
		}
	case SortByAvailable:
		less = func(a, b ProductSummary) bool {
			if a.SeatsAvailable != b.SeatsAvailable {
				return a.SeatsAvailable < b.SeatsAvailable
			}
			return byName(a, b)
		}
	default:
		less = byName
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return less(summaries[i], summaries[j])
	})
}
