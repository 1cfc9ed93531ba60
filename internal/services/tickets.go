// tickets.go
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

var ticketStatuses = map[string]bool{
	models.TicketStatusOpen:       true,
	models.TicketStatusInProgress: true,
	models.TicketStatusClosed:     true,
}

// ListTickets returns an asset's tickets, newest first
func ListTickets(ctx context.Context, db *gorm.DB, assetID uint) ([]models.MaintenanceTicket, error) {
	if err := mustExist(db.WithContext(ctx), &models.Asset{}, "asset", assetID); err != nil {
		return nil, err
	}

	var tickets []models.MaintenanceTicket
	err := db.WithContext(ctx).Where("asset_id = ?", assetID).
		Order("created_date DESC").Order("id DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// CreateTicket opens a ticket against an asset
func CreateTicket(ctx context.Context, db *gorm.DB, assetID uint, description string) (*models.MaintenanceTicket, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validationError("description is required")
	}
	if len(description) > 500 {
		return nil, validationError("description too long")
	}

	ticket := models.MaintenanceTicket{
		AssetID:     assetID,
		Description: description,
		CreatedDate: Now().UTC(),
		Status:      models.TicketStatusOpen,
	}
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Asset{}, "asset", assetID); err != nil {
			return err
		}
		return tx.Create(&ticket).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket changes status and description when version is current.
// An empty description keeps the current one.
func UpdateTicket(ctx context.Context, db *gorm.DB, id uint, version uint64, status, description string) (*models.MaintenanceTicket, error) {
	status = strings.TrimSpace(status)
	if !ticketStatuses[status] {
		return nil, validationError("status must be one of Open, InProgress, Closed")
	}
	description = strings.TrimSpace(description)
	if len(description) > 500 {
		return nil, validationError("description too long")
	}

	var ticket models.MaintenanceTicket
	err := audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		if err := tx.First(&ticket, id).Error; err != nil {
			return findErr(err, "ticket", id)
		}
		changes := map[string]interface{}{"status": status}
		if description != "" {
			changes["description"] = description
		}
		if err := updateVersioned(tx, &ticket, "version", version, changes); err != nil {
			return err
		}
		return tx.First(&ticket, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
