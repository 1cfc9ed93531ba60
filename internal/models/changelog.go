// changelog.go
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

import "time"

// Change actions recorded in the audit trail
const (
	ActionInsert = "Insert"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
)

// ChangeLog is an append-only audit record of one mutated entity instance
type ChangeLog struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Entity   string    `gorm:"size:100;not null;index:ix_change_logs_entity_key" json:"entity"`
	Key      string    `gorm:"column:entity_key;size:100;not null;index:ix_change_logs_entity_key" json:"key"`
	Action   string    `gorm:"size:20;not null" json:"action"`
	UserName string    `gorm:"size:256" json:"userName"`
	At       time.Time `gorm:"not null;index" json:"at"`
	Changes  *JSON     `json:"changes,omitempty"`
}

// TableName overrides the table name for ChangeLog
func (ChangeLog) TableName() string {
	return "change_logs"
}
