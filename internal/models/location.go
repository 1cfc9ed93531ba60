// location.go
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
	"fmt"
	"strings"
	"time"
)

// Location is a place assets live
type Location struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Building    string    `gorm:"size:100" json:"building"`
	Room        string    `gorm:"size:50" json:"room"`
	Floor       string    `gorm:"size:20" json:"floor"`
	LabNumber   string    `gorm:"size:20" json:"labNumber"`
	Department  string    `gorm:"size:100" json:"department"`
	Description string    `gorm:"size:500" json:"description"`
	Version     uint64    `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Location
func (Location) TableName() string {
	return "locations"
}

// DisplayName prefers lab number, then room, then the bare building
func (l Location) DisplayName() string {
	building := strings.TrimSpace(l.Building)
	switch {
	case strings.TrimSpace(l.LabNumber) != "":
		return fmt.Sprintf("%s - Lab %s", building, strings.TrimSpace(l.LabNumber))
	case strings.TrimSpace(l.Room) != "":
		return fmt.Sprintf("%s - %s", building, strings.TrimSpace(l.Room))
	case building != "":
		return building
	}
	return "Unknown Location"
}
