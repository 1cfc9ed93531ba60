// user.go
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
	"strings"
	"time"
)

// Roles. One vocabulary is used by tokens, policies and seeding.
const (
	RoleAdministrator = "Administrator"
	RoleDeveloper     = "Developer"
	RoleGeneralStaff  = "GeneralStaff"
)

// AppUser is a local account able to obtain bearer tokens
type AppUser struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	FullName     string    `gorm:"size:100" json:"fullName"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Roles        string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName overrides the table name for AppUser
func (AppUser) TableName() string {
	return "app_users"
}

// RoleList returns the stored comma separated roles
func (u AppUser) RoleList() []string {
	var roles []string
	for _, r := range strings.Split(u.Roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// SetRoles stores roles comma separated
func (u *AppUser) SetRoles(roles []string) {
	u.Roles = strings.Join(roles, ",")
}
