// policy.go
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

// Package policy holds the named authorization policies and the roles each one admits.
package policy

import (
	"github.com/localnerve/itassetdb/internal/models"
)

// Policy names a rule guarding a set of routes
type Policy string

const (
	AdminOnly         Policy = "AdminOnly"
	AdminOrDeveloper  Policy = "AdminOrDeveloper"
	AllUsers          Policy = "AllUsers"
	CanViewAssets     Policy = "CanViewAssets"
	CanManageAssets   Policy = "CanManageAssets"
	CanManageUsers    Policy = "CanManageUsers"
	CanManageTickets  Policy = "CanManageTickets"
	CanCreateTickets  Policy = "CanCreateTickets"
	CanAccessReports  Policy = "CanAccessReports"
	CanManageSettings Policy = "CanManageSettings"
)

// An empty role list admits any authenticated caller.
var table = map[Policy][]string{
	AdminOnly:         {models.RoleAdministrator},
	AdminOrDeveloper:  {models.RoleAdministrator, models.RoleDeveloper},
	AllUsers:          nil,
	CanViewAssets:     nil,
	CanManageAssets:   {models.RoleAdministrator, models.RoleDeveloper},
	CanManageUsers:    {models.RoleAdministrator},
	CanManageTickets:  {models.RoleAdministrator, models.RoleDeveloper},
	CanCreateTickets:  nil,
	CanAccessReports:  nil,
	CanManageSettings: {models.RoleAdministrator},
}

// All returns every known policy
func All() []Policy {
	return []Policy{
		AdminOnly, AdminOrDeveloper, AllUsers, CanViewAssets, CanManageAssets,
		CanManageUsers, CanManageTickets, CanCreateTickets, CanAccessReports, CanManageSettings,
	}
}

// Known reports whether p is a defined policy
func (p Policy) Known() bool {
	_, ok := table[p]
	return ok
}

// Roles returns a copy of the roles p admits; nil means any authenticated caller
func (p Policy) Roles() []string {
	roles := table[p]
	if len(roles) == 0 {
		return nil
	}
	return append([]string(nil), roles...)
}

// Allows reports whether a caller holding roles satisfies p.
// Unknown policies deny.
func (p Policy) Allows(roles []string) bool {
	required, ok := table[p]
	if !ok {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
