// policy_test.go
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

package policy

import (
	"testing"

	"github.com/localnerve/itassetdb/internal/models"
)

func TestAllows(t *testing.T) {
	admin := []string{models.RoleAdministrator}
	dev := []string{models.RoleDeveloper}
	staff := []string{models.RoleGeneralStaff}

	tests := []struct {
		policy Policy
		roles  []string
		want   bool
	}{
		{AdminOnly, admin, true},
		{AdminOnly, dev, false},
		{AdminOnly, staff, false},
		{AdminOrDeveloper, dev, true},
		{AdminOrDeveloper, staff, false},
		{AllUsers, staff, true},
		{AllUsers, nil, true},
		{CanViewAssets, staff, true},
		{CanManageAssets, admin, true},
		{CanManageAssets, dev, true},
		{CanManageAssets, staff, false},
		{CanManageUsers, dev, false},
		{CanManageTickets, dev, true},
		{CanManageTickets, staff, false},
		{CanCreateTickets, staff, true},
		{CanAccessReports, staff, true},
		{CanManageSettings, admin, true},
		{CanManageSettings, dev, false},
		{CanManageAssets, []string{models.RoleGeneralStaff, models.RoleDeveloper}, true},
		{Policy("Nope"), admin, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			if got := tt.policy.Allows(tt.roles); got != tt.want {
				t.Errorf("%s.Allows(%v) = %v, want %v", tt.policy, tt.roles, got, tt.want)
			}
		})
	}
}

func TestRoles(t *testing.T) {
	if roles := AllUsers.Roles(); roles != nil {
		t.Errorf("expected nil roles for AllUsers, got %v", roles)
	}

	roles := AdminOrDeveloper.Roles()
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", roles)
	}
	roles[0] = "mutated"
	if AdminOrDeveloper.Roles()[0] != models.RoleAdministrator {
		t.Error("Roles must return a copy")
	}
}

func TestAllKnown(t *testing.T) {
	for _, p := range All() {
		if !p.Known() {
			t.Errorf("policy %s is not in the table", p)
		}
	}
	if Policy("Other").Known() {
		t.Error("unexpected known policy")
	}
}
