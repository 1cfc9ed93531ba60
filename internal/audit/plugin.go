// plugin.go
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

package audit

import (
	"context"
	"fmt"
	"reflect"

	"github.com/localnerve/itassetdb/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// redacted columns are never copied into a change payload
var redacted = map[string]bool{
	"password_hash": true,
	"PasswordHash":  true,
}

// Plugin registers the change collecting callbacks. Install it with db.Use(audit.Plugin{}).
type Plugin struct{}

// Name implements gorm.Plugin
func (Plugin) Name() string {
	return "itassetdb:audit"
}

// Initialize implements gorm.Plugin
func (Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("audit:after_create", collect(models.ActionInsert)); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("audit:after_update", collect(models.ActionUpdate)); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("audit:after_delete", collect(models.ActionDelete))
}

func collect(action string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		stmt := db.Statement
		if db.Error != nil || db.RowsAffected == 0 || stmt.Schema == nil {
			return
		}
		if stmt.Schema.Table == (models.ChangeLog{}).TableName() {
			return
		}
		cs := changeSetFrom(stmt.Context)
		if cs == nil {
			return
		}
		pk := stmt.Schema.PrioritizedPrimaryField
		if pk == nil {
			return
		}

		actor := ActorFrom(stmt.Context)
		at := now()

		record := func(rv reflect.Value) {
			rv = reflect.Indirect(rv)
			if rv.Kind() != reflect.Struct {
				return
			}
			value, zero := pk.ValueOf(stmt.Context, rv)
			if zero {
				// bulk statement with no loaded instance
				return
			}

			entry := models.ChangeLog{
				Entity:   stmt.Schema.Name,
				Key:      fmt.Sprint(value),
				Action:   action,
				UserName: actor,
				At:       at,
			}
			if action != models.ActionDelete {
				changes, err := models.NewJSON(payload(stmt, rv))
				if err != nil {
					logrus.WithError(err).WithField("entity", entry.Entity).Warn("Change payload not serializable")
				} else {
					entry.Changes = changes
				}
			}
			cs.add(entry)
		}

		switch stmt.ReflectValue.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < stmt.ReflectValue.Len(); i++ {
				record(stmt.ReflectValue.Index(i))
			}
		case reflect.Struct:
			record(stmt.ReflectValue)
		}
	}
}

// payload is the written column set: the update map when one was given,
// otherwise a snapshot of the instance columns.
func payload(stmt *gorm.Statement, rv reflect.Value) map[string]interface{} {
	out := make(map[string]interface{})

	if m, ok := stmt.Dest.(map[string]interface{}); ok {
		for k, v := range m {
			if redacted[k] {
				continue
			}
			out[k] = exprValue(v)
		}
		return out
	}

	return snapshot(stmt.Context, stmt.Schema, rv)
}

func snapshot(ctx context.Context, s *schema.Schema, rv reflect.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(s.DBNames))
	for _, field := range s.Fields {
		if field.DBName == "" || redacted[field.DBName] || !field.Readable {
			continue
		}
		value, _ := field.ValueOf(ctx, rv)
		out[field.DBName] = value
	}
	return out
}

func exprValue(v interface{}) interface{} {
	switch e := v.(type) {
	case clause.Expr:
		return e.SQL
	case *clause.Expr:
		return e.SQL
	}
	return v
}
