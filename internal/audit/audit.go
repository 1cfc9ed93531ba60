// audit.go
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

// Package audit records one ChangeLog per entity instance mutated inside
// SaveChanges. Entries are collected by gorm callbacks while the primary
// transaction runs and persisted by a second, independent commit.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/localnerve/itassetdb/internal/database"
	"github.com/localnerve/itassetdb/internal/metrics"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SystemActor is recorded when no caller identity is in the context
const SystemActor = "system"

// ErrPersistenceUnavailable wraps a failed change log commit. It is logged and
// never returned to callers of SaveChanges.
var ErrPersistenceUnavailable = errors.New("change log persistence unavailable")

type ctxKey int

const (
	actorKey ctxKey = iota
	changeSetKey
)

// WithActor attaches the acting user name to ctx
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey, name)
}

// ActorFrom returns the acting user name, or SystemActor
func ActorFrom(ctx context.Context) string {
	if ctx != nil {
		if name, ok := ctx.Value(actorKey).(string); ok && name != "" {
			return name
		}
	}
	return SystemActor
}

type changeSet struct {
	mu      sync.Mutex
	entries []models.ChangeLog
}

func (cs *changeSet) add(entry models.ChangeLog) {
	cs.mu.Lock()
	cs.entries = append(cs.entries, entry)
	cs.mu.Unlock()
}

func changeSetFrom(ctx context.Context) *changeSet {
	if ctx == nil {
		return nil
	}
	cs, _ := ctx.Value(changeSetKey).(*changeSet)
	return cs
}

// SaveChanges runs fn in a transaction, retrying transient failures, and
// returns its error. After the transaction commits, the collected change log
// entries are written in a second commit whose failure does not affect the
// result.
func SaveChanges(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var cs *changeSet

	err := database.Retry(ctx, func() error {
		cs = &changeSet{}
		txCtx := context.WithValue(ctx, changeSetKey, cs)
		return db.WithContext(txCtx).Transaction(fn)
	})
	if err != nil {
		return err
	}

	if err := persist(ctx, db, cs.entries); err != nil {
		metrics.ChangeLogFailures.Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"entries": len(cs.entries),
			"user":    ActorFrom(ctx),
		}).Error("Change log entries dropped")
	}

	return nil
}

func persist(ctx context.Context, db *gorm.DB, entries []models.ChangeLog) error {
	if len(entries) == 0 {
		return nil
	}

	err := database.Retry(ctx, func() error {
		return db.WithContext(ctx).Create(&entries).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	for _, e := range entries {
		metrics.ChangeLogEntries.WithLabelValues(e.Action).Inc()
	}
	return nil
}

// Query filters change log reads
type Query struct {
	Entity   string
	Key      string
	Page     int
	PageSize int
}

// Normalized returns q with paging clamped to the values List uses
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = 50
	}
	return q
}

// List returns change log entries newest first, with the total match count
func List(ctx context.Context, db *gorm.DB, q Query) ([]models.ChangeLog, int64, error) {
	q = q.Normalized()

	filtered := func() *gorm.DB {
		query := db.WithContext(ctx).Model(&models.ChangeLog{})
		if q.Entity != "" {
			query = query.Where("entity = ?", q.Entity)
		}
		if q.Key != "" {
			query = query.Where("entity_key = ?", q.Key)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ChangeLog
	err := filtered().Order("at DESC").Order("id DESC").
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func now() time.Time {
	return time.Now().UTC()
}
