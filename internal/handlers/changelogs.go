// changelogs.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/models"
	"gorm.io/gorm"
)

// ChangeLogHandler serves the audit trail
type ChangeLogHandler struct {
	DB *gorm.DB
}

// ChangeLogPage is one page of change log entries
type ChangeLogPage struct {
	Items    []models.ChangeLog `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ListChangeLogs handles GET /api/changelogs
// @Summary List change log entries
// @Description Newest first, optionally filtered by entity and key
// @Tags ChangeLogs
// @Produce json
// @Param entity query string false "Entity name, e.g. Asset"
// @Param key query string false "Entity key"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} ChangeLogPage
// @Security BearerAuth
// @Router /changelogs [get]
func (h *ChangeLogHandler) ListChangeLogs(c *fiber.Ctx) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "pageSize", 50)
	if err != nil {
		return err
	}

	q := audit.Query{Entity: c.Query("entity"), Key: c.Query("key"), Page: page, PageSize: pageSize}.Normalized()
	entries, total, err := audit.List(c.UserContext(), h.DB, q)
	if err != nil {
		return err
	}
	return c.JSON(ChangeLogPage{Items: entries, Total: total, Page: q.Page, PageSize: q.PageSize})
}
