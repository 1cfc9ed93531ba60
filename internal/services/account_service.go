// account_service.go
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
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

func unknownUserHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	})
	return dummyHash
}

// Principal is an authenticated caller
type Principal struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	Source string   `json:"-"`
}

// HasRole reports whether the principal holds role
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthResponse is returned by register, login and token validation
type AuthResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token,omitempty"`
	UserID  string   `json:"userId,omitempty"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

// RegisterInput carries a new account
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with the given roles, GeneralStaff when none are given
func Register(ctx context.Context, db *gorm.DB, in RegisterInput, roles ...string) (*models.AppUser, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	if len(roles) == 0 {
		roles = []string{models.RoleGeneralStaff}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.AppUser{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(hash),
	}
	user.SetRoles(roles)

	err = audit.SaveChanges(ctx, db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AppUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: email %s", ErrDuplicate, email)
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks credentials and returns the account
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.AppUser, error) {
	var user models.AppUser
	err := db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// spend the same time as a real comparison
			_ = bcrypt.CompareHashAndPassword(unknownUserHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SeedAdministrator creates the initial administrator when no account with
// that email exists. Failures are logged and never stop startup.
func SeedAdministrator(ctx context.Context, db *gorm.DB, email, password string) {
	if email == "" || password == "" {
		return
	}

	log := logrus.WithField("email", normalizeEmail(email))
	_, err := Register(audit.WithActor(ctx, audit.SystemActor), db, RegisterInput{
		Email:    email,
		Password: password,
		FullName: "Administrator",
	}, models.RoleAdministrator)

	switch {
	case err == nil:
		log.Info("Seeded administrator account")
	case errors.Is(err, ErrDuplicate):
		log.Debug("Administrator account already present")
	default:
		log.WithError(err).Error("Failed to seed administrator account")
	}
}
