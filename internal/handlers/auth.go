// auth.go
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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/middleware"
	"github.com/localnerve/itassetdb/internal/services"
	"gorm.io/gorm"
)

// AuthHandler handles account registration, login and token validation
type AuthHandler struct {
	DB     *gorm.DB
	Tokens *services.TokenService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.Tokens.TTL()),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Description Create a GeneralStaff account and return a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account"
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body services.RegisterInput
	if err := parseBody(c, &body); err != nil {
		return err
	}

	user, err := services.Register(c.UserContext(), h.DB, body)
	if err != nil {
		return err
	}

	resp, err := h.Tokens.AuthResponseFor(user, "Registration successful")
	if err != nil {
		return err
	}
	h.setSessionCookie(c, resp.Token)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange credentials for a bearer token; also sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body credentials true "Credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentials
	if err := parseBody(c, &body); err != nil {
		return err
	}

	user, err := services.Authenticate(c.UserContext(), h.DB, body.Email, body.Password)
	if err != nil {
		return err
	}

	resp, err := h.Tokens.AuthResponseFor(user, "Login successful")
	if err != nil {
		return err
	}
	h.setSessionCookie(c, resp.Token)
	return c.JSON(resp)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(services.AuthResponse{Success: true, Message: "Logged out"})
}

// Validate handles GET /api/auth/validate
// @Summary Validate the caller
// @Description Return the identity resolved from the bearer token or session
// @Tags Auth
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		return fiber.ErrUnauthorized
	}
	return c.JSON(services.AuthResponse{
		Success: true,
		Message: "Token is valid",
		UserID:  principal.UserID,
		Email:   principal.Email,
		Roles:   principal.Roles,
	})
}
