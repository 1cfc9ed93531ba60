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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/itassetdb/internal/audit"
	"github.com/localnerve/itassetdb/internal/config"
	"github.com/localnerve/itassetdb/internal/policy"
	"github.com/localnerve/itassetdb/internal/services"
	"github.com/localnerve/itassetdb/internal/types"
	"github.com/sirupsen/logrus"
)

// SessionCookie carries an issued token for browser clients
const SessionCookie = "itassetdb_session"

const principalKey = "principal"

// Auth resolves the caller and enforces policies
type Auth struct {
	Config *config.Config
	Tokens *services.TokenService
}

// NewAuth creates the auth middleware factory
func NewAuth(cfg *config.Config, tokens *services.TokenService) *Auth {
	return &Auth{Config: cfg, Tokens: tokens}
}

// Require returns a handler that admits only callers satisfying p
func (a *Auth) Require(p policy.Policy) fiber.Handler {
	errorType := "authorization." + string(p)

	return func(c *fiber.Ctx) error {
		principal, err := a.resolve(c, p, errorType)
		if err != nil {
			return err
		}

		if !p.Allows(principal.Roles) {
			return types.Forbidden("Caller does not satisfy policy "+string(p), errorType)
		}

		c.Locals(principalKey, principal)
		c.SetUserContext(audit.WithActor(c.UserContext(), actorName(principal)))

		return c.Next()
	}
}

// resolve tries the bearer header, then the session cookie, then the
// Authorizer cookie when one is configured.
func (a *Auth) resolve(c *fiber.Ctx, p policy.Policy, errorType string) (*services.Principal, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return nil, types.Unauthorized("Malformed Authorization header", errorType)
		}
		principal, err := a.Tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			return nil, types.Unauthorized("Invalid bearer token", errorType)
		}
		return principal, nil
	}

	if cookie := c.Cookies(SessionCookie); cookie != "" {
		principal, err := a.Tokens.ValidateToken(cookie)
		if err != nil {
			return nil, types.Unauthorized("Invalid session cookie", errorType)
		}
		return principal, nil
	}

	if a.Config != nil && a.Config.AuthorizerEnabled() {
		if session := c.Cookies(services.AuthorizerCookie); session != "" {
			return a.resolveAuthorizer(c, session, p, errorType)
		}
	}

	return nil, types.Unauthorized("Authentication required", errorType)
}

func (a *Auth) resolveAuthorizer(c *fiber.Ctx, session string, p policy.Policy, errorType string) (*services.Principal, error) {
	if err := services.InitAuthorizer(a.Config, c.Protocol(), c.Hostname()); err != nil {
		logrus.WithError(err).Error("Authorizer unavailable")
		return nil, types.Unauthorized("Session service unavailable", errorType)
	}

	// authenticate first so a bad session is a 401 rather than a 403
	principal, err := services.ValidateSession(session, nil)
	if err != nil {
		return nil, types.Unauthorized("Invalid session: "+err.Error(), errorType)
	}

	roles := p.Roles()
	if len(roles) == 0 {
		return principal, nil
	}

	withRoles, err := services.ValidateSession(session, roles)
	if err != nil {
		return nil, types.Forbidden("Session does not satisfy policy "+string(p), errorType)
	}
	return withRoles, nil
}

// PrincipalFrom returns the caller set by Require, or nil
func PrincipalFrom(c *fiber.Ctx) *services.Principal {
	principal, _ := c.Locals(principalKey).(*services.Principal)
	return principal
}

func actorName(p *services.Principal) string {
	if p.Email != "" {
		return p.Email
	}
	return p.UserID
}
