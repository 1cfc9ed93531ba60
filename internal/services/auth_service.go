// auth_service.go
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
	"fmt"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/itassetdb/internal/config"
	"github.com/localnerve/itassetdb/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthorizerCookie is the session cookie set by the Authorizer service
const AuthorizerCookie = "cookie_session"

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
	authErr    error
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client once. The redirect URL is
// taken from the first request that needs it.
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			authErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		logrus.WithFields(logrus.Fields{
			"authorizerURL": cfg.AuthzURL,
			"clientID":      cfg.AuthzClientID,
			"redirectURL":   redirectURL,
		}).Info("Initializing Authorizer")

		client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			authErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		authClient = client
	})

	return authErr
}

// ValidateSession validates an Authorizer session cookie. With roles, the
// session must hold one of them and the principal carries the requested roles.
func ValidateSession(cookie string, roles []string) (*Principal, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}

	// Check if session is valid
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	return &Principal{
		UserID: res.User.ID,
		Email:  res.User.Email,
		Roles:  append([]string(nil), roles...),
		Source: "authorizer",
	}, nil
}
