// retry.go
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

package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/itassetdb/internal/metrics"
	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds the retry of transient storage failures
type RetryPolicy struct {
	MaxRetries      uint64
	MaxInterval     time.Duration
	InitialInterval time.Duration
}

var (
	retryMu     sync.RWMutex
	retryPolicy = RetryPolicy{MaxRetries: 5, MaxInterval: 30 * time.Second}
)

// ConfigureRetry replaces the process wide retry policy
func ConfigureRetry(p RetryPolicy) {
	retryMu.Lock()
	defer retryMu.Unlock()
	retryPolicy = p
}

func currentPolicy() RetryPolicy {
	retryMu.RLock()
	defer retryMu.RUnlock()
	return retryPolicy
}

// Retry runs fn, retrying with exponential backoff while it fails with a
// transient error. Any other error is returned at once.
func Retry(ctx context.Context, fn func() error) error {
	p := currentPolicy()

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = 0
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}

	operation := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		metrics.TransientRetries.Inc()
		logrus.WithError(err).WithField("wait", wait).Warn("Transient storage failure, retrying")
	}

	return backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx), notify)
}

var transientMessages = []string{
	"database is locked",
	"database table is locked",
	"deadlock",
	"connection reset",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"too many connections",
}

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, 1213, 1040: // lock wait timeout, deadlock, too many connections
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "53300", "57P03": // serialization, deadlock, too many connections, cannot connect now
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
