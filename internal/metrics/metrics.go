// metrics.go
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "itassetdb"

var (
	// ChangeLogEntries counts audit entries written, by action
	ChangeLogEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "changelog_entries_total",
		Help:      "Audit entries persisted after a committed change.",
	}, []string{"action"})

	// ChangeLogFailures counts audit batches that could not be persisted
	ChangeLogFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "changelog_write_failures_total",
		Help:      "Audit batches dropped because the second commit failed.",
	})

	// LicenseAssignments counts assignment lifecycle operations
	LicenseAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_assignment_operations_total",
		Help:      "License assignment lifecycle operations, by operation.",
	}, []string{"operation"})

	// TransientRetries counts storage operations retried after a transient failure
	TransientRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_transient_retries_total",
		Help:      "Storage operations retried after a transient failure.",
	})
)
