// SPDX-License-Identifier: MIT

package transport

import (
	"net/http"
	"strings"
)

// noCachePaths marks auth-sensitive reads that must never be stale. All other
// GETs may be served from the response cache; this is a deliberate
// perf/correctness tradeoff (bulk list reads tolerate staleness, auth and
// settings reads do not).
var noCachePaths = []string{"/auth/", "/permissions/", "/settings"}

// disableCache reports whether caching must be bypassed and the no-store
// headers attached for the given call.
func disableCache(method, path string) bool {
	if method != http.MethodGet {
		return true
	}
	for _, p := range noCachePaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
