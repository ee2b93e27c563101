// SPDX-License-Identifier: MIT

// Package session holds the persisted client session context: auth token,
// workspace scoping and the cached current user. It is the single shared
// mutable resource of the client runtime.
package session

// Persisted key names. These match the documents written by earlier client
// generations, so an existing session file keeps working.
const (
	KeyAuthToken       = "auth_token"
	KeyTenantID        = "tenant_id"
	KeyWorkspaceID     = "workspace_id" // legacy alias, read fallback only
	KeyTenantSubdomain = "tenant_subdomain"
	KeyTenantName      = "tenant_name"
	KeyCurrentUser     = "currentUser"
	KeyActiveClientID  = "active_client_id"
	KeyDevTokenRetryAt = "dev_token_retry_at"
)

// Store is a small persistent string key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
	Clear()
}
