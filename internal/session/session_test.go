// SPDX-License-Identifier: MIT

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	s.Set(KeyAuthToken, "tok")
	if got := s.Get(KeyAuthToken); got != "tok" {
		t.Fatalf("Get = %q, want tok", got)
	}
	s.Delete(KeyAuthToken)
	if got := s.Get(KeyAuthToken); got != "" {
		t.Fatalf("Get after delete = %q, want empty", got)
	}
}

func TestSessionTokenLifecycle(t *testing.T) {
	sess := New(NewMemoryStore())
	if sess.Token() != "" {
		t.Fatal("fresh session has a token")
	}
	sess.SetToken("tok")
	sess.SetTenant(Tenant{ID: "3", Subdomain: "acme", Name: "Acme"})
	sess.SetActiveClient("9")

	sess.ClearToken()
	if sess.Token() != "" {
		t.Fatal("ClearToken left the token")
	}
	if sess.Tenant().ID != "3" {
		t.Fatal("ClearToken must keep workspace context")
	}
	if sess.ActiveClient() != "9" {
		t.Fatal("ClearToken must keep the client scope")
	}
}

func TestLogoutKeepsCooldownMarker(t *testing.T) {
	sess := New(NewMemoryStore())
	sess.SetToken("tok")
	sess.SetTenant(Tenant{ID: "3"})
	sess.SetDevTokenRetryAt(time.Now())

	sess.Logout()
	if sess.Token() != "" || sess.Tenant().ID != "" {
		t.Fatal("Logout left auth state behind")
	}
	if sess.DevTokenRetryAt().IsZero() {
		t.Fatal("Logout must not clear the bootstrap cooldown")
	}
}

func TestTenantHonorsLegacyWorkspaceKey(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyWorkspaceID, "77")
	sess := New(store)
	if sess.Tenant().ID != "77" {
		t.Fatalf("Tenant().ID = %q, want legacy workspace id", sess.Tenant().ID)
	}
}

func TestDevTokenRetryAtRoundTrip(t *testing.T) {
	sess := New(NewMemoryStore())
	if !sess.DevTokenRetryAt().IsZero() {
		t.Fatal("unset marker must read as zero time")
	}
	now := time.Now().Truncate(time.Millisecond)
	sess.SetDevTokenRetryAt(now)
	if got := sess.DevTokenRetryAt(); !got.Equal(now) {
		t.Fatalf("DevTokenRetryAt = %v, want %v", got, now)
	}
	sess.ClearDevTokenRetryAt()
	if !sess.DevTokenRetryAt().IsZero() {
		t.Fatal("cleared marker must read as zero time")
	}
}

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s1, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s1.Set(KeyAuthToken, "tok")
	s1.Set(KeyTenantID, "3")
	_ = s1.(interface{ Close() error }).Close()

	s2, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.(interface{ Close() error }).Close() //nolint:errcheck
	if got := s2.Get(KeyAuthToken); got != "tok" {
		t.Fatalf("reloaded token = %q, want tok", got)
	}
	if got := s2.Get(KeyTenantID); got != "3" {
		t.Fatalf("reloaded tenant = %q, want 3", got)
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "session.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.(interface{ Close() error }).Close() //nolint:errcheck
	s.Set(KeyAuthToken, "tok")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("session file not written: %v", err)
	}
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("corrupt session file must not be fatal: %v", err)
	}
	defer s.(interface{ Close() error }).Close() //nolint:errcheck
	if got := s.Get(KeyAuthToken); got != "" {
		t.Fatalf("corrupt file produced token %q", got)
	}
	// The store is usable again after discarding the corrupt document.
	s.Set(KeyAuthToken, "tok")
	if got := s.Get(KeyAuthToken); got != "tok" {
		t.Fatalf("Get = %q, want tok", got)
	}
}

func TestFileStoreWriteIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.(interface{ Close() error }).Close() //nolint:errcheck

	s.Set(KeyAuthToken, "tok")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %o, want 0600", perm)
	}
}

func TestFileStorePicksUpExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.(interface{ Close() error }).Close() //nolint:errcheck

	// Another process (a second CLI) logs in and rewrites the file.
	other, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	other.Set(KeyAuthToken, "external-tok")
	_ = other.(interface{ Close() error }).Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Get(KeyAuthToken) == "external-tok" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("external session write never observed")
}
