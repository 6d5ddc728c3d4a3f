package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"taskhub/internal/model"
	"taskhub/internal/pkg/manifest"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admins.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestPromoteAdminsFromManifest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.store.addUser("alice", "alice@example.com", model.RoleUser)
	bob := env.store.addUser("bob", "bob@example.com", model.RoleUser)

	path := writeManifest(t, `admins:
  - username: alice
    email: alice@example.com
  - username: ghost
    email: ghost@example.com
`)
	env.server.manifest = manifest.NewReader(path)

	promoted, err := env.server.PromoteAdminsFromManifest(context.Background())
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("promoted = %d, want 1", promoted)
	}
	if alice.Role != model.RoleAdmin {
		t.Fatalf("alice role = %s, want ADMIN", alice.Role)
	}
	if bob.Role != model.RoleUser {
		t.Fatalf("bob role = %s, want USER", bob.Role)
	}

	records, err := env.server.recorder.List(context.Background())
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].Email != alice.Email {
		t.Fatalf("unexpected promotion records: %+v", records)
	}

	// 重复执行幂等：已是 ADMIN 的账号不再计数
	promoted, err = env.server.PromoteAdminsFromManifest(context.Background())
	if err != nil {
		t.Fatalf("second promote: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("second promote = %d, want 0", promoted)
	}
}

func TestRegisterAdminsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admin := env.store.addUser("root", "root@example.com", model.RoleAdmin)
	user := env.store.addUser("alice", "alice@example.com", model.RoleUser)

	// 清单缺失返回 404
	w := env.do(t, http.MethodPost, "/api/auth/register-admins", nil, env.bearer(t, admin))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing manifest: expected 404, got %d", w.Code)
	}

	// 普通用户无权触发
	w = env.do(t, http.MethodPost, "/api/auth/register-admins", nil, env.bearer(t, user))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", w.Code)
	}

	path := writeManifest(t, `admins:
  - username: alice
    email: alice@example.com
`)
	env.server.manifest = manifest.NewReader(path)

	w = env.do(t, http.MethodPost, "/api/auth/register-admins", nil, env.bearer(t, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("alice role = %s, want ADMIN", user.Role)
	}
}
