package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/pkg/metrics"
	"taskhub/internal/pkg/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var errNotFound = errors.New("record not found")

type mockAccountStore struct {
	users map[string]*model.User // keyed by email
	saved []*model.User
}

func (m *mockAccountStore) FindAccountByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (m *mockAccountStore) AccountExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

func (m *mockAccountStore) AccountExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccountStore) SaveAccount(ctx context.Context, user *model.User) error {
	user.ID = uint(len(m.users) + 1)
	m.users[user.Email] = user
	m.saved = append(m.saved, user)
	return nil
}

func newTestHandler(t *testing.T, store AccountStore) (*Handler, *token.Service, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()

	tokens := token.NewService("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(store, tokens, logger)

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/users/register", h.Register)
	return h, tokens, r
}

func storeWithAlice(t *testing.T) *mockAccountStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("goodpass1"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return &mockAccountStore{users: map[string]*model.User{
		"alice@x.com": {ID: 1, Username: "alice", Email: "alice@x.com", Password: string(hash), Role: model.RoleUser},
	}}
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Password(t *testing.T) {
	store := storeWithAlice(t)
	_, tokens, r := newTestHandler(t, store)

	w := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com", "password": "goodpass1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected non-empty token")
	}
	if resp.Role != "USER" || resp.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	claims, err := tokens.Decode(resp.Token)
	if err != nil {
		t.Fatalf("issued token did not decode: %v", err)
	}
	if claims.Subject != "alice@x.com" {
		t.Fatalf("expected subject alice@x.com, got %q", claims.Subject)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	_, _, r := newTestHandler(t, storeWithAlice(t))

	w := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com", "password": "wrongpass1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLogin_UnknownEmailSameResponse(t *testing.T) {
	_, _, r := newTestHandler(t, storeWithAlice(t))

	known := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com", "password": "wrongpass1"})
	unknown := postJSON(r, "/api/auth/login", gin.H{"email": "nobody@x.com", "password": "wrongpass1"})

	if known.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", known.Code, unknown.Code)
	}
	// 响应体不可区分"账号不存在"与"密码错误"
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("responses must be indistinguishable: %q vs %q", known.Body.String(), unknown.Body.String())
	}
}

func TestLogin_MissingBothFactors(t *testing.T) {
	_, _, r := newTestHandler(t, storeWithAlice(t))

	w := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLogin_TokenRefresh(t *testing.T) {
	store := storeWithAlice(t)
	_, tokens, r := newTestHandler(t, store)

	old, err := tokens.Issue("alice@x.com", model.RoleUser)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	w := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com", "token": old})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := tokens.Decode(resp.Token)
	if err != nil {
		t.Fatalf("refreshed token did not decode: %v", err)
	}
	if claims.Subject != "alice@x.com" {
		t.Fatalf("expected subject to survive refresh, got %q", claims.Subject)
	}
}

func TestLogin_TokenSubjectMismatch(t *testing.T) {
	store := storeWithAlice(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("goodpass2"), bcrypt.DefaultCost)
	store.users["bob@x.com"] = &model.User{ID: 2, Username: "bob", Email: "bob@x.com", Password: string(hash), Role: model.RoleUser}
	_, tokens, r := newTestHandler(t, store)

	bobToken, _ := tokens.Issue("bob@x.com", model.RoleUser)

	// 用 bob 的令牌登录 alice 的账号
	w := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com", "token": bobToken})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLogin_TokenTakesPrecedence(t *testing.T) {
	store := storeWithAlice(t)
	_, tokens, r := newTestHandler(t, store)

	valid, _ := tokens.Issue("alice@x.com", model.RoleUser)

	// 密码错误但令牌有效：令牌路径优先，登录成功
	w := postJSON(r, "/api/auth/login", gin.H{"email": "alice@x.com", "password": "wrongpass1", "token": valid})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via token path, got %d", w.Code)
	}
}

func TestRegister_Success(t *testing.T) {
	store := &mockAccountStore{users: map[string]*model.User{}}
	_, _, r := newTestHandler(t, store)

	w := postJSON(r, "/api/users/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "goodpass1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "USER" {
		t.Fatalf("expected default role USER, got %q", resp.Role)
	}
	if resp.Token != "" {
		t.Fatalf("registration must not issue a token")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one saved account")
	}
	if store.saved[0].Password == "goodpass1" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := &mockAccountStore{users: map[string]*model.User{}}
	_, _, r := newTestHandler(t, store)

	first := postJSON(r, "/api/users/register", gin.H{"username": "alice", "email": "alice@x.com", "password": "goodpass1"})
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	second := postJSON(r, "/api/users/register", gin.H{"username": "alice2", "email": "alice@x.com", "password": "goodpass1"})
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate email, got %d", second.Code)
	}
}

func TestRegister_PasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		wantCode int
	}{
		{"short1", http.StatusBadRequest},
		{"alllettersnodigits", http.StatusBadRequest},
		{"12345678", http.StatusBadRequest},
		{"goodpass1", http.StatusCreated},
	}
	for _, tc := range cases {
		store := &mockAccountStore{users: map[string]*model.User{}}
		_, _, r := newTestHandler(t, store)

		w := postJSON(r, "/api/users/register", gin.H{"username": "alice", "email": "alice@x.com", "password": tc.password})
		if w.Code != tc.wantCode {
			t.Fatalf("password %q: expected %d, got %d: %s", tc.password, tc.wantCode, w.Code, w.Body.String())
		}
	}
}
