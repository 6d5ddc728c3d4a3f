package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"taskhub/internal/model"
	"taskhub/internal/pkg/metrics"
	"taskhub/internal/pkg/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore 是登录/注册所需的账号存取接口。
type AccountStore interface {
	FindAccountByEmail(ctx context.Context, email string) (*model.User, error)
	AccountExistsByEmail(ctx context.Context, email string) (bool, error)
	AccountExistsByUsername(ctx context.Context, username string) (bool, error)
	SaveAccount(ctx context.Context, user *model.User) error
}

// Handler 提供注册与登录接口。
type Handler struct {
	accounts  AccountStore
	tokens    *token.Service
	logger    *slog.Logger
	dummyHash []byte
}

// NewHandler 创建 Auth Handler。
func NewHandler(accounts AccountStore, tokens *token.Service, logger *slog.Logger) *Handler {
	// 预生成一个哈希，未知邮箱时也走一次等耗时比较，避免账号枚举
	dummy, _ := bcrypt.GenerateFromPassword([]byte("taskhub-dummy-secret"), bcrypt.DefaultCost)
	return &Handler{
		accounts:  accounts,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummy,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	Token    string     `json:"token"`
}

type registerResponse struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
}

// Login 校验凭证并返回新签发的 JWT。
//
// 两种登录因子二选一：携带有效令牌可换取一个刷新了有效期的新令牌
// （令牌优先），否则校验密码。两条路径上的任何失败都返回统一的
// 401，不暴露具体是哪一步失败。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Token) == "" && strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either a token or a password must be provided"})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if strings.TrimSpace(req.Token) != "" {
		h.loginWithToken(c, email, req.Token)
		return
	}
	h.loginWithPassword(c, email, req.Password)
}

// loginWithToken 以旧令牌换新令牌。subject 必须与被登录的账号一致。
func (h *Handler) loginWithToken(c *gin.Context, email, raw string) {
	claims, err := h.tokens.Decode(raw)
	if err != nil {
		h.unauthorized(c, email, err)
		return
	}

	user, err := h.accounts.FindAccountByEmail(c.Request.Context(), email)
	if err != nil || claims.Subject != user.Email {
		h.unauthorized(c, email, err)
		return
	}

	h.issueAndRespond(c, user)
}

func (h *Handler) loginWithPassword(c *gin.Context, email, password string) {
	user, err := h.accounts.FindAccountByEmail(c.Request.Context(), email)
	if err != nil {
		// 账号不存在也执行一次比较，与正常路径耗时一致
		_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
		h.unauthorized(c, email, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		h.unauthorized(c, email, err)
		return
	}

	h.issueAndRespond(c, user)
}

func (h *Handler) issueAndRespond(c *gin.Context, user *model.User) {
	signed, err := h.tokens.Issue(user.Email, user.Role)
	if err != nil {
		h.logger.Error("sign token failed", slog.String("email", user.Email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}

	metrics.LoginSuccessTotal.Inc()
	h.logger.Info("user logged in", slog.String("email", user.Email), slog.String("role", string(user.Role)))
	c.JSON(http.StatusOK, authResponse{
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		Token:    signed,
	})
}

func (h *Handler) unauthorized(c *gin.Context, email string, cause error) {
	metrics.LoginFailureTotal.Inc()
	if cause != nil {
		h.logger.Warn("login rejected", slog.String("email", email), slog.String("error", cause.Error()))
	} else {
		h.logger.Warn("login rejected", slog.String("email", email))
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

// Register 创建新用户。
//
// 注册与登录解耦：成功后只返回身份信息，不签发令牌，
// 调用方需要再走一次登录。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	username := strings.TrimSpace(req.Username)

	if reason := validatePassword(req.Password); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	ctx := c.Request.Context()
	if exists, err := h.accounts.AccountExistsByEmail(ctx, email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	} else if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		return
	}
	if exists, err := h.accounts.AccountExistsByUsername(ctx, username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	} else if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	user := model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     model.RoleUser,
	}
	if err := h.accounts.SaveAccount(ctx, &user); err != nil {
		h.logger.Error("create user failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}

	metrics.UserRegisteredTotal.Inc()
	h.logger.Info("user registered", slog.String("email", email), slog.String("username", username))
	c.JSON(http.StatusCreated, registerResponse{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

// validatePassword 校验密码强度，返回空串表示通过。
//
// 规则：至少 8 位，至少包含一个字母和一个数字。
func validatePassword(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters long"
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasDigit {
		return "password must contain at least one digit"
	}
	if !hasLetter {
		return "password must contain at least one letter"
	}
	return ""
}
