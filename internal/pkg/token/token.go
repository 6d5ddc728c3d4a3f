// Package token 负责签发与校验 JWT 令牌。
//
// 令牌使用 HS256 对称签名，subject 为账号邮箱，有效期由配置决定。
// 签名密钥在进程启动时加载一次，之后只读。
package token

import (
	"errors"
	"strings"
	"time"

	"taskhub/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// 解码失败的具体原因，调用方用 errors.Is 区分。
var (
	ErrMalformed      = errors.New("token malformed or signature invalid")
	ErrExpired        = errors.New("token expired")
	ErrUnsupportedAlg = errors.New("unsupported signing algorithm")
	ErrEmptyClaims    = errors.New("token claims empty")
)

// Claims 是令牌携带的声明：标准字段 + 角色。
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Service 签发与校验令牌。构造后不可变，可被多个 goroutine 并发使用。
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService 创建令牌服务。ttl 非正时回退到 24 小时。
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue 为 subject（账号邮箱）签发一个新令牌。
func (s *Service) Issue(subject string, role model.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: string(role),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Decode 解析并校验令牌，返回其中的声明。
//
// 失败原因映射：
//   - 签名算法非 HMAC → ErrUnsupportedAlg
//   - 已过期 → ErrExpired
//   - 结构或签名不合法 → ErrMalformed
//   - subject 为空 → ErrEmptyClaims
func (s *Service) Decode(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnsupportedAlg
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedAlg):
			return nil, ErrUnsupportedAlg
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	if !t.Valid {
		return nil, ErrMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrEmptyClaims
	}
	return claims, nil
}

// TTL 返回令牌有效期。
func (s *Service) TTL() time.Duration {
	return s.ttl
}
