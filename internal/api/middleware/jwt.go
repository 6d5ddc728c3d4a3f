package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskhub/internal/model"
	"taskhub/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// AccountResolver 按邮箱解析账号，用于把令牌 subject 换回当前账号。
type AccountResolver interface {
	FindAccountByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthRequired 校验 Bearer 令牌并将账号信息写入上下文。
//
// 解码成功后还会向账号库二次确认 subject 对应的账号仍然存在，
// 覆盖令牌签发后账号被删除或改名的情况。角色以库中记录为准，
// 不信任令牌里缓存的角色声明。
func AuthRequired(tokens *token.Service, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := tokens.Decode(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		user, err := accounts.FindAccountByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", user.ID)
		c.Set("email", user.Email)
		c.Set("role", user.Role)
		c.Next()
	}
}
