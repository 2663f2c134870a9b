package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campusjob/internal/auth"
)

const (
	subjectIDKey = "subjectID"
	roleKey      = "role"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "로그인이 필요합니다."})
}

// AuthMiddleware 校验访问令牌并把账号 ID 与角色注入上下文。
// 角色只信任令牌里的 role 声明，不看客户端另行传的任何角色参数。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil || claims.TokenType != "access" {
			abortUnauthorized(c)
			return
		}

		c.Set(subjectIDKey, claims.Subject)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireRole 在 AuthMiddleware 之后使用，限制路由只对指定角色开放。
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(roleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "접근 권한이 없습니다."})
	}
}

// SubjectFromContext 返回令牌主体（账号 ID）与角色。
func SubjectFromContext(c *gin.Context) (id, role string, ok bool) {
	id = c.GetString(subjectIDKey)
	role = c.GetString(roleKey)
	return id, role, id != ""
}
