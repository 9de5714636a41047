package middleware

import (
	"net/http"
	"strings"

	"github.com/chinaharsle/stock-machine/services"

	"github.com/gin-gonic/gin"
)

var (
	jwtService       services.InterfaceJWTService
	adminUserService services.InterfaceAdminUserService
)

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(jwt services.InterfaceJWTService, adminUsers services.InterfaceAdminUserService) {
	jwtService = jwt
	adminUserService = adminUsers
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// Authentication 验证登录状态，把user_id写入上下文
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Authorization header is required",
				"data":    nil,
			})
			c.Abort()
			return
		}

		// 提取并校验token
		tokenString := extractToken(authHeader)
		claims, err := jwtService.ExtractClaims(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Invalid token: " + err.Error(),
				"data":    nil,
			})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireAdmin 验证管理员权限。不信任令牌中的角色声明，
// 每次都查库确认，查不到或出错一律拒绝。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" || !adminUserService.IsUserAdmin(userID) {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "Insufficient permissions: requires admin role",
				"data":    nil,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID 从上下文中读取当前用户ID
func CurrentUserID(c *gin.Context) string {
	return c.GetString("userID")
}
