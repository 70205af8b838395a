package middleware

import (
	"net/http"
	"strings"

	"storefront-service/internal/dto"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ключ в контексте Gin для распарсенных claims (нужны хендлеру logout)
const CtxClaims = "auth_claims"

// AuthRequired проверяет Bearer-токен, отбрасывает отозванные (блэклист)
// и кладёт принципала {userID, role} в контекст запроса. Дальше сервисы
// работают только с контекстом — никакого глобального состояния.
func AuthRequired(tokens service.TokenProvider, cache service.CacheClient, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		tok, ok := ExtractBearerToken(authz)
		if !ok || tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		claims, err := tokens.ParseAndValidateAccess(c.Request.Context(), tok)
		if err != nil {
			log.Warn("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		if cache != nil && claims.JTI != "" {
			blacklisted, err := cache.IsTokenBlacklisted(c.Request.Context(), claims.JTI)
			if err != nil {
				log.Warn("blacklist check failed", zap.Error(err))
			} else if blacklisted {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("token revoked"))
				return
			}
		}

		ctx := service.WithUserID(c.Request.Context(), claims.UserID)
		ctx = service.WithRole(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// ExtractBearerToken извлекает токен из заголовка Authorization,
// устойчиво к лишним кавычкам по краям.
func ExtractBearerToken(authz string) (string, bool) {
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.TrimSpace(parts[1])
	t = strings.Trim(t, " \"'")
	return t, true
}

// ClaimsFromGin достаёт claims, положенные AuthRequired.
func ClaimsFromGin(c *gin.Context) *service.Claims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}
