package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/supplylink/core-service/internal/models"
)

const principalKey = "principal"

// AuthMiddleware validates JWT tokens and attaches the authenticated
// principal to the request context. Tokens carry the account id in sub
// plus org_id, org_type and role claims issued by the identity service.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Authorization header required",
				Message: "Please provide a valid authorization token",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Invalid authorization format",
				Message: "Authorization header must be in format 'Bearer <token>'",
			})
			c.Abort()
			return
		}

		tokenString := tokenParts[1]

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Server not configured",
				Message: "JWT secret missing",
			})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Invalid token",
				Message: "The provided token is invalid or expired",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Invalid token",
				Message: "Token claims are malformed",
			})
			c.Abort()
			return
		}

		p := principalFromClaims(claims)
		if p.AccountID == "" || p.OrgID == "" || !p.Role.IsValid() ||
			(p.OrgType != models.OrgTypeSupplier && p.OrgType != models.OrgTypeConsumer) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Invalid token",
				Message: "Token is missing required identity claims",
			})
			c.Abort()
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

func principalFromClaims(claims jwt.MapClaims) models.Principal {
	var p models.Principal
	if sub, ok := claims["sub"].(string); ok {
		p.AccountID = sub
	}
	if orgID, ok := claims["org_id"].(string); ok {
		p.OrgID = orgID
	}
	if orgType, ok := claims["org_type"].(string); ok {
		p.OrgType = models.OrgType(orgType)
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = models.Role(role)
	}
	return p
}

// GetPrincipal extracts the authenticated principal from the context
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
