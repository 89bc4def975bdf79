package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trivia-trens/trivia-monitora/services/api/auth"
	"github.com/trivia-trens/trivia-monitora/services/api/db"
)

const identityKey = "identity"

const msgForbidden = "Acesso não autorizado para este perfil."

// identityMiddleware resolves the caller from its access token. Requests
// without a valid token continue anonymously.
func (s *Server) identityMiddleware() gin.HandlerFunc {
	secret := []byte(s.cfg.JWTSecret)
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" || len(secret) == 0 {
			c.Next()
			return
		}

		claims, err := auth.ParseToken(token, secret)
		if err != nil {
			s.log.WithError(err).Debug("rejected access token")
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		profile, err := s.store.UserProfile(ctx, claims.Subject)
		cancel()
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				s.log.WithError(err).WithField("user_id", claims.Subject).Warn("load profile failed")
			}
			c.Next()
			return
		}

		email := profile.Email
		if email == "" {
			email = claims.Email
		}
		c.Set(identityKey, auth.Identity{
			UserID:     claims.Subject,
			Email:      email,
			Name:       auth.DisplayName(profile.Name, email),
			Company:    profile.Company,
			Area:       profile.Area,
			Role:       auth.ResolveRole(profile.Role, profile.Authorized),
			Authorized: profile.Authorized,
		})
		c.Next()
	}
}

func identityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// requireUser admits authenticated profiles that have been authorised.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Faça login para continuar."})
			return
		}
		if !id.Authorized {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgForbidden})
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Faça login para continuar."})
			return
		}
		if !id.Authorized || !auth.CanAdminister(id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgForbidden})
			return
		}
		c.Next()
	}
}

func requireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := identityFrom(c)
		if !auth.IsSuperAdmin(id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": msgForbidden})
			return
		}
		c.Next()
	}
}

func logFields(c *gin.Context) logrus.Fields {
	fields := logrus.Fields{"route": c.FullPath()}
	if id, ok := identityFrom(c); ok {
		fields["user_id"] = id.UserID
	}
	return fields
}
