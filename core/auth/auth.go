package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"gallery.GO/config"
	apperrors "gallery.GO/core/errors"
	authRepo "gallery.GO/model/repository/auth"
)

// Context keys set by the middleware.
const (
	KeyAuthType = "auth_type"
	KeyGrant    = "acl_grant"
)

// GrantSource resolves an admin access token into its ACL grant.
type GrantSource interface {
	GrantForToken(ctx context.Context, token string) (*authRepo.Grant, error)
}

// Middleware returns the auth middleware for cfg.AuthType (key, token, basic).
func Middleware(db *gorm.DB, cfg *config.Config) echo.MiddlewareFunc {
	skipper := buildSkipper()
	switch cfg.AuthType {
	case "key":
		return keyAuth(cfg.APIKey, skipper)
	case "token":
		return tokenAuth(authRepo.NewAuthRepository(db), cfg.APIKey, skipper)
	default:
		return basicAuth(cfg.APIUser, cfg.APIPass, skipper)
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func basicAuth(user, pass string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if user == "" || !equal(username, user) || !equal(password, pass) {
				return false, nil
			}
			c.Set(KeyAuthType, "basic")
			return true, nil
		},
		Skipper: skipper,
	})
}

func keyAuth(apiKey string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			if apiKey == "" || !equal(key, apiKey) {
				return false, nil
			}
			c.Set(KeyAuthType, "key")
			return true, nil
		},
		Skipper: skipper,
	})
}

func tokenAuth(grants GrantSource, staticKey string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(token string, c echo.Context) (bool, error) {
			if staticKey != "" && equal(token, staticKey) {
				c.Set(KeyAuthType, "static")
				return true, nil
			}
			grant, err := grants.GrantForToken(c.Request().Context(), token)
			if err != nil {
				return false, nil
			}
			c.Set(KeyAuthType, "token")
			c.Set(KeyGrant, grant)
			return true, nil
		},
		Skipper: skipper,
	})
}

// RequireResource rejects admin-token requests whose role lacks resource.
// Static keys and basic credentials are trusted with every resource.
func RequireResource(resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get(KeyAuthType) != "token" {
				return next(c)
			}
			grant, _ := c.Get(KeyGrant).(*authRepo.Grant)
			if !grant.Allows(resource) {
				meta := apperrors.MetadataFor(apperrors.CodeForbidden)
				return c.JSON(http.StatusForbidden, echo.Map{
					"code":  apperrors.CodeForbidden,
					"error": meta.PublicMessage + ": " + resource,
				})
			}
			return next(c)
		}
	}
}
