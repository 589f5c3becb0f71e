package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

const (
	userContextKey = "currentUser"

	// AccessTokenCookie is the cookie the access token is read from first.
	AccessTokenCookie = "accessToken"
)

// RequireUser authenticates the caller and loads them into context. A token
// for a user that no longer exists is rejected as unauthorized.
func RequireUser(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, db, cfg)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.Unauthorized("the account for this token no longer exists")
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// RequireAdmin is RequireUser restricted to ADMIN users. A missing user is
// treated as not an admin.
func RequireAdmin(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, db, cfg)
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			return apperr.Forbidden("you do not have access to this route")
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by RequireUser or RequireAdmin.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userContextKey).(*models.User)
	return user, ok && user != nil
}

// authenticate returns a nil user without error when the token is valid but
// its subject is gone.
func authenticate(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) (*models.User, error) {
	token := extractToken(c)
	if token == "" {
		return nil, apperr.Unauthorized("log in to access this route")
	}

	userID, err := utils.ParseToken(cfg.JWTSecret, token, utils.AccessToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token").WithCode(apperr.CodeJWTExpired)
	}

	user, err := loadUser(c, db, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func loadUser(c *fiber.Ctx, db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.WithContext(c.UserContext()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// extractToken prefers the cookie and falls back to the Authorization
// header, with or without the Bearer scheme.
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies(AccessTokenCookie); token != "" {
		return token
	}

	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
