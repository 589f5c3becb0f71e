package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// RefreshTokenCookie carries the refresh token between browser and server.
const RefreshTokenCookie = "refreshToken"

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,mobile"`
}

type registerRequest struct {
	FullName    string `json:"fullName" validate:"required,min=4,max=30"`
	PhoneNumber string `json:"phoneNumber" validate:"required,mobile"`
}

type checkOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,mobile"`
	Code        string `json:"code" validate:"required,len=6,number"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login sends a fresh code to an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issued, err := h.auth.Login(c.UserContext(), req.PhoneNumber)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "the code has been sent to your phone number",
		"otp":     h.otpView(issued),
	})
}

// Register creates an account and sends its first code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issued, err := h.auth.Register(c.UserContext(), req.FullName, req.PhoneNumber)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, fiber.Map{
		"message": "the code has been sent to your phone number",
		"otp":     h.otpView(issued),
	})
}

// CheckOTP exchanges a valid code for an access and refresh token.
func (h *AuthHandler) CheckOTP(c *fiber.Ctx) error {
	var req checkOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.CheckOTP(c.UserContext(), req.PhoneNumber, req.Code)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, pair)
	return respond(c, fiber.StatusOK, fiber.Map{
		"message":      "logged in successfully",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// RefreshToken reads the refresh token from the cookie, the refreshToken
// header or the body, in that order.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(RefreshTokenCookie)
	if token == "" {
		token = c.Get(RefreshTokenCookie)
	}
	if token == "" && len(c.Body()) > 0 {
		var req refreshRequest
		if err := c.BodyParser(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	h.setTokenCookies(c, pair)
	return respond(c, fiber.StatusOK, fiber.Map{
		"message":      "tokens refreshed successfully",
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AuthHandler) otpView(issued *services.IssuedOTP) fiber.Map {
	view := fiber.Map{"expiresIn": issued.ExpiresAt}
	if h.cfg.OTPExposeCode {
		view["code"] = issued.Code
	}
	return view
}

func (h *AuthHandler) setTokenCookies(c *fiber.Ctx, pair utils.TokenPair) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  now.Add(h.cfg.AccessTokenTTL),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  now.Add(h.cfg.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
