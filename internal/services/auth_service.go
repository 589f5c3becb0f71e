package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// IssuedOTP is returned from login and register so the caller can expose
// the code in demo mode.
type IssuedOTP struct {
	Code      string
	ExpiresAt time.Time
}

// AuthService drives the OTP login flow and token refresh.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender OTPSender
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, cfg *config.Config, sender OTPSender, log *zap.Logger) *AuthService {
	return &AuthService{db: db, cfg: cfg, sender: sender, log: log, now: time.Now}
}

// Login issues a new code to an existing user.
func (s *AuthService) Login(ctx context.Context, phoneNumber string) (*IssuedOTP, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no user found with this phone number")
		}
		return nil, err
	}

	issued, otp, err := s.newOTP()
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"otp_code_hash":  otp.CodeHash,
		"otp_expires_at": otp.ExpiresAt,
	}).Error; err != nil {
		return nil, err
	}

	s.dispatch(ctx, phoneNumber, issued)
	return issued, nil
}

// Register creates the user together with an empty cart and issues a code.
func (s *AuthService) Register(ctx context.Context, fullName, phoneNumber string) (*IssuedOTP, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("phone_number = ?", phoneNumber).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("this phone number is already registered")
	}

	issued, otp, err := s.newOTP()
	if err != nil {
		return nil, err
	}

	user := models.User{
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Role:        models.RoleUser,
		OTP:         otp,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Cart{UserID: user.ID}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("this phone number is already registered")
	}
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, phoneNumber, issued)
	return issued, nil
}

// CheckOTP verifies the code and, on success, consumes it and issues tokens.
// A wrong code is reported before an expired one.
func (s *AuthService) CheckOTP(ctx context.Context, phoneNumber, code string) (utils.TokenPair, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.TokenPair{}, apperr.NotFound("no user found with this phone number")
		}
		return utils.TokenPair{}, err
	}

	if !utils.CheckSecret(user.OTP.CodeHash, code) {
		return utils.TokenPair{}, apperr.Unauthorized("the code you entered is incorrect").WithCode(apperr.CodeOTPIncorrect)
	}

	if user.OTP.ExpiresAt == nil || s.now().After(*user.OTP.ExpiresAt) {
		return utils.TokenPair{}, apperr.Unauthorized("the code has expired").WithCode(apperr.CodeOTPExpired)
	}

	// single use: clear only if the stored hash is still the one we checked
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND otp_code_hash = ?", user.ID, user.OTP.CodeHash).
		Updates(map[string]interface{}{"otp_code_hash": "", "otp_expires_at": nil})
	if res.Error != nil {
		return utils.TokenPair{}, res.Error
	}
	if res.RowsAffected == 0 {
		return utils.TokenPair{}, apperr.Unauthorized("the code you entered is incorrect").WithCode(apperr.CodeOTPIncorrect)
	}

	return s.issue(user.ID)
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (utils.TokenPair, error) {
	if refreshToken == "" {
		return utils.TokenPair{}, apperr.Unauthorized("refresh token was not provided")
	}

	userID, err := utils.ParseToken(s.cfg.JWTSecret, refreshToken, utils.RefreshToken)
	if err != nil {
		return utils.TokenPair{}, apperr.Unauthorized("invalid token").WithCode(apperr.CodeJWTExpired)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return utils.TokenPair{}, err
	}
	if count == 0 {
		return utils.TokenPair{}, apperr.Unauthorized("user no longer exists")
	}

	return s.issue(userID)
}

func (s *AuthService) issue(userID uuid.UUID) (utils.TokenPair, error) {
	pair, err := utils.IssuePair(s.cfg.JWTSecret, userID, s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL)
	if err != nil {
		return utils.TokenPair{}, apperr.Internal(err, "failed to generate token")
	}
	return pair, nil
}

func (s *AuthService) newOTP() (*IssuedOTP, models.OTP, error) {
	code, err := utils.GenerateOTP()
	if err != nil {
		return nil, models.OTP{}, apperr.Internal(err, "failed to generate verification code")
	}
	hash, err := utils.HashSecret(code, s.cfg.BcryptCost)
	if err != nil {
		return nil, models.OTP{}, apperr.Internal(err, "failed to generate verification code")
	}

	expiresAt := s.now().Add(s.cfg.OTPTTL)
	return &IssuedOTP{Code: code, ExpiresAt: expiresAt}, models.OTP{CodeHash: hash, ExpiresAt: &expiresAt}, nil
}

func (s *AuthService) dispatch(ctx context.Context, phoneNumber string, issued *IssuedOTP) {
	if s.sender == nil {
		return
	}
	if err := s.sender.Send(ctx, phoneNumber, issued.Code, issued.ExpiresAt); err != nil {
		s.log.Warn("otp delivery failed", zap.String("phone", MaskPhone(phoneNumber)), zap.Error(err))
	}
}
