package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database/databasetest"
	"github.com/example/storefront/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		OTPTTL:          2 * time.Minute,
		BcryptCost:      bcrypt.MinCost,
	}
}

type fakeStorage struct {
	mu         sync.Mutex
	uploaded   []string
	deleted    []string
	failUpload bool
}

func (f *fakeStorage) Upload(_ context.Context, dir, name, _ string, body io.Reader, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", errors.New("storage unavailable")
	}
	if body != nil {
		_, _ = io.Copy(io.Discard, body)
	}
	url := "https://shop.storage.test/" + ObjectKey(dir, name, time.Now())
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type sentOTP struct {
	phone string
	code  string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentOTP
	err  error
}

func (f *fakeSender) Send(_ context.Context, phone, code string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentOTP{phone: phone, code: code})
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, fullName, phone string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{FullName: fullName, PhoneNumber: phone, Role: role}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Cart{UserID: user.ID}).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, categoryID uuid.UUID) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
		Image:      "https://shop.storage.test/products-image/" + name + ".png",
		IsActive:   true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:      userID,
		Province:    "Tehran",
		City:        "Tehran",
		Address:     "Valiasr street, alley 12",
		PhoneNumber: "09120000000",
		HouseNumber: 12,
		Floor:       3,
		Unit:        7,
		PostalCode:  "1234567890",
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

type orderLine struct {
	product  *models.Product
	quantity int
}

func seedOrder(t *testing.T, db *gorm.DB, userID, addressID uuid.UUID, status models.OrderStatus, lines ...orderLine) *models.Order {
	t.Helper()
	order := &models.Order{UserID: userID, AddressID: addressID, Status: status}
	for _, line := range lines {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			UnitPrice: line.product.Price,
		})
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, appErr.Message)
	return appErr
}

func newTestDB(t *testing.T) *gorm.DB {
	return databasetest.NewTestDB(t)
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
