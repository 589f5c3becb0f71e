package databasetest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/storefront/internal/models"
)

func TestNewTestDBIsMigrated(t *testing.T) {
	db := NewTestDB(t)

	for _, model := range []interface{}{
		&models.User{}, &models.Category{}, &models.Product{}, &models.Cart{},
		&models.CartItem{}, &models.Address{}, &models.Order{}, &models.OrderItem{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasColumn(&models.User{}, "otp_code_hash"))
	assert.True(t, db.Migrator().HasIndex(&models.CartItem{}, "idx_cart_items_cart_product"))
}
