package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
)

// CartService manages the single cart each user owns.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart with its items and their products.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("CartItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("CartItems.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart not found")
		}
		return nil, err
	}
	if cart.CartItems == nil {
		cart.CartItems = []models.CartItem{}
	}
	return &cart, nil
}

// Add puts one unit of an active product into the cart. Repeated adds bump
// the quantity of the existing row in a single statement.
func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	cart, err := s.cartOf(db, userID)
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.Product{}).Where("id = ? AND is_active = ?", productID, true).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("product not found")
	}

	item := models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: 1}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
}

// Decrease takes one unit out; the item disappears instead of reaching zero.
func (s *CartService) Decrease(ctx context.Context, userID, productID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartOf(tx, userID)
		if err != nil {
			return err
		}

		var item models.CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product is not in the cart")
			}
			return err
		}

		res := tx.Model(&models.CartItem{}).
			Where("id = ? AND quantity > 1", item.ID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		return tx.Where("id = ?", item.ID).Delete(&models.CartItem{}).Error
	})
}

// Remove deletes a cart item, provided it belongs to the caller's cart.
func (s *CartService) Remove(ctx context.Context, userID, cartItemID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	cart, err := s.cartOf(db, userID)
	if err != nil {
		return err
	}

	res := db.Where("id = ? AND cart_id = ?", cartItemID, cart.ID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}
	return nil
}

func (s *CartService) cartOf(db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart not found")
		}
		return nil, err
	}
	return &cart, nil
}
