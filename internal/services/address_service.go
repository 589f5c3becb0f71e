package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
)

// AddressInput is a fully validated address payload.
type AddressInput struct {
	Province    string
	City        string
	Address     string
	PhoneNumber string
	HouseNumber int
	Floor       int
	Unit        int
	PostalCode  string
}

// AddressService manages a user's shipping addresses.
type AddressService struct {
	db *gorm.DB
}

// NewAddressService constructs AddressService.
func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// List returns the user's addresses, oldest first.
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Create adds an address unless the user already holds the maximum.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error) {
	address := models.Address{UserID: userID}
	applyAddress(&address, input)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serialize concurrent creates for the same user
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&owner, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxAddressesPerUser {
			return apperr.BadRequest("you cannot register more than %d addresses", models.MaxAddressesPerUser)
		}

		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Update overwrites an owned address that no open order depends on.
func (s *AddressService) Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.Address, error) {
	var address models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned, err := s.ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := s.ensureNoOpenOrders(tx, owned.ID); err != nil {
			return err
		}

		applyAddress(owned, input)
		if err := tx.Save(owned).Error; err != nil {
			return err
		}
		address = *owned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Remove deletes an owned address that no open order depends on.
func (s *AddressService) Remove(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned, err := s.ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := s.ensureNoOpenOrders(tx, owned.ID); err != nil {
			return err
		}
		return tx.Delete(owned).Error
	})
}

// ownedAddress reports a foreign address exactly like a missing one.
func (s *AddressService) ownedAddress(tx *gorm.DB, userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("address not found")
		}
		return nil, err
	}
	return &address, nil
}

func (s *AddressService) ensureNoOpenOrders(tx *gorm.DB, addressID uuid.UUID) error {
	var open int64
	if err := tx.Model(&models.Order{}).
		Where("address_id = ? AND status NOT IN ?", addressID, models.TerminalOrderStatuses).
		Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return apperr.BadRequest("this address is used by an order that is still in progress")
	}
	return nil
}

func applyAddress(address *models.Address, input AddressInput) {
	address.Province = input.Province
	address.City = input.City
	address.Address = input.Address
	address.PhoneNumber = input.PhoneNumber
	address.HouseNumber = input.HouseNumber
	address.Floor = input.Floor
	address.Unit = input.Unit
	address.PostalCode = input.PostalCode
}
