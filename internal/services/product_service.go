package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// ProductInput carries the fields required to create a product.
type ProductInput struct {
	Name        string
	Description string
	Price       int64
	CategoryID  uuid.UUID
}

// ProductPatch carries optional changes; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *int64
	CategoryID  *uuid.UUID
}

// ImageUpload is a single file taken from a multipart request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProductWithSales decorates a product with its order-item aggregates.
type ProductWithSales struct {
	models.Product
	TotalQuantitySold int64 `json:"totalQuantitySold"`
	TotalSalesAmount  int64 `json:"totalSalesAmount"`
}

// ProductList is one admin page of products plus store wide totals.
type ProductList struct {
	Products          []ProductWithSales
	TotalProducts     int64
	TotalSoldProducts int64
	TotalSalesAmount  int64
}

type salesRow struct {
	ProductID uuid.UUID
	Quantity  int64
	Amount    int64
}

// ProductService manages the product catalogue.
type ProductService struct {
	db      *gorm.DB
	storage ObjectStorage
	log     *zap.Logger
}

// NewProductService constructs ProductService.
func NewProductService(db *gorm.DB, storage ObjectStorage, log *zap.Logger) *ProductService {
	return &ProductService{db: db, storage: storage, log: log}
}

// AdminList returns products matching search by product or category name,
// newest first, each with its sold quantity and sales amount.
func (s *ProductService) AdminList(ctx context.Context, search string, pg utils.Pagination) (*ProductList, error) {
	db := s.db.WithContext(ctx)
	list := &ProductList{}

	if err := db.Model(&models.Product{}).Count(&list.TotalProducts).Error; err != nil {
		return nil, err
	}

	var totals struct {
		Quantity int64
		Amount   int64
	}
	if err := db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(quantity * unit_price), 0) AS amount").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	list.TotalSoldProducts = totals.Quantity
	list.TotalSalesAmount = totals.Amount

	query := db.Model(&models.Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category").
		Order("products.created_at desc")
	if search = strings.TrimSpace(search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			db.Where(likeClause("products.name"), pattern).Or(likeClause("categories.name"), pattern),
		)
	}

	var products []models.Product
	if err := paginate(query, pg).Find(&products).Error; err != nil {
		return nil, err
	}

	sales, err := s.salesByProduct(db, products)
	if err != nil {
		return nil, err
	}

	list.Products = make([]ProductWithSales, 0, len(products))
	for _, product := range products {
		row := sales[product.ID]
		list.Products = append(list.Products, ProductWithSales{
			Product:           product,
			TotalQuantitySold: row.Quantity,
			TotalSalesAmount:  row.Amount,
		})
	}
	return list, nil
}

// PublicList returns active products whose name contains search.
func (s *ProductService) PublicList(ctx context.Context, search string, pg utils.Pagination) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Category").
		Where("is_active = ?", true).
		Order("created_at desc")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where(likeClause("name"), likePattern(search))
	}

	products := make([]models.Product, 0)
	if err := paginate(query, pg).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create stores the image and then inserts the product. The uploaded object
// is removed again if the insert fails.
func (s *ProductService) Create(ctx context.Context, input ProductInput, image *ImageUpload) (*models.Product, error) {
	db := s.db.WithContext(ctx)

	if err := s.ensureUniqueName(db, input.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(db, input.CategoryID); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, apperr.BadRequest("uploading at least one file is required").WithCode(apperr.CodeNotUploadingFile)
	}

	imageURL, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Image:       imageURL,
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		s.removeObject(ctx, imageURL)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, productNameConflict()
		}
		return nil, err
	}
	return &product, nil
}

// Update applies patch and optionally swaps the image. The previous image is
// deleted only after the row has been updated.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch, image *ImageUpload) (*models.Product, error) {
	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		if err := s.ensureUniqueName(db, *patch.Name, product.ID); err != nil {
			return nil, err
		}
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.CategoryID != nil {
		if err := s.ensureCategory(db, *patch.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *patch.CategoryID
	}

	previousImage := product.Image
	var newImage string
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		newImage = url
		updates["image"] = url
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			if newImage != "" {
				s.removeObject(ctx, newImage)
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, productNameConflict()
			}
			return nil, err
		}
	}

	if newImage != "" && previousImage != "" {
		s.removeObject(ctx, previousImage)
	}

	if err := db.Preload("Category").First(&product, "id = ?", product.ID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product that has never been sold, then its image.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product not found")
			}
			return err
		}

		var sold int64
		if err := tx.Model(&models.OrderItem{}).
			Select("COALESCE(SUM(quantity), 0)").
			Where("product_id = ?", product.ID).
			Scan(&sold).Error; err != nil {
			return err
		}
		if sold > 0 {
			return apperr.BadRequest("a product that has been sold cannot be deleted")
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&product).Error; err != nil {
			return err
		}
		image = product.Image
		return nil
	})
	if err != nil {
		return err
	}

	if image != "" {
		s.removeObject(ctx, image)
	}
	return nil
}

// ChangeIsActive sets the product's active flag.
func (s *ProductService) ChangeIsActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", isActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (s *ProductService) salesByProduct(db *gorm.DB, products []models.Product) (map[uuid.UUID]salesRow, error) {
	sales := make(map[uuid.UUID]salesRow, len(products))
	if len(products) == 0 {
		return sales, nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}

	var rows []salesRow
	if err := db.Model(&models.OrderItem{}).
		Select("product_id, SUM(quantity) AS quantity, SUM(quantity * unit_price) AS amount").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		sales[row.ProductID] = row
	}
	return sales, nil
}

func (s *ProductService) ensureUniqueName(db *gorm.DB, name string, exceptID uuid.UUID) error {
	query := db.Model(&models.Product{}).Where("name = ?", name)
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return productNameConflict()
	}
	return nil
}

func (s *ProductService) ensureCategory(db *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}

func (s *ProductService) upload(ctx context.Context, image *ImageUpload) (string, error) {
	url, err := s.storage.Upload(ctx, ProductImageDir, image.Filename, image.ContentType, image.Body, image.Size)
	if err != nil || url == "" {
		return "", apperr.Internal(err, "failed to upload the product image")
	}
	return url, nil
}

func (s *ProductService) removeObject(ctx context.Context, url string) {
	if err := s.storage.Delete(ctx, url); err != nil {
		s.log.Warn("failed to delete stored image", zap.String("url", url), zap.Error(err))
	}
}

func productNameConflict() error {
	return apperr.Conflict("a product with this name already exists").WithCode(apperr.CodeProductNameExist)
}
