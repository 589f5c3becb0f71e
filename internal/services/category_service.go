package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// CategoryWithCount is a category together with how many products it holds.
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"productCount"`
}

// CategoryList is one page of categories plus catalogue wide totals.
type CategoryList struct {
	Categories      []CategoryWithCount
	TotalCategories int64
}

// CategoryService manages product categories.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns categories whose name contains search.
func (s *CategoryService) List(ctx context.Context, search string, pg utils.Pagination) (*CategoryList, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, err
	}

	query := db.Model(&models.Category{}).Order("created_at desc")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where(likeClause("name"), likePattern(search))
	}

	var categories []models.Category
	if err := paginate(query, pg).Find(&categories).Error; err != nil {
		return nil, err
	}

	counts, err := s.productCounts(db, categories)
	if err != nil {
		return nil, err
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		result = append(result, CategoryWithCount{Category: category, ProductCount: counts[category.ID]})
	}

	return &CategoryList{Categories: result, TotalCategories: total}, nil
}

// Create adds a category with a unique name.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	db := s.db.WithContext(ctx)

	taken, err := s.nameTaken(db, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("a category with this name already exists")
	}

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a category with this name already exists")
		}
		return nil, err
	}
	return &category, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	db := s.db.WithContext(ctx)

	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category not found")
		}
		return nil, err
	}

	taken, err := s.nameTaken(db, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("a category with this name already exists")
	}

	if err := db.Model(&category).Update("name", name).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a category with this name already exists")
		}
		return nil, err
	}
	return &category, nil
}

// Delete removes a category. Products still in it are moved to replacementID
// in the same transaction; without a replacement a non-empty category cannot
// be deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, replacementID *uuid.UUID) error {
	if replacementID != nil && *replacementID == id {
		return apperr.BadRequest("the replacement category must differ from the deleted one")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("category not found")
			}
			return err
		}

		if replacementID != nil {
			var replacement models.Category
			if err := tx.First(&replacement, "id = ?", *replacementID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("replacement category not found")
				}
				return err
			}
			if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
				Update("category_id", replacement.ID).Error; err != nil {
				return err
			}
		} else {
			var products int64
			if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
				return err
			}
			if products > 0 {
				return apperr.BadRequest("this category still has products; provide newCategoryId to move them")
			}
		}

		return tx.Delete(&category).Error
	})
}

func (s *CategoryService) nameTaken(db *gorm.DB, name string, exceptID uuid.UUID) (bool, error) {
	query := db.Model(&models.Category{}).Where("name = ?", name)
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CategoryService) productCounts(db *gorm.DB, categories []models.Category) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(categories))
	if len(categories) == 0 {
		return counts, nil
	}

	ids := make([]uuid.UUID, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, category.ID)
	}

	var rows []struct {
		CategoryID uuid.UUID
		Total      int64
	}
	if err := db.Model(&models.Product{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}

// likeClause matches col case-insensitively against a likePattern argument.
func likeClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
}

// likePattern builds a lower-cased substring pattern with LIKE wildcards escaped.
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(search)) + "%"
}

func paginate(query *gorm.DB, pg utils.Pagination) *gorm.DB {
	query = query.Offset(pg.Skip)
	if !pg.IsUnlimited() {
		query = query.Limit(pg.Limit)
	}
	return query
}
