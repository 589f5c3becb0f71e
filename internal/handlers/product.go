package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// ProductHandler serves the public catalogue and product administration.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Name        string `json:"name" form:"name" validate:"required,min=4,max=35"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price" validate:"required,number"`
	CategoryID  string `json:"categoryId" form:"categoryId" validate:"required,uuid"`
}

type updateProductRequest struct {
	Name        string  `json:"name" form:"name" validate:"omitempty,min=4,max=35"`
	Description *string `json:"description" form:"description"`
	Price       string  `json:"price" form:"price" validate:"omitempty,number"`
	CategoryID  string  `json:"categoryId" form:"categoryId" validate:"omitempty,uuid"`
}

type changeIsActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// List returns active products for shoppers.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, false)
	products, err := h.products.PublicList(c.UserContext(), c.Query("search"), pg)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"products": products,
		"skip":     pg.Skip,
		"limit":    pg.LimitValue(),
	})
}

// AdminList returns products with their sales figures.
func (h *ProductHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, false)
	list, err := h.products.AdminList(c.UserContext(), c.Query("search"), pg)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"products": list.Products,
		"skip":     pg.Skip,
		"limit":    pg.LimitValue(),
		"metadata": fiber.Map{
			"totalProducts":     list.TotalProducts,
			"totalSoldProducts": list.TotalSoldProducts,
			"totalSalesAmount":  list.TotalSalesAmount,
		},
	})
}

// Create adds a product. UploadPermission must run first.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return err
	}
	categoryID, err := parseCategoryID(req.CategoryID)
	if err != nil {
		return err
	}

	image, closeImage, err := openUpload(middleware.UploadedFiles(c))
	if err != nil {
		return err
	}
	defer closeImage()

	product, err := h.products.Create(c.UserContext(), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		CategoryID:  categoryID,
	}, image)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, fiber.Map{
		"message": "product created successfully",
		"product": product,
	})
}

// Update changes a product; fields left empty keep their value.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	// a present but empty description clears it
	patch := services.ProductPatch{Description: req.Description}
	if req.Name != "" {
		patch.Name = &req.Name
	}
	if req.Price != "" {
		price, err := parsePrice(req.Price)
		if err != nil {
			return err
		}
		patch.Price = &price
	}
	if req.CategoryID != "" {
		categoryID, err := parseCategoryID(req.CategoryID)
		if err != nil {
			return err
		}
		patch.CategoryID = &categoryID
	}

	image, closeImage, err := openUpload(middleware.UploadedFiles(c))
	if err != nil {
		return err
	}
	defer closeImage()

	product, err := h.products.Update(c.UserContext(), id, patch, image)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "product updated successfully",
		"product": product,
	})
}

// Delete removes a product that has never been sold.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "product deleted successfully")
}

// ChangeIsActive shows or hides a product in the public catalogue.
func (h *ProductHandler) ChangeIsActive(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req changeIsActiveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.products.ChangeIsActive(c.UserContext(), id, *req.IsActive); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "product status changed successfully")
}

func parsePrice(raw string) (int64, error) {
	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || price < 0 {
		return 0, apperr.Validation(map[string]string{"price": "price must be a whole number"})
	}
	return price, nil
}

func parseCategoryID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(map[string]string{"categoryId": "categoryId must be a valid id"})
	}
	return id, nil
}

// openUpload opens the first accepted file. The returned func closes it.
func openUpload(files []*multipart.FileHeader) (*services.ImageUpload, func(), error) {
	if len(files) == 0 {
		return nil, func() {}, nil
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperr.Internal(err, "failed to read the uploaded file")
	}

	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, nil
}
