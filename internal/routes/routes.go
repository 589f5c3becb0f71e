package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// Deps carries the shared handles the routes are built from.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Log     *zap.Logger
	Redis   *redis.Client
	Storage services.ObjectStorage
	OTP     services.OTPSender
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	cfg := deps.Config

	authService := services.NewAuthService(deps.DB, cfg, deps.OTP, deps.Log)
	categoryService := services.NewCategoryService(deps.DB)
	productService := services.NewProductService(deps.DB, deps.Storage, deps.Log)
	cartService := services.NewCartService(deps.DB)
	addressService := services.NewAddressService(deps.DB)
	orderService := services.NewOrderService(deps.DB)
	userService := services.NewUserService(deps.DB)

	authHandler := handlers.NewAuthHandler(authService, cfg)
	profileHandler := handlers.NewProfileHandler()
	catalogHandler := handlers.NewCatalogHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(userService)

	requireUser := middleware.RequireUser(deps.DB, cfg)
	requireAdmin := middleware.RequireAdmin(deps.DB, cfg)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes
	var limiter fiber.Handler = func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimit.Enabled {
		limiter = middleware.RateLimiter(deps.Redis, cfg.RateLimit.Max, cfg.RateLimit.Window, cfg.RateLimit.Block, "auth", deps.Log)
	}
	auth := app.Group("/auth", limiter)
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/check-otp", authHandler.CheckOTP)
	auth.Post("/refresh-token", authHandler.RefreshToken)

	profile := app.Group("/profile", requireUser)
	profile.Get("/get-me", profileHandler.GetMe)

	products := app.Group("/products")
	products.Get("/", productHandler.List)

	cart := app.Group("/cart", requireUser)
	cart.Get("/", cartHandler.Get)
	cart.Post("/add/:productId", cartHandler.Add)
	cart.Post("/decrease/:productId", cartHandler.Decrease)
	cart.Delete("/remove/:cartItemId", cartHandler.Remove)

	addresses := app.Group("/user/addresses", requireUser)
	addresses.Get("/", addressHandler.List)
	addresses.Post("/create", addressHandler.Create)
	addresses.Put("/update/:addressId", addressHandler.Update)
	addresses.Delete("/remove/:addressId", addressHandler.Remove)

	// Admin routes
	admin := app.Group("/admin", requireAdmin)

	imageUpload := func(required bool) fiber.Handler {
		return middleware.UploadPermission(middleware.UploadOptions{
			FieldName:   "image",
			Required:    required,
			MaxFiles:    1,
			MaxFileSize: cfg.MaxUploadSize,
			FileTypes:   middleware.AcceptedImageTypes,
		})
	}

	adminProducts := admin.Group("/products")
	adminProducts.Get("/", productHandler.AdminList)
	adminProducts.Post("/create", imageUpload(true), productHandler.Create)
	adminProducts.Put("/update/:id", imageUpload(false), productHandler.Update)
	adminProducts.Delete("/delete/:id", productHandler.Delete)
	adminProducts.Patch("/change-is-active/:id", productHandler.ChangeIsActive)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/", adminHandler.ListUsers)
	adminUsers.Put("/edit/:id", adminHandler.EditUser)

	adminCategories := admin.Group("/categories")
	adminCategories.Get("/", catalogHandler.ListCategories)
	adminCategories.Post("/create", catalogHandler.CreateCategory)
	adminCategories.Put("/update/:id", catalogHandler.UpdateCategory)
	adminCategories.Delete("/delete/:id", catalogHandler.DeleteCategory)

	adminOrders := admin.Group("/orders")
	adminOrders.Get("/", orderHandler.AdminList)
	adminOrders.Patch("/change-status/:id", orderHandler.ChangeStatus)

	app.Use(handlers.NotFound)
}
