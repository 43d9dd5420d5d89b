package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wichananm65/grocery-delivery-backend/internal/address"
	"github.com/wichananm65/grocery-delivery-backend/internal/cart"
	"github.com/wichananm65/grocery-delivery-backend/internal/category"
	"github.com/wichananm65/grocery-delivery-backend/internal/config"
	"github.com/wichananm65/grocery-delivery-backend/internal/dispatch"
	"github.com/wichananm65/grocery-delivery-backend/internal/driver"
	"github.com/wichananm65/grocery-delivery-backend/internal/events"
	"github.com/wichananm65/grocery-delivery-backend/internal/inventory"
	"github.com/wichananm65/grocery-delivery-backend/internal/order"
	"github.com/wichananm65/grocery-delivery-backend/internal/product"
	"github.com/wichananm65/grocery-delivery-backend/internal/promotion"
	"github.com/wichananm65/grocery-delivery-backend/internal/report"
	"github.com/wichananm65/grocery-delivery-backend/internal/seed"
	"github.com/wichananm65/grocery-delivery-backend/internal/user"
)

// stores bundles one repository per aggregate.
type stores struct {
	categories category.Repository
	products   product.Repository
	users      user.Repository
	addresses  address.Repository
	promotions promotion.Repository
	orders     order.Repository
	carts      cart.Repository
	drivers    driver.Repository
}

func inMemoryStores(drivers []driver.Driver) stores {
	return stores{
		categories: category.NewInMemoryRepository(nil),
		products:   product.NewInMemoryRepository(nil),
		users:      user.NewInMemoryRepository(nil),
		addresses:  address.NewInMemoryRepository(nil),
		promotions: promotion.NewInMemoryRepository(nil),
		orders:     order.NewInMemoryRepository(nil),
		carts:      cart.NewInMemoryRepository(),
		drivers:    driver.NewInMemoryRepository(drivers),
	}
}

// postgresStores backs every aggregate except carts and drivers with
// Postgres. The driver registry has no table and stays in memory.
func postgresStores(db *sql.DB, drivers []driver.Driver) stores {
	return stores{
		categories: category.NewPostgresRepository(db),
		products:   product.NewPostgresRepository(db),
		users:      user.NewPostgresRepository(db),
		addresses:  address.NewPostgresRepository(db),
		promotions: promotion.NewPostgresRepository(db),
		orders:     order.NewPostgresRepository(db),
		carts:      cart.NewInMemoryRepository(),
		drivers:    driver.NewInMemoryRepository(drivers),
	}
}

func (st stores) withRedisCarts(rdb *redis.Client, ttl time.Duration) stores {
	st.carts = cart.NewRedisRepository(rdb, ttl)
	return st
}

func seedStores(ctx context.Context, st stores, data seed.Data) error {
	return seed.Apply(ctx, data, seed.Targets{
		Categories: st.categories,
		Products:   st.products,
		Users:      user.NewService(st.users),
		Addresses:  st.addresses,
		Promotions: st.promotions,
		Orders:     st.orders,
	})
}

// healthCheck pings an external dependency for GET /health.
type healthCheck func(ctx context.Context) error

func newApp(cfg config.Config, st stores, publisher events.Publisher, checks map[string]healthCheck) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "grocery-delivery-backend"})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	setupCORS(app)

	productService := product.NewService(st.products)
	promotionService := promotion.NewService(st.promotions)
	userService := user.NewService(st.users)
	addressService := address.NewService(st.addresses)
	driverService := driver.NewService(st.drivers, cfg.DriverCommission)
	cartService := cart.NewService(st.carts, productService, promotionService, cfg.DeliveryFee)
	inventoryService := inventory.NewService(productService, cfg.LowStockThreshold)
	orderService := order.NewService(order.Deps{
		Repo:      st.orders,
		Carts:     cartService,
		Stock:     productService,
		Drivers:   driverService,
		Addresses: addressService,
		Events:    publisher,
		ETA:       cfg.DeliveryETA,
	})
	dispatchService := dispatch.NewService(orderService, driverService)
	reportService := report.NewService(orderService, inventoryService, promotionService, dispatchService)

	userHandler := user.NewHandler(userService, cfg.JWTSecret, cfg.TokenTTL)
	orderHandler := order.NewHandler(orderService)
	dispatchHandler := dispatch.NewHandler(dispatchService)

	app.Get("/health", func(c *fiber.Ctx) error {
		for name, check := range checks {
			if err := check(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "dependency": name, "message": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	userHandler.RegisterPublicRoutes(app)
	category.NewHandler(category.NewService(st.categories)).RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	address.NewHandler(addressService).RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	driverGroup := app.Group("/api/v1/driver", user.RequireRole(user.RoleDriver))
	dispatchHandler.RegisterDriverRoutes(driverGroup)

	admin := app.Group("/api/v1/admin", user.RequireRole(user.RoleAdmin))
	orderHandler.RegisterAdminRoutes(admin)
	dispatchHandler.RegisterAdminRoutes(admin)
	inventory.NewHandler(inventoryService).RegisterAdminRoutes(admin)
	promotion.NewHandler(promotionService).RegisterAdminRoutes(admin)
	report.NewHandler(reportService).RegisterAdminRoutes(admin)

	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}
