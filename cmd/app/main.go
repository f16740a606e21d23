package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"storefront-backend/internal/address"
	"storefront-backend/internal/bestseller"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/config"
	"storefront-backend/internal/order"
	"storefront-backend/internal/product"
	"storefront-backend/internal/user"
	"storefront-backend/internal/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	mustBootstrapSchema(db)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService)

	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo)
	cartHandler := cart.NewHandler(cartService)

	addressRepo := address.NewPostgresRepository(db)
	addressService := address.NewService(addressRepo)
	addressHandler := address.NewHandler(addressService)

	// the checkout consumes the catalog, the cart and the address book
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, productService, cartService, addressService, cfg.CODShippingFee)
	orderHandler := order.NewHandler(orderService)

	wishlistHandler := wishlist.NewHandler(wishlist.NewService(wishlist.NewPostgresRepository(db), productService))
	bestsellerHandler := bestseller.NewHandler(bestseller.NewService(bestseller.NewPostgresRepository(db)))

	// public routes are registered before the jwt middleware
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	wishlistHandler.RegisterProtectedRoutes(app)
	bestsellerHandler.RegisterProtectedRoutes(app)

	log.Printf("starting server on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	return db
}

func mustBootstrapSchema(db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			first_name TEXT,
			last_name TEXT,
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			blocked BOOLEAN NOT NULL DEFAULT FALSE,
			cart jsonb NOT NULL DEFAULT '{}',
			wishlist integer[] NOT NULL DEFAULT ARRAY[]::integer[],
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS product (
			product_id SERIAL PRIMARY KEY,
			product_name TEXT NOT NULL,
			product_desc TEXT,
			category TEXT,
			brand TEXT,
			product_price double precision NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			product_pic TEXT,
			product_pic_second TEXT,
			tags text[] NOT NULL DEFAULT ARRAY[]::text[],
			rating double precision NOT NULL DEFAULT 0,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			reference TEXT UNIQUE NOT NULL,
			user_id INT NOT NULL,
			items jsonb NOT NULL DEFAULT '[]',
			subtotal double precision NOT NULL DEFAULT 0,
			shipping_fee double precision NOT NULL DEFAULT 0,
			total double precision NOT NULL DEFAULT 0,
			shipping_address jsonb NOT NULL DEFAULT '{}',
			payment_method TEXT NOT NULL,
			payment_details jsonb NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'processing',
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS address (
			address_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			recipient_name TEXT,
			phone TEXT,
			line1 TEXT,
			city TEXT,
			postal_code TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("bootstrap schema: %v", err)
		}
	}
}
