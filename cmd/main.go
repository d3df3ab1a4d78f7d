package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	_ "github.com/joho/godotenv/autoload"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"grocery-store/internal/api"
	"grocery-store/internal/config"
	"grocery-store/internal/consumer"
	"grocery-store/internal/entity"
	"grocery-store/internal/events"
	"grocery-store/internal/notifier"
	"grocery-store/internal/repository"
	"grocery-store/internal/service"
	"grocery-store/migrations"
)

func connectDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		getenv("DB_USER", "root"),
		os.Getenv("DB_PASS"),
		getenv("DB_HOST", "127.0.0.1"),
		getenv("DB_PORT", "3306"),
		getenv("DB_NAME", "grocery-db"),
	)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				return db, nil
			}
		}
		log.Printf("Retry %d: failed to connect to DB: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB after retries: %v", err)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func pricingFromEnv() entity.PricingConfig {
	defaults := entity.DefaultPricing()
	return entity.PricingConfig{
		TaxRate:               getenvFloat("TAX_RATE", defaults.TaxRate),
		FreeShippingThreshold: getenvFloat("FREE_SHIPPING_THRESHOLD", defaults.FreeShippingThreshold),
		FlatShippingFee:       getenvFloat("SHIPPING_FEE", defaults.FlatShippingFee),
	}
}

func main() {
	db, err := connectDB()
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrate(db, 3); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: getenv("REDIS_ADDR", "localhost:6379"),
	})

	jwtSecret := []byte(getenv("JWT_SECRET", "secret"))
	pricing := pricingFromEnv()

	orderWriter := config.NewKafkaWriter(config.OrderTopic)
	notificationWriter := config.NewKafkaWriter(config.NotificationTopic)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	userRepo := repository.NewUserRepository(db)

	orderService := service.NewOrderService(
		productRepo, orderRepo, cartRepo, userRepo,
		notifier.NewKafkaNotifier(notificationWriter),
		events.NewKafkaPublisher(orderWriter),
		rdb, pricing,
	)
	productService := service.NewProductService(productRepo, rdb)
	cartService := service.NewCartService(cartRepo, productRepo, pricing)
	userService := service.NewUserService(userRepo, rdb, jwtSecret)

	orderHandler := api.NewOrderHandler(orderService)
	productHandler := api.NewProductHandler(productService)
	cartHandler := api.NewCartHandler(cartService)
	userHandler := api.NewUserHandler(userService)

	if err := productService.PreWarmCache(context.Background()); err != nil {
		log.Printf("Cache warmup failed: %v", err)
	}

	notificationConsumer := consumer.NewConsumer(config.NewKafkaReader(config.NotificationTopic, "notification-group"))
	go notificationConsumer.Run(context.Background())

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	// Public routes
	e.POST("/register", userHandler.Register)
	e.POST("/login", userHandler.Login)
	e.GET("/products", productHandler.ListProducts)
	e.GET("/products/:id", productHandler.GetProduct)
	e.GET("/products/:id/stock", productHandler.GetProductStock)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "grocery-store",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Authenticated routes
	auth := e.Group("")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: jwtSecret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
	}))

	auth.GET("/me", userHandler.Me)

	auth.GET("/cart", cartHandler.GetCart)
	auth.POST("/cart/items", cartHandler.AddItem)
	auth.PUT("/cart/items/:productId", cartHandler.UpdateItem)
	auth.DELETE("/cart/items/:productId", cartHandler.RemoveItem)

	auth.POST("/orders", orderHandler.CreateOrder)
	auth.GET("/orders", orderHandler.ListOrders)
	auth.GET("/orders/:id", orderHandler.GetOrder)
	auth.DELETE("/orders/:id", orderHandler.CancelOrder)
	auth.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

	auth.POST("/products", productHandler.CreateProduct)
	auth.PUT("/products/:id", productHandler.UpdateProduct)

	e.Logger.Fatal(e.Start(":" + getenv("PORT", "8080")))
}
