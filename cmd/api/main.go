package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemstock-api/internal/cache"
	"gemstock-api/internal/config"
	"gemstock-api/internal/handler"
	"gemstock-api/internal/middleware"
	"gemstock-api/internal/repository"
	"gemstock-api/internal/router"
	"gemstock-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting GemStock API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize print store based on config
	var store repository.Store
	switch cfg.PrintDB.Type {
	case "postgres", "postgresql":
		pgStore, err := repository.NewPostgresStore(cfg.PrintDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL print store: %v", err)
		}
		store = pgStore
		log.Println("PostgreSQL print store initialized")
	default: // sqlite
		sqliteStore, err := repository.NewSQLiteStore(cfg.PrintDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite print store: %v", err)
		}
		store = sqliteStore
		log.Println("SQLite print store initialized")
	}
	defer store.Close()

	// Initialize MySQL connection for the central user directory (optional).
	// When unavailable the print store's own users table serves lookups.
	var userDir repository.UserDirectory = store
	var mysqlDB *sql.DB
	if cfg.UserDB.Enabled {
		db, err := sql.Open("mysql", cfg.UserDB.DSN())
		if err != nil {
			log.Printf("Warning: MySQL connection failed: %v", err)
		} else {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)

			if err := db.Ping(); err != nil {
				log.Printf("Warning: MySQL ping failed: %v", err)
				db.Close()
			} else {
				mysqlDB = db
				userDir = repository.NewMySQLUserDirectory(db)
				log.Println("MySQL user directory initialized")
			}
		}
	}
	if mysqlDB != nil {
		defer mysqlDB.Close()
	}

	// Initialize the shared label cart
	var cart cache.Cart = cache.NewMemoryCart()
	var redisClient *redis.Client
	if cfg.Cache.Type == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed, using in-memory cart: %v", err)
			redisClient = nil
		} else {
			cart = cache.NewRedisCart(redisClient)
			log.Println("Redis cart initialized")
		}
		cancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	skuGen := service.NewSKUGenerator(cfg.Label.SuffixPadding, cfg.Label.FallbackCode)
	inventoryService := service.NewInventoryService(store, skuGen)
	printJobService := service.NewPrintJobService(
		store, store, userDir, cart,
		service.MissingItemPolicy(cfg.Label.MissingItemPolicy),
	)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	printJobHandler := handler.NewPrintJobHandler(printJobService)
	cartHandler := handler.NewCartHandler(cart)
	priceCodeHandler := handler.NewPriceCodeHandler()
	adminHandler := handler.NewAdminHandler(store, userDir, cfg.PrintDB.Type)

	// Create auth middleware with injected dependencies
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{})

	// Readiness probes for the print store and, when configured, Redis
	readyChecks := []handler.ReadyCheckFunc{
		func() handler.Check {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := store.GetStats(ctx); err != nil {
				return handler.Check{Name: "print_store", Status: "error"}
			}
			return handler.Check{Name: "print_store", Status: "ok"}
		},
	}
	if redisClient != nil {
		readyChecks = append(readyChecks, func() handler.Check {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return handler.Check{Name: "redis", Status: "error"}
			}
			return handler.Check{Name: "redis", Status: "ok"}
		})
	}

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		InventoryHandler: inventoryHandler,
		PrintJobHandler:  printJobHandler,
		CartHandler:      cartHandler,
		PriceCodeHandler: priceCodeHandler,
		AdminHandler:     adminHandler,
		AuthMiddleware:   authMiddleware,
		ReadyChecks:      readyChecks,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
