package main

import (
	"context"  // Context for shutdown and Redis operations
	"errors"   // Error checks on shutdown
	"net/http" // HTTP server
	"os"       // Signal handling
	"os/signal"
	"syscall"
	"time"

	"github.com/Aditeya/smpl-payments/internal/api"        // Custom package for API handlers
	"github.com/Aditeya/smpl-payments/internal/config"     // Custom package for configuration
	"github.com/Aditeya/smpl-payments/internal/ledger"     // Ledger engine
	"github.com/Aditeya/smpl-payments/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Bound the shared connection pool; one pooled connection serves one
	// ledger operation at a time
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to access DB pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// The ledger engine is the only component talking to the store
	eng := ledger.New(db, logrus.StandardLogger())

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/sign_up", api.RegisterHandler(eng))            // Sign up endpoint
	r.POST("/sign_in", api.LoginHandler(eng, cfg.JWTSecret)) // Sign in endpoint

	// Authenticated routes
	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	auth.GET("/profile", api.GetProfileHandler(eng))    // Get profile endpoint
	auth.PUT("/profile", api.UpdateProfileHandler(eng)) // Update profile endpoint

	auth.POST("/wallet", api.CreateWalletHandler(eng))                    // Create wallet endpoint
	auth.GET("/wallet", api.GetWalletHandler(eng, redisClient))           // Get wallet endpoint
	auth.POST("/wallet/deposit", api.DepositHandler(eng, redisClient))    // Deposit endpoint
	auth.POST("/wallet/withdraw", api.WithdrawHandler(eng, redisClient))  // Withdraw endpoint

	auth.POST("/transactions", api.TransferHandler(eng, redisClient))                  // Transfer endpoint
	auth.GET("/transactions", api.GetTransactionHistoryHandler(eng, redisClient))      // Transaction history endpoint
	auth.GET("/transactions/:id", api.GetTransactionHandler(eng))                      // Single transaction endpoint

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logrus.Info("Server running on " + cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown: outstanding transfers finish or roll back with
	// their request contexts before the process exits
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
}
