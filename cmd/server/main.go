package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // Loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/sendtags/checkout/internal/checkout"   // Payment confirmation core
    "github.com/sendtags/checkout/internal/config"     // Internal config loader
    "github.com/sendtags/checkout/internal/database"   // Postgres connection pool
    "github.com/sendtags/checkout/internal/handler"    // HTTP handlers
    "github.com/sendtags/checkout/internal/middleware" // Rate limiting and caching
    "github.com/sendtags/checkout/internal/queue"      // Confirmed-tags consumer
    "github.com/sendtags/checkout/internal/repository" // Data access layer
    "github.com/sendtags/checkout/internal/router"     // Route registration
)

func main() {
    // A missing .env is fine in production where variables come from the
    // environment directly.
    if err := godotenv.Load(); err != nil {
        log.Println("no .env file found, relying on environment")
    }

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil when Redis is not configured

    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)
    tagRepo := repository.NewTagRepo(db)
    receiptRepo := repository.NewReceiptRepo(db)

    // The lookup retries against the indexed event feed with a fixed delay;
    // the service wires it to the tag store and the length-based price table.
    lookup := checkout.NewLookup(receiptRepo, checkout.RetryPolicy{
        Delay:       cfg.ReceiptRetryDelay,
        MaxAttempts: cfg.ReceiptRetryAttempts,
    })
    confirm := checkout.NewService(tagRepo, lookup, nil)

    authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
    tagHandler := handler.NewTagHandler(tagRepo, confirm)

    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    // Consume confirmation events in the background; the consumer reconnects
    // on broker failures and never blocks request handling.
    go func() {
        if err := queue.StartConfirmedConsumer(); err != nil {
            log.Printf("queue consumer: %v", err)
        }
    }()

    e := echo.New() // Create Echo instance
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterTags(e, tagHandler, cfg.JWTSecret, limiter, cache)

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err) // Log and exit if server fails
    }
}
