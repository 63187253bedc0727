package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/ledger/internal/command"
	"github.com/eaglebank/ledger/internal/config"
	"github.com/eaglebank/ledger/internal/handler"
	"github.com/eaglebank/ledger/internal/query"
	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/migrations"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/middleware"
	redisClient "github.com/eaglebank/ledger/shared/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Write store
	var store repository.Store
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)

		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		if cfg.DBMigrate {
			if err := migrations.Apply(context.Background(), db); err != nil {
				log.Fatalf("Failed to apply schema: %v", err)
			}
		}
		store = repository.NewPostgresStore(db, repository.PostgresConfig{
			TxRetries:   cfg.DBTxRetries,
			LockTimeout: cfg.DBLockTimeout,
		})
	case config.DriverMemory:
		log.Println("Using in-memory store; data is lost on restart")
		store = repository.NewMemoryStore()
	}

	// Redis connection (read model cache + event streaming), optional
	var (
		rdb       *goredis.Client
		publisher events.Emitter = events.NopPublisher{}
	)
	if cfg.RedisAddr != "" {
		redis, err := redisClient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redis.Close()
		rdb = redis.Client
		publisher = events.NewPublisher(rdb)
	} else {
		log.Println("REDIS_ADDR not set; read-model cache and event streams disabled")
	}

	// --- CQRS wiring ---
	customerViews := repository.NewCustomerReadRepository(store, rdb, cfg.CacheTTL)
	accountViews := repository.NewAccountReadRepository(store, rdb, cfg.CacheTTL)
	transactionViews := repository.NewTransactionReadRepository(store, rdb)

	customerCmds := command.NewCustomerCommandService(store, customerViews, accountViews, publisher)
	accountCmds := command.NewAccountCommandService(store, accountViews, customerViews, publisher)
	transactionCmds := command.NewTransactionCommandService(store, transactionViews, accountViews, publisher)

	routes := &handler.Routes{
		Auth: handler.NewAuthHandler(query.NewAuthQueryService(query.AuthConfig{
			OperatorEmail: cfg.OperatorEmail,
			PasswordHash:  cfg.OperatorPasswordHash,
			Secret:        []byte(cfg.JWTSecret),
			TokenTTL:      cfg.JWTTTL,
		})),
		Customers:    handler.NewCustomerHandler(customerCmds, query.NewCustomerQueryService(customerViews)),
		Accounts:     handler.NewAccountHandler(accountCmds, query.NewAccountQueryService(accountViews)),
		Transactions: handler.NewTransactionHandler(transactionCmds, query.NewTransactionQueryService(transactionViews)),
	}
	if cfg.OperatorPasswordHash == "" {
		log.Println("OPERATOR_PASSWORD_HASH not set; operator login is disabled")
	}

	// Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware(), middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": cfg.StorageDriver})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	routes.Register(router, middleware.AuthMiddleware([]byte(cfg.JWTSecret)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Second-pass cache eviction: account events refresh customer and account
	// views, balance events refresh account views.
	if rdb != nil {
		hostname, _ := os.Hostname()
		subscriptions := map[string]events.Handler{
			events.AccountEventsStream:     events.Handlers(customerCmds.HandleAccountEvent, accountCmds.HandleAccountViewEvent),
			events.TransactionEventsStream: accountCmds.HandleAccountViewEvent,
		}
		for stream, handle := range subscriptions {
			subscriber := events.NewSubscriber(rdb, events.SubscriberConfig{
				Group:    "ledger-service-group",
				Consumer: "ledger-consumer-" + hostname,
				Stream:   stream,
				Handler:  handle,
			})
			go func() {
				if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("Subscriber stopped: %v", err)
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Ledger service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
