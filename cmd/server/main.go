package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Chen-Zehua-TP/sgvmart/internal/auth"
	"github.com/Chen-Zehua-TP/sgvmart/internal/config"
	"github.com/Chen-Zehua-TP/sgvmart/internal/controller"
	"github.com/Chen-Zehua-TP/sgvmart/internal/middleware"
	"github.com/Chen-Zehua-TP/sgvmart/internal/rabbit"
	"github.com/Chen-Zehua-TP/sgvmart/internal/ratelimit"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

func main() {
	cfg := config.Load()

	// MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	db := client.Database(cfg.MongoDBName)

	store := repository.NewStore(client, db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	// Repositories and services
	carts := repository.NewMongoCartRepository(db)
	orders := repository.NewMongoOrderRepository(db)
	products := repository.NewMongoProductRepository(db)
	addresses := repository.NewMongoAddressRepository(db)

	cartService := service.NewCartService(carts, products)
	orderService := service.NewOrderService(store, carts, products, orders, addresses)
	reconService := service.NewReconciliationService(orders)

	jwtService := auth.NewJWTService(cfg.JWTSecret, 24*time.Hour)

	// Rate limiting: shared redis counters when an address is configured,
	// otherwise the process-local table with its periodic sweep.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var limitStore ratelimit.Store
	if cfg.RedisAddr != "" {
		limitStore = ratelimit.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		mem := ratelimit.NewMemoryStore()
		go mem.RunSweeper(appCtx, 10*time.Minute)
		limitStore = mem
	}

	generalLimiter := ratelimit.NewLimiter(limitStore, "general-api", time.Minute, 100)
	orderLimiter := ratelimit.NewLimiter(limitStore, "order-create", time.Minute, 10)
	migrateLimiter := ratelimit.NewLimiter(limitStore, "order-migrate", time.Minute, 5)

	// Handlers
	cartCtl := controller.NewCartController(cartService)
	orderCtl := controller.NewOrderController(orderService, reconService)

	// Router
	r := gin.Default()

	api := r.Group("/api", middleware.Identity(jwtService), middleware.RateLimit(generalLimiter))

	api.POST("/session", orderCtl.NewSession)

	cart := api.Group("/cart", middleware.RequireIdentity())
	cart.GET("", cartCtl.GetCart)
	cart.POST("/items", cartCtl.AddItem)
	cart.POST("/items/external", cartCtl.AddExternalItem)
	cart.PUT("/items/:itemId", cartCtl.UpdateItem)
	cart.DELETE("/items/:itemId", cartCtl.RemoveItem)
	cart.DELETE("", cartCtl.ClearCart)

	ordersGroup := api.Group("/orders", middleware.RequireIdentity())
	ordersGroup.GET("", orderCtl.GetOrders)
	ordersGroup.GET("/:orderId", orderCtl.GetOrder)
	ordersGroup.POST("", middleware.RateLimit(orderLimiter), orderCtl.CreateOrder)
	ordersGroup.POST("/external", middleware.RateLimit(orderLimiter), orderCtl.CreateExternalOrder)
	ordersGroup.POST("/migrate", middleware.RequireUser(), middleware.RateLimit(migrateLimiter), orderCtl.MigrateGuestOrders)

	admin := api.Group("/admin", middleware.RequireUser(), middleware.AdminOnly())
	admin.GET("/orders", orderCtl.GetAllOrders)
	admin.PUT("/orders/:orderId/status", orderCtl.UpdateStatus)

	// RabbitMQ: payment gateway notifications
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("failed to open RabbitMQ channel: %v", err)
	}

	rabbit.SetupConsumers(ch, orderService)

	// Periodic retention sweep over unclaimed guest orders
	retention := time.Duration(cfg.GuestOrderRetentionDays) * 24 * time.Hour
	go reconService.RunRetentionSweep(appCtx, 24*time.Hour, retention)

	log.Printf("sgvmart order service listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
