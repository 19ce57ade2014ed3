package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/supplylink/core-service/internal/api"
	"github.com/supplylink/core-service/internal/audit"
	"github.com/supplylink/core-service/internal/complaint"
	"github.com/supplylink/core-service/internal/db"
	"github.com/supplylink/core-service/internal/db/memory"
	"github.com/supplylink/core-service/internal/events"
	"github.com/supplylink/core-service/internal/link"
	"github.com/supplylink/core-service/internal/logging"
	"github.com/supplylink/core-service/internal/messaging"
	"github.com/supplylink/core-service/internal/notify"
	"github.com/supplylink/core-service/internal/order"
	"github.com/supplylink/core-service/internal/storage"
)

// dataStore is the full persistence surface the services need. Both
// the Postgres driver and the in-memory driver satisfy it.
type dataStore interface {
	link.Store
	link.OrgDirectory
	order.Store
	order.ProductReader
	complaint.Store
	complaint.AccountDirectory
	messaging.Store
	audit.Recorder
	api.HealthChecker
}

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetOutput(os.Stdout)
	log.Printf("Core Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	store, cleanup, err := openStore()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	archiver, err := storage.NewArchiver(ctx)
	cancel()
	if err != nil {
		log.Printf("[WARN] Complaint archiver disabled: %v", err)
		archiver = &storage.Archiver{}
	}

	bus := events.NewBus()
	linkSvc := link.NewService(store, store, store)
	orderSvc := order.NewService(store, store, linkSvc, bus, store)
	complaintSvc := complaint.NewService(store, store, store, archiver, store)
	messageSvc := messaging.NewService(store, store, store)

	setupNotifier(bus, store)

	handler := api.NewHandler(linkSvc, orderSvc, complaintSvc, messageSvc, store)
	router := setupRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("Starting core service on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down core service...")
}

// openStore selects the persistence driver. DB_DRIVER=memory runs
// everything in process for local development; anything else is
// Postgres.
func openStore() (dataStore, func(), error) {
	if os.Getenv("DB_DRIVER") == "memory" {
		log.Println("[CORE] Using in-memory store")
		return memory.New(), func() {}, nil
	}

	database, err := db.NewDatabase()
	if err != nil {
		return nil, nil, err
	}
	return database, database.Close, nil
}

// setupNotifier registers email/SMS delivery on the event bus when
// either channel is configured.
func setupNotifier(bus *events.Bus, accounts notify.AccountDirectory) {
	if os.Getenv("SES_FROM_EMAIL") == "" && os.Getenv("SMS_NOTIFICATIONS") != "true" {
		log.Println("[CORE] Order notifications disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("[WARN] Order notifications disabled: %v", err)
		return
	}

	email := notify.NewEmailSender(cfg)
	sms := notify.NewSmsSender(cfg)
	if email == nil && sms == nil {
		log.Println("[CORE] Order notifications disabled")
		return
	}

	notify.NewNotifier(bus, accounts, email, sms)
	log.Println("[CORE] Order notifications enabled")
}

func setupRouter(handler *api.Handler) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())

	// CORS restricted to the portal origin if provided
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}
	if origin := os.Getenv("PORTAL_ORIGIN"); origin != "" {
		corsCfg.AllowOrigins = []string{origin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", func(c *gin.Context) { c.Status(200) })

	// API routes with JWT protection
	apiGroup := router.Group("/api")
	apiGroup.Use(api.AuthMiddleware())
	{
		apiGroup.GET("/suppliers", handler.ListSuppliers)

		apiGroup.POST("/links", handler.RequestLink)
		apiGroup.GET("/links", handler.ListLinks)
		apiGroup.GET("/links/pending", handler.ListPendingLinks)
		apiGroup.POST("/links/:link_id/approve", handler.ApproveLink)
		apiGroup.POST("/links/:link_id/decline", handler.DeclineLink)
		apiGroup.POST("/links/:link_id/unlink", handler.Unlink)

		apiGroup.POST("/orders", handler.CreateOrder)
		apiGroup.GET("/orders", handler.ListOrders)
		apiGroup.GET("/orders/:order_id", handler.GetOrder)
		apiGroup.PUT("/orders/:order_id/status", handler.UpdateOrderStatus)
		apiGroup.POST("/orders/:order_id/complaint", handler.CreateComplaint)

		apiGroup.GET("/complaints", handler.ListComplaints)
		apiGroup.PUT("/complaints/:complaint_id", handler.UpdateComplaint)

		apiGroup.GET("/messages/:link_id", handler.ListMessages)
		apiGroup.POST("/messages/:link_id", handler.PostMessage)
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "core-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}
